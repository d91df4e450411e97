// Package sortedmap defines the sorted key/value map contract shared by the
// reference model and the implementations under test.
//
// A [Map] orders its keys with a caller supplied [Comparator]. Besides exact
// key lookups it supports rank addressing through [Map.GetIndex], which walks
// the comparator order forward or backward, optionally anchored at a start
// key. The rank semantics are subtle and pinned by tests; see GetIndex.
//
// Two backends are provided:
//
//   - [BTree], built on github.com/google/btree. It has no rank index, so
//     GetIndex walks the tree from the anchor.
//   - [Tidwall], built on github.com/tidwall/btree, which answers absolute
//     ranks in O(log n) through GetAt.
//
// The reference implementation lives in the model subpackage.
package sortedmap
