package sortedmap

import "github.com/google/btree"

// btreeDegree is the B-tree degree used by NewBTree. 32 keeps nodes within a
// few cache lines for small keys.
const btreeDegree = 32

// BTree is a Map backed by github.com/google/btree.
//
// The tree has no rank index: absolute ranks and anchored walks iterate from
// the nearest end or from the anchor. That is O(index) per call, which is
// fine for the key ranges the differential sweeps use.
type BTree[K, V any] struct {
	tree *btree.BTreeG[entry[K, V]]
	cmp  Comparator[K]
}

// NewBTree returns an empty BTree ordered by c.
func NewBTree[K, V any](c Comparator[K]) *BTree[K, V] {
	if c == nil {
		panic("sortedmap: comparator is nil")
	}

	return &BTree[K, V]{
		tree: btree.NewG(btreeDegree, lessByKey[K, V](c)),
		cmp:  c,
	}
}

// Get implements Map.
func (m *BTree[K, V]) Get(key K) (V, bool) {
	found, ok := m.tree.Get(entry[K, V]{key: key})

	return found.value, ok
}

// Set implements Map.
func (m *BTree[K, V]) Set(key K, value V) bool {
	_, replaced := m.tree.ReplaceOrInsert(entry[K, V]{key: key, value: value})

	return !replaced
}

// Remove implements Map.
func (m *BTree[K, V]) Remove(key K) bool {
	_, removed := m.tree.Delete(entry[K, V]{key: key})

	return removed
}

// Size implements Map.
func (m *BTree[K, V]) Size() int {
	return m.tree.Len()
}

// GetIndex implements Map.
//
// A reverse walk anchored at start begins at the greatest key <= start. That
// is the lower bound itself when start is present and the entry just before
// it otherwise, which is exactly the adjusted anchor of the contract.
func (m *BTree[K, V]) GetIndex(index int, reversed bool, start *K) (K, V, bool) {
	if index < 0 || index >= m.tree.Len() {
		return notFound[K, V]()
	}

	var (
		found entry[K, V]
		ok    bool
		step  int
	)

	visit := func(item entry[K, V]) bool {
		if step == index {
			found, ok = item, true

			return false
		}

		step++

		return true
	}

	switch {
	case start == nil && !reversed:
		m.tree.Ascend(visit)
	case start == nil && reversed:
		m.tree.Descend(visit)
	case !reversed:
		m.tree.AscendGreaterOrEqual(entry[K, V]{key: *start}, visit)
	default:
		m.tree.DescendLessOrEqual(entry[K, V]{key: *start}, visit)
	}

	if !ok {
		return notFound[K, V]()
	}

	return found.key, found.value, true
}

func notFound[K, V any]() (K, V, bool) {
	var (
		key   K
		value V
	)

	return key, value, false
}
