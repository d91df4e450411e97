package sortedmap

import "github.com/tidwall/btree"

// Tidwall is a Map backed by github.com/tidwall/btree.
//
// The tree keeps subtree counts, so absolute ranks resolve through GetAt.
// Anchored walks still iterate from the anchor because the tree does not
// expose the rank of a pivot.
type Tidwall[K, V any] struct {
	tree *btree.BTreeG[entry[K, V]]
}

// NewTidwall returns an empty Tidwall map ordered by c.
func NewTidwall[K, V any](c Comparator[K]) *Tidwall[K, V] {
	if c == nil {
		panic("sortedmap: comparator is nil")
	}

	tree := btree.NewBTreeGOptions(lessByKey[K, V](c), btree.Options{NoLocks: true})

	return &Tidwall[K, V]{tree: tree}
}

// Get implements Map.
func (m *Tidwall[K, V]) Get(key K) (V, bool) {
	found, ok := m.tree.Get(entry[K, V]{key: key})

	return found.value, ok
}

// Set implements Map.
func (m *Tidwall[K, V]) Set(key K, value V) bool {
	_, replaced := m.tree.Set(entry[K, V]{key: key, value: value})

	return !replaced
}

// Remove implements Map.
func (m *Tidwall[K, V]) Remove(key K) bool {
	_, removed := m.tree.Delete(entry[K, V]{key: key})

	return removed
}

// Size implements Map.
func (m *Tidwall[K, V]) Size() int {
	return m.tree.Len()
}

// GetIndex implements Map.
func (m *Tidwall[K, V]) GetIndex(index int, reversed bool, start *K) (K, V, bool) {
	size := m.tree.Len()
	if index < 0 || index >= size {
		return notFound[K, V]()
	}

	if start == nil {
		rank := index
		if reversed {
			rank = size - index - 1
		}

		found, ok := m.tree.GetAt(rank)
		if !ok {
			return notFound[K, V]()
		}

		return found.key, found.value, true
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

	pivot := entry[K, V]{key: *start}
	if reversed {
		m.tree.Descend(pivot, visit)
	} else {
		m.tree.Ascend(pivot, visit)
	}

	if !ok {
		return notFound[K, V]()
	}

	return found.key, found.value, true
}
