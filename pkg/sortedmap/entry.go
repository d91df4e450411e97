package sortedmap

// entry is the item stored by the tree backends. Trees order entries by key
// only, so a pivot for a search is an entry with a zero value.
type entry[K, V any] struct {
	key   K
	value V
}

func lessByKey[K, V any](c Comparator[K]) func(a, b entry[K, V]) bool {
	return func(a, b entry[K, V]) bool {
		return c(a.key, b.key) < 0
	}
}
