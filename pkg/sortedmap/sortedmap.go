package sortedmap

import (
	"cmp"
	"fmt"
	"reflect"
	"runtime"
)

// Comparator orders keys. It returns a negative number when a sorts before b,
// zero when they are equal and a positive number otherwise.
//
// A comparator must be a strict total order: antisymmetric, transitive and
// returning zero only for equal keys.
type Comparator[K any] func(a, b K) int

// Ascending orders keys from smallest to largest.
func Ascending[K cmp.Ordered](a, b K) int {
	return cmp.Compare(a, b)
}

// Descending orders keys from largest to smallest.
func Descending[K cmp.Ordered](a, b K) int {
	return cmp.Compare(b, a)
}

// Map is a sorted key/value map.
//
// All methods are deterministic functions of the current contents and the
// arguments. Implementations do not return errors; an implementation that
// fails internally panics and the caller decides how to classify it.
type Map[K, V any] interface {
	// Get returns the value stored under key.
	Get(key K) (V, bool)

	// Set stores value under key. It reports true if the key was newly
	// inserted and false if an existing value was overwritten.
	Set(key K, value V) bool

	// Remove deletes key. It reports whether the key was present.
	Remove(key K) bool

	// Size returns the number of keys.
	Size() int

	// GetIndex returns the entry at a zero based rank in comparator order.
	//
	// If index >= Size the result is not found. Without a start key the rank
	// is absolute, counted from the front (reversed=false) or from the back
	// (reversed=true).
	//
	// With a start key the anchor is the lower bound of start: the first key k
	// with cmp(k, start) >= 0. Forward walks index positions after the anchor.
	// Reverse first moves the anchor one position earlier unless the key at
	// the anchor equals start, then walks index positions before it.
	GetIndex(index int, reversed bool, start *K) (K, V, bool)
}

// At returns a pointer to key, for passing a start key to GetIndex.
func At[K any](key K) *K {
	return &key
}

// ComparatorSource returns a best-effort textual description of c: the
// fully qualified function name the runtime reports for it. Closures and
// method values get synthetic names that are not valid Go expressions.
func ComparatorSource[K any](c Comparator[K]) string {
	if c == nil {
		return "<nil>"
	}

	fn := runtime.FuncForPC(reflect.ValueOf(c).Pointer())
	if fn == nil {
		return fmt.Sprintf("%p", c)
	}

	return fn.Name()
}

// CheckComparator verifies that c behaves like a total order over keys:
// reflexive zero, antisymmetric and transitive on every triple of the
// sample. It returns an error describing the first violation.
func CheckComparator[K any](c Comparator[K], keys []K) error {
	for i := range keys {
		if c(keys[i], keys[i]) != 0 {
			return fmt.Errorf("%w: compare(%v, %v) != 0", ErrComparatorContract, keys[i], keys[i])
		}

		for j := range keys {
			ab, ba := sign(c(keys[i], keys[j])), sign(c(keys[j], keys[i]))
			if ab != -ba {
				return fmt.Errorf("%w: compare(%v, %v)=%d but compare(%v, %v)=%d",
					ErrComparatorContract, keys[i], keys[j], ab, keys[j], keys[i], ba)
			}
		}
	}

	for i := range keys {
		for j := range keys {
			if sign(c(keys[i], keys[j])) >= 0 {
				continue
			}

			for k := range keys {
				if sign(c(keys[j], keys[k])) < 0 && sign(c(keys[i], keys[k])) >= 0 {
					return fmt.Errorf("%w: %v < %v < %v but not %v < %v",
						ErrComparatorContract, keys[i], keys[j], keys[k], keys[i], keys[k])
				}
			}
		}
	}

	return nil
}

func sign(n int) int {
	switch {
	case n < 0:
		return -1
	case n > 0:
		return 1
	default:
		return 0
	}
}
