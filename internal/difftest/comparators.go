package difftest

import (
	"fmt"
	"reflect"
	"slices"

	"github.com/calvinalkan/smapcheck/pkg/sortedmap"
)

// namedComparator is a well-known comparator together with the Go
// expression that refers to it in generated code.
type namedComparator struct {
	name    string
	compare sortedmap.Comparator[int]
	expr    string
}

var wellKnownComparators = []namedComparator{
	{name: "ascending", compare: sortedmap.Ascending[int], expr: "sortedmap.Ascending[int]"},
	{name: "descending", compare: sortedmap.Descending[int], expr: "sortedmap.Descending[int]"},
}

// ComparatorNames returns the names accepted by ComparatorByName.
func ComparatorNames() []string {
	names := make([]string, len(wellKnownComparators))
	for i, c := range wellKnownComparators {
		names[i] = c.name
	}

	return names
}

// ComparatorByName resolves a well-known comparator.
func ComparatorByName(name string) (sortedmap.Comparator[int], error) {
	for _, c := range wellKnownComparators {
		if c.name == name {
			return c.compare, nil
		}
	}

	return nil, fmt.Errorf("%w: %q (known: %v)", ErrUnknownComparator, name, ComparatorNames())
}

// ComparatorName returns the name of c if it is one of the well-known
// comparators. Identity is by function value, so a wrapper that happens to
// order keys the same way is not recognized.
func ComparatorName(c sortedmap.Comparator[int]) (string, bool) {
	nc, ok := lookupComparator(c)

	return nc.name, ok
}

func lookupComparator(c sortedmap.Comparator[int]) (namedComparator, bool) {
	if c == nil {
		return namedComparator{}, false
	}

	pc := reflect.ValueOf(c).Pointer()

	idx := slices.IndexFunc(wellKnownComparators, func(nc namedComparator) bool {
		return reflect.ValueOf(nc.compare).Pointer() == pc
	})
	if idx < 0 {
		return namedComparator{}, false
	}

	return wellKnownComparators[idx], true
}
