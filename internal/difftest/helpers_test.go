package difftest_test

import (
	"testing"

	"github.com/calvinalkan/smapcheck/internal/difftest"
	"github.com/calvinalkan/smapcheck/pkg/sortedmap"
	"github.com/calvinalkan/smapcheck/pkg/sortedmap/model"
)

// unadjustedReverse behaves like the reference except that a reverse
// GetIndex anchored at an absent start key does not step the bound back.
type unadjustedReverse struct {
	*model.Map

	cmp sortedmap.Comparator[int]
}

func (m *unadjustedReverse) GetIndex(index int, reversed bool, start *int) (int, int, bool) {
	if !reversed || start == nil {
		return m.Map.GetIndex(index, reversed, start)
	}

	entries := m.Entries()
	if index < 0 || index >= len(entries) {
		return 0, 0, false
	}

	bound := len(entries)
	for i, e := range entries {
		if m.cmp(e.Key, *start) >= 0 {
			bound = i

			break
		}
	}

	pos := bound - index
	if pos < 0 || pos >= len(entries) {
		return 0, 0, false
	}

	return entries[pos].Key, entries[pos].Value, true
}

// lostWrite reports success for Set(lostKey, ...) but never stores it.
type lostWrite struct {
	*model.Map

	lostKey int
}

func (m *lostWrite) Set(key, value int) bool {
	if key == m.lostKey {
		_, present := m.Get(key)

		return !present
	}

	return m.Map.Set(key, value)
}

// panicsOnCrowdedRemove panics on Remove once it holds more than limit keys.
type panicsOnCrowdedRemove struct {
	*model.Map

	limit int
}

func (m *panicsOnCrowdedRemove) Remove(key int) bool {
	if m.Size() > m.limit {
		panic("remove: node split invariant violated")
	}

	return m.Map.Remove(key)
}

func unadjustedBackend() sortedmap.Backend {
	return sortedmap.Backend{
		Name: "unadjusted",
		New: func(c sortedmap.Comparator[int]) sortedmap.Map[int, int] {
			return &unadjustedReverse{Map: model.New(c), cmp: c}
		},
		Constructor: "newUnadjusted",
	}
}

func lostWriteBackend(key int) sortedmap.Backend {
	return sortedmap.Backend{
		Name: "lostwrite",
		New: func(c sortedmap.Comparator[int]) sortedmap.Map[int, int] {
			return &lostWrite{Map: model.New(c), lostKey: key}
		},
		Constructor: "newLostWrite",
	}
}

func panickingBackend(limit int) sortedmap.Backend {
	return sortedmap.Backend{
		Name: "panicking",
		New: func(c sortedmap.Comparator[int]) sortedmap.Map[int, int] {
			return &panicsOnCrowdedRemove{Map: model.New(c), limit: limit}
		},
		Constructor: "newPanicking",
	}
}

func ascendingTarget(b sortedmap.Backend) difftest.Target {
	return difftest.Target{Comparator: sortedmap.Ascending[int], Backend: b}
}

func mustBackend(t *testing.T, name string) sortedmap.Backend {
	t.Helper()

	b, err := sortedmap.LookupBackend(name)
	if err != nil {
		t.Fatalf("LookupBackend(%q): %v", name, err)
	}

	return b
}

// poisonedByGet miscounts its size once Get(9) has been called.
type poisonedByGet struct {
	*model.Map

	poisoned bool
}

func (m *poisonedByGet) Get(key int) (int, bool) {
	if key == 9 {
		m.poisoned = true
	}

	return m.Map.Get(key)
}

func (m *poisonedByGet) Size() int {
	if m.poisoned {
		return m.Map.Size() + 1
	}

	return m.Map.Size()
}

// twoBugs carries two independent faults: Set(emptyKey, ...) on an empty map
// reports no change, and Get(phantomKey) reports a hit while witnessKey is
// present.
type twoBugs struct {
	*model.Map

	emptyKey   int
	phantomKey int
	witnessKey int
}

func (m *twoBugs) Set(key, value int) bool {
	wasEmpty := m.Size() == 0
	changed := m.Map.Set(key, value)

	if wasEmpty && key == m.emptyKey {
		return false
	}

	return changed
}

func (m *twoBugs) Get(key int) (int, bool) {
	if key == m.phantomKey {
		if _, ok := m.Map.Get(m.witnessKey); ok {
			return 0, true
		}
	}

	return m.Map.Get(key)
}

func twoBugsBackend(emptyKey, phantomKey, witnessKey int) sortedmap.Backend {
	return sortedmap.Backend{
		Name: "twobugs",
		New: func(c sortedmap.Comparator[int]) sortedmap.Map[int, int] {
			return &twoBugs{Map: model.New(c), emptyKey: emptyKey, phantomKey: phantomKey, witnessKey: witnessKey}
		},
		Constructor: "newTwoBugs",
	}
}

// finalOpDiverges applies every operation of h but the last to fresh maps,
// as plain calls without follow-up checks, and reports whether all of them
// match and the last one then mismatches. That is the condition under which
// a generated regression test fails.
func finalOpDiverges(target difftest.Target, h difftest.History) bool {
	if len(h) == 0 {
		return false
	}

	ref, sub := target.NewPair()

	for _, op := range h[:len(h)-1] {
		if difftest.Compare(ref, sub, op).Verdict.Failed() {
			return false
		}
	}

	return difftest.Compare(ref, sub, h[len(h)-1]).Verdict.Failed()
}
