package difftest

import (
	"github.com/calvinalkan/smapcheck/pkg/sortedmap"
	"github.com/calvinalkan/smapcheck/pkg/sortedmap/model"
)

// Target describes what a trial runs against: a subject backend and the
// comparator shared by the subject and the reference model.
type Target struct {
	Comparator sortedmap.Comparator[int]
	Backend    sortedmap.Backend
}

// NewPair returns an empty reference model and an empty subject.
func (t Target) NewPair() (sortedmap.Map[int, int], sortedmap.Map[int, int]) {
	return model.New(t.Comparator), t.Backend.New(t.Comparator)
}

// NewTarget resolves a comparator and backend by name.
func NewTarget(comparator, backend string) (Target, error) {
	c, err := ComparatorByName(comparator)
	if err != nil {
		return Target{}, err
	}

	b, err := sortedmap.LookupBackend(backend)
	if err != nil {
		return Target{}, err
	}

	return Target{Comparator: c, Backend: b}, nil
}
