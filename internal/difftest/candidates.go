package difftest

// CandidateIter lazily yields smaller histories derived from a parent, in
// priority order:
//
//  1. Suffixes of the parent, longest first, with lengths len/2, len/4, ... 1.
//  2. The parent's first operation prepended to every candidate of the
//     parent without its first operation, recursively.
//
// Every candidate is strictly shorter than the parent and ends with the
// parent's last operation. The iterator never modifies the parent and
// holds no state outside itself, so Candidates can be called again on the
// same history to start over.
type CandidateIter struct {
	parent History
	window int
	child  *CandidateIter
}

// Candidates returns a fresh iterator over the shrink candidates of h.
func Candidates(h History) *CandidateIter {
	return &CandidateIter{parent: h, window: len(h) >> 1}
}

// Next returns the next candidate. ok is false once the sequence is
// exhausted.
func (it *CandidateIter) Next() (History, bool) {
	if it.window > 0 {
		suffix := it.parent[len(it.parent)-it.window:]
		it.window >>= 1

		return suffix.Clone(), true
	}

	if len(it.parent) < 2 {
		return nil, false
	}

	if it.child == nil {
		it.child = Candidates(it.parent[1:])
	}

	tail, ok := it.child.Next()
	if !ok {
		return nil, false
	}

	candidate := make(History, 0, len(tail)+1)
	candidate = append(candidate, it.parent[0])

	return append(candidate, tail...), true
}

// All drains a fresh copy of the sequence. Intended for tests and
// diagnostics on short histories; the sequence grows quickly.
func (it *CandidateIter) All() []History {
	fresh := Candidates(it.parent)

	var out []History
	for h, ok := fresh.Next(); ok; h, ok = fresh.Next() {
		out = append(out, h)
	}

	return out
}
