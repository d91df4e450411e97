package difftest

import (
	"github.com/calvinalkan/smapcheck/pkg/sortedmap"
)

// CheckState compares the complete contents of ref and sub: the size, then
// every entry by absolute forward rank, which covers keys, values and
// order. The first failing read is appended to h and returned. ok is false
// when the maps are identical.
func (r Runner) CheckState(h *History, ref, sub sortedmap.Map[int, int]) (Comparison, bool) {
	c := Compare(ref, sub, Size())
	if c.Verdict.Failed() {
		h.Append(c.Op)

		return c, true
	}

	for i := range c.Expected.Size {
		entry := Compare(ref, sub, GetIndex(i, false))
		if entry.Verdict.Failed() {
			h.Append(entry.Op)

			return entry, true
		}
	}

	return Comparison{}, false
}
