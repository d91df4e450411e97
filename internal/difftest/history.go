package difftest

import (
	"slices"
	"strings"
)

// History is the ordered record of operations executed during one trial.
// The last operation is the one whose result is asserted.
//
// A History is only ever appended to. Shrinking derives new histories and
// never edits one in place.
type History []Operation

// Append adds op to the end of the history.
func (h *History) Append(op Operation) {
	*h = append(*h, op)
}

// Last returns the final operation.
func (h History) Last() (Operation, bool) {
	if len(h) == 0 {
		return Operation{}, false
	}

	return h[len(h)-1], true
}

// Clone returns an independent copy.
func (h History) Clone() History {
	return slices.Clone(h)
}

// String renders the history one operation per line, marking the final
// operation as the divergence.
func (h History) String() string {
	if len(h) == 0 {
		return "Operations: (none)"
	}

	var b strings.Builder

	b.WriteString("Operations:")

	for i, op := range h {
		b.WriteString("\n")

		if i == len(h)-1 {
			b.WriteString("→ ")
			b.WriteString(op.String())
			b.WriteString("  ← divergence")
		} else {
			b.WriteString("  ")
			b.WriteString(op.String())
		}
	}

	return b.String()
}

// PruneReads drops every interior Get and GetIndex. The final operation is
// kept even when it is a read because it carries the assertion. Reads cannot
// change state, so a divergence caused by writes still reproduces.
func PruneReads(h History) History {
	if len(h) == 0 {
		return History{}
	}

	out := make(History, 0, len(h))
	for _, op := range h[:len(h)-1] {
		if op.Cmd == CmdGet || op.Cmd == CmdGetIndex {
			continue
		}

		out = append(out, op)
	}

	return append(out, h[len(h)-1])
}
