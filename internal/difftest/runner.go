package difftest

import (
	"github.com/calvinalkan/smapcheck/pkg/sortedmap"
)

// Runner applies operations to a reference and a subject and records them.
//
// After a Set or Remove matches, Runner verifies the key with a Get and the
// map with a Size. A failing check is appended to the history as the new
// final operation, so a history always ends with the operation that exposed
// the divergence.
type Runner struct {
	// SkipIntegrityChecks disables the Get/Size follow-ups after writes.
	SkipIntegrityChecks bool
}

// Step applies op to both maps, appends it to h and runs the integrity
// checks. It returns the first failing comparison, or the comparison for op
// when everything matched.
func (r Runner) Step(h *History, ref, sub sortedmap.Map[int, int], op Operation) Comparison {
	h.Append(op)

	c := Compare(ref, sub, op)
	if c.Verdict.Failed() || r.SkipIntegrityChecks {
		return c
	}

	if op.Cmd != CmdSet && op.Cmd != CmdRemove {
		return c
	}

	for _, check := range []Operation{Get(op.Key), Size()} {
		checked := Compare(ref, sub, check)
		if checked.Verdict.Failed() {
			h.Append(check)

			return checked
		}
	}

	return c
}

// RunOp is Step reduced to a match flag.
func (r Runner) RunOp(h *History, ref, sub sortedmap.Map[int, int], op Operation) bool {
	return !r.Step(h, ref, sub, op).Verdict.Failed()
}

// Replay runs every operation of h against fresh maps from target and
// returns the first failing comparison. ok is false when the whole history
// matched.
func (r Runner) Replay(target Target, h History) (Comparison, bool) {
	_, c, _, failed := r.FailingPrefix(target, h)

	return c, failed
}

// FailingPrefix replays h against fresh maps and returns the history as a
// trial would have recorded it: every operation up to the first divergence,
// plus the failing integrity check if one exposed it. dropped counts the
// operations of h after the divergence. ok is false when h matched
// throughout, in which case prefix is nil.
func (r Runner) FailingPrefix(target Target, h History) (prefix History, c Comparison, dropped int, ok bool) {
	ref, sub := target.NewPair()

	scratch := make(History, 0, len(h)+2)
	for i, op := range h {
		step := r.Step(&scratch, ref, sub, op)
		if step.Verdict.Failed() {
			return scratch, step, len(h) - i - 1, true
		}
	}

	return nil, Comparison{}, 0, false
}
