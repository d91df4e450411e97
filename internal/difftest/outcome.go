package difftest

import (
	"fmt"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/calvinalkan/smapcheck/pkg/sortedmap"
)

// Result is the observable outcome of applying one Operation to one map.
//
// Only the fields meaningful for the command are set, so two results for
// the same operation compare field by field.
type Result struct {
	// Key and Value hold the GetIndex entry or the Get value.
	Key   int
	Value int

	// Found is set by Get and GetIndex.
	Found bool

	// Changed is the boolean returned by Set and Remove.
	Changed bool

	// Size is set by Size.
	Size int

	// Err is non-nil when the implementation panicked.
	Err error
}

func (r Result) String() string {
	if r.Err != nil {
		return "error: " + r.Err.Error()
	}

	return fmt.Sprintf("{key=%d value=%d found=%v changed=%v size=%d}", r.Key, r.Value, r.Found, r.Changed, r.Size)
}

// Apply runs op against m. A panic inside m is recovered and reported in
// Result.Err wrapping ErrApplyPanic.
func Apply(m sortedmap.Map[int, int], op Operation) (res Result) {
	defer func() {
		if recovered := recover(); recovered != nil {
			res = Result{Err: fmt.Errorf("%w: %s: %v", ErrApplyPanic, op, recovered)}
		}
	}()

	switch op.Cmd {
	case CmdGet:
		res.Value, res.Found = m.Get(op.Key)
	case CmdSet:
		res.Changed = m.Set(op.Key, op.Value)
	case CmdRemove:
		res.Changed = m.Remove(op.Key)
	case CmdSize:
		res.Size = m.Size()
	case CmdGetIndex:
		res.Key, res.Value, res.Found = m.GetIndex(op.Index, op.Reversed, op.StartKey())
	default:
		res.Err = fmt.Errorf("%w: %d", ErrUnknownCommand, op.Cmd)
	}

	return res
}

// Verdict classifies the comparison of two results.
type Verdict uint8

// Verdicts. Errored is a failure just like Mismatched; it is kept separate
// so reports can say which side blew up.
const (
	Matched Verdict = iota
	Mismatched
	Errored
)

func (v Verdict) String() string {
	switch v {
	case Matched:
		return "matched"
	case Mismatched:
		return "mismatched"
	case Errored:
		return "errored"
	default:
		return fmt.Sprintf("Verdict(%d)", uint8(v))
	}
}

// Failed reports whether the verdict counts as a divergence.
func (v Verdict) Failed() bool {
	return v != Matched
}

// Comparison is the outcome of applying one operation to both maps.
type Comparison struct {
	Op       Operation
	Verdict  Verdict
	Expected Result
	Actual   Result
}

// Diff returns a go-cmp diff of the reference (-) and subject (+) results.
func (c Comparison) Diff() string {
	return cmp.Diff(c.Expected, c.Actual, cmpopts.EquateErrors())
}

func (c Comparison) String() string {
	return fmt.Sprintf("%s %s: reference=%s subject=%s", c.Op, c.Verdict, c.Expected, c.Actual)
}

// Compare applies op to the reference and then to the subject and
// classifies the pair. It never panics.
func Compare(ref, sub sortedmap.Map[int, int], op Operation) Comparison {
	expected := Apply(ref, op)
	actual := Apply(sub, op)

	c := Comparison{Op: op, Expected: expected, Actual: actual}

	switch {
	case expected.Err != nil || actual.Err != nil:
		c.Verdict = Errored
	case cmp.Equal(expected, actual):
		c.Verdict = Matched
	default:
		c.Verdict = Mismatched
	}

	return c
}
