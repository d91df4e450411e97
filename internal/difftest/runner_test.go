package difftest_test

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/calvinalkan/smapcheck/internal/difftest"
)

func Test_Runner_Step_Matches_When_Backend_Is_Correct(t *testing.T) {
	t.Parallel()

	for _, name := range []string{"btree", "tidwall"} {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			ref, sub := ascendingTarget(mustBackend(t, name)).NewPair()

			ops := difftest.History{
				difftest.Set(3, 30),
				difftest.Set(1, 10),
				difftest.Set(3, 31),
				difftest.Get(3),
				difftest.GetIndexFrom(0, true, 2),
				difftest.Remove(1),
				difftest.Remove(1),
				difftest.Size(),
			}

			var h difftest.History

			r := difftest.Runner{}
			for _, op := range ops {
				require.True(t, r.RunOp(&h, ref, sub, op), "op %s diverged", op)
			}

			if diff := cmp.Diff(ops, h); diff != "" {
				t.Fatalf("history mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func Test_Runner_Step_Appends_Failing_Check_When_Write_Is_Lost(t *testing.T) {
	t.Parallel()

	ref, sub := ascendingTarget(lostWriteBackend(7)).NewPair()

	var h difftest.History

	r := difftest.Runner{}
	require.True(t, r.RunOp(&h, ref, sub, difftest.Set(1, 0)))

	c := r.Step(&h, ref, sub, difftest.Set(7, 1))

	require.Equal(t, difftest.Mismatched, c.Verdict)
	require.Equal(t, difftest.Get(7), c.Op)
	require.Equal(t, difftest.Result{Value: 1, Found: true}, c.Expected)
	require.Equal(t, difftest.Result{}, c.Actual)

	want := difftest.History{difftest.Set(1, 0), difftest.Set(7, 1), difftest.Get(7)}
	if diff := cmp.Diff(want, h); diff != "" {
		t.Fatalf("history mismatch (-want +got):\n%s", diff)
	}
}

func Test_Runner_Step_Skips_Checks_When_Disabled(t *testing.T) {
	t.Parallel()

	ref, sub := ascendingTarget(lostWriteBackend(7)).NewPair()

	var h difftest.History

	r := difftest.Runner{SkipIntegrityChecks: true}
	c := r.Step(&h, ref, sub, difftest.Set(7, 1))

	require.Equal(t, difftest.Matched, c.Verdict)
	require.Len(t, h, 1)
}

func Test_Runner_Step_Reports_Errored_When_Subject_Panics(t *testing.T) {
	t.Parallel()

	ref, sub := ascendingTarget(panickingBackend(1)).NewPair()

	var h difftest.History

	r := difftest.Runner{}
	require.True(t, r.RunOp(&h, ref, sub, difftest.Set(1, 0)))
	require.True(t, r.RunOp(&h, ref, sub, difftest.Set(2, 1)))

	c := r.Step(&h, ref, sub, difftest.Remove(1))

	require.Equal(t, difftest.Errored, c.Verdict)
	require.True(t, c.Verdict.Failed())
	require.NoError(t, c.Expected.Err)
	require.True(t, errors.Is(c.Actual.Err, difftest.ErrApplyPanic), "got %v", c.Actual.Err)
	require.Contains(t, c.Actual.Err.Error(), "node split invariant violated")
}

func Test_Runner_Replay_Reports_No_Failure_When_History_Matches(t *testing.T) {
	t.Parallel()

	h := difftest.History{difftest.Set(1, 1), difftest.Set(2, 2), difftest.GetIndexFrom(0, true, 5)}

	_, failed := difftest.Runner{}.Replay(ascendingTarget(mustBackend(t, "btree")), h)
	require.False(t, failed)

	c, failed := difftest.Runner{}.Replay(ascendingTarget(unadjustedBackend()), h)
	require.True(t, failed)
	require.Equal(t, h[len(h)-1], c.Op)
	require.Equal(t, difftest.Result{Key: 2, Value: 2, Found: true}, c.Expected)
}

func Test_Runner_Replay_Does_Not_Modify_History_When_Checks_Fail(t *testing.T) {
	t.Parallel()

	h := difftest.History{difftest.Set(7, 1), difftest.Size()}
	before := h.Clone()

	c, failed := difftest.Runner{}.Replay(ascendingTarget(lostWriteBackend(7)), h)
	require.True(t, failed)
	require.Equal(t, difftest.Get(7), c.Op)

	if diff := cmp.Diff(before, h); diff != "" {
		t.Fatalf("history was modified (-want +got):\n%s", diff)
	}
}

func Test_Runner_CheckState_Finds_Divergent_Entry_When_Sizes_Match(t *testing.T) {
	t.Parallel()

	ref, sub := ascendingTarget(mustBackend(t, "btree")).NewPair()
	ref.Set(1, 10)
	ref.Set(2, 20)
	sub.Set(1, 10)
	sub.Set(2, 21)

	var h difftest.History

	c, failed := difftest.Runner{}.CheckState(&h, ref, sub)
	require.True(t, failed)
	require.Equal(t, difftest.GetIndex(1, false), c.Op)
	require.Equal(t, difftest.History{difftest.GetIndex(1, false)}, h)

	sub.Set(2, 20)

	h = nil
	_, failed = difftest.Runner{}.CheckState(&h, ref, sub)
	require.False(t, failed)
	require.Empty(t, h)
}

func Test_Runner_CheckState_Reports_Size_When_Sizes_Differ(t *testing.T) {
	t.Parallel()

	ref, sub := ascendingTarget(mustBackend(t, "tidwall")).NewPair()
	ref.Set(1, 10)

	var h difftest.History

	c, failed := difftest.Runner{}.CheckState(&h, ref, sub)
	require.True(t, failed)
	require.Equal(t, difftest.Size(), c.Op)
	require.Equal(t, 1, c.Expected.Size)
	require.Equal(t, 0, c.Actual.Size)
}

func Test_Comparison_Diff_Shows_Both_Sides_When_Mismatched(t *testing.T) {
	t.Parallel()

	ref, sub := ascendingTarget(unadjustedBackend()).NewPair()
	ref.Set(1, 1)
	sub.Set(1, 1)

	c := difftest.Compare(ref, sub, difftest.GetIndexFrom(0, true, 1))
	require.Equal(t, difftest.Matched, c.Verdict)
	require.Empty(t, c.Diff())

	c = difftest.Compare(ref, sub, difftest.GetIndexFrom(0, true, 2))
	require.Equal(t, difftest.Mismatched, c.Verdict)
	require.Equal(t, difftest.Result{Key: 1, Value: 1, Found: true}, c.Expected)
	require.Equal(t, difftest.Result{}, c.Actual)
	require.NotEmpty(t, c.Diff())
	require.Contains(t, c.String(), "mismatched")
}

func Test_Runner_FailingPrefix_Cuts_History_When_Divergence_Is_Interior(t *testing.T) {
	t.Parallel()

	h := difftest.History{
		difftest.Set(1, 0),
		difftest.Set(7, 1),
		difftest.Remove(1),
		difftest.Size(),
	}

	prefix, c, dropped, failed := difftest.Runner{}.FailingPrefix(ascendingTarget(lostWriteBackend(7)), h)
	require.True(t, failed)
	require.Equal(t, 2, dropped)
	require.Equal(t, difftest.Get(7), c.Op)

	want := difftest.History{difftest.Set(1, 0), difftest.Set(7, 1), difftest.Get(7)}
	if diff := cmp.Diff(want, prefix); diff != "" {
		t.Fatalf("prefix mismatch (-want +got):\n%s", diff)
	}

	prefix, _, dropped, failed = difftest.Runner{}.FailingPrefix(ascendingTarget(mustBackend(t, "btree")), h)
	require.False(t, failed)
	require.Zero(t, dropped)
	require.Nil(t, prefix)
}
