package difftest_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"pgregory.net/rapid"

	"github.com/calvinalkan/smapcheck/internal/difftest"
)

func Test_Candidates_Yields_Suffixes_Then_Head_Prefixed_When_History_Has_Four_Ops(t *testing.T) {
	t.Parallel()

	a, b, c, d := difftest.Set(1, 0), difftest.Set(2, 1), difftest.Remove(1), difftest.Get(2)

	want := []difftest.History{
		{c, d},
		{d},
		{a, d},
		{a, b, d},
	}

	got := difftest.Candidates(difftest.History{a, b, c, d}).All()
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("candidates mismatch (-want +got):\n%s", diff)
	}
}

func Test_Candidates_Yields_Nothing_When_History_Has_One_Op(t *testing.T) {
	t.Parallel()

	for _, h := range []difftest.History{nil, {difftest.Size()}} {
		it := difftest.Candidates(h)
		if got, ok := it.Next(); ok {
			t.Fatalf("Candidates(%v).Next() = %v, want exhausted", h, got)
		}
	}
}

func Test_Candidates_Restarts_When_Called_Again(t *testing.T) {
	t.Parallel()

	h := difftest.History{difftest.Set(1, 0), difftest.Set(2, 1), difftest.Set(3, 2), difftest.Size(), difftest.Get(3)}

	it := difftest.Candidates(h)
	first, _ := it.Next()
	_, _ = it.Next()

	again, ok := difftest.Candidates(h).Next()
	if !ok {
		t.Fatal("fresh iterator is exhausted")
	}

	if diff := cmp.Diff(first, again); diff != "" {
		t.Fatalf("restart mismatch (-first +again):\n%s", diff)
	}

	if diff := cmp.Diff(it.All(), difftest.Candidates(h).All()); diff != "" {
		t.Fatalf("All depends on iterator position (-partial +fresh):\n%s", diff)
	}
}

func Test_Candidates_Does_Not_Alias_Parent_When_Candidate_Is_Modified(t *testing.T) {
	t.Parallel()

	h := difftest.History{difftest.Set(1, 0), difftest.Set(2, 1), difftest.Get(2)}
	before := h.Clone()

	for _, c := range difftest.Candidates(h).All() {
		c[len(c)-1] = difftest.Size()
	}

	if diff := cmp.Diff(before, h); diff != "" {
		t.Fatalf("parent modified (-want +got):\n%s", diff)
	}
}

func Test_Candidates_Are_Shorter_And_Keep_Last_Op(t *testing.T) {
	t.Parallel()

	rapid.Check(t, func(rt *rapid.T) {
		h := difftest.History(rapid.SliceOfN(drawOperation(10), 0, 10).Draw(rt, "history"))

		it := difftest.Candidates(h)
		for c, ok := it.Next(); ok; c, ok = it.Next() {
			if len(c) == 0 || len(c) >= len(h) {
				rt.Fatalf("candidate length %d for parent length %d", len(c), len(h))
			}

			if c[len(c)-1] != h[len(h)-1] {
				rt.Fatalf("candidate ends with %s, parent with %s", c[len(c)-1], h[len(h)-1])
			}
		}
	})
}

func drawOperation(keyRange int) *rapid.Generator[difftest.Operation] {
	return rapid.Custom(func(rt *rapid.T) difftest.Operation {
		key := rapid.IntRange(0, keyRange-1).Draw(rt, "key")

		switch rapid.SampledFrom([]difftest.Command{
			difftest.CmdGet, difftest.CmdGetIndex, difftest.CmdSet, difftest.CmdRemove, difftest.CmdSize,
		}).Draw(rt, "cmd") {
		case difftest.CmdGet:
			return difftest.Get(key)
		case difftest.CmdSet:
			return difftest.Set(key, rapid.IntRange(0, 100).Draw(rt, "value"))
		case difftest.CmdRemove:
			return difftest.Remove(key)
		case difftest.CmdSize:
			return difftest.Size()
		default:
			index := rapid.IntRange(0, keyRange+1).Draw(rt, "index")
			reversed := rapid.Bool().Draw(rt, "reversed")

			if rapid.Bool().Draw(rt, "start") {
				return difftest.GetIndexFrom(index, reversed, key)
			}

			return difftest.GetIndex(index, reversed)
		}
	})
}
