package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/calvinalkan/smapcheck/internal/difftest"
)

var quickSweep = []string{"--repeats", "2", "--ops", "200", "--key-range", "5", "--key-range", "50", "--seed", "5"}

func Test_RunCmd_Reports_Ok_When_Backend_Is_Correct(t *testing.T) {
	t.Parallel()

	for _, backend := range []string{"btree", "tidwall"} {
		for _, comparator := range difftest.ComparatorNames() {
			t.Run(backend+"/"+comparator, func(t *testing.T) {
				t.Parallel()

				c := NewCLI(t)
				out := c.MustRun(append([]string{"run", "--backend", backend, "--comparator", comparator}, quickSweep...)...)

				AssertContains(t, out, "smapcheck: backend="+backend+" comparator="+comparator+" seed=5")
				AssertContains(t, out, "ok: 4 trials, 800 operations")
				AssertContains(t, out, "key range 5: 2 trials")
				AssertContains(t, out, "key range 50: 2 trials")
				require.NoDirExists(t, filepath.Join(c.Dir, "generated"))
			})
		}
	}
}

func Test_RunCmd_Writes_Repro_And_History_When_Backend_Diverges(t *testing.T) {
	t.Parallel()

	c := NewCLI(t)
	out := c.MustDiverge("run", "--backend", "lossy", "--repeats", "5", "--ops", "300", "--key-range", "10",
		"--seed", "1", "--out", "lossy", "--history-out", "lossy.jsonc")

	AssertContains(t, out, "divergence: Get(3) mismatched")
	AssertContains(t, out, "diff (-reference +subject)")
	AssertContains(t, out, "minimized: ")
	AssertContains(t, out, "← divergence")
	AssertContains(t, out, "repro: "+filepath.Join(c.Dir, "generated", "lossy_test.go"))

	repro := c.ReadFile(filepath.Join("generated", "lossy_test.go"))
	AssertContains(t, repro, "// Seed: 1")
	AssertContains(t, repro, "func Test_Regression_lossy(t *testing.T) {")
	AssertContains(t, repro, "m := newLossy(sortedmap.Ascending[int])")
	AssertContains(t, repro, "m.Set(3, ")
	AssertContains(t, repro, "value, found := m.Get(3)")

	h, err := difftest.ReadHistoryFile(filepath.Join(c.Dir, "lossy.jsonc"))
	require.NoError(t, err)

	last, _ := h.Last()
	require.Equal(t, difftest.Get(lossyKey), last)
	AssertContains(t, c.ReadFile("lossy.jsonc"), "// backend: lossy")
}

func Test_RunCmd_Prints_Repro_When_CI_Is_Set(t *testing.T) {
	t.Parallel()

	for _, tc := range []struct {
		name  string
		env   map[string]string
		extra []string
	}{
		{"CI env", map[string]string{"CI": "true"}, nil},
		{"stdout flag", map[string]string{}, []string{"--stdout"}},
	} {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			c := NewCLI(t)
			c.Env = tc.env

			args := append([]string{"run", "--backend", "lossy", "--key-range", "10", "--seed", "2"}, tc.extra...)
			out := c.MustDiverge(args...)

			AssertContains(t, out, "// Regression test generated by smapcheck.")
			AssertContains(t, out, "package regression_test")
			AssertNotContains(t, out, "repro: ")

			_, err := os.Stat(filepath.Join(c.Dir, "generated"))
			require.ErrorIs(t, err, os.ErrNotExist)
		})
	}
}

func Test_RunCmd_Skips_Shrinking_When_No_Shrink_Given(t *testing.T) {
	t.Parallel()

	c := NewCLI(t)
	c.Env["CI"] = "1"

	out := c.MustDiverge("run", "--backend", "lossy", "--key-range", "10", "--seed", "2", "--no-shrink")

	AssertContains(t, out, "divergence: Get(3) mismatched")
	AssertNotContains(t, out, "minimized:")
}

func Test_RunCmd_Flags_Override_Config_File(t *testing.T) {
	t.Parallel()

	c := NewCLI(t)
	c.WriteFile(ConfigFileName, `{"backend": "lossy", "repeats": 1, "ops_per_repeat": 100, "key_ranges": [4]}`)

	out := c.MustRun("run", "--backend", "btree", "--seed", "9")

	AssertContains(t, out, "backend=btree")
	AssertContains(t, out, "ok: 1 trials, 100 operations")
}

func Test_RunCmd_Fails_When_Flags_Are_Invalid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		args []string
		want string
	}{
		{[]string{"--repeats", "0"}, "repeats must be > 0"},
		{[]string{"--key-range", "0"}, "key range must be > 0"},
		{[]string{"--oob-percent", "-5"}, "out of bounds percent must be >= 0"},
		{[]string{"--start-percent", "150"}, "start key percent must be within 0-100"},
		{[]string{"--backend", "skiplist"}, "unknown backend"},
		{[]string{"--comparator", "random"}, "unknown comparator"},
		{[]string{"--repeats", "many"}, "invalid argument"},
	}

	for _, tc := range tests {
		t.Run(tc.want, func(t *testing.T) {
			t.Parallel()

			c := NewCLI(t)
			stderr := c.MustFail(append([]string{"run"}, tc.args...)...)
			AssertContains(t, stderr, tc.want)
		})
	}
}
