package cli

import (
	"log/slog"
	"strings"

	flag "github.com/spf13/pflag"

	"github.com/calvinalkan/smapcheck/internal/difftest"
	"github.com/calvinalkan/smapcheck/pkg/sortedmap"
)

func bindTargetFlags(fs *flag.FlagSet, cfg *Config) {
	fs.StringVar(&cfg.Comparator, "comparator", cfg.Comparator,
		"key order: "+strings.Join(difftest.ComparatorNames(), ", "))
	fs.StringVar(&cfg.Backend, "backend", cfg.Backend,
		"map implementation under test: "+strings.Join(sortedmap.BackendNames(), ", "))
}

func bindSweepFlags(fs *flag.FlagSet, cfg *Config) {
	bindTargetFlags(fs, cfg)

	fs.IntVar(&cfg.Repeats, "repeats", cfg.Repeats, "trials per key range")
	fs.IntVar(&cfg.OpsPerRepeat, "ops", cfg.OpsPerRepeat, "operations per trial")
	fs.IntSliceVar(&cfg.KeyRanges, "key-range", cfg.KeyRanges, "key range to sweep (repeatable)")
	fs.IntVar(&cfg.OutOfBoundsPercent, "oob-percent", cfg.OutOfBoundsPercent,
		"percent by which GetIndex indexes may exceed the size")
	fs.IntVar(&cfg.StartKeyPercent, "start-percent", cfg.StartKeyPercent,
		"percent of GetIndex operations anchored at a start key")
	fs.Uint64Var(&cfg.Seed, "seed", cfg.Seed, "generator seed (0 derives one from the clock)")
}

// emitFlags are shared by commands that can produce a regression test.
type emitFlags struct {
	out        string
	historyOut string
	stdout     bool
	verbose    bool
}

func bindEmitFlags(fs *flag.FlagSet, cfg *Config, ef *emitFlags) {
	fs.StringVar(&cfg.GeneratedDir, "generated-dir", cfg.GeneratedDir, "directory for generated regression tests")
	fs.StringVarP(&ef.out, "out", "o", "", "regression test name (default: derived from the current time)")
	fs.StringVar(&ef.historyOut, "history-out", "", "also write the failing history as JSONC to this path")
	fs.BoolVar(&ef.stdout, "stdout", false, "print the regression test instead of writing a file")
	fs.BoolVarP(&ef.verbose, "verbose", "v", false, "log progress to stderr")
}

func newLogger(o *IO, verbose bool) *slog.Logger {
	if !verbose {
		return slog.New(slog.DiscardHandler)
	}

	return slog.New(slog.NewTextHandler(o.Stderr(), &slog.HandlerOptions{Level: slog.LevelDebug}))
}
