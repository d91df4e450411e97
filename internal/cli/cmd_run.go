package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	flag "github.com/spf13/pflag"

	"github.com/calvinalkan/smapcheck/internal/difftest"
)

// RunCmd returns the run command.
func RunCmd(cfg Config, env map[string]string) *Command {
	fs := flag.NewFlagSet("run", flag.ContinueOnError)

	var ef emitFlags

	noShrink := fs.Bool("no-shrink", false, "report the failing history without minimizing it")

	bindSweepFlags(fs, &cfg)
	bindEmitFlags(fs, &cfg, &ef)

	return &Command{
		Flags: fs,
		Usage: "run [flags]",
		Short: "Sweep random operations against a backend",
		Long: `Run random operations against the reference model and the selected backend,
comparing every result. Key ranges are swept in order with the configured number
of trials each. The first divergence stops the sweep: its history is minimized
and written as a Go regression test (printed instead when CI is set or with --stdout).`,
		Examples: []string{
			"run --backend tidwall --comparator descending",
			"run --key-range 5 --key-range 500 --repeats 20 --seed 42",
			"run --stdout --history-out failing.jsonc",
		},
		Exec: func(ctx context.Context, o *IO, _ []string) error {
			return execRun(ctx, o, cfg, env, ef, *noShrink)
		},
	}
}

func execRun(ctx context.Context, o *IO, cfg Config, env map[string]string, ef emitFlags, noShrink bool) error {
	err := cfg.Validate()
	if err != nil {
		return err
	}

	target, err := cfg.Target()
	if err != nil {
		return err
	}

	err = checkComparator(target, cfg.KeyRanges)
	if err != nil {
		return err
	}

	sweep := cfg.SweepConfig()
	sweep.NoShrink = noShrink

	if sweep.Seed == 0 {
		sweep.Seed = uint64(time.Now().UnixNano())
	}

	runID, err := uuid.NewV7()
	if err != nil {
		return fmt.Errorf("creating run id: %w", err)
	}

	logger := newLogger(o, ef.verbose).With("run", runID.String())

	o.Printf("smapcheck: backend=%s comparator=%s seed=%d\n", cfg.Backend, cfg.Comparator, sweep.Seed)

	report, failure, err := difftest.Sweep(ctx, sweep, target, logger)
	if err != nil {
		return err
	}

	if failure == nil {
		o.Printf("ok: %d trials, %d operations in %s\n", report.Trials, report.Ops, report.Duration.Round(time.Millisecond))

		for _, r := range report.Ranges {
			o.Printf("  key range %d: %d trials, %d operations in %s\n", r.KeyRange, r.Trials, r.Ops, r.Duration.Round(time.Millisecond))
		}

		return nil
	}

	printFailure(o, failure)

	err = emitRepro(o, cfg, env, target, failure.Minimized, ef, difftest.ReproMeta{
		RunID:       runID.String(),
		Seed:        sweep.Seed,
		OriginalLen: len(failure.Original),
	})
	if err != nil {
		return err
	}

	err = writeHistory(o, cfg, failure.Minimized, ef, sweep.Seed)
	if err != nil {
		return err
	}

	return ErrDivergence
}
