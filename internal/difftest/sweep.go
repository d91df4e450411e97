package difftest

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/calvinalkan/smapcheck/pkg/sortedmap"
)

// SweepConfig configures Sweep.
type SweepConfig struct {
	// Repeats is the number of trials per key range.
	Repeats int

	// OpsPerRepeat is the number of generated operations per trial. It also
	// wraps the value counter.
	OpsPerRepeat int

	// KeyRanges are swept in order.
	KeyRanges []int

	// OutOfBoundsPercent widens generated GetIndex indexes past the size.
	OutOfBoundsPercent int

	// StartKeyPercent is the share of GetIndex operations anchored at a key.
	StartKeyPercent int

	// Seed seeds the operation generator.
	Seed uint64

	// NoShrink reports the unminimized history.
	NoShrink bool

	// CompareStateEachRepeat compares the full contents of both maps at the
	// end of every trial.
	CompareStateEachRepeat bool
}

// DefaultSweepConfig returns the defaults used by the smapcheck CLI.
func DefaultSweepConfig() SweepConfig {
	return SweepConfig{
		Repeats:                10,
		OpsPerRepeat:           2000,
		KeyRanges:              []int{10, 100, 1000},
		OutOfBoundsPercent:     10,
		StartKeyPercent:        50,
		CompareStateEachRepeat: true,
	}
}

// Validate rejects configurations that would run no trials or draw from
// empty ranges.
func (c SweepConfig) Validate() error {
	switch {
	case c.Repeats <= 0:
		return fmt.Errorf("%w: repeats must be > 0, got %d", ErrInvalidConfig, c.Repeats)
	case c.OpsPerRepeat <= 0:
		return fmt.Errorf("%w: ops per repeat must be > 0, got %d", ErrInvalidConfig, c.OpsPerRepeat)
	case len(c.KeyRanges) == 0:
		return fmt.Errorf("%w: key ranges must not be empty", ErrInvalidConfig)
	case c.OutOfBoundsPercent < 0:
		return fmt.Errorf("%w: out of bounds percent must be >= 0, got %d", ErrInvalidConfig, c.OutOfBoundsPercent)
	case c.StartKeyPercent < 0 || c.StartKeyPercent > 100:
		return fmt.Errorf("%w: start key percent must be within 0-100, got %d", ErrInvalidConfig, c.StartKeyPercent)
	}

	for _, r := range c.KeyRanges {
		if r <= 0 {
			return fmt.Errorf("%w: key range must be > 0, got %d", ErrInvalidConfig, r)
		}
	}

	return nil
}

// Failure describes the first divergence a sweep found.
type Failure struct {
	KeyRange int
	Repeat   int

	// Comparison is the failing comparison as first observed.
	Comparison Comparison

	// Original is the full history of the failing trial.
	Original History

	// Minimized is the shrunk history, or Original when shrinking is off.
	Minimized History

	// Checked is the number of histories the shrinker replayed.
	Checked int

	GenerateTime time.Duration
	ShrinkTime   time.Duration
}

// RangeReport summarizes the trials of one key range.
type RangeReport struct {
	KeyRange int
	Trials   int
	Ops      int
	Duration time.Duration
}

// Report summarizes a sweep.
type Report struct {
	Seed     uint64
	Trials   int
	Ops      int
	Duration time.Duration
	Ranges   []RangeReport
}

// Sweep runs cfg.Repeats trials for every key range against target. Each
// trial starts from an empty reference and subject and applies
// cfg.OpsPerRepeat generated operations. The first divergence stops the
// sweep; its history is shrunk and returned as a Failure.
//
// ctx is checked between trials. A trial in progress always runs to
// completion.
func Sweep(ctx context.Context, cfg SweepConfig, target Target, logger *slog.Logger) (Report, *Failure, error) {
	err := cfg.Validate()
	if err != nil {
		return Report{}, nil, err
	}

	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	gen := NewOpGenerator(OpGenConfig{
		ValueModulus:       cfg.OpsPerRepeat,
		OutOfBoundsPercent: cfg.OutOfBoundsPercent,
		StartKeyPercent:    cfg.StartKeyPercent,
	}, cfg.Seed)

	runner := Runner{}
	report := Report{Seed: cfg.Seed}
	sweepStart := time.Now()

	for _, keyRange := range cfg.KeyRanges {
		gen.SetKeyRange(keyRange)

		rangeReport := RangeReport{KeyRange: keyRange}
		rangeStart := time.Now()

		for repeat := range cfg.Repeats {
			err := ctx.Err()
			if err != nil {
				return report, nil, err
			}

			trialStart := time.Now()
			ref, sub := target.NewPair()
			history := make(History, 0, cfg.OpsPerRepeat)

			failed, c := runTrial(runner, gen, &history, ref, sub, cfg)

			rangeReport.Trials++
			rangeReport.Ops += len(history)

			if !failed {
				continue
			}

			report.add(rangeReport, time.Since(rangeStart))
			report.Duration = time.Since(sweepStart)

			failure := &Failure{
				KeyRange:     keyRange,
				Repeat:       repeat,
				Comparison:   c,
				Original:     history,
				Minimized:    history,
				GenerateTime: time.Since(trialStart),
			}

			logger.Info("divergence",
				"op", c.Op.String(),
				"verdict", c.Verdict.String(),
				"key_range", keyRange,
				"repeat", repeat,
				"history_len", len(history))

			if !cfg.NoShrink {
				shrinkStart := time.Now()
				shrinker := NewShrinker(target, runner, logger)

				minimized, ok := shrinker.Shrink(history)
				if ok {
					failure.Minimized = minimized
				}

				failure.Checked = shrinker.Checked()
				failure.ShrinkTime = time.Since(shrinkStart)

				logger.Info("shrunk",
					"from", len(history),
					"to", len(failure.Minimized),
					"checked", failure.Checked,
					"duration", failure.ShrinkTime)
			}

			return report, failure, nil
		}

		report.add(rangeReport, time.Since(rangeStart))

		logger.Debug("key range passed",
			"key_range", keyRange,
			"trials", rangeReport.Trials,
			"ops", rangeReport.Ops,
			"duration", rangeReport.Duration)
	}

	report.Duration = time.Since(sweepStart)

	return report, nil, nil
}

// runTrial applies cfg.OpsPerRepeat generated operations and, if enabled,
// a final full-state comparison.
func runTrial(runner Runner, gen *OpGenerator, h *History, ref, sub sortedmap.Map[int, int], cfg SweepConfig) (bool, Comparison) {
	for range cfg.OpsPerRepeat {
		op := gen.Next(ref.Size())

		c := runner.Step(h, ref, sub, op)
		if c.Verdict.Failed() {
			return true, c
		}
	}

	if cfg.CompareStateEachRepeat {
		c, failed := runner.CheckState(h, ref, sub)
		if failed {
			return true, c
		}
	}

	return false, Comparison{}
}

func (r *Report) add(rr RangeReport, d time.Duration) {
	rr.Duration = d
	r.Ranges = append(r.Ranges, rr)
	r.Trials += rr.Trials
	r.Ops += rr.Ops
}
