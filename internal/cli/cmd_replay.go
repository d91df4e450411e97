package cli

import (
	"context"
	"fmt"

	flag "github.com/spf13/pflag"

	"github.com/calvinalkan/smapcheck/internal/difftest"
)

// ReplayCmd returns the replay command.
func ReplayCmd(cfg Config, env map[string]string) *Command {
	fs := flag.NewFlagSet("replay", flag.ContinueOnError)

	var ef emitFlags

	shrink := fs.Bool("shrink", false, "minimize the failing history")
	emit := fs.Bool("emit", false, "write a regression test for the failing history")

	bindTargetFlags(fs, &cfg)
	bindEmitFlags(fs, &cfg, &ef)

	return &Command{
		Flags: fs,
		Usage: "replay [flags] <history-file>",
		Short: "Replay a saved history against a backend",
		Long: `Replay the operations of a JSONC history file (as written by --history-out)
against the reference model and the selected backend. Operations after the first
divergence are ignored.`,
		Examples: []string{
			"replay failing.jsonc",
			"replay --shrink --emit --backend tidwall failing.jsonc",
		},
		Exec: func(_ context.Context, o *IO, args []string) error {
			if len(args) != 1 {
				return fmt.Errorf("%w: expected exactly one history file", ErrMissingArgument)
			}

			return execReplay(o, cfg, env, args[0], ef, *shrink, *emit || ef.stdout)
		},
	}
}

func execReplay(o *IO, cfg Config, env map[string]string, path string, ef emitFlags, shrink, emit bool) error {
	err := cfg.Validate()
	if err != nil {
		return err
	}

	target, err := cfg.Target()
	if err != nil {
		return err
	}

	h, err := difftest.ReadHistoryFile(cfg.resolve(path))
	if err != nil {
		return err
	}

	runner := difftest.Runner{}

	prefix, c, dropped, failed := runner.FailingPrefix(target, h)
	if !failed {
		o.Printf("ok: %d operations match (backend=%s comparator=%s)\n", len(h), cfg.Backend, cfg.Comparator)

		return nil
	}

	if dropped > 0 {
		o.Warn(fmt.Sprintf("history continues past the divergence (%d operations ignored)", dropped),
			"save the history again with --history-out to trim it")
	}

	printComparison(o, c)

	if shrink {
		shrinker := difftest.NewShrinker(target, runner, newLogger(o, ef.verbose))

		minimized, ok := shrinker.Shrink(prefix)
		if ok {
			o.Printf("  minimized: %d -> %d operations, %d histories checked\n", len(prefix), len(minimized), shrinker.Checked())
			prefix = minimized
		}
	}

	o.Println()
	o.Println(prefix.String())

	if emit {
		err = emitRepro(o, cfg, env, target, prefix, ef, difftest.ReproMeta{OriginalLen: len(h)})
		if err != nil {
			return err
		}
	}

	err = writeHistory(o, cfg, prefix, ef, 0)
	if err != nil {
		return err
	}

	return ErrDivergence
}
