package cli

import (
	"fmt"
	"strings"

	"github.com/calvinalkan/smapcheck/internal/difftest"
)

func printComparison(o *IO, c difftest.Comparison) {
	o.Printf("divergence: %s %s\n", c.Op, c.Verdict)
	o.Println("  reference:", c.Expected)
	o.Println("  subject:  ", c.Actual)

	if diff := c.Diff(); diff != "" {
		o.Println("  diff (-reference +subject):")

		for line := range strings.SplitSeq(strings.TrimRight(diff, "\n"), "\n") {
			o.Println("   ", line)
		}
	}
}

func printFailure(o *IO, f *difftest.Failure) {
	printComparison(o, f.Comparison)

	o.Printf("  key range %d, repeat %d\n", f.KeyRange, f.Repeat)
	o.Printf("  original: %d operations, generated in %s\n", len(f.Original), f.GenerateTime)

	if f.Checked > 0 {
		o.Printf("  minimized: %d operations, %d histories checked in %s\n", len(f.Minimized), f.Checked, f.ShrinkTime)
	}

	o.Println()
	o.Println(f.Minimized.String())
}

// emitRepro writes the regression test, or prints it in console mode.
func emitRepro(o *IO, cfg Config, env map[string]string, target difftest.Target, h difftest.History, ef emitFlags, meta difftest.ReproMeta) error {
	emitter := difftest.Emitter{
		Target:  target,
		Dir:     cfg.GeneratedDirAbs(),
		Console: ef.stdout || consoleOnly(env),
		Out:     o.Stdout(),
	}

	o.Println()

	path, err := emitter.Emit(h, ef.out, meta)
	if err != nil {
		return err
	}

	if path != "" {
		o.Println("repro:", path)
	}

	return nil
}

// writeHistory saves h as JSONC when --history-out was given.
func writeHistory(o *IO, cfg Config, h difftest.History, ef emitFlags, seed uint64) error {
	if ef.historyOut == "" {
		return nil
	}

	path := cfg.resolve(ef.historyOut)
	header := fmt.Sprintf("smapcheck history\nbackend: %s\ncomparator: %s", cfg.Backend, cfg.Comparator)

	if seed != 0 {
		header += fmt.Sprintf("\nseed: %d", seed)
	}

	err := difftest.WriteHistoryFile(path, h, header)
	if err != nil {
		return err
	}

	o.Println("history:", path)

	return nil
}
