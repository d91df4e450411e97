package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"
	flag "github.com/spf13/pflag"
)

const replHistoryFile = ".smapcheck_history"

// ReplCmd returns the repl command.
func ReplCmd(cfg Config, in io.Reader, env map[string]string) *Command {
	fs := flag.NewFlagSet("repl", flag.ContinueOnError)

	bindTargetFlags(fs, &cfg)

	return &Command{
		Flags: fs,
		Usage: "repl [flags]",
		Short: "Drive the reference and a backend by hand",
		Long: `Start an interactive shell that applies each command to the reference model
and the selected backend and prints both results. Recorded operations can be
shrunk and printed as a regression test. When stdin is not a terminal, commands
are read one per line.`,
		Exec: func(ctx context.Context, o *IO, _ []string) error {
			err := cfg.Validate()
			if err != nil {
				return err
			}

			target, err := cfg.Target()
			if err != nil {
				return err
			}

			shell := NewShell(o, target, cfg.EffectiveCwd)

			if f, ok := in.(*os.File); ok && isTerminal(f.Fd()) {
				return runInteractive(ctx, o, shell, historyPath(env))
			}

			return runLines(ctx, shell, in)
		},
	}
}

// runLines feeds the shell from a non-interactive reader.
func runLines(ctx context.Context, shell *Shell, in io.Reader) error {
	if in == nil {
		return nil
	}

	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		if shell.Exec(scanner.Text()) {
			return nil
		}
	}

	err := scanner.Err()
	if err != nil {
		return fmt.Errorf("reading input: %w", err)
	}

	return nil
}

func runInteractive(ctx context.Context, o *IO, shell *Shell, histPath string) error {
	line := liner.NewLiner()
	defer line.Close()

	line.SetCtrlCAborts(true)
	line.SetCompleter(shell.completer)

	if f, err := os.Open(histPath); err == nil {
		_, _ = line.ReadHistory(f)
		_ = f.Close()
	}

	defer saveHistory(line, histPath)

	o.Printf("smapcheck repl (backend=%s)\n", shell.target.Backend.Name)
	o.Println("Type 'help' for available commands.")

	for ctx.Err() == nil {
		input, err := line.Prompt("smapcheck> ")
		if err != nil {
			if errors.Is(err, liner.ErrPromptAborted) || errors.Is(err, io.EOF) {
				o.Println()

				return nil
			}

			return fmt.Errorf("reading input: %w", err)
		}

		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}

		line.AppendHistory(input)

		if shell.Exec(input) {
			return nil
		}
	}

	return ctx.Err()
}

func historyPath(env map[string]string) string {
	home := env["HOME"]
	if home == "" {
		return ""
	}

	return filepath.Join(home, replHistoryFile)
}

// saveHistory persists command history to disk.
func saveHistory(line *liner.State, path string) {
	if path == "" {
		return
	}

	f, err := os.Create(path)
	if err != nil {
		return
	}

	_, _ = line.WriteHistory(f)
	_ = f.Close()
}
