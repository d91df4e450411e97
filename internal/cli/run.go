package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"

	flag "github.com/spf13/pflag"
)

// Exit codes.
const (
	exitOK         = 0
	exitError      = 1
	exitDivergence = 2
)

// Run is the main entry point. Returns exit code.
//
// A signal on sigCh cancels the command's context; a sweep stops before its
// next trial. sigCh may be nil.
func Run(in io.Reader, out io.Writer, errOut io.Writer, args []string, env map[string]string, sigCh <-chan os.Signal) int {
	global, err := parseGlobal(args)
	if errors.Is(err, flag.ErrHelp) || (err == nil && len(global.rest) == 0) {
		printUsage(out, defaultCommands())

		return exitOK
	}

	if err != nil {
		fprintln(errOut, "error:", err)

		return exitError
	}

	cfg, err := LoadConfig(LoadConfigInput{
		WorkDirOverride: global.workDir,
		ConfigPath:      global.configPath,
	})
	if err != nil {
		fprintln(errOut, "error:", err)

		return exitError
	}

	commands := []*Command{
		RunCmd(cfg, env),
		ReplayCmd(cfg, env),
		ReplCmd(cfg, in, env),
		PrintConfigCmd(cfg),
	}

	name := global.rest[0]

	idx := slices.IndexFunc(commands, func(c *Command) bool { return c.Name() == name })
	if idx < 0 {
		fprintln(errOut, "error: unknown command:", name)
		printUsage(errOut, commands)

		return exitError
	}

	ctx, stop := cancelOnSignal(context.Background(), sigCh)
	defer stop()

	o := NewIO(out, errOut)

	code := commands[idx].Run(ctx, o, global.rest[1:])

	// A failing command keeps its own exit code; warnings only turn success
	// into failure.
	warned := o.Finish()
	if code != exitOK {
		return code
	}

	return warned
}

// cancelOnSignal derives a context that is canceled on the first value from
// sigCh. The returned stop function releases the watcher goroutine.
func cancelOnSignal(parent context.Context, sigCh <-chan os.Signal) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)
	if sigCh == nil {
		return ctx, cancel
	}

	done := make(chan struct{})

	go func() {
		defer close(done)

		select {
		case <-sigCh:
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx, func() {
		cancel()
		<-done
	}
}

type globalOptions struct {
	workDir    string
	configPath string
	rest       []string
}

// parseGlobal parses the options that precede the command name. Parsing stops
// at the first positional argument so command flags reach the command.
func parseGlobal(args []string) (globalOptions, error) {
	var opts globalOptions

	fs := flag.NewFlagSet("smapcheck", flag.ContinueOnError)
	fs.SetInterspersed(false)
	fs.SetOutput(io.Discard)
	fs.Usage = func() {}

	fs.StringVarP(&opts.workDir, "cwd", "C", "", "run as if started in `dir`")
	fs.StringVarP(&opts.configPath, "config", "c", "", "use the config `file`")

	if len(args) > 0 {
		args = args[1:]
	}

	err := fs.Parse(args)
	if err != nil {
		return globalOptions{}, err
	}

	opts.rest = fs.Args()

	return opts, nil
}

func defaultCommands() []*Command {
	cfg := DefaultConfig()

	return []*Command{
		RunCmd(cfg, nil),
		ReplayCmd(cfg, nil),
		ReplCmd(cfg, nil, nil),
		PrintConfigCmd(cfg),
	}
}

func fprintln(w io.Writer, a ...any) {
	_, _ = fmt.Fprintln(w, a...)
}

func printUsage(w io.Writer, commands []*Command) {
	fprintln(w, "smapcheck - differential tester for sorted maps")
	fprintln(w)
	fprintln(w, "Usage: smapcheck [options] <command> [args]")
	fprintln(w)
	fprintln(w, "Options:")
	fprintln(w, "  -C, --cwd <dir>       Run as if started in <dir>")
	fprintln(w, "  -c, --config <file>   Use specified config file")
	fprintln(w)
	fprintln(w, "Commands:")

	for _, cmd := range commands {
		fprintln(w, cmd.summary())
	}

	fprintln(w)
	fprintln(w, "Run 'smapcheck <command> --help' for command flags.")
	fprintln(w, "Exit codes: 0 no divergence, 1 error, 2 divergence found.")
}
