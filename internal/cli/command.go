package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	flag "github.com/spf13/pflag"
)

// Command is one smapcheck subcommand.
type Command struct {
	// Flags holds the command's own flags. Its name is ignored.
	Flags *flag.FlagSet

	// Usage follows "smapcheck" in help output. The first word is the
	// command name, e.g. "replay [flags] <history-file>".
	Usage string

	// Short is the one-line description in the command listing.
	Short string

	// Long is shown by "smapcheck <cmd> --help". Short is used when empty.
	Long string

	// Examples are printed verbatim under the description.
	Examples []string

	// Exec runs the command with the positional arguments left after
	// flag parsing.
	Exec func(ctx context.Context, o *IO, args []string) error
}

// Name returns the first word of Usage.
func (c *Command) Name() string {
	name, _, _ := strings.Cut(c.Usage, " ")

	return name
}

func (c *Command) summary() string {
	return fmt.Sprintf("  %-30s %s", c.Usage, c.Short)
}

func (c *Command) writeHelp(w io.Writer) {
	desc := c.Long
	if desc == "" {
		desc = c.Short
	}

	_, _ = fmt.Fprintf(w, "Usage: smapcheck %s\n\n%s\n", c.Usage, desc)

	if len(c.Examples) > 0 {
		_, _ = fmt.Fprint(w, "\nExamples:\n")

		for _, ex := range c.Examples {
			_, _ = fmt.Fprintf(w, "  smapcheck %s\n", ex)
		}
	}

	if c.Flags != nil && c.Flags.HasFlags() {
		_, _ = fmt.Fprint(w, "\nFlags:\n")
		_, _ = fmt.Fprint(w, c.Flags.FlagUsages())
	}
}

// Run parses args into the command's flags and executes it, returning the
// process exit code. Errors are printed here so they precede any warnings
// IO.Finish prints.
func (c *Command) Run(ctx context.Context, o *IO, args []string) int {
	c.Flags.SetOutput(io.Discard)
	c.Flags.Usage = func() {}

	err := c.Flags.Parse(args)

	switch {
	case errors.Is(err, flag.ErrHelp):
		c.writeHelp(o.Stdout())

		return exitOK
	case err != nil:
		o.ErrPrintln("error:", err)
		o.ErrPrintln()
		c.writeHelp(o.Stdout())

		return exitError
	}

	return exitCode(o, c.Exec(ctx, o, c.Flags.Args()))
}

func exitCode(o *IO, err error) int {
	switch {
	case err == nil:
		return exitOK
	case errors.Is(err, ErrDivergence):
		return exitDivergence
	default:
		o.ErrPrintln("error:", err)

		return exitError
	}
}
