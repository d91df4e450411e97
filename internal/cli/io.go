package cli

import (
	"fmt"
	"io"
	"slices"
)

// IO is the output side of a command.
//
// Warnings are collected and printed to stderr twice: before the first
// stdout write and again from Finish. Long reports piped through head or
// tail keep them either way.
type IO struct {
	out    io.Writer
	errOut io.Writer

	warnings []warning
	flushed  int
}

type warning struct {
	issue  string
	action string
}

func (w warning) String() string {
	return "warning: " + w.issue + ": " + w.action
}

// NewIO creates an IO writing to out and errOut.
func NewIO(out, errOut io.Writer) *IO {
	return &IO{out: out, errOut: errOut}
}

// Warn records a warning. issue says what happened and action what to do
// about it. Repeated identical warnings are kept once. Any warning makes an
// otherwise successful command exit 1.
func (o *IO) Warn(issue string, action string) {
	w := warning{issue: issue, action: action}
	if slices.Contains(o.warnings, w) {
		return
	}

	o.warnings = append(o.warnings, w)
}

// Println writes to stdout.
func (o *IO) Println(a ...any) {
	_, _ = fmt.Fprintln(o.Stdout(), a...)
}

// Printf writes formatted output to stdout.
func (o *IO) Printf(format string, a ...any) {
	_, _ = fmt.Fprintf(o.Stdout(), format, a...)
}

// ErrPrintln writes to stderr.
func (o *IO) ErrPrintln(a ...any) {
	_, _ = fmt.Fprintln(o.errOut, a...)
}

// Stdout returns the stdout writer after printing pending warnings.
func (o *IO) Stdout() io.Writer {
	o.flushPending()

	return o.out
}

// Stderr returns the stderr writer.
func (o *IO) Stderr() io.Writer {
	return o.errOut
}

// Finish prints every warning once more and returns exitError if there were
// any.
func (o *IO) Finish() int {
	o.flushPending()

	if len(o.warnings) == 0 {
		return exitOK
	}

	for _, w := range o.warnings {
		_, _ = fmt.Fprintln(o.errOut, w)
	}

	return exitError
}

// flushPending prints warnings recorded since the last flush.
func (o *IO) flushPending() {
	for _, w := range o.warnings[o.flushed:] {
		_, _ = fmt.Fprintln(o.errOut, w)
	}

	o.flushed = len(o.warnings)
}
