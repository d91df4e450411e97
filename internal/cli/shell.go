package cli

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/calvinalkan/smapcheck/internal/difftest"
	"github.com/calvinalkan/smapcheck/pkg/sortedmap"
)

// Shell runs sorted map commands typed by a user against a reference and a
// subject side by side. Every command goes through the differential runner
// and is recorded, so a divergence found by hand can be shrunk and turned
// into a regression test like one found by a sweep.
type Shell struct {
	o       *IO
	dir     string
	target  difftest.Target
	runner  difftest.Runner
	ref     sortedmap.Map[int, int]
	sub     sortedmap.Map[int, int]
	history difftest.History
}

// NewShell returns a shell with empty maps. Relative paths given to save
// are resolved against dir.
func NewShell(o *IO, target difftest.Target, dir string) *Shell {
	s := &Shell{o: o, dir: dir, target: target}
	s.reset()

	return s
}

var shellCommands = []string{
	"get", "set", "remove", "size", "index",
	"dump", "check", "history", "shrink", "repro", "save",
	"reset", "help", "exit", "quit",
}

// Exec runs one input line. It returns true when the user asked to quit.
func (s *Shell) Exec(line string) bool {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false
	}

	cmd, args := strings.ToLower(fields[0]), fields[1:]

	var err error

	switch cmd {
	case "exit", "quit", "q":
		return true
	case "help", "?":
		s.printHelp()
	case "get":
		err = s.keyOp(args, difftest.Get)
	case "set", "put":
		err = s.cmdSet(args)
	case "remove", "rm", "del":
		err = s.keyOp(args, difftest.Remove)
	case "size", "len":
		s.apply(difftest.Size())
	case "index", "at":
		err = s.cmdIndex(args)
	case "dump", "ls":
		s.cmdDump()
	case "check":
		s.cmdCheck()
	case "history":
		s.o.Println(s.history.String())
	case "shrink":
		s.cmdShrink()
	case "repro":
		err = s.cmdRepro()
	case "save":
		err = s.cmdSave(args)
	case "reset":
		s.reset()
		s.o.Println("maps and history cleared")
	default:
		s.o.Printf("unknown command: %s (type 'help' for commands)\n", cmd)
	}

	if err != nil {
		s.o.Println("error:", err)
	}

	return false
}

func (s *Shell) reset() {
	s.ref, s.sub = s.target.NewPair()
	s.history = nil
}

func (s *Shell) apply(op difftest.Operation) {
	c := s.runner.Step(&s.history, s.ref, s.sub, op)

	if c.Op != op {
		// An integrity check after the write exposed the divergence.
		s.o.Printf("%s matched, then\n", op)
	}

	if !c.Verdict.Failed() {
		s.o.Printf("%s = %s\n", c.Op, c.Expected)

		return
	}

	s.o.Println("DIVERGENCE")
	printComparison(s.o, c)
}

func (s *Shell) keyOp(args []string, op func(int) difftest.Operation) error {
	nums, err := parseInts(args, 1, 1)
	if err != nil {
		return err
	}

	s.apply(op(nums[0]))

	return nil
}

func (s *Shell) cmdSet(args []string) error {
	nums, err := parseInts(args, 2, 2)
	if err != nil {
		return err
	}

	s.apply(difftest.Set(nums[0], nums[1]))

	return nil
}

// cmdIndex accepts "index <i> [fwd|rev] [start]".
func (s *Shell) cmdIndex(args []string) error {
	if len(args) == 0 || len(args) > 3 {
		return fmt.Errorf("%w: usage: index <i> [fwd|rev] [start]", ErrMissingArgument)
	}

	index, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid index %q", args[0])
	}

	var reversed bool

	if len(args) > 1 {
		switch strings.ToLower(args[1]) {
		case "rev", "reverse", "reversed", "true":
			reversed = true
		case "fwd", "forward", "false":
		default:
			return fmt.Errorf("invalid direction %q (want fwd or rev)", args[1])
		}
	}

	if len(args) == 3 {
		start, err := strconv.Atoi(args[2])
		if err != nil {
			return fmt.Errorf("invalid start key %q", args[2])
		}

		s.apply(difftest.GetIndexFrom(index, reversed, start))

		return nil
	}

	s.apply(difftest.GetIndex(index, reversed))

	return nil
}

// cmdDump lists both maps by forward rank without recording anything.
func (s *Shell) cmdDump() {
	n := max(s.ref.Size(), s.sub.Size())
	if n == 0 {
		s.o.Println("(empty)")

		return
	}

	s.o.Printf("%-6s %-20s %-20s\n", "rank", "reference", "subject")

	for i := range n {
		want := difftest.Apply(s.ref, difftest.GetIndex(i, false))
		got := difftest.Apply(s.sub, difftest.GetIndex(i, false))

		marker := ""
		if want != got {
			marker = "  <-"
		}

		s.o.Printf("%-6d %-20s %-20s%s\n", i, entryString(want), entryString(got), marker)
	}
}

func entryString(r difftest.Result) string {
	switch {
	case r.Err != nil:
		return "panic"
	case !r.Found:
		return "-"
	default:
		return fmt.Sprintf("%d=%d", r.Key, r.Value)
	}
}

func (s *Shell) cmdCheck() {
	c, failed := s.runner.CheckState(&s.history, s.ref, s.sub)
	if !failed {
		s.o.Printf("ok: both maps hold the same %d entries\n", s.ref.Size())

		return
	}

	s.o.Println("DIVERGENCE")
	printComparison(s.o, c)
}

func (s *Shell) cmdShrink() {
	shrinker := difftest.NewShrinker(s.target, s.runner, nil)

	minimized, ok := shrinker.Shrink(s.history)
	if !ok {
		s.o.Println("history matches; nothing to shrink")

		return
	}

	s.o.Printf("minimized %d -> %d operations (%d histories checked)\n", len(s.history), len(minimized), shrinker.Checked())
	s.o.Println(minimized.String())
}

// cmdRepro prints a regression test for the minimized history.
func (s *Shell) cmdRepro() error {
	h := s.history

	if minimized, ok := difftest.NewShrinker(s.target, s.runner, nil).Shrink(h); ok {
		h = minimized
	}

	if len(h) == 0 {
		s.o.Println("history is empty")

		return nil
	}

	src, err := difftest.Emitter{Target: s.target}.Render("repl", h, difftest.ReproMeta{OriginalLen: len(s.history)})
	if err != nil {
		return err
	}

	s.o.Printf("%s", src)

	return nil
}

func (s *Shell) cmdSave(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("%w: usage: save <path>", ErrMissingArgument)
	}

	if len(s.history) == 0 {
		return difftest.ErrEmptyHistory
	}

	path := args[0]
	if !filepath.IsAbs(path) {
		path = filepath.Join(s.dir, path)
	}

	err := difftest.WriteHistoryFile(path, s.history, "smapcheck repl session")
	if err != nil {
		return err
	}

	s.o.Println("saved", len(s.history), "operations to", path)

	return nil
}

func (s *Shell) printHelp() {
	s.o.Println("Commands:")
	s.o.Println("  get <key>                    Look up a key")
	s.o.Println("  set <key> <value>            Insert or update a key")
	s.o.Println("  remove <key>                 Delete a key")
	s.o.Println("  size                         Count entries")
	s.o.Println("  index <i> [fwd|rev] [start]  Entry at rank i, optionally from a start key")
	s.o.Println("  dump                         List both maps side by side")
	s.o.Println("  check                        Compare the full contents of both maps")
	s.o.Println("  history                      Show recorded operations")
	s.o.Println("  shrink                       Minimize the recorded history")
	s.o.Println("  repro                        Print a regression test for the history")
	s.o.Println("  save <path>                  Write the history as JSONC")
	s.o.Println("  reset                        Start over with empty maps")
	s.o.Println("  help                         Show this help")
	s.o.Println("  exit / quit / q              Exit")
}

// completer provides tab completion for commands.
func (s *Shell) completer(line string) []string {
	var completions []string

	lower := strings.ToLower(line)
	for _, cmd := range shellCommands {
		if strings.HasPrefix(cmd, lower) {
			completions = append(completions, cmd)
		}
	}

	return completions
}

func parseInts(args []string, lo, hi int) ([]int, error) {
	if len(args) < lo || len(args) > hi {
		return nil, fmt.Errorf("%w: expected %d integer argument(s), got %d", ErrMissingArgument, lo, len(args))
	}

	nums := make([]int, len(args))

	for i, a := range args {
		n, err := strconv.Atoi(a)
		if err != nil {
			return nil, fmt.Errorf("invalid integer %q", a)
		}

		nums[i] = n
	}

	return nums, nil
}
