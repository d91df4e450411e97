package difftest

import (
	"log/slog"
	"slices"
)

// Shrinker minimizes failing histories by delta debugging.
//
// The search is first-success and depth first: from the current history it
// walks Candidates in order, moves to the first candidate that still fails,
// and starts over from there. It stops when no candidate of the current
// history fails. The result is locally minimal under that candidate order,
// not necessarily the shortest failing history.
type Shrinker struct {
	target  Target
	runner  Runner
	logger  *slog.Logger
	checked int
}

// NewShrinker returns a Shrinker replaying histories against target.
// A nil logger discards progress output.
func NewShrinker(target Target, runner Runner, logger *slog.Logger) *Shrinker {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	return &Shrinker{target: target, runner: runner, logger: logger}
}

// Checked returns how many histories have been replayed so far.
func (s *Shrinker) Checked() int {
	return s.checked
}

// Fails replays h from empty maps and reports whether its first divergence
// is its final operation, i.e. the replay records exactly h. A failing
// integrity check qualifies only as the final operation directly after its
// write.
func (s *Shrinker) Fails(h History) bool {
	s.checked++

	recorded, _, _, failed := s.runner.FailingPrefix(s.target, h)

	return failed && slices.Equal(recorded, h)
}

// Shrink returns a shorter history whose final operation diverges. ok is
// false when h does not fail anywhere, in which case the returned history
// is nil.
//
// h is first cut at its first divergence, with the failing integrity check
// appended if one exposed it. Interior reads are then pruned; if the pruned
// history stops failing, shrinking starts from the cut history.
func (s *Shrinker) Shrink(h History) (History, bool) {
	s.checked++

	start, _, _, failed := s.runner.FailingPrefix(s.target, h)
	if !failed {
		return nil, false
	}

	if !slices.Equal(start, h) {
		s.logger.Debug("cut at divergence", "from", len(h), "to", len(start))
	}

	current := start
	if pruned := PruneReads(start); len(pruned) < len(start) && s.Fails(pruned) {
		s.logger.Debug("pruned reads", "from", len(start), "to", len(pruned))
		current = pruned
	}

	for {
		next, found := s.firstFailing(current)
		if !found {
			return current.Clone(), true
		}

		s.logger.Debug("shrunk", "from", len(current), "to", len(next), "checked", s.checked)
		current = next
	}
}

func (s *Shrinker) firstFailing(h History) (History, bool) {
	it := Candidates(h)
	for candidate, ok := it.Next(); ok; candidate, ok = it.Next() {
		if s.Fails(candidate) {
			return candidate, true
		}
	}

	return nil, false
}
