package difftest

import "errors"

var (
	// ErrInvalidConfig wraps every configuration validation failure.
	ErrInvalidConfig = errors.New("invalid config")

	// ErrUnknownCommand is returned when decoding an operation with an
	// unrecognized command.
	ErrUnknownCommand = errors.New("unknown command")

	// ErrUnknownComparator is returned for a comparator name that is not
	// registered.
	ErrUnknownComparator = errors.New("unknown comparator")

	// ErrEmptyHistory is returned when a history file holds no operations.
	ErrEmptyHistory = errors.New("history is empty")

	// ErrHistoryFile is returned when a history file cannot be parsed.
	ErrHistoryFile = errors.New("invalid history file")

	// ErrNoConstructor is returned when rendering a repro for a backend
	// without a constructor expression.
	ErrNoConstructor = errors.New("backend has no constructor expression")

	// ErrApplyPanic marks a Result whose application panicked.
	ErrApplyPanic = errors.New("map implementation panicked")
)
