package cli

import "errors"

var (
	ErrConfigFileNotFound = errors.New("config file not found")
	ErrConfigFileRead     = errors.New("cannot read config file")
	ErrConfigInvalid      = errors.New("invalid config file")
	ErrMissingArgument    = errors.New("missing argument")

	// ErrDivergence is returned by commands that found a failing history.
	// It maps to exit code 2 and is not printed as an error.
	ErrDivergence = errors.New("divergence found")
)
