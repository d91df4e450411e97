package sortedmap

import "errors"

var (
	// ErrUnknownBackend is returned by LookupBackend for an unregistered name.
	ErrUnknownBackend = errors.New("sortedmap: unknown backend")

	// ErrInvalidBackend is returned by Register for an incomplete or
	// duplicate backend.
	ErrInvalidBackend = errors.New("sortedmap: invalid backend")

	// ErrComparatorContract is returned by CheckComparator when a comparator
	// is not a strict total order.
	ErrComparatorContract = errors.New("sortedmap: comparator is not a total order")
)
