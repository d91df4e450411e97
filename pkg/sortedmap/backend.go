package sortedmap

import (
	"fmt"
	"slices"
	"strings"
	"sync"
)

// Backend names a Map implementation that can be constructed for any
// comparator over int keys and values.
type Backend struct {
	// Name is the identifier used in configuration and on the command line.
	Name string

	// New returns an empty map ordered by c.
	New func(c Comparator[int]) Map[int, int]

	// Constructor is the Go expression that builds the same map in
	// generated code, e.g. "sortedmap.NewBTree[int, int]". It is called
	// with the comparator expression as its only argument.
	Constructor string

	// Import is the import path of the package Constructor is qualified
	// with. Leave it empty for constructors in this package or ones that
	// need no import.
	Import string
}

var backendsMu sync.RWMutex

var backends = []Backend{
	{
		Name:        "btree",
		New:         func(c Comparator[int]) Map[int, int] { return NewBTree[int, int](c) },
		Constructor: "sortedmap.NewBTree[int, int]",
	},
	{
		Name:        "tidwall",
		New:         func(c Comparator[int]) Map[int, int] { return NewTidwall[int, int](c) },
		Constructor: "sortedmap.NewTidwall[int, int]",
	},
}

// Register adds b to the registry so it can be selected by name. It fails
// when the name is empty or already taken, or when b lacks New or a
// Constructor expression.
func Register(b Backend) error {
	switch {
	case b.Name == "":
		return fmt.Errorf("%w: backend needs a name", ErrInvalidBackend)
	case b.New == nil:
		return fmt.Errorf("%w: %q has no New function", ErrInvalidBackend, b.Name)
	case strings.TrimSpace(b.Constructor) == "":
		return fmt.Errorf("%w: %q has no constructor expression", ErrInvalidBackend, b.Name)
	}

	backendsMu.Lock()
	defer backendsMu.Unlock()

	if slices.ContainsFunc(backends, func(have Backend) bool { return have.Name == b.Name }) {
		return fmt.Errorf("%w: %q already registered", ErrInvalidBackend, b.Name)
	}

	backends = append(backends, b)

	return nil
}

// Backends returns the registered backends in a stable order.
func Backends() []Backend {
	backendsMu.RLock()
	defer backendsMu.RUnlock()

	return slices.Clone(backends)
}

// BackendNames returns the names of the registered backends.
func BackendNames() []string {
	backendsMu.RLock()
	defer backendsMu.RUnlock()

	names := make([]string, len(backends))
	for i, b := range backends {
		names[i] = b.Name
	}

	return names
}

// LookupBackend returns the backend registered under name.
func LookupBackend(name string) (Backend, error) {
	backendsMu.RLock()
	idx := slices.IndexFunc(backends, func(b Backend) bool { return b.Name == name })

	var b Backend
	if idx >= 0 {
		b = backends[idx]
	}
	backendsMu.RUnlock()

	if idx < 0 {
		return Backend{}, fmt.Errorf("%w: %q (known: %v)", ErrUnknownBackend, name, BackendNames())
	}

	return b, nil
}
