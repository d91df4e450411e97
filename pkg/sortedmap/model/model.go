// Package model provides a deliberately simple, in-memory reference
// implementation of sortedmap.Map.
//
// The model is intentionally easy to audit: entries live in one slice kept
// sorted by the comparator, lookups binary search it, and every rank query
// is plain slice indexing. It favors clarity over performance and is the
// oracle the differential tests trust.
package model

import (
	"slices"

	"github.com/calvinalkan/smapcheck/pkg/sortedmap"
)

// Entry is one key/value pair in comparator order.
type Entry struct {
	Key   int
	Value int
}

// Map is the reference sorted map over int keys and values.
type Map struct {
	cmp     sortedmap.Comparator[int]
	entries []Entry
}

var _ sortedmap.Map[int, int] = (*Map)(nil)

// New returns an empty reference map ordered by c.
func New(c sortedmap.Comparator[int]) *Map {
	if c == nil {
		panic("model: comparator is nil")
	}

	return &Map{cmp: c}
}

// Get returns the value stored under key.
func (m *Map) Get(key int) (int, bool) {
	pos := m.lowerBound(key)
	if !m.keyAt(pos, key) {
		return 0, false
	}

	return m.entries[pos].Value, true
}

// Set inserts or overwrites key. It reports whether the key is new.
func (m *Map) Set(key, value int) bool {
	pos := m.lowerBound(key)
	if m.keyAt(pos, key) {
		m.entries[pos].Value = value

		return false
	}

	m.entries = append(m.entries, Entry{})
	copy(m.entries[pos+1:], m.entries[pos:])
	m.entries[pos] = Entry{Key: key, Value: value}

	return true
}

// Remove deletes key and reports whether it was present.
func (m *Map) Remove(key int) bool {
	pos := m.lowerBound(key)
	if !m.keyAt(pos, key) {
		return false
	}

	m.entries = append(m.entries[:pos], m.entries[pos+1:]...)

	return true
}

// Size returns the number of keys.
func (m *Map) Size() int {
	return len(m.entries)
}

// GetIndex returns the entry at a rank in comparator order. See
// sortedmap.Map for the exact contract.
func (m *Map) GetIndex(index int, reversed bool, start *int) (int, int, bool) {
	size := len(m.entries)
	if index < 0 || index >= size {
		return 0, 0, false
	}

	var pos int

	switch {
	case start == nil && !reversed:
		pos = index
	case start == nil && reversed:
		pos = size - index - 1
	case !reversed:
		pos = m.lowerBound(*start) + index
	default:
		bound := m.lowerBound(*start)
		if !m.keyAt(bound, *start) {
			bound--
		}

		pos = bound - index
	}

	if pos < 0 || pos >= size {
		return 0, 0, false
	}

	return m.entries[pos].Key, m.entries[pos].Value, true
}

// Entries returns a copy of all entries in comparator order.
func (m *Map) Entries() []Entry {
	out := make([]Entry, len(m.entries))
	copy(out, m.entries)

	return out
}

// lowerBound returns the position of the first entry whose key is not less
// than key, or len(entries) if there is none.
func (m *Map) lowerBound(key int) int {
	pos, _ := slices.BinarySearchFunc(m.entries, key, func(e Entry, k int) int {
		return m.cmp(e.Key, k)
	})

	return pos
}

func (m *Map) keyAt(pos, key int) bool {
	return pos < len(m.entries) && m.cmp(m.entries[pos].Key, key) == 0
}
