package iterator

import "lsmkv/pkg/types"

// Iterator walks a sorted sequence of entries.
type Iterator interface {
	// Next advances to the next entry and reports whether there is one.
	Next() bool
	// Entry returns the current entry.
	Entry() types.Entry
	// Err returns the error that stopped iteration, if any.
	Err() error
	// Close releases resources.
	Close() error
}

// Slice iterates over entries already in memory.
type Slice struct {
	entries []types.Entry
	pos     int
}

func FromSlice(entries []types.Entry) *Slice {
	return &Slice{entries: entries, pos: -1}
}

func (s *Slice) Next() bool {
	if s.pos+1 >= len(s.entries) {
		s.pos = len(s.entries)
		return false
	}
	s.pos++
	return true
}

func (s *Slice) Entry() types.Entry {
	if s.pos < 0 || s.pos >= len(s.entries) {
		return types.Entry{}
	}
	return s.entries[s.pos]
}

func (s *Slice) Err() error { return nil }

func (s *Slice) Close() error { return nil }
