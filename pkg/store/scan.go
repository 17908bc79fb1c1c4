package store

import (
	"bytes"
	"log/slog"

	"lsmkv/pkg/dberrors"
	"lsmkv/pkg/iterator"
	"lsmkv/pkg/types"
)

// ScanOptions bound a range scan. Start is inclusive, End exclusive; nil
// bounds are open. Limit 0 means no limit.
type ScanOptions struct {
	Start types.Key
	End   types.Key
	Limit int
}

// Scan calls fn for the newest version of every key in range, in ascending
// key order, until fn returns false.
func (s *Store) Scan(opts ScanOptions, fn func(types.Entry) bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return dberrors.ErrClosed
	}

	var buffered []types.Entry
	s.mt.Range(opts.Start, opts.End, func(e types.Entry) bool {
		buffered = append(buffered, e)
		return true
	})

	// newest source first: memtable, then segments by descending id
	sources := make([]iterator.Iterator, 0, len(s.ids)+1)
	sources = append(sources, iterator.FromSlice(buffered))
	for i := len(s.ids) - 1; i >= 0; i-- {
		table := s.segments[s.ids[i]]
		if opts.Start != nil {
			sources = append(sources, table.Seek(opts.Start))
		} else {
			sources = append(sources, table.Iterate())
		}
	}

	merged := iterator.Merge(sources...)
	defer func() {
		if err := merged.Close(); err != nil {
			slog.Warn("failed to close scan iterators", "error", err)
		}
	}()

	n := 0
	for merged.Next() {
		e := merged.Entry()
		if opts.Start != nil && bytes.Compare(e.Key, opts.Start) < 0 {
			continue
		}
		if opts.End != nil && bytes.Compare(e.Key, opts.End) >= 0 {
			break
		}
		if !fn(e) {
			return nil
		}
		n++
		if opts.Limit > 0 && n >= opts.Limit {
			return nil
		}
	}

	if err := merged.Err(); err != nil {
		return &dberrors.OpError{Op: "scan", Err: err}
	}
	return nil
}
