package iterator

import (
	"bytes"
	"container/heap"
	"errors"

	"lsmkv/pkg/types"
)

// Merging combines sorted iterators into one sorted stream with one entry
// per key. Sources are given newest first; when several sources hold the
// same key, the entry from the newest source wins.
type Merging struct {
	sources []Iterator
	h       mergeHeap
	started bool
	cur     types.Entry
	err     error
}

func Merge(sources ...Iterator) *Merging {
	return &Merging{sources: sources}
}

func (m *Merging) Next() bool {
	if m.err != nil {
		return false
	}
	if !m.started {
		m.started = true
		for i, src := range m.sources {
			if !m.push(i, src) {
				return false
			}
		}
	}

	if m.h.Len() == 0 {
		m.cur = types.Entry{}
		return false
	}

	top := heap.Pop(&m.h).(head)
	m.cur = top.entry
	if !m.push(top.source, m.sources[top.source]) {
		return false
	}

	// drop older versions of the same key
	for m.h.Len() > 0 && bytes.Equal(m.h[0].entry.Key, m.cur.Key) {
		shadowed := heap.Pop(&m.h).(head)
		if !m.push(shadowed.source, m.sources[shadowed.source]) {
			return false
		}
	}

	return true
}

func (m *Merging) push(i int, src Iterator) bool {
	if src.Next() {
		heap.Push(&m.h, head{entry: src.Entry(), source: i})
		return true
	}
	if err := src.Err(); err != nil {
		m.err = err
		m.cur = types.Entry{}
		return false
	}
	return true
}

func (m *Merging) Entry() types.Entry { return m.cur }

func (m *Merging) Err() error { return m.err }

func (m *Merging) Close() error {
	var errs []error
	for _, src := range m.sources {
		errs = append(errs, src.Close())
	}
	return errors.Join(errs...)
}

type head struct {
	entry  types.Entry
	source int
}

type mergeHeap []head

func (h mergeHeap) Len() int { return len(h) }

func (h mergeHeap) Less(i, j int) bool {
	if c := bytes.Compare(h[i].entry.Key, h[j].entry.Key); c != 0 {
		return c < 0
	}
	return h[i].source < h[j].source
}

func (h mergeHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *mergeHeap) Push(x any) { *h = append(*h, x.(head)) }

func (h *mergeHeap) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}
