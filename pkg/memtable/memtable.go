package memtable

import (
	"bytes"

	"github.com/zhangyunhao116/skipmap"

	"lsmkv/pkg/types"
)

type orderedSet = skipmap.FuncMap[[]byte, types.Entry]

// Memtable is the active write buffer: an ordered key→entry map with a
// capacity signal. It never rejects inserts; the owner decides when a full
// buffer is rotated into a segment.
type Memtable struct {
	capacity   int
	underlying *orderedSet
}

func New(capacity int) *Memtable {
	return &Memtable{
		capacity: capacity,
		underlying: skipmap.NewFunc[[]byte, types.Entry](func(a, b []byte) bool {
			return bytes.Compare(a, b) < 0
		}),
	}
}

// Insert upserts e by key. The memtable keeps its own copy.
func (mt *Memtable) Insert(e types.Entry) {
	owned := e.Clone()
	mt.underlying.Store(owned.Key, owned)
}

// Search returns a copy of the entry stored under key.
func (mt *Memtable) Search(key types.Key) (types.Entry, bool) {
	e, ok := mt.underlying.Load(key)
	if !ok {
		return types.Entry{}, false
	}
	return e.Clone(), true
}

func (mt *Memtable) IsFull() bool {
	return mt.Len() >= mt.capacity
}

func (mt *Memtable) Len() int {
	return mt.underlying.Len()
}

func (mt *Memtable) Capacity() int {
	return mt.capacity
}

// Iterate returns the buffered entries in ascending key order. The slice
// is a snapshot and stays valid after further inserts.
func (mt *Memtable) Iterate() []types.Entry {
	result := make([]types.Entry, 0, mt.Len())
	mt.underlying.Range(func(_ []byte, e types.Entry) bool {
		result = append(result, e.Clone())
		return true
	})
	return result
}

// Range calls fn for every entry with start <= key < end in ascending
// order until fn returns false. A nil bound is open.
func (mt *Memtable) Range(start, end types.Key, fn func(types.Entry) bool) {
	mt.underlying.Range(func(k []byte, e types.Entry) bool {
		if start != nil && bytes.Compare(k, start) < 0 {
			return true
		}
		if end != nil && bytes.Compare(k, end) >= 0 {
			return false
		}
		return fn(e.Clone())
	})
}
