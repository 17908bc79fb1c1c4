package persistence

import (
	"bytes"
	"sort"

	"lsmkv/pkg/types"
)

// IndexEntry anchors a block: the key of its first record and the offset
// at which that record starts.
type IndexEntry struct {
	Key    types.Key
	Offset int64
}

// sparseIndex holds one entry per block, ascending by key.
type sparseIndex []IndexEntry

// floor returns the entry with the greatest key <= key.
func (idx sparseIndex) floor(key types.Key) (IndexEntry, bool) {
	i := sort.Search(len(idx), func(i int) bool {
		return bytes.Compare(idx[i].Key, key) > 0
	})
	if i == 0 {
		return IndexEntry{}, false
	}
	return idx[i-1], true
}
