package persistence

import (
	"math"

	"github.com/cespare/xxhash/v2"
)

// bitsPerKey gives roughly a 1% false positive rate.
const bitsPerKey = 10

// bloomFilter answers "definitely absent" for keys of one segment. Probe
// positions come from one xxhash digest split into two halves
// (h1 + i*h2), so each key is hashed once.
type bloomFilter struct {
	bits []uint64
	m    uint64
	k    uint64
}

func newBloomFilter(n int) *bloomFilter {
	if n < 1 {
		n = 1
	}
	m := uint64(n * bitsPerKey)
	k := uint64(math.Round(math.Ln2 * bitsPerKey))

	return &bloomFilter{
		bits: make([]uint64, (m+63)/64),
		m:    m,
		k:    k,
	}
}

func keyHash(key []byte) uint64 {
	return xxhash.Sum64(key)
}

func (f *bloomFilter) add(h uint64) {
	h1, h2 := split(h)
	for i := uint64(0); i < f.k; i++ {
		pos := (h1 + i*h2) % f.m
		f.bits[pos/64] |= 1 << (pos % 64)
	}
}

func (f *bloomFilter) mayContain(h uint64) bool {
	h1, h2 := split(h)
	for i := uint64(0); i < f.k; i++ {
		pos := (h1 + i*h2) % f.m
		if f.bits[pos/64]&(1<<(pos%64)) == 0 {
			return false
		}
	}
	return true
}

func split(h uint64) (uint64, uint64) {
	return h & math.MaxUint32, h>>32 | 1
}
