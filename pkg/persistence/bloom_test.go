package persistence

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"lsmkv/pkg/encoding/custom"
)

func TestBloomFilterNoFalseNegatives(t *testing.T) {
	const n = 500
	f := newBloomFilter(n)
	for i := 0; i < n; i++ {
		f.add(keyHash([]byte(fmt.Sprintf("key-%d", i))))
	}

	for i := 0; i < n; i++ {
		require.True(t, f.mayContain(keyHash([]byte(fmt.Sprintf("key-%d", i)))))
	}

	var falsePositives int
	for i := 0; i < 10 * n; i++ {
		if f.mayContain(keyHash([]byte(fmt.Sprintf("other-%d", i)))) {
			falsePositives++
		}
	}
	require.Less(t, falsePositives, n/2, "false positive rate above 5%%")
}

func TestSegmentFilter(t *testing.T) {
	table := memTable(t, custom.New(), 2)
	require.False(t, table.MayContain([]byte("foo000")))

	require.NoError(t, table.Flush(seedEntries(20)))
	for _, e := range seedEntries(20) {
		require.True(t, table.MayContain(e.Key))
	}
	// beyond the last key
	require.False(t, table.MayContain([]byte("zzz")))

	// appended keys are found while the filter is off
	require.NoError(t, table.Append(seedEntries(21)[20]))
	require.True(t, table.MayContain([]byte("foo020")))
	_, ok, err := table.Search([]byte("foo020"))
	require.NoError(t, err)
	require.True(t, ok)
}
