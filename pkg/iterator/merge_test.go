package iterator

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"lsmkv/pkg/types"
)

func collect(t *testing.T, it Iterator) []types.Entry {
	t.Helper()
	var out []types.Entry
	for it.Next() {
		out = append(out, it.Entry())
	}
	require.NoError(t, it.Err())
	return out
}

func TestMergeNewestWins(t *testing.T) {
	newest := FromSlice([]types.Entry{
		types.NewEntry("b", "new"),
		types.NewEntry("d", "new"),
	})
	middle := FromSlice([]types.Entry{
		types.NewEntry("a", "mid"),
		types.NewEntry("b", "mid"),
		types.NewEntry("c", "mid"),
	})
	oldest := FromSlice([]types.Entry{
		types.NewEntry("a", "old"),
		types.NewEntry("d", "old"),
		types.NewEntry("e", "old"),
	})

	got := collect(t, Merge(newest, middle, oldest))
	require.Equal(t, []types.Entry{
		types.NewEntry("a", "mid"),
		types.NewEntry("b", "new"),
		types.NewEntry("c", "mid"),
		types.NewEntry("d", "new"),
		types.NewEntry("e", "old"),
	}, got)
}

func TestMergeEmpty(t *testing.T) {
	require.Empty(t, collect(t, Merge()))
	require.Empty(t, collect(t, Merge(FromSlice(nil), FromSlice(nil))))

	m := Merge(FromSlice([]types.Entry{types.NewEntry("k", "v")}), FromSlice(nil))
	require.Equal(t, []types.Entry{types.NewEntry("k", "v")}, collect(t, m))
	require.False(t, m.Next())
}

// failing reports err once its entries are exhausted.
type failing struct {
	Slice
	err error
}

func (f *failing) Err() error {
	if f.pos >= len(f.entries) {
		return f.err
	}
	return nil
}

func (f *failing) Close() error { return f.err }

func TestMergePropagatesErrors(t *testing.T) {
	boom := errors.New("boom")
	bad := &failing{Slice: *FromSlice([]types.Entry{types.NewEntry("b", "1")}), err: boom}
	good := FromSlice([]types.Entry{types.NewEntry("a", "1"), types.NewEntry("c", "1")})

	m := Merge(good, bad)
	require.True(t, m.Next())
	require.Equal(t, "a", string(m.Entry().Key))

	// b is the last entry of bad; advancing past it surfaces its error
	require.False(t, m.Next())
	require.ErrorIs(t, m.Err(), boom)
	require.False(t, m.Next())

	require.ErrorIs(t, m.Close(), boom)
}
