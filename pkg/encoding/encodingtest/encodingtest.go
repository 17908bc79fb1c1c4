// Package encodingtest holds conformance checks shared by the record codecs.
package encodingtest

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"testing"

	"github.com/stretchr/testify/require"

	"lsmkv/pkg/dberrors"
	"lsmkv/pkg/encoding"
	"lsmkv/pkg/types"
)

// Entries is a fixed set of awkward entries: empty fields, binary data,
// long values and repetitive values that compress well.
func Entries() []types.Entry {
	return []types.Entry{
		types.NewEntry("foo", "bar"),
		{Key: []byte{}, Value: []byte{}},
		{Key: []byte("k"), Value: []byte{}},
		{Key: []byte{0x00, 0xff, 0x10}, Value: []byte{0xde, 0xad, 0xbe, 0xef}},
		types.NewEntry("long", string(bytes.Repeat([]byte("abcdefgh"), 1000))),
		types.NewEntry("unicode-ключ", "значение ✓"),
		{Key: bytes.Repeat([]byte{'k'}, 300), Value: []byte(fmt.Sprint(12345))},
	}
}

// RequireEntry compares entries field by field so that nil and empty
// slices are treated alike.
func RequireEntry(t testing.TB, want, got types.Entry) {
	t.Helper()
	require.Equal(t, want.Key, got.Key, "key")
	require.Equal(t, want.Value, got.Value, "value")
}

// Run checks the Encoder contract for enc.
func Run(t *testing.T, enc encoding.Encoder) {
	t.Run("RoundTrip", func(t *testing.T) {
		for _, e := range Entries() {
			var buf bytes.Buffer
			require.NoError(t, enc.WriteRecord(&buf, e))

			sized, err := enc.Sized(e)
			require.NoError(t, err)
			require.EqualValues(t, buf.Len(), sized, "Sized must match the written length for %v", e)

			got, err := enc.ReadRecord(&buf)
			require.NoError(t, err)
			RequireEntry(t, e, got)
			require.Zero(t, buf.Len(), "decoder must consume exactly one record")
		}
	})

	t.Run("SelfDelimiting", func(t *testing.T) {
		var buf bytes.Buffer
		for _, e := range Entries() {
			require.NoError(t, enc.WriteRecord(&buf, e))
		}

		for _, want := range Entries() {
			got, err := enc.ReadRecord(&buf)
			require.NoError(t, err)
			RequireEntry(t, want, got)
		}

		_, err := enc.ReadRecord(&buf)
		require.ErrorIs(t, err, io.EOF)
	})

	t.Run("CleanEOF", func(t *testing.T) {
		_, err := enc.ReadRecord(bytes.NewReader(nil))
		require.ErrorIs(t, err, io.EOF)

		var de *dberrors.DecodeError
		require.False(t, errors.As(err, &de), "clean end of stream is not a decode error")
	})

	t.Run("Truncated", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, enc.WriteRecord(&buf, types.NewEntry("truncated", "record value")))
		full := buf.Bytes()

		for _, cut := range []int{1, len(full) / 2, len(full) - 1} {
			_, err := enc.ReadRecord(bytes.NewReader(full[:cut]))
			var de *dberrors.DecodeError
			require.ErrorAs(t, err, &de, "cut at %d", cut)
			require.NotErrorIs(t, err, io.EOF, "cut at %d", cut)
		}
	})

	t.Run("WriteFailure", func(t *testing.T) {
		err := enc.WriteRecord(failingWriter{}, types.NewEntry("a", "b"))
		var ee *dberrors.EncodeError
		require.ErrorAs(t, err, &ee)
	})
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) {
	return 0, errors.New("disk full")
}

// RejectsOversized checks that Sized and WriteRecord refuse, with the same
// EncodeError and without writing, an entry whose value exceeds limit.
func RejectsOversized(t *testing.T, enc encoding.Encoder, limit int) {
	t.Helper()
	e := types.Entry{Key: []byte("big"), Value: make([]byte, limit+1)}

	_, sizedErr := enc.Sized(e)
	var ee *dberrors.EncodeError
	require.ErrorAs(t, sizedErr, &ee)

	var buf bytes.Buffer
	writeErr := enc.WriteRecord(&buf, e)
	require.ErrorAs(t, writeErr, &ee)
	require.Equal(t, sizedErr.Error(), writeErr.Error())
	require.Zero(t, buf.Len())
}
