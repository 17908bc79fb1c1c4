package custom_test

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/require"

	"lsmkv/pkg/dberrors"
	"lsmkv/pkg/encoding"
	"lsmkv/pkg/encoding/custom"
	"lsmkv/pkg/encoding/encodingtest"
	"lsmkv/pkg/types"
)

func TestEncoderContract(t *testing.T) {
	encodingtest.Run(t, custom.New())
}

func TestWireLayout(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, custom.New().WriteRecord(&buf, types.NewEntry("foo", "bar")))

	want := []byte{
		3, 0, 0, 0, 0, 0, 0, 0, 'f', 'o', 'o',
		3, 0, 0, 0, 0, 0, 0, 0, 'b', 'a', 'r',
	}
	require.Equal(t, want, buf.Bytes())
}

func TestOversizedLengthIsCorrupt(t *testing.T) {
	rec := binary.LittleEndian.AppendUint64(nil, custom.MaxFieldSize+1)

	_, err := custom.New().ReadRecord(bytes.NewReader(rec))
	require.ErrorIs(t, err, dberrors.ErrCorrupt)
}

func TestRegistered(t *testing.T) {
	enc, err := encoding.Lookup(custom.Name)
	require.NoError(t, err)
	require.Equal(t, custom.Name, enc.Name())
	require.Contains(t, encoding.Names(), custom.Name)
}

func TestOversizedEntryIsRejected(t *testing.T) {
	encodingtest.RejectsOversized(t, custom.New(), custom.MaxFieldSize)
}
