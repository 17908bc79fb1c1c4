package checked_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"lsmkv/pkg/dberrors"
	"lsmkv/pkg/encoding/checked"
	"lsmkv/pkg/encoding/encodingtest"
	"lsmkv/pkg/types"
)

func TestEncoderContract(t *testing.T) {
	encodingtest.Run(t, checked.New())
}

func TestFlippedBitIsChecksumError(t *testing.T) {
	enc := checked.New()

	var buf bytes.Buffer
	require.NoError(t, enc.WriteRecord(&buf, types.NewEntry("key", "value")))

	rec := buf.Bytes()
	rec[10] ^= 0x01 // inside the key

	_, err := enc.ReadRecord(bytes.NewReader(rec))
	require.ErrorIs(t, err, dberrors.ErrChecksum)
}

func TestCorruptHeaderIsNotEOF(t *testing.T) {
	rec := []byte{0xff, 0xff, 0xff, 0xff, 0, 0, 0, 0}

	_, err := checked.New().ReadRecord(bytes.NewReader(rec))
	require.ErrorIs(t, err, dberrors.ErrCorrupt)
}

func TestOversizedEntryIsRejected(t *testing.T) {
	encodingtest.RejectsOversized(t, checked.New(), checked.MaxFieldSize)
}
