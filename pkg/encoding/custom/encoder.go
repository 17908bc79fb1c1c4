// Package custom implements the default fixed-layout record codec:
//
//	u64 LE key length | key | u64 LE value length | value
//
// The layout is byte-compatible with a bincode-serialized {key, value} pair.
package custom

import (
	"encoding/binary"
	"fmt"
	"io"

	"lsmkv/pkg/dberrors"
	"lsmkv/pkg/encoding"
	"lsmkv/pkg/types"
)

const (
	Name = "custom"

	lenFieldSize = 8

	// MaxFieldSize bounds a decoded key or value length. Anything above it is
	// treated as a corrupt length prefix.
	MaxFieldSize = 64 << 20
)

func init() {
	encoding.Register(Name, func() (encoding.Encoder, error) {
		return Encoder{}, nil
	})
}

type Encoder struct{}

var _ encoding.Encoder = Encoder{}

func New() Encoder { return Encoder{} }

func (Encoder) Name() string { return Name }

func (Encoder) FixedLayout() bool { return true }

func (Encoder) Sized(e types.Entry) (int64, error) {
	if err := encoding.CheckSize(e, MaxFieldSize); err != nil {
		return 0, err
	}
	return int64(2*lenFieldSize + len(e.Key) + len(e.Value)), nil
}

func (Encoder) WriteRecord(w io.Writer, e types.Entry) error {
	if err := encoding.CheckSize(e, MaxFieldSize); err != nil {
		return err
	}

	buf := make([]byte, 0, 2*lenFieldSize+len(e.Key)+len(e.Value))
	buf = binary.LittleEndian.AppendUint64(buf, uint64(len(e.Key)))
	buf = append(buf, e.Key...)
	buf = binary.LittleEndian.AppendUint64(buf, uint64(len(e.Value)))
	buf = append(buf, e.Value...)

	return encoding.Write(w, buf)
}

func (Encoder) ReadRecord(r io.Reader) (types.Entry, error) {
	var lenBuf [lenFieldSize]byte

	if err := encoding.ReadHeader(r, lenBuf[:]); err != nil {
		return types.Entry{}, err
	}
	key, err := readField(r, lenBuf[:], "key")
	if err != nil {
		return types.Entry{}, err
	}

	if err := encoding.ReadBody(r, lenBuf[:], "value length"); err != nil {
		return types.Entry{}, err
	}
	value, err := readField(r, lenBuf[:], "value")
	if err != nil {
		return types.Entry{}, err
	}

	return types.Entry{Key: key, Value: value}, nil
}

func readField(r io.Reader, lenBuf []byte, what string) ([]byte, error) {
	n := binary.LittleEndian.Uint64(lenBuf)
	if n > MaxFieldSize {
		return nil, &dberrors.DecodeError{
			Message: fmt.Sprintf("%s length %d exceeds limit", what, n),
			Err:     dberrors.ErrCorrupt,
		}
	}

	field := make([]byte, n)
	if err := encoding.ReadBody(r, field, what); err != nil {
		return nil, err
	}
	return field, nil
}
