// Package checked implements a record codec that appends an xxhash64
// checksum to every record, so a damaged record is reported as corruption
// instead of being mistaken for the end of the stream.
//
//	u32 LE key length | u32 LE value length | key | value | u64 LE xxhash64
//
// The checksum covers the header, the key and the value.
package checked

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/cespare/xxhash/v2"

	"lsmkv/pkg/dberrors"
	"lsmkv/pkg/encoding"
	"lsmkv/pkg/types"
)

const (
	Name = "checked"

	headerSize   = 8
	checksumSize = 8

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
	return int64(headerSize + len(e.Key) + len(e.Value) + checksumSize), nil
}

func (Encoder) WriteRecord(w io.Writer, e types.Entry) error {
	if err := encoding.CheckSize(e, MaxFieldSize); err != nil {
		return err
	}

	buf := make([]byte, 0, headerSize+len(e.Key)+len(e.Value)+checksumSize)
	buf = binary.LittleEndian.AppendUint32(buf, uint32(len(e.Key)))
	buf = binary.LittleEndian.AppendUint32(buf, uint32(len(e.Value)))
	buf = append(buf, e.Key...)
	buf = append(buf, e.Value...)
	buf = binary.LittleEndian.AppendUint64(buf, xxhash.Sum64(buf))

	return encoding.Write(w, buf)
}

func (Encoder) ReadRecord(r io.Reader) (types.Entry, error) {
	var header [headerSize]byte
	if err := encoding.ReadHeader(r, header[:]); err != nil {
		return types.Entry{}, err
	}

	keyLen := binary.LittleEndian.Uint32(header[0:4])
	valueLen := binary.LittleEndian.Uint32(header[4:8])
	if keyLen > MaxFieldSize || valueLen > MaxFieldSize {
		return types.Entry{}, &dberrors.DecodeError{
			Message: fmt.Sprintf("field lengths %d/%d exceed limit", keyLen, valueLen),
			Err:     dberrors.ErrCorrupt,
		}
	}

	body := make([]byte, int(keyLen)+int(valueLen)+checksumSize)
	if err := encoding.ReadBody(r, body, "record body"); err != nil {
		return types.Entry{}, err
	}

	payload := body[:len(body)-checksumSize]
	want := binary.LittleEndian.Uint64(body[len(body)-checksumSize:])

	d := xxhash.New()
	_, _ = d.Write(header[:])
	_, _ = d.Write(payload)
	if got := d.Sum64(); got != want {
		return types.Entry{}, &dberrors.DecodeError{
			Message: fmt.Sprintf("checksum %016x, expected %016x", got, want),
			Err:     dberrors.ErrChecksum,
		}
	}

	return types.Entry{
		Key:   payload[:keyLen:keyLen],
		Value: payload[keyLen:],
	}, nil
}
