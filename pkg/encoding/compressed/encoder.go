// Package compressed implements a record codec that stores values
// compressed with one of the block codecs from pkg/compression:
//
//	uvarint key length | key | uvarint block length | compressed value
package compressed

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"lsmkv/pkg/compression"
	"lsmkv/pkg/dberrors"
	"lsmkv/pkg/encoding"
	"lsmkv/pkg/types"
)

// MaxFieldSize bounds a key or an uncompressed value.
const MaxFieldSize = 64 << 20

func init() {
	for _, name := range compression.Names() {
		name := name
		encoding.Register(name, func() (encoding.Encoder, error) {
			return New(name)
		})
	}
}

type Encoder struct {
	codec compression.Codec
}

var _ encoding.Encoder = Encoder{}

// New returns an encoder compressing values with the named codec.
func New(codec string) (Encoder, error) {
	c, err := compression.New(codec)
	if err != nil {
		return Encoder{}, err
	}
	return Encoder{codec: c}, nil
}

func (e Encoder) Name() string { return e.codec.Name() }

func (e Encoder) Sized(entry types.Entry) (int64, error) {
	if err := encoding.CheckSize(entry, MaxFieldSize); err != nil {
		return 0, err
	}
	block, err := e.codec.Compress(entry.Value)
	if err != nil {
		return 0, &dberrors.EncodeError{Message: "compress value", Err: err}
	}
	return int64(uvarintLen(uint64(len(entry.Key))) + len(entry.Key) +
		uvarintLen(uint64(len(block))) + len(block)), nil
}

func (e Encoder) WriteRecord(w io.Writer, entry types.Entry) error {
	if err := encoding.CheckSize(entry, MaxFieldSize); err != nil {
		return err
	}

	block, err := e.codec.Compress(entry.Value)
	if err != nil {
		return &dberrors.EncodeError{Message: "compress value", Err: err}
	}

	buf := make([]byte, 0, 2*binary.MaxVarintLen64+len(entry.Key)+len(block))
	buf = binary.AppendUvarint(buf, uint64(len(entry.Key)))
	buf = append(buf, entry.Key...)
	buf = binary.AppendUvarint(buf, uint64(len(block)))
	buf = append(buf, block...)

	return encoding.Write(w, buf)
}

func (e Encoder) ReadRecord(r io.Reader) (types.Entry, error) {
	br := &byteReader{r: r}

	keyLen, err := binary.ReadUvarint(br)
	if err != nil {
		if errors.Is(err, io.EOF) && br.n == 0 {
			return types.Entry{}, io.EOF
		}
		return types.Entry{}, lengthError("key", err)
	}
	key, err := readField(r, keyLen, "key")
	if err != nil {
		return types.Entry{}, err
	}

	blockLen, err := binary.ReadUvarint(br)
	if err != nil {
		return types.Entry{}, lengthError("value", err)
	}
	block, err := readField(r, blockLen, "value block")
	if err != nil {
		return types.Entry{}, err
	}

	value, err := e.codec.Decompress(block)
	if err != nil {
		return types.Entry{}, &dberrors.DecodeError{Message: "decompress value", Err: errors.Join(dberrors.ErrCorrupt, err)}
	}

	return types.Entry{Key: key, Value: value}, nil
}

func readField(r io.Reader, n uint64, what string) ([]byte, error) {
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

func lengthError(what string, err error) error {
	if errors.Is(err, io.EOF) {
		err = io.ErrUnexpectedEOF
	}
	return &dberrors.DecodeError{Message: "read " + what + " length", Err: err}
}

func uvarintLen(x uint64) int {
	n := 1
	for x >= 0x80 {
		x >>= 7
		n++
	}
	return n
}

// byteReader reads single bytes straight from r so that no bytes beyond the
// varint are consumed.
type byteReader struct {
	r   io.Reader
	n   int
	buf [1]byte
}

func (b *byteReader) ReadByte() (byte, error) {
	if _, err := io.ReadFull(b.r, b.buf[:]); err != nil {
		return 0, err
	}
	b.n++
	return b.buf[0], nil
}
