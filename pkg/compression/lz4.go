package compression

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/pierrec/lz4/v4"
)

const (
	lz4Raw byte = iota
	lz4Block
)

var errLZ4Frame = errors.New("lz4: malformed block frame")

// lz4Codec frames a raw LZ4 block as
//
//	mode byte | uvarint uncompressed length | payload
//
// Incompressible input is stored raw.
type lz4Codec struct{}

func (lz4Codec) Name() string { return LZ4 }

func (lz4Codec) Compress(src []byte) ([]byte, error) {
	hdr := make([]byte, 1+binary.MaxVarintLen64)
	n := 1 + binary.PutUvarint(hdr[1:], uint64(len(src)))

	if len(src) == 0 {
		hdr[0] = lz4Raw
		return hdr[:n], nil
	}

	dst := make([]byte, n+lz4.CompressBlockBound(len(src)))
	written, err := lz4.CompressBlock(src, dst[n:], nil)
	if err != nil {
		return nil, fmt.Errorf("lz4: %w", err)
	}

	if written == 0 || written >= len(src) {
		hdr[0] = lz4Raw
		return append(hdr[:n:n], src...), nil
	}

	hdr[0] = lz4Block
	copy(dst, hdr[:n])
	return dst[:n+written], nil
}

func (lz4Codec) Decompress(src []byte) ([]byte, error) {
	if len(src) < 2 {
		return nil, errLZ4Frame
	}
	size, n := binary.Uvarint(src[1:])
	if n <= 0 || size > MaxBlockSize {
		return nil, errLZ4Frame
	}
	payload := src[1+n:]

	switch src[0] {
	case lz4Raw:
		if uint64(len(payload)) != size {
			return nil, errLZ4Frame
		}
		return append([]byte(nil), payload...), nil
	case lz4Block:
		out := make([]byte, size)
		got, err := lz4.UncompressBlock(payload, out)
		if err != nil {
			return nil, fmt.Errorf("lz4: %w", err)
		}
		if uint64(got) != size {
			return nil, errLZ4Frame
		}
		return out, nil
	default:
		return nil, errLZ4Frame
	}
}
