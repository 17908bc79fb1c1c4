package compression

import (
	"fmt"

	"github.com/golang/snappy"
)

type snappyCodec struct{}

func (snappyCodec) Name() string { return Snappy }

func (snappyCodec) Compress(src []byte) ([]byte, error) {
	return snappy.Encode(nil, src), nil
}

func (snappyCodec) Decompress(src []byte) ([]byte, error) {
	if n, err := snappy.DecodedLen(src); err != nil {
		return nil, fmt.Errorf("snappy: %w", err)
	} else if n > MaxBlockSize {
		return nil, fmt.Errorf("snappy: block of %d bytes exceeds limit", n)
	}
	out, err := snappy.Decode(nil, src)
	if err != nil {
		return nil, fmt.Errorf("snappy: %w", err)
	}
	return out, nil
}
