// Package compression provides block codecs for record values.
//
// Every codec is deterministic for its fixed configuration: compressing the
// same input twice yields the same bytes. Record encoders rely on this to
// size a record without writing it.
package compression

import (
	"fmt"
	"sort"
)

// Codec compresses and decompresses whole blocks.
type Codec interface {
	Name() string
	Compress(src []byte) ([]byte, error)
	Decompress(src []byte) ([]byte, error)
}

// MaxBlockSize bounds the decompressed size a codec will allocate.
const MaxBlockSize = 64 << 20

const (
	Zstd   = "zstd"
	Snappy = "snappy"
	LZ4    = "lz4"
)

var codecs = map[string]func() (Codec, error){
	Zstd:   newZstd,
	Snappy: func() (Codec, error) { return snappyCodec{}, nil },
	LZ4:    func() (Codec, error) { return lz4Codec{}, nil },
}

// New returns the codec registered under name.
func New(name string) (Codec, error) {
	f, ok := codecs[name]
	if !ok {
		return nil, fmt.Errorf("compression: unknown codec %q", name)
	}
	return f()
}

// Names lists the available codecs.
func Names() []string {
	names := make([]string, 0, len(codecs))
	for name := range codecs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
