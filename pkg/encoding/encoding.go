package encoding

import (
	"fmt"
	"io"
	"sort"
	"sync"

	"lsmkv/pkg/dberrors"
	"lsmkv/pkg/types"
)

// Encoder serializes one entry at a time to a byte stream.
//
// ReadRecord returns io.EOF when the stream ends before the first byte of a
// record, and a *dberrors.DecodeError when a record is truncated or
// malformed. Sized must report exactly the number of bytes WriteRecord
// produces for the same entry, and must fail with the same EncodeError for
// an entry WriteRecord would refuse.
//
// Implementations are stateless values and may be shared freely.
type Encoder interface {
	ReadRecord(r io.Reader) (types.Entry, error)
	WriteRecord(w io.Writer, e types.Entry) error
	Sized(e types.Entry) (int64, error)
	Name() string
}

// FixedLayout is implemented by encoders whose Sized follows from the
// field lengths alone. Segments cross-check each record's length against
// Sized on open only for these; a compressor's output may change between
// library versions.
type FixedLayout interface {
	FixedLayout() bool
}

type Factory func() (Encoder, error)

var (
	registryMu sync.RWMutex
	registry   = map[string]Factory{}
)

// Register makes an encoder available by name. Registering the same name
// twice panics.
func Register(name string, f Factory) {
	registryMu.Lock()
	defer registryMu.Unlock()

	if _, dup := registry[name]; dup {
		panic("encoding: Register called twice for " + name)
	}
	registry[name] = f
}

// Lookup builds the encoder registered under name.
func Lookup(name string) (Encoder, error) {
	registryMu.RLock()
	f, ok := registry[name]
	registryMu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: unknown encoder %q, registered: %v", dberrors.ErrInvalidArgument, name, Names())
	}
	return f()
}

// Names lists registered encoders in sorted order.
func Names() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()

	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
