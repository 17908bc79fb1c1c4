package persistence

import (
	"fmt"
	"path/filepath"
	"strconv"

	"lsmkv/pkg/dberrors"
	"lsmkv/pkg/encoding"
	"lsmkv/pkg/types"
)

// Builder opens or creates a segment.
//
//	table, err := persistence.NewBuilder().
//		WithID(7).
//		WithDataDir(dir).
//		WithEncoder(custom.New()).
//		Build()
type Builder struct {
	id      *types.Generation
	dataDir string
	encoder encoding.Encoder
	stride  int
	sink    Sink
	sync    bool
}

func NewBuilder() *Builder {
	return &Builder{stride: DefaultBlockSize, sync: true}
}

func (b *Builder) WithID(id types.Generation) *Builder {
	b.id = &id
	return b
}

func (b *Builder) WithDataDir(dir string) *Builder {
	b.dataDir = dir
	return b
}

func (b *Builder) WithEncoder(enc encoding.Encoder) *Builder {
	b.encoder = enc
	return b
}

// WithEncoding selects a registered encoder by name.
func (b *Builder) WithEncoding(name string) (*Builder, error) {
	enc, err := encoding.Lookup(name)
	if err != nil {
		return b, err
	}
	b.encoder = enc
	return b, nil
}

// WithStride sets the number of records per index block.
func (b *Builder) WithStride(n int) *Builder {
	b.stride = n
	return b
}

// WithSync controls whether writes are fsynced before returning.
func (b *Builder) WithSync(sync bool) *Builder {
	b.sync = sync
	return b
}

// WithSink makes the segment use s instead of a file under the data dir.
func (b *Builder) WithSink(s Sink) *Builder {
	b.sink = s
	return b
}

// SegmentPath returns the file path of segment id under dir.
func SegmentPath(dir string, id types.Generation) string {
	return filepath.Join(dir, strconv.FormatUint(id, 10))
}

// Build opens the segment, creating its file if absent. Existing content is
// kept and indexed.
func (b *Builder) Build() (*SSTable, error) {
	if b.encoder == nil {
		return nil, fmt.Errorf("%w: segment encoder is required", dberrors.ErrInvalidArgument)
	}
	if b.stride < 1 {
		return nil, fmt.Errorf("%w: index stride %d", dberrors.ErrInvalidArgument, b.stride)
	}

	var id types.Generation
	if b.id != nil {
		id = *b.id
	}

	sink := b.sink
	if sink == nil {
		if b.id == nil || b.dataDir == "" {
			return nil, fmt.Errorf("%w: segment id and data dir are required", dberrors.ErrInvalidArgument)
		}
		path := SegmentPath(b.dataDir, id)
		fs, err := OpenFileSink(path)
		if err != nil {
			return nil, dberrors.IO("open", path, err)
		}
		sink = fs
	}

	table := &SSTable{
		id:      id,
		sink:    sink,
		encoder: b.encoder,
		stride:  b.stride,
		sync:    b.sync,
	}

	if err := table.rehydrateIndex(); err != nil {
		_ = sink.Close()
		return nil, err
	}

	return table, nil
}
