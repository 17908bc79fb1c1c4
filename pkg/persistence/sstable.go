package persistence

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"lsmkv/pkg/dberrors"
	"lsmkv/pkg/encoding"
	"lsmkv/pkg/types"
)

// DefaultBlockSize is the number of records between two index entries.
const DefaultBlockSize = 2

const bufferSize = 4096

// SSTable is one sorted segment: a sink of encoded records in ascending key
// order plus a sparse in-memory index and a bloom filter over it. Neither
// is stored; both are rebuilt by scanning the sink whenever the segment is
// opened or rewritten.
type SSTable struct {
	id      types.Generation
	sink    Sink
	encoder encoding.Encoder
	stride  int
	sync    bool

	index   sparseIndex
	filter  *bloomFilter // nil after Append until the next rebuild
	count   int
	size    int64
	lastKey types.Key
}

func (s *SSTable) ID() types.Generation { return s.id }

// Len returns the number of records in the segment.
func (s *SSTable) Len() int { return s.count }

// Size returns the number of bytes in the segment.
func (s *SSTable) Size() int64 { return s.size }

// IndexLen returns the number of sparse index entries.
func (s *SSTable) IndexLen() int { return len(s.index) }

// Index returns a copy of the sparse index.
func (s *SSTable) Index() []IndexEntry {
	out := make([]IndexEntry, len(s.index))
	copy(out, s.index)
	return out
}

func (s *SSTable) Encoder() encoding.Encoder { return s.encoder }

func (s *SSTable) Path() string { return s.sink.Path() }

// MayContain reports false only for keys the segment certainly lacks.
func (s *SSTable) MayContain(key types.Key) bool {
	if s.count == 0 || bytes.Compare(key, s.lastKey) > 0 {
		return false
	}
	return s.filter == nil || s.filter.mayContain(keyHash(key))
}

// Search looks key up through the sparse index: it seeks to the block
// anchored by the greatest indexed key <= key and decodes at most one
// block of records.
func (s *SSTable) Search(key types.Key) (types.Entry, bool, error) {
	if !s.MayContain(key) {
		return types.Entry{}, false, nil
	}

	anchor, ok := s.index.floor(key)
	if !ok {
		return types.Entry{}, false, nil
	}

	if _, err := s.sink.Seek(anchor.Offset, io.SeekStart); err != nil {
		return types.Entry{}, false, dberrors.IO("seek", s.Path(), err)
	}

	reader := bufio.NewReaderSize(s.sink, bufferSize)
	for i := 0; i < s.stride; i++ {
		e, err := s.encoder.ReadRecord(reader)
		if errors.Is(err, io.EOF) {
			return types.Entry{}, false, nil
		}
		if err != nil {
			return types.Entry{}, false, s.readErr(err)
		}

		switch c := bytes.Compare(e.Key, key); {
		case c == 0:
			return e, true, nil
		case c > 0:
			return types.Entry{}, false, nil
		}
	}

	return types.Entry{}, false, nil
}

// Iterate scans the segment from the first record.
func (s *SSTable) Iterate() *Iterator {
	return s.IterateFrom(0)
}

// IterateFrom scans the segment from offset, which must be a record start.
func (s *SSTable) IterateFrom(offset int64) *Iterator {
	return newIterator(s, offset)
}

// Seek returns an iterator positioned at the block that may hold key, so
// that the first entries it yields are the last ones below key.
func (s *SSTable) Seek(key types.Key) *Iterator {
	anchor, ok := s.index.floor(key)
	if !ok {
		return s.Iterate()
	}
	return s.IterateFrom(anchor.Offset)
}

// Entries reads the whole segment.
func (s *SSTable) Entries() ([]types.Entry, error) {
	it := s.Iterate()
	defer func() {
		if cerr := it.Close(); cerr != nil {
			slog.Warn("failed to close segment iterator", "path", s.Path(), "error", cerr)
		}
	}()

	entries := make([]types.Entry, 0, s.count)
	for it.Next() {
		entries = append(entries, it.Entry())
	}
	return entries, it.Err()
}

// Flush replaces the segment content with entries, which the caller must
// supply in ascending key order, and rebuilds the index. A failure part way
// leaves the sink partially rewritten.
func (s *SSTable) Flush(entries []types.Entry) error {
	if err := s.sink.Truncate(0); err != nil {
		return dberrors.IO("truncate", s.Path(), err)
	}
	if _, err := s.sink.Seek(0, io.SeekStart); err != nil {
		return dberrors.IO("seek", s.Path(), err)
	}

	s.index, s.filter, s.count, s.size, s.lastKey = nil, nil, 0, 0, nil

	writer := bufio.NewWriterSize(s.sink, bufferSize)
	for _, e := range entries {
		if err := s.encoder.WriteRecord(writer, e); err != nil {
			return s.writeErr(err)
		}
	}
	if err := writer.Flush(); err != nil {
		return dberrors.IO("write", s.Path(), err)
	}
	if s.sync {
		if err := s.sink.Sync(); err != nil {
			return dberrors.IO("sync", s.Path(), err)
		}
	}

	return s.rehydrateIndex()
}

// Append writes e after the last record. Keys must be strictly increasing.
func (s *SSTable) Append(e types.Entry) error {
	if s.count > 0 && bytes.Compare(e.Key, s.lastKey) <= 0 {
		return fmt.Errorf("%w: %q must be > %q", dberrors.ErrOutOfOrder, e.Key, s.lastKey)
	}

	if _, err := s.sink.Seek(s.size, io.SeekStart); err != nil {
		return dberrors.IO("seek", s.Path(), err)
	}

	cw := &countingWriter{w: s.sink}
	if err := s.encoder.WriteRecord(cw, e); err != nil {
		return s.writeErr(err)
	}
	if s.sync {
		if err := s.sink.Sync(); err != nil {
			return dberrors.IO("sync", s.Path(), err)
		}
	}

	s.track(e.Key, s.size)
	s.size += cw.n
	s.filter = nil
	return nil
}

// Close releases the sink.
func (s *SSTable) Close() error {
	if err := s.sink.Close(); err != nil {
		return dberrors.IO("close", s.Path(), err)
	}
	return nil
}

// rehydrateIndex rebuilds the index with one full scan. Offsets are taken
// before each record is decoded, so every index entry points at the start
// of its record.
func (s *SSTable) rehydrateIndex() error {
	s.index, s.filter, s.count, s.size, s.lastKey = nil, nil, 0, 0, nil

	if _, err := s.sink.Seek(0, io.SeekStart); err != nil {
		return dberrors.IO("seek", s.Path(), err)
	}

	// only a fixed-layout encoder's Sized is stable across compressor builds
	fl, ok := s.encoder.(encoding.FixedLayout)
	checkSized := ok && fl.FixedLayout()

	var hashes []uint64
	cr := &countingReader{r: bufio.NewReaderSize(s.sink, bufferSize)}
	for {
		offset := cr.n
		e, err := s.encoder.ReadRecord(cr)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return fmt.Errorf("segment %d: record %d at offset %d: %w", s.id, s.count, offset, s.readErr(err))
		}
		if checkSized {
			if sized, err := s.encoder.Sized(e); err != nil || sized != cr.n-offset {
				return fmt.Errorf("segment %d: record %d at offset %d: %w", s.id, s.count, offset, &dberrors.DecodeError{
					Message: fmt.Sprintf("record spans %d bytes, encoder sizes it at %d", cr.n-offset, sized),
					Err:     dberrors.ErrCorrupt,
				})
			}
		}
		s.track(e.Key, offset)
		hashes = append(hashes, keyHash(e.Key))
	}
	s.size = cr.n

	s.filter = newBloomFilter(len(hashes))
	for _, h := range hashes {
		s.filter.add(h)
	}

	slog.Debug("segment index rebuilt",
		"id", s.id, "path", s.Path(), "records", s.count, "index", len(s.index), "bytes", s.size)

	return nil
}

func (s *SSTable) track(key types.Key, offset int64) {
	if s.count%s.stride == 0 {
		s.index = append(s.index, IndexEntry{Key: bytes.Clone(key), Offset: offset})
	}
	s.lastKey = bytes.Clone(key)
	s.count++
}

func (s *SSTable) readErr(err error) error {
	var de *dberrors.DecodeError
	if errors.As(err, &de) {
		if errors.Is(de.Err, dberrors.ErrCorrupt) || errors.Is(de.Err, dberrors.ErrChecksum) || errors.Is(de.Err, io.ErrUnexpectedEOF) {
			return err
		}
		if de.Err != nil {
			return dberrors.IO("read", s.Path(), err)
		}
	}
	return err
}

func (s *SSTable) writeErr(err error) error {
	var ee *dberrors.EncodeError
	if errors.As(err, &ee) && ee.Err != nil {
		return dberrors.IO("write", s.Path(), err)
	}
	return err
}

type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}
