package store

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"sync"

	"lsmkv/pkg/clock"
	"lsmkv/pkg/config"
	"lsmkv/pkg/dberrors"
	"lsmkv/pkg/encoding"
	"lsmkv/pkg/memtable"
	"lsmkv/pkg/persistence"
	"lsmkv/pkg/types"

	// record codecs selectable by name
	_ "lsmkv/pkg/encoding/checked"
	_ "lsmkv/pkg/encoding/compressed"
	_ "lsmkv/pkg/encoding/custom"
)

const segmentsDir = "segments"

// Store routes writes into a memtable and reads through the memtable and
// then the segments from newest to oldest. A full memtable is rotated into a
// new segment synchronously, inside the Insert that filled it.
//
// A Store owns its directory: one process, one writer. Calls are
// serialized so the handle can be shared, e.g. by an HTTP server.
type Store struct {
	mu sync.Mutex

	cfg     config.DB
	rootDir string
	dataDir string
	encoder encoding.Encoder

	mt       *memtable.Memtable
	segments map[types.Generation]*persistence.SSTable
	ids      []types.Generation // ascending
	gen      *clock.Generation

	closed bool
}

// OpenDir opens the store rooted at dir with the default engine settings.
func OpenDir(dir string) (*Store, error) {
	return Open(config.DefaultDB(dir))
}

// Open loads every segment under cfg.RootPath/segments and starts with an
// empty memtable.
func Open(cfg config.DB) (*Store, error) {
	if err := cfg.Validate(); err != nil {
		return nil, dberrors.Open(cfg.RootPath, errors.Join(dberrors.ErrInvalidArgument, err))
	}

	enc, err := encoding.Lookup(cfg.SSTable.Encoding)
	if err != nil {
		return nil, dberrors.Open(cfg.RootPath, err)
	}

	dataDir := filepath.Join(cfg.RootPath, segmentsDir)
	if err := os.MkdirAll(dataDir, 0o750); err != nil {
		return nil, dberrors.Open(dataDir, err)
	}

	s := &Store{
		cfg:      cfg,
		rootDir:  cfg.RootPath,
		dataDir:  dataDir,
		encoder:  enc,
		mt:       memtable.New(cfg.Memtable.Capacity),
		segments: make(map[types.Generation]*persistence.SSTable),
		gen:      clock.NewGeneration(0),
	}

	if err := s.loadSegments(); err != nil {
		s.closeSegments()
		return nil, err
	}

	slog.Info("store opened",
		"path", s.rootDir, "segments", len(s.ids), "next_id", s.gen.Peek(), "encoding", enc.Name())

	return s, nil
}

func (s *Store) loadSegments() error {
	dirEntries, err := os.ReadDir(s.dataDir)
	if err != nil {
		return dberrors.Open(s.dataDir, err)
	}

	for _, de := range dirEntries {
		if de.IsDir() {
			continue
		}

		id, err := parseGeneration(de.Name())
		if err != nil {
			return dberrors.Open(filepath.Join(s.dataDir, de.Name()), err)
		}

		table, err := s.builder(id).Build()
		if err != nil {
			return dberrors.Open(persistence.SegmentPath(s.dataDir, id), err)
		}

		s.register(table)
	}

	return nil
}

// parseGeneration accepts canonical decimal ids only, so that the name
// maps back to the same path. The largest id is reserved: no id follows it.
func parseGeneration(name string) (types.Generation, error) {
	id, err := strconv.ParseUint(name, 10, 64)
	if err != nil || id == math.MaxUint64 || strconv.FormatUint(id, 10) != name {
		return 0, fmt.Errorf("%w: %q", dberrors.ErrBadSegmentName, name)
	}
	return id, nil
}

func (s *Store) builder(id types.Generation) *persistence.Builder {
	return persistence.NewBuilder().
		WithID(id).
		WithDataDir(s.dataDir).
		WithEncoder(s.encoder).
		WithStride(s.cfg.SSTable.IndexStride).
		WithSync(s.cfg.SSTable.Sync)
}

func (s *Store) register(table *persistence.SSTable) {
	id := table.ID()
	s.segments[id] = table
	i, _ := slices.BinarySearch(s.ids, id)
	s.ids = slices.Insert(s.ids, i, id)
	s.gen.Observe(id)
}

// Insert buffers e. When the buffer reaches capacity it is flushed into a
// new segment before Insert returns. Entries the encoder cannot write are
// rejected up front. If an earlier rotation failed, Insert retries it first
// and refuses e while the buffer stays full.
func (s *Store) Insert(e types.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return dberrors.Insert(dberrors.ErrClosed)
	}
	if e.Key == nil {
		return dberrors.Insert(fmt.Errorf("%w: nil key", dberrors.ErrInvalidArgument))
	}

	if _, err := s.encoder.Sized(e); err != nil {
		return dberrors.Insert(fmt.Errorf("%w: %w", dberrors.ErrInvalidArgument, err))
	}

	if s.mt.IsFull() {
		if err := s.flush(); err != nil {
			return dberrors.Insert(err)
		}
	}

	s.mt.Insert(e)

	if s.mt.IsFull() {
		if err := s.flush(); err != nil {
			return dberrors.Insert(err)
		}
	}

	return nil
}

// Put inserts a key/value pair.
func (s *Store) Put(key, value []byte) error {
	return s.Insert(types.Entry{Key: key, Value: value})
}

// Search returns the newest entry for key. Absence is (Entry{}, false, nil).
func (s *Store) Search(key types.Key) (types.Entry, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return types.Entry{}, false, dberrors.ErrClosed
	}

	if e, ok := s.mt.Search(key); ok {
		return e, true, nil
	}

	for i := len(s.ids) - 1; i >= 0; i-- {
		table := s.segments[s.ids[i]]
		e, ok, err := table.Search(key)
		if err != nil {
			return types.Entry{}, false, &dberrors.OpError{Op: "search", Path: table.Path(), Err: err}
		}
		if ok {
			return e, true, nil
		}
	}

	return types.Entry{}, false, nil
}

// Get returns the newest value for key.
func (s *Store) Get(key []byte) ([]byte, bool, error) {
	e, ok, err := s.Search(key)
	return e.Value, ok, err
}

// Flush rotates the memtable into a new segment. It does nothing when the
// memtable is empty.
func (s *Store) Flush() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return dberrors.ErrClosed
	}
	return s.flush()
}

func (s *Store) flush() error {
	if s.mt.Len() == 0 {
		return nil
	}

	id := s.gen.Advance()
	path := persistence.SegmentPath(s.dataDir, id)

	if _, taken := s.segments[id]; taken {
		return &dberrors.OpError{Op: "flush", Path: path, Err: dberrors.ErrSegmentExists}
	}

	table, err := s.builder(id).Build()
	if err != nil {
		return &dberrors.OpError{Op: "flush", Path: path, Err: err}
	}

	entries := s.mt.Iterate()
	if err := table.Flush(entries); err != nil {
		if cerr := table.Close(); cerr != nil {
			slog.Warn("failed to close segment after flush error", "path", path, "error", cerr)
		}
		return &dberrors.OpError{Op: "flush", Path: path, Err: err}
	}

	s.register(table)
	s.mt = memtable.New(s.cfg.Memtable.Capacity)

	slog.Info("memtable flushed",
		"id", id, "entries", len(entries), "bytes", table.Size(), "segments", len(s.ids))

	return nil
}

// Stats describes the store's current shape.
type Stats struct {
	MemtableLen      int                `json:"memtable_len"`
	MemtableCapacity int                `json:"memtable_capacity"`
	Segments         []types.Generation `json:"segments"`
	NextID           types.Generation   `json:"next_id"`
	Encoding         string             `json:"encoding"`
}

func (s *Store) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()

	return Stats{
		MemtableLen:      s.mt.Len(),
		MemtableCapacity: s.mt.Capacity(),
		Segments:         slices.Clone(s.ids),
		NextID:           s.gen.Peek(),
		Encoding:         s.encoder.Name(),
	}
}

// Close flushes the memtable when configured to and releases every
// segment handle.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}

	var errs []error
	if s.cfg.FlushOnClose {
		if err := s.flush(); err != nil {
			errs = append(errs, err)
		}
	}
	errs = append(errs, s.closeSegments())
	s.closed = true

	return errors.Join(errs...)
}

func (s *Store) closeSegments() error {
	var errs []error
	for _, id := range s.ids {
		if err := s.segments[id].Close(); err != nil {
			slog.Warn("failed to close segment", "id", id, "error", err)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
