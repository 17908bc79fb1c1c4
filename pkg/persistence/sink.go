package persistence

import (
	"bytes"
	"errors"
	"io"
	"os"
)

// Sink is the byte stream behind a segment. The segment owns the sink and
// uses it for writes and point lookups; scans read through NewReader so
// that they never move the sink's own position.
type Sink interface {
	io.ReadWriteSeeker
	Truncate(size int64) error
	Sync() error
	// NewReader returns an independent read cursor over the bytes written
	// so far.
	NewReader() (io.ReadSeekCloser, error)
	// Path names the backing store in errors and logs.
	Path() string
	Close() error
}

// FileSink is a Sink over a regular file.
type FileSink struct {
	*os.File
}

// OpenFileSink opens path for read and write, creating it if needed.
// Existing content is kept.
func OpenFileSink(path string) (*FileSink, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o644)
	if err != nil {
		return nil, err
	}
	return &FileSink{File: f}, nil
}

func (s *FileSink) NewReader() (io.ReadSeekCloser, error) {
	return os.Open(s.Name())
}

func (s *FileSink) Path() string {
	return s.Name()
}

var errNegativeOffset = errors.New("persistence: negative offset")

// MemSink is an in-memory Sink, used for standalone segments and tests.
type MemSink struct {
	buf []byte
	pos int64
}

// NewMemSink returns a sink holding a copy of data.
func NewMemSink(data []byte) *MemSink {
	return &MemSink{buf: bytes.Clone(data)}
}

func (m *MemSink) Read(p []byte) (int, error) {
	if m.pos >= int64(len(m.buf)) {
		return 0, io.EOF
	}
	n := copy(p, m.buf[m.pos:])
	m.pos += int64(n)
	return n, nil
}

func (m *MemSink) Write(p []byte) (int, error) {
	end := m.pos + int64(len(p))
	if end > int64(len(m.buf)) {
		grown := make([]byte, end)
		copy(grown, m.buf)
		m.buf = grown
	}
	copy(m.buf[m.pos:], p)
	m.pos = end
	return len(p), nil
}

func (m *MemSink) Seek(offset int64, whence int) (int64, error) {
	var abs int64
	switch whence {
	case io.SeekStart:
		abs = offset
	case io.SeekCurrent:
		abs = m.pos + offset
	case io.SeekEnd:
		abs = int64(len(m.buf)) + offset
	default:
		return 0, errors.New("persistence: invalid whence")
	}
	if abs < 0 {
		return 0, errNegativeOffset
	}
	m.pos = abs
	return abs, nil
}

func (m *MemSink) Truncate(size int64) error {
	if size < 0 {
		return errNegativeOffset
	}
	if size <= int64(len(m.buf)) {
		m.buf = m.buf[:size]
		return nil
	}
	m.buf = append(m.buf, make([]byte, size-int64(len(m.buf)))...)
	return nil
}

func (m *MemSink) Sync() error { return nil }

func (m *MemSink) NewReader() (io.ReadSeekCloser, error) {
	return nopCloser{bytes.NewReader(bytes.Clone(m.buf))}, nil
}

func (m *MemSink) Path() string { return "memory" }

func (m *MemSink) Close() error { return nil }

// Bytes returns the sink's content.
func (m *MemSink) Bytes() []byte { return m.buf }

type nopCloser struct {
	io.ReadSeeker
}

func (nopCloser) Close() error { return nil }
