package dberrors

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound        = errors.New("lsmkv: not found")
	ErrClosed          = errors.New("lsmkv: closed")
	ErrInvalidArgument = errors.New("lsmkv: invalid argument")
	ErrOutOfOrder      = errors.New("lsmkv: out-of-order append")
	ErrBadSegmentName  = errors.New("lsmkv: segment file name is not a generation id")
	ErrSegmentExists   = errors.New("lsmkv: segment id already in use")
	ErrChecksum        = errors.New("lsmkv: record checksum mismatch")
	ErrCorrupt         = errors.New("lsmkv: malformed record")
	ErrIO              = errors.New("lsmkv: i/o failure")
)

// EncodeError reports a record that could not be serialized.
type EncodeError struct {
	Message string
	Err     error
}

func (e *EncodeError) Error() string {
	if e.Err == nil {
		return "encode: " + e.Message
	}
	return fmt.Sprintf("encode: %s: %v", e.Message, e.Err)
}

func (e *EncodeError) Unwrap() error { return e.Err }

// DecodeError reports a record that started but could not be decoded.
// A clean end of stream is io.EOF, never a DecodeError.
type DecodeError struct {
	Message string
	Err     error
}

func (e *DecodeError) Error() string {
	if e.Err == nil {
		return "decode: " + e.Message
	}
	return fmt.Sprintf("decode: %s: %v", e.Message, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// OpError records the store or segment operation that failed along with
// the path involved, if any. Op is one of "open", "insert", "flush",
// "search", "seek", "read", "write", "truncate", "sync".
type OpError struct {
	Op   string
	Path string
	Err  error
}

func (e *OpError) Error() string {
	if e.Path == "" {
		return e.Op + ": " + e.Err.Error()
	}
	return e.Op + " " + e.Path + ": " + e.Err.Error()
}

func (e *OpError) Unwrap() error { return e.Err }

// IO wraps a failed file or stream operation. The result matches ErrIO
// as well as the original error.
func IO(op, path string, err error) error {
	if err == nil {
		return nil
	}
	return &OpError{Op: op, Path: path, Err: &ioError{err: err}}
}

// Open wraps err as an OpenError.
func Open(path string, err error) error {
	return &OpError{Op: "open", Path: path, Err: err}
}

// Insert wraps err as an InsertError.
func Insert(err error) error {
	return &OpError{Op: "insert", Err: err}
}

// IsOp reports whether err is an OpError for op.
func IsOp(err error, op string) bool {
	var oe *OpError
	for errors.As(err, &oe) {
		if oe.Op == op {
			return true
		}
		err = oe.Err
	}
	return false
}

type ioError struct {
	err error
}

func (e *ioError) Error() string { return e.err.Error() }

func (e *ioError) Unwrap() []error { return []error{ErrIO, e.err} }
