package encoding

import (
	"errors"
	"fmt"
	"io"

	"lsmkv/pkg/dberrors"
	"lsmkv/pkg/types"
)

// ReadHeader fills buf from r. It maps a stream that ends before any byte
// was read to io.EOF and a partial read to a DecodeError, which is the
// distinction every codec needs at a record boundary.
func ReadHeader(r io.Reader, buf []byte) error {
	n, err := io.ReadFull(r, buf)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, io.EOF) && n == 0:
		return io.EOF
	case errors.Is(err, io.ErrUnexpectedEOF):
		return &dberrors.DecodeError{Message: "truncated record header", Err: err}
	default:
		return &dberrors.DecodeError{Message: "read record header", Err: err}
	}
}

// ReadBody fills buf from r; any shortfall is a truncated record.
func ReadBody(r io.Reader, buf []byte, what string) error {
	if _, err := io.ReadFull(r, buf); err != nil {
		if errors.Is(err, io.EOF) {
			err = io.ErrUnexpectedEOF
		}
		return &dberrors.DecodeError{Message: "truncated " + what, Err: err}
	}
	return nil
}

// Write writes p fully, reporting failures as EncodeError.
func Write(w io.Writer, p []byte) error {
	if _, err := w.Write(p); err != nil {
		return &dberrors.EncodeError{Message: "write record", Err: err}
	}
	return nil
}

// CheckSize rejects an entry whose key or value exceeds limit bytes.
func CheckSize(e types.Entry, limit int) error {
	if len(e.Key) > limit || len(e.Value) > limit {
		return &dberrors.EncodeError{
			Message: fmt.Sprintf("entry too large: key %d bytes, value %d bytes", len(e.Key), len(e.Value)),
		}
	}
	return nil
}
