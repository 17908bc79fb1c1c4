package persistence

import (
	"bufio"
	"errors"
	"io"

	"lsmkv/pkg/dberrors"
	"lsmkv/pkg/types"
)

// Iterator decodes records sequentially on its own read handle. It stops at
// the clean end of the stream; a malformed record stops it with Err set.
//
//	it := table.Iterate()
//	defer it.Close()
//	for it.Next() {
//		use(it.Entry())
//	}
//	if err := it.Err(); err != nil { ... }
type Iterator struct {
	table *SSTable
	start int64

	src    io.ReadSeekCloser
	reader *countingReader

	entry  types.Entry
	offset int64
	done   bool
	err    error
}

func newIterator(table *SSTable, start int64) *Iterator {
	return &Iterator{table: table, start: start}
}

// Next advances to the next record and reports whether there is one.
func (it *Iterator) Next() bool {
	if it.done {
		return false
	}
	if it.src == nil {
		if err := it.open(); err != nil {
			it.fail(err)
			return false
		}
	}

	offset := it.start + it.reader.n
	e, err := it.table.encoder.ReadRecord(it.reader)
	if errors.Is(err, io.EOF) {
		it.done = true
		it.entry = types.Entry{}
		return false
	}
	if err != nil {
		it.fail(it.table.readErr(err))
		return false
	}

	it.entry, it.offset = e, offset
	return true
}

// Entry returns the current record.
func (it *Iterator) Entry() types.Entry { return it.entry }

// Offset returns the start offset of the current record.
func (it *Iterator) Offset() int64 { return it.offset }

func (it *Iterator) Err() error { return it.err }

// Reset rewinds the iterator to its start offset.
func (it *Iterator) Reset() {
	it.done, it.err, it.entry = false, nil, types.Entry{}
	if it.src == nil {
		return
	}
	if _, err := it.src.Seek(it.start, io.SeekStart); err != nil {
		it.fail(dberrors.IO("seek", it.table.Path(), err))
		return
	}
	it.reader = &countingReader{r: bufio.NewReaderSize(it.src, bufferSize)}
}

// Close releases the iterator's read handle.
func (it *Iterator) Close() error {
	it.done = true
	if it.src == nil {
		return nil
	}
	err := it.src.Close()
	it.src = nil
	return err
}

func (it *Iterator) open() error {
	src, err := it.table.sink.NewReader()
	if err != nil {
		return dberrors.IO("open", it.table.Path(), err)
	}
	if _, err := src.Seek(it.start, io.SeekStart); err != nil {
		_ = src.Close()
		return dberrors.IO("seek", it.table.Path(), err)
	}
	it.src = src
	it.reader = &countingReader{r: bufio.NewReaderSize(src, bufferSize)}
	return nil
}

func (it *Iterator) fail(err error) {
	it.err = err
	it.done = true
	it.entry = types.Entry{}
}
