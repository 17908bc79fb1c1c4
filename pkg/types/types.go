package types

import (
	"bytes"
	"fmt"
	"strings"
)

// Key is an immutable byte slice type alias used for clarity.
type Key = []byte

// Value is an immutable byte slice type alias used for clarity.
type Value = []byte

// Generation identifies a segment. Higher generations are newer.
type Generation = uint64

// Entry is the atomic record: a key and its value.
type Entry struct {
	Key   Key
	Value Value
}

// NewEntry builds an entry from string key and value.
func NewEntry(key, value string) Entry {
	return Entry{Key: []byte(key), Value: []byte(value)}
}

// Clone returns a deep copy that shares no memory with e.
func (e Entry) Clone() Entry {
	return Entry{
		Key:   bytes.Clone(e.Key),
		Value: bytes.Clone(e.Value),
	}
}

// Less orders entries by key only.
func (e Entry) Less(than Entry) bool {
	return bytes.Compare(e.Key, than.Key) < 0
}

// Equal reports whether both key and value match.
func (e Entry) Equal(other Entry) bool {
	return bytes.Equal(e.Key, other.Key) && bytes.Equal(e.Value, other.Value)
}

func (e Entry) String() string {
	return fmt.Sprintf("Entry{key: %q, value: %q}",
		strings.ToValidUTF8(string(e.Key), "�"),
		strings.ToValidUTF8(string(e.Value), "�"),
	)
}

// CompareKeys compares two keys lexicographically.
func CompareKeys(a, b Key) int {
	return bytes.Compare(a, b)
}
