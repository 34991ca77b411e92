// Package recid owns record identifiers. Ids are UUIDv7: the first 48 bits
// carry unix milliseconds, so ids are byte-sortable in creation order and a
// wall-clock range maps directly onto an id range.
package recid

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ID is a time-ordered record identifier.
type ID = uuid.UUID

// Nil is the zero ID.
var Nil = uuid.Nil

// New generates an id for the current instant. Within a single process ids are
// non-decreasing with wall-clock order.
func New() (ID, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return Nil, fmt.Errorf("generate record id: %w", err)
	}
	return id, nil
}

// Parse parses an id from its canonical string form.
func Parse(s string) (ID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return Nil, fmt.Errorf("parse record id %q: %w", s, err)
	}
	return id, nil
}

// TimeOf extracts the creation instant encoded in the id, at millisecond
// precision.
func TimeOf(id ID) time.Time {
	ms := int64(id[0])<<40 | int64(id[1])<<32 | int64(id[2])<<24 |
		int64(id[3])<<16 | int64(id[4])<<8 | int64(id[5])
	return time.UnixMilli(ms).UTC()
}

// LowerBound returns the smallest valid id for the given instant. Every id
// generated at or after t compares >= LowerBound(t).
func LowerBound(t time.Time) ID {
	var id ID
	putMillis(&id, t)
	id[6] = 0x70 // version 7, zero sub-millisecond bits
	id[8] = 0x80 // RFC 4122 variant, zero sequence bits
	return id
}

// UpperBound returns the largest valid id for the given instant. Every id
// generated at or before t compares <= UpperBound(t), making (start, end)
// ranges inclusive on both sides.
func UpperBound(t time.Time) ID {
	var id ID
	putMillis(&id, t)
	id[6] = 0x7f
	id[7] = 0xff
	id[8] = 0xbf
	for i := 9; i < 16; i++ {
		id[i] = 0xff
	}
	return id
}

func putMillis(id *ID, t time.Time) {
	ms := t.UnixMilli()
	id[0] = byte(ms >> 40)
	id[1] = byte(ms >> 32)
	id[2] = byte(ms >> 24)
	id[3] = byte(ms >> 16)
	id[4] = byte(ms >> 8)
	id[5] = byte(ms)
}
