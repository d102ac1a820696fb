// Package pooltag queries the kernel pool-tag allocation table and decodes
// it into per-tag usage counters.
//
// A pool tag is the 4-byte label a kernel component stamps on its
// allocations. Tags are opaque byte keys: two tags are the same series if
// and only if their four bytes match exactly. Rendering for humans is a
// separate concern (see Tag.Display) and never affects identity.
package pooltag

import (
	"bytes"
	"fmt"
)

// Tag is a raw 4-byte pool tag identifier. It may contain non-printable
// bytes; use Display for human-facing output.
type Tag [4]byte

// TagFromString builds a Tag from the first four bytes of s, padding with
// spaces when s is shorter. Intended for tests and lookup tables.
func TagFromString(s string) Tag {
	t := Tag{' ', ' ', ' ', ' '}
	copy(t[:], s)
	return t
}

// Display renders the tag for human output, substituting '.' for any byte
// outside the printable ASCII range. The returned string is display-only
// and must not be used as a lookup key.
func (t Tag) Display() string {
	var b [4]byte
	for i, c := range t {
		if c >= 0x20 && c < 0x7f {
			b[i] = c
		} else {
			b[i] = '.'
		}
	}
	return string(b[:])
}

// Compare returns -1, 0 or 1 ordering tags byte-wise. Used for
// deterministic tie-breaking in ranked output.
func (t Tag) Compare(other Tag) int {
	return bytes.Compare(t[:], other[:])
}

// Counters holds the usage counters reported for one tag in one query.
type Counters struct {
	PagedBytes          uint64
	NonpagedBytes       uint64
	PagedOutstanding    int64 // allocations minus frees
	NonpagedOutstanding int64
}

// TotalBytes returns combined paged and nonpaged usage.
func (c Counters) TotalBytes() uint64 {
	return c.PagedBytes + c.NonpagedBytes
}

// SampleError reports a definitive failure to obtain a pool-tag sample.
// Individual malformed records are not errors (the decoder skips them);
// SampleError means the query itself failed or the buffer could not be
// sized to fit the table.
type SampleError struct {
	Reason string
	Status uint32 // NTSTATUS when the failure came from the OS query, else 0
}

func (e *SampleError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("pool tag sample failed: %s (status 0x%08X)", e.Reason, e.Status)
	}
	return fmt.Sprintf("pool tag sample failed: %s", e.Reason)
}
