package pooltag

import (
	"encoding/binary"
)

// Wire layout of the pool-tag table returned by the system query.
// The header's first 4 bytes give the entry count; records start at
// offset 8 and are 40 bytes each, little-endian:
//
//	offset  0  tag               [4]byte
//	offset  4  paged allocs      uint32
//	offset  8  paged frees       uint32
//	offset 12  (padding)
//	offset 16  paged bytes       uint64
//	offset 24  nonpaged allocs   uint32
//	offset 28  nonpaged frees    uint32
//	offset 32  nonpaged bytes    uint64
const (
	tableHeaderSize = 8
	tagRecordSize   = 40
)

// DecodeTagTable decodes a raw pool-tag table buffer into a mapping from
// tag to counters. Decoding is field-by-field with a bounds check before
// every record: it stops at the declared entry count, never reads past the
// end of buf, and a truncated trailing record is skipped rather than
// failing the records already decoded.
func DecodeTagTable(buf []byte) (map[Tag]Counters, error) {
	if len(buf) < tableHeaderSize {
		return nil, &SampleError{Reason: "tag table header truncated"}
	}

	count := int(binary.LittleEndian.Uint32(buf[0:4]))

	// Size the map from the buffer, not the header: a corrupt count must
	// not drive a huge allocation before the bounds checks run.
	hint := (len(buf) - tableHeaderSize) / tagRecordSize
	if count < hint {
		hint = count
	}
	tags := make(map[Tag]Counters, hint)

	offset := tableHeaderSize
	for i := 0; i < count; i++ {
		if offset+tagRecordSize > len(buf) {
			// Declared count overruns the buffer; keep what decoded cleanly.
			break
		}
		rec := buf[offset : offset+tagRecordSize]

		var tag Tag
		copy(tag[:], rec[0:4])

		pagedAllocs := binary.LittleEndian.Uint32(rec[4:8])
		pagedFrees := binary.LittleEndian.Uint32(rec[8:12])
		pagedBytes := binary.LittleEndian.Uint64(rec[16:24])
		nonpagedAllocs := binary.LittleEndian.Uint32(rec[24:28])
		nonpagedFrees := binary.LittleEndian.Uint32(rec[28:32])
		nonpagedBytes := binary.LittleEndian.Uint64(rec[32:40])

		tags[tag] = Counters{
			PagedBytes:          pagedBytes,
			NonpagedBytes:       nonpagedBytes,
			PagedOutstanding:    int64(pagedAllocs) - int64(pagedFrees),
			NonpagedOutstanding: int64(nonpagedAllocs) - int64(nonpagedFrees),
		}

		offset += tagRecordSize
	}

	return tags, nil
}
