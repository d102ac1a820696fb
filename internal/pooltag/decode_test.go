package pooltag

import (
	"encoding/binary"
	"testing"
)

// buildTable assembles a wire-format tag table with the given records.
// A record is (pagedAllocs, pagedFrees, pagedBytes, npAllocs, npFrees,
// npBytes); tags are stamped onto the records by the caller. count lets
// tests declare more or fewer entries than supplied.
func buildTable(count uint32, records ...[6]uint64) []byte {
	buf := make([]byte, tableHeaderSize)
	binary.LittleEndian.PutUint32(buf[0:4], count)

	for _, r := range records {
		rec := make([]byte, tagRecordSize)
		binary.LittleEndian.PutUint32(rec[4:8], uint32(r[0]))
		binary.LittleEndian.PutUint32(rec[8:12], uint32(r[1]))
		binary.LittleEndian.PutUint64(rec[16:24], r[2])
		binary.LittleEndian.PutUint32(rec[24:28], uint32(r[3]))
		binary.LittleEndian.PutUint32(rec[28:32], uint32(r[4]))
		binary.LittleEndian.PutUint64(rec[32:40], r[5])
		buf = append(buf, rec...)
	}
	return buf
}

func TestDecodeTagTable_SingleRecord(t *testing.T) {
	buf := buildTable(1, [6]uint64{10, 4, 4096, 7, 2, 8192})
	copy(buf[tableHeaderSize:], "Ntfs")

	tags, err := DecodeTagTable(buf)
	if err != nil {
		t.Fatalf("DecodeTagTable failed: %v", err)
	}
	if len(tags) != 1 {
		t.Fatalf("expected 1 tag, got %d", len(tags))
	}

	c, ok := tags[TagFromString("Ntfs")]
	if !ok {
		t.Fatal("tag Ntfs not decoded")
	}
	if c.PagedBytes != 4096 {
		t.Errorf("PagedBytes = %d, want 4096", c.PagedBytes)
	}
	if c.NonpagedBytes != 8192 {
		t.Errorf("NonpagedBytes = %d, want 8192", c.NonpagedBytes)
	}
	if c.PagedOutstanding != 6 {
		t.Errorf("PagedOutstanding = %d, want 6", c.PagedOutstanding)
	}
	if c.NonpagedOutstanding != 5 {
		t.Errorf("NonpagedOutstanding = %d, want 5", c.NonpagedOutstanding)
	}
	if c.TotalBytes() != 12288 {
		t.Errorf("TotalBytes = %d, want 12288", c.TotalBytes())
	}
}

func TestDecodeTagTable_HeaderTruncated(t *testing.T) {
	_, err := DecodeTagTable([]byte{0x01, 0x00, 0x00})
	if err == nil {
		t.Fatal("expected error for truncated header")
	}
	if _, ok := err.(*SampleError); !ok {
		t.Errorf("expected *SampleError, got %T", err)
	}
}

func TestDecodeTagTable_CountOverrunsBuffer(t *testing.T) {
	// Declares 5 entries but supplies only 2 complete records; the decoder
	// must stop at the buffer bound, not fail.
	buf := buildTable(5,
		[6]uint64{1, 0, 100, 0, 0, 200},
		[6]uint64{2, 0, 300, 0, 0, 400},
	)
	copy(buf[tableHeaderSize:], "AaAa")
	copy(buf[tableHeaderSize+tagRecordSize:], "BbBb")

	tags, err := DecodeTagTable(buf)
	if err != nil {
		t.Fatalf("DecodeTagTable failed: %v", err)
	}
	if len(tags) != 2 {
		t.Errorf("expected 2 decoded tags, got %d", len(tags))
	}
}

func TestDecodeTagTable_HugeDeclaredCount(t *testing.T) {
	// A corrupt header claiming ~4 billion entries must neither allocate
	// for them nor decode past the single record actually supplied.
	buf := buildTable(^uint32(0), [6]uint64{3, 1, 500, 0, 0, 600})
	copy(buf[tableHeaderSize:], "Lone")

	tags, err := DecodeTagTable(buf)
	if err != nil {
		t.Fatalf("DecodeTagTable failed: %v", err)
	}
	if len(tags) != 1 {
		t.Fatalf("expected 1 decoded tag, got %d", len(tags))
	}
	if _, ok := tags[TagFromString("Lone")]; !ok {
		t.Error("supplied record should have been decoded")
	}
}

func TestDecodeTagTable_TruncatedTrailingRecordSkipped(t *testing.T) {
	buf := buildTable(2, [6]uint64{1, 0, 100, 0, 0, 200})
	copy(buf[tableHeaderSize:], "GoOd")
	// Append half a record; the partial record is skipped, the good one kept.
	buf = append(buf, make([]byte, tagRecordSize/2)...)

	tags, err := DecodeTagTable(buf)
	if err != nil {
		t.Fatalf("DecodeTagTable failed: %v", err)
	}
	if len(tags) != 1 {
		t.Fatalf("expected 1 decoded tag, got %d", len(tags))
	}
	if _, ok := tags[TagFromString("GoOd")]; !ok {
		t.Error("complete record should have been decoded")
	}
}

func TestDecodeTagTable_StopsAtDeclaredCount(t *testing.T) {
	// Two records in the buffer, count says one.
	buf := buildTable(1,
		[6]uint64{1, 0, 100, 0, 0, 200},
		[6]uint64{2, 0, 300, 0, 0, 400},
	)
	copy(buf[tableHeaderSize:], "OnLy")
	copy(buf[tableHeaderSize+tagRecordSize:], "Skip")

	tags, err := DecodeTagTable(buf)
	if err != nil {
		t.Fatalf("DecodeTagTable failed: %v", err)
	}
	if len(tags) != 1 {
		t.Fatalf("expected 1 tag, got %d", len(tags))
	}
	if _, ok := tags[TagFromString("Skip")]; ok {
		t.Error("record beyond declared count should not be decoded")
	}
}

func TestTagDisplay_NonPrintableBytes(t *testing.T) {
	tests := []struct {
		name string
		tag  Tag
		want string
	}{
		{"printable", Tag{'N', 't', 'f', 's'}, "Ntfs"},
		{"control bytes", Tag{'V', 'a', 'd', 0x01}, "Vad."},
		{"high bytes", Tag{0xfe, 0xff, 'a', 'b'}, "..ab"},
		{"all non-printable", Tag{0x00, 0x01, 0x7f, 0x80}, "...."},
		{"space is printable", Tag{'I', 'r', 'p', ' '}, "Irp "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.tag.Display(); got != tt.want {
				t.Errorf("Display() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestTagDisplay_DoesNotAffectIdentity(t *testing.T) {
	a := Tag{'V', 'a', 'd', 0x01}
	b := Tag{'V', 'a', 'd', 0x02}
	if a.Display() != b.Display() {
		t.Fatalf("expected identical display strings, got %q and %q", a.Display(), b.Display())
	}
	if a == b {
		t.Error("distinct raw tags must remain distinct keys")
	}
}

func TestTagCompare(t *testing.T) {
	a := TagFromString("AAAA")
	b := TagFromString("AAAB")
	if a.Compare(b) >= 0 {
		t.Errorf("Compare(AAAA, AAAB) = %d, want < 0", a.Compare(b))
	}
	if b.Compare(a) <= 0 {
		t.Errorf("Compare(AAAB, AAAA) = %d, want > 0", b.Compare(a))
	}
	if a.Compare(a) != 0 {
		t.Errorf("Compare(AAAA, AAAA) = %d, want 0", a.Compare(a))
	}
}
