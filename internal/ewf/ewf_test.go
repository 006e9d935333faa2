package ewf

import (
	"bytes"
	"encoding/binary"
	"reflect"
	"strings"
	"testing"

	"github.com/klauspost/compress/zlib"
)

// buildSection returns a 76-byte descriptor followed by the payload.
func buildSection(typ string, next, size uint64, payload []byte) []byte {
	desc := make([]byte, descriptorSize)
	copy(desc[:16], typ)
	binary.LittleEndian.PutUint64(desc[16:24], next)
	binary.LittleEndian.PutUint64(desc[24:32], size)
	return append(desc, payload...)
}

// buildImage concatenates the file header and the given section bytes.
func buildImage(sections ...[]byte) []byte {
	img := make([]byte, 0, fileHeaderSize)
	img = append(img, Signature[:]...)
	img = append(img, make([]byte, 5)...)
	for _, s := range sections {
		img = append(img, s...)
	}
	return img
}

func deflate(t *testing.T, data []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zlib.NewWriter(&buf)
	if _, err := zw.Write(data); err != nil {
		t.Fatalf("compress: %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close compressor: %v", err)
	}
	return buf.Bytes()
}

func TestParse_RejectsMissingSignature(t *testing.T) {
	res := Parse(make([]byte, 512))

	if res.Valid {
		t.Fatalf("expected Valid=false for zeroed input")
	}
	if len(res.Sections) != 0 {
		t.Fatalf("sections=%d want 0", len(res.Sections))
	}
	if len(res.Errors) != 1 || !strings.Contains(res.Errors[0], "Invalid EWF signature") {
		t.Fatalf("errors=%v want one mentioning Invalid EWF signature", res.Errors)
	}
}

func TestParse_RejectsShortInput(t *testing.T) {
	res := Parse([]byte{0x45, 0x56})
	if res.Valid {
		t.Fatalf("expected Valid=false for 2-byte input")
	}
}

func TestParse_MinimalDoneImage(t *testing.T) {
	img := buildImage(buildSection(SectionTypeDone, 0, descriptorSize, nil))

	res := Parse(img)
	if !res.Valid {
		t.Fatalf("expected Valid=true, errors=%v", res.Errors)
	}
	if len(res.Sections) != 1 || res.Sections[0].Type != SectionTypeDone {
		t.Fatalf("sections=%v want single done section", res.Sections)
	}
	if len(res.Metadata) != 0 {
		t.Fatalf("metadata=%v want empty", res.Metadata)
	}
	if res.RawDisk != nil {
		t.Fatalf("expected no raw disk data")
	}
}

func TestParse_HeaderAliasResolution(t *testing.T) {
	payload := deflate(t, []byte("c\tACME-1\ne\tJane\nfoo\tbar\n"))
	headerNext := uint64(fileHeaderSize + descriptorSize + len(payload))
	img := buildImage(
		buildSection(SectionTypeHeader, headerNext, uint64(len(payload)), payload),
		buildSection(SectionTypeDone, 0, descriptorSize, nil),
	)

	res := Parse(img)
	if !res.Valid {
		t.Fatalf("expected Valid=true, errors=%v", res.Errors)
	}

	want := map[string]string{
		MetaCaseNumber:   "ACME-1",
		MetaExaminerName: "Jane",
		"foo":            "bar",
	}
	if !reflect.DeepEqual(res.Metadata, want) {
		t.Fatalf("metadata=%v want %v", res.Metadata, want)
	}
}

func TestParse_HeaderEqualsSeparatorFallback(t *testing.T) {
	payload := []byte("case=EX=99\nnotes=weekend acquisition\n")
	next := uint64(fileHeaderSize + descriptorSize + len(payload))
	img := buildImage(
		buildSection(SectionTypeHeader, next, uint64(len(payload)), payload),
		buildSection(SectionTypeDone, 0, descriptorSize, nil),
	)

	res := Parse(img)
	if res.Metadata[MetaCaseNumber] != "EX=99" {
		t.Fatalf("case_number=%q want EX=99", res.Metadata[MetaCaseNumber])
	}
	if res.Metadata["notes"] != "weekend acquisition" {
		t.Fatalf("notes=%q want weekend acquisition", res.Metadata["notes"])
	}
}

func TestParse_Header2UTF16LE(t *testing.T) {
	var text bytes.Buffer
	text.Write([]byte{0xff, 0xfe})
	for _, r := range "e\tMüller\n" {
		var cu [2]byte
		binary.LittleEndian.PutUint16(cu[:], uint16(r))
		text.Write(cu[:])
	}

	payload := text.Bytes()
	next := uint64(fileHeaderSize + descriptorSize + len(payload))
	img := buildImage(
		buildSection(SectionTypeHeader2, next, uint64(len(payload)), payload),
		buildSection(SectionTypeDone, 0, descriptorSize, nil),
	)

	res := Parse(img)
	if res.Metadata[MetaExaminerName] != "Müller" {
		t.Fatalf("examiner_name=%q want Müller", res.Metadata[MetaExaminerName])
	}
}

func TestParse_LaterHeaderOverridesEarlier(t *testing.T) {
	p1 := []byte("c\tFIRST\n")
	p2 := []byte("c\tSECOND\n")
	next1 := uint64(fileHeaderSize + descriptorSize + len(p1))
	next2 := next1 + uint64(descriptorSize+len(p2))
	img := buildImage(
		buildSection(SectionTypeHeader, next1, uint64(len(p1)), p1),
		buildSection(SectionTypeHeader2, next2, uint64(len(p2)), p2),
		buildSection(SectionTypeDone, 0, descriptorSize, nil),
	)

	res := Parse(img)
	if res.Metadata[MetaCaseNumber] != "SECOND" {
		t.Fatalf("case_number=%q want SECOND", res.Metadata[MetaCaseNumber])
	}
}

func TestParse_VolumeGeometry(t *testing.T) {
	payload := make([]byte, 32)
	payload[0] = MediaTypeFixed
	binary.LittleEndian.PutUint32(payload[4:8], 64)      // chunk count
	binary.LittleEndian.PutUint32(payload[8:12], 64)     // sectors per chunk
	binary.LittleEndian.PutUint32(payload[12:16], 512)   // bytes per sector
	binary.LittleEndian.PutUint64(payload[16:24], 4096)  // sector count

	next := uint64(fileHeaderSize + descriptorSize + len(payload))
	img := buildImage(
		buildSection(SectionTypeVolume, next, uint64(len(payload)), payload),
		buildSection(SectionTypeDone, 0, descriptorSize, nil),
	)

	res := Parse(img)
	if res.Volume == nil {
		t.Fatalf("expected volume info, errors=%v", res.Errors)
	}
	if res.Volume.MediaType != MediaTypeFixed ||
		res.Volume.ChunkCount != 64 ||
		res.Volume.SectorsPerChunk != 64 ||
		res.Volume.BytesPerSector != 512 ||
		res.Volume.SectorCount != 4096 {
		t.Fatalf("volume=%+v", res.Volume)
	}
	if res.Volume.TotalBytes() != 4096*512 {
		t.Fatalf("TotalBytes=%d want %d", res.Volume.TotalBytes(), 4096*512)
	}
}

func TestParse_TruncatedVolumeIsNonFatal(t *testing.T) {
	payload := make([]byte, 8)
	next := uint64(fileHeaderSize + descriptorSize + len(payload))
	img := buildImage(
		buildSection(SectionTypeVolume, next, uint64(len(payload)), payload),
		buildSection(SectionTypeDone, 0, descriptorSize, nil),
	)

	res := Parse(img)
	if !res.Valid {
		t.Fatalf("expected Valid=true despite bad volume section")
	}
	if res.Volume != nil {
		t.Fatalf("expected no volume info")
	}
	if len(res.Errors) == 0 {
		t.Fatalf("expected an error for the truncated volume section")
	}
	if len(res.Sections) != 2 {
		t.Fatalf("sections=%d want 2 (walk must continue)", len(res.Sections))
	}
}

func TestParse_HashSection(t *testing.T) {
	payload := make([]byte, 36)
	for i := 0; i < 16; i++ {
		payload[i] = byte(i)
	}
	for i := 16; i < 36; i++ {
		payload[i] = 0xAB
	}

	next := uint64(fileHeaderSize + descriptorSize + len(payload))
	img := buildImage(
		buildSection(SectionTypeHash, next, uint64(len(payload)), payload),
		buildSection(SectionTypeDone, 0, descriptorSize, nil),
	)

	res := Parse(img)
	if res.Hash == nil {
		t.Fatalf("expected hash info, errors=%v", res.Errors)
	}
	if res.Hash.MD5 != "000102030405060708090a0b0c0d0e0f" {
		t.Fatalf("md5=%q", res.Hash.MD5)
	}
	if res.Hash.SHA1 != strings.Repeat("ab", 20) {
		t.Fatalf("sha1=%q", res.Hash.SHA1)
	}
}

func TestParse_SectorsConcatenation(t *testing.T) {
	p1 := bytes.Repeat([]byte{0x11}, 512)
	p2 := bytes.Repeat([]byte{0x22}, 256)
	next1 := uint64(fileHeaderSize + descriptorSize + len(p1))
	next2 := next1 + uint64(descriptorSize+len(p2))
	img := buildImage(
		buildSection(SectionTypeSectors, next1, uint64(len(p1)), p1),
		buildSection(SectionTypeData, next2, uint64(len(p2)), p2),
		buildSection(SectionTypeDone, 0, descriptorSize, nil),
	)

	res := Parse(img)
	if len(res.RawDisk) != len(p1)+len(p2) {
		t.Fatalf("raw disk length=%d want %d", len(res.RawDisk), len(p1)+len(p2))
	}
	if !bytes.Equal(res.RawDisk[:512], p1) || !bytes.Equal(res.RawDisk[512:], p2) {
		t.Fatalf("raw disk payloads concatenated out of order")
	}
}

func TestParse_SectionOffsetsStrictlyIncrease(t *testing.T) {
	p := bytes.Repeat([]byte{0x33}, 64)
	next1 := uint64(fileHeaderSize + descriptorSize + len(p))
	next2 := next1 + uint64(descriptorSize+len(p))
	img := buildImage(
		buildSection(SectionTypeSectors, next1, uint64(len(p)), p),
		buildSection(SectionTypeSectors, next2, uint64(len(p)), p),
		buildSection(SectionTypeDone, 0, descriptorSize, nil),
	)

	res := Parse(img)
	prev := uint64(0)
	for i, s := range res.Sections {
		if s.Offset <= prev && i > 0 {
			t.Fatalf("section %d offset %d not strictly greater than %d", i, s.Offset, prev)
		}
		prev = s.Offset
	}
}

func TestParse_BackwardNextOffsetStopsWalk(t *testing.T) {
	p := bytes.Repeat([]byte{0x44}, 32)
	// Next pointer loops back to the file start; the walk falls back to
	// skipping the payload and then runs out of bytes.
	img := buildImage(
		buildSection(SectionTypeSectors, 0, uint64(len(p)), p),
	)

	res := Parse(img)
	if !res.Valid {
		t.Fatalf("expected Valid=true")
	}
	if len(res.Sections) != 1 {
		t.Fatalf("sections=%d want 1", len(res.Sections))
	}
	if len(res.RawDisk) != len(p) {
		t.Fatalf("raw disk=%d want %d", len(res.RawDisk), len(p))
	}
}

func TestParse_SizeClampedToRemainder(t *testing.T) {
	p := bytes.Repeat([]byte{0x55}, 100)
	// The descriptor claims a much larger payload than the file holds.
	img := buildImage(buildSection(SectionTypeSectors, 0, 1<<40, p))

	res := Parse(img)
	if len(res.RawDisk) != len(p) {
		t.Fatalf("raw disk=%d want %d (clamped)", len(res.RawDisk), len(p))
	}
}

func TestParse_ReparseIsStructurallyEqual(t *testing.T) {
	payload := deflate(t, []byte("c\tCASE-7\n"))
	next := uint64(fileHeaderSize + descriptorSize + len(payload))
	img := buildImage(
		buildSection(SectionTypeHeader, next, uint64(len(payload)), payload),
		buildSection(SectionTypeDone, 0, descriptorSize, nil),
	)

	first := Parse(img)
	second := Parse(img)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("re-parsing the same input produced different results")
	}
}

func TestDecodeHeader_NilDecompressorFallsBack(t *testing.T) {
	d := &Decoder{Decompress: nil}
	// Leading 0x78 looks compressed but the payload is plain text.
	meta, err := d.decodeHeader([]byte("x\tmarks\n"))
	if err != nil {
		t.Fatalf("decodeHeader: %v", err)
	}
	if meta["x"] != "marks" {
		t.Fatalf("meta=%v want x=marks", meta)
	}
}

func TestDecompressZlib_RoundTrip(t *testing.T) {
	var buf bytes.Buffer
	zw := zlib.NewWriter(&buf)
	if _, err := zw.Write([]byte("sector payload")); err != nil {
		t.Fatalf("write: %v", err)
	}
	zw.Close()

	out, err := DecompressZlib(buf.Bytes())
	if err != nil {
		t.Fatalf("DecompressZlib: %v", err)
	}
	if string(out) != "sector payload" {
		t.Fatalf("got %q", out)
	}
}

func TestCompressionLevelName(t *testing.T) {
	if CompressionLevelName("b") != "Best" {
		t.Fatalf("expected Best for b")
	}
	if CompressionLevelName("z") != "z" {
		t.Fatalf("unknown levels pass through")
	}
}

func TestMediaTypeName_Unknown(t *testing.T) {
	if !strings.Contains(MediaTypeName(0x7F), "0x7f") {
		t.Fatalf("got %q", MediaTypeName(0x7F))
	}
}
