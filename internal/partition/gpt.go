package partition

import (
	"fmt"
	"unicode/utf16"

	"github.com/google/uuid"
)

const (
	gptSignature    = "EFI PART"
	gptHeaderSize   = 92
	gptMaxPartition = 128
)

// parseGPT decodes the GPT header at LBA 1 and its partition entry array,
// filling t in place. Called after a protective MBR entry was seen.
func parseGPT(disk []byte, t *Table) {
	t.Kind = KindGPT
	t.Partitions = t.Partitions[:0]

	sectorSize := uint64(t.SectorSize)
	headerOff := sectorSize
	if uint64(len(disk)) < headerOff+gptHeaderSize {
		t.Errors = append(t.Errors, fmt.Sprintf("disk truncated: no room for GPT header at offset %d", headerOff))
		return
	}
	header := disk[headerOff:]

	if string(header[:8]) != gptSignature {
		t.Errors = append(t.Errors, "GPT header signature mismatch after protective MBR entry")
		return
	}

	t.DiskGUID = FormatGUID(header[56:72])
	entryLBA := leUint64(header[72:80])
	numEntries := leUint32(header[80:84])
	entrySize := leUint32(header[84:88])

	if entrySize == 0 {
		t.Errors = append(t.Errors, "GPT header reports zero-size partition entries")
		return
	}
	if numEntries > gptMaxPartition {
		numEntries = gptMaxPartition
	}

	base := entryLBA * sectorSize
	index := 0
	for i := uint64(0); i < uint64(numEntries); i++ {
		off := base + i*uint64(entrySize)
		if off+128 > uint64(len(disk)) {
			t.Errors = append(t.Errors, fmt.Sprintf("GPT entry array truncated at entry %d", i))
			break
		}
		entry := disk[off : off+128]

		typeGUID := entry[:16]
		if isZeroGUID(typeGUID) {
			continue
		}

		startLBA := leUint64(entry[32:40])
		endLBA := leUint64(entry[40:48])
		sizeLBA := uint64(0)
		if endLBA >= startLBA {
			sizeLBA = endLBA - startLBA + 1
		}

		typeStr := FormatGUID(typeGUID)
		index++
		t.Partitions = append(t.Partitions, Partition{
			Index:      index,
			Type:       GPTTypeName(typeStr),
			TypeCode:   typeStr,
			StartLBA:   startLBA,
			EndLBA:     endLBA,
			SizeLBA:    sizeLBA,
			SizeBytes:  sizeLBA * sectorSize,
			Name:       decodeUTF16Name(entry[56:128]),
			GUID:       FormatGUID(entry[16:32]),
			Filesystem: gptFilesystemGuess(typeStr),
		})
	}
}

// FormatGUID renders a 16-byte on-disk GUID in canonical form. The first
// three fields are little-endian on disk; the last two are plain byte order.
func FormatGUID(b []byte) string {
	if len(b) < 16 {
		return ""
	}
	var rfc [16]byte
	rfc[0], rfc[1], rfc[2], rfc[3] = b[3], b[2], b[1], b[0]
	rfc[4], rfc[5] = b[5], b[4]
	rfc[6], rfc[7] = b[7], b[6]
	copy(rfc[8:], b[8:16])
	return uuid.UUID(rfc).String()
}

func isZeroGUID(b []byte) bool {
	for _, v := range b {
		if v != 0 {
			return false
		}
	}
	return true
}

// decodeUTF16Name decodes the 72-byte UTF-16LE partition label, dropping
// trailing NUL code units.
func decodeUTF16Name(b []byte) string {
	u := make([]uint16, 0, len(b)/2)
	for i := 0; i+1 < len(b); i += 2 {
		u = append(u, leUint16(b[i:i+2]))
	}
	for len(u) > 0 && u[len(u)-1] == 0 {
		u = u[:len(u)-1]
	}
	if len(u) == 0 {
		return ""
	}
	return string(utf16.Decode(u))
}
