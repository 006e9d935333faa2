// Package partition identifies and parses the partition table on a
// reconstructed raw disk: classic MBR, with automatic escalation to GPT when
// a protective entry is present.
package partition

import (
	"fmt"
)

// TableKind is the detected partitioning scheme.
type TableKind string

// Possible TableKind values
const (
	KindMBR     TableKind = "MBR"
	KindGPT     TableKind = "GPT"
	KindUnknown TableKind = "Unknown"
)

// DefaultSectorSize is assumed when the caller has no volume geometry.
const DefaultSectorSize = 512

// Partition is one table entry, normalized across MBR and GPT.
type Partition struct {
	Index      int    `json:"index" yaml:"index"`
	Type       string `json:"type" yaml:"type"`
	TypeCode   string `json:"typeCode" yaml:"typeCode"`
	StartLBA   uint64 `json:"startLba" yaml:"startLba"`
	EndLBA     uint64 `json:"endLba" yaml:"endLba"`
	SizeLBA    uint64 `json:"sizeLba" yaml:"sizeLba"`
	SizeBytes  uint64 `json:"sizeBytes" yaml:"sizeBytes"`
	Bootable   bool   `json:"bootable,omitempty" yaml:"bootable,omitempty"`
	Name       string `json:"name,omitempty" yaml:"name,omitempty"`
	GUID       string `json:"guid,omitempty" yaml:"guid,omitempty"`
	Filesystem string `json:"filesystem,omitempty" yaml:"filesystem,omitempty"`
}

// Table is the parsed partition table of one disk.
type Table struct {
	Kind       TableKind   `json:"kind" yaml:"kind"`
	SectorSize int         `json:"sectorSize" yaml:"sectorSize"`
	Partitions []Partition `json:"partitions" yaml:"partitions"`
	DiskGUID   string      `json:"diskGuid,omitempty" yaml:"diskGuid,omitempty"`
	Errors     []string    `json:"errors,omitempty" yaml:"errors,omitempty"`
}

const (
	mbrEntryOffset = 446
	mbrEntrySize   = 16

	typeEmpty         = 0x00
	typeGPTProtective = 0xEE
)

// Parse detects and decodes the partition table in disk. sectorSize <= 0
// falls back to DefaultSectorSize. The call never fails; an unrecognizable
// buffer yields a table of KindUnknown with a message in Errors.
func Parse(disk []byte, sectorSize int) *Table {
	if sectorSize <= 0 {
		sectorSize = DefaultSectorSize
	}
	t := &Table{
		Kind:       KindUnknown,
		SectorSize: sectorSize,
		Partitions: make([]Partition, 0, 4),
	}

	if len(disk) < 512 {
		t.Errors = append(t.Errors, fmt.Sprintf("disk truncated: %d bytes, need at least one sector", len(disk)))
		return t
	}
	if disk[510] != 0x55 || disk[511] != 0xAA {
		t.Errors = append(t.Errors, "unknown partition scheme: missing 0x55AA boot signature")
		return t
	}

	for slot := 0; slot < 4; slot++ {
		entry := disk[mbrEntryOffset+slot*mbrEntrySize : mbrEntryOffset+(slot+1)*mbrEntrySize]
		typeCode := entry[4]
		if typeCode == typeEmpty {
			continue
		}
		if typeCode == typeGPTProtective {
			parseGPT(disk, t)
			return t
		}

		startLBA := uint64(leUint32(entry[8:12]))
		sizeLBA := uint64(leUint32(entry[12:16]))
		endLBA := startLBA
		if sizeLBA > 0 {
			endLBA = startLBA + sizeLBA - 1
		}

		t.Partitions = append(t.Partitions, Partition{
			Index:      slot + 1,
			Type:       MBRTypeName(typeCode),
			TypeCode:   fmt.Sprintf("0x%02X", typeCode),
			StartLBA:   startLBA,
			EndLBA:     endLBA,
			SizeLBA:    sizeLBA,
			SizeBytes:  sizeLBA * uint64(sectorSize),
			Bootable:   entry[0] == 0x80,
			Filesystem: mbrFilesystemGuess(typeCode),
		})
	}

	t.Kind = KindMBR
	return t
}

// ExtractData returns the partition's byte range, clipped to the disk buffer.
// The result is never longer than SizeLBA * sector size.
func ExtractData(disk []byte, p Partition, sectorSize int) []byte {
	if sectorSize <= 0 {
		sectorSize = DefaultSectorSize
	}
	start := p.StartLBA * uint64(sectorSize)
	if start >= uint64(len(disk)) {
		return nil
	}
	end := start + p.SizeLBA*uint64(sectorSize)
	if end > uint64(len(disk)) {
		end = uint64(len(disk))
	}
	return disk[start:end]
}

func leUint16(b []byte) uint16 {
	return uint16(b[0]) | uint16(b[1])<<8
}

func leUint32(b []byte) uint32 {
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24
}

func leUint64(b []byte) uint64 {
	return uint64(leUint32(b[:4])) | uint64(leUint32(b[4:8]))<<32
}
