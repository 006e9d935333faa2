package partition

import (
	"fmt"
	"strings"
)

var mbrTypeNames = map[byte]string{
	0x00: "Empty",
	0x01: "FAT12",
	0x04: "FAT16 (<32MB)",
	0x05: "Extended",
	0x06: "FAT16",
	0x07: "NTFS/exFAT/HPFS",
	0x0B: "FAT32 (CHS)",
	0x0C: "FAT32 (LBA)",
	0x0E: "FAT16 (LBA)",
	0x0F: "Extended (LBA)",
	0x11: "Hidden FAT12",
	0x14: "Hidden FAT16 (<32MB)",
	0x16: "Hidden FAT16",
	0x17: "Hidden NTFS",
	0x1B: "Hidden FAT32",
	0x1C: "Hidden FAT32 (LBA)",
	0x1E: "Hidden FAT16 (LBA)",
	0x27: "Windows Recovery",
	0x42: "Windows Dynamic",
	0x82: "Linux Swap",
	0x83: "Linux",
	0x85: "Linux Extended",
	0x8E: "Linux LVM",
	0xEE: "GPT Protective MBR",
	0xEF: "EFI System",
	0xFD: "Linux RAID",
}

// MBRTypeName returns the display name for an MBR partition type code.
func MBRTypeName(code byte) string {
	if name, ok := mbrTypeNames[code]; ok {
		return name
	}
	return fmt.Sprintf("Unknown (0x%02X)", code)
}

func mbrFilesystemGuess(code byte) string {
	switch code {
	case 0x01, 0x11:
		return "FAT12"
	case 0x04, 0x06, 0x0E, 0x14, 0x16, 0x1E:
		return "FAT16"
	case 0x0B, 0x0C, 0x1B, 0x1C:
		return "FAT32"
	case 0x07, 0x17:
		return "NTFS"
	case 0x82:
		return "swap"
	case 0x83, 0x85:
		return "ext4"
	case 0xEF:
		return "FAT32"
	default:
		return ""
	}
}

// Recognized GPT partition type GUIDs (canonical lowercase form).
var gptTypeNames = map[string]string{
	"c12a7328-f81f-11d2-ba4b-00a0c93ec93b": "EFI System",
	"024dee41-33e7-11d3-9d69-0008c781f39f": "MBR Scheme",
	"e3c9e316-0b5c-4db8-817d-f92df00215ae": "Microsoft Reserved",
	"ebd0a0a2-b9e5-4433-87c0-68b6b72699c7": "Microsoft Basic Data",
	"de94bba4-06d1-4d40-a16a-bfd50179d6ac": "Windows Recovery",
	"0fc63daf-8483-4772-8e79-3d69d8477de4": "Linux Filesystem",
	"0657fd6d-a4ab-43c4-84e5-0933c84b4f4f": "Linux Swap",
	"e6d6d379-f507-44c2-a23c-238f2a3df928": "Linux LVM",
	"933ac7e1-2eb4-4f13-b844-0e14e2aef915": "Linux Home",
	"48465300-0000-11aa-aa11-00306543ecac": "Apple HFS+",
	"7c3457ef-0000-11aa-aa11-00306543ecac": "Apple APFS",
}

var gptFilesystemGuesses = map[string]string{
	"c12a7328-f81f-11d2-ba4b-00a0c93ec93b": "FAT32",
	"ebd0a0a2-b9e5-4433-87c0-68b6b72699c7": "NTFS",
	"0fc63daf-8483-4772-8e79-3d69d8477de4": "ext4",
	"48465300-0000-11aa-aa11-00306543ecac": "HFS+",
	"7c3457ef-0000-11aa-aa11-00306543ecac": "APFS",
}

// GPTTypeName returns the display name for a GPT partition type GUID.
func GPTTypeName(guid string) string {
	if name, ok := gptTypeNames[strings.ToLower(guid)]; ok {
		return name
	}
	return fmt.Sprintf("Unknown (%s)", strings.ToLower(guid))
}

func gptFilesystemGuess(guid string) string {
	return gptFilesystemGuesses[strings.ToLower(guid)]
}
