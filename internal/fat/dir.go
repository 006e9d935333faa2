package fat

import (
	"strings"
	"unicode/utf16"
)

// Directory entry attribute bits.
const (
	attrHidden      = 0x02
	attrSystem      = 0x04
	attrVolumeLabel = 0x08
	attrDirectory   = 0x10
	attrLongName    = 0x0F
)

// lfnCharOffsets are the in-entry byte positions of the 13 UTF-16LE code
// units carried by one long-filename slot.
var lfnCharOffsets = [13]int{1, 3, 5, 7, 9, 14, 16, 18, 20, 22, 24, 28, 30}

// decodeDir decodes 32-byte directory entries from buf, recursing into
// subdirectories until the depth cap.
func (v *vol) decodeDir(buf []byte, parentPath string, depth int) []*FileEntry {
	var entries []*FileEntry

	// Long-name slots arrive before their short entry, ordinal-tagged and in
	// reverse order on disk; collect them sparsely and join on emission.
	longName := make(map[int]string)

	for off := 0; off+32 <= len(buf); off += 32 {
		e := buf[off : off+32]

		if e[0] == 0x00 {
			break
		}
		if e[0] == 0xE5 {
			continue
		}

		attr := e[11]
		if attr&attrLongName == attrLongName {
			ordinal := int(e[0] & 0x3F)
			if ordinal > 0 {
				longName[ordinal-1] = decodeLFNSlot(e)
			}
			continue
		}

		if attr&attrVolumeLabel != 0 && attr&attrDirectory == 0 {
			longName = make(map[int]string)
			continue
		}

		shortName := trimPadding(e[0:8])
		if e[0] == 0x05 {
			// 0x05 escapes an initial 0xE5 in a live entry
			shortName = string(rune(0xE5)) + shortName[1:]
		}
		ext := trimPadding(e[8:11])

		isDir := attr&attrDirectory != 0
		cluster := uint32(leUint16(e[20:22]))<<16 | uint32(leUint16(e[26:28]))
		size := leUint32(e[28:32])
		if isDir {
			size = 0
		}

		isDot := shortName == "." || shortName == ".."

		name := ""
		if len(longName) > 0 && !isDot {
			name = joinLongName(longName)
		}
		longName = make(map[int]string)

		if isDot {
			continue
		}
		if name == "" {
			if ext != "" {
				name = shortName + "." + ext
			} else {
				name = shortName
			}
		}

		entry := &FileEntry{
			Name:        name,
			ShortName:   shortName,
			Extension:   ext,
			IsDirectory: isDir,
			IsHidden:    attr&attrHidden != 0,
			IsSystem:    attr&attrSystem != 0,
			Size:        size,
			Cluster:     cluster,
			Path:        joinPath(parentPath, name),
		}

		if isDir {
			entry.Children = []*FileEntry{}
			if cluster >= 2 && depth < maxTreeDepth {
				entry.Children = v.decodeDir(v.readChain(cluster), entry.Path, depth+1)
			}
		}

		entries = append(entries, entry)
	}

	return entries
}

// decodeLFNSlot extracts the UTF-16LE characters of one long-name slot,
// stopping at the NUL or 0xFFFF padding terminators.
func decodeLFNSlot(e []byte) string {
	units := make([]uint16, 0, len(lfnCharOffsets))
	for _, pos := range lfnCharOffsets {
		cu := leUint16(e[pos : pos+2])
		if cu == 0x0000 || cu == 0xFFFF {
			break
		}
		units = append(units, cu)
	}
	return string(utf16.Decode(units))
}

// joinLongName concatenates collected slots in ordinal order.
func joinLongName(parts map[int]string) string {
	max := -1
	for i := range parts {
		if i > max {
			max = i
		}
	}
	var sb strings.Builder
	for i := 0; i <= max; i++ {
		sb.WriteString(parts[i])
	}
	return sb.String()
}

func joinPath(parent, name string) string {
	if parent == "" {
		return "/" + name
	}
	return parent + "/" + name
}
