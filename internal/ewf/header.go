package ewf

import (
	"strings"
	"unicode/utf16"
)

// Canonical case metadata keys. Short identifiers written by acquisition
// tools are collapsed onto these names; unrecognized keys are kept verbatim.
const (
	MetaCaseNumber       = "case_number"
	MetaDescription      = "description"
	MetaExaminerName     = "examiner_name"
	MetaEvidenceNumber   = "evidence_number"
	MetaNotes            = "notes"
	MetaAcquiredDate     = "acquired_date"
	MetaSystemDate       = "system_date"
	MetaOperatingSystem  = "operating_system"
	MetaPassword         = "password"
	MetaCompressionLevel = "compression_level"
)

var metadataAliases = map[string]string{
	"c":           MetaCaseNumber,
	"case":        MetaCaseNumber,
	"n":           MetaDescription,
	"name":        MetaDescription,
	"e":           MetaExaminerName,
	"examiner":    MetaExaminerName,
	"ev":          MetaEvidenceNumber,
	"evidence":    MetaEvidenceNumber,
	"no":          MetaNotes,
	"a":           MetaAcquiredDate,
	"acquired":    MetaAcquiredDate,
	"m":           MetaSystemDate,
	"system":      MetaSystemDate,
	"os":          MetaOperatingSystem,
	"p":           MetaPassword,
	"r":           MetaCompressionLevel,
	"compression": MetaCompressionLevel,
}

// CompressionLevelName maps the one-letter acquiry compression value to the
// name tools report for it.
func CompressionLevelName(v string) string {
	switch v {
	case "b":
		return "Best"
	case "f":
		return "Fastest"
	case "n":
		return "No compression"
	default:
		return v
	}
}

// decodeHeader turns a header/header2 payload into a metadata map. The
// payload is usually zlib-compressed text; decompression failures degrade to
// reading the raw bytes. header2 payloads carry a UTF-16 BOM.
func (d *Decoder) decodeHeader(payload []byte) (map[string]string, error) {
	text := payload
	if len(payload) > 0 && payload[0] == 0x78 && d.Decompress != nil {
		if inflated, err := d.Decompress(payload); err == nil {
			text = inflated
		}
	}

	var lines string
	switch {
	case len(text) >= 2 && text[0] == 0xff && text[1] == 0xfe:
		lines = utf16leToString(text[2:])
	case len(text) >= 2 && text[0] == 0xfe && text[1] == 0xff:
		lines = utf16beToString(text[2:])
	default:
		lines = strings.ToValidUTF8(string(text), "�")
	}

	meta := make(map[string]string)
	for _, line := range strings.FieldsFunc(lines, func(r rune) bool {
		return r == '\r' || r == '\n'
	}) {
		fields := strings.Split(line, "\t")
		if len(fields) < 2 {
			fields = strings.Split(line, "=")
		}
		if len(fields) < 2 {
			continue
		}
		key := strings.ToLower(strings.TrimSpace(fields[0]))
		value := strings.TrimSpace(strings.Join(fields[1:], "="))
		if key == "" || value == "" {
			continue
		}
		if canonical, ok := metadataAliases[key]; ok {
			key = canonical
		}
		meta[key] = value
	}
	return meta, nil
}

func utf16leToString(b []byte) string {
	u := make([]uint16, 0, len(b)/2)
	for i := 0; i+1 < len(b); i += 2 {
		u = append(u, uint16(b[i])|uint16(b[i+1])<<8)
	}
	return string(utf16.Decode(u))
}

func utf16beToString(b []byte) string {
	u := make([]uint16, 0, len(b)/2)
	for i := 0; i+1 < len(b); i += 2 {
		u = append(u, uint16(b[i])<<8|uint16(b[i+1]))
	}
	return string(utf16.Decode(u))
}
