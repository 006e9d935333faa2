// Package ewf decodes Expert Witness Format (EWF/E01) evidence containers
// from memory: section layout, case metadata, volume geometry, stored hashes,
// and the reconstructed raw disk contents.
package ewf

import (
	"bytes"
	"fmt"
	"strings"
)

// Signature is the 8-byte magic at the start of every EVF1 segment file.
var Signature = [8]byte{'E', 'V', 'F', 0x09, 0x0d, 0x0a, 0xff, 0x00}

// fileHeaderSize covers the signature plus the 5-byte segment header that
// precedes the first section descriptor. The segment number is not
// interpreted; multi-segment sets are not supported.
const fileHeaderSize = 13

// descriptorSize is the on-disk size of a section descriptor:
// type[16] + next u64 + size u64 + padding[40] + checksum u32.
const descriptorSize = 76

// Recognized section types.
const (
	SectionTypeHeader  = "header"
	SectionTypeHeader2 = "header2"
	SectionTypeVolume  = "volume"
	SectionTypeDisk    = "disk"
	SectionTypeSectors = "sectors"
	SectionTypeTable   = "table"
	SectionTypeTable2  = "table2"
	SectionTypeData    = "data"
	SectionTypeHash    = "hash"
	SectionTypeDigest  = "digest"
	SectionTypeDone    = "done"
	SectionTypeNext    = "next"
)

// SectionDescriptor is one entry of the section chain. Data holds the payload
// slice; Offset is the descriptor's absolute position in the file.
type SectionDescriptor struct {
	Type       string `json:"type" yaml:"type"`
	NextOffset uint64 `json:"nextOffset" yaml:"nextOffset"`
	Size       uint64 `json:"size" yaml:"size"`
	Offset     uint64 `json:"offset" yaml:"offset"`
	Data       []byte `json:"-" yaml:"-"`
}

// ParseResult is everything recovered from one segment file. Valid reports
// whether the signature matched and the section walk ran; Errors may be
// non-empty even when Valid is true.
type ParseResult struct {
	Valid     bool                `json:"valid" yaml:"valid"`
	Signature [8]byte             `json:"-" yaml:"-"`
	Sections  []SectionDescriptor `json:"sections" yaml:"sections"`
	Metadata  map[string]string   `json:"metadata,omitempty" yaml:"metadata,omitempty"`
	Volume    *VolumeInfo         `json:"volume,omitempty" yaml:"volume,omitempty"`
	Hash      *HashInfo           `json:"hash,omitempty" yaml:"hash,omitempty"`
	RawDisk   []byte              `json:"-" yaml:"-"`
	Errors    []string            `json:"errors,omitempty" yaml:"errors,omitempty"`
}

// Decoder walks EWF segment bytes. NewDecoder sets zlib decompression for
// header payloads; a nil Decompress (as in the zero value) falls back to
// treating payloads as uncompressed.
type Decoder struct {
	Decompress Decompressor
}

// NewDecoder returns a Decoder with the default zlib decompressor.
func NewDecoder() *Decoder {
	return &Decoder{Decompress: DecompressZlib}
}

// Parse is a convenience wrapper around NewDecoder().Parse.
func Parse(data []byte) *ParseResult {
	return NewDecoder().Parse(data)
}

// Parse decodes a full in-memory segment file. It never fails outright:
// malformed input yields a partial result with messages in Errors.
func (d *Decoder) Parse(data []byte) *ParseResult {
	res := &ParseResult{
		Metadata: make(map[string]string),
	}

	if len(data) < len(Signature) || !bytes.Equal(data[:8], Signature[:]) {
		res.Errors = append(res.Errors, "Invalid EWF signature: not an EWF/E01 file")
		return res
	}
	copy(res.Signature[:], data[:8])
	res.Valid = true

	var chunks [][]byte
	offset := uint64(fileHeaderSize)

	for offset+descriptorSize <= uint64(len(data)) {
		desc := data[offset : offset+descriptorSize]

		sectionType := strings.ToLower(strings.TrimFunc(string(desc[:16]), func(r rune) bool {
			return r == 0 || r == ' ' || r == '\t' || r == '\r' || r == '\n'
		}))
		nextOffset := leUint64(desc[16:24])
		size := leUint64(desc[24:32])

		if sectionType == "" || size == 0 {
			break
		}

		payloadStart := offset + descriptorSize
		remaining := uint64(len(data)) - payloadStart
		payloadLen := size
		if payloadLen > remaining {
			payloadLen = remaining
		}
		payload := data[payloadStart : payloadStart+payloadLen]

		section := SectionDescriptor{
			Type:       sectionType,
			NextOffset: nextOffset,
			Size:       size,
			Offset:     offset,
			Data:       payload,
		}
		res.Sections = append(res.Sections, section)

		switch sectionType {
		case SectionTypeHeader, SectionTypeHeader2:
			meta, err := d.decodeHeader(payload)
			if err != nil {
				res.Errors = append(res.Errors, fmt.Sprintf("section %q at offset %d: %v", sectionType, offset, err))
				break
			}
			for k, v := range meta {
				res.Metadata[k] = v
			}
		case SectionTypeVolume, SectionTypeDisk:
			vol, err := decodeVolume(payload)
			if err != nil {
				res.Errors = append(res.Errors, fmt.Sprintf("section %q at offset %d: %v", sectionType, offset, err))
				break
			}
			res.Volume = vol
		case SectionTypeSectors, SectionTypeData:
			chunks = append(chunks, payload)
		case SectionTypeHash, SectionTypeDigest:
			h, err := decodeHash(payload)
			if err != nil {
				res.Errors = append(res.Errors, fmt.Sprintf("section %q at offset %d: %v", sectionType, offset, err))
				break
			}
			res.Hash = h
		}

		if sectionType == SectionTypeDone {
			break
		}

		// Prefer the chain's next pointer; fall back to skipping the payload.
		// Either way the walk must move strictly forward.
		var newOffset uint64
		if nextOffset > offset {
			newOffset = nextOffset
		} else {
			newOffset = payloadStart + payloadLen
		}
		if newOffset <= offset {
			break
		}
		offset = newOffset
	}

	if len(chunks) > 0 {
		total := 0
		for _, c := range chunks {
			total += len(c)
		}
		res.RawDisk = make([]byte, 0, total)
		for _, c := range chunks {
			res.RawDisk = append(res.RawDisk, c...)
		}
	}

	return res
}

func leUint32(b []byte) uint32 {
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24
}

func leUint64(b []byte) uint64 {
	return uint64(leUint32(b[:4])) | uint64(leUint32(b[4:8]))<<32
}
