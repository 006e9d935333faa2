package ewf

import (
	"fmt"

	"github.com/google/uuid"
)

// Media types stored in the volume section.
const (
	MediaTypeRemovable = 0x00
	MediaTypeFixed     = 0x01
	MediaTypeOptical   = 0x03
	MediaTypeLogical   = 0x0e
	MediaTypeRAM       = 0x10
)

// VolumeInfo is the acquired-media geometry from a volume or disk section.
type VolumeInfo struct {
	MediaType       uint8  `json:"mediaType" yaml:"mediaType"`
	ChunkCount      uint32 `json:"chunkCount" yaml:"chunkCount"`
	SectorsPerChunk uint32 `json:"sectorsPerChunk" yaml:"sectorsPerChunk"`
	BytesPerSector  uint32 `json:"bytesPerSector" yaml:"bytesPerSector"`
	SectorCount     uint64 `json:"sectorCount" yaml:"sectorCount"`
	SetIdentifier   string `json:"setIdentifier,omitempty" yaml:"setIdentifier,omitempty"`
}

// MediaTypeName returns the display name for a media type byte.
func MediaTypeName(t uint8) string {
	switch t {
	case MediaTypeRemovable:
		return "Removable disk"
	case MediaTypeFixed:
		return "Fixed disk"
	case MediaTypeOptical:
		return "Optical disc"
	case MediaTypeLogical:
		return "Logical evidence"
	case MediaTypeRAM:
		return "Memory"
	default:
		return fmt.Sprintf("Unknown (0x%02x)", t)
	}
}

// TotalBytes returns the acquired media size implied by the geometry.
func (v *VolumeInfo) TotalBytes() uint64 {
	return v.SectorCount * uint64(v.BytesPerSector)
}

func decodeVolume(payload []byte) (*VolumeInfo, error) {
	if len(payload) < 32 {
		return nil, fmt.Errorf("volume section truncated: %d bytes", len(payload))
	}

	v := &VolumeInfo{
		MediaType:       payload[0],
		ChunkCount:      leUint32(payload[4:8]),
		SectorsPerChunk: leUint32(payload[8:12]),
		BytesPerSector:  leUint32(payload[12:16]),
		SectorCount:     leUint64(payload[16:24]),
	}

	// The segment-set identifier sits at offset 52 in full-size volume
	// sections; short SMART-style payloads do not carry it.
	if len(payload) >= 68 {
		var raw [16]byte
		copy(raw[:], payload[52:68])
		if raw != ([16]byte{}) {
			v.SetIdentifier = uuid.UUID(raw).String()
		}
	}

	return v, nil
}
