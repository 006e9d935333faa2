// Package inspect runs the full evidence pipeline: EWF container decode,
// partition table detection on the reconstructed disk, and FAT directory
// enumeration per partition. It owns the summary model the CLI renders.
package inspect

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"go.uber.org/zap"

	"github.com/open-forensics/ewf-inspect/internal/ewf"
	"github.com/open-forensics/ewf-inspect/internal/fat"
	"github.com/open-forensics/ewf-inspect/internal/partition"
	"github.com/open-forensics/ewf-inspect/internal/utils/logger"
)

// EvidenceSummary holds everything recovered from one evidence file.
type EvidenceSummary struct {
	File      string `json:"file,omitempty" yaml:"file,omitempty"`
	SizeBytes int64  `json:"sizeBytes,omitempty" yaml:"sizeBytes,omitempty"`
	SHA256    string `json:"sha256,omitempty" yaml:"sha256,omitempty"`

	EWF            ContainerSummary    `json:"ewf" yaml:"ewf"`
	PartitionTable *partition.Table    `json:"partitionTable,omitempty" yaml:"partitionTable,omitempty"`
	Filesystems    []FilesystemSummary `json:"filesystems,omitempty" yaml:"filesystems,omitempty"`
}

// ContainerSummary condenses the EWF parse result for presentation.
type ContainerSummary struct {
	Valid         bool              `json:"valid" yaml:"valid"`
	SectionCount  int               `json:"sectionCount" yaml:"sectionCount"`
	SectionCensus map[string]int    `json:"sectionCensus,omitempty" yaml:"sectionCensus,omitempty"`
	Metadata      map[string]string `json:"metadata,omitempty" yaml:"metadata,omitempty"`
	Volume        *ewf.VolumeInfo   `json:"volume,omitempty" yaml:"volume,omitempty"`
	Hash          *ewf.HashInfo     `json:"hash,omitempty" yaml:"hash,omitempty"`
	RawDiskSize   int64             `json:"rawDiskSize" yaml:"rawDiskSize"`
	Errors        []string          `json:"errors,omitempty" yaml:"errors,omitempty"`
}

// FilesystemSummary is the FAT walk result for one partition.
type FilesystemSummary struct {
	PartitionIndex int              `json:"partitionIndex" yaml:"partitionIndex"`
	Variant        fat.Variant      `json:"variant,omitempty" yaml:"variant,omitempty"`
	BootSector     *fat.BootSector  `json:"bootSector,omitempty" yaml:"bootSector,omitempty"`
	FileCount      int              `json:"fileCount" yaml:"fileCount"`
	DirCount       int              `json:"dirCount" yaml:"dirCount"`
	Entries        []*fat.FileEntry `json:"entries,omitempty" yaml:"entries,omitempty"`
	Errors         []string         `json:"errors,omitempty" yaml:"errors,omitempty"`
}

// Inspector drives the three decoders over one evidence file at a time.
type Inspector struct {
	HashImage  bool
	Decompress ewf.Decompressor

	logger *zap.SugaredLogger
}

// NewInspector returns an Inspector. hash enables whole-file SHA256
// computation, which is the slow part on large images.
func NewInspector(hash bool) *Inspector {
	return &Inspector{
		HashImage:  hash,
		Decompress: ewf.DecompressZlib,
		logger:     logger.Logger(),
	}
}

// InspectBytes runs the pipeline over a fully loaded evidence file. Later
// stages may fail without discarding earlier results.
func (i *Inspector) InspectBytes(name string, data []byte) *EvidenceSummary {
	i.logger.Infof("Inspecting evidence file: %s (%d bytes)", name, len(data))

	summary := &EvidenceSummary{
		File:      name,
		SizeBytes: int64(len(data)),
	}

	if i.HashImage {
		sum := sha256.Sum256(data)
		summary.SHA256 = hex.EncodeToString(sum[:])
	}

	dec := &ewf.Decoder{Decompress: i.Decompress}
	parsed := dec.Parse(data)
	summary.EWF = summarizeContainer(parsed)

	if !parsed.Valid {
		i.logger.Warnf("Not a valid EWF file: %s", name)
		return summary
	}
	if len(parsed.RawDisk) == 0 {
		i.logger.Warnf("No sector payloads found in %s; skipping partition analysis", name)
		return summary
	}

	sectorSize := partition.DefaultSectorSize
	if parsed.Volume != nil && parsed.Volume.BytesPerSector > 0 {
		sectorSize = int(parsed.Volume.BytesPerSector)
	}

	table := partition.Parse(parsed.RawDisk, sectorSize)
	summary.PartitionTable = table
	i.logger.Infof("Partition table: %s with %d partitions", table.Kind, len(table.Partitions))

	for _, p := range table.Partitions {
		if !fatCandidate(parsed.RawDisk, p, sectorSize) {
			continue
		}
		part := partition.ExtractData(parsed.RawDisk, p, sectorSize)
		res := fat.Parse(part)
		if !res.Valid {
			continue
		}

		files, dirs := countEntries(res.Entries)
		summary.Filesystems = append(summary.Filesystems, FilesystemSummary{
			PartitionIndex: p.Index,
			Variant:        res.Variant,
			BootSector:     res.BootSector,
			FileCount:      files,
			DirCount:       dirs,
			Entries:        res.Entries,
			Errors:         res.Errors,
		})
		i.logger.Infof("Partition %d: %s, %d files, %d directories", p.Index, res.Variant, files, dirs)
	}

	return summary
}

// RawDisk re-runs only the container decode and returns the reconstructed
// disk bytes. Used by export.
func (i *Inspector) RawDisk(data []byte) ([]byte, *ewf.ParseResult) {
	dec := &ewf.Decoder{Decompress: i.Decompress}
	parsed := dec.Parse(data)
	return parsed.RawDisk, parsed
}

// fatCandidate reports whether a partition is worth handing to the FAT
// walker: either the type table guesses a FAT flavor, or the partition has
// no guess but carries a 0x55AA boot signature.
func fatCandidate(disk []byte, p partition.Partition, sectorSize int) bool {
	if strings.HasPrefix(p.Filesystem, "FAT") {
		return true
	}
	if p.Filesystem != "" {
		return false
	}
	part := partition.ExtractData(disk, p, sectorSize)
	return len(part) >= 512 && part[510] == 0x55 && part[511] == 0xAA
}

func summarizeContainer(parsed *ewf.ParseResult) ContainerSummary {
	census := make(map[string]int)
	for _, s := range parsed.Sections {
		census[s.Type]++
	}
	cs := ContainerSummary{
		Valid:        parsed.Valid,
		SectionCount: len(parsed.Sections),
		Metadata:     parsed.Metadata,
		Volume:       parsed.Volume,
		Hash:         parsed.Hash,
		RawDiskSize:  int64(len(parsed.RawDisk)),
		Errors:       parsed.Errors,
	}
	if len(census) > 0 {
		cs.SectionCensus = census
	}
	if len(cs.Metadata) == 0 {
		cs.Metadata = nil
	}
	return cs
}

// LimitTreeDepth drops directory children below the given depth from every
// filesystem listing. depth <= 0 leaves the summary untouched. Counts are
// preserved; only the rendered tree shrinks.
func LimitTreeDepth(summary *EvidenceSummary, depth int) {
	if depth <= 0 {
		return
	}
	for idx := range summary.Filesystems {
		truncateEntries(summary.Filesystems[idx].Entries, depth-1)
	}
}

func truncateEntries(entries []*fat.FileEntry, remaining int) {
	for _, e := range entries {
		if !e.IsDirectory {
			continue
		}
		if remaining == 0 {
			e.Children = []*fat.FileEntry{}
			continue
		}
		truncateEntries(e.Children, remaining-1)
	}
}

func countEntries(entries []*fat.FileEntry) (files, dirs int) {
	for _, e := range entries {
		if e.IsDirectory {
			dirs++
			f, d := countEntries(e.Children)
			files += f
			dirs += d
		} else {
			files++
		}
	}
	return files, dirs
}
