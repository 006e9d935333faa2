package inspect

import (
	"fmt"
	"strings"

	"github.com/diskfs/go-diskfs"
	"github.com/diskfs/go-diskfs/partition/gpt"
	"github.com/diskfs/go-diskfs/partition/mbr"

	"github.com/open-forensics/ewf-inspect/internal/partition"
)

// CrossCheckRaw re-reads an exported raw disk image through go-diskfs and
// compares what it sees against the internal parser's table. Disagreements
// are returned as messages; an empty slice means the two parsers agree on
// scheme and partition extents.
func CrossCheckRaw(rawPath string, table *partition.Table) ([]string, error) {
	disk, err := diskfs.Open(rawPath)
	if err != nil {
		return nil, fmt.Errorf("open exported image: %w", err)
	}
	defer disk.Close()

	pt, err := disk.GetPartitionTable()
	if err != nil {
		if table.Kind == partition.KindUnknown {
			return nil, nil
		}
		return []string{fmt.Sprintf("go-diskfs found no partition table, internal parser found %s", table.Kind)}, nil
	}

	var notes []string
	switch t := pt.(type) {
	case *gpt.Table:
		if table.Kind != partition.KindGPT {
			notes = append(notes, fmt.Sprintf("scheme mismatch: go-diskfs=GPT internal=%s", table.Kind))
			break
		}
		if table.DiskGUID != "" && !strings.EqualFold(t.GUID, table.DiskGUID) {
			notes = append(notes, fmt.Sprintf("disk GUID mismatch: go-diskfs=%s internal=%s", t.GUID, table.DiskGUID))
		}
		notes = append(notes, compareExtents(gptExtents(t), table)...)

	case *mbr.Table:
		if table.Kind != partition.KindMBR {
			notes = append(notes, fmt.Sprintf("scheme mismatch: go-diskfs=MBR internal=%s", table.Kind))
			break
		}
		notes = append(notes, compareExtents(mbrExtents(t), table)...)

	default:
		notes = append(notes, fmt.Sprintf("go-diskfs reported an unexpected table type %T", t))
	}

	return notes, nil
}

type extent struct {
	start uint64
	end   uint64
}

func gptExtents(t *gpt.Table) []extent {
	var out []extent
	for _, p := range t.Partitions {
		if p == nil || (p.Start == 0 && p.End == 0) {
			continue
		}
		out = append(out, extent{start: p.Start, end: p.End})
	}
	return out
}

func mbrExtents(t *mbr.Table) []extent {
	var out []extent
	for _, p := range t.Partitions {
		if p == nil || p.Size == 0 {
			continue
		}
		out = append(out, extent{
			start: uint64(p.Start),
			end:   uint64(p.Start) + uint64(p.Size) - 1,
		})
	}
	return out
}

func compareExtents(got []extent, table *partition.Table) []string {
	var notes []string
	if len(got) != len(table.Partitions) {
		notes = append(notes, fmt.Sprintf("partition count mismatch: go-diskfs=%d internal=%d", len(got), len(table.Partitions)))
	}

	n := len(got)
	if len(table.Partitions) < n {
		n = len(table.Partitions)
	}
	for i := 0; i < n; i++ {
		p := table.Partitions[i]
		if got[i].start != p.StartLBA || got[i].end != p.EndLBA {
			notes = append(notes, fmt.Sprintf("partition %d extent mismatch: go-diskfs=[%d..%d] internal=[%d..%d]",
				p.Index, got[i].start, got[i].end, p.StartLBA, p.EndLBA))
		}
	}
	return notes
}
