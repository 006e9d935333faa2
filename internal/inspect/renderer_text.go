package inspect

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/open-forensics/ewf-inspect/internal/ewf"
	"github.com/open-forensics/ewf-inspect/internal/fat"
)

// PrintSummary prints a human-readable summary of the evidence inspection to
// the given writer.
func PrintSummary(w io.Writer, summary *EvidenceSummary) {
	if summary == nil {
		return
	}

	fmt.Fprintln(w, "Evidence Summary")
	fmt.Fprintln(w, "================")
	fmt.Fprintf(w, "File:\t%s\n", summary.File)
	fmt.Fprintf(w, "Size:\t%s (%d bytes)\n", humanBytes(summary.SizeBytes), summary.SizeBytes)
	if summary.SHA256 != "" {
		fmt.Fprintf(w, "SHA256:\t%s\n", summary.SHA256)
	}

	printContainer(w, &summary.EWF)

	if summary.PartitionTable != nil {
		printPartitionTable(w, summary)
	}

	for idx := range summary.Filesystems {
		printFilesystem(w, &summary.Filesystems[idx])
	}
}

// PrintMetadata prints only the case metadata and stored hashes.
func PrintMetadata(w io.Writer, summary *EvidenceSummary) {
	fmt.Fprintln(w, "Case Metadata")
	fmt.Fprintln(w, "=============")
	if len(summary.EWF.Metadata) == 0 {
		fmt.Fprintln(w, "(none)")
	} else {
		keys := make([]string, 0, len(summary.EWF.Metadata))
		for k := range summary.EWF.Metadata {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		for _, k := range keys {
			v := summary.EWF.Metadata[k]
			if k == ewf.MetaCompressionLevel {
				v = ewf.CompressionLevelName(v)
			}
			fmt.Fprintf(tw, "%s\t%s\n", k, v)
		}
		tw.Flush()
	}

	if summary.EWF.Hash != nil {
		fmt.Fprintln(w)
		if summary.EWF.Hash.MD5 != "" {
			fmt.Fprintf(w, "Stored MD5:\t%s\n", summary.EWF.Hash.MD5)
		}
		if summary.EWF.Hash.SHA1 != "" {
			fmt.Fprintf(w, "Stored SHA1:\t%s\n", summary.EWF.Hash.SHA1)
		}
	}
}

func printContainer(w io.Writer, c *ContainerSummary) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, "EWF Container")
	fmt.Fprintln(w, "-------------")
	fmt.Fprintf(w, "Valid:\t%t\n", c.Valid)
	fmt.Fprintf(w, "Sections:\t%d\n", c.SectionCount)
	if len(c.SectionCensus) > 0 {
		types := make([]string, 0, len(c.SectionCensus))
		for t := range c.SectionCensus {
			types = append(types, t)
		}
		sort.Strings(types)
		parts := make([]string, 0, len(types))
		for _, t := range types {
			parts = append(parts, fmt.Sprintf("%s×%d", t, c.SectionCensus[t]))
		}
		fmt.Fprintf(w, "Section census:\t%s\n", strings.Join(parts, ", "))
	}
	if c.Volume != nil {
		fmt.Fprintf(w, "Media:\t%s\n", ewf.MediaTypeName(c.Volume.MediaType))
		fmt.Fprintf(w, "Geometry:\t%d sectors × %d bytes (%s)\n",
			c.Volume.SectorCount, c.Volume.BytesPerSector, humanBytes(int64(c.Volume.TotalBytes())))
		if c.Volume.SetIdentifier != "" {
			fmt.Fprintf(w, "Set identifier:\t%s\n", c.Volume.SetIdentifier)
		}
	}
	fmt.Fprintf(w, "Reconstructed disk:\t%s (%d bytes)\n", humanBytes(c.RawDiskSize), c.RawDiskSize)
	for _, e := range c.Errors {
		fmt.Fprintf(w, "Error:\t%s\n", e)
	}
}

func printPartitionTable(w io.Writer, summary *EvidenceSummary) {
	pt := summary.PartitionTable

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Partition Table")
	fmt.Fprintln(w, "---------------")
	fmt.Fprintf(w, "Scheme:\t%s\n", pt.Kind)
	fmt.Fprintf(w, "Sector size:\t%d bytes\n", pt.SectorSize)
	if pt.DiskGUID != "" {
		fmt.Fprintf(w, "Disk GUID:\t%s\n", pt.DiskGUID)
	}
	for _, e := range pt.Errors {
		fmt.Fprintf(w, "Error:\t%s\n", e)
	}

	fmt.Fprintln(w)
	if len(pt.Partitions) == 0 {
		fmt.Fprintln(w, "(no partitions)")
		return
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "IDX\tTYPE\tCODE\tSTART(LBA)\tEND(LBA)\tSIZE\tBOOT\tNAME\tFS")
	for _, p := range pt.Partitions {
		boot := "-"
		if p.Bootable {
			boot = "*"
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%d\t%d\t%s\t%s\t%s\t%s\n",
			p.Index,
			p.Type,
			p.TypeCode,
			p.StartLBA,
			p.EndLBA,
			humanBytes(int64(p.SizeBytes)),
			boot,
			emptyIfWhitespace(p.Name),
			emptyIfWhitespace(p.Filesystem),
		)
	}
	tw.Flush()
}

func printFilesystem(w io.Writer, fs *FilesystemSummary) {
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Partition %d Filesystem (%s)\n", fs.PartitionIndex, fs.Variant)
	fmt.Fprintln(w, "-----------------------------")
	if fs.BootSector != nil {
		bs := fs.BootSector
		fmt.Fprintf(w, "Label:\t%s\tFS type:\t%s\n", emptyIfWhitespace(bs.VolumeLabel), emptyIfWhitespace(bs.FSType))
		fmt.Fprintf(w, "Cluster size:\t%d bytes\n", int(bs.SectorsPerCluster)*int(bs.BytesPerSector))
	}
	fmt.Fprintf(w, "Contents:\t%d files, %d directories\n", fs.FileCount, fs.DirCount)
	for _, e := range fs.Errors {
		fmt.Fprintf(w, "Error:\t%s\n", e)
	}

	PrintTree(w, fs.Entries, 0)
}

// PrintTree prints the directory listing as an indented tree.
func PrintTree(w io.Writer, entries []*fat.FileEntry, indent int) {
	prefix := strings.Repeat("  ", indent)
	for _, e := range entries {
		if e.IsDirectory {
			fmt.Fprintf(w, "%s%s/\n", prefix, e.Name)
			PrintTree(w, e.Children, indent+1)
			continue
		}
		flags := ""
		if e.IsHidden {
			flags += "h"
		}
		if e.IsSystem {
			flags += "s"
		}
		if flags != "" {
			flags = " [" + flags + "]"
		}
		fmt.Fprintf(w, "%s%s  %s%s\n", prefix, e.Name, humanBytes(int64(e.Size)), flags)
	}
}

// humanBytes renders a byte count with a binary-unit suffix.
func humanBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for v := n / unit; v >= unit; v /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}

func emptyIfWhitespace(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "-"
	}
	return s
}
