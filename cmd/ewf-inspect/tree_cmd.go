package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/open-forensics/ewf-inspect/internal/inspect"
)

// Tree command flags
var treePartition int // Restrict to one partition index, 0 = all

// createTreeCommand creates the tree subcommand
func createTreeCommand() *cobra.Command {
	treeCmd := &cobra.Command{
		Use:   "tree [flags] IMAGE_FILE",
		Short: "prints FAT file listings",
		Long: `Tree reconstructs the acquired disk and prints the recursive
file listing of each FAT partition.`,
		Args: cobra.ExactArgs(1),
		RunE: executeTree,
	}

	treeCmd.Flags().IntVar(&treePartition, "partition", 0,
		"Only show the listing for this partition index")

	return treeCmd
}

func executeTree(cmd *cobra.Command, args []string) error {
	data, err := readEvidenceFile(args[0])
	if err != nil {
		return err
	}

	inspector := inspect.NewInspector(false)
	summary := inspector.InspectBytes(args[0], data)
	out := cmd.OutOrStdout()

	if len(summary.Filesystems) == 0 {
		fmt.Fprintln(out, "No FAT filesystems found")
		return nil
	}

	shown := 0
	for idx := range summary.Filesystems {
		fs := &summary.Filesystems[idx]
		if treePartition != 0 && fs.PartitionIndex != treePartition {
			continue
		}
		fmt.Fprintf(out, "Partition %d (%s): %d files, %d directories\n",
			fs.PartitionIndex, fs.Variant, fs.FileCount, fs.DirCount)
		inspect.PrintTree(out, fs.Entries, 1)
		shown++
	}

	if shown == 0 {
		return fmt.Errorf("partition %d has no FAT filesystem", treePartition)
	}
	return nil
}
