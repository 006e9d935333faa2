package main

import (
	"github.com/spf13/cobra"

	"github.com/open-forensics/ewf-inspect/internal/inspect"
)

// createMetadataCommand creates the metadata subcommand
func createMetadataCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "metadata IMAGE_FILE",
		Short: "prints case metadata and stored hashes",
		Long: `Metadata runs the full inspection and prints only the
acquisition case metadata and stored digests from the EWF header
and hash sections.`,
		Args: cobra.ExactArgs(1),
		RunE: executeMetadata,
	}
}

func executeMetadata(cmd *cobra.Command, args []string) error {
	data, err := readEvidenceFile(args[0])
	if err != nil {
		return err
	}

	inspector := inspect.NewInspector(false)
	summary := inspector.InspectBytes(args[0], data)

	inspect.PrintMetadata(cmd.OutOrStdout(), summary)
	return nil
}
