// ewf-inspect examines Expert Witness Format (E01) evidence files: container
// metadata, partition layout of the acquired disk, and FAT file listings.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/open-forensics/ewf-inspect/internal/utils/logger"
)

var verbose bool

func main() {
	rootCmd := &cobra.Command{
		Use:   "ewf-inspect",
		Short: "forensic EWF/E01 evidence inspector",
		Long: `ewf-inspect decodes Expert Witness Format (E01) disk images,
reconstructs the acquired raw disk, identifies its partition table
(MBR or GPT), and enumerates file listings on FAT partitions.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logger.SetVerbose(verbose)
		},
	}

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false,
		"Enable debug logging")
	rootCmd.SetGlobalNormalizationFunc(normalizeFlags)

	rootCmd.AddCommand(createInspectCommand())
	rootCmd.AddCommand(createMetadataCommand())
	rootCmd.AddCommand(createTreeCommand())
	rootCmd.AddCommand(createExportCommand())
	rootCmd.AddCommand(createViewCommand())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// normalizeFlags lets users spell multi-word flags with underscores.
func normalizeFlags(f *pflag.FlagSet, name string) pflag.NormalizedName {
	for i := range name {
		if name[i] == '_' {
			return pflag.NormalizedName(replaceUnderscores(name))
		}
	}
	return pflag.NormalizedName(name)
}

func replaceUnderscores(name string) string {
	out := []byte(name)
	for i := range out {
		if out[i] == '_' {
			out[i] = '-'
		}
	}
	return string(out)
}
