package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/open-forensics/ewf-inspect/internal/config"
	"github.com/open-forensics/ewf-inspect/internal/evidence"
	"github.com/open-forensics/ewf-inspect/internal/inspect"
	"github.com/open-forensics/ewf-inspect/internal/utils/logger"
)

// Inspect command flags
var (
	outputFormat string // Output format for the inspection results
	prettyJSON   bool   // Pretty-print JSON output
	hashImage    bool   // Compute SHA256 of the evidence file
	profilePath  string // Optional inspection profile
	sigPath      string // Detached armored PGP signature over the evidence file
	keyringPath  string // Armored keyring for signature verification
)

// createInspectCommand creates the inspect subcommand
func createInspectCommand() *cobra.Command {
	inspectCmd := &cobra.Command{
		Use:   "inspect [flags] IMAGE_FILE",
		Short: "inspects an EWF evidence file",
		Long: `Inspect decodes the EWF container, reconstructs the acquired
raw disk, parses its partition table and enumerates file listings
on every FAT partition.`,
		Args: cobra.ExactArgs(1),
		PreRunE: func(cmd *cobra.Command, args []string) error {
			if profilePath != "" {
				return nil // format comes from the profile
			}
			switch outputFormat {
			case "text", "json", "yaml":
				return nil
			default:
				return fmt.Errorf("unsupported --format %q (supported: text, json, yaml)", outputFormat)
			}
		},
		RunE: executeInspect,
	}

	inspectCmd.Flags().StringVar(&outputFormat, "format", "text",
		"Specify the output format for the inspection results")
	inspectCmd.Flags().BoolVar(&prettyJSON, "pretty", false,
		"Pretty-print JSON output (only for --format json)")
	inspectCmd.Flags().BoolVar(&hashImage, "hash", false,
		"Compute SHA256 of the evidence file (slower on large images)")
	inspectCmd.Flags().StringVar(&profilePath, "profile", "",
		"Inspection profile file (YAML)")
	inspectCmd.Flags().StringVar(&sigPath, "verify-sig", "",
		"Detached armored PGP signature to verify against the evidence file")
	inspectCmd.Flags().StringVar(&keyringPath, "keyring", "",
		"Armored PGP keyring used with --verify-sig")

	return inspectCmd
}

// executeInspect handles the inspect command execution logic
func executeInspect(cmd *cobra.Command, args []string) error {
	log := logger.Logger()
	imageFile := args[0]

	profile := config.DefaultProfile()
	profile.Format = outputFormat
	profile.Pretty = prettyJSON
	profile.Hash = hashImage
	if profilePath != "" {
		loaded, err := config.LoadProfile(profilePath)
		if err != nil {
			return err
		}
		profile = loaded
	}

	data, err := readEvidenceFile(imageFile)
	if err != nil {
		return err
	}

	if sigPath != "" {
		verifySignature(cmd, imageFile, sigPath, keyringPath)
	}

	inspector := inspect.NewInspector(profile.Hash)
	summary := inspector.InspectBytes(imageFile, data)

	inspect.LimitTreeDepth(summary, profile.TreeDepth)

	if len(profile.Partitions) > 0 {
		filtered := summary.Filesystems[:0]
		for _, fs := range summary.Filesystems {
			if profile.WantsPartition(fs.PartitionIndex) {
				filtered = append(filtered, fs)
			}
		}
		summary.Filesystems = filtered
	}

	log.Infof("Inspection complete: %d sections, %d filesystems",
		summary.EWF.SectionCount, len(summary.Filesystems))

	return writeInspectionResult(cmd, summary, profile.Format, profile.Pretty)
}

// verifySignature reports the chain-of-custody signature state without
// blocking inspection: a bad or unverifiable signature is evidence too.
func verifySignature(cmd *cobra.Command, imageFile, sigFile, keyringFile string) {
	log := logger.Logger()

	if keyringFile == "" {
		log.Warnf("--verify-sig given without --keyring; skipping verification")
		return
	}

	img, err := os.Open(imageFile)
	if err != nil {
		log.Warnf("Signature verification skipped: %v", err)
		return
	}
	defer img.Close()

	sig, err := os.Open(sigFile)
	if err != nil {
		log.Warnf("Signature verification skipped: %v", err)
		return
	}
	defer sig.Close()

	keys, err := os.Open(keyringFile)
	if err != nil {
		log.Warnf("Signature verification skipped: %v", err)
		return
	}
	defer keys.Close()

	signer, err := evidence.VerifyDetachedSignature(img, sig, keys)
	if err != nil {
		log.Warnf("Evidence signature NOT verified: %v", err)
		fmt.Fprintf(cmd.OutOrStdout(), "Signature: NOT VERIFIED (%v)\n", err)
		return
	}
	log.Infof("Evidence signature verified, signed by %s", signer)
	fmt.Fprintf(cmd.OutOrStdout(), "Signature: verified, signed by %s\n", signer)
}

func writeInspectionResult(cmd *cobra.Command, summary *inspect.EvidenceSummary, format string, pretty bool) error {
	out := cmd.OutOrStdout()

	switch format {
	case "text":
		inspect.PrintSummary(out, summary)
		return nil

	case "json":
		var (
			b   []byte
			err error
		)
		if pretty {
			b, err = json.MarshalIndent(summary, "", "  ")
		} else {
			b, err = json.Marshal(summary)
		}
		if err != nil {
			return fmt.Errorf("marshal json: %w", err)
		}
		_, _ = fmt.Fprintln(out, string(b))
		return nil

	case "yaml":
		b, err := yaml.Marshal(summary)
		if err != nil {
			return fmt.Errorf("marshal yaml: %w", err)
		}
		_, _ = fmt.Fprintln(out, string(b))
		return nil

	default:
		return fmt.Errorf("unsupported output format: %s", format)
	}
}
