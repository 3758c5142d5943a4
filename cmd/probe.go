package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/denysvitali/picmark/pkg/watermark"
)

var probeCmd = &cobra.Command{
	Use:   "probe [file...]",
	Short: "Print image dimensions and format",
	Long: `Decode each file and print its width, height,
format and MIME type.

Example:
  picmark probe photo.jpg scan.webp
  picmark probe --json photo.jpg`,
	Args: cobra.MinimumNArgs(1),
	RunE: runProbe,
}

func init() {
	rootCmd.AddCommand(probeCmd)
	probeCmd.Flags().Bool("json", false, "print one JSON object per file")
}

type probeOutput struct {
	File string `json:"file"`
	watermark.Dimensions
	MimeType string `json:"mime_type"`
}

func runProbe(cmd *cobra.Command, args []string) error {
	asJSON, _ := cmd.Flags().GetBool("json")
	enc := json.NewEncoder(os.Stdout)

	var failed int
	for _, file := range args {
		dims, err := watermark.ProbeFile(cmd.Context(), file)
		if err != nil {
			failed++
			logger.WithError(err).WithField("file", file).Error("Probe failed")
			continue
		}

		out := probeOutput{File: file, Dimensions: dims, MimeType: watermark.MimeType(file)}
		if asJSON {
			if err := enc.Encode(out); err != nil {
				return fmt.Errorf("writing output: %w", err)
			}
			continue
		}
		fmt.Printf("%s: %dx%d %s (%s)\n", out.File, out.Width, out.Height, out.Format, out.MimeType)
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d files could not be probed", failed, len(args))
	}
	return nil
}
