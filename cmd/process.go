package cmd

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var processCmd = &cobra.Command{
	Use:   "process [input] [output]",
	Short: "Process a single image file",
	Long: `Process a single image file by adding a watermark. The output format
follows the output file extension (.jpg, .jpeg or .png).

Example:
  picmark process input.jpg output.jpg --text "© Jane Doe" --position bottom-right --padding 16
  picmark process input.png output.png --text DRAFT --fullscreen --rotation -30 --opacity 0.3`,
	Args: cobra.ExactArgs(2),
	RunE: runProcess,
}

func init() {
	rootCmd.AddCommand(processCmd)
	addWatermarkFlags(processCmd.Flags())
}

func runProcess(cmd *cobra.Command, args []string) error {
	inputPath := args[0]
	outputPath := args[1]

	cfg, err := resolveWatermarkConfig(cmd)
	if err != nil {
		return err
	}

	processor, err := newProcessor(cfg)
	if err != nil {
		return err
	}

	logger.WithFields(logrus.Fields{
		"input":    inputPath,
		"output":   outputPath,
		"text":     cfg.Text,
		"position": cfg.Position,
		"active":   cfg.Active(),
	}).Info("Processing single image")

	if err := processor.ProcessFile(cmd.Context(), inputPath, outputPath); err != nil {
		return fmt.Errorf("processing image: %w", err)
	}

	rememberConfig(cmd, cfg)

	logger.Info("Image processed successfully")
	return nil
}
