package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/denysvitali/picmark/pkg/watermark"
)

var batchCmd = &cobra.Command{
	Use:   "batch [input-dir] [output-dir]",
	Short: "Process multiple images in a directory",
	Long: `Process multiple images in a directory by adding watermarks. PNG inputs
stay PNG, JPEG inputs stay JPEG and every other format is written as JPEG.

Example:
  picmark batch ./photos ./watermarked --text "© Jane Doe" --workers 8 --recursive`,
	Args: cobra.ExactArgs(2),
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)
	addWatermarkFlags(batchCmd.Flags())

	// Batch-specific flags
	batchCmd.Flags().IntP("workers", "w", 0, "number of parallel workers")
	batchCmd.Flags().BoolP("recursive", "R", false, "process subdirectories recursively")
}

func runBatch(cmd *cobra.Command, args []string) error {
	inputDir := args[0]
	outputDir := args[1]

	cfg, err := resolveWatermarkConfig(cmd)
	if err != nil {
		return err
	}

	processor, err := newProcessor(cfg)
	if err != nil {
		return err
	}

	workers, _ := cmd.Flags().GetInt("workers")
	if workers == 0 {
		workers = configMgr.GetAppConfig().DefaultWorkers
	}
	recursive, _ := cmd.Flags().GetBool("recursive")

	batchProcessor, err := watermark.NewBatchProcessor(processor, &watermark.BatchOptions{
		Workers:   workers,
		Recursive: recursive,
		Logger:    logger,
	})
	if err != nil {
		return fmt.Errorf("creating batch processor: %w", err)
	}

	result, err := batchProcessor.ProcessDirectory(cmd.Context(), inputDir, outputDir)
	if err != nil {
		return fmt.Errorf("processing directory: %w", err)
	}

	rememberConfig(cmd, cfg)

	// Report results
	if result.ErrorCount > 0 {
		logger.Warnf("Completed with %d errors out of %d files", result.ErrorCount, result.TotalCount)
		for _, batchErr := range result.Errors {
			logger.WithError(batchErr.Error).WithField("file", batchErr.FilePath).Error("Processing failed")
		}
		return fmt.Errorf("%d of %d files failed", result.ErrorCount, result.TotalCount)
	}

	logger.Infof("Successfully processed all %d files", result.SuccessCount)
	return nil
}
