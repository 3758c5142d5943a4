package watermark

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// BatchProcessor handles batch processing of multiple images
type BatchProcessor struct {
	processor *Processor
	workers   int
	recursive bool
	logger    logrus.FieldLogger
}

// BatchOptions configures batch processing behavior
type BatchOptions struct {
	Workers   int
	Recursive bool
	Logger    logrus.FieldLogger
}

// NewBatchProcessor creates a new batch processor
func NewBatchProcessor(processor *Processor, options *BatchOptions) (*BatchProcessor, error) {
	if processor == nil {
		return nil, fmt.Errorf("processor cannot be nil")
	}
	if cfg := processor.Config(); cfg.Active() {
		if err := cfg.Validate(); err != nil {
			return nil, fmt.Errorf("invalid config: %w", err)
		}
	}

	if options == nil {
		options = &BatchOptions{}
	}

	workers := options.Workers
	if workers <= 0 {
		workers = 4
	}

	logger := options.Logger
	if logger == nil {
		logger = logrus.New()
	}

	return &BatchProcessor{
		processor: processor,
		workers:   workers,
		recursive: options.Recursive,
		logger:    logger,
	}, nil
}

// BatchResult contains the results of batch processing
type BatchResult struct {
	RunID        string
	TotalCount   int
	SuccessCount int
	ErrorCount   int
	Errors       []BatchError
}

// BatchError represents an error that occurred during batch processing
type BatchError struct {
	FilePath string
	Error    error
}

// job represents a single processing job
type job struct {
	inputPath  string
	outputPath string
}

// jobResult represents the result of a single job
type jobResult struct {
	inputPath string
	err       error
}

// supportedExts are the inputs the batch walker picks up
var supportedExts = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
	".bmp":  true,
	".tif":  true,
	".tiff": true,
}

// ProcessDirectory processes all images in a directory
func (bp *BatchProcessor) ProcessDirectory(ctx context.Context, inputDir, outputDir string) (*BatchResult, error) {
	imageFiles, err := bp.findImageFiles(inputDir)
	if err != nil {
		return nil, fmt.Errorf("finding image files: %w", err)
	}

	if len(imageFiles) == 0 {
		return nil, fmt.Errorf("no image files found in %s", inputDir)
	}

	runID := uuid.NewString()
	logger := bp.logger.WithField("run_id", runID)
	logger.WithFields(logrus.Fields{
		"input_dir":  inputDir,
		"output_dir": outputDir,
		"files":      len(imageFiles),
		"workers":    bp.workers,
		"recursive":  bp.recursive,
	}).Info("Starting batch processing")

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	result := bp.processFiles(ctx, logger, imageFiles, inputDir, outputDir)
	result.RunID = runID

	logger.WithFields(logrus.Fields{
		"success": result.SuccessCount,
		"errors":  result.ErrorCount,
		"total":   result.TotalCount,
	}).Info("Batch processing completed")

	return result, nil
}

// OutputPath maps an input file under inputDir onto outputDir. Inputs the
// encoder cannot write keep their name but get a .jpg extension.
func OutputPath(inputDir, outputDir, file string) string {
	relPath, err := filepath.Rel(inputDir, file)
	if err != nil {
		relPath = filepath.Base(file)
	}
	if _, err := FormatFromFilename(relPath); err != nil {
		relPath = strings.TrimSuffix(relPath, filepath.Ext(relPath)) + ".jpg"
	}
	return filepath.Join(outputDir, relPath)
}

// processFiles processes a list of image files using worker goroutines
func (bp *BatchProcessor) processFiles(ctx context.Context, logger logrus.FieldLogger, imageFiles []string, inputDir, outputDir string) *BatchResult {
	jobs := make(chan job, len(imageFiles))
	results := make(chan jobResult, len(imageFiles))

	var wg sync.WaitGroup
	for i := 0; i < bp.workers; i++ {
		wg.Add(1)
		go bp.worker(ctx, jobs, results, &wg)
	}

	result := &BatchResult{
		TotalCount: len(imageFiles),
		Errors:     make([]BatchError, 0),
	}

	for _, file := range imageFiles {
		outputPath := OutputPath(inputDir, outputDir, file)

		if err := os.MkdirAll(filepath.Dir(outputPath), 0755); err != nil {
			logger.WithError(err).WithField("path", filepath.Dir(outputPath)).Warn("Failed to create output directory")
			results <- jobResult{inputPath: file, err: fmt.Errorf("creating output directory: %w", err)}
			continue
		}

		jobs <- job{
			inputPath:  file,
			outputPath: outputPath,
		}
	}
	close(jobs)

	go func() {
		wg.Wait()
		close(results)
	}()

	for jobResult := range results {
		if jobResult.err != nil {
			result.ErrorCount++
			result.Errors = append(result.Errors, BatchError{
				FilePath: jobResult.inputPath,
				Error:    jobResult.err,
			})
			logger.WithError(jobResult.err).WithField("file", jobResult.inputPath).Error("Failed to process image")
		} else {
			result.SuccessCount++
			logger.WithField("file", jobResult.inputPath).Debug("Successfully processed image")
		}
	}

	return result
}

// worker processes jobs from the job channel
func (bp *BatchProcessor) worker(ctx context.Context, jobs <-chan job, results chan<- jobResult, wg *sync.WaitGroup) {
	defer wg.Done()

	for job := range jobs {
		err := ctx.Err()
		if err == nil {
			err = bp.processor.ProcessFile(ctx, job.inputPath, job.outputPath)
		}
		results <- jobResult{
			inputPath: job.inputPath,
			err:       err,
		}
	}
}

// findImageFiles finds all image files in the given directory
func (bp *BatchProcessor) findImageFiles(inputDir string) ([]string, error) {
	var imageFiles []string

	err := filepath.Walk(inputDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		if info.IsDir() {
			if !bp.recursive && path != inputDir {
				return filepath.SkipDir
			}
			return nil
		}

		if supportedExts[strings.ToLower(filepath.Ext(path))] {
			imageFiles = append(imageFiles, path)
		}

		return nil
	})

	return imageFiles, err
}
