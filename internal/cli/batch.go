package cli

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/Mugil-an/carcheckmate/internal/pipeline"
	"github.com/Mugil-an/carcheckmate/internal/worker"
	"github.com/spf13/cobra"
)

var (
	concurrency  int
	batchTimeout time.Duration
	jobsPerSec   float64
	jobBurst     int
)

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch <dir>",
	Short: "Scan every service document in a directory in parallel",
	Long: `Batch scans a directory of service documents concurrently:
- Picks up every supported file (png, jpg, jpeg, tiff, pdf)
- Runs scans in parallel with a configurable worker count
- Meters OCR admission so a large directory cannot saturate the host
- Writes per-document JSON and CSV artifacts

Example:
  carcheckmate batch ./scans
  carcheckmate batch ./scans --concurrency 8 --out ./reports
  carcheckmate batch ./scans --jobs-per-second 1 --timeout 30m`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().IntVar(&concurrency, "concurrency", runtime.NumCPU(), "number of concurrent workers")
	batchCmd.Flags().DurationVar(&batchTimeout, "timeout", 30*time.Minute, "total timeout for batch processing")
	batchCmd.Flags().Float64Var(&jobsPerSec, "jobs-per-second", 2, "OCR job admission rate")
	batchCmd.Flags().IntVar(&jobBurst, "burst", 4, "OCR job admission burst")

	// Shared with scan
	batchCmd.Flags().StringVar(&outDir, "out", "ocr_output", "output directory for JSON and CSV artifacts")
	batchCmd.Flags().StringVar(&dbDSN, "db", "", "PostgreSQL DSN for event persistence (empty disables)")
	batchCmd.Flags().IntVar(&gapThreshold, "threshold", 18, "months between services before a gap is flagged")
	batchCmd.Flags().IntVar(&windowRadius, "radius", 3, "lines of context around a date anchor")
	batchCmd.Flags().IntVar(&pageSegMode, "psm", 3, "Tesseract page segmentation mode")
	batchCmd.Flags().IntVar(&rasterDPI, "dpi", 300, "rasterization DPI for PDF pages")
	batchCmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the summary cache")
}

func runBatch(cmd *cobra.Command, args []string) error {
	dir := args[0]
	ctx, cancel := context.WithTimeout(context.Background(), batchTimeout)
	defer cancel()

	fmt.Fprintf(os.Stderr, "Input dir:  %s\n", dir)
	fmt.Fprintf(os.Stderr, "Workers:    %d\n", concurrency)
	fmt.Fprintf(os.Stderr, "Output dir: %s\n", outDir)
	fmt.Fprintf(os.Stderr, "Timeout:    %v\n", batchTimeout)
	fmt.Fprintln(os.Stderr)

	cfg := buildConfig()
	cfg.Concurrency.Workers = concurrency
	cfg.RateLimit.JobsPerSecond = jobsPerSec
	cfg.RateLimit.Burst = jobBurst

	proc, err := newProcessor(cfg)
	if err != nil {
		return err
	}

	limiter := worker.NewLimiter(cfg.RateLimit.JobsPerSecond, cfg.RateLimit.Burst)
	processor := worker.NewBatchProcessor(proc, limiter, cfg.Concurrency.Workers)

	outcomes, err := processor.ProcessDir(ctx, dir)
	if err != nil {
		return fmt.Errorf("process directory: %w", err)
	}

	renderer := pipeline.NewRenderer(cfg.Output.Dir)

	successCount := 0
	failureCount := 0
	for _, outcome := range outcomes {
		if outcome.Error != nil {
			failureCount++
			fmt.Fprintf(os.Stderr, "FAIL %s: %v\n", outcome.Path, outcome.Error)
			continue
		}

		if _, err := renderer.Render(outcome.Summary); err != nil {
			failureCount++
			fmt.Fprintf(os.Stderr, "FAIL %s: write artifacts: %v\n", outcome.Path, err)
			continue
		}

		successCount++
		fmt.Fprintf(os.Stderr, "OK   %s (%d events)\n", outcome.Path, outcome.Summary.ParsedEventsCount)
	}

	fmt.Fprintln(os.Stderr)
	fmt.Fprintf(os.Stderr, "Total:    %d documents\n", len(outcomes))
	fmt.Fprintf(os.Stderr, "Success:  %d\n", successCount)
	fmt.Fprintf(os.Stderr, "Failures: %d\n", failureCount)
	fmt.Fprintf(os.Stderr, "Output:   %s\n", outDir)

	if failureCount > 0 {
		return fmt.Errorf("%d of %d documents failed", failureCount, len(outcomes))
	}
	return nil
}
