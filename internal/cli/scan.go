package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/Mugil-an/carcheckmate/internal/cache"
	"github.com/Mugil-an/carcheckmate/internal/model"
	"github.com/Mugil-an/carcheckmate/internal/ocr"
	"github.com/Mugil-an/carcheckmate/internal/pipeline"
	"github.com/Mugil-an/carcheckmate/internal/store"
	"github.com/spf13/cobra"
)

var (
	outDir       string
	dbDSN        string
	gapThreshold int
	windowRadius int
	pageSegMode  int
	rasterDPI    int
	scanTimeout  time.Duration
	noCache      bool
)

// scanCmd represents the scan command
var scanCmd = &cobra.Command{
	Use:   "scan <file>",
	Short: "Scan a single service document and report its history",
	Long: `Scan runs OCR over one service document (image or PDF) to:
- Reconstruct dated service events with odometer, invoice and parts data
- Extract the registered owner names
- Detect service gaps, odometer rollbacks and unauthorized garages
- Export a JSON summary and a CSV of events

Example:
  carcheckmate scan servicebook.pdf
  carcheckmate scan invoice.jpg --out ./reports --threshold 24
  carcheckmate scan servicebook.pdf --db "host=localhost user=carcheck dbname=carcheck"`,
	Args: cobra.ExactArgs(1),
	RunE: runScan,
}

func init() {
	rootCmd.AddCommand(scanCmd)

	// Output flags
	scanCmd.Flags().StringVar(&outDir, "out", "ocr_output", "output directory for JSON and CSV artifacts")
	scanCmd.Flags().StringVar(&dbDSN, "db", "", "PostgreSQL DSN for event persistence (empty disables)")

	// Analysis flags
	scanCmd.Flags().IntVar(&gapThreshold, "threshold", 18, "months between services before a gap is flagged")
	scanCmd.Flags().IntVar(&windowRadius, "radius", 3, "lines of context around a date anchor")

	// OCR flags
	scanCmd.Flags().IntVar(&pageSegMode, "psm", 3, "Tesseract page segmentation mode")
	scanCmd.Flags().IntVar(&rasterDPI, "dpi", 300, "rasterization DPI for PDF pages")

	scanCmd.Flags().DurationVar(&scanTimeout, "timeout", 5*time.Minute, "overall scan timeout")
	scanCmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the summary cache (force a fresh OCR pass)")
}

func runScan(cmd *cobra.Command, args []string) error {
	path := args[0]
	ctx, cancel := context.WithTimeout(context.Background(), scanTimeout)
	defer cancel()

	if verbose {
		fmt.Fprintf(os.Stderr, "Scanning: %s\n", path)
		fmt.Fprintf(os.Stderr, "Timeout: %v\n", scanTimeout)
		fmt.Fprintf(os.Stderr, "Cache: %v\n", !noCache)
		fmt.Fprintln(os.Stderr)
	}

	cfg := buildConfig()

	proc, err := newProcessor(cfg)
	if err != nil {
		return err
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "Running OCR...\n")
	}

	summary, err := proc.ProcessFile(ctx, path)
	if err != nil {
		return fmt.Errorf("scan failed: %w", err)
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "Parsed %d events\n", summary.ParsedEventsCount)
		fmt.Fprintf(os.Stderr, "Found %d owners\n", summary.UniqueOwnerCount)
		fmt.Fprintln(os.Stderr)
	}

	renderer := pipeline.NewRenderer(cfg.Output.Dir)
	arts, err := renderer.Render(summary)
	if err != nil {
		return fmt.Errorf("render failed: %w", err)
	}

	pipeline.WriteSummary(os.Stdout, summary)
	fmt.Printf("\nJSON: %s\nCSV:  %s\n", arts.JSONPath, arts.CSVPath)

	return nil
}

// buildConfig merges the scan flags over the defaults.
func buildConfig() *model.Config {
	cfg := model.DefaultConfig()
	cfg.Output.Dir = outDir
	cfg.Output.Verbose = verbose
	cfg.Cache.Enabled = !noCache
	cfg.Anomaly.MaxMonthsBetweenServices = gapThreshold
	cfg.Extraction.WindowRadius = windowRadius
	cfg.OCR.PageSegMode = pageSegMode
	cfg.OCR.DPI = rasterDPI
	cfg.DB.DSN = dbDSN
	return cfg
}

// newProcessor assembles the document processor and its collaborators
// from the configuration.
func newProcessor(cfg *model.Config) (*pipeline.Processor, error) {
	engine := ocr.NewTesseract(cfg.OCR)
	rasterizer := ocr.NewPopplerRasterizer()

	var sink pipeline.EventSink
	if cfg.DB.DSN != "" {
		db, err := store.Open(cfg.DB.DSN)
		if err != nil {
			return nil, fmt.Errorf("open database: %w", err)
		}
		sink = db
	}

	var summaryCache cache.Cache
	if cfg.Cache.Enabled {
		summaryCache = cache.NewMemoryCache(cfg.Cache.TTL, cfg.Cache.TTL)
	}

	return pipeline.NewProcessor(cfg, engine, rasterizer, sink, summaryCache), nil
}
