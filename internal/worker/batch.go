package worker

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/Mugil-an/carcheckmate/internal/model"
)

// supportedExtensions lists the document types a batch run picks up.
var supportedExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".tiff": true,
	".pdf":  true,
}

// DocumentScanner processes one document into a summary.
type DocumentScanner interface {
	ProcessFile(ctx context.Context, path string) (*model.DocumentSummary, error)
}

// ScanJob scans a single document, waiting for limiter admission first.
type ScanJob struct {
	Path    string
	Scanner DocumentScanner
	Limiter *Limiter
}

// Run executes the scan job.
func (j *ScanJob) Run(ctx context.Context) Result {
	if j.Limiter != nil {
		if err := j.Limiter.Wait(ctx); err != nil {
			return &ScanOutcome{Path: j.Path, Error: err}
		}
	}

	summary, err := j.Scanner.ProcessFile(ctx, j.Path)
	return &ScanOutcome{Path: j.Path, Summary: summary, Error: err}
}

// ScanOutcome is the result of scanning one document.
type ScanOutcome struct {
	Path    string
	Summary *model.DocumentSummary
	Error   error
}

// Err returns the scan error, if any.
func (o *ScanOutcome) Err() error {
	return o.Error
}

// BatchProcessor scans many documents concurrently.
type BatchProcessor struct {
	scanner     DocumentScanner
	limiter     *Limiter
	concurrency int
}

// NewBatchProcessor creates a batch processor. A nil limiter disables
// admission control.
func NewBatchProcessor(scanner DocumentScanner, limiter *Limiter, concurrency int) *BatchProcessor {
	return &BatchProcessor{
		scanner:     scanner,
		limiter:     limiter,
		concurrency: concurrency,
	}
}

// ProcessPaths scans the given documents concurrently.
func (b *BatchProcessor) ProcessPaths(ctx context.Context, paths []string) []*ScanOutcome {
	if len(paths) == 0 {
		return []*ScanOutcome{}
	}

	pool := NewPool(b.concurrency)
	pool.Start()

	for _, path := range paths {
		pool.Submit(&ScanJob{
			Path:    path,
			Scanner: b.scanner,
			Limiter: b.limiter,
		})
	}

	results := pool.Wait()

	outcomes := make([]*ScanOutcome, len(results))
	for i, res := range results {
		outcomes[i] = res.(*ScanOutcome)
	}
	return outcomes
}

// ProcessDir scans every supported document directly under dir.
func (b *BatchProcessor) ProcessDir(ctx context.Context, dir string) ([]*ScanOutcome, error) {
	paths, err := ListDocuments(dir)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	return b.ProcessPaths(ctx, paths), nil
}

// ListDocuments returns the supported document files directly under
// dir, sorted by name. Subdirectories are not descended into.
func ListDocuments(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read dir %s: %w", dir, err)
	}

	var paths []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if supportedExtensions[strings.ToLower(filepath.Ext(entry.Name()))] {
			paths = append(paths, filepath.Join(dir, entry.Name()))
		}
	}
	sort.Strings(paths)
	return paths, nil
}
