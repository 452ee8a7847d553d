package pipeline

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/Mugil-an/carcheckmate/internal/model"
)

// csvHeader is the tabular export schema, one row per event.
var csvHeader = []string{
	"file", "page", "service_date", "odometer", "invoice_no",
	"total_amount", "garage", "parts", "parts_amounts", "raw_block_text",
}

// rawBlockExportLimit bounds the raw_block_text column in CSV exports.
const rawBlockExportLimit = 1000

// Artifacts names the files a render pass produced.
type Artifacts struct {
	JSONPath string
	CSVPath  string
}

// Renderer writes the per-document artifacts: a JSON summary and a CSV
// of events. An empty event list still produces a header-only CSV so the
// export is always present.
type Renderer struct {
	dir string
	now func() time.Time
}

// NewRenderer creates a renderer writing into dir, creating it if needed.
func NewRenderer(dir string) *Renderer {
	return &Renderer{dir: dir, now: time.Now}
}

// Render writes both artifacts for the summary and returns their paths.
func (r *Renderer) Render(summary *model.DocumentSummary) (Artifacts, error) {
	if err := os.MkdirAll(r.dir, 0o755); err != nil {
		return Artifacts{}, fmt.Errorf("create output dir: %w", err)
	}

	stem := strings.TrimSuffix(summary.File, filepath.Ext(summary.File))
	stamp := r.now().Format("20060102_150405")

	jsonPath := filepath.Join(r.dir, fmt.Sprintf("%s_parsed_%s.json", stem, stamp))
	if err := r.renderJSON(summary, jsonPath); err != nil {
		return Artifacts{}, err
	}

	csvPath := filepath.Join(r.dir, fmt.Sprintf("%s_events_%s.csv", stem, stamp))
	if err := r.renderCSV(summary, csvPath); err != nil {
		return Artifacts{}, err
	}

	return Artifacts{JSONPath: jsonPath, CSVPath: csvPath}, nil
}

func (r *Renderer) renderJSON(summary *model.DocumentSummary, path string) error {
	data, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return fmt.Errorf("encode summary: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write JSON summary: %w", err)
	}
	return nil
}

func (r *Renderer) renderCSV(summary *model.DocumentSummary, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create CSV export: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(csvHeader); err != nil {
		return fmt.Errorf("write CSV header: %w", err)
	}
	for _, ev := range summary.Events {
		record := []string{
			summary.File,
			strconv.Itoa(ev.PageIndex),
			ev.ServiceDate,
			ev.Odometer,
			ev.InvoiceNo,
			ev.TotalAmount,
			ev.Garage,
			strings.Join(ev.Parts, "; "),
			strings.Join(ev.PartsAmounts, "; "),
			truncate(ev.RawBlockText, rawBlockExportLimit),
		}
		if err := w.Write(record); err != nil {
			return fmt.Errorf("write CSV row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flush CSV export: %w", err)
	}
	return nil
}

// WriteSummary prints a short human-readable digest of the scan.
func WriteSummary(w io.Writer, summary *model.DocumentSummary) {
	fmt.Fprintf(w, "File:                 %s\n", summary.File)
	fmt.Fprintf(w, "Events:               %d\n", summary.ParsedEventsCount)
	fmt.Fprintf(w, "Owners:               %d\n", summary.UniqueOwnerCount)
	for _, o := range summary.Owners {
		fmt.Fprintf(w, "  - %s\n", o)
	}
	fmt.Fprintf(w, "Service gaps:         %d\n", len(summary.MissingPeriods.Gaps))
	for _, g := range summary.MissingPeriods.Gaps {
		fmt.Fprintf(w, "  - %s -> %s (%d months)\n", g.From, g.To, g.MonthsGap)
	}
	fmt.Fprintf(w, "Odometer rollback:    %v\n", summary.OdometerIssues.Rollback)
	fmt.Fprintf(w, "Unauthorized garages: %d\n", len(summary.UnauthorizedGarages))
	for _, g := range summary.UnauthorizedGarages {
		fmt.Fprintf(w, "  - %s\n", g)
	}
}
