// Package pipeline orchestrates the complete document scan: rasterize,
// recognize, assemble, segment, analyze, persist, render.
package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"image"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"

	"github.com/Mugil-an/carcheckmate/internal/anomaly"
	"github.com/Mugil-an/carcheckmate/internal/cache"
	"github.com/Mugil-an/carcheckmate/internal/extract"
	"github.com/Mugil-an/carcheckmate/internal/layout"
	"github.com/Mugil-an/carcheckmate/internal/model"
	"github.com/Mugil-an/carcheckmate/internal/ocr"
	"github.com/Mugil-an/carcheckmate/internal/patterns"
)

// PageSeparator joins per-page texts into the cross-page document text
// the owner extractor runs over.
const PageSeparator = "\n\n---PAGE---\n\n"

// EventSink persists extracted events. A nil sink disables persistence.
type EventSink interface {
	SaveEvents(sourceFile string, events []model.Event) error
}

// Processor drives one document end to end. Documents share no mutable
// state, so independent Processors (or one Processor used from multiple
// workers) may run concurrently; pages within a document stay sequential
// because the cross-page analyses need the complete accumulated result.
type Processor struct {
	cfg        *model.Config
	engine     ocr.Engine
	rasterizer ocr.Rasterizer
	segmenter  *extract.Segmenter
	owners     *extract.OwnerExtractor
	sink       EventSink
	cache      cache.Cache
}

// NewProcessor wires a processor from its collaborators. sink and
// summaryCache may be nil to disable persistence and memoization.
func NewProcessor(cfg *model.Config, engine ocr.Engine, rasterizer ocr.Rasterizer, sink EventSink, summaryCache cache.Cache) *Processor {
	lib := patterns.DefaultLibrary()
	return &Processor{
		cfg:        cfg,
		engine:     engine,
		rasterizer: rasterizer,
		segmenter:  extract.NewSegmenter(lib, cfg.Extraction.WindowRadius),
		owners:     extract.NewOwnerExtractor(lib),
		sink:       sink,
		cache:      summaryCache,
	}
}

// ProcessFile processes one document and returns its summary. Any
// collaborator failure (rasterization, recognition, persistence) fails
// the whole document; heuristic misses inside a page never do.
func (p *Processor) ProcessFile(ctx context.Context, path string) (*model.DocumentSummary, error) {
	var key string
	if p.cache != nil {
		if k, err := cache.FileKey(path); err == nil {
			key = k
			if data, ok := p.cache.Get(key); ok {
				var cached model.DocumentSummary
				if err := json.Unmarshal(data, &cached); err == nil {
					return &cached, nil
				}
			}
		}
	}

	pages, err := p.loadPages(ctx, path)
	if err != nil {
		return nil, err
	}

	pageTexts := make([]string, 0, len(pages))
	events := []model.Event{}
	for i, img := range pages {
		page, err := p.engine.Recognize(ctx, img)
		if err != nil {
			return nil, fmt.Errorf("recognize page %d of %s: %w", i+1, path, err)
		}
		pageTexts = append(pageTexts, page.Text)

		lines := layout.AssembleLines(&page.Tokens)
		for _, ev := range p.segmenter.Segment(lines) {
			ev.PageIndex = i + 1
			events = append(events, ev)
		}
	}

	fullText := strings.Join(pageTexts, PageSeparator)
	events = extract.Dedupe(events)
	owners := p.owners.Extract(fullText)

	summary := &model.DocumentSummary{
		File:                filepath.Base(path),
		ParsedEventsCount:   len(events),
		Events:              events,
		Owners:              owners,
		UniqueOwnerCount:    len(owners),
		MissingPeriods:      anomaly.DetectMissingPeriods(events, p.cfg.Anomaly.MaxMonthsBetweenServices),
		OdometerIssues:      anomaly.DetectOdometerRollback(events),
		UnauthorizedGarages: anomaly.ClassifyGarages(events, p.cfg.Anomaly.TrustedGarages),
		RawText:             truncate(fullText, p.cfg.Output.SnippetLen),
	}

	if p.sink != nil {
		if err := p.sink.SaveEvents(summary.File, events); err != nil {
			return nil, fmt.Errorf("persist events for %s: %w", summary.File, err)
		}
	}

	if p.cache != nil && key != "" {
		if data, err := json.Marshal(summary); err == nil {
			_ = p.cache.Set(key, data, p.cfg.Cache.TTL)
		}
	}

	return summary, nil
}

// loadPages obtains the page images: PDFs go through the rasterization
// collaborator, single-image files load directly.
func (p *Processor) loadPages(ctx context.Context, path string) ([]image.Image, error) {
	if strings.ToLower(filepath.Ext(path)) == ".pdf" {
		pages, err := p.rasterizer.Rasterize(ctx, path, p.cfg.OCR.DPI)
		if err != nil {
			return nil, fmt.Errorf("rasterize %s: %w", path, err)
		}
		return pages, nil
	}

	img, err := imaging.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open image %s: %w", path, err)
	}
	return []image.Image{img}, nil
}

// truncate bounds s to at most n runes.
func truncate(s string, n int) string {
	if n <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
