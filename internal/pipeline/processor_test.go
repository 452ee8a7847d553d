package pipeline

import (
	"context"
	"errors"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/Mugil-an/carcheckmate/internal/cache"
	"github.com/Mugil-an/carcheckmate/internal/model"
	"github.com/Mugil-an/carcheckmate/internal/ocr"
)

// fakeEngine replays scripted pages in call order.
type fakeEngine struct {
	pages []ocr.Page
	calls int
	err   error
}

func (f *fakeEngine) Name() string { return "fake" }

func (f *fakeEngine) Recognize(ctx context.Context, img image.Image) (ocr.Page, error) {
	if f.err != nil {
		return ocr.Page{}, f.err
	}
	if f.calls >= len(f.pages) {
		return ocr.Page{}, errors.New("no more scripted pages")
	}
	page := f.pages[f.calls]
	f.calls++
	return page, nil
}

// fakeRasterizer returns the given number of blank pages for any PDF.
type fakeRasterizer struct {
	pages int
	err   error
}

func (f *fakeRasterizer) Rasterize(ctx context.Context, path string, dpi int) ([]image.Image, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := make([]image.Image, f.pages)
	for i := range out {
		out[i] = image.NewRGBA(image.Rect(0, 0, 1, 1))
	}
	return out, nil
}

// fakeSink records persisted events.
type fakeSink struct {
	file   string
	events []model.Event
	calls  int
	err    error
}

func (f *fakeSink) SaveEvents(sourceFile string, events []model.Event) error {
	if f.err != nil {
		return f.err
	}
	f.calls++
	f.file = sourceFile
	f.events = events
	return nil
}

// pageFromLines scripts one OCR page: each string becomes a line of
// word tokens sharing a layout key.
func pageFromLines(text string, lines ...string) ocr.Page {
	page := ocr.Page{Text: text}
	for lineIdx, line := range lines {
		for wordIdx, word := range strings.Fields(line) {
			page.Tokens.Append(model.Token{
				Text:     word,
				Left:     wordIdx * 50,
				Top:      lineIdx * 20,
				Width:    45,
				Height:   12,
				BlockNum: 1,
				ParNum:   1,
				LineNum:  lineIdx + 1,
			})
		}
	}
	return page
}

func writeTestPNG(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := png.Encode(f, image.NewRGBA(image.Rect(0, 0, 2, 2))); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestProcessor_SingleImageDocument(t *testing.T) {
	path := writeTestPNG(t, t.TempDir(), "invoice.png")

	engine := &fakeEngine{pages: []ocr.Page{
		pageFromLines(
			"Service Date: 05/03/2021\nTotal: 1500.00",
			"Service Date: 05/03/2021",
			"Total: 1500.00",
		),
	}}
	sink := &fakeSink{}
	proc := NewProcessor(model.DefaultConfig(), engine, &fakeRasterizer{}, sink, nil)

	summary, err := proc.ProcessFile(context.Background(), path)
	if err != nil {
		t.Fatalf("ProcessFile: %v", err)
	}

	if summary.File != "invoice.png" {
		t.Errorf("file = %q", summary.File)
	}
	if summary.ParsedEventsCount != 1 || len(summary.Events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(summary.Events))
	}
	ev := summary.Events[0]
	if ev.ServiceDate != "05/03/2021" || ev.TotalAmount != "1500.00" {
		t.Errorf("event fields = %+v", ev)
	}
	if ev.PageIndex != 1 {
		t.Errorf("page index = %d, want 1", ev.PageIndex)
	}
	if summary.RawText != "Service Date: 05/03/2021\nTotal: 1500.00" {
		t.Errorf("raw text = %q", summary.RawText)
	}

	if sink.calls != 1 || sink.file != "invoice.png" || len(sink.events) != 1 {
		t.Errorf("sink not invoked as expected: %+v", sink)
	}
}

func TestProcessor_MultiPagePDFDedupesAcrossPages(t *testing.T) {
	engine := &fakeEngine{pages: []ocr.Page{
		pageFromLines("PAGE ONE TEXT", "Service Date: 01/01/2020"),
		pageFromLines("PAGE TWO TEXT", "Service Date: 01/01/2020"),
	}}
	proc := NewProcessor(model.DefaultConfig(), engine, &fakeRasterizer{pages: 2}, nil, nil)

	summary, err := proc.ProcessFile(context.Background(), "book.pdf")
	if err != nil {
		t.Fatalf("ProcessFile: %v", err)
	}

	if engine.calls != 2 {
		t.Errorf("expected 2 recognitions, got %d", engine.calls)
	}
	if len(summary.Events) != 1 {
		t.Fatalf("expected cross-page dedup to 1 event, got %d", len(summary.Events))
	}
	if summary.Events[0].PageIndex != 1 {
		t.Errorf("expected first-seen event from page 1, got page %d", summary.Events[0].PageIndex)
	}
	want := "PAGE ONE TEXT" + PageSeparator + "PAGE TWO TEXT"
	if summary.RawText != want {
		t.Errorf("raw text = %q, want %q", summary.RawText, want)
	}
}

func TestProcessor_EngineFailureFailsDocument(t *testing.T) {
	engine := &fakeEngine{err: errors.New("tesseract unavailable")}
	sink := &fakeSink{}
	proc := NewProcessor(model.DefaultConfig(), engine, &fakeRasterizer{pages: 1}, sink, nil)

	_, err := proc.ProcessFile(context.Background(), "book.pdf")
	if err == nil {
		t.Fatal("expected document-level failure")
	}
	if sink.calls != 0 {
		t.Error("sink must not be called on failure")
	}
}

func TestProcessor_SinkFailureFailsDocument(t *testing.T) {
	path := writeTestPNG(t, t.TempDir(), "invoice.png")

	engine := &fakeEngine{pages: []ocr.Page{
		pageFromLines("Service Date: 05/03/2021", "Service Date: 05/03/2021"),
	}}
	sink := &fakeSink{err: errors.New("connection refused")}
	proc := NewProcessor(model.DefaultConfig(), engine, &fakeRasterizer{}, sink, nil)

	if _, err := proc.ProcessFile(context.Background(), path); err == nil {
		t.Fatal("expected persistence failure to surface")
	}
}

func TestProcessor_NoAnchorsProducesEmptySummary(t *testing.T) {
	path := writeTestPNG(t, t.TempDir(), "blank.png")

	engine := &fakeEngine{pages: []ocr.Page{
		pageFromLines("routine checkup notes", "routine checkup notes"),
	}}
	proc := NewProcessor(model.DefaultConfig(), engine, &fakeRasterizer{}, nil, nil)

	summary, err := proc.ProcessFile(context.Background(), path)
	if err != nil {
		t.Fatalf("ProcessFile: %v", err)
	}
	if len(summary.Events) != 0 || summary.ParsedEventsCount != 0 {
		t.Errorf("expected no events, got %d", len(summary.Events))
	}
	if len(summary.UnauthorizedGarages) != 0 || len(summary.MissingPeriods.Gaps) != 0 {
		t.Errorf("expected empty anomaly results: %+v", summary)
	}
	if summary.File != "blank.png" || summary.RawText == "" {
		t.Errorf("summary must keep file name and raw text: %+v", summary)
	}
}

func TestProcessor_CacheSkipsReprocessing(t *testing.T) {
	path := writeTestPNG(t, t.TempDir(), "invoice.png")

	engine := &fakeEngine{pages: []ocr.Page{
		pageFromLines("Service Date: 05/03/2021", "Service Date: 05/03/2021"),
	}}
	mem := cache.NewMemoryCache(time.Minute, time.Minute)
	proc := NewProcessor(model.DefaultConfig(), engine, &fakeRasterizer{}, nil, mem)

	first, err := proc.ProcessFile(context.Background(), path)
	if err != nil {
		t.Fatalf("first ProcessFile: %v", err)
	}
	second, err := proc.ProcessFile(context.Background(), path)
	if err != nil {
		t.Fatalf("second ProcessFile: %v", err)
	}

	if engine.calls != 1 {
		t.Errorf("expected 1 recognition, got %d", engine.calls)
	}
	if second.ParsedEventsCount != first.ParsedEventsCount || second.File != first.File {
		t.Errorf("cached summary differs: %+v vs %+v", first, second)
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("abcdef", 4); got != "abcd" {
		t.Errorf("truncate = %q", got)
	}
	if got := truncate("short", 100); got != "short" {
		t.Errorf("truncate = %q", got)
	}
	// Rune-safe on multibyte currency glyphs.
	if got := truncate("₹₹₹₹", 2); got != "₹₹" {
		t.Errorf("truncate = %q", got)
	}
}
