// Package extract turns assembled page lines into candidate service
// events and scans full-document text for ownership mentions.
package extract

import (
	"strings"

	"github.com/Mugil-an/carcheckmate/internal/model"
	"github.com/Mugil-an/carcheckmate/internal/patterns"
)

// Segmenter finds date-anchored service events in a page's lines.
type Segmenter struct {
	lib    *patterns.Library
	radius int
}

// NewSegmenter creates a segmenter with the given context-window radius
// (lines before and after an anchor). A non-positive radius falls back to
// the default of 3.
func NewSegmenter(lib *patterns.Library, radius int) *Segmenter {
	if radius <= 0 {
		radius = 3
	}
	return &Segmenter{lib: lib, radius: radius}
}

// Segment scans lines in order for date anchors and produces one Event per
// anchor. Field extraction runs against the anchor's whole context window,
// not the anchor line itself, so a line can trigger anchoring without
// carrying every field. An anchor with nothing extractable still yields an
// event; its block text is kept for audit.
func (s *Segmenter) Segment(lines []model.Line) []model.Event {
	var events []model.Event

	for i, line := range lines {
		if !s.isAnchor(line.Text) {
			continue
		}

		start := i - s.radius
		if start < 0 {
			start = 0
		}
		end := i + s.radius + 1
		if end > len(lines) {
			end = len(lines)
		}
		window := lines[start:end]

		texts := make([]string, len(window))
		for j, l := range window {
			texts[j] = l.Text
		}
		blockText := strings.Join(texts, " ")

		ev := model.Event{
			RawBlockText: blockText,
			Parts:        []string{},
			PartsAmounts: []string{},
		}
		ev.ServiceDate, _ = patterns.FirstMatch(blockText, s.lib.Date)
		ev.Odometer, _ = patterns.FirstMatch(blockText, s.lib.Odometer)
		ev.InvoiceNo, _ = patterns.FirstMatch(blockText, s.lib.Invoice)
		ev.TotalAmount, _ = patterns.FirstMatch(blockText, s.lib.TotalAmount)
		ev.Garage = s.findGarage(window)
		s.collectParts(window, &ev)

		events = append(events, ev)
	}

	return events
}

// isAnchor reports whether the line suggests the start of a service
// record: a date mention, a "service ... date" phrase, or a standalone
// "date" token.
func (s *Segmenter) isAnchor(text string) bool {
	if _, ok := patterns.FirstMatch(text, s.lib.Date); ok {
		return true
	}
	lower := strings.ToLower(text)
	if strings.Contains(lower, "service") && strings.Contains(lower, "date") {
		return true
	}
	return s.lib.DateWord.MatchString(text)
}

// findGarage scans the first three window lines for a service-center
// keyword; letterhead conventionally sits near the top of an invoice
// segment. If that misses, the whole window is scanned.
func (s *Segmenter) findGarage(window []model.Line) string {
	top := 3
	if top > len(window) {
		top = len(window)
	}
	for _, line := range window[:top] {
		if s.lib.GarageKeywords.MatchString(line.Text) {
			return line.Text
		}
	}
	for _, line := range window[top:] {
		if s.lib.GarageKeywords.MatchString(line.Text) {
			return line.Text
		}
	}
	return ""
}

// collectParts appends line items matching "<description> <amount>" at
// line end. The currency-glyph form is preferred; a trailing bare number
// of at least 3 digits is the fallback for OCR that dropped the glyph.
// Amounts are comma-stripped and stay index-aligned with descriptions.
func (s *Segmenter) collectParts(window []model.Line, ev *model.Event) {
	for _, line := range window {
		if m := s.lib.PartCurrency.FindStringSubmatch(line.Text); m != nil {
			ev.Parts = append(ev.Parts, strings.TrimSpace(m[1]))
			ev.PartsAmounts = append(ev.PartsAmounts, strings.ReplaceAll(m[2], ",", ""))
			continue
		}
		if m := s.lib.PartNumber.FindStringSubmatch(line.Text); m != nil && len(m[2]) > 2 {
			ev.Parts = append(ev.Parts, strings.TrimSpace(m[1]))
			ev.PartsAmounts = append(ev.PartsAmounts, strings.ReplaceAll(m[2], ",", ""))
		}
	}
}

// Dedupe drops events whose (service_date, odometer, invoice_no) key was
// already seen, keeping first-seen order. Running it on an already
// deduplicated list is a no-op.
func Dedupe(events []model.Event) []model.Event {
	seen := make(map[model.EventKey]bool, len(events))
	out := make([]model.Event, 0, len(events))
	for _, ev := range events {
		key := ev.Key()
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, ev)
	}
	return out
}
