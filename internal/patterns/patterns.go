// Package patterns is the heuristic field-extraction library: named,
// ordered regex lists evaluated with a first-match-wins combinator.
// A Library is pure data with no state; text in, optional string out.
package patterns

import (
	"regexp"
	"strings"
)

// Library holds the compiled pattern lists for every field kind. It is
// constructed once and passed into the extractors; a Library is safe for
// concurrent use.
type Library struct {
	Date        []*regexp.Regexp
	Odometer    []*regexp.Regexp
	Invoice     []*regexp.Regexp
	TotalAmount []*regexp.Regexp
	Owner       []*regexp.Regexp

	// Honorific matches "Mr./Mrs./Ms./M/s Name" spans. It is deliberately
	// case-sensitive: the capitalization is the signal.
	Honorific *regexp.Regexp

	// DateWord detects a standalone "date" token for anchor detection.
	DateWord *regexp.Regexp

	// GarageKeywords flags lines likely naming a service center.
	GarageKeywords *regexp.Regexp

	// PartCurrency and PartNumber match "<description> <amount>" at line
	// end; PartNumber is the fallback for OCR that dropped the currency
	// glyph.
	PartCurrency *regexp.Regexp
	PartNumber   *regexp.Regexp
}

// DefaultLibrary returns the standard pattern set for vehicle-service
// documents (Indian-market invoice conventions, rupee currency glyph).
func DefaultLibrary() *Library {
	return &Library{
		// The year-first form must be tried before the day-first one: the
		// day-first pattern partially matches an ISO date ("2021/03/05"
		// as "21/03/05") and would shadow it.
		Date: compileAll(
			`(?i)(\d{4}[/-]\d{1,2}[/-]\d{1,2})`,
			`(?i)(\d{1,2}[/-]\d{1,2}[/-]\d{2,4})`,
			`(?i)((?:Jan|Feb|Mar|Apr|May|Jun|Jul|Aug|Sep|Sept|Oct|Nov|Dec)[a-z]*\.?\s*\d{1,2},?\s*\d{2,4})`,
		),
		Odometer: compileAll(
			`(?i)(?:odo|odometer|mileage|km reading|kms|kilometres|kilometers)[\s:]*([\d,]{3,})`,
			`(?i)([\d,]{4,7})\s*(?:km|kms|kilometres|kilometers|mi|miles)\b`,
		),
		Invoice: compileAll(
			`(?i)(?:invoice|inv|bill|receipt|tax invoice)[\s#:-]*([A-Za-z0-9/-]{3,})`,
		),
		TotalAmount: compileAll(
			`(?i)\btotal(?:\s+amount)?[:\s₹]*([\d,]+\.\d{2}|\d{1,3}(?:,\d{3})*)`,
			`(?i)\bgrand\s+total[:\s₹]*([\d,]+\.\d{2}|\d{1,3}(?:,\d{3})*)`,
			`(?i)\bnet\s+payable[:\s₹]*([\d,]+\.\d{2}|\d{1,3}(?:,\d{3})*)`,
			`(?i)\btotal[:\s₹]*([\d,]+)`,
		),
		Owner: compileAll(
			`(?i)\b(owner|registered owner|name of owner|sold to|transferred to|buyer)\b[:\s]*([A-Za-z ]{3,60})`,
			`(?i)\b(sold by|transfer from)\b[:\s]*([A-Za-z ]{3,60})`,
		),
		Honorific:      regexp.MustCompile(`\b(Mr|Mrs|Ms|M/s)\.?\s+([A-Z][a-z]+\s?[A-Z]?[a-z]*)`),
		DateWord:       regexp.MustCompile(`(?i)\bdate\b`),
		GarageKeywords: regexp.MustCompile(`(?i)(garage|workshop|dealer|showroom|service\s+cent(?:er|re)|authorized)`),
		PartCurrency:   regexp.MustCompile(`(.+?)\s+₹\s*([\d,]+(?:\.\d{1,2})?)$`),
		PartNumber:     regexp.MustCompile(`(.+?)\s+([\d,]+)$`),
	}
}

// FirstMatch tries patterns in listed priority order and returns the first
// matching pattern's first non-empty capture group, or the whole match if
// no group captured. The second return is false when nothing matched.
func FirstMatch(text string, pats []*regexp.Regexp) (string, bool) {
	for _, p := range pats {
		m := p.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		for _, g := range m[1:] {
			if g != "" {
				return strings.TrimSpace(g), true
			}
		}
		return strings.TrimSpace(m[0]), true
	}
	return "", false
}

func compileAll(exprs ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, 0, len(exprs))
	for _, expr := range exprs {
		out = append(out, regexp.MustCompile(expr))
	}
	return out
}
