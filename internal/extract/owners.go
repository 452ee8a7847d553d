package extract

import (
	"strings"

	"github.com/Mugil-an/carcheckmate/internal/patterns"
)

// OwnerExtractor finds ownership and transfer mentions. Unlike event
// fields it runs over the full cross-page text, since transfer notes are
// not tied to any one service block.
type OwnerExtractor struct {
	lib *patterns.Library
}

// NewOwnerExtractor creates an owner extractor backed by the library's
// owner pattern list.
func NewOwnerExtractor(lib *patterns.Library) *OwnerExtractor {
	return &OwnerExtractor{lib: lib}
}

// Extract collects every owner-pattern match in the text. Each match
// contributes its last captured group, trimmed, when its length is in
// [3, 60). Honorific-prefixed name spans ("Mr. Ramesh Kumar") are appended
// whole. The result is deduplicated preserving first occurrence.
func (o *OwnerExtractor) Extract(fullText string) []string {
	var names []string

	for _, p := range o.lib.Owner {
		for _, m := range p.FindAllStringSubmatch(fullText, -1) {
			candidate := strings.TrimSpace(m[len(m)-1])
			if len(candidate) > 2 && len(candidate) < 60 {
				names = append(names, candidate)
			}
		}
	}

	names = append(names, o.lib.Honorific.FindAllString(fullText, -1)...)

	return dedupeStrings(names)
}

// dedupeStrings removes duplicates while preserving first-occurrence
// order.
func dedupeStrings(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}
