package anomaly

import (
	"strings"

	"github.com/Mugil-an/carcheckmate/internal/model"
)

// ClassifyGarages returns the garage strings of events whose garage text
// contains none of the trusted substrings (case-insensitive containment).
// The result is deduplicated preserving first occurrence; events without
// a garage are ignored.
func ClassifyGarages(events []model.Event, trusted map[string]bool) []string {
	flagged := []string{}
	seen := make(map[string]bool)

	for _, ev := range events {
		if ev.Garage == "" {
			continue
		}
		if isTrusted(ev.Garage, trusted) {
			continue
		}
		if seen[ev.Garage] {
			continue
		}
		seen[ev.Garage] = true
		flagged = append(flagged, ev.Garage)
	}
	return flagged
}

func isTrusted(garage string, trusted map[string]bool) bool {
	lower := strings.ToLower(garage)
	for key := range trusted {
		if strings.Contains(lower, strings.ToLower(key)) {
			return true
		}
	}
	return false
}
