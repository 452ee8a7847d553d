// Package anomaly holds the trust and consistency detectors that run over
// the deduplicated event list. Every detector is a pure function; a
// malformed date or odometer string is skipped for that computation and
// never fails the run.
package anomaly

import (
	"sort"
	"time"

	"github.com/Mugil-an/carcheckmate/internal/model"
)

// dateLayouts are the candidate service-date formats, tried in order.
// The numeric fields are unpadded so that each layout accepts both
// "05/03/2021" and "5/3/2021".
var dateLayouts = []string{
	"2/1/2006",
	"2-1-2006",
	"2006-1-2",
	"2/1/06",
	"2-Jan-2006",
}

// ParseServiceDate parses a raw service-date string against the candidate
// layouts; the first that parses wins. The second return is false when the
// string is empty or matches no layout.
func ParseServiceDate(raw string) (time.Time, bool) {
	if raw == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// DetectMissingPeriods sorts events by resolved service date and flags
// every consecutive pair of parseable dates more than maxMonths whole
// months apart. Events with unparseable or absent dates sort to the
// earliest position (zero-time sentinel) so they never break the ordering,
// but they take part in no gap computation.
func DetectMissingPeriods(events []model.Event, maxMonths int) model.GapReport {
	type dated struct {
		t  time.Time
		ok bool
	}

	parsed := make([]dated, 0, len(events))
	for _, ev := range events {
		t, ok := ParseServiceDate(ev.ServiceDate)
		parsed = append(parsed, dated{t: t, ok: ok})
	}

	sort.SliceStable(parsed, func(a, b int) bool {
		return parsed[a].t.Before(parsed[b].t)
	})

	gaps := []model.Gap{}
	for i := 1; i < len(parsed); i++ {
		prev, cur := parsed[i-1], parsed[i]
		if !prev.ok || !cur.ok {
			continue
		}
		months := (cur.t.Year()-prev.t.Year())*12 + int(cur.t.Month()) - int(prev.t.Month())
		if months > maxMonths {
			gaps = append(gaps, model.Gap{
				From:      prev.t.Format("2006-01-02"),
				To:        cur.t.Format("2006-01-02"),
				MonthsGap: months,
			})
		}
	}

	return model.GapReport{Gaps: gaps}
}
