package anomaly

import (
	"regexp"
	"strconv"

	"github.com/Mugil-an/carcheckmate/internal/model"
)

var nonDigits = regexp.MustCompile(`\D`)

// DetectOdometerRollback extracts every parseable integer odometer reading
// in event-list order (not date order: a reading recorded later but lower
// is exactly the rollback signal) and flags any strict decrease against
// the immediate predecessor. The cleaned reading sequence is returned for
// audit.
func DetectOdometerRollback(events []model.Event) model.OdometerReport {
	readings := []int{}
	for _, ev := range events {
		if ev.Odometer == "" {
			continue
		}
		cleaned := nonDigits.ReplaceAllString(ev.Odometer, "")
		if cleaned == "" {
			continue
		}
		n, err := strconv.Atoi(cleaned)
		if err != nil {
			continue
		}
		readings = append(readings, n)
	}

	report := model.OdometerReport{
		Decreases: []model.Decrease{},
		Readings:  readings,
	}
	for i := 1; i < len(readings); i++ {
		if readings[i] < readings[i-1] {
			report.Rollback = true
			report.Decreases = append(report.Decreases, model.Decrease{
				Index: i,
				Prev:  readings[i-1],
				Cur:   readings[i],
			})
		}
	}
	return report
}
