package model

// DocumentSummary is the complete result of processing one document.
// It is assembled once by the orchestrator and immutable afterwards.
type DocumentSummary struct {
	File                string         `json:"file"`
	ParsedEventsCount   int            `json:"parsed_events_count"`
	Events              []Event        `json:"events"`
	Owners              []string       `json:"owners"`
	UniqueOwnerCount    int            `json:"unique_owner_count"`
	MissingPeriods      GapReport      `json:"missing_periods"`
	OdometerIssues      OdometerReport `json:"odometer_issues"`
	UnauthorizedGarages []string       `json:"unauthorized_garages"`
	RawText             string         `json:"raw_text"` // bounded snippet
}

// GapReport lists service intervals that exceeded the allowed threshold.
type GapReport struct {
	Gaps []Gap `json:"gaps"`
}

// Gap is one flagged interval between two consecutive dated events.
type Gap struct {
	From      string `json:"from"` // YYYY-MM-DD
	To        string `json:"to"`
	MonthsGap int    `json:"months_gap"`
}

// OdometerReport captures rollback findings plus the cleaned reading
// sequence for audit.
type OdometerReport struct {
	Rollback  bool       `json:"rollback"`
	Decreases []Decrease `json:"decreases"`
	Readings  []int      `json:"odo_list"`
}

// Decrease records one reading that fell below its predecessor.
type Decrease struct {
	Index int `json:"index"`
	Prev  int `json:"prev"`
	Cur   int `json:"cur"`
}
