// Package store persists extracted service events. It is an append-only
// collaborator: the core never reads its own writes during a run, and
// concurrent documents each issue independent per-event inserts.
package store

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/Mugil-an/carcheckmate/internal/model"
)

// ServiceEvent is the persisted row for one extracted event. gorm.Model
// supplies the auto-increment id and server-side timestamps.
type ServiceEvent struct {
	gorm.Model
	SourceFile   string
	ServiceDate  string
	Odometer     *int // nil when the raw reading did not parse
	InvoiceNo    string
	TotalAmount  string
	Garage       string
	Parts        string // JSON-encoded list
	PartsAmounts string // JSON-encoded list, index-aligned with Parts
	RawBlockText string
}

// Store wraps the database handle.
type Store struct {
	db *gorm.DB
}

// Open connects to postgres with the given DSN and migrates the schema.
func Open(dsn string) (*Store, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	if err := db.AutoMigrate(&ServiceEvent{}); err != nil {
		return nil, fmt.Errorf("migrate schema: %w", err)
	}
	return &Store{db: db}, nil
}

// SaveEvents inserts one row per event, each in its own transaction.
func (s *Store) SaveEvents(sourceFile string, events []model.Event) error {
	for _, ev := range events {
		row, err := RowFromEvent(sourceFile, ev)
		if err != nil {
			return err
		}
		if err := s.db.Create(&row).Error; err != nil {
			return fmt.Errorf("insert event for %s: %w", sourceFile, err)
		}
	}
	return nil
}

// ListEvents returns every persisted event, oldest first.
func (s *Store) ListEvents() ([]ServiceEvent, error) {
	var rows []ServiceEvent
	if err := s.db.Order("id").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	return rows, nil
}

var nonDigits = regexp.MustCompile(`\D`)

// RowFromEvent converts an extracted event to its persisted form. The raw
// odometer string is digit-stripped and integer-parsed; an unparseable
// reading stores NULL rather than failing the insert.
func RowFromEvent(sourceFile string, ev model.Event) (ServiceEvent, error) {
	row := ServiceEvent{
		SourceFile:   sourceFile,
		ServiceDate:  ev.ServiceDate,
		InvoiceNo:    ev.InvoiceNo,
		TotalAmount:  ev.TotalAmount,
		Garage:       ev.Garage,
		RawBlockText: ev.RawBlockText,
	}

	if cleaned := nonDigits.ReplaceAllString(ev.Odometer, ""); cleaned != "" {
		if n, err := strconv.Atoi(cleaned); err == nil {
			row.Odometer = &n
		}
	}

	parts, err := json.Marshal(ev.Parts)
	if err != nil {
		return ServiceEvent{}, fmt.Errorf("encode parts: %w", err)
	}
	amounts, err := json.Marshal(ev.PartsAmounts)
	if err != nil {
		return ServiceEvent{}, fmt.Errorf("encode parts amounts: %w", err)
	}
	row.Parts = string(parts)
	row.PartsAmounts = string(amounts)
	return row, nil
}
