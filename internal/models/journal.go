package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Status is one of the five daily marks a teacher can give.
type Status string

// Score weights live in the aggregation engine; see service.ScoreWeight.
const (
	// StatusPlus is a positive mark.
	StatusPlus Status = "+"
	// StatusY is a minor negative mark.
	StatusY Status = "Y"
	// StatusMinus is a negative mark.
	StatusMinus Status = "-"
	// StatusD is a neutral mark.
	StatusD Status = "D"
	// StatusG is a neutral mark.
	StatusG Status = "G"
)

// Statuses lists every status in display order.
var Statuses = []Status{StatusPlus, StatusY, StatusMinus, StatusD, StatusG}

// Valid reports whether s belongs to the closed status set.
func (s Status) Valid() bool {
	switch s {
	case StatusPlus, StatusY, StatusMinus, StatusD, StatusG:
		return true
	}
	return false
}

// EventType distinguishes status marks from notes.
type EventType string

const (
	EventTypeStatus EventType = "status"
	EventTypeNote   EventType = "note"
)

// RecordEvent is one entry in a daily record. Events are never edited in place.
type RecordEvent struct {
	ID    string    `json:"id"`
	Type  EventType `json:"type"`
	Value string    `json:"value"`
}

// Validate checks the event against the closed type and status sets.
func (e RecordEvent) Validate() error {
	if e.ID == "" {
		return fmt.Errorf("event id required")
	}
	switch e.Type {
	case EventTypeStatus:
		if !Status(e.Value).Valid() {
			return fmt.Errorf("event %s: unknown status %q", e.ID, e.Value)
		}
	case EventTypeNote:
		if strings.TrimSpace(e.Value) == "" {
			return fmt.Errorf("event %s: empty note", e.ID)
		}
	default:
		return fmt.Errorf("event %s: unknown type %q", e.ID, e.Type)
	}
	return nil
}

// RecordEvents is the ordered event list persisted as JSONB.
type RecordEvents []RecordEvent

// Value marshals events to JSON for persistence.
func (e RecordEvents) Value() (driver.Value, error) {
	if e == nil {
		e = RecordEvents{}
	}
	data, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("marshal record events: %w", err)
	}
	return data, nil
}

// Scan decodes and validates a JSONB payload.
func (e *RecordEvents) Scan(value interface{}) error {
	if value == nil {
		*e = RecordEvents{}
		return nil
	}
	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("unsupported type %T for RecordEvents", value)
	}
	if len(data) == 0 {
		*e = RecordEvents{}
		return nil
	}
	var decoded RecordEvents
	if err := json.Unmarshal(data, &decoded); err != nil {
		return fmt.Errorf("unmarshal record events: %w", err)
	}
	for _, evt := range decoded {
		if err := evt.Validate(); err != nil {
			return fmt.Errorf("invalid record event: %w", err)
		}
	}
	*e = decoded
	return nil
}

// Note returns the note event, if any.
func (e RecordEvents) Note() (RecordEvent, bool) {
	for _, evt := range e {
		if evt.Type == EventTypeNote {
			return evt, true
		}
	}
	return RecordEvent{}, false
}

// DailyRecord holds the events of one student in one class on one day.
type DailyRecord struct {
	ID        string       `db:"id" json:"id"`
	TeacherID string       `db:"teacher_id" json:"teacher_id"`
	StudentID string       `db:"student_id" json:"student_id"`
	ClassID   string       `db:"class_id" json:"class_id"`
	Date      Date         `db:"date" json:"date"`
	Events    RecordEvents `db:"events" json:"events"`
	CreatedAt time.Time    `db:"created_at" json:"created_at"`
	UpdatedAt time.Time    `db:"updated_at" json:"updated_at"`
}

// Persisted reports whether the record has been written at least once.
func (r DailyRecord) Persisted() bool {
	return r.ID != ""
}

// RecordFilter narrows record range queries.
type RecordFilter struct {
	TeacherID string
	ClassID   string
	StudentID string
	From      Date
	To        Date
}
