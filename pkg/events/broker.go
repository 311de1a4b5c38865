package events

import (
	"context"
	"encoding/json"
	"time"
)

// Event kinds published on teacher topics.
const (
	KindRecordsCommitted = "records.committed"
	KindRemindersChanged = "reminders.changed"
	KindRemindersBadge   = "reminders.badge"
	KindNotesChanged     = "notes.changed"
	KindClassesChanged   = "classes.changed"
)

// Event is the envelope delivered to subscribers.
type Event struct {
	Kind       string          `json:"kind"`
	Payload    json.RawMessage `json:"payload,omitempty"`
	OccurredAt time.Time       `json:"occurred_at"`
}

// Handler receives events for a subscription.
type Handler func(Event)

// Broker fans out events to topic subscribers.
type Broker interface {
	Publish(ctx context.Context, topic string, evt Event) error
	Subscribe(ctx context.Context, topic string, handler Handler) (func(), error)
}

// TeacherTopic returns the topic carrying one teacher's events.
func TeacherTopic(teacherID string) string {
	return "teacher:" + teacherID
}

// NewEvent marshals payload into an event of the given kind.
func NewEvent(kind string, payload interface{}) (Event, error) {
	evt := Event{Kind: kind, OccurredAt: time.Now().UTC()}
	if payload == nil {
		return evt, nil
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return Event{}, err
	}
	evt.Payload = raw
	return evt, nil
}
