package models

import "time"

// Reminder is a dated to-do owned by a teacher. Time is optional HH:mm.
type Reminder struct {
	ID          string    `db:"id" json:"id"`
	TeacherID   string    `db:"teacher_id" json:"teacher_id"`
	Title       string    `db:"title" json:"title"`
	DueDate     Date      `db:"due_date" json:"due_date"`
	Time        *string   `db:"due_time" json:"time,omitempty"`
	IsCompleted bool      `db:"is_completed" json:"is_completed"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// Urgency tiers ordered by severity.
type Urgency string

const (
	UrgencyNone       Urgency = "none"
	UrgencyInfo       Urgency = "info"
	UrgencyUrgent     Urgency = "urgent"
	UrgencyVeryUrgent Urgency = "veryUrgent"
	UrgencyPastDue    Urgency = "pastDue"
)

// Severity ranks tiers so the most urgent one wins.
func (u Urgency) Severity() int {
	switch u {
	case UrgencyInfo:
		return 1
	case UrgencyUrgent:
		return 2
	case UrgencyVeryUrgent:
		return 3
	case UrgencyPastDue:
		return 4
	default:
		return 0
	}
}

// ClassifiedReminder pairs a reminder with its current tier.
type ClassifiedReminder struct {
	Reminder
	Urgency Urgency   `json:"urgency"`
	DueAt   time.Time `json:"due_at"`
}

// ReminderBadge is the notification summary across active reminders.
type ReminderBadge struct {
	Count int     `json:"count"`
	Tier  Urgency `json:"tier"`
}
