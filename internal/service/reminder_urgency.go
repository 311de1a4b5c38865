package service

import (
	"time"

	"github.com/noah-isme/teacher-journal-api/internal/models"
)

const (
	veryUrgentWithin = 24 * time.Hour
	urgentWithin     = 48 * time.Hour
	infoWithin       = 72 * time.Hour
)

// ReminderDueAt resolves the moment a reminder falls due in loc. Without a time the reminder
// is due at the last second of its day.
func ReminderDueAt(r models.Reminder, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	day := r.DueDate.Time(loc)
	if r.Time != nil && *r.Time != "" {
		if clock, err := time.Parse("15:04", *r.Time); err == nil {
			return time.Date(day.Year(), day.Month(), day.Day(), clock.Hour(), clock.Minute(), 0, 0, loc)
		}
	}
	return time.Date(day.Year(), day.Month(), day.Day(), 23, 59, 59, 0, loc)
}

// ClassifyUrgency places a reminder into its tier relative to now. Completed reminders are always none.
func ClassifyUrgency(r models.Reminder, now time.Time, loc *time.Location) models.Urgency {
	if r.IsCompleted {
		return models.UrgencyNone
	}
	left := ReminderDueAt(r, loc).Sub(now)
	switch {
	case left < 0:
		return models.UrgencyPastDue
	case left < veryUrgentWithin:
		return models.UrgencyVeryUrgent
	case left < urgentWithin:
		return models.UrgencyUrgent
	case left < infoWithin:
		return models.UrgencyInfo
	default:
		return models.UrgencyNone
	}
}

// ClassifyReminders tiers every reminder, keeping input order.
func ClassifyReminders(reminders []models.Reminder, now time.Time, loc *time.Location) []models.ClassifiedReminder {
	out := make([]models.ClassifiedReminder, 0, len(reminders))
	for _, r := range reminders {
		out = append(out, models.ClassifiedReminder{
			Reminder: r,
			Urgency:  ClassifyUrgency(r, now, loc),
			DueAt:    ReminderDueAt(r, loc),
		})
	}
	return out
}

// ReminderBadgeFor counts active reminders with a tier other than none and reports the most severe tier.
func ReminderBadgeFor(reminders []models.Reminder, now time.Time, loc *time.Location) models.ReminderBadge {
	badge := models.ReminderBadge{Tier: models.UrgencyNone}
	for _, r := range reminders {
		tier := ClassifyUrgency(r, now, loc)
		if tier == models.UrgencyNone {
			continue
		}
		badge.Count++
		if tier.Severity() > badge.Tier.Severity() {
			badge.Tier = tier
		}
	}
	return badge
}
