package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/noah-isme/teacher-journal-api/internal/models"
)

func clock(v string) *string { return &v }

func TestClassifyUrgencyExamples(t *testing.T) {
	now := time.Date(2024, 1, 10, 10, 0, 0, 0, time.UTC)

	tonight := models.Reminder{DueDate: "2024-01-10", Time: clock("20:00")}
	assert.Equal(t, models.UrgencyVeryUrgent, ClassifyUrgency(tonight, now, time.UTC))

	overdue := models.Reminder{DueDate: "2024-01-08"}
	assert.Equal(t, models.UrgencyPastDue, ClassifyUrgency(overdue, now, time.UTC))
}

func TestClassifyUrgencyThresholds(t *testing.T) {
	now := time.Date(2024, 1, 10, 10, 0, 0, 0, time.UTC)
	cases := []struct {
		name string
		r    models.Reminder
		want models.Urgency
	}{
		{"end of today", models.Reminder{DueDate: "2024-01-10"}, models.UrgencyVeryUrgent},
		{"exactly 24h", models.Reminder{DueDate: "2024-01-11", Time: clock("10:00")}, models.UrgencyUrgent},
		{"tomorrow end of day", models.Reminder{DueDate: "2024-01-11"}, models.UrgencyUrgent},
		{"in 60h", models.Reminder{DueDate: "2024-01-12", Time: clock("22:00")}, models.UrgencyInfo},
		{"exactly 72h", models.Reminder{DueDate: "2024-01-13", Time: clock("10:00")}, models.UrgencyNone},
		{"a minute ago", models.Reminder{DueDate: "2024-01-10", Time: clock("09:59")}, models.UrgencyPastDue},
		{"completed overdue", models.Reminder{DueDate: "2024-01-01", IsCompleted: true}, models.UrgencyNone},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ClassifyUrgency(tc.r, now, time.UTC))
		})
	}
}

func TestClassifyUrgencyUsesLocation(t *testing.T) {
	loc := time.FixedZone("UTC+3", 3*60*60)
	now := time.Date(2024, 1, 10, 19, 30, 0, 0, time.UTC)
	r := models.Reminder{DueDate: "2024-01-10", Time: clock("22:00")}

	assert.Equal(t, models.UrgencyPastDue, ClassifyUrgency(r, now, loc))
	assert.Equal(t, models.UrgencyVeryUrgent, ClassifyUrgency(r, now, time.UTC))
}

func TestReminderBadgeFor(t *testing.T) {
	now := time.Date(2024, 1, 10, 10, 0, 0, 0, time.UTC)
	reminders := []models.Reminder{
		{DueDate: "2024-01-12"},
		{DueDate: "2024-01-11"},
		{DueDate: "2024-02-01"},
		{DueDate: "2024-01-01", IsCompleted: true},
	}

	badge := ReminderBadgeFor(reminders, now, time.UTC)
	assert.Equal(t, models.ReminderBadge{Count: 2, Tier: models.UrgencyUrgent}, badge)

	reminders = append(reminders, models.Reminder{DueDate: "2024-01-09"})
	badge = ReminderBadgeFor(reminders, now, time.UTC)
	assert.Equal(t, models.ReminderBadge{Count: 3, Tier: models.UrgencyPastDue}, badge)

	assert.Equal(t, models.ReminderBadge{Tier: models.UrgencyNone}, ReminderBadgeFor(nil, now, time.UTC))
}
