package dto

import "github.com/noah-isme/teacher-journal-api/internal/models"

// ReminderRequest creates or updates a reminder. Time is optional HH:mm.
type ReminderRequest struct {
	Title   string  `json:"title" validate:"required,max=200"`
	DueDate string  `json:"dueDate" validate:"required,datetime=2006-01-02"`
	Time    *string `json:"time,omitempty" validate:"omitempty,datetime=15:04"`
}

// ReminderList is the classified reminder list with its badge.
type ReminderList struct {
	Reminders []models.ClassifiedReminder `json:"reminders"`
	Badge     models.ReminderBadge        `json:"badge"`
}
