package dto

import "github.com/noah-isme/teacher-journal-api/internal/models"

// SelectDayRequest selects the class and day a teacher is editing.
type SelectDayRequest struct {
	ClassID string `json:"classId" validate:"required"`
	Date    string `json:"date" validate:"required,datetime=2006-01-02"`
}

// ApplyStatusRequest appends a status mark for one student.
type ApplyStatusRequest struct {
	StudentID string        `json:"studentId" validate:"required"`
	Status    models.Status `json:"status" validate:"required,oneof=+ Y - D G"`
}

// ApplyStatusAllRequest replaces every student's marks with one status.
type ApplyStatusAllRequest struct {
	Status models.Status `json:"status" validate:"required,oneof=+ Y - D G"`
}

// SetNoteRequest sets or clears one student's note. An empty text clears it.
type SetNoteRequest struct {
	StudentID string `json:"studentId" validate:"required"`
	Text      string `json:"text" validate:"max=2000"`
}

// SetNoteAllRequest sets or clears the note of every student.
type SetNoteAllRequest struct {
	Text string `json:"text" validate:"max=2000"`
}

// RemoveEventRequest identifies the student whose event is removed.
type RemoveEventRequest struct {
	StudentID string `form:"studentId" json:"studentId" validate:"required"`
}

// DayEntry pairs a student with the day's record.
type DayEntry struct {
	Student models.Student     `json:"student"`
	Record  models.DailyRecord `json:"record"`
}

// DayView is the staged state of the selected class and day.
type DayView struct {
	ClassID          string      `json:"classId"`
	Date             models.Date `json:"date"`
	Dirty            bool        `json:"dirty"`
	DiscardedChanges bool        `json:"discardedChanges,omitempty"`
	Committed        bool        `json:"committed,omitempty"`
	Entries          []DayEntry  `json:"entries"`
}
