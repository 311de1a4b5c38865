package models

import "time"

// LessonPlan describes a planned lesson, optionally tied to a class.
type LessonPlan struct {
	ID          string    `db:"id" json:"id"`
	TeacherID   string    `db:"teacher_id" json:"teacher_id"`
	ClassID     *string   `db:"class_id" json:"class_id,omitempty"`
	Title       string    `db:"title" json:"title"`
	Subject     string    `db:"subject" json:"subject"`
	Date        Date      `db:"date" json:"date"`
	Description string    `db:"description" json:"description"`
	Objectives  string    `db:"objectives" json:"objectives"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// LessonPlanFilter narrows lesson plan listings.
type LessonPlanFilter struct {
	TeacherID string
	ClassID   string
	From      Date
	To        Date
}
