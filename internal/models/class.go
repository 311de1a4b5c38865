package models

import "time"

// Class is a teacher-owned group of students.
type Class struct {
	ID           string    `db:"id" json:"id"`
	TeacherID    string    `db:"teacher_id" json:"teacher_id"`
	Name         string    `db:"name" json:"name"`
	StudentCount int       `db:"student_count" json:"student_count"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// ClassDetail is a class together with its roster.
type ClassDetail struct {
	Class
	Students []Student `json:"students"`
}

// ClassFilter defines filter criteria for listing classes.
type ClassFilter struct {
	TeacherID string
	Search    string
	Page      int
	PageSize  int
}
