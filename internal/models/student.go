package models

import "time"

// Student belongs to exactly one class; student numbers are unique per class.
type Student struct {
	ID            string    `db:"id" json:"id"`
	ClassID       string    `db:"class_id" json:"class_id"`
	StudentNumber string    `db:"student_number" json:"student_number"`
	FirstName     string    `db:"first_name" json:"first_name"`
	LastName      string    `db:"last_name" json:"last_name"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time `db:"updated_at" json:"updated_at"`
}

// FullName joins first and last name.
func (s Student) FullName() string {
	if s.LastName == "" {
		return s.FirstName
	}
	return s.FirstName + " " + s.LastName
}

// SkippedRow explains why an imported roster row was not inserted.
type SkippedRow struct {
	Row           int    `json:"row"`
	StudentNumber string `json:"student_number,omitempty"`
	Reason        string `json:"reason"`
}

// Skip reasons reported by roster imports.
const (
	SkipReasonMissingFields   = "missing_fields"
	SkipReasonDuplicateInFile = "duplicate_in_file"
	SkipReasonAlreadyInClass  = "already_in_class"
)

// ImportResult summarises a best-effort roster import.
type ImportResult struct {
	Imported    int          `json:"imported"`
	Skipped     int          `json:"skipped"`
	SkippedRows []SkippedRow `json:"skipped_rows"`
	Students    []Student    `json:"students"`
}
