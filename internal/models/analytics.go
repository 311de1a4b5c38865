package models

// StatusCounts always carries all five statuses.
type StatusCounts map[Status]int

// NewStatusCounts returns zeroed counts for every status.
func NewStatusCounts() StatusCounts {
	counts := make(StatusCounts, len(Statuses))
	for _, s := range Statuses {
		counts[s] = 0
	}
	return counts
}

// NoteEntry is a dated note extracted from daily records.
type NoteEntry struct {
	Date    Date   `json:"date"`
	Content string `json:"content"`
}

// ScorePoint is the running score at the end of a day.
type ScorePoint struct {
	Date  Date `json:"date"`
	Delta int  `json:"delta"`
	Score int  `json:"score"`
}

// StudentSummary aggregates one student's records over a date range.
type StudentSummary struct {
	StudentID string       `json:"student_id"`
	From      Date         `json:"from"`
	To        Date         `json:"to"`
	Counts    StatusCounts `json:"counts"`
	Notes     []NoteEntry  `json:"notes"`
	Series    []ScorePoint `json:"series"`
	Total     int          `json:"total_score"`
}

// ClassSummaryRow is one student's line in a class summary.
type ClassSummaryRow struct {
	Student    Student      `json:"student"`
	Counts     StatusCounts `json:"counts"`
	TotalScore int          `json:"total_score"`
	Notes      []NoteEntry  `json:"notes"`
}

// ClassSummary aggregates every student of a class over a date range.
type ClassSummary struct {
	ClassID string            `json:"class_id"`
	From    Date              `json:"from"`
	To      Date              `json:"to"`
	Rows    []ClassSummaryRow `json:"rows"`
}
