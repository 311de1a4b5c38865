package service

import (
	"sort"
	"strconv"
	"strings"

	"github.com/noah-isme/teacher-journal-api/internal/models"
)

// ScoreWeight returns the score contribution of one status mark. Unknown codes weigh nothing.
func ScoreWeight(status models.Status) int {
	switch status {
	case models.StatusPlus:
		return 10
	case models.StatusY:
		return -5
	case models.StatusMinus:
		return -10
	default:
		return 0
	}
}

func inRange(d, from, to models.Date) bool {
	return d >= from && d <= to
}

// SummarizeStudent aggregates one student's records of a class over [from, to].
// The series has one point per calendar day; days without marks repeat the running score.
func SummarizeStudent(classID, studentID string, records []models.DailyRecord, from, to models.Date) models.StudentSummary {
	summary := models.StudentSummary{
		StudentID: studentID,
		From:      from,
		To:        to,
		Counts:    models.NewStatusCounts(),
		Notes:     []models.NoteEntry{},
		Series:    []models.ScorePoint{},
	}

	deltas := make(map[models.Date]int)
	for _, rec := range records {
		if rec.StudentID != studentID || (classID != "" && rec.ClassID != classID) || !inRange(rec.Date, from, to) {
			continue
		}
		for _, evt := range rec.Events {
			switch evt.Type {
			case models.EventTypeStatus:
				status := models.Status(evt.Value)
				if !status.Valid() {
					continue
				}
				summary.Counts[status]++
				deltas[rec.Date] += ScoreWeight(status)
			case models.EventTypeNote:
				summary.Notes = append(summary.Notes, models.NoteEntry{Date: rec.Date, Content: evt.Value})
			}
		}
	}
	sort.SliceStable(summary.Notes, func(i, j int) bool { return summary.Notes[i].Date < summary.Notes[j].Date })

	if from > to {
		return summary
	}
	running := 0
	for day := from; day <= to; day = day.AddDays(1) {
		delta := deltas[day]
		running += delta
		summary.Series = append(summary.Series, models.ScorePoint{Date: day, Delta: delta, Score: running})
	}
	summary.Total = running
	return summary
}

// SummarizeClass produces one row per student, sorted by student number, including students
// with no activity in range.
func SummarizeClass(classID string, students []models.Student, records []models.DailyRecord, from, to models.Date) models.ClassSummary {
	byStudent := make(map[string][]models.DailyRecord, len(students))
	for _, rec := range records {
		if classID != "" && rec.ClassID != classID {
			continue
		}
		if !inRange(rec.Date, from, to) {
			continue
		}
		byStudent[rec.StudentID] = append(byStudent[rec.StudentID], rec)
	}

	ordered := make([]models.Student, len(students))
	copy(ordered, students)
	SortStudents(ordered)

	rows := make([]models.ClassSummaryRow, 0, len(ordered))
	for _, student := range ordered {
		row := models.ClassSummaryRow{
			Student: student,
			Counts:  models.NewStatusCounts(),
			Notes:   []models.NoteEntry{},
		}
		for _, rec := range byStudent[student.ID] {
			for _, evt := range rec.Events {
				switch evt.Type {
				case models.EventTypeStatus:
					status := models.Status(evt.Value)
					if !status.Valid() {
						continue
					}
					row.Counts[status]++
					row.TotalScore += ScoreWeight(status)
				case models.EventTypeNote:
					row.Notes = append(row.Notes, models.NoteEntry{Date: rec.Date, Content: evt.Value})
				}
			}
		}
		sort.SliceStable(row.Notes, func(i, j int) bool { return row.Notes[i].Date < row.Notes[j].Date })
		rows = append(rows, row)
	}
	return models.ClassSummary{ClassID: classID, From: from, To: to, Rows: rows}
}

// SortStudents orders students by student number, numerically when both numbers are integers.
func SortStudents(students []models.Student) {
	sort.SliceStable(students, func(i, j int) bool {
		if c := CompareStudentNumbers(students[i].StudentNumber, students[j].StudentNumber); c != 0 {
			return c < 0
		}
		if students[i].LastName != students[j].LastName {
			return students[i].LastName < students[j].LastName
		}
		return students[i].FirstName < students[j].FirstName
	})
}

// CompareStudentNumbers returns -1, 0 or 1. Integer numbers compare by value, anything else lexically.
func CompareStudentNumbers(a, b string) int {
	a, b = strings.TrimSpace(a), strings.TrimSpace(b)
	ai, aErr := strconv.ParseInt(a, 10, 64)
	bi, bErr := strconv.ParseInt(b, 10, 64)
	switch {
	case aErr == nil && bErr == nil:
		switch {
		case ai < bi:
			return -1
		case ai > bi:
			return 1
		}
		return 0
	case aErr == nil:
		return -1
	case bErr == nil:
		return 1
	}
	return strings.Compare(a, b)
}

// NormalizeStudentNumber gives numeric student numbers one spelling ("07" and "7" are the
// same student number). Other numbers are only trimmed.
func NormalizeStudentNumber(number string) string {
	number = strings.TrimSpace(number)
	if n, err := strconv.ParseInt(number, 10, 64); err == nil {
		return strconv.FormatInt(n, 10)
	}
	return number
}
