package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/teacher-journal-api/internal/models"
)

func statusEvent(id string, s models.Status) models.RecordEvent {
	return models.RecordEvent{ID: id, Type: models.EventTypeStatus, Value: string(s)}
}

func noteEvent(id, text string) models.RecordEvent {
	return models.RecordEvent{ID: id, Type: models.EventTypeNote, Value: text}
}

func record(student string, date models.Date, events ...models.RecordEvent) models.DailyRecord {
	return models.DailyRecord{ID: student + string(date), StudentID: student, ClassID: "c1", Date: date, Events: events}
}

func TestScoreWeight(t *testing.T) {
	assert.Equal(t, 10, ScoreWeight(models.StatusPlus))
	assert.Equal(t, -5, ScoreWeight(models.StatusY))
	assert.Equal(t, -10, ScoreWeight(models.StatusMinus))
	assert.Zero(t, ScoreWeight(models.StatusD))
	assert.Zero(t, ScoreWeight(models.StatusG))
	assert.Zero(t, ScoreWeight("?"))
}

func TestSummarizeStudentCountsAndSeries(t *testing.T) {
	records := []models.DailyRecord{
		record("s1", "2024-03-01", statusEvent("e1", models.StatusPlus)),
		record("s1", "2024-03-02", statusEvent("e2", models.StatusPlus), noteEvent("n1", "helped a peer")),
		record("s1", "2024-03-04", statusEvent("e3", models.StatusMinus)),
		record("s1", "2024-03-05", statusEvent("e4", models.StatusY)),
		record("s2", "2024-03-01", statusEvent("e5", models.StatusMinus)),
		record("s1", "2024-02-28", statusEvent("e6", models.StatusPlus)),
		{StudentID: "s1", ClassID: "other", Date: "2024-03-03", Events: models.RecordEvents{statusEvent("e7", models.StatusPlus)}},
	}

	summary := SummarizeStudent("c1", "s1", records, "2024-03-01", "2024-03-05")

	assert.Equal(t, models.StatusCounts{"+": 2, "Y": 1, "-": 1, "D": 0, "G": 0}, summary.Counts)
	require.Len(t, summary.Series, 5)
	scores := make([]int, 0, 5)
	for _, p := range summary.Series {
		scores = append(scores, p.Score)
	}
	assert.Equal(t, []int{10, 20, 20, 10, 5}, scores)
	assert.Equal(t, models.Date("2024-03-03"), summary.Series[2].Date)
	assert.Zero(t, summary.Series[2].Delta)
	assert.Equal(t, 5, summary.Total)
	assert.Equal(t, []models.NoteEntry{{Date: "2024-03-02", Content: "helped a peer"}}, summary.Notes)
}

func TestSummarizeStudentSameDayMarksAllCount(t *testing.T) {
	records := []models.DailyRecord{
		record("s1", "2024-03-01", statusEvent("e1", models.StatusPlus), statusEvent("e2", models.StatusPlus), statusEvent("e3", models.StatusY)),
	}
	summary := SummarizeStudent("c1", "s1", records, "2024-03-01", "2024-03-01")
	require.Len(t, summary.Series, 1)
	assert.Equal(t, 15, summary.Series[0].Delta)
}

func TestSummarizeStudentIsDeterministic(t *testing.T) {
	records := []models.DailyRecord{
		record("s1", "2024-03-02", statusEvent("e1", models.StatusY), noteEvent("n2", "second")),
		record("s1", "2024-03-01", statusEvent("e2", models.StatusPlus), noteEvent("n1", "first")),
	}
	first := SummarizeStudent("c1", "s1", records, "2024-02-28", "2024-03-03")
	second := SummarizeStudent("c1", "s1", records, "2024-02-28", "2024-03-03")
	assert.Equal(t, first, second)
	assert.Equal(t, "first", first.Notes[0].Content)
}

func TestSummarizeStudentEmptyRange(t *testing.T) {
	summary := SummarizeStudent("c1", "s1", nil, "2024-03-02", "2024-03-01")
	assert.Empty(t, summary.Series)
	assert.Len(t, summary.Counts, 5)
}

func TestSummarizeClassTotalsAndOrdering(t *testing.T) {
	students := []models.Student{
		{ID: "s10", StudentNumber: "10", FirstName: "Zed"},
		{ID: "s2", StudentNumber: "2", FirstName: "Ada"},
		{ID: "s9", StudentNumber: "9", FirstName: "Idle"},
	}
	records := []models.DailyRecord{
		record("s2", "2024-03-01", statusEvent("e1", models.StatusPlus)),
		record("s2", "2024-03-02", statusEvent("e2", models.StatusPlus)),
		record("s2", "2024-03-03", statusEvent("e3", models.StatusMinus), noteEvent("n1", "talking")),
		record("s2", "2024-03-04", statusEvent("e4", models.StatusY)),
		record("s10", "2024-04-01", statusEvent("e5", models.StatusPlus)),
		record("ghost", "2024-03-01", statusEvent("e6", models.StatusPlus)),
	}

	summary := SummarizeClass("c1", students, records, "2024-03-01", "2024-03-31")
	require.Len(t, summary.Rows, 3)
	assert.Equal(t, "2", summary.Rows[0].Student.StudentNumber)
	assert.Equal(t, "9", summary.Rows[1].Student.StudentNumber)
	assert.Equal(t, "10", summary.Rows[2].Student.StudentNumber)

	assert.Equal(t, 5, summary.Rows[0].TotalScore)
	assert.Equal(t, models.StatusCounts{"+": 2, "Y": 1, "-": 1, "D": 0, "G": 0}, summary.Rows[0].Counts)
	assert.Equal(t, []models.NoteEntry{{Date: "2024-03-03", Content: "talking"}}, summary.Rows[0].Notes)

	assert.Zero(t, summary.Rows[1].TotalScore)
	assert.Equal(t, models.NewStatusCounts(), summary.Rows[1].Counts)
	assert.Zero(t, summary.Rows[2].TotalScore)

	assert.Equal(t, "10", students[0].StudentNumber)
}

func TestCompareStudentNumbers(t *testing.T) {
	assert.Equal(t, -1, CompareStudentNumbers("2", "10"))
	assert.Equal(t, 1, CompareStudentNumbers("10", "2"))
	assert.Equal(t, 0, CompareStudentNumbers("007", "7"))
	assert.Equal(t, -1, CompareStudentNumbers("5", "A1"))
	assert.Equal(t, -1, CompareStudentNumbers("A1", "A2"))
}
