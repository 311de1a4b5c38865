package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/teacher-journal-api/internal/models"
)

var reportJobCols = []string{"id", "teacher_id", "type", "params", "status", "progress", "result_url", "created_at", "finished_at", "error_message"}

func TestReportRepositoryCreateAndGet(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewReportRepository(db)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO report_jobs")).
		WithArgs(sqlmock.AnyArg(), "t1", "class", sqlmock.AnyArg(), "QUEUED", 0, nil, sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	job := &models.ReportJob{
		TeacherID: "t1",
		Type:      models.ReportTypeClass,
		Params:    models.ReportJobParams{ClassID: "c1", From: "2024-03-01", To: "2024-03-31", Format: models.ReportFormatPDF},
	}
	require.NoError(t, repo.Create(context.Background(), job))

	rows := sqlmock.NewRows(reportJobCols).
		AddRow(job.ID, "t1", "class", `{"classId":"c1","from":"2024-03-01","to":"2024-03-31","format":"pdf"}`, "QUEUED", 0, nil, time.Now(), nil, nil)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, teacher_id, type, params, status, progress, result_url, created_at, finished_at, error_message FROM report_jobs WHERE id = $1")).
		WithArgs(job.ID).
		WillReturnRows(rows)

	fetched, err := repo.GetByID(context.Background(), job.ID)
	require.NoError(t, err)
	require.Equal(t, job.ID, fetched.ID)
	require.Equal(t, models.Date("2024-03-31"), fetched.Params.To)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestReportRepositoryGetMissing(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewReportRepository(db)

	mock.ExpectQuery("FROM report_jobs WHERE id").WithArgs("nope").WillReturnError(sql.ErrNoRows)
	_, err := repo.GetByID(context.Background(), "nope")
	require.ErrorIs(t, err, sql.ErrNoRows)
}

func TestReportRepositoryUpdate(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewReportRepository(db)

	now := time.Now()
	status := models.ReportStatusFinished
	progress := 100
	result := "/api/v1/export/token"
	mock.ExpectExec(regexp.QuoteMeta("UPDATE report_jobs SET status = $1, progress = $2, result_url = $3, finished_at = $4 WHERE id = $5")).
		WithArgs(status, progress, result, now, "job-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Update(context.Background(), "job-1", UpdateReportJobParams{
		Status:     &status,
		Progress:   &progress,
		ResultURL:  &result,
		FinishedAt: &now,
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestReportRepositoryListPending(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewReportRepository(db)

	rows := sqlmock.NewRows(reportJobCols).
		AddRow("job-1", "t1", "student", `{"classId":"c1","studentId":"s1","from":"2024-03-01","to":"2024-03-31","format":"csv"}`, "QUEUED", 0, nil, time.Now(), nil, nil)
	mock.ExpectQuery(regexp.QuoteMeta("FROM report_jobs WHERE status IN ('QUEUED', 'PROCESSING') ORDER BY created_at ASC LIMIT $1")).
		WithArgs(20).
		WillReturnRows(rows)

	jobs, err := repo.ListPending(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	require.NotNil(t, jobs[0].Params.StudentID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestReportRepositoryListFinishedBefore(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewReportRepository(db)

	rows := sqlmock.NewRows(reportJobCols).
		AddRow("job-1", "t1", "class", `{"classId":"c1","format":"csv"}`, "FINISHED", 100, "/api/v1/export/token", time.Now().Add(-48*time.Hour), time.Now().Add(-25*time.Hour), nil)
	mock.ExpectQuery(regexp.QuoteMeta("FROM report_jobs WHERE status = 'FINISHED' AND finished_at IS NOT NULL AND finished_at < $1 ORDER BY finished_at ASC LIMIT $2")).
		WithArgs(sqlmock.AnyArg(), 50).
		WillReturnRows(rows)

	jobs, err := repo.ListFinishedBefore(context.Background(), time.Now(), 0)
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestReportRepositoryMarkExpired(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewReportRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE report_jobs SET status = $1, result_url = NULL WHERE id IN ($2, $3)")).
		WithArgs("EXPIRED", "job-1", "job-2").
		WillReturnResult(sqlmock.NewResult(0, 2))

	require.NoError(t, repo.MarkExpired(context.Background(), []string{"job-1", "job-2"}))
	require.NoError(t, repo.MarkExpired(context.Background(), nil))
	require.NoError(t, mock.ExpectationsWereMet())
}
