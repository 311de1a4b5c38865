package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/teacher-journal-api/internal/models"
)

var recordCols = []string{"id", "teacher_id", "student_id", "class_id", "date", "events", "created_at", "updated_at"}

func TestDailyRecordRepositoryListRange(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewDailyRecordRepository(db)

	day := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows(recordCols).
		AddRow("r1", "t1", "s1", "c1", day, `[{"id":"e1","type":"status","value":"+"}]`, time.Now(), time.Now())
	mock.ExpectQuery(`FROM daily_records WHERE teacher_id = \$1 AND class_id = \$2 AND date BETWEEN \$3 AND \$4 AND student_id = \$5 ORDER BY date ASC`).
		WithArgs("t1", "c1", "2024-03-01", "2024-03-31", "s1").
		WillReturnRows(rows)

	records, err := repo.ListRange(context.Background(), models.RecordFilter{TeacherID: "t1", ClassID: "c1", StudentID: "s1", From: "2024-03-01", To: "2024-03-31"})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, models.Date("2024-03-01"), records[0].Date)
	require.Len(t, records[0].Events, 1)
	assert.Equal(t, models.EventTypeStatus, records[0].Events[0].Type)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDailyRecordRepositoryRejectsCorruptEvents(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewDailyRecordRepository(db)

	rows := sqlmock.NewRows(recordCols).
		AddRow("r1", "t1", "s1", "c1", "2024-03-01", `[{"id":"e1","type":"status","value":"?"}]`, time.Now(), time.Now())
	mock.ExpectQuery("FROM daily_records").WillReturnRows(rows)

	_, err := repo.ListDay(context.Background(), "t1", "c1", "2024-03-01")
	assert.Error(t, err)
}

func TestDailyRecordRepositoryUpsertManyUsesOneTransaction(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewDailyRecordRepository(db)

	created := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO daily_records .* ON CONFLICT \(student_id, class_id, date\) DO UPDATE SET events = EXCLUDED.events`).
		WithArgs("r1", "t1", "s1", "c1", "2024-03-01", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow("r1", created))
	mock.ExpectQuery("INSERT INTO daily_records").
		WithArgs(sqlmock.AnyArg(), "t1", "s2", "c1", "2024-03-01", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow("r-existing", created))
	mock.ExpectCommit()

	records := []models.DailyRecord{
		{ID: "r1", TeacherID: "t1", StudentID: "s1", ClassID: "c1", Date: "2024-03-01", Events: models.RecordEvents{{ID: "e1", Type: models.EventTypeStatus, Value: "+"}}},
		{TeacherID: "t1", StudentID: "s2", ClassID: "c1", Date: "2024-03-01"},
	}
	require.NoError(t, repo.UpsertMany(context.Background(), records))
	assert.Equal(t, "r-existing", records[1].ID)
	assert.Equal(t, created, records[0].CreatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDailyRecordRepositoryUpsertManyRollsBack(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewDailyRecordRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO daily_records").WillReturnError(errors.New("connection reset"))
	mock.ExpectRollback()

	err := repo.UpsertMany(context.Background(), []models.DailyRecord{{TeacherID: "t1", StudentID: "s1", ClassID: "c1", Date: "2024-03-01"}})
	require.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
