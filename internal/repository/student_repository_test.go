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

func TestStudentRepositoryListByClass(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	rows := sqlmock.NewRows([]string{"id", "class_id", "student_number", "first_name", "last_name", "created_at", "updated_at"}).
		AddRow("s1", "c1", "12", "Ada", "Lovelace", time.Now(), time.Now())
	mock.ExpectQuery(`SELECT id, class_id, student_number, first_name, last_name, created_at, updated_at FROM students WHERE class_id = \$1`).
		WithArgs("c1").
		WillReturnRows(rows)

	students, err := repo.ListByClass(context.Background(), "c1")
	require.NoError(t, err)
	require.Len(t, students, 1)
	assert.Equal(t, "Ada Lovelace", students[0].FullName())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryCreateManyIsAtomic(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO students").
		WithArgs(sqlmock.AnyArg(), "c1", "1", "Ada", "Lovelace", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO students").
		WithArgs(sqlmock.AnyArg(), "c1", "2", "Alan", "Turing", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnError(errors.New("unique violation"))
	mock.ExpectRollback()

	err := repo.CreateMany(context.Background(), []*models.Student{
		{ClassID: "c1", StudentNumber: "1", FirstName: "Ada", LastName: "Lovelace"},
		{ClassID: "c1", StudentNumber: "2", FirstName: "Alan", LastName: "Turing"},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "create student 2")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryDeleteRemovesRecords(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM daily_records WHERE student_id = \\$1 AND class_id = \\$2").WithArgs("s1", "c1").WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectExec("DELETE FROM students WHERE id = \\$1 AND class_id = \\$2").WithArgs("s1", "c1").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.Delete(context.Background(), "c1", "s1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}
