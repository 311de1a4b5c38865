package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/teacher-journal-api/internal/models"
)

func TestClassRepositoryListScopesByTeacher(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewClassRepository(db)

	rows := sqlmock.NewRows([]string{"id", "teacher_id", "name", "created_at", "updated_at", "student_count"}).
		AddRow("c1", "t1", "9A", time.Now(), time.Now(), 24)
	mock.ExpectQuery(`SELECT c.id, c.teacher_id, c.name, .* FROM classes c WHERE c.teacher_id = \$1 AND LOWER\(c.name\) LIKE \$2 ORDER BY LOWER\(c.name\) ASC LIMIT 50 OFFSET 0`).
		WithArgs("t1", "%9a%").
		WillReturnRows(rows)
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM classes c WHERE c.teacher_id = \$1`).
		WithArgs("t1", "%9a%").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	classes, total, err := repo.List(context.Background(), models.ClassFilter{TeacherID: "t1", Search: "9A"})
	require.NoError(t, err)
	require.Len(t, classes, 1)
	assert.Equal(t, 24, classes[0].StudentCount)
	assert.Equal(t, 1, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClassRepositoryExistsByName(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewClassRepository(db)

	mock.ExpectQuery(`SELECT 1 FROM classes WHERE teacher_id = \$1 AND LOWER\(name\) = LOWER\(\$2\) AND id <> \$3 LIMIT 1`).
		WithArgs("t1", "9a", "c1").
		WillReturnError(sql.ErrNoRows)
	exists, err := repo.ExistsByName(context.Background(), "t1", "9a", "c1")
	require.NoError(t, err)
	assert.False(t, exists)

	mock.ExpectQuery(`SELECT 1 FROM classes`).
		WithArgs("t1", "9A").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(1))
	exists, err = repo.ExistsByName(context.Background(), "t1", "9A", "")
	require.NoError(t, err)
	assert.True(t, exists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClassRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewClassRepository(db)

	mock.ExpectExec("INSERT INTO classes").
		WithArgs(sqlmock.AnyArg(), "t1", "9A", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	class := &models.Class{TeacherID: "t1", Name: "9A"}
	require.NoError(t, repo.Create(context.Background(), class))
	assert.NotEmpty(t, class.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClassRepositoryDeleteCascadesInTransaction(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewClassRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM daily_records WHERE class_id = \\$1 AND teacher_id = \\$2").WithArgs("c1", "t1").WillReturnResult(sqlmock.NewResult(0, 40))
	mock.ExpectExec("DELETE FROM students WHERE class_id = \\$1").WithArgs("c1", "t1").WillReturnResult(sqlmock.NewResult(0, 20))
	mock.ExpectExec("UPDATE lesson_plans SET class_id = NULL").WithArgs("c1", "t1").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("DELETE FROM classes WHERE id = \\$1 AND teacher_id = \\$2").WithArgs("c1", "t1").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.Delete(context.Background(), "t1", "c1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClassRepositoryDeleteRollsBackWhenMissing(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewClassRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM daily_records").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("DELETE FROM students").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("UPDATE lesson_plans").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("DELETE FROM classes").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := repo.Delete(context.Background(), "t1", "missing")
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}
