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

func TestReminderRepositoryListOrdersByDueDate(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewReminderRepository(db)

	rows := sqlmock.NewRows([]string{"id", "teacher_id", "title", "due_date", "due_time", "is_completed", "created_at", "updated_at"}).
		AddRow("r1", "t1", "Grade essays", time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC), "20:00", false, time.Now(), time.Now()).
		AddRow("r2", "t1", "Parent call", time.Date(2024, 1, 11, 0, 0, 0, 0, time.UTC), nil, false, time.Now(), time.Now())
	mock.ExpectQuery(`FROM reminders WHERE teacher_id = \$1 ORDER BY due_date ASC, due_time ASC NULLS LAST`).
		WithArgs("t1").
		WillReturnRows(rows)

	reminders, err := repo.ListByTeacher(context.Background(), "t1")
	require.NoError(t, err)
	require.Len(t, reminders, 2)
	require.NotNil(t, reminders[0].Time)
	assert.Equal(t, "20:00", *reminders[0].Time)
	assert.Nil(t, reminders[1].Time)
	assert.Equal(t, models.Date("2024-01-11"), reminders[1].DueDate)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReminderRepositoryDeleteMissing(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewReminderRepository(db)

	mock.ExpectExec("DELETE FROM reminders").WithArgs("r1", "t1").WillReturnResult(sqlmock.NewResult(0, 0))
	assert.ErrorIs(t, repo.Delete(context.Background(), "t1", "r1"), sql.ErrNoRows)
}

func TestNoteRepositoryListSearchesChecklistItems(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewNoteRepository(db)

	rows := sqlmock.NewRows([]string{"id", "teacher_id", "title", "content", "type", "items", "date", "color", "text_color", "image_url", "is_pinned", "created_at", "updated_at"}).
		AddRow("n1", "t1", "Trip", "", "checklist", `[{"id":"i1","text":"Permission slips","checked":false}]`, "2024-03-01", "#fff", "#000", nil, true, time.Now(), time.Now())
	mock.ExpectQuery(`FROM notes WHERE teacher_id = \$1 AND type = \$2 AND \(LOWER\(title\) LIKE \$3 OR LOWER\(content\) LIKE \$3 OR LOWER\(items::text\) LIKE \$3\) ORDER BY is_pinned DESC, date DESC`).
		WithArgs("t1", models.NoteTypeChecklist, "%slips%").
		WillReturnRows(rows)
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM notes`).
		WithArgs("t1", models.NoteTypeChecklist, "%slips%").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	notes, total, err := repo.List(context.Background(), models.NoteFilter{TeacherID: "t1", Type: models.NoteTypeChecklist, Search: "Slips"})
	require.NoError(t, err)
	require.Len(t, notes, 1)
	assert.Equal(t, 1, total)
	require.Len(t, notes[0].Items, 1)
	assert.Equal(t, "Permission slips", notes[0].Items[0].Text)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestForumRepositoryDeletePostChecksAuthor(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewForumRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT author_id FROM forum_posts WHERE id = \$1 FOR UPDATE`).
		WithArgs("p1").
		WillReturnRows(sqlmock.NewRows([]string{"author_id"}).AddRow("someone-else"))
	mock.ExpectRollback()

	assert.ErrorIs(t, repo.DeletePost(context.Background(), "t1", "p1"), sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestForumRepositoryCreateReply(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewForumRepository(db)

	mock.ExpectExec("INSERT INTO forum_replies").
		WithArgs(sqlmock.AnyArg(), "p1", "t1", "Try exit tickets.", true, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	reply := &models.ForumReply{PostID: "p1", AuthorID: "t1", Body: "Try exit tickets.", IsAI: true}
	require.NoError(t, repo.CreateReply(context.Background(), reply))
	assert.NotEmpty(t, reply.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}
