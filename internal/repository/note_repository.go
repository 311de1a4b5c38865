package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/teacher-journal-api/internal/models"
)

const noteColumns = `id, teacher_id, title, content, type, items, date, color, text_color, image_url, is_pinned, created_at, updated_at`

// NoteRepository persists teacher notes.
type NoteRepository struct {
	db *sqlx.DB
}

// NewNoteRepository constructs the repository.
func NewNoteRepository(db *sqlx.DB) *NoteRepository {
	return &NoteRepository{db: db}
}

// List returns notes pinned first, newest first. Search matches title, content and checklist text.
func (r *NoteRepository) List(ctx context.Context, filter models.NoteFilter) ([]models.Note, int, error) {
	base := "FROM notes WHERE teacher_id = $1"
	args := []interface{}{filter.TeacherID}

	if filter.Type != "" {
		base += fmt.Sprintf(" AND type = $%d", len(args)+1)
		args = append(args, filter.Type)
	}
	if filter.Search != "" {
		pos := len(args) + 1
		base += fmt.Sprintf(" AND (LOWER(title) LIKE $%d OR LOWER(content) LIKE $%d OR LOWER(items::text) LIKE $%d)", pos, pos, pos)
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	query := fmt.Sprintf("SELECT %s %s ORDER BY is_pinned DESC, date DESC, created_at DESC LIMIT %d OFFSET %d", noteColumns, base, size, offset)
	var notes []models.Note
	if err := r.db.SelectContext(ctx, &notes, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list notes: %w", err)
	}
	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) "+base, args...); err != nil {
		return nil, 0, fmt.Errorf("count notes: %w", err)
	}
	return notes, total, nil
}

// FindByID returns one note of the teacher.
func (r *NoteRepository) FindByID(ctx context.Context, teacherID, id string) (*models.Note, error) {
	query := fmt.Sprintf("SELECT %s FROM notes WHERE id = $1 AND teacher_id = $2", noteColumns)
	var note models.Note
	if err := r.db.GetContext(ctx, &note, query, id, teacherID); err != nil {
		return nil, err
	}
	return &note, nil
}

// Create inserts a note.
func (r *NoteRepository) Create(ctx context.Context, note *models.Note) error {
	if note.ID == "" {
		note.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if note.CreatedAt.IsZero() {
		note.CreatedAt = now
	}
	note.UpdatedAt = now
	const query = `INSERT INTO notes (id, teacher_id, title, content, type, items, date, color, text_color, image_url, is_pinned, created_at, updated_at)
VALUES (:id, :teacher_id, :title, :content, :type, :items, :date, :color, :text_color, :image_url, :is_pinned, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, note); err != nil {
		return fmt.Errorf("create note: %w", err)
	}
	return nil
}

// Update overwrites every mutable field.
func (r *NoteRepository) Update(ctx context.Context, note *models.Note) error {
	note.UpdatedAt = time.Now().UTC()
	const query = `UPDATE notes SET title = :title, content = :content, type = :type, items = :items, date = :date, color = :color,
text_color = :text_color, image_url = :image_url, is_pinned = :is_pinned, updated_at = :updated_at WHERE id = :id AND teacher_id = :teacher_id`
	if _, err := r.db.NamedExecContext(ctx, query, note); err != nil {
		return fmt.Errorf("update note: %w", err)
	}
	return nil
}

// Delete removes a note. Returns sql.ErrNoRows when nothing matched.
func (r *NoteRepository) Delete(ctx context.Context, teacherID, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM notes WHERE id = $1 AND teacher_id = $2`, id, teacherID)
	if err != nil {
		return fmt.Errorf("delete note: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
