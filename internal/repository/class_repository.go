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
	"github.com/noah-isme/teacher-journal-api/pkg/database"
)

const classColumns = `c.id, c.teacher_id, c.name, c.created_at, c.updated_at,
(SELECT COUNT(*) FROM students s WHERE s.class_id = c.id) AS student_count`

// ClassRepository manages persistence for classes.
type ClassRepository struct {
	db *sqlx.DB
}

// NewClassRepository constructs a new class repository.
func NewClassRepository(db *sqlx.DB) *ClassRepository {
	return &ClassRepository{db: db}
}

// List returns a teacher's classes ordered by name.
func (r *ClassRepository) List(ctx context.Context, filter models.ClassFilter) ([]models.Class, int, error) {
	base := "FROM classes c WHERE c.teacher_id = $1"
	args := []interface{}{filter.TeacherID}

	if filter.Search != "" {
		base += fmt.Sprintf(" AND LOWER(c.name) LIKE $%d", len(args)+1)
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 50
	}
	offset := (page - 1) * size

	query := fmt.Sprintf("SELECT %s %s ORDER BY LOWER(c.name) ASC LIMIT %d OFFSET %d", classColumns, base, size, offset)
	var classes []models.Class
	if err := r.db.SelectContext(ctx, &classes, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list classes: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) "+base, args...); err != nil {
		return nil, 0, fmt.Errorf("count classes: %w", err)
	}
	return classes, total, nil
}

// FindByID returns a class owned by teacherID.
func (r *ClassRepository) FindByID(ctx context.Context, teacherID, id string) (*models.Class, error) {
	query := fmt.Sprintf("SELECT %s FROM classes c WHERE c.id = $1 AND c.teacher_id = $2", classColumns)
	var class models.Class
	if err := r.db.GetContext(ctx, &class, query, id, teacherID); err != nil {
		return nil, err
	}
	return &class, nil
}

// ExistsByName checks for a case-insensitive name clash within the teacher's classes.
func (r *ClassRepository) ExistsByName(ctx context.Context, teacherID, name, excludeID string) (bool, error) {
	query := "SELECT 1 FROM classes WHERE teacher_id = $1 AND LOWER(name) = LOWER($2)"
	args := []interface{}{teacherID, name}
	if excludeID != "" {
		query += " AND id <> $3"
		args = append(args, excludeID)
	}
	var exists int
	if err := r.db.GetContext(ctx, &exists, query+" LIMIT 1", args...); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check class name: %w", err)
	}
	return true, nil
}

// Create persists a class record.
func (r *ClassRepository) Create(ctx context.Context, class *models.Class) error {
	if class.ID == "" {
		class.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if class.CreatedAt.IsZero() {
		class.CreatedAt = now
	}
	class.UpdatedAt = now

	const query = `INSERT INTO classes (id, teacher_id, name, created_at, updated_at) VALUES (:id, :teacher_id, :name, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, class); err != nil {
		return fmt.Errorf("create class: %w", err)
	}
	return nil
}

// Update renames a class.
func (r *ClassRepository) Update(ctx context.Context, class *models.Class) error {
	class.UpdatedAt = time.Now().UTC()
	const query = `UPDATE classes SET name = :name, updated_at = :updated_at WHERE id = :id AND teacher_id = :teacher_id`
	if _, err := r.db.NamedExecContext(ctx, query, class); err != nil {
		return fmt.Errorf("update class: %w", err)
	}
	return nil
}

// Delete removes a class with its students, daily records and linked lesson plans in one transaction.
// Returns sql.ErrNoRows when the class does not belong to teacherID.
func (r *ClassRepository) Delete(ctx context.Context, teacherID, id string) error {
	return database.WithTx(ctx, r.db, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM daily_records WHERE class_id = $1 AND teacher_id = $2`, id, teacherID); err != nil {
			return fmt.Errorf("delete class records: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM students WHERE class_id = $1 AND class_id IN (SELECT id FROM classes WHERE teacher_id = $2)`, id, teacherID); err != nil {
			return fmt.Errorf("delete class students: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `UPDATE lesson_plans SET class_id = NULL WHERE class_id = $1 AND teacher_id = $2`, id, teacherID); err != nil {
			return fmt.Errorf("detach lesson plans: %w", err)
		}
		res, err := tx.ExecContext(ctx, `DELETE FROM classes WHERE id = $1 AND teacher_id = $2`, id, teacherID)
		if err != nil {
			return fmt.Errorf("delete class: %w", err)
		}
		if n, err := res.RowsAffected(); err == nil && n == 0 {
			return sql.ErrNoRows
		}
		return nil
	})
}
