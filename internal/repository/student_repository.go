package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/teacher-journal-api/internal/models"
	"github.com/noah-isme/teacher-journal-api/pkg/database"
)

const studentColumns = `id, class_id, student_number, first_name, last_name, created_at, updated_at`

// StudentRepository handles persistence of students.
type StudentRepository struct {
	db *sqlx.DB
}

// NewStudentRepository creates a new repository instance.
func NewStudentRepository(db *sqlx.DB) *StudentRepository {
	return &StudentRepository{db: db}
}

// ListByClass returns the roster of a class. Ordering by student number is done by callers
// because numbers are compared numerically when possible.
func (r *StudentRepository) ListByClass(ctx context.Context, classID string) ([]models.Student, error) {
	query := fmt.Sprintf("SELECT %s FROM students WHERE class_id = $1 ORDER BY student_number ASC", studentColumns)
	var students []models.Student
	if err := r.db.SelectContext(ctx, &students, query, classID); err != nil {
		return nil, fmt.Errorf("list students: %w", err)
	}
	return students, nil
}

// FindByID returns a student of the class.
func (r *StudentRepository) FindByID(ctx context.Context, classID, id string) (*models.Student, error) {
	query := fmt.Sprintf("SELECT %s FROM students WHERE id = $1 AND class_id = $2", studentColumns)
	var student models.Student
	if err := r.db.GetContext(ctx, &student, query, id, classID); err != nil {
		return nil, err
	}
	return &student, nil
}

// ExistsByNumber checks whether the student number is taken within the class.
func (r *StudentRepository) ExistsByNumber(ctx context.Context, classID, number, excludeID string) (bool, error) {
	query := "SELECT 1 FROM students WHERE class_id = $1 AND student_number = $2"
	args := []interface{}{classID, number}
	if excludeID != "" {
		query += " AND id <> $3"
		args = append(args, excludeID)
	}
	var exists int
	if err := r.db.GetContext(ctx, &exists, query+" LIMIT 1", args...); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check student number: %w", err)
	}
	return true, nil
}

// Create inserts a student.
func (r *StudentRepository) Create(ctx context.Context, student *models.Student) error {
	return r.CreateMany(ctx, []*models.Student{student})
}

// CreateMany inserts students in a single transaction.
func (r *StudentRepository) CreateMany(ctx context.Context, students []*models.Student) error {
	if len(students) == 0 {
		return nil
	}
	now := time.Now().UTC()
	const query = `INSERT INTO students (id, class_id, student_number, first_name, last_name, created_at, updated_at)
VALUES (:id, :class_id, :student_number, :first_name, :last_name, :created_at, :updated_at)`
	return database.WithTx(ctx, r.db, func(tx *sqlx.Tx) error {
		for _, student := range students {
			if student.ID == "" {
				student.ID = uuid.NewString()
			}
			if student.CreatedAt.IsZero() {
				student.CreatedAt = now
			}
			student.UpdatedAt = now
			if _, err := tx.NamedExecContext(ctx, query, student); err != nil {
				return fmt.Errorf("create student %s: %w", student.StudentNumber, err)
			}
		}
		return nil
	})
}

// Update modifies a student.
func (r *StudentRepository) Update(ctx context.Context, student *models.Student) error {
	student.UpdatedAt = time.Now().UTC()
	const query = `UPDATE students SET student_number = :student_number, first_name = :first_name, last_name = :last_name, updated_at = :updated_at WHERE id = :id AND class_id = :class_id`
	if _, err := r.db.NamedExecContext(ctx, query, student); err != nil {
		return fmt.Errorf("update student: %w", err)
	}
	return nil
}

// Delete removes a student and the student's daily records.
func (r *StudentRepository) Delete(ctx context.Context, classID, id string) error {
	return database.WithTx(ctx, r.db, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM daily_records WHERE student_id = $1 AND class_id = $2`, id, classID); err != nil {
			return fmt.Errorf("delete student records: %w", err)
		}
		res, err := tx.ExecContext(ctx, `DELETE FROM students WHERE id = $1 AND class_id = $2`, id, classID)
		if err != nil {
			return fmt.Errorf("delete student: %w", err)
		}
		if n, err := res.RowsAffected(); err == nil && n == 0 {
			return sql.ErrNoRows
		}
		return nil
	})
}
