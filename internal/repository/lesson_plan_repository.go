package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/teacher-journal-api/internal/models"
)

const lessonPlanColumns = `id, teacher_id, class_id, title, subject, date, description, objectives, created_at, updated_at`

// LessonPlanRepository persists lesson plans.
type LessonPlanRepository struct {
	db *sqlx.DB
}

// NewLessonPlanRepository constructs the repository.
func NewLessonPlanRepository(db *sqlx.DB) *LessonPlanRepository {
	return &LessonPlanRepository{db: db}
}

// List returns plans ordered by date.
func (r *LessonPlanRepository) List(ctx context.Context, filter models.LessonPlanFilter) ([]models.LessonPlan, error) {
	query := fmt.Sprintf("SELECT %s FROM lesson_plans WHERE teacher_id = $1", lessonPlanColumns)
	args := []interface{}{filter.TeacherID}
	if filter.ClassID != "" {
		query += fmt.Sprintf(" AND class_id = $%d", len(args)+1)
		args = append(args, filter.ClassID)
	}
	if filter.From != "" {
		query += fmt.Sprintf(" AND date >= $%d", len(args)+1)
		args = append(args, filter.From)
	}
	if filter.To != "" {
		query += fmt.Sprintf(" AND date <= $%d", len(args)+1)
		args = append(args, filter.To)
	}
	query += " ORDER BY date ASC, created_at ASC"

	var plans []models.LessonPlan
	if err := r.db.SelectContext(ctx, &plans, query, args...); err != nil {
		return nil, fmt.Errorf("list lesson plans: %w", err)
	}
	return plans, nil
}

// FindByID returns one plan of the teacher.
func (r *LessonPlanRepository) FindByID(ctx context.Context, teacherID, id string) (*models.LessonPlan, error) {
	query := fmt.Sprintf("SELECT %s FROM lesson_plans WHERE id = $1 AND teacher_id = $2", lessonPlanColumns)
	var plan models.LessonPlan
	if err := r.db.GetContext(ctx, &plan, query, id, teacherID); err != nil {
		return nil, err
	}
	return &plan, nil
}

// Create inserts a plan.
func (r *LessonPlanRepository) Create(ctx context.Context, plan *models.LessonPlan) error {
	if plan.ID == "" {
		plan.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if plan.CreatedAt.IsZero() {
		plan.CreatedAt = now
	}
	plan.UpdatedAt = now
	const query = `INSERT INTO lesson_plans (id, teacher_id, class_id, title, subject, date, description, objectives, created_at, updated_at)
VALUES (:id, :teacher_id, :class_id, :title, :subject, :date, :description, :objectives, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, plan); err != nil {
		return fmt.Errorf("create lesson plan: %w", err)
	}
	return nil
}

// Update overwrites a plan.
func (r *LessonPlanRepository) Update(ctx context.Context, plan *models.LessonPlan) error {
	plan.UpdatedAt = time.Now().UTC()
	const query = `UPDATE lesson_plans SET class_id = :class_id, title = :title, subject = :subject, date = :date, description = :description,
objectives = :objectives, updated_at = :updated_at WHERE id = :id AND teacher_id = :teacher_id`
	if _, err := r.db.NamedExecContext(ctx, query, plan); err != nil {
		return fmt.Errorf("update lesson plan: %w", err)
	}
	return nil
}

// Delete removes a plan. Returns sql.ErrNoRows when nothing matched.
func (r *LessonPlanRepository) Delete(ctx context.Context, teacherID, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM lesson_plans WHERE id = $1 AND teacher_id = $2`, id, teacherID)
	if err != nil {
		return fmt.Errorf("delete lesson plan: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
