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

const reminderColumns = `id, teacher_id, title, due_date, due_time, is_completed, created_at, updated_at`

// ReminderRepository persists teacher reminders.
type ReminderRepository struct {
	db *sqlx.DB
}

// NewReminderRepository constructs the repository.
func NewReminderRepository(db *sqlx.DB) *ReminderRepository {
	return &ReminderRepository{db: db}
}

// ListByTeacher returns reminders ordered by due date then time; untimed reminders sort last within a day.
func (r *ReminderRepository) ListByTeacher(ctx context.Context, teacherID string) ([]models.Reminder, error) {
	query := fmt.Sprintf("SELECT %s FROM reminders WHERE teacher_id = $1 ORDER BY due_date ASC, due_time ASC NULLS LAST, created_at ASC", reminderColumns)
	var reminders []models.Reminder
	if err := r.db.SelectContext(ctx, &reminders, query, teacherID); err != nil {
		return nil, fmt.Errorf("list reminders: %w", err)
	}
	return reminders, nil
}

// FindByID returns one reminder of the teacher.
func (r *ReminderRepository) FindByID(ctx context.Context, teacherID, id string) (*models.Reminder, error) {
	query := fmt.Sprintf("SELECT %s FROM reminders WHERE id = $1 AND teacher_id = $2", reminderColumns)
	var reminder models.Reminder
	if err := r.db.GetContext(ctx, &reminder, query, id, teacherID); err != nil {
		return nil, err
	}
	return &reminder, nil
}

// Create inserts a reminder.
func (r *ReminderRepository) Create(ctx context.Context, reminder *models.Reminder) error {
	if reminder.ID == "" {
		reminder.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if reminder.CreatedAt.IsZero() {
		reminder.CreatedAt = now
	}
	reminder.UpdatedAt = now
	const query = `INSERT INTO reminders (id, teacher_id, title, due_date, due_time, is_completed, created_at, updated_at)
VALUES (:id, :teacher_id, :title, :due_date, :due_time, :is_completed, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, reminder); err != nil {
		return fmt.Errorf("create reminder: %w", err)
	}
	return nil
}

// Update saves title, schedule and completion.
func (r *ReminderRepository) Update(ctx context.Context, reminder *models.Reminder) error {
	reminder.UpdatedAt = time.Now().UTC()
	const query = `UPDATE reminders SET title = :title, due_date = :due_date, due_time = :due_time, is_completed = :is_completed, updated_at = :updated_at
WHERE id = :id AND teacher_id = :teacher_id`
	if _, err := r.db.NamedExecContext(ctx, query, reminder); err != nil {
		return fmt.Errorf("update reminder: %w", err)
	}
	return nil
}

// Delete removes a reminder. Returns sql.ErrNoRows when nothing matched.
func (r *ReminderRepository) Delete(ctx context.Context, teacherID, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM reminders WHERE id = $1 AND teacher_id = $2`, id, teacherID)
	if err != nil {
		return fmt.Errorf("delete reminder: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
