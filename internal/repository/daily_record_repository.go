package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/teacher-journal-api/internal/models"
	"github.com/noah-isme/teacher-journal-api/pkg/database"
)

const dailyRecordColumns = `id, teacher_id, student_id, class_id, date, events, created_at, updated_at`

// DailyRecordRepository persists per-student daily journal records.
type DailyRecordRepository struct {
	db *sqlx.DB
}

// NewDailyRecordRepository constructs the repository.
func NewDailyRecordRepository(db *sqlx.DB) *DailyRecordRepository {
	return &DailyRecordRepository{db: db}
}

// ListDay returns every record of a class on one day.
func (r *DailyRecordRepository) ListDay(ctx context.Context, teacherID, classID string, date models.Date) ([]models.DailyRecord, error) {
	return r.ListRange(ctx, models.RecordFilter{TeacherID: teacherID, ClassID: classID, From: date, To: date})
}

// ListRange returns records of a class between From and To inclusive, optionally for one student.
func (r *DailyRecordRepository) ListRange(ctx context.Context, filter models.RecordFilter) ([]models.DailyRecord, error) {
	query := fmt.Sprintf("SELECT %s FROM daily_records WHERE teacher_id = $1 AND class_id = $2 AND date BETWEEN $3 AND $4", dailyRecordColumns)
	args := []interface{}{filter.TeacherID, filter.ClassID, filter.From, filter.To}
	if filter.StudentID != "" {
		query += " AND student_id = $5"
		args = append(args, filter.StudentID)
	}
	query += " ORDER BY date ASC, student_id ASC"

	var records []models.DailyRecord
	if err := r.db.SelectContext(ctx, &records, query, args...); err != nil {
		return nil, fmt.Errorf("list daily records: %w", err)
	}
	return records, nil
}

// UpsertMany writes every record in one transaction. The (student, class, date) key is
// unique, so an existing row has its events replaced. Assigned ids are written back into records.
func (r *DailyRecordRepository) UpsertMany(ctx context.Context, records []models.DailyRecord) error {
	if len(records) == 0 {
		return nil
	}
	const query = `INSERT INTO daily_records (id, teacher_id, student_id, class_id, date, events, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $7)
ON CONFLICT (student_id, class_id, date) DO UPDATE SET events = EXCLUDED.events, updated_at = EXCLUDED.updated_at
RETURNING id, created_at`
	now := time.Now().UTC()
	return database.WithTx(ctx, r.db, func(tx *sqlx.Tx) error {
		for i := range records {
			rec := &records[i]
			if rec.ID == "" {
				rec.ID = uuid.NewString()
			}
			row := tx.QueryRowxContext(ctx, query, rec.ID, rec.TeacherID, rec.StudentID, rec.ClassID, rec.Date, rec.Events, now)
			if err := row.Scan(&rec.ID, &rec.CreatedAt); err != nil {
				return fmt.Errorf("upsert daily record for student %s: %w", rec.StudentID, err)
			}
			rec.UpdatedAt = now
		}
		return nil
	})
}
