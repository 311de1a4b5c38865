package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/teacher-journal-api/internal/models"
	appErrors "github.com/noah-isme/teacher-journal-api/pkg/errors"
)

// maxRangeDays bounds summary ranges to two years so the daily series stays small.
const maxRangeDays = 731

type studentReader interface {
	ListByClass(ctx context.Context, classID string) ([]models.Student, error)
	FindByID(ctx context.Context, classID, id string) (*models.Student, error)
}

type recordRangeReader interface {
	ListRange(ctx context.Context, filter models.RecordFilter) ([]models.DailyRecord, error)
}

// AnalyticsService loads journal records for a date range and aggregates them with cache integration.
type AnalyticsService struct {
	classes  classOwnerReader
	students studentReader
	records  recordRangeReader
	cache    *CacheService
	metrics  *MetricsService
	logger   *zap.Logger
}

// NewAnalyticsService constructs an analytics service.
func NewAnalyticsService(classes classOwnerReader, students studentReader, records recordRangeReader, cache *CacheService, metrics *MetricsService, logger *zap.Logger) *AnalyticsService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AnalyticsService{classes: classes, students: students, records: records, cache: cache, metrics: metrics, logger: logger}
}

// ParseRange validates an inclusive YYYY-MM-DD range.
func ParseRange(rawFrom, rawTo string) (models.Date, models.Date, error) {
	from, err := models.ParseDate(rawFrom)
	if err != nil {
		return "", "", appErrors.Field(appErrors.ErrValidation, "from", "from must use YYYY-MM-DD")
	}
	to, err := models.ParseDate(rawTo)
	if err != nil {
		return "", "", appErrors.Field(appErrors.ErrValidation, "to", "to must use YYYY-MM-DD")
	}
	if from > to {
		return "", "", appErrors.Field(appErrors.ErrValidation, "from", "from must not be after to")
	}
	if to.Time(time.UTC).Sub(from.Time(time.UTC)) > maxRangeDays*24*time.Hour {
		return "", "", appErrors.Field(appErrors.ErrValidation, "to", "range must not exceed two years")
	}
	return from, to, nil
}

// StudentSummary returns one student's counts, notes and score series. The boolean reports a cache hit.
func (s *AnalyticsService) StudentSummary(ctx context.Context, teacherID, classID, studentID string, from, to models.Date) (*models.StudentSummary, bool, error) {
	if _, err := s.ownedClass(ctx, teacherID, classID); err != nil {
		return nil, false, err
	}
	if _, err := s.students.FindByID(ctx, classID, studentID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}

	cacheKey := analyticsCacheKey(teacherID, classID, studentID, from, to)
	var cached models.StudentSummary
	if hit, _ := s.cache.Get(ctx, cacheKey, &cached); hit {
		return &cached, true, nil
	}

	records, err := s.records.ListRange(ctx, models.RecordFilter{
		TeacherID: teacherID,
		ClassID:   classID,
		StudentID: studentID,
		From:      from,
		To:        to,
	})
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load daily records")
	}
	summary := SummarizeStudent(classID, studentID, records, from, to)
	if err := s.cache.Set(ctx, cacheKey, summary, 0); err != nil {
		s.logger.Warn("cache student summary", zap.String("key", cacheKey), zap.Error(err))
	}
	return &summary, false, nil
}

// ClassSummary returns one row per student of the class, zero-activity students included.
func (s *AnalyticsService) ClassSummary(ctx context.Context, teacherID, classID string, from, to models.Date) (*models.ClassSummary, bool, error) {
	if _, err := s.ownedClass(ctx, teacherID, classID); err != nil {
		return nil, false, err
	}

	cacheKey := analyticsCacheKey(teacherID, classID, "", from, to)
	var cached models.ClassSummary
	if hit, _ := s.cache.Get(ctx, cacheKey, &cached); hit {
		return &cached, true, nil
	}

	students, err := s.students.ListByClass(ctx, classID)
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load class roster")
	}
	records, err := s.records.ListRange(ctx, models.RecordFilter{TeacherID: teacherID, ClassID: classID, From: from, To: to})
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load daily records")
	}
	summary := SummarizeClass(classID, students, records, from, to)
	if err := s.cache.Set(ctx, cacheKey, summary, 0); err != nil {
		s.logger.Warn("cache class summary", zap.String("key", cacheKey), zap.Error(err))
	}
	return &summary, false, nil
}

// SystemMetrics returns the instrumentation snapshot.
func (s *AnalyticsService) SystemMetrics() models.SystemMetrics {
	return s.metrics.Snapshot()
}

func (s *AnalyticsService) ownedClass(ctx context.Context, teacherID, classID string) (*models.Class, error) {
	return loadOwnedClass(ctx, s.classes, teacherID, classID)
}

func loadOwnedClass(ctx context.Context, classes classOwnerReader, teacherID, classID string) (*models.Class, error) {
	class, err := classes.FindByID(ctx, teacherID, classID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "class not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load class")
	}
	return class, nil
}
