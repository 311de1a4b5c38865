package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/teacher-journal-api/internal/dto"
	"github.com/noah-isme/teacher-journal-api/internal/models"
	"github.com/noah-isme/teacher-journal-api/pkg/events"
	appErrors "github.com/noah-isme/teacher-journal-api/pkg/errors"
)

type reminderRepository interface {
	ListByTeacher(ctx context.Context, teacherID string) ([]models.Reminder, error)
	FindByID(ctx context.Context, teacherID, id string) (*models.Reminder, error)
	Create(ctx context.Context, reminder *models.Reminder) error
	Update(ctx context.Context, reminder *models.Reminder) error
	Delete(ctx context.Context, teacherID, id string) error
}

// ReminderService manages reminders and keeps subscribers informed about the badge.
type ReminderService struct {
	repo      reminderRepository
	broker    events.Broker
	validator *validator.Validate
	loc       *time.Location
	now       func() time.Time
	logger    *zap.Logger
}

// NewReminderService constructs a ReminderService classifying in loc.
func NewReminderService(repo reminderRepository, broker events.Broker, validate *validator.Validate, loc *time.Location, logger *zap.Logger) *ReminderService {
	if validate == nil {
		validate = validator.New()
	}
	if loc == nil {
		loc = time.UTC
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReminderService{repo: repo, broker: broker, validator: validate, loc: loc, now: time.Now, logger: logger}
}

// List returns every reminder of the teacher with its tier, plus the badge.
func (s *ReminderService) List(ctx context.Context, teacherID string) (*dto.ReminderList, error) {
	reminders, err := s.repo.ListByTeacher(ctx, teacherID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list reminders")
	}
	now := s.now()
	return &dto.ReminderList{
		Reminders: ClassifyReminders(reminders, now, s.loc),
		Badge:     ReminderBadgeFor(reminders, now, s.loc),
	}, nil
}

// Badge recomputes the badge for one teacher.
func (s *ReminderService) Badge(ctx context.Context, teacherID string) (models.ReminderBadge, error) {
	reminders, err := s.repo.ListByTeacher(ctx, teacherID)
	if err != nil {
		return models.ReminderBadge{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list reminders")
	}
	return ReminderBadgeFor(reminders, s.now(), s.loc), nil
}

// Create stores a new reminder.
func (s *ReminderService) Create(ctx context.Context, teacherID string, req dto.ReminderRequest) (*models.Reminder, error) {
	reminder := &models.Reminder{TeacherID: teacherID}
	if err := s.apply(reminder, req); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, reminder); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create reminder")
	}
	s.changed(ctx, teacherID)
	return reminder, nil
}

// Update replaces title, due date and time.
func (s *ReminderService) Update(ctx context.Context, teacherID, id string, req dto.ReminderRequest) (*models.Reminder, error) {
	reminder, err := s.find(ctx, teacherID, id)
	if err != nil {
		return nil, err
	}
	if err := s.apply(reminder, req); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, reminder); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update reminder")
	}
	s.changed(ctx, teacherID)
	return reminder, nil
}

// Toggle flips completion.
func (s *ReminderService) Toggle(ctx context.Context, teacherID, id string) (*models.Reminder, error) {
	reminder, err := s.find(ctx, teacherID, id)
	if err != nil {
		return nil, err
	}
	reminder.IsCompleted = !reminder.IsCompleted
	if err := s.repo.Update(ctx, reminder); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update reminder")
	}
	s.changed(ctx, teacherID)
	return reminder, nil
}

// Delete removes a reminder.
func (s *ReminderService) Delete(ctx context.Context, teacherID, id string) error {
	if err := s.repo.Delete(ctx, teacherID, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "reminder not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete reminder")
	}
	s.changed(ctx, teacherID)
	return nil
}

func (s *ReminderService) find(ctx context.Context, teacherID, id string) (*models.Reminder, error) {
	reminder, err := s.repo.FindByID(ctx, teacherID, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "reminder not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load reminder")
	}
	return reminder, nil
}

func (s *ReminderService) apply(reminder *models.Reminder, req dto.ReminderRequest) error {
	req.Title = strings.TrimSpace(req.Title)
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid reminder payload")
	}
	due, err := models.ParseDate(req.DueDate)
	if err != nil {
		return appErrors.Field(appErrors.ErrValidation, "dueDate", "dueDate must use YYYY-MM-DD")
	}
	reminder.Title = req.Title
	reminder.DueDate = due
	reminder.Time = nil
	if req.Time != nil && strings.TrimSpace(*req.Time) != "" {
		t := strings.TrimSpace(*req.Time)
		reminder.Time = &t
	}
	return nil
}

// changed publishes the list change and the fresh badge. Failures are logged only.
func (s *ReminderService) changed(ctx context.Context, teacherID string) {
	if s.broker == nil {
		return
	}
	topic := events.TeacherTopic(teacherID)
	if evt, err := events.NewEvent(events.KindRemindersChanged, nil); err == nil {
		if err := s.broker.Publish(ctx, topic, evt); err != nil {
			s.logger.Warn("publish reminders changed", zap.String("teacher_id", teacherID), zap.Error(err))
		}
	}
	badge, err := s.Badge(ctx, teacherID)
	if err != nil {
		s.logger.Warn("recompute reminder badge", zap.String("teacher_id", teacherID), zap.Error(err))
		return
	}
	evt, err := events.NewEvent(events.KindRemindersBadge, badge)
	if err != nil {
		return
	}
	if err := s.broker.Publish(ctx, topic, evt); err != nil {
		s.logger.Warn("publish reminder badge", zap.String("teacher_id", teacherID), zap.Error(err))
	}
}
