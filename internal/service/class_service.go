package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/teacher-journal-api/internal/dto"
	"github.com/noah-isme/teacher-journal-api/internal/models"
	"github.com/noah-isme/teacher-journal-api/pkg/events"
	appErrors "github.com/noah-isme/teacher-journal-api/pkg/errors"
)

type classRepository interface {
	List(ctx context.Context, filter models.ClassFilter) ([]models.Class, int, error)
	FindByID(ctx context.Context, teacherID, id string) (*models.Class, error)
	ExistsByName(ctx context.Context, teacherID, name, excludeID string) (bool, error)
	Create(ctx context.Context, class *models.Class) error
	Update(ctx context.Context, class *models.Class) error
	Delete(ctx context.Context, teacherID, id string) error
}

type draftForgetter interface {
	Forget(teacherID, classID string)
}

// ClassService coordinates class operations.
type ClassService struct {
	repo      classRepository
	students  rosterReader
	drafts    draftForgetter
	cache     *CacheService
	broker    events.Broker
	validator *validator.Validate
	logger    *zap.Logger
}

// NewClassService constructs ClassService.
func NewClassService(repo classRepository, students rosterReader, drafts draftForgetter, cache *CacheService, broker events.Broker, validate *validator.Validate, logger *zap.Logger) *ClassService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ClassService{repo: repo, students: students, drafts: drafts, cache: cache, broker: broker, validator: validate, logger: logger}
}

// List returns the teacher's classes with pagination metadata.
func (s *ClassService) List(ctx context.Context, filter models.ClassFilter) ([]models.Class, *models.Pagination, error) {
	classes, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list classes")
	}
	return classes, models.NewPagination(filter.Page, filter.PageSize, total, 50), nil
}

// Get returns a class with its roster in student-number order.
func (s *ClassService) Get(ctx context.Context, teacherID, id string) (*models.ClassDetail, error) {
	class, err := loadOwnedClass(ctx, s.repo, teacherID, id)
	if err != nil {
		return nil, err
	}
	students, err := s.students.ListByClass(ctx, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load class roster")
	}
	SortStudents(students)
	if students == nil {
		students = []models.Student{}
	}
	class.StudentCount = len(students)
	return &models.ClassDetail{Class: *class, Students: students}, nil
}

// Create adds a new class. Names are unique per teacher, ignoring case.
func (s *ClassService) Create(ctx context.Context, teacherID string, req dto.ClassRequest) (*models.Class, error) {
	req.Name = strings.TrimSpace(req.Name)
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid class payload")
	}
	if err := s.ensureUniqueName(ctx, teacherID, req.Name, ""); err != nil {
		return nil, err
	}

	class := &models.Class{TeacherID: teacherID, Name: req.Name}
	if err := s.repo.Create(ctx, class); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create class")
	}
	s.publish(ctx, teacherID, class.ID, "created")
	return class, nil
}

// Update renames a class.
func (s *ClassService) Update(ctx context.Context, teacherID, id string, req dto.ClassRequest) (*models.Class, error) {
	req.Name = strings.TrimSpace(req.Name)
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid class payload")
	}
	class, err := loadOwnedClass(ctx, s.repo, teacherID, id)
	if err != nil {
		return nil, err
	}
	if err := s.ensureUniqueName(ctx, teacherID, req.Name, id); err != nil {
		return nil, err
	}

	class.Name = req.Name
	if err := s.repo.Update(ctx, class); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update class")
	}
	s.publish(ctx, teacherID, class.ID, "updated")
	return class, nil
}

// Delete removes a class together with its students and daily records.
func (s *ClassService) Delete(ctx context.Context, teacherID, id string) error {
	if err := s.repo.Delete(ctx, teacherID, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "class not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete class")
	}
	if s.drafts != nil {
		s.drafts.Forget(teacherID, id)
	}
	if err := s.cache.InvalidateClass(ctx, teacherID, id); err != nil {
		s.logger.Warn("invalidate analytics after class delete", zap.String("class_id", id), zap.Error(err))
	}
	s.publish(ctx, teacherID, id, "deleted")
	return nil
}

func (s *ClassService) ensureUniqueName(ctx context.Context, teacherID, name, excludeID string) error {
	exists, err := s.repo.ExistsByName(ctx, teacherID, name, excludeID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check class name")
	}
	if exists {
		return appErrors.Field(appErrors.ErrConflict, "name", "class name already exists")
	}
	return nil
}

func (s *ClassService) publish(ctx context.Context, teacherID, classID, action string) {
	publishChange(ctx, s.broker, s.logger, teacherID, events.KindClassesChanged, map[string]string{"class_id": classID, "action": action})
}

// publishChange sends a best-effort change event on the teacher topic.
func publishChange(ctx context.Context, broker events.Broker, logger *zap.Logger, teacherID, kind string, payload interface{}) {
	if broker == nil {
		return
	}
	evt, err := events.NewEvent(kind, payload)
	if err != nil {
		logger.Warn("build change event", zap.String("kind", kind), zap.Error(err))
		return
	}
	if err := broker.Publish(ctx, events.TeacherTopic(teacherID), evt); err != nil {
		logger.Warn("publish change event", zap.String("kind", kind), zap.String("teacher_id", teacherID), zap.Error(err))
	}
}
