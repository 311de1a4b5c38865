package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/teacher-journal-api/internal/dto"
	"github.com/noah-isme/teacher-journal-api/internal/models"
	"github.com/noah-isme/teacher-journal-api/pkg/ai"
	appErrors "github.com/noah-isme/teacher-journal-api/pkg/errors"
)

type lessonPlanRepository interface {
	List(ctx context.Context, filter models.LessonPlanFilter) ([]models.LessonPlan, error)
	FindByID(ctx context.Context, teacherID, id string) (*models.LessonPlan, error)
	Create(ctx context.Context, plan *models.LessonPlan) error
	Update(ctx context.Context, plan *models.LessonPlan) error
	Delete(ctx context.Context, teacherID, id string) error
}

// LessonPlanService manages lesson plans.
type LessonPlanService struct {
	repo      lessonPlanRepository
	classes   classOwnerReader
	assistant *AssistantService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewLessonPlanService constructs LessonPlanService.
func NewLessonPlanService(repo lessonPlanRepository, classes classOwnerReader, assistant *AssistantService, validate *validator.Validate, logger *zap.Logger) *LessonPlanService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LessonPlanService{repo: repo, classes: classes, assistant: assistant, validator: validate, logger: logger}
}

// List returns lesson plans ordered by date.
func (s *LessonPlanService) List(ctx context.Context, teacherID string, query dto.LessonPlanQuery) ([]models.LessonPlan, error) {
	if err := s.validator.Struct(query); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid lesson plan query")
	}
	plans, err := s.repo.List(ctx, models.LessonPlanFilter{
		TeacherID: teacherID,
		ClassID:   query.ClassID,
		From:      models.Date(query.From),
		To:        models.Date(query.To),
	})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list lesson plans")
	}
	return plans, nil
}

// Get returns one lesson plan.
func (s *LessonPlanService) Get(ctx context.Context, teacherID, id string) (*models.LessonPlan, error) {
	plan, err := s.repo.FindByID(ctx, teacherID, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "lesson plan not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load lesson plan")
	}
	return plan, nil
}

// Create stores a lesson plan.
func (s *LessonPlanService) Create(ctx context.Context, teacherID string, req dto.LessonPlanRequest) (*models.LessonPlan, error) {
	plan := &models.LessonPlan{TeacherID: teacherID}
	if err := s.apply(ctx, teacherID, plan, req); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, plan); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create lesson plan")
	}
	return plan, nil
}

// Update modifies a lesson plan.
func (s *LessonPlanService) Update(ctx context.Context, teacherID, id string, req dto.LessonPlanRequest) (*models.LessonPlan, error) {
	plan, err := s.Get(ctx, teacherID, id)
	if err != nil {
		return nil, err
	}
	if err := s.apply(ctx, teacherID, plan, req); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, plan); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update lesson plan")
	}
	return plan, nil
}

// Delete removes a lesson plan.
func (s *LessonPlanService) Delete(ctx context.Context, teacherID, id string) error {
	if err := s.repo.Delete(ctx, teacherID, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "lesson plan not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete lesson plan")
	}
	return nil
}

// SuggestDescription drafts a description from title, subject and objectives. Assistant failures
// yield an empty suggestion with Error set instead of an error.
func (s *LessonPlanService) SuggestDescription(ctx context.Context, req dto.DescriptionSuggestRequest) (*dto.DescriptionSuggestion, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid suggestion request")
	}
	input := fmt.Sprintf("Title: %s\nSubject: %s\nObjectives: %s", req.Title, req.Subject, req.Objectives)
	var out struct {
		Description string `json:"description"`
	}
	if err := s.assistant.Ask(ctx, ai.TaskLessonPlan, input, lessonPlanSchema, &out); err != nil {
		s.assistant.fallback(ai.TaskLessonPlan, err)
		return &dto.DescriptionSuggestion{Error: "description could not be generated"}, nil
	}
	return &dto.DescriptionSuggestion{Description: strings.TrimSpace(out.Description), Generated: true}, nil
}

func (s *LessonPlanService) apply(ctx context.Context, teacherID string, plan *models.LessonPlan, req dto.LessonPlanRequest) error {
	req.Title = strings.TrimSpace(req.Title)
	req.Subject = strings.TrimSpace(req.Subject)
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid lesson plan payload")
	}
	date, err := models.ParseDate(req.Date)
	if err != nil {
		return appErrors.Field(appErrors.ErrValidation, "date", "date must use YYYY-MM-DD")
	}
	var classID *string
	if req.ClassID != nil && strings.TrimSpace(*req.ClassID) != "" {
		id := strings.TrimSpace(*req.ClassID)
		if _, err := loadOwnedClass(ctx, s.classes, teacherID, id); err != nil {
			return err
		}
		classID = &id
	}

	plan.ClassID = classID
	plan.Title = req.Title
	plan.Subject = req.Subject
	plan.Date = date
	plan.Description = req.Description
	plan.Objectives = req.Objectives
	return nil
}
