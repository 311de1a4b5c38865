package service

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/teacher-journal-api/internal/dto"
	"github.com/noah-isme/teacher-journal-api/internal/models"
	"github.com/noah-isme/teacher-journal-api/pkg/ai"
	"github.com/noah-isme/teacher-journal-api/pkg/events"
	appErrors "github.com/noah-isme/teacher-journal-api/pkg/errors"
	"github.com/noah-isme/teacher-journal-api/pkg/roster"
)

type studentRepository interface {
	ListByClass(ctx context.Context, classID string) ([]models.Student, error)
	FindByID(ctx context.Context, classID, id string) (*models.Student, error)
	ExistsByNumber(ctx context.Context, classID, number, excludeID string) (bool, error)
	Create(ctx context.Context, student *models.Student) error
	CreateMany(ctx context.Context, students []*models.Student) error
	Update(ctx context.Context, student *models.Student) error
	Delete(ctx context.Context, classID, id string) error
}

// StudentService manages class rosters.
type StudentService struct {
	repo      studentRepository
	classes   classOwnerReader
	drafts    draftForgetter
	cache     *CacheService
	assistant *AssistantService
	broker    events.Broker
	validator *validator.Validate
	logger    *zap.Logger
}

// NewStudentService constructs StudentService.
func NewStudentService(repo studentRepository, classes classOwnerReader, drafts draftForgetter, cache *CacheService, assistant *AssistantService, broker events.Broker, validate *validator.Validate, logger *zap.Logger) *StudentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StudentService{repo: repo, classes: classes, drafts: drafts, cache: cache, assistant: assistant, broker: broker, validator: validate, logger: logger}
}

// List returns the class roster in student-number order.
func (s *StudentService) List(ctx context.Context, teacherID, classID string) ([]models.Student, error) {
	if _, err := loadOwnedClass(ctx, s.classes, teacherID, classID); err != nil {
		return nil, err
	}
	students, err := s.repo.ListByClass(ctx, classID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list students")
	}
	SortStudents(students)
	return students, nil
}

// Create adds one student. Student numbers are unique within the class.
func (s *StudentService) Create(ctx context.Context, teacherID, classID string, req dto.StudentRequest) (*models.Student, error) {
	req = trimStudentRequest(req)
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid student payload")
	}
	if _, err := loadOwnedClass(ctx, s.classes, teacherID, classID); err != nil {
		return nil, err
	}
	if err := s.ensureUniqueNumber(ctx, classID, req.StudentNumber, ""); err != nil {
		return nil, err
	}

	student := &models.Student{
		ClassID:       classID,
		StudentNumber: req.StudentNumber,
		FirstName:     req.FirstName,
		LastName:      req.LastName,
	}
	if err := s.repo.Create(ctx, student); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create student")
	}
	s.rosterChanged(ctx, teacherID, classID)
	return student, nil
}

// Update modifies a student.
func (s *StudentService) Update(ctx context.Context, teacherID, classID, id string, req dto.StudentRequest) (*models.Student, error) {
	req = trimStudentRequest(req)
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid student payload")
	}
	if _, err := loadOwnedClass(ctx, s.classes, teacherID, classID); err != nil {
		return nil, err
	}
	student, err := s.repo.FindByID(ctx, classID, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}
	if err := s.ensureUniqueNumber(ctx, classID, req.StudentNumber, id); err != nil {
		return nil, err
	}

	student.StudentNumber = req.StudentNumber
	student.FirstName = req.FirstName
	student.LastName = req.LastName
	if err := s.repo.Update(ctx, student); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update student")
	}
	s.rosterChanged(ctx, teacherID, classID)
	return student, nil
}

// Delete removes a student and their daily records.
func (s *StudentService) Delete(ctx context.Context, teacherID, classID, id string) error {
	if _, err := loadOwnedClass(ctx, s.classes, teacherID, classID); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, classID, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete student")
	}
	s.rosterChanged(ctx, teacherID, classID)
	return nil
}

// ImportFile inserts the valid rows of an xlsx or csv roster. An unreadable file aborts the import.
func (s *StudentService) ImportFile(ctx context.Context, teacherID, classID string, file io.Reader, filename string) (*models.ImportResult, error) {
	if _, err := loadOwnedClass(ctx, s.classes, teacherID, classID); err != nil {
		return nil, err
	}
	rows, err := roster.Parse(file, filename)
	if err != nil {
		if errors.Is(err, roster.ErrUnsupportedFormat) {
			return nil, appErrors.Wrap(err, appErrors.ErrBadUpload.Code, appErrors.ErrBadUpload.Status, "roster must be an .xlsx or .csv file")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrBadUpload.Code, appErrors.ErrBadUpload.Status, appErrors.ErrBadUpload.Message)
	}
	return s.importRows(ctx, teacherID, classID, rows)
}

// ImportText asks the assistant to extract students from free text, then imports them like a file.
// There is no fallback; a failed extraction surfaces as AI_UNAVAILABLE.
func (s *StudentService) ImportText(ctx context.Context, teacherID, classID string, req dto.RosterTextRequest) (*models.ImportResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid roster text")
	}
	if _, err := loadOwnedClass(ctx, s.classes, teacherID, classID); err != nil {
		return nil, err
	}
	var parsed struct {
		Students []struct {
			StudentNumber string `json:"studentNumber"`
			FirstName     string `json:"firstName"`
			LastName      string `json:"lastName"`
		} `json:"students"`
	}
	if err := s.assistant.Ask(ctx, ai.TaskRosterParse, req.Text, rosterSchema, &parsed); err != nil {
		return nil, err
	}
	rows := make([]roster.Row, 0, len(parsed.Students))
	for i, st := range parsed.Students {
		rows = append(rows, roster.Row{
			Line:          i + 1,
			StudentNumber: strings.TrimSpace(st.StudentNumber),
			FirstName:     strings.TrimSpace(st.FirstName),
			LastName:      strings.TrimSpace(st.LastName),
		})
	}
	return s.importRows(ctx, teacherID, classID, rows)
}

// importRows skips incomplete rows, numbers repeated in the upload and numbers already in the class.
func (s *StudentService) importRows(ctx context.Context, teacherID, classID string, rows []roster.Row) (*models.ImportResult, error) {
	existing, err := s.repo.ListByClass(ctx, classID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load class roster")
	}
	known := make(map[string]struct{}, len(existing))
	for _, st := range existing {
		known[NormalizeStudentNumber(st.StudentNumber)] = struct{}{}
	}

	result := &models.ImportResult{SkippedRows: []models.SkippedRow{}, Students: []models.Student{}}
	seen := make(map[string]struct{}, len(rows))
	pending := make([]*models.Student, 0, len(rows))
	for _, row := range rows {
		skip := func(reason string) {
			result.SkippedRows = append(result.SkippedRows, models.SkippedRow{Row: row.Line, StudentNumber: row.StudentNumber, Reason: reason})
		}
		if !row.Complete() {
			skip(models.SkipReasonMissingFields)
			continue
		}
		number := NormalizeStudentNumber(row.StudentNumber)
		if _, dup := seen[number]; dup {
			skip(models.SkipReasonDuplicateInFile)
			continue
		}
		seen[number] = struct{}{}
		if _, exists := known[number]; exists {
			skip(models.SkipReasonAlreadyInClass)
			continue
		}
		pending = append(pending, &models.Student{
			ClassID:       classID,
			StudentNumber: number,
			FirstName:     row.FirstName,
			LastName:      row.LastName,
		})
	}

	if len(pending) > 0 {
		if err := s.repo.CreateMany(ctx, pending); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to import students")
		}
		s.rosterChanged(ctx, teacherID, classID)
	}
	for _, st := range pending {
		result.Students = append(result.Students, *st)
	}
	result.Imported = len(pending)
	result.Skipped = len(result.SkippedRows)
	s.logger.Info("roster imported",
		zap.String("class_id", classID),
		zap.Int("imported", result.Imported),
		zap.Int("skipped", result.Skipped),
	)
	return result, nil
}

func (s *StudentService) ensureUniqueNumber(ctx context.Context, classID, number, excludeID string) error {
	exists, err := s.repo.ExistsByNumber(ctx, classID, number, excludeID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check student number")
	}
	if exists {
		return appErrors.Field(appErrors.ErrConflict, "studentNumber", "student number already exists in this class")
	}
	return nil
}

// rosterChanged drops the teacher's staged day and cached summaries for the class since
// its roster no longer matches.
func (s *StudentService) rosterChanged(ctx context.Context, teacherID, classID string) {
	if s.drafts != nil {
		s.drafts.Forget(teacherID, classID)
	}
	if err := s.cache.InvalidateClass(ctx, teacherID, classID); err != nil {
		s.logger.Warn("invalidate analytics after roster change", zap.String("class_id", classID), zap.Error(err))
	}
	publishChange(ctx, s.broker, s.logger, teacherID, events.KindClassesChanged, map[string]string{"class_id": classID, "action": "roster"})
}

func trimStudentRequest(req dto.StudentRequest) dto.StudentRequest {
	req.StudentNumber = NormalizeStudentNumber(req.StudentNumber)
	req.FirstName = strings.TrimSpace(req.FirstName)
	req.LastName = strings.TrimSpace(req.LastName)
	return req
}
