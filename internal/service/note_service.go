package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/teacher-journal-api/internal/dto"
	"github.com/noah-isme/teacher-journal-api/internal/models"
	"github.com/noah-isme/teacher-journal-api/pkg/ai"
	"github.com/noah-isme/teacher-journal-api/pkg/events"
	appErrors "github.com/noah-isme/teacher-journal-api/pkg/errors"
)

const defaultNoteColor = "#fff9c4"

type noteRepository interface {
	List(ctx context.Context, filter models.NoteFilter) ([]models.Note, int, error)
	FindByID(ctx context.Context, teacherID, id string) (*models.Note, error)
	Create(ctx context.Context, note *models.Note) error
	Update(ctx context.Context, note *models.Note) error
	Delete(ctx context.Context, teacherID, id string) error
}

// NoteService manages notes and checklists.
type NoteService struct {
	repo      noteRepository
	assistant *AssistantService
	broker    events.Broker
	validator *validator.Validate
	loc       *time.Location
	now       func() time.Time
	logger    *zap.Logger
}

// NewNoteService constructs NoteService. Dates default to today in loc.
func NewNoteService(repo noteRepository, assistant *AssistantService, broker events.Broker, validate *validator.Validate, loc *time.Location, logger *zap.Logger) *NoteService {
	if validate == nil {
		validate = validator.New()
	}
	if loc == nil {
		loc = time.UTC
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NoteService{repo: repo, assistant: assistant, broker: broker, validator: validate, loc: loc, now: time.Now, logger: logger}
}

// List returns pinned notes first, then newest.
func (s *NoteService) List(ctx context.Context, filter models.NoteFilter) ([]models.Note, *models.Pagination, error) {
	filter.Search = strings.TrimSpace(filter.Search)
	notes, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list notes")
	}
	return notes, models.NewPagination(filter.Page, filter.PageSize, total, 20), nil
}

// Get returns one note.
func (s *NoteService) Get(ctx context.Context, teacherID, id string) (*models.Note, error) {
	note, err := s.repo.FindByID(ctx, teacherID, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "note not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load note")
	}
	return note, nil
}

// Create stores a new note.
func (s *NoteService) Create(ctx context.Context, teacherID string, req dto.NoteRequest) (*models.Note, error) {
	note := &models.Note{TeacherID: teacherID}
	if err := s.apply(note, req); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, note); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create note")
	}
	s.changed(ctx, teacherID, note.ID)
	return note, nil
}

// Update replaces a note's content.
func (s *NoteService) Update(ctx context.Context, teacherID, id string, req dto.NoteRequest) (*models.Note, error) {
	note, err := s.Get(ctx, teacherID, id)
	if err != nil {
		return nil, err
	}
	if err := s.apply(note, req); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, note); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update note")
	}
	s.changed(ctx, teacherID, note.ID)
	return note, nil
}

// TogglePin flips the pinned flag.
func (s *NoteService) TogglePin(ctx context.Context, teacherID, id string) (*models.Note, error) {
	note, err := s.Get(ctx, teacherID, id)
	if err != nil {
		return nil, err
	}
	note.IsPinned = !note.IsPinned
	if err := s.repo.Update(ctx, note); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update note")
	}
	s.changed(ctx, teacherID, note.ID)
	return note, nil
}

// Delete removes a note.
func (s *NoteService) Delete(ctx context.Context, teacherID, id string) error {
	if err := s.repo.Delete(ctx, teacherID, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "note not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete note")
	}
	s.changed(ctx, teacherID, id)
	return nil
}

// FromTranscript stores a dictated note. The assistant tidies the text; when it fails the raw
// transcript is kept and the boolean reports false.
func (s *NoteService) FromTranscript(ctx context.Context, teacherID string, req dto.TranscriptRequest) (*models.Note, bool, error) {
	req.Transcript = strings.TrimSpace(req.Transcript)
	if err := s.validator.Struct(req); err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid transcript")
	}

	noteReq := dto.NoteRequest{Content: req.Transcript, Type: models.NoteTypeText}
	var cleaned struct {
		Title   string `json:"title"`
		Content string `json:"content"`
	}
	generated := false
	if err := s.assistant.Ask(ctx, ai.TaskNoteCleanup, req.Transcript, noteCleanupSchema, &cleaned); err != nil {
		s.assistant.fallback(ai.TaskNoteCleanup, err)
	} else if strings.TrimSpace(cleaned.Content) != "" {
		noteReq.Title = truncateRunes(strings.TrimSpace(cleaned.Title), 200)
		noteReq.Content = strings.TrimSpace(cleaned.Content)
		generated = true
	}

	note, err := s.Create(ctx, teacherID, noteReq)
	if err != nil {
		return nil, false, err
	}
	return note, generated, nil
}

func (s *NoteService) apply(note *models.Note, req dto.NoteRequest) error {
	req.Title = strings.TrimSpace(req.Title)
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid note payload")
	}
	if req.Title == "" && strings.TrimSpace(req.Content) == "" && len(req.Items) == 0 {
		return appErrors.Field(appErrors.ErrValidation, "content", "note must have a title, content or items")
	}

	date := models.DateOf(s.now().In(s.loc))
	if req.Date != "" {
		parsed, err := models.ParseDate(req.Date)
		if err != nil {
			return appErrors.Field(appErrors.ErrValidation, "date", "date must use YYYY-MM-DD")
		}
		date = parsed
	}

	note.Title = req.Title
	note.Content = req.Content
	note.Type = req.Type
	note.Date = date
	note.Color = firstNonEmpty(req.Color, note.Color, defaultNoteColor)
	note.TextColor = firstNonEmpty(req.TextColor, note.TextColor, "#000000")
	note.ImageURL = req.ImageURL
	note.IsPinned = req.IsPinned
	note.Items = models.ChecklistItems{}
	if req.Type == models.NoteTypeChecklist {
		for _, item := range req.Items {
			id := item.ID
			if id == "" {
				id = uuid.NewString()
			}
			note.Items = append(note.Items, models.ChecklistItem{ID: id, Text: strings.TrimSpace(item.Text), Checked: item.Checked})
		}
	}
	return nil
}

func (s *NoteService) changed(ctx context.Context, teacherID, noteID string) {
	publishChange(ctx, s.broker, s.logger, teacherID, events.KindNotesChanged, map[string]string{"note_id": noteID})
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

func truncateRunes(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
