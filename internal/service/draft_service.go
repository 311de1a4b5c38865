package service

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/teacher-journal-api/internal/dto"
	"github.com/noah-isme/teacher-journal-api/internal/models"
	"github.com/noah-isme/teacher-journal-api/pkg/events"
	appErrors "github.com/noah-isme/teacher-journal-api/pkg/errors"
)

type classOwnerReader interface {
	FindByID(ctx context.Context, teacherID, id string) (*models.Class, error)
}

type draft struct {
	store       *RecordStore
	unsubscribe func()
}

// DraftService keeps the staged journal day each teacher is editing.
type DraftService struct {
	classes classOwnerReader
	records dailyRecordStore
	roster  rosterReader
	cache   *CacheService
	broker  events.Broker
	metrics *MetricsService
	logger  *zap.Logger

	mu     sync.Mutex
	drafts map[string]*draft
}

// NewDraftService constructs a DraftService.
func NewDraftService(classes classOwnerReader, records dailyRecordStore, roster rosterReader, cache *CacheService, broker events.Broker, metrics *MetricsService, logger *zap.Logger) *DraftService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DraftService{
		classes: classes,
		records: records,
		roster:  roster,
		cache:   cache,
		broker:  broker,
		metrics: metrics,
		logger:  logger,
		drafts:  make(map[string]*draft),
	}
}

// Select binds the teacher's draft to a class and day. Uncommitted edits of a different
// previous selection are discarded and reported through DiscardedChanges.
func (s *DraftService) Select(ctx context.Context, teacherID string, req dto.SelectDayRequest) (*dto.DayView, error) {
	date, err := models.ParseDate(req.Date)
	if err != nil {
		return nil, appErrors.Field(appErrors.ErrValidation, "date", "date must use YYYY-MM-DD")
	}
	if _, err := s.classes.FindByID(ctx, teacherID, req.ClassID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "class not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load class")
	}

	s.mu.Lock()
	current := s.drafts[teacherID]
	s.mu.Unlock()
	if current != nil && current.store.ClassID() == req.ClassID && current.store.Date() == date {
		return s.view(current.store, false, false), nil
	}

	store := NewRecordStore(teacherID, req.ClassID, date, s.records, s.roster)
	if _, err := store.LoadDay(ctx); err != nil {
		return nil, err
	}
	next := &draft{store: store}
	next.unsubscribe = store.Subscribe(s.onStoreEvent)

	s.mu.Lock()
	previous := s.drafts[teacherID]
	s.drafts[teacherID] = next
	s.mu.Unlock()

	discarded := false
	if previous != nil {
		discarded = previous.store.Dirty()
		if discarded {
			s.logger.Warn("discarding uncommitted journal edits",
				zap.String("teacher_id", teacherID),
				zap.String("class_id", previous.store.ClassID()),
				zap.String("date", previous.store.Date().String()),
			)
		}
		previous.unsubscribe()
	}
	return s.view(store, discarded, false), nil
}

// Day returns the staged state of the current selection.
func (s *DraftService) Day(teacherID string) (*dto.DayView, error) {
	store, err := s.current(teacherID)
	if err != nil {
		return nil, err
	}
	return s.view(store, false, false), nil
}

// ApplyStatus appends a status mark for one student.
func (s *DraftService) ApplyStatus(teacherID string, req dto.ApplyStatusRequest) (*dto.DayView, error) {
	return s.edit(teacherID, func(store *RecordStore) error {
		return store.ApplyStatus(req.StudentID, req.Status)
	})
}

// ApplyStatusToAll gives every student exactly one status mark.
func (s *DraftService) ApplyStatusToAll(teacherID string, req dto.ApplyStatusAllRequest) (*dto.DayView, error) {
	return s.edit(teacherID, func(store *RecordStore) error {
		return store.ApplyStatusToAll(req.Status)
	})
}

// RemoveEvent drops one event from a student's record.
func (s *DraftService) RemoveEvent(teacherID, studentID, eventID string) (*dto.DayView, error) {
	return s.edit(teacherID, func(store *RecordStore) error {
		return store.RemoveEvent(studentID, eventID)
	})
}

// SetNote sets or clears one student's note.
func (s *DraftService) SetNote(teacherID string, req dto.SetNoteRequest) (*dto.DayView, error) {
	return s.edit(teacherID, func(store *RecordStore) error {
		return store.SetNote(req.StudentID, req.Text)
	})
}

// SetNoteForAll sets or clears every student's note.
func (s *DraftService) SetNoteForAll(teacherID string, req dto.SetNoteAllRequest) (*dto.DayView, error) {
	return s.edit(teacherID, func(store *RecordStore) error {
		return store.SetNoteForAll(req.Text)
	})
}

// Commit persists the staged day.
func (s *DraftService) Commit(ctx context.Context, teacherID string) (*dto.DayView, error) {
	store, err := s.current(teacherID)
	if err != nil {
		return nil, err
	}
	start := time.Now()
	written, err := store.Commit(ctx)
	if written || err != nil {
		s.metrics.ObserveCommit(err == nil, time.Since(start))
	}
	if err != nil {
		s.logger.Error("commit journal day failed",
			zap.String("teacher_id", teacherID),
			zap.String("class_id", store.ClassID()),
			zap.Error(err),
		)
		return nil, err
	}
	return s.view(store, false, written), nil
}

// Cancel restores the last committed state.
func (s *DraftService) Cancel(teacherID string) (*dto.DayView, error) {
	store, err := s.current(teacherID)
	if err != nil {
		return nil, err
	}
	store.Cancel()
	return s.view(store, false, false), nil
}

// Forget drops drafts bound to a class, used when the class or its roster changes.
func (s *DraftService) Forget(teacherID, classID string) {
	s.mu.Lock()
	current, ok := s.drafts[teacherID]
	if ok && current.store.ClassID() == classID {
		delete(s.drafts, teacherID)
	} else {
		current = nil
	}
	s.mu.Unlock()
	if current != nil {
		if current.store.Dirty() {
			s.logger.Warn("discarding uncommitted journal edits after class change",
				zap.String("teacher_id", teacherID),
				zap.String("class_id", classID),
			)
		}
		current.unsubscribe()
	}
}

func (s *DraftService) edit(teacherID string, fn func(*RecordStore) error) (*dto.DayView, error) {
	store, err := s.current(teacherID)
	if err != nil {
		return nil, err
	}
	if err := fn(store); err != nil {
		return nil, err
	}
	return s.view(store, false, false), nil
}

func (s *DraftService) current(teacherID string) (*RecordStore, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.drafts[teacherID]
	if !ok {
		return nil, appErrors.ErrNoSelection
	}
	return current.store, nil
}

func (s *DraftService) view(store *RecordStore, discarded, committed bool) *dto.DayView {
	students := store.Students()
	records := store.Records()
	byStudent := make(map[string]models.DailyRecord, len(records))
	for _, rec := range records {
		byStudent[rec.StudentID] = rec
	}
	entries := make([]dto.DayEntry, 0, len(students))
	for _, student := range students {
		entries = append(entries, dto.DayEntry{Student: student, Record: byStudent[student.ID]})
	}
	return &dto.DayView{
		ClassID:          store.ClassID(),
		Date:             store.Date(),
		Dirty:            store.Dirty(),
		DiscardedChanges: discarded,
		Committed:        committed,
		Entries:          entries,
	}
}

func (s *DraftService) onStoreEvent(evt StoreEvent) {
	if evt.Kind != StoreEventCommitted {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := s.cache.InvalidateClass(ctx, evt.TeacherID, evt.ClassID); err != nil {
		s.logger.Warn("invalidate analytics after commit", zap.String("class_id", evt.ClassID), zap.Error(err))
	}
	if s.broker == nil {
		return
	}
	payload, err := events.NewEvent(events.KindRecordsCommitted, map[string]interface{}{
		"class_id": evt.ClassID,
		"date":     evt.Date,
		"written":  evt.Written,
	})
	if err != nil {
		s.logger.Warn("build commit event", zap.Error(err))
		return
	}
	if err := s.broker.Publish(ctx, events.TeacherTopic(evt.TeacherID), payload); err != nil {
		s.logger.Warn("publish commit event", zap.String("teacher_id", evt.TeacherID), zap.Error(err))
	}
}
