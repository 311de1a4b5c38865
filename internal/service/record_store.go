package service

import (
	"context"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/noah-isme/teacher-journal-api/internal/models"
	appErrors "github.com/noah-isme/teacher-journal-api/pkg/errors"
)

type dailyRecordStore interface {
	ListDay(ctx context.Context, teacherID, classID string, date models.Date) ([]models.DailyRecord, error)
	ListRange(ctx context.Context, filter models.RecordFilter) ([]models.DailyRecord, error)
	UpsertMany(ctx context.Context, records []models.DailyRecord) error
}

type rosterReader interface {
	ListByClass(ctx context.Context, classID string) ([]models.Student, error)
}

// StoreEventKind names a RecordStore state change.
type StoreEventKind string

const (
	StoreEventDirty     StoreEventKind = "dirty"
	StoreEventCommitted StoreEventKind = "committed"
	StoreEventCancelled StoreEventKind = "cancelled"
	StoreEventReloaded  StoreEventKind = "reloaded"
)

// StoreEvent is delivered to RecordStore subscribers after the state changed.
type StoreEvent struct {
	Kind      StoreEventKind
	TeacherID string
	ClassID   string
	Date      models.Date
	Written   int
}

// RecordStore stages edits to one class's records for one day. Edits stay in memory
// until Commit writes every touched record in one transaction; Cancel restores the
// snapshot taken at the last load or commit.
type RecordStore struct {
	teacherID string
	classID   string
	date      models.Date
	records   dailyRecordStore
	roster    rosterReader
	newID     func() string

	mu        sync.Mutex
	students  []models.Student
	current   map[string]*models.DailyRecord
	committed map[string]models.DailyRecord
	dirty     bool
	gen       uint64
	observers map[int]func(StoreEvent)
	nextObs   int
}

// NewRecordStore builds an empty store for (teacher, class, date). Call LoadDay before editing.
func NewRecordStore(teacherID, classID string, date models.Date, records dailyRecordStore, roster rosterReader) *RecordStore {
	return &RecordStore{
		teacherID: teacherID,
		classID:   classID,
		date:      date,
		records:   records,
		roster:    roster,
		newID:     uuid.NewString,
		current:   make(map[string]*models.DailyRecord),
		committed: make(map[string]models.DailyRecord),
		observers: make(map[int]func(StoreEvent)),
	}
}

// ClassID returns the class the store is bound to.
func (s *RecordStore) ClassID() string { return s.classID }

// Date returns the day the store is bound to.
func (s *RecordStore) Date() models.Date { return s.date }

// LoadDay reads the roster and the day's records. Students without a stored record get an
// empty in-memory one that is only written once it holds events.
func (s *RecordStore) LoadDay(ctx context.Context) ([]models.DailyRecord, error) {
	students, err := s.roster.ListByClass(ctx, s.classID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load class roster")
	}
	stored, err := s.records.ListDay(ctx, s.teacherID, s.classID, s.date)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load daily records")
	}
	SortStudents(students)

	byStudent := make(map[string]models.DailyRecord, len(stored))
	for _, rec := range stored {
		byStudent[rec.StudentID] = rec
	}

	s.mu.Lock()
	s.students = students
	s.committed = make(map[string]models.DailyRecord, len(students))
	for _, student := range students {
		rec, ok := byStudent[student.ID]
		if !ok {
			rec = models.DailyRecord{
				TeacherID: s.teacherID,
				StudentID: student.ID,
				ClassID:   s.classID,
				Date:      s.date,
				Events:    models.RecordEvents{},
			}
		}
		s.committed[student.ID] = cloneRecord(rec)
	}
	s.restoreLocked()
	snapshot := s.snapshotLocked()
	observers := s.observersLocked()
	s.mu.Unlock()

	s.notify(observers, StoreEvent{Kind: StoreEventReloaded})
	return snapshot, nil
}

// Records returns a copy of the staged records in roster order.
func (s *RecordStore) Records() []models.DailyRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Students returns the roster in student-number order.
func (s *RecordStore) Students() []models.Student {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Student, len(s.students))
	copy(out, s.students)
	return out
}

// Dirty reports whether there are uncommitted edits.
func (s *RecordStore) Dirty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dirty
}

// ApplyStatus appends a status mark; earlier marks of the day are kept.
func (s *RecordStore) ApplyStatus(studentID string, status models.Status) error {
	if !status.Valid() {
		return unknownStatus(status)
	}
	return s.mutate(func() error {
		rec, err := s.recordLocked(studentID)
		if err != nil {
			return err
		}
		rec.Events = append(rec.Events, models.RecordEvent{ID: s.newID(), Type: models.EventTypeStatus, Value: string(status)})
		return nil
	})
}

// ApplyStatusToAll leaves every student with exactly one status mark. Notes are untouched.
func (s *RecordStore) ApplyStatusToAll(status models.Status) error {
	if !status.Valid() {
		return unknownStatus(status)
	}
	return s.mutate(func() error {
		for _, student := range s.students {
			rec := s.current[student.ID]
			rec.Events = append(withoutType(rec.Events, models.EventTypeStatus),
				models.RecordEvent{ID: s.newID(), Type: models.EventTypeStatus, Value: string(status)})
		}
		return nil
	})
}

// RemoveEvent drops one event from a student's record.
func (s *RecordStore) RemoveEvent(studentID, eventID string) error {
	return s.mutate(func() error {
		rec, err := s.recordLocked(studentID)
		if err != nil {
			return err
		}
		kept := make(models.RecordEvents, 0, len(rec.Events))
		for _, evt := range rec.Events {
			if evt.ID != eventID {
				kept = append(kept, evt)
			}
		}
		if len(kept) == len(rec.Events) {
			return appErrors.Clone(appErrors.ErrNotFound, "event not found")
		}
		rec.Events = kept
		return nil
	})
}

// SetNote replaces the student's note; blank text removes it. A record never holds more than one note.
func (s *RecordStore) SetNote(studentID, text string) error {
	return s.mutate(func() error {
		rec, err := s.recordLocked(studentID)
		if err != nil {
			return err
		}
		s.setNoteLocked(rec, text)
		return nil
	})
}

// SetNoteForAll applies SetNote to every student.
func (s *RecordStore) SetNoteForAll(text string) error {
	return s.mutate(func() error {
		for _, student := range s.students {
			s.setNoteLocked(s.current[student.ID], text)
		}
		return nil
	})
}

// Commit writes the staged day in one transaction and reports whether anything was written.
// A clean store performs no write. On failure the edits stay staged. Edits made while the
// write is in flight are not part of it and leave the store dirty.
func (s *RecordStore) Commit(ctx context.Context) (bool, error) {
	s.mu.Lock()
	if !s.dirty {
		s.mu.Unlock()
		return false, nil
	}
	gen := s.gen
	written := make(map[string]models.DailyRecord, len(s.current))
	pending := make([]models.DailyRecord, 0, len(s.students))
	for id, rec := range s.current {
		written[id] = cloneRecord(*rec)
	}
	for _, student := range s.students {
		rec := s.current[student.ID]
		if !rec.Persisted() && len(rec.Events) == 0 {
			continue
		}
		pending = append(pending, cloneRecord(*rec))
	}
	s.mu.Unlock()

	if err := s.records.UpsertMany(ctx, pending); err != nil {
		return false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to commit daily records")
	}

	s.mu.Lock()
	for _, rec := range pending {
		written[rec.StudentID] = cloneRecord(rec)
		if cur, ok := s.current[rec.StudentID]; ok {
			cur.ID = rec.ID
			cur.CreatedAt = rec.CreatedAt
			cur.UpdatedAt = rec.UpdatedAt
		}
	}
	s.committed = written
	switch {
	case s.gen == gen:
		s.dirty = false
	case !s.dirty:
		// cancelled mid-write: the restore target is what was just written
		s.restoreLocked()
	}
	observers := s.observersLocked()
	s.mu.Unlock()

	s.notify(observers, StoreEvent{Kind: StoreEventCommitted, Written: len(pending)})
	return true, nil
}

// Cancel discards staged edits and restores the last committed state.
func (s *RecordStore) Cancel() {
	s.mu.Lock()
	wasDirty := s.dirty
	s.restoreLocked()
	observers := s.observersLocked()
	s.mu.Unlock()

	if wasDirty {
		s.notify(observers, StoreEvent{Kind: StoreEventCancelled})
	}
}

// Subscribe registers fn for state changes until the returned func is called.
func (s *RecordStore) Subscribe(fn func(StoreEvent)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextObs++
	id := s.nextObs
	s.observers[id] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.observers, id)
	}
}

func (s *RecordStore) mutate(fn func() error) error {
	s.mu.Lock()
	if err := fn(); err != nil {
		s.mu.Unlock()
		return err
	}
	becameDirty := !s.dirty
	s.dirty = true
	s.gen++
	observers := s.observersLocked()
	s.mu.Unlock()

	if becameDirty {
		s.notify(observers, StoreEvent{Kind: StoreEventDirty})
	}
	return nil
}

func (s *RecordStore) recordLocked(studentID string) (*models.DailyRecord, error) {
	rec, ok := s.current[studentID]
	if !ok {
		return nil, appErrors.Field(appErrors.ErrValidation, "studentId", "student is not in this class")
	}
	return rec, nil
}

func (s *RecordStore) setNoteLocked(rec *models.DailyRecord, text string) {
	rec.Events = withoutType(rec.Events, models.EventTypeNote)
	if trimmed := strings.TrimSpace(text); trimmed != "" {
		rec.Events = append(rec.Events, models.RecordEvent{ID: s.newID(), Type: models.EventTypeNote, Value: trimmed})
	}
}

func (s *RecordStore) restoreLocked() {
	s.current = make(map[string]*models.DailyRecord, len(s.committed))
	for id, rec := range s.committed {
		copied := cloneRecord(rec)
		s.current[id] = &copied
	}
	s.dirty = false
	s.gen++
}

func (s *RecordStore) snapshotLocked() []models.DailyRecord {
	out := make([]models.DailyRecord, 0, len(s.students))
	for _, student := range s.students {
		if rec, ok := s.current[student.ID]; ok {
			out = append(out, cloneRecord(*rec))
		}
	}
	return out
}

func (s *RecordStore) observersLocked() []func(StoreEvent) {
	out := make([]func(StoreEvent), 0, len(s.observers))
	for _, fn := range s.observers {
		out = append(out, fn)
	}
	return out
}

func (s *RecordStore) notify(observers []func(StoreEvent), evt StoreEvent) {
	evt.TeacherID = s.teacherID
	evt.ClassID = s.classID
	evt.Date = s.date
	for _, fn := range observers {
		fn(evt)
	}
}

func withoutType(events models.RecordEvents, t models.EventType) models.RecordEvents {
	kept := make(models.RecordEvents, 0, len(events))
	for _, evt := range events {
		if evt.Type != t {
			kept = append(kept, evt)
		}
	}
	return kept
}

func cloneRecord(rec models.DailyRecord) models.DailyRecord {
	events := make(models.RecordEvents, len(rec.Events))
	copy(events, rec.Events)
	rec.Events = events
	return rec
}

func unknownStatus(status models.Status) error {
	return appErrors.Field(appErrors.ErrValidation, "status", "unknown status "+string(status))
}
