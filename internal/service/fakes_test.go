package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/noah-isme/teacher-journal-api/internal/models"
	"github.com/noah-isme/teacher-journal-api/pkg/ai"
	appErrors "github.com/noah-isme/teacher-journal-api/pkg/errors"
)

type memClasses struct {
	mu      sync.Mutex
	classes map[string]models.Class
	deleted []string
}

func newMemClasses(classes ...models.Class) *memClasses {
	m := &memClasses{classes: make(map[string]models.Class)}
	for _, c := range classes {
		m.classes[c.ID] = c
	}
	return m
}

func (m *memClasses) List(ctx context.Context, filter models.ClassFilter) ([]models.Class, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Class
	for _, c := range m.classes {
		if c.TeacherID == filter.TeacherID {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, len(out), nil
}

func (m *memClasses) FindByID(ctx context.Context, teacherID, id string) (*models.Class, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.classes[id]
	if !ok || c.TeacherID != teacherID {
		return nil, sql.ErrNoRows
	}
	return &c, nil
}

func (m *memClasses) ExistsByName(ctx context.Context, teacherID, name, excludeID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.classes {
		if c.TeacherID == teacherID && strings.EqualFold(c.Name, name) && c.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (m *memClasses) Create(ctx context.Context, class *models.Class) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if class.ID == "" {
		class.ID = fmt.Sprintf("class-%d", len(m.classes)+1)
	}
	m.classes[class.ID] = *class
	return nil
}

func (m *memClasses) Update(ctx context.Context, class *models.Class) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.classes[class.ID]; !ok {
		return sql.ErrNoRows
	}
	m.classes[class.ID] = *class
	return nil
}

func (m *memClasses) Delete(ctx context.Context, teacherID, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.classes[id]
	if !ok || c.TeacherID != teacherID {
		return sql.ErrNoRows
	}
	delete(m.classes, id)
	m.deleted = append(m.deleted, id)
	return nil
}

type memStudents struct {
	mu       sync.Mutex
	students []models.Student
	seq      int
}

func (m *memStudents) ListByClass(ctx context.Context, classID string) ([]models.Student, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Student
	for _, s := range m.students {
		if s.ClassID == classID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (m *memStudents) FindByID(ctx context.Context, classID, id string) (*models.Student, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.students {
		if s.ID == id && s.ClassID == classID {
			copied := s
			return &copied, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *memStudents) ExistsByNumber(ctx context.Context, classID, number, excludeID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.students {
		if s.ClassID == classID && s.StudentNumber == number && s.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (m *memStudents) Create(ctx context.Context, student *models.Student) error {
	return m.CreateMany(ctx, []*models.Student{student})
}

func (m *memStudents) CreateMany(ctx context.Context, students []*models.Student) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range students {
		m.seq++
		if s.ID == "" {
			s.ID = fmt.Sprintf("student-%d", m.seq)
		}
		m.students = append(m.students, *s)
	}
	return nil
}

func (m *memStudents) Update(ctx context.Context, student *models.Student) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, s := range m.students {
		if s.ID == student.ID && s.ClassID == student.ClassID {
			m.students[i] = *student
			return nil
		}
	}
	return sql.ErrNoRows
}

func (m *memStudents) Delete(ctx context.Context, classID, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, s := range m.students {
		if s.ID == id && s.ClassID == classID {
			m.students = append(m.students[:i], m.students[i+1:]...)
			return nil
		}
	}
	return sql.ErrNoRows
}

type recordKey struct {
	studentID string
	classID   string
	date      models.Date
}

// memRecords enforces one record per (student, class, date) like the unique index.
type memRecords struct {
	mu       sync.Mutex
	rows     map[recordKey]models.DailyRecord
	writes   int
	failNext error
	seq      int
}

func newMemRecords() *memRecords {
	return &memRecords{rows: make(map[recordKey]models.DailyRecord)}
}

func (m *memRecords) put(rec models.DailyRecord) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	if rec.ID == "" {
		rec.ID = fmt.Sprintf("record-%d", m.seq)
	}
	m.rows[recordKey{rec.StudentID, rec.ClassID, rec.Date}] = cloneRecord(rec)
}

func (m *memRecords) get(studentID, classID string, date models.Date) (models.DailyRecord, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.rows[recordKey{studentID, classID, date}]
	return cloneRecord(rec), ok
}

func (m *memRecords) ListDay(ctx context.Context, teacherID, classID string, date models.Date) ([]models.DailyRecord, error) {
	return m.ListRange(ctx, models.RecordFilter{TeacherID: teacherID, ClassID: classID, From: date, To: date})
}

func (m *memRecords) ListRange(ctx context.Context, filter models.RecordFilter) ([]models.DailyRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.DailyRecord
	for _, rec := range m.rows {
		if rec.TeacherID != filter.TeacherID || rec.ClassID != filter.ClassID {
			continue
		}
		if filter.StudentID != "" && rec.StudentID != filter.StudentID {
			continue
		}
		if rec.Date < filter.From || rec.Date > filter.To {
			continue
		}
		out = append(out, cloneRecord(rec))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out, nil
}

func (m *memRecords) UpsertMany(ctx context.Context, records []models.DailyRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failNext != nil {
		err := m.failNext
		m.failNext = nil
		return err
	}
	now := time.Date(2024, 1, 10, 12, 0, 0, 0, time.UTC)
	for i := range records {
		key := recordKey{records[i].StudentID, records[i].ClassID, records[i].Date}
		if existing, ok := m.rows[key]; ok {
			records[i].ID = existing.ID
			records[i].CreatedAt = existing.CreatedAt
		} else {
			m.seq++
			records[i].ID = fmt.Sprintf("record-%d", m.seq)
			records[i].CreatedAt = now
		}
		records[i].UpdatedAt = now
		m.rows[key] = cloneRecord(records[i])
	}
	m.writes++
	return nil
}

var errBoom = errors.New("boom")

func seqIDs(prefix string) func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("%s-%d", prefix, n)
	}
}

type fakeCacheRepo struct {
	mu              sync.Mutex
	values          map[string][]byte
	deletedPatterns []string
}

func newFakeCacheRepo() *fakeCacheRepo {
	return &fakeCacheRepo{values: make(map[string][]byte)}
}

func (f *fakeCacheRepo) Get(ctx context.Context, key string, dest interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	raw, ok := f.values[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (f *fakeCacheRepo) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.values[key] = raw
	return nil
}

func (f *fakeCacheRepo) DeleteByPattern(ctx context.Context, pattern string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deletedPatterns = append(f.deletedPatterns, pattern)
	prefix := strings.TrimSuffix(pattern, "*")
	deleted := 0
	for key := range f.values {
		if strings.HasPrefix(key, prefix) {
			delete(f.values, key)
			deleted++
		}
	}
	return deleted, nil
}

type stubAI struct {
	raw   string
	err   error
	calls []ai.Request
}

func (s *stubAI) Generate(ctx context.Context, req ai.Request) (json.RawMessage, error) {
	s.calls = append(s.calls, req)
	if s.err != nil {
		return nil, s.err
	}
	return json.RawMessage(s.raw), nil
}
