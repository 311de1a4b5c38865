package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/teacher-journal-api/internal/dto"
	"github.com/noah-isme/teacher-journal-api/internal/models"
	"github.com/noah-isme/teacher-journal-api/pkg/events"
	appErrors "github.com/noah-isme/teacher-journal-api/pkg/errors"
)

type memReminders struct {
	mu    sync.Mutex
	items map[string]models.Reminder
	seq   int
}

func newMemReminders() *memReminders {
	return &memReminders{items: make(map[string]models.Reminder)}
}

func (m *memReminders) ListByTeacher(ctx context.Context, teacherID string) ([]models.Reminder, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Reminder
	for _, r := range m.items {
		if r.TeacherID == teacherID {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DueDate < out[j].DueDate })
	return out, nil
}

func (m *memReminders) FindByID(ctx context.Context, teacherID, id string) (*models.Reminder, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.items[id]
	if !ok || r.TeacherID != teacherID {
		return nil, sql.ErrNoRows
	}
	return &r, nil
}

func (m *memReminders) Create(ctx context.Context, reminder *models.Reminder) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	reminder.ID = fmt.Sprintf("reminder-%d", m.seq)
	m.items[reminder.ID] = *reminder
	return nil
}

func (m *memReminders) Update(ctx context.Context, reminder *models.Reminder) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[reminder.ID] = *reminder
	return nil
}

func (m *memReminders) Delete(ctx context.Context, teacherID, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.items[id]
	if !ok || r.TeacherID != teacherID {
		return sql.ErrNoRows
	}
	delete(m.items, id)
	return nil
}

func newReminderFixture(now time.Time) (*ReminderService, *events.LocalBroker, *[]events.Event) {
	broker := events.NewLocalBroker()
	received := &[]events.Event{}
	_, _ = broker.Subscribe(context.Background(), events.TeacherTopic(testTeacher), func(evt events.Event) {
		*received = append(*received, evt)
	})
	svc := NewReminderService(newMemReminders(), broker, nil, time.UTC, nil)
	svc.now = func() time.Time { return now }
	return svc, broker, received
}

func TestReminderServiceCreateValidatesAndPublishesBadge(t *testing.T) {
	now := time.Date(2024, 1, 10, 10, 0, 0, 0, time.UTC)
	svc, _, received := newReminderFixture(now)
	ctx := context.Background()

	_, err := svc.Create(ctx, testTeacher, dto.ReminderRequest{Title: "Grade essays", DueDate: "2024-01-10", Time: clock("25:00")})
	assert.ErrorIs(t, err, appErrors.ErrValidation)
	_, err = svc.Create(ctx, testTeacher, dto.ReminderRequest{Title: "   ", DueDate: "2024-01-10"})
	assert.ErrorIs(t, err, appErrors.ErrValidation)
	assert.Empty(t, *received)

	created, err := svc.Create(ctx, testTeacher, dto.ReminderRequest{Title: "Grade essays", DueDate: "2024-01-10", Time: clock("20:00")})
	require.NoError(t, err)
	assert.Equal(t, "20:00", *created.Time)

	require.Len(t, *received, 2)
	assert.Equal(t, events.KindRemindersChanged, (*received)[0].Kind)
	assert.Equal(t, events.KindRemindersBadge, (*received)[1].Kind)
	var badge models.ReminderBadge
	require.NoError(t, json.Unmarshal((*received)[1].Payload, &badge))
	assert.Equal(t, models.ReminderBadge{Count: 1, Tier: models.UrgencyVeryUrgent}, badge)
}

func TestReminderServiceListToggleDelete(t *testing.T) {
	now := time.Date(2024, 1, 10, 10, 0, 0, 0, time.UTC)
	svc, _, _ := newReminderFixture(now)
	ctx := context.Background()

	late, err := svc.Create(ctx, testTeacher, dto.ReminderRequest{Title: "Return books", DueDate: "2024-01-08"})
	require.NoError(t, err)
	_, err = svc.Create(ctx, testTeacher, dto.ReminderRequest{Title: "Trip forms", DueDate: "2024-03-01"})
	require.NoError(t, err)

	list, err := svc.List(ctx, testTeacher)
	require.NoError(t, err)
	require.Len(t, list.Reminders, 2)
	assert.Equal(t, models.UrgencyPastDue, list.Reminders[0].Urgency)
	assert.Equal(t, models.UrgencyNone, list.Reminders[1].Urgency)
	assert.Equal(t, models.ReminderBadge{Count: 1, Tier: models.UrgencyPastDue}, list.Badge)

	toggled, err := svc.Toggle(ctx, testTeacher, late.ID)
	require.NoError(t, err)
	assert.True(t, toggled.IsCompleted)
	badge, err := svc.Badge(ctx, testTeacher)
	require.NoError(t, err)
	assert.Equal(t, models.ReminderBadge{Tier: models.UrgencyNone}, badge)

	_, err = svc.Toggle(ctx, "other-teacher", late.ID)
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
	require.NoError(t, svc.Delete(ctx, testTeacher, late.ID))
	assert.ErrorIs(t, svc.Delete(ctx, testTeacher, late.ID), appErrors.ErrNotFound)
}

func TestReminderWatcherPublishesOnlyOnChange(t *testing.T) {
	now := time.Date(2024, 1, 10, 10, 0, 0, 0, time.UTC)
	svc, broker, received := newReminderFixture(now)
	ctx := context.Background()
	_, err := svc.Create(ctx, testTeacher, dto.ReminderRequest{Title: "Parent meeting", DueDate: "2024-01-11", Time: clock("12:00")})
	require.NoError(t, err)
	*received = nil

	watcher := NewReminderWatcher(svc, broker, broker, time.Minute, nil)
	assert.Equal(t, 1, watcher.Tick(ctx))
	assert.Equal(t, 0, watcher.Tick(ctx))

	svc.now = func() time.Time { return now.Add(3 * time.Hour) }
	assert.Equal(t, 1, watcher.Tick(ctx))

	require.Len(t, *received, 2)
	var badge models.ReminderBadge
	require.NoError(t, json.Unmarshal((*received)[1].Payload, &badge))
	assert.Equal(t, models.UrgencyVeryUrgent, badge.Tier)
}
