package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/teacher-journal-api/internal/models"
	"github.com/noah-isme/teacher-journal-api/pkg/events"
)

type topicLister interface {
	Topics() []string
}

type badgeSource interface {
	Badge(ctx context.Context, teacherID string) (models.ReminderBadge, error)
}

// ReminderWatcher recomputes badges on a ticker for teachers with a live subscription so
// tiers move as time passes. A badge is published only when it differs from the last one sent.
type ReminderWatcher struct {
	reminders badgeSource
	broker    events.Broker
	topics    topicLister
	interval  time.Duration
	logger    *zap.Logger

	mu   sync.Mutex
	last map[string]models.ReminderBadge
}

// NewReminderWatcher constructs a watcher. A non-positive interval means one minute.
func NewReminderWatcher(reminders badgeSource, broker events.Broker, topics topicLister, interval time.Duration, logger *zap.Logger) *ReminderWatcher {
	if interval <= 0 {
		interval = time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReminderWatcher{
		reminders: reminders,
		broker:    broker,
		topics:    topics,
		interval:  interval,
		logger:    logger,
		last:      make(map[string]models.ReminderBadge),
	}
}

// Start runs the ticker until ctx is cancelled.
func (w *ReminderWatcher) Start(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				w.Tick(ctx)
			}
		}
	}()
}

// Tick recomputes once for every subscribed teacher and returns how many badges were published.
func (w *ReminderWatcher) Tick(ctx context.Context) int {
	published := 0
	live := make(map[string]struct{})
	for _, topic := range w.topics.Topics() {
		teacherID, ok := strings.CutPrefix(topic, events.TeacherTopic(""))
		if !ok || teacherID == "" {
			continue
		}
		live[teacherID] = struct{}{}

		badge, err := w.reminders.Badge(ctx, teacherID)
		if err != nil {
			w.logger.Warn("reminder badge recompute failed", zap.String("teacher_id", teacherID), zap.Error(err))
			continue
		}
		w.mu.Lock()
		previous, seen := w.last[teacherID]
		w.last[teacherID] = badge
		w.mu.Unlock()
		if seen && previous == badge {
			continue
		}

		evt, err := events.NewEvent(events.KindRemindersBadge, badge)
		if err != nil {
			continue
		}
		if err := w.broker.Publish(ctx, events.TeacherTopic(teacherID), evt); err != nil {
			w.logger.Warn("publish reminder badge", zap.String("teacher_id", teacherID), zap.Error(err))
			continue
		}
		published++
	}

	w.mu.Lock()
	for teacherID := range w.last {
		if _, ok := live[teacherID]; !ok {
			delete(w.last, teacherID)
		}
	}
	w.mu.Unlock()
	return published
}
