package handler

import (
	"io"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/noah-isme/teacher-journal-api/internal/service"
	appErrors "github.com/noah-isme/teacher-journal-api/pkg/errors"
	"github.com/noah-isme/teacher-journal-api/pkg/events"
	"github.com/noah-isme/teacher-journal-api/pkg/response"
)

const (
	eventBuffer       = 32
	heartbeatInterval = 25 * time.Second
)

// EventsHandler streams a teacher's change events as server-sent events.
type EventsHandler struct {
	broker    events.Broker
	metrics   *service.MetricsService
	logger    *zap.Logger
	heartbeat time.Duration
}

// NewEventsHandler constructs the event stream handler.
func NewEventsHandler(broker events.Broker, metrics *service.MetricsService, logger *zap.Logger) *EventsHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EventsHandler{broker: broker, metrics: metrics, logger: logger, heartbeat: heartbeatInterval}
}

// Stream godoc
// @Summary Stream change events until the client disconnects
// @Tags Events
// @Produce text/event-stream
// @Param access_token query string false "Access token for clients that cannot send headers"
// @Success 200
// @Router /events [get]
func (h *EventsHandler) Stream(c *gin.Context) {
	teacher := teacherID(c)
	ctx := c.Request.Context()

	incoming := make(chan events.Event, eventBuffer)
	unsubscribe, err := h.broker.Subscribe(ctx, events.TeacherTopic(teacher), func(evt events.Event) {
		select {
		case incoming <- evt:
		default:
			h.logger.Warn("event stream backlog full, dropping event", zap.String("teacher_id", teacher), zap.String("kind", evt.Kind))
		}
	})
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to subscribe to events"))
		return
	}
	defer unsubscribe()

	h.metrics.StreamOpened()
	defer h.metrics.StreamClosed()

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	ticker := time.NewTicker(h.heartbeat)
	defer ticker.Stop()

	c.SSEvent("ready", gin.H{"teacher_id": teacher})
	c.Writer.Flush()
	c.Stream(func(w io.Writer) bool {
		select {
		case <-ctx.Done():
			return false
		case evt := <-incoming:
			c.SSEvent(evt.Kind, evt)
			return true
		case <-ticker.C:
			c.SSEvent("ping", gin.H{"at": time.Now().UTC()})
			return true
		}
	})
}
