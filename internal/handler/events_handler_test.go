package handler

import (
	"bufio"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/teacher-journal-api/internal/middleware"
	"github.com/noah-isme/teacher-journal-api/internal/models"
	"github.com/noah-isme/teacher-journal-api/internal/service"
	"github.com/noah-isme/teacher-journal-api/pkg/events"
)

func TestEventsHandlerStreamsTeacherEvents(t *testing.T) {
	gin.SetMode(gin.TestMode)
	broker := events.NewLocalBroker()
	metrics := service.NewMetricsService()
	handler := NewEventsHandler(broker, metrics, nil)

	router := gin.New()
	router.GET("/events", func(c *gin.Context) {
		c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "teacher-1"})
		c.Next()
	}, handler.Stream)
	server := httptest.NewServer(router)
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, server.URL+"/events", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	reader := bufio.NewReader(resp.Body)
	readUntil := func(prefix string) string {
		for {
			line, err := reader.ReadString('\n')
			require.NoError(t, err)
			if strings.HasPrefix(line, prefix) {
				return line
			}
		}
	}
	readUntil("event:ready")
	assert.Equal(t, int64(1), metrics.Snapshot().EventSubscribers)

	other, err := events.NewEvent(events.KindNotesChanged, map[string]string{"note_id": "n-1"})
	require.NoError(t, err)
	require.NoError(t, broker.Publish(ctx, events.TeacherTopic("teacher-2"), other))
	evt, err := events.NewEvent(events.KindRecordsCommitted, map[string]string{"class_id": "class-1"})
	require.NoError(t, err)
	require.NoError(t, broker.Publish(ctx, events.TeacherTopic("teacher-1"), evt))

	line := readUntil("event:")
	assert.Equal(t, "event:"+events.KindRecordsCommitted+"\n", line)
	data := readUntil("data:")
	assert.Contains(t, data, `"class_id":"class-1"`)

	cancel()
	require.Eventually(t, func() bool {
		return len(broker.Topics()) == 0
	}, 2*time.Second, 10*time.Millisecond)
}
