package handler

import (
	"context"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/teacher-journal-api/internal/dto"
	"github.com/noah-isme/teacher-journal-api/internal/models"
	appErrors "github.com/noah-isme/teacher-journal-api/pkg/errors"
)

type journalServiceMock struct {
	view      *dto.DayView
	err       error
	teacher   string
	status    dto.ApplyStatusRequest
	removed   [2]string
	committed bool
}

func (m *journalServiceMock) Select(ctx context.Context, teacherID string, req dto.SelectDayRequest) (*dto.DayView, error) {
	m.teacher = teacherID
	return m.view, m.err
}

func (m *journalServiceMock) Day(teacherID string) (*dto.DayView, error) {
	m.teacher = teacherID
	return m.view, m.err
}

func (m *journalServiceMock) ApplyStatus(teacherID string, req dto.ApplyStatusRequest) (*dto.DayView, error) {
	m.teacher = teacherID
	m.status = req
	return m.view, m.err
}

func (m *journalServiceMock) ApplyStatusToAll(teacherID string, req dto.ApplyStatusAllRequest) (*dto.DayView, error) {
	return m.view, m.err
}

func (m *journalServiceMock) RemoveEvent(teacherID, studentID, eventID string) (*dto.DayView, error) {
	m.removed = [2]string{studentID, eventID}
	return m.view, m.err
}

func (m *journalServiceMock) SetNote(teacherID string, req dto.SetNoteRequest) (*dto.DayView, error) {
	return m.view, m.err
}

func (m *journalServiceMock) SetNoteForAll(teacherID string, req dto.SetNoteAllRequest) (*dto.DayView, error) {
	return m.view, m.err
}

func (m *journalServiceMock) Commit(ctx context.Context, teacherID string) (*dto.DayView, error) {
	m.committed = true
	return m.view, m.err
}

func (m *journalServiceMock) Cancel(teacherID string) (*dto.DayView, error) {
	return m.view, m.err
}

func TestJournalHandlerApplyStatus(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &journalServiceMock{view: &dto.DayView{ClassID: "class-1", Date: "2024-01-10", Dirty: true}}
	handler := NewJournalHandler(mockSvc)

	c, w := newGinContext(http.MethodPost, "/journal/status", []byte(`{"studentId":"s-1","status":"+"}`))
	asTeacher(c, "teacher-1")

	handler.ApplyStatus(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "teacher-1", mockSvc.teacher)
	assert.Equal(t, models.StatusPlus, mockSvc.status.Status)
	assert.Contains(t, w.Body.String(), `"dirty":true`)
}

func TestJournalHandlerWithoutSelection(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewJournalHandler(&journalServiceMock{err: appErrors.ErrNoSelection})

	c, w := newGinContext(http.MethodGet, "/journal/day", nil)
	asTeacher(c, "teacher-1")

	handler.Day(c)
	require.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "NO_SELECTION")
}

func TestJournalHandlerRemoveEventNeedsStudent(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &journalServiceMock{view: &dto.DayView{}}
	handler := NewJournalHandler(mockSvc)

	c, w := newGinContext(http.MethodDelete, "/journal/events/evt-1?studentId=s-1", nil)
	c.Params = gin.Params{{Key: "eventId", Value: "evt-1"}}
	asTeacher(c, "teacher-1")
	handler.RemoveEvent(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, [2]string{"s-1", "evt-1"}, mockSvc.removed)
}

func TestJournalHandlerCommit(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &journalServiceMock{view: &dto.DayView{Committed: true}}
	handler := NewJournalHandler(mockSvc)

	c, w := newGinContext(http.MethodPost, "/journal/commit", nil)
	asTeacher(c, "teacher-1")
	handler.Commit(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, mockSvc.committed)
	assert.Contains(t, w.Body.String(), `"committed":true`)
}
