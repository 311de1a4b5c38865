package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/teacher-journal-api/internal/dto"
	"github.com/noah-isme/teacher-journal-api/pkg/response"
)

type journalService interface {
	Select(ctx context.Context, teacherID string, req dto.SelectDayRequest) (*dto.DayView, error)
	Day(teacherID string) (*dto.DayView, error)
	ApplyStatus(teacherID string, req dto.ApplyStatusRequest) (*dto.DayView, error)
	ApplyStatusToAll(teacherID string, req dto.ApplyStatusAllRequest) (*dto.DayView, error)
	RemoveEvent(teacherID, studentID, eventID string) (*dto.DayView, error)
	SetNote(teacherID string, req dto.SetNoteRequest) (*dto.DayView, error)
	SetNoteForAll(teacherID string, req dto.SetNoteAllRequest) (*dto.DayView, error)
	Commit(ctx context.Context, teacherID string) (*dto.DayView, error)
	Cancel(teacherID string) (*dto.DayView, error)
}

// JournalHandler exposes the staged daily journal.
type JournalHandler struct {
	service journalService
}

// NewJournalHandler constructs a journal handler.
func NewJournalHandler(svc journalService) *JournalHandler {
	return &JournalHandler{service: svc}
}

// Select godoc
// @Summary Select the class and day to edit
// @Tags Journal
// @Accept json
// @Produce json
// @Param payload body dto.SelectDayRequest true "Selection"
// @Success 200 {object} response.Envelope
// @Router /journal/select [post]
func (h *JournalHandler) Select(c *gin.Context) {
	var req dto.SelectDayRequest
	if !bindJSON(c, &req) {
		return
	}
	view, err := h.service.Select(c.Request.Context(), teacherID(c), req)
	h.respond(c, view, err)
}

// Day godoc
// @Summary Current staged day
// @Tags Journal
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /journal/day [get]
func (h *JournalHandler) Day(c *gin.Context) {
	view, err := h.service.Day(teacherID(c))
	h.respond(c, view, err)
}

// ApplyStatus godoc
// @Summary Append a status mark for a student
// @Tags Journal
// @Accept json
// @Produce json
// @Param payload body dto.ApplyStatusRequest true "Status"
// @Success 200 {object} response.Envelope
// @Router /journal/status [post]
func (h *JournalHandler) ApplyStatus(c *gin.Context) {
	var req dto.ApplyStatusRequest
	if !bindJSON(c, &req) {
		return
	}
	view, err := h.service.ApplyStatus(teacherID(c), req)
	h.respond(c, view, err)
}

// ApplyStatusToAll godoc
// @Summary Replace every student's marks with one status
// @Tags Journal
// @Accept json
// @Produce json
// @Param payload body dto.ApplyStatusAllRequest true "Status"
// @Success 200 {object} response.Envelope
// @Router /journal/status/all [post]
func (h *JournalHandler) ApplyStatusToAll(c *gin.Context) {
	var req dto.ApplyStatusAllRequest
	if !bindJSON(c, &req) {
		return
	}
	view, err := h.service.ApplyStatusToAll(teacherID(c), req)
	h.respond(c, view, err)
}

// RemoveEvent godoc
// @Summary Remove one event from a student's record
// @Tags Journal
// @Produce json
// @Param eventId path string true "Event ID"
// @Param studentId query string true "Student ID"
// @Success 200 {object} response.Envelope
// @Router /journal/events/{eventId} [delete]
func (h *JournalHandler) RemoveEvent(c *gin.Context) {
	var req dto.RemoveEventRequest
	if !bindQuery(c, &req) {
		return
	}
	view, err := h.service.RemoveEvent(teacherID(c), req.StudentID, c.Param("eventId"))
	h.respond(c, view, err)
}

// SetNote godoc
// @Summary Set or clear a student's note
// @Tags Journal
// @Accept json
// @Produce json
// @Param payload body dto.SetNoteRequest true "Note"
// @Success 200 {object} response.Envelope
// @Router /journal/note [put]
func (h *JournalHandler) SetNote(c *gin.Context) {
	var req dto.SetNoteRequest
	if !bindJSON(c, &req) {
		return
	}
	view, err := h.service.SetNote(teacherID(c), req)
	h.respond(c, view, err)
}

// SetNoteForAll godoc
// @Summary Set or clear every student's note
// @Tags Journal
// @Accept json
// @Produce json
// @Param payload body dto.SetNoteAllRequest true "Note"
// @Success 200 {object} response.Envelope
// @Router /journal/note/all [put]
func (h *JournalHandler) SetNoteForAll(c *gin.Context) {
	var req dto.SetNoteAllRequest
	if !bindJSON(c, &req) {
		return
	}
	view, err := h.service.SetNoteForAll(teacherID(c), req)
	h.respond(c, view, err)
}

// Commit godoc
// @Summary Persist the staged day
// @Tags Journal
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /journal/commit [post]
func (h *JournalHandler) Commit(c *gin.Context) {
	view, err := h.service.Commit(c.Request.Context(), teacherID(c))
	h.respond(c, view, err)
}

// Cancel godoc
// @Summary Discard staged edits
// @Tags Journal
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /journal/cancel [post]
func (h *JournalHandler) Cancel(c *gin.Context) {
	view, err := h.service.Cancel(teacherID(c))
	h.respond(c, view, err)
}

func (h *JournalHandler) respond(c *gin.Context, view *dto.DayView, err error) {
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, view, nil)
}
