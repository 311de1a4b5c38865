package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/teacher-journal-api/internal/dto"
	"github.com/noah-isme/teacher-journal-api/internal/middleware"
	"github.com/noah-isme/teacher-journal-api/internal/models"
	"github.com/noah-isme/teacher-journal-api/pkg/response"
)

type noteService interface {
	List(ctx context.Context, filter models.NoteFilter) ([]models.Note, *models.Pagination, error)
	Get(ctx context.Context, teacherID, id string) (*models.Note, error)
	Create(ctx context.Context, teacherID string, req dto.NoteRequest) (*models.Note, error)
	Update(ctx context.Context, teacherID, id string, req dto.NoteRequest) (*models.Note, error)
	TogglePin(ctx context.Context, teacherID, id string) (*models.Note, error)
	Delete(ctx context.Context, teacherID, id string) error
	FromTranscript(ctx context.Context, teacherID string, req dto.TranscriptRequest) (*models.Note, bool, error)
}

// NoteHandler exposes the teacher's sticky notes.
type NoteHandler struct {
	service noteService
}

// NewNoteHandler constructs a note handler.
func NewNoteHandler(svc noteService) *NoteHandler {
	return &NoteHandler{service: svc}
}

// List godoc
// @Summary List notes, pinned first
// @Tags Notes
// @Produce json
// @Param q query string false "Search"
// @Param type query string false "text or checklist"
// @Param page query int false "Page"
// @Param pageSize query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /notes [get]
func (h *NoteHandler) List(c *gin.Context) {
	teacher := teacherID(c)
	if teacher == "" {
		response.JSON(c, http.StatusOK, []models.Note{}, nil)
		return
	}
	var query dto.NoteQuery
	if !bindQuery(c, &query) {
		return
	}
	notes, pagination, err := h.service.List(c.Request.Context(), models.NoteFilter{
		TeacherID: teacher,
		Search:    strings.TrimSpace(query.Search),
		Type:      query.Type,
		Page:      query.Page,
		PageSize:  query.PageSize,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, notes, pagination)
}

// Get godoc
// @Summary Get note
// @Tags Notes
// @Produce json
// @Param id path string true "Note ID"
// @Success 200 {object} response.Envelope
// @Router /notes/{id} [get]
func (h *NoteHandler) Get(c *gin.Context) {
	note, err := h.service.Get(c.Request.Context(), teacherID(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, note, nil)
}

// Create godoc
// @Summary Create note
// @Tags Notes
// @Accept json
// @Produce json
// @Param payload body dto.NoteRequest true "Note"
// @Success 201 {object} response.Envelope
// @Router /notes [post]
func (h *NoteHandler) Create(c *gin.Context) {
	var req dto.NoteRequest
	if !bindJSON(c, &req) {
		return
	}
	note, err := h.service.Create(c.Request.Context(), teacherID(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, note)
}

// Update godoc
// @Summary Replace note
// @Tags Notes
// @Accept json
// @Produce json
// @Param id path string true "Note ID"
// @Param payload body dto.NoteRequest true "Note"
// @Success 200 {object} response.Envelope
// @Router /notes/{id} [put]
func (h *NoteHandler) Update(c *gin.Context) {
	var req dto.NoteRequest
	if !bindJSON(c, &req) {
		return
	}
	note, err := h.service.Update(c.Request.Context(), teacherID(c), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, note, nil)
}

// TogglePin godoc
// @Summary Pin or unpin note
// @Tags Notes
// @Produce json
// @Param id path string true "Note ID"
// @Success 200 {object} response.Envelope
// @Router /notes/{id}/pin [patch]
func (h *NoteHandler) TogglePin(c *gin.Context) {
	note, err := h.service.TogglePin(c.Request.Context(), teacherID(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, note, nil)
}

// Delete godoc
// @Summary Delete note
// @Tags Notes
// @Param id path string true "Note ID"
// @Success 204
// @Router /notes/{id} [delete]
func (h *NoteHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), teacherID(c), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// FromTranscript godoc
// @Summary Create a note from a dictated transcript
// @Tags Notes
// @Accept json
// @Produce json
// @Param payload body dto.TranscriptRequest true "Transcript"
// @Success 201 {object} response.Envelope
// @Router /notes/transcript [post]
func (h *NoteHandler) FromTranscript(c *gin.Context) {
	var req dto.TranscriptRequest
	if !bindJSON(c, &req) {
		return
	}
	note, generated, err := h.service.FromTranscript(c.Request.Context(), teacherID(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetGenerated(c, generated)
	response.JSON(c, http.StatusCreated, note, nil, middleware.ExtractMeta(c))
}
