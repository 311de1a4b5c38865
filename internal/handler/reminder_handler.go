package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/teacher-journal-api/internal/dto"
	"github.com/noah-isme/teacher-journal-api/internal/models"
	"github.com/noah-isme/teacher-journal-api/pkg/response"
)

type reminderService interface {
	List(ctx context.Context, teacherID string) (*dto.ReminderList, error)
	Badge(ctx context.Context, teacherID string) (models.ReminderBadge, error)
	Create(ctx context.Context, teacherID string, req dto.ReminderRequest) (*models.Reminder, error)
	Update(ctx context.Context, teacherID, id string, req dto.ReminderRequest) (*models.Reminder, error)
	Toggle(ctx context.Context, teacherID, id string) (*models.Reminder, error)
	Delete(ctx context.Context, teacherID, id string) error
}

// ReminderHandler exposes reminders with their urgency.
type ReminderHandler struct {
	service reminderService
}

// NewReminderHandler constructs a reminder handler.
func NewReminderHandler(svc reminderService) *ReminderHandler {
	return &ReminderHandler{service: svc}
}

// List godoc
// @Summary List reminders with urgency and badge
// @Tags Reminders
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /reminders [get]
func (h *ReminderHandler) List(c *gin.Context) {
	teacher := teacherID(c)
	if teacher == "" {
		response.JSON(c, http.StatusOK, dto.ReminderList{Reminders: []models.ClassifiedReminder{}}, nil)
		return
	}
	list, err := h.service.List(c.Request.Context(), teacher)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, list, nil)
}

// Badge godoc
// @Summary Reminder badge
// @Tags Reminders
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /reminders/badge [get]
func (h *ReminderHandler) Badge(c *gin.Context) {
	teacher := teacherID(c)
	if teacher == "" {
		response.JSON(c, http.StatusOK, models.ReminderBadge{}, nil)
		return
	}
	badge, err := h.service.Badge(c.Request.Context(), teacher)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, badge, nil)
}

// Create godoc
// @Summary Create reminder
// @Tags Reminders
// @Accept json
// @Produce json
// @Param payload body dto.ReminderRequest true "Reminder"
// @Success 201 {object} response.Envelope
// @Router /reminders [post]
func (h *ReminderHandler) Create(c *gin.Context) {
	var req dto.ReminderRequest
	if !bindJSON(c, &req) {
		return
	}
	reminder, err := h.service.Create(c.Request.Context(), teacherID(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, reminder)
}

// Update godoc
// @Summary Update reminder
// @Tags Reminders
// @Accept json
// @Produce json
// @Param id path string true "Reminder ID"
// @Param payload body dto.ReminderRequest true "Reminder"
// @Success 200 {object} response.Envelope
// @Router /reminders/{id} [put]
func (h *ReminderHandler) Update(c *gin.Context) {
	var req dto.ReminderRequest
	if !bindJSON(c, &req) {
		return
	}
	reminder, err := h.service.Update(c.Request.Context(), teacherID(c), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, reminder, nil)
}

// Toggle godoc
// @Summary Toggle reminder completion
// @Tags Reminders
// @Produce json
// @Param id path string true "Reminder ID"
// @Success 200 {object} response.Envelope
// @Router /reminders/{id}/toggle [patch]
func (h *ReminderHandler) Toggle(c *gin.Context) {
	reminder, err := h.service.Toggle(c.Request.Context(), teacherID(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, reminder, nil)
}

// Delete godoc
// @Summary Delete reminder
// @Tags Reminders
// @Param id path string true "Reminder ID"
// @Success 204
// @Router /reminders/{id} [delete]
func (h *ReminderHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), teacherID(c), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
