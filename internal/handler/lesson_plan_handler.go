package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/teacher-journal-api/internal/dto"
	"github.com/noah-isme/teacher-journal-api/internal/models"
	"github.com/noah-isme/teacher-journal-api/pkg/response"
)

type lessonPlanService interface {
	List(ctx context.Context, teacherID string, query dto.LessonPlanQuery) ([]models.LessonPlan, error)
	Get(ctx context.Context, teacherID, id string) (*models.LessonPlan, error)
	Create(ctx context.Context, teacherID string, req dto.LessonPlanRequest) (*models.LessonPlan, error)
	Update(ctx context.Context, teacherID, id string, req dto.LessonPlanRequest) (*models.LessonPlan, error)
	Delete(ctx context.Context, teacherID, id string) error
	SuggestDescription(ctx context.Context, req dto.DescriptionSuggestRequest) (*dto.DescriptionSuggestion, error)
}

// LessonPlanHandler exposes lesson plans.
type LessonPlanHandler struct {
	service lessonPlanService
}

// NewLessonPlanHandler constructs a lesson plan handler.
func NewLessonPlanHandler(svc lessonPlanService) *LessonPlanHandler {
	return &LessonPlanHandler{service: svc}
}

// List godoc
// @Summary List lesson plans
// @Tags LessonPlans
// @Produce json
// @Param classId query string false "Class ID"
// @Param from query string false "From (YYYY-MM-DD)"
// @Param to query string false "To (YYYY-MM-DD)"
// @Success 200 {object} response.Envelope
// @Router /lesson-plans [get]
func (h *LessonPlanHandler) List(c *gin.Context) {
	teacher := teacherID(c)
	if teacher == "" {
		response.JSON(c, http.StatusOK, []models.LessonPlan{}, nil)
		return
	}
	var query dto.LessonPlanQuery
	if !bindQuery(c, &query) {
		return
	}
	plans, err := h.service.List(c.Request.Context(), teacher, query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, plans, nil)
}

// Get godoc
// @Summary Get lesson plan
// @Tags LessonPlans
// @Produce json
// @Param id path string true "Lesson plan ID"
// @Success 200 {object} response.Envelope
// @Router /lesson-plans/{id} [get]
func (h *LessonPlanHandler) Get(c *gin.Context) {
	plan, err := h.service.Get(c.Request.Context(), teacherID(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, plan, nil)
}

// Create godoc
// @Summary Create lesson plan
// @Tags LessonPlans
// @Accept json
// @Produce json
// @Param payload body dto.LessonPlanRequest true "Lesson plan"
// @Success 201 {object} response.Envelope
// @Router /lesson-plans [post]
func (h *LessonPlanHandler) Create(c *gin.Context) {
	var req dto.LessonPlanRequest
	if !bindJSON(c, &req) {
		return
	}
	plan, err := h.service.Create(c.Request.Context(), teacherID(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, plan)
}

// Update godoc
// @Summary Update lesson plan
// @Tags LessonPlans
// @Accept json
// @Produce json
// @Param id path string true "Lesson plan ID"
// @Param payload body dto.LessonPlanRequest true "Lesson plan"
// @Success 200 {object} response.Envelope
// @Router /lesson-plans/{id} [put]
func (h *LessonPlanHandler) Update(c *gin.Context) {
	var req dto.LessonPlanRequest
	if !bindJSON(c, &req) {
		return
	}
	plan, err := h.service.Update(c.Request.Context(), teacherID(c), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, plan, nil)
}

// Delete godoc
// @Summary Delete lesson plan
// @Tags LessonPlans
// @Param id path string true "Lesson plan ID"
// @Success 204
// @Router /lesson-plans/{id} [delete]
func (h *LessonPlanHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), teacherID(c), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// SuggestDescription godoc
// @Summary Suggest a lesson description
// @Tags LessonPlans
// @Accept json
// @Produce json
// @Param payload body dto.DescriptionSuggestRequest true "Lesson outline"
// @Success 200 {object} response.Envelope
// @Router /lesson-plans/suggest-description [post]
func (h *LessonPlanHandler) SuggestDescription(c *gin.Context) {
	var req dto.DescriptionSuggestRequest
	if !bindJSON(c, &req) {
		return
	}
	suggestion, err := h.service.SuggestDescription(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, suggestion, nil)
}
