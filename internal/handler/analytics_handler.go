package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/teacher-journal-api/internal/dto"
	"github.com/noah-isme/teacher-journal-api/internal/middleware"
	"github.com/noah-isme/teacher-journal-api/internal/models"
	"github.com/noah-isme/teacher-journal-api/internal/service"
	"github.com/noah-isme/teacher-journal-api/pkg/response"
)

type analyticsService interface {
	StudentSummary(ctx context.Context, teacherID, classID, studentID string, from, to models.Date) (*models.StudentSummary, bool, error)
	ClassSummary(ctx context.Context, teacherID, classID string, from, to models.Date) (*models.ClassSummary, bool, error)
	SystemMetrics() models.SystemMetrics
}

// AnalyticsHandler exposes journal summaries over a date range.
type AnalyticsHandler struct {
	analytics analyticsService
}

// NewAnalyticsHandler constructs the analytics handler.
func NewAnalyticsHandler(analytics analyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{analytics: analytics}
}

// StudentSummary godoc
// @Summary Status counts, notes and score series of one student
// @Tags Summaries
// @Produce json
// @Param id path string true "Class ID"
// @Param studentId path string true "Student ID"
// @Param from query string true "From (YYYY-MM-DD)"
// @Param to query string true "To (YYYY-MM-DD)"
// @Success 200 {object} response.Envelope
// @Router /classes/{id}/students/{studentId}/summary [get]
func (h *AnalyticsHandler) StudentSummary(c *gin.Context) {
	from, to, ok := summaryRange(c)
	if !ok {
		return
	}
	start := time.Now()
	summary, cacheHit, err := h.analytics.StudentSummary(c.Request.Context(), teacherID(c), c.Param("id"), c.Param("studentId"), from, to)
	if err != nil {
		response.Error(c, err)
		return
	}
	respondWithMeta(c, summary, cacheHit, start)
}

// ClassSummary godoc
// @Summary Per-student totals of a class
// @Tags Summaries
// @Produce json
// @Param id path string true "Class ID"
// @Param from query string true "From (YYYY-MM-DD)"
// @Param to query string true "To (YYYY-MM-DD)"
// @Success 200 {object} response.Envelope
// @Router /classes/{id}/summary [get]
func (h *AnalyticsHandler) ClassSummary(c *gin.Context) {
	from, to, ok := summaryRange(c)
	if !ok {
		return
	}
	start := time.Now()
	summary, cacheHit, err := h.analytics.ClassSummary(c.Request.Context(), teacherID(c), c.Param("id"), from, to)
	if err != nil {
		response.Error(c, err)
		return
	}
	respondWithMeta(c, summary, cacheHit, start)
}

// SystemMetrics godoc
// @Summary Runtime metrics snapshot
// @Tags System
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /system/metrics [get]
func (h *AnalyticsHandler) SystemMetrics(c *gin.Context) {
	response.JSON(c, http.StatusOK, h.analytics.SystemMetrics(), nil)
}

func summaryRange(c *gin.Context) (models.Date, models.Date, bool) {
	var query dto.SummaryQuery
	if !bindQuery(c, &query) {
		return "", "", false
	}
	from, to, err := service.ParseRange(query.From, query.To)
	if err != nil {
		response.Error(c, err)
		return "", "", false
	}
	return from, to, true
}

func respondWithMeta(c *gin.Context, data interface{}, cacheHit bool, start time.Time) {
	middleware.SetCacheHit(c, cacheHit)
	meta := middleware.ExtractMeta(c)
	if meta == nil {
		meta = make(map[string]interface{})
	}
	meta["processing_time_ms"] = time.Since(start).Milliseconds()
	response.JSON(c, http.StatusOK, data, nil, meta)
}
