package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/teacher-journal-api/internal/dto"
	"github.com/noah-isme/teacher-journal-api/internal/models"
	"github.com/noah-isme/teacher-journal-api/internal/service"
	appErrors "github.com/noah-isme/teacher-journal-api/pkg/errors"
	"github.com/noah-isme/teacher-journal-api/pkg/response"
)

type reportService interface {
	CreateJob(ctx context.Context, teacherID string, req dto.ReportRequest) (*dto.ReportJobResponse, error)
	GetStatus(ctx context.Context, teacherID, id string) (*dto.ReportStatusResponse, error)
	ResolveDownload(ctx context.Context, token string) (*service.ReportDownload, error)
	Download(ctx context.Context, teacherID, classID string, studentID *string, query dto.ReportQuery) (*service.RenderedReport, error)
	Narrative(ctx context.Context, teacherID, classID string, studentID *string, query dto.SummaryQuery) (*dto.NarrativeResponse, error)
}

// ReportHandler exposes report download and job endpoints.
type ReportHandler struct {
	reports reportService
}

// NewReportHandler constructs handler.
func NewReportHandler(reports reportService) *ReportHandler {
	return &ReportHandler{reports: reports}
}

// Download godoc
// @Summary Download a class or student report
// @Tags Reports
// @Produce application/pdf
// @Produce text/csv
// @Param id path string true "Class ID"
// @Param studentId path string false "Student ID"
// @Param from query string true "From (YYYY-MM-DD)"
// @Param to query string true "To (YYYY-MM-DD)"
// @Param format query string false "pdf or csv"
// @Param narrative query bool false "Append an assistant summary"
// @Success 200 {file} file
// @Router /classes/{id}/report [get]
// @Router /classes/{id}/students/{studentId}/report [get]
func (h *ReportHandler) Download(c *gin.Context) {
	var query dto.ReportQuery
	if !bindQuery(c, &query) {
		return
	}
	report, err := h.reports.Download(c.Request.Context(), teacherID(c), c.Param("id"), optionalParam(c, "studentId"), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, report.Filename, report.ContentType, report.Data)
}

// Narrative godoc
// @Summary Assistant-written summary of a class or student
// @Tags Reports
// @Produce json
// @Param id path string true "Class ID"
// @Param studentId path string false "Student ID"
// @Param from query string true "From (YYYY-MM-DD)"
// @Param to query string true "To (YYYY-MM-DD)"
// @Success 200 {object} response.Envelope
// @Router /classes/{id}/narrative [get]
// @Router /classes/{id}/students/{studentId}/narrative [get]
func (h *ReportHandler) Narrative(c *gin.Context) {
	var query dto.SummaryQuery
	if !bindQuery(c, &query) {
		return
	}
	narrative, err := h.reports.Narrative(c.Request.Context(), teacherID(c), c.Param("id"), optionalParam(c, "studentId"), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, narrative, nil)
}

// GenerateReport godoc
// @Summary Queue an asynchronous report
// @Tags Reports
// @Accept json
// @Produce json
// @Param payload body dto.ReportRequest true "Report request"
// @Success 202 {object} response.Envelope
// @Router /reports/generate [post]
func (h *ReportHandler) GenerateReport(c *gin.Context) {
	var req dto.ReportRequest
	if !bindJSON(c, &req) {
		return
	}
	job, err := h.reports.CreateJob(c.Request.Context(), teacherID(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusAccepted, job, nil)
}

// ReportStatus godoc
// @Summary Report job status
// @Tags Reports
// @Produce json
// @Param id path string true "Job ID"
// @Success 200 {object} response.Envelope
// @Router /reports/status/{id} [get]
func (h *ReportHandler) ReportStatus(c *gin.Context) {
	status, err := h.reports.GetStatus(c.Request.Context(), teacherID(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, status, nil)
}

// DownloadExport godoc
// @Summary Download a finished report through its signed token
// @Tags Reports
// @Produce application/pdf
// @Produce text/csv
// @Param token path string true "Signed token"
// @Success 200 {file} file
// @Router /export/{token} [get]
func (h *ReportHandler) DownloadExport(c *gin.Context) {
	download, err := h.reports.ResolveDownload(c.Request.Context(), c.Param("token"))
	if err != nil {
		response.Error(c, err)
		return
	}
	defer download.File.Close()

	info, err := download.File.Stat()
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to stat export file"))
		return
	}
	contentType := "application/pdf"
	if download.Format == models.ReportFormatCSV {
		contentType = "text/csv; charset=utf-8"
	}
	c.DataFromReader(http.StatusOK, info.Size(), contentType, download.File, map[string]string{
		"Content-Disposition": "attachment; filename=\"" + download.Filename + "\"",
		"Cache-Control":       "no-store",
		"X-Expires-At":        strconv.FormatInt(download.ExpiresAt.Unix(), 10),
	})
}
