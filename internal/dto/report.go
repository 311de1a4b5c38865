package dto

import "github.com/noah-isme/teacher-journal-api/internal/models"

// SummaryQuery is the inclusive date range of a summary or report.
type SummaryQuery struct {
	From string `form:"from" validate:"required,datetime=2006-01-02"`
	To   string `form:"to" validate:"required,datetime=2006-01-02"`
}

// ReportQuery adds an output format to SummaryQuery.
type ReportQuery struct {
	SummaryQuery
	Format    models.ReportFormat `form:"format" validate:"omitempty,oneof=csv pdf"`
	Narrative bool                `form:"narrative"`
}

// ReportRequest captures POST /reports/generate payload.
type ReportRequest struct {
	ClassID   string              `json:"classId" validate:"required"`
	StudentID *string             `json:"studentId,omitempty"`
	From      string              `json:"from" validate:"required,datetime=2006-01-02"`
	To        string              `json:"to" validate:"required,datetime=2006-01-02"`
	Format    models.ReportFormat `json:"format" validate:"required,oneof=csv pdf"`
	Narrative bool                `json:"narrative"`
}

// ReportJobResponse is returned after enqueueing a report.
type ReportJobResponse struct {
	ID       string              `json:"id"`
	Status   models.ReportStatus `json:"status"`
	Progress int                 `json:"progress"`
}

// ReportStatusResponse exposes job progress metadata.
type ReportStatusResponse struct {
	ID        string              `json:"id"`
	Type      models.ReportType   `json:"type"`
	Status    models.ReportStatus `json:"status"`
	Progress  int                 `json:"progress"`
	ResultURL *string             `json:"resultUrl,omitempty"`
	Error     *string             `json:"error,omitempty"`
}

// NarrativeResponse carries an assistant-written report text.
type NarrativeResponse struct {
	Text      string `json:"text"`
	Generated bool   `json:"generated"`
}
