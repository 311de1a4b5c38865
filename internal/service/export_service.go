package service

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/teacher-journal-api/internal/dto"
	"github.com/noah-isme/teacher-journal-api/internal/models"
	"github.com/noah-isme/teacher-journal-api/pkg/ai"
	"github.com/noah-isme/teacher-journal-api/pkg/export"
	"github.com/noah-isme/teacher-journal-api/pkg/storage"
)

const narrativeFallback = "The report could not be generated."

type summarySource interface {
	StudentSummary(ctx context.Context, teacherID, classID, studentID string, from, to models.Date) (*models.StudentSummary, bool, error)
	ClassSummary(ctx context.Context, teacherID, classID string, from, to models.Date) (*models.ClassSummary, bool, error)
}

type fileStorage interface {
	Save(filename string, data []byte) (string, error)
	Open(filename string) (*os.File, error)
	Delete(filename string) error
	CleanupOlderThan(ttl time.Duration) ([]string, error)
}

type documentRenderer interface {
	Render(doc export.Document) ([]byte, error)
}

// ExportConfig tunes export behaviour.
type ExportConfig struct {
	APIPrefix string
	ResultTTL time.Duration
}

// ExportResult captures successful generation metadata.
type ExportResult struct {
	RelativePath string
	Token        string
	URL          string
	Format       models.ReportFormat
	ExpiresAt    time.Time
}

// RenderedReport is a report ready to be streamed.
type RenderedReport struct {
	Filename    string
	ContentType string
	Data        []byte
}

// ExportService turns journal summaries into CSV or PDF reports and persists async results.
type ExportService struct {
	summaries summarySource
	classes   classOwnerReader
	students  studentReader
	assistant *AssistantService
	storage   fileStorage
	csv       documentRenderer
	pdf       documentRenderer
	signer    *storage.SignedURLSigner
	logger    *zap.Logger
	cfg       ExportConfig
}

// NewExportService constructs an ExportService.
func NewExportService(summaries summarySource, classes classOwnerReader, students studentReader, assistant *AssistantService, store fileStorage, signer *storage.SignedURLSigner, cfg ExportConfig, logger *zap.Logger, csv, pdf documentRenderer) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.ResultTTL <= 0 {
		cfg.ResultTTL = 24 * time.Hour
	}
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	return &ExportService{
		summaries: summaries,
		classes:   classes,
		students:  students,
		assistant: assistant,
		storage:   store,
		csv:       csv,
		pdf:       pdf,
		signer:    signer,
		logger:    logger,
		cfg:       cfg,
	}
}

// Render builds a student report when params name a student, otherwise a class report.
func (s *ExportService) Render(ctx context.Context, teacherID string, params models.ReportJobParams) (*RenderedReport, error) {
	doc, base, err := s.buildDocument(ctx, teacherID, params)
	if err != nil {
		return nil, err
	}
	var (
		payload     []byte
		contentType string
	)
	switch params.Format {
	case models.ReportFormatCSV:
		payload, err = s.csv.Render(doc)
		contentType = "text/csv; charset=utf-8"
	case models.ReportFormatPDF:
		payload, err = s.pdf.Render(doc)
		contentType = "application/pdf"
	default:
		err = fmt.Errorf("unsupported format %s", params.Format)
	}
	if err != nil {
		return nil, err
	}
	return &RenderedReport{
		Filename:    fmt.Sprintf("%s_%s_%s.%s", base, params.From, params.To, params.Format),
		ContentType: contentType,
		Data:        payload,
	}, nil
}

// Generate renders a queued job and stores it behind a signed download URL.
func (s *ExportService) Generate(ctx context.Context, job *models.ReportJob) (*ExportResult, error) {
	if job == nil {
		return nil, fmt.Errorf("job nil")
	}
	rendered, err := s.Render(ctx, job.TeacherID, job.Params)
	if err != nil {
		return nil, err
	}
	filename := fmt.Sprintf("%s/%s_%s", sanitizeFilename(job.TeacherID), time.Now().UTC().Format("20060102_150405"), rendered.Filename)
	relPath, err := s.storage.Save(filename, rendered.Data)
	if err != nil {
		return nil, err
	}

	token, expiresAt, err := s.signer.Generate(job.ID, relPath)
	if err != nil {
		return nil, err
	}
	signedURL := strings.TrimRight(s.cfg.APIPrefix, "/")
	if signedURL == "" {
		signedURL = "/api/v1"
	}
	signedURL = fmt.Sprintf("%s/export/%s", signedURL, token)

	return &ExportResult{
		RelativePath: relPath,
		Token:        token,
		URL:          signedURL,
		Format:       job.Params.Format,
		ExpiresAt:    expiresAt,
	}, nil
}

// Narrative asks the assistant for a prose summary of the report range. Failures return a fixed
// message with Generated false.
func (s *ExportService) Narrative(ctx context.Context, teacherID string, params models.ReportJobParams) (*dto.NarrativeResponse, error) {
	doc, _, err := s.buildDocument(ctx, teacherID, params)
	if err != nil {
		return nil, err
	}
	return s.narrative(ctx, params, doc), nil
}

// ParseToken validates download token metadata.
func (s *ExportService) ParseToken(token string, allowExpired bool) (jobID, relPath string, expiresAt time.Time, err error) {
	parsed, err := s.signer.Parse(token, allowExpired)
	if err != nil {
		return "", "", time.Time{}, err
	}
	return parsed.Ref, parsed.Path, parsed.ExpiresAt, nil
}

// Open returns a handle to the stored file.
func (s *ExportService) Open(relPath string) (*os.File, error) {
	return s.storage.Open(relPath)
}

// Delete removes a stored export file.
func (s *ExportService) Delete(relPath string) error {
	return s.storage.Delete(relPath)
}

// Cleanup removes files older than ttl (defaults to configured ResultTTL when ttl <= 0).
func (s *ExportService) Cleanup(ttl time.Duration) ([]string, error) {
	if ttl <= 0 {
		ttl = s.cfg.ResultTTL
	}
	return s.storage.CleanupOlderThan(ttl)
}

func (s *ExportService) buildDocument(ctx context.Context, teacherID string, params models.ReportJobParams) (export.Document, string, error) {
	class, err := loadOwnedClass(ctx, s.classes, teacherID, params.ClassID)
	if err != nil {
		return export.Document{}, "", err
	}
	var (
		doc  export.Document
		base string
	)
	if params.StudentID != nil && *params.StudentID != "" {
		doc, base, err = s.studentDocument(ctx, teacherID, class, *params.StudentID, params)
	} else {
		doc, base, err = s.classDocument(ctx, teacherID, class, params)
	}
	if err != nil {
		return export.Document{}, "", err
	}
	if params.Narrative {
		text := s.narrative(ctx, params, doc).Text
		doc.Sections = append(doc.Sections, export.Section{
			Heading: "Summary",
			Data:    export.Dataset{Headers: []string{"Summary"}, Rows: []map[string]string{{"Summary": text}}},
		})
	}
	return doc, base, nil
}

func (s *ExportService) studentDocument(ctx context.Context, teacherID string, class *models.Class, studentID string, params models.ReportJobParams) (export.Document, string, error) {
	summary, _, err := s.summaries.StudentSummary(ctx, teacherID, class.ID, studentID, params.From, params.To)
	if err != nil {
		return export.Document{}, "", err
	}
	student, err := s.students.FindByID(ctx, class.ID, studentID)
	if err != nil {
		return export.Document{}, "", err
	}

	counts := export.Dataset{Headers: []string{"Status", "Count", "Points"}}
	for _, status := range models.Statuses {
		counts.Rows = append(counts.Rows, map[string]string{
			"Status": string(status),
			"Count":  strconv.Itoa(summary.Counts[status]),
			"Points": strconv.Itoa(summary.Counts[status] * ScoreWeight(status)),
		})
	}
	counts.Rows = append(counts.Rows, map[string]string{"Status": "Total", "Points": strconv.Itoa(summary.Total)})

	series := export.Dataset{Headers: []string{"Date", "Change", "Score"}}
	for _, point := range summary.Series {
		if point.Delta == 0 {
			continue
		}
		series.Rows = append(series.Rows, map[string]string{
			"Date":   point.Date.String(),
			"Change": strconv.Itoa(point.Delta),
			"Score":  strconv.Itoa(point.Score),
		})
	}

	doc := export.Document{
		Title:    fmt.Sprintf("Student report: %s (%s)", student.FullName(), student.StudentNumber),
		Subtitle: fmt.Sprintf("Class %s, %s to %s", class.Name, params.From, params.To),
		Sections: []export.Section{
			{Heading: "Status counts", Data: counts},
			{Heading: "Score by day", Data: series},
			{Heading: "Notes", Data: notesDataset(summary.Notes)},
		},
	}
	return doc, "student_" + sanitizeFilename(student.StudentNumber), nil
}

func (s *ExportService) classDocument(ctx context.Context, teacherID string, class *models.Class, params models.ReportJobParams) (export.Document, string, error) {
	summary, _, err := s.summaries.ClassSummary(ctx, teacherID, class.ID, params.From, params.To)
	if err != nil {
		return export.Document{}, "", err
	}

	headers := []string{"No", "Name"}
	for _, status := range models.Statuses {
		headers = append(headers, string(status))
	}
	headers = append(headers, "Total")
	table := export.Dataset{Headers: headers}
	notes := export.Dataset{Headers: []string{"No", "Name", "Date", "Note"}}
	for _, row := range summary.Rows {
		line := map[string]string{
			"No":    row.Student.StudentNumber,
			"Name":  row.Student.FullName(),
			"Total": strconv.Itoa(row.TotalScore),
		}
		for _, status := range models.Statuses {
			line[string(status)] = strconv.Itoa(row.Counts[status])
		}
		table.Rows = append(table.Rows, line)
		for _, note := range row.Notes {
			notes.Rows = append(notes.Rows, map[string]string{
				"No":   row.Student.StudentNumber,
				"Name": row.Student.FullName(),
				"Date": note.Date.String(),
				"Note": note.Content,
			})
		}
	}

	doc := export.Document{
		Title:    "Class report: " + class.Name,
		Subtitle: fmt.Sprintf("%s to %s", params.From, params.To),
		Sections: []export.Section{
			{Heading: "Students", Data: table},
			{Heading: "Notes", Data: notes},
		},
	}
	return doc, "class_" + sanitizeFilename(class.Name), nil
}

func (s *ExportService) narrative(ctx context.Context, params models.ReportJobParams, doc export.Document) *dto.NarrativeResponse {
	task := ai.TaskClassReport
	if params.StudentID != nil && *params.StudentID != "" {
		task = ai.TaskStudentReport
	}
	var out struct {
		Text string `json:"text"`
	}
	err := s.assistant.Ask(ctx, task, documentText(doc), narrativeSchema, &out)
	if err == nil && strings.TrimSpace(out.Text) == "" {
		err = errors.New("empty narrative")
	}
	if err != nil {
		s.assistant.fallback(task, err)
		return &dto.NarrativeResponse{Text: narrativeFallback}
	}
	return &dto.NarrativeResponse{Text: strings.TrimSpace(out.Text), Generated: true}
}

func notesDataset(notes []models.NoteEntry) export.Dataset {
	data := export.Dataset{Headers: []string{"Date", "Note"}}
	for _, note := range notes {
		data.Rows = append(data.Rows, map[string]string{"Date": note.Date.String(), "Note": note.Content})
	}
	return data
}

// documentText flattens a document into plain lines for the assistant prompt.
func documentText(doc export.Document) string {
	var b strings.Builder
	b.WriteString(doc.Title)
	b.WriteByte('\n')
	b.WriteString(doc.Subtitle)
	b.WriteByte('\n')
	for _, section := range doc.Sections {
		b.WriteString("\n" + section.Heading + "\n")
		b.WriteString(strings.Join(section.Data.Headers, " | "))
		b.WriteByte('\n')
		for _, row := range section.Data.Rows {
			cells := make([]string, 0, len(section.Data.Headers))
			for _, h := range section.Data.Headers {
				cells = append(cells, row[h])
			}
			b.WriteString(strings.Join(cells, " | "))
			b.WriteByte('\n')
		}
	}
	return b.String()
}

func sanitizeFilename(raw string) string {
	if raw == "" {
		return "na"
	}
	replacer := strings.NewReplacer(" ", "_", "/", "-", "\\", "-", ":", "-", "..", ".", "__", "_")
	result := replacer.Replace(export.NormalizeText(raw))
	if len(result) > 100 {
		return result[:100]
	}
	return result
}
