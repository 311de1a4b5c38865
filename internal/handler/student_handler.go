package handler

import (
	"context"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/teacher-journal-api/internal/dto"
	"github.com/noah-isme/teacher-journal-api/internal/models"
	appErrors "github.com/noah-isme/teacher-journal-api/pkg/errors"
	"github.com/noah-isme/teacher-journal-api/pkg/response"
)

type studentService interface {
	List(ctx context.Context, teacherID, classID string) ([]models.Student, error)
	Create(ctx context.Context, teacherID, classID string, req dto.StudentRequest) (*models.Student, error)
	Update(ctx context.Context, teacherID, classID, id string, req dto.StudentRequest) (*models.Student, error)
	Delete(ctx context.Context, teacherID, classID, id string) error
	ImportFile(ctx context.Context, teacherID, classID string, file io.Reader, filename string) (*models.ImportResult, error)
	ImportText(ctx context.Context, teacherID, classID string, req dto.RosterTextRequest) (*models.ImportResult, error)
}

// StudentHandler manages the roster of a class.
type StudentHandler struct {
	service       studentService
	maxUploadSize int64
}

// NewStudentHandler constructs a student handler. maxUploadSize bounds roster files.
func NewStudentHandler(svc studentService, maxUploadSize int64) *StudentHandler {
	if maxUploadSize <= 0 {
		maxUploadSize = 5 << 20
	}
	return &StudentHandler{service: svc, maxUploadSize: maxUploadSize}
}

// List godoc
// @Summary List students of a class
// @Tags Students
// @Produce json
// @Param id path string true "Class ID"
// @Success 200 {object} response.Envelope
// @Router /classes/{id}/students [get]
func (h *StudentHandler) List(c *gin.Context) {
	teacher := teacherID(c)
	if teacher == "" {
		response.JSON(c, http.StatusOK, []models.Student{}, nil)
		return
	}
	students, err := h.service.List(c.Request.Context(), teacher, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, students, nil)
}

// Create godoc
// @Summary Add a student
// @Tags Students
// @Accept json
// @Produce json
// @Param id path string true "Class ID"
// @Param payload body dto.StudentRequest true "Student payload"
// @Success 201 {object} response.Envelope
// @Router /classes/{id}/students [post]
func (h *StudentHandler) Create(c *gin.Context) {
	var req dto.StudentRequest
	if !bindJSON(c, &req) {
		return
	}
	student, err := h.service.Create(c.Request.Context(), teacherID(c), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, student)
}

// Update godoc
// @Summary Update a student
// @Tags Students
// @Accept json
// @Produce json
// @Param id path string true "Class ID"
// @Param studentId path string true "Student ID"
// @Param payload body dto.StudentRequest true "Student payload"
// @Success 200 {object} response.Envelope
// @Router /classes/{id}/students/{studentId} [put]
func (h *StudentHandler) Update(c *gin.Context) {
	var req dto.StudentRequest
	if !bindJSON(c, &req) {
		return
	}
	student, err := h.service.Update(c.Request.Context(), teacherID(c), c.Param("id"), c.Param("studentId"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, student, nil)
}

// Delete godoc
// @Summary Remove a student
// @Tags Students
// @Param id path string true "Class ID"
// @Param studentId path string true "Student ID"
// @Success 204
// @Router /classes/{id}/students/{studentId} [delete]
func (h *StudentHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), teacherID(c), c.Param("id"), c.Param("studentId")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// ImportFile godoc
// @Summary Import a roster from an xlsx or csv file
// @Tags Students
// @Accept multipart/form-data
// @Produce json
// @Param id path string true "Class ID"
// @Param file formData file true "Roster file"
// @Success 200 {object} response.Envelope
// @Router /classes/{id}/students/import [post]
func (h *StudentHandler) ImportFile(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadSize+(1<<20))
	header, err := c.FormFile("file")
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrBadUpload.Code, appErrors.ErrBadUpload.Status, "roster file is required"))
		return
	}
	if header.Size > h.maxUploadSize {
		response.Error(c, appErrors.Clone(appErrors.ErrBadUpload, "roster file is too large"))
		return
	}
	file, err := header.Open()
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrBadUpload.Code, appErrors.ErrBadUpload.Status, "roster file could not be read"))
		return
	}
	defer file.Close()

	result, err := h.service.ImportFile(c.Request.Context(), teacherID(c), c.Param("id"), file, header.Filename)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// ImportText godoc
// @Summary Import a roster from free text via the assistant
// @Tags Students
// @Accept json
// @Produce json
// @Param id path string true "Class ID"
// @Param payload body dto.RosterTextRequest true "Roster text"
// @Success 200 {object} response.Envelope
// @Router /classes/{id}/students/import/text [post]
func (h *StudentHandler) ImportText(c *gin.Context) {
	var req dto.RosterTextRequest
	if !bindJSON(c, &req) {
		return
	}
	result, err := h.service.ImportText(c.Request.Context(), teacherID(c), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}
