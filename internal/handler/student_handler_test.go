package handler

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/teacher-journal-api/internal/dto"
	"github.com/noah-isme/teacher-journal-api/internal/models"
)

type studentServiceMock struct {
	filename string
	content  string
	result   *models.ImportResult
}

func (m *studentServiceMock) List(ctx context.Context, teacherID, classID string) ([]models.Student, error) {
	return []models.Student{{ID: "s-1", ClassID: classID}}, nil
}

func (m *studentServiceMock) Create(ctx context.Context, teacherID, classID string, req dto.StudentRequest) (*models.Student, error) {
	return &models.Student{ID: "s-1", ClassID: classID, StudentNumber: req.StudentNumber}, nil
}

func (m *studentServiceMock) Update(ctx context.Context, teacherID, classID, id string, req dto.StudentRequest) (*models.Student, error) {
	return &models.Student{ID: id, ClassID: classID}, nil
}

func (m *studentServiceMock) Delete(ctx context.Context, teacherID, classID, id string) error {
	return nil
}

func (m *studentServiceMock) ImportFile(ctx context.Context, teacherID, classID string, file io.Reader, filename string) (*models.ImportResult, error) {
	data, err := io.ReadAll(file)
	if err != nil {
		return nil, err
	}
	m.filename = filename
	m.content = string(data)
	return m.result, nil
}

func (m *studentServiceMock) ImportText(ctx context.Context, teacherID, classID string, req dto.RosterTextRequest) (*models.ImportResult, error) {
	return m.result, nil
}

func multipartRoster(t *testing.T, filename, content string) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, writer.Close())
	return body, writer.FormDataContentType()
}

func TestStudentHandlerImportFile(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &studentServiceMock{result: &models.ImportResult{Imported: 2, Skipped: 1, SkippedRows: []models.SkippedRow{
		{Row: 4, StudentNumber: "3", Reason: models.SkipReasonDuplicateInFile},
	}}}
	handler := NewStudentHandler(mockSvc, 1024)

	body, contentType := multipartRoster(t, "roster.csv", "1,Ayla,Demir\n2,Deniz,Kaya\n")
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/classes/class-1/students/import", body)
	c.Request.Header.Set("Content-Type", contentType)
	c.Params = gin.Params{{Key: "id", Value: "class-1"}}
	asTeacher(c, "teacher-1")

	handler.ImportFile(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "roster.csv", mockSvc.filename)
	assert.Contains(t, mockSvc.content, "Ayla")
	assert.Contains(t, w.Body.String(), `"imported":2`)
	assert.Contains(t, w.Body.String(), models.SkipReasonDuplicateInFile)
}

func TestStudentHandlerImportFileRejectsOversizedUpload(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewStudentHandler(&studentServiceMock{}, 8)

	body, contentType := multipartRoster(t, "roster.csv", "1,Ayla,Demir\n2,Deniz,Kaya\n")
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/classes/class-1/students/import", body)
	c.Request.Header.Set("Content-Type", contentType)
	asTeacher(c, "teacher-1")

	handler.ImportFile(c)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "BAD_UPLOAD")
}

func TestStudentHandlerImportFileRequiresFile(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewStudentHandler(&studentServiceMock{}, 1024)

	c, w := newGinContext(http.MethodPost, "/classes/class-1/students/import", []byte(`{}`))
	asTeacher(c, "teacher-1")

	handler.ImportFile(c)
	require.Equal(t, http.StatusBadRequest, w.Code)
}
