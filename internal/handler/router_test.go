package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/teacher-journal-api/internal/dto"
	"github.com/noah-isme/teacher-journal-api/internal/models"
	appErrors "github.com/noah-isme/teacher-journal-api/pkg/errors"
)

type tokenStub struct{}

func (tokenStub) ValidateToken(token string) (*models.JWTClaims, error) {
	if token != "teacher-1-token" {
		return nil, appErrors.ErrUnauthorized
	}
	return &models.JWTClaims{UserID: "teacher-1"}, nil
}

type classServiceMock struct {
	filter models.ClassFilter
}

func (m *classServiceMock) List(ctx context.Context, filter models.ClassFilter) ([]models.Class, *models.Pagination, error) {
	m.filter = filter
	return []models.Class{{ID: "class-1", TeacherID: filter.TeacherID, Name: "7A"}}, models.NewPagination(filter.Page, filter.PageSize, 1, 50), nil
}

func (m *classServiceMock) Get(ctx context.Context, teacherID, id string) (*models.ClassDetail, error) {
	return nil, appErrors.ErrNotFound
}

func (m *classServiceMock) Create(ctx context.Context, teacherID string, req dto.ClassRequest) (*models.Class, error) {
	return &models.Class{ID: "class-2", TeacherID: teacherID, Name: req.Name}, nil
}

func (m *classServiceMock) Update(ctx context.Context, teacherID, id string, req dto.ClassRequest) (*models.Class, error) {
	return &models.Class{ID: id, TeacherID: teacherID, Name: req.Name}, nil
}

func (m *classServiceMock) Delete(ctx context.Context, teacherID, id string) error {
	return nil
}

func buildRouter(classes *classServiceMock) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	RegisterRoutes(router, "/api/v1", Handlers{
		Journal:  NewJournalHandler(&journalServiceMock{view: &dto.DayView{}}),
		Classes:  NewClassHandler(classes),
		Students: NewStudentHandler(&studentServiceMock{}, 0),
		Metrics:  NewMetricsHandler(nil),
	}, tokenStub{}, zap.NewNop())
	return router
}

func performRequest(router *gin.Engine, method, path, body, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestRoutesListWithoutIdentityReturnsEmptyData(t *testing.T) {
	classes := &classServiceMock{}
	router := buildRouter(classes)

	resp := performRequest(router, http.MethodGet, "/api/v1/classes", "", "")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.JSONEq(t, `{"data":[]}`, resp.Body.String())

	resp = performRequest(router, http.MethodGet, "/api/v1/classes/class-1/students", "", "")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), `"data":[]`)
}

func TestRoutesListScopesByTeacher(t *testing.T) {
	classes := &classServiceMock{}
	router := buildRouter(classes)

	resp := performRequest(router, http.MethodGet, "/api/v1/classes?page=2&pageSize=10", "", "teacher-1-token")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, "teacher-1", classes.filter.TeacherID)
	assert.Equal(t, 2, classes.filter.Page)
	assert.Equal(t, 10, classes.filter.PageSize)
	assert.Contains(t, resp.Body.String(), `"pagination"`)
}

func TestRoutesWritesRequireIdentity(t *testing.T) {
	router := buildRouter(&classServiceMock{})

	resp := performRequest(router, http.MethodPost, "/api/v1/classes", `{"name":"7B"}`, "")
	assert.Equal(t, http.StatusUnauthorized, resp.Code)

	resp = performRequest(router, http.MethodPost, "/api/v1/classes", `{"name":"7B"}`, "forged")
	assert.Equal(t, http.StatusUnauthorized, resp.Code)

	resp = performRequest(router, http.MethodPost, "/api/v1/journal/commit", "", "")
	assert.Equal(t, http.StatusUnauthorized, resp.Code)

	resp = performRequest(router, http.MethodPost, "/api/v1/classes", `{"name":"7B"}`, "teacher-1-token")
	assert.Equal(t, http.StatusCreated, resp.Code)
	assert.Contains(t, resp.Body.String(), `"teacher_id":"teacher-1"`)
}

func TestRoutesHealth(t *testing.T) {
	router := buildRouter(&classServiceMock{})

	resp := performRequest(router, http.MethodGet, "/health", "", "")
	assert.Equal(t, http.StatusOK, resp.Code)
	resp = performRequest(router, http.MethodGet, "/ready", "", "")
	assert.Equal(t, http.StatusOK, resp.Code)
	resp = performRequest(router, http.MethodGet, "/metrics", "", "")
	assert.Equal(t, http.StatusServiceUnavailable, resp.Code)
}
