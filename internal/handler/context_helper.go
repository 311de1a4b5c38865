package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/teacher-journal-api/internal/middleware"
	appErrors "github.com/noah-isme/teacher-journal-api/pkg/errors"
	"github.com/noah-isme/teacher-journal-api/pkg/response"
)

func teacherID(c *gin.Context) string {
	return middleware.TeacherID(c)
}

// bindJSON decodes the request body, writing a validation error when it is malformed.
func bindJSON(c *gin.Context, dest interface{}) bool {
	if err := c.ShouldBindJSON(dest); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return false
	}
	return true
}

func bindQuery(c *gin.Context, dest interface{}) bool {
	if err := c.ShouldBindQuery(dest); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid query"))
		return false
	}
	return true
}

func pageParams(c *gin.Context, defaultSize int) (int, int) {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		page = 1
	}
	size, err := strconv.Atoi(c.DefaultQuery("pageSize", strconv.Itoa(defaultSize)))
	if err != nil || size < 1 {
		size = defaultSize
	}
	return page, size
}

func optionalParam(c *gin.Context, key string) *string {
	value := c.Param(key)
	if value == "" {
		return nil
	}
	return &value
}
