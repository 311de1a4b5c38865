package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromErrorWrapsUnknown(t *testing.T) {
	err := FromError(fmt.Errorf("boom"))
	assert.Equal(t, ErrInternal.Code, err.Code)
	assert.Equal(t, http.StatusInternalServerError, err.Status)
	assert.Nil(t, FromError(nil))
}

func TestClonedSentinelMatches(t *testing.T) {
	err := fmt.Errorf("load class: %w", Clone(ErrNotFound, "class not found"))
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.False(t, errors.Is(err, ErrConflict))
	assert.Equal(t, "class not found", FromError(err).Message)
}

func TestFieldError(t *testing.T) {
	err := Field(ErrConflict, "name", "class name already exists")
	assert.Equal(t, http.StatusConflict, err.Status)
	assert.Equal(t, []FieldError{{Field: "name", Message: "class name already exists"}}, err.Fields)
	assert.Empty(t, ErrConflict.Fields)
}
