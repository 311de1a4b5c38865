package ai

import (
	"context"
	"encoding/json"
	"errors"
)

// Tasks recognised by the assistant.
const (
	TaskNoteCleanup   = "note_cleanup"
	TaskLessonPlan    = "lesson_plan_description"
	TaskStudentReport = "student_report"
	TaskClassReport   = "class_report"
	TaskForumAnswer   = "forum_answer"
	TaskChat          = "chat"
	TaskRosterParse   = "roster_parse"
)

// ErrDisabled is returned when no model is configured.
var ErrDisabled = errors.New("ai assistant disabled")

// Request describes a single structured generation call.
type Request struct {
	Task   string
	Input  string
	Schema json.RawMessage
}

// Client produces JSON output that matches Request.Schema.
type Client interface {
	Generate(ctx context.Context, req Request) (json.RawMessage, error)
}

// NopClient is used when the assistant is switched off.
type NopClient struct{}

// Generate always fails with ErrDisabled.
func (NopClient) Generate(context.Context, Request) (json.RawMessage, error) {
	return nil, ErrDisabled
}
