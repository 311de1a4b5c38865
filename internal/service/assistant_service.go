package service

import (
	"context"
	"encoding/json"
	"errors"

	"go.uber.org/zap"

	"github.com/noah-isme/teacher-journal-api/pkg/ai"
	appErrors "github.com/noah-isme/teacher-journal-api/pkg/errors"
)

// Output shapes requested from the assistant per task.
var (
	noteCleanupSchema = json.RawMessage(`{"type":"object","properties":{"title":{"type":"string"},"content":{"type":"string"}},"required":["content"]}`)
	lessonPlanSchema  = json.RawMessage(`{"type":"object","properties":{"description":{"type":"string"}},"required":["description"]}`)
	narrativeSchema   = json.RawMessage(`{"type":"object","properties":{"text":{"type":"string"}},"required":["text"]}`)
	forumAnswerSchema = json.RawMessage(`{"type":"object","properties":{"answer":{"type":"string"}},"required":["answer"]}`)
	chatSchema        = json.RawMessage(`{"type":"object","properties":{"reply":{"type":"string"}},"required":["reply"]}`)
	rosterSchema      = json.RawMessage(`{"type":"object","properties":{"students":{"type":"array","items":{"type":"object","properties":{"studentNumber":{"type":"string"},"firstName":{"type":"string"},"lastName":{"type":"string"}}}}},"required":["students"]}`)
)

// AssistantService is the single gateway to the generative model. Callers own their fallbacks.
type AssistantService struct {
	client  ai.Client
	metrics *MetricsService
	logger  *zap.Logger
}

// NewAssistantService constructs an AssistantService. A nil client disables the assistant.
func NewAssistantService(client ai.Client, metrics *MetricsService, logger *zap.Logger) *AssistantService {
	if client == nil {
		client = ai.NopClient{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AssistantService{client: client, metrics: metrics, logger: logger}
}

// Ask runs one task and decodes the JSON answer into dest.
func (s *AssistantService) Ask(ctx context.Context, task, input string, schema json.RawMessage, dest interface{}) error {
	raw, err := s.client.Generate(ctx, ai.Request{Task: task, Input: input, Schema: schema})
	if err == nil {
		err = json.Unmarshal(raw, dest)
	}
	if err != nil {
		s.metrics.RecordAIRequest(task, AIOutcomeFailed)
		if errors.Is(err, ai.ErrDisabled) {
			return appErrors.Wrap(err, appErrors.ErrAIUnavailable.Code, appErrors.ErrAIUnavailable.Status, "assistant is disabled")
		}
		return appErrors.Wrap(err, appErrors.ErrAIUnavailable.Code, appErrors.ErrAIUnavailable.Status, appErrors.ErrAIUnavailable.Message)
	}
	s.metrics.RecordAIRequest(task, AIOutcomeSuccess)
	return nil
}

// fallback records that a caller degraded gracefully after a failed Ask.
func (s *AssistantService) fallback(task string, err error) {
	s.metrics.RecordAIRequest(task, AIOutcomeFallback)
	s.logger.Warn("assistant fallback", zap.String("task", task), zap.Error(err))
}
