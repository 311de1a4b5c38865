package service

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/noah-isme/teacher-journal-api/internal/dto"
	"github.com/noah-isme/teacher-journal-api/pkg/ai"
	appErrors "github.com/noah-isme/teacher-journal-api/pkg/errors"
)

const chatFallbackReply = "Sorry, I could not answer right now. Please try again later."

// ChatService holds stateless assistant conversations; the client sends the history each turn.
type ChatService struct {
	assistant *AssistantService
	validator *validator.Validate
}

// NewChatService constructs ChatService.
func NewChatService(assistant *AssistantService, validate *validator.Validate) *ChatService {
	if validate == nil {
		validate = validator.New()
	}
	return &ChatService{assistant: assistant, validator: validate}
}

// Reply answers the last user message. Assistant failures produce an apology reply with Failed set.
func (s *ChatService) Reply(ctx context.Context, req dto.ChatRequest) (*dto.ChatResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid chat payload")
	}
	if req.Messages[len(req.Messages)-1].Role != "user" {
		return nil, appErrors.Field(appErrors.ErrValidation, "messages", "last message must come from the user")
	}
	history, err := json.Marshal(req.Messages)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to encode chat history")
	}

	var out struct {
		Reply string `json:"reply"`
	}
	if err := s.assistant.Ask(ctx, ai.TaskChat, string(history), chatSchema, &out); err != nil || strings.TrimSpace(out.Reply) == "" {
		s.assistant.fallback(ai.TaskChat, err)
		return &dto.ChatResponse{Reply: dto.ChatMessage{Role: "assistant", Content: chatFallbackReply}, Failed: true}, nil
	}
	return &dto.ChatResponse{Reply: dto.ChatMessage{Role: "assistant", Content: strings.TrimSpace(out.Reply)}}, nil
}
