package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/teacher-journal-api/internal/dto"
	"github.com/noah-isme/teacher-journal-api/pkg/response"
)

type chatService interface {
	Reply(ctx context.Context, req dto.ChatRequest) (*dto.ChatResponse, error)
}

// ChatHandler relays conversations to the assistant.
type ChatHandler struct {
	service chatService
}

// NewChatHandler constructs a chat handler.
func NewChatHandler(svc chatService) *ChatHandler {
	return &ChatHandler{service: svc}
}

// Reply godoc
// @Summary Assistant reply to a conversation
// @Tags Chat
// @Accept json
// @Produce json
// @Param payload body dto.ChatRequest true "Conversation, newest last"
// @Success 200 {object} response.Envelope
// @Router /chat [post]
func (h *ChatHandler) Reply(c *gin.Context) {
	var req dto.ChatRequest
	if !bindJSON(c, &req) {
		return
	}
	reply, err := h.service.Reply(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, reply, nil)
}
