package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/teacher-journal-api/internal/dto"
	"github.com/noah-isme/teacher-journal-api/internal/models"
	"github.com/noah-isme/teacher-journal-api/pkg/response"
)

type forumService interface {
	ListPosts(ctx context.Context, page, size int) ([]models.ForumPost, *models.Pagination, error)
	Thread(ctx context.Context, id string) (*models.ForumThread, error)
	CreatePost(ctx context.Context, authorID string, req dto.ForumPostRequest) (*models.ForumPost, error)
	DeletePost(ctx context.Context, authorID, id string) error
	Reply(ctx context.Context, authorID, postID string, req dto.ForumReplyRequest) (*models.ForumReply, error)
	AIAnswer(ctx context.Context, postID string) (*models.ForumReply, error)
}

// ForumHandler exposes the shared teacher forum.
type ForumHandler struct {
	service forumService
}

// NewForumHandler constructs a forum handler.
func NewForumHandler(svc forumService) *ForumHandler {
	return &ForumHandler{service: svc}
}

// ListPosts godoc
// @Summary List forum posts, newest first
// @Tags Forum
// @Produce json
// @Param page query int false "Page"
// @Param pageSize query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /forum/posts [get]
func (h *ForumHandler) ListPosts(c *gin.Context) {
	page, size := pageParams(c, 20)
	posts, pagination, err := h.service.ListPosts(c.Request.Context(), page, size)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, posts, pagination)
}

// Thread godoc
// @Summary Post with its replies
// @Tags Forum
// @Produce json
// @Param id path string true "Post ID"
// @Success 200 {object} response.Envelope
// @Router /forum/posts/{id} [get]
func (h *ForumHandler) Thread(c *gin.Context) {
	thread, err := h.service.Thread(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, thread, nil)
}

// CreatePost godoc
// @Summary Create forum post
// @Tags Forum
// @Accept json
// @Produce json
// @Param payload body dto.ForumPostRequest true "Post"
// @Success 201 {object} response.Envelope
// @Router /forum/posts [post]
func (h *ForumHandler) CreatePost(c *gin.Context) {
	var req dto.ForumPostRequest
	if !bindJSON(c, &req) {
		return
	}
	post, err := h.service.CreatePost(c.Request.Context(), teacherID(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, post)
}

// DeletePost godoc
// @Summary Delete own forum post
// @Tags Forum
// @Param id path string true "Post ID"
// @Success 204
// @Router /forum/posts/{id} [delete]
func (h *ForumHandler) DeletePost(c *gin.Context) {
	if err := h.service.DeletePost(c.Request.Context(), teacherID(c), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Reply godoc
// @Summary Reply to a post
// @Tags Forum
// @Accept json
// @Produce json
// @Param id path string true "Post ID"
// @Param payload body dto.ForumReplyRequest true "Reply"
// @Success 201 {object} response.Envelope
// @Router /forum/posts/{id}/replies [post]
func (h *ForumHandler) Reply(c *gin.Context) {
	var req dto.ForumReplyRequest
	if !bindJSON(c, &req) {
		return
	}
	reply, err := h.service.Reply(c.Request.Context(), teacherID(c), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, reply)
}

// AIAnswer godoc
// @Summary Append an assistant answer to a post
// @Tags Forum
// @Produce json
// @Param id path string true "Post ID"
// @Success 201 {object} response.Envelope
// @Failure 502 {object} response.Envelope
// @Router /forum/posts/{id}/ai-answer [post]
func (h *ForumHandler) AIAnswer(c *gin.Context) {
	reply, err := h.service.AIAnswer(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, reply)
}
