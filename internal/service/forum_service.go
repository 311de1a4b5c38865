package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/teacher-journal-api/internal/dto"
	"github.com/noah-isme/teacher-journal-api/internal/models"
	"github.com/noah-isme/teacher-journal-api/pkg/ai"
	appErrors "github.com/noah-isme/teacher-journal-api/pkg/errors"
)

// AssistantAuthorID marks replies written by the assistant.
const AssistantAuthorID = "assistant"

type forumRepository interface {
	ListPosts(ctx context.Context, page, size int) ([]models.ForumPost, int, error)
	FindPost(ctx context.Context, id string) (*models.ForumPost, error)
	CreatePost(ctx context.Context, post *models.ForumPost) error
	DeletePost(ctx context.Context, authorID, id string) error
	ListReplies(ctx context.Context, postID string) ([]models.ForumReply, error)
	CreateReply(ctx context.Context, reply *models.ForumReply) error
}

// ForumService manages the shared teacher forum.
type ForumService struct {
	repo      forumRepository
	assistant *AssistantService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewForumService constructs ForumService.
func NewForumService(repo forumRepository, assistant *AssistantService, validate *validator.Validate, logger *zap.Logger) *ForumService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ForumService{repo: repo, assistant: assistant, validator: validate, logger: logger}
}

// ListPosts returns posts newest first.
func (s *ForumService) ListPosts(ctx context.Context, page, size int) ([]models.ForumPost, *models.Pagination, error) {
	posts, total, err := s.repo.ListPosts(ctx, page, size)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list posts")
	}
	return posts, models.NewPagination(page, size, total, 20), nil
}

// Thread returns a post with its replies.
func (s *ForumService) Thread(ctx context.Context, id string) (*models.ForumThread, error) {
	post, err := s.findPost(ctx, id)
	if err != nil {
		return nil, err
	}
	replies, err := s.repo.ListReplies(ctx, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list replies")
	}
	if replies == nil {
		replies = []models.ForumReply{}
	}
	post.ReplyCount = len(replies)
	return &models.ForumThread{ForumPost: *post, Replies: replies}, nil
}

// CreatePost publishes a post.
func (s *ForumService) CreatePost(ctx context.Context, authorID string, req dto.ForumPostRequest) (*models.ForumPost, error) {
	req.Title = strings.TrimSpace(req.Title)
	req.Body = strings.TrimSpace(req.Body)
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid post payload")
	}
	post := &models.ForumPost{AuthorID: authorID, Title: req.Title, Body: req.Body}
	if err := s.repo.CreatePost(ctx, post); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create post")
	}
	return post, nil
}

// DeletePost removes the caller's own post with its replies.
func (s *ForumService) DeletePost(ctx context.Context, authorID, id string) error {
	if err := s.repo.DeletePost(ctx, authorID, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "post not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete post")
	}
	return nil
}

// Reply adds a teacher reply.
func (s *ForumService) Reply(ctx context.Context, authorID, postID string, req dto.ForumReplyRequest) (*models.ForumReply, error) {
	req.Body = strings.TrimSpace(req.Body)
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid reply payload")
	}
	if _, err := s.findPost(ctx, postID); err != nil {
		return nil, err
	}
	reply := &models.ForumReply{PostID: postID, AuthorID: authorID, Body: req.Body}
	if err := s.repo.CreateReply(ctx, reply); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create reply")
	}
	return reply, nil
}

// AIAnswer appends an assistant reply. When the assistant fails no reply is created.
func (s *ForumService) AIAnswer(ctx context.Context, postID string) (*models.ForumReply, error) {
	post, err := s.findPost(ctx, postID)
	if err != nil {
		return nil, err
	}
	var out struct {
		Answer string `json:"answer"`
	}
	if err := s.assistant.Ask(ctx, ai.TaskForumAnswer, post.Title+"\n\n"+post.Body, forumAnswerSchema, &out); err != nil {
		return nil, err
	}
	answer := strings.TrimSpace(out.Answer)
	if answer == "" {
		return nil, appErrors.Clone(appErrors.ErrAIUnavailable, "assistant returned an empty answer")
	}
	reply := &models.ForumReply{PostID: postID, AuthorID: AssistantAuthorID, Body: answer, IsAI: true}
	if err := s.repo.CreateReply(ctx, reply); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create reply")
	}
	return reply, nil
}

func (s *ForumService) findPost(ctx context.Context, id string) (*models.ForumPost, error) {
	post, err := s.repo.FindPost(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "post not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load post")
	}
	return post, nil
}
