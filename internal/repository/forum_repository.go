package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/teacher-journal-api/internal/models"
	"github.com/noah-isme/teacher-journal-api/pkg/database"
)

const forumPostColumns = `p.id, p.author_id, p.title, p.body, p.created_at,
(SELECT COUNT(*) FROM forum_replies fr WHERE fr.post_id = p.id) AS reply_count`

// ForumRepository persists forum posts and replies. Posts are visible to every teacher.
type ForumRepository struct {
	db *sqlx.DB
}

// NewForumRepository constructs the repository.
func NewForumRepository(db *sqlx.DB) *ForumRepository {
	return &ForumRepository{db: db}
}

// ListPosts returns the newest posts first.
func (r *ForumRepository) ListPosts(ctx context.Context, page, size int) ([]models.ForumPost, int, error) {
	if page < 1 {
		page = 1
	}
	if size <= 0 || size > 100 {
		size = 20
	}
	query := fmt.Sprintf("SELECT %s FROM forum_posts p ORDER BY p.created_at DESC LIMIT %d OFFSET %d", forumPostColumns, size, (page-1)*size)
	var posts []models.ForumPost
	if err := r.db.SelectContext(ctx, &posts, query); err != nil {
		return nil, 0, fmt.Errorf("list forum posts: %w", err)
	}
	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM forum_posts"); err != nil {
		return nil, 0, fmt.Errorf("count forum posts: %w", err)
	}
	return posts, total, nil
}

// FindPost returns a post by id.
func (r *ForumRepository) FindPost(ctx context.Context, id string) (*models.ForumPost, error) {
	query := fmt.Sprintf("SELECT %s FROM forum_posts p WHERE p.id = $1", forumPostColumns)
	var post models.ForumPost
	if err := r.db.GetContext(ctx, &post, query, id); err != nil {
		return nil, err
	}
	return &post, nil
}

// CreatePost inserts a post.
func (r *ForumRepository) CreatePost(ctx context.Context, post *models.ForumPost) error {
	if post.ID == "" {
		post.ID = uuid.NewString()
	}
	if post.CreatedAt.IsZero() {
		post.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO forum_posts (id, author_id, title, body, created_at) VALUES (:id, :author_id, :title, :body, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, post); err != nil {
		return fmt.Errorf("create forum post: %w", err)
	}
	return nil
}

// DeletePost removes an author's post together with its replies.
func (r *ForumRepository) DeletePost(ctx context.Context, authorID, id string) error {
	return database.WithTx(ctx, r.db, func(tx *sqlx.Tx) error {
		var owner string
		if err := tx.GetContext(ctx, &owner, `SELECT author_id FROM forum_posts WHERE id = $1 FOR UPDATE`, id); err != nil {
			return err
		}
		if owner != authorID {
			return sql.ErrNoRows
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM forum_replies WHERE post_id = $1`, id); err != nil {
			return fmt.Errorf("delete forum replies: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM forum_posts WHERE id = $1`, id); err != nil {
			return fmt.Errorf("delete forum post: %w", err)
		}
		return nil
	})
}

// ListReplies returns replies oldest first.
func (r *ForumRepository) ListReplies(ctx context.Context, postID string) ([]models.ForumReply, error) {
	const query = `SELECT id, post_id, author_id, body, is_ai, created_at FROM forum_replies WHERE post_id = $1 ORDER BY created_at ASC`
	var replies []models.ForumReply
	if err := r.db.SelectContext(ctx, &replies, query, postID); err != nil {
		return nil, fmt.Errorf("list forum replies: %w", err)
	}
	return replies, nil
}

// CreateReply inserts a reply.
func (r *ForumRepository) CreateReply(ctx context.Context, reply *models.ForumReply) error {
	if reply.ID == "" {
		reply.ID = uuid.NewString()
	}
	if reply.CreatedAt.IsZero() {
		reply.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO forum_replies (id, post_id, author_id, body, is_ai, created_at) VALUES (:id, :post_id, :author_id, :body, :is_ai, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, reply); err != nil {
		return fmt.Errorf("create forum reply: %w", err)
	}
	return nil
}
