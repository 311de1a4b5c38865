package models

import "time"

// ForumPost is a question shared with other teachers.
type ForumPost struct {
	ID         string    `db:"id" json:"id"`
	AuthorID   string    `db:"author_id" json:"author_id"`
	Title      string    `db:"title" json:"title"`
	Body       string    `db:"body" json:"body"`
	ReplyCount int       `db:"reply_count" json:"reply_count"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

// ForumReply answers a post. AI-generated replies carry IsAI.
type ForumReply struct {
	ID        string    `db:"id" json:"id"`
	PostID    string    `db:"post_id" json:"post_id"`
	AuthorID  string    `db:"author_id" json:"author_id"`
	Body      string    `db:"body" json:"body"`
	IsAI      bool      `db:"is_ai" json:"is_ai"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// ForumThread is a post with its replies in chronological order.
type ForumThread struct {
	ForumPost
	Replies []ForumReply `json:"replies"`
}
