package dto

// ForumPostRequest creates a post.
type ForumPostRequest struct {
	Title string `json:"title" validate:"required,max=200"`
	Body  string `json:"body" validate:"required,max=20000"`
}

// ForumReplyRequest adds a reply.
type ForumReplyRequest struct {
	Body string `json:"body" validate:"required,max=20000"`
}
