package dto

// ChatMessage is one turn in an assistant conversation.
type ChatMessage struct {
	Role    string `json:"role" validate:"required,oneof=user assistant"`
	Content string `json:"content" validate:"required,max=8000"`
}

// ChatRequest carries the history, newest last.
type ChatRequest struct {
	Messages []ChatMessage `json:"messages" validate:"required,min=1,max=50,dive"`
}

// ChatResponse is the assistant's reply. Failed replies carry an explanatory message.
type ChatResponse struct {
	Reply  ChatMessage `json:"reply"`
	Failed bool        `json:"failed,omitempty"`
}
