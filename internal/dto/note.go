package dto

import "github.com/noah-isme/teacher-journal-api/internal/models"

// ChecklistItemRequest is one checklist entry in a note payload.
type ChecklistItemRequest struct {
	ID      string `json:"id"`
	Text    string `json:"text" validate:"required,max=500"`
	Checked bool   `json:"checked"`
}

// NoteRequest creates or replaces a note.
type NoteRequest struct {
	Title     string                 `json:"title" validate:"max=200"`
	Content   string                 `json:"content" validate:"max=20000"`
	Type      models.NoteType        `json:"type" validate:"required,oneof=text checklist"`
	Items     []ChecklistItemRequest `json:"items" validate:"omitempty,dive"`
	Date      string                 `json:"date" validate:"omitempty,datetime=2006-01-02"`
	Color     string                 `json:"color" validate:"omitempty,max=32"`
	TextColor string                 `json:"textColor" validate:"omitempty,max=32"`
	ImageURL  *string                `json:"imageUrl,omitempty" validate:"omitempty,url"`
	IsPinned  bool                   `json:"isPinned"`
}

// NoteQuery filters the note list.
type NoteQuery struct {
	Search   string          `form:"q"`
	Type     models.NoteType `form:"type" validate:"omitempty,oneof=text checklist"`
	Page     int             `form:"page"`
	PageSize int             `form:"pageSize"`
}

// TranscriptRequest turns a dictated transcript into a note.
type TranscriptRequest struct {
	Transcript string `json:"transcript" validate:"required,max=20000"`
}
