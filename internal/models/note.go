package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// NoteType selects free text or checklist notes.
type NoteType string

const (
	NoteTypeText      NoteType = "text"
	NoteTypeChecklist NoteType = "checklist"
)

// ChecklistItem is one entry of a checklist note.
type ChecklistItem struct {
	ID      string `json:"id"`
	Text    string `json:"text"`
	Checked bool   `json:"checked"`
}

// ChecklistItems is persisted as JSONB.
type ChecklistItems []ChecklistItem

// Value marshals items to JSON for persistence.
func (c ChecklistItems) Value() (driver.Value, error) {
	if c == nil {
		c = ChecklistItems{}
	}
	data, err := json.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("marshal checklist items: %w", err)
	}
	return data, nil
}

// Scan unmarshals JSON payloads into checklist items.
func (c *ChecklistItems) Scan(value interface{}) error {
	if value == nil {
		*c = ChecklistItems{}
		return nil
	}
	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("unsupported type %T for ChecklistItems", value)
	}
	if len(data) == 0 {
		*c = ChecklistItems{}
		return nil
	}
	if err := json.Unmarshal(data, c); err != nil {
		return fmt.Errorf("unmarshal checklist items: %w", err)
	}
	return nil
}

// Note is a teacher's free-form note or checklist.
type Note struct {
	ID        string         `db:"id" json:"id"`
	TeacherID string         `db:"teacher_id" json:"teacher_id"`
	Title     string         `db:"title" json:"title"`
	Content   string         `db:"content" json:"content"`
	Type      NoteType       `db:"type" json:"type"`
	Items     ChecklistItems `db:"items" json:"items,omitempty"`
	Date      Date           `db:"date" json:"date"`
	Color     string         `db:"color" json:"color"`
	TextColor string         `db:"text_color" json:"text_color"`
	ImageURL  *string        `db:"image_url" json:"image_url,omitempty"`
	IsPinned  bool           `db:"is_pinned" json:"is_pinned"`
	CreatedAt time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt time.Time      `db:"updated_at" json:"updated_at"`
}

// NoteFilter narrows note listings.
type NoteFilter struct {
	TeacherID string
	Search    string
	Type      NoteType
	Page      int
	PageSize  int
}
