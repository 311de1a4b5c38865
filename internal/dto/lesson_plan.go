package dto

// LessonPlanRequest creates or updates a lesson plan.
type LessonPlanRequest struct {
	ClassID     *string `json:"classId,omitempty"`
	Title       string  `json:"title" validate:"required,max=200"`
	Subject     string  `json:"subject" validate:"required,max=100"`
	Date        string  `json:"date" validate:"required,datetime=2006-01-02"`
	Description string  `json:"description" validate:"max=10000"`
	Objectives  string  `json:"objectives" validate:"max=10000"`
}

// LessonPlanQuery filters lesson plans.
type LessonPlanQuery struct {
	ClassID string `form:"classId"`
	From    string `form:"from" validate:"omitempty,datetime=2006-01-02"`
	To      string `form:"to" validate:"omitempty,datetime=2006-01-02"`
}

// DescriptionSuggestRequest asks the assistant for a lesson description.
type DescriptionSuggestRequest struct {
	Title      string `json:"title" validate:"required,max=200"`
	Subject    string `json:"subject" validate:"required,max=100"`
	Objectives string `json:"objectives" validate:"max=10000"`
}

// DescriptionSuggestion is the autofill result. Generated is false when the assistant failed.
type DescriptionSuggestion struct {
	Description string `json:"description"`
	Generated   bool   `json:"generated"`
	Error       string `json:"error,omitempty"`
}
