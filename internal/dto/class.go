package dto

// ClassRequest creates or renames a class.
type ClassRequest struct {
	Name string `json:"name" validate:"required,max=100"`
}

// StudentRequest creates or updates a student.
type StudentRequest struct {
	StudentNumber string `json:"studentNumber" validate:"required,max=32"`
	FirstName     string `json:"firstName" validate:"required,max=100"`
	LastName      string `json:"lastName" validate:"required,max=100"`
}

// RosterTextRequest imports students from free text via the assistant.
type RosterTextRequest struct {
	Text string `json:"text" validate:"required,max=50000"`
}
