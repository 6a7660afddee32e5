package contact

// ContactRequest represents a contact form submission
type ContactRequest struct {
	Name    string `json:"name" validate:"required,min=2,max=100"`
	Email   string `json:"email" validate:"required,max=254,email"`
	Message string `json:"message" validate:"required,min=10,max=1000"`
}

// ContactResponse represents the response after submitting a contact form
type ContactResponse struct {
	Success   bool   `json:"success"`
	Message   string `json:"message"`
	MessageID string `json:"messageId,omitempty"`
}
