package domain

import (
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

// emailRegex is the loose address check applied to visitor submissions.
var emailRegex = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// ValidEmail reports whether s looks like an email address.
func ValidEmail(s string) bool {
	return emailRegex.MatchString(s)
}

// ContactMessage is a message left by a visitor through the contact form.
type ContactMessage struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Subject   string    `json:"subject"`
	Body      string    `json:"message"`
	IsRead    bool      `json:"isRead"`
	CreatedAt time.Time `json:"createdAt"`
}

// NewContactMessage creates an unread message with a fresh id.
func NewContactMessage(name, email, subject, body string) *ContactMessage {
	return &ContactMessage{
		ID:        uuid.NewString(),
		Name:      name,
		Email:     email,
		Subject:   subject,
		Body:      body,
		CreatedAt: time.Now().UTC(),
	}
}

// Validate checks required fields and the email format.
func (m *ContactMessage) Validate() error {
	if strings.TrimSpace(m.Name) == "" || strings.TrimSpace(m.Email) == "" ||
		strings.TrimSpace(m.Subject) == "" || strings.TrimSpace(m.Body) == "" {
		return Invalid("", "All fields are required")
	}
	if !ValidEmail(m.Email) {
		return Invalid("email", "Invalid email address")
	}
	return nil
}
