package domain

import "strings"

// CustomProjectRequest is a visitor's brief for bespoke work.
// It is mailed to the site admin and never persisted.
type CustomProjectRequest struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	Phone           string `json:"phone,omitempty"`
	ProjectType     string `json:"projectType"`
	Budget          string `json:"budget"`
	Timeline        string `json:"timeline"`
	Description     string `json:"description"`
	Features        string `json:"features"`
	References      string `json:"references,omitempty"`
	AdditionalNotes string `json:"additionalNotes,omitempty"`
}

// Validate checks that every required field is present and the email parses.
func (r *CustomProjectRequest) Validate() error {
	required := []struct {
		field string
		value string
	}{
		{"name", r.Name},
		{"email", r.Email},
		{"projectType", r.ProjectType},
		{"budget", r.Budget},
		{"timeline", r.Timeline},
		{"description", r.Description},
		{"features", r.Features},
	}
	for _, f := range required {
		if strings.TrimSpace(f.value) == "" {
			return Invalid(f.field, f.field+" is required")
		}
	}
	if !ValidEmail(r.Email) {
		return Invalid("email", "Invalid email address")
	}
	return nil
}
