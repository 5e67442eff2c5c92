package domain

import (
	"strings"
	"time"
)

// SiteSetting is a key/value pair that drives storefront copy.
type SiteSetting struct {
	Key       string    `json:"key"`
	Value     string    `json:"value"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// MaxSettingKeyLength bounds setting keys.
const MaxSettingKeyLength = 128

// ValidateSettingKey rejects empty or oversized keys.
func ValidateSettingKey(key string) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return Invalid("key", "setting key is required")
	}
	if len(key) > MaxSettingKeyLength {
		return Invalid("key", "setting key is too long")
	}
	return nil
}

// DefaultSettings are written by the seed command.
var DefaultSettings = map[string]string{
	"siteName":       "ProjectHub",
	"heroTitle":      "Premium Digital Projects",
	"heroSubtitle":   "Discover high-quality, ready-to-use projects for your next venture",
	"aboutTitle":     "About Us",
	"aboutContent":   "We are a team of passionate developers creating premium digital solutions.",
	"contactEmail":   "contact@projecthub.com",
	"contactPhone":   "+1 (555) 123-4567",
	"contactAddress": "123 Tech Street, Silicon Valley, CA 94025",
}
