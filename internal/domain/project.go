package domain

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ProjectStatus is the listing state of a project.
// Transitions between the three states are unrestricted.
type ProjectStatus string

const (
	// StatusActive projects are listed publicly.
	StatusActive ProjectStatus = "active"

	// StatusDraft projects are visible only on the dashboard.
	StatusDraft ProjectStatus = "draft"

	// StatusArchived projects are hidden from the storefront.
	StatusArchived ProjectStatus = "archived"
)

// Valid reports whether s is a known status.
func (s ProjectStatus) Valid() bool {
	switch s {
	case StatusActive, StatusDraft, StatusArchived:
		return true
	}
	return false
}

// Project is a digital good listed in the storefront.
type Project struct {
	ID              string        `json:"id"`
	Title           string        `json:"title"`
	Description     string        `json:"description"`
	LongDescription string        `json:"longDescription"`
	ImageURL        string        `json:"imageUrl"`
	Price           float64       `json:"price"`
	Category        string        `json:"category"`
	Technologies    string        `json:"technologies"`
	DemoURL         *string       `json:"demoUrl"`
	SourceURL       *string       `json:"sourceUrl"`
	Status          ProjectStatus `json:"status"`
	Featured        bool          `json:"featured"`

	// OwnerID references the Account that created the project.
	OwnerID string `json:"userId"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// NewProject creates a Project owned by ownerID with a fresh id and timestamps.
func NewProject(ownerID string) *Project {
	now := time.Now().UTC()
	return &Project{
		ID:        uuid.NewString(),
		OwnerID:   ownerID,
		Status:    StatusActive,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// IsPublic returns true if the project may appear in anonymous listings.
func (p *Project) IsPublic() bool {
	return p.Status == StatusActive
}

// TechnologyList splits the comma-delimited technologies field.
func (p *Project) TechnologyList() []string {
	var out []string
	for _, t := range strings.Split(p.Technologies, ",") {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// Price limits match the NUMERIC(12, 2) column so both drivers store the
// same value.
const (
	MaxPrice         = 9999999999.99
	maxPriceDecimals = 2
)

// ParsePrice parses a price supplied as text and rejects negative,
// non-numeric, NaN and infinite values, values above MaxPrice and values
// with more than two decimal places.
func ParsePrice(raw string) (float64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, Invalid("price", "price is required")
	}
	price, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(price) || math.IsInf(price, 0) {
		return 0, Invalid("price", "price must be a valid number")
	}
	if price < 0 {
		return 0, Invalid("price", "price must not be negative")
	}
	if price > MaxPrice {
		return 0, Invalid("price", "price must be at most 9999999999.99")
	}
	if decimals(price) > maxPriceDecimals {
		return 0, Invalid("price", "price must have at most two decimal places")
	}
	return price, nil
}

// decimals counts the fractional digits of the shortest exact form of f.
func decimals(f float64) int {
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if i := strings.IndexByte(s, '.'); i >= 0 {
		return len(s) - i - 1
	}
	return 0
}

// ProjectFilter narrows a project listing.
type ProjectFilter struct {
	// Category matches exactly when non-empty.
	Category string

	// FeaturedOnly restricts to featured projects.
	FeaturedOnly bool

	// Status restricts to one status when non-empty.
	Status ProjectStatus

	// OwnerID restricts to one owner when non-empty.
	OwnerID string

	// ExcludeID omits one project (used for related listings).
	ExcludeID string

	// Limit caps the number of results; 0 means no cap.
	Limit int

	// NewestFirst orders by creation time only, ignoring featured.
	NewestFirst bool
}

// OrderBy returns the listing order for the filter.
func (f ProjectFilter) OrderBy() string {
	if f.NewestFirst {
		return "created_at DESC"
	}
	return "featured DESC, created_at DESC"
}
