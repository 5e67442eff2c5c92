// Package repository defines data access interfaces for ProjectHub.
// These interfaces abstract database operations, allowing for different implementations
// (SQLite, PostgreSQL, in-memory for testing) while keeping the service layer clean.
package repository

import (
	"context"

	"github.com/prn-tf/projecthub/internal/domain"
)

// =============================================================================
// Account Repository
// =============================================================================

// AccountRepository is the credential store.
type AccountRepository interface {
	// Create inserts a new account.
	// Returns domain.ErrDuplicateUsername if the username is taken.
	Create(ctx context.Context, account *domain.Account) error

	// GetByID retrieves an account by ID.
	GetByID(ctx context.Context, id string) (*domain.Account, error)

	// GetByUsername retrieves an account by username.
	GetByUsername(ctx context.Context, username string) (*domain.Account, error)

	// List returns all accounts, newest first.
	List(ctx context.Context) ([]*domain.Account, error)

	// Delete deletes an account by ID.
	Delete(ctx context.Context, id string) error

	// ExistsByUsername checks if an account with the given username exists.
	ExistsByUsername(ctx context.Context, username string) (bool, error)
}

// =============================================================================
// Project Repository
// =============================================================================

// ProjectRepository defines the interface for project data access.
type ProjectRepository interface {
	// Create inserts a new project.
	Create(ctx context.Context, project *domain.Project) error

	// GetByID retrieves a project by ID.
	GetByID(ctx context.Context, id string) (*domain.Project, error)

	// List returns projects matching the filter ordered by featured desc, created_at desc.
	List(ctx context.Context, filter domain.ProjectFilter) ([]*domain.Project, error)

	// Search returns active projects whose title, description, technologies
	// or category contain query.
	Search(ctx context.Context, query string, limit int) ([]*domain.Project, error)

	// Categories returns the distinct categories of active projects.
	Categories(ctx context.Context) ([]string, error)

	// Update overwrites the mutable fields of an existing project.
	Update(ctx context.Context, project *domain.Project) error

	// Delete deletes a project by ID.
	Delete(ctx context.Context, id string) error

	// Count returns the number of projects matching the filter.
	Count(ctx context.Context, filter domain.ProjectFilter) (int64, error)
}

// =============================================================================
// Contact Message Repository
// =============================================================================

// MessageRepository defines the interface for contact message data access.
type MessageRepository interface {
	// Create inserts a new message.
	Create(ctx context.Context, msg *domain.ContactMessage) error

	// GetByID retrieves a message by ID.
	GetByID(ctx context.Context, id string) (*domain.ContactMessage, error)

	// List returns messages newest first. A limit of 0 returns all.
	List(ctx context.Context, limit int) ([]*domain.ContactMessage, error)

	// SetRead updates the read flag.
	SetRead(ctx context.Context, id string, isRead bool) error

	// Delete deletes a message by ID.
	Delete(ctx context.Context, id string) error

	// Count returns the total and unread message counts.
	Count(ctx context.Context) (total int64, unread int64, err error)
}

// =============================================================================
// Setting Repository
// =============================================================================

// SettingRepository defines the interface for site setting data access.
type SettingRepository interface {
	// Get retrieves a single setting by key.
	Get(ctx context.Context, key string) (*domain.SiteSetting, error)

	// List returns every setting.
	List(ctx context.Context) ([]*domain.SiteSetting, error)

	// Upsert creates the setting or replaces its value in place.
	Upsert(ctx context.Context, key, value string) (*domain.SiteSetting, error)

	// UpsertMany applies Upsert for every pair inside one transaction.
	UpsertMany(ctx context.Context, values map[string]string) error
}

// =============================================================================
// Sale Repository
// =============================================================================

// SaleRepository is the append-only sales ledger.
type SaleRepository interface {
	// Create appends a sale.
	Create(ctx context.Context, sale *domain.Sale) error

	// Earnings sums the ledger for one seller, or everyone if sellerID is empty.
	Earnings(ctx context.Context, sellerID string) (*domain.Earnings, error)
}

// =============================================================================
// Aggregates
// =============================================================================

// Repositories holds all repository instances.
type Repositories struct {
	Account AccountRepository
	Project ProjectRepository
	Message MessageRepository
	Setting SettingRepository
	Sale    SaleRepository
}

// DatabaseHealth is implemented by both database backends.
// It satisfies handler.HealthChecker for the health endpoint.
type DatabaseHealth interface {
	Ping(ctx context.Context) error
	Close() error
}
