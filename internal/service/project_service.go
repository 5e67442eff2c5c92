package service

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"github.com/prn-tf/projecthub/internal/auth"
	"github.com/prn-tf/projecthub/internal/domain"
	"github.com/prn-tf/projecthub/internal/metrics"
	"github.com/prn-tf/projecthub/internal/repository"
)

// Search and listing limits.
const (
	MinSearchLength  = 2
	MaxSearchResults = 8
	MaxRelated       = 3
)

// ProjectService handles the storefront catalog.
type ProjectService struct {
	projectRepo repository.ProjectRepository
	guard       *auth.Guard
	cache       jsonCache
	logger      zerolog.Logger
	now         func() time.Time
}

// NewProjectService creates a new ProjectService. cache may be nil.
func NewProjectService(
	projectRepo repository.ProjectRepository,
	guard *auth.Guard,
	cache repository.Cache,
	m *metrics.Metrics,
	logger zerolog.Logger,
) *ProjectService {
	logger = logger.With().Str("service", "project").Logger()
	return &ProjectService{
		projectRepo: projectRepo,
		guard:       guard,
		cache:       jsonCache{cache: cache, metrics: m, logger: logger},
		logger:      logger,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// =============================================================================
// Input/Output Structs
// =============================================================================

// ProjectInput carries the writable fields of a project. Update replaces
// every field; an empty Status or nil Featured keeps the stored value.
type ProjectInput struct {
	Title           string
	Description     string
	LongDescription string
	ImageURL        string
	// Price is the raw submitted value, parsed with domain.ParsePrice.
	Price        string
	Category     string
	Technologies string
	DemoURL      string
	SourceURL    string
	Status       domain.ProjectStatus
	Featured     *bool
}

// SearchResult is the projection returned by Search.
type SearchResult struct {
	ID       string  `json:"id"`
	Title    string  `json:"title"`
	Category string  `json:"category"`
	Price    float64 `json:"price"`
	ImageURL string  `json:"imageUrl"`
}

func (in ProjectInput) validate() (float64, error) {
	if strings.TrimSpace(in.Title) == "" {
		return 0, domain.Invalid("title", "title is required")
	}
	if strings.TrimSpace(in.Description) == "" {
		return 0, domain.Invalid("description", "description is required")
	}
	if strings.TrimSpace(in.Category) == "" {
		return 0, domain.Invalid("category", "category is required")
	}
	if in.Status != "" && !in.Status.Valid() {
		return 0, domain.Invalid("status", "status must be one of active, draft, archived")
	}
	return domain.ParsePrice(in.Price)
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

// apply copies input onto p. Featured is only honored for admins.
func (in ProjectInput) apply(p *domain.Project, price float64, isAdmin bool) {
	p.Title = strings.TrimSpace(in.Title)
	p.Description = in.Description
	p.LongDescription = in.LongDescription
	p.ImageURL = strings.TrimSpace(in.ImageURL)
	p.Price = price
	p.Category = strings.TrimSpace(in.Category)
	p.Technologies = in.Technologies
	p.DemoURL = optional(in.DemoURL)
	p.SourceURL = optional(in.SourceURL)
	if in.Status != "" {
		p.Status = in.Status
	}
	if isAdmin && in.Featured != nil {
		p.Featured = *in.Featured
	}
}

// =============================================================================
// Public catalog
// =============================================================================

// ListPublic returns active projects, featured first then newest.
func (s *ProjectService) ListPublic(ctx context.Context, category string, featuredOnly bool) ([]*domain.Project, error) {
	projects, err := s.projectRepo.List(ctx, domain.ProjectFilter{
		Status:       domain.StatusActive,
		Category:     category,
		FeaturedOnly: featuredOnly,
	})
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to list projects")
		return nil, internalError(err)
	}
	return projects, nil
}

// Get returns a project. Drafts and archived projects are only visible to
// their owner and to admins; everyone else gets domain.ErrNotFound.
func (s *ProjectService) Get(ctx context.Context, session *auth.Session, id string) (*domain.Project, error) {
	project, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !project.IsPublic() && auth.Authorize(session, auth.RequireOwner(project.OwnerID)) != auth.Allow {
		return nil, domain.ErrNotFound
	}
	return project, nil
}

// Related returns up to MaxRelated other active projects in the same category.
func (s *ProjectService) Related(ctx context.Context, id string) ([]*domain.Project, error) {
	project, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !project.IsPublic() {
		return nil, domain.ErrNotFound
	}

	related, err := s.projectRepo.List(ctx, domain.ProjectFilter{
		Status:    domain.StatusActive,
		Category:  project.Category,
		ExcludeID: project.ID,
		Limit:     MaxRelated,
	})
	if err != nil {
		s.logger.Error().Err(err).Str("project_id", id).Msg("failed to list related projects")
		return nil, internalError(err)
	}
	return related, nil
}

// Categories returns the distinct categories of active projects.
func (s *ProjectService) Categories(ctx context.Context) ([]string, error) {
	var categories []string
	if s.cache.get(ctx, repository.CacheKeys.Categories(), &categories) {
		return categories, nil
	}

	categories, err := s.projectRepo.Categories(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to list categories")
		return nil, internalError(err)
	}

	s.cache.set(ctx, repository.CacheKeys.Categories(), categories, categoriesCacheTTL)
	return categories, nil
}

// Search matches active projects by title, description, technologies or
// category. Queries shorter than MinSearchLength return an empty list
// without touching the store.
func (s *ProjectService) Search(ctx context.Context, query string) ([]SearchResult, error) {
	query = strings.TrimSpace(query)
	if utf8.RuneCountInString(query) < MinSearchLength {
		return []SearchResult{}, nil
	}

	projects, err := s.projectRepo.Search(ctx, query, MaxSearchResults)
	if err != nil {
		s.logger.Error().Err(err).Str("query", query).Msg("failed to search projects")
		return nil, internalError(err)
	}

	results := make([]SearchResult, 0, len(projects))
	for _, p := range projects {
		results = append(results, SearchResult{
			ID:       p.ID,
			Title:    p.Title,
			Category: p.Category,
			Price:    p.Price,
			ImageURL: p.ImageURL,
		})
	}
	return results, nil
}

// Checkout accepts a purchase intent for an active project. Payment is not
// processed; the call only confirms the project can be bought.
func (s *ProjectService) Checkout(ctx context.Context, id string) (*domain.Project, error) {
	project, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !project.IsPublic() {
		return nil, domain.ErrNotFound
	}
	s.logger.Info().Str("project_id", id).Msg("checkout requested")
	return project, nil
}

// =============================================================================
// Dashboard
// =============================================================================

// ListDashboard returns every project for admins and the caller's own
// projects otherwise, newest first.
func (s *ProjectService) ListDashboard(ctx context.Context, session *auth.Session) ([]*domain.Project, error) {
	if err := s.guard.Check(session, auth.RequireSession()); err != nil {
		return nil, err
	}

	filter := domain.ProjectFilter{NewestFirst: true}
	if !session.IsAdmin() {
		filter.OwnerID = session.AccountID
	}

	projects, err := s.projectRepo.List(ctx, filter)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to list dashboard projects")
		return nil, internalError(err)
	}
	return projects, nil
}

// Create creates a project owned by the caller.
func (s *ProjectService) Create(ctx context.Context, session *auth.Session, input ProjectInput) (*domain.Project, error) {
	if err := s.guard.Check(session, auth.RequireSession()); err != nil {
		return nil, err
	}
	price, err := input.validate()
	if err != nil {
		return nil, err
	}

	project := domain.NewProject(session.AccountID)
	input.apply(project, price, session.IsAdmin())

	if err := s.projectRepo.Create(ctx, project); err != nil {
		if isDomainError(err) {
			return nil, err
		}
		s.logger.Error().Err(err).Str("title", project.Title).Msg("failed to create project")
		return nil, internalError(err)
	}

	s.cache.invalidate(ctx, repository.CacheKeys.Categories())
	s.logger.Info().
		Str("project_id", project.ID).
		Str("owner_id", project.OwnerID).
		Msg("project created")

	return project, nil
}

// Update replaces a project's fields. Only the owner or an admin may update;
// a non-admin's featured value is silently ignored.
func (s *ProjectService) Update(ctx context.Context, session *auth.Session, id string, input ProjectInput) (*domain.Project, error) {
	if err := s.guard.Check(session, auth.RequireSession()); err != nil {
		return nil, err
	}

	project, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.guard.Check(session, auth.RequireOwner(project.OwnerID)); err != nil {
		return nil, err
	}

	price, err := input.validate()
	if err != nil {
		return nil, err
	}

	input.apply(project, price, session.IsAdmin())
	project.UpdatedAt = s.now()

	if err := s.projectRepo.Update(ctx, project); err != nil {
		if isDomainError(err) {
			return nil, err
		}
		s.logger.Error().Err(err).Str("project_id", id).Msg("failed to update project")
		return nil, internalError(err)
	}

	s.cache.invalidate(ctx, repository.CacheKeys.Categories())
	s.logger.Info().Str("project_id", id).Msg("project updated")
	return project, nil
}

// Delete removes a project. Only the owner or an admin may delete.
func (s *ProjectService) Delete(ctx context.Context, session *auth.Session, id string) error {
	if err := s.guard.Check(session, auth.RequireSession()); err != nil {
		return err
	}

	project, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if err := s.guard.Check(session, auth.RequireOwner(project.OwnerID)); err != nil {
		return err
	}

	if err := s.projectRepo.Delete(ctx, id); err != nil {
		if isDomainError(err) {
			return err
		}
		s.logger.Error().Err(err).Str("project_id", id).Msg("failed to delete project")
		return internalError(err)
	}

	s.cache.invalidate(ctx, repository.CacheKeys.Categories())
	s.logger.Info().Str("project_id", id).Msg("project deleted")
	return nil
}

// Seed stores a fully formed project without an authorization check.
// It backs the seed command.
func (s *ProjectService) Seed(ctx context.Context, project *domain.Project) error {
	if err := s.projectRepo.Create(ctx, project); err != nil {
		if isDomainError(err) {
			return err
		}
		return internalError(err)
	}
	s.cache.invalidate(ctx, repository.CacheKeys.Categories())
	return nil
}

func (s *ProjectService) load(ctx context.Context, id string) (*domain.Project, error) {
	project, err := s.projectRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		s.logger.Error().Err(err).Str("project_id", id).Msg("failed to get project")
		return nil, internalError(err)
	}
	return project, nil
}
