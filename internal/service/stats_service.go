package service

import (
	"context"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/prn-tf/projecthub/internal/auth"
	"github.com/prn-tf/projecthub/internal/domain"
	"github.com/prn-tf/projecthub/internal/repository"
)

// recentLimit is the number of recent items on the dashboard.
const recentLimit = 5

// StatsService aggregates the dashboard overview.
type StatsService struct {
	projectRepo repository.ProjectRepository
	messageRepo repository.MessageRepository
	saleRepo    repository.SaleRepository
	guard       *auth.Guard
	logger      zerolog.Logger
}

// NewStatsService creates a new StatsService.
func NewStatsService(
	projectRepo repository.ProjectRepository,
	messageRepo repository.MessageRepository,
	saleRepo repository.SaleRepository,
	guard *auth.Guard,
	logger zerolog.Logger,
) *StatsService {
	return &StatsService{
		projectRepo: projectRepo,
		messageRepo: messageRepo,
		saleRepo:    saleRepo,
		guard:       guard,
		logger:      logger.With().Str("service", "stats").Logger(),
	}
}

// MessageStats summarizes the inbox. Only admins receive it.
type MessageStats struct {
	Total  int64                    `json:"total"`
	Unread int64                    `json:"unread"`
	Recent []*domain.ContactMessage `json:"recent"`
}

// DashboardStats is the dashboard overview. Project counts, recent projects
// and earnings cover every seller for admins and only the caller otherwise.
type DashboardStats struct {
	ActiveProjects   int64             `json:"activeProjects"`
	FeaturedProjects int64             `json:"featuredProjects"`
	RecentProjects   []*domain.Project `json:"recentProjects"`
	Earnings         *domain.Earnings  `json:"earnings"`
	Messages         *MessageStats     `json:"messages,omitempty"`
}

// Dashboard computes the overview for the caller.
func (s *StatsService) Dashboard(ctx context.Context, session *auth.Session) (*DashboardStats, error) {
	if err := s.guard.Check(session, auth.RequireSession()); err != nil {
		return nil, err
	}

	var ownerID string
	if !session.IsAdmin() {
		ownerID = session.AccountID
	}

	stats := &DashboardStats{}
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() (err error) {
		stats.ActiveProjects, err = s.projectRepo.Count(gctx, domain.ProjectFilter{
			Status:  domain.StatusActive,
			OwnerID: ownerID,
		})
		return err
	})
	g.Go(func() (err error) {
		stats.FeaturedProjects, err = s.projectRepo.Count(gctx, domain.ProjectFilter{
			FeaturedOnly: true,
			OwnerID:      ownerID,
		})
		return err
	})
	g.Go(func() (err error) {
		stats.RecentProjects, err = s.projectRepo.List(gctx, domain.ProjectFilter{
			OwnerID:     ownerID,
			Limit:       recentLimit,
			NewestFirst: true,
		})
		return err
	})
	g.Go(func() (err error) {
		stats.Earnings, err = s.saleRepo.Earnings(gctx, ownerID)
		return err
	})

	if session.IsAdmin() {
		messages := &MessageStats{}
		stats.Messages = messages
		g.Go(func() (err error) {
			messages.Total, messages.Unread, err = s.messageRepo.Count(gctx)
			return err
		})
		g.Go(func() (err error) {
			messages.Recent, err = s.messageRepo.List(gctx, recentLimit)
			return err
		})
	}

	if err := g.Wait(); err != nil {
		s.logger.Error().Err(err).Str("account_id", session.AccountID).Msg("failed to compute dashboard stats")
		return nil, internalError(err)
	}

	if stats.RecentProjects == nil {
		stats.RecentProjects = []*domain.Project{}
	}
	if stats.Messages != nil && stats.Messages.Recent == nil {
		stats.Messages.Recent = []*domain.ContactMessage{}
	}
	return stats, nil
}

// RecordSale appends a sale to the ledger. It backs the seed command;
// checkout does not process payments.
func (s *StatsService) RecordSale(ctx context.Context, projectID, sellerID string, amount float64) (*domain.Sale, error) {
	if amount < 0 {
		return nil, domain.Invalid("amount", "amount must not be negative")
	}
	sale := domain.NewSale(projectID, sellerID, amount)
	if err := s.saleRepo.Create(ctx, sale); err != nil {
		s.logger.Error().Err(err).Str("project_id", projectID).Msg("failed to record sale")
		return nil, internalError(err)
	}
	return sale, nil
}
