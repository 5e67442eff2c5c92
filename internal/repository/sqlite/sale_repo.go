package sqlite

import (
	"context"
	"fmt"

	"github.com/prn-tf/projecthub/internal/domain"
	"github.com/prn-tf/projecthub/internal/repository"
)

// saleRepository implements repository.SaleRepository for SQLite.
type saleRepository struct {
	db *DB
}

// NewSaleRepository creates a new SQLite sale repository.
func NewSaleRepository(db *DB) repository.SaleRepository {
	return &saleRepository{db: db}
}

// Create appends a sale to the ledger.
func (r *saleRepository) Create(ctx context.Context, s *domain.Sale) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO sales (id, project_id, seller_id, amount, created_at) VALUES (?, ?, ?, ?, ?)`,
		s.ID, s.ProjectID, s.SellerID, s.Amount, formatTime(s.CreatedAt))
	if err != nil {
		return fmt.Errorf("failed to create sale: %w", err)
	}
	return nil
}

// Earnings sums the ledger, optionally for a single seller.
func (r *saleRepository) Earnings(ctx context.Context, sellerID string) (*domain.Earnings, error) {
	query := `SELECT COALESCE(SUM(amount), 0), COUNT(*) FROM sales`
	var args []any
	if sellerID != "" {
		query += ` WHERE seller_id = ?`
		args = append(args, sellerID)
	}

	e := &domain.Earnings{}
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&e.Total, &e.SaleCount); err != nil {
		return nil, fmt.Errorf("failed to sum earnings: %w", err)
	}
	return e, nil
}

// Ensure saleRepository implements repository.SaleRepository.
var _ repository.SaleRepository = (*saleRepository)(nil)
