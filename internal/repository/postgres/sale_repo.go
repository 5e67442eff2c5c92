package postgres

import (
	"context"
	"fmt"

	"github.com/prn-tf/projecthub/internal/domain"
	"github.com/prn-tf/projecthub/internal/repository"
)

// saleRepository implements repository.SaleRepository.
type saleRepository struct {
	db *DB
}

// NewSaleRepository creates a new PostgreSQL sale repository.
func NewSaleRepository(db *DB) repository.SaleRepository {
	return &saleRepository{db: db}
}

// Create appends a sale to the ledger.
func (r *saleRepository) Create(ctx context.Context, s *domain.Sale) error {
	_, err := r.db.Pool.Exec(ctx,
		`INSERT INTO sales (id, project_id, seller_id, amount, created_at) VALUES ($1, $2, $3, $4, $5)`,
		s.ID, s.ProjectID, s.SellerID, s.Amount, s.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create sale: %w", err)
	}
	return nil
}

// Earnings sums the ledger, optionally for a single seller.
func (r *saleRepository) Earnings(ctx context.Context, sellerID string) (*domain.Earnings, error) {
	e := &domain.Earnings{}
	query := `SELECT COALESCE(SUM(amount), 0)::float8, COUNT(*) FROM sales`
	var args []any
	if sellerID != "" {
		if !validID(sellerID) {
			return e, nil
		}
		query += ` WHERE seller_id = $1`
		args = append(args, sellerID)
	}

	if err := r.db.Pool.QueryRow(ctx, query, args...).Scan(&e.Total, &e.SaleCount); err != nil {
		return nil, fmt.Errorf("failed to sum earnings: %w", err)
	}
	return e, nil
}

// Ensure saleRepository implements repository.SaleRepository.
var _ repository.SaleRepository = (*saleRepository)(nil)
