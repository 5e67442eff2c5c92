package domain

import (
	"time"

	"github.com/google/uuid"
)

// Sale is an append-only ledger row used for earnings reporting.
// No exposed operation updates or deletes a sale.
type Sale struct {
	ID        string    `json:"id"`
	ProjectID string    `json:"projectId"`
	SellerID  string    `json:"sellerId"`
	Amount    float64   `json:"amount"`
	CreatedAt time.Time `json:"createdAt"`
}

// NewSale records a sale of projectID by sellerID.
func NewSale(projectID, sellerID string, amount float64) *Sale {
	return &Sale{
		ID:        uuid.NewString(),
		ProjectID: projectID,
		SellerID:  sellerID,
		Amount:    amount,
		CreatedAt: time.Now().UTC(),
	}
}

// Earnings aggregates the ledger for one seller or for everyone.
type Earnings struct {
	Total     float64 `json:"total"`
	SaleCount int64   `json:"saleCount"`
}
