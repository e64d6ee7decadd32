package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Budget is a spending or income target for one category in one period.
// Month holds the period index: 1-12 for monthly, 1-4 for quarterly, always 1 for annual.
type Budget struct {
	ID          uuid.UUID       `json:"id"`
	WorkspaceID int32           `json:"workspaceId"`
	Category    string          `json:"category"`
	Amount      decimal.Decimal `json:"amount"`
	Period      PeriodType      `json:"period"`
	Year        int             `json:"year"`
	Month       int             `json:"month"`
	Type        TransactionType `json:"type"`
	Company     *string         `json:"company,omitempty"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

// AppliesTo reports whether the budget covers the given company.
// A budget without a company applies to all companies.
func (b *Budget) AppliesTo(company string) bool {
	if b.Company == nil || *b.Company == "" {
		return true
	}
	return *b.Company == company
}

type BudgetFilters struct {
	Period *PeriodType
	Year   *int
	Month  *int
	Type   *TransactionType
}

type BudgetRepository interface {
	Create(ctx context.Context, budget *Budget) (*Budget, error)
	GetByID(ctx context.Context, workspaceID int32, id uuid.UUID) (*Budget, error)
	List(ctx context.Context, workspaceID int32, filters *BudgetFilters) ([]*Budget, error)
	Update(ctx context.Context, budget *Budget) (*Budget, error)
	Delete(ctx context.Context, workspaceID int32, id uuid.UUID) error
}
