package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type TransactionType string

const (
	TransactionTypeIncome   TransactionType = "income"
	TransactionTypeExpense  TransactionType = "expense"
	TransactionTypeTransfer TransactionType = "transfer"
)

// IsValid reports whether t is one of the known transaction types
func (t TransactionType) IsValid() bool {
	switch t {
	case TransactionTypeIncome, TransactionTypeExpense, TransactionTypeTransfer:
		return true
	}
	return false
}

type ReimbursementStatus string

const (
	ReimbursementPending   ReimbursementStatus = "pending"
	ReimbursementCompleted ReimbursementStatus = "completed"
)

// UnspecifiedScope is the bucket label for transactions without a company or project
const UnspecifiedScope = "unspecified"

type Transaction struct {
	ID                  uuid.UUID            `json:"id"`
	WorkspaceID         int32                `json:"workspaceId"`
	Amount              decimal.Decimal      `json:"amount"`
	Type                TransactionType      `json:"type"`
	Category            string               `json:"category"`
	Date                time.Time            `json:"date"`
	Description         *string              `json:"description,omitempty"`
	Company             *string              `json:"company,omitempty"`
	Project             *string              `json:"project,omitempty"`
	IsReimbursement     bool                 `json:"isReimbursement"`
	ReimbursementStatus *ReimbursementStatus `json:"reimbursementStatus,omitempty"`
	ReimbursedTo        *string              `json:"reimbursedTo,omitempty"`
	IsTransfer          bool                 `json:"isTransfer"`
	FromCompany         *string              `json:"fromCompany,omitempty"`
	ToCompany           *string              `json:"toCompany,omitempty"`
	CreatedAt           time.Time            `json:"createdAt"`
	UpdatedAt           time.Time            `json:"updatedAt"`
}

// IsTransferRecord reports whether the transaction is a zero-sum movement between companies.
// Transfers never contribute to income or expense totals.
func (t *Transaction) IsTransferRecord() bool {
	return t.Type == TransactionTypeTransfer || t.IsTransfer
}

// IsIncome reports whether the transaction counts as P&L income
func (t *Transaction) IsIncome() bool {
	return t.Type == TransactionTypeIncome && !t.IsTransfer
}

// IsExpense reports whether the transaction counts as P&L expense
func (t *Transaction) IsExpense() bool {
	return t.Type == TransactionTypeExpense && !t.IsTransfer
}

// CompanyName returns the company label, or UnspecifiedScope when none is set
func (t *Transaction) CompanyName() string {
	return scopeLabel(t.Company)
}

// ProjectName returns the project label, or UnspecifiedScope when none is set
func (t *Transaction) ProjectName() string {
	return scopeLabel(t.Project)
}

func scopeLabel(s *string) string {
	if s == nil || *s == "" {
		return UnspecifiedScope
	}
	return *s
}

type TransactionFilters struct {
	StartDate *time.Time
	EndDate   *time.Time
	Type      *TransactionType
	Category  *string
	Company   *string
	Page      int32
	PageSize  int32
}

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

type PaginatedTransactions struct {
	Data       []*Transaction `json:"data"`
	Page       int32          `json:"page"`
	PageSize   int32          `json:"pageSize"`
	TotalItems int64          `json:"totalItems"`
	TotalPages int32          `json:"totalPages"`
}

type TransactionRepository interface {
	Create(ctx context.Context, transaction *Transaction) (*Transaction, error)
	GetByID(ctx context.Context, workspaceID int32, id uuid.UUID) (*Transaction, error)
	GetByWorkspace(ctx context.Context, workspaceID int32, filters *TransactionFilters) (*PaginatedTransactions, error)
	// ListAll returns every transaction of the workspace, in no particular order
	ListAll(ctx context.Context, workspaceID int32) ([]*Transaction, error)
	Update(ctx context.Context, transaction *Transaction) (*Transaction, error)
	Delete(ctx context.Context, workspaceID int32, id uuid.UUID) error
	ListWorkspaceIDs(ctx context.Context) ([]int32, error)
}
