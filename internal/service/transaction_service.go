package service

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/dafibh/fortuna/fortuna-insights/internal/domain"
	"github.com/dafibh/fortuna/fortuna-insights/internal/websocket"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransactionService handles transaction-related business logic
type TransactionService struct {
	transactionRepo domain.TransactionRepository
	publisher       websocket.EventPublisher
}

// NewTransactionService creates a new TransactionService
func NewTransactionService(transactionRepo domain.TransactionRepository, publisher websocket.EventPublisher) *TransactionService {
	if publisher == nil {
		publisher = &websocket.NoOpPublisher{}
	}
	return &TransactionService{
		transactionRepo: transactionRepo,
		publisher:       publisher,
	}
}

// TransactionInput holds the writable fields of a transaction
type TransactionInput struct {
	Amount              decimal.Decimal
	Type                domain.TransactionType
	Category            string
	Date                *time.Time
	Description         *string
	Company             *string
	Project             *string
	IsReimbursement     bool
	ReimbursementStatus *domain.ReimbursementStatus
	ReimbursedTo        *string
	FromCompany         *string
	ToCompany           *string
}

// CreateTransaction validates and stores a new transaction
func (s *TransactionService) CreateTransaction(ctx context.Context, workspaceID int32, input TransactionInput) (*domain.Transaction, error) {
	tx, err := buildTransaction(input)
	if err != nil {
		return nil, err
	}
	tx.WorkspaceID = workspaceID

	created, err := s.transactionRepo.Create(ctx, tx)
	if err != nil {
		return nil, err
	}

	s.publisher.Publish(workspaceID, websocket.TransactionCreated(created))
	s.publisher.Publish(workspaceID, websocket.ReportInvalidated("transaction.created"))
	return created, nil
}

// GetTransactions retrieves a page of transactions
func (s *TransactionService) GetTransactions(ctx context.Context, workspaceID int32, filters *domain.TransactionFilters) (*domain.PaginatedTransactions, error) {
	if filters == nil {
		filters = &domain.TransactionFilters{}
	}
	if filters.Page < 1 {
		filters.Page = 1
	}
	if filters.PageSize < 1 {
		filters.PageSize = domain.DefaultPageSize
	}
	if filters.PageSize > domain.MaxPageSize {
		filters.PageSize = domain.MaxPageSize
	}
	return s.transactionRepo.GetByWorkspace(ctx, workspaceID, filters)
}

// GetTransactionByID retrieves a transaction by ID within a workspace
func (s *TransactionService) GetTransactionByID(ctx context.Context, workspaceID int32, id uuid.UUID) (*domain.Transaction, error) {
	return s.transactionRepo.GetByID(ctx, workspaceID, id)
}

// UpdateTransaction replaces the writable fields of an existing transaction
func (s *TransactionService) UpdateTransaction(ctx context.Context, workspaceID int32, id uuid.UUID, input TransactionInput) (*domain.Transaction, error) {
	existing, err := s.transactionRepo.GetByID(ctx, workspaceID, id)
	if err != nil {
		return nil, err
	}
	if input.Date == nil {
		input.Date = &existing.Date
	}

	tx, err := buildTransaction(input)
	if err != nil {
		return nil, err
	}
	tx.ID = existing.ID
	tx.WorkspaceID = workspaceID
	tx.CreatedAt = existing.CreatedAt

	updated, err := s.transactionRepo.Update(ctx, tx)
	if err != nil {
		return nil, err
	}

	s.publisher.Publish(workspaceID, websocket.TransactionUpdated(updated))
	s.publisher.Publish(workspaceID, websocket.ReportInvalidated("transaction.updated"))
	return updated, nil
}

// DeleteTransaction removes a transaction
func (s *TransactionService) DeleteTransaction(ctx context.Context, workspaceID int32, id uuid.UUID) error {
	if err := s.transactionRepo.Delete(ctx, workspaceID, id); err != nil {
		return err
	}

	s.publisher.Publish(workspaceID, websocket.TransactionDeleted(map[string]interface{}{"id": id}))
	s.publisher.Publish(workspaceID, websocket.ReportInvalidated("transaction.deleted"))
	return nil
}

// buildTransaction enforces the record invariants: income and expense carry a category,
// transfers carry two distinct companies and no category, and only expenses are reimbursable.
func buildTransaction(input TransactionInput) (*domain.Transaction, error) {
	if input.Amount.IsNegative() {
		return nil, domain.ErrInvalidAmount
	}
	if !input.Type.IsValid() {
		return nil, domain.ErrInvalidType
	}

	date := time.Now().UTC().Truncate(24 * time.Hour)
	if input.Date != nil {
		date = input.Date.UTC()
	}

	description, err := trimOptional("description", input.Description)
	if err != nil {
		return nil, err
	}
	company, err := trimOptional("company", input.Company)
	if err != nil {
		return nil, err
	}
	project, err := trimOptional("project", input.Project)
	if err != nil {
		return nil, err
	}

	tx := &domain.Transaction{
		Amount:      input.Amount,
		Type:        input.Type,
		Date:        date,
		Description: description,
		Company:     company,
		Project:     project,
	}

	if input.Type == domain.TransactionTypeTransfer {
		from, err := trimOptional("fromCompany", input.FromCompany)
		if err != nil {
			return nil, err
		}
		to, err := trimOptional("toCompany", input.ToCompany)
		if err != nil {
			return nil, err
		}
		if from == nil || to == nil || *from == *to {
			return nil, domain.ErrInvalidTransfer
		}
		if input.IsReimbursement {
			return nil, fmt.Errorf("%w: transfers cannot be reimbursements", domain.ErrInvalidInput)
		}
		tx.IsTransfer = true
		tx.FromCompany = from
		tx.ToCompany = to
		return tx, nil
	}

	if input.FromCompany != nil || input.ToCompany != nil {
		return nil, fmt.Errorf("%w: from and to companies are only valid on transfers", domain.ErrInvalidInput)
	}

	category := strings.TrimSpace(input.Category)
	if category == "" {
		return nil, domain.ErrCategoryRequired
	}
	if utf8.RuneCountInString(category) > domain.MaxCategoryLength {
		return nil, fmt.Errorf("%w: category longer than %d characters", domain.ErrInvalidInput, domain.MaxCategoryLength)
	}
	tx.Category = category

	if !input.IsReimbursement {
		if input.ReimbursementStatus != nil || input.ReimbursedTo != nil {
			return nil, fmt.Errorf("%w: reimbursement fields require isReimbursement", domain.ErrInvalidInput)
		}
		return tx, nil
	}

	if input.Type != domain.TransactionTypeExpense {
		return nil, fmt.Errorf("%w: only expenses can be reimbursements", domain.ErrInvalidInput)
	}
	status := domain.ReimbursementPending
	if input.ReimbursementStatus != nil {
		status = *input.ReimbursementStatus
	}
	if status != domain.ReimbursementPending && status != domain.ReimbursementCompleted {
		return nil, fmt.Errorf("%w: unknown reimbursement status %q", domain.ErrInvalidInput, status)
	}
	reimbursedTo, err := trimOptional("reimbursedTo", input.ReimbursedTo)
	if err != nil {
		return nil, err
	}
	tx.IsReimbursement = true
	tx.ReimbursementStatus = &status
	tx.ReimbursedTo = reimbursedTo
	return tx, nil
}

// trimOptional normalizes an optional label; blank becomes nil. Over-long labels are rejected,
// never cut, so distinct labels stay distinct.
func trimOptional(field string, s *string) (*string, error) {
	if s == nil {
		return nil, nil
	}
	trimmed := strings.TrimSpace(*s)
	if trimmed == "" {
		return nil, nil
	}
	if utf8.RuneCountInString(trimmed) > domain.MaxLabelLength {
		return nil, fmt.Errorf("%w: %s longer than %d characters", domain.ErrInvalidInput, field, domain.MaxLabelLength)
	}
	return &trimmed, nil
}
