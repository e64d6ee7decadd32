package service

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/dafibh/fortuna/fortuna-insights/internal/domain"
	"github.com/dafibh/fortuna/fortuna-insights/internal/util"
	"github.com/dafibh/fortuna/fortuna-insights/internal/websocket"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	minBudgetYear = 1900
	maxBudgetYear = 9999
)

// BudgetService handles budget-related business logic
type BudgetService struct {
	budgetRepo domain.BudgetRepository
	publisher  websocket.EventPublisher
}

// NewBudgetService creates a new BudgetService
func NewBudgetService(budgetRepo domain.BudgetRepository, publisher websocket.EventPublisher) *BudgetService {
	if publisher == nil {
		publisher = &websocket.NoOpPublisher{}
	}
	return &BudgetService{
		budgetRepo: budgetRepo,
		publisher:  publisher,
	}
}

// BudgetInput holds the writable fields of a budget
type BudgetInput struct {
	Category string
	Amount   decimal.Decimal
	Period   domain.PeriodType
	Year     int
	Month    int
	Type     domain.TransactionType
	Company  *string
}

// CreateBudget validates and stores a budget
func (s *BudgetService) CreateBudget(ctx context.Context, workspaceID int32, input BudgetInput) (*domain.Budget, error) {
	budget, err := buildBudget(input)
	if err != nil {
		return nil, err
	}
	budget.WorkspaceID = workspaceID

	created, err := s.budgetRepo.Create(ctx, budget)
	if err != nil {
		return nil, err
	}

	s.publisher.Publish(workspaceID, websocket.BudgetCreated(created))
	s.publisher.Publish(workspaceID, websocket.ReportInvalidated("budget.created"))
	return created, nil
}

// GetBudgets lists the workspace's budgets matching the filters
func (s *BudgetService) GetBudgets(ctx context.Context, workspaceID int32, filters *domain.BudgetFilters) ([]*domain.Budget, error) {
	return s.budgetRepo.List(ctx, workspaceID, filters)
}

// GetBudgetByID retrieves a budget by ID within a workspace
func (s *BudgetService) GetBudgetByID(ctx context.Context, workspaceID int32, id uuid.UUID) (*domain.Budget, error) {
	return s.budgetRepo.GetByID(ctx, workspaceID, id)
}

// UpdateBudget replaces the writable fields of an existing budget
func (s *BudgetService) UpdateBudget(ctx context.Context, workspaceID int32, id uuid.UUID, input BudgetInput) (*domain.Budget, error) {
	existing, err := s.budgetRepo.GetByID(ctx, workspaceID, id)
	if err != nil {
		return nil, err
	}

	budget, err := buildBudget(input)
	if err != nil {
		return nil, err
	}
	budget.ID = existing.ID
	budget.WorkspaceID = workspaceID
	budget.CreatedAt = existing.CreatedAt

	updated, err := s.budgetRepo.Update(ctx, budget)
	if err != nil {
		return nil, err
	}

	s.publisher.Publish(workspaceID, websocket.BudgetUpdated(updated))
	s.publisher.Publish(workspaceID, websocket.ReportInvalidated("budget.updated"))
	return updated, nil
}

// DeleteBudget removes a budget
func (s *BudgetService) DeleteBudget(ctx context.Context, workspaceID int32, id uuid.UUID) error {
	if err := s.budgetRepo.Delete(ctx, workspaceID, id); err != nil {
		return err
	}

	s.publisher.Publish(workspaceID, websocket.BudgetDeleted(map[string]interface{}{"id": id}))
	s.publisher.Publish(workspaceID, websocket.ReportInvalidated("budget.deleted"))
	return nil
}

func buildBudget(input BudgetInput) (*domain.Budget, error) {
	category := strings.TrimSpace(input.Category)
	if category == "" {
		return nil, domain.ErrCategoryRequired
	}
	if utf8.RuneCountInString(category) > domain.MaxCategoryLength {
		return nil, fmt.Errorf("%w: category longer than %d characters", domain.ErrInvalidInput, domain.MaxCategoryLength)
	}
	if input.Amount.IsNegative() {
		return nil, domain.ErrInvalidAmount
	}
	if input.Type != domain.TransactionTypeIncome && input.Type != domain.TransactionTypeExpense {
		return nil, domain.ErrInvalidType
	}
	if input.Year < minBudgetYear || input.Year > maxBudgetYear {
		return nil, fmt.Errorf("%w: year %d out of range", domain.ErrInvalidInput, input.Year)
	}

	// Annual budgets have a single period
	if input.Period == domain.PeriodAnnual && input.Month == 0 {
		input.Month = 1
	}
	if err := util.ValidateIndex(input.Period, input.Month); err != nil {
		return nil, err
	}
	company, err := trimOptional("company", input.Company)
	if err != nil {
		return nil, err
	}

	return &domain.Budget{
		Category: category,
		Amount:   input.Amount,
		Period:   input.Period,
		Year:     input.Year,
		Month:    input.Month,
		Type:     input.Type,
		Company:  company,
	}, nil
}
