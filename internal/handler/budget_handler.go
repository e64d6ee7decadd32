package handler

import (
	"net/http"

	"github.com/dafibh/fortuna/fortuna-insights/internal/domain"
	"github.com/dafibh/fortuna/fortuna-insights/internal/middleware"
	"github.com/dafibh/fortuna/fortuna-insights/internal/service"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

// BudgetHandler handles budget-related HTTP requests
type BudgetHandler struct {
	budgetService *service.BudgetService
}

// NewBudgetHandler creates a new BudgetHandler
func NewBudgetHandler(budgetService *service.BudgetService) *BudgetHandler {
	return &BudgetHandler{budgetService: budgetService}
}

// BudgetRequest represents the create and update budget request body
type BudgetRequest struct {
	Category string  `json:"category" validate:"required,max=100"`
	Amount   string  `json:"amount" validate:"required,decimal"`
	Period   string  `json:"period" validate:"required,oneof=monthly quarterly annual"`
	Year     int     `json:"year" validate:"required,min=1900"`
	Month    int     `json:"month" validate:"min=0"`
	Type     string  `json:"type" validate:"omitempty,oneof=income expense"`
	Company  *string `json:"company,omitempty" validate:"omitempty,max=255"`
}

// BudgetResponse represents a budget in API responses
type BudgetResponse struct {
	ID          string  `json:"id"`
	WorkspaceID int32   `json:"workspaceId"`
	Category    string  `json:"category"`
	Amount      string  `json:"amount"`
	Period      string  `json:"period"`
	Year        int     `json:"year"`
	Month       int     `json:"month"`
	Type        string  `json:"type"`
	Company     *string `json:"company,omitempty"`
	CreatedAt   string  `json:"createdAt"`
	UpdatedAt   string  `json:"updatedAt"`
}

// CreateBudget handles POST /api/v1/budgets
func (h *BudgetHandler) CreateBudget(c echo.Context) error {
	workspaceID := middleware.GetWorkspaceID(c)

	var req BudgetRequest
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}

	budget, err := h.budgetService.CreateBudget(c.Request().Context(), workspaceID, req.toInput())
	if err != nil {
		return respondError(c, err, workspaceID, "create budget")
	}
	return c.JSON(http.StatusCreated, toBudgetResponse(budget))
}

// GetBudgets handles GET /api/v1/budgets
func (h *BudgetHandler) GetBudgets(c echo.Context) error {
	workspaceID := middleware.GetWorkspaceID(c)

	filters := &domain.BudgetFilters{}
	var errs []ValidationError
	if p := c.QueryParam("period"); p != "" {
		period := domain.PeriodType(p)
		if !period.IsValid() {
			errs = append(errs, ValidationError{Field: "period", Message: "Must be one of: monthly quarterly annual"})
		}
		filters.Period = &period
	}
	if c.QueryParam("year") != "" {
		year, verr := intParam(c, "year", 0)
		if verr != nil {
			errs = append(errs, *verr)
		}
		filters.Year = &year
	}
	if c.QueryParam("month") != "" {
		month, verr := intParam(c, "month", 0)
		if verr != nil {
			errs = append(errs, *verr)
		}
		filters.Month = &month
	}
	if t := c.QueryParam("type"); t != "" {
		txType := domain.TransactionType(t)
		filters.Type = &txType
	}
	if len(errs) > 0 {
		return NewValidationError(c, "Invalid query parameters", errs)
	}

	budgets, err := h.budgetService.GetBudgets(c.Request().Context(), workspaceID, filters)
	if err != nil {
		return respondError(c, err, workspaceID, "list budgets")
	}

	resp := make([]BudgetResponse, len(budgets))
	for i, b := range budgets {
		resp[i] = toBudgetResponse(b)
	}
	return c.JSON(http.StatusOK, resp)
}

// UpdateBudget handles PUT /api/v1/budgets/:id
func (h *BudgetHandler) UpdateBudget(c echo.Context) error {
	workspaceID := middleware.GetWorkspaceID(c)

	id, err := idParam(c)
	if err != nil {
		return NewValidationError(c, "Invalid budget ID", nil)
	}

	var req BudgetRequest
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}

	budget, err := h.budgetService.UpdateBudget(c.Request().Context(), workspaceID, id, req.toInput())
	if err != nil {
		return respondError(c, err, workspaceID, "update budget")
	}
	return c.JSON(http.StatusOK, toBudgetResponse(budget))
}

// DeleteBudget handles DELETE /api/v1/budgets/:id
func (h *BudgetHandler) DeleteBudget(c echo.Context) error {
	workspaceID := middleware.GetWorkspaceID(c)

	id, err := idParam(c)
	if err != nil {
		return NewValidationError(c, "Invalid budget ID", nil)
	}

	if err := h.budgetService.DeleteBudget(c.Request().Context(), workspaceID, id); err != nil {
		return respondError(c, err, workspaceID, "delete budget")
	}
	return c.NoContent(http.StatusNoContent)
}

func (r *BudgetRequest) toInput() service.BudgetInput {
	// amount already passed the decimal tag
	amount, _ := decimal.NewFromString(r.Amount)
	budgetType := domain.TransactionType(r.Type)
	if budgetType == "" {
		budgetType = domain.TransactionTypeExpense
	}
	return service.BudgetInput{
		Category: r.Category,
		Amount:   amount,
		Period:   domain.PeriodType(r.Period),
		Year:     r.Year,
		Month:    r.Month,
		Type:     budgetType,
		Company:  r.Company,
	}
}

func toBudgetResponse(b *domain.Budget) BudgetResponse {
	return BudgetResponse{
		ID:          b.ID.String(),
		WorkspaceID: b.WorkspaceID,
		Category:    b.Category,
		Amount:      b.Amount.StringFixed(2),
		Period:      string(b.Period),
		Year:        b.Year,
		Month:       b.Month,
		Type:        string(b.Type),
		Company:     b.Company,
		CreatedAt:   formatTimestamp(b.CreatedAt),
		UpdatedAt:   formatTimestamp(b.UpdatedAt),
	}
}
