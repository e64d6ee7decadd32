package handler

import (
	"net/http"

	"github.com/dafibh/fortuna/fortuna-insights/internal/domain"
	"github.com/dafibh/fortuna/fortuna-insights/internal/middleware"
	"github.com/dafibh/fortuna/fortuna-insights/internal/service"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

// TransactionHandler handles transaction-related HTTP requests
type TransactionHandler struct {
	transactionService *service.TransactionService
}

// NewTransactionHandler creates a new TransactionHandler
func NewTransactionHandler(transactionService *service.TransactionService) *TransactionHandler {
	return &TransactionHandler{transactionService: transactionService}
}

// TransactionRequest represents the create and update transaction request body
type TransactionRequest struct {
	Amount              string  `json:"amount" validate:"required,decimal"`
	Type                string  `json:"type" validate:"required,oneof=income expense transfer"`
	Category            string  `json:"category" validate:"max=100"`
	Date                *string `json:"date,omitempty" validate:"omitempty,date"`
	Description         *string `json:"description,omitempty" validate:"omitempty,max=255"`
	Company             *string `json:"company,omitempty" validate:"omitempty,max=255"`
	Project             *string `json:"project,omitempty" validate:"omitempty,max=255"`
	IsReimbursement     bool    `json:"isReimbursement"`
	ReimbursementStatus *string `json:"reimbursementStatus,omitempty" validate:"omitempty,oneof=pending completed"`
	ReimbursedTo        *string `json:"reimbursedTo,omitempty" validate:"omitempty,max=255"`
	FromCompany         *string `json:"fromCompany,omitempty" validate:"omitempty,max=255"`
	ToCompany           *string `json:"toCompany,omitempty" validate:"omitempty,max=255"`
}

// TransactionResponse represents a transaction in API responses
type TransactionResponse struct {
	ID                  string  `json:"id"`
	WorkspaceID         int32   `json:"workspaceId"`
	Amount              string  `json:"amount"`
	Type                string  `json:"type"`
	Category            string  `json:"category,omitempty"`
	Date                string  `json:"date"`
	Description         *string `json:"description,omitempty"`
	Company             *string `json:"company,omitempty"`
	Project             *string `json:"project,omitempty"`
	IsReimbursement     bool    `json:"isReimbursement"`
	ReimbursementStatus *string `json:"reimbursementStatus,omitempty"`
	ReimbursedTo        *string `json:"reimbursedTo,omitempty"`
	IsTransfer          bool    `json:"isTransfer"`
	FromCompany         *string `json:"fromCompany,omitempty"`
	ToCompany           *string `json:"toCompany,omitempty"`
	CreatedAt           string  `json:"createdAt"`
	UpdatedAt           string  `json:"updatedAt"`
}

// PaginatedTransactionsResponse represents a page of transactions
type PaginatedTransactionsResponse struct {
	Data       []TransactionResponse `json:"data"`
	Page       int32                 `json:"page"`
	PageSize   int32                 `json:"pageSize"`
	TotalItems int64                 `json:"totalItems"`
	TotalPages int32                 `json:"totalPages"`
}

// CreateTransaction handles POST /api/v1/transactions
func (h *TransactionHandler) CreateTransaction(c echo.Context) error {
	workspaceID := middleware.GetWorkspaceID(c)

	var req TransactionRequest
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}

	input, verr := req.toInput()
	if verr != nil {
		return NewValidationError(c, "Validation failed", []ValidationError{*verr})
	}

	tx, err := h.transactionService.CreateTransaction(c.Request().Context(), workspaceID, input)
	if err != nil {
		return respondError(c, err, workspaceID, "create transaction")
	}

	return c.JSON(http.StatusCreated, toTransactionResponse(tx))
}

// GetTransactions handles GET /api/v1/transactions
func (h *TransactionHandler) GetTransactions(c echo.Context) error {
	workspaceID := middleware.GetWorkspaceID(c)

	from, to, errs := dateRangeParams(c)
	page, perr := intParam(c, "page", 1)
	if perr != nil {
		errs = append(errs, *perr)
	}
	pageSize, perr := intParam(c, "pageSize", domain.DefaultPageSize)
	if perr != nil {
		errs = append(errs, *perr)
	}
	if len(errs) > 0 {
		return NewValidationError(c, "Invalid query parameters", errs)
	}

	filters := &domain.TransactionFilters{
		StartDate: from,
		EndDate:   to,
		Page:      int32(page),
		PageSize:  int32(pageSize),
	}
	if t := c.QueryParam("type"); t != "" {
		txType := domain.TransactionType(t)
		if !txType.IsValid() {
			return NewValidationError(c, "Invalid query parameters", []ValidationError{
				{Field: "type", Message: "Must be one of: income expense transfer"},
			})
		}
		filters.Type = &txType
	}
	if category := c.QueryParam("category"); category != "" {
		filters.Category = &category
	}
	if company := c.QueryParam("company"); company != "" {
		filters.Company = &company
	}

	result, err := h.transactionService.GetTransactions(c.Request().Context(), workspaceID, filters)
	if err != nil {
		return respondError(c, err, workspaceID, "list transactions")
	}

	data := make([]TransactionResponse, len(result.Data))
	for i, tx := range result.Data {
		data[i] = toTransactionResponse(tx)
	}
	return c.JSON(http.StatusOK, PaginatedTransactionsResponse{
		Data:       data,
		Page:       result.Page,
		PageSize:   result.PageSize,
		TotalItems: result.TotalItems,
		TotalPages: result.TotalPages,
	})
}

// GetTransaction handles GET /api/v1/transactions/:id
func (h *TransactionHandler) GetTransaction(c echo.Context) error {
	workspaceID := middleware.GetWorkspaceID(c)

	id, err := idParam(c)
	if err != nil {
		return NewValidationError(c, "Invalid transaction ID", nil)
	}

	tx, err := h.transactionService.GetTransactionByID(c.Request().Context(), workspaceID, id)
	if err != nil {
		return respondError(c, err, workspaceID, "get transaction")
	}
	return c.JSON(http.StatusOK, toTransactionResponse(tx))
}

// UpdateTransaction handles PUT /api/v1/transactions/:id
func (h *TransactionHandler) UpdateTransaction(c echo.Context) error {
	workspaceID := middleware.GetWorkspaceID(c)

	id, err := idParam(c)
	if err != nil {
		return NewValidationError(c, "Invalid transaction ID", nil)
	}

	var req TransactionRequest
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	input, verr := req.toInput()
	if verr != nil {
		return NewValidationError(c, "Validation failed", []ValidationError{*verr})
	}

	tx, err := h.transactionService.UpdateTransaction(c.Request().Context(), workspaceID, id, input)
	if err != nil {
		return respondError(c, err, workspaceID, "update transaction")
	}
	return c.JSON(http.StatusOK, toTransactionResponse(tx))
}

// DeleteTransaction handles DELETE /api/v1/transactions/:id
func (h *TransactionHandler) DeleteTransaction(c echo.Context) error {
	workspaceID := middleware.GetWorkspaceID(c)

	id, err := idParam(c)
	if err != nil {
		return NewValidationError(c, "Invalid transaction ID", nil)
	}

	if err := h.transactionService.DeleteTransaction(c.Request().Context(), workspaceID, id); err != nil {
		return respondError(c, err, workspaceID, "delete transaction")
	}
	return c.NoContent(http.StatusNoContent)
}

func (r *TransactionRequest) toInput() (service.TransactionInput, *ValidationError) {
	amount, err := decimal.NewFromString(r.Amount)
	if err != nil {
		return service.TransactionInput{}, &ValidationError{Field: "amount", Message: "Must be a valid decimal number"}
	}

	input := service.TransactionInput{
		Amount:          amount,
		Type:            domain.TransactionType(r.Type),
		Category:        r.Category,
		Description:     r.Description,
		Company:         r.Company,
		Project:         r.Project,
		IsReimbursement: r.IsReimbursement,
		ReimbursedTo:    r.ReimbursedTo,
		FromCompany:     r.FromCompany,
		ToCompany:       r.ToCompany,
	}
	if r.Date != nil && *r.Date != "" {
		d, err := parseDate(*r.Date)
		if err != nil {
			return service.TransactionInput{}, &ValidationError{Field: "date", Message: "Must be in YYYY-MM-DD format"}
		}
		input.Date = &d
	}
	if r.ReimbursementStatus != nil {
		status := domain.ReimbursementStatus(*r.ReimbursementStatus)
		input.ReimbursementStatus = &status
	}
	return input, nil
}

func toTransactionResponse(tx *domain.Transaction) TransactionResponse {
	resp := TransactionResponse{
		ID:              tx.ID.String(),
		WorkspaceID:     tx.WorkspaceID,
		Amount:          tx.Amount.StringFixed(2),
		Type:            string(tx.Type),
		Category:        tx.Category,
		Date:            formatDate(tx.Date),
		Description:     tx.Description,
		Company:         tx.Company,
		Project:         tx.Project,
		IsReimbursement: tx.IsReimbursement,
		ReimbursedTo:    tx.ReimbursedTo,
		IsTransfer:      tx.IsTransfer,
		FromCompany:     tx.FromCompany,
		ToCompany:       tx.ToCompany,
		CreatedAt:       formatTimestamp(tx.CreatedAt),
		UpdatedAt:       formatTimestamp(tx.UpdatedAt),
	}
	if tx.ReimbursementStatus != nil {
		status := string(*tx.ReimbursementStatus)
		resp.ReimbursementStatus = &status
	}
	return resp
}
