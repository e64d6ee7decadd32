package domain

import "errors"

// Domain errors
var (
	ErrNotFound            = errors.New("resource not found")
	ErrInvalidInput        = errors.New("invalid input")
	ErrTransactionNotFound = errors.New("transaction not found")
	ErrBudgetNotFound      = errors.New("budget not found")
	ErrSnapshotNotFound    = errors.New("snapshot not found")
	ErrInvalidAmount       = errors.New("amount must be zero or positive")
	ErrInvalidType         = errors.New("invalid transaction type")
	ErrCategoryRequired    = errors.New("category is required")
	ErrInvalidTransfer     = errors.New("transfer requires distinct from and to companies")
	ErrInvalidPeriodType   = errors.New("invalid period type")
	ErrInvalidPeriodIndex  = errors.New("invalid period index")
	ErrInvalidWindow       = errors.New("window size must be positive")
	ErrInvalidScope        = errors.New("invalid scope")
)

// Validation constants
const (
	MaxCategoryLength = 100
	MaxLabelLength    = 255
	MaxWindowSize     = 120
)
