package domain

import (
	"context"

	"github.com/shopspring/decimal"
)

// BudgetVarianceRow pairs a category budget with its actual spend.
// Variance is budget minus actual, so overruns are negative.
type BudgetVarianceRow struct {
	Category           string          `json:"category"`
	BudgetAmount       decimal.Decimal `json:"budgetAmount"`
	ActualAmount       decimal.Decimal `json:"actualAmount"`
	Variance           decimal.Decimal `json:"variance"`
	VariancePercentage decimal.Decimal `json:"variancePercentage"`
}

type BudgetSummary struct {
	Period             Period              `json:"period"`
	TotalBudget        decimal.Decimal     `json:"totalBudget"`
	TotalActual        decimal.Decimal     `json:"totalActual"`
	Variance           decimal.Decimal     `json:"variance"`
	VariancePercentage decimal.Decimal     `json:"variancePercentage"`
	Categories         []BudgetVarianceRow `json:"categories"`
}

type CategoryAmount struct {
	Category string          `json:"category"`
	Amount   decimal.Decimal `json:"amount"`
}

type ForecastResult struct {
	CurrentBalance       decimal.Decimal  `json:"currentBalance"`
	PredictedIncome      decimal.Decimal  `json:"predictedIncome"`
	PredictedExpense     decimal.Decimal  `json:"predictedExpense"`
	PredictedBalance     decimal.Decimal  `json:"predictedBalance"`
	TopExpenseCategories []CategoryAmount `json:"topExpenseCategories"`
}

type ScopeKey string

const (
	ScopeCompany ScopeKey = "company"
	ScopeProject ScopeKey = "project"
)

// ScopeTotal is the income/expense split for one company or project
type ScopeTotal struct {
	Scope   string          `json:"scope"`
	Income  decimal.Decimal `json:"income"`
	Expense decimal.Decimal `json:"expense"`
	Net     decimal.Decimal `json:"net"`
}

// CompanyCashFlow is a company-level cash view that, unlike P&L totals, includes transfers
type CompanyCashFlow struct {
	Company      string          `json:"company"`
	Income       decimal.Decimal `json:"income"`
	Expense      decimal.Decimal `json:"expense"`
	TransfersIn  decimal.Decimal `json:"transfersIn"`
	TransfersOut decimal.Decimal `json:"transfersOut"`
	NetCashFlow  decimal.Decimal `json:"netCashFlow"`
}

// SnapshotRepository archives serialized report snapshots
type SnapshotRepository interface {
	Put(ctx context.Context, key string, data []byte) error
	Get(ctx context.Context, key string) ([]byte, error)
}
