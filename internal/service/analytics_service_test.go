package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dafibh/fortuna/fortuna-insights/internal/domain"
	"github.com/dafibh/fortuna/fortuna-insights/internal/engine"
	"github.com/dafibh/fortuna/fortuna-insights/internal/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2025, 4, 15, 12, 0, 0, 0, time.UTC)

func setupAnalyticsService() (*AnalyticsService, *testutil.MockTransactionRepository, *testutil.MockBudgetRepository) {
	transactionRepo := testutil.NewMockTransactionRepository()
	budgetRepo := testutil.NewMockBudgetRepository()
	svc := NewAnalyticsService(transactionRepo, budgetRepo, AnalyticsOptions{ForecastMonths: 3})
	svc.SetClock(func() time.Time { return fixedNow })
	return svc, transactionRepo, budgetRepo
}

func seedTx(repo *testutil.MockTransactionRepository, workspaceID int32, txType domain.TransactionType, amount int64, category string, date time.Time, company *string) {
	repo.AddTransaction(&domain.Transaction{
		WorkspaceID: workspaceID,
		Type:        txType,
		Amount:      decimal.NewFromInt(amount),
		Category:    category,
		Date:        date,
		Company:     company,
	})
}

func strPtr(s string) *string { return &s }

func TestAnalyticsService_GetBudgetSummary(t *testing.T) {
	svc, txRepo, budgetRepo := setupAnalyticsService()
	ctx := context.Background()

	budgetRepo.AddBudget(&domain.Budget{
		WorkspaceID: 1, Category: "Rent", Amount: decimal.NewFromInt(500),
		Period: domain.PeriodMonthly, Year: 2025, Month: 4, Type: domain.TransactionTypeExpense,
	})
	// other workspace must not leak in
	budgetRepo.AddBudget(&domain.Budget{
		WorkspaceID: 2, Category: "Rent", Amount: decimal.NewFromInt(9999),
		Period: domain.PeriodMonthly, Year: 2025, Month: 4, Type: domain.TransactionTypeExpense,
	})
	seedTx(txRepo, 1, domain.TransactionTypeExpense, 450, "Rent", time.Date(2025, 4, 10, 0, 0, 0, 0, time.UTC), nil)
	seedTx(txRepo, 1, domain.TransactionTypeExpense, 100, "Food", time.Date(2025, 4, 12, 0, 0, 0, 0, time.UTC), nil)
	seedTx(txRepo, 1, domain.TransactionTypeExpense, 300, "Rent", time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC), nil)

	summary, err := svc.GetBudgetSummary(ctx, 1, domain.PeriodMonthly, 2025, 4, "")
	require.NoError(t, err)

	assert.True(t, summary.TotalBudget.Equal(decimal.NewFromInt(500)))
	assert.True(t, summary.TotalActual.Equal(decimal.NewFromInt(550)))
	assert.True(t, summary.Variance.Equal(decimal.NewFromInt(-50)))
	require.Len(t, summary.Categories, 2)
	assert.Equal(t, "Food", summary.Categories[0].Category)
	assert.True(t, summary.Categories[0].VariancePercentage.Equal(decimal.NewFromInt(-100)))
	assert.Equal(t, "Rent", summary.Categories[1].Category)
	assert.True(t, summary.Categories[1].Variance.Equal(decimal.NewFromInt(50)))
}

func TestAnalyticsService_GetBudgetSummary_InvalidPeriod(t *testing.T) {
	svc, _, _ := setupAnalyticsService()

	_, err := svc.GetBudgetSummary(context.Background(), 1, domain.PeriodQuarterly, 2025, 5, "")
	assert.ErrorIs(t, err, domain.ErrInvalidPeriodIndex)

	_, err = svc.GetBudgetSummary(context.Background(), 1, domain.PeriodType("weekly"), 2025, 1, "")
	assert.ErrorIs(t, err, domain.ErrInvalidPeriodType)
}

func TestAnalyticsService_GetBudgetYear(t *testing.T) {
	svc, txRepo, _ := setupAnalyticsService()
	seedTx(txRepo, 1, domain.TransactionTypeExpense, 120, "Food", time.Date(2025, 5, 2, 0, 0, 0, 0, time.UTC), nil)

	summaries, err := svc.GetBudgetYear(context.Background(), 1, domain.PeriodQuarterly, 2025, "")
	require.NoError(t, err)
	require.Len(t, summaries, 4)
	assert.True(t, summaries[0].TotalActual.IsZero())
	assert.True(t, summaries[1].TotalActual.Equal(decimal.NewFromInt(120)))

	_, err = svc.GetBudgetYear(context.Background(), 1, domain.PeriodType("weekly"), 2025, "")
	assert.ErrorIs(t, err, domain.ErrInvalidPeriodType)
}

func TestAnalyticsService_RepositoryError(t *testing.T) {
	svc, txRepo, _ := setupAnalyticsService()
	boom := errors.New("connection refused")
	txRepo.ListAllFn = func(workspaceID int32) ([]*domain.Transaction, error) {
		return nil, boom
	}

	_, err := svc.GetKPIDashboard(context.Background(), 1, true)
	assert.ErrorIs(t, err, boom)

	_, err = svc.GetBudgetSummary(context.Background(), 1, domain.PeriodMonthly, 2025, 4, "")
	assert.ErrorIs(t, err, boom)
}

func TestAnalyticsService_GetKPIDashboard(t *testing.T) {
	svc, txRepo, _ := setupAnalyticsService()
	seedTx(txRepo, 1, domain.TransactionTypeIncome, 1000, "Sales", time.Date(2025, 3, 5, 0, 0, 0, 0, time.UTC), strPtr("Acme"))
	seedTx(txRepo, 1, domain.TransactionTypeExpense, 400, "Rent", time.Date(2025, 4, 5, 0, 0, 0, 0, time.UTC), nil)

	withoutForecast, err := svc.GetKPIDashboard(context.Background(), 1, false)
	require.NoError(t, err)
	_, ok := withoutForecast.Metric(engine.KPIPredictedGrowth)
	assert.False(t, ok)

	dashboard, err := svc.GetKPIDashboard(context.Background(), 1, true)
	require.NoError(t, err)
	margin, ok := dashboard.Metric(engine.KPIProfitMargin)
	require.True(t, ok)
	assert.True(t, margin.Value.Equal(decimal.NewFromInt(60)), "got %s", margin.Value)
	_, ok = dashboard.Metric(engine.KPIPredictedGrowth)
	assert.True(t, ok)
	assert.Len(t, dashboard.MonthlyData, engine.DefaultTrendWindow)
}

func TestAnalyticsService_GetForecast(t *testing.T) {
	svc, txRepo, _ := setupAnalyticsService()
	seedTx(txRepo, 1, domain.TransactionTypeIncome, 900, "Sales", time.Date(2025, 2, 5, 0, 0, 0, 0, time.UTC), nil)
	seedTx(txRepo, 1, domain.TransactionTypeExpense, 300, "Rent", time.Date(2025, 4, 5, 0, 0, 0, 0, time.UTC), nil)

	forecast, err := svc.GetForecast(context.Background(), 1, 0)
	require.NoError(t, err)
	assert.True(t, forecast.PredictedIncome.Equal(decimal.NewFromInt(300)), "got %s", forecast.PredictedIncome)
	assert.True(t, forecast.PredictedExpense.Equal(decimal.NewFromInt(100)), "got %s", forecast.PredictedExpense)
	assert.True(t, forecast.CurrentBalance.Equal(decimal.NewFromInt(600)))

	_, err = svc.GetForecast(context.Background(), 1, domain.MaxWindowSize+1)
	assert.ErrorIs(t, err, domain.ErrInvalidWindow)
}

func TestAnalyticsService_GetCategoryTotals(t *testing.T) {
	svc, txRepo, _ := setupAnalyticsService()
	seedTx(txRepo, 1, domain.TransactionTypeExpense, 100, "Food", time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC), nil)
	seedTx(txRepo, 1, domain.TransactionTypeExpense, 300, "Rent", time.Date(2025, 4, 2, 0, 0, 0, 0, time.UTC), nil)
	seedTx(txRepo, 1, domain.TransactionTypeExpense, 50, "Food", time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC), nil)

	from := time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)
	totals, err := svc.GetCategoryTotals(context.Background(), 1, domain.TransactionTypeExpense, &from, nil)
	require.NoError(t, err)
	require.Len(t, totals, 2)
	assert.Equal(t, "Rent", totals[0].Category)
	assert.True(t, totals[1].Amount.Equal(decimal.NewFromInt(100)))

	_, err = svc.GetCategoryTotals(context.Background(), 1, domain.TransactionTypeTransfer, nil, nil)
	assert.ErrorIs(t, err, domain.ErrInvalidType)
}

func TestAnalyticsService_GetScopeTotals(t *testing.T) {
	svc, txRepo, _ := setupAnalyticsService()
	seedTx(txRepo, 1, domain.TransactionTypeIncome, 100, "Sales", fixedNow, strPtr("Acme"))
	seedTx(txRepo, 1, domain.TransactionTypeIncome, 40, "Sales", fixedNow, nil)

	totals, err := svc.GetScopeTotals(context.Background(), 1, domain.ScopeCompany, nil, nil)
	require.NoError(t, err)
	require.Len(t, totals, 2)
	assert.Equal(t, "Acme", totals[0].Scope)
	assert.Equal(t, domain.UnspecifiedScope, totals[1].Scope)

	_, err = svc.GetScopeTotals(context.Background(), 1, domain.ScopeKey("region"), nil, nil)
	assert.ErrorIs(t, err, domain.ErrInvalidScope)
}

func TestAnalyticsService_GetPeriodBuckets(t *testing.T) {
	svc, txRepo, _ := setupAnalyticsService()
	seedTx(txRepo, 1, domain.TransactionTypeIncome, 100, "Sales", fixedNow, nil)

	buckets, err := svc.GetPeriodBuckets(context.Background(), 1, domain.PeriodMonthly, 3)
	require.NoError(t, err)
	require.Len(t, buckets, 3)
	assert.Equal(t, "2025-04", buckets[2].PeriodLabel)
	assert.True(t, buckets[2].Income.Equal(decimal.NewFromInt(100)))

	_, err = svc.GetPeriodBuckets(context.Background(), 1, domain.PeriodMonthly, 0)
	assert.ErrorIs(t, err, domain.ErrInvalidWindow)
	_, err = svc.GetPeriodBuckets(context.Background(), 1, domain.PeriodMonthly, domain.MaxWindowSize+1)
	assert.ErrorIs(t, err, domain.ErrInvalidWindow)
}

func TestAnalyticsService_GetCompanyCashFlow(t *testing.T) {
	svc, txRepo, _ := setupAnalyticsService()
	seedTx(txRepo, 1, domain.TransactionTypeIncome, 100, "Sales", fixedNow, strPtr("Acme"))
	txRepo.AddTransaction(&domain.Transaction{
		WorkspaceID: 1, Type: domain.TransactionTypeTransfer, Amount: decimal.NewFromInt(30),
		Date: fixedNow, IsTransfer: true, FromCompany: strPtr("Acme"), ToCompany: strPtr("Beta"),
	})

	flows, err := svc.GetCompanyCashFlow(context.Background(), 1, nil, nil)
	require.NoError(t, err)
	require.Len(t, flows, 2)
	assert.Equal(t, "Acme", flows[0].Company)
	assert.True(t, flows[0].NetCashFlow.Equal(decimal.NewFromInt(70)))
	assert.True(t, flows[1].NetCashFlow.Equal(decimal.NewFromInt(30)))
}

func TestAnalyticsService_BuildSnapshot(t *testing.T) {
	svc, txRepo, budgetRepo := setupAnalyticsService()
	budgetRepo.AddBudget(&domain.Budget{
		WorkspaceID: 1, Category: "Rent", Amount: decimal.NewFromInt(500),
		Period: domain.PeriodMonthly, Year: 2025, Month: 4, Type: domain.TransactionTypeExpense,
	})
	seedTx(txRepo, 1, domain.TransactionTypeExpense, 450, "Rent", fixedNow, nil)

	snapshot, err := svc.BuildSnapshot(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, int32(1), snapshot.WorkspaceID)
	assert.True(t, snapshot.GeneratedAt.Equal(fixedNow))
	require.NotNil(t, snapshot.BudgetSummary)
	assert.Equal(t, 4, snapshot.BudgetSummary.Period.Index)
	assert.True(t, snapshot.BudgetSummary.Variance.Equal(decimal.NewFromInt(50)))
	require.NotNil(t, snapshot.KPIs)
	require.NotNil(t, snapshot.Forecast)
}
