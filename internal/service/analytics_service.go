package service

import (
	"context"
	"fmt"
	"time"

	"github.com/dafibh/fortuna/fortuna-insights/internal/domain"
	"github.com/dafibh/fortuna/fortuna-insights/internal/engine"
	"github.com/dafibh/fortuna/fortuna-insights/internal/util"
)

// AnalyticsOptions configures the report windows
type AnalyticsOptions struct {
	InvestmentCategory string
	TrendWindow        int
	ShortWindow        int
	ForecastMonths     int
}

// AnalyticsService loads a fresh snapshot of a workspace's ledger and runs the engine over it.
// Nothing is cached; every call reflects the stores at the time of the call.
type AnalyticsService struct {
	transactionRepo domain.TransactionRepository
	budgetRepo      domain.BudgetRepository
	kpiOptions      engine.KPIOptions
	forecastMonths  int
	now             func() time.Time
}

// NewAnalyticsService creates a new AnalyticsService
func NewAnalyticsService(transactionRepo domain.TransactionRepository, budgetRepo domain.BudgetRepository, opts AnalyticsOptions) *AnalyticsService {
	if opts.ForecastMonths <= 0 {
		opts.ForecastMonths = engine.DefaultForecastMonths
	}
	return &AnalyticsService{
		transactionRepo: transactionRepo,
		budgetRepo:      budgetRepo,
		kpiOptions: engine.KPIOptions{
			TrendWindow:        opts.TrendWindow,
			ShortWindow:        opts.ShortWindow,
			InvestmentCategory: opts.InvestmentCategory,
		},
		forecastMonths: opts.ForecastMonths,
		now:            func() time.Time { return time.Now().UTC() },
	}
}

// SetClock replaces the clock used to anchor trailing windows
func (s *AnalyticsService) SetClock(now func() time.Time) {
	s.now = now
}

// Now returns the service clock's current time
func (s *AnalyticsService) Now() time.Time {
	return s.now()
}

// GetBudgetSummary returns the variance report for one period, optionally scoped to a company
func (s *AnalyticsService) GetBudgetSummary(ctx context.Context, workspaceID int32, periodType domain.PeriodType, year, index int, company string) (*domain.BudgetSummary, error) {
	period, err := util.NewPeriod(periodType, year, index)
	if err != nil {
		return nil, err
	}

	budgets, txs, err := s.loadBudgetsAndTransactions(ctx, workspaceID, periodType, year)
	if err != nil {
		return nil, err
	}
	return engine.Summarize(period, budgets, txs, engine.VarianceOptions{Company: company})
}

// GetBudgetYear returns one variance report per period of the year
func (s *AnalyticsService) GetBudgetYear(ctx context.Context, workspaceID int32, periodType domain.PeriodType, year int, company string) ([]*domain.BudgetSummary, error) {
	if !periodType.IsValid() {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidPeriodType, periodType)
	}

	budgets, txs, err := s.loadBudgetsAndTransactions(ctx, workspaceID, periodType, year)
	if err != nil {
		return nil, err
	}
	return engine.SummarizeYear(periodType, year, budgets, txs, engine.VarianceOptions{Company: company})
}

// GetKPIDashboard computes the KPI groups, including forecast driven metrics when requested
func (s *AnalyticsService) GetKPIDashboard(ctx context.Context, workspaceID int32, withForecast bool) (*domain.KPIDashboard, error) {
	txs, err := s.listTransactions(ctx, workspaceID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	var forecast *domain.ForecastResult
	if withForecast {
		forecast = engine.Forecast(txs, s.forecastMonths, now)
	}
	return engine.CalculateKPIs(txs, forecast, now, s.kpiOptions)
}

// GetForecast projects next month. A non-positive months uses the configured window.
func (s *AnalyticsService) GetForecast(ctx context.Context, workspaceID int32, months int) (*domain.ForecastResult, error) {
	if months > domain.MaxWindowSize {
		return nil, fmt.Errorf("%w: %d", domain.ErrInvalidWindow, months)
	}
	if months <= 0 {
		months = s.forecastMonths
	}

	txs, err := s.listTransactions(ctx, workspaceID)
	if err != nil {
		return nil, err
	}
	return engine.Forecast(txs, months, s.now()), nil
}

// GetCategoryTotals returns per-category totals of one type, largest first
func (s *AnalyticsService) GetCategoryTotals(ctx context.Context, workspaceID int32, txType domain.TransactionType, from, to *time.Time) ([]domain.CategoryAmount, error) {
	if txType != domain.TransactionTypeIncome && txType != domain.TransactionTypeExpense {
		return nil, domain.ErrInvalidType
	}

	txs, err := s.listTransactions(ctx, workspaceID)
	if err != nil {
		return nil, err
	}
	return engine.SortedCategoryAmounts(engine.CategoryTotals(engine.FilterByRange(txs, from, to), txType)), nil
}

// GetScopeTotals returns income and expense per company or project, largest income first
func (s *AnalyticsService) GetScopeTotals(ctx context.Context, workspaceID int32, scope domain.ScopeKey, from, to *time.Time) ([]*domain.ScopeTotal, error) {
	txs, err := s.listTransactions(ctx, workspaceID)
	if err != nil {
		return nil, err
	}

	totals, err := engine.ScopeTotals(engine.FilterByRange(txs, from, to), scope)
	if err != nil {
		return nil, err
	}
	return engine.SortedScopeTotals(totals), nil
}

// GetPeriodBuckets returns the trailing window of dense period buckets
func (s *AnalyticsService) GetPeriodBuckets(ctx context.Context, workspaceID int32, periodType domain.PeriodType, window int) ([]domain.PeriodBucket, error) {
	if window > domain.MaxWindowSize {
		return nil, fmt.Errorf("%w: %d", domain.ErrInvalidWindow, window)
	}

	txs, err := s.listTransactions(ctx, workspaceID)
	if err != nil {
		return nil, err
	}
	return engine.BucketByPeriod(txs, periodType, window, s.now())
}

// GetCompanyCashFlow returns per-company cash flow including transfers
func (s *AnalyticsService) GetCompanyCashFlow(ctx context.Context, workspaceID int32, from, to *time.Time) ([]*domain.CompanyCashFlow, error) {
	txs, err := s.listTransactions(ctx, workspaceID)
	if err != nil {
		return nil, err
	}
	return engine.CompanyCashFlow(engine.FilterByRange(txs, from, to)), nil
}

// BuildSnapshot bundles the current month's variance, the KPI dashboard and the forecast
func (s *AnalyticsService) BuildSnapshot(ctx context.Context, workspaceID int32) (*domain.ReportSnapshot, error) {
	now := s.now()
	period, err := util.PeriodContaining(domain.PeriodMonthly, now)
	if err != nil {
		return nil, err
	}

	budgets, txs, err := s.loadBudgetsAndTransactions(ctx, workspaceID, period.Type, period.Year)
	if err != nil {
		return nil, err
	}

	summary, err := engine.Summarize(period, budgets, txs, engine.VarianceOptions{})
	if err != nil {
		return nil, err
	}
	forecast := engine.Forecast(txs, s.forecastMonths, now)
	kpis, err := engine.CalculateKPIs(txs, forecast, now, s.kpiOptions)
	if err != nil {
		return nil, err
	}

	return &domain.ReportSnapshot{
		WorkspaceID:   workspaceID,
		GeneratedAt:   now,
		BudgetSummary: summary,
		KPIs:          kpis,
		Forecast:      forecast,
	}, nil
}

func (s *AnalyticsService) listTransactions(ctx context.Context, workspaceID int32) ([]*domain.Transaction, error) {
	txs, err := s.transactionRepo.ListAll(ctx, workspaceID)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	return txs, nil
}

func (s *AnalyticsService) loadBudgetsAndTransactions(ctx context.Context, workspaceID int32, periodType domain.PeriodType, year int) ([]*domain.Budget, []*domain.Transaction, error) {
	budgetType := domain.TransactionTypeExpense
	budgets, err := s.budgetRepo.List(ctx, workspaceID, &domain.BudgetFilters{
		Period: &periodType,
		Year:   &year,
		Type:   &budgetType,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("list budgets: %w", err)
	}

	txs, err := s.listTransactions(ctx, workspaceID)
	if err != nil {
		return nil, nil, err
	}
	return budgets, txs, nil
}
