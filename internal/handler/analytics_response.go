package handler

import (
	"github.com/dafibh/fortuna/fortuna-insights/internal/domain"
	"github.com/dafibh/fortuna/fortuna-insights/internal/util"
)

// PeriodResponse represents a resolved calendar period
type PeriodResponse struct {
	Type  string `json:"type"`
	Year  int    `json:"year"`
	Index int    `json:"index"`
	Label string `json:"label"`
	Start string `json:"start"`
	End   string `json:"end"`
}

// BudgetVarianceRowResponse represents one category of a variance report
type BudgetVarianceRowResponse struct {
	Category           string `json:"category"`
	BudgetAmount       string `json:"budgetAmount"`
	ActualAmount       string `json:"actualAmount"`
	Variance           string `json:"variance"`
	VariancePercentage string `json:"variancePercentage"`
}

// BudgetSummaryResponse represents a variance report
type BudgetSummaryResponse struct {
	Period             PeriodResponse              `json:"period"`
	TotalBudget        string                      `json:"totalBudget"`
	TotalActual        string                      `json:"totalActual"`
	Variance           string                      `json:"variance"`
	VariancePercentage string                      `json:"variancePercentage"`
	Categories         []BudgetVarianceRowResponse `json:"categories"`
}

// KPITrendResponse represents a metric's movement against the previous period
type KPITrendResponse struct {
	Direction string `json:"direction"`
	Value     string `json:"value"`
	Positive  bool   `json:"positive"`
}

// KPIMetricResponse represents a dashboard tile
type KPIMetricResponse struct {
	ID              string            `json:"id"`
	Title           string            `json:"title"`
	Value           string            `json:"value"`
	Format          string            `json:"format"`
	Trend           *KPITrendResponse `json:"trend,omitempty"`
	ComparisonLabel string            `json:"comparisonLabel"`
}

// PeriodBucketResponse represents one bucket of a period series
type PeriodBucketResponse struct {
	PeriodLabel      string `json:"periodLabel"`
	Start            string `json:"start"`
	End              string `json:"end"`
	Income           string `json:"income"`
	Expense          string `json:"expense"`
	TransactionCount int    `json:"transactionCount"`
	IncomeCount      int    `json:"incomeCount"`
}

// ProfitabilityPointResponse represents a profitability trend point
type ProfitabilityPointResponse struct {
	PeriodLabel    string `json:"periodLabel"`
	ProfitMargin   string `json:"profitMargin"`
	CostEfficiency string `json:"costEfficiency"`
	NetProfit      string `json:"netProfit"`
}

// LiquidityPointResponse represents a liquidity trend point
type LiquidityPointResponse struct {
	PeriodLabel       string `json:"periodLabel"`
	CurrentRatio      string `json:"currentRatio"`
	CashRatio         string `json:"cashRatio"`
	CumulativeIncome  string `json:"cumulativeIncome"`
	CumulativeExpense string `json:"cumulativeExpense"`
}

// TurnoverPointResponse represents a turnover trend point
type TurnoverPointResponse struct {
	PeriodLabel         string `json:"periodLabel"`
	AvgTransactionValue string `json:"avgTransactionValue"`
	TransactionCount    int    `json:"transactionCount"`
}

// KPIDashboardResponse represents the full KPI dashboard
type KPIDashboardResponse struct {
	Profitability      []KPIMetricResponse          `json:"profitability"`
	Liquidity          []KPIMetricResponse          `json:"liquidity"`
	Turnover           []KPIMetricResponse          `json:"turnover"`
	Custom             []KPIMetricResponse          `json:"custom"`
	ProfitabilityTrend []ProfitabilityPointResponse `json:"profitabilityTrend"`
	LiquidityTrend     []LiquidityPointResponse     `json:"liquidityTrend"`
	TurnoverTrend      []TurnoverPointResponse      `json:"turnoverTrend"`
	MonthlyData        []PeriodBucketResponse       `json:"monthlyData"`
}

// CategoryAmountResponse represents a category total
type CategoryAmountResponse struct {
	Category string `json:"category"`
	Amount   string `json:"amount"`
}

// ForecastResponse represents next month's projection
type ForecastResponse struct {
	CurrentBalance       string                   `json:"currentBalance"`
	PredictedIncome      string                   `json:"predictedIncome"`
	PredictedExpense     string                   `json:"predictedExpense"`
	PredictedBalance     string                   `json:"predictedBalance"`
	TopExpenseCategories []CategoryAmountResponse `json:"topExpenseCategories"`
}

// ScopeTotalResponse represents income and expense for one company or project
type ScopeTotalResponse struct {
	Scope   string `json:"scope"`
	Income  string `json:"income"`
	Expense string `json:"expense"`
	Net     string `json:"net"`
}

// CompanyCashFlowResponse represents a company's cash flow including transfers
type CompanyCashFlowResponse struct {
	Company      string `json:"company"`
	Income       string `json:"income"`
	Expense      string `json:"expense"`
	TransfersIn  string `json:"transfersIn"`
	TransfersOut string `json:"transfersOut"`
	NetCashFlow  string `json:"netCashFlow"`
}

func toPeriodResponse(p domain.Period) PeriodResponse {
	return PeriodResponse{
		Type:  string(p.Type),
		Year:  p.Year,
		Index: p.Index,
		Label: util.PeriodLabel(p),
		Start: formatDate(p.Start),
		End:   formatDate(p.End),
	}
}

func toBudgetSummaryResponse(s *domain.BudgetSummary) BudgetSummaryResponse {
	rows := make([]BudgetVarianceRowResponse, len(s.Categories))
	for i, r := range s.Categories {
		rows[i] = BudgetVarianceRowResponse{
			Category:           r.Category,
			BudgetAmount:       r.BudgetAmount.StringFixed(2),
			ActualAmount:       r.ActualAmount.StringFixed(2),
			Variance:           r.Variance.StringFixed(2),
			VariancePercentage: r.VariancePercentage.StringFixed(2),
		}
	}
	return BudgetSummaryResponse{
		Period:             toPeriodResponse(s.Period),
		TotalBudget:        s.TotalBudget.StringFixed(2),
		TotalActual:        s.TotalActual.StringFixed(2),
		Variance:           s.Variance.StringFixed(2),
		VariancePercentage: s.VariancePercentage.StringFixed(2),
		Categories:         rows,
	}
}

func toKPIMetricResponses(metrics []domain.KPIMetric) []KPIMetricResponse {
	resp := make([]KPIMetricResponse, len(metrics))
	for i, m := range metrics {
		resp[i] = KPIMetricResponse{
			ID:              m.ID,
			Title:           m.Title,
			Value:           m.Value.StringFixed(2),
			Format:          string(m.Format),
			ComparisonLabel: m.ComparisonLabel,
		}
		if m.Trend != nil {
			resp[i].Trend = &KPITrendResponse{
				Direction: string(m.Trend.Direction),
				Value:     m.Trend.Value,
				Positive:  m.Trend.Positive,
			}
		}
	}
	return resp
}

func toPeriodBucketResponses(buckets []domain.PeriodBucket) []PeriodBucketResponse {
	resp := make([]PeriodBucketResponse, len(buckets))
	for i, b := range buckets {
		resp[i] = PeriodBucketResponse{
			PeriodLabel:      b.PeriodLabel,
			Start:            formatDate(b.Start),
			End:              formatDate(b.End),
			Income:           b.Income.StringFixed(2),
			Expense:          b.Expense.StringFixed(2),
			TransactionCount: b.TransactionCount,
			IncomeCount:      b.IncomeCount,
		}
	}
	return resp
}

func toKPIDashboardResponse(d *domain.KPIDashboard) KPIDashboardResponse {
	resp := KPIDashboardResponse{
		Profitability:      toKPIMetricResponses(d.Profitability),
		Liquidity:          toKPIMetricResponses(d.Liquidity),
		Turnover:           toKPIMetricResponses(d.Turnover),
		Custom:             toKPIMetricResponses(d.Custom),
		ProfitabilityTrend: make([]ProfitabilityPointResponse, len(d.ProfitabilityTrend)),
		LiquidityTrend:     make([]LiquidityPointResponse, len(d.LiquidityTrend)),
		TurnoverTrend:      make([]TurnoverPointResponse, len(d.TurnoverTrend)),
		MonthlyData:        toPeriodBucketResponses(d.MonthlyData),
	}
	for i, p := range d.ProfitabilityTrend {
		resp.ProfitabilityTrend[i] = ProfitabilityPointResponse{
			PeriodLabel:    p.PeriodLabel,
			ProfitMargin:   p.ProfitMargin.StringFixed(2),
			CostEfficiency: p.CostEfficiency.StringFixed(2),
			NetProfit:      p.NetProfit.StringFixed(2),
		}
	}
	for i, p := range d.LiquidityTrend {
		resp.LiquidityTrend[i] = LiquidityPointResponse{
			PeriodLabel:       p.PeriodLabel,
			CurrentRatio:      p.CurrentRatio.StringFixed(2),
			CashRatio:         p.CashRatio.StringFixed(2),
			CumulativeIncome:  p.CumulativeIncome.StringFixed(2),
			CumulativeExpense: p.CumulativeExpense.StringFixed(2),
		}
	}
	for i, p := range d.TurnoverTrend {
		resp.TurnoverTrend[i] = TurnoverPointResponse{
			PeriodLabel:         p.PeriodLabel,
			AvgTransactionValue: p.AvgTransactionValue.StringFixed(2),
			TransactionCount:    p.TransactionCount,
		}
	}
	return resp
}

func toCategoryAmountResponses(amounts []domain.CategoryAmount) []CategoryAmountResponse {
	resp := make([]CategoryAmountResponse, len(amounts))
	for i, a := range amounts {
		resp[i] = CategoryAmountResponse{Category: a.Category, Amount: a.Amount.StringFixed(2)}
	}
	return resp
}

func toForecastResponse(f *domain.ForecastResult) ForecastResponse {
	return ForecastResponse{
		CurrentBalance:       f.CurrentBalance.StringFixed(2),
		PredictedIncome:      f.PredictedIncome.StringFixed(2),
		PredictedExpense:     f.PredictedExpense.StringFixed(2),
		PredictedBalance:     f.PredictedBalance.StringFixed(2),
		TopExpenseCategories: toCategoryAmountResponses(f.TopExpenseCategories),
	}
}
