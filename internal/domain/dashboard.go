package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type KPIFormat string

const (
	KPIFormatCurrency   KPIFormat = "currency"
	KPIFormatPercentage KPIFormat = "percentage"
	KPIFormatNumber     KPIFormat = "number"
)

type TrendDirection string

const (
	TrendUp      TrendDirection = "up"
	TrendDown    TrendDirection = "down"
	TrendNeutral TrendDirection = "neutral"
)

// TrendNoData is the trend label used when the prior period has nothing to compare against
const TrendNoData = "no data"

// KPITrend describes how a metric moved against the previous period
type KPITrend struct {
	Direction TrendDirection `json:"direction"`
	Value     string         `json:"value"`
	Positive  bool           `json:"positive"`
}

// KPIMetric is a single dashboard tile
type KPIMetric struct {
	ID              string          `json:"id"`
	Title           string          `json:"title"`
	Value           decimal.Decimal `json:"value"`
	Format          KPIFormat       `json:"format"`
	Trend           *KPITrend       `json:"trend,omitempty"`
	ComparisonLabel string          `json:"comparisonLabel"`
}

// PeriodBucket holds income and expense totals for one calendar period
type PeriodBucket struct {
	PeriodLabel      string          `json:"periodLabel"`
	Start            time.Time       `json:"start"`
	End              time.Time       `json:"end"`
	Income           decimal.Decimal `json:"income"`
	Expense          decimal.Decimal `json:"expense"`
	TransactionCount int             `json:"transactionCount"`
	IncomeCount      int             `json:"incomeCount"`
}

// ProfitabilityPoint is the profitability ratios of a single bucket
type ProfitabilityPoint struct {
	PeriodLabel    string          `json:"periodLabel"`
	ProfitMargin   decimal.Decimal `json:"profitMargin"`
	CostEfficiency decimal.Decimal `json:"costEfficiency"`
	NetProfit      decimal.Decimal `json:"netProfit"`
}

// LiquidityPoint is the liquidity ratios computed on cumulative totals up to the end of a bucket
type LiquidityPoint struct {
	PeriodLabel       string          `json:"periodLabel"`
	CurrentRatio      decimal.Decimal `json:"currentRatio"`
	CashRatio         decimal.Decimal `json:"cashRatio"`
	CumulativeIncome  decimal.Decimal `json:"cumulativeIncome"`
	CumulativeExpense decimal.Decimal `json:"cumulativeExpense"`
}

// TurnoverPoint is the turnover figures of a single bucket
type TurnoverPoint struct {
	PeriodLabel         string          `json:"periodLabel"`
	AvgTransactionValue decimal.Decimal `json:"avgTransactionValue"`
	TransactionCount    int             `json:"transactionCount"`
}

// KPIDashboard contains the four KPI groups and their trend series
type KPIDashboard struct {
	Profitability      []KPIMetric          `json:"profitability"`
	Liquidity          []KPIMetric          `json:"liquidity"`
	Turnover           []KPIMetric          `json:"turnover"`
	Custom             []KPIMetric          `json:"custom"`
	ProfitabilityTrend []ProfitabilityPoint `json:"profitabilityTrend"`
	LiquidityTrend     []LiquidityPoint     `json:"liquidityTrend"`
	TurnoverTrend      []TurnoverPoint      `json:"turnoverTrend"`
	MonthlyData        []PeriodBucket       `json:"monthlyData"`
}

// Metric looks up a metric by ID across all groups
func (d *KPIDashboard) Metric(id string) (KPIMetric, bool) {
	for _, group := range [][]KPIMetric{d.Profitability, d.Liquidity, d.Turnover, d.Custom} {
		for _, m := range group {
			if m.ID == id {
				return m, true
			}
		}
	}
	return KPIMetric{}, false
}

// ReportSnapshot bundles the derived reports of a workspace at one point in time
type ReportSnapshot struct {
	WorkspaceID   int32           `json:"workspaceId"`
	GeneratedAt   time.Time       `json:"generatedAt"`
	BudgetSummary *BudgetSummary  `json:"budgetSummary"`
	KPIs          *KPIDashboard   `json:"kpis"`
	Forecast      *ForecastResult `json:"forecast"`
}
