package engine

import (
	"fmt"
	"strings"
	"time"

	"github.com/dafibh/fortuna/fortuna-insights/internal/domain"
	"github.com/shopspring/decimal"
)

const (
	DefaultTrendWindow        = 6
	DefaultShortWindow        = 3
	DefaultInvestmentCategory = "Investment"
)

// KPI identifiers
const (
	KPIProfitMargin          = "profit_margin"
	KPIROI                   = "roi"
	KPICostEfficiency        = "cost_efficiency"
	KPICurrentRatio          = "current_ratio"
	KPIQuickRatio            = "quick_ratio"
	KPICashRatio             = "cash_ratio"
	KPICashRunway            = "cash_runway"
	KPICashFlowTrend         = "cash_flow_trend"
	KPIAvgTransactionValue   = "avg_transaction_value"
	KPITransactionFrequency  = "transaction_frequency"
	KPICustomerConcentration = "customer_concentration"
	KPITransactionGrowth     = "transaction_growth"
	KPINetProfit             = "net_profit"
	KPIPredictedGrowth       = "predicted_growth"
	KPITopExpenseShare       = "top_expense_category_share"
)

const (
	labelLifetime   = "all time"
	labelLastPeriod = "vs last month"
	labelForecast   = "next month forecast"
)

// KPIOptions tunes the KPI windows. Zero values fall back to the defaults.
type KPIOptions struct {
	// TrendWindow is the number of months in the trend series
	TrendWindow int
	// ShortWindow is the number of months used for burn rate and turnover
	ShortWindow int
	// InvestmentCategory is the expense category counted as investment spend for ROI
	InvestmentCategory string
}

func (o KPIOptions) withDefaults() KPIOptions {
	if o.TrendWindow <= 0 {
		o.TrendWindow = DefaultTrendWindow
	}
	if o.ShortWindow <= 0 {
		o.ShortWindow = DefaultShortWindow
	}
	if strings.TrimSpace(o.InvestmentCategory) == "" {
		o.InvestmentCategory = DefaultInvestmentCategory
	}
	return o
}

// CalculateKPIs derives the profitability, liquidity, turnover and custom KPI groups.
// forecast is optional; the forecast driven metrics are omitted without it.
// Liquidity treats lifetime income as current assets and lifetime expense as current
// liabilities, so quick ratio equals current ratio.
func CalculateKPIs(txs []*domain.Transaction, forecast *domain.ForecastResult, now time.Time, opts KPIOptions) (*domain.KPIDashboard, error) {
	opts = opts.withDefaults()
	if opts.TrendWindow > domain.MaxWindowSize || opts.ShortWindow > domain.MaxWindowSize {
		return nil, fmt.Errorf("%w: windows must not exceed %d", domain.ErrInvalidWindow, domain.MaxWindowSize)
	}

	monthly, err := BucketByPeriod(txs, domain.PeriodMonthly, opts.TrendWindow, now)
	if err != nil {
		return nil, err
	}

	from, to := trailingRange(opts.ShortWindow, now)
	recent := FilterByRange(txs, &from, &to)

	income, expense := Totals(txs)
	c := kpiContext{
		txs:      txs,
		recent:   recent,
		monthly:  monthly,
		forecast: forecast,
		income:   income,
		expense:  expense,
		opts:     opts,
	}

	return &domain.KPIDashboard{
		Profitability:      c.profitability(),
		Liquidity:          c.liquidity(),
		Turnover:           c.turnover(),
		Custom:             c.custom(),
		ProfitabilityTrend: c.profitabilityTrend(),
		LiquidityTrend:     c.liquidityTrend(),
		TurnoverTrend:      c.turnoverTrend(),
		MonthlyData:        monthly,
	}, nil
}

type kpiContext struct {
	txs      []*domain.Transaction
	recent   []*domain.Transaction
	monthly  []domain.PeriodBucket
	forecast *domain.ForecastResult
	income   decimal.Decimal
	expense  decimal.Decimal
	opts     KPIOptions
}

// lastTwo returns the final bucket and the one before it
func (c *kpiContext) lastTwo() (last, prior *domain.PeriodBucket) {
	n := len(c.monthly)
	if n == 0 {
		return nil, nil
	}
	last = &c.monthly[n-1]
	if n > 1 {
		prior = &c.monthly[n-2]
	}
	return last, prior
}

func (c *kpiContext) profitability() []domain.KPIMetric {
	net := c.income.Sub(c.expense)
	last, prior := c.lastTwo()

	marginTrend := noDataTrend()
	efficiencyTrend := noDataTrend()
	if prior != nil && !prior.Income.IsZero() {
		marginTrend = pointTrend(bucketMargin(last), bucketMargin(prior))
	}
	if prior != nil {
		if p := bucketEfficiency(prior); !p.IsZero() {
			efficiencyTrend = changeTrend(bucketEfficiency(last), p, true)
		}
	}

	investment := decimal.Zero
	for _, tx := range c.txs {
		if tx.IsExpense() && strings.EqualFold(strings.TrimSpace(tx.Category), c.opts.InvestmentCategory) {
			investment = investment.Add(tx.Amount)
		}
	}

	return []domain.KPIMetric{
		{
			ID:              KPIProfitMargin,
			Title:           "Profit Margin",
			Value:           percent(net, c.income),
			Format:          domain.KPIFormatPercentage,
			Trend:           marginTrend,
			ComparisonLabel: labelLastPeriod,
		},
		{
			ID:              KPIROI,
			Title:           "Return on Investment",
			Value:           percent(net, investment),
			Format:          domain.KPIFormatPercentage,
			ComparisonLabel: labelLifetime,
		},
		{
			ID:              KPICostEfficiency,
			Title:           "Cost Efficiency",
			Value:           safeDiv(c.income, c.expense),
			Format:          domain.KPIFormatNumber,
			Trend:           efficiencyTrend,
			ComparisonLabel: labelLastPeriod,
		},
	}
}

func (c *kpiContext) liquidity() []domain.KPIMetric {
	net := c.income.Sub(c.expense)
	currentRatio := safeDiv(c.income, c.expense)

	_, recentExpense := Totals(c.recent)
	burn := recentExpense.Div(decimal.NewFromInt(int64(c.opts.ShortWindow)))

	metrics := []domain.KPIMetric{
		{
			ID:              KPICurrentRatio,
			Title:           "Current Ratio",
			Value:           currentRatio,
			Format:          domain.KPIFormatNumber,
			ComparisonLabel: labelLifetime,
		},
		{
			ID:              KPIQuickRatio,
			Title:           "Quick Ratio",
			Value:           currentRatio,
			Format:          domain.KPIFormatNumber,
			ComparisonLabel: labelLifetime,
		},
		{
			ID:              KPICashRatio,
			Title:           "Cash Ratio",
			Value:           safeDiv(net, c.expense),
			Format:          domain.KPIFormatNumber,
			ComparisonLabel: labelLifetime,
		},
		{
			ID:              KPICashRunway,
			Title:           "Cash Runway (months)",
			Value:           safeDiv(net, burn),
			Format:          domain.KPIFormatNumber,
			ComparisonLabel: fmt.Sprintf("burn over last %d months", c.opts.ShortWindow),
		},
	}

	if c.forecast != nil {
		predictedNet := c.forecast.PredictedIncome.Sub(c.forecast.PredictedExpense)
		trend := &domain.KPITrend{
			Direction: direction(predictedNet),
			Value:     domain.TrendNoData,
			Positive:  predictedNet.Sign() >= 0,
		}
		if !c.forecast.PredictedExpense.IsZero() {
			trend.Value = formatSigned(percent(predictedNet, c.forecast.PredictedExpense), "%")
		}
		metrics = append(metrics, domain.KPIMetric{
			ID:              KPICashFlowTrend,
			Title:           "Cash Flow Trend",
			Value:           predictedNet,
			Format:          domain.KPIFormatCurrency,
			Trend:           trend,
			ComparisonLabel: labelForecast,
		})
	}
	return metrics
}

func (c *kpiContext) turnover() []domain.KPIMetric {
	window := decimal.NewFromInt(int64(c.opts.ShortWindow))
	recentIncome, _ := Totals(c.recent)

	incomeCount, allCount := 0, 0
	for _, tx := range c.recent {
		if tx.IsIncome() {
			incomeCount++
		}
		if tx.IsIncome() || tx.IsExpense() {
			allCount++
		}
	}

	topCompanyIncome := decimal.Zero
	if scopes, err := ScopeTotals(c.recent, domain.ScopeCompany); err == nil {
		if ranked := SortedScopeTotals(scopes); len(ranked) > 0 {
			topCompanyIncome = ranked[0].Income
		}
	}

	growth := decimal.Zero
	growthTrend := noDataTrend()
	last, prior := c.lastTwo()
	if prior != nil && prior.TransactionCount > 0 {
		lastCount := decimal.NewFromInt(int64(last.TransactionCount))
		priorCount := decimal.NewFromInt(int64(prior.TransactionCount))
		growth = percent(lastCount.Sub(priorCount), priorCount)
		growthTrend = changeTrend(lastCount, priorCount, true)
	}

	recentLabel := fmt.Sprintf("last %d months", c.opts.ShortWindow)
	return []domain.KPIMetric{
		{
			ID:              KPIAvgTransactionValue,
			Title:           "Avg Transaction Value",
			Value:           safeDiv(recentIncome, decimal.NewFromInt(int64(incomeCount))),
			Format:          domain.KPIFormatCurrency,
			ComparisonLabel: recentLabel,
		},
		{
			ID:              KPITransactionFrequency,
			Title:           "Transactions per Month",
			Value:           decimal.NewFromInt(int64(allCount)).Div(window),
			Format:          domain.KPIFormatNumber,
			ComparisonLabel: recentLabel,
		},
		{
			ID:              KPICustomerConcentration,
			Title:           "Customer Concentration",
			Value:           percent(topCompanyIncome, recentIncome),
			Format:          domain.KPIFormatPercentage,
			ComparisonLabel: recentLabel,
		},
		{
			ID:              KPITransactionGrowth,
			Title:           "Transaction Growth",
			Value:           growth,
			Format:          domain.KPIFormatPercentage,
			Trend:           growthTrend,
			ComparisonLabel: labelLastPeriod,
		},
	}
}

func (c *kpiContext) custom() []domain.KPIMetric {
	largest := decimal.Zero
	if ranked := SortedCategoryAmounts(CategoryTotals(c.txs, domain.TransactionTypeExpense)); len(ranked) > 0 {
		largest = ranked[0].Amount
	}

	metrics := []domain.KPIMetric{
		{
			ID:              KPINetProfit,
			Title:           "Net Profit",
			Value:           c.income.Sub(c.expense),
			Format:          domain.KPIFormatCurrency,
			ComparisonLabel: labelLifetime,
		},
	}
	if c.forecast != nil {
		growth := c.forecast.PredictedBalance.Sub(c.forecast.CurrentBalance)
		metrics = append(metrics, domain.KPIMetric{
			ID:              KPIPredictedGrowth,
			Title:           "Predicted Growth",
			Value:           percent(growth, c.forecast.CurrentBalance),
			Format:          domain.KPIFormatPercentage,
			ComparisonLabel: labelForecast,
		})
	}
	metrics = append(metrics, domain.KPIMetric{
		ID:              KPITopExpenseShare,
		Title:           "Top Expense Category Share",
		Value:           percent(largest, c.expense),
		Format:          domain.KPIFormatPercentage,
		ComparisonLabel: labelLifetime,
	})
	return metrics
}

func (c *kpiContext) profitabilityTrend() []domain.ProfitabilityPoint {
	points := make([]domain.ProfitabilityPoint, len(c.monthly))
	for i := range c.monthly {
		b := &c.monthly[i]
		points[i] = domain.ProfitabilityPoint{
			PeriodLabel:    b.PeriodLabel,
			ProfitMargin:   bucketMargin(b),
			CostEfficiency: bucketEfficiency(b),
			NetProfit:      b.Income.Sub(b.Expense),
		}
	}
	return points
}

// liquidityTrend uses running totals of every transaction dated up to each bucket's end
func (c *kpiContext) liquidityTrend() []domain.LiquidityPoint {
	points := make([]domain.LiquidityPoint, len(c.monthly))
	if len(c.monthly) == 0 {
		return points
	}

	first := c.monthly[0].Start
	openingIncome, openingExpense := decimal.Zero, decimal.Zero
	for _, tx := range c.txs {
		if !tx.Date.Before(first) {
			continue
		}
		if tx.IsIncome() {
			openingIncome = openingIncome.Add(tx.Amount)
		} else if tx.IsExpense() {
			openingExpense = openingExpense.Add(tx.Amount)
		}
	}

	cumIncome, cumExpense := openingIncome, openingExpense
	for i := range c.monthly {
		b := &c.monthly[i]
		cumIncome = cumIncome.Add(b.Income)
		cumExpense = cumExpense.Add(b.Expense)
		points[i] = domain.LiquidityPoint{
			PeriodLabel:       b.PeriodLabel,
			CurrentRatio:      safeDiv(cumIncome, cumExpense),
			CashRatio:         safeDiv(cumIncome.Sub(cumExpense), cumExpense),
			CumulativeIncome:  cumIncome,
			CumulativeExpense: cumExpense,
		}
	}
	return points
}

func (c *kpiContext) turnoverTrend() []domain.TurnoverPoint {
	points := make([]domain.TurnoverPoint, len(c.monthly))
	for i := range c.monthly {
		b := &c.monthly[i]
		points[i] = domain.TurnoverPoint{
			PeriodLabel:         b.PeriodLabel,
			AvgTransactionValue: safeDiv(b.Income, decimal.NewFromInt(int64(b.IncomeCount))),
			TransactionCount:    b.TransactionCount,
		}
	}
	return points
}

func bucketMargin(b *domain.PeriodBucket) decimal.Decimal {
	return percent(b.Income.Sub(b.Expense), b.Income)
}

func bucketEfficiency(b *domain.PeriodBucket) decimal.Decimal {
	return safeDiv(b.Income, b.Expense)
}

// safeDiv returns num/den, or zero when den is zero
func safeDiv(num, den decimal.Decimal) decimal.Decimal {
	if den.IsZero() {
		return decimal.Zero
	}
	return num.Div(den)
}

func percent(num, den decimal.Decimal) decimal.Decimal {
	return safeDiv(num, den).Mul(hundred)
}

func noDataTrend() *domain.KPITrend {
	return &domain.KPITrend{
		Direction: domain.TrendNeutral,
		Value:     domain.TrendNoData,
	}
}

// pointTrend reports the difference between two percentages in percentage points
func pointTrend(current, prior decimal.Decimal) *domain.KPITrend {
	diff := current.Sub(prior)
	return &domain.KPITrend{
		Direction: direction(diff),
		Value:     formatSigned(diff, "pp"),
		Positive:  diff.Sign() >= 0,
	}
}

// changeTrend reports the relative change from a non-zero prior value
func changeTrend(current, prior decimal.Decimal, higherIsBetter bool) *domain.KPITrend {
	change := percent(current.Sub(prior), prior.Abs())
	positive := change.Sign() >= 0
	if !higherIsBetter {
		positive = change.Sign() <= 0
	}
	return &domain.KPITrend{
		Direction: direction(change),
		Value:     formatSigned(change, "%"),
		Positive:  positive,
	}
}

func direction(d decimal.Decimal) domain.TrendDirection {
	switch d.Sign() {
	case 1:
		return domain.TrendUp
	case -1:
		return domain.TrendDown
	}
	return domain.TrendNeutral
}

func formatSigned(d decimal.Decimal, unit string) string {
	s := d.StringFixed(1)
	if d.Round(1).Sign() > 0 {
		s = "+" + s
	}
	return s + unit
}
