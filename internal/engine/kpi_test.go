package engine

import (
	"testing"

	"github.com/dafibh/fortuna/fortuna-insights/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func kpiTransactions() []*domain.Transaction {
	return []*domain.Transaction{
		income("1000", day(2025, 1, 10), "Acme"),
		expense("400", day(2025, 1, 20), "Rent"),
		income("1000", day(2025, 3, 5), "Acme"),
		expense("500", day(2025, 3, 6), "Rent"),
		income("600", day(2025, 4, 2), "Acme"),
		income("400", day(2025, 4, 3), "Beta"),
		expense("250", day(2025, 4, 4), "investment"),
		transfer("5000", day(2025, 4, 5), "Acme", "Beta"),
	}
}

func metric(t *testing.T, d *domain.KPIDashboard, id string) domain.KPIMetric {
	t.Helper()
	m, ok := d.Metric(id)
	require.True(t, ok, "metric %s missing", id)
	return m
}

func TestCalculateKPIs_Profitability(t *testing.T) {
	d, err := CalculateKPIs(kpiTransactions(), nil, fixedNow, KPIOptions{})
	require.NoError(t, err)

	margin := metric(t, d, KPIProfitMargin)
	assert.True(t, margin.Value.Equal(dec("1850").Div(dec("3000")).Mul(dec("100"))))
	assert.Equal(t, domain.KPIFormatPercentage, margin.Format)
	require.NotNil(t, margin.Trend)
	// April 75% against March 50%
	assert.Equal(t, domain.TrendUp, margin.Trend.Direction)
	assert.Equal(t, "+25.0pp", margin.Trend.Value)
	assert.True(t, margin.Trend.Positive)

	roi := metric(t, d, KPIROI)
	assert.True(t, roi.Value.Equal(dec("740")), "got %s", roi.Value)

	efficiency := metric(t, d, KPICostEfficiency)
	assert.True(t, efficiency.Value.Equal(dec("3000").Div(dec("1150"))))
	require.NotNil(t, efficiency.Trend)
	assert.Equal(t, "+100.0%", efficiency.Trend.Value)
}

func TestCalculateKPIs_Liquidity(t *testing.T) {
	d, err := CalculateKPIs(kpiTransactions(), nil, fixedNow, KPIOptions{})
	require.NoError(t, err)

	current := metric(t, d, KPICurrentRatio)
	quick := metric(t, d, KPIQuickRatio)
	assert.True(t, current.Value.Equal(quick.Value))

	cash := metric(t, d, KPICashRatio)
	assert.True(t, cash.Value.Equal(dec("1850").Div(dec("1150"))))

	// burn over Feb-Apr is 750/3 = 250
	runway := metric(t, d, KPICashRunway)
	assert.True(t, runway.Value.Equal(dec("7.4")), "got %s", runway.Value)

	_, ok := d.Metric(KPICashFlowTrend)
	assert.False(t, ok, "cash flow trend requires a forecast")
}

func TestCalculateKPIs_Turnover(t *testing.T) {
	d, err := CalculateKPIs(kpiTransactions(), nil, fixedNow, KPIOptions{})
	require.NoError(t, err)

	avg := metric(t, d, KPIAvgTransactionValue)
	assert.True(t, avg.Value.Equal(dec("2000").Div(dec("3"))))

	freq := metric(t, d, KPITransactionFrequency)
	assert.True(t, freq.Value.Equal(dec("5").Div(dec("3"))))

	concentration := metric(t, d, KPICustomerConcentration)
	assert.True(t, concentration.Value.Equal(dec("80")), "got %s", concentration.Value)

	growth := metric(t, d, KPITransactionGrowth)
	assert.True(t, growth.Value.Equal(dec("50")))
	require.NotNil(t, growth.Trend)
	assert.Equal(t, "+50.0%", growth.Trend.Value)
	assert.Equal(t, domain.TrendUp, growth.Trend.Direction)
}

func TestCalculateKPIs_CustomAndForecast(t *testing.T) {
	txs := kpiTransactions()
	forecast := Forecast(txs, 3, fixedNow)

	d, err := CalculateKPIs(txs, forecast, fixedNow, KPIOptions{})
	require.NoError(t, err)

	net := metric(t, d, KPINetProfit)
	assert.True(t, net.Value.Equal(dec("1850")))

	share := metric(t, d, KPITopExpenseShare)
	assert.True(t, share.Value.Equal(dec("900").Div(dec("1150")).Mul(dec("100"))))

	// predicted 667 income and 250 expense
	cashFlow := metric(t, d, KPICashFlowTrend)
	assert.True(t, cashFlow.Value.Equal(dec("417")))
	require.NotNil(t, cashFlow.Trend)
	assert.Equal(t, domain.TrendUp, cashFlow.Trend.Direction)
	assert.Equal(t, "+166.8%", cashFlow.Trend.Value)

	growth := metric(t, d, KPIPredictedGrowth)
	assert.True(t, growth.Value.Equal(dec("417").Div(dec("1850")).Mul(dec("100"))))
}

func TestCalculateKPIs_TrendSeries(t *testing.T) {
	older := income("700", day(2024, 2, 1), "")
	txs := append(kpiTransactions(), older)

	d, err := CalculateKPIs(txs, nil, fixedNow, KPIOptions{})
	require.NoError(t, err)

	require.Len(t, d.MonthlyData, DefaultTrendWindow)
	require.Len(t, d.ProfitabilityTrend, DefaultTrendWindow)
	require.Len(t, d.LiquidityTrend, DefaultTrendWindow)
	require.Len(t, d.TurnoverTrend, DefaultTrendWindow)
	assert.Equal(t, "2024-11", d.MonthlyData[0].PeriodLabel)
	assert.Equal(t, "2025-04", d.MonthlyData[5].PeriodLabel)

	// per bucket flow figures
	jan := d.ProfitabilityTrend[2]
	assert.Equal(t, "2025-01", jan.PeriodLabel)
	assert.True(t, jan.ProfitMargin.Equal(dec("60")))
	assert.True(t, jan.NetProfit.Equal(dec("600")))
	assert.True(t, d.ProfitabilityTrend[1].ProfitMargin.IsZero())

	// liquidity runs cumulatively and includes history before the window
	first := d.LiquidityTrend[0]
	assert.True(t, first.CumulativeIncome.Equal(dec("700")))
	assert.True(t, first.CurrentRatio.IsZero())
	last := d.LiquidityTrend[5]
	assert.True(t, last.CumulativeIncome.Equal(dec("3700")))
	assert.True(t, last.CumulativeExpense.Equal(dec("1150")))

	april := d.TurnoverTrend[5]
	assert.Equal(t, 3, april.TransactionCount)
	assert.True(t, april.AvgTransactionValue.Equal(dec("500")))
}

func TestCalculateKPIs_EmptyCollection(t *testing.T) {
	d, err := CalculateKPIs(nil, nil, fixedNow, KPIOptions{})
	require.NoError(t, err)

	for _, id := range []string{KPIProfitMargin, KPICostEfficiency, KPICashRunway, KPIROI, KPICurrentRatio, KPICashRatio,
		KPIAvgTransactionValue, KPICustomerConcentration, KPITransactionGrowth, KPITopExpenseShare} {
		m := metric(t, d, id)
		assert.True(t, m.Value.IsZero(), "%s = %s", id, m.Value)
	}

	margin := metric(t, d, KPIProfitMargin)
	require.NotNil(t, margin.Trend)
	assert.Equal(t, domain.TrendNeutral, margin.Trend.Direction)
	assert.Equal(t, domain.TrendNoData, margin.Trend.Value)

	growth := metric(t, d, KPITransactionGrowth)
	assert.Equal(t, domain.TrendNoData, growth.Trend.Value)
}

func TestCalculateKPIs_ZeroDenominatorGuards(t *testing.T) {
	onlyIncome := []*domain.Transaction{
		income("1000", day(2025, 3, 1), ""),
		income("500", day(2025, 4, 1), ""),
	}
	d, err := CalculateKPIs(onlyIncome, &domain.ForecastResult{}, fixedNow, KPIOptions{})
	require.NoError(t, err)

	assert.True(t, metric(t, d, KPICostEfficiency).Value.IsZero())
	assert.True(t, metric(t, d, KPICurrentRatio).Value.IsZero())
	assert.True(t, metric(t, d, KPICashRatio).Value.IsZero())
	assert.True(t, metric(t, d, KPICashRunway).Value.IsZero())
	assert.True(t, metric(t, d, KPIROI).Value.IsZero())
	assert.True(t, metric(t, d, KPITopExpenseShare).Value.IsZero())
	assert.True(t, metric(t, d, KPIPredictedGrowth).Value.IsZero())
	assert.Equal(t, domain.TrendNoData, metric(t, d, KPICashFlowTrend).Trend.Value)
	// March has income but no expense so the efficiency trend has nothing to compare
	assert.Equal(t, domain.TrendNoData, metric(t, d, KPICostEfficiency).Trend.Value)

	onlyExpense := []*domain.Transaction{
		expense("100", day(2025, 3, 1), "Rent"),
		expense("100", day(2025, 4, 1), "Rent"),
	}
	d, err = CalculateKPIs(onlyExpense, nil, fixedNow, KPIOptions{})
	require.NoError(t, err)
	assert.True(t, metric(t, d, KPIProfitMargin).Value.IsZero())
	assert.Equal(t, domain.TrendNoData, metric(t, d, KPIProfitMargin).Trend.Value)
	assert.True(t, metric(t, d, KPIAvgTransactionValue).Value.IsZero())
	assert.True(t, metric(t, d, KPICustomerConcentration).Value.IsZero())
	// runway is negative when spend exceeds income
	assert.True(t, metric(t, d, KPICashRunway).Value.LessThan(decimal.Zero))
}

func TestCalculateKPIs_Options(t *testing.T) {
	txs := kpiTransactions()
	txs[6].Category = "Equipment"

	d, err := CalculateKPIs(txs, nil, fixedNow, KPIOptions{TrendWindow: 12, ShortWindow: 1, InvestmentCategory: "equipment"})
	require.NoError(t, err)
	assert.Len(t, d.MonthlyData, 12)
	assert.True(t, metric(t, d, KPIROI).Value.Equal(dec("740")))
	// April only: 250 burn
	assert.True(t, metric(t, d, KPICashRunway).Value.Equal(dec("7.4")))
	assert.True(t, metric(t, d, KPITransactionFrequency).Value.Equal(dec("3")))

	_, err = CalculateKPIs(txs, nil, fixedNow, KPIOptions{TrendWindow: domain.MaxWindowSize + 1})
	assert.ErrorIs(t, err, domain.ErrInvalidWindow)
}

func TestCalculateKPIs_Idempotent(t *testing.T) {
	txs := kpiTransactions()
	forecast := Forecast(txs, 3, fixedNow)

	first, err := CalculateKPIs(txs, forecast, fixedNow, KPIOptions{})
	require.NoError(t, err)
	second, err := CalculateKPIs(txs, forecast, fixedNow, KPIOptions{})
	require.NoError(t, err)
	assert.Equal(t, first, second)
}
