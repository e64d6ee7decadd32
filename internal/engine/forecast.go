package engine

import (
	"time"

	"github.com/dafibh/fortuna/fortuna-insights/internal/domain"
	"github.com/dafibh/fortuna/fortuna-insights/internal/util"
	"github.com/shopspring/decimal"
)

const (
	DefaultForecastMonths = 3
	topExpenseLimit       = 5
)

// Forecast projects next month's income, expense and balance as the monthly moving average
// over the trailingMonths calendar months ending with the month containing now.
// A non-positive trailingMonths uses DefaultForecastMonths.
func Forecast(txs []*domain.Transaction, trailingMonths int, now time.Time) *domain.ForecastResult {
	if trailingMonths <= 0 {
		trailingMonths = DefaultForecastMonths
	}
	months := decimal.NewFromInt(int64(trailingMonths))

	from, to := trailingRange(trailingMonths, now)
	window := FilterByRange(txs, &from, &to)

	windowIncome, windowExpense := Totals(window)
	lifetimeIncome, lifetimeExpense := Totals(txs)

	result := &domain.ForecastResult{
		CurrentBalance:   lifetimeIncome.Sub(lifetimeExpense),
		PredictedIncome:  windowIncome.Div(months).Round(0),
		PredictedExpense: windowExpense.Div(months).Round(0),
	}
	result.PredictedBalance = result.CurrentBalance.Add(result.PredictedIncome).Sub(result.PredictedExpense)

	ranked := SortedCategoryAmounts(CategoryTotals(window, domain.TransactionTypeExpense))
	if len(ranked) > topExpenseLimit {
		ranked = ranked[:topExpenseLimit]
	}
	for i := range ranked {
		ranked[i].Amount = ranked[i].Amount.Div(months).Round(2)
	}
	result.TopExpenseCategories = ranked

	return result
}

// trailingRange spans the n calendar months ending with the month containing now
func trailingRange(n int, now time.Time) (time.Time, time.Time) {
	now = now.UTC()
	current := util.MonthStart(now.Year(), now.Month())
	return current.AddDate(0, -(n - 1), 0), util.EndOfMonths(current, 1)
}
