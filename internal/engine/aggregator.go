// Package engine turns transaction and budget collections into variance reports,
// KPI dashboards and forecasts. Every function is pure: no I/O, no shared state.
package engine

import (
	"fmt"
	"sort"
	"time"

	"github.com/dafibh/fortuna/fortuna-insights/internal/domain"
	"github.com/dafibh/fortuna/fortuna-insights/internal/util"
	"github.com/shopspring/decimal"
)

// FilterByRange keeps transactions dated within [from, to]. A nil bound is unbounded.
func FilterByRange(txs []*domain.Transaction, from, to *time.Time) []*domain.Transaction {
	if from == nil && to == nil {
		return txs
	}
	result := make([]*domain.Transaction, 0, len(txs))
	for _, tx := range txs {
		if from != nil && tx.Date.Before(*from) {
			continue
		}
		if to != nil && tx.Date.After(*to) {
			continue
		}
		result = append(result, tx)
	}
	return result
}

// CategoryTotals sums amounts per category for one transaction type.
// Transfers never contribute, whatever their type field says.
func CategoryTotals(txs []*domain.Transaction, txType domain.TransactionType) map[string]decimal.Decimal {
	totals := make(map[string]decimal.Decimal)
	for _, tx := range txs {
		if !matchesType(tx, txType) {
			continue
		}
		totals[tx.Category] = totals[tx.Category].Add(tx.Amount)
	}
	return totals
}

// SortedCategoryAmounts orders category totals descending by amount, then by name
func SortedCategoryAmounts(totals map[string]decimal.Decimal) []domain.CategoryAmount {
	result := make([]domain.CategoryAmount, 0, len(totals))
	for category, amount := range totals {
		result = append(result, domain.CategoryAmount{Category: category, Amount: amount})
	}
	sort.Slice(result, func(i, j int) bool {
		if c := result[i].Amount.Cmp(result[j].Amount); c != 0 {
			return c > 0
		}
		return result[i].Category < result[j].Category
	})
	return result
}

// ScopeTotals splits income and expense by company or project.
// Records without a scope value are grouped under domain.UnspecifiedScope.
func ScopeTotals(txs []*domain.Transaction, scope domain.ScopeKey) (map[string]*domain.ScopeTotal, error) {
	var key func(*domain.Transaction) string
	switch scope {
	case domain.ScopeCompany:
		key = (*domain.Transaction).CompanyName
	case domain.ScopeProject:
		key = (*domain.Transaction).ProjectName
	default:
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidScope, scope)
	}

	totals := make(map[string]*domain.ScopeTotal)
	for _, tx := range txs {
		if tx.IsTransferRecord() {
			continue
		}
		name := key(tx)
		st, ok := totals[name]
		if !ok {
			st = &domain.ScopeTotal{Scope: name}
			totals[name] = st
		}
		if tx.IsIncome() {
			st.Income = st.Income.Add(tx.Amount)
		} else if tx.IsExpense() {
			st.Expense = st.Expense.Add(tx.Amount)
		}
		st.Net = st.Income.Sub(st.Expense)
	}
	return totals, nil
}

// SortedScopeTotals orders scope totals descending by income, then by name
func SortedScopeTotals(totals map[string]*domain.ScopeTotal) []*domain.ScopeTotal {
	result := make([]*domain.ScopeTotal, 0, len(totals))
	for _, st := range totals {
		result = append(result, st)
	}
	sort.Slice(result, func(i, j int) bool {
		if c := result[i].Income.Cmp(result[j].Income); c != 0 {
			return c > 0
		}
		return result[i].Scope < result[j].Scope
	})
	return result
}

// Totals returns lifetime income and expense, excluding transfers
func Totals(txs []*domain.Transaction) (income, expense decimal.Decimal) {
	for _, tx := range txs {
		switch {
		case tx.IsIncome():
			income = income.Add(tx.Amount)
		case tx.IsExpense():
			expense = expense.Add(tx.Amount)
		}
	}
	return income, expense
}

// BucketByPeriod returns windowSize consecutive buckets, oldest first, ending with the
// period that contains now. Empty periods are present with zero totals.
func BucketByPeriod(txs []*domain.Transaction, periodType domain.PeriodType, windowSize int, now time.Time) ([]domain.PeriodBucket, error) {
	if windowSize <= 0 {
		return nil, fmt.Errorf("%w: %d", domain.ErrInvalidWindow, windowSize)
	}
	current, err := util.PeriodContaining(periodType, now)
	if err != nil {
		return nil, err
	}

	periods := make([]domain.Period, windowSize)
	p := current
	for i := windowSize - 1; i >= 0; i-- {
		periods[i] = p
		p = util.PreviousPeriod(p)
	}

	buckets := make([]domain.PeriodBucket, windowSize)
	for i, period := range periods {
		buckets[i] = domain.PeriodBucket{
			PeriodLabel: util.PeriodLabel(period),
			Start:       period.Start,
			End:         period.End,
			Income:      decimal.Zero,
			Expense:     decimal.Zero,
		}
	}

	first, last := periods[0].Start, periods[windowSize-1].End
	for _, tx := range txs {
		if !tx.IsIncome() && !tx.IsExpense() {
			continue
		}
		date := tx.Date.UTC()
		if date.Before(first) || date.After(last) {
			continue
		}
		// windows are short, a linear scan is fine
		for i := range buckets {
			if date.After(buckets[i].End) {
				continue
			}
			b := &buckets[i]
			if tx.IsIncome() {
				b.Income = b.Income.Add(tx.Amount)
				b.IncomeCount++
			} else {
				b.Expense = b.Expense.Add(tx.Amount)
			}
			b.TransactionCount++
			break
		}
	}
	return buckets, nil
}

// CompanyCashFlow reports per-company cash movement. Unlike the P&L totals it includes
// transfers, which leave FromCompany and arrive at ToCompany.
func CompanyCashFlow(txs []*domain.Transaction) []*domain.CompanyCashFlow {
	flows := make(map[string]*domain.CompanyCashFlow)
	get := func(name string) *domain.CompanyCashFlow {
		if name == "" {
			name = domain.UnspecifiedScope
		}
		f, ok := flows[name]
		if !ok {
			f = &domain.CompanyCashFlow{Company: name}
			flows[name] = f
		}
		return f
	}

	for _, tx := range txs {
		switch {
		case tx.IsTransferRecord():
			from, to := get(strValue(tx.FromCompany)), get(strValue(tx.ToCompany))
			from.TransfersOut = from.TransfersOut.Add(tx.Amount)
			to.TransfersIn = to.TransfersIn.Add(tx.Amount)
		case tx.IsIncome():
			f := get(tx.CompanyName())
			f.Income = f.Income.Add(tx.Amount)
		case tx.IsExpense():
			f := get(tx.CompanyName())
			f.Expense = f.Expense.Add(tx.Amount)
		}
	}

	result := make([]*domain.CompanyCashFlow, 0, len(flows))
	for _, f := range flows {
		f.NetCashFlow = f.Income.Sub(f.Expense).Add(f.TransfersIn).Sub(f.TransfersOut)
		result = append(result, f)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Company < result[j].Company
	})
	return result
}

func matchesType(tx *domain.Transaction, txType domain.TransactionType) bool {
	switch txType {
	case domain.TransactionTypeIncome:
		return tx.IsIncome()
	case domain.TransactionTypeExpense:
		return tx.IsExpense()
	}
	return false
}

func strValue(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
