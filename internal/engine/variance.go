package engine

import (
	"sort"

	"github.com/dafibh/fortuna/fortuna-insights/internal/domain"
	"github.com/dafibh/fortuna/fortuna-insights/internal/util"
	"github.com/shopspring/decimal"
)

var (
	hundred = decimal.NewFromInt(100)
	// unbudgetedVariancePct is reported for spend against a zero budget
	unbudgetedVariancePct = decimal.NewFromInt(-100)
)

// VarianceOptions narrows a variance report
type VarianceOptions struct {
	// Company restricts the report to one company. Budgets without a company still apply.
	Company string
}

// Summarize compares expense budgets for a period against actual expense in that period.
// Rows are ordered by variance ascending so the largest overruns come first.
func Summarize(period domain.Period, budgets []*domain.Budget, txs []*domain.Transaction, opts VarianceOptions) (*domain.BudgetSummary, error) {
	start, end, err := util.ResolveRange(period.Type, period.Year, period.Index)
	if err != nil {
		return nil, err
	}
	period.Start, period.End = start, end

	inRange := FilterByRange(txs, &start, &end)
	if opts.Company != "" {
		inRange = filterCompany(inRange, opts.Company)
	}
	actuals := CategoryTotals(inRange, domain.TransactionTypeExpense)

	// duplicate budgets for the same category are summed into a single row
	budgeted := make(map[string]decimal.Decimal)
	for _, b := range budgets {
		if !budgetMatches(b, period, opts.Company) {
			continue
		}
		budgeted[b.Category] = budgeted[b.Category].Add(b.Amount)
	}

	rows := make([]domain.BudgetVarianceRow, 0, len(budgeted)+len(actuals))
	for category, amount := range budgeted {
		actual := actuals[category]
		delete(actuals, category)
		rows = append(rows, varianceRow(category, amount, actual))
	}
	for category, actual := range actuals {
		rows = append(rows, varianceRow(category, decimal.Zero, actual))
	}

	sort.Slice(rows, func(i, j int) bool {
		if c := rows[i].Variance.Cmp(rows[j].Variance); c != 0 {
			return c < 0
		}
		return rows[i].Category < rows[j].Category
	})

	summary := &domain.BudgetSummary{
		Period:      period,
		TotalBudget: decimal.Zero,
		TotalActual: decimal.Zero,
		Categories:  rows,
	}
	for _, row := range rows {
		summary.TotalBudget = summary.TotalBudget.Add(row.BudgetAmount)
		summary.TotalActual = summary.TotalActual.Add(row.ActualAmount)
	}
	summary.Variance = summary.TotalBudget.Sub(summary.TotalActual)
	summary.VariancePercentage = variancePercentage(summary.Variance, summary.TotalBudget, summary.TotalActual)

	return summary, nil
}

// SummarizeYear returns one summary per period of the given type within year
func SummarizeYear(periodType domain.PeriodType, year int, budgets []*domain.Budget, txs []*domain.Transaction, opts VarianceOptions) ([]*domain.BudgetSummary, error) {
	if err := util.ValidateIndex(periodType, 1); err != nil {
		return nil, err
	}
	summaries := make([]*domain.BudgetSummary, 0, periodType.MaxIndex())
	for index := 1; index <= periodType.MaxIndex(); index++ {
		summary, err := Summarize(domain.Period{Type: periodType, Year: year, Index: index}, budgets, txs, opts)
		if err != nil {
			return nil, err
		}
		summaries = append(summaries, summary)
	}
	return summaries, nil
}

func budgetMatches(b *domain.Budget, period domain.Period, company string) bool {
	if b.Period != period.Type || b.Year != period.Year || b.Month != period.Index {
		return false
	}
	if b.Type != domain.TransactionTypeExpense {
		return false
	}
	return company == "" || b.AppliesTo(company)
}

func varianceRow(category string, budget, actual decimal.Decimal) domain.BudgetVarianceRow {
	variance := budget.Sub(actual)
	return domain.BudgetVarianceRow{
		Category:           category,
		BudgetAmount:       budget,
		ActualAmount:       actual,
		Variance:           variance,
		VariancePercentage: variancePercentage(variance, budget, actual),
	}
}

// variancePercentage is variance/budget*100. A zero budget gives 0 with no spend and -100 otherwise.
func variancePercentage(variance, budget, actual decimal.Decimal) decimal.Decimal {
	if budget.IsZero() {
		if actual.IsZero() {
			return decimal.Zero
		}
		return unbudgetedVariancePct
	}
	return variance.Div(budget).Mul(hundred)
}

func filterCompany(txs []*domain.Transaction, company string) []*domain.Transaction {
	result := make([]*domain.Transaction, 0, len(txs))
	for _, tx := range txs {
		if tx.CompanyName() == company {
			result = append(result, tx)
		}
	}
	return result
}
