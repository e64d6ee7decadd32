package engine

import (
	"time"

	"github.com/dafibh/fortuna/fortuna-insights/internal/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// fixedNow is the clock used by every time dependent test in this package
var fixedNow = time.Date(2025, 4, 15, 12, 0, 0, 0, time.UTC)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func strPtr(s string) *string {
	return &s
}

func day(year int, month time.Month, d int) time.Time {
	return time.Date(year, month, d, 9, 0, 0, 0, time.UTC)
}

func income(amount string, date time.Time, company string) *domain.Transaction {
	tx := &domain.Transaction{
		ID:       uuid.New(),
		Amount:   dec(amount),
		Type:     domain.TransactionTypeIncome,
		Category: "Sales",
		Date:     date,
	}
	if company != "" {
		tx.Company = strPtr(company)
	}
	return tx
}

func expense(amount string, date time.Time, category string) *domain.Transaction {
	return &domain.Transaction{
		ID:       uuid.New(),
		Amount:   dec(amount),
		Type:     domain.TransactionTypeExpense,
		Category: category,
		Date:     date,
	}
}

func transfer(amount string, date time.Time, from, to string) *domain.Transaction {
	return &domain.Transaction{
		ID:          uuid.New(),
		Amount:      dec(amount),
		Type:        domain.TransactionTypeTransfer,
		Date:        date,
		IsTransfer:  true,
		FromCompany: strPtr(from),
		ToCompany:   strPtr(to),
	}
}

func monthlyBudget(category, amount string, year, month int) *domain.Budget {
	return &domain.Budget{
		ID:       uuid.New(),
		Category: category,
		Amount:   dec(amount),
		Period:   domain.PeriodMonthly,
		Year:     year,
		Month:    month,
		Type:     domain.TransactionTypeExpense,
	}
}
