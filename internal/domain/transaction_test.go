package domain

import (
	"testing"
	"time"
)

func TestTransactionTypeValues(t *testing.T) {
	tests := []struct {
		name     string
		txType   TransactionType
		expected string
	}{
		{"income", TransactionTypeIncome, "income"},
		{"expense", TransactionTypeExpense, "expense"},
		{"transfer", TransactionTypeTransfer, "transfer"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if string(tt.txType) != tt.expected {
				t.Errorf("Expected %q, got %q", tt.expected, string(tt.txType))
			}
			if !tt.txType.IsValid() {
				t.Errorf("Expected %q to be valid", tt.txType)
			}
		})
	}

	if TransactionType("refund").IsValid() {
		t.Error("Expected unknown type to be invalid")
	}
}

func TestTransactionClassification(t *testing.T) {
	tests := []struct {
		name       string
		tx         Transaction
		isTransfer bool
		isIncome   bool
		isExpense  bool
	}{
		{"income", Transaction{Type: TransactionTypeIncome}, false, true, false},
		{"expense", Transaction{Type: TransactionTypeExpense}, false, false, true},
		{"transfer type", Transaction{Type: TransactionTypeTransfer}, true, false, false},
		{"flagged income", Transaction{Type: TransactionTypeIncome, IsTransfer: true}, true, false, false},
		{"flagged expense", Transaction{Type: TransactionTypeExpense, IsTransfer: true}, true, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.tx.IsTransferRecord(); got != tt.isTransfer {
				t.Errorf("IsTransferRecord() = %v, want %v", got, tt.isTransfer)
			}
			if got := tt.tx.IsIncome(); got != tt.isIncome {
				t.Errorf("IsIncome() = %v, want %v", got, tt.isIncome)
			}
			if got := tt.tx.IsExpense(); got != tt.isExpense {
				t.Errorf("IsExpense() = %v, want %v", got, tt.isExpense)
			}
		})
	}
}

func TestScopeLabels(t *testing.T) {
	empty := ""
	acme := "Acme"

	tx := Transaction{}
	if tx.CompanyName() != UnspecifiedScope || tx.ProjectName() != UnspecifiedScope {
		t.Errorf("Expected unspecified scopes, got %q and %q", tx.CompanyName(), tx.ProjectName())
	}

	tx.Company = &empty
	if tx.CompanyName() != UnspecifiedScope {
		t.Errorf("Expected empty company to be unspecified, got %q", tx.CompanyName())
	}

	tx.Company = &acme
	if tx.CompanyName() != "Acme" {
		t.Errorf("Expected Acme, got %q", tx.CompanyName())
	}
}

func TestBudgetAppliesTo(t *testing.T) {
	acme := "Acme"

	global := Budget{}
	if !global.AppliesTo("Acme") || !global.AppliesTo("") {
		t.Error("Expected a budget without company to apply to every company")
	}

	scoped := Budget{Company: &acme}
	if !scoped.AppliesTo("Acme") {
		t.Error("Expected scoped budget to apply to its company")
	}
	if scoped.AppliesTo("Beta") {
		t.Error("Expected scoped budget not to apply to other companies")
	}
}

func TestPeriodType(t *testing.T) {
	tests := []struct {
		periodType PeriodType
		valid      bool
		maxIndex   int
	}{
		{PeriodMonthly, true, 12},
		{PeriodQuarterly, true, 4},
		{PeriodAnnual, true, 1},
		{PeriodType("weekly"), false, 0},
	}

	for _, tt := range tests {
		t.Run(string(tt.periodType), func(t *testing.T) {
			if tt.periodType.IsValid() != tt.valid {
				t.Errorf("IsValid() = %v, want %v", tt.periodType.IsValid(), tt.valid)
			}
			if tt.periodType.MaxIndex() != tt.maxIndex {
				t.Errorf("MaxIndex() = %d, want %d", tt.periodType.MaxIndex(), tt.maxIndex)
			}
		})
	}
}

func TestPeriodContains(t *testing.T) {
	p := Period{
		Type:  PeriodMonthly,
		Year:  2025,
		Index: 4,
		Start: time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2025, 4, 30, 23, 59, 59, 999999999, time.UTC),
	}

	if !p.Contains(p.Start) || !p.Contains(p.End) {
		t.Error("Expected period bounds to be inclusive")
	}
	if p.Contains(time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)) {
		t.Error("Expected next month to be outside the period")
	}
	if p.Contains(time.Date(2025, 3, 31, 23, 59, 59, 0, time.UTC)) {
		t.Error("Expected previous month to be outside the period")
	}
}

func TestDashboardMetric(t *testing.T) {
	d := KPIDashboard{
		Profitability: []KPIMetric{{ID: "profit_margin"}},
		Custom:        []KPIMetric{{ID: "cash_flow_trend"}},
	}

	if _, ok := d.Metric("cash_flow_trend"); !ok {
		t.Error("Expected to find metric in the custom group")
	}
	if _, ok := d.Metric("missing"); ok {
		t.Error("Expected unknown metric lookup to fail")
	}
}
