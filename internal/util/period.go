package util

import (
	"fmt"
	"strings"
	"time"

	"github.com/dafibh/fortuna/fortuna-insights/internal/domain"
)

// ParsePeriodType normalizes a user supplied period type
func ParsePeriodType(s string) (domain.PeriodType, error) {
	p := domain.PeriodType(strings.ToLower(strings.TrimSpace(s)))
	if !p.IsValid() {
		return "", fmt.Errorf("%w: %q", domain.ErrInvalidPeriodType, s)
	}
	return p, nil
}

// ValidateIndex checks that index is in range for the period type
func ValidateIndex(periodType domain.PeriodType, index int) error {
	if !periodType.IsValid() {
		return fmt.Errorf("%w: %q", domain.ErrInvalidPeriodType, periodType)
	}
	if index < 1 || index > periodType.MaxIndex() {
		return fmt.Errorf("%w: %s index %d (must be 1-%d)", domain.ErrInvalidPeriodIndex, periodType, index, periodType.MaxIndex())
	}
	return nil
}

// ResolveRange returns the inclusive date range covered by a period.
// End is the last nanosecond of the final day of the period.
func ResolveRange(periodType domain.PeriodType, year, index int) (time.Time, time.Time, error) {
	if err := ValidateIndex(periodType, index); err != nil {
		return time.Time{}, time.Time{}, err
	}
	start, end := bounds(periodType, year, index)
	return start, end, nil
}

// NewPeriod resolves a (type, year, index) triple into a Period
func NewPeriod(periodType domain.PeriodType, year, index int) (domain.Period, error) {
	if err := ValidateIndex(periodType, index); err != nil {
		return domain.Period{}, err
	}
	return build(periodType, year, index), nil
}

// CurrentIndex returns the index of the period of the given type that contains date.
// Unknown period types return 0.
func CurrentIndex(periodType domain.PeriodType, date time.Time) int {
	month := int(date.UTC().Month())
	switch periodType {
	case domain.PeriodMonthly:
		return month
	case domain.PeriodQuarterly:
		return (month-1)/3 + 1
	case domain.PeriodAnnual:
		return 1
	}
	return 0
}

// PeriodContaining returns the period of the given type that contains date
func PeriodContaining(periodType domain.PeriodType, date time.Time) (domain.Period, error) {
	if !periodType.IsValid() {
		return domain.Period{}, fmt.Errorf("%w: %q", domain.ErrInvalidPeriodType, periodType)
	}
	return build(periodType, date.UTC().Year(), CurrentIndex(periodType, date)), nil
}

// PreviousPeriod returns the period immediately before p
func PreviousPeriod(p domain.Period) domain.Period {
	if p.Type == domain.PeriodMonthly {
		year, month := PreviousMonth(p.Year, p.Index)
		return build(p.Type, year, month)
	}
	year, index := p.Year, p.Index-1
	if index < 1 {
		year--
		index = p.Type.MaxIndex()
	}
	return build(p.Type, year, index)
}

// PeriodLabel formats a period for display: "2025-01", "Q1 2025" or "2025"
func PeriodLabel(p domain.Period) string {
	switch p.Type {
	case domain.PeriodQuarterly:
		return fmt.Sprintf("Q%d %d", p.Index, p.Year)
	case domain.PeriodAnnual:
		return fmt.Sprintf("%d", p.Year)
	}
	return fmt.Sprintf("%04d-%02d", p.Year, p.Index)
}

func build(periodType domain.PeriodType, year, index int) domain.Period {
	start, end := bounds(periodType, year, index)
	return domain.Period{
		Type:  periodType,
		Year:  year,
		Index: index,
		Start: start,
		End:   end,
	}
}

func bounds(periodType domain.PeriodType, year, index int) (time.Time, time.Time) {
	switch periodType {
	case domain.PeriodQuarterly:
		start := MonthStart(year, time.Month((index-1)*3+1))
		return start, EndOfMonths(start, 3)
	case domain.PeriodAnnual:
		start := MonthStart(year, time.January)
		return start, EndOfMonths(start, 12)
	}
	start := MonthStart(year, time.Month(index))
	return start, EndOfMonths(start, 1)
}
