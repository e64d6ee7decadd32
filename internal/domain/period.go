package domain

import "time"

type PeriodType string

const (
	PeriodMonthly   PeriodType = "monthly"
	PeriodQuarterly PeriodType = "quarterly"
	PeriodAnnual    PeriodType = "annual"
)

// IsValid reports whether p is one of the known period types
func (p PeriodType) IsValid() bool {
	switch p {
	case PeriodMonthly, PeriodQuarterly, PeriodAnnual:
		return true
	}
	return false
}

// MaxIndex returns the highest valid period index for the type, or 0 for unknown types
func (p PeriodType) MaxIndex() int {
	switch p {
	case PeriodMonthly:
		return 12
	case PeriodQuarterly:
		return 4
	case PeriodAnnual:
		return 1
	}
	return 0
}

// Period is a resolved calendar bucket. Start is inclusive, End is the last instant of the period.
type Period struct {
	Type  PeriodType `json:"type"`
	Year  int        `json:"year"`
	Index int        `json:"index"`
	Start time.Time  `json:"start"`
	End   time.Time  `json:"end"`
}

// Contains reports whether t falls within the period
func (p Period) Contains(t time.Time) bool {
	return !t.Before(p.Start) && !t.After(p.End)
}
