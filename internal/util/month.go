package util

import "time"

// PreviousMonth returns the year and month for the previous month
func PreviousMonth(year, month int) (int, int) {
	if month == 1 {
		return year - 1, 12
	}
	return year, month - 1
}

// MonthStart returns the first instant of the given month in UTC
func MonthStart(year int, month time.Month) time.Time {
	return time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
}

// EndOfMonths returns the last instant of the span of n months starting at start
func EndOfMonths(start time.Time, n int) time.Time {
	return start.AddDate(0, n, 0).Add(-time.Nanosecond)
}
