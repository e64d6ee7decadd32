package handler

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

const dateLayout = "2006-01-02"

func parseDate(s string) (time.Time, error) {
	return time.ParseInLocation(dateLayout, strings.TrimSpace(s), time.UTC)
}

// dateRangeParams reads optional from/to query parameters. to covers its whole day.
func dateRangeParams(c echo.Context) (from, to *time.Time, errs []ValidationError) {
	if raw := c.QueryParam("from"); raw != "" {
		d, err := parseDate(raw)
		if err != nil {
			errs = append(errs, ValidationError{Field: "from", Message: "Must be in YYYY-MM-DD format"})
		} else {
			from = &d
		}
	}
	if raw := c.QueryParam("to"); raw != "" {
		d, err := parseDate(raw)
		if err != nil {
			errs = append(errs, ValidationError{Field: "to", Message: "Must be in YYYY-MM-DD format"})
		} else {
			end := d.AddDate(0, 0, 1).Add(-time.Nanosecond)
			to = &end
		}
	}
	if from != nil && to != nil && from.After(*to) {
		errs = append(errs, ValidationError{Field: "from", Message: "Must not be after to"})
	}
	return from, to, errs
}

// intParam reads an integer query parameter, returning def when it is absent
func intParam(c echo.Context, name string, def int) (int, *ValidationError) {
	raw := c.QueryParam(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, &ValidationError{Field: name, Message: "Must be an integer"}
	}
	return v, nil
}

func idParam(c echo.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid id %q", c.Param("id"))
	}
	return id, nil
}

func formatDate(t time.Time) string {
	return t.UTC().Format(dateLayout)
}

func formatTimestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}
