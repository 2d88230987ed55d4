package shared

import (
	"net/http"
	"strings"
	"time"
)

// ParseDate accepts RFC3339 or YYYY-MM-DD and returns the calendar date at UTC midnight.
func ParseDate(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	if parsed, err := time.Parse(time.RFC3339, value); err == nil {
		return time.Date(parsed.Year(), parsed.Month(), parsed.Day(), 0, 0, 0, 0, time.UTC), nil
	}
	return time.Parse(time.DateOnly, value)
}

// DateRange is either an explicit [From, To] window or a calendar month.
type DateRange struct {
	From  *time.Time
	To    *time.Time
	Month int
	Year  int
}

// QueryRange reads startDate/endDate, falling back to month/year. A window is
// only applied when both of its bounds are present.
func QueryRange(v *Validator, r *http.Request) DateRange {
	var out DateRange
	q := r.URL.Query()
	start, end := strings.TrimSpace(q.Get("startDate")), strings.TrimSpace(q.Get("endDate"))
	if start != "" && end != "" {
		from, okFrom := v.Date("startDate", start)
		to, okTo := v.Date("endDate", end)
		if okFrom && okTo {
			v.DateOrder("startDate", from, "endDate", to)
			out.From, out.To = &from, &to
		}
		return out
	}
	month := QueryInt(v, r, "month", 1, 12)
	year := QueryInt(v, r, "year", 1900, 9999)
	if month > 0 && year > 0 {
		out.Month, out.Year = month, year
	}
	return out
}

// QueryDate parses an optional date parameter.
func QueryDate(v *Validator, r *http.Request, name string) *time.Time {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return nil
	}
	parsed, ok := v.Date(name, raw)
	if !ok {
		return nil
	}
	return &parsed
}
