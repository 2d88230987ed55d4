package requests

import (
	"errors"
	"time"
)

var ErrEndBeforeStart = errors.New("end date before start date")

// CalendarDays returns the inclusive number of calendar days between two dates.
func CalendarDays(start, end time.Time) (int, error) {
	start = dateOnly(start)
	end = dateOnly(end)
	if end.Before(start) {
		return 0, ErrEndBeforeStart
	}
	return int(end.Sub(start).Hours()/24) + 1, nil
}

// StartsBy reports whether a leave starting at start has begun by today.
func StartsBy(start, today time.Time) bool {
	return !dateOnly(start).After(dateOnly(today))
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
