package attendance

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var ErrInvalidClock = errors.New("invalid clock time")

// Policy holds the work-day rules used to classify check-ins and split overtime.
type Policy struct {
	StartMinutes     int
	ToleranceMinutes int
	RegularHours     float64
}

// NewPolicy builds a Policy from an "HH:MM" start time.
func NewPolicy(start string, tolerance int, regularHours float64) (Policy, error) {
	minutes, err := ClockMinutes(start)
	if err != nil {
		return Policy{}, err
	}
	return Policy{StartMinutes: minutes, ToleranceMinutes: tolerance, RegularHours: regularHours}, nil
}

// ClockMinutes converts "HH:MM" or "HH:MM:SS" to minutes past midnight. Seconds are ignored.
func ClockMinutes(value string) (int, error) {
	value = strings.TrimSpace(value)
	for _, layout := range []string{"15:04:05", "15:04"} {
		if t, err := time.Parse(layout, value); err == nil {
			return t.Hour()*60 + t.Minute(), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidClock, value)
}

// FormatClock renders t as the TIME column value.
func FormatClock(t time.Time) string {
	return t.Format("15:04:05")
}

// IsLate reports whether a check-in at minutes past midnight falls after start plus tolerance.
func (p Policy) IsLate(minutes int) bool {
	return minutes > p.StartMinutes+p.ToleranceMinutes
}

// CheckInStatus maps lateness to the attendance status column.
func CheckInStatus(late bool) string {
	if late {
		return StatusLate
	}
	return StatusPresent
}

// WorkedHours returns hours between two clock values and the share above the regular day,
// both rounded to two decimals.
func (p Policy) WorkedHours(checkIn, checkOut string) (float64, float64, error) {
	in, err := ClockMinutes(checkIn)
	if err != nil {
		return 0, 0, err
	}
	out, err := ClockMinutes(checkOut)
	if err != nil {
		return 0, 0, err
	}
	hours := decimal.NewFromInt(int64(out - in)).Div(decimal.NewFromInt(60)).Round(2)
	overtime := hours.Sub(decimal.NewFromFloat(p.RegularHours))
	if overtime.IsNegative() {
		overtime = decimal.Zero
	}
	return hours.InexactFloat64(), overtime.Round(2).InexactFloat64(), nil
}

func round2(v float64) float64 {
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}
