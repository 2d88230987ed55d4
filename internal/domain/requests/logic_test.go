package requests

import (
	"errors"
	"testing"
	"time"
)

func TestCalendarDays(t *testing.T) {
	start := time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC)

	days, err := CalendarDays(start, start)
	if err != nil || days != 1 {
		t.Fatalf("expected 1 day, got %d (%v)", days, err)
	}

	days, err = CalendarDays(start, time.Date(2025, 1, 14, 0, 0, 0, 0, time.UTC))
	if err != nil || days != 5 {
		t.Fatalf("expected 5 days, got %d (%v)", days, err)
	}

	days, err = CalendarDays(time.Date(2024, 2, 28, 0, 0, 0, 0, time.UTC), time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC))
	if err != nil || days != 3 {
		t.Fatalf("expected 3 days across leap day, got %d (%v)", days, err)
	}

	if _, err := CalendarDays(start, start.AddDate(0, 0, -1)); !errors.Is(err, ErrEndBeforeStart) {
		t.Fatalf("expected ErrEndBeforeStart, got %v", err)
	}
}

func TestStartsBy(t *testing.T) {
	today := time.Date(2025, 6, 2, 15, 0, 0, 0, time.UTC)
	if !StartsBy(time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC), today) {
		t.Fatal("leave starting today has begun")
	}
	if StartsBy(time.Date(2025, 6, 3, 0, 0, 0, 0, time.UTC), today) {
		t.Fatal("leave starting tomorrow has not begun")
	}
}
