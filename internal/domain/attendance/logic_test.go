package attendance

import (
	"errors"
	"testing"
)

func TestClockMinutes(t *testing.T) {
	cases := map[string]int{
		"08:00":    480,
		"08:15:59": 495,
		"23:59":    1439,
	}
	for in, want := range cases {
		got, err := ClockMinutes(in)
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", in, err)
		}
		if got != want {
			t.Fatalf("%s: expected %d, got %d", in, want, got)
		}
	}
	if _, err := ClockMinutes("8am"); !errors.Is(err, ErrInvalidClock) {
		t.Fatalf("expected ErrInvalidClock, got %v", err)
	}
}

func TestIsLate(t *testing.T) {
	p, err := NewPolicy("08:00", 15, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.IsLate(8*60 + 15) {
		t.Fatal("08:15 is within tolerance")
	}
	if !p.IsLate(8*60 + 16) {
		t.Fatal("08:16 should be late")
	}
	if CheckInStatus(true) != StatusLate || CheckInStatus(false) != StatusPresent {
		t.Fatal("unexpected status mapping")
	}
}

func TestWorkedHours(t *testing.T) {
	p := Policy{StartMinutes: 480, ToleranceMinutes: 15, RegularHours: 10}

	hours, overtime, err := p.WorkedHours("08:00:00", "16:20:00")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if hours != 8.33 || overtime != 0 {
		t.Fatalf("expected 8.33/0, got %v/%v", hours, overtime)
	}

	hours, overtime, err = p.WorkedHours("07:30", "19:00")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if hours != 11.5 || overtime != 1.5 {
		t.Fatalf("expected 11.5/1.5, got %v/%v", hours, overtime)
	}
}
