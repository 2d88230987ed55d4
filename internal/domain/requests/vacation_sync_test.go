package requests

import (
	"context"
	"errors"
	"testing"
	"time"
)

type syncStore struct {
	day      time.Time
	starts   []int64
	ends     []int64
	statuses map[int64]string
	failSet  error
}

func (s *syncStore) VacationStarts(_ context.Context, day time.Time) ([]int64, error) {
	s.day = day
	return s.starts, nil
}

func (s *syncStore) VacationEnds(context.Context, time.Time) ([]int64, error) {
	return s.ends, nil
}

func (s *syncStore) SetEmployeeStatus(_ context.Context, id int64, status string) error {
	if s.failSet != nil {
		return s.failSet
	}
	s.statuses[id] = status
	return nil
}

func TestVacationSyncTransitions(t *testing.T) {
	store := &syncStore{starts: []int64{5}, ends: []int64{7, 9}, statuses: map[int64]string{}}
	notifier := &recordingNotifier{}
	guayaquil := time.FixedZone("ECT", -5*3600)
	sync := NewVacationSync(store, notifier, guayaquil)
	// 03:00 UTC is still the previous day in Guayaquil.
	sync.Now = func() time.Time { return time.Date(2025, 6, 10, 3, 0, 0, 0, time.UTC) }

	result, err := sync.Run(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Date != "2025-06-09" || store.day.Day() != 9 {
		t.Fatalf("expected local day 2025-06-09, got %s", result.Date)
	}
	if store.statuses[5] != "vacation" || store.statuses[7] != "active" || store.statuses[9] != "active" {
		t.Fatalf("unexpected statuses: %v", store.statuses)
	}
	if len(result.Started) != 1 || len(result.Ended) != 2 {
		t.Fatalf("unexpected result: %+v", result)
	}
	if len(notifier.sent) != 3 {
		t.Fatalf("expected 3 notices, got %d", len(notifier.sent))
	}
}

func TestVacationSyncStopsOnStoreError(t *testing.T) {
	store := &syncStore{starts: []int64{5}, statuses: map[int64]string{}, failSet: errors.New("db down")}
	sync := NewVacationSync(store, nil, nil)
	if _, err := sync.Run(context.Background()); err == nil {
		t.Fatal("expected error")
	}
}
