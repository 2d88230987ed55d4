package requests

import (
	"context"
	"fmt"
	"time"

	"rrhh/internal/domain/notifications"
)

const (
	employeeActive   = "active"
	employeeVacation = "vacation"
)

// StatusSyncStore finds employees whose status no longer matches their
// approved vacation for a given day.
type StatusSyncStore interface {
	VacationStarts(ctx context.Context, day time.Time) ([]int64, error)
	VacationEnds(ctx context.Context, day time.Time) ([]int64, error)
	SetEmployeeStatus(ctx context.Context, employeeID int64, status string) error
}

type SyncResult struct {
	Date    string  `json:"date"`
	Started []int64 `json:"started"`
	Ended   []int64 `json:"ended"`
}

// VacationSync moves active employees onto vacation when an approved
// vacation covers today and back to active once none does.
type VacationSync struct {
	Store    StatusSyncStore
	Notifier notifications.Notifier
	Location *time.Location
	Now      func() time.Time
}

func NewVacationSync(store StatusSyncStore, notifier notifications.Notifier, loc *time.Location) *VacationSync {
	if loc == nil {
		loc = time.UTC
	}
	return &VacationSync{Store: store, Notifier: notifier, Location: loc, Now: time.Now}
}

func (v *VacationSync) Run(ctx context.Context) (SyncResult, error) {
	today := dateOnly(v.Now().In(v.Location))
	result := SyncResult{Date: today.Format(time.DateOnly), Started: []int64{}, Ended: []int64{}}

	starting, err := v.Store.VacationStarts(ctx, today)
	if err != nil {
		return result, fmt.Errorf("vacation starts: %w", err)
	}
	for _, id := range starting {
		if err := v.Store.SetEmployeeStatus(ctx, id, employeeVacation); err != nil {
			return result, fmt.Errorf("start vacation for employee %d: %w", id, err)
		}
		result.Started = append(result.Started, id)
		notifications.Send(ctx, v.Notifier, notifications.Message{
			EmployeeID: id,
			Type:       notifications.TypeVacationStarted,
			Title:      "Vacation started",
			Body:       fmt.Sprintf("Your vacation started on %s.", result.Date),
			EntityType: "employee",
			EntityID:   id,
		})
	}

	ending, err := v.Store.VacationEnds(ctx, today)
	if err != nil {
		return result, fmt.Errorf("vacation ends: %w", err)
	}
	for _, id := range ending {
		if err := v.Store.SetEmployeeStatus(ctx, id, employeeActive); err != nil {
			return result, fmt.Errorf("end vacation for employee %d: %w", id, err)
		}
		result.Ended = append(result.Ended, id)
		notifications.Send(ctx, v.Notifier, notifications.Message{
			EmployeeID: id,
			Type:       notifications.TypeVacationEnded,
			Title:      "Welcome back",
			Body:       fmt.Sprintf("Your vacation ended. You are active again as of %s.", result.Date),
			EntityType: "employee",
			EntityID:   id,
		})
	}
	return result, nil
}
