package requests

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"rrhh/internal/domain/audit"
	"rrhh/internal/domain/auth"
	"rrhh/internal/domain/notifications"
)

var (
	ErrNotFound             = errors.New("request not found")
	ErrEmployeeNotFound     = errors.New("employee not found")
	ErrForbidden            = errors.New("forbidden")
	ErrInvalidState         = errors.New("request is not pending")
	ErrInvalidDate          = errors.New("invalid date")
	ErrInsufficientVacation = errors.New("not enough vacation days")
	ErrCertificateRequired  = errors.New("medical certificate required for sick leave")
	ErrOverlap              = errors.New("a request already covers these dates")
	ErrReviewNotesRequired  = errors.New("review notes are required")
	ErrReasonRequired       = errors.New("reason is required")
)

type Service struct {
	Store    StoreAPI
	Audit    audit.Recorder
	Notifier notifications.Notifier
	Location *time.Location
	Now      func() time.Time
}

func NewService(store StoreAPI, recorder audit.Recorder, loc *time.Location) *Service {
	if loc == nil {
		loc = time.UTC
	}
	return &Service{Store: store, Audit: recorder, Location: loc, Now: time.Now}
}

func (s *Service) today() time.Time {
	return dateOnly(s.Now().In(s.Location))
}

// Create files a leave request for the caller's own employee record.
func (s *Service) Create(ctx context.Context, user auth.UserContext, in CreateInput) (Request, error) {
	start, err := time.Parse(time.DateOnly, in.StartDate)
	if err != nil {
		return Request{}, fmt.Errorf("%w: startDate", ErrInvalidDate)
	}
	end, err := time.Parse(time.DateOnly, in.EndDate)
	if err != nil {
		return Request{}, fmt.Errorf("%w: endDate", ErrInvalidDate)
	}
	days, err := CalendarDays(start, end)
	if err != nil {
		return Request{}, err
	}
	if strings.TrimSpace(in.Reason) == "" {
		return Request{}, ErrReasonRequired
	}

	if in.RequestType == TypeVacation {
		available, err := s.Store.VacationDaysAvailable(ctx, user.EmployeeID)
		if err != nil {
			return Request{}, err
		}
		if days > available {
			return Request{}, fmt.Errorf("%w: available %d, requested %d", ErrInsufficientVacation, available, days)
		}
	}
	certificate := in.MedicalCertificateURL
	if certificate != nil && strings.TrimSpace(*certificate) == "" {
		certificate = nil
	}
	if in.RequestType == TypeSickLeave && certificate == nil {
		return Request{}, ErrCertificateRequired
	}

	overlap, err := s.Store.HasOverlap(ctx, user.EmployeeID, start, end)
	if err != nil {
		return Request{}, err
	}
	if overlap {
		return Request{}, ErrOverlap
	}

	created, err := s.Store.Create(ctx, NewRequest{
		EmployeeID:            user.EmployeeID,
		RequestType:           in.RequestType,
		StartDate:             start,
		EndDate:               end,
		DaysRequested:         days,
		Reason:                strings.TrimSpace(in.Reason),
		MedicalCertificateURL: certificate,
	})
	if err != nil {
		return Request{}, err
	}
	audit.Log(ctx, s.Audit, user.UserID, "request.create", "request", created.ID, nil, created)
	return created, nil
}

func (s *Service) Mine(ctx context.Context, user auth.UserContext, filter Filter) ([]Request, error) {
	filter.EmployeeID = user.EmployeeID
	return s.Store.List(ctx, filter)
}

func (s *Service) List(ctx context.Context, filter Filter) ([]Request, error) {
	return s.Store.List(ctx, filter)
}

// Get returns a request visible to reviewers and to its owner.
func (s *Service) Get(ctx context.Context, user auth.UserContext, id int64) (Request, error) {
	r, err := s.Store.Get(ctx, id)
	if err != nil {
		return Request{}, err
	}
	if !user.CanReview() && !user.Owns(r.EmployeeID) {
		return Request{}, ErrForbidden
	}
	return r, nil
}

// Approve marks a pending request approved. Vacation approvals consume the
// employee's balance and flip their status once the leave has started.
func (s *Service) Approve(ctx context.Context, user auth.UserContext, id int64, notes *string) (Request, error) {
	var before, after Request
	err := s.Store.InTx(ctx, func(tx StoreAPI) error {
		snap, err := tx.Lock(ctx, id)
		if err != nil {
			return err
		}
		before = snap.Request
		if before.Status != StatusPending {
			return ErrInvalidState
		}
		if before.RequestType == TypeVacation {
			if before.DaysRequested > snap.VacationDaysAvailable {
				return fmt.Errorf("%w: available %d, requested %d", ErrInsufficientVacation, snap.VacationDaysAvailable, before.DaysRequested)
			}
			if err := tx.AddVacationDaysUsed(ctx, before.EmployeeID, before.DaysRequested); err != nil {
				return err
			}
			if StartsBy(before.StartDate, s.today()) {
				if err := tx.SetEmployeeStatus(ctx, before.EmployeeID, "vacation"); err != nil {
					return err
				}
			}
		}
		after, err = tx.Review(ctx, id, StatusApproved, user.UserID, notes)
		return err
	})
	if err != nil {
		return Request{}, err
	}
	audit.Log(ctx, s.Audit, user.UserID, "request.approve", "request", id, before, after)
	notifications.Send(ctx, s.Notifier, notifications.Message{
		EmployeeID: after.EmployeeID,
		Type:       notifications.TypeRequestApproved,
		Title:      "Leave request approved",
		Body:       fmt.Sprintf("Your %s request for %s to %s was approved.", after.RequestType, after.StartDate.Format(time.DateOnly), after.EndDate.Format(time.DateOnly)),
		EntityType: "request",
		EntityID:   id,
	})
	return after, nil
}

func (s *Service) Reject(ctx context.Context, user auth.UserContext, id int64, notes *string) (Request, error) {
	if notes == nil || strings.TrimSpace(*notes) == "" {
		return Request{}, ErrReviewNotesRequired
	}
	var before, after Request
	err := s.Store.InTx(ctx, func(tx StoreAPI) error {
		snap, err := tx.Lock(ctx, id)
		if err != nil {
			return err
		}
		before = snap.Request
		if before.Status != StatusPending {
			return ErrInvalidState
		}
		after, err = tx.Review(ctx, id, StatusRejected, user.UserID, notes)
		return err
	})
	if err != nil {
		return Request{}, err
	}
	audit.Log(ctx, s.Audit, user.UserID, "request.reject", "request", id, before, after)
	notifications.Send(ctx, s.Notifier, notifications.Message{
		EmployeeID: after.EmployeeID,
		Type:       notifications.TypeRequestRejected,
		Title:      "Leave request rejected",
		Body:       fmt.Sprintf("Your %s request for %s to %s was rejected: %s", after.RequestType, after.StartDate.Format(time.DateOnly), after.EndDate.Format(time.DateOnly), *notes),
		EntityType: "request",
		EntityID:   id,
	})
	return after, nil
}

// Cancel withdraws a pending request. Only its owner or an admin may cancel.
func (s *Service) Cancel(ctx context.Context, user auth.UserContext, id int64) (Request, error) {
	var before, after Request
	err := s.Store.InTx(ctx, func(tx StoreAPI) error {
		snap, err := tx.Lock(ctx, id)
		if err != nil {
			return err
		}
		before = snap.Request
		if !user.Owns(before.EmployeeID) {
			return ErrForbidden
		}
		if before.Status != StatusPending {
			return ErrInvalidState
		}
		after, err = tx.Cancel(ctx, id)
		return err
	})
	if err != nil {
		return Request{}, err
	}
	audit.Log(ctx, s.Audit, user.UserID, "request.cancel", "request", id, before, after)
	return after, nil
}

func (s *Service) PendingCount(ctx context.Context) (int, error) {
	return s.Store.PendingCount(ctx)
}
