package attendance

import (
	"context"
	"errors"
	"time"

	"rrhh/internal/domain/audit"
	"rrhh/internal/domain/auth"
	"rrhh/internal/platform/querier"
)

var (
	ErrAlreadyCheckedIn  = errors.New("already checked in today")
	ErrAlreadyCheckedOut = errors.New("already checked out today")
	ErrNotCheckedIn      = errors.New("check-in required before check-out")
	ErrCheckOutBeforeIn  = errors.New("check-out must be after check-in")
	ErrEmployeeNotFound  = errors.New("employee not found")
	ErrInvalidDate       = errors.New("invalid date")
)

type Service struct {
	Store    StoreAPI
	Policy   Policy
	Location *time.Location
	Audit    audit.Recorder
	Now      func() time.Time
}

func NewService(store StoreAPI, policy Policy, loc *time.Location, recorder audit.Recorder) *Service {
	if loc == nil {
		loc = time.UTC
	}
	return &Service{Store: store, Policy: policy, Location: loc, Audit: recorder, Now: time.Now}
}

// clock returns the local calendar day (as a UTC midnight) and the local wall time.
func (s *Service) clock() (time.Time, time.Time) {
	now := s.Now().In(s.Location)
	day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	return day, now
}

func (s *Service) CheckIn(ctx context.Context, user auth.UserContext) (Record, error) {
	day, now := s.clock()
	existing, found, err := s.Store.FindDay(ctx, user.EmployeeID, day)
	if err != nil {
		return Record{}, err
	}
	if found && existing.CheckIn != nil {
		return existing, ErrAlreadyCheckedIn
	}

	late := s.Policy.IsLate(now.Hour()*60 + now.Minute())
	clock := FormatClock(now)
	if found {
		return s.Store.UpdateCheckIn(ctx, existing.ID, clock, late)
	}
	return s.Store.InsertCheckIn(ctx, user.EmployeeID, day, clock, late)
}

func (s *Service) CheckOut(ctx context.Context, user auth.UserContext) (Record, error) {
	day, now := s.clock()
	existing, found, err := s.Store.FindDay(ctx, user.EmployeeID, day)
	if err != nil {
		return Record{}, err
	}
	if !found || existing.CheckIn == nil {
		return Record{}, ErrNotCheckedIn
	}
	if existing.CheckOut != nil {
		return existing, ErrAlreadyCheckedOut
	}

	clock := FormatClock(now)
	hours, overtime, err := s.Policy.WorkedHours(*existing.CheckIn, clock)
	if err != nil {
		return Record{}, err
	}
	return s.Store.SetCheckOut(ctx, existing.ID, clock, hours, overtime)
}

func (s *Service) Mine(ctx context.Context, user auth.UserContext, rng Range) ([]Record, Stats, error) {
	records, err := s.Store.ListForEmployee(ctx, user.EmployeeID, rng)
	if err != nil {
		return nil, Stats{}, err
	}
	return records, Summarize(records), nil
}

func (s *Service) Today(ctx context.Context, user auth.UserContext) (Today, error) {
	day, _ := s.clock()
	record, found, err := s.Store.FindDay(ctx, user.EmployeeID, day)
	if err != nil || !found {
		return Today{}, err
	}
	return Today{
		HasCheckedIn:  record.CheckIn != nil,
		HasCheckedOut: record.CheckOut != nil,
		Attendance:    &record,
	}, nil
}

func (s *Service) ForEmployee(ctx context.Context, employeeID int64, rng Range) ([]Record, error) {
	return s.Store.ListForEmployee(ctx, employeeID, rng)
}

func (s *Service) Report(ctx context.Context, rng Range) ([]ReportRow, error) {
	return s.Store.Report(ctx, rng)
}

// Manual creates or replaces the attendance row of one employee and day.
func (s *Service) Manual(ctx context.Context, user auth.UserContext, in ManualInput) (Record, error) {
	date, err := time.Parse(time.DateOnly, in.Date)
	if err != nil {
		return Record{}, ErrInvalidDate
	}
	entry := ManualEntry{
		EmployeeID: in.EmployeeID,
		Date:       date,
		CheckIn:    blankToNil(in.CheckIn),
		CheckOut:   blankToNil(in.CheckOut),
		Status:     in.Status,
		Notes:      in.Notes,
	}
	if entry.CheckIn != nil {
		minutes, err := ClockMinutes(*entry.CheckIn)
		if err != nil {
			return Record{}, err
		}
		entry.IsLate = s.Policy.IsLate(minutes)
	}
	if entry.CheckOut != nil {
		if _, err := ClockMinutes(*entry.CheckOut); err != nil {
			return Record{}, err
		}
	}
	if entry.CheckIn != nil && entry.CheckOut != nil {
		hours, overtime, err := s.Policy.WorkedHours(*entry.CheckIn, *entry.CheckOut)
		if err != nil {
			return Record{}, err
		}
		if hours < 0 {
			return Record{}, ErrCheckOutBeforeIn
		}
		entry.HoursWorked, entry.OvertimeHours = hours, overtime
	}

	record, err := s.Store.Upsert(ctx, entry)
	if querier.IsForeignKeyViolation(err) {
		return Record{}, ErrEmployeeNotFound
	}
	if err != nil {
		return Record{}, err
	}
	audit.Log(ctx, s.Audit, user.UserID, "attendance.manual", "attendance", record.ID, nil, record)
	return record, nil
}

func blankToNil(v *string) *string {
	if v == nil || *v == "" {
		return nil
	}
	return v
}
