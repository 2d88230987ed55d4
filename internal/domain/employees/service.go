package employees

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"rrhh/internal/domain/audit"
	"rrhh/internal/domain/auth"
	"rrhh/internal/platform/querier"
)

var (
	ErrNotFound          = errors.New("employee not found")
	ErrDuplicateIDNumber = errors.New("an employee with this id number already exists")
	ErrInvalidReference  = errors.New("department or position does not exist")
)

type Service struct {
	Store StoreAPI
	Audit audit.Recorder
}

func NewService(store StoreAPI, recorder audit.Recorder) *Service {
	return &Service{Store: store, Audit: recorder}
}

func (s *Service) List(ctx context.Context, user auth.UserContext, filter Filter) ([]Employee, int, error) {
	filter.Search = strings.TrimSpace(filter.Search)
	list, total, err := s.Store.List(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	for i := range list {
		FilterSensitiveFields(&list[i], user)
	}
	return list, total, nil
}

func (s *Service) Get(ctx context.Context, user auth.UserContext, id int64) (Employee, error) {
	emp, err := s.Store.Get(ctx, id)
	if err != nil {
		return Employee{}, err
	}
	FilterSensitiveFields(&emp, user)
	return emp, nil
}

func (s *Service) Create(ctx context.Context, user auth.UserContext, in CreateInput) (Employee, error) {
	hireDate, err := time.Parse(time.DateOnly, in.HireDate)
	if err != nil {
		return Employee{}, fmt.Errorf("hire date: %w", err)
	}
	birthDate, err := optionalDate(in.BirthDate)
	if err != nil {
		return Employee{}, err
	}

	emp, err := s.Store.Create(ctx, in, birthDate, hireDate)
	if err != nil {
		return Employee{}, mapWriteError(err)
	}
	audit.Log(ctx, s.Audit, user.UserID, "employee.create", "employee", emp.ID, nil, emp)
	return emp, nil
}

func (s *Service) Update(ctx context.Context, user auth.UserContext, id int64, in UpdateInput) (Employee, error) {
	birthDate, err := optionalDate(in.BirthDate)
	if err != nil {
		return Employee{}, err
	}
	emp, err := s.Store.Update(ctx, id, in, birthDate)
	if err != nil {
		return Employee{}, mapWriteError(err)
	}
	audit.Log(ctx, s.Audit, user.UserID, "employee.update", "employee", id, nil, in)
	return emp, nil
}

// Deactivate is a soft delete; history rows keep referencing the employee.
func (s *Service) Deactivate(ctx context.Context, user auth.UserContext, id int64) (Employee, error) {
	emp, err := s.Store.SetStatus(ctx, id, StatusInactive)
	if err != nil {
		return Employee{}, err
	}
	audit.Log(ctx, s.Audit, user.UserID, "employee.deactivate", "employee", id, nil, map[string]string{"status": StatusInactive})
	return emp, nil
}

func (s *Service) VacationBalance(ctx context.Context, id int64) (VacationBalance, error) {
	return s.Store.VacationBalance(ctx, id)
}

func optionalDate(raw *string) (*time.Time, error) {
	if raw == nil || strings.TrimSpace(*raw) == "" {
		return nil, nil
	}
	parsed, err := time.Parse(time.DateOnly, strings.TrimSpace(*raw))
	if err != nil {
		return nil, fmt.Errorf("birth date: %w", err)
	}
	return &parsed, nil
}

func mapWriteError(err error) error {
	if errors.Is(err, ErrNotFound) {
		return err
	}
	if querier.ViolatedConstraint(err) == "employees_id_number_key" {
		return ErrDuplicateIDNumber
	}
	if querier.IsForeignKeyViolation(err) {
		return ErrInvalidReference
	}
	return err
}
