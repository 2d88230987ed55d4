package employees

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"rrhh/internal/domain/auth"
)

type fakeStore struct {
	employees map[int64]Employee
	createErr error
	lastBirth *time.Time
	lastHire  time.Time
}

func (f *fakeStore) List(_ context.Context, _ Filter) ([]Employee, int, error) {
	out := make([]Employee, 0, len(f.employees))
	for _, emp := range f.employees {
		out = append(out, emp)
	}
	return out, len(out), nil
}

func (f *fakeStore) Get(_ context.Context, id int64) (Employee, error) {
	emp, ok := f.employees[id]
	if !ok {
		return Employee{}, ErrNotFound
	}
	return emp, nil
}

func (f *fakeStore) Create(_ context.Context, in CreateInput, birthDate *time.Time, hireDate time.Time) (Employee, error) {
	if f.createErr != nil {
		return Employee{}, f.createErr
	}
	f.lastBirth = birthDate
	f.lastHire = hireDate
	emp := Employee{ID: 3, EmployeeCode: "EMP0003", FirstName: in.FirstName, LastName: in.LastName, Salary: in.Salary, Status: StatusActive}
	f.employees[emp.ID] = emp
	return emp, nil
}

func (f *fakeStore) Update(_ context.Context, id int64, in UpdateInput, _ *time.Time) (Employee, error) {
	emp, ok := f.employees[id]
	if !ok {
		return Employee{}, ErrNotFound
	}
	if in.Status != nil {
		emp.Status = *in.Status
	}
	f.employees[id] = emp
	return emp, nil
}

func (f *fakeStore) SetStatus(_ context.Context, id int64, status string) (Employee, error) {
	emp, ok := f.employees[id]
	if !ok {
		return Employee{}, ErrNotFound
	}
	emp.Status = status
	f.employees[id] = emp
	return emp, nil
}

func (f *fakeStore) VacationBalance(_ context.Context, id int64) (VacationBalance, error) {
	emp, ok := f.employees[id]
	if !ok {
		return VacationBalance{}, ErrNotFound
	}
	return VacationBalance{EmployeeID: id, VacationDaysAvailable: emp.VacationDaysAvailable}, nil
}

func newFakeStore() *fakeStore {
	salary := 900.0
	return &fakeStore{employees: map[int64]Employee{
		1: {ID: 1, FirstName: "Luis", LastName: "Vera", IDNumber: "0911111111", Salary: &salary, Status: StatusActive},
	}}
}

func TestCreateParsesDates(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store, nil)
	salary := 700.0
	birth := "1990-05-04"

	emp, err := svc.Create(context.Background(), auth.UserContext{UserID: 1, Role: auth.RoleAdmin}, CreateInput{
		FirstName: "Maria", LastName: "Lopez", IDNumber: "1700000001", DepartmentID: 1, PositionID: 2,
		HireDate: "2024-02-01", Salary: &salary, BirthDate: &birth,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if emp.EmployeeCode != "EMP0003" {
		t.Fatalf("unexpected code: %s", emp.EmployeeCode)
	}
	if store.lastHire.Format(time.DateOnly) != "2024-02-01" || store.lastBirth == nil || store.lastBirth.Year() != 1990 {
		t.Fatalf("dates not passed through: %v %v", store.lastHire, store.lastBirth)
	}
}

func TestCreateDuplicateIDNumber(t *testing.T) {
	store := newFakeStore()
	store.createErr = &pgconn.PgError{Code: "23505", ConstraintName: "employees_id_number_key"}
	svc := NewService(store, nil)
	salary := 700.0

	_, err := svc.Create(context.Background(), auth.UserContext{Role: auth.RoleAdmin}, CreateInput{
		FirstName: "Maria", LastName: "Lopez", IDNumber: "0911111111", DepartmentID: 1, PositionID: 2,
		HireDate: "2024-02-01", Salary: &salary,
	})
	if !errors.Is(err, ErrDuplicateIDNumber) {
		t.Fatalf("expected ErrDuplicateIDNumber, got %v", err)
	}
}

func TestCreateUnknownDepartment(t *testing.T) {
	store := newFakeStore()
	store.createErr = &pgconn.PgError{Code: "23503"}
	svc := NewService(store, nil)
	salary := 700.0

	_, err := svc.Create(context.Background(), auth.UserContext{Role: auth.RoleAdmin}, CreateInput{
		FirstName: "Maria", LastName: "Lopez", IDNumber: "1", DepartmentID: 99, PositionID: 2,
		HireDate: "2024-02-01", Salary: &salary,
	})
	if !errors.Is(err, ErrInvalidReference) {
		t.Fatalf("expected ErrInvalidReference, got %v", err)
	}
}

func TestListHidesSensitiveFieldsForOthers(t *testing.T) {
	svc := NewService(newFakeStore(), nil)

	list, total, err := svc.List(context.Background(), auth.UserContext{Role: auth.RoleEmployee, EmployeeID: 7}, Filter{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if total != 1 || list[0].Salary != nil || list[0].IDNumber != "" {
		t.Fatalf("expected sensitive fields hidden: %+v", list[0])
	}
}

func TestDeactivate(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store, nil)

	emp, err := svc.Deactivate(context.Background(), auth.UserContext{Role: auth.RoleAdmin}, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if emp.Status != StatusInactive {
		t.Fatalf("expected inactive, got %s", emp.Status)
	}
	if _, err := svc.Deactivate(context.Background(), auth.UserContext{Role: auth.RoleAdmin}, 42); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
