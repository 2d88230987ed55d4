package org

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"

	"rrhh/internal/domain/auth"
)

type fakeStore struct {
	departments map[int64]Department
	positions   map[int64]Position
	assigned    map[int64]int
	createErr   error
	nextID      int64
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		departments: map[int64]Department{1: {ID: 1, Name: "Ventas"}},
		positions:   map[int64]Position{1: {ID: 1, Name: "Vendedor", HasCommission: true, CommissionPercentage: 3}},
		assigned:    map[int64]int{},
		nextID:      10,
	}
}

func (f *fakeStore) ListDepartments(context.Context) ([]Department, error) { return nil, nil }

func (f *fakeStore) GetDepartment(_ context.Context, id int64) (Department, error) {
	d, ok := f.departments[id]
	if !ok {
		return Department{}, ErrDepartmentNotFound
	}
	return d, nil
}

func (f *fakeStore) CreateDepartment(_ context.Context, name string, description *string) (int64, error) {
	if f.createErr != nil {
		return 0, f.createErr
	}
	f.nextID++
	f.departments[f.nextID] = Department{ID: f.nextID, Name: name, Description: description}
	return f.nextID, nil
}

func (f *fakeStore) UpdateDepartment(_ context.Context, id int64, in DepartmentInput) (bool, error) {
	d, ok := f.departments[id]
	if !ok {
		return false, nil
	}
	if in.Name != nil {
		d.Name = *in.Name
	}
	f.departments[id] = d
	return true, nil
}

func (f *fakeStore) DeleteDepartment(_ context.Context, id int64) (bool, error) {
	_, ok := f.departments[id]
	delete(f.departments, id)
	return ok, nil
}

func (f *fakeStore) DepartmentEmployeeCount(_ context.Context, id int64) (int, error) {
	return f.assigned[id], nil
}

func (f *fakeStore) ListPositions(context.Context) ([]Position, error) { return nil, nil }

func (f *fakeStore) GetPosition(_ context.Context, id int64) (Position, error) {
	p, ok := f.positions[id]
	if !ok {
		return Position{}, ErrPositionNotFound
	}
	return p, nil
}

func (f *fakeStore) CreatePosition(_ context.Context, in PositionInput) (int64, error) {
	if f.createErr != nil {
		return 0, f.createErr
	}
	f.nextID++
	p := Position{ID: f.nextID, Name: *in.Name}
	if in.CommissionPercentage != nil {
		p.CommissionPercentage = *in.CommissionPercentage
	}
	f.positions[f.nextID] = p
	return f.nextID, nil
}

func (f *fakeStore) UpdatePosition(_ context.Context, id int64, _ PositionInput) (bool, error) {
	_, ok := f.positions[id]
	return ok, nil
}

func (f *fakeStore) DeletePosition(_ context.Context, id int64) (bool, error) {
	_, ok := f.positions[id]
	delete(f.positions, id)
	return ok, nil
}

func (f *fakeStore) PositionEmployeeCount(context.Context, int64) (int, error) { return 0, nil }

var admin = auth.UserContext{UserID: 1, Role: auth.RoleAdmin}

func strPtr(v string) *string { return &v }

func TestCreateDepartment(t *testing.T) {
	svc := NewService(newFakeStore(), nil)

	d, err := svc.CreateDepartment(context.Background(), admin, DepartmentInput{Name: strPtr("  Bodega ")})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.Name != "Bodega" {
		t.Fatalf("expected trimmed name, got %q", d.Name)
	}

	if _, err := svc.CreateDepartment(context.Background(), admin, DepartmentInput{Name: strPtr(" ")}); !errors.Is(err, ErrNameRequired) {
		t.Fatalf("expected ErrNameRequired, got %v", err)
	}
}

func TestCreateDepartmentDuplicate(t *testing.T) {
	store := newFakeStore()
	store.createErr = &pgconn.PgError{Code: "23505"}
	svc := NewService(store, nil)

	if _, err := svc.CreateDepartment(context.Background(), admin, DepartmentInput{Name: strPtr("Ventas")}); !errors.Is(err, ErrDuplicateName) {
		t.Fatalf("expected ErrDuplicateName, got %v", err)
	}
}

func TestDeleteDepartment(t *testing.T) {
	store := newFakeStore()
	store.assigned[1] = 2
	svc := NewService(store, nil)

	if err := svc.DeleteDepartment(context.Background(), admin, 1); !errors.Is(err, ErrHasEmployees) {
		t.Fatalf("expected ErrHasEmployees, got %v", err)
	}
	store.assigned[1] = 0
	if err := svc.DeleteDepartment(context.Background(), admin, 1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := svc.DeleteDepartment(context.Background(), admin, 1); !errors.Is(err, ErrDepartmentNotFound) {
		t.Fatalf("expected ErrDepartmentNotFound, got %v", err)
	}
}

func TestUpdatePositionMissing(t *testing.T) {
	svc := NewService(newFakeStore(), nil)
	if _, err := svc.UpdatePosition(context.Background(), admin, 77, PositionInput{}); !errors.Is(err, ErrPositionNotFound) {
		t.Fatalf("expected ErrPositionNotFound, got %v", err)
	}
}

func TestCreatePosition(t *testing.T) {
	svc := NewService(newFakeStore(), nil)
	pct := 5.0
	p, err := svc.CreatePosition(context.Background(), admin, PositionInput{Name: strPtr("Asesor"), CommissionPercentage: &pct})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Name != "Asesor" || p.CommissionPercentage != 5 {
		t.Fatalf("unexpected position: %+v", p)
	}
}
