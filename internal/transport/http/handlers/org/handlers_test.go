package orghandler

import (
	"context"
	"net/http"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"

	"rrhh/internal/domain/org"
	"rrhh/internal/transport/http/handlers/handlertest"
)

type memStore struct {
	departments map[int64]org.Department
	positions   map[int64]org.Position
}

func (m *memStore) ListDepartments(context.Context) ([]org.Department, error) {
	out := []org.Department{}
	for _, d := range m.departments {
		out = append(out, d)
	}
	return out, nil
}

func (m *memStore) GetDepartment(_ context.Context, id int64) (org.Department, error) {
	d, ok := m.departments[id]
	if !ok {
		return org.Department{}, org.ErrDepartmentNotFound
	}
	return d, nil
}

func (m *memStore) CreateDepartment(_ context.Context, name string, description *string) (int64, error) {
	for _, d := range m.departments {
		if d.Name == name {
			return 0, &pgconn.PgError{Code: "23505"}
		}
	}
	id := int64(len(m.departments) + 1)
	m.departments[id] = org.Department{ID: id, Name: name, Description: description}
	return id, nil
}

func (m *memStore) UpdateDepartment(_ context.Context, id int64, in org.DepartmentInput) (bool, error) {
	d, ok := m.departments[id]
	if !ok {
		return false, nil
	}
	if in.Name != nil {
		d.Name = *in.Name
	}
	m.departments[id] = d
	return true, nil
}

func (m *memStore) DeleteDepartment(_ context.Context, id int64) (bool, error) {
	_, ok := m.departments[id]
	delete(m.departments, id)
	return ok, nil
}

func (m *memStore) DepartmentEmployeeCount(_ context.Context, id int64) (int, error) {
	return m.departments[id].EmployeeCount, nil
}

func (m *memStore) ListPositions(context.Context) ([]org.Position, error) {
	out := []org.Position{}
	for _, p := range m.positions {
		out = append(out, p)
	}
	return out, nil
}

func (m *memStore) GetPosition(_ context.Context, id int64) (org.Position, error) {
	p, ok := m.positions[id]
	if !ok {
		return org.Position{}, org.ErrPositionNotFound
	}
	return p, nil
}

func (m *memStore) CreatePosition(_ context.Context, in org.PositionInput) (int64, error) {
	id := int64(len(m.positions) + 1)
	p := org.Position{ID: id, Name: *in.Name}
	if in.CommissionPercentage != nil {
		p.CommissionPercentage = *in.CommissionPercentage
	}
	m.positions[id] = p
	return id, nil
}

func (m *memStore) UpdatePosition(_ context.Context, id int64, _ org.PositionInput) (bool, error) {
	_, ok := m.positions[id]
	return ok, nil
}

func (m *memStore) DeletePosition(_ context.Context, id int64) (bool, error) {
	_, ok := m.positions[id]
	delete(m.positions, id)
	return ok, nil
}

func (m *memStore) PositionEmployeeCount(_ context.Context, id int64) (int, error) {
	return m.positions[id].EmployeeCount, nil
}

func newRouter(t *testing.T) (http.Handler, *memStore) {
	t.Helper()
	store := &memStore{
		departments: map[int64]org.Department{
			1: {ID: 1, Name: "Ventas", EmployeeCount: 3},
			2: {ID: 2, Name: "Bodega"},
		},
		positions: map[int64]org.Position{
			1: {ID: 1, Name: "Vendedor", HasCommission: true, CommissionPercentage: 3, EmployeeCount: 2},
		},
	}
	h := NewHandler(org.NewService(store, nil))
	return handlertest.Router(&handlertest.Admin, h.RegisterRoutes), store
}

func TestDepartmentLifecycle(t *testing.T) {
	router, store := newRouter(t)

	handlertest.Expect(t, handlertest.Do(router, http.MethodPost, "/departments", `{"name":"  Taller "}`), http.StatusCreated)
	if store.departments[3].Name != "Taller" {
		t.Fatalf("expected trimmed name, got %q", store.departments[3].Name)
	}
	rec := handlertest.Do(router, http.MethodPost, "/departments", `{"name":"Ventas"}`)
	handlertest.Expect(t, rec, http.StatusBadRequest)
	if code := handlertest.ErrorCode(t, rec); code != "duplicate_name" {
		t.Fatalf("unexpected code %s", code)
	}
	handlertest.Expect(t, handlertest.Do(router, http.MethodPost, "/departments", `{"description":"x"}`), http.StatusBadRequest)
	handlertest.Expect(t, handlertest.Do(router, http.MethodPost, "/departments", `{"name":"   "}`), http.StatusBadRequest)

	handlertest.Expect(t, handlertest.Do(router, http.MethodPut, "/departments/2", `{"name":"Almacen"}`), http.StatusOK)
	handlertest.Expect(t, handlertest.Do(router, http.MethodPut, "/departments/9", `{"name":"Nada"}`), http.StatusNotFound)
}

func TestDeleteRefusedWhileAssigned(t *testing.T) {
	router, store := newRouter(t)

	rec := handlertest.Do(router, http.MethodDelete, "/departments/1", "")
	handlertest.Expect(t, rec, http.StatusBadRequest)
	if code := handlertest.ErrorCode(t, rec); code != "has_employees" {
		t.Fatalf("unexpected code %s", code)
	}
	handlertest.Expect(t, handlertest.Do(router, http.MethodDelete, "/departments/2", ""), http.StatusOK)
	if _, ok := store.departments[2]; ok {
		t.Fatal("expected department 2 to be removed")
	}
	handlertest.Expect(t, handlertest.Do(router, http.MethodDelete, "/positions/1", ""), http.StatusBadRequest)
}

func TestPositionValidation(t *testing.T) {
	router, _ := newRouter(t)

	handlertest.Expect(t, handlertest.Do(router, http.MethodPost, "/positions", `{"name":"Cajero","commissionPercentage":150}`), http.StatusBadRequest)
	handlertest.Expect(t, handlertest.Do(router, http.MethodPost, "/positions", `{"name":"Cajero","baseSalary":-5}`), http.StatusBadRequest)
	handlertest.Expect(t, handlertest.Do(router, http.MethodPost, "/positions", `{"name":"Cajero","baseSalary":460,"commissionPercentage":0}`), http.StatusCreated)
	handlertest.Expect(t, handlertest.Do(router, http.MethodGet, "/positions/7", ""), http.StatusNotFound)
}

func TestReadsOpenToEmployees(t *testing.T) {
	store := &memStore{departments: map[int64]org.Department{1: {ID: 1, Name: "Ventas"}}, positions: map[int64]org.Position{}}
	router := handlertest.Router(&handlertest.Employee, NewHandler(org.NewService(store, nil)).RegisterRoutes)

	handlertest.Expect(t, handlertest.Do(router, http.MethodGet, "/departments", ""), http.StatusOK)
	handlertest.Expect(t, handlertest.Do(router, http.MethodGet, "/departments/1", ""), http.StatusOK)
	handlertest.Expect(t, handlertest.Do(router, http.MethodPost, "/departments", `{"name":"Otro"}`), http.StatusForbidden)
}
