package employeeshandler

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"rrhh/internal/domain/auth"
	"rrhh/internal/domain/employees"
	"rrhh/internal/transport/http/handlers/handlertest"
)

type memStore struct {
	rows       map[int64]employees.Employee
	lastFilter employees.Filter
}

func (m *memStore) List(_ context.Context, f employees.Filter) ([]employees.Employee, int, error) {
	m.lastFilter = f
	out := make([]employees.Employee, 0, len(m.rows))
	for _, e := range m.rows {
		out = append(out, e)
	}
	return out, len(out), nil
}

func (m *memStore) Get(_ context.Context, id int64) (employees.Employee, error) {
	e, ok := m.rows[id]
	if !ok {
		return employees.Employee{}, employees.ErrNotFound
	}
	return e, nil
}

func (m *memStore) Create(_ context.Context, in employees.CreateInput, _ *time.Time, hire time.Time) (employees.Employee, error) {
	for _, e := range m.rows {
		if e.IDNumber == in.IDNumber {
			return employees.Employee{}, &pgconn.PgError{Code: "23505", ConstraintName: "employees_id_number_key"}
		}
	}
	e := employees.Employee{ID: int64(len(m.rows) + 10), FirstName: in.FirstName, LastName: in.LastName, IDNumber: in.IDNumber, HireDate: hire, Salary: in.Salary, Status: employees.StatusActive}
	m.rows[e.ID] = e
	return e, nil
}

func (m *memStore) Update(ctx context.Context, id int64, in employees.UpdateInput, _ *time.Time) (employees.Employee, error) {
	e, err := m.Get(ctx, id)
	if err != nil {
		return e, err
	}
	if in.FirstName != nil {
		e.FirstName = *in.FirstName
	}
	m.rows[id] = e
	return e, nil
}

func (m *memStore) SetStatus(ctx context.Context, id int64, status string) (employees.Employee, error) {
	e, err := m.Get(ctx, id)
	if err != nil {
		return e, err
	}
	e.Status = status
	m.rows[id] = e
	return e, nil
}

func (m *memStore) VacationBalance(ctx context.Context, id int64) (employees.VacationBalance, error) {
	e, err := m.Get(ctx, id)
	if err != nil {
		return employees.VacationBalance{}, err
	}
	return employees.VacationBalance{EmployeeID: id, VacationDaysTotal: 15, VacationDaysAvailable: 15, HireDate: e.HireDate}, nil
}

func newRouter(user *auth.UserContext) (http.Handler, *memStore) {
	salary := 600.0
	store := &memStore{rows: map[int64]employees.Employee{
		5: {ID: 5, FirstName: "Ana", LastName: "Mora", IDNumber: "0911111111", Salary: &salary, Status: employees.StatusActive},
		6: {ID: 6, FirstName: "Luis", LastName: "Vera", IDNumber: "0922222222", Salary: &salary, Status: employees.StatusActive},
	}}
	h := NewHandler(employees.NewService(store, nil))
	return handlertest.Router(user, h.RegisterRoutes), store
}

func TestListFiltersAndPagination(t *testing.T) {
	router, store := newRouter(&handlertest.Supervisor)

	rec := handlertest.Do(router, http.MethodGet, "/employees?status=Active&department=3&search=ana&limit=10", "")
	handlertest.Expect(t, rec, http.StatusOK)
	if f := store.lastFilter; f.Status != "active" || f.DepartmentID != 3 || f.Search != "ana" || f.Limit != 10 {
		t.Fatalf("unexpected filter %+v", f)
	}

	rec = handlertest.Do(router, http.MethodGet, "/employees?status=fired", "")
	handlertest.Expect(t, rec, http.StatusBadRequest)
}

func TestGetHidesSalaryFromOtherEmployees(t *testing.T) {
	router, _ := newRouter(&handlertest.Employee)

	var own, other employees.Employee
	rec := handlertest.Do(router, http.MethodGet, "/employees/5", "")
	handlertest.Expect(t, rec, http.StatusOK)
	handlertest.Data(t, rec, &own)
	rec = handlertest.Do(router, http.MethodGet, "/employees/6", "")
	handlertest.Expect(t, rec, http.StatusOK)
	handlertest.Data(t, rec, &other)

	if own.Salary == nil || own.IDNumber == "" {
		t.Fatalf("expected own record to be complete: %+v", own)
	}
	if other.Salary != nil || other.IDNumber != "" {
		t.Fatalf("expected sensitive fields hidden: %+v", other)
	}

	handlertest.Expect(t, handlertest.Do(router, http.MethodGet, "/employees/404", ""), http.StatusNotFound)
	handlertest.Expect(t, handlertest.Do(router, http.MethodGet, "/employees/abc", ""), http.StatusBadRequest)
}

func TestCreate(t *testing.T) {
	router, _ := newRouter(&handlertest.Admin)

	valid := `{"firstName":"Pedro","lastName":"Paz","idNumber":"0933333333","departmentId":1,"positionId":2,"hireDate":"2025-03-01","salary":500}`
	handlertest.Expect(t, handlertest.Do(router, http.MethodPost, "/employees", valid), http.StatusCreated)

	dup := `{"firstName":"Pedro","lastName":"Paz","idNumber":"0911111111","departmentId":1,"positionId":2,"hireDate":"2025-03-01","salary":500}`
	rec := handlertest.Do(router, http.MethodPost, "/employees", dup)
	handlertest.Expect(t, rec, http.StatusBadRequest)
	if code := handlertest.ErrorCode(t, rec); code != "duplicate_id_number" {
		t.Fatalf("unexpected code %s", code)
	}

	invalid := `{"firstName":"Pedro","idNumber":"1","departmentId":1,"positionId":2,"hireDate":"01/03/2025","salary":-1,"email":"x"}`
	rec = handlertest.Do(router, http.MethodPost, "/employees", invalid)
	handlertest.Expect(t, rec, http.StatusBadRequest)
	if code := handlertest.ErrorCode(t, rec); code != "validation_error" {
		t.Fatalf("unexpected code %s", code)
	}
}

func TestMutationsRequireAdmin(t *testing.T) {
	router, _ := newRouter(&handlertest.Supervisor)
	handlertest.Expect(t, handlertest.Do(router, http.MethodPut, "/employees/5", `{"firstName":"X"}`), http.StatusForbidden)
	handlertest.Expect(t, handlertest.Do(router, http.MethodDelete, "/employees/5", ""), http.StatusForbidden)
}

func TestDeleteDeactivates(t *testing.T) {
	router, store := newRouter(&handlertest.Admin)
	handlertest.Expect(t, handlertest.Do(router, http.MethodDelete, "/employees/6", ""), http.StatusOK)
	if store.rows[6].Status != employees.StatusInactive {
		t.Fatalf("expected inactive, got %s", store.rows[6].Status)
	}
}

func TestVacationBalanceAccess(t *testing.T) {
	router, _ := newRouter(&handlertest.Employee)
	handlertest.Expect(t, handlertest.Do(router, http.MethodGet, "/employees/5/vacation-balance", ""), http.StatusOK)
	handlertest.Expect(t, handlertest.Do(router, http.MethodGet, "/employees/6/vacation-balance", ""), http.StatusForbidden)

	router, _ = newRouter(&handlertest.Supervisor)
	handlertest.Expect(t, handlertest.Do(router, http.MethodGet, "/employees/6/vacation-balance", ""), http.StatusOK)
}
