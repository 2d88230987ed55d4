package saleshandler

import (
	"context"
	"net/http"
	"testing"
	"time"

	"rrhh/internal/domain/auth"
	"rrhh/internal/domain/sales"
	"rrhh/internal/transport/http/handlers/handlertest"
)

type memStore struct {
	rates      map[int64]sales.CommissionRate
	rows       map[int64]sales.Sale
	lastFilter sales.Filter
}

func (m *memStore) CommissionRate(_ context.Context, employeeID int64) (sales.CommissionRate, error) {
	rate, ok := m.rates[employeeID]
	if !ok {
		return sales.CommissionRate{}, sales.ErrEmployeeNotFound
	}
	return rate, nil
}

func (m *memStore) Create(_ context.Context, rec sales.Record) (int64, error) {
	id := int64(len(m.rows) + 1)
	m.rows[id] = sales.Sale{ID: id, EmployeeID: rec.EmployeeID, SaleDate: rec.SaleDate, TotalAmount: rec.TotalAmount, CommissionAmount: rec.CommissionAmount}
	return id, nil
}

func (m *memStore) Get(_ context.Context, id int64) (sales.Sale, error) {
	s, ok := m.rows[id]
	if !ok {
		return sales.Sale{}, sales.ErrNotFound
	}
	return s, nil
}

func (m *memStore) List(_ context.Context, f sales.Filter) ([]sales.Sale, error) {
	m.lastFilter = f
	out := []sales.Sale{}
	for _, s := range m.rows {
		if f.EmployeeID == 0 || s.EmployeeID == f.EmployeeID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (m *memStore) Update(_ context.Context, id int64, rec sales.Record) error {
	s := m.rows[id]
	s.EmployeeID, s.TotalAmount, s.CommissionAmount = rec.EmployeeID, rec.TotalAmount, rec.CommissionAmount
	m.rows[id] = s
	return nil
}

func (m *memStore) Delete(_ context.Context, id int64) (bool, error) {
	_, ok := m.rows[id]
	delete(m.rows, id)
	return ok, nil
}

func (m *memStore) Summary(_ context.Context, month, year int) ([]sales.SummaryRow, error) {
	return []sales.SummaryRow{{EmployeeID: 5, SalesCount: month, TotalAmount: float64(year)}}, nil
}

func newRouter(user *auth.UserContext) (http.Handler, *memStore) {
	store := &memStore{
		rates: map[int64]sales.CommissionRate{
			5: {HasCommission: true, Percentage: 3},
			6: {},
		},
		rows: map[int64]sales.Sale{},
	}
	svc := sales.NewService(store, nil, time.UTC)
	svc.Now = func() time.Time { return time.Date(2025, 3, 15, 12, 0, 0, 0, time.UTC) }
	return handlertest.Router(user, NewHandler(svc).RegisterRoutes), store
}

func TestCreateComputesCommission(t *testing.T) {
	router, store := newRouter(&handlertest.Employee)

	rec := handlertest.Do(router, http.MethodPost, "/sales", `{"totalAmount":250.50,"invoiceNumber":"F-001"}`)
	handlertest.Expect(t, rec, http.StatusCreated)
	sale := store.rows[1]
	if sale.EmployeeID != 5 || sale.CommissionAmount != 7.52 || sale.SaleDate.Day() != 15 {
		t.Fatalf("unexpected sale %+v", sale)
	}

	handlertest.Expect(t, handlertest.Do(router, http.MethodPost, "/sales", `{"employeeId":6,"totalAmount":10}`), http.StatusForbidden)
	handlertest.Expect(t, handlertest.Do(router, http.MethodPost, "/sales", `{"totalAmount":0}`), http.StatusBadRequest)
	handlertest.Expect(t, handlertest.Do(router, http.MethodPost, "/sales", `{"totalAmount":5,"saleDate":"15-03-2025"}`), http.StatusBadRequest)
}

func TestAdminBooksForOthers(t *testing.T) {
	router, store := newRouter(&handlertest.Admin)

	handlertest.Expect(t, handlertest.Do(router, http.MethodPost, "/sales", `{"employeeId":6,"totalAmount":100,"saleDate":"2025-03-01"}`), http.StatusCreated)
	if store.rows[1].CommissionAmount != 0 {
		t.Fatalf("expected no commission, got %v", store.rows[1].CommissionAmount)
	}
	handlertest.Expect(t, handlertest.Do(router, http.MethodPost, "/sales", `{"employeeId":99,"totalAmount":100}`), http.StatusNotFound)

	handlertest.Expect(t, handlertest.Do(router, http.MethodPut, "/sales/1", `{"employeeId":5}`), http.StatusOK)
	if store.rows[1].CommissionAmount != 3 {
		t.Fatalf("expected commission recomputed for new seller, got %v", store.rows[1].CommissionAmount)
	}
	handlertest.Expect(t, handlertest.Do(router, http.MethodDelete, "/sales/1", ""), http.StatusOK)
	handlertest.Expect(t, handlertest.Do(router, http.MethodDelete, "/sales/1", ""), http.StatusNotFound)
}

func TestListAndSummary(t *testing.T) {
	router, store := newRouter(&handlertest.Supervisor)

	handlertest.Expect(t, handlertest.Do(router, http.MethodGet, "/sales?employeeId=5&startDate=2025-03-01", ""), http.StatusOK)
	if store.lastFilter.EmployeeID != 5 || store.lastFilter.From == nil || store.lastFilter.To != nil {
		t.Fatalf("unexpected filter %+v", store.lastFilter)
	}
	handlertest.Expect(t, handlertest.Do(router, http.MethodGet, "/sales?startDate=2025-03-10&endDate=2025-03-01", ""), http.StatusBadRequest)

	var body struct {
		Month int `json:"month"`
		Year  int `json:"year"`
	}
	rec := handlertest.Do(router, http.MethodGet, "/sales/summary", "")
	handlertest.Expect(t, rec, http.StatusOK)
	handlertest.Data(t, rec, &body)
	if body.Month != 3 || body.Year != 2025 {
		t.Fatalf("expected current month default, got %+v", body)
	}
	handlertest.Expect(t, handlertest.Do(router, http.MethodGet, "/sales/summary?month=13", ""), http.StatusBadRequest)
}

func TestEmployeeSeesOwnSalesOnly(t *testing.T) {
	router, store := newRouter(&handlertest.Employee)
	store.rows[1] = sales.Sale{ID: 1, EmployeeID: 6, TotalAmount: 10}

	handlertest.Expect(t, handlertest.Do(router, http.MethodGet, "/sales", ""), http.StatusForbidden)
	handlertest.Expect(t, handlertest.Do(router, http.MethodGet, "/sales/1", ""), http.StatusForbidden)
	handlertest.Expect(t, handlertest.Do(router, http.MethodGet, "/sales/my-sales", ""), http.StatusOK)
	if store.lastFilter.EmployeeID != 5 {
		t.Fatalf("expected own filter, got %+v", store.lastFilter)
	}
}
