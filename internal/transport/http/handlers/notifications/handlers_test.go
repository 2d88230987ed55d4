package notificationshandler

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"rrhh/internal/domain/auth"
	"rrhh/internal/domain/notifications"
	"rrhh/internal/transport/http/handlers/handlertest"
)

type stubStore struct {
	rows       []notifications.Notification
	unreadOnly bool
	listErr    error
}

func (s *stubStore) Create(context.Context, notifications.Message) (notifications.Notification, error) {
	return notifications.Notification{}, nil
}

func (s *stubStore) Recipient(context.Context, int64) (string, error) { return "", nil }

func (s *stubStore) List(_ context.Context, employeeID int64, unreadOnly bool, _, _ int) ([]notifications.Notification, error) {
	s.unreadOnly = unreadOnly
	if s.listErr != nil {
		return nil, s.listErr
	}
	out := []notifications.Notification{}
	for _, n := range s.rows {
		if n.EmployeeID == employeeID && (!unreadOnly || n.ReadAt == nil) {
			out = append(out, n)
		}
	}
	return out, nil
}

func (s *stubStore) Count(ctx context.Context, employeeID int64, unreadOnly bool) (int, error) {
	rows, err := s.List(ctx, employeeID, unreadOnly, 0, 0)
	return len(rows), err
}

func (s *stubStore) MarkRead(_ context.Context, employeeID, id int64) (notifications.Notification, error) {
	for i := range s.rows {
		if s.rows[i].ID == id && s.rows[i].EmployeeID == employeeID {
			now := time.Now()
			s.rows[i].ReadAt = &now
			return s.rows[i], nil
		}
	}
	return notifications.Notification{}, notifications.ErrNotFound
}

func (s *stubStore) MarkAllRead(_ context.Context, employeeID int64) (int64, error) {
	var n int64
	for i := range s.rows {
		if s.rows[i].EmployeeID == employeeID && s.rows[i].ReadAt == nil {
			now := time.Now()
			s.rows[i].ReadAt = &now
			n++
		}
	}
	return n, nil
}

func seeded() *stubStore {
	read := time.Date(2025, 3, 2, 9, 0, 0, 0, time.UTC)
	return &stubStore{rows: []notifications.Notification{
		{ID: 1, EmployeeID: 5, Type: notifications.TypeRequestApproved, Title: "Leave request approved"},
		{ID: 2, EmployeeID: 5, Type: notifications.TypePayrollPaid, Title: "Payroll paid", ReadAt: &read},
		{ID: 3, EmployeeID: 2, Type: notifications.TypePayrollPaid, Title: "Payroll paid"},
	}}
}

func newRouter(user *auth.UserContext, store *stubStore) http.Handler {
	h := NewHandler(notifications.New(store, nil, ""))
	return handlertest.Router(user, func(r chi.Router) { h.RegisterRoutes(r) })
}

func TestListReturnsOwnNotifications(t *testing.T) {
	store := seeded()
	rec := handlertest.Do(newRouter(&handlertest.Employee, store), http.MethodGet, "/notifications/", "")
	handlertest.Expect(t, rec, http.StatusOK)

	var out struct {
		Count         int                          `json:"count"`
		Notifications []notifications.Notification `json:"notifications"`
	}
	handlertest.Data(t, rec, &out)
	if out.Count != 2 || len(out.Notifications) != 2 {
		t.Fatalf("expected the employee's two notices, got %+v", out)
	}
	if rec.Header().Get("X-Total-Count") != "2" {
		t.Fatalf("unexpected total header %q", rec.Header().Get("X-Total-Count"))
	}
}

func TestListUnreadOnly(t *testing.T) {
	store := seeded()
	rec := handlertest.Do(newRouter(&handlertest.Employee, store), http.MethodGet, "/notifications/?unreadOnly=true", "")
	handlertest.Expect(t, rec, http.StatusOK)
	if !store.unreadOnly {
		t.Fatal("expected unreadOnly to reach the store")
	}

	rec = handlertest.Do(newRouter(&handlertest.Employee, store), http.MethodGet, "/notifications/?unreadOnly=maybe", "")
	handlertest.Expect(t, rec, http.StatusBadRequest)
}

func TestListRequiresAuth(t *testing.T) {
	rec := handlertest.Do(newRouter(nil, seeded()), http.MethodGet, "/notifications/", "")
	handlertest.Expect(t, rec, http.StatusUnauthorized)
}

func TestMarkRead(t *testing.T) {
	store := seeded()
	router := newRouter(&handlertest.Employee, store)

	rec := handlertest.Do(router, http.MethodPut, "/notifications/1/read", "")
	handlertest.Expect(t, rec, http.StatusOK)
	if store.rows[0].ReadAt == nil {
		t.Fatal("expected notice to be marked read")
	}

	rec = handlertest.Do(router, http.MethodPut, "/notifications/3/read", "")
	handlertest.Expect(t, rec, http.StatusNotFound)

	rec = handlertest.Do(router, http.MethodPut, "/notifications/abc/read", "")
	handlertest.Expect(t, rec, http.StatusBadRequest)
}

func TestMarkAllRead(t *testing.T) {
	store := seeded()
	rec := handlertest.Do(newRouter(&handlertest.Employee, store), http.MethodPut, "/notifications/read-all", "")
	handlertest.Expect(t, rec, http.StatusOK)

	var out struct {
		Updated int64 `json:"updated"`
	}
	handlertest.Data(t, rec, &out)
	if out.Updated != 1 {
		t.Fatalf("expected 1 updated, got %d", out.Updated)
	}
	if store.rows[2].ReadAt != nil {
		t.Fatal("another employee's notice was touched")
	}
}

func TestListFailureIsInternal(t *testing.T) {
	store := &stubStore{listErr: errors.New("db down")}
	rec := handlertest.Do(newRouter(&handlertest.Employee, store), http.MethodGet, "/notifications/", "")
	handlertest.Expect(t, rec, http.StatusInternalServerError)
}
