package audithandler

import (
	"context"
	"encoding/csv"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"rrhh/internal/domain/audit"
	"rrhh/internal/domain/auth"
	"rrhh/internal/transport/http/handlers/handlertest"
)

type stubEvents struct {
	events   []audit.Event
	filter   audit.Filter
	limit    int
	offset   int
	countErr error
	listErr  error
}

func (s *stubEvents) Count(_ context.Context, f audit.Filter) (int, error) {
	s.filter = f
	return len(s.events), s.countErr
}

func (s *stubEvents) List(_ context.Context, f audit.Filter, limit, offset int) ([]audit.Event, error) {
	s.filter, s.limit, s.offset = f, limit, offset
	if s.listErr != nil {
		return nil, s.listErr
	}
	return s.events, nil
}

func newRouter(user auth.UserContext, events *stubEvents) http.Handler {
	h := NewHandler(events)
	return handlertest.Router(&user, func(r chi.Router) { h.RegisterRoutes(r) })
}

func sampleEvents() []audit.Event {
	actor, reqID := int64(1), "req-9"
	return []audit.Event{
		{ID: 2, ActorID: &actor, Action: "payroll.mark_paid", EntityType: "payroll", EntityID: "14", RequestID: &reqID, CreatedAt: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)},
		{ID: 1, Action: "auth.login", EntityType: "user", EntityID: "1", CreatedAt: time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC)},
	}
}

func TestListFiltersAndPaginates(t *testing.T) {
	events := &stubEvents{events: sampleEvents()}
	rec := handlertest.Do(newRouter(handlertest.Admin, events), http.MethodGet, "/audit/?action=payroll.mark_paid&entityType=payroll&entityId=14&actorId=1&limit=10&offset=5", "")
	handlertest.Expect(t, rec, http.StatusOK)

	want := audit.Filter{Action: "payroll.mark_paid", EntityType: "payroll", EntityID: "14", ActorID: 1}
	if events.filter != want || events.limit != 10 || events.offset != 5 {
		t.Fatalf("unexpected query: filter=%+v limit=%d offset=%d", events.filter, events.limit, events.offset)
	}
	if rec.Header().Get("X-Total-Count") != "2" {
		t.Fatalf("expected total header 2, got %q", rec.Header().Get("X-Total-Count"))
	}
	var out struct {
		Total  int           `json:"total"`
		Events []audit.Event `json:"events"`
	}
	handlertest.Data(t, rec, &out)
	if out.Total != 2 || len(out.Events) != 2 {
		t.Fatalf("unexpected body: %+v", out)
	}
}

func TestListRejectsBadFilters(t *testing.T) {
	rec := handlertest.Do(newRouter(handlertest.Admin, &stubEvents{}), http.MethodGet, "/audit/?actorId=abc", "")
	handlertest.Expect(t, rec, http.StatusBadRequest)
	if code := handlertest.ErrorCode(t, rec); code != "validation_error" {
		t.Fatalf("expected validation_error, got %s", code)
	}
}

func TestAuditIsAdminOnly(t *testing.T) {
	for _, user := range []auth.UserContext{handlertest.Supervisor, handlertest.Employee} {
		rec := handlertest.Do(newRouter(user, &stubEvents{}), http.MethodGet, "/audit/", "")
		handlertest.Expect(t, rec, http.StatusForbidden)
	}
}

func TestListFailure(t *testing.T) {
	events := &stubEvents{countErr: errors.New("count"), listErr: errors.New("list")}
	rec := handlertest.Do(newRouter(handlertest.Admin, events), http.MethodGet, "/audit/", "")
	handlertest.Expect(t, rec, http.StatusInternalServerError)
	if code := handlertest.ErrorCode(t, rec); code != "audit_list_failed" {
		t.Fatalf("expected audit_list_failed, got %s", code)
	}
}

func TestExportCSV(t *testing.T) {
	events := &stubEvents{events: sampleEvents()}
	rec := handlertest.Do(newRouter(handlertest.Admin, events), http.MethodGet, "/audit/export?entityType=payroll", "")
	handlertest.Expect(t, rec, http.StatusOK)
	if ct := rec.Header().Get("Content-Type"); ct != "text/csv" {
		t.Fatalf("expected text/csv, got %q", ct)
	}
	if events.limit != exportLimit || events.filter.EntityType != "payroll" {
		t.Fatalf("unexpected export query: %+v limit=%d", events.filter, events.limit)
	}

	rows, err := csv.NewReader(strings.NewReader(rec.Body.String())).ReadAll()
	if err != nil {
		t.Fatalf("parse csv: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected header and 2 rows, got %d", len(rows))
	}
	if rows[1][1] != "1" || rows[1][5] != "req-9" || rows[1][7] != "2025-03-01T12:00:00Z" {
		t.Fatalf("unexpected first row: %v", rows[1])
	}
	if rows[2][1] != "" || rows[2][6] != "" {
		t.Fatalf("expected empty optional columns, got %v", rows[2])
	}
}
