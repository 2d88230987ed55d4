package shared

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
)

type samplePayload struct {
	Name    string   `json:"name" validate:"required"`
	Email   *string  `json:"email" validate:"omitempty,email"`
	Percent *float64 `json:"percent" validate:"omitempty,gte=0,lte=100"`
	Role    string   `json:"role" validate:"required,oneof=admin employee"`
	Date    string   `json:"date" validate:"omitempty,datetime=2006-01-02"`
	IDs     []int64  `json:"ids" validate:"omitempty,dive,gt=0"`
}

func TestStructUsesJSONNames(t *testing.T) {
	email, pct := "nope", 120.0
	v := NewValidator()
	v.Struct(samplePayload{Email: &email, Percent: &pct, Role: "root", Date: "31/01/2025", IDs: []int64{1, 0}})

	got := map[string]string{}
	for _, issue := range v.Issues() {
		got[issue.Field] = issue.Reason
	}
	want := map[string]string{
		"name":    "is required",
		"email":   "must be a valid email address",
		"percent": "must be at most 100",
		"role":    "must be one of: admin, employee",
		"date":    "must be a valid date in YYYY-MM-DD format",
		"ids[1]":  "must be greater than 0",
	}
	for field, reason := range want {
		if got[field] != reason {
			t.Fatalf("field %s: expected %q, got %q (all: %v)", field, reason, got[field], got)
		}
	}
}

func TestRejectWritesValidationEnvelope(t *testing.T) {
	rec := httptest.NewRecorder()
	v := NewValidator()
	v.Add("endDate", "must be on or after startDate")
	if !v.Reject(rec, "req-1") {
		t.Fatal("expected reject")
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	var env struct {
		Error struct {
			Code    string `json:"code"`
			Details struct {
				Fields []ValidationIssue `json:"fields"`
			} `json:"details"`
		} `json:"error"`
		RequestID string `json:"requestId"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if env.Error.Code != "validation_error" || len(env.Error.Details.Fields) != 1 || env.RequestID != "req-1" {
		t.Fatalf("unexpected envelope: %+v", env)
	}
}

func TestQueryRange(t *testing.T) {
	cases := []struct {
		query     string
		wantRange bool
		wantMonth int
		wantIssue bool
	}{
		{query: "startDate=2025-01-01&endDate=2025-01-31", wantRange: true},
		{query: "startDate=2025-01-01", wantMonth: 0},
		{query: "month=2&year=2025", wantMonth: 2},
		{query: "month=13&year=2025", wantIssue: true},
		{query: "startDate=2025-02-01&endDate=2025-01-01", wantRange: true, wantIssue: true},
	}
	for _, tc := range cases {
		v := NewValidator()
		rng := QueryRange(v, httptest.NewRequest(http.MethodGet, "/?"+tc.query, nil))
		if (rng.From != nil) != tc.wantRange || rng.Month != tc.wantMonth || v.HasIssues() != tc.wantIssue {
			t.Fatalf("%s: unexpected range %+v issues=%v", tc.query, rng, v.Issues())
		}
	}
}

func TestPathID(t *testing.T) {
	r := chi.NewRouter()
	r.Get("/items/{id}", func(w http.ResponseWriter, r *http.Request) {
		if id, ok := PathID(w, r, "", "id"); ok {
			w.Write([]byte(strings.Repeat("x", int(id))))
		}
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/items/3", nil))
	if rec.Body.String() != "xxx" {
		t.Fatalf("unexpected body %q", rec.Body.String())
	}

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/items/abc", nil))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestParsePaginationCaps(t *testing.T) {
	v := NewValidator()
	p := ParsePagination(v, httptest.NewRequest(http.MethodGet, "/?limit=500&offset=20", nil), 50, 200)
	if p.Limit != 200 || p.Offset != 20 || v.HasIssues() {
		t.Fatalf("unexpected pagination %+v", p)
	}
	p = ParsePagination(v, httptest.NewRequest(http.MethodGet, "/?limit=-1", nil), 50, 200)
	if p.Limit != 50 || !v.HasIssues() {
		t.Fatalf("expected default limit and an issue, got %+v", p)
	}
}
