// Package handlertest mounts handlers on a chi router with a fixed caller.
package handlertest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"rrhh/internal/domain/auth"
	"rrhh/internal/transport/http/middleware"
)

var (
	Admin      = auth.UserContext{UserID: 1, EmployeeID: 1, Username: "admin", Role: auth.RoleAdmin}
	Supervisor = auth.UserContext{UserID: 2, EmployeeID: 2, Username: "sup", Role: auth.RoleSupervisor}
	Employee   = auth.UserContext{UserID: 5, EmployeeID: 5, Username: "ana", Role: auth.RoleEmployee}
)

// Router injects user (when non-nil) ahead of the routes register adds.
func Router(user *auth.UserContext, register func(chi.Router)) http.Handler {
	r := chi.NewRouter()
	if user != nil {
		caller := *user
		r.Use(func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
				next.ServeHTTP(w, req.WithContext(middleware.WithUser(req.Context(), caller)))
			})
		})
	}
	register(r)
	return r
}

func Do(h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

// Data decodes the data field of a success envelope into dst.
func Data(t *testing.T, rec *httptest.ResponseRecorder, dst any) {
	t.Helper()
	env := struct {
		Data json.RawMessage `json:"data"`
	}{}
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	if err := json.Unmarshal(env.Data, dst); err != nil {
		t.Fatalf("decode data: %v (%s)", err, env.Data)
	}
}

func ErrorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	env := struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}{}
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	return env.Error.Code
}

func Expect(t *testing.T, rec *httptest.ResponseRecorder, status int) {
	t.Helper()
	if rec.Code != status {
		t.Fatalf("expected %d, got %d: %s", status, rec.Code, rec.Body.String())
	}
}
