package shared

import (
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"rrhh/internal/transport/http/api"
)

// DecodeJSON reads the body into dst and writes the failure response itself.
func DecodeJSON(w http.ResponseWriter, r *http.Request, requestID string, dst any) bool {
	err := json.NewDecoder(r.Body).Decode(dst)
	if err == nil {
		return true
	}
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge):
		api.Fail(w, http.StatusRequestEntityTooLarge, "payload_too_large", "request body too large", requestID)
	case errors.Is(err, io.EOF):
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "request body is required", requestID)
	default:
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestID)
	}
	return false
}

// PathID parses a positive integer route parameter, answering 400 otherwise.
func PathID(w http.ResponseWriter, r *http.Request, requestID, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		FailValidation(w, requestID, []ValidationIssue{{Field: name, Reason: "must be a positive integer"}})
		return 0, false
	}
	return id, true
}

// QueryInt returns 0 when the parameter is absent and records an issue when it is malformed.
func QueryInt(v *Validator, r *http.Request, name string, lo, hi int) int {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return 0
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < lo || (hi > 0 && n > hi) {
		if hi > 0 {
			v.Add(name, "must be an integer between "+strconv.Itoa(lo)+" and "+strconv.Itoa(hi))
		} else {
			v.Add(name, "must be an integer of at least "+strconv.Itoa(lo))
		}
		return 0
	}
	return n
}

func QueryID(v *Validator, r *http.Request, name string) int64 {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return 0
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		v.Add(name, "must be a positive integer")
		return 0
	}
	return id
}

func ClientIP(r *http.Request) string {
	if fwd := strings.TrimSpace(r.Header.Get("X-Forwarded-For")); fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		if value := strings.TrimSpace(first); value != "" {
			return value
		}
	}
	host, _, err := net.SplitHostPort(strings.TrimSpace(r.RemoteAddr))
	if err == nil && host != "" {
		return host
	}
	return strings.TrimSpace(r.RemoteAddr)
}
