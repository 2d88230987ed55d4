package middleware

import (
	"net/http"

	"rrhh/internal/transport/http/api"
)

func carriesBody(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	}
	return false
}

// BodyLimit caps request bodies at maxBytes. A declared Content-Length over
// the cap gets 413 before the handler runs; undeclared bodies are cut off by
// http.MaxBytesReader and fail while decoding.
func BodyLimit(maxBytes int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if maxBytes <= 0 {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !carriesBody(r.Method) || r.Body == nil || r.Body == http.NoBody {
				next.ServeHTTP(w, r)
				return
			}
			if r.ContentLength > maxBytes {
				api.FailWithDetails(w, http.StatusRequestEntityTooLarge, "payload_too_large", "request body too large",
					map[string]int64{"maxBytes": maxBytes, "contentLength": r.ContentLength}, GetRequestID(r.Context()))
				return
			}
			r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			next.ServeHTTP(w, r)
		})
	}
}
