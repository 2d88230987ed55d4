package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"rrhh/internal/platform/requestctx"
	"rrhh/internal/transport/http/shared"
)

// RequestID tags the request with X-Request-ID (generated when absent) and
// stores it, with the client ip, where audit records can read them.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := r.Header.Get("X-Request-ID")
		if reqID == "" || len(reqID) > 128 {
			reqID = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", reqID)
		ctx := requestctx.WithRequestID(r.Context(), reqID)
		ctx = requestctx.WithClientIP(ctx, shared.ClientIP(r))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func GetRequestID(ctx context.Context) string {
	return requestctx.RequestID(ctx)
}
