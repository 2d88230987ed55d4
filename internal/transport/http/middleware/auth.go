package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"rrhh/internal/domain/auth"
	"rrhh/internal/transport/http/api"
)

type ctxKey int

const (
	ctxKeyUser ctxKey = iota
	ctxKeyAuthErr
)

// ActiveUsers re-reads the account behind a token so deactivated users and
// role changes take effect before the token expires.
type ActiveUsers interface {
	ActiveUser(ctx context.Context, userID int64) (auth.UserContext, error)
}

// Auth resolves the bearer token when one is sent. It never rejects on its
// own: public routes ignore a bad token and RequireAuth reports the reason.
func Auth(secret string, users ActiveUsers) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := strings.TrimSpace(r.Header.Get("Authorization"))
			if authHeader == "" {
				next.ServeHTTP(w, r)
				return
			}
			scheme, token, ok := strings.Cut(authHeader, " ")
			if !ok || !strings.EqualFold(scheme, "bearer") || strings.TrimSpace(token) == "" {
				next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKeyAuthErr, auth.ErrTokenInvalid)))
				return
			}

			claims, err := auth.ParseToken(secret, strings.TrimSpace(token))
			if err != nil {
				next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKeyAuthErr, err)))
				return
			}

			user := auth.UserContext{
				UserID:     claims.UserID,
				EmployeeID: claims.EmployeeID,
				Username:   claims.Username,
				Role:       claims.Role,
			}
			if users != nil {
				user, err = users.ActiveUser(r.Context(), claims.UserID)
				if err != nil {
					if !errors.Is(err, auth.ErrUserInactive) {
						slog.Error("active user lookup failed", "userId", claims.UserID, "err", err)
					}
					next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKeyAuthErr, err)))
					return
				}
			}
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKeyUser, user)))
		})
	}
}

func GetUser(ctx context.Context) (auth.UserContext, bool) {
	user, ok := ctx.Value(ctxKeyUser).(auth.UserContext)
	return user, ok
}

// WithUser is used by tests and internal callers that authenticate out of band.
func WithUser(ctx context.Context, user auth.UserContext) context.Context {
	return context.WithValue(ctx, ctxKeyUser, user)
}

func failUnauthenticated(w http.ResponseWriter, r *http.Request) {
	requestID := GetRequestID(r.Context())
	err, _ := r.Context().Value(ctxKeyAuthErr).(error)
	switch {
	case err == nil:
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", requestID)
	case errors.Is(err, auth.ErrTokenExpired):
		api.Fail(w, http.StatusUnauthorized, "token_expired", "token expired", requestID)
	case errors.Is(err, auth.ErrTokenInvalid):
		api.Fail(w, http.StatusUnauthorized, "invalid_token", "invalid token", requestID)
	case errors.Is(err, auth.ErrUserInactive):
		api.Fail(w, http.StatusUnauthorized, "user_inactive", "user not found or inactive", requestID)
	default:
		api.Fail(w, http.StatusInternalServerError, "auth_error", "authentication check failed", requestID)
	}
}
