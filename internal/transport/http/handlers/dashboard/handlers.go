package dashboardhandler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"rrhh/internal/domain/attendance"
	"rrhh/internal/domain/dashboard"
	"rrhh/internal/domain/employees"
	"rrhh/internal/transport/http/api"
	"rrhh/internal/transport/http/middleware"
	"rrhh/internal/transport/http/shared"
)

type Handler struct {
	Service *dashboard.Service
}

func NewHandler(service *dashboard.Service) *Handler {
	return &Handler{Service: service}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/dashboard", func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.With(middleware.RequireAdmin).Get("/admin", h.handleAdmin)
		r.Get("/employee", h.handleEmployee)
		r.With(middleware.RequireAdmin).Get("/stats/monthly", h.handleMonthly)
		r.With(middleware.RequireAdmin).Get("/stats/attendance-summary", h.handleAttendanceSummary)
	})
}

func (h *Handler) handleAdmin(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	out, err := h.Service.Admin(r.Context())
	if err != nil {
		h.fail(w, err, requestID, "failed to load admin dashboard")
		return
	}
	api.Success(w, out, requestID)
}

func (h *Handler) handleEmployee(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())
	out, err := h.Service.Employee(r.Context(), user)
	if err != nil {
		h.fail(w, err, requestID, "failed to load employee dashboard")
		return
	}
	api.Success(w, out, requestID)
}

func (h *Handler) handleMonthly(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	v := shared.NewValidator()
	year := shared.QueryInt(v, r, "year", 1900, 9999)
	if v.Reject(w, requestID) {
		return
	}

	out, err := h.Service.Monthly(r.Context(), year)
	if err != nil {
		h.fail(w, err, requestID, "failed to load monthly stats")
		return
	}
	api.Success(w, out, requestID)
}

func (h *Handler) handleAttendanceSummary(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	v := shared.NewValidator()
	rng := shared.QueryRange(v, r)
	if v.Reject(w, requestID) {
		return
	}

	rows, err := h.Service.AttendanceSummary(r.Context(), attendance.Range(rng))
	if err != nil {
		h.fail(w, err, requestID, "failed to load attendance summary")
		return
	}
	api.Success(w, map[string]any{"count": len(rows), "summary": rows}, requestID)
}

func (h *Handler) fail(w http.ResponseWriter, err error, requestID, message string) {
	if errors.Is(err, employees.ErrNotFound) {
		api.Fail(w, http.StatusNotFound, "not_found", "employee not found", requestID)
		return
	}
	slog.Error(message, "err", err, "requestId", requestID)
	api.Fail(w, http.StatusInternalServerError, "dashboard_failed", message, requestID)
}
