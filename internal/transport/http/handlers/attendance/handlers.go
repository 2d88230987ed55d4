package attendancehandler

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"rrhh/internal/domain/attendance"
	"rrhh/internal/transport/http/api"
	"rrhh/internal/transport/http/middleware"
	"rrhh/internal/transport/http/shared"
)

type Handler struct {
	Service *attendance.Service
}

func NewHandler(service *attendance.Service) *Handler {
	return &Handler{Service: service}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/attendance", func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.Post("/check-in", h.handleCheckIn)
		r.Post("/check-out", h.handleCheckOut)
		r.Get("/my-attendance", h.handleMine)
		r.Get("/today", h.handleToday)
		r.With(middleware.RequireAdmin).Get("/employee/{employeeId}", h.handleForEmployee)
		r.With(middleware.RequireAdmin).Get("/report", h.handleReport)
		r.With(middleware.RequireAdmin).Post("/manual", h.handleManual)
	})
}

func (h *Handler) handleCheckIn(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())

	record, err := h.Service.CheckIn(r.Context(), user)
	if err != nil {
		h.fail(w, err, requestID, "failed to register check-in")
		return
	}
	message := "check-in registered"
	if record.IsLate {
		message = "check-in registered late"
	}
	api.Created(w, map[string]any{"message": message, "attendance": record}, requestID)
}

func (h *Handler) handleCheckOut(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())

	record, err := h.Service.CheckOut(r.Context(), user)
	if err != nil {
		h.fail(w, err, requestID, "failed to register check-out")
		return
	}
	api.Success(w, map[string]any{"message": "check-out registered", "attendance": record}, requestID)
}

func (h *Handler) handleMine(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())

	v := shared.NewValidator()
	rng := shared.QueryRange(v, r)
	if v.Reject(w, requestID) {
		return
	}

	records, stats, err := h.Service.Mine(r.Context(), user, attendance.Range(rng))
	if err != nil {
		h.fail(w, err, requestID, "failed to load attendance")
		return
	}
	api.Success(w, map[string]any{"attendance": records, "stats": stats}, requestID)
}

func (h *Handler) handleToday(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())

	today, err := h.Service.Today(r.Context(), user)
	if err != nil {
		h.fail(w, err, requestID, "failed to load today's attendance")
		return
	}
	api.Success(w, today, requestID)
}

func (h *Handler) handleForEmployee(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	employeeID, ok := shared.PathID(w, r, requestID, "employeeId")
	if !ok {
		return
	}
	v := shared.NewValidator()
	rng := shared.QueryRange(v, r)
	if v.Reject(w, requestID) {
		return
	}

	records, err := h.Service.ForEmployee(r.Context(), employeeID, attendance.Range(rng))
	if err != nil {
		h.fail(w, err, requestID, "failed to load attendance")
		return
	}
	api.Success(w, map[string]any{"count": len(records), "attendance": records}, requestID)
}

func (h *Handler) handleReport(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	v := shared.NewValidator()
	rng := shared.QueryRange(v, r)
	if v.Reject(w, requestID) {
		return
	}

	rows, err := h.Service.Report(r.Context(), attendance.Range(rng))
	if err != nil {
		h.fail(w, err, requestID, "failed to build attendance report")
		return
	}
	api.Success(w, map[string]any{"count": len(rows), "report": rows}, requestID)
}

func (h *Handler) handleManual(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())

	var payload attendance.ManualInput
	if !shared.DecodeJSON(w, r, requestID, &payload) {
		return
	}
	payload.Status = strings.ToLower(strings.TrimSpace(payload.Status))
	v := shared.NewValidator()
	v.Struct(payload)
	checkClock(v, "checkIn", payload.CheckIn)
	checkClock(v, "checkOut", payload.CheckOut)
	if v.Reject(w, requestID) {
		return
	}

	record, err := h.Service.Manual(r.Context(), user, payload)
	if err != nil {
		h.fail(w, err, requestID, "failed to save attendance")
		return
	}
	api.Created(w, map[string]any{"message": "attendance saved", "attendance": record}, requestID)
}

func checkClock(v *shared.Validator, field string, value *string) {
	if value == nil || strings.TrimSpace(*value) == "" {
		return
	}
	if _, err := attendance.ClockMinutes(*value); err != nil {
		v.Add(field, "must be a valid time in HH:MM format")
	}
}

func (h *Handler) fail(w http.ResponseWriter, err error, requestID, message string) {
	switch {
	case errors.Is(err, attendance.ErrAlreadyCheckedIn):
		api.Fail(w, http.StatusBadRequest, "already_checked_in", err.Error(), requestID)
	case errors.Is(err, attendance.ErrAlreadyCheckedOut):
		api.Fail(w, http.StatusBadRequest, "already_checked_out", err.Error(), requestID)
	case errors.Is(err, attendance.ErrNotCheckedIn):
		api.Fail(w, http.StatusBadRequest, "not_checked_in", err.Error(), requestID)
	case errors.Is(err, attendance.ErrCheckOutBeforeIn):
		shared.FailValidation(w, requestID, []shared.ValidationIssue{{Field: "checkOut", Reason: "must be after checkIn"}})
	case errors.Is(err, attendance.ErrInvalidClock):
		shared.FailValidation(w, requestID, []shared.ValidationIssue{{Field: "time", Reason: "must be a valid time in HH:MM format"}})
	case errors.Is(err, attendance.ErrInvalidDate):
		shared.FailValidation(w, requestID, []shared.ValidationIssue{{Field: "date", Reason: "must be a valid date in YYYY-MM-DD format"}})
	case errors.Is(err, attendance.ErrEmployeeNotFound):
		api.Fail(w, http.StatusNotFound, "not_found", err.Error(), requestID)
	default:
		slog.Error(message, "err", err, "requestId", requestID)
		api.Fail(w, http.StatusInternalServerError, "attendance_failed", message, requestID)
	}
}
