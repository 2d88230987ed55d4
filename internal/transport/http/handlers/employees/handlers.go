package employeeshandler

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"rrhh/internal/domain/employees"
	"rrhh/internal/transport/http/api"
	"rrhh/internal/transport/http/middleware"
	"rrhh/internal/transport/http/shared"
)

const (
	defaultPageSize = 100
	maxPageSize     = 500
)

type Handler struct {
	Service *employees.Service
}

func NewHandler(service *employees.Service) *Handler {
	return &Handler{Service: service}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/employees", func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.Get("/", h.handleList)
		r.With(middleware.RequireAdmin).Post("/", h.handleCreate)
		r.Get("/{id}", h.handleGet)
		r.With(middleware.RequireAdmin).Put("/{id}", h.handleUpdate)
		r.With(middleware.RequireAdmin).Delete("/{id}", h.handleDelete)
		r.Get("/{id}/vacation-balance", h.handleVacationBalance)
	})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())

	v := shared.NewValidator()
	status := strings.TrimSpace(r.URL.Query().Get("status"))
	v.Enum("status", status, employees.Statuses, "must be one of: active, inactive, vacation")
	filter := employees.Filter{
		Status:       strings.ToLower(status),
		DepartmentID: shared.QueryID(v, r, "department"),
		PositionID:   shared.QueryID(v, r, "position"),
		Search:       r.URL.Query().Get("search"),
	}
	page := shared.ParsePagination(v, r, defaultPageSize, maxPageSize)
	if v.Reject(w, requestID) {
		return
	}
	filter.Limit, filter.Offset = page.Limit, page.Offset

	list, total, err := h.Service.List(r.Context(), user, filter)
	if err != nil {
		slog.Error("list employees failed", "err", err, "requestId", requestID)
		api.Fail(w, http.StatusInternalServerError, "employees_list_failed", "failed to list employees", requestID)
		return
	}
	api.Success(w, map[string]any{
		"count":     len(list),
		"total":     total,
		"limit":     page.Limit,
		"offset":    page.Offset,
		"employees": list,
	}, requestID)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())
	id, ok := shared.PathID(w, r, requestID, "id")
	if !ok {
		return
	}

	emp, err := h.Service.Get(r.Context(), user, id)
	if err != nil {
		h.fail(w, err, requestID, "failed to load employee")
		return
	}
	api.Success(w, emp, requestID)
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())

	var payload employees.CreateInput
	if !shared.DecodeJSON(w, r, requestID, &payload) {
		return
	}
	payload.FirstName = strings.TrimSpace(payload.FirstName)
	payload.LastName = strings.TrimSpace(payload.LastName)
	payload.IDNumber = strings.TrimSpace(payload.IDNumber)
	if !shared.ValidateStruct(w, requestID, payload) {
		return
	}

	emp, err := h.Service.Create(r.Context(), user, payload)
	if err != nil {
		h.fail(w, err, requestID, "failed to create employee")
		return
	}
	api.Created(w, emp, requestID)
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())
	id, ok := shared.PathID(w, r, requestID, "id")
	if !ok {
		return
	}

	var payload employees.UpdateInput
	if !shared.DecodeJSON(w, r, requestID, &payload) {
		return
	}
	if !shared.ValidateStruct(w, requestID, payload) {
		return
	}

	emp, err := h.Service.Update(r.Context(), user, id, payload)
	if err != nil {
		h.fail(w, err, requestID, "failed to update employee")
		return
	}
	api.Success(w, emp, requestID)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())
	id, ok := shared.PathID(w, r, requestID, "id")
	if !ok {
		return
	}

	emp, err := h.Service.Deactivate(r.Context(), user, id)
	if err != nil {
		h.fail(w, err, requestID, "failed to deactivate employee")
		return
	}
	api.Success(w, map[string]any{"message": "employee deactivated", "employee": emp}, requestID)
}

func (h *Handler) handleVacationBalance(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())
	id, ok := shared.PathID(w, r, requestID, "id")
	if !ok {
		return
	}
	if !user.CanReview() && user.EmployeeID != id {
		api.Fail(w, http.StatusForbidden, "forbidden", "insufficient permissions", requestID)
		return
	}

	balance, err := h.Service.VacationBalance(r.Context(), id)
	if err != nil {
		h.fail(w, err, requestID, "failed to load vacation balance")
		return
	}
	api.Success(w, balance, requestID)
}

func (h *Handler) fail(w http.ResponseWriter, err error, requestID, message string) {
	switch {
	case errors.Is(err, employees.ErrNotFound):
		api.Fail(w, http.StatusNotFound, "not_found", "employee not found", requestID)
	case errors.Is(err, employees.ErrDuplicateIDNumber):
		api.Fail(w, http.StatusBadRequest, "duplicate_id_number", err.Error(), requestID)
	case errors.Is(err, employees.ErrInvalidReference):
		api.Fail(w, http.StatusBadRequest, "invalid_reference", err.Error(), requestID)
	default:
		slog.Error(message, "err", err, "requestId", requestID)
		api.Fail(w, http.StatusInternalServerError, "employees_failed", message, requestID)
	}
}
