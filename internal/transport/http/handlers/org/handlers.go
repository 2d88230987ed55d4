package orghandler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"rrhh/internal/domain/org"
	"rrhh/internal/transport/http/api"
	"rrhh/internal/transport/http/middleware"
	"rrhh/internal/transport/http/shared"
)

// Handler serves both /departments and /positions.
type Handler struct {
	Service *org.Service
}

func NewHandler(service *org.Service) *Handler {
	return &Handler{Service: service}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/departments", func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.Get("/", h.handleListDepartments)
		r.Get("/{id}", h.handleGetDepartment)
		r.With(middleware.RequireAdmin).Post("/", h.handleCreateDepartment)
		r.With(middleware.RequireAdmin).Put("/{id}", h.handleUpdateDepartment)
		r.With(middleware.RequireAdmin).Delete("/{id}", h.handleDeleteDepartment)
	})
	r.Route("/positions", func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.Get("/", h.handleListPositions)
		r.Get("/{id}", h.handleGetPosition)
		r.With(middleware.RequireAdmin).Post("/", h.handleCreatePosition)
		r.With(middleware.RequireAdmin).Put("/{id}", h.handleUpdatePosition)
		r.With(middleware.RequireAdmin).Delete("/{id}", h.handleDeletePosition)
	})
}

func (h *Handler) handleListDepartments(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	list, err := h.Service.ListDepartments(r.Context())
	if err != nil {
		h.fail(w, err, requestID, "failed to list departments")
		return
	}
	api.Success(w, map[string]any{"count": len(list), "departments": list}, requestID)
}

func (h *Handler) handleGetDepartment(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	id, ok := shared.PathID(w, r, requestID, "id")
	if !ok {
		return
	}
	dept, err := h.Service.GetDepartment(r.Context(), id)
	if err != nil {
		h.fail(w, err, requestID, "failed to load department")
		return
	}
	api.Success(w, dept, requestID)
}

func (h *Handler) handleCreateDepartment(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())

	var payload org.DepartmentInput
	if !shared.DecodeJSON(w, r, requestID, &payload) {
		return
	}
	v := shared.NewValidator()
	if payload.Name == nil {
		v.Add("name", "is required")
	}
	v.Struct(payload)
	if v.Reject(w, requestID) {
		return
	}

	dept, err := h.Service.CreateDepartment(r.Context(), user, payload)
	if err != nil {
		h.fail(w, err, requestID, "failed to create department")
		return
	}
	api.Created(w, dept, requestID)
}

func (h *Handler) handleUpdateDepartment(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())
	id, ok := shared.PathID(w, r, requestID, "id")
	if !ok {
		return
	}

	var payload org.DepartmentInput
	if !shared.DecodeJSON(w, r, requestID, &payload) {
		return
	}
	if !shared.ValidateStruct(w, requestID, payload) {
		return
	}

	dept, err := h.Service.UpdateDepartment(r.Context(), user, id, payload)
	if err != nil {
		h.fail(w, err, requestID, "failed to update department")
		return
	}
	api.Success(w, dept, requestID)
}

func (h *Handler) handleDeleteDepartment(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())
	id, ok := shared.PathID(w, r, requestID, "id")
	if !ok {
		return
	}
	if err := h.Service.DeleteDepartment(r.Context(), user, id); err != nil {
		h.fail(w, err, requestID, "failed to delete department")
		return
	}
	api.Success(w, map[string]string{"message": "department deleted"}, requestID)
}

func (h *Handler) handleListPositions(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	list, err := h.Service.ListPositions(r.Context())
	if err != nil {
		h.fail(w, err, requestID, "failed to list positions")
		return
	}
	api.Success(w, map[string]any{"count": len(list), "positions": list}, requestID)
}

func (h *Handler) handleGetPosition(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	id, ok := shared.PathID(w, r, requestID, "id")
	if !ok {
		return
	}
	pos, err := h.Service.GetPosition(r.Context(), id)
	if err != nil {
		h.fail(w, err, requestID, "failed to load position")
		return
	}
	api.Success(w, pos, requestID)
}

func (h *Handler) handleCreatePosition(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())

	var payload org.PositionInput
	if !shared.DecodeJSON(w, r, requestID, &payload) {
		return
	}
	v := shared.NewValidator()
	if payload.Name == nil {
		v.Add("name", "is required")
	}
	v.Struct(payload)
	if v.Reject(w, requestID) {
		return
	}

	pos, err := h.Service.CreatePosition(r.Context(), user, payload)
	if err != nil {
		h.fail(w, err, requestID, "failed to create position")
		return
	}
	api.Created(w, pos, requestID)
}

func (h *Handler) handleUpdatePosition(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())
	id, ok := shared.PathID(w, r, requestID, "id")
	if !ok {
		return
	}

	var payload org.PositionInput
	if !shared.DecodeJSON(w, r, requestID, &payload) {
		return
	}
	if !shared.ValidateStruct(w, requestID, payload) {
		return
	}

	pos, err := h.Service.UpdatePosition(r.Context(), user, id, payload)
	if err != nil {
		h.fail(w, err, requestID, "failed to update position")
		return
	}
	api.Success(w, pos, requestID)
}

func (h *Handler) handleDeletePosition(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())
	id, ok := shared.PathID(w, r, requestID, "id")
	if !ok {
		return
	}
	if err := h.Service.DeletePosition(r.Context(), user, id); err != nil {
		h.fail(w, err, requestID, "failed to delete position")
		return
	}
	api.Success(w, map[string]string{"message": "position deleted"}, requestID)
}

func (h *Handler) fail(w http.ResponseWriter, err error, requestID, message string) {
	switch {
	case errors.Is(err, org.ErrDepartmentNotFound), errors.Is(err, org.ErrPositionNotFound):
		api.Fail(w, http.StatusNotFound, "not_found", err.Error(), requestID)
	case errors.Is(err, org.ErrDuplicateName):
		api.Fail(w, http.StatusBadRequest, "duplicate_name", err.Error(), requestID)
	case errors.Is(err, org.ErrNameRequired):
		shared.FailValidation(w, requestID, []shared.ValidationIssue{{Field: "name", Reason: "is required"}})
	case errors.Is(err, org.ErrHasEmployees):
		api.Fail(w, http.StatusBadRequest, "has_employees", "cannot delete while employees are assigned", requestID)
	default:
		slog.Error(message, "err", err, "requestId", requestID)
		api.Fail(w, http.StatusInternalServerError, "org_failed", message, requestID)
	}
}
