package saleshandler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"rrhh/internal/domain/sales"
	"rrhh/internal/transport/http/api"
	"rrhh/internal/transport/http/middleware"
	"rrhh/internal/transport/http/shared"
)

type Handler struct {
	Service *sales.Service
}

func NewHandler(service *sales.Service) *Handler {
	return &Handler{Service: service}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/sales", func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.Post("/", h.handleCreate)
		r.With(middleware.RequireReviewer).Get("/", h.handleList)
		r.Get("/my-sales", h.handleMine)
		r.With(middleware.RequireReviewer).Get("/summary", h.handleSummary)
		r.Get("/{id}", h.handleGet)
		r.With(middleware.RequireAdmin).Put("/{id}", h.handleUpdate)
		r.With(middleware.RequireAdmin).Delete("/{id}", h.handleDelete)
	})
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())

	var payload sales.CreateInput
	if !shared.DecodeJSON(w, r, requestID, &payload) {
		return
	}
	v := shared.NewValidator()
	v.Struct(payload)
	if payload.TotalAmount <= 0 {
		v.Add("totalAmount", "must be greater than 0")
	}
	if v.Reject(w, requestID) {
		return
	}

	sale, err := h.Service.Create(r.Context(), user, payload)
	if err != nil {
		h.fail(w, err, requestID, "failed to record sale")
		return
	}
	api.Created(w, map[string]any{"message": "sale recorded", "sale": sale}, requestID)
}

// filter reads startDate/endDate; either bound may be given alone.
func filter(v *shared.Validator, r *http.Request) sales.Filter {
	f := sales.Filter{
		From: shared.QueryDate(v, r, "startDate"),
		To:   shared.QueryDate(v, r, "endDate"),
	}
	if f.From != nil && f.To != nil {
		v.DateOrder("startDate", *f.From, "endDate", *f.To)
	}
	return f
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	v := shared.NewValidator()
	f := filter(v, r)
	f.EmployeeID = shared.QueryID(v, r, "employeeId")
	if v.Reject(w, requestID) {
		return
	}

	list, totals, err := h.Service.List(r.Context(), f)
	if err != nil {
		h.fail(w, err, requestID, "failed to list sales")
		return
	}
	api.Success(w, map[string]any{"count": len(list), "sales": list, "totals": totals}, requestID)
}

func (h *Handler) handleMine(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())
	v := shared.NewValidator()
	f := filter(v, r)
	if v.Reject(w, requestID) {
		return
	}

	list, totals, err := h.Service.Mine(r.Context(), user, f)
	if err != nil {
		h.fail(w, err, requestID, "failed to list sales")
		return
	}
	api.Success(w, map[string]any{"count": len(list), "sales": list, "totals": totals}, requestID)
}

func (h *Handler) handleSummary(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	v := shared.NewValidator()
	month := shared.QueryInt(v, r, "month", 1, 12)
	year := shared.QueryInt(v, r, "year", 1900, 9999)
	if v.Reject(w, requestID) {
		return
	}

	rows, month, year, err := h.Service.Summary(r.Context(), month, year)
	if err != nil {
		h.fail(w, err, requestID, "failed to summarize sales")
		return
	}
	api.Success(w, map[string]any{"month": month, "year": year, "summary": rows}, requestID)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())
	id, ok := shared.PathID(w, r, requestID, "id")
	if !ok {
		return
	}
	sale, err := h.Service.Get(r.Context(), user, id)
	if err != nil {
		h.fail(w, err, requestID, "failed to load sale")
		return
	}
	api.Success(w, sale, requestID)
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())
	id, ok := shared.PathID(w, r, requestID, "id")
	if !ok {
		return
	}

	var payload sales.UpdateInput
	if !shared.DecodeJSON(w, r, requestID, &payload) {
		return
	}
	if !shared.ValidateStruct(w, requestID, payload) {
		return
	}

	sale, err := h.Service.Update(r.Context(), user, id, payload)
	if err != nil {
		h.fail(w, err, requestID, "failed to update sale")
		return
	}
	api.Success(w, sale, requestID)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())
	id, ok := shared.PathID(w, r, requestID, "id")
	if !ok {
		return
	}
	if err := h.Service.Delete(r.Context(), user, id); err != nil {
		h.fail(w, err, requestID, "failed to delete sale")
		return
	}
	api.Success(w, map[string]string{"message": "sale deleted"}, requestID)
}

func (h *Handler) fail(w http.ResponseWriter, err error, requestID, message string) {
	switch {
	case errors.Is(err, sales.ErrNotFound), errors.Is(err, sales.ErrEmployeeNotFound):
		api.Fail(w, http.StatusNotFound, "not_found", err.Error(), requestID)
	case errors.Is(err, sales.ErrForbidden):
		api.Fail(w, http.StatusForbidden, "forbidden", "insufficient permissions", requestID)
	case errors.Is(err, sales.ErrInvalidDate):
		shared.FailValidation(w, requestID, []shared.ValidationIssue{{Field: "saleDate", Reason: "must be a valid date in YYYY-MM-DD format"}})
	default:
		slog.Error(message, "err", err, "requestId", requestID)
		api.Fail(w, http.StatusInternalServerError, "sales_failed", message, requestID)
	}
}
