package requestshandler

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"rrhh/internal/domain/requests"
	"rrhh/internal/transport/http/api"
	"rrhh/internal/transport/http/middleware"
	"rrhh/internal/transport/http/shared"
)

type Handler struct {
	Service *requests.Service
}

func NewHandler(service *requests.Service) *Handler {
	return &Handler{Service: service}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/requests", func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.Post("/", h.handleCreate)
		r.Get("/my-requests", h.handleMine)
		r.With(middleware.RequireReviewer).Get("/", h.handleList)
		r.With(middleware.RequireReviewer).Get("/pending/count", h.handlePendingCount)
		r.Get("/{id}", h.handleGet)
		r.With(middleware.RequireReviewer).Put("/{id}/approve", h.handleApprove)
		r.With(middleware.RequireReviewer).Put("/{id}/reject", h.handleReject)
		r.Delete("/{id}", h.handleCancel)
	})
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())

	var payload requests.CreateInput
	if !shared.DecodeJSON(w, r, requestID, &payload) {
		return
	}
	payload.RequestType = strings.ToLower(strings.TrimSpace(payload.RequestType))
	payload.Reason = strings.TrimSpace(payload.Reason)
	if !shared.ValidateStruct(w, requestID, payload) {
		return
	}

	created, err := h.Service.Create(r.Context(), user, payload)
	if err != nil {
		h.fail(w, err, requestID, "failed to create request")
		return
	}
	api.Created(w, map[string]any{"message": "request created", "request": created}, requestID)
}

// filter reads the optional status and requestType query parameters.
func filter(v *shared.Validator, r *http.Request) requests.Filter {
	q := r.URL.Query()
	status := strings.ToLower(strings.TrimSpace(q.Get("status")))
	requestType := strings.ToLower(strings.TrimSpace(q.Get("requestType")))
	v.Enum("status", status, requests.Statuses, "must be one of: "+strings.Join(requests.Statuses, ", "))
	v.Enum("requestType", requestType, requests.Types, "must be one of: "+strings.Join(requests.Types, ", "))
	return requests.Filter{Status: status, RequestType: requestType}
}

func (h *Handler) handleMine(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())

	v := shared.NewValidator()
	f := filter(v, r)
	if v.Reject(w, requestID) {
		return
	}
	list, err := h.Service.Mine(r.Context(), user, f)
	if err != nil {
		h.fail(w, err, requestID, "failed to list requests")
		return
	}
	api.Success(w, map[string]any{"count": len(list), "requests": list}, requestID)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	v := shared.NewValidator()
	f := filter(v, r)
	f.EmployeeID = shared.QueryID(v, r, "employeeId")
	if v.Reject(w, requestID) {
		return
	}
	list, err := h.Service.List(r.Context(), f)
	if err != nil {
		h.fail(w, err, requestID, "failed to list requests")
		return
	}
	api.Success(w, map[string]any{"count": len(list), "requests": list}, requestID)
}

func (h *Handler) handlePendingCount(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	count, err := h.Service.PendingCount(r.Context())
	if err != nil {
		h.fail(w, err, requestID, "failed to count pending requests")
		return
	}
	api.Success(w, map[string]int{"count": count}, requestID)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())
	id, ok := shared.PathID(w, r, requestID, "id")
	if !ok {
		return
	}
	req, err := h.Service.Get(r.Context(), user, id)
	if err != nil {
		h.fail(w, err, requestID, "failed to load request")
		return
	}
	api.Success(w, req, requestID)
}

func (h *Handler) handleApprove(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())
	id, ok := shared.PathID(w, r, requestID, "id")
	if !ok {
		return
	}
	payload, ok := decodeReview(w, r, requestID)
	if !ok {
		return
	}

	req, err := h.Service.Approve(r.Context(), user, id, payload.ReviewNotes)
	if err != nil {
		h.fail(w, err, requestID, "failed to approve request")
		return
	}
	api.Success(w, map[string]any{"message": "request approved", "request": req}, requestID)
}

func (h *Handler) handleReject(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())
	id, ok := shared.PathID(w, r, requestID, "id")
	if !ok {
		return
	}
	payload, ok := decodeReview(w, r, requestID)
	if !ok {
		return
	}

	req, err := h.Service.Reject(r.Context(), user, id, payload.ReviewNotes)
	if err != nil {
		h.fail(w, err, requestID, "failed to reject request")
		return
	}
	api.Success(w, map[string]any{"message": "request rejected", "request": req}, requestID)
}

// decodeReview accepts an empty body since review notes are optional on approval.
func decodeReview(w http.ResponseWriter, r *http.Request, requestID string) (requests.ReviewInput, bool) {
	var payload requests.ReviewInput
	if r.ContentLength == 0 {
		return payload, true
	}
	return payload, shared.DecodeJSON(w, r, requestID, &payload)
}

func (h *Handler) handleCancel(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())
	id, ok := shared.PathID(w, r, requestID, "id")
	if !ok {
		return
	}
	req, err := h.Service.Cancel(r.Context(), user, id)
	if err != nil {
		h.fail(w, err, requestID, "failed to cancel request")
		return
	}
	api.Success(w, map[string]any{"message": "request cancelled", "request": req}, requestID)
}

func (h *Handler) fail(w http.ResponseWriter, err error, requestID, message string) {
	switch {
	case errors.Is(err, requests.ErrNotFound), errors.Is(err, requests.ErrEmployeeNotFound):
		api.Fail(w, http.StatusNotFound, "not_found", err.Error(), requestID)
	case errors.Is(err, requests.ErrForbidden):
		api.Fail(w, http.StatusForbidden, "forbidden", "insufficient permissions", requestID)
	case errors.Is(err, requests.ErrInvalidState):
		api.Fail(w, http.StatusBadRequest, "invalid_state", "only pending requests can be changed", requestID)
	case errors.Is(err, requests.ErrInsufficientVacation):
		api.Fail(w, http.StatusBadRequest, "insufficient_vacation", err.Error(), requestID)
	case errors.Is(err, requests.ErrOverlap):
		api.Fail(w, http.StatusBadRequest, "overlapping_request", err.Error(), requestID)
	case errors.Is(err, requests.ErrCertificateRequired):
		shared.FailValidation(w, requestID, []shared.ValidationIssue{{Field: "medicalCertificateUrl", Reason: "is required for sick leave"}})
	case errors.Is(err, requests.ErrReviewNotesRequired):
		shared.FailValidation(w, requestID, []shared.ValidationIssue{{Field: "reviewNotes", Reason: "is required"}})
	case errors.Is(err, requests.ErrReasonRequired):
		shared.FailValidation(w, requestID, []shared.ValidationIssue{{Field: "reason", Reason: "is required"}})
	case errors.Is(err, requests.ErrEndBeforeStart):
		shared.FailValidation(w, requestID, []shared.ValidationIssue{{Field: "endDate", Reason: "must be on or after startDate"}})
	case errors.Is(err, requests.ErrInvalidDate):
		shared.FailValidation(w, requestID, []shared.ValidationIssue{{Field: "startDate", Reason: "must be a valid date in YYYY-MM-DD format"}})
	default:
		slog.Error(message, "err", err, "requestId", requestID)
		api.Fail(w, http.StatusInternalServerError, "requests_failed", message, requestID)
	}
}
