package payrollhandler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"rrhh/internal/domain/payroll"
	"rrhh/internal/transport/http/api"
	"rrhh/internal/transport/http/middleware"
	"rrhh/internal/transport/http/shared"
)

const (
	calculateEndpoint = "payroll.calculate"

	contentTypePDF  = "application/pdf"
	contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// Idempotency is satisfied by middleware.IdempotencyStore.
type Idempotency interface {
	Check(ctx context.Context, userID int64, endpoint, key, requestHash string) (json.RawMessage, bool, error)
	Save(ctx context.Context, userID int64, endpoint, key, requestHash string, response json.RawMessage) error
}

type Handler struct {
	Service     *payroll.Service
	Idempotency Idempotency
}

func NewHandler(service *payroll.Service, idem Idempotency) *Handler {
	return &Handler{Service: service, Idempotency: idem}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/payroll", func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.With(middleware.RequireAdmin).Post("/calculate", h.handleCalculate)
		r.With(middleware.RequireAdmin).Get("/", h.handleList)
		r.With(middleware.RequireAdmin).Get("/export", h.handleExport)
		r.With(middleware.RequireAdmin).Get("/summary/{year}/{month}", h.handleSummary)
		r.Get("/my-payroll", h.handleMine)
		r.Get("/{id}", h.handleGet)
		r.Get("/{id}/payslip", h.handlePayslip)
		r.With(middleware.RequireAdmin).Put("/{id}/mark-paid", h.handleMarkPaid)
		r.With(middleware.RequireAdmin).Put("/{id}", h.handleUpdate)
		r.With(middleware.RequireAdmin).Delete("/{id}", h.handleDelete)
	})
}

type calculateResponse struct {
	Message string            `json:"message"`
	Count   int               `json:"count"`
	Payroll []payroll.Payroll `json:"payroll"`
	Skipped []payroll.Skipped `json:"skipped"`
}

func (h *Handler) handleCalculate(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())

	body, err := io.ReadAll(r.Body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			api.Fail(w, http.StatusRequestEntityTooLarge, "payload_too_large", "request body too large", requestID)
			return
		}
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestID)
		return
	}
	r.Body = io.NopCloser(bytes.NewReader(body))

	var payload payroll.CalculateInput
	if !shared.DecodeJSON(w, r, requestID, &payload) {
		return
	}
	if !shared.ValidateStruct(w, requestID, payload) {
		return
	}

	idempotencyKey := strings.TrimSpace(r.Header.Get("Idempotency-Key"))
	requestHash := middleware.RequestHash(body)
	if idempotencyKey != "" && h.Idempotency != nil {
		stored, found, err := h.Idempotency.Check(r.Context(), user.UserID, calculateEndpoint, idempotencyKey, requestHash)
		if errors.Is(err, middleware.ErrIdempotencyConflict) {
			api.Fail(w, http.StatusConflict, "idempotency_conflict", "idempotency key was used with a different payload", requestID)
			return
		}
		if err != nil {
			slog.Warn("idempotency check failed", "err", err, "requestId", requestID)
		}
		if found {
			api.Created(w, stored, requestID)
			return
		}
	}

	result, err := h.Service.Calculate(r.Context(), user, payload)
	if err != nil {
		h.fail(w, err, requestID, "failed to calculate payroll")
		return
	}

	response := calculateResponse{
		Message: fmt.Sprintf("payroll calculated for %d employees", len(result.Payroll)),
		Count:   len(result.Payroll),
		Payroll: result.Payroll,
		Skipped: result.Skipped,
	}
	if idempotencyKey != "" && h.Idempotency != nil {
		encoded, err := json.Marshal(response)
		if err != nil {
			slog.Warn("idempotency response marshal failed", "err", err)
		} else if err := h.Idempotency.Save(r.Context(), user.UserID, calculateEndpoint, idempotencyKey, requestHash, encoded); err != nil {
			slog.Warn("idempotency save failed", "err", err, "requestId", requestID)
		}
	}
	api.Created(w, response, requestID)
}

// listFilter reads the employeeId, periodStart, periodEnd and paymentStatus filters.
func listFilter(v *shared.Validator, r *http.Request) payroll.Filter {
	status := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("paymentStatus")))
	v.Enum("paymentStatus", status, payroll.Statuses, "must be one of: pending, paid")
	f := payroll.Filter{
		EmployeeID:    shared.QueryID(v, r, "employeeId"),
		PeriodStart:   shared.QueryDate(v, r, "periodStart"),
		PeriodEnd:     shared.QueryDate(v, r, "periodEnd"),
		PaymentStatus: status,
	}
	if f.PeriodStart != nil && f.PeriodEnd != nil {
		v.DateOrder("periodStart", *f.PeriodStart, "periodEnd", *f.PeriodEnd)
	}
	return f
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	v := shared.NewValidator()
	f := listFilter(v, r)
	if v.Reject(w, requestID) {
		return
	}

	rows, totals, err := h.Service.List(r.Context(), f)
	if err != nil {
		h.fail(w, err, requestID, "failed to list payroll")
		return
	}
	api.Success(w, map[string]any{"count": len(rows), "payroll": rows, "totals": totals}, requestID)
}

func (h *Handler) handleExport(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	v := shared.NewValidator()
	f := listFilter(v, r)
	if v.Reject(w, requestID) {
		return
	}

	var buf bytes.Buffer
	if err := h.Service.Export(r.Context(), f, &buf); err != nil {
		h.fail(w, err, requestID, "failed to export payroll")
		return
	}
	api.Attachment(w, contentTypeXLSX, "nomina.xlsx", buf.Bytes())
}

func (h *Handler) handleMine(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())
	v := shared.NewValidator()
	year := shared.QueryInt(v, r, "year", 1900, 9999)
	month := shared.QueryInt(v, r, "month", 1, 12)
	if v.Reject(w, requestID) {
		return
	}

	rows, err := h.Service.Mine(r.Context(), user, year, month)
	if err != nil {
		h.fail(w, err, requestID, "failed to list payroll")
		return
	}
	api.Success(w, map[string]any{"count": len(rows), "payroll": rows}, requestID)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())
	id, ok := shared.PathID(w, r, requestID, "id")
	if !ok {
		return
	}

	p, err := h.Service.Get(r.Context(), user, id)
	if err != nil {
		h.fail(w, err, requestID, "failed to load payroll")
		return
	}
	api.Success(w, p, requestID)
}

func (h *Handler) handlePayslip(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())
	id, ok := shared.PathID(w, r, requestID, "id")
	if !ok {
		return
	}

	var buf bytes.Buffer
	p, err := h.Service.Payslip(r.Context(), user, id, &buf)
	if err != nil {
		h.fail(w, err, requestID, "failed to render payslip")
		return
	}
	filename := fmt.Sprintf("rol-%s-%s.pdf", p.EmployeeCode, p.PeriodStart.Format("2006-01"))
	api.Attachment(w, contentTypePDF, filename, buf.Bytes())
}

func (h *Handler) handleMarkPaid(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())
	id, ok := shared.PathID(w, r, requestID, "id")
	if !ok {
		return
	}

	var payload payroll.MarkPaidInput
	if !shared.DecodeJSON(w, r, requestID, &payload) {
		return
	}
	if !shared.ValidateStruct(w, requestID, payload) {
		return
	}

	p, err := h.Service.MarkPaid(r.Context(), user, id, payload)
	if err != nil {
		h.fail(w, err, requestID, "failed to mark payroll as paid")
		return
	}
	api.Success(w, map[string]any{"message": "payroll marked as paid", "payroll": p}, requestID)
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())
	id, ok := shared.PathID(w, r, requestID, "id")
	if !ok {
		return
	}

	var payload payroll.UpdateInput
	if !shared.DecodeJSON(w, r, requestID, &payload) {
		return
	}
	if !shared.ValidateStruct(w, requestID, payload) {
		return
	}

	p, err := h.Service.Update(r.Context(), user, id, payload)
	if err != nil {
		h.fail(w, err, requestID, "failed to update payroll")
		return
	}
	api.Success(w, map[string]any{"message": "payroll updated", "payroll": p}, requestID)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())
	id, ok := shared.PathID(w, r, requestID, "id")
	if !ok {
		return
	}

	if _, err := h.Service.Delete(r.Context(), user, id); err != nil {
		h.fail(w, err, requestID, "failed to delete payroll")
		return
	}
	api.Success(w, map[string]string{"message": "payroll deleted"}, requestID)
}

func (h *Handler) handleSummary(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	v := shared.NewValidator()
	year, err := strconv.Atoi(chi.URLParam(r, "year"))
	if err != nil || year < 1900 || year > 9999 {
		v.Add("year", "must be an integer between 1900 and 9999")
	}
	month, err := strconv.Atoi(chi.URLParam(r, "month"))
	if err != nil || month < 1 || month > 12 {
		v.Add("month", "must be an integer between 1 and 12")
	}
	if v.Reject(w, requestID) {
		return
	}

	summary, err := h.Service.Summary(r.Context(), year, month)
	if err != nil {
		h.fail(w, err, requestID, "failed to summarize payroll")
		return
	}
	api.Success(w, summary, requestID)
}

func (h *Handler) fail(w http.ResponseWriter, err error, requestID, message string) {
	switch {
	case errors.Is(err, payroll.ErrNotFound):
		api.Fail(w, http.StatusNotFound, "not_found", err.Error(), requestID)
	case errors.Is(err, payroll.ErrForbidden):
		api.Fail(w, http.StatusForbidden, "forbidden", "insufficient permissions", requestID)
	case errors.Is(err, payroll.ErrInvalidState):
		api.Fail(w, http.StatusBadRequest, "invalid_state", err.Error(), requestID)
	case errors.Is(err, payroll.ErrInvalidPeriod):
		shared.FailValidation(w, requestID, []shared.ValidationIssue{{Field: "periodEnd", Reason: "must be on or after periodStart"}})
	case errors.Is(err, payroll.ErrInvalidDate):
		shared.FailValidation(w, requestID, []shared.ValidationIssue{{Field: "date", Reason: "must be a valid date in YYYY-MM-DD format"}})
	default:
		slog.Error(message, "err", err, "requestId", requestID)
		api.Fail(w, http.StatusInternalServerError, "payroll_failed", message, requestID)
	}
}
