package audithandler

import (
	"context"
	"encoding/csv"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"rrhh/internal/domain/audit"
	"rrhh/internal/transport/http/api"
	"rrhh/internal/transport/http/middleware"
	"rrhh/internal/transport/http/shared"
)

const exportLimit = 10000

// Events is the read side of the audit trail; *audit.Service satisfies it.
type Events interface {
	Count(ctx context.Context, filter audit.Filter) (int, error)
	List(ctx context.Context, filter audit.Filter, limit, offset int) ([]audit.Event, error)
}

type Handler struct {
	Events Events
}

func NewHandler(events Events) *Handler {
	return &Handler{Events: events}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/audit", func(r chi.Router) {
		r.Use(middleware.RequireAuth, middleware.RequireAdmin)
		r.Get("/", h.handleList)
		r.Get("/export", h.handleExport)
	})
}

func filter(v *shared.Validator, r *http.Request) audit.Filter {
	q := r.URL.Query()
	f := audit.Filter{
		Action:     q.Get("action"),
		EntityType: q.Get("entityType"),
		ActorID:    shared.QueryID(v, r, "actorId"),
	}
	if id := shared.QueryID(v, r, "entityId"); id > 0 {
		f.EntityID = strconv.FormatInt(id, 10)
	}
	return f
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	v := shared.NewValidator()
	f := filter(v, r)
	page := shared.ParsePagination(v, r, 100, 500)
	if v.Reject(w, requestID) {
		return
	}

	total, err := h.Events.Count(r.Context(), f)
	if err != nil {
		slog.Warn("audit count failed", "err", err, "requestId", requestID)
	}
	events, err := h.Events.List(r.Context(), f, page.Limit, page.Offset)
	if err != nil {
		slog.Error("audit list failed", "err", err, "requestId", requestID)
		api.Fail(w, http.StatusInternalServerError, "audit_list_failed", "failed to list audit events", requestID)
		return
	}

	api.Page(w, "events", events, len(events), total, page.Limit, page.Offset, requestID)
}

func (h *Handler) handleExport(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	v := shared.NewValidator()
	f := filter(v, r)
	if v.Reject(w, requestID) {
		return
	}

	events, err := h.Events.List(r.Context(), f, exportLimit, 0)
	if err != nil {
		slog.Error("audit export failed", "err", err, "requestId", requestID)
		api.Fail(w, http.StatusInternalServerError, "audit_export_failed", "failed to export audit events", requestID)
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="auditoria.csv"`)
	writer := csv.NewWriter(w)
	if err := writer.Write([]string{"id", "actor_user_id", "action", "entity_type", "entity_id", "request_id", "ip", "created_at"}); err != nil {
		slog.Warn("audit export header failed", "err", err)
	}
	for _, evt := range events {
		row := []string{
			strconv.FormatInt(evt.ID, 10),
			optionalID(evt.ActorID),
			evt.Action,
			evt.EntityType,
			evt.EntityID,
			optional(evt.RequestID),
			optional(evt.IP),
			evt.CreatedAt.UTC().Format(time.RFC3339),
		}
		if err := writer.Write(row); err != nil {
			slog.Warn("audit export row failed", "err", err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		slog.Warn("audit export flush failed", "err", err)
	}
}

func optional(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func optionalID(id *int64) string {
	if id == nil {
		return ""
	}
	return strconv.FormatInt(*id, 10)
}
