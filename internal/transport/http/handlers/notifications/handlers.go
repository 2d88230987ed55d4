package notificationshandler

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"rrhh/internal/domain/notifications"
	"rrhh/internal/transport/http/api"
	"rrhh/internal/transport/http/middleware"
	"rrhh/internal/transport/http/shared"
)

type Handler struct {
	Service *notifications.Service
}

func NewHandler(service *notifications.Service) *Handler {
	return &Handler{Service: service}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/notifications", func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.Get("/", h.handleList)
		r.Put("/read-all", h.handleReadAll)
		r.Put("/{id}/read", h.handleRead)
	})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())
	v := shared.NewValidator()
	unreadOnly := false
	if raw := r.URL.Query().Get("unreadOnly"); raw != "" {
		parsed, err := strconv.ParseBool(raw)
		if err != nil {
			v.Add("unreadOnly", "must be true or false")
		}
		unreadOnly = parsed
	}
	page := shared.ParsePagination(v, r, 50, 200)
	if v.Reject(w, requestID) {
		return
	}

	total, err := h.Service.Count(r.Context(), user, unreadOnly)
	if err != nil {
		slog.Warn("notification count failed", "err", err, "requestId", requestID)
	}
	list, err := h.Service.List(r.Context(), user, unreadOnly, page.Limit, page.Offset)
	if err != nil {
		slog.Error("notification list failed", "err", err, "requestId", requestID)
		api.Fail(w, http.StatusInternalServerError, "notifications_failed", "failed to list notifications", requestID)
		return
	}
	api.Page(w, "notifications", list, len(list), total, page.Limit, page.Offset, requestID)
}

func (h *Handler) handleRead(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())
	id, ok := shared.PathID(w, r, requestID, "id")
	if !ok {
		return
	}
	n, err := h.Service.MarkRead(r.Context(), user, id)
	if err != nil {
		if errors.Is(err, notifications.ErrNotFound) {
			api.Fail(w, http.StatusNotFound, "not_found", "notification not found", requestID)
			return
		}
		slog.Error("notification mark read failed", "err", err, "requestId", requestID)
		api.Fail(w, http.StatusInternalServerError, "notifications_failed", "failed to update notification", requestID)
		return
	}
	api.Success(w, n, requestID)
}

func (h *Handler) handleReadAll(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())
	updated, err := h.Service.MarkAllRead(r.Context(), user)
	if err != nil {
		slog.Error("notification mark all read failed", "err", err, "requestId", requestID)
		api.Fail(w, http.StatusInternalServerError, "notifications_failed", "failed to update notifications", requestID)
		return
	}
	api.Success(w, map[string]int64{"updated": updated}, requestID)
}
