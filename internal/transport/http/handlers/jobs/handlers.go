package jobshandler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"rrhh/internal/platform/jobs"
	"rrhh/internal/transport/http/api"
	"rrhh/internal/transport/http/middleware"
	"rrhh/internal/transport/http/shared"
)

// Runner is the part of *jobs.Service the admin endpoints use.
type Runner interface {
	RunNow(ctx context.Context, jobType string, triggeredBy *int64) (jobs.Run, error)
	List(ctx context.Context, jobType string, limit, offset int) ([]jobs.Run, error)
}

// runnable maps the route slug to the job it triggers.
var runnable = map[string]string{
	"vacation-sync":       jobs.JobVacationSync,
	"idempotency-cleanup": jobs.JobIdempotencyCleanup,
}

type Handler struct {
	Jobs Runner
}

func NewHandler(runner Runner) *Handler {
	return &Handler{Jobs: runner}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/jobs", func(r chi.Router) {
		r.Use(middleware.RequireAuth, middleware.RequireAdmin)
		r.Get("/runs", h.handleRuns)
		r.Post("/{job}/run", h.handleRun)
	})
}

func (h *Handler) handleRuns(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	v := shared.NewValidator()
	page := shared.ParsePagination(v, r, 50, 200)
	if v.Reject(w, requestID) {
		return
	}
	runs, err := h.Jobs.List(r.Context(), r.URL.Query().Get("jobType"), page.Limit, page.Offset)
	if err != nil {
		slog.Error("job runs list failed", "err", err, "requestId", requestID)
		api.Fail(w, http.StatusInternalServerError, "jobs_failed", "failed to list job runs", requestID)
		return
	}
	api.Success(w, map[string]any{"count": len(runs), "runs": runs}, requestID)
}

func (h *Handler) handleRun(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())
	jobType, ok := runnable[chi.URLParam(r, "job")]
	if !ok {
		api.Fail(w, http.StatusNotFound, "not_found", "unknown job", requestID)
		return
	}
	actor := user.UserID
	run, err := h.Jobs.RunNow(r.Context(), jobType, &actor)
	if err != nil {
		if errors.Is(err, jobs.ErrUnknownJob) {
			api.Fail(w, http.StatusServiceUnavailable, "job_unavailable", "job is not configured", requestID)
			return
		}
		slog.Error("job run failed", "jobType", jobType, "err", err, "requestId", requestID)
		api.Fail(w, http.StatusInternalServerError, "job_failed", "job run failed", requestID)
		return
	}
	api.Success(w, run, requestID)
}
