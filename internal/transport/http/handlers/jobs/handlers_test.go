package jobshandler

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"

	"rrhh/internal/domain/auth"
	"rrhh/internal/platform/jobs"
	"rrhh/internal/transport/http/handlers/handlertest"
)

type stubRunner struct {
	runs        []jobs.Run
	jobType     string
	triggeredBy *int64
	runErr      error
}

func (s *stubRunner) RunNow(_ context.Context, jobType string, triggeredBy *int64) (jobs.Run, error) {
	s.jobType, s.triggeredBy = jobType, triggeredBy
	if s.runErr != nil {
		return jobs.Run{}, s.runErr
	}
	return jobs.Run{ID: 3, JobType: jobType, Status: jobs.StatusCompleted, TriggeredBy: triggeredBy}, nil
}

func (s *stubRunner) List(_ context.Context, jobType string, _, _ int) ([]jobs.Run, error) {
	s.jobType = jobType
	return s.runs, nil
}

func newRouter(user auth.UserContext, runner *stubRunner) http.Handler {
	h := NewHandler(runner)
	return handlertest.Router(&user, func(r chi.Router) { h.RegisterRoutes(r) })
}

func TestRunVacationSync(t *testing.T) {
	runner := &stubRunner{}
	rec := handlertest.Do(newRouter(handlertest.Admin, runner), http.MethodPost, "/jobs/vacation-sync/run", "")
	handlertest.Expect(t, rec, http.StatusOK)
	if runner.jobType != jobs.JobVacationSync || runner.triggeredBy == nil || *runner.triggeredBy != handlertest.Admin.UserID {
		t.Fatalf("unexpected run: type=%s by=%v", runner.jobType, runner.triggeredBy)
	}
	var run jobs.Run
	handlertest.Data(t, rec, &run)
	if run.Status != jobs.StatusCompleted {
		t.Fatalf("unexpected status %q", run.Status)
	}
}

func TestRunCleanupAndUnknownJob(t *testing.T) {
	runner := &stubRunner{}
	router := newRouter(handlertest.Admin, runner)
	handlertest.Expect(t, handlertest.Do(router, http.MethodPost, "/jobs/idempotency-cleanup/run", ""), http.StatusOK)
	if runner.jobType != jobs.JobIdempotencyCleanup {
		t.Fatalf("unexpected job %q", runner.jobType)
	}
	handlertest.Expect(t, handlertest.Do(router, http.MethodPost, "/jobs/payroll/run", ""), http.StatusNotFound)
}

func TestRunVacationSyncErrors(t *testing.T) {
	rec := handlertest.Do(newRouter(handlertest.Admin, &stubRunner{runErr: jobs.ErrUnknownJob}), http.MethodPost, "/jobs/vacation-sync/run", "")
	handlertest.Expect(t, rec, http.StatusServiceUnavailable)

	rec = handlertest.Do(newRouter(handlertest.Admin, &stubRunner{runErr: errors.New("db down")}), http.MethodPost, "/jobs/vacation-sync/run", "")
	handlertest.Expect(t, rec, http.StatusInternalServerError)
}

func TestJobsAreAdminOnly(t *testing.T) {
	router := newRouter(handlertest.Supervisor, &stubRunner{})
	handlertest.Expect(t, handlertest.Do(router, http.MethodGet, "/jobs/runs", ""), http.StatusForbidden)
	handlertest.Expect(t, handlertest.Do(router, http.MethodPost, "/jobs/vacation-sync/run", ""), http.StatusForbidden)
}

func TestListRuns(t *testing.T) {
	runner := &stubRunner{runs: []jobs.Run{{ID: 1, JobType: jobs.JobVacationSync, Status: jobs.StatusFailed}}}
	rec := handlertest.Do(newRouter(handlertest.Admin, runner), http.MethodGet, "/jobs/runs?jobType=vacation_status_sync", "")
	handlertest.Expect(t, rec, http.StatusOK)
	if runner.jobType != jobs.JobVacationSync {
		t.Fatalf("filter not passed: %q", runner.jobType)
	}
	var out struct {
		Count int        `json:"count"`
		Runs  []jobs.Run `json:"runs"`
	}
	handlertest.Data(t, rec, &out)
	if out.Count != 1 || out.Runs[0].Status != jobs.StatusFailed {
		t.Fatalf("unexpected body: %+v", out)
	}
}
