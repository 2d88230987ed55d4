package jobs

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jackc/pgx/v5"

	"rrhh/internal/platform/querier"
)

const (
	StatusRunning   = "running"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

type Run struct {
	ID          int64           `json:"id"`
	JobType     string          `json:"jobType"`
	Status      string          `json:"status"`
	TriggeredBy *int64          `json:"triggeredBy"`
	Details     json.RawMessage `json:"details"`
	Error       *string         `json:"error"`
	StartedAt   time.Time       `json:"startedAt"`
	CompletedAt *time.Time      `json:"completedAt"`
}

type RunStore interface {
	Start(ctx context.Context, jobType string, triggeredBy *int64) (Run, error)
	Finish(ctx context.Context, id int64, status string, details []byte, errText string) (Run, error)
	List(ctx context.Context, jobType string, limit, offset int) ([]Run, error)
}

type Store struct {
	DB querier.Querier
}

func NewStore(db querier.Querier) *Store {
	return &Store{DB: db}
}

const runColumns = `id, job_type, status, triggered_by, details_json, error, started_at, completed_at`

func scanRun(row pgx.Row) (Run, error) {
	var r Run
	var details []byte
	err := row.Scan(&r.ID, &r.JobType, &r.Status, &r.TriggeredBy, &details, &r.Error, &r.StartedAt, &r.CompletedAt)
	if len(details) > 0 {
		r.Details = details
	}
	return r, err
}

func (s *Store) Start(ctx context.Context, jobType string, triggeredBy *int64) (Run, error) {
	return scanRun(s.DB.QueryRow(ctx, `
    INSERT INTO job_runs (job_type, status, triggered_by)
    VALUES ($1, 'running', $2)
    RETURNING `+runColumns, jobType, triggeredBy))
}

func (s *Store) Finish(ctx context.Context, id int64, status string, details []byte, errText string) (Run, error) {
	var errValue *string
	if errText != "" {
		errValue = &errText
	}
	return scanRun(s.DB.QueryRow(ctx, `
    UPDATE job_runs
    SET status = $1, details_json = $2, error = $3, completed_at = now()
    WHERE id = $4
    RETURNING `+runColumns, status, details, errValue, id))
}

func (s *Store) List(ctx context.Context, jobType string, limit, offset int) ([]Run, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT `+runColumns+`
    FROM job_runs
    WHERE ($1 = '' OR job_type = $1)
    ORDER BY started_at DESC, id DESC
    LIMIT $2 OFFSET $3
  `, jobType, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Run{}
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
