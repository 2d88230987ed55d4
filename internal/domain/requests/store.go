package requests

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"rrhh/internal/platform/querier"
)

type Store struct {
	DB querier.Querier
}

func NewStore(db querier.Querier) *Store {
	return &Store{DB: db}
}

type StoreAPI interface {
	// InTx runs fn against a store bound to one transaction.
	InTx(ctx context.Context, fn func(StoreAPI) error) error

	VacationDaysAvailable(ctx context.Context, employeeID int64) (int, error)
	HasOverlap(ctx context.Context, employeeID int64, start, end time.Time) (bool, error)
	Create(ctx context.Context, in NewRequest) (Request, error)
	List(ctx context.Context, filter Filter) ([]Request, error)
	Get(ctx context.Context, id int64) (Request, error)
	Lock(ctx context.Context, id int64) (Snapshot, error)
	AddVacationDaysUsed(ctx context.Context, employeeID int64, days int) error
	SetEmployeeStatus(ctx context.Context, employeeID int64, status string) error
	Review(ctx context.Context, id int64, status string, reviewerID int64, notes *string) (Request, error)
	Cancel(ctx context.Context, id int64) (Request, error)
	PendingCount(ctx context.Context) (int, error)
}

func (s *Store) InTx(ctx context.Context, fn func(StoreAPI) error) error {
	return querier.InTx(ctx, s.DB, "requests", func(tx pgx.Tx) error {
		return fn(&Store{DB: tx})
	})
}

const requestColumns = `r.id, r.employee_id, r.request_type, r.start_date, r.end_date, r.days_requested, r.reason,
       r.medical_certificate_url, r.status, r.reviewed_by, r.reviewed_at, r.review_notes, r.created_at`

func scanRequest(row pgx.Row, extra ...any) (Request, error) {
	var r Request
	targets := []any{&r.ID, &r.EmployeeID, &r.RequestType, &r.StartDate, &r.EndDate, &r.DaysRequested, &r.Reason,
		&r.MedicalCertificateURL, &r.Status, &r.ReviewedBy, &r.ReviewedAt, &r.ReviewNotes, &r.CreatedAt}
	err := row.Scan(append(targets, extra...)...)
	return r, err
}

func (s *Store) VacationDaysAvailable(ctx context.Context, employeeID int64) (int, error) {
	var days int
	err := s.DB.QueryRow(ctx, "SELECT vacation_days_available FROM employees WHERE id = $1", employeeID).Scan(&days)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, ErrEmployeeNotFound
	}
	return days, err
}

// HasOverlap reports whether a pending or approved request intersects [start, end].
func (s *Store) HasOverlap(ctx context.Context, employeeID int64, start, end time.Time) (bool, error) {
	var exists bool
	err := s.DB.QueryRow(ctx, `
    SELECT EXISTS (
      SELECT 1 FROM requests
      WHERE employee_id = $1
        AND status IN ('pending', 'approved')
        AND start_date <= $3 AND end_date >= $2
    )
  `, employeeID, start, end).Scan(&exists)
	return exists, err
}

func (s *Store) Create(ctx context.Context, in NewRequest) (Request, error) {
	return scanRequest(s.DB.QueryRow(ctx, `
    INSERT INTO requests AS r (employee_id, request_type, start_date, end_date, days_requested, reason, medical_certificate_url)
    VALUES ($1, $2, $3, $4, $5, $6, $7)
    RETURNING `+requestColumns,
		in.EmployeeID, in.RequestType, in.StartDate, in.EndDate, in.DaysRequested, in.Reason, in.MedicalCertificateURL))
}

func (s *Store) List(ctx context.Context, filter Filter) ([]Request, error) {
	query := "SELECT " + requestColumns + `, e.employee_code, e.first_name, e.last_name, d.name, u.username
    FROM requests r
    JOIN employees e ON e.id = r.employee_id
    LEFT JOIN departments d ON d.id = e.department_id
    LEFT JOIN users u ON u.id = r.reviewed_by
    WHERE 1=1`
	args := []any{}
	if filter.Status != "" {
		args = append(args, filter.Status)
		query += fmt.Sprintf(" AND r.status = $%d", len(args))
	}
	if filter.RequestType != "" {
		args = append(args, filter.RequestType)
		query += fmt.Sprintf(" AND r.request_type = $%d", len(args))
	}
	if filter.EmployeeID > 0 {
		args = append(args, filter.EmployeeID)
		query += fmt.Sprintf(" AND r.employee_id = $%d", len(args))
	}
	query += " ORDER BY r.created_at DESC, r.id DESC"

	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Request{}
	for rows.Next() {
		var code, first, last string
		var department, reviewer *string
		r, err := scanRequest(rows, &code, &first, &last, &department, &reviewer)
		if err != nil {
			return nil, err
		}
		r.EmployeeCode, r.FirstName, r.LastName = code, first, last
		r.Department, r.ReviewedByUsername = department, reviewer
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *Store) Get(ctx context.Context, id int64) (Request, error) {
	var code, first, last string
	var reviewer *string
	var available int
	r, err := scanRequest(s.DB.QueryRow(ctx, "SELECT "+requestColumns+`, e.employee_code, e.first_name, e.last_name, u.username, e.vacation_days_available
    FROM requests r
    JOIN employees e ON e.id = r.employee_id
    LEFT JOIN users u ON u.id = r.reviewed_by
    WHERE r.id = $1`, id), &code, &first, &last, &reviewer, &available)
	if errors.Is(err, pgx.ErrNoRows) {
		return Request{}, ErrNotFound
	}
	if err != nil {
		return Request{}, err
	}
	r.EmployeeCode, r.FirstName, r.LastName = code, first, last
	r.ReviewedByUsername = reviewer
	r.VacationDaysAvailable = &available
	return r, nil
}

// Lock reads a request and its employee's vacation balance under row locks.
func (s *Store) Lock(ctx context.Context, id int64) (Snapshot, error) {
	var snap Snapshot
	r, err := scanRequest(s.DB.QueryRow(ctx, "SELECT "+requestColumns+`, e.vacation_days_available
    FROM requests r
    JOIN employees e ON e.id = r.employee_id
    WHERE r.id = $1
    FOR UPDATE OF r, e`, id), &snap.VacationDaysAvailable)
	if errors.Is(err, pgx.ErrNoRows) {
		return Snapshot{}, ErrNotFound
	}
	snap.Request = r
	return snap, err
}

func (s *Store) AddVacationDaysUsed(ctx context.Context, employeeID int64, days int) error {
	_, err := s.DB.Exec(ctx, "UPDATE employees SET vacation_days_used = vacation_days_used + $1, updated_at = now() WHERE id = $2", days, employeeID)
	return err
}

func (s *Store) SetEmployeeStatus(ctx context.Context, employeeID int64, status string) error {
	_, err := s.DB.Exec(ctx, "UPDATE employees SET status = $1, updated_at = now() WHERE id = $2", status, employeeID)
	return err
}

func (s *Store) Review(ctx context.Context, id int64, status string, reviewerID int64, notes *string) (Request, error) {
	return scanRequest(s.DB.QueryRow(ctx, `
    UPDATE requests AS r SET status = $1, reviewed_by = $2, reviewed_at = now(), review_notes = $3
    WHERE r.id = $4
    RETURNING `+requestColumns, status, reviewerID, notes, id))
}

func (s *Store) Cancel(ctx context.Context, id int64) (Request, error) {
	return scanRequest(s.DB.QueryRow(ctx, `
    UPDATE requests AS r SET status = 'cancelled'
    WHERE r.id = $1
    RETURNING `+requestColumns, id))
}

func (s *Store) PendingCount(ctx context.Context) (int, error) {
	var count int
	err := s.DB.QueryRow(ctx, "SELECT COUNT(1) FROM requests WHERE status = 'pending'").Scan(&count)
	return count, err
}

const coveringVacation = `
    SELECT 1 FROM requests r
    WHERE r.employee_id = e.id AND r.request_type = 'vacation' AND r.status = 'approved'
      AND r.start_date <= $1 AND r.end_date >= $1`

func (s *Store) VacationStarts(ctx context.Context, day time.Time) ([]int64, error) {
	return s.employeeIDs(ctx, `
    SELECT e.id FROM employees e
    WHERE e.status = 'active' AND EXISTS (`+coveringVacation+`)
    ORDER BY e.id`, day)
}

func (s *Store) VacationEnds(ctx context.Context, day time.Time) ([]int64, error) {
	return s.employeeIDs(ctx, `
    SELECT e.id FROM employees e
    WHERE e.status = 'vacation' AND NOT EXISTS (`+coveringVacation+`)
    ORDER BY e.id`, day)
}

func (s *Store) employeeIDs(ctx context.Context, query string, day time.Time) ([]int64, error) {
	rows, err := s.DB.Query(ctx, query, day)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
