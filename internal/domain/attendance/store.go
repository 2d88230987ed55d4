package attendance

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
	FindDay(ctx context.Context, employeeID int64, day time.Time) (Record, bool, error)
	InsertCheckIn(ctx context.Context, employeeID int64, day time.Time, clock string, late bool) (Record, error)
	UpdateCheckIn(ctx context.Context, id int64, clock string, late bool) (Record, error)
	SetCheckOut(ctx context.Context, id int64, clock string, hours, overtime float64) (Record, error)
	ListForEmployee(ctx context.Context, employeeID int64, rng Range) ([]Record, error)
	Report(ctx context.Context, rng Range) ([]ReportRow, error)
	Upsert(ctx context.Context, entry ManualEntry) (Record, error)
}

const recordColumns = `a.id, a.employee_id, a.date, to_char(a.check_in, 'HH24:MI:SS'), to_char(a.check_out, 'HH24:MI:SS'),
       a.hours_worked::float8, a.overtime_hours::float8, a.is_late, a.status, a.notes, a.created_at`

func scanRecord(row pgx.Row, dest ...any) (Record, error) {
	var r Record
	targets := []any{&r.ID, &r.EmployeeID, &r.Date, &r.CheckIn, &r.CheckOut, &r.HoursWorked, &r.OvertimeHours, &r.IsLate, &r.Status, &r.Notes, &r.CreatedAt}
	err := row.Scan(append(targets, dest...)...)
	return r, err
}

// RangeClause appends the date restriction for column to args and returns the SQL fragment.
func RangeClause(column string, rng Range, args []any) (string, []any) {
	switch {
	case rng.From != nil && rng.To != nil:
		args = append(args, *rng.From, *rng.To)
		return fmt.Sprintf(" AND %s BETWEEN $%d AND $%d", column, len(args)-1, len(args)), args
	case rng.Month > 0 && rng.Year > 0:
		args = append(args, rng.Month, rng.Year)
		return fmt.Sprintf(" AND EXTRACT(MONTH FROM %s) = $%d AND EXTRACT(YEAR FROM %s) = $%d", column, len(args)-1, column, len(args)), args
	}
	return "", args
}

func (s *Store) FindDay(ctx context.Context, employeeID int64, day time.Time) (Record, bool, error) {
	r, err := scanRecord(s.DB.QueryRow(ctx, "SELECT "+recordColumns+" FROM attendance a WHERE a.employee_id = $1 AND a.date = $2", employeeID, day))
	if errors.Is(err, pgx.ErrNoRows) {
		return Record{}, false, nil
	}
	if err != nil {
		return Record{}, false, err
	}
	return r, true, nil
}

func (s *Store) InsertCheckIn(ctx context.Context, employeeID int64, day time.Time, clock string, late bool) (Record, error) {
	return scanRecord(s.DB.QueryRow(ctx, `
    INSERT INTO attendance AS a (employee_id, date, check_in, is_late, status)
    VALUES ($1, $2, $3::time, $4, $5)
    RETURNING `+recordColumns, employeeID, day, clock, late, CheckInStatus(late)))
}

func (s *Store) UpdateCheckIn(ctx context.Context, id int64, clock string, late bool) (Record, error) {
	return scanRecord(s.DB.QueryRow(ctx, `
    UPDATE attendance AS a SET check_in = $1::time, is_late = $2, status = $3
    WHERE a.id = $4
    RETURNING `+recordColumns, clock, late, CheckInStatus(late), id))
}

func (s *Store) SetCheckOut(ctx context.Context, id int64, clock string, hours, overtime float64) (Record, error) {
	return scanRecord(s.DB.QueryRow(ctx, `
    UPDATE attendance AS a SET check_out = $1::time, hours_worked = $2, overtime_hours = $3
    WHERE a.id = $4
    RETURNING `+recordColumns, clock, hours, overtime, id))
}

func (s *Store) ListForEmployee(ctx context.Context, employeeID int64, rng Range) ([]Record, error) {
	query := "SELECT " + recordColumns + `, e.employee_code, e.first_name, e.last_name
    FROM attendance a
    JOIN employees e ON e.id = a.employee_id
    WHERE a.employee_id = $1`
	clause, args := RangeClause("a.date", rng, []any{employeeID})
	query += clause + " ORDER BY a.date DESC"

	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Record{}
	for rows.Next() {
		var code, first, last string
		r, err := scanRecord(rows, &code, &first, &last)
		if err != nil {
			return nil, err
		}
		r.EmployeeCode, r.FirstName, r.LastName = code, first, last
		out = append(out, r)
	}
	return out, rows.Err()
}

// Report lists every active employee, including those with no attendance in the range.
func (s *Store) Report(ctx context.Context, rng Range) ([]ReportRow, error) {
	clause, args := RangeClause("a.date", rng, nil)
	query := `
    SELECT e.id, e.employee_code, e.first_name, e.last_name, d.name,
           COUNT(a.id),
           COUNT(a.id) FILTER (WHERE a.status = 'present'),
           COUNT(a.id) FILTER (WHERE a.is_late),
           COUNT(a.id) FILTER (WHERE a.status = 'absent'),
           COALESCE(SUM(a.hours_worked), 0)::float8,
           COALESCE(SUM(a.overtime_hours), 0)::float8
    FROM employees e
    LEFT JOIN attendance a ON a.employee_id = e.id` + clause + `
    LEFT JOIN departments d ON d.id = e.department_id
    WHERE e.status = 'active'
    GROUP BY e.id, e.employee_code, e.first_name, e.last_name, d.name
    ORDER BY e.employee_code`

	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []ReportRow{}
	for rows.Next() {
		var r ReportRow
		if err := rows.Scan(&r.EmployeeID, &r.EmployeeCode, &r.FirstName, &r.LastName, &r.Department,
			&r.TotalDays, &r.PresentDays, &r.LateDays, &r.AbsentDays, &r.TotalHours, &r.OvertimeHours); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *Store) Upsert(ctx context.Context, entry ManualEntry) (Record, error) {
	return scanRecord(s.DB.QueryRow(ctx, `
    INSERT INTO attendance AS a (employee_id, date, check_in, check_out, hours_worked, overtime_hours, is_late, status, notes)
    VALUES ($1, $2, $3::time, $4::time, $5, $6, $7, $8, $9)
    ON CONFLICT (employee_id, date) DO UPDATE SET
      check_in = EXCLUDED.check_in,
      check_out = EXCLUDED.check_out,
      hours_worked = EXCLUDED.hours_worked,
      overtime_hours = EXCLUDED.overtime_hours,
      is_late = EXCLUDED.is_late,
      status = EXCLUDED.status,
      notes = EXCLUDED.notes
    RETURNING `+recordColumns,
		entry.EmployeeID, entry.Date, entry.CheckIn, entry.CheckOut, entry.HoursWorked, entry.OvertimeHours,
		entry.IsLate, entry.Status, entry.Notes))
}
