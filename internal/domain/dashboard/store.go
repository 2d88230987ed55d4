package dashboard

import (
	"context"
	"time"

	"rrhh/internal/domain/attendance"
	"rrhh/internal/platform/querier"
)

type Store struct {
	DB querier.Querier
}

func NewStore(db querier.Querier) *Store {
	return &Store{DB: db}
}

type StoreAPI interface {
	EmployeeCounts(ctx context.Context) (EmployeeCounts, error)
	AttendanceDay(ctx context.Context, day time.Time) (AttendanceDay, error)
	PendingRequests(ctx context.Context) (PendingRequests, error)
	SalesMonth(ctx context.Context, employeeID int64, month, year int) (SalesMonth, error)
	PendingPayrollMonth(ctx context.Context, month, year int) (PayrollMonth, error)
	TopSellers(ctx context.Context, month, year, limit int) ([]Seller, error)
	DepartmentStats(ctx context.Context) ([]DepartmentCount, error)

	AttendanceMonth(ctx context.Context, employeeID int64, month, year int) (AttendanceMonth, error)
	RequestStats(ctx context.Context, employeeID int64) (RequestStats, error)

	SalesByMonth(ctx context.Context, year int) ([]SalesByMonth, error)
	PayrollByMonth(ctx context.Context, year int) ([]PayrollByMonth, error)
	AttendanceByMonth(ctx context.Context, year int) ([]AttendanceByMonth, error)
	AttendanceSummary(ctx context.Context, rng attendance.Range) ([]SummaryRow, error)
}

func (s *Store) EmployeeCounts(ctx context.Context) (EmployeeCounts, error) {
	var c EmployeeCounts
	err := s.DB.QueryRow(ctx, `
    SELECT COUNT(1),
           COUNT(1) FILTER (WHERE status = 'active'),
           COUNT(1) FILTER (WHERE status = 'vacation'),
           COUNT(1) FILTER (WHERE status = 'inactive')
    FROM employees`).Scan(&c.Total, &c.Active, &c.OnVacation, &c.Inactive)
	return c, err
}

func (s *Store) AttendanceDay(ctx context.Context, day time.Time) (AttendanceDay, error) {
	d := AttendanceDay{Date: day.Format(time.DateOnly)}
	err := s.DB.QueryRow(ctx, `
    SELECT COUNT(1),
           COUNT(1) FILTER (WHERE check_in IS NOT NULL),
           COUNT(1) FILTER (WHERE check_out IS NOT NULL),
           COUNT(1) FILTER (WHERE is_late)
    FROM attendance WHERE date = $1`, day).Scan(&d.TotalRegistered, &d.CheckedIn, &d.CheckedOut, &d.LateCount)
	return d, err
}

func (s *Store) PendingRequests(ctx context.Context) (PendingRequests, error) {
	var p PendingRequests
	err := s.DB.QueryRow(ctx, `
    SELECT COUNT(1),
           COUNT(1) FILTER (WHERE request_type = 'vacation'),
           COUNT(1) FILTER (WHERE request_type = 'sick_leave')
    FROM requests WHERE status = 'pending'`).Scan(&p.PendingCount, &p.VacationRequests, &p.SickLeaveRequests)
	return p, err
}

// SalesMonth totals one month of sales; employeeID 0 covers every employee.
func (s *Store) SalesMonth(ctx context.Context, employeeID int64, month, year int) (SalesMonth, error) {
	out := SalesMonth{Month: month, Year: year}
	err := s.DB.QueryRow(ctx, `
    SELECT COUNT(1), COALESCE(SUM(total_amount), 0)::float8, COALESCE(SUM(commission_amount), 0)::float8
    FROM sales
    WHERE ($1::bigint = 0 OR employee_id = $1)
      AND EXTRACT(MONTH FROM sale_date) = $2 AND EXTRACT(YEAR FROM sale_date) = $3`,
		employeeID, month, year).Scan(&out.SalesCount, &out.TotalSales, &out.TotalCommissions)
	return out, err
}

func (s *Store) PendingPayrollMonth(ctx context.Context, month, year int) (PayrollMonth, error) {
	out := PayrollMonth{Month: month, Year: year}
	err := s.DB.QueryRow(ctx, `
    SELECT COUNT(1), COALESCE(SUM(net_salary), 0)::float8
    FROM payroll
    WHERE EXTRACT(MONTH FROM period_start) = $1 AND EXTRACT(YEAR FROM period_start) = $2
      AND payment_status = 'pending'`, month, year).Scan(&out.EmployeesCount, &out.TotalPayroll)
	return out, err
}

func (s *Store) TopSellers(ctx context.Context, month, year, limit int) ([]Seller, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT e.id, e.first_name, e.last_name, COUNT(s.id), COALESCE(SUM(s.total_amount), 0)::float8 AS total
    FROM employees e
    LEFT JOIN sales s ON s.employee_id = e.id
      AND EXTRACT(MONTH FROM s.sale_date) = $1 AND EXTRACT(YEAR FROM s.sale_date) = $2
    WHERE e.status = 'active'
    GROUP BY e.id, e.first_name, e.last_name
    ORDER BY total DESC, e.id
    LIMIT $3`, month, year, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Seller{}
	for rows.Next() {
		var r Seller
		if err := rows.Scan(&r.EmployeeID, &r.FirstName, &r.LastName, &r.SalesCount, &r.TotalSales); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *Store) DepartmentStats(ctx context.Context) ([]DepartmentCount, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT d.name, COUNT(e.id) AS employee_count
    FROM departments d
    LEFT JOIN employees e ON e.department_id = d.id AND e.status = 'active'
    GROUP BY d.id, d.name
    ORDER BY employee_count DESC, d.name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []DepartmentCount{}
	for rows.Next() {
		var r DepartmentCount
		if err := rows.Scan(&r.Department, &r.EmployeeCount); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *Store) AttendanceMonth(ctx context.Context, employeeID int64, month, year int) (AttendanceMonth, error) {
	var a AttendanceMonth
	err := s.DB.QueryRow(ctx, `
    SELECT COUNT(1),
           COUNT(1) FILTER (WHERE is_late),
           COALESCE(SUM(hours_worked), 0)::float8,
           COALESCE(SUM(overtime_hours), 0)::float8
    FROM attendance
    WHERE employee_id = $1 AND EXTRACT(MONTH FROM date) = $2 AND EXTRACT(YEAR FROM date) = $3`,
		employeeID, month, year).Scan(&a.DaysWorked, &a.LateDays, &a.TotalHours, &a.OvertimeHours)
	return a, err
}

func (s *Store) RequestStats(ctx context.Context, employeeID int64) (RequestStats, error) {
	var r RequestStats
	err := s.DB.QueryRow(ctx, `
    SELECT COUNT(1),
           COUNT(1) FILTER (WHERE status = 'pending'),
           COUNT(1) FILTER (WHERE status = 'approved'),
           COUNT(1) FILTER (WHERE status = 'rejected')
    FROM requests WHERE employee_id = $1`, employeeID).Scan(&r.Total, &r.Pending, &r.Approved, &r.Rejected)
	return r, err
}

func (s *Store) SalesByMonth(ctx context.Context, year int) ([]SalesByMonth, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT EXTRACT(MONTH FROM sale_date)::int AS month, COUNT(1),
           COALESCE(SUM(total_amount), 0)::float8, COALESCE(SUM(commission_amount), 0)::float8
    FROM sales
    WHERE EXTRACT(YEAR FROM sale_date) = $1
    GROUP BY month ORDER BY month`, year)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []SalesByMonth{}
	for rows.Next() {
		var r SalesByMonth
		if err := rows.Scan(&r.Month, &r.SalesCount, &r.TotalSales, &r.TotalCommissions); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *Store) PayrollByMonth(ctx context.Context, year int) ([]PayrollByMonth, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT EXTRACT(MONTH FROM period_start)::int AS month, COUNT(DISTINCT employee_id),
           COALESCE(SUM(net_salary), 0)::float8
    FROM payroll
    WHERE EXTRACT(YEAR FROM period_start) = $1
    GROUP BY month ORDER BY month`, year)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []PayrollByMonth{}
	for rows.Next() {
		var r PayrollByMonth
		if err := rows.Scan(&r.Month, &r.EmployeesCount, &r.TotalPayroll); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *Store) AttendanceByMonth(ctx context.Context, year int) ([]AttendanceByMonth, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT EXTRACT(MONTH FROM date)::int AS month, COUNT(1),
           COUNT(1) FILTER (WHERE is_late),
           COALESCE(SUM(overtime_hours), 0)::float8
    FROM attendance
    WHERE EXTRACT(YEAR FROM date) = $1
    GROUP BY month ORDER BY month`, year)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []AttendanceByMonth{}
	for rows.Next() {
		var r AttendanceByMonth
		if err := rows.Scan(&r.Month, &r.TotalRecords, &r.LateCount, &r.TotalOvertime); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// AttendanceSummary keeps employees without attendance in the range, with zero totals.
func (s *Store) AttendanceSummary(ctx context.Context, rng attendance.Range) ([]SummaryRow, error) {
	clause, args := attendance.RangeClause("a.date", rng, nil)
	query := `
    SELECT e.id, e.employee_code, e.first_name, e.last_name, d.name,
           COUNT(a.id),
           COUNT(a.id) FILTER (WHERE a.status = 'present'),
           COUNT(a.id) FILTER (WHERE a.is_late),
           COUNT(a.id) FILTER (WHERE a.status = 'absent'),
           COALESCE(SUM(a.hours_worked), 0)::float8,
           COALESCE(SUM(a.overtime_hours), 0)::float8,
           ROUND(AVG(a.hours_worked), 2)::float8
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

	out := []SummaryRow{}
	for rows.Next() {
		var r SummaryRow
		if err := rows.Scan(&r.EmployeeID, &r.EmployeeCode, &r.FirstName, &r.LastName, &r.Department,
			&r.DaysRegistered, &r.PresentDays, &r.LateDays, &r.AbsentDays, &r.TotalHours, &r.OvertimeHours, &r.AvgDailyHours); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
