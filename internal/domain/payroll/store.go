package payroll

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"rrhh/internal/platform/querier"
)

// AccountOpener reads account numbers sealed by the employees store.
type AccountOpener interface {
	OpenString(value string) (string, error)
}

type Store struct {
	DB querier.Querier
	// Cipher opens employees.account_number on detail reads. Nil returns the
	// stored value.
	Cipher AccountOpener
}

func NewStore(db querier.Querier) *Store {
	return &Store{DB: db}
}

type StoreAPI interface {
	// InTx runs fn against a store bound to one transaction.
	InTx(ctx context.Context, fn func(StoreAPI) error) error

	Candidates(ctx context.Context, employeeIDs []int64) ([]Candidate, error)
	OvertimeHours(ctx context.Context, employeeID int64, start, end time.Time) (float64, error)
	SalesTotal(ctx context.Context, employeeID int64, start, end time.Time) (float64, error)
	Advances(ctx context.Context, employeeID int64, start, end time.Time) (float64, error)
	Exists(ctx context.Context, employeeID int64, start, end time.Time) (bool, error)
	Insert(ctx context.Context, employeeID int64, start, end time.Time, c Components) (Payroll, error)

	List(ctx context.Context, filter Filter) ([]Payroll, error)
	Get(ctx context.Context, id int64) (Payroll, error)
	Lock(ctx context.Context, id int64) (Payroll, error)
	UpdateComponents(ctx context.Context, id int64, c Components, notes *string) (Payroll, error)
	MarkPaid(ctx context.Context, id int64, paymentDate time.Time, notes *string) (Payroll, error)
	DeletePending(ctx context.Context, id int64) (Payroll, error)
	Summary(ctx context.Context, year, month int) (Summary, error)
}

func (s *Store) InTx(ctx context.Context, fn func(StoreAPI) error) error {
	return querier.InTx(ctx, s.DB, "payroll", func(tx pgx.Tx) error {
		return fn(&Store{DB: tx, Cipher: s.Cipher})
	})
}

// Candidates returns active employees, optionally restricted to ids, with
// their position's commission settings. Employees without a position are not
// payroll candidates.
func (s *Store) Candidates(ctx context.Context, employeeIDs []int64) ([]Candidate, error) {
	query := `
    SELECT e.id, e.employee_code, e.first_name, e.last_name, e.salary::float8,
           p.has_commission, p.commission_percentage::float8
    FROM employees e
    JOIN positions p ON p.id = e.position_id
    WHERE e.status = 'active'`
	args := []any{}
	if len(employeeIDs) > 0 {
		args = append(args, employeeIDs)
		query += " AND e.id = ANY($1)"
	}
	query += " ORDER BY e.employee_code"

	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Candidate{}
	for rows.Next() {
		var c Candidate
		if err := rows.Scan(&c.EmployeeID, &c.EmployeeCode, &c.FirstName, &c.LastName, &c.Salary, &c.HasCommission, &c.CommissionPercentage); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *Store) sum(ctx context.Context, query string, args ...any) (float64, error) {
	var total float64
	err := s.DB.QueryRow(ctx, query, args...).Scan(&total)
	return total, err
}

func (s *Store) OvertimeHours(ctx context.Context, employeeID int64, start, end time.Time) (float64, error) {
	return s.sum(ctx, `
    SELECT COALESCE(SUM(overtime_hours), 0)::float8
    FROM attendance
    WHERE employee_id = $1 AND date BETWEEN $2 AND $3
  `, employeeID, start, end)
}

func (s *Store) SalesTotal(ctx context.Context, employeeID int64, start, end time.Time) (float64, error) {
	return s.sum(ctx, `
    SELECT COALESCE(SUM(total_amount), 0)::float8
    FROM sales
    WHERE employee_id = $1 AND sale_date BETWEEN $2 AND $3
  `, employeeID, start, end)
}

// Advances sums advance payments already paid out inside the period.
func (s *Store) Advances(ctx context.Context, employeeID int64, start, end time.Time) (float64, error) {
	return s.sum(ctx, `
    SELECT COALESCE(SUM(advance_payment), 0)::float8
    FROM payroll
    WHERE employee_id = $1 AND payment_status = 'paid'
      AND period_start >= $2 AND period_end <= $3
  `, employeeID, start, end)
}

func (s *Store) Exists(ctx context.Context, employeeID int64, start, end time.Time) (bool, error) {
	var exists bool
	err := s.DB.QueryRow(ctx, `
    SELECT EXISTS (SELECT 1 FROM payroll WHERE employee_id = $1 AND period_start = $2 AND period_end = $3)
  `, employeeID, start, end).Scan(&exists)
	return exists, err
}

const payrollColumns = `p.id, p.employee_id, p.period_start, p.period_end, p.base_salary::float8, p.overtime_pay::float8,
       p.commission::float8, p.bonuses::float8, p.iess_deduction::float8, p.advance_payment::float8,
       p.other_deductions::float8, p.total_income::float8, p.total_deductions::float8, p.net_salary::float8,
       p.payment_status, p.payment_date, p.notes, p.created_at`

const payrollListColumns = payrollColumns + `,
       e.employee_code, e.first_name, e.last_name, d.name, pos.name`

const payrollDetailColumns = payrollListColumns + `,
       e.id_number, e.bank_name, e.account_number`

const payrollDetailJoins = `
    FROM payroll p
    JOIN employees e ON e.id = p.employee_id
    LEFT JOIN departments d ON d.id = e.department_id
    LEFT JOIN positions pos ON pos.id = e.position_id`

func scanPayroll(row pgx.Row) (Payroll, error) {
	var p Payroll
	err := row.Scan(&p.ID, &p.EmployeeID, &p.PeriodStart, &p.PeriodEnd, &p.BaseSalary, &p.OvertimePay,
		&p.Commission, &p.Bonuses, &p.IESSDeduction, &p.AdvancePayment,
		&p.OtherDeductions, &p.TotalIncome, &p.TotalDeductions, &p.NetSalary,
		&p.PaymentStatus, &p.PaymentDate, &p.Notes, &p.CreatedAt)
	return p, err
}

func (p *Payroll) scanTargets() []any {
	return []any{&p.ID, &p.EmployeeID, &p.PeriodStart, &p.PeriodEnd, &p.BaseSalary, &p.OvertimePay,
		&p.Commission, &p.Bonuses, &p.IESSDeduction, &p.AdvancePayment,
		&p.OtherDeductions, &p.TotalIncome, &p.TotalDeductions, &p.NetSalary,
		&p.PaymentStatus, &p.PaymentDate, &p.Notes, &p.CreatedAt,
		&p.EmployeeCode, &p.FirstName, &p.LastName, &p.Department, &p.Position}
}

func scanPayrollListRow(row pgx.Row) (Payroll, error) {
	var p Payroll
	err := row.Scan(p.scanTargets()...)
	return p, err
}

// scanPayrollDetail adds the employee's id number and bank account, opening
// a sealed account number.
func (s *Store) scanPayrollDetail(row pgx.Row) (Payroll, error) {
	var p Payroll
	err := row.Scan(append(p.scanTargets(), &p.IDNumber, &p.BankName, &p.AccountNumber)...)
	if err != nil {
		return Payroll{}, err
	}
	if p.AccountNumber != nil && s.Cipher != nil {
		plain, err := s.Cipher.OpenString(*p.AccountNumber)
		if err != nil {
			return Payroll{}, fmt.Errorf("open account number for payroll %d: %w", p.ID, err)
		}
		p.AccountNumber = &plain
	}
	return p, nil
}

func (s *Store) Insert(ctx context.Context, employeeID int64, start, end time.Time, c Components) (Payroll, error) {
	return scanPayroll(s.DB.QueryRow(ctx, `
    INSERT INTO payroll AS p (
      employee_id, period_start, period_end, base_salary, overtime_pay, commission, bonuses,
      iess_deduction, advance_payment, other_deductions, total_income, total_deductions, net_salary
    ) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
    RETURNING `+payrollColumns,
		employeeID, start, end, c.BaseSalary, c.OvertimePay, c.Commission, c.Bonuses,
		c.IESSDeduction, c.AdvancePayment, c.OtherDeductions, c.TotalIncome, c.TotalDeductions, c.NetSalary))
}

func (s *Store) List(ctx context.Context, filter Filter) ([]Payroll, error) {
	query := "SELECT " + payrollListColumns + payrollDetailJoins + " WHERE 1=1"
	args := []any{}
	if filter.EmployeeID > 0 {
		args = append(args, filter.EmployeeID)
		query += fmt.Sprintf(" AND p.employee_id = $%d", len(args))
	}
	if filter.PeriodStart != nil {
		args = append(args, *filter.PeriodStart)
		query += fmt.Sprintf(" AND p.period_start >= $%d", len(args))
	}
	if filter.PeriodEnd != nil {
		args = append(args, *filter.PeriodEnd)
		query += fmt.Sprintf(" AND p.period_end <= $%d", len(args))
	}
	if filter.PaymentStatus != "" {
		args = append(args, filter.PaymentStatus)
		query += fmt.Sprintf(" AND p.payment_status = $%d", len(args))
	}
	if filter.Year > 0 {
		args = append(args, filter.Year)
		query += fmt.Sprintf(" AND EXTRACT(YEAR FROM p.period_start) = $%d", len(args))
	}
	if filter.Month > 0 {
		args = append(args, filter.Month)
		query += fmt.Sprintf(" AND EXTRACT(MONTH FROM p.period_start) = $%d", len(args))
	}
	query += " ORDER BY p.period_start DESC, e.employee_code"

	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Payroll{}
	for rows.Next() {
		p, err := scanPayrollListRow(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *Store) Get(ctx context.Context, id int64) (Payroll, error) {
	p, err := s.scanPayrollDetail(s.DB.QueryRow(ctx, "SELECT "+payrollDetailColumns+payrollDetailJoins+" WHERE p.id = $1", id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Payroll{}, ErrNotFound
	}
	return p, err
}

func (s *Store) Lock(ctx context.Context, id int64) (Payroll, error) {
	p, err := scanPayroll(s.DB.QueryRow(ctx, "SELECT "+payrollColumns+" FROM payroll p WHERE p.id = $1 FOR UPDATE", id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Payroll{}, ErrNotFound
	}
	return p, err
}

func (s *Store) UpdateComponents(ctx context.Context, id int64, c Components, notes *string) (Payroll, error) {
	return scanPayroll(s.DB.QueryRow(ctx, `
    UPDATE payroll AS p SET
      base_salary = $1, overtime_pay = $2, commission = $3, bonuses = $4,
      iess_deduction = $5, advance_payment = $6, other_deductions = $7,
      total_income = $8, total_deductions = $9, net_salary = $10,
      notes = COALESCE($11, p.notes)
    WHERE p.id = $12
    RETURNING `+payrollColumns,
		c.BaseSalary, c.OvertimePay, c.Commission, c.Bonuses, c.IESSDeduction, c.AdvancePayment, c.OtherDeductions,
		c.TotalIncome, c.TotalDeductions, c.NetSalary, notes, id))
}

// MarkPaid settles a pending row. Missing and already-paid rows both yield ErrNotFound.
func (s *Store) MarkPaid(ctx context.Context, id int64, paymentDate time.Time, notes *string) (Payroll, error) {
	p, err := scanPayroll(s.DB.QueryRow(ctx, `
    UPDATE payroll AS p SET payment_status = 'paid', payment_date = $1, notes = COALESCE($2, p.notes)
    WHERE p.id = $3 AND p.payment_status = 'pending'
    RETURNING `+payrollColumns, paymentDate, notes, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Payroll{}, ErrNotFound
	}
	return p, err
}

func (s *Store) DeletePending(ctx context.Context, id int64) (Payroll, error) {
	p, err := scanPayroll(s.DB.QueryRow(ctx, `
    DELETE FROM payroll AS p WHERE p.id = $1 AND p.payment_status = 'pending'
    RETURNING `+payrollColumns, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Payroll{}, ErrNotFound
	}
	return p, err
}

func (s *Store) Summary(ctx context.Context, year, month int) (Summary, error) {
	sum := Summary{Year: year, Month: month}
	err := s.DB.QueryRow(ctx, `
    SELECT COUNT(1),
           COALESCE(SUM(base_salary), 0)::float8,
           COALESCE(SUM(overtime_pay), 0)::float8,
           COALESCE(SUM(commission), 0)::float8,
           COALESCE(SUM(bonuses), 0)::float8,
           COALESCE(SUM(total_income), 0)::float8,
           COALESCE(SUM(iess_deduction), 0)::float8,
           COALESCE(SUM(total_deductions), 0)::float8,
           COALESCE(SUM(net_salary), 0)::float8,
           COUNT(1) FILTER (WHERE payment_status = 'paid'),
           COUNT(1) FILTER (WHERE payment_status = 'pending')
    FROM payroll
    WHERE EXTRACT(YEAR FROM period_start) = $1 AND EXTRACT(MONTH FROM period_start) = $2
  `, year, month).Scan(&sum.EmployeeCount, &sum.TotalBaseSalary, &sum.TotalOvertimePay, &sum.TotalCommission,
		&sum.TotalBonuses, &sum.TotalIncome, &sum.TotalIESSDeduction, &sum.TotalDeductions, &sum.TotalNetSalary,
		&sum.PaidCount, &sum.PendingCount)
	return sum, err
}
