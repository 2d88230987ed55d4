package employees

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"rrhh/internal/platform/querier"
)

// FieldCipher seals columns that must not be stored in the clear.
type FieldCipher interface {
	SealString(value string) (string, error)
	OpenString(value string) (string, error)
}

type Store struct {
	DB querier.Querier
	// Cipher protects account_number. Nil stores it as given.
	Cipher FieldCipher
}

func NewStore(db querier.Querier) *Store {
	return &Store{DB: db}
}

type StoreAPI interface {
	List(ctx context.Context, filter Filter) ([]Employee, int, error)
	Get(ctx context.Context, id int64) (Employee, error)
	Create(ctx context.Context, in CreateInput, birthDate *time.Time, hireDate time.Time) (Employee, error)
	Update(ctx context.Context, id int64, in UpdateInput, birthDate *time.Time) (Employee, error)
	SetStatus(ctx context.Context, id int64, status string) (Employee, error)
	VacationBalance(ctx context.Context, id int64) (VacationBalance, error)
}

const selectEmployee = `
    SELECT e.id, e.employee_code, e.first_name, e.last_name, e.id_number, e.birth_date, e.gender,
           e.email, e.phone, e.address, e.department_id, d.name, e.position_id, p.name,
           COALESCE(p.has_commission, false), COALESCE(p.commission_percentage, 0)::float8,
           e.hire_date, e.salary::float8, e.status, e.bank_name, e.account_number,
           e.emergency_contact_name, e.emergency_contact_phone,
           e.vacation_days_total, e.vacation_days_used, e.vacation_days_available,
           e.profile_photo_url, e.created_at, e.updated_at
    FROM employees e
    LEFT JOIN departments d ON e.department_id = d.id
    LEFT JOIN positions p ON e.position_id = p.id`

func (s *Store) scanEmployee(row pgx.Row) (Employee, error) {
	var e Employee
	var salary float64
	err := row.Scan(&e.ID, &e.EmployeeCode, &e.FirstName, &e.LastName, &e.IDNumber, &e.BirthDate, &e.Gender,
		&e.Email, &e.Phone, &e.Address, &e.DepartmentID, &e.DepartmentName, &e.PositionID, &e.PositionName,
		&e.HasCommission, &e.CommissionPercentage,
		&e.HireDate, &salary, &e.Status, &e.BankName, &e.AccountNumber,
		&e.EmergencyContactName, &e.EmergencyContactPhone,
		&e.VacationDaysTotal, &e.VacationDaysUsed, &e.VacationDaysAvailable,
		&e.ProfilePhotoURL, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return Employee{}, err
	}
	e.Salary = &salary
	if e.AccountNumber != nil && s.Cipher != nil {
		plain, err := s.Cipher.OpenString(*e.AccountNumber)
		if err != nil {
			return Employee{}, fmt.Errorf("open account number for employee %d: %w", e.ID, err)
		}
		e.AccountNumber = &plain
	}
	return e, nil
}

func (s *Store) sealAccount(account *string) (*string, error) {
	if account == nil || s.Cipher == nil {
		return account, nil
	}
	sealed, err := s.Cipher.SealString(*account)
	if err != nil {
		return nil, fmt.Errorf("seal account number: %w", err)
	}
	return &sealed, nil
}

func (s *Store) List(ctx context.Context, filter Filter) ([]Employee, int, error) {
	where := " WHERE 1=1"
	var args []any
	if filter.Status != "" {
		args = append(args, filter.Status)
		where += fmt.Sprintf(" AND e.status = $%d", len(args))
	}
	if filter.DepartmentID > 0 {
		args = append(args, filter.DepartmentID)
		where += fmt.Sprintf(" AND e.department_id = $%d", len(args))
	}
	if filter.PositionID > 0 {
		args = append(args, filter.PositionID)
		where += fmt.Sprintf(" AND e.position_id = $%d", len(args))
	}
	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		where += fmt.Sprintf(" AND (e.first_name ILIKE $%[1]d OR e.last_name ILIKE $%[1]d OR e.employee_code ILIKE $%[1]d)", len(args))
	}

	var total int
	if err := s.DB.QueryRow(ctx, "SELECT COUNT(1) FROM employees e"+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := selectEmployee + where + " ORDER BY e.created_at DESC, e.id DESC"
	if filter.Limit > 0 {
		args = append(args, filter.Limit, filter.Offset)
		query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)-1, len(args))
	}

	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := []Employee{}
	for rows.Next() {
		emp, err := s.scanEmployee(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, emp)
	}
	return out, total, rows.Err()
}

func (s *Store) Get(ctx context.Context, id int64) (Employee, error) {
	emp, err := s.scanEmployee(s.DB.QueryRow(ctx, selectEmployee+" WHERE e.id = $1", id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Employee{}, ErrNotFound
	}
	return emp, err
}

// Create assigns the next EMP#### code in the same statement as the insert.
func (s *Store) Create(ctx context.Context, in CreateInput, birthDate *time.Time, hireDate time.Time) (Employee, error) {
	account, err := s.sealAccount(in.AccountNumber)
	if err != nil {
		return Employee{}, err
	}
	var id int64
	err = s.DB.QueryRow(ctx, `
    INSERT INTO employees (
      employee_code, first_name, last_name, id_number, birth_date, gender,
      email, phone, address, department_id, position_id, hire_date, salary,
      bank_name, account_number, emergency_contact_name, emergency_contact_phone
    )
    SELECT 'EMP' || LPAD((COALESCE(MAX(CAST(SUBSTRING(employee_code FROM 4) AS INTEGER)), 0) + 1)::text, 4, '0'),
           $1::text, $2::text, $3::text, $4::date, $5::text, $6::text, $7::text, $8::text,
           $9::bigint, $10::bigint, $11::date, $12::numeric, $13::text, $14::text, $15::text, $16::text
    FROM employees
    RETURNING id
  `, in.FirstName, in.LastName, in.IDNumber, birthDate, in.Gender,
		in.Email, in.Phone, in.Address, in.DepartmentID, in.PositionID, hireDate, *in.Salary,
		in.BankName, account, in.EmergencyContactName, in.EmergencyContactPhone).Scan(&id)
	if err != nil {
		return Employee{}, err
	}
	return s.Get(ctx, id)
}

func (s *Store) Update(ctx context.Context, id int64, in UpdateInput, birthDate *time.Time) (Employee, error) {
	account, err := s.sealAccount(in.AccountNumber)
	if err != nil {
		return Employee{}, err
	}
	tag, err := s.DB.Exec(ctx, `
    UPDATE employees SET
      first_name = COALESCE($1, first_name),
      last_name = COALESCE($2, last_name),
      birth_date = COALESCE($3, birth_date),
      gender = COALESCE($4, gender),
      email = COALESCE($5, email),
      phone = COALESCE($6, phone),
      address = COALESCE($7, address),
      department_id = COALESCE($8, department_id),
      position_id = COALESCE($9, position_id),
      salary = COALESCE($10, salary),
      status = COALESCE($11, status),
      bank_name = COALESCE($12, bank_name),
      account_number = COALESCE($13, account_number),
      emergency_contact_name = COALESCE($14, emergency_contact_name),
      emergency_contact_phone = COALESCE($15, emergency_contact_phone),
      updated_at = now()
    WHERE id = $16
  `, in.FirstName, in.LastName, birthDate, in.Gender, in.Email, in.Phone, in.Address,
		in.DepartmentID, in.PositionID, in.Salary, in.Status, in.BankName, account,
		in.EmergencyContactName, in.EmergencyContactPhone, id)
	if err != nil {
		return Employee{}, err
	}
	if tag.RowsAffected() == 0 {
		return Employee{}, ErrNotFound
	}
	return s.Get(ctx, id)
}

func (s *Store) SetStatus(ctx context.Context, id int64, status string) (Employee, error) {
	tag, err := s.DB.Exec(ctx, "UPDATE employees SET status = $1, updated_at = now() WHERE id = $2", status, id)
	if err != nil {
		return Employee{}, err
	}
	if tag.RowsAffected() == 0 {
		return Employee{}, ErrNotFound
	}
	return s.Get(ctx, id)
}

func (s *Store) VacationBalance(ctx context.Context, id int64) (VacationBalance, error) {
	out := VacationBalance{EmployeeID: id}
	err := s.DB.QueryRow(ctx, `
    SELECT vacation_days_total, vacation_days_used, vacation_days_available, hire_date
    FROM employees
    WHERE id = $1
  `, id).Scan(&out.VacationDaysTotal, &out.VacationDaysUsed, &out.VacationDaysAvailable, &out.HireDate)
	if errors.Is(err, pgx.ErrNoRows) {
		return VacationBalance{}, ErrNotFound
	}
	return out, err
}
