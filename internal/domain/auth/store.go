package auth

import (
	"context"
	"errors"
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
	FindByUsername(ctx context.Context, username string) (LoginUser, error)
	ActiveUser(ctx context.Context, userID int64) (UserContext, error)
	UpdateLastLogin(ctx context.Context, userID int64) error
	EmployeeExists(ctx context.Context, employeeID int64) (bool, error)
	UsernameTaken(ctx context.Context, username string) (bool, error)
	CreateUser(ctx context.Context, employeeID int64, username, passwordHash, role string) (User, error)
	Profile(ctx context.Context, userID int64) (Profile, error)
	PasswordHash(ctx context.Context, userID int64) (string, error)
	UpdatePassword(ctx context.Context, userID int64, hash string) error
}

type LoginUser struct {
	ID             int64
	EmployeeID     int64
	Username       string
	PasswordHash   string
	Role           string
	IsActive       bool
	EmployeeStatus string
	FirstName      string
	LastName       string
	EmployeeCode   string
}

type User struct {
	ID         int64     `json:"id"`
	EmployeeID int64     `json:"employeeId"`
	Username   string    `json:"username"`
	Role       string    `json:"role"`
	IsActive   bool      `json:"isActive"`
	CreatedAt  time.Time `json:"createdAt"`
}

type Profile struct {
	ID             int64      `json:"id"`
	EmployeeID     int64      `json:"employeeId"`
	Username       string     `json:"username"`
	Role           string     `json:"role"`
	LastLogin      *time.Time `json:"lastLogin"`
	EmployeeCode   string     `json:"employeeCode"`
	FirstName      string     `json:"firstName"`
	LastName       string     `json:"lastName"`
	Email          *string    `json:"email"`
	Phone          *string    `json:"phone"`
	HireDate       time.Time  `json:"hireDate"`
	Status         string     `json:"status"`
	DepartmentName *string    `json:"departmentName"`
	PositionName   *string    `json:"positionName"`
	HasCommission  bool       `json:"hasCommission"`
	VacationDays   int        `json:"vacationDaysAvailable"`
	ProfilePhoto   *string    `json:"profilePhotoUrl"`
}

func (s *Store) FindByUsername(ctx context.Context, username string) (LoginUser, error) {
	var out LoginUser
	err := s.DB.QueryRow(ctx, `
    SELECT u.id, u.employee_id, u.username, u.password_hash, u.role, u.is_active,
           e.status, e.first_name, e.last_name, e.employee_code
    FROM users u
    JOIN employees e ON u.employee_id = e.id
    WHERE u.username = $1
  `, username).Scan(&out.ID, &out.EmployeeID, &out.Username, &out.PasswordHash, &out.Role, &out.IsActive,
		&out.EmployeeStatus, &out.FirstName, &out.LastName, &out.EmployeeCode)
	if errors.Is(err, pgx.ErrNoRows) {
		return LoginUser{}, ErrUserNotFound
	}
	return out, err
}

func (s *Store) ActiveUser(ctx context.Context, userID int64) (UserContext, error) {
	var out UserContext
	var first, last string
	err := s.DB.QueryRow(ctx, `
    SELECT u.id, u.employee_id, u.username, u.role, e.first_name, e.last_name
    FROM users u
    JOIN employees e ON u.employee_id = e.id
    WHERE u.id = $1 AND u.is_active = true AND e.status <> 'inactive'
  `, userID).Scan(&out.UserID, &out.EmployeeID, &out.Username, &out.Role, &first, &last)
	if errors.Is(err, pgx.ErrNoRows) {
		return UserContext{}, ErrUserInactive
	}
	if err != nil {
		return UserContext{}, err
	}
	out.FullName = first + " " + last
	return out, nil
}

func (s *Store) UpdateLastLogin(ctx context.Context, userID int64) error {
	_, err := s.DB.Exec(ctx, "UPDATE users SET last_login = now() WHERE id = $1", userID)
	return err
}

func (s *Store) EmployeeExists(ctx context.Context, employeeID int64) (bool, error) {
	var exists bool
	err := s.DB.QueryRow(ctx, "SELECT EXISTS (SELECT 1 FROM employees WHERE id = $1)", employeeID).Scan(&exists)
	return exists, err
}

func (s *Store) UsernameTaken(ctx context.Context, username string) (bool, error) {
	var exists bool
	err := s.DB.QueryRow(ctx, "SELECT EXISTS (SELECT 1 FROM users WHERE username = $1)", username).Scan(&exists)
	return exists, err
}

func (s *Store) CreateUser(ctx context.Context, employeeID int64, username, passwordHash, role string) (User, error) {
	var out User
	err := s.DB.QueryRow(ctx, `
    INSERT INTO users (employee_id, username, password_hash, role)
    VALUES ($1, $2, $3, $4)
    RETURNING id, employee_id, username, role, is_active, created_at
  `, employeeID, username, passwordHash, role).Scan(&out.ID, &out.EmployeeID, &out.Username, &out.Role, &out.IsActive, &out.CreatedAt)
	return out, err
}

func (s *Store) Profile(ctx context.Context, userID int64) (Profile, error) {
	var out Profile
	err := s.DB.QueryRow(ctx, `
    SELECT u.id, u.employee_id, u.username, u.role, u.last_login,
           e.employee_code, e.first_name, e.last_name, e.email, e.phone, e.hire_date, e.status,
           d.name, p.name, COALESCE(p.has_commission, false), e.vacation_days_available, e.profile_photo_url
    FROM users u
    JOIN employees e ON u.employee_id = e.id
    LEFT JOIN departments d ON e.department_id = d.id
    LEFT JOIN positions p ON e.position_id = p.id
    WHERE u.id = $1
  `, userID).Scan(&out.ID, &out.EmployeeID, &out.Username, &out.Role, &out.LastLogin,
		&out.EmployeeCode, &out.FirstName, &out.LastName, &out.Email, &out.Phone, &out.HireDate, &out.Status,
		&out.DepartmentName, &out.PositionName, &out.HasCommission, &out.VacationDays, &out.ProfilePhoto)
	if errors.Is(err, pgx.ErrNoRows) {
		return Profile{}, ErrUserNotFound
	}
	return out, err
}

func (s *Store) PasswordHash(ctx context.Context, userID int64) (string, error) {
	var hash string
	err := s.DB.QueryRow(ctx, "SELECT password_hash FROM users WHERE id = $1", userID).Scan(&hash)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", ErrUserNotFound
	}
	return hash, err
}

func (s *Store) UpdatePassword(ctx context.Context, userID int64, hash string) error {
	_, err := s.DB.Exec(ctx, "UPDATE users SET password_hash = $1 WHERE id = $2", hash, userID)
	return err
}
