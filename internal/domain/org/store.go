package org

import (
	"context"
	"errors"

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
	ListDepartments(ctx context.Context) ([]Department, error)
	GetDepartment(ctx context.Context, id int64) (Department, error)
	CreateDepartment(ctx context.Context, name string, description *string) (int64, error)
	UpdateDepartment(ctx context.Context, id int64, in DepartmentInput) (bool, error)
	DeleteDepartment(ctx context.Context, id int64) (bool, error)
	DepartmentEmployeeCount(ctx context.Context, id int64) (int, error)

	ListPositions(ctx context.Context) ([]Position, error)
	GetPosition(ctx context.Context, id int64) (Position, error)
	CreatePosition(ctx context.Context, in PositionInput) (int64, error)
	UpdatePosition(ctx context.Context, id int64, in PositionInput) (bool, error)
	DeletePosition(ctx context.Context, id int64) (bool, error)
	PositionEmployeeCount(ctx context.Context, id int64) (int, error)
}

const selectDepartment = `
    SELECT d.id, d.name, d.description, d.created_at,
           (SELECT COUNT(1) FROM employees e WHERE e.department_id = d.id AND e.status = 'active')
    FROM departments d`

func (s *Store) ListDepartments(ctx context.Context) ([]Department, error) {
	rows, err := s.DB.Query(ctx, selectDepartment+" ORDER BY d.name")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Department{}
	for rows.Next() {
		var d Department
		if err := rows.Scan(&d.ID, &d.Name, &d.Description, &d.CreatedAt, &d.EmployeeCount); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (s *Store) GetDepartment(ctx context.Context, id int64) (Department, error) {
	var d Department
	err := s.DB.QueryRow(ctx, selectDepartment+" WHERE d.id = $1", id).Scan(&d.ID, &d.Name, &d.Description, &d.CreatedAt, &d.EmployeeCount)
	if errors.Is(err, pgx.ErrNoRows) {
		return Department{}, ErrDepartmentNotFound
	}
	return d, err
}

func (s *Store) CreateDepartment(ctx context.Context, name string, description *string) (int64, error) {
	var id int64
	err := s.DB.QueryRow(ctx, "INSERT INTO departments (name, description) VALUES ($1, $2) RETURNING id", name, description).Scan(&id)
	return id, err
}

func (s *Store) UpdateDepartment(ctx context.Context, id int64, in DepartmentInput) (bool, error) {
	tag, err := s.DB.Exec(ctx, `
    UPDATE departments SET
      name = COALESCE($1, name),
      description = COALESCE($2, description)
    WHERE id = $3
  `, in.Name, in.Description, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (s *Store) DeleteDepartment(ctx context.Context, id int64) (bool, error) {
	tag, err := s.DB.Exec(ctx, "DELETE FROM departments WHERE id = $1", id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (s *Store) DepartmentEmployeeCount(ctx context.Context, id int64) (int, error) {
	var count int
	err := s.DB.QueryRow(ctx, "SELECT COUNT(1) FROM employees WHERE department_id = $1", id).Scan(&count)
	return count, err
}

const selectPosition = `
    SELECT p.id, p.name, p.base_salary::float8, p.has_commission, p.commission_percentage::float8, p.description, p.created_at,
           (SELECT COUNT(1) FROM employees e WHERE e.position_id = p.id AND e.status = 'active')
    FROM positions p`

func scanPosition(row pgx.Row) (Position, error) {
	var p Position
	err := row.Scan(&p.ID, &p.Name, &p.BaseSalary, &p.HasCommission, &p.CommissionPercentage, &p.Description, &p.CreatedAt, &p.EmployeeCount)
	return p, err
}

func (s *Store) ListPositions(ctx context.Context) ([]Position, error) {
	rows, err := s.DB.Query(ctx, selectPosition+" ORDER BY p.name")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Position{}
	for rows.Next() {
		p, err := scanPosition(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *Store) GetPosition(ctx context.Context, id int64) (Position, error) {
	p, err := scanPosition(s.DB.QueryRow(ctx, selectPosition+" WHERE p.id = $1", id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Position{}, ErrPositionNotFound
	}
	return p, err
}

func (s *Store) CreatePosition(ctx context.Context, in PositionInput) (int64, error) {
	var id int64
	err := s.DB.QueryRow(ctx, `
    INSERT INTO positions (name, base_salary, has_commission, commission_percentage, description)
    VALUES ($1, COALESCE($2, 0), COALESCE($3, false), COALESCE($4, 0), $5)
    RETURNING id
  `, in.Name, in.BaseSalary, in.HasCommission, in.CommissionPercentage, in.Description).Scan(&id)
	return id, err
}

func (s *Store) UpdatePosition(ctx context.Context, id int64, in PositionInput) (bool, error) {
	tag, err := s.DB.Exec(ctx, `
    UPDATE positions SET
      name = COALESCE($1, name),
      base_salary = COALESCE($2, base_salary),
      has_commission = COALESCE($3, has_commission),
      commission_percentage = COALESCE($4, commission_percentage),
      description = COALESCE($5, description)
    WHERE id = $6
  `, in.Name, in.BaseSalary, in.HasCommission, in.CommissionPercentage, in.Description, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (s *Store) DeletePosition(ctx context.Context, id int64) (bool, error) {
	tag, err := s.DB.Exec(ctx, "DELETE FROM positions WHERE id = $1", id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (s *Store) PositionEmployeeCount(ctx context.Context, id int64) (int, error) {
	var count int
	err := s.DB.QueryRow(ctx, "SELECT COUNT(1) FROM employees WHERE position_id = $1", id).Scan(&count)
	return count, err
}
