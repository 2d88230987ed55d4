package db

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"rrhh/internal/domain/auth"
	"rrhh/internal/platform/config"
)

type seedPosition struct {
	name       string
	baseSalary float64
	commission float64
}

var (
	seedDepartments = []string{"Administración", "Ventas", "Bodega"}
	seedPositions   = []seedPosition{
		{name: "Administrador", baseSalary: 800},
		{name: "Vendedor", baseSalary: 470, commission: 3},
		{name: "Bodeguero", baseSalary: 470},
	}
)

// Seed creates the base catalog and the first admin account. Every step is
// idempotent so it runs on each start.
func Seed(ctx context.Context, pool *pgxpool.Pool, cfg config.Config) error {
	if err := ensureDepartments(ctx, pool); err != nil {
		return fmt.Errorf("seed departments: %w", err)
	}
	if err := ensurePositions(ctx, pool); err != nil {
		return fmt.Errorf("seed positions: %w", err)
	}
	if err := ensureAdminUser(ctx, pool, cfg.SeedAdminUsername, cfg.SeedAdminPassword); err != nil {
		return fmt.Errorf("seed admin: %w", err)
	}
	return nil
}

func ensureDepartments(ctx context.Context, pool *pgxpool.Pool) error {
	for _, name := range seedDepartments {
		if _, err := pool.Exec(ctx, "INSERT INTO departments (name) VALUES ($1) ON CONFLICT (name) DO NOTHING", name); err != nil {
			return err
		}
	}
	return nil
}

func ensurePositions(ctx context.Context, pool *pgxpool.Pool) error {
	for _, p := range seedPositions {
		_, err := pool.Exec(ctx, `
    INSERT INTO positions (name, base_salary, has_commission, commission_percentage)
    VALUES ($1, $2, $3, $4)
    ON CONFLICT (name) DO NOTHING`, p.name, p.baseSalary, p.commission > 0, p.commission)
		if err != nil {
			return err
		}
	}
	return nil
}

func ensureAdminUser(ctx context.Context, pool *pgxpool.Pool, username, password string) error {
	username = strings.TrimSpace(username)
	if username == "" || strings.TrimSpace(password) == "" {
		slog.Warn("admin seed skipped", "reason", "SEED_ADMIN_USERNAME or SEED_ADMIN_PASSWORD empty")
		return nil
	}

	var id int64
	err := pool.QueryRow(ctx, "SELECT id FROM users WHERE username = $1", username).Scan(&id)
	if err == nil {
		return nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return err
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}

	tx, err := pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	var employeeID int64
	err = tx.QueryRow(ctx, `
    INSERT INTO employees (employee_code, first_name, last_name, id_number, hire_date, salary, department_id, position_id)
    VALUES (
      'EMP' || LPAD((SELECT COALESCE(MAX(CAST(SUBSTRING(employee_code FROM 4) AS INTEGER)), 0) + 1 FROM employees)::text, 4, '0'),
      'Administrador', 'Sistema', '0000000000', CURRENT_DATE, 0,
      (SELECT id FROM departments WHERE name = $1),
      (SELECT id FROM positions WHERE name = $2)
    )
    ON CONFLICT (id_number) DO UPDATE SET updated_at = employees.updated_at
    RETURNING id`, seedDepartments[0], seedPositions[0].name).Scan(&employeeID)
	if err != nil {
		return err
	}

	if _, err := tx.Exec(ctx,
		"INSERT INTO users (employee_id, username, password_hash, role) VALUES ($1, $2, $3, $4)",
		employeeID, username, hash, auth.RoleAdmin); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return err
	}
	slog.Info("admin user seeded", "username", username, "employeeId", employeeID)
	return nil
}
