package sales

import (
	"context"
	"errors"
	"fmt"

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
	CommissionRate(ctx context.Context, employeeID int64) (CommissionRate, error)
	Create(ctx context.Context, rec Record) (int64, error)
	Get(ctx context.Context, id int64) (Sale, error)
	List(ctx context.Context, filter Filter) ([]Sale, error)
	Update(ctx context.Context, id int64, rec Record) error
	Delete(ctx context.Context, id int64) (bool, error)
	Summary(ctx context.Context, month, year int) ([]SummaryRow, error)
}

func (s *Store) CommissionRate(ctx context.Context, employeeID int64) (CommissionRate, error) {
	var rate CommissionRate
	err := s.DB.QueryRow(ctx, `
    SELECT COALESCE(p.has_commission, false), COALESCE(p.commission_percentage, 0)::float8
    FROM employees e
    LEFT JOIN positions p ON p.id = e.position_id
    WHERE e.id = $1
  `, employeeID).Scan(&rate.HasCommission, &rate.Percentage)
	if errors.Is(err, pgx.ErrNoRows) {
		return CommissionRate{}, ErrEmployeeNotFound
	}
	return rate, err
}

func (s *Store) Create(ctx context.Context, rec Record) (int64, error) {
	var id int64
	err := s.DB.QueryRow(ctx, `
    INSERT INTO sales (employee_id, sale_date, invoice_number, customer_name, total_amount, commission_amount, notes)
    VALUES ($1, $2, $3, $4, $5, $6, $7)
    RETURNING id
  `, rec.EmployeeID, rec.SaleDate, rec.InvoiceNumber, rec.CustomerName, rec.TotalAmount, rec.CommissionAmount, rec.Notes).Scan(&id)
	return id, err
}

const selectSale = `
    SELECT s.id, s.employee_id, s.sale_date, s.invoice_number, s.customer_name, s.total_amount::float8,
           s.commission_amount::float8, s.notes, s.created_at, e.employee_code, e.first_name, e.last_name
    FROM sales s
    JOIN employees e ON e.id = s.employee_id`

func scanSale(row pgx.Row) (Sale, error) {
	var s Sale
	err := row.Scan(&s.ID, &s.EmployeeID, &s.SaleDate, &s.InvoiceNumber, &s.CustomerName, &s.TotalAmount,
		&s.CommissionAmount, &s.Notes, &s.CreatedAt, &s.EmployeeCode, &s.FirstName, &s.LastName)
	return s, err
}

func (s *Store) Get(ctx context.Context, id int64) (Sale, error) {
	sale, err := scanSale(s.DB.QueryRow(ctx, selectSale+" WHERE s.id = $1", id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Sale{}, ErrNotFound
	}
	return sale, err
}

func (s *Store) List(ctx context.Context, filter Filter) ([]Sale, error) {
	query := selectSale + " WHERE 1=1"
	args := []any{}
	if filter.EmployeeID > 0 {
		args = append(args, filter.EmployeeID)
		query += fmt.Sprintf(" AND s.employee_id = $%d", len(args))
	}
	if filter.From != nil {
		args = append(args, *filter.From)
		query += fmt.Sprintf(" AND s.sale_date >= $%d", len(args))
	}
	if filter.To != nil {
		args = append(args, *filter.To)
		query += fmt.Sprintf(" AND s.sale_date <= $%d", len(args))
	}
	query += " ORDER BY s.sale_date DESC, s.id DESC"

	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Sale{}
	for rows.Next() {
		sale, err := scanSale(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, sale)
	}
	return out, rows.Err()
}

func (s *Store) Update(ctx context.Context, id int64, rec Record) error {
	_, err := s.DB.Exec(ctx, `
    UPDATE sales SET employee_id = $1, sale_date = $2, invoice_number = $3, customer_name = $4,
      total_amount = $5, commission_amount = $6, notes = $7
    WHERE id = $8
  `, rec.EmployeeID, rec.SaleDate, rec.InvoiceNumber, rec.CustomerName, rec.TotalAmount, rec.CommissionAmount, rec.Notes, id)
	return err
}

func (s *Store) Delete(ctx context.Context, id int64) (bool, error) {
	tag, err := s.DB.Exec(ctx, "DELETE FROM sales WHERE id = $1", id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (s *Store) Summary(ctx context.Context, month, year int) ([]SummaryRow, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT e.id, e.employee_code, e.first_name, e.last_name,
           COUNT(s.id),
           COALESCE(SUM(s.total_amount), 0)::float8,
           COALESCE(SUM(s.commission_amount), 0)::float8
    FROM employees e
    JOIN sales s ON s.employee_id = e.id
    WHERE EXTRACT(MONTH FROM s.sale_date) = $1 AND EXTRACT(YEAR FROM s.sale_date) = $2
    GROUP BY e.id, e.employee_code, e.first_name, e.last_name
    ORDER BY 6 DESC
  `, month, year)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []SummaryRow{}
	for rows.Next() {
		var r SummaryRow
		if err := rows.Scan(&r.EmployeeID, &r.EmployeeCode, &r.FirstName, &r.LastName, &r.SalesCount, &r.TotalAmount, &r.CommissionAmount); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
