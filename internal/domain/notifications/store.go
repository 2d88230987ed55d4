package notifications

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"rrhh/internal/platform/querier"
)

type StoreAPI interface {
	Create(ctx context.Context, msg Message) (Notification, error)
	Recipient(ctx context.Context, employeeID int64) (string, error)
	List(ctx context.Context, employeeID int64, unreadOnly bool, limit, offset int) ([]Notification, error)
	Count(ctx context.Context, employeeID int64, unreadOnly bool) (int, error)
	MarkRead(ctx context.Context, employeeID, id int64) (Notification, error)
	MarkAllRead(ctx context.Context, employeeID int64) (int64, error)
}

type Store struct {
	DB querier.Querier
}

func NewStore(db querier.Querier) *Store {
	return &Store{DB: db}
}

const columns = `id, employee_id, type, title, body, entity_type, entity_id, read_at, created_at`

func scan(row pgx.Row) (Notification, error) {
	var n Notification
	err := row.Scan(&n.ID, &n.EmployeeID, &n.Type, &n.Title, &n.Body, &n.EntityType, &n.EntityID, &n.ReadAt, &n.CreatedAt)
	return n, err
}

func (s *Store) Create(ctx context.Context, msg Message) (Notification, error) {
	var entityType *string
	var entityID *int64
	if msg.EntityType != "" && msg.EntityID > 0 {
		entityType, entityID = &msg.EntityType, &msg.EntityID
	}
	return scan(s.DB.QueryRow(ctx, `
    INSERT INTO notifications (employee_id, type, title, body, entity_type, entity_id)
    VALUES ($1,$2,$3,$4,$5,$6)
    RETURNING `+columns, msg.EmployeeID, msg.Type, msg.Title, msg.Body, entityType, entityID))
}

func (s *Store) Recipient(ctx context.Context, employeeID int64) (string, error) {
	var email *string
	if err := s.DB.QueryRow(ctx, "SELECT email FROM employees WHERE id = $1", employeeID).Scan(&email); err != nil {
		return "", err
	}
	if email == nil {
		return "", nil
	}
	return *email, nil
}

func (s *Store) List(ctx context.Context, employeeID int64, unreadOnly bool, limit, offset int) ([]Notification, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT `+columns+`
    FROM notifications
    WHERE employee_id = $1 AND (NOT $2 OR read_at IS NULL)
    ORDER BY created_at DESC, id DESC
    LIMIT $3 OFFSET $4
  `, employeeID, unreadOnly, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Notification{}
	for rows.Next() {
		n, err := scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

func (s *Store) Count(ctx context.Context, employeeID int64, unreadOnly bool) (int, error) {
	var total int
	err := s.DB.QueryRow(ctx,
		"SELECT COUNT(1) FROM notifications WHERE employee_id = $1 AND (NOT $2 OR read_at IS NULL)",
		employeeID, unreadOnly).Scan(&total)
	return total, err
}

func (s *Store) MarkRead(ctx context.Context, employeeID, id int64) (Notification, error) {
	n, err := scan(s.DB.QueryRow(ctx, `
    UPDATE notifications SET read_at = COALESCE(read_at, now())
    WHERE employee_id = $1 AND id = $2
    RETURNING `+columns, employeeID, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Notification{}, ErrNotFound
	}
	return n, err
}

func (s *Store) MarkAllRead(ctx context.Context, employeeID int64) (int64, error) {
	tag, err := s.DB.Exec(ctx, "UPDATE notifications SET read_at = now() WHERE employee_id = $1 AND read_at IS NULL", employeeID)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
