package notifications

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"rrhh/internal/domain/auth"
)

var ErrNotFound = errors.New("notification not found")

type Notification struct {
	ID         int64      `json:"id"`
	EmployeeID int64      `json:"employeeId"`
	Type       string     `json:"type"`
	Title      string     `json:"title"`
	Body       string     `json:"body"`
	EntityType *string    `json:"entityType"`
	EntityID   *int64     `json:"entityId"`
	ReadAt     *time.Time `json:"readAt"`
	CreatedAt  time.Time  `json:"createdAt"`
}

// Message is one notice addressed to an employee. EntityType and EntityID
// point at the row it is about, when there is one.
type Message struct {
	EmployeeID int64
	Type       string
	Title      string
	Body       string
	EntityType string
	EntityID   int64
}

// Notifier is what other domains depend on to reach an employee.
type Notifier interface {
	Notify(ctx context.Context, msg Message) error
}

type Mailer interface {
	Send(ctx context.Context, from, to, subject, body string) error
}

type Service struct {
	Store  StoreAPI
	Mailer Mailer
	From   string
}

func New(store StoreAPI, mailer Mailer, from string) *Service {
	return &Service{Store: store, Mailer: mailer, From: from}
}

// Notify stores the notice and mails it when the employee has an address.
// Mail failures are logged, never returned.
func (s *Service) Notify(ctx context.Context, msg Message) error {
	if _, err := s.Store.Create(ctx, msg); err != nil {
		return err
	}
	if s.Mailer == nil {
		return nil
	}
	to, err := s.Store.Recipient(ctx, msg.EmployeeID)
	if err != nil {
		slog.Warn("notification recipient lookup failed", "employeeId", msg.EmployeeID, "err", err)
		return nil
	}
	if strings.TrimSpace(to) == "" {
		return nil
	}
	if err := s.Mailer.Send(ctx, s.From, to, msg.Title, msg.Body); err != nil {
		slog.Warn("notification email send failed", "employeeId", msg.EmployeeID, "type", msg.Type, "err", err)
	}
	return nil
}

func (s *Service) List(ctx context.Context, user auth.UserContext, unreadOnly bool, limit, offset int) ([]Notification, error) {
	return s.Store.List(ctx, user.EmployeeID, unreadOnly, limit, offset)
}

func (s *Service) Count(ctx context.Context, user auth.UserContext, unreadOnly bool) (int, error) {
	return s.Store.Count(ctx, user.EmployeeID, unreadOnly)
}

// MarkRead only touches the caller's own notifications; anything else is not found.
func (s *Service) MarkRead(ctx context.Context, user auth.UserContext, id int64) (Notification, error) {
	return s.Store.MarkRead(ctx, user.EmployeeID, id)
}

func (s *Service) MarkAllRead(ctx context.Context, user auth.UserContext) (int64, error) {
	return s.Store.MarkAllRead(ctx, user.EmployeeID)
}

// Send delivers msg through n when one is configured and only logs failures,
// so a notice never undoes the change it reports.
func Send(ctx context.Context, n Notifier, msg Message) {
	if n == nil {
		return
	}
	if err := n.Notify(ctx, msg); err != nil {
		slog.Warn("notification failed", "employeeId", msg.EmployeeID, "type", msg.Type, "err", err)
	}
}
