package sales

import (
	"context"
	"errors"
	"time"

	"rrhh/internal/domain/audit"
	"rrhh/internal/domain/auth"
	"rrhh/internal/platform/querier"
)

var (
	ErrNotFound         = errors.New("sale not found")
	ErrEmployeeNotFound = errors.New("employee not found")
	ErrForbidden        = errors.New("forbidden")
	ErrInvalidDate      = errors.New("invalid sale date")
)

type Service struct {
	Store    StoreAPI
	Audit    audit.Recorder
	Location *time.Location
	Now      func() time.Time
}

func NewService(store StoreAPI, recorder audit.Recorder, loc *time.Location) *Service {
	if loc == nil {
		loc = time.UTC
	}
	return &Service{Store: store, Audit: recorder, Location: loc, Now: time.Now}
}

func (s *Service) today() time.Time {
	now := s.Now().In(s.Location)
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}

// Create records a sale. Admins may book sales for anyone; other callers only for themselves.
func (s *Service) Create(ctx context.Context, user auth.UserContext, in CreateInput) (Sale, error) {
	employeeID := user.EmployeeID
	if in.EmployeeID != nil {
		employeeID = *in.EmployeeID
	}
	if !user.Owns(employeeID) {
		return Sale{}, ErrForbidden
	}
	saleDate := s.today()
	if in.SaleDate != nil && *in.SaleDate != "" {
		parsed, err := time.Parse(time.DateOnly, *in.SaleDate)
		if err != nil {
			return Sale{}, ErrInvalidDate
		}
		saleDate = parsed
	}

	rate, err := s.Store.CommissionRate(ctx, employeeID)
	if err != nil {
		return Sale{}, err
	}
	rec := Record{
		EmployeeID:       employeeID,
		SaleDate:         saleDate,
		InvoiceNumber:    in.InvoiceNumber,
		CustomerName:     in.CustomerName,
		TotalAmount:      in.TotalAmount,
		CommissionAmount: Commission(in.TotalAmount, rate),
		Notes:            in.Notes,
	}
	id, err := s.Store.Create(ctx, rec)
	if querier.IsForeignKeyViolation(err) {
		return Sale{}, ErrEmployeeNotFound
	}
	if err != nil {
		return Sale{}, err
	}
	audit.Log(ctx, s.Audit, user.UserID, "sale.create", "sale", id, nil, rec)
	return s.Store.Get(ctx, id)
}

// List returns sales with their aggregated totals.
func (s *Service) List(ctx context.Context, filter Filter) ([]Sale, Totals, error) {
	list, err := s.Store.List(ctx, filter)
	if err != nil {
		return nil, Totals{}, err
	}
	return list, Sum(list), nil
}

func (s *Service) Mine(ctx context.Context, user auth.UserContext, filter Filter) ([]Sale, Totals, error) {
	filter.EmployeeID = user.EmployeeID
	return s.List(ctx, filter)
}

func (s *Service) Get(ctx context.Context, user auth.UserContext, id int64) (Sale, error) {
	sale, err := s.Store.Get(ctx, id)
	if err != nil {
		return Sale{}, err
	}
	if !user.CanReview() && !user.Owns(sale.EmployeeID) {
		return Sale{}, ErrForbidden
	}
	return sale, nil
}

// Update merges in into the stored sale and recomputes the commission with the
// current rate of the (possibly new) seller.
func (s *Service) Update(ctx context.Context, user auth.UserContext, id int64, in UpdateInput) (Sale, error) {
	current, err := s.Store.Get(ctx, id)
	if err != nil {
		return Sale{}, err
	}
	rec := Record{
		EmployeeID:    current.EmployeeID,
		SaleDate:      current.SaleDate,
		InvoiceNumber: current.InvoiceNumber,
		CustomerName:  current.CustomerName,
		TotalAmount:   current.TotalAmount,
		Notes:         current.Notes,
	}
	if in.EmployeeID != nil {
		rec.EmployeeID = *in.EmployeeID
	}
	if in.SaleDate != nil {
		parsed, err := time.Parse(time.DateOnly, *in.SaleDate)
		if err != nil {
			return Sale{}, ErrInvalidDate
		}
		rec.SaleDate = parsed
	}
	if in.InvoiceNumber != nil {
		rec.InvoiceNumber = in.InvoiceNumber
	}
	if in.CustomerName != nil {
		rec.CustomerName = in.CustomerName
	}
	if in.TotalAmount != nil {
		rec.TotalAmount = *in.TotalAmount
	}
	if in.Notes != nil {
		rec.Notes = in.Notes
	}

	rate, err := s.Store.CommissionRate(ctx, rec.EmployeeID)
	if err != nil {
		return Sale{}, err
	}
	rec.CommissionAmount = Commission(rec.TotalAmount, rate)
	if err := s.Store.Update(ctx, id, rec); err != nil {
		if querier.IsForeignKeyViolation(err) {
			return Sale{}, ErrEmployeeNotFound
		}
		return Sale{}, err
	}
	audit.Log(ctx, s.Audit, user.UserID, "sale.update", "sale", id, current, rec)
	return s.Store.Get(ctx, id)
}

func (s *Service) Delete(ctx context.Context, user auth.UserContext, id int64) error {
	ok, err := s.Store.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotFound
	}
	audit.Log(ctx, s.Audit, user.UserID, "sale.delete", "sale", id, nil, nil)
	return nil
}

// Summary aggregates sales per employee for one month. Zero month or year
// falls back to the current one.
func (s *Service) Summary(ctx context.Context, month, year int) ([]SummaryRow, int, int, error) {
	today := s.today()
	if month <= 0 {
		month = int(today.Month())
	}
	if year <= 0 {
		year = today.Year()
	}
	rows, err := s.Store.Summary(ctx, month, year)
	return rows, month, year, err
}
