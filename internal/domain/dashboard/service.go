package dashboard

import (
	"context"
	"fmt"
	"time"

	"rrhh/internal/domain/attendance"
	"rrhh/internal/domain/auth"
	"rrhh/internal/domain/employees"
	"rrhh/internal/domain/payroll"
	"rrhh/internal/domain/requests"
)

const (
	topSellersLimit = 5
	recentRequests  = 5
)

// Profiles, Days, Requests and Payroll are the row-level lookups the employee
// dashboard borrows from the owning domain stores.
type Profiles interface {
	Get(ctx context.Context, id int64) (employees.Employee, error)
}

type Days interface {
	FindDay(ctx context.Context, employeeID int64, day time.Time) (attendance.Record, bool, error)
}

type Requests interface {
	List(ctx context.Context, filter requests.Filter) ([]requests.Request, error)
}

type Payroll interface {
	List(ctx context.Context, filter payroll.Filter) ([]payroll.Payroll, error)
}

type Service struct {
	Store    StoreAPI
	Profiles Profiles
	Days     Days
	Requests Requests
	Payroll  Payroll
	Location *time.Location
	Now      func() time.Time
}

func NewService(store StoreAPI, profiles Profiles, days Days, reqs Requests, pay Payroll, loc *time.Location) *Service {
	if loc == nil {
		loc = time.UTC
	}
	return &Service{Store: store, Profiles: profiles, Days: days, Requests: reqs, Payroll: pay, Location: loc, Now: time.Now}
}

func (s *Service) today() month {
	now := s.Now().In(s.Location)
	return month{
		Day:   time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC),
		Month: int(now.Month()),
		Year:  now.Year(),
	}
}

func (s *Service) Admin(ctx context.Context) (Admin, error) {
	m := s.today()
	var out Admin
	var err error
	if out.Employees, err = s.Store.EmployeeCounts(ctx); err != nil {
		return Admin{}, fmt.Errorf("employees: %w", err)
	}
	if out.Attendance, err = s.Store.AttendanceDay(ctx, m.Day); err != nil {
		return Admin{}, fmt.Errorf("attendance: %w", err)
	}
	if out.Requests, err = s.Store.PendingRequests(ctx); err != nil {
		return Admin{}, fmt.Errorf("requests: %w", err)
	}
	if out.Sales, err = s.Store.SalesMonth(ctx, 0, m.Month, m.Year); err != nil {
		return Admin{}, fmt.Errorf("sales: %w", err)
	}
	if out.Payroll, err = s.Store.PendingPayrollMonth(ctx, m.Month, m.Year); err != nil {
		return Admin{}, fmt.Errorf("payroll: %w", err)
	}
	if out.TopSellers, err = s.Store.TopSellers(ctx, m.Month, m.Year, topSellersLimit); err != nil {
		return Admin{}, fmt.Errorf("top sellers: %w", err)
	}
	if out.DepartmentStats, err = s.Store.DepartmentStats(ctx); err != nil {
		return Admin{}, fmt.Errorf("departments: %w", err)
	}
	return out, nil
}

// Employee builds the caller's own dashboard. Sales are only reported for
// commissioned positions; LastPayroll is the most recently paid row.
func (s *Service) Employee(ctx context.Context, user auth.UserContext) (Employee, error) {
	m := s.today()
	var out Employee
	var err error

	if out.Employee, err = s.Profiles.Get(ctx, user.EmployeeID); err != nil {
		return Employee{}, err
	}
	if out.Attendance.Monthly, err = s.Store.AttendanceMonth(ctx, user.EmployeeID, m.Month, m.Year); err != nil {
		return Employee{}, fmt.Errorf("attendance: %w", err)
	}
	day, found, err := s.Days.FindDay(ctx, user.EmployeeID, m.Day)
	if err != nil {
		return Employee{}, fmt.Errorf("attendance today: %w", err)
	}
	if found {
		out.Attendance.Today = &day
	}

	if out.Requests.Stats, err = s.Store.RequestStats(ctx, user.EmployeeID); err != nil {
		return Employee{}, fmt.Errorf("requests: %w", err)
	}
	recent, err := s.Requests.List(ctx, requests.Filter{EmployeeID: user.EmployeeID})
	if err != nil {
		return Employee{}, fmt.Errorf("recent requests: %w", err)
	}
	if len(recent) > recentRequests {
		recent = recent[:recentRequests]
	}
	out.Requests.Recent = recent

	if out.Employee.HasCommission {
		sales, err := s.Store.SalesMonth(ctx, user.EmployeeID, m.Month, m.Year)
		if err != nil {
			return Employee{}, fmt.Errorf("sales: %w", err)
		}
		out.Sales = &sales
	}

	paid, err := s.Payroll.List(ctx, payroll.Filter{EmployeeID: user.EmployeeID, PaymentStatus: payroll.StatusPaid})
	if err != nil {
		return Employee{}, fmt.Errorf("payroll: %w", err)
	}
	out.LastPayroll = lastPaid(paid)
	return out, nil
}

func lastPaid(rows []payroll.Payroll) *payroll.Payroll {
	var last *payroll.Payroll
	for i := range rows {
		if rows[i].PaymentDate == nil {
			continue
		}
		if last == nil || rows[i].PaymentDate.After(*last.PaymentDate) {
			last = &rows[i]
		}
	}
	return last
}

// Monthly defaults to the current year when year is zero.
func (s *Service) Monthly(ctx context.Context, year int) (Monthly, error) {
	if year <= 0 {
		year = s.today().Year
	}
	out := Monthly{Year: year}
	var err error
	if out.SalesByMonth, err = s.Store.SalesByMonth(ctx, year); err != nil {
		return Monthly{}, fmt.Errorf("sales: %w", err)
	}
	if out.PayrollByMonth, err = s.Store.PayrollByMonth(ctx, year); err != nil {
		return Monthly{}, fmt.Errorf("payroll: %w", err)
	}
	if out.AttendanceByMonth, err = s.Store.AttendanceByMonth(ctx, year); err != nil {
		return Monthly{}, fmt.Errorf("attendance: %w", err)
	}
	return out, nil
}

func (s *Service) AttendanceSummary(ctx context.Context, rng attendance.Range) ([]SummaryRow, error) {
	return s.Store.AttendanceSummary(ctx, rng)
}
