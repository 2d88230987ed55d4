package payroll

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"rrhh/internal/domain/audit"
	"rrhh/internal/domain/auth"
	"rrhh/internal/domain/notifications"
)

var (
	ErrNotFound      = errors.New("payroll record not found")
	ErrForbidden     = errors.New("forbidden")
	ErrInvalidState  = errors.New("only pending payroll records can be modified")
	ErrInvalidPeriod = errors.New("period end must not be before period start")
	ErrInvalidDate   = errors.New("invalid date")
)

type Service struct {
	Store    StoreAPI
	Policy   Policy
	Audit    audit.Recorder
	Notifier notifications.Notifier
	Company  string
}

func NewService(store StoreAPI, policy Policy, recorder audit.Recorder, company string) *Service {
	return &Service{Store: store, Policy: policy, Audit: recorder, Company: company}
}

func parsePeriod(startValue, endValue string) (time.Time, time.Time, error) {
	start, err := time.Parse(time.DateOnly, startValue)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: periodStart", ErrInvalidDate)
	}
	end, err := time.Parse(time.DateOnly, endValue)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: periodEnd", ErrInvalidDate)
	}
	if end.Before(start) {
		return time.Time{}, time.Time{}, ErrInvalidPeriod
	}
	return start, end, nil
}

// Calculate computes and stores one payroll row per active employee for the
// period. Every row is written in a single transaction; employees already
// calculated for the exact period are skipped.
func (s *Service) Calculate(ctx context.Context, user auth.UserContext, in CalculateInput) (CalculationResult, error) {
	start, end, err := parsePeriod(in.PeriodStart, in.PeriodEnd)
	if err != nil {
		return CalculationResult{}, err
	}

	result := CalculationResult{Payroll: []Payroll{}, Skipped: []Skipped{}}
	err = s.Store.InTx(ctx, func(tx StoreAPI) error {
		candidates, err := tx.Candidates(ctx, in.EmployeeIDs)
		if err != nil {
			return fmt.Errorf("load employees: %w", err)
		}
		seen := make(map[int64]bool, len(candidates))
		for _, c := range candidates {
			seen[c.EmployeeID] = true
			exists, err := tx.Exists(ctx, c.EmployeeID, start, end)
			if err != nil {
				return err
			}
			if exists {
				result.Skipped = append(result.Skipped, Skipped{EmployeeID: c.EmployeeID, Reason: SkipAlreadyCalculated})
				continue
			}
			inputs, err := gatherInputs(ctx, tx, c, start, end)
			if err != nil {
				return fmt.Errorf("employee %d: %w", c.EmployeeID, err)
			}
			row, err := tx.Insert(ctx, c.EmployeeID, start, end, Compute(s.Policy, inputs))
			if err != nil {
				return fmt.Errorf("employee %d: insert: %w", c.EmployeeID, err)
			}
			row.EmployeeCode, row.FirstName, row.LastName = c.EmployeeCode, c.FirstName, c.LastName
			result.Payroll = append(result.Payroll, row)
		}
		for _, id := range in.EmployeeIDs {
			if !seen[id] {
				seen[id] = true
				result.Skipped = append(result.Skipped, Skipped{EmployeeID: id, Reason: SkipNotActive})
			}
		}
		return nil
	})
	if err != nil {
		return CalculationResult{}, err
	}

	slog.Info("payroll calculated",
		"period_start", in.PeriodStart, "period_end", in.PeriodEnd,
		"created", len(result.Payroll), "skipped", len(result.Skipped))
	for _, row := range result.Payroll {
		audit.Log(ctx, s.Audit, user.UserID, "payroll.calculate", "payroll", row.ID, nil, row)
	}
	return result, nil
}

func gatherInputs(ctx context.Context, tx StoreAPI, c Candidate, start, end time.Time) (Inputs, error) {
	in := Inputs{
		BaseSalary:           c.Salary,
		HasCommission:        c.HasCommission,
		CommissionPercentage: c.CommissionPercentage,
	}
	var err error
	if in.OvertimeHours, err = tx.OvertimeHours(ctx, c.EmployeeID, start, end); err != nil {
		return Inputs{}, fmt.Errorf("overtime: %w", err)
	}
	if c.HasCommission {
		if in.SalesTotal, err = tx.SalesTotal(ctx, c.EmployeeID, start, end); err != nil {
			return Inputs{}, fmt.Errorf("sales: %w", err)
		}
	}
	if in.Advances, err = tx.Advances(ctx, c.EmployeeID, start, end); err != nil {
		return Inputs{}, fmt.Errorf("advances: %w", err)
	}
	return in, nil
}

func (s *Service) List(ctx context.Context, filter Filter) ([]Payroll, Totals, error) {
	rows, err := s.Store.List(ctx, filter)
	if err != nil {
		return nil, Totals{}, err
	}
	return rows, Sum(rows), nil
}

func (s *Service) Mine(ctx context.Context, user auth.UserContext, year, month int) ([]Payroll, error) {
	return s.Store.List(ctx, Filter{EmployeeID: user.EmployeeID, Year: year, Month: month})
}

// Get returns a payroll row to an admin or to the employee it pays.
func (s *Service) Get(ctx context.Context, user auth.UserContext, id int64) (Payroll, error) {
	p, err := s.Store.Get(ctx, id)
	if err != nil {
		return Payroll{}, err
	}
	if !user.Owns(p.EmployeeID) {
		return Payroll{}, ErrForbidden
	}
	return p, nil
}

// Update overlays the supplied components on a pending row and recomputes its totals.
func (s *Service) Update(ctx context.Context, user auth.UserContext, id int64, in UpdateInput) (Payroll, error) {
	var before, after Payroll
	err := s.Store.InTx(ctx, func(tx StoreAPI) error {
		current, err := tx.Lock(ctx, id)
		if err != nil {
			return err
		}
		if current.PaymentStatus != StatusPending {
			return ErrInvalidState
		}
		before = current
		after, err = tx.UpdateComponents(ctx, id, Merge(current.Components(), in), in.Notes)
		return err
	})
	if err != nil {
		return Payroll{}, err
	}
	audit.Log(ctx, s.Audit, user.UserID, "payroll.update", "payroll", id, before, after)
	return after, nil
}

func (s *Service) MarkPaid(ctx context.Context, user auth.UserContext, id int64, in MarkPaidInput) (Payroll, error) {
	paymentDate, err := time.Parse(time.DateOnly, in.PaymentDate)
	if err != nil {
		return Payroll{}, fmt.Errorf("%w: paymentDate", ErrInvalidDate)
	}
	p, err := s.Store.MarkPaid(ctx, id, paymentDate, in.Notes)
	if err != nil {
		return Payroll{}, err
	}
	audit.Log(ctx, s.Audit, user.UserID, "payroll.mark_paid", "payroll", id, nil, p)
	notifications.Send(ctx, s.Notifier, notifications.Message{
		EmployeeID: p.EmployeeID,
		Type:       notifications.TypePayrollPaid,
		Title:      "Payroll paid",
		Body: fmt.Sprintf("Your payroll for %s to %s was paid on %s. Net salary: %.2f.",
			p.PeriodStart.Format(time.DateOnly), p.PeriodEnd.Format(time.DateOnly), paymentDate.Format(time.DateOnly), p.NetSalary),
		EntityType: "payroll",
		EntityID:   id,
	})
	return p, nil
}

func (s *Service) Delete(ctx context.Context, user auth.UserContext, id int64) (Payroll, error) {
	p, err := s.Store.DeletePending(ctx, id)
	if err != nil {
		return Payroll{}, err
	}
	audit.Log(ctx, s.Audit, user.UserID, "payroll.delete", "payroll", id, p, nil)
	return p, nil
}

func (s *Service) Summary(ctx context.Context, year, month int) (Summary, error) {
	return s.Store.Summary(ctx, year, month)
}

// Payslip writes the PDF payslip of one row, subject to the same access rule as Get.
func (s *Service) Payslip(ctx context.Context, user auth.UserContext, id int64, w io.Writer) (Payroll, error) {
	p, err := s.Get(ctx, user, id)
	if err != nil {
		return Payroll{}, err
	}
	if err := WritePayslip(w, s.Company, p); err != nil {
		return Payroll{}, fmt.Errorf("render payslip: %w", err)
	}
	return p, nil
}

func (s *Service) Export(ctx context.Context, filter Filter, w io.Writer) error {
	rows, totals, err := s.List(ctx, filter)
	if err != nil {
		return err
	}
	return WriteRegister(w, rows, totals)
}
