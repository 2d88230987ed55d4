package payroll

import "github.com/shopspring/decimal"

// Policy carries the statutory constants of the payroll formula.
type Policy struct {
	MonthlyHours       float64
	OvertimeMultiplier float64
	IESSRate           float64
}

func DefaultPolicy() Policy {
	return Policy{MonthlyHours: 240, OvertimeMultiplier: 1.5, IESSRate: 0.0945}
}

// Inputs are the per-employee aggregates gathered for one period.
type Inputs struct {
	BaseSalary           float64
	OvertimeHours        float64
	SalesTotal           float64
	HasCommission        bool
	CommissionPercentage float64
	Advances             float64
}

// Components are the money columns of one payroll row, rounded to cents.
type Components struct {
	BaseSalary      float64
	OvertimePay     float64
	Commission      float64
	Bonuses         float64
	IESSDeduction   float64
	AdvancePayment  float64
	OtherDeductions float64
	TotalIncome     float64
	TotalDeductions float64
	NetSalary       float64
}

var hundred = decimal.NewFromInt(100)

func dec(v float64) decimal.Decimal {
	return decimal.NewFromFloat(v)
}

func cents(d decimal.Decimal) float64 {
	return d.Round(2).InexactFloat64()
}

// Compute applies the payroll formula:
//
//	overtime pay = overtime hours * (base / monthly hours) * multiplier
//	commission   = sales * percentage / 100, only for commissioned positions
//	iess         = base * rate
//	net          = (base + overtime + commission + bonuses) - (iess + advances + other)
func Compute(p Policy, in Inputs) Components {
	base := dec(in.BaseSalary)

	overtime := decimal.Zero
	if p.MonthlyHours > 0 {
		hourly := base.Div(dec(p.MonthlyHours))
		overtime = dec(in.OvertimeHours).Mul(hourly).Mul(dec(p.OvertimeMultiplier))
	}

	commission := decimal.Zero
	if in.HasCommission {
		commission = dec(in.SalesTotal).Mul(dec(in.CommissionPercentage)).Div(hundred)
	}

	return Totalize(Components{
		BaseSalary:     cents(base),
		OvertimePay:    cents(overtime),
		Commission:     cents(commission),
		IESSDeduction:  cents(base.Mul(dec(p.IESSRate))),
		AdvancePayment: cents(dec(in.Advances)),
	})
}

// Totalize recomputes income, deductions and net from the component fields.
func Totalize(c Components) Components {
	income := dec(c.BaseSalary).Add(dec(c.OvertimePay)).Add(dec(c.Commission)).Add(dec(c.Bonuses))
	deductions := dec(c.IESSDeduction).Add(dec(c.AdvancePayment)).Add(dec(c.OtherDeductions))
	c.TotalIncome = cents(income)
	c.TotalDeductions = cents(deductions)
	c.NetSalary = cents(income.Sub(deductions))
	return c
}

// Merge overlays the non-nil fields of in on c and recomputes the totals.
func Merge(c Components, in UpdateInput) Components {
	set := func(dst *float64, src *float64) {
		if src != nil {
			*dst = cents(dec(*src))
		}
	}
	set(&c.BaseSalary, in.BaseSalary)
	set(&c.OvertimePay, in.OvertimePay)
	set(&c.Commission, in.Commission)
	set(&c.Bonuses, in.Bonuses)
	set(&c.IESSDeduction, in.IESSDeduction)
	set(&c.AdvancePayment, in.AdvancePayment)
	set(&c.OtherDeductions, in.OtherDeductions)
	return Totalize(c)
}

// Sum totals a payroll listing.
func Sum(rows []Payroll) Totals {
	base, net, commission, deductions := decimal.Zero, decimal.Zero, decimal.Zero, decimal.Zero
	for _, r := range rows {
		base = base.Add(dec(r.BaseSalary))
		net = net.Add(dec(r.NetSalary))
		commission = commission.Add(dec(r.Commission))
		deductions = deductions.Add(dec(r.TotalDeductions))
	}
	return Totals{
		TotalBaseSalary: cents(base),
		TotalNetSalary:  cents(net),
		TotalCommission: cents(commission),
		TotalDeductions: cents(deductions),
	}
}
