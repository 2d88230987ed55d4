package payroll

import "time"

const (
	StatusPending = "pending"
	StatusPaid    = "paid"
)

var Statuses = []string{StatusPending, StatusPaid}

type Payroll struct {
	ID              int64      `json:"id"`
	EmployeeID      int64      `json:"employeeId"`
	PeriodStart     time.Time  `json:"periodStart"`
	PeriodEnd       time.Time  `json:"periodEnd"`
	BaseSalary      float64    `json:"baseSalary"`
	OvertimePay     float64    `json:"overtimePay"`
	Commission      float64    `json:"commission"`
	Bonuses         float64    `json:"bonuses"`
	IESSDeduction   float64    `json:"iessDeduction"`
	AdvancePayment  float64    `json:"advancePayment"`
	OtherDeductions float64    `json:"otherDeductions"`
	TotalIncome     float64    `json:"totalIncome"`
	TotalDeductions float64    `json:"totalDeductions"`
	NetSalary       float64    `json:"netSalary"`
	PaymentStatus   string     `json:"paymentStatus"`
	PaymentDate     *time.Time `json:"paymentDate"`
	Notes           *string    `json:"notes"`
	CreatedAt       time.Time  `json:"createdAt"`

	EmployeeCode  string  `json:"employeeCode,omitempty"`
	FirstName     string  `json:"firstName,omitempty"`
	LastName      string  `json:"lastName,omitempty"`
	IDNumber      string  `json:"idNumber,omitempty"`
	Department    *string `json:"department,omitempty"`
	Position      *string `json:"position,omitempty"`
	BankName      *string `json:"bankName,omitempty"`
	AccountNumber *string `json:"accountNumber,omitempty"`
}

// Components returns the stored money fields of p.
func (p Payroll) Components() Components {
	return Components{
		BaseSalary:      p.BaseSalary,
		OvertimePay:     p.OvertimePay,
		Commission:      p.Commission,
		Bonuses:         p.Bonuses,
		IESSDeduction:   p.IESSDeduction,
		AdvancePayment:  p.AdvancePayment,
		OtherDeductions: p.OtherDeductions,
		TotalIncome:     p.TotalIncome,
		TotalDeductions: p.TotalDeductions,
		NetSalary:       p.NetSalary,
	}
}

type CalculateInput struct {
	PeriodStart string  `json:"periodStart" validate:"required,datetime=2006-01-02"`
	PeriodEnd   string  `json:"periodEnd" validate:"required,datetime=2006-01-02"`
	EmployeeIDs []int64 `json:"employeeIds" validate:"omitempty,dive,gt=0"`
}

type UpdateInput struct {
	BaseSalary      *float64 `json:"baseSalary" validate:"omitempty,gte=0"`
	OvertimePay     *float64 `json:"overtimePay" validate:"omitempty,gte=0"`
	Commission      *float64 `json:"commission" validate:"omitempty,gte=0"`
	Bonuses         *float64 `json:"bonuses" validate:"omitempty,gte=0"`
	IESSDeduction   *float64 `json:"iessDeduction" validate:"omitempty,gte=0"`
	AdvancePayment  *float64 `json:"advancePayment" validate:"omitempty,gte=0"`
	OtherDeductions *float64 `json:"otherDeductions" validate:"omitempty,gte=0"`
	Notes           *string  `json:"notes"`
}

type MarkPaidInput struct {
	PaymentDate string  `json:"paymentDate" validate:"required,datetime=2006-01-02"`
	Notes       *string `json:"notes"`
}

type Filter struct {
	EmployeeID    int64
	PeriodStart   *time.Time
	PeriodEnd     *time.Time
	PaymentStatus string
	Year          int
	Month         int
}

type Totals struct {
	TotalBaseSalary float64 `json:"totalBaseSalary"`
	TotalNetSalary  float64 `json:"totalNetSalary"`
	TotalCommission float64 `json:"totalCommission"`
	TotalDeductions float64 `json:"totalDeductions"`
}

// Candidate is an active employee considered by a calculation run.
type Candidate struct {
	EmployeeID           int64
	EmployeeCode         string
	FirstName            string
	LastName             string
	Salary               float64
	HasCommission        bool
	CommissionPercentage float64
}

type Skipped struct {
	EmployeeID int64  `json:"employeeId"`
	Reason     string `json:"reason"`
}

const (
	SkipAlreadyCalculated = "already_calculated"
	SkipNotActive         = "not_active"
)

type CalculationResult struct {
	Payroll []Payroll `json:"payroll"`
	Skipped []Skipped `json:"skipped"`
}

type Summary struct {
	Year               int     `json:"year"`
	Month              int     `json:"month"`
	EmployeeCount      int     `json:"employeeCount"`
	TotalBaseSalary    float64 `json:"totalBaseSalary"`
	TotalOvertimePay   float64 `json:"totalOvertimePay"`
	TotalCommission    float64 `json:"totalCommission"`
	TotalBonuses       float64 `json:"totalBonuses"`
	TotalIncome        float64 `json:"totalIncome"`
	TotalIESSDeduction float64 `json:"totalIessDeduction"`
	TotalDeductions    float64 `json:"totalDeductions"`
	TotalNetSalary     float64 `json:"totalNetSalary"`
	PaidCount          int     `json:"paidCount"`
	PendingCount       int     `json:"pendingCount"`
}
