package sales

import "time"

type Sale struct {
	ID               int64     `json:"id"`
	EmployeeID       int64     `json:"employeeId"`
	SaleDate         time.Time `json:"saleDate"`
	InvoiceNumber    *string   `json:"invoiceNumber"`
	CustomerName     *string   `json:"customerName"`
	TotalAmount      float64   `json:"totalAmount"`
	CommissionAmount float64   `json:"commissionAmount"`
	Notes            *string   `json:"notes"`
	CreatedAt        time.Time `json:"createdAt"`
	EmployeeCode     string    `json:"employeeCode,omitempty"`
	FirstName        string    `json:"firstName,omitempty"`
	LastName         string    `json:"lastName,omitempty"`
}

type CreateInput struct {
	EmployeeID    *int64  `json:"employeeId" validate:"omitempty,gt=0"`
	SaleDate      *string `json:"saleDate" validate:"omitempty,datetime=2006-01-02"`
	InvoiceNumber *string `json:"invoiceNumber" validate:"omitempty,max=64"`
	CustomerName  *string `json:"customerName" validate:"omitempty,max=200"`
	TotalAmount   float64 `json:"totalAmount" validate:"gte=0"`
	Notes         *string `json:"notes"`
}

type UpdateInput struct {
	EmployeeID    *int64   `json:"employeeId" validate:"omitempty,gt=0"`
	SaleDate      *string  `json:"saleDate" validate:"omitempty,datetime=2006-01-02"`
	InvoiceNumber *string  `json:"invoiceNumber" validate:"omitempty,max=64"`
	CustomerName  *string  `json:"customerName" validate:"omitempty,max=200"`
	TotalAmount   *float64 `json:"totalAmount" validate:"omitempty,gte=0"`
	Notes         *string  `json:"notes"`
}

type Filter struct {
	EmployeeID int64
	From       *time.Time
	To         *time.Time
}

type Totals struct {
	Count            int     `json:"count"`
	TotalAmount      float64 `json:"totalAmount"`
	CommissionAmount float64 `json:"commissionAmount"`
}

type SummaryRow struct {
	EmployeeID       int64   `json:"employeeId"`
	EmployeeCode     string  `json:"employeeCode"`
	FirstName        string  `json:"firstName"`
	LastName         string  `json:"lastName"`
	SalesCount       int     `json:"salesCount"`
	TotalAmount      float64 `json:"totalAmount"`
	CommissionAmount float64 `json:"commissionAmount"`
}

// CommissionRate is the commission setting of an employee's position.
type CommissionRate struct {
	HasCommission bool
	Percentage    float64
}

// Record is a sale ready for persistence.
type Record struct {
	EmployeeID       int64
	SaleDate         time.Time
	InvoiceNumber    *string
	CustomerName     *string
	TotalAmount      float64
	CommissionAmount float64
	Notes            *string
}
