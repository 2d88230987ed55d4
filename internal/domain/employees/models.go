package employees

import "time"

const (
	StatusActive   = "active"
	StatusInactive = "inactive"
	StatusVacation = "vacation"
)

var Statuses = []string{StatusActive, StatusInactive, StatusVacation}

type Employee struct {
	ID                    int64      `json:"id"`
	EmployeeCode          string     `json:"employeeCode"`
	FirstName             string     `json:"firstName"`
	LastName              string     `json:"lastName"`
	IDNumber              string     `json:"idNumber,omitempty"`
	BirthDate             *time.Time `json:"birthDate"`
	Gender                *string    `json:"gender"`
	Email                 *string    `json:"email"`
	Phone                 *string    `json:"phone"`
	Address               *string    `json:"address"`
	DepartmentID          *int64     `json:"departmentId"`
	DepartmentName        *string    `json:"departmentName"`
	PositionID            *int64     `json:"positionId"`
	PositionName          *string    `json:"positionName"`
	HasCommission         bool       `json:"hasCommission"`
	CommissionPercentage  float64    `json:"commissionPercentage"`
	HireDate              time.Time  `json:"hireDate"`
	Salary                *float64   `json:"salary,omitempty"`
	Status                string     `json:"status"`
	BankName              *string    `json:"bankName,omitempty"`
	AccountNumber         *string    `json:"accountNumber,omitempty"`
	EmergencyContactName  *string    `json:"emergencyContactName,omitempty"`
	EmergencyContactPhone *string    `json:"emergencyContactPhone,omitempty"`
	VacationDaysTotal     int        `json:"vacationDaysTotal"`
	VacationDaysUsed      int        `json:"vacationDaysUsed"`
	VacationDaysAvailable int        `json:"vacationDaysAvailable"`
	ProfilePhotoURL       *string    `json:"profilePhotoUrl"`
	CreatedAt             time.Time  `json:"createdAt"`
	UpdatedAt             time.Time  `json:"updatedAt"`
}

func (e Employee) FullName() string {
	return e.FirstName + " " + e.LastName
}

type Filter struct {
	Status       string
	DepartmentID int64
	PositionID   int64
	Search       string
	Limit        int
	Offset       int
}

type CreateInput struct {
	FirstName             string   `json:"firstName" validate:"required"`
	LastName              string   `json:"lastName" validate:"required"`
	IDNumber              string   `json:"idNumber" validate:"required"`
	BirthDate             *string  `json:"birthDate" validate:"omitempty,datetime=2006-01-02"`
	Gender                *string  `json:"gender"`
	Email                 *string  `json:"email" validate:"omitempty,email"`
	Phone                 *string  `json:"phone"`
	Address               *string  `json:"address"`
	DepartmentID          int64    `json:"departmentId" validate:"required,gt=0"`
	PositionID            int64    `json:"positionId" validate:"required,gt=0"`
	HireDate              string   `json:"hireDate" validate:"required,datetime=2006-01-02"`
	Salary                *float64 `json:"salary" validate:"required,gte=0"`
	BankName              *string  `json:"bankName"`
	AccountNumber         *string  `json:"accountNumber"`
	EmergencyContactName  *string  `json:"emergencyContactName"`
	EmergencyContactPhone *string  `json:"emergencyContactPhone"`
}

// UpdateInput is a partial update: nil fields keep their stored value.
type UpdateInput struct {
	FirstName             *string  `json:"firstName" validate:"omitempty,min=1"`
	LastName              *string  `json:"lastName" validate:"omitempty,min=1"`
	BirthDate             *string  `json:"birthDate" validate:"omitempty,datetime=2006-01-02"`
	Gender                *string  `json:"gender"`
	Email                 *string  `json:"email" validate:"omitempty,email"`
	Phone                 *string  `json:"phone"`
	Address               *string  `json:"address"`
	DepartmentID          *int64   `json:"departmentId" validate:"omitempty,gt=0"`
	PositionID            *int64   `json:"positionId" validate:"omitempty,gt=0"`
	Salary                *float64 `json:"salary" validate:"omitempty,gte=0"`
	Status                *string  `json:"status" validate:"omitempty,oneof=active inactive vacation"`
	BankName              *string  `json:"bankName"`
	AccountNumber         *string  `json:"accountNumber"`
	EmergencyContactName  *string  `json:"emergencyContactName"`
	EmergencyContactPhone *string  `json:"emergencyContactPhone"`
}

type VacationBalance struct {
	EmployeeID            int64     `json:"employeeId"`
	VacationDaysTotal     int       `json:"vacationDaysTotal"`
	VacationDaysUsed      int       `json:"vacationDaysUsed"`
	VacationDaysAvailable int       `json:"vacationDaysAvailable"`
	HireDate              time.Time `json:"hireDate"`
}
