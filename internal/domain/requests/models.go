package requests

import "time"

const (
	TypeVacation      = "vacation"
	TypeSickLeave     = "sick_leave"
	TypePersonalLeave = "personal_leave"
	TypeBereavement   = "bereavement"

	StatusPending   = "pending"
	StatusApproved  = "approved"
	StatusRejected  = "rejected"
	StatusCancelled = "cancelled"
)

var (
	Types    = []string{TypeVacation, TypeSickLeave, TypePersonalLeave, TypeBereavement}
	Statuses = []string{StatusPending, StatusApproved, StatusRejected, StatusCancelled}
)

type Request struct {
	ID                    int64      `json:"id"`
	EmployeeID            int64      `json:"employeeId"`
	RequestType           string     `json:"requestType"`
	StartDate             time.Time  `json:"startDate"`
	EndDate               time.Time  `json:"endDate"`
	DaysRequested         int        `json:"daysRequested"`
	Reason                string     `json:"reason"`
	MedicalCertificateURL *string    `json:"medicalCertificateUrl"`
	Status                string     `json:"status"`
	ReviewedBy            *int64     `json:"reviewedBy"`
	ReviewedAt            *time.Time `json:"reviewedAt"`
	ReviewNotes           *string    `json:"reviewNotes"`
	CreatedAt             time.Time  `json:"createdAt"`

	EmployeeCode          string  `json:"employeeCode,omitempty"`
	FirstName             string  `json:"firstName,omitempty"`
	LastName              string  `json:"lastName,omitempty"`
	Department            *string `json:"department,omitempty"`
	ReviewedByUsername    *string `json:"reviewedByUsername,omitempty"`
	VacationDaysAvailable *int    `json:"vacationDaysAvailable,omitempty"`
}

type CreateInput struct {
	RequestType           string  `json:"requestType" validate:"required,oneof=vacation sick_leave personal_leave bereavement"`
	StartDate             string  `json:"startDate" validate:"required,datetime=2006-01-02"`
	EndDate               string  `json:"endDate" validate:"required,datetime=2006-01-02"`
	Reason                string  `json:"reason" validate:"required"`
	MedicalCertificateURL *string `json:"medicalCertificateUrl" validate:"omitempty,max=2048"`
}

type ReviewInput struct {
	ReviewNotes *string `json:"reviewNotes"`
}

type Filter struct {
	Status      string
	RequestType string
	EmployeeID  int64
}

// NewRequest is a validated CreateInput ready for insertion.
type NewRequest struct {
	EmployeeID            int64
	RequestType           string
	StartDate             time.Time
	EndDate               time.Time
	DaysRequested         int
	Reason                string
	MedicalCertificateURL *string
}

// Snapshot is the locked state read at the start of a review.
type Snapshot struct {
	Request               Request
	VacationDaysAvailable int
}
