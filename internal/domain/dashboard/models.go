package dashboard

import (
	"time"

	"rrhh/internal/domain/attendance"
	"rrhh/internal/domain/employees"
	"rrhh/internal/domain/payroll"
	"rrhh/internal/domain/requests"
)

type EmployeeCounts struct {
	Total      int `json:"total"`
	Active     int `json:"active"`
	OnVacation int `json:"onVacation"`
	Inactive   int `json:"inactive"`
}

type AttendanceDay struct {
	Date            string `json:"date"`
	TotalRegistered int    `json:"totalRegistered"`
	CheckedIn       int    `json:"checkedIn"`
	CheckedOut      int    `json:"checkedOut"`
	LateCount       int    `json:"lateCount"`
}

type PendingRequests struct {
	PendingCount      int `json:"pendingCount"`
	VacationRequests  int `json:"vacationRequests"`
	SickLeaveRequests int `json:"sickLeaveRequests"`
}

type SalesMonth struct {
	Month            int     `json:"month,omitempty"`
	Year             int     `json:"year,omitempty"`
	SalesCount       int     `json:"salesCount"`
	TotalSales       float64 `json:"totalSales"`
	TotalCommissions float64 `json:"totalCommissions"`
}

type PayrollMonth struct {
	Month          int     `json:"month"`
	Year           int     `json:"year"`
	EmployeesCount int     `json:"employeesCount"`
	TotalPayroll   float64 `json:"totalPayroll"`
}

type Seller struct {
	EmployeeID int64   `json:"employeeId"`
	FirstName  string  `json:"firstName"`
	LastName   string  `json:"lastName"`
	SalesCount int     `json:"salesCount"`
	TotalSales float64 `json:"totalSales"`
}

type DepartmentCount struct {
	Department    string `json:"department"`
	EmployeeCount int    `json:"employeeCount"`
}

type Admin struct {
	Employees       EmployeeCounts    `json:"employees"`
	Attendance      AttendanceDay     `json:"attendance"`
	Requests        PendingRequests   `json:"requests"`
	Sales           SalesMonth        `json:"sales"`
	Payroll         PayrollMonth      `json:"payroll"`
	TopSellers      []Seller          `json:"topSellers"`
	DepartmentStats []DepartmentCount `json:"departmentStats"`
}

type AttendanceMonth struct {
	DaysWorked    int     `json:"daysWorked"`
	LateDays      int     `json:"lateDays"`
	TotalHours    float64 `json:"totalHours"`
	OvertimeHours float64 `json:"overtimeHours"`
}

type RequestStats struct {
	Total    int `json:"total"`
	Pending  int `json:"pending"`
	Approved int `json:"approved"`
	Rejected int `json:"rejected"`
}

type EmployeeAttendance struct {
	Monthly AttendanceMonth    `json:"monthly"`
	Today   *attendance.Record `json:"today"`
}

type EmployeeRequests struct {
	Stats  RequestStats       `json:"stats"`
	Recent []requests.Request `json:"recent"`
}

type Employee struct {
	Employee    employees.Employee `json:"employee"`
	Attendance  EmployeeAttendance `json:"attendance"`
	Requests    EmployeeRequests   `json:"requests"`
	Sales       *SalesMonth        `json:"sales"`
	LastPayroll *payroll.Payroll   `json:"lastPayroll"`
}

type SalesByMonth struct {
	Month            int     `json:"month"`
	SalesCount       int     `json:"salesCount"`
	TotalSales       float64 `json:"totalSales"`
	TotalCommissions float64 `json:"totalCommissions"`
}

type PayrollByMonth struct {
	Month          int     `json:"month"`
	EmployeesCount int     `json:"employeesCount"`
	TotalPayroll   float64 `json:"totalPayroll"`
}

type AttendanceByMonth struct {
	Month         int     `json:"month"`
	TotalRecords  int     `json:"totalRecords"`
	LateCount     int     `json:"lateCount"`
	TotalOvertime float64 `json:"totalOvertime"`
}

type Monthly struct {
	Year              int                 `json:"year"`
	SalesByMonth      []SalesByMonth      `json:"salesByMonth"`
	PayrollByMonth    []PayrollByMonth    `json:"payrollByMonth"`
	AttendanceByMonth []AttendanceByMonth `json:"attendanceByMonth"`
}

// SummaryRow is one active employee's attendance totals over a range.
type SummaryRow struct {
	EmployeeID     int64    `json:"employeeId"`
	EmployeeCode   string   `json:"employeeCode"`
	FirstName      string   `json:"firstName"`
	LastName       string   `json:"lastName"`
	Department     *string  `json:"department"`
	DaysRegistered int      `json:"daysRegistered"`
	PresentDays    int      `json:"presentDays"`
	LateDays       int      `json:"lateDays"`
	AbsentDays     int      `json:"absentDays"`
	TotalHours     float64  `json:"totalHours"`
	OvertimeHours  float64  `json:"overtimeHours"`
	AvgDailyHours  *float64 `json:"avgDailyHours"`
}

// month identifies one calendar month; Day is the local date used for "today" queries.
type month struct {
	Day   time.Time
	Month int
	Year  int
}
