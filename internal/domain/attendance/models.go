package attendance

import "time"

const (
	StatusPresent = "present"
	StatusAbsent  = "absent"
	StatusLate    = "late"
	StatusHalfDay = "half_day"
	StatusHoliday = "holiday"
)

var Statuses = []string{StatusPresent, StatusAbsent, StatusLate, StatusHalfDay, StatusHoliday}

type Record struct {
	ID            int64     `json:"id"`
	EmployeeID    int64     `json:"employeeId"`
	Date          time.Time `json:"date"`
	CheckIn       *string   `json:"checkIn"`
	CheckOut      *string   `json:"checkOut"`
	HoursWorked   float64   `json:"hoursWorked"`
	OvertimeHours float64   `json:"overtimeHours"`
	IsLate        bool      `json:"isLate"`
	Status        string    `json:"status"`
	Notes         *string   `json:"notes"`
	CreatedAt     time.Time `json:"createdAt"`
	EmployeeCode  string    `json:"employeeCode,omitempty"`
	FirstName     string    `json:"firstName,omitempty"`
	LastName      string    `json:"lastName,omitempty"`
}

// Range restricts a query either to [From, To] or to one calendar month.
type Range struct {
	From  *time.Time
	To    *time.Time
	Month int
	Year  int
}

type Stats struct {
	TotalDays     int     `json:"totalDays"`
	PresentDays   int     `json:"presentDays"`
	LateDays      int     `json:"lateDays"`
	AbsentDays    int     `json:"absentDays"`
	TotalHours    float64 `json:"totalHours"`
	OvertimeHours float64 `json:"overtimeHours"`
}

type Today struct {
	HasCheckedIn  bool    `json:"hasCheckedIn"`
	HasCheckedOut bool    `json:"hasCheckedOut"`
	Attendance    *Record `json:"attendance,omitempty"`
}

type ReportRow struct {
	EmployeeID    int64   `json:"employeeId"`
	EmployeeCode  string  `json:"employeeCode"`
	FirstName     string  `json:"firstName"`
	LastName      string  `json:"lastName"`
	Department    *string `json:"department"`
	TotalDays     int     `json:"totalDays"`
	PresentDays   int     `json:"presentDays"`
	LateDays      int     `json:"lateDays"`
	AbsentDays    int     `json:"absentDays"`
	TotalHours    float64 `json:"totalHours"`
	OvertimeHours float64 `json:"overtimeHours"`
}

type ManualInput struct {
	EmployeeID int64   `json:"employeeId" validate:"required,gt=0"`
	Date       string  `json:"date" validate:"required,datetime=2006-01-02"`
	CheckIn    *string `json:"checkIn"`
	CheckOut   *string `json:"checkOut"`
	Status     string  `json:"status" validate:"required,oneof=present absent late half_day holiday"`
	Notes      *string `json:"notes"`
}

// ManualEntry is a validated ManualInput with derived hours.
type ManualEntry struct {
	EmployeeID    int64
	Date          time.Time
	CheckIn       *string
	CheckOut      *string
	HoursWorked   float64
	OvertimeHours float64
	IsLate        bool
	Status        string
	Notes         *string
}

// Summarize folds records into per-period statistics.
func Summarize(records []Record) Stats {
	stats := Stats{TotalDays: len(records)}
	var hours, overtime float64
	for _, r := range records {
		switch r.Status {
		case StatusPresent:
			stats.PresentDays++
		case StatusAbsent:
			stats.AbsentDays++
		}
		if r.IsLate {
			stats.LateDays++
		}
		hours += r.HoursWorked
		overtime += r.OvertimeHours
	}
	stats.TotalHours = round2(hours)
	stats.OvertimeHours = round2(overtime)
	return stats
}
