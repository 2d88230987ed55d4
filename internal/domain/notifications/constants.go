package notifications

const (
	TypeRequestApproved = "request_approved"
	TypeRequestRejected = "request_rejected"
	TypePayrollPaid     = "payroll_paid"
	TypeVacationStarted = "vacation_started"
	TypeVacationEnded   = "vacation_ended"
)
