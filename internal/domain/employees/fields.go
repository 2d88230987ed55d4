package employees

import "rrhh/internal/domain/auth"

// FilterSensitiveFields blanks identity, salary and banking data unless the
// caller is an admin or the employee themself.
func FilterSensitiveFields(emp *Employee, user auth.UserContext) {
	if user.Owns(emp.ID) {
		return
	}
	emp.IDNumber = ""
	emp.Salary = nil
	emp.BankName = nil
	emp.AccountNumber = nil
	emp.EmergencyContactName = nil
	emp.EmergencyContactPhone = nil
}
