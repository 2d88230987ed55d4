package employees

import (
	"testing"

	"rrhh/internal/domain/auth"
)

func sampleEmployee() *Employee {
	salary := 850.0
	bank := "Banco Pichincha"
	account := "2200112233"
	return &Employee{
		ID:            12,
		IDNumber:      "1712345678",
		Salary:        &salary,
		BankName:      &bank,
		AccountNumber: &account,
	}
}

func TestFilterSensitiveFieldsAdmin(t *testing.T) {
	emp := sampleEmployee()
	FilterSensitiveFields(emp, auth.UserContext{Role: auth.RoleAdmin, EmployeeID: 1})

	if emp.IDNumber == "" || emp.Salary == nil || emp.AccountNumber == nil {
		t.Fatal("admin should retain sensitive fields")
	}
}

func TestFilterSensitiveFieldsSupervisor(t *testing.T) {
	emp := sampleEmployee()
	FilterSensitiveFields(emp, auth.UserContext{Role: auth.RoleSupervisor, EmployeeID: 2})

	if emp.IDNumber != "" || emp.Salary != nil || emp.BankName != nil || emp.AccountNumber != nil {
		t.Fatal("supervisor should not see sensitive fields of others")
	}
}

func TestFilterSensitiveFieldsEmployeeSelf(t *testing.T) {
	emp := sampleEmployee()
	FilterSensitiveFields(emp, auth.UserContext{Role: auth.RoleEmployee, EmployeeID: 12})

	if emp.IDNumber == "" || emp.Salary == nil {
		t.Fatal("employee should see their own sensitive fields")
	}
}
