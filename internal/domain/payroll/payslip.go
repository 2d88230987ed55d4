package payroll

import (
	"fmt"
	"io"

	"github.com/jung-kurt/gofpdf"
)

// WritePayslip renders a one-page PDF payslip for p.
func WritePayslip(w io.Writer, company string, p Payroll) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle(fmt.Sprintf("Rol de pagos %s", p.EmployeeCode), true)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(0, 10, tr(company))
	pdf.Ln(8)
	pdf.SetFont("Helvetica", "", 11)
	pdf.Cell(0, 8, "Rol de pagos")
	pdf.Ln(12)

	line := func(label, value string) {
		pdf.SetFont("Helvetica", "B", 10)
		pdf.CellFormat(45, 7, tr(label), "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 10)
		pdf.CellFormat(0, 7, tr(value), "", 1, "L", false, 0, "")
	}
	line("Empleado:", fmt.Sprintf("%s %s (%s)", p.FirstName, p.LastName, p.EmployeeCode))
	line("Cedula:", p.IDNumber)
	line("Departamento:", deref(p.Department))
	line("Cargo:", deref(p.Position))
	line("Periodo:", fmt.Sprintf("%s a %s", p.PeriodStart.Format("2006-01-02"), p.PeriodEnd.Format("2006-01-02")))
	if p.BankName != nil || p.AccountNumber != nil {
		line("Cuenta:", fmt.Sprintf("%s %s", deref(p.BankName), deref(p.AccountNumber)))
	}
	pdf.Ln(6)

	amount := func(label string, value float64, bold bool) {
		style := ""
		if bold {
			style = "B"
		}
		pdf.SetFont("Helvetica", style, 10)
		pdf.CellFormat(120, 7, tr(label), "B", 0, "L", false, 0, "")
		pdf.CellFormat(50, 7, fmt.Sprintf("%.2f", value), "B", 1, "R", false, 0, "")
	}

	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 8, "Ingresos")
	pdf.Ln(9)
	amount("Sueldo base", p.BaseSalary, false)
	amount("Horas extra", p.OvertimePay, false)
	amount("Comisiones", p.Commission, false)
	amount("Bonificaciones", p.Bonuses, false)
	amount("Total ingresos", p.TotalIncome, true)
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 8, "Descuentos")
	pdf.Ln(9)
	amount("Aporte IESS", p.IESSDeduction, false)
	amount("Anticipos", p.AdvancePayment, false)
	amount("Otros descuentos", p.OtherDeductions, false)
	amount("Total descuentos", p.TotalDeductions, true)
	pdf.Ln(4)

	amount("Neto a recibir", p.NetSalary, true)
	pdf.Ln(6)
	pdf.SetFont("Helvetica", "I", 9)
	status := "Pendiente de pago"
	if p.PaymentStatus == StatusPaid && p.PaymentDate != nil {
		status = "Pagado el " + p.PaymentDate.Format("2006-01-02")
	}
	pdf.Cell(0, 6, status)

	return pdf.Output(w)
}

func deref(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}
