package payroll

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

const registerSheet = "Nomina"

var registerHeaders = []string{
	"Codigo", "Empleado", "Departamento", "Cargo", "Inicio", "Fin",
	"Sueldo base", "Horas extra", "Comision", "Bonos", "IESS", "Anticipos", "Otros",
	"Total ingresos", "Total descuentos", "Neto", "Estado", "Fecha pago",
}

// WriteRegister writes the payroll rows and their totals as an XLSX workbook.
func WriteRegister(w io.Writer, rows []Payroll, totals Totals) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", registerSheet); err != nil {
		return err
	}
	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"1F4E78"}},
	})
	if err != nil {
		return err
	}
	moneyFmt := "#,##0.00"
	moneyStyle, err := f.NewStyle(&excelize.Style{CustomNumFmt: &moneyFmt})
	if err != nil {
		return err
	}
	totalStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}, CustomNumFmt: &moneyFmt})
	if err != nil {
		return err
	}

	for i, h := range registerHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(registerSheet, cell, h); err != nil {
			return err
		}
	}
	last, _ := excelize.CoordinatesToCellName(len(registerHeaders), 1)
	if err := f.SetCellStyle(registerSheet, "A1", last, headerStyle); err != nil {
		return err
	}

	for i, p := range rows {
		row := i + 2
		paymentDate := ""
		if p.PaymentDate != nil {
			paymentDate = p.PaymentDate.Format("2006-01-02")
		}
		values := []any{
			p.EmployeeCode, p.FirstName + " " + p.LastName, deref(p.Department), deref(p.Position),
			p.PeriodStart.Format("2006-01-02"), p.PeriodEnd.Format("2006-01-02"),
			p.BaseSalary, p.OvertimePay, p.Commission, p.Bonuses, p.IESSDeduction, p.AdvancePayment, p.OtherDeductions,
			p.TotalIncome, p.TotalDeductions, p.NetSalary, p.PaymentStatus, paymentDate,
		}
		start, _ := excelize.CoordinatesToCellName(1, row)
		if err := f.SetSheetRow(registerSheet, start, &values); err != nil {
			return err
		}
		from, _ := excelize.CoordinatesToCellName(7, row)
		to, _ := excelize.CoordinatesToCellName(16, row)
		if err := f.SetCellStyle(registerSheet, from, to, moneyStyle); err != nil {
			return err
		}
	}

	totalRow := len(rows) + 3
	cells := map[int]any{
		1:  "Totales",
		7:  totals.TotalBaseSalary,
		9:  totals.TotalCommission,
		15: totals.TotalDeductions,
		16: totals.TotalNetSalary,
	}
	for col, v := range cells {
		cell, _ := excelize.CoordinatesToCellName(col, totalRow)
		if err := f.SetCellValue(registerSheet, cell, v); err != nil {
			return err
		}
	}
	from, _ := excelize.CoordinatesToCellName(1, totalRow)
	to, _ := excelize.CoordinatesToCellName(16, totalRow)
	if err := f.SetCellStyle(registerSheet, from, to, totalStyle); err != nil {
		return err
	}
	if err := f.SetColWidth(registerSheet, "B", "B", 28); err != nil {
		return err
	}
	if err := f.SetColWidth(registerSheet, "C", "D", 18); err != nil {
		return err
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write xlsx: %w", err)
	}
	return nil
}
