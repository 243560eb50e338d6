// Package register renders a payroll period as an XLSX salary register.
package register

import (
	"bytes"
	"fmt"

	"github.com/cmlabs-hris/payroll-engine/internal/domain/payroll"
	"github.com/xuri/excelize/v2"
)

const (
	ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	SheetName   = "Register"
)

var header = []interface{}{
	"Employee Code", "Employee Name", "Paid Days", "LOP Days", "Overtime Hours",
	"Gross Salary", "Overtime Pay", "Total Deductions", "Net Salary", "Status", "Transaction Ref",
}

// Filename returns the download name for a period register.
func Filename(month, year int) string {
	return fmt.Sprintf("payroll-register-%04d-%02d.xlsx", year, month)
}

// Render writes one row per record plus a totals row.
func Render(records []payroll.Record) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		return nil, fmt.Errorf("failed to name sheet: %w", err)
	}
	if err := f.SetSheetRow(SheetName, "A1", &header); err != nil {
		return nil, fmt.Errorf("failed to write header: %w", err)
	}

	for i, r := range records {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		row := []interface{}{
			deref(r.EmployeeCode), deref(r.EmployeeName),
			r.PresentDays.InexactFloat64(), r.LOPDays.InexactFloat64(), r.OvertimeHours.InexactFloat64(),
			r.GrossSalary.InexactFloat64(), r.OvertimePay.InexactFloat64(),
			r.TotalDeductions.InexactFloat64(), r.NetSalary.InexactFloat64(),
			string(r.Status), deref(r.TransactionRef),
		}
		if err := f.SetSheetRow(SheetName, cell, &row); err != nil {
			return nil, fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}

	totalRow := len(records) + 2
	if err := f.SetCellValue(SheetName, fmt.Sprintf("A%d", totalRow), "Total"); err != nil {
		return nil, err
	}
	for _, col := range []string{"F", "G", "H", "I"} {
		formula := fmt.Sprintf("SUM(%s2:%s%d)", col, col, totalRow-1)
		if err := f.SetCellFormula(SheetName, fmt.Sprintf("%s%d", col, totalRow), formula); err != nil {
			return nil, err
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("failed to render register: %w", err)
	}
	return buf.Bytes(), nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
