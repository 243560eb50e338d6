// Package payslip renders a single payroll record as a PDF payslip.
package payslip

import (
	"bytes"
	"fmt"
	"time"

	"github.com/cmlabs-hris/payroll-engine/internal/domain/payroll"
	"github.com/jung-kurt/gofpdf"
)

const ContentType = "application/pdf"

// Filename returns the download name for a record's payslip.
func Filename(rec payroll.Record) string {
	code := rec.EmployeeID
	if rec.EmployeeCode != nil && *rec.EmployeeCode != "" {
		code = *rec.EmployeeCode
	}
	return fmt.Sprintf("payslip-%s-%04d-%02d.pdf", code, rec.PeriodYear, rec.PeriodMonth)
}

// Render draws the payslip and returns the PDF bytes.
func Render(rec payroll.Record) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(40, 10, "Payslip")
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 11)
	period := time.Date(rec.PeriodYear, time.Month(rec.PeriodMonth), 1, 0, 0, 0, 0, time.UTC)
	if rec.EmployeeName != nil {
		pdf.Cell(0, 7, fmt.Sprintf("Employee: %s", *rec.EmployeeName))
		pdf.Ln(6)
	}
	if rec.EmployeeCode != nil {
		pdf.Cell(0, 7, fmt.Sprintf("Employee code: %s", *rec.EmployeeCode))
		pdf.Ln(6)
	}
	pdf.Cell(0, 7, fmt.Sprintf("Period: %s", period.Format("January 2006")))
	pdf.Ln(6)
	pdf.Cell(0, 7, fmt.Sprintf("Paid days: %s   LOP days: %s   Overtime hours: %s",
		rec.PresentDays.String(), rec.LOPDays.String(), rec.OvertimeHours.String()))
	pdf.Ln(10)

	section := func(title string, lines []payroll.LineItem, total string) {
		pdf.SetFont("Helvetica", "B", 12)
		pdf.CellFormat(120, 8, title, "B", 0, "L", false, 0, "")
		pdf.CellFormat(50, 8, "Amount", "B", 1, "R", false, 0, "")
		pdf.SetFont("Helvetica", "", 11)
		for _, l := range lines {
			pdf.CellFormat(120, 7, l.Name, "", 0, "L", false, 0, "")
			pdf.CellFormat(50, 7, l.Amount.StringFixed(2), "", 1, "R", false, 0, "")
		}
		pdf.SetFont("Helvetica", "B", 11)
		pdf.CellFormat(120, 7, "Total", "T", 0, "L", false, 0, "")
		pdf.CellFormat(50, 7, total, "T", 1, "R", false, 0, "")
		pdf.Ln(4)
	}
	section("Earnings", rec.Earnings, rec.GrossSalary.StringFixed(2))
	section("Deductions", rec.Deductions, rec.TotalDeductions.StringFixed(2))

	pdf.SetFont("Helvetica", "B", 13)
	pdf.CellFormat(120, 9, "Net pay", "", 0, "L", false, 0, "")
	pdf.CellFormat(50, 9, rec.NetSalary.StringFixed(2), "", 1, "R", false, 0, "")

	if rec.TransactionRef != nil {
		pdf.SetFont("Helvetica", "", 10)
		pdf.Ln(4)
		pdf.Cell(0, 6, fmt.Sprintf("Transaction reference: %s", *rec.TransactionRef))
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render payslip: %w", err)
	}
	return buf.Bytes(), nil
}
