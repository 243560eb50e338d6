package payslip

import (
	"bytes"
	"testing"

	"github.com/cmlabs-hris/payroll-engine/internal/domain/payroll"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilename(t *testing.T) {
	code := "E042"
	assert.Equal(t, "payslip-E042-2024-11.pdf", Filename(payroll.Record{EmployeeCode: &code, PeriodMonth: 11, PeriodYear: 2024}))
	assert.Equal(t, "payslip-emp-9-2025-01.pdf", Filename(payroll.Record{EmployeeID: "emp-9", PeriodMonth: 1, PeriodYear: 2025}))
}

func TestRender(t *testing.T) {
	name, ref := "Asha Rao", "PAY-202404-1a2b3c4d"
	rec := payroll.Record{
		EmployeeID:   "emp-1",
		EmployeeName: &name,
		PeriodMonth:  4,
		PeriodYear:   2024,
		PresentDays:  decimal.NewFromInt(30),
		Earnings: []payroll.LineItem{
			{Name: "Basic Salary", Type: payroll.LineTypeEarning, Amount: decimal.NewFromInt(25000)},
			{Name: "HRA", Type: payroll.LineTypeEarning, Amount: decimal.NewFromInt(10000)},
		},
		Deductions: []payroll.LineItem{
			{Name: "Provident Fund", Type: payroll.LineTypeDeduction, Amount: decimal.NewFromInt(1800)},
		},
		GrossSalary:     decimal.NewFromInt(35000),
		TotalDeductions: decimal.NewFromInt(1800),
		NetSalary:       decimal.NewFromInt(33200),
		Status:          payroll.StatusPaid,
		TransactionRef:  &ref,
	}

	out, err := Render(rec)
	require.NoError(t, err)

	assert.True(t, bytes.HasPrefix(out, []byte("%PDF-")))
	assert.Greater(t, len(out), 500)
}

func TestRender_EmptyRecord(t *testing.T) {
	out, err := Render(payroll.Record{PeriodMonth: 1, PeriodYear: 2025})
	require.NoError(t, err)
	assert.NotEmpty(t, out)
}
