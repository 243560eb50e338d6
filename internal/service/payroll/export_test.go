package payroll

import (
	"bytes"
	"context"
	"testing"

	"github.com/cmlabs-hris/payroll-engine/internal/domain/payroll"
	"github.com/cmlabs-hris/payroll-engine/internal/pkg/register"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestExportPayslip_RequiresApproval(t *testing.T) {
	env := newTestEnv(t, Config{})
	resp := env.run(t)
	id := findRecord(t, resp.Records, "emp-a").ID
	ctx := context.Background()

	_, err := env.svc.ExportPayslip(ctx, testCompany, id)
	assert.ErrorIs(t, err, payroll.ErrPayrollNotApproved)

	_, err = env.svc.ApprovePayroll(ctx, testCompany, testActor, period())
	require.NoError(t, err)

	file, err := env.svc.ExportPayslip(ctx, testCompany, id)
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", file.ContentType)
	assert.Equal(t, "payslip-E001-2024-04.pdf", file.Filename)
	assert.True(t, bytes.HasPrefix(file.Content, []byte("%PDF")))
}

func TestExportPayslip_OtherCompanyCannotRead(t *testing.T) {
	env := newTestEnv(t, Config{})
	resp := env.run(t)

	_, err := env.svc.ExportPayslip(context.Background(), "company-2", resp.Records[0].ID)

	assert.ErrorIs(t, err, payroll.ErrPayrollRecordNotFound)
}

func TestExportRegister(t *testing.T) {
	env := newTestEnv(t, Config{})
	ctx := context.Background()
	req := payroll.PeriodRequest{PeriodMonth: testMonth, PeriodYear: testYear}

	_, err := env.svc.ExportRegister(ctx, testCompany, req)
	assert.ErrorIs(t, err, payroll.ErrPayrollRecordNotFound)

	env.run(t)
	_, err = env.svc.ExportRegister(ctx, testCompany, req)
	assert.ErrorIs(t, err, payroll.ErrPayrollNotApproved)

	_, err = env.svc.ApprovePayroll(ctx, testCompany, testActor, period())
	require.NoError(t, err)

	file, err := env.svc.ExportRegister(ctx, testCompany, req)
	require.NoError(t, err)
	assert.Equal(t, "payroll-register-2024-04.xlsx", file.Filename)

	wb, err := excelize.OpenReader(bytes.NewReader(file.Content))
	require.NoError(t, err)
	defer wb.Close()

	code, err := wb.GetCellValue(register.SheetName, "A2")
	require.NoError(t, err)
	assert.Equal(t, "E001", code)

	net, err := wb.GetCellValue(register.SheetName, "I2")
	require.NoError(t, err)
	assert.Equal(t, "33200", net)

	status, err := wb.GetCellValue(register.SheetName, "J2")
	require.NoError(t, err)
	assert.Equal(t, "approved", status)

	formula, err := wb.GetCellFormula(register.SheetName, "I3")
	require.NoError(t, err)
	assert.Equal(t, "SUM(I2:I2)", formula)
}
