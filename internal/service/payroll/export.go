package payroll

import (
	"context"

	"github.com/cmlabs-hris/payroll-engine/internal/domain/payroll"
	"github.com/cmlabs-hris/payroll-engine/internal/pkg/payslip"
	"github.com/cmlabs-hris/payroll-engine/internal/pkg/register"
)

// ExportPayslip renders one approved or paid record.
func (s *PayrollServiceImpl) ExportPayslip(ctx context.Context, companyID, recordID string) (payroll.ExportFile, error) {
	rec, err := s.payrollRepo.GetRecordByID(ctx, recordID, companyID)
	if err != nil {
		return payroll.ExportFile{}, err
	}
	if !rec.Status.IsLocked() {
		return payroll.ExportFile{}, payroll.ErrPayrollNotApproved
	}

	content, err := payslip.Render(rec)
	if err != nil {
		return payroll.ExportFile{}, err
	}
	return payroll.ExportFile{
		Filename:    payslip.Filename(rec),
		ContentType: payslip.ContentType,
		Content:     content,
	}, nil
}

// ExportRegister renders the whole period. Every record must be approved or paid.
func (s *PayrollServiceImpl) ExportRegister(ctx context.Context, companyID string, req payroll.PeriodRequest) (payroll.ExportFile, error) {
	if err := req.Validate(); err != nil {
		return payroll.ExportFile{}, err
	}

	records, err := s.payrollRepo.ListByPeriod(ctx, companyID, req.PeriodMonth, req.PeriodYear)
	if err != nil {
		return payroll.ExportFile{}, err
	}
	if len(records) == 0 {
		return payroll.ExportFile{}, payroll.ErrPayrollRecordNotFound
	}
	for _, r := range records {
		if !r.Status.IsLocked() {
			return payroll.ExportFile{}, payroll.ErrPayrollNotApproved
		}
	}

	content, err := register.Render(records)
	if err != nil {
		return payroll.ExportFile{}, err
	}
	return payroll.ExportFile{
		Filename:    register.Filename(req.PeriodMonth, req.PeriodYear),
		ContentType: register.ContentType,
		Content:     content,
	}, nil
}
