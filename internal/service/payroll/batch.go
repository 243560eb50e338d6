package payroll

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/payroll-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/audit"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/employee"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/notification"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/payroll"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/salary"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/statutory"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/tax"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

// runInputs is everything one run reads. It is never mutated once loaded.
type runInputs struct {
	month        int
	year         int
	employees    []employee.Employee
	attendance   map[string][]attendance.Record
	structures   map[string]salary.Structure
	statutory    statutory.Config
	statutoryErr error
	settings     payroll.Settings
	policy       UnmarkedDayPolicy
	declarations map[string]tax.Declaration
}

func (s *PayrollServiceImpl) RunPayroll(ctx context.Context, companyID, actorID string, req payroll.RunPayrollRequest) (payroll.RunPayrollResponse, error) {
	if err := req.Validate(); err != nil {
		return payroll.RunPayrollResponse{}, err
	}

	if !s.cfg.AllowLockedRerun {
		locked, err := s.payrollRepo.CountLocked(ctx, companyID, req.PeriodMonth, req.PeriodYear)
		if err != nil {
			return payroll.RunPayrollResponse{}, err
		}
		if locked > 0 {
			return payroll.RunPayrollResponse{}, payroll.ErrPayrollPeriodLocked
		}
	}

	in, err := s.loadRunInputs(ctx, companyID, req.PeriodMonth, req.PeriodYear)
	if err != nil {
		return payroll.RunPayrollResponse{}, err
	}

	summary := payroll.RunSummary{}
	for _, res := range s.computeAll(in) {
		summary.Fold(res)
	}

	saved, err := s.persist(ctx, summary.Records)
	if err != nil {
		return payroll.RunPayrollResponse{}, err
	}
	summary.Records = saved

	slog.Info("Payroll run completed",
		"company_id", companyID,
		"period_month", req.PeriodMonth,
		"period_year", req.PeriodYear,
		"processed", summary.Processed,
		"skipped", len(summary.Skipped),
		"warnings", len(summary.Warnings),
	)

	s.recordAudit(ctx, companyID, actorID, audit.ActionPayrollRun, map[string]interface{}{
		"period_month": req.PeriodMonth,
		"period_year":  req.PeriodYear,
		"processed":    summary.Processed,
		"skipped":      len(summary.Skipped),
	})
	if actorID != "" {
		s.notify(ctx, []notification.CreateNotificationRequest{{
			CompanyID:   companyID,
			RecipientID: actorID,
			Type:        notification.TypePayrollGenerated,
			Title:       "Payroll generated",
			Message:     fmt.Sprintf("Payroll for %02d/%d computed for %d employees", req.PeriodMonth, req.PeriodYear, summary.Processed),
			Data: map[string]interface{}{
				"period_month": req.PeriodMonth,
				"period_year":  req.PeriodYear,
				"count":        summary.Processed,
				"skipped":      len(summary.Skipped),
			},
		}})
	}

	resp := payroll.RunPayrollResponse{
		Count:    summary.Processed,
		Skipped:  summary.Skipped,
		Warnings: summary.Warnings,
		Records:  mapToRecordResponses(summary.Records),
	}
	if resp.Skipped == nil {
		resp.Skipped = []payroll.SkippedEmployee{}
	}
	return resp, nil
}

// loadRunInputs fetches employees first, then everything keyed by them in parallel.
func (s *PayrollServiceImpl) loadRunInputs(ctx context.Context, companyID string, month, year int) (runInputs, error) {
	in := runInputs{month: month, year: year}

	employees, err := s.employeeRepo.GetActiveByCompanyID(ctx, companyID)
	if err != nil {
		return runInputs{}, fmt.Errorf("failed to get employees: %w", err)
	}
	in.employees = employees
	if len(employees) == 0 {
		return in, nil
	}

	employeeIDs := make([]string, 0, len(employees))
	structureIDs := make([]string, 0, len(employees))
	seen := make(map[string]bool)
	for _, emp := range employees {
		employeeIDs = append(employeeIDs, emp.ID)
		if emp.SalaryStructureID != nil && !seen[*emp.SalaryStructureID] {
			seen[*emp.SalaryStructureID] = true
			structureIDs = append(structureIDs, *emp.SalaryStructureID)
		}
	}

	from, to := PeriodRange(year, month)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		records, err := s.attendanceRepo.ListByEmployeesInRange(gctx, companyID, employeeIDs, from, to)
		if err != nil {
			return fmt.Errorf("failed to get attendance: %w", err)
		}
		in.attendance = records
		return nil
	})
	g.Go(func() error {
		if len(structureIDs) == 0 {
			in.structures = map[string]salary.Structure{}
			return nil
		}
		structures, err := s.salaryRepo.GetStructuresByIDs(gctx, structureIDs, companyID)
		if err != nil {
			return fmt.Errorf("failed to get salary structures: %w", err)
		}
		in.structures = structures
		return nil
	})
	g.Go(func() error {
		cfg, err := s.loadStatutory(gctx, companyID)
		if err != nil {
			return fmt.Errorf("failed to get statutory config: %w", err)
		}
		in.statutory = cfg
		in.statutoryErr = cfg.Validate()
		return nil
	})
	g.Go(func() error {
		settings, err := s.loadSettings(gctx, companyID)
		if err != nil {
			return fmt.Errorf("failed to get payroll settings: %w", err)
		}
		in.settings = settings
		in.policy = PolicyByName(settings.UnmarkedDayPolicy)
		return nil
	})
	g.Go(func() error {
		decls, err := s.declarationRepo.ListByCompanyAndFinancialYear(gctx, companyID, tax.FinancialYearStart(month, year))
		if err != nil {
			return fmt.Errorf("failed to get tax declarations: %w", err)
		}
		in.declarations = decls
		return nil
	})
	if err := g.Wait(); err != nil {
		return runInputs{}, err
	}

	if in.statutoryErr != nil {
		slog.Warn("Statutory config is malformed, employees will be skipped", "company_id", companyID, "error", in.statutoryErr)
	}
	return in, nil
}

// computeAll evaluates every employee on a bounded pool. Results keep employee order.
func (s *PayrollServiceImpl) computeAll(in runInputs) []payroll.EmployeeResult {
	results := make([]payroll.EmployeeResult, len(in.employees))

	var g errgroup.Group
	g.SetLimit(s.cfg.Workers)
	for i, emp := range in.employees {
		g.Go(func() error {
			results[i] = s.computeEmployee(emp, in)
			return nil
		})
	}
	_ = g.Wait()

	return results
}

// computeEmployee is side-effect free apart from logging.
func (s *PayrollServiceImpl) computeEmployee(emp employee.Employee, in runInputs) payroll.EmployeeResult {
	result := payroll.EmployeeResult{EmployeeID: emp.ID}

	var structure salary.Structure
	var ok bool
	if emp.SalaryStructureID != nil {
		structure, ok = in.structures[*emp.SalaryStructureID]
	}
	if !ok {
		slog.Warn("Skipping employee without salary structure", "employee_id", emp.ID, "employee_code", emp.EmployeeCode)
		result.Skip = payroll.SkipMissingSalaryStructure
		return result
	}
	if in.statutoryErr != nil {
		result.Skip = payroll.SkipMalformedStatutoryConfig
		return result
	}

	att := AggregateAttendance(in.year, in.month, in.attendance[emp.ID], in.policy)
	att.EmployeeID = emp.ID

	res := ResolveComponents(structure, att, in.settings)
	if !res.BasisFound {
		slog.Warn("Salary structure has no basic component, percentage components resolve to zero",
			"employee_id", emp.ID, "structure_id", structure.ID)
		result.Warnings = append(result.Warnings, payroll.WarningMissingBasicComponent)
	}

	deductions := append([]payroll.LineItem{}, res.Deductions...)
	deductions = append(deductions, ApplyStatutory(in.statutory, res.BasicAmount, res.Gross)...)

	regime := emp.TaxRegime
	if regime == "" {
		regime = tax.RegimeNew
	}
	var decl *tax.Declaration
	if d, found := in.declarations[emp.ID]; found {
		decl = &d
	}
	tds, err := s.taxCalc.MonthlyWithholding(res.Gross, regime, decl)
	switch {
	case err != nil:
		slog.Warn("Skipping income tax for employee", "employee_id", emp.ID, "regime", regime, "error", err)
		result.Warnings = append(result.Warnings, payroll.WarningTaxSkipped)
	case tds.IsPositive():
		deductions = append(deductions, payroll.LineItem{Name: lineIncomeTax, Type: payroll.LineTypeDeduction, Amount: tds})
	}

	total := sumLines(deductions)
	name, code := emp.FullName, emp.EmployeeCode
	result.Record = &payroll.Record{
		CompanyID:       emp.CompanyID,
		EmployeeID:      emp.ID,
		PeriodMonth:     in.month,
		PeriodYear:      in.year,
		PresentDays:     att.PaidDays,
		LOPDays:         att.LOPDays,
		OvertimeHours:   att.OvertimeHours,
		Earnings:        res.Earnings,
		Deductions:      deductions,
		GrossSalary:     res.Gross,
		OvertimePay:     res.OvertimePay,
		TotalDeductions: total,
		NetSalary:       res.Gross.Sub(total),
		Status:          payroll.StatusDraft,
		EmployeeName:    &name,
		EmployeeCode:    &code,
		UserID:          emp.UserID,
	}
	return result
}

// persist writes all records in one transaction, one upsert at a time,
// retrying the whole batch when the store reports a conflict.
func (s *PayrollServiceImpl) persist(ctx context.Context, records []payroll.Record) ([]payroll.Record, error) {
	if len(records) == 0 {
		return []payroll.Record{}, nil
	}

	var saved []payroll.Record
	var err error
	for attempt := 0; attempt <= s.cfg.PersistRetries; attempt++ {
		saved = make([]payroll.Record, 0, len(records))
		err = s.tx.WithinTransaction(ctx, func(txCtx context.Context) error {
			for _, rec := range records {
				out, err := s.payrollRepo.UpsertRecord(txCtx, rec, s.cfg.AllowLockedRerun)
				if err != nil {
					return err
				}
				saved = append(saved, out)
			}
			return nil
		})
		if err == nil || !errors.Is(err, payroll.ErrPersistenceConflict) || attempt == s.cfg.PersistRetries {
			break
		}

		slog.Warn("Payroll persist conflicted, retrying", "attempt", attempt+1, "error", err)
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(time.Duration(attempt+1) * 50 * time.Millisecond):
		}
	}
	if err != nil {
		return nil, err
	}
	return saved, nil
}

func (s *PayrollServiceImpl) GetPayroll(ctx context.Context, companyID string, req payroll.PeriodRequest) ([]payroll.RecordResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	records, err := s.payrollRepo.ListByPeriod(ctx, companyID, req.PeriodMonth, req.PeriodYear)
	if err != nil {
		return nil, err
	}
	return mapToRecordResponses(records), nil
}

func (s *PayrollServiceImpl) GetPeriodSummary(ctx context.Context, companyID string, req payroll.PeriodRequest) (payroll.PeriodSummaryResponse, error) {
	if err := req.Validate(); err != nil {
		return payroll.PeriodSummaryResponse{}, err
	}

	sum, err := s.payrollRepo.GetPeriodSummary(ctx, companyID, req.PeriodMonth, req.PeriodYear)
	if err != nil {
		return payroll.PeriodSummaryResponse{}, err
	}

	return payroll.PeriodSummaryResponse{
		PeriodMonth:     sum.PeriodMonth,
		PeriodYear:      sum.PeriodYear,
		TotalEmployees:  sum.TotalEmployees,
		DraftCount:      sum.DraftCount,
		ApprovedCount:   sum.ApprovedCount,
		PaidCount:       sum.PaidCount,
		TotalGross:      sum.TotalGross,
		TotalDeductions: sum.TotalDeductions,
		TotalNet:        sum.TotalNet,
		TotalPaid:       sum.TotalPaid,
	}, nil
}

func sumLines(lines []payroll.LineItem) decimal.Decimal {
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(l.Amount)
	}
	return total
}
