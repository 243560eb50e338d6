package postgresql

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/cmlabs-hris/payroll-engine/internal/domain/payroll"
	"github.com/cmlabs-hris/payroll-engine/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

const payrollRecordColumns = `
	pr.id, pr.company_id, pr.employee_id, pr.period_month, pr.period_year,
	pr.present_days, pr.lop_days, pr.overtime_hours, pr.earnings, pr.deductions,
	pr.gross_salary, pr.overtime_pay, pr.total_deductions, pr.net_salary,
	pr.status, pr.approved_at, pr.approved_by, pr.paid_at, pr.transaction_ref,
	pr.created_at, pr.updated_at`

const payrollEmployeeColumns = `e.full_name, e.employee_code, e.user_id`

type payrollRepository struct {
	db *database.DB
}

func NewPayrollRepository(db *database.DB) payroll.PayrollRepository {
	return &payrollRepository{db: db}
}

// mapConflict turns Postgres serialization failures and deadlocks into ErrPersistenceConflict.
func mapConflict(err error) error {
	if err != nil && isConflict(err) {
		return fmt.Errorf("%w: %v", payroll.ErrPersistenceConflict, err)
	}
	return err
}

// ========== SETTINGS ==========

func (r *payrollRepository) GetSettings(ctx context.Context, companyID string) (payroll.Settings, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, company_id, unmarked_day_policy, overtime_multiplier, standard_hours_per_day, created_at, updated_at
		FROM payroll_settings
		WHERE company_id = $1
	`

	var s payroll.Settings
	err := q.QueryRow(ctx, query, companyID).Scan(
		&s.ID, &s.CompanyID, &s.UnmarkedDayPolicy, &s.OvertimeMultiplier, &s.StandardHoursPerDay, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return payroll.Settings{}, payroll.ErrPayrollSettingsNotFound
		}
		return payroll.Settings{}, fmt.Errorf("failed to get payroll settings: %w", err)
	}

	return s, nil
}

func (r *payrollRepository) UpsertSettings(ctx context.Context, settings payroll.Settings) (payroll.Settings, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO payroll_settings (company_id, unmarked_day_policy, overtime_multiplier, standard_hours_per_day)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (company_id) DO UPDATE SET
			unmarked_day_policy = EXCLUDED.unmarked_day_policy,
			overtime_multiplier = EXCLUDED.overtime_multiplier,
			standard_hours_per_day = EXCLUDED.standard_hours_per_day,
			updated_at = NOW()
		RETURNING id, company_id, unmarked_day_policy, overtime_multiplier, standard_hours_per_day, created_at, updated_at
	`

	var s payroll.Settings
	err := q.QueryRow(ctx, query,
		settings.CompanyID, settings.UnmarkedDayPolicy, settings.OvertimeMultiplier, settings.StandardHoursPerDay,
	).Scan(&s.ID, &s.CompanyID, &s.UnmarkedDayPolicy, &s.OvertimeMultiplier, &s.StandardHoursPerDay, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return payroll.Settings{}, fmt.Errorf("failed to upsert payroll settings: %w", err)
	}

	return s, nil
}

// ========== RECORDS ==========

func scanPayrollRecord(row pgx.Row, withEmployee bool) (payroll.Record, error) {
	var rec payroll.Record
	var earnings, deductions []byte
	var status string

	dest := []interface{}{
		&rec.ID, &rec.CompanyID, &rec.EmployeeID, &rec.PeriodMonth, &rec.PeriodYear,
		&rec.PresentDays, &rec.LOPDays, &rec.OvertimeHours, &earnings, &deductions,
		&rec.GrossSalary, &rec.OvertimePay, &rec.TotalDeductions, &rec.NetSalary,
		&status, &rec.ApprovedAt, &rec.ApprovedBy, &rec.PaidAt, &rec.TransactionRef,
		&rec.CreatedAt, &rec.UpdatedAt,
	}
	if withEmployee {
		dest = append(dest, &rec.EmployeeName, &rec.EmployeeCode, &rec.UserID)
	}

	if err := row.Scan(dest...); err != nil {
		return payroll.Record{}, err
	}

	rec.Status = payroll.Status(status)
	if err := json.Unmarshal(earnings, &rec.Earnings); err != nil {
		return payroll.Record{}, fmt.Errorf("failed to decode earnings: %w", err)
	}
	if err := json.Unmarshal(deductions, &rec.Deductions); err != nil {
		return payroll.Record{}, fmt.Errorf("failed to decode deductions: %w", err)
	}
	return rec, nil
}

func collectPayrollRecords(rows pgx.Rows, withEmployee bool) ([]payroll.Record, error) {
	defer rows.Close()

	var records []payroll.Record
	for rows.Next() {
		rec, err := scanPayrollRecord(rows, withEmployee)
		if err != nil {
			return nil, fmt.Errorf("failed to scan payroll record: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, mapConflict(fmt.Errorf("failed to iterate payroll records: %w", err))
	}
	return records, nil
}

func (r *payrollRepository) UpsertRecord(ctx context.Context, record payroll.Record, overwriteLocked bool) (payroll.Record, error) {
	q := GetQuerier(ctx, r.db)

	earnings, err := json.Marshal(nonNilLines(record.Earnings))
	if err != nil {
		return payroll.Record{}, fmt.Errorf("failed to encode earnings: %w", err)
	}
	deductions, err := json.Marshal(nonNilLines(record.Deductions))
	if err != nil {
		return payroll.Record{}, fmt.Errorf("failed to encode deductions: %w", err)
	}

	// The conflict WHERE leaves approved and paid rows untouched; no row comes back then.
	query := `
		INSERT INTO payroll_records AS pr (
			company_id, employee_id, period_month, period_year,
			present_days, lop_days, overtime_hours, earnings, deductions,
			gross_salary, overtime_pay, total_deductions, net_salary, status
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, 'draft')
		ON CONFLICT (employee_id, period_month, period_year) DO UPDATE SET
			present_days = EXCLUDED.present_days,
			lop_days = EXCLUDED.lop_days,
			overtime_hours = EXCLUDED.overtime_hours,
			earnings = EXCLUDED.earnings,
			deductions = EXCLUDED.deductions,
			gross_salary = EXCLUDED.gross_salary,
			overtime_pay = EXCLUDED.overtime_pay,
			total_deductions = EXCLUDED.total_deductions,
			net_salary = EXCLUDED.net_salary,
			status = 'draft',
			approved_at = NULL,
			approved_by = NULL,
			paid_at = NULL,
			transaction_ref = NULL,
			updated_at = NOW()
		WHERE pr.status = 'draft' OR $14::boolean
		RETURNING ` + payrollRecordColumns

	rec, err := scanPayrollRecord(q.QueryRow(ctx, query,
		record.CompanyID, record.EmployeeID, record.PeriodMonth, record.PeriodYear,
		record.PresentDays, record.LOPDays, record.OvertimeHours, earnings, deductions,
		record.GrossSalary, record.OvertimePay, record.TotalDeductions, record.NetSalary,
		overwriteLocked,
	), false)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return payroll.Record{}, payroll.ErrPayrollPeriodLocked
		}
		return payroll.Record{}, mapConflict(fmt.Errorf("failed to upsert payroll record: %w", err))
	}

	rec.EmployeeName = record.EmployeeName
	rec.EmployeeCode = record.EmployeeCode
	rec.UserID = record.UserID
	return rec, nil
}

func (r *payrollRepository) GetRecordByID(ctx context.Context, id string, companyID string) (payroll.Record, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + payrollRecordColumns + `, ` + payrollEmployeeColumns + `
		FROM payroll_records pr
		JOIN employees e ON e.id = pr.employee_id
		WHERE pr.id = $1 AND pr.company_id = $2
	`

	rec, err := scanPayrollRecord(q.QueryRow(ctx, query, id, companyID), true)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return payroll.Record{}, payroll.ErrPayrollRecordNotFound
		}
		return payroll.Record{}, fmt.Errorf("failed to get payroll record: %w", err)
	}
	return rec, nil
}

func (r *payrollRepository) ListByPeriod(ctx context.Context, companyID string, month, year int) ([]payroll.Record, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + payrollRecordColumns + `, ` + payrollEmployeeColumns + `
		FROM payroll_records pr
		JOIN employees e ON e.id = pr.employee_id
		WHERE pr.company_id = $1 AND pr.period_month = $2 AND pr.period_year = $3
		ORDER BY e.employee_code
	`

	rows, err := q.Query(ctx, query, companyID, month, year)
	if err != nil {
		return nil, fmt.Errorf("failed to list payroll records: %w", err)
	}
	return collectPayrollRecords(rows, true)
}

func (r *payrollRepository) CountLocked(ctx context.Context, companyID string, month, year int) (int, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT COUNT(*)
		FROM payroll_records
		WHERE company_id = $1 AND period_month = $2 AND period_year = $3
			AND status = ANY($4::text[])
	`

	locked := make([]string, 0, 2)
	for _, s := range payroll.LockedStatuses() {
		locked = append(locked, string(s))
	}

	var count int
	if err := q.QueryRow(ctx, query, companyID, month, year, locked).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count locked payroll records: %w", err)
	}
	return count, nil
}

func (r *payrollRepository) ApplyTransition(ctx context.Context, params payroll.TransitionParams) ([]payroll.Record, error) {
	if !params.Transition.IsValid() {
		return nil, payroll.ErrInvalidTransition
	}

	q := GetQuerier(ctx, r.db)

	sources := make([]string, 0, 3)
	for _, s := range params.Transition.SourceStates() {
		sources = append(sources, string(s))
	}
	args := []interface{}{params.CompanyID, params.Month, params.Year, sources, string(params.Transition.Target())}

	var set string
	switch params.Transition {
	case payroll.TransitionApprove:
		set = `approved_at = $6, approved_by = $7, paid_at = NULL, transaction_ref = NULL`
		args = append(args, params.At, params.ActorID)
	case payroll.TransitionUnlock:
		set = `approved_at = NULL, approved_by = NULL`
	case payroll.TransitionDisburse:
		set = `paid_at = $6, transaction_ref = $7`
		args = append(args, params.At, params.TransactionRef)
	}

	query := `
		UPDATE payroll_records AS pr
		SET status = $5, ` + set + `, updated_at = NOW()
		FROM employees e
		WHERE e.id = pr.employee_id
			AND pr.company_id = $1 AND pr.period_month = $2 AND pr.period_year = $3
			AND pr.status = ANY($4::text[])
		RETURNING ` + payrollRecordColumns + `, ` + payrollEmployeeColumns

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, mapConflict(fmt.Errorf("failed to %s payroll records: %w", params.Transition, err))
	}
	return collectPayrollRecords(rows, true)
}

func (r *payrollRepository) GetPeriodSummary(ctx context.Context, companyID string, month, year int) (payroll.PeriodSummary, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE status = 'draft'),
			COUNT(*) FILTER (WHERE status = 'approved'),
			COUNT(*) FILTER (WHERE status = 'paid'),
			COALESCE(SUM(gross_salary), 0),
			COALESCE(SUM(total_deductions), 0),
			COALESCE(SUM(net_salary), 0),
			COALESCE(SUM(net_salary) FILTER (WHERE status = 'paid'), 0)
		FROM payroll_records
		WHERE company_id = $1 AND period_month = $2 AND period_year = $3
	`

	s := payroll.PeriodSummary{PeriodMonth: month, PeriodYear: year}
	err := q.QueryRow(ctx, query, companyID, month, year).Scan(
		&s.TotalEmployees, &s.DraftCount, &s.ApprovedCount, &s.PaidCount,
		&s.TotalGross, &s.TotalDeductions, &s.TotalNet, &s.TotalPaid,
	)
	if err != nil {
		return payroll.PeriodSummary{}, fmt.Errorf("failed to get payroll summary: %w", err)
	}
	return s, nil
}

func nonNilLines(lines []payroll.LineItem) []payroll.LineItem {
	if lines == nil {
		return []payroll.LineItem{}
	}
	return lines
}
