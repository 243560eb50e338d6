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
	"github.com/cmlabs-hris/payroll-engine/internal/pkg/database"
)

// Config tunes batch execution.
type Config struct {
	// Workers bounds how many employees are computed concurrently.
	Workers int
	// AllowLockedRerun lets a run overwrite approved and paid records.
	AllowLockedRerun bool
	// PersistRetries is how many extra attempts a conflicting persist gets.
	// Zero disables retrying.
	PersistRetries int
}

func (c Config) withDefaults() Config {
	if c.Workers <= 0 {
		c.Workers = 4
	}
	if c.PersistRetries < 0 {
		c.PersistRetries = 0
	}
	return c
}

type PayrollServiceImpl struct {
	tx              database.Transactor
	payrollRepo     payroll.PayrollRepository
	employeeRepo    employee.EmployeeRepository
	attendanceRepo  attendance.AttendanceRepository
	salaryRepo      salary.Repository
	statutoryRepo   statutory.Repository
	declarationRepo tax.DeclarationRepository
	auditRepo       audit.Repository
	notificationSvc notification.Service
	taxCalc         *IncomeTaxCalculator
	cfg             Config
	now             func() time.Time
}

func NewPayrollService(
	tx database.Transactor,
	payrollRepo payroll.PayrollRepository,
	employeeRepo employee.EmployeeRepository,
	attendanceRepo attendance.AttendanceRepository,
	salaryRepo salary.Repository,
	statutoryRepo statutory.Repository,
	declarationRepo tax.DeclarationRepository,
	auditRepo audit.Repository,
	notificationSvc notification.Service,
	taxCalc *IncomeTaxCalculator,
	cfg Config,
) *PayrollServiceImpl {
	return &PayrollServiceImpl{
		tx:              tx,
		payrollRepo:     payrollRepo,
		employeeRepo:    employeeRepo,
		attendanceRepo:  attendanceRepo,
		salaryRepo:      salaryRepo,
		statutoryRepo:   statutoryRepo,
		declarationRepo: declarationRepo,
		auditRepo:       auditRepo,
		notificationSvc: notificationSvc,
		taxCalc:         taxCalc,
		cfg:             cfg.withDefaults(),
		now:             time.Now,
	}
}

var _ payroll.PayrollService = (*PayrollServiceImpl)(nil)

// ========== SETTINGS ==========

func (s *PayrollServiceImpl) loadSettings(ctx context.Context, companyID string) (payroll.Settings, error) {
	settings, err := s.payrollRepo.GetSettings(ctx, companyID)
	if err != nil {
		if errors.Is(err, payroll.ErrPayrollSettingsNotFound) {
			return payroll.DefaultSettings(companyID), nil
		}
		return payroll.Settings{}, err
	}
	return settings, nil
}

func (s *PayrollServiceImpl) GetSettings(ctx context.Context, companyID string) (payroll.SettingsResponse, error) {
	settings, err := s.loadSettings(ctx, companyID)
	if err != nil {
		return payroll.SettingsResponse{}, err
	}
	return mapToSettingsResponse(settings), nil
}

func (s *PayrollServiceImpl) UpdateSettings(ctx context.Context, companyID string, req payroll.UpdateSettingsRequest) (payroll.SettingsResponse, error) {
	if err := req.Validate(); err != nil {
		return payroll.SettingsResponse{}, err
	}

	current, err := s.loadSettings(ctx, companyID)
	if err != nil {
		return payroll.SettingsResponse{}, err
	}

	if req.UnmarkedDayPolicy != nil {
		current.UnmarkedDayPolicy = *req.UnmarkedDayPolicy
	}
	if req.OvertimeMultiplier != nil {
		current.OvertimeMultiplier = *req.OvertimeMultiplier
	}
	if req.StandardHoursPerDay != nil {
		current.StandardHoursPerDay = *req.StandardHoursPerDay
	}

	updated, err := s.payrollRepo.UpsertSettings(ctx, current)
	if err != nil {
		return payroll.SettingsResponse{}, err
	}
	return mapToSettingsResponse(updated), nil
}

// ========== STATUTORY ==========

func (s *PayrollServiceImpl) loadStatutory(ctx context.Context, companyID string) (statutory.Config, error) {
	cfg, err := s.statutoryRepo.GetByCompanyID(ctx, companyID)
	if err != nil {
		if errors.Is(err, statutory.ErrConfigNotFound) {
			return statutory.DefaultConfig(companyID), nil
		}
		return statutory.Config{}, err
	}
	return cfg, nil
}

func (s *PayrollServiceImpl) GetStatutoryConfig(ctx context.Context, companyID string) (statutory.ConfigResponse, error) {
	cfg, err := s.loadStatutory(ctx, companyID)
	if err != nil {
		return statutory.ConfigResponse{}, err
	}
	return statutory.ToResponse(cfg), nil
}

func (s *PayrollServiceImpl) UpdateStatutoryConfig(ctx context.Context, companyID string, req statutory.UpdateConfigRequest) (statutory.ConfigResponse, error) {
	if err := req.Validate(); err != nil {
		return statutory.ConfigResponse{}, err
	}

	cfg := statutory.Config{
		CompanyID:       companyID,
		PF:              req.PF,
		ESI:             req.ESI,
		ProfessionalTax: req.ProfessionalTax,
	}
	if err := cfg.Validate(); err != nil {
		return statutory.ConfigResponse{}, err
	}

	saved, err := s.statutoryRepo.Upsert(ctx, cfg)
	if err != nil {
		return statutory.ConfigResponse{}, fmt.Errorf("failed to save statutory config: %w", err)
	}
	return statutory.ToResponse(saved), nil
}

// ========== SIDE EFFECTS ==========

// recordAudit never fails the caller; audit problems are only logged.
func (s *PayrollServiceImpl) recordAudit(ctx context.Context, companyID, actorID, action string, data map[string]interface{}) {
	if s.auditRepo == nil {
		return
	}
	entry := audit.Entry{
		CompanyID:  companyID,
		Action:     action,
		EntityType: "payroll_period",
		Data:       data,
	}
	if actorID != "" {
		entry.ActorID = &actorID
	}
	if err := s.auditRepo.Record(context.WithoutCancel(ctx), entry); err != nil {
		slog.Warn("Failed to record payroll audit entry", "company_id", companyID, "action", action, "error", err)
	}
}

func (s *PayrollServiceImpl) notify(ctx context.Context, reqs []notification.CreateNotificationRequest) {
	if s.notificationSvc == nil || len(reqs) == 0 {
		return
	}
	if err := s.notificationSvc.QueueBulkNotification(context.WithoutCancel(ctx), reqs); err != nil {
		slog.Warn("Failed to queue payroll notifications", "count", len(reqs), "error", err)
	}
}

// ========== MAPPING ==========

func mapToSettingsResponse(s payroll.Settings) payroll.SettingsResponse {
	return payroll.SettingsResponse{
		CompanyID:           s.CompanyID,
		UnmarkedDayPolicy:   s.UnmarkedDayPolicy,
		OvertimeMultiplier:  s.OvertimeMultiplier,
		StandardHoursPerDay: s.StandardHoursPerDay,
	}
}

func formatTime(t *time.Time) *string {
	if t == nil {
		return nil
	}
	v := t.Format(time.RFC3339)
	return &v
}

func mapToRecordResponse(r payroll.Record) payroll.RecordResponse {
	resp := payroll.RecordResponse{
		ID:              r.ID,
		EmployeeID:      r.EmployeeID,
		PeriodMonth:     r.PeriodMonth,
		PeriodYear:      r.PeriodYear,
		PresentDays:     r.PresentDays,
		LOPDays:         r.LOPDays,
		OvertimeHours:   r.OvertimeHours,
		Earnings:        r.Earnings,
		Deductions:      r.Deductions,
		GrossSalary:     r.GrossSalary,
		OvertimePay:     r.OvertimePay,
		TotalDeductions: r.TotalDeductions,
		NetSalary:       r.NetSalary,
		Status:          r.Status,
		ApprovedAt:      formatTime(r.ApprovedAt),
		PaidAt:          formatTime(r.PaidAt),
		TransactionRef:  r.TransactionRef,
	}
	if resp.Earnings == nil {
		resp.Earnings = []payroll.LineItem{}
	}
	if resp.Deductions == nil {
		resp.Deductions = []payroll.LineItem{}
	}
	if r.EmployeeName != nil {
		resp.EmployeeName = *r.EmployeeName
	}
	if r.EmployeeCode != nil {
		resp.EmployeeCode = *r.EmployeeCode
	}
	return resp
}

func mapToRecordResponses(records []payroll.Record) []payroll.RecordResponse {
	responses := make([]payroll.RecordResponse, 0, len(records))
	for _, r := range records {
		responses = append(responses, mapToRecordResponse(r))
	}
	return responses
}
