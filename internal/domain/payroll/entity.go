package payroll

import (
	"time"

	"github.com/shopspring/decimal"
)

// Settings - company payroll policy
type Settings struct {
	ID                  string
	CompanyID           string
	UnmarkedDayPolicy   string
	OvertimeMultiplier  decimal.Decimal
	StandardHoursPerDay decimal.Decimal
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

const (
	PolicyPaidSundays  = "paid_sundays"
	PolicyUnpaid       = "unpaid"
	PolicyPaidWeekends = "paid_weekends"
)

// DefaultSettings is used when a company never saved payroll settings.
func DefaultSettings(companyID string) Settings {
	return Settings{
		CompanyID:           companyID,
		UnmarkedDayPolicy:   PolicyPaidSundays,
		OvertimeMultiplier:  decimal.NewFromFloat(1.5),
		StandardHoursPerDay: decimal.NewFromInt(8),
	}
}

// LineType enum
type LineType string

const (
	LineTypeEarning   LineType = "earning"
	LineTypeDeduction LineType = "deduction"
)

// LineItem - one itemized earning or deduction on a payroll record
type LineItem struct {
	Name   string          `json:"name"`
	Type   LineType        `json:"type"`
	Amount decimal.Decimal `json:"amount"`
}

// Record - computed payroll for one employee and period, unique by (employee, month, year)
type Record struct {
	ID              string
	CompanyID       string
	EmployeeID      string
	PeriodMonth     int
	PeriodYear      int
	PresentDays     decimal.Decimal
	LOPDays         decimal.Decimal
	OvertimeHours   decimal.Decimal
	Earnings        []LineItem
	Deductions      []LineItem
	GrossSalary     decimal.Decimal
	OvertimePay     decimal.Decimal
	TotalDeductions decimal.Decimal
	NetSalary       decimal.Decimal
	Status          Status
	ApprovedAt      *time.Time
	ApprovedBy      *string
	PaidAt          *time.Time
	TransactionRef  *string
	CreatedAt       time.Time
	UpdatedAt       time.Time

	// Joined fields
	EmployeeName *string
	EmployeeCode *string
	UserID       *string
}

// SkipReason explains why an employee produced no record in a run.
type SkipReason string

const (
	SkipMissingSalaryStructure   SkipReason = "missing_salary_structure"
	SkipMalformedStatutoryConfig SkipReason = "malformed_statutory_config"
)

// Warning codes attached to records that were still produced.
const (
	WarningMissingBasicComponent = "missing_basic_component"
	WarningTaxSkipped            = "tax_skipped"
)

// EmployeeResult is the outcome of computing one employee, independent of all others.
// Exactly one of Record and Skip is set.
type EmployeeResult struct {
	EmployeeID string
	Record     *Record
	Skip       SkipReason
	Warnings   []string
}

type SkippedEmployee struct {
	EmployeeID string     `json:"employee_id"`
	Reason     SkipReason `json:"reason"`
}

type EmployeeWarning struct {
	EmployeeID string `json:"employee_id"`
	Code       string `json:"code"`
}

// RunSummary folds per-employee results of one run.
type RunSummary struct {
	Processed int
	Skipped   []SkippedEmployee
	Warnings  []EmployeeWarning
	Records   []Record
}

// Fold adds one employee result to the summary.
func (s *RunSummary) Fold(res EmployeeResult) {
	for _, w := range res.Warnings {
		s.Warnings = append(s.Warnings, EmployeeWarning{EmployeeID: res.EmployeeID, Code: w})
	}
	if res.Record == nil {
		s.Skipped = append(s.Skipped, SkippedEmployee{EmployeeID: res.EmployeeID, Reason: res.Skip})
		return
	}
	s.Processed++
	s.Records = append(s.Records, *res.Record)
}

// PeriodSummary - status counts and totals for a period
type PeriodSummary struct {
	PeriodMonth     int
	PeriodYear      int
	TotalEmployees  int
	DraftCount      int
	ApprovedCount   int
	PaidCount       int
	TotalGross      decimal.Decimal
	TotalDeductions decimal.Decimal
	TotalNet        decimal.Decimal
	TotalPaid       decimal.Decimal
}
