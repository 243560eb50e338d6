package payroll

import (
	"time"

	"github.com/cmlabs-hris/payroll-engine/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

// ========== SETTINGS DTOs ==========

type SettingsResponse struct {
	CompanyID           string          `json:"company_id"`
	UnmarkedDayPolicy   string          `json:"unmarked_day_policy"`
	OvertimeMultiplier  decimal.Decimal `json:"overtime_multiplier"`
	StandardHoursPerDay decimal.Decimal `json:"standard_hours_per_day"`
}

type UpdateSettingsRequest struct {
	UnmarkedDayPolicy   *string          `json:"unmarked_day_policy,omitempty"`
	OvertimeMultiplier  *decimal.Decimal `json:"overtime_multiplier,omitempty"`
	StandardHoursPerDay *decimal.Decimal `json:"standard_hours_per_day,omitempty"`
}

func (r *UpdateSettingsRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.UnmarkedDayPolicy != nil && !validator.IsInSlice(*r.UnmarkedDayPolicy, []string{PolicyPaidSundays, PolicyUnpaid, PolicyPaidWeekends}) {
		errs = append(errs, validator.ValidationError{Field: "unmarked_day_policy", Message: "must be one of paid_sundays, unpaid, paid_weekends"})
	}
	if r.OvertimeMultiplier != nil && r.OvertimeMultiplier.IsNegative() {
		errs = append(errs, validator.ValidationError{Field: "overtime_multiplier", Message: "must be non-negative"})
	}
	if r.StandardHoursPerDay != nil && !r.StandardHoursPerDay.IsPositive() {
		errs = append(errs, validator.ValidationError{Field: "standard_hours_per_day", Message: "must be positive"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// ========== PERIOD DTOs ==========

type PeriodRequest struct {
	PeriodMonth int `json:"period_month"`
	PeriodYear  int `json:"period_year"`
}

func (r *PeriodRequest) Validate() error {
	errs := validator.ValidatePeriod(r.PeriodMonth, r.PeriodYear)
	if len(errs) > 0 {
		return errs
	}
	return nil
}

type RunPayrollRequest struct {
	PeriodRequest
}

type TransitionRequest struct {
	PeriodRequest
	// RequireMatch turns a no-op transition into ErrPayrollRecordNotFound.
	RequireMatch bool `json:"require_match"`
}

type DisburseRequest struct {
	TransitionRequest
	TransactionRef *string `json:"transaction_ref,omitempty"`
	PaymentDate    *string `json:"payment_date,omitempty"` // YYYY-MM-DD, defaults to now
}

func (r *DisburseRequest) Validate() error {
	errs := validator.ValidatePeriod(r.PeriodMonth, r.PeriodYear)

	if r.PaymentDate != nil {
		if _, ok := validator.IsValidDate(*r.PaymentDate); !ok {
			errs = append(errs, validator.ValidationError{Field: "payment_date", Message: "must be in YYYY-MM-DD format"})
		}
	}
	if r.TransactionRef != nil && validator.IsEmpty(*r.TransactionRef) {
		errs = append(errs, validator.ValidationError{Field: "transaction_ref", Message: "must not be blank"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// PaidAt resolves the payment timestamp, falling back to now.
func (r *DisburseRequest) PaidAt(now time.Time) time.Time {
	if r.PaymentDate == nil {
		return now
	}
	t, ok := validator.IsValidDate(*r.PaymentDate)
	if !ok {
		return now
	}
	return t
}

// ========== RESPONSES ==========

type RecordResponse struct {
	ID              string          `json:"id"`
	EmployeeID      string          `json:"employee_id"`
	EmployeeName    string          `json:"employee_name,omitempty"`
	EmployeeCode    string          `json:"employee_code,omitempty"`
	PeriodMonth     int             `json:"period_month"`
	PeriodYear      int             `json:"period_year"`
	PresentDays     decimal.Decimal `json:"present_days"`
	LOPDays         decimal.Decimal `json:"lop_days"`
	OvertimeHours   decimal.Decimal `json:"overtime_hours"`
	Earnings        []LineItem      `json:"earnings"`
	Deductions      []LineItem      `json:"deductions"`
	GrossSalary     decimal.Decimal `json:"gross_salary"`
	OvertimePay     decimal.Decimal `json:"overtime_pay"`
	TotalDeductions decimal.Decimal `json:"total_deductions"`
	NetSalary       decimal.Decimal `json:"net_salary"`
	Status          Status          `json:"status"`
	ApprovedAt      *string         `json:"approved_at,omitempty"`
	PaidAt          *string         `json:"paid_at,omitempty"`
	TransactionRef  *string         `json:"transaction_ref,omitempty"`
}

type RunPayrollResponse struct {
	Count    int               `json:"count"`
	Skipped  []SkippedEmployee `json:"skipped"`
	Warnings []EmployeeWarning `json:"warnings,omitempty"`
	Records  []RecordResponse  `json:"records"`
}

type TransitionResult struct {
	Message       string           `json:"message"`
	ModifiedCount int              `json:"modified_count"`
	TotalNet      *decimal.Decimal `json:"total_net,omitempty"`
}

type PeriodSummaryResponse struct {
	PeriodMonth     int             `json:"period_month"`
	PeriodYear      int             `json:"period_year"`
	TotalEmployees  int             `json:"total_employees"`
	DraftCount      int             `json:"draft_count"`
	ApprovedCount   int             `json:"approved_count"`
	PaidCount       int             `json:"paid_count"`
	TotalGross      decimal.Decimal `json:"total_gross"`
	TotalDeductions decimal.Decimal `json:"total_deductions"`
	TotalNet        decimal.Decimal `json:"total_net"`
	TotalPaid       decimal.Decimal `json:"total_paid"`
}

// ExportFile is a rendered document ready to be streamed to the client.
type ExportFile struct {
	Filename    string
	ContentType string
	Content     []byte
}
