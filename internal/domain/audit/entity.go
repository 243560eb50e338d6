package audit

import "time"

// Action names recorded for payroll lifecycle events.
const (
	ActionPayrollRun      = "payroll.run"
	ActionPayrollApprove  = "payroll.approve"
	ActionPayrollUnlock   = "payroll.unlock"
	ActionPayrollDisburse = "payroll.disburse"
)

// Entry - one append-only audit log row
type Entry struct {
	ID         string
	CompanyID  string
	ActorID    *string
	Action     string
	EntityType string
	EntityID   *string
	Data       map[string]interface{}
	CreatedAt  time.Time
}
