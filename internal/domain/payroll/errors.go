package payroll

import "errors"

var (
	ErrPayrollSettingsNotFound = errors.New("payroll settings not found")
	ErrPayrollRecordNotFound   = errors.New("payroll record not found")
	ErrPayrollPeriodLocked     = errors.New("payroll period has approved or paid records, unlock it before re-running")
	ErrPayrollNotApproved      = errors.New("payroll must be approved before export")
	ErrPersistenceConflict     = errors.New("concurrent payroll update conflict, retry the request")
	ErrInvalidTransition       = errors.New("invalid payroll transition")
)
