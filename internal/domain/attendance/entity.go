package attendance

import (
	"time"

	"github.com/shopspring/decimal"
)

// Status of a closed attendance day.
type Status string

const (
	StatusPresent Status = "present"
	StatusAbsent  Status = "absent"
	StatusHalfDay Status = "half_day"
	StatusLeave   Status = "leave"
	StatusHoliday Status = "holiday"
)

func (s Status) IsValid() bool {
	switch s {
	case StatusPresent, StatusAbsent, StatusHalfDay, StatusLeave, StatusHoliday:
		return true
	}
	return false
}

// Record - one per employee per calendar day.
type Record struct {
	ID            string
	EmployeeID    string
	CompanyID     string
	Date          time.Time
	Status        Status
	IsLOP         bool
	OvertimeHours *decimal.Decimal
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Summary - attendance of one employee folded over a payroll month
type Summary struct {
	EmployeeID    string
	DaysInMonth   int
	PaidDays      decimal.Decimal
	LOPDays       decimal.Decimal
	PayRatio      decimal.Decimal
	OvertimeHours decimal.Decimal
}
