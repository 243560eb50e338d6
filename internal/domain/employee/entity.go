package employee

import (
	"time"

	"github.com/cmlabs-hris/payroll-engine/internal/domain/tax"
)

type Employee struct {
	ID                string
	UserID            *string
	CompanyID         string
	EmployeeCode      string
	FullName          string
	HireDate          time.Time
	ResignationDate   *time.Time
	EmploymentStatus  EmploymentStatus
	TaxRegime         tax.Regime
	SalaryStructureID *string
	BankName          string
	BankAccountNumber string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

type EmploymentStatus string

const (
	EmploymentStatusActive     EmploymentStatus = "active"
	EmploymentStatusResigned   EmploymentStatus = "resigned"
	EmploymentStatusTerminated EmploymentStatus = "terminated"
)

// IsActive reports whether the employee takes part in payroll runs.
func (e Employee) IsActive() bool {
	return e.EmploymentStatus == EmploymentStatusActive
}
