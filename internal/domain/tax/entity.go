package tax

import (
	"time"

	"github.com/shopspring/decimal"
)

// Regime selects the income tax schedule applied to an employee.
type Regime string

const (
	RegimeOld Regime = "old"
	RegimeNew Regime = "new"
)

func (r Regime) IsValid() bool {
	return r == RegimeOld || r == RegimeNew
}

// Investment is a single Section 80C line in a declaration.
type Investment struct {
	Name   string          `json:"name"`
	Amount decimal.Decimal `json:"amount"`
}

// Declaration - employee tax-saving declaration for one financial year.
// FinancialYear is the calendar year in which the April-March year starts.
type Declaration struct {
	ID              string
	EmployeeID      string
	CompanyID       string
	FinancialYear   int
	Section80C      []Investment
	Section80D      decimal.Decimal
	HRAExemption    decimal.Decimal
	OtherDeductions decimal.Decimal
	CreatedAt       time.Time
	UpdatedAt       time.Time

	// Malformed is set when the stored investment lines could not be decoded.
	Malformed bool
}

// Total80C sums every Section 80C investment line before the statutory cap.
func (d Declaration) Total80C() decimal.Decimal {
	total := decimal.Zero
	for _, inv := range d.Section80C {
		total = total.Add(inv.Amount)
	}
	return total
}

// FinancialYearStart returns the starting calendar year of the April-March
// financial year that contains the given month.
func FinancialYearStart(month, year int) int {
	if month > 3 {
		return year
	}
	return year - 1
}
