package payroll

import (
	"fmt"

	"github.com/cmlabs-hris/payroll-engine/internal/domain/tax"
	"github.com/cmlabs-hris/payroll-engine/internal/pkg/taxtable"
	"github.com/shopspring/decimal"
)

const lineIncomeTax = "Income Tax (TDS)"

var monthsPerYear = decimal.NewFromInt(12)

// IncomeTaxCalculator projects annual income from one month of gross pay and
// derives the monthly withholding under the employee's regime.
type IncomeTaxCalculator struct {
	tables taxtable.Tables
}

func NewIncomeTaxCalculator(tables taxtable.Tables) *IncomeTaxCalculator {
	return &IncomeTaxCalculator{tables: tables}
}

// TaxableIncome returns projected annual taxable income after the standard
// deduction and, under the old regime, declared exemptions. Never negative.
func (c *IncomeTaxCalculator) TaxableIncome(gross decimal.Decimal, regime tax.Regime, decl *tax.Declaration) (decimal.Decimal, error) {
	schedule, ok := c.tables[regime]
	if !ok {
		return decimal.Zero, fmt.Errorf("%w: %q", tax.ErrUnknownRegime, regime)
	}

	taxable := gross.Mul(monthsPerYear).Sub(schedule.StandardDeduction)

	if regime == tax.RegimeOld && decl != nil {
		if err := validateDeclaration(decl); err != nil {
			return decimal.Zero, err
		}
		section80C := decl.Total80C()
		if schedule.Section80CCap.IsPositive() {
			section80C = decimal.Min(section80C, schedule.Section80CCap)
		}
		taxable = taxable.
			Sub(section80C).
			Sub(decl.Section80D).
			Sub(decl.HRAExemption).
			Sub(decl.OtherDeductions)
	}

	return decimal.Max(taxable, decimal.Zero), nil
}

// MonthlyWithholding returns round(annual tax / 12) for the given monthly gross.
func (c *IncomeTaxCalculator) MonthlyWithholding(gross decimal.Decimal, regime tax.Regime, decl *tax.Declaration) (decimal.Decimal, error) {
	taxable, err := c.TaxableIncome(gross, regime, decl)
	if err != nil {
		return decimal.Zero, err
	}
	annual := c.tables[regime].AnnualTax(taxable)
	return roundMoney(annual.Div(monthsPerYear)), nil
}

func validateDeclaration(decl *tax.Declaration) error {
	if decl.Malformed {
		return fmt.Errorf("%w: unreadable 80C investments", tax.ErrMalformedDeclaration)
	}
	for _, inv := range decl.Section80C {
		if inv.Amount.IsNegative() {
			return fmt.Errorf("%w: negative 80C amount for %q", tax.ErrMalformedDeclaration, inv.Name)
		}
	}
	if decl.Section80D.IsNegative() || decl.HRAExemption.IsNegative() || decl.OtherDeductions.IsNegative() {
		return fmt.Errorf("%w: negative deduction amount", tax.ErrMalformedDeclaration)
	}
	return nil
}
