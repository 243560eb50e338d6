package payroll

import (
	"github.com/cmlabs-hris/payroll-engine/internal/domain/payroll"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/statutory"
	"github.com/shopspring/decimal"
)

const (
	lineProvidentFund   = "Provident Fund"
	lineESI             = "ESI"
	lineProfessionalTax = "Professional Tax"
)

// ApplyStatutory returns the PF, ESI and professional tax deduction lines
// owed on the resolved basic and gross amounts. Zero amounts produce no line.
func ApplyStatutory(cfg statutory.Config, basicAmount, gross decimal.Decimal) []payroll.LineItem {
	var lines []payroll.LineItem
	add := func(name string, amount decimal.Decimal) {
		if amount.IsPositive() {
			lines = append(lines, payroll.LineItem{Name: name, Type: payroll.LineTypeDeduction, Amount: amount})
		}
	}

	if cfg.PF.Enabled {
		wage := decimal.Min(basicAmount, cfg.PF.WageLimit)
		add(lineProvidentFund, roundMoney(wage.Mul(cfg.PF.EmployeeContribution).Div(hundred)))
	}

	if cfg.ESI.Enabled && gross.LessThanOrEqual(cfg.ESI.WageLimit) {
		add(lineESI, roundMoney(gross.Mul(cfg.ESI.EmployeeContribution).Div(hundred)))
	}

	if cfg.ProfessionalTax.Enabled {
		if slab, ok := cfg.ProfessionalTax.FindSlab(gross); ok {
			add(lineProfessionalTax, slab.TaxAmount)
		}
	}

	return lines
}
