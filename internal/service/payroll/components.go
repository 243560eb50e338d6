package payroll

import (
	"strings"

	"github.com/cmlabs-hris/payroll-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/payroll"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/salary"
	"github.com/shopspring/decimal"
)

const overtimeLineName = "Overtime"

var hundred = decimal.NewFromInt(100)

// Resolution is the output of resolving a salary structure for one month.
type Resolution struct {
	Earnings       []payroll.LineItem
	Deductions     []payroll.LineItem
	Gross          decimal.Decimal
	BasicAmount    decimal.Decimal // pro-rated
	BasicFullValue decimal.Decimal // unprorated percentage base
	OvertimePay    decimal.Decimal
	BasisFound     bool
}

// roundMoney rounds to whole currency units, half away from zero.
func roundMoney(v decimal.Decimal) decimal.Decimal {
	return v.Round(0)
}

// prorate scales a full-month amount by paid days. Multiplying before the single
// division keeps exact half-unit results such as 31031 * 0.5 / 31 = 500.5.
func prorate(amount decimal.Decimal, att attendance.Summary) decimal.Decimal {
	if att.DaysInMonth <= 0 {
		return decimal.Zero
	}
	return roundMoney(amount.Mul(att.PaidDays).Div(decimal.NewFromInt(int64(att.DaysInMonth))))
}

// findBasis locates the percentage base line. The explicit structure tag wins,
// then a component flagged IsBasic, then the first earning named like "basic".
func findBasis(structure salary.Structure) (salary.StructureLine, bool) {
	if structure.BasisComponentID != nil {
		for _, line := range structure.Lines {
			if line.Component.ID == *structure.BasisComponentID {
				return line, true
			}
		}
	}
	for _, line := range structure.Lines {
		if line.Component.IsBasic {
			return line, true
		}
	}
	for _, line := range structure.Lines {
		if line.Component.Type == salary.ComponentTypeEarning &&
			strings.Contains(strings.ToLower(line.Component.Name), "basic") {
			return line, true
		}
	}
	return salary.StructureLine{}, false
}

// ResolveComponents pro-rates every component of the structure by paid days
// and appends overtime pay as an earning.
func ResolveComponents(structure salary.Structure, att attendance.Summary, settings payroll.Settings) Resolution {
	res := Resolution{Gross: decimal.Zero}

	basis, ok := findBasis(structure)
	if ok {
		res.BasisFound = true
		res.BasicFullValue = basis.Value()
		res.BasicAmount = prorate(res.BasicFullValue, att)
	}

	for _, line := range structure.Lines {
		var amount decimal.Decimal
		switch line.CalculationType() {
		case salary.CalculationPercentageOfBasic:
			amount = line.Value().Div(hundred).Mul(res.BasicFullValue)
		default:
			amount = line.Value()
		}
		payable := prorate(amount, att)

		item := payroll.LineItem{Name: line.Component.Name, Amount: payable}
		if line.Component.Type == salary.ComponentTypeDeduction {
			item.Type = payroll.LineTypeDeduction
			res.Deductions = append(res.Deductions, item)
			continue
		}
		item.Type = payroll.LineTypeEarning
		res.Earnings = append(res.Earnings, item)
		res.Gross = res.Gross.Add(payable)
	}

	res.OvertimePay = OvertimePay(res.BasicFullValue, att, settings)
	if res.OvertimePay.IsPositive() {
		res.Earnings = append(res.Earnings, payroll.LineItem{
			Name:   overtimeLineName,
			Type:   payroll.LineTypeEarning,
			Amount: res.OvertimePay,
		})
		res.Gross = res.Gross.Add(res.OvertimePay)
	}

	return res
}

// OvertimePay values overtime hours at the hourly basic rate times the multiplier.
func OvertimePay(basicFullValue decimal.Decimal, att attendance.Summary, settings payroll.Settings) decimal.Decimal {
	if !att.OvertimeHours.IsPositive() || att.DaysInMonth == 0 || !basicFullValue.IsPositive() {
		return decimal.Zero
	}

	hoursPerDay := settings.StandardHoursPerDay
	if !hoursPerDay.IsPositive() {
		hoursPerDay = decimal.NewFromInt(8)
	}
	// A zero multiplier switches overtime pay off.
	if !settings.OvertimeMultiplier.IsPositive() {
		return decimal.Zero
	}

	monthHours := decimal.NewFromInt(int64(att.DaysInMonth)).Mul(hoursPerDay)
	return roundMoney(att.OvertimeHours.Mul(basicFullValue).Mul(settings.OvertimeMultiplier).Div(monthHours))
}
