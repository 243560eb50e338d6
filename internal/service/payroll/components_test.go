package payroll

import (
	"testing"

	"github.com/cmlabs-hris/payroll-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/payroll"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/salary"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func flatLine(id, name string, typ salary.ComponentType, value float64) salary.StructureLine {
	return salary.StructureLine{Component: salary.Component{
		ID:              id,
		Name:            name,
		Type:            typ,
		CalculationType: salary.CalculationFlat,
		DefaultValue:    dec(value),
	}}
}

func percentLine(id, name string, typ salary.ComponentType, percent float64) salary.StructureLine {
	return salary.StructureLine{Component: salary.Component{
		ID:              id,
		Name:            name,
		Type:            typ,
		CalculationType: salary.CalculationPercentageOfBasic,
		DefaultValue:    dec(percent),
	}}
}

// basicHRAStructure is Basic 25000 plus HRA at 40% of basic.
func basicHRAStructure() salary.Structure {
	basic := flatLine("c-basic", "Basic Salary", salary.ComponentTypeEarning, 25000)
	basic.Component.IsBasic = true
	return salary.Structure{
		ID:   "s-1",
		Name: "Standard",
		Lines: []salary.StructureLine{
			basic,
			percentLine("c-hra", "HRA", salary.ComponentTypeEarning, 40),
		},
	}
}

// ratioSummary describes a 30-day month with ratio*30 paid days.
func ratioSummary(ratio float64) attendance.Summary {
	paid := dec(ratio * 30)
	return attendance.Summary{
		DaysInMonth:   30,
		PaidDays:      paid,
		LOPDays:       dec(30).Sub(paid),
		PayRatio:      dec(ratio),
		OvertimeHours: decimal.Zero,
	}
}

func lineAmount(t *testing.T, lines []payroll.LineItem, name string) decimal.Decimal {
	t.Helper()
	for _, l := range lines {
		if l.Name == name {
			return l.Amount
		}
	}
	require.Failf(t, "line not found", "no line named %q", name)
	return decimal.Zero
}

func TestResolveComponents_FullMonth(t *testing.T) {
	res := ResolveComponents(basicHRAStructure(), ratioSummary(1), payroll.DefaultSettings("c"))

	assert.True(t, res.BasisFound)
	assert.True(t, lineAmount(t, res.Earnings, "Basic Salary").Equal(dec(25000)))
	assert.True(t, lineAmount(t, res.Earnings, "HRA").Equal(dec(10000)))
	assert.True(t, res.Gross.Equal(dec(35000)))
	assert.True(t, res.BasicAmount.Equal(dec(25000)))
	assert.Empty(t, res.Deductions)
}

func TestResolveComponents_ProratesLinearly(t *testing.T) {
	full := ResolveComponents(basicHRAStructure(), ratioSummary(1), payroll.DefaultSettings("c"))
	half := ResolveComponents(basicHRAStructure(), ratioSummary(0.5), payroll.DefaultSettings("c"))
	none := ResolveComponents(basicHRAStructure(), ratioSummary(0), payroll.DefaultSettings("c"))

	assert.True(t, half.Gross.Equal(dec(17500)))
	assert.True(t, half.Gross.Mul(dec(2)).Equal(full.Gross))
	assert.True(t, lineAmount(t, half.Earnings, "HRA").Equal(dec(5000)))
	// percentage components use the unprorated basic as their base
	assert.True(t, half.BasicFullValue.Equal(dec(25000)))
	assert.True(t, none.Gross.IsZero())
}

func TestResolveComponents_RoundsHalfAwayFromZero(t *testing.T) {
	structure := salary.Structure{Lines: []salary.StructureLine{
		flatLine("c-basic", "Basic", salary.ComponentTypeEarning, 1001),
	}}

	res := ResolveComponents(structure, ratioSummary(0.5), payroll.DefaultSettings("c"))

	assert.True(t, res.Gross.Equal(dec(501)), "gross %s", res.Gross)
}

func TestResolveComponents_DeductionComponents(t *testing.T) {
	structure := basicHRAStructure()
	structure.Lines = append(structure.Lines, flatLine("c-loan", "Loan Recovery", salary.ComponentTypeDeduction, 2000))

	res := ResolveComponents(structure, ratioSummary(1), payroll.DefaultSettings("c"))

	require.Len(t, res.Deductions, 1)
	assert.Equal(t, payroll.LineTypeDeduction, res.Deductions[0].Type)
	assert.True(t, res.Deductions[0].Amount.Equal(dec(2000)))
	assert.True(t, res.Gross.Equal(dec(35000)), "deductions never count towards gross")
}

func TestResolveComponents_LineOverrides(t *testing.T) {
	structure := basicHRAStructure()
	flat := salary.CalculationFlat
	value := dec(7000)
	structure.Lines[1].CalculationTypeOverride = &flat
	structure.Lines[1].ValueOverride = &value

	res := ResolveComponents(structure, ratioSummary(1), payroll.DefaultSettings("c"))

	assert.True(t, lineAmount(t, res.Earnings, "HRA").Equal(dec(7000)))
}

func TestResolveComponents_BasisLookupOrder(t *testing.T) {
	t.Run("explicit basis id wins", func(t *testing.T) {
		structure := basicHRAStructure()
		structure.Lines = append(structure.Lines, flatLine("c-alt", "Alt Base", salary.ComponentTypeEarning, 10000))
		id := "c-alt"
		structure.BasisComponentID = &id

		res := ResolveComponents(structure, ratioSummary(1), payroll.DefaultSettings("c"))

		assert.True(t, res.BasicFullValue.Equal(dec(10000)))
		assert.True(t, lineAmount(t, res.Earnings, "HRA").Equal(dec(4000)))
	})

	t.Run("falls back to name", func(t *testing.T) {
		structure := salary.Structure{Lines: []salary.StructureLine{
			flatLine("c-1", "Basic Pay", salary.ComponentTypeEarning, 20000),
			percentLine("c-2", "HRA", salary.ComponentTypeEarning, 50),
		}}

		res := ResolveComponents(structure, ratioSummary(1), payroll.DefaultSettings("c"))

		assert.True(t, res.BasisFound)
		assert.True(t, lineAmount(t, res.Earnings, "HRA").Equal(dec(10000)))
	})

	t.Run("missing basis zeroes percentage lines", func(t *testing.T) {
		structure := salary.Structure{Lines: []salary.StructureLine{
			flatLine("c-1", "Fixed Allowance", salary.ComponentTypeEarning, 20000),
			percentLine("c-2", "HRA", salary.ComponentTypeEarning, 50),
		}}

		res := ResolveComponents(structure, ratioSummary(1), payroll.DefaultSettings("c"))

		assert.False(t, res.BasisFound)
		assert.True(t, lineAmount(t, res.Earnings, "HRA").IsZero())
		assert.True(t, res.Gross.Equal(dec(20000)))
	})
}

func TestResolveComponents_Overtime(t *testing.T) {
	att := ratioSummary(1)
	att.OvertimeHours = dec(10)
	settings := payroll.DefaultSettings("c")
	structure := salary.Structure{Lines: []salary.StructureLine{
		flatLine("c-basic", "Basic", salary.ComponentTypeEarning, 24000),
	}}

	res := ResolveComponents(structure, att, settings)

	// 24000 / (30 * 8) = 100 per hour, 10h at 1.5x
	assert.True(t, res.OvertimePay.Equal(dec(1500)), "overtime %s", res.OvertimePay)
	assert.True(t, lineAmount(t, res.Earnings, "Overtime").Equal(dec(1500)))
	assert.True(t, res.Gross.Equal(dec(25500)))
}

func TestOvertimePay_ZeroCases(t *testing.T) {
	settings := payroll.DefaultSettings("c")

	assert.True(t, OvertimePay(dec(24000), ratioSummary(1), settings).IsZero())

	att := ratioSummary(1)
	att.OvertimeHours = dec(4)
	assert.True(t, OvertimePay(decimal.Zero, att, settings).IsZero())

	att.DaysInMonth = 0
	assert.True(t, OvertimePay(dec(24000), att, settings).IsZero())
}

func TestResolveComponents_ZeroMultiplierDisablesOvertime(t *testing.T) {
	settings := payroll.DefaultSettings("c")
	settings.OvertimeMultiplier = decimal.Zero
	att := ratioSummary(1)
	att.OvertimeHours = dec(10)
	structure := salary.Structure{Lines: []salary.StructureLine{
		flatLine("c-basic", "Basic", salary.ComponentTypeEarning, 24000),
	}}

	res := ResolveComponents(structure, att, settings)

	assert.True(t, res.OvertimePay.IsZero(), "overtime %s", res.OvertimePay)
	assert.Len(t, res.Earnings, 1)
	assert.True(t, res.Gross.Equal(dec(24000)))
}

func TestResolveComponents_ProratesHalfUnitBoundaryExactly(t *testing.T) {
	// July, half a day paid: 31031 * 0.5 / 31 = 500.5
	att := AggregateAttendance(2024, 7, []attendance.Record{
		{EmployeeID: "e", Date: day(2024, 7, 1), Status: attendance.StatusHalfDay},
	}, UnpaidUnmarked())
	require.True(t, att.PaidDays.Equal(dec(0.5)))

	structure := salary.Structure{Lines: []salary.StructureLine{
		flatLine("c-basic", "Basic", salary.ComponentTypeEarning, 31031),
	}}
	res := ResolveComponents(structure, att, payroll.DefaultSettings("c"))

	assert.True(t, res.BasicAmount.Equal(dec(501)), "basic %s", res.BasicAmount)
	assert.True(t, res.Gross.Equal(dec(501)), "gross %s", res.Gross)
}
