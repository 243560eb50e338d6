package payroll

import (
	"testing"

	"github.com/cmlabs-hris/payroll-engine/internal/domain/statutory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testStatutoryConfig() statutory.Config {
	return statutory.Config{
		CompanyID: "c",
		PF: statutory.Contribution{
			Enabled:              true,
			EmployeeContribution: dec(12),
			EmployerContribution: dec(12),
			WageLimit:            dec(15000),
		},
		ESI: statutory.Contribution{
			Enabled:              true,
			EmployeeContribution: dec(0.75),
			EmployerContribution: dec(3.25),
			WageLimit:            dec(21000),
		},
		ProfessionalTax: statutory.ProfessionalTax{
			Enabled: true,
			Slabs: []statutory.Slab{
				{MinSalary: dec(0), MaxSalary: dec(15000), TaxAmount: dec(0)},
				{MinSalary: dec(15001), MaxSalary: dec(20000), TaxAmount: dec(150)},
				{MinSalary: dec(20001), MaxSalary: dec(999999999), TaxAmount: dec(200)},
			},
		},
	}
}

func TestApplyStatutory_PFCappedAtWageLimit(t *testing.T) {
	cfg := testStatutoryConfig()
	cfg.ESI.Enabled = false
	cfg.ProfessionalTax.Enabled = false

	lines := ApplyStatutory(cfg, dec(25000), dec(35000))

	require.Len(t, lines, 1)
	assert.Equal(t, lineProvidentFund, lines[0].Name)
	assert.True(t, lines[0].Amount.Equal(dec(1800)))
}

func TestApplyStatutory_PFBelowLimitUsesBasic(t *testing.T) {
	cfg := testStatutoryConfig()
	cfg.ESI.Enabled = false
	cfg.ProfessionalTax.Enabled = false

	lines := ApplyStatutory(cfg, dec(10000), dec(14000))

	require.Len(t, lines, 1)
	assert.True(t, lines[0].Amount.Equal(dec(1200)))
}

func TestApplyStatutory_PFDisabled(t *testing.T) {
	cfg := testStatutoryConfig()
	cfg.PF.Enabled = false
	cfg.ESI.Enabled = false
	cfg.ProfessionalTax.Enabled = false

	assert.Empty(t, ApplyStatutory(cfg, dec(25000), dec(35000)))
}

func TestApplyStatutory_ESIWageLimitIsInclusive(t *testing.T) {
	cfg := testStatutoryConfig()
	cfg.PF.Enabled = false
	cfg.ProfessionalTax.Enabled = false

	atLimit := ApplyStatutory(cfg, dec(10000), dec(21000))
	require.Len(t, atLimit, 1)
	assert.Equal(t, lineESI, atLimit[0].Name)
	// 0.75% of 21000 = 157.5
	assert.True(t, atLimit[0].Amount.Equal(dec(158)))

	assert.Empty(t, ApplyStatutory(cfg, dec(10000), dec(21001)))
}

func TestApplyStatutory_ProfessionalTaxSlabs(t *testing.T) {
	cfg := testStatutoryConfig()
	cfg.PF.Enabled = false
	cfg.ESI.Enabled = false

	cases := []struct {
		gross float64
		want  float64
	}{
		{12000, 0},
		{15000, 0},
		{15001, 150},
		{20000, 150},
		{35000, 200},
	}
	for _, tc := range cases {
		lines := ApplyStatutory(cfg, dec(0), dec(tc.gross))
		if tc.want == 0 {
			assert.Empty(t, lines, "gross %v", tc.gross)
			continue
		}
		require.Len(t, lines, 1, "gross %v", tc.gross)
		assert.Equal(t, lineProfessionalTax, lines[0].Name)
		assert.True(t, lines[0].Amount.Equal(dec(tc.want)), "gross %v", tc.gross)
	}
}

func TestApplyStatutory_GapBetweenSlabsOwesNothing(t *testing.T) {
	cfg := testStatutoryConfig()
	cfg.PF.Enabled = false
	cfg.ESI.Enabled = false

	assert.Empty(t, ApplyStatutory(cfg, dec(0), dec(15000.5)))
}

func TestStatutoryConfig_Validate(t *testing.T) {
	assert.NoError(t, testStatutoryConfig().Validate())
	assert.NoError(t, statutory.DefaultConfig("c").Validate())

	overlapping := testStatutoryConfig()
	overlapping.ProfessionalTax.Slabs[1].MinSalary = dec(15000)
	assert.ErrorIs(t, overlapping.Validate(), statutory.ErrMalformedSlabs)

	inverted := testStatutoryConfig()
	inverted.ProfessionalTax.Slabs[0].MaxSalary = dec(-1)
	assert.ErrorIs(t, inverted.Validate(), statutory.ErrMalformedSlabs)

	negative := testStatutoryConfig()
	negative.PF.WageLimit = dec(-1)
	assert.ErrorIs(t, negative.Validate(), statutory.ErrInvalidContribution)

	assert.ErrorIs(t, statutory.Config{Malformed: true}.Validate(), statutory.ErrMalformedSlabs)
}
