// Package taxtable loads income tax bracket schedules from YAML and computes
// progressive tax over them.
package taxtable

import (
	_ "embed"
	"errors"
	"fmt"
	"os"

	"github.com/cmlabs-hris/payroll-engine/internal/domain/tax"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

//go:embed regimes.yaml
var defaultTables []byte

var (
	ErrRegimeMissing   = errors.New("tax table has no schedule for regime")
	ErrInvalidBrackets = errors.New("tax brackets must start at 0 and be strictly ascending")
)

var hundred = decimal.NewFromInt(100)

// Bracket taxes income from From up to the next bracket's From at Rate percent.
type Bracket struct {
	From decimal.Decimal
	Rate decimal.Decimal
}

// Schedule is the complete tax schedule of one regime.
type Schedule struct {
	Regime            tax.Regime
	StandardDeduction decimal.Decimal
	RebateThreshold   decimal.Decimal
	CessPercent       decimal.Decimal
	Section80CCap     decimal.Decimal
	Brackets          []Bracket
}

// Tables holds one schedule per regime.
type Tables map[tax.Regime]Schedule

type rawBracket struct {
	From int64   `yaml:"from"`
	Rate float64 `yaml:"rate"`
}

type rawSchedule struct {
	StandardDeduction int64        `yaml:"standard_deduction"`
	RebateThreshold   int64        `yaml:"rebate_threshold"`
	CessPercent       float64      `yaml:"cess_percent"`
	Section80CCap     int64        `yaml:"section_80c_cap"`
	Brackets          []rawBracket `yaml:"brackets"`
}

type rawFile struct {
	Regimes map[string]rawSchedule `yaml:"regimes"`
}

// Default returns the embedded schedules.
func Default() (Tables, error) {
	return Parse(defaultTables)
}

// Load reads schedules from a YAML file. An empty path yields the embedded defaults.
func Load(path string) (Tables, error) {
	if path == "" {
		return Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read tax table %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes and validates a YAML document. Both regimes must be present.
func Parse(data []byte) (Tables, error) {
	var raw rawFile
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse tax table: %w", err)
	}

	tables := make(Tables, len(raw.Regimes))
	for name, rs := range raw.Regimes {
		regime := tax.Regime(name)
		if !regime.IsValid() {
			return nil, fmt.Errorf("%w: %q", tax.ErrUnknownRegime, name)
		}

		s := Schedule{
			Regime:            regime,
			StandardDeduction: decimal.NewFromInt(rs.StandardDeduction),
			RebateThreshold:   decimal.NewFromInt(rs.RebateThreshold),
			CessPercent:       decimal.NewFromFloat(rs.CessPercent),
			Section80CCap:     decimal.NewFromInt(rs.Section80CCap),
		}
		for i, b := range rs.Brackets {
			if (i == 0 && b.From != 0) || (i > 0 && b.From <= rs.Brackets[i-1].From) || b.Rate < 0 {
				return nil, fmt.Errorf("%w (regime %s)", ErrInvalidBrackets, name)
			}
			s.Brackets = append(s.Brackets, Bracket{From: decimal.NewFromInt(b.From), Rate: decimal.NewFromFloat(b.Rate)})
		}
		if len(s.Brackets) == 0 {
			return nil, fmt.Errorf("%w (regime %s)", ErrInvalidBrackets, name)
		}
		tables[regime] = s
	}

	for _, r := range []tax.Regime{tax.RegimeOld, tax.RegimeNew} {
		if _, ok := tables[r]; !ok {
			return nil, fmt.Errorf("%w %q", ErrRegimeMissing, r)
		}
	}
	return tables, nil
}

// MarginalTax sums each bracket's slice of taxable income at its rate.
// Rebate and cess are not applied here.
func (s Schedule) MarginalTax(taxable decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for i, b := range s.Brackets {
		if !taxable.GreaterThan(b.From) {
			break
		}
		upper := taxable
		if i+1 < len(s.Brackets) && s.Brackets[i+1].From.LessThan(taxable) {
			upper = s.Brackets[i+1].From
		}
		total = total.Add(upper.Sub(b.From).Mul(b.Rate).Div(hundred))
	}
	return total
}

// AnnualTax applies the rebate, brackets, and cess to taxable income.
func (s Schedule) AnnualTax(taxable decimal.Decimal) decimal.Decimal {
	if !taxable.GreaterThan(s.RebateThreshold) {
		return decimal.Zero
	}
	base := s.MarginalTax(taxable)
	return base.Add(base.Mul(s.CessPercent).Div(hundred))
}
