package statutory

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// Contribution covers both PF and ESI, which share the same shape.
type Contribution struct {
	Enabled              bool            `json:"enabled"`
	EmployeeContribution decimal.Decimal `json:"employee_contribution"` // percent
	EmployerContribution decimal.Decimal `json:"employer_contribution"` // percent
	WageLimit            decimal.Decimal `json:"wage_limit"`
}

// Slab maps an inclusive gross salary range to a flat professional tax.
type Slab struct {
	MinSalary decimal.Decimal `json:"min_salary"`
	MaxSalary decimal.Decimal `json:"max_salary"`
	TaxAmount decimal.Decimal `json:"tax_amount"`
}

type ProfessionalTax struct {
	Enabled bool   `json:"enabled"`
	Slabs   []Slab `json:"slabs"`
}

// Config - one per company
type Config struct {
	ID              string
	CompanyID       string
	PF              Contribution
	ESI             Contribution
	ProfessionalTax ProfessionalTax
	CreatedAt       time.Time
	UpdatedAt       time.Time

	// Malformed is set when the stored row could not be decoded.
	Malformed bool
}

// DefaultConfig is used when a company never saved statutory settings.
func DefaultConfig(companyID string) Config {
	return Config{CompanyID: companyID}
}

// Validate checks that professional tax slabs are well formed and do not overlap.
func (c Config) Validate() error {
	if c.Malformed {
		return ErrMalformedSlabs
	}
	slabs := make([]Slab, len(c.ProfessionalTax.Slabs))
	copy(slabs, c.ProfessionalTax.Slabs)

	for _, s := range slabs {
		if s.MinSalary.IsNegative() || s.TaxAmount.IsNegative() || s.MinSalary.GreaterThan(s.MaxSalary) {
			return ErrMalformedSlabs
		}
	}

	sort.Slice(slabs, func(i, j int) bool {
		return slabs[i].MinSalary.LessThan(slabs[j].MinSalary)
	})
	for i := 1; i < len(slabs); i++ {
		if !slabs[i].MinSalary.GreaterThan(slabs[i-1].MaxSalary) {
			return ErrMalformedSlabs
		}
	}

	for _, contrib := range []Contribution{c.PF, c.ESI} {
		if contrib.EmployeeContribution.IsNegative() || contrib.EmployerContribution.IsNegative() || contrib.WageLimit.IsNegative() {
			return ErrInvalidContribution
		}
	}
	return nil
}

// FindSlab returns the slab whose range contains gross.
func (p ProfessionalTax) FindSlab(gross decimal.Decimal) (Slab, bool) {
	for _, s := range p.Slabs {
		if gross.GreaterThanOrEqual(s.MinSalary) && gross.LessThanOrEqual(s.MaxSalary) {
			return s, true
		}
	}
	return Slab{}, false
}
