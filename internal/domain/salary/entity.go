package salary

import (
	"time"

	"github.com/shopspring/decimal"
)

// ComponentType enum
type ComponentType string

const (
	ComponentTypeEarning   ComponentType = "earning"
	ComponentTypeDeduction ComponentType = "deduction"
)

// CalculationType enum
type CalculationType string

const (
	CalculationFlat              CalculationType = "flat"
	CalculationPercentageOfBasic CalculationType = "percentage_of_basic"
)

// Component - master salary component
type Component struct {
	ID              string
	CompanyID       string
	Name            string
	Type            ComponentType
	CalculationType CalculationType
	DefaultValue    decimal.Decimal
	// IsBasic tags the component whose value is the base for percentage components.
	IsBasic   bool
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// StructureLine - one component inside a salary structure, with optional overrides
type StructureLine struct {
	Component               Component
	Position                int
	CalculationTypeOverride *CalculationType
	ValueOverride           *decimal.Decimal
}

// CalculationType returns the line override, else the component default.
func (l StructureLine) CalculationType() CalculationType {
	if l.CalculationTypeOverride != nil {
		return *l.CalculationTypeOverride
	}
	return l.Component.CalculationType
}

// Value returns the line override, else the component default.
func (l StructureLine) Value() decimal.Decimal {
	if l.ValueOverride != nil {
		return *l.ValueOverride
	}
	return l.Component.DefaultValue
}

// Structure - ordered list of component lines assigned to employees
type Structure struct {
	ID        string
	CompanyID string
	Name      string
	// BasisComponentID explicitly marks the percentage base. Optional.
	BasisComponentID *string
	Lines            []StructureLine
	CreatedAt        time.Time
	UpdatedAt        time.Time
}
