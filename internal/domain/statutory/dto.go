package statutory

import (
	"github.com/cmlabs-hris/payroll-engine/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

type UpdateConfigRequest struct {
	PF              Contribution    `json:"pf"`
	ESI             Contribution    `json:"esi"`
	ProfessionalTax ProfessionalTax `json:"professional_tax"`
}

func (r *UpdateConfigRequest) Validate() error {
	var errs validator.ValidationErrors

	hundred := decimal.NewFromInt(100)
	if r.PF.EmployeeContribution.IsNegative() || r.PF.EmployeeContribution.GreaterThan(hundred) {
		errs = append(errs, validator.ValidationError{Field: "pf.employee_contribution", Message: "must be between 0 and 100"})
	}
	if r.PF.Enabled && !r.PF.WageLimit.IsPositive() {
		errs = append(errs, validator.ValidationError{Field: "pf.wage_limit", Message: "must be positive when PF is enabled"})
	}
	if r.ESI.EmployeeContribution.IsNegative() || r.ESI.EmployeeContribution.GreaterThan(hundred) {
		errs = append(errs, validator.ValidationError{Field: "esi.employee_contribution", Message: "must be between 0 and 100"})
	}
	if r.ESI.Enabled && !r.ESI.WageLimit.IsPositive() {
		errs = append(errs, validator.ValidationError{Field: "esi.wage_limit", Message: "must be positive when ESI is enabled"})
	}
	if r.ProfessionalTax.Enabled && len(r.ProfessionalTax.Slabs) == 0 {
		errs = append(errs, validator.ValidationError{Field: "professional_tax.slabs", Message: "at least one slab is required"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type ConfigResponse struct {
	CompanyID       string          `json:"company_id"`
	PF              Contribution    `json:"pf"`
	ESI             Contribution    `json:"esi"`
	ProfessionalTax ProfessionalTax `json:"professional_tax"`
}

func ToResponse(c Config) ConfigResponse {
	slabs := c.ProfessionalTax.Slabs
	if slabs == nil {
		slabs = []Slab{}
	}
	return ConfigResponse{
		CompanyID:       c.CompanyID,
		PF:              c.PF,
		ESI:             c.ESI,
		ProfessionalTax: ProfessionalTax{Enabled: c.ProfessionalTax.Enabled, Slabs: slabs},
	}
}
