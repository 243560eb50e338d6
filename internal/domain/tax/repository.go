package tax

import "context"

type DeclarationRepository interface {
	GetByEmployee(ctx context.Context, employeeID string, financialYear int, companyID string) (Declaration, error)
	// ListByCompanyAndFinancialYear returns declarations keyed by employee ID.
	ListByCompanyAndFinancialYear(ctx context.Context, companyID string, financialYear int) (map[string]Declaration, error)
}
