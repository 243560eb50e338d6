package employee

import "context"

// EmployeeRepository is the read side of the employee directory used by payroll.
type EmployeeRepository interface {
	GetActiveByCompanyID(ctx context.Context, companyID string) ([]Employee, error)
	ListCompanyIDsWithActiveEmployees(ctx context.Context) ([]string, error)
}
