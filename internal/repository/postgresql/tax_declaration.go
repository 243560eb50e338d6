package postgresql

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/cmlabs-hris/payroll-engine/internal/domain/tax"
	"github.com/cmlabs-hris/payroll-engine/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

const declarationColumns = `
	id, employee_id, company_id, financial_year, section_80c,
	section_80d, hra_exemption, other_deductions, created_at, updated_at`

type declarationRepository struct {
	db *database.DB
}

func NewDeclarationRepository(db *database.DB) tax.DeclarationRepository {
	return &declarationRepository{db: db}
}

// scanDeclaration decodes a row. Unreadable 80C JSON marks the declaration
// malformed instead of failing, so one bad row only costs that employee's TDS.
func scanDeclaration(row pgx.Row) (tax.Declaration, error) {
	var d tax.Declaration
	var investments []byte
	if err := row.Scan(
		&d.ID, &d.EmployeeID, &d.CompanyID, &d.FinancialYear, &investments,
		&d.Section80D, &d.HRAExemption, &d.OtherDeductions, &d.CreatedAt, &d.UpdatedAt,
	); err != nil {
		return tax.Declaration{}, err
	}

	if len(investments) > 0 {
		if err := json.Unmarshal(investments, &d.Section80C); err != nil {
			slog.Warn("Unreadable tax declaration investments", "declaration_id", d.ID, "employee_id", d.EmployeeID, "error", err)
			d.Section80C = nil
			d.Malformed = true
		}
	}
	return d, nil
}

// GetByEmployee implements tax.DeclarationRepository.
func (r *declarationRepository) GetByEmployee(ctx context.Context, employeeID string, financialYear int, companyID string) (tax.Declaration, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + declarationColumns + `
		FROM tax_declarations
		WHERE employee_id = $1 AND financial_year = $2 AND company_id = $3
	`

	d, err := scanDeclaration(q.QueryRow(ctx, query, employeeID, financialYear, companyID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return tax.Declaration{}, tax.ErrDeclarationNotFound
		}
		return tax.Declaration{}, fmt.Errorf("failed to get tax declaration: %w", err)
	}
	return d, nil
}

// ListByCompanyAndFinancialYear implements tax.DeclarationRepository.
func (r *declarationRepository) ListByCompanyAndFinancialYear(ctx context.Context, companyID string, financialYear int) (map[string]tax.Declaration, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + declarationColumns + `
		FROM tax_declarations
		WHERE company_id = $1 AND financial_year = $2
	`

	rows, err := q.Query(ctx, query, companyID, financialYear)
	if err != nil {
		return nil, fmt.Errorf("failed to list tax declarations: %w", err)
	}
	defer rows.Close()

	result := make(map[string]tax.Declaration)
	for rows.Next() {
		d, err := scanDeclaration(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan tax declaration: %w", err)
		}
		result[d.EmployeeID] = d
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate tax declarations: %w", err)
	}
	return result, nil
}
