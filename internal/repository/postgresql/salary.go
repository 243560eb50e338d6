package postgresql

import (
	"context"
	"fmt"
	"time"

	"github.com/cmlabs-hris/payroll-engine/internal/domain/salary"
	"github.com/cmlabs-hris/payroll-engine/internal/pkg/database"
	"github.com/shopspring/decimal"
)

type salaryRepository struct {
	db *database.DB
}

func NewSalaryRepository(db *database.DB) salary.Repository {
	return &salaryRepository{db: db}
}

// GetStructuresByIDs implements salary.Repository. Structures and their lines
// come back in one query; a structure without lines is still returned.
func (r *salaryRepository) GetStructuresByIDs(ctx context.Context, ids []string, companyID string) (map[string]salary.Structure, error) {
	result := make(map[string]salary.Structure, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	q := GetQuerier(ctx, r.db)

	query := `
		SELECT s.id, s.company_id, s.name, s.basis_component_id, s.created_at, s.updated_at,
			l.position, l.calculation_type, l.value,
			c.id, c.company_id, c.name, c.type, c.calculation_type, c.default_value, c.is_basic, c.is_active,
			c.created_at, c.updated_at
		FROM salary_structures s
		LEFT JOIN salary_structure_components l ON l.structure_id = s.id
		LEFT JOIN salary_components c ON c.id = l.component_id AND c.is_active = TRUE
		WHERE s.id = ANY($1::uuid[]) AND s.company_id = $2 AND s.deleted_at IS NULL
		ORDER BY s.id, l.position
	`

	rows, err := q.Query(ctx, query, ids, companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to get salary structures: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var s salary.Structure
		var position *int
		var lineCalc *string
		var line salary.StructureLine
		var compID, compCompanyID, compName, compType, compCalc *string
		var compIsBasic, compIsActive *bool
		var compDefault *decimal.Decimal
		var compCreatedAt, compUpdatedAt *time.Time
		var comp salary.Component

		if err := rows.Scan(
			&s.ID, &s.CompanyID, &s.Name, &s.BasisComponentID, &s.CreatedAt, &s.UpdatedAt,
			&position, &lineCalc, &line.ValueOverride,
			&compID, &compCompanyID, &compName, &compType, &compCalc, &compDefault, &compIsBasic, &compIsActive,
			&compCreatedAt, &compUpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan salary structure: %w", err)
		}

		existing, ok := result[s.ID]
		if !ok {
			existing = s
		}

		if compID != nil {
			comp.ID = *compID
			comp.CompanyID = *compCompanyID
			comp.Name = *compName
			comp.Type = salary.ComponentType(*compType)
			comp.CalculationType = salary.CalculationType(*compCalc)
			comp.IsBasic = compIsBasic != nil && *compIsBasic
			comp.IsActive = compIsActive != nil && *compIsActive
			if compDefault != nil {
				comp.DefaultValue = *compDefault
			}
			if compCreatedAt != nil {
				comp.CreatedAt = *compCreatedAt
			}
			if compUpdatedAt != nil {
				comp.UpdatedAt = *compUpdatedAt
			}

			line.Component = comp
			if position != nil {
				line.Position = *position
			}
			if lineCalc != nil {
				ct := salary.CalculationType(*lineCalc)
				line.CalculationTypeOverride = &ct
			}
			existing.Lines = append(existing.Lines, line)
		}

		result[s.ID] = existing
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate salary structures: %w", err)
	}

	return result, nil
}
