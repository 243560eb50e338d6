package postgresql_test

import (
	"context"
	"fmt"
	"os"
	"testing"

	"github.com/cmlabs-hris/payroll-engine/internal/pkg/database"
	"github.com/stretchr/testify/require"
)

// payrollTables are cleared before every test, children first.
var payrollTables = []string{
	"notifications",
	"audit_logs",
	"payroll_records",
	"payroll_settings",
	"tax_declarations",
	"statutory_configs",
	"attendances",
	"employees",
	"salary_structure_components",
	"salary_structures",
	"salary_components",
}

// newTestDB connects to TEST_DATABASE_URL and empties the payroll tables.
// Tests are skipped when no migrated database is reachable.
func newTestDB(t *testing.T) *database.DB {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	db, err := database.NewPostgreSQLDB(dsn)
	if err != nil {
		t.Skipf("test database unreachable: %v", err)
	}
	t.Cleanup(db.Close)

	if err := truncateAll(context.Background(), db); err != nil {
		t.Skipf("test database not migrated: %v", err)
	}
	return db
}

func truncateAll(ctx context.Context, db *database.DB) error {
	tx, err := db.BeginTx(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	for _, table := range payrollTables {
		if _, err := tx.Exec(ctx, fmt.Sprintf("TRUNCATE TABLE %s CASCADE", table)); err != nil {
			return fmt.Errorf("failed to truncate table %s: %w", table, err)
		}
	}
	return tx.Commit(ctx)
}

const (
	testCompanyID = "11111111-1111-4111-8111-111111111111"
	testActorID   = "33333333-3333-4333-8333-333333333333"
)

// seedStructure creates Basic 25000 and HRA 40% and returns the structure ID.
func seedStructure(t *testing.T, ctx context.Context, db *database.DB) string {
	t.Helper()

	var basicID, hraID, structureID string
	err := db.QueryRow(ctx, `
		INSERT INTO salary_components (company_id, name, type, calculation_type, default_value, is_basic)
		VALUES ($1, 'Basic Salary', 'earning', 'flat', 25000, TRUE)
		RETURNING id
	`, testCompanyID).Scan(&basicID)
	require.NoError(t, err)

	err = db.QueryRow(ctx, `
		INSERT INTO salary_components (company_id, name, type, calculation_type, default_value)
		VALUES ($1, 'HRA', 'earning', 'percentage_of_basic', 40)
		RETURNING id
	`, testCompanyID).Scan(&hraID)
	require.NoError(t, err)

	err = db.QueryRow(ctx, `
		INSERT INTO salary_structures (company_id, name, basis_component_id)
		VALUES ($1, 'Standard', $2)
		RETURNING id
	`, testCompanyID, basicID).Scan(&structureID)
	require.NoError(t, err)

	_, err = db.Exec(ctx, `
		INSERT INTO salary_structure_components (structure_id, component_id, position)
		VALUES ($1, $2, 1), ($1, $3, 2)
	`, structureID, basicID, hraID)
	require.NoError(t, err)

	return structureID
}

func seedEmployee(t *testing.T, ctx context.Context, db *database.DB, code string, structureID *string) string {
	t.Helper()

	var id string
	err := db.QueryRow(ctx, `
		INSERT INTO employees (company_id, employee_code, full_name, hire_date, salary_structure_id)
		VALUES ($1, $2, $3, DATE '2023-01-01', $4)
		RETURNING id
	`, testCompanyID, code, "Employee "+code, structureID).Scan(&id)
	require.NoError(t, err)
	return id
}
