package postgresql_test

import (
	"context"
	"testing"
	"time"

	"github.com/cmlabs-hris/payroll-engine/internal/domain/payroll"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/statutory"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/tax"
	"github.com/cmlabs-hris/payroll-engine/internal/repository/postgresql"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func draftRecord(employeeID string, net int64) payroll.Record {
	return payroll.Record{
		CompanyID:     testCompanyID,
		EmployeeID:    employeeID,
		PeriodMonth:   4,
		PeriodYear:    2024,
		PresentDays:   decimal.NewFromInt(30),
		LOPDays:       decimal.Zero,
		OvertimeHours: decimal.Zero,
		Earnings: []payroll.LineItem{
			{Name: "Basic Salary", Type: payroll.LineTypeEarning, Amount: decimal.NewFromInt(net)},
		},
		GrossSalary:     decimal.NewFromInt(net),
		OvertimePay:     decimal.Zero,
		TotalDeductions: decimal.Zero,
		NetSalary:       decimal.NewFromInt(net),
		Status:          payroll.StatusDraft,
	}
}

func TestPayrollRepository_UpsertIsKeyedByEmployeeAndPeriod(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	repo := postgresql.NewPayrollRepository(db)
	empID := seedEmployee(t, ctx, db, "E001", nil)

	first, err := repo.UpsertRecord(ctx, draftRecord(empID, 30000), false)
	require.NoError(t, err)
	second, err := repo.UpsertRecord(ctx, draftRecord(empID, 31000), false)
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.True(t, second.NetSalary.Equal(decimal.NewFromInt(31000)))

	records, err := repo.ListByPeriod(ctx, testCompanyID, 4, 2024)
	require.NoError(t, err)
	require.Len(t, records, 1)
	require.NotNil(t, records[0].EmployeeCode)
	assert.Equal(t, "E001", *records[0].EmployeeCode)
	assert.Empty(t, records[0].Deductions)
	assert.NotNil(t, records[0].Deductions)
}

func TestPayrollRepository_LockedRecordsAreNotOverwritten(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	repo := postgresql.NewPayrollRepository(db)
	empID := seedEmployee(t, ctx, db, "E001", nil)

	_, err := repo.UpsertRecord(ctx, draftRecord(empID, 30000), false)
	require.NoError(t, err)
	affected, err := repo.ApplyTransition(ctx, payroll.TransitionParams{
		CompanyID:  testCompanyID,
		Month:      4,
		Year:       2024,
		Transition: payroll.TransitionApprove,
		ActorID:    testActorID,
		At:         time.Now(),
	})
	require.NoError(t, err)
	require.Len(t, affected, 1)

	locked, err := repo.CountLocked(ctx, testCompanyID, 4, 2024)
	require.NoError(t, err)
	assert.Equal(t, 1, locked)

	_, err = repo.UpsertRecord(ctx, draftRecord(empID, 99999), false)
	assert.ErrorIs(t, err, payroll.ErrPayrollPeriodLocked)

	rec, err := repo.UpsertRecord(ctx, draftRecord(empID, 32000), true)
	require.NoError(t, err)
	assert.Equal(t, payroll.StatusDraft, rec.Status)
	assert.Nil(t, rec.ApprovedAt)
}

func TestPayrollRepository_DisburseOnlyApproved(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	repo := postgresql.NewPayrollRepository(db)
	tx := postgresql.NewTransactor(db)
	a := seedEmployee(t, ctx, db, "E001", nil)
	b := seedEmployee(t, ctx, db, "E002", nil)

	recA, err := repo.UpsertRecord(ctx, draftRecord(a, 30000), false)
	require.NoError(t, err)
	_, err = repo.ApplyTransition(ctx, payroll.TransitionParams{
		CompanyID: testCompanyID, Month: 4, Year: 2024, Transition: payroll.TransitionApprove, ActorID: testActorID, At: time.Now(),
	})
	require.NoError(t, err)
	_, err = repo.UpsertRecord(ctx, draftRecord(b, 20000), false)
	require.NoError(t, err)

	ref := "BANK-1"
	var paid []payroll.Record
	err = tx.WithinTransaction(ctx, func(txCtx context.Context) error {
		var err error
		paid, err = repo.ApplyTransition(txCtx, payroll.TransitionParams{
			CompanyID:      testCompanyID,
			Month:          4,
			Year:           2024,
			Transition:     payroll.TransitionDisburse,
			At:             time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC),
			TransactionRef: &ref,
		})
		return err
	})
	require.NoError(t, err)

	require.Len(t, paid, 1)
	assert.Equal(t, recA.ID, paid[0].ID)
	assert.Equal(t, payroll.StatusPaid, paid[0].Status)
	require.NotNil(t, paid[0].TransactionRef)
	assert.Equal(t, ref, *paid[0].TransactionRef)

	sum, err := repo.GetPeriodSummary(ctx, testCompanyID, 4, 2024)
	require.NoError(t, err)
	assert.Equal(t, 2, sum.TotalEmployees)
	assert.Equal(t, 1, sum.PaidCount)
	assert.Equal(t, 1, sum.DraftCount)
	assert.True(t, sum.TotalNet.Equal(decimal.NewFromInt(50000)))
	assert.True(t, sum.TotalPaid.Equal(decimal.NewFromInt(30000)))
}

func TestPayrollRepository_RecordsAreScopedToCompany(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	repo := postgresql.NewPayrollRepository(db)
	empID := seedEmployee(t, ctx, db, "E001", nil)

	rec, err := repo.UpsertRecord(ctx, draftRecord(empID, 30000), false)
	require.NoError(t, err)

	_, err = repo.GetRecordByID(ctx, rec.ID, "22222222-2222-4222-8222-222222222222")
	assert.ErrorIs(t, err, payroll.ErrPayrollRecordNotFound)
}

func TestSalaryRepository_StructureLinesInOrder(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	structureID := seedStructure(t, ctx, db)

	structures, err := postgresql.NewSalaryRepository(db).GetStructuresByIDs(ctx, []string{structureID}, testCompanyID)
	require.NoError(t, err)

	s, ok := structures[structureID]
	require.True(t, ok)
	require.Len(t, s.Lines, 2)
	assert.Equal(t, "Basic Salary", s.Lines[0].Component.Name)
	assert.True(t, s.Lines[0].Component.IsBasic)
	assert.Equal(t, "HRA", s.Lines[1].Component.Name)
	assert.Nil(t, s.Lines[1].ValueOverride)
	require.NotNil(t, s.BasisComponentID)
}

func TestEmployeeRepository_ActiveOnly(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	seedEmployee(t, ctx, db, "E001", nil)
	gone := seedEmployee(t, ctx, db, "E002", nil)
	_, err := db.Exec(ctx, `UPDATE employees SET employment_status = 'resigned' WHERE id = $1`, gone)
	require.NoError(t, err)

	repo := postgresql.NewEmployeeRepository(db)
	active, err := repo.GetActiveByCompanyID(ctx, testCompanyID)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "E001", active[0].EmployeeCode)
	assert.Equal(t, tax.RegimeNew, active[0].TaxRegime)

	companies, err := repo.ListCompanyIDsWithActiveEmployees(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{testCompanyID}, companies)
}

func TestStatutoryRepository_MalformedRowIsFlagged(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	_, err := db.Exec(ctx, `
		INSERT INTO statutory_configs (company_id, pf, esi, professional_tax)
		VALUES ($1, '"oops"', '{}', '{}')
	`, testCompanyID)
	require.NoError(t, err)

	cfg, err := postgresql.NewStatutoryRepository(db).GetByCompanyID(ctx, testCompanyID)
	require.NoError(t, err)

	assert.True(t, cfg.Malformed)
	assert.ErrorIs(t, cfg.Validate(), statutory.ErrMalformedSlabs)
}

func TestStatutoryRepository_UpsertRoundTrip(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	repo := postgresql.NewStatutoryRepository(db)

	_, err := repo.GetByCompanyID(ctx, testCompanyID)
	assert.ErrorIs(t, err, statutory.ErrConfigNotFound)

	saved, err := repo.Upsert(ctx, statutory.Config{
		CompanyID: testCompanyID,
		PF: statutory.Contribution{
			Enabled:              true,
			EmployeeContribution: decimal.NewFromInt(12),
			WageLimit:            decimal.NewFromInt(15000),
		},
	})
	require.NoError(t, err)
	assert.NotEmpty(t, saved.ID)

	got, err := repo.GetByCompanyID(ctx, testCompanyID)
	require.NoError(t, err)
	assert.True(t, got.PF.Enabled)
	assert.True(t, got.PF.WageLimit.Equal(decimal.NewFromInt(15000)))
}

func TestDeclarationRepository_MalformedInvestmentsAreFlagged(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	empID := seedEmployee(t, ctx, db, "E001", nil)
	_, err := db.Exec(ctx, `
		INSERT INTO tax_declarations (employee_id, company_id, financial_year, section_80c)
		VALUES ($1, $2, 2024, '{"ppf": "lots"}')
	`, empID, testCompanyID)
	require.NoError(t, err)

	decls, err := postgresql.NewDeclarationRepository(db).ListByCompanyAndFinancialYear(ctx, testCompanyID, 2024)
	require.NoError(t, err)

	require.Contains(t, decls, empID)
	assert.True(t, decls[empID].Malformed)
}
