package payroll

import (
	"context"
	"time"
)

// TransitionParams describes one bulk status change.
type TransitionParams struct {
	CompanyID      string
	Month          int
	Year           int
	Transition     Transition
	ActorID        string
	At             time.Time
	TransactionRef *string
}

// PayrollRepository defines data access methods for payroll.
// All methods include companyID parameter to prevent cross-company data access attacks.
type PayrollRepository interface {
	// Settings
	GetSettings(ctx context.Context, companyID string) (Settings, error)
	UpsertSettings(ctx context.Context, settings Settings) (Settings, error)

	// Records
	// UpsertRecord inserts or recomputes the record keyed by (employee, month, year).
	// Unless overwriteLocked is set, an existing approved or paid record is left
	// untouched and ErrPayrollPeriodLocked is returned.
	UpsertRecord(ctx context.Context, record Record, overwriteLocked bool) (Record, error)
	GetRecordByID(ctx context.Context, id string, companyID string) (Record, error)
	ListByPeriod(ctx context.Context, companyID string, month, year int) ([]Record, error)
	CountLocked(ctx context.Context, companyID string, month, year int) (int, error)

	// ApplyTransition runs a bulk status update and returns the affected records.
	ApplyTransition(ctx context.Context, params TransitionParams) ([]Record, error)

	GetPeriodSummary(ctx context.Context, companyID string, month, year int) (PeriodSummary, error)
}
