package payroll

import (
	"context"

	"github.com/cmlabs-hris/payroll-engine/internal/domain/statutory"
)

type PayrollService interface {
	// Settings
	GetSettings(ctx context.Context, companyID string) (SettingsResponse, error)
	UpdateSettings(ctx context.Context, companyID string, req UpdateSettingsRequest) (SettingsResponse, error)
	GetStatutoryConfig(ctx context.Context, companyID string) (statutory.ConfigResponse, error)
	UpdateStatutoryConfig(ctx context.Context, companyID string, req statutory.UpdateConfigRequest) (statutory.ConfigResponse, error)

	// Batch
	RunPayroll(ctx context.Context, companyID, actorID string, req RunPayrollRequest) (RunPayrollResponse, error)
	GetPayroll(ctx context.Context, companyID string, req PeriodRequest) ([]RecordResponse, error)
	GetPeriodSummary(ctx context.Context, companyID string, req PeriodRequest) (PeriodSummaryResponse, error)

	// Lifecycle
	ApprovePayroll(ctx context.Context, companyID, actorID string, req TransitionRequest) (TransitionResult, error)
	UnlockPayroll(ctx context.Context, companyID, actorID string, req TransitionRequest) (TransitionResult, error)
	DisbursePayroll(ctx context.Context, companyID, actorID string, req DisburseRequest) (TransitionResult, error)

	// Export
	ExportPayslip(ctx context.Context, companyID, recordID string) (ExportFile, error)
	ExportRegister(ctx context.Context, companyID string, req PeriodRequest) (ExportFile, error)
}
