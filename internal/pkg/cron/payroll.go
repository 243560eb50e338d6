package cron

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/cmlabs-hris/payroll-engine/internal/domain/payroll"
)

// PayrollRunner is the part of the payroll service the draft job drives.
type PayrollRunner interface {
	RunPayroll(ctx context.Context, companyID, actorID string, req payroll.RunPayrollRequest) (payroll.RunPayrollResponse, error)
}

// CompanyLister lists tenants that have someone to pay.
type CompanyLister interface {
	ListCompanyIDsWithActiveEmployees(ctx context.Context) ([]string, error)
}

type PayrollJobs struct {
	runner    PayrollRunner
	companies CompanyLister
	runDay    int
	now       func() time.Time

	mu         sync.Mutex
	lastPeriod string
}

func NewPayrollJobs(runner PayrollRunner, companies CompanyLister, runDay int) *PayrollJobs {
	return &PayrollJobs{
		runner:    runner,
		companies: companies,
		runDay:    runDay,
		now:       time.Now,
	}
}

func (j *PayrollJobs) RegisterJobs(scheduler *Scheduler, interval time.Duration) {
	if j.runDay <= 0 {
		slog.Info("Payroll auto-draft disabled")
		return
	}
	scheduler.Register(Job{
		Name:     "generate_payroll_drafts",
		Interval: interval,
		Fn:       j.GenerateDrafts,
		Timeout:  30 * time.Minute,
	})
}

// previousPeriod returns the month before t.
func previousPeriod(t time.Time) (month, year int) {
	first := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
	prev := first.AddDate(0, -1, 0)
	return int(prev.Month()), prev.Year()
}

// GenerateDrafts computes last month's payroll for every company once, on the
// configured day of month. Locked periods are left alone.
func (j *PayrollJobs) GenerateDrafts(ctx context.Context) error {
	now := j.now().UTC()
	if now.Day() != j.runDay {
		return nil
	}

	month, year := previousPeriod(now)
	period := fmt.Sprintf("%04d-%02d", year, month)

	j.mu.Lock()
	if j.lastPeriod == period {
		j.mu.Unlock()
		return nil
	}
	j.mu.Unlock()

	slog.Info("Cron: Starting payroll draft generation", "period", period)

	companyIDs, err := j.companies.ListCompanyIDsWithActiveEmployees(ctx)
	if err != nil {
		return fmt.Errorf("failed to list companies: %w", err)
	}

	var errs []error
	generated, locked := 0, 0
	for _, companyID := range companyIDs {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		res, err := j.runner.RunPayroll(ctx, companyID, "", payroll.RunPayrollRequest{
			PeriodRequest: payroll.PeriodRequest{PeriodMonth: month, PeriodYear: year},
		})
		switch {
		case errors.Is(err, payroll.ErrPayrollPeriodLocked):
			locked++
			slog.Info("Cron: Payroll period already locked", "company_id", companyID, "period", period)
		case err != nil:
			slog.Error("Cron: Payroll draft generation failed", "company_id", companyID, "period", period, "error", err)
			errs = append(errs, fmt.Errorf("company %s: %w", companyID, err))
		default:
			generated++
			slog.Debug("Cron: Payroll drafts generated", "company_id", companyID, "count", res.Count, "skipped", len(res.Skipped))
		}
	}

	// Failed companies are retried on the next tick.
	if len(errs) == 0 {
		j.mu.Lock()
		j.lastPeriod = period
		j.mu.Unlock()
	}

	slog.Info("Cron: Payroll draft generation finished",
		"period", period, "companies", len(companyIDs), "generated", generated, "locked", locked, "failed", len(errs))
	return errors.Join(errs...)
}
