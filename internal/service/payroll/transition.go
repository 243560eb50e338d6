package payroll

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/cmlabs-hris/payroll-engine/internal/domain/audit"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/notification"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/payroll"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// applyTransition runs one bulk status change atomically. A period with no
// matching records is a no-op unless the caller asked for at least one match.
func (s *PayrollServiceImpl) applyTransition(ctx context.Context, params payroll.TransitionParams, requireMatch bool) ([]payroll.Record, error) {
	var affected []payroll.Record
	err := s.tx.WithinTransaction(ctx, func(txCtx context.Context) error {
		records, err := s.payrollRepo.ApplyTransition(txCtx, params)
		if err != nil {
			return err
		}
		affected = records
		return nil
	})
	if err != nil {
		return nil, err
	}

	if len(affected) == 0 && requireMatch {
		return nil, payroll.ErrPayrollRecordNotFound
	}

	slog.Info("Payroll transition applied",
		"company_id", params.CompanyID,
		"transition", params.Transition,
		"period_month", params.Month,
		"period_year", params.Year,
		"modified", len(affected),
	)
	return affected, nil
}

func (s *PayrollServiceImpl) ApprovePayroll(ctx context.Context, companyID, actorID string, req payroll.TransitionRequest) (payroll.TransitionResult, error) {
	if err := req.Validate(); err != nil {
		return payroll.TransitionResult{}, err
	}

	affected, err := s.applyTransition(ctx, payroll.TransitionParams{
		CompanyID:  companyID,
		Month:      req.PeriodMonth,
		Year:       req.PeriodYear,
		Transition: payroll.TransitionApprove,
		ActorID:    actorID,
		At:         s.now(),
	}, req.RequireMatch)
	if err != nil {
		return payroll.TransitionResult{}, err
	}

	s.recordAudit(ctx, companyID, actorID, audit.ActionPayrollApprove, periodAuditData(req.PeriodRequest, len(affected)))
	s.notify(ctx, employeeNotifications(affected, actorID, notification.TypePayrollApproved,
		"Payslip available",
		fmt.Sprintf("Your payslip for %02d/%d has been approved", req.PeriodMonth, req.PeriodYear),
	))

	return payroll.TransitionResult{
		Message:       fmt.Sprintf("Payroll for %02d/%d approved", req.PeriodMonth, req.PeriodYear),
		ModifiedCount: len(affected),
	}, nil
}

func (s *PayrollServiceImpl) UnlockPayroll(ctx context.Context, companyID, actorID string, req payroll.TransitionRequest) (payroll.TransitionResult, error) {
	if err := req.Validate(); err != nil {
		return payroll.TransitionResult{}, err
	}

	affected, err := s.applyTransition(ctx, payroll.TransitionParams{
		CompanyID:  companyID,
		Month:      req.PeriodMonth,
		Year:       req.PeriodYear,
		Transition: payroll.TransitionUnlock,
		ActorID:    actorID,
		At:         s.now(),
	}, req.RequireMatch)
	if err != nil {
		return payroll.TransitionResult{}, err
	}

	s.recordAudit(ctx, companyID, actorID, audit.ActionPayrollUnlock, periodAuditData(req.PeriodRequest, len(affected)))
	if actorID != "" && len(affected) > 0 {
		s.notify(ctx, []notification.CreateNotificationRequest{{
			CompanyID:   companyID,
			RecipientID: actorID,
			Type:        notification.TypePayrollUnlocked,
			Title:       "Payroll unlocked",
			Message:     fmt.Sprintf("Payroll for %02d/%d is back in draft and can be re-run", req.PeriodMonth, req.PeriodYear),
			Data:        periodAuditData(req.PeriodRequest, len(affected)),
		}})
	}

	return payroll.TransitionResult{
		Message:       fmt.Sprintf("Payroll for %02d/%d unlocked", req.PeriodMonth, req.PeriodYear),
		ModifiedCount: len(affected),
	}, nil
}

func (s *PayrollServiceImpl) DisbursePayroll(ctx context.Context, companyID, actorID string, req payroll.DisburseRequest) (payroll.TransitionResult, error) {
	if err := req.Validate(); err != nil {
		return payroll.TransitionResult{}, err
	}

	now := s.now()
	ref := req.TransactionRef
	if ref == nil {
		generated := newTransactionRef(req.PeriodMonth, req.PeriodYear)
		ref = &generated
	}

	affected, err := s.applyTransition(ctx, payroll.TransitionParams{
		CompanyID:      companyID,
		Month:          req.PeriodMonth,
		Year:           req.PeriodYear,
		Transition:     payroll.TransitionDisburse,
		ActorID:        actorID,
		At:             req.PaidAt(now),
		TransactionRef: ref,
	}, req.RequireMatch)
	if err != nil {
		return payroll.TransitionResult{}, err
	}

	totalNet := decimal.Zero
	for _, r := range affected {
		totalNet = totalNet.Add(r.NetSalary)
	}

	data := periodAuditData(req.PeriodRequest, len(affected))
	data["transaction_ref"] = *ref
	data["total_net"] = totalNet.String()
	s.recordAudit(ctx, companyID, actorID, audit.ActionPayrollDisburse, data)
	s.notify(ctx, employeeNotifications(affected, actorID, notification.TypePayrollPaid,
		"Salary paid",
		fmt.Sprintf("Your salary for %02d/%d has been paid", req.PeriodMonth, req.PeriodYear),
	))

	return payroll.TransitionResult{
		Message:       fmt.Sprintf("Payroll for %02d/%d disbursed", req.PeriodMonth, req.PeriodYear),
		ModifiedCount: len(affected),
		TotalNet:      &totalNet,
	}, nil
}

// newTransactionRef builds a reference like PAY-202405-1a2b3c4d.
func newTransactionRef(month, year int) string {
	return fmt.Sprintf("PAY-%04d%02d-%s", year, month, uuid.NewString()[:8])
}

func periodAuditData(req payroll.PeriodRequest, modified int) map[string]interface{} {
	return map[string]interface{}{
		"period_month": req.PeriodMonth,
		"period_year":  req.PeriodYear,
		"modified":     modified,
	}
}

// employeeNotifications addresses one notification to each affected employee
// that has a user account.
func employeeNotifications(records []payroll.Record, senderID string, typ notification.NotificationType, title, message string) []notification.CreateNotificationRequest {
	var sender *string
	if senderID != "" {
		sender = &senderID
	}

	reqs := make([]notification.CreateNotificationRequest, 0, len(records))
	for _, r := range records {
		if r.UserID == nil || *r.UserID == "" {
			continue
		}
		reqs = append(reqs, notification.CreateNotificationRequest{
			CompanyID:   r.CompanyID,
			RecipientID: *r.UserID,
			SenderID:    sender,
			Type:        typ,
			Title:       title,
			Message:     message,
			Data: map[string]interface{}{
				"payroll_record_id": r.ID,
				"period_month":      r.PeriodMonth,
				"period_year":       r.PeriodYear,
				"net_salary":        r.NetSalary.String(),
			},
		})
	}
	return reqs
}
