package payroll

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/cmlabs-hris/payroll-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/audit"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/employee"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/notification"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/payroll"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/salary"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/statutory"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/tax"
	"github.com/google/uuid"
)

type passthroughTx struct{ calls int }

func (p *passthroughTx) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	p.calls++
	return fn(ctx)
}

// fakePayrollRepo keeps records in memory and mirrors the SQL upsert and
// transition semantics.
type fakePayrollRepo struct {
	mu        sync.Mutex
	settings  map[string]payroll.Settings
	records   map[string]payroll.Record
	conflicts int
	upserts   int
}

func newFakePayrollRepo() *fakePayrollRepo {
	return &fakePayrollRepo{
		settings: map[string]payroll.Settings{},
		records:  map[string]payroll.Record{},
	}
}

func recordKey(employeeID string, month, year int) string {
	return fmt.Sprintf("%s|%d|%d", employeeID, month, year)
}

func (f *fakePayrollRepo) GetSettings(_ context.Context, companyID string) (payroll.Settings, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.settings[companyID]
	if !ok {
		return payroll.Settings{}, payroll.ErrPayrollSettingsNotFound
	}
	return s, nil
}

func (f *fakePayrollRepo) UpsertSettings(_ context.Context, s payroll.Settings) (payroll.Settings, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	f.settings[s.CompanyID] = s
	return s, nil
}

func (f *fakePayrollRepo) UpsertRecord(_ context.Context, rec payroll.Record, overwriteLocked bool) (payroll.Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.upserts++
	if f.conflicts > 0 {
		f.conflicts--
		return payroll.Record{}, fmt.Errorf("%w: serialization failure", payroll.ErrPersistenceConflict)
	}

	key := recordKey(rec.EmployeeID, rec.PeriodMonth, rec.PeriodYear)
	if existing, ok := f.records[key]; ok {
		if existing.Status.IsLocked() && !overwriteLocked {
			return payroll.Record{}, payroll.ErrPayrollPeriodLocked
		}
		rec.ID = existing.ID
		rec.CreatedAt = existing.CreatedAt
	} else {
		rec.ID = uuid.NewString()
		rec.CreatedAt = time.Now()
	}
	rec.Status = payroll.StatusDraft
	rec.ApprovedAt, rec.ApprovedBy, rec.PaidAt, rec.TransactionRef = nil, nil, nil, nil
	f.records[key] = rec
	return rec, nil
}

func (f *fakePayrollRepo) GetRecordByID(_ context.Context, id, companyID string) (payroll.Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.records {
		if r.ID == id && r.CompanyID == companyID {
			return r, nil
		}
	}
	return payroll.Record{}, payroll.ErrPayrollRecordNotFound
}

func (f *fakePayrollRepo) period(companyID string, month, year int) []payroll.Record {
	var out []payroll.Record
	for _, r := range f.records {
		if r.CompanyID == companyID && r.PeriodMonth == month && r.PeriodYear == year {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].EmployeeID < out[j].EmployeeID })
	return out
}

func (f *fakePayrollRepo) ListByPeriod(_ context.Context, companyID string, month, year int) ([]payroll.Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.period(companyID, month, year), nil
}

func (f *fakePayrollRepo) CountLocked(_ context.Context, companyID string, month, year int) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, r := range f.period(companyID, month, year) {
		if r.Status.IsLocked() {
			n++
		}
	}
	return n, nil
}

func (f *fakePayrollRepo) ApplyTransition(_ context.Context, p payroll.TransitionParams) ([]payroll.Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !p.Transition.IsValid() {
		return nil, payroll.ErrInvalidTransition
	}

	var affected []payroll.Record
	for _, r := range f.period(p.CompanyID, p.Month, p.Year) {
		if !p.Transition.Allows(r.Status) {
			continue
		}
		at := p.At
		switch p.Transition {
		case payroll.TransitionApprove:
			actor := p.ActorID
			r.ApprovedAt, r.ApprovedBy = &at, &actor
			r.PaidAt, r.TransactionRef = nil, nil
		case payroll.TransitionUnlock:
			r.ApprovedAt, r.ApprovedBy = nil, nil
		case payroll.TransitionDisburse:
			r.PaidAt, r.TransactionRef = &at, p.TransactionRef
		}
		r.Status = p.Transition.Target()
		f.records[recordKey(r.EmployeeID, r.PeriodMonth, r.PeriodYear)] = r
		affected = append(affected, r)
	}
	return affected, nil
}

func (f *fakePayrollRepo) GetPeriodSummary(_ context.Context, companyID string, month, year int) (payroll.PeriodSummary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	sum := payroll.PeriodSummary{PeriodMonth: month, PeriodYear: year}
	for _, r := range f.period(companyID, month, year) {
		sum.TotalEmployees++
		sum.TotalGross = sum.TotalGross.Add(r.GrossSalary)
		sum.TotalDeductions = sum.TotalDeductions.Add(r.TotalDeductions)
		sum.TotalNet = sum.TotalNet.Add(r.NetSalary)
		switch r.Status {
		case payroll.StatusDraft:
			sum.DraftCount++
		case payroll.StatusApproved:
			sum.ApprovedCount++
		case payroll.StatusPaid:
			sum.PaidCount++
			sum.TotalPaid = sum.TotalPaid.Add(r.NetSalary)
		}
	}
	return sum, nil
}

// setStatus forces every record of the period into status.
func (f *fakePayrollRepo) setStatus(companyID string, month, year int, status payroll.Status) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.period(companyID, month, year) {
		r.Status = status
		f.records[recordKey(r.EmployeeID, r.PeriodMonth, r.PeriodYear)] = r
	}
}

type fakeEmployeeRepo struct {
	employees []employee.Employee
}

func (f *fakeEmployeeRepo) GetActiveByCompanyID(_ context.Context, companyID string) ([]employee.Employee, error) {
	var out []employee.Employee
	for _, e := range f.employees {
		if e.CompanyID == companyID && e.IsActive() {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeEmployeeRepo) ListCompanyIDsWithActiveEmployees(context.Context) ([]string, error) {
	var out []string
	for _, e := range f.employees {
		if e.IsActive() && !slices.Contains(out, e.CompanyID) {
			out = append(out, e.CompanyID)
		}
	}
	return out, nil
}

type fakeAttendanceRepo struct {
	records map[string][]attendance.Record
	err     error
}

func (f *fakeAttendanceRepo) ListByEmployeesInRange(_ context.Context, _ string, employeeIDs []string, from, to time.Time) (map[string][]attendance.Record, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := make(map[string][]attendance.Record)
	for _, id := range employeeIDs {
		for _, r := range f.records[id] {
			if !r.Date.Before(from) && !r.Date.After(to) {
				out[id] = append(out[id], r)
			}
		}
	}
	return out, nil
}

type fakeSalaryRepo struct {
	structures map[string]salary.Structure
}

func (f *fakeSalaryRepo) GetStructuresByIDs(_ context.Context, ids []string, _ string) (map[string]salary.Structure, error) {
	out := make(map[string]salary.Structure)
	for _, id := range ids {
		if s, ok := f.structures[id]; ok {
			out[id] = s
		}
	}
	return out, nil
}

type fakeStatutoryRepo struct {
	configs map[string]statutory.Config
}

func (f *fakeStatutoryRepo) GetByCompanyID(_ context.Context, companyID string) (statutory.Config, error) {
	c, ok := f.configs[companyID]
	if !ok {
		return statutory.Config{}, statutory.ErrConfigNotFound
	}
	return c, nil
}

func (f *fakeStatutoryRepo) Upsert(_ context.Context, cfg statutory.Config) (statutory.Config, error) {
	if f.configs == nil {
		f.configs = map[string]statutory.Config{}
	}
	f.configs[cfg.CompanyID] = cfg
	return cfg, nil
}

type fakeDeclarationRepo struct {
	declarations map[string]tax.Declaration
	requestedFY  int
}

func (f *fakeDeclarationRepo) GetByEmployee(_ context.Context, employeeID string, financialYear int, _ string) (tax.Declaration, error) {
	d, ok := f.declarations[employeeID]
	if !ok || d.FinancialYear != financialYear {
		return tax.Declaration{}, tax.ErrDeclarationNotFound
	}
	return d, nil
}

func (f *fakeDeclarationRepo) ListByCompanyAndFinancialYear(_ context.Context, _ string, financialYear int) (map[string]tax.Declaration, error) {
	f.requestedFY = financialYear
	out := make(map[string]tax.Declaration)
	for id, d := range f.declarations {
		if d.FinancialYear == financialYear {
			out[id] = d
		}
	}
	return out, nil
}

type fakeAuditRepo struct {
	mu      sync.Mutex
	entries []audit.Entry
	err     error
}

func (f *fakeAuditRepo) Record(_ context.Context, e audit.Entry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.entries = append(f.entries, e)
	return nil
}

func (f *fakeAuditRepo) actions() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.entries))
	for _, e := range f.entries {
		out = append(out, e.Action)
	}
	return out
}

type fakeNotifier struct {
	mu     sync.Mutex
	queued []notification.CreateNotificationRequest
}

func (f *fakeNotifier) QueueNotification(_ context.Context, req notification.CreateNotificationRequest) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queued = append(f.queued, req)
	return nil
}

func (f *fakeNotifier) QueueBulkNotification(_ context.Context, reqs []notification.CreateNotificationRequest) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queued = append(f.queued, reqs...)
	return nil
}

func (f *fakeNotifier) GetNotifications(context.Context, string, notification.ListFilter) (*notification.NotificationListResponse, error) {
	return &notification.NotificationListResponse{}, nil
}

func (f *fakeNotifier) GetUnreadCount(context.Context, string) (int, error) { return 0, nil }

func (f *fakeNotifier) MarkAllAsRead(context.Context, string) error { return nil }

func (f *fakeNotifier) Subscribe(context.Context, string) (<-chan notification.SSEEvent, func()) {
	ch := make(chan notification.SSEEvent)
	return ch, func() { close(ch) }
}

func (f *fakeNotifier) Stop() {}

func (f *fakeNotifier) types() []notification.NotificationType {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]notification.NotificationType, 0, len(f.queued))
	for _, q := range f.queued {
		out = append(out, q.Type)
	}
	return out
}
