package attendance

import (
	"context"
	"time"
)

type AttendanceRepository interface {
	// ListByEmployeesInRange returns records with from <= date <= to, grouped by employee ID.
	ListByEmployeesInRange(ctx context.Context, companyID string, employeeIDs []string, from, to time.Time) (map[string][]Record, error)
}
