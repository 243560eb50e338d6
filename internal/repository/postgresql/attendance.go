package postgresql

import (
	"context"
	"fmt"
	"time"

	"github.com/cmlabs-hris/payroll-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/payroll-engine/internal/pkg/database"
)

type attendanceRepository struct {
	db *database.DB
}

func NewAttendanceRepository(db *database.DB) attendance.AttendanceRepository {
	return &attendanceRepository{db: db}
}

// ListByEmployeesInRange implements attendance.AttendanceRepository.
func (a *attendanceRepository) ListByEmployeesInRange(ctx context.Context, companyID string, employeeIDs []string, from, to time.Time) (map[string][]attendance.Record, error) {
	result := make(map[string][]attendance.Record, len(employeeIDs))
	if len(employeeIDs) == 0 {
		return result, nil
	}

	q := GetQuerier(ctx, a.db)

	query := `
		SELECT id, employee_id, company_id, date, status, is_lop, overtime_hours, created_at, updated_at
		FROM attendances
		WHERE company_id = $1
		  AND employee_id = ANY($2::uuid[])
		  AND date BETWEEN $3 AND $4
		ORDER BY employee_id, date, updated_at
	`

	rows, err := q.Query(ctx, query, companyID, employeeIDs, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list attendance: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var rec attendance.Record
		var status string
		if err := rows.Scan(
			&rec.ID, &rec.EmployeeID, &rec.CompanyID, &rec.Date, &status, &rec.IsLOP, &rec.OvertimeHours,
			&rec.CreatedAt, &rec.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan attendance: %w", err)
		}
		rec.Status = attendance.Status(status)
		if !rec.Status.IsValid() {
			return nil, fmt.Errorf("%w: %q on %s", attendance.ErrInvalidStatus, status, rec.Date.Format("2006-01-02"))
		}
		result[rec.EmployeeID] = append(result[rec.EmployeeID], rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate attendance: %w", err)
	}

	return result, nil
}
