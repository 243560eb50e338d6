package payroll

import (
	"log/slog"
	"time"

	"github.com/cmlabs-hris/payroll-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/payroll"
	"github.com/shopspring/decimal"
)

var (
	one  = decimal.NewFromInt(1)
	half = decimal.NewFromFloat(0.5)
)

// UnmarkedDayPolicy decides how much of a day with no attendance record is paid.
type UnmarkedDayPolicy func(day time.Time) decimal.Decimal

// PaidSundays pays unmarked Sundays and treats every other unmarked day as loss of pay.
func PaidSundays() UnmarkedDayPolicy {
	return func(day time.Time) decimal.Decimal {
		if day.Weekday() == time.Sunday {
			return one
		}
		return decimal.Zero
	}
}

// PaidWeekends pays unmarked Saturdays and Sundays.
func PaidWeekends() UnmarkedDayPolicy {
	return func(day time.Time) decimal.Decimal {
		switch day.Weekday() {
		case time.Saturday, time.Sunday:
			return one
		}
		return decimal.Zero
	}
}

// UnpaidUnmarked treats every unmarked day as loss of pay.
func UnpaidUnmarked() UnmarkedDayPolicy {
	return func(time.Time) decimal.Decimal {
		return decimal.Zero
	}
}

// PolicyByName resolves a settings value to a policy, defaulting to PaidSundays.
func PolicyByName(name string) UnmarkedDayPolicy {
	switch name {
	case payroll.PolicyPaidSundays, "":
		return PaidSundays()
	case payroll.PolicyPaidWeekends:
		return PaidWeekends()
	case payroll.PolicyUnpaid:
		return UnpaidUnmarked()
	default:
		slog.Warn("Unknown unmarked day policy, using paid_sundays", "policy", name)
		return PaidSundays()
	}
}

// DaysInMonth returns the number of calendar days of month in year.
func DaysInMonth(year, month int) int {
	return time.Date(year, time.Month(month)+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// PeriodRange returns the first and last day of a payroll month.
func PeriodRange(year, month int) (time.Time, time.Time) {
	from := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	return from, from.AddDate(0, 1, -1)
}

// dayCredit is the paid fraction contributed by a marked day.
func dayCredit(rec attendance.Record) decimal.Decimal {
	if rec.IsLOP {
		return decimal.Zero
	}
	switch rec.Status {
	case attendance.StatusPresent, attendance.StatusHoliday, attendance.StatusLeave:
		return one
	case attendance.StatusHalfDay:
		return half
	default:
		return decimal.Zero
	}
}

// AggregateAttendance folds a month of sparse daily records into paid days,
// loss-of-pay days, pay ratio and overtime hours.
func AggregateAttendance(year, month int, records []attendance.Record, policy UnmarkedDayPolicy) attendance.Summary {
	if policy == nil {
		policy = PaidSundays()
	}

	days := DaysInMonth(year, month)
	byDay := make(map[int]attendance.Record, len(records))
	overtime := decimal.Zero

	for _, rec := range records {
		y, m, dd := rec.Date.Date()
		if y != year || int(m) != month {
			continue
		}
		// later records for the same day replace earlier ones
		if prev, ok := byDay[dd]; ok && prev.OvertimeHours != nil {
			overtime = overtime.Sub(*prev.OvertimeHours)
		}
		byDay[dd] = rec
		if rec.OvertimeHours != nil {
			overtime = overtime.Add(*rec.OvertimeHours)
		}
	}

	paid := decimal.Zero
	for dd := 1; dd <= days; dd++ {
		if rec, ok := byDay[dd]; ok {
			paid = paid.Add(dayCredit(rec))
			continue
		}
		paid = paid.Add(policy(time.Date(year, time.Month(month), dd, 0, 0, 0, 0, time.UTC)))
	}

	total := decimal.NewFromInt(int64(days))
	var employeeID string
	if len(records) > 0 {
		employeeID = records[0].EmployeeID
	}

	return attendance.Summary{
		EmployeeID:    employeeID,
		DaysInMonth:   days,
		PaidDays:      paid,
		LOPDays:       total.Sub(paid),
		PayRatio:      paid.Div(total),
		OvertimeHours: overtime,
	}
}
