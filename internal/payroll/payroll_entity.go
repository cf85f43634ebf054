package payroll

import (
	"time"

	"go-payroll/internal/ledger"
	"go-payroll/internal/shared/timeutil"
)

// DailyRecord is one payroll row per (Staff, Date). Monthly rollups share the
// shape with IsTotal set, Week and Day zeroed.
type DailyRecord struct {
	Staff   string
	Date    time.Time
	Year    int
	Month   string // month token, e.g. "2025-Aug"
	Week    int    // Sunday-anchored week-of-year, 0 for totals
	Day     int    // day of month, 0 for totals
	IsTotal bool

	HoursInOffice float64
	HoursInLunch  float64
	NetHours      float64
	Regular       float64
	Overtime      float64

	Sick            float64
	Holiday         float64
	Vacation        float64
	Funeral         float64
	Personal        float64
	LeaveWithoutPay float64

	HourlyRate float64
	Amount     float64
}

// RecordID is the deterministic identity used for merge grouping and for
// reconciliation against the external ledger.
func (r *DailyRecord) RecordID() string {
	if r.IsTotal {
		return "Total-" + r.Staff + "-" + r.Month
	}
	return r.Staff + "-" + timeutil.FormatSheetDate(r.Date)
}

// ToRow maps the record onto the ledger's verbatim column names.
func (r *DailyRecord) ToRow() ledger.Row {
	workday := ""
	if !r.IsTotal {
		workday = r.Date.Weekday().String()
	}
	return ledger.Row{
		ledger.FieldRecordID:        r.RecordID(),
		ledger.FieldStaff:           r.Staff,
		ledger.FieldDate:            timeutil.FormatSheetDate(r.Date),
		ledger.FieldYear:            r.Year,
		ledger.FieldMonth:           r.Month,
		ledger.FieldWeek:            r.Week,
		ledger.FieldDay:             r.Day,
		ledger.FieldWorkday:         workday,
		ledger.FieldHoursInOffice:   r.HoursInOffice,
		ledger.FieldHoursInLunch:    r.HoursInLunch,
		ledger.FieldNetHours:        r.NetHours,
		ledger.FieldRegular:         r.Regular,
		ledger.FieldOvertime:        r.Overtime,
		ledger.FieldSickHrs:         r.Sick,
		ledger.FieldHolidayHrs:      r.Holiday,
		ledger.FieldVacationHrs:     r.Vacation,
		ledger.FieldFuneralLeave:    r.Funeral,
		ledger.FieldPersonalLeave:   r.Personal,
		ledger.FieldLeaveWithoutPay: r.LeaveWithoutPay,
		ledger.FieldHourlyRate:      r.HourlyRate,
		ledger.FieldAmount:          r.Amount,
	}
}
