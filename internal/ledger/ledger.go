package ledger

import (
	"context"

	"go-payroll/internal/shared/numeric"
)

// Column names are fixed by the external row store and must be sent verbatim.
const (
	FieldRecordID        = "Record ID"
	FieldStaff           = "Staff"
	FieldDate            = "Date"
	FieldYear            = "Year"
	FieldMonth           = "Month"
	FieldWeek            = "Week"
	FieldDay             = "Day"
	FieldWorkday         = "Workday"
	FieldHoursInOffice   = "Hours in Office"
	FieldHoursInLunch    = "Hours in Lunch"
	FieldNetHours        = "Net Hours"
	FieldRegular         = "Regular"
	FieldOvertime        = "Overtime"
	FieldSickHrs         = "Sick Hrs"
	FieldHolidayHrs      = "Holiday Hrs"
	FieldVacationHrs     = "Vacation Hrs"
	FieldFuneralLeave    = "Funeral Leave"
	FieldPersonalLeave   = "Personal Leave"
	FieldLeaveWithoutPay = "Leave Without Pay"
	FieldHourlyRate      = "Hourly Rate"
	FieldAmount          = "Amount"
)

// Row is one record at the store boundary, keyed by the verbatim column names.
type Row map[string]any

// String reads a field as string; non-string values yield "".
func (r Row) String(field string) string {
	if v, ok := r[field].(string); ok {
		return v
	}
	return ""
}

// Float reads a field as float64, tolerating numeric strings and ints the way
// the backend returns them.
func (r Row) Float(field string) float64 {
	switch v := r[field].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	case int64:
		return float64(v)
	case string:
		return numeric.ParseFloat(v)
	default:
		return 0
	}
}

// ActionResult carries the raw backend outcome of a bulk write so callers can
// tell "nothing to do" apart from a silent upstream failure.
type ActionResult struct {
	Created int    `json:"created"`
	Updated int    `json:"updated"`
	Status  string `json:"status"`
}

//go:generate mockgen -source=ledger.go -destination=mock/ledger_mock.go -package=mock
type Store interface {
	// Find returns rows matching the selector, restricted to columns when
	// columns is non-empty.
	Find(ctx context.Context, sel Selector, columns []string) ([]Row, error)

	// Add inserts rows. The engine decides membership; the store owns transport.
	Add(ctx context.Context, rows []Row) (ActionResult, error)

	// Edit updates existing rows matched by their Record ID.
	Edit(ctx context.Context, rows []Row) (ActionResult, error)
}
