package payroll

import (
	"strings"

	"go-payroll/internal/shared/numeric"
	"go-payroll/internal/shared/timeutil"
)

// mergeSheets folds the three input streams into one DailyRecord per
// (Staff, Date), in first-seen order. Rows missing a usable Staff or Date are
// skipped silently; manual sheet entry produces them routinely and they are
// not an error. Hours accumulate across repeated rows for the same key;
// rounding happens once at the end so it never compounds.
func mergeSheets(req SubmitTimesheetRequest) []*DailyRecord {
	byKey := make(map[string]*DailyRecord)
	var ordered []*DailyRecord

	get := func(entry SheetEntry) *DailyRecord {
		staff := strings.TrimSpace(entry.Staff)
		if staff == "" {
			return nil
		}
		date, err := timeutil.ParseSheetDate(entry.Date)
		if err != nil {
			return nil
		}

		key := staff + "|" + timeutil.FormatSheetDate(date)
		rec, ok := byKey[key]
		if !ok {
			rec = &DailyRecord{
				Staff: staff,
				Date:  date,
				Year:  date.Year(),
				Month: timeutil.MonthToken(date),
				Week:  timeutil.SundayWeek(date),
				Day:   date.Day(),
			}
			byKey[key] = rec
			ordered = append(ordered, rec)
		}

		if token := strings.TrimSpace(entry.Month); token != "" {
			rec.Month = token
			if year, _, ok := timeutil.ParseMonthToken(token); ok {
				rec.Year = year
			}
		}
		if rate := entry.HourlyRate.Float64(); rate > 0 {
			rec.HourlyRate = rate
		}
		return rec
	}

	for _, entry := range req.TimeSheetData {
		if rec := get(entry); rec != nil {
			rec.HoursInOffice += entry.Hours.Float64()
		}
	}
	for _, entry := range req.LunchSheetData {
		if rec := get(entry); rec != nil {
			rec.HoursInLunch += entry.Hours.Float64()
		}
	}
	for _, entry := range req.LeaveSheetData {
		if rec := get(entry); rec != nil {
			addLeave(rec, entry.LeaveType, entry.Hours.Float64())
		}
	}

	for _, rec := range ordered {
		rec.HoursInOffice = numeric.Round2(rec.HoursInOffice)
		rec.HoursInLunch = numeric.Round2(rec.HoursInLunch)
		net := rec.HoursInOffice - rec.HoursInLunch
		if net < 0 {
			net = 0
		}
		rec.NetHours = numeric.Round2(net)

		rec.Sick = numeric.Round2(rec.Sick)
		rec.Holiday = numeric.Round2(rec.Holiday)
		rec.Vacation = numeric.Round2(rec.Vacation)
		rec.Funeral = numeric.Round2(rec.Funeral)
		rec.Personal = numeric.Round2(rec.Personal)
		rec.LeaveWithoutPay = numeric.Round2(rec.LeaveWithoutPay)
	}

	return ordered
}

// addLeave buckets a leave row by its free-text type. Unrecognized types fall
// back to Personal on purpose: an ambiguous leave entry must never be dropped.
func addLeave(rec *DailyRecord, leaveType string, hours float64) {
	t := strings.ToLower(strings.TrimSpace(leaveType))

	switch {
	case t == "lwp" || strings.Contains(t, "leave without pay") || strings.Contains(t, "unpaid"):
		rec.LeaveWithoutPay += hours
	case strings.HasPrefix(t, "sick"):
		rec.Sick += hours
	case strings.HasPrefix(t, "holiday"):
		rec.Holiday += hours
	case strings.HasPrefix(t, "vacation"):
		rec.Vacation += hours
	case strings.HasPrefix(t, "funeral"):
		rec.Funeral += hours
	default:
		rec.Personal += hours
	}
}
