package payroll

import (
	"go-payroll/internal/shared/numeric"
	"go-payroll/internal/shared/timeutil"
)

// monthlyTotals emits one total record per (Staff, Month token), summing every
// numeric field of the contributing days. Totals carry Week=0 and Day=0, and
// their Date is the last day of the month so downstream date logic treats them
// consistently; an unparseable month token falls back to the first
// contributing day's date. The result preserves first-seen group order and is
// meant to be appended to the daily set, not to replace it.
func monthlyTotals(records []*DailyRecord) []*DailyRecord {
	type group struct {
		total *DailyRecord
	}
	byMonth := make(map[string]*group)
	var ordered []*DailyRecord

	for _, rec := range records {
		key := rec.Staff + "|" + rec.Month
		g, ok := byMonth[key]
		if !ok {
			total := &DailyRecord{
				Staff:   rec.Staff,
				Month:   rec.Month,
				Year:    rec.Year,
				Date:    rec.Date,
				IsTotal: true,
			}
			if year, month, parsed := timeutil.ParseMonthToken(rec.Month); parsed {
				total.Date = timeutil.EndOfMonth(year, month)
			}
			g = &group{total: total}
			byMonth[key] = g
			ordered = append(ordered, total)
		}

		t := g.total
		t.HoursInOffice += rec.HoursInOffice
		t.HoursInLunch += rec.HoursInLunch
		t.NetHours += rec.NetHours
		t.Regular += rec.Regular
		t.Overtime += rec.Overtime
		t.Sick += rec.Sick
		t.Holiday += rec.Holiday
		t.Vacation += rec.Vacation
		t.Funeral += rec.Funeral
		t.Personal += rec.Personal
		t.LeaveWithoutPay += rec.LeaveWithoutPay
		t.HourlyRate += rec.HourlyRate
		t.Amount += rec.Amount
	}

	for _, total := range ordered {
		total.HoursInOffice = numeric.Round2(total.HoursInOffice)
		total.HoursInLunch = numeric.Round2(total.HoursInLunch)
		total.NetHours = numeric.Round2(total.NetHours)
		total.Regular = numeric.Round2(total.Regular)
		total.Overtime = numeric.Round2(total.Overtime)
		total.Amount = numeric.Round2(total.Amount)
	}

	return ordered
}
