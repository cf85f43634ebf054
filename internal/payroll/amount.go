package payroll

import (
	"github.com/shopspring/decimal"
)

var overtimeMultiplier = decimal.NewFromFloat(1.5)

// computeAmount derives the pay amount for one record:
// rate*regular + rate*1.5*overtime + rate*paid leave. Leave Without Pay never
// contributes. A missing or non-positive rate means the rate isn't known yet;
// the amount stays zero rather than erroring.
func computeAmount(rec *DailyRecord) {
	if rec.HourlyRate <= 0 {
		rec.Amount = 0
		return
	}

	rate := decimal.NewFromFloat(rec.HourlyRate)
	paidLeave := decimal.NewFromFloat(rec.Sick).
		Add(decimal.NewFromFloat(rec.Holiday)).
		Add(decimal.NewFromFloat(rec.Vacation)).
		Add(decimal.NewFromFloat(rec.Funeral)).
		Add(decimal.NewFromFloat(rec.Personal))

	total := rate.Mul(decimal.NewFromFloat(rec.Regular)).
		Add(rate.Mul(overtimeMultiplier).Mul(decimal.NewFromFloat(rec.Overtime))).
		Add(rate.Mul(paidLeave))

	rec.Amount, _ = total.Round(2).Float64()
}
