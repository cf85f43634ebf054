package payroll

import (
	"context"
	"sort"

	"go-payroll/internal/ledger"
	"go-payroll/internal/shared/numeric"

	"go.uber.org/zap"
)

// weeklyRegularCap is the legal regular-hour ceiling per staff-week; anything
// beyond it in the same week is overtime.
const weeklyRegularCap = 40.0

type weekKey struct {
	Staff string
	Year  int
	Week  int
}

// allocateOvertime splits NetHours into Regular/Overtime per day under the
// weekly cap. Days are walked in date order within each staff-week; input
// order must not influence the split. carryIn seeds each week's running total
// with hours already booked in the ledger before this run.
func allocateOvertime(records []*DailyRecord, carryIn map[weekKey]float64) {
	byWeek := make(map[weekKey][]*DailyRecord)
	for _, rec := range records {
		key := weekKey{Staff: rec.Staff, Year: rec.Year, Week: rec.Week}
		byWeek[key] = append(byWeek[key], rec)
	}

	for key, days := range byWeek {
		sort.Slice(days, func(i, j int) bool {
			return days[i].Date.Before(days[j].Date)
		})

		weekRunning := carryIn[key]
		for _, day := range days {
			remaining := weeklyRegularCap - weekRunning
			if remaining < 0 {
				remaining = 0
			}

			regular := day.NetHours
			if regular > remaining {
				regular = remaining
			}

			day.Regular = numeric.Round2(regular)
			day.Overtime = numeric.Round2(day.NetHours - regular)
			weekRunning += day.NetHours
		}
	}
}

// fetchCarryIn sums the NetHours already persisted for each staff-week in the
// batch, excluding rows this run is about to rewrite (otherwise a re-submission
// would double-count itself and push every day into overtime). Queries go out
// in chunks of chunkSize week keys. A failed chunk is logged and contributes
// zero carry-in; the run proceeds with a fresh cap for those weeks.
func fetchCarryIn(ctx context.Context, store ledger.Store, records []*DailyRecord, chunkSize int, logger *zap.Logger) map[weekKey]float64 {
	if chunkSize <= 0 {
		chunkSize = ledger.DefaultChunkSize
	}

	ownIDs := make(map[string]struct{}, len(records))
	var keys []weekKey
	seen := make(map[weekKey]struct{})
	for _, rec := range records {
		ownIDs[rec.RecordID()] = struct{}{}
		key := weekKey{Staff: rec.Staff, Year: rec.Year, Week: rec.Week}
		if _, ok := seen[key]; !ok {
			seen[key] = struct{}{}
			keys = append(keys, key)
		}
	}

	carryIn := make(map[weekKey]float64, len(keys))
	columns := []string{
		ledger.FieldRecordID,
		ledger.FieldStaff,
		ledger.FieldYear,
		ledger.FieldWeek,
		ledger.FieldNetHours,
	}

	for start := 0; start < len(keys); start += chunkSize {
		end := start + chunkSize
		if end > len(keys) {
			end = len(keys)
		}
		chunk := keys[start:end]

		sels := make([]ledger.Selector, len(chunk))
		for i, key := range chunk {
			sels[i] = ledger.And(
				ledger.Eq(ledger.FieldStaff, key.Staff),
				ledger.Eq(ledger.FieldYear, key.Year),
				ledger.Eq(ledger.FieldWeek, key.Week),
			)
		}
		sel := ledger.Or(sels...)

		rows, err := store.Find(ctx, sel, columns)
		if err != nil {
			logger.Warn("carry-in lookup failed, weeks start at zero",
				zap.String("selector", sel.String()),
				zap.Error(err),
			)
			continue
		}

		for _, row := range rows {
			if _, own := ownIDs[row.String(ledger.FieldRecordID)]; own {
				continue
			}
			key := weekKey{
				Staff: row.String(ledger.FieldStaff),
				Year:  int(row.Float(ledger.FieldYear)),
				Week:  int(row.Float(ledger.FieldWeek)),
			}
			carryIn[key] += row.Float(ledger.FieldNetHours)
		}
	}

	return carryIn
}
