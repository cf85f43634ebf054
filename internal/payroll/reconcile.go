package payroll

import (
	"context"

	"go-payroll/internal/ledger"

	"go.uber.org/zap"
)

// classifyRows partitions the full row set into rows to insert and rows to
// update, by asking the ledger which Record IDs it already holds. Lookup
// failures fail open: affected rows are classified as adds (re-insert beats
// silent loss) and the failure is logged, never raised. Order within each
// partition follows the input order.
func classifyRows(ctx context.Context, store ledger.Store, records []*DailyRecord, chunkSize int, logger *zap.Logger) (adds, edits []*DailyRecord) {
	ids := make([]string, len(records))
	for i, rec := range records {
		ids[i] = rec.RecordID()
	}

	existing, err := ledger.FindKeys(ctx, store, ledger.FieldRecordID, ids, chunkSize)
	if err != nil {
		logger.Warn("existing-key lookup failed for some chunks, affected rows treated as inserts",
			zap.Int("rows", len(records)),
			zap.Error(err),
		)
	}

	for _, rec := range records {
		if _, ok := existing[rec.RecordID()]; ok {
			edits = append(edits, rec)
		} else {
			adds = append(adds, rec)
		}
	}
	return adds, edits
}
