package payroll

import (
	"context"
	"errors"
	"testing"

	"go-payroll/internal/ledger"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestClassifyRows_SplitsByExistingRecordID(t *testing.T) {
	records := []*DailyRecord{
		day(t, "Alice", "8/4/2025", 8),
		day(t, "Alice", "8/5/2025", 8),
		day(t, "Bob", "8/4/2025", 8),
	}

	store := &fakeStore{
		findFn: func(ctx context.Context, sel ledger.Selector, columns []string) ([]ledger.Row, error) {
			return []ledger.Row{
				{ledger.FieldRecordID: "Alice-8/5/2025"},
			}, nil
		},
	}

	adds, edits := classifyRows(context.Background(), store, records, 0, zap.NewNop())

	assert.Len(t, adds, 2)
	assert.Equal(t, "Alice-8/4/2025", adds[0].RecordID())
	assert.Equal(t, "Bob-8/4/2025", adds[1].RecordID())
	assert.Len(t, edits, 1)
	assert.Equal(t, "Alice-8/5/2025", edits[0].RecordID())
}

func TestClassifyRows_LookupFailureFallsBackToAdds(t *testing.T) {
	records := []*DailyRecord{
		day(t, "Alice", "8/4/2025", 8),
		day(t, "Bob", "8/4/2025", 8),
	}

	store := &fakeStore{
		findFn: func(ctx context.Context, sel ledger.Selector, columns []string) ([]ledger.Row, error) {
			return nil, errors.New("ledger down")
		},
	}

	adds, edits := classifyRows(context.Background(), store, records, 0, zap.NewNop())

	assert.Len(t, adds, 2)
	assert.Empty(t, edits)
}

func TestClassifyRows_PreservesInputOrder(t *testing.T) {
	var records []*DailyRecord
	dates := []string{"8/4/2025", "8/5/2025", "8/6/2025", "8/7/2025"}
	for _, d := range dates {
		records = append(records, day(t, "Alice", d, 8))
	}

	store := &fakeStore{
		findFn: func(ctx context.Context, sel ledger.Selector, columns []string) ([]ledger.Row, error) {
			return []ledger.Row{
				{ledger.FieldRecordID: "Alice-8/5/2025"},
				{ledger.FieldRecordID: "Alice-8/7/2025"},
			}, nil
		},
	}

	adds, edits := classifyRows(context.Background(), store, records, 0, zap.NewNop())

	assert.Equal(t, []string{"Alice-8/4/2025", "Alice-8/6/2025"}, recordIDs(adds))
	assert.Equal(t, []string{"Alice-8/5/2025", "Alice-8/7/2025"}, recordIDs(edits))
}

func recordIDs(records []*DailyRecord) []string {
	ids := make([]string, len(records))
	for i, rec := range records {
		ids[i] = rec.RecordID()
	}
	return ids
}
