package ledger_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"go-payroll/internal/ledger"

	"github.com/stretchr/testify/assert"
)

type fakeStore struct {
	findFn func(ctx context.Context, sel ledger.Selector, columns []string) ([]ledger.Row, error)
	addFn  func(ctx context.Context, rows []ledger.Row) (ledger.ActionResult, error)
	editFn func(ctx context.Context, rows []ledger.Row) (ledger.ActionResult, error)
}

func (f *fakeStore) Find(ctx context.Context, sel ledger.Selector, columns []string) ([]ledger.Row, error) {
	if f.findFn != nil {
		return f.findFn(ctx, sel, columns)
	}
	return nil, nil
}

func (f *fakeStore) Add(ctx context.Context, rows []ledger.Row) (ledger.ActionResult, error) {
	if f.addFn != nil {
		return f.addFn(ctx, rows)
	}
	return ledger.ActionResult{}, nil
}

func (f *fakeStore) Edit(ctx context.Context, rows []ledger.Row) (ledger.ActionResult, error) {
	if f.editFn != nil {
		return f.editFn(ctx, rows)
	}
	return ledger.ActionResult{}, nil
}

func TestFindKeys_ChunksQueries(t *testing.T) {
	keys := make([]string, 40)
	for i := range keys {
		keys[i] = fmt.Sprintf("key-%02d", i)
	}

	var chunkSizes []int
	store := &fakeStore{
		findFn: func(ctx context.Context, sel ledger.Selector, columns []string) ([]ledger.Row, error) {
			assert.Equal(t, []string{ledger.FieldRecordID}, columns)
			// A full chunk arrives as an OR of eq leaves; leftovers under the
			// chunk size may collapse to a bare eq.
			if sel.Op == "eq" {
				chunkSizes = append(chunkSizes, 1)
				return nil, nil
			}
			chunkSizes = append(chunkSizes, len(sel.Operands))
			// Report the first key of every chunk as existing.
			return []ledger.Row{{ledger.FieldRecordID: sel.Operands[0].Value}}, nil
		},
	}

	found, err := ledger.FindKeys(context.Background(), store, ledger.FieldRecordID, keys, 15)
	assert.NoError(t, err)
	assert.Equal(t, []int{15, 15, 10}, chunkSizes)
	assert.Len(t, found, 3)
	assert.Contains(t, found, "key-00")
	assert.Contains(t, found, "key-15")
	assert.Contains(t, found, "key-30")
}

func TestFindKeys_FailingChunkDoesNotStopOthers(t *testing.T) {
	keys := []string{"a", "b", "c", "d"}
	calls := 0
	store := &fakeStore{
		findFn: func(ctx context.Context, sel ledger.Selector, columns []string) ([]ledger.Row, error) {
			calls++
			if calls == 1 {
				return nil, errors.New("backend down")
			}
			return []ledger.Row{{ledger.FieldRecordID: "c"}}, nil
		},
	}

	found, err := ledger.FindKeys(context.Background(), store, ledger.FieldRecordID, keys, 2)
	assert.Error(t, err)
	assert.Equal(t, 2, calls)
	assert.Len(t, found, 1)
	assert.Contains(t, found, "c")
}

func TestFindKeys_NoKeys(t *testing.T) {
	store := &fakeStore{
		findFn: func(ctx context.Context, sel ledger.Selector, columns []string) ([]ledger.Row, error) {
			t.Fatal("no query expected for empty key set")
			return nil, nil
		},
	}

	found, err := ledger.FindKeys(context.Background(), store, ledger.FieldRecordID, nil, 0)
	assert.NoError(t, err)
	assert.Empty(t, found)
}
