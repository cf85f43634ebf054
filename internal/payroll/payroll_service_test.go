package payroll

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"go-payroll/internal/ledger"
	"go-payroll/internal/messaging/kafka"
	payrollerrors "go-payroll/internal/payroll/errors"
	"go-payroll/internal/runs"
	"go-payroll/internal/shared/apperror"
	"go-payroll/internal/shared/contextutil"
	"go-payroll/internal/shared/numeric"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type fakeRunsRepo struct {
	createErr error
	created   []*runs.PayrollRun
	completed []string
	failed    map[string]string
	list      []runs.PayrollRun
	listErr   error
}

func newFakeRunsRepo() *fakeRunsRepo {
	return &fakeRunsRepo{failed: map[string]string{}}
}

func (f *fakeRunsRepo) Create(ctx context.Context, run *runs.PayrollRun) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.created = append(f.created, run)
	return nil
}

func (f *fakeRunsRepo) Complete(ctx context.Context, id string, adds, edits int, elapsedMS int64) error {
	f.completed = append(f.completed, id)
	return nil
}

func (f *fakeRunsRepo) Fail(ctx context.Context, id string, reason string) error {
	f.failed[id] = reason
	return nil
}

func (f *fakeRunsRepo) ListRecent(ctx context.Context, limit int) ([]runs.PayrollRun, error) {
	return f.list, f.listErr
}

type fakeOutboxRepo struct {
	created []kafka.OutboxEvent
}

func (f *fakeOutboxRepo) WithTx(tx *sql.Tx) kafka.OutboxRepository { return f }

func (f *fakeOutboxRepo) Create(ctx context.Context, event kafka.OutboxEvent) error {
	f.created = append(f.created, event)
	return nil
}

func (f *fakeOutboxRepo) ListPending(ctx context.Context, limit int) ([]kafka.OutboxEvent, error) {
	return nil, nil
}

func (f *fakeOutboxRepo) MarkSent(ctx context.Context, id string) error { return nil }

func (f *fakeOutboxRepo) MarkFailed(ctx context.Context, id string, reason string) error {
	return nil
}

func submitRequest() SubmitTimesheetRequest {
	rate := func(e SheetEntry, r float64) SheetEntry {
		e.HourlyRate = numeric.FlexFloat(r)
		return e
	}
	return SubmitTimesheetRequest{
		TimeSheetData: []SheetEntry{
			rate(entry("Alice", "8/4/2025", 3), 20),
			rate(entry("Alice", "8/5/2025", 3), 20),
			rate(entry("Alice", "8/6/2025", 40), 20),
		},
	}
}

func TestService_Submit_EndToEnd(t *testing.T) {
	var added, edited []ledger.Row
	store := &fakeStore{
		findFn: func(ctx context.Context, sel ledger.Selector, columns []string) ([]ledger.Row, error) {
			// ledger already holds Monday's row
			if len(columns) == 1 && columns[0] == ledger.FieldRecordID {
				return []ledger.Row{{ledger.FieldRecordID: "Alice-8/4/2025"}}, nil
			}
			return nil, nil
		},
		addFn: func(ctx context.Context, rows []ledger.Row) (ledger.ActionResult, error) {
			added = rows
			return ledger.ActionResult{Created: len(rows), Status: "ok"}, nil
		},
		editFn: func(ctx context.Context, rows []ledger.Row) (ledger.ActionResult, error) {
			edited = rows
			return ledger.ActionResult{Updated: len(rows), Status: "ok"}, nil
		},
	}
	runsRepo := newFakeRunsRepo()

	svc := NewService(store, runsRepo, Config{CarryInEnabled: true})
	result, err := svc.Submit(context.Background(), SourceAPI, "sub-1", submitRequest())

	assert.NoError(t, err)
	// 3 daily rows + 1 monthly total; Monday exists, so 3 adds and 1 edit.
	assert.Equal(t, 3, result.Adds)
	assert.Equal(t, 1, result.Edits)
	assert.NotEmpty(t, result.RunID)
	assert.Len(t, result.Results, 2)
	assert.Len(t, added, 3)
	assert.Len(t, edited, 1)
	assert.Equal(t, "Alice-8/4/2025", edited[0][ledger.FieldRecordID])

	assert.Len(t, runsRepo.created, 1)
	assert.Equal(t, "sub-1", runsRepo.created[0].SubmissionKey)
	assert.Equal(t, []string{result.RunID}, runsRepo.completed)

	// overtime split and pricing flow through to the written rows
	for _, row := range added {
		if row[ledger.FieldRecordID] == "Alice-8/6/2025" {
			assert.Equal(t, 34.0, row[ledger.FieldRegular])
			assert.Equal(t, 6.0, row[ledger.FieldOvertime])
			assert.Equal(t, 860.0, row[ledger.FieldAmount])
		}
		if row[ledger.FieldRecordID] == "Total-Alice-2025-Aug" {
			assert.Equal(t, 40.0, row[ledger.FieldRegular])
			assert.Equal(t, 6.0, row[ledger.FieldOvertime])
		}
	}
}

func TestService_Submit_EmptyPayload(t *testing.T) {
	svc := NewService(&fakeStore{}, newFakeRunsRepo(), Config{})

	_, err := svc.Submit(context.Background(), SourceAPI, "sub-1", SubmitTimesheetRequest{})
	assert.ErrorIs(t, err, payrollerrors.ErrEmptyPayload)
}

func TestService_Submit_DuplicateSubmission(t *testing.T) {
	runsRepo := newFakeRunsRepo()
	runsRepo.createErr = errors.New(`duplicate key value violates unique constraint "uq_payroll_runs_submission_key"`)
	svc := NewService(&fakeStore{}, runsRepo, Config{})

	_, err := svc.Submit(context.Background(), SourceAPI, "sub-1", submitRequest())
	assert.ErrorIs(t, err, payrollerrors.ErrDuplicateSubmission)
}

func TestService_Submit_LedgerWriteFailureFailsRun(t *testing.T) {
	store := &fakeStore{
		addFn: func(ctx context.Context, rows []ledger.Row) (ledger.ActionResult, error) {
			return ledger.ActionResult{}, errors.New("502 from ledger")
		},
	}
	runsRepo := newFakeRunsRepo()
	svc := NewService(store, runsRepo, Config{})

	_, err := svc.Submit(context.Background(), SourceAPI, "sub-1", submitRequest())
	var appErr *apperror.AppError
	assert.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperror.CodeLedgerUnavailable, appErr.Code)

	assert.Len(t, runsRepo.created, 1)
	assert.Empty(t, runsRepo.completed)
	assert.Len(t, runsRepo.failed, 1)
}

func TestService_Submit_AllRowsSkippedStillSucceeds(t *testing.T) {
	var findCalls int
	store := &fakeStore{
		findFn: func(ctx context.Context, sel ledger.Selector, columns []string) ([]ledger.Row, error) {
			findCalls++
			return nil, nil
		},
	}
	runsRepo := newFakeRunsRepo()
	svc := NewService(store, runsRepo, Config{CarryInEnabled: true})

	req := SubmitTimesheetRequest{
		TimeSheetData: []SheetEntry{entry("", "8/4/2025", 8)},
	}
	result, err := svc.Submit(context.Background(), SourceAPI, "sub-1", req)

	assert.NoError(t, err)
	assert.Zero(t, result.Adds)
	assert.Zero(t, result.Edits)
	assert.Zero(t, findCalls, "no ledger lookups when nothing merged")
	assert.Equal(t, []string{result.RunID}, runsRepo.completed)
}

func TestService_Submit_BlankKeyGetsGenerated(t *testing.T) {
	runsRepo := newFakeRunsRepo()
	svc := NewService(&fakeStore{}, runsRepo, Config{})

	_, err := svc.Submit(context.Background(), SourceKafka, "", submitRequest())
	assert.NoError(t, err)
	assert.Len(t, runsRepo.created, 1)
	assert.NotEmpty(t, runsRepo.created[0].SubmissionKey)
}

func TestService_Submit_StagesRunCompletedEvent(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectCommit()

	outbox := &fakeOutboxRepo{}
	runsRepo := newFakeRunsRepo()
	svc := NewServiceWithOutbox(db, &fakeStore{}, runsRepo, outbox, Config{})

	result, err := svc.Submit(context.Background(), SourceAPI, "sub-1", submitRequest())
	assert.NoError(t, err)

	assert.Len(t, outbox.created, 1)
	event := outbox.created[0]
	assert.Equal(t, "payroll_run_completed", event.EventType)
	assert.Equal(t, "payroll_run", event.AggregateType)
	assert.Equal(t, result.RunID, event.AggregateID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// memoryStore is a stateful in-memory ledger: writes land in a map keyed by
// Record ID and Find evaluates selectors against the stored rows, so repeated
// engine runs see their own previous output.
type memoryStore struct {
	rows  map[string]ledger.Row
	adds  int
	edits int
}

func newMemoryStore() *memoryStore {
	return &memoryStore{rows: map[string]ledger.Row{}}
}

func (m *memoryStore) Find(ctx context.Context, sel ledger.Selector, columns []string) ([]ledger.Row, error) {
	var out []ledger.Row
	for _, row := range m.rows {
		if matchSelector(row, sel) {
			out = append(out, row)
		}
	}
	return out, nil
}

func (m *memoryStore) Add(ctx context.Context, rows []ledger.Row) (ledger.ActionResult, error) {
	for _, row := range rows {
		m.rows[row.String(ledger.FieldRecordID)] = row
	}
	m.adds += len(rows)
	return ledger.ActionResult{Created: len(rows), Status: "ok"}, nil
}

func (m *memoryStore) Edit(ctx context.Context, rows []ledger.Row) (ledger.ActionResult, error) {
	for _, row := range rows {
		m.rows[row.String(ledger.FieldRecordID)] = row
	}
	m.edits += len(rows)
	return ledger.ActionResult{Updated: len(rows), Status: "ok"}, nil
}

func matchSelector(row ledger.Row, sel ledger.Selector) bool {
	switch sel.Op {
	case "eq":
		return fmt.Sprintf("%v", row[sel.Field]) == fmt.Sprintf("%v", sel.Value)
	case "and":
		for _, op := range sel.Operands {
			if !matchSelector(row, op) {
				return false
			}
		}
		return true
	case "or":
		for _, op := range sel.Operands {
			if matchSelector(row, op) {
				return true
			}
		}
		return false
	default:
		return false
	}
}

func TestService_Submit_RerunReproducesFirstRun(t *testing.T) {
	// Submitting the same batch twice against a store that kept the first
	// run's rows must give the identical Regular/Overtime split (carry-in
	// ignores the batch's own rows) and classify everything as edits.
	store := newMemoryStore()
	runsRepo := newFakeRunsRepo()
	svc := NewService(store, runsRepo, Config{CarryInEnabled: true})

	first, err := svc.Submit(context.Background(), SourceAPI, "sub-1", submitRequest())
	assert.NoError(t, err)
	assert.Equal(t, 4, first.Adds) // 3 days + monthly total
	assert.Zero(t, first.Edits)

	snapshot := map[string][2]float64{}
	for id, row := range store.rows {
		snapshot[id] = [2]float64{row.Float(ledger.FieldRegular), row.Float(ledger.FieldOvertime)}
	}
	assert.Equal(t, [2]float64{34, 6}, snapshot["Alice-8/6/2025"])

	second, err := svc.Submit(context.Background(), SourceAPI, "sub-2", submitRequest())
	assert.NoError(t, err)
	assert.Zero(t, second.Adds)
	assert.Equal(t, 4, second.Edits)

	for id, row := range store.rows {
		got := [2]float64{row.Float(ledger.FieldRegular), row.Float(ledger.FieldOvertime)}
		assert.Equal(t, snapshot[id], got, "row %s changed on re-run", id)
	}
}

func TestService_Submit_UsesContextLogger(t *testing.T) {
	core, observed := observer.New(zapcore.InfoLevel)
	ctx := contextutil.WithLogger(context.Background(), zap.New(core))

	svc := NewService(&fakeStore{}, newFakeRunsRepo(), Config{})
	_, err := svc.Submit(ctx, SourceAPI, "sub-1", submitRequest())
	assert.NoError(t, err)

	assert.NotZero(t, observed.FilterMessage("payroll run started").Len())
	assert.NotZero(t, observed.FilterMessage("payroll run completed").Len())
}

func TestService_RecentRuns(t *testing.T) {
	runsRepo := newFakeRunsRepo()
	reason := "ledger down"
	runsRepo.list = []runs.PayrollRun{
		{Source: SourceAPI, Status: runs.StatusCompleted, Adds: 3, Edits: 1, ElapsedMS: 42},
		{Source: SourceKafka, Status: runs.StatusFailed, Error: &reason},
	}
	svc := NewService(&fakeStore{}, runsRepo, Config{})

	resp, err := svc.RecentRuns(context.Background(), 20)
	assert.NoError(t, err)
	assert.Len(t, resp, 2)
	assert.Equal(t, 3, resp[0].Adds)
	assert.Equal(t, "ledger down", resp[1].Error)
}
