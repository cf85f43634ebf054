package payroll

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"go-payroll/internal/events"
	"go-payroll/internal/ledger"
	"go-payroll/internal/messaging/kafka"
	payrollerrors "go-payroll/internal/payroll/errors"
	"go-payroll/internal/runs"
	"go-payroll/internal/shared/apperror"
	"go-payroll/internal/shared/contextutil"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	SourceAPI   = "api"
	SourceKafka = "kafka"
)

type Config struct {
	// CarryInEnabled seeds each staff-week's 40h cap with hours already in
	// the ledger. Off means every week starts fresh at zero.
	CarryInEnabled bool
	// ChunkSize bounds keys per ledger query; 0 uses the default of 15.
	ChunkSize int
}

//go:generate mockgen -source=payroll_service.go -destination=mock/payroll_service_mock.go -package=mock
type Service interface {
	Submit(ctx context.Context, source, submissionKey string, req SubmitTimesheetRequest) (SubmitResult, error)
	RecentRuns(ctx context.Context, limit int) ([]RunResponse, error)
}

type service struct {
	db     *sql.DB
	store  ledger.Store
	runs   runs.Repository
	outbox kafka.OutboxRepository
	cfg    Config
	logger *zap.Logger
}

func NewService(store ledger.Store, runsRepo runs.Repository, cfg Config, logger ...*zap.Logger) Service {
	return NewServiceWithOutbox(nil, store, runsRepo, nil, cfg, logger...)
}

func NewServiceWithOutbox(
	db *sql.DB,
	store ledger.Store,
	runsRepo runs.Repository,
	outboxRepo kafka.OutboxRepository,
	cfg Config,
	logger ...*zap.Logger,
) Service {
	l := zap.L().Named("payroll.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("payroll.service")
	}
	return &service{
		db:     db,
		store:  store,
		runs:   runsRepo,
		outbox: outboxRepo,
		cfg:    cfg,
		logger: l,
	}
}

func (s *service) Submit(ctx context.Context, source, submissionKey string, req SubmitTimesheetRequest) (SubmitResult, error) {
	started := time.Now()
	rid := contextutil.GetRequestID(ctx)
	// The HTTP path carries a request-scoped logger; the kafka path falls back
	// to the service logger.
	log := contextutil.GetLogger(ctx, s.logger)

	if req.Empty() {
		return SubmitResult{}, payrollerrors.ErrEmptyPayload
	}
	if submissionKey == "" {
		submissionKey = uuid.New().String()
	}

	run := &runs.PayrollRun{
		ID:            uuid.New(),
		SubmissionKey: submissionKey,
		Source:        source,
		Status:        runs.StatusRunning,
	}
	if err := s.runs.Create(ctx, run); err != nil {
		if runs.IsDuplicateSubmission(err) {
			log.Warn("duplicate submission skipped",
				zap.String("submission_key", submissionKey),
			)
			return SubmitResult{}, payrollerrors.ErrDuplicateSubmission
		}
		return SubmitResult{}, err
	}

	log.Info("payroll run started",
		zap.String("run_id", run.ID.String()),
		zap.String("source", source),
		zap.Int("time_rows", len(req.TimeSheetData)),
		zap.Int("lunch_rows", len(req.LunchSheetData)),
		zap.Int("leave_rows", len(req.LeaveSheetData)),
	)

	result, err := s.process(ctx, log, req)
	if err != nil {
		if failErr := s.runs.Fail(ctx, run.ID.String(), err.Error()); failErr != nil {
			log.Error("mark run failed errored", zap.String("run_id", run.ID.String()), zap.Error(failErr))
		}
		return SubmitResult{}, err
	}

	result.RunID = run.ID.String()
	result.ElapsedMS = time.Since(started).Milliseconds()

	if err := s.runs.Complete(ctx, run.ID.String(), result.Adds, result.Edits, result.ElapsedMS); err != nil {
		// The ledger writes already landed; a stale audit row is worth a log
		// line, not a failed run.
		log.Error("mark run completed errored", zap.String("run_id", run.ID.String()), zap.Error(err))
	}

	s.emitRunCompleted(ctx, log, rid, run.ID.String(), source, result)

	log.Info("payroll run completed",
		zap.String("run_id", run.ID.String()),
		zap.Int("adds", result.Adds),
		zap.Int("edits", result.Edits),
		zap.Int64("ms", result.ElapsedMS),
	)
	return result, nil
}

// process is the pure-ish pipeline: merge, carry-in, allocate, price, roll up,
// classify, write.
func (s *service) process(ctx context.Context, log *zap.Logger, req SubmitTimesheetRequest) (SubmitResult, error) {
	records := mergeSheets(req)
	if len(records) == 0 {
		log.Warn("all input rows skipped during merge, nothing to write")
		return SubmitResult{Results: []ledger.ActionResult{}}, nil
	}

	carryIn := map[weekKey]float64{}
	if s.cfg.CarryInEnabled {
		carryIn = fetchCarryIn(ctx, s.store, records, s.cfg.ChunkSize, log)
	}

	allocateOvertime(records, carryIn)
	for _, rec := range records {
		computeAmount(rec)
	}

	records = append(records, monthlyTotals(records)...)

	adds, edits := classifyRows(ctx, s.store, records, s.cfg.ChunkSize, log)

	addResult, err := s.store.Add(ctx, toRows(adds))
	if err != nil {
		return SubmitResult{}, apperror.Wrap(err, apperror.CodeLedgerUnavailable, payrollerrors.ErrLedgerWrite.Message, payrollerrors.ErrLedgerWrite.HTTPStatus)
	}
	editResult, err := s.store.Edit(ctx, toRows(edits))
	if err != nil {
		return SubmitResult{}, apperror.Wrap(err, apperror.CodeLedgerUnavailable, payrollerrors.ErrLedgerWrite.Message, payrollerrors.ErrLedgerWrite.HTTPStatus)
	}

	return SubmitResult{
		Adds:    len(adds),
		Edits:   len(edits),
		Results: []ledger.ActionResult{addResult, editResult},
	}, nil
}

// emitRunCompleted stages a run-completed event through the outbox. Emission
// is best effort: the run already succeeded and stays successful.
func (s *service) emitRunCompleted(ctx context.Context, log *zap.Logger, rid, runID, source string, result SubmitResult) {
	if s.outbox == nil || s.db == nil {
		return
	}

	payload, err := json.Marshal(events.PayrollRunCompletedEvent{
		EventType:  "payroll_run_completed",
		RunID:      runID,
		Source:     source,
		Adds:       result.Adds,
		Edits:      result.Edits,
		ElapsedMS:  result.ElapsedMS,
		OccurredAt: time.Now().UTC(),
	})
	if err != nil {
		log.Error("marshal run completed event failed", zap.String("run_id", runID), zap.Error(err))
		return
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		log.Error("begin outbox tx failed", zap.String("run_id", runID), zap.Error(err))
		return
	}
	defer tx.Rollback()

	event := kafka.OutboxEvent{
		ID:            uuid.New().String(),
		RequestID:     rid,
		AggregateType: "payroll_run",
		AggregateID:   runID,
		EventType:     "payroll_run_completed",
		Topic:         events.PayrollRunCompletedTopic,
		Payload:       payload,
		Status:        kafka.OutboxStatusPending,
	}
	if err := s.outbox.WithTx(tx).Create(ctx, event); err != nil {
		log.Error("stage run completed event failed", zap.String("run_id", runID), zap.Error(err))
		return
	}
	if err := tx.Commit(); err != nil {
		log.Error("commit outbox tx failed", zap.String("run_id", runID), zap.Error(err))
	}
}

func (s *service) RecentRuns(ctx context.Context, limit int) ([]RunResponse, error) {
	list, err := s.runs.ListRecent(ctx, limit)
	if err != nil {
		return nil, err
	}

	resp := make([]RunResponse, len(list))
	for i, run := range list {
		r := RunResponse{
			ID:        run.ID.String(),
			Source:    run.Source,
			Status:    run.Status,
			Adds:      run.Adds,
			Edits:     run.Edits,
			ElapsedMS: run.ElapsedMS,
			CreatedAt: run.CreatedAt.UTC().Format(time.RFC3339),
		}
		if run.Error != nil {
			r.Error = *run.Error
		}
		resp[i] = r
	}
	return resp, nil
}

func toRows(records []*DailyRecord) []ledger.Row {
	rows := make([]ledger.Row, len(records))
	for i, rec := range records {
		rows[i] = rec.ToRow()
	}
	return rows
}
