package consumer

import (
	"context"
	"encoding/json"
	"errors"

	"go-payroll/internal/payroll"
	payrollerrors "go-payroll/internal/payroll/errors"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// payrollSubmissionMessage is the wire shape on payroll.submissions.v1: a
// submission id for dedup plus the same three sheet streams the HTTP API takes.
type payrollSubmissionMessage struct {
	SubmissionID string `json:"submission_id"`
	payroll.SubmitTimesheetRequest
}

func ConsumePayrollSubmissions(
	ctx context.Context,
	reader *kafkago.Reader,
	payrollService payroll.Service,
	logger *zap.Logger,
) {
	log := logger.Named("kafka.consumer.payroll_submissions")
	log.Info("payroll submissions consumer started")

	for {
		msg, err := reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				log.Info("payroll submissions consumer stopped")
				return
			}
			log.Error("fetch payroll submission message failed", zap.Error(err))
			continue
		}

		var event payrollSubmissionMessage
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			log.Error("decode payroll submission failed", zap.Error(err))
			_ = reader.CommitMessages(ctx, msg)
			continue
		}

		result, err := payrollService.Submit(ctx, payroll.SourceKafka, event.SubmissionID, event.SubmitTimesheetRequest)
		if err != nil {
			if errors.Is(err, payrollerrors.ErrDuplicateSubmission) {
				log.Warn("payroll submission already processed, skipping",
					zap.String("submission_id", event.SubmissionID),
				)
				_ = reader.CommitMessages(ctx, msg)
				continue
			}
			if errors.Is(err, payrollerrors.ErrEmptyPayload) {
				log.Warn("empty payroll submission, skipping",
					zap.String("submission_id", event.SubmissionID),
				)
				_ = reader.CommitMessages(ctx, msg)
				continue
			}

			// Transient failures stay uncommitted so the next fetch retries.
			log.Error("process payroll submission failed",
				zap.String("submission_id", event.SubmissionID),
				zap.Error(err),
			)
			continue
		}

		if err := reader.CommitMessages(ctx, msg); err != nil {
			log.Error("commit payroll submission message failed", zap.Error(err))
			continue
		}

		log.Info("payroll submission processed",
			zap.String("submission_id", event.SubmissionID),
			zap.String("run_id", result.RunID),
			zap.Int("adds", result.Adds),
			zap.Int("edits", result.Edits),
		)
	}
}
