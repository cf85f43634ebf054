package runs

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

//go:generate mockgen -source=run_repo.go -destination=mock/run_repo_mock.go -package=mock
type Repository interface {
	Create(ctx context.Context, run *PayrollRun) error
	Complete(ctx context.Context, id string, adds, edits int, elapsedMS int64) error
	Fail(ctx context.Context, id string, reason string) error
	ListRecent(ctx context.Context, limit int) ([]PayrollRun, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, run *PayrollRun) error {
	return r.db.WithContext(ctx).Create(run).Error
}

func (r *repository) Complete(ctx context.Context, id string, adds, edits int, elapsedMS int64) error {
	return r.db.WithContext(ctx).
		Model(&PayrollRun{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status":     StatusCompleted,
			"adds":       adds,
			"edits":      edits,
			"elapsed_ms": elapsedMS,
		}).Error
}

func (r *repository) Fail(ctx context.Context, id string, reason string) error {
	return r.db.WithContext(ctx).
		Model(&PayrollRun{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status": StatusFailed,
			"error":  reason,
		}).Error
}

func (r *repository) ListRecent(ctx context.Context, limit int) ([]PayrollRun, error) {
	if limit <= 0 {
		limit = 20
	}
	var list []PayrollRun
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Find(&list).Error
	return list, err
}

// IsDuplicateSubmission reports whether an insert failed because the
// submission key was already used, i.e. this payload is a replay.
func IsDuplicateSubmission(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505" && pgErr.ConstraintName == "uq_payroll_runs_submission_key"
	}

	errMsg := strings.ToLower(err.Error())
	return strings.Contains(errMsg, "duplicate key value") && strings.Contains(errMsg, "uq_payroll_runs_submission_key")
}
