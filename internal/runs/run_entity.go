package runs

import (
	"time"

	"github.com/google/uuid"
)

const (
	StatusRunning   = "RUNNING"
	StatusCompleted = "COMPLETED"
	StatusFailed    = "FAILED"
)

// PayrollRun is the audit row for one engine invocation. It exists so a
// zero-adds/zero-edits outcome can be told apart from an upstream failure
// after the fact.
type PayrollRun struct {
	ID            uuid.UUID `gorm:"column:id;type:uuid;primaryKey;default:gen_random_uuid()"`
	SubmissionKey string    `gorm:"column:submission_key;type:varchar(120);not null;uniqueIndex:uq_payroll_runs_submission_key"`
	Source        string    `gorm:"column:source;type:varchar(20);not null"` // api | kafka
	Status        string    `gorm:"column:status;type:varchar(20);not null;default:RUNNING;index"`
	Adds          int       `gorm:"column:adds;not null;default:0"`
	Edits         int       `gorm:"column:edits;not null;default:0"`
	ElapsedMS     int64     `gorm:"column:elapsed_ms;not null;default:0"`
	Error         *string   `gorm:"column:error;type:text"`
	CreatedAt     time.Time `gorm:"column:created_at"`
	UpdatedAt     time.Time `gorm:"column:updated_at"`
}

func (PayrollRun) TableName() string {
	return "payroll_runs"
}
