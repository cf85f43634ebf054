package events

import "time"

const PayrollRunCompletedTopic = "payroll.run.completed.v1"

type PayrollRunCompletedEvent struct {
	EventType  string    `json:"event_type"`
	RunID      string    `json:"run_id"`
	Source     string    `json:"source"`
	Adds       int       `json:"adds"`
	Edits      int       `json:"edits"`
	ElapsedMS  int64     `json:"ms"`
	OccurredAt time.Time `json:"occurred_at"`
}
