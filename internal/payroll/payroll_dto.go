package payroll

import (
	"go-payroll/internal/ledger"
	"go-payroll/internal/shared/numeric"
)

// SheetEntry is one loosely-typed row from a sheet export. Field casing
// follows the upstream payload. Unknown extra fields are ignored.
type SheetEntry struct {
	Staff      string            `json:"Staff"`
	Date       string            `json:"Date"` // M/D/YYYY
	Month      string            `json:"Month,omitempty"`
	Hours      numeric.FlexFloat `json:"Hours" binding:"omitempty,gte=0"`
	HourlyRate numeric.FlexFloat `json:"HourlyRate,omitempty" binding:"omitempty,gte=0"`
	LeaveType  string            `json:"LeaveType,omitempty"`
}

// SubmitTimesheetRequest is the engine's input payload: three optional
// streams keyed by staff and date. Negative hours are rejected at the
// boundary; rows with missing Staff/Date are the merger's problem, not a
// binding error.
type SubmitTimesheetRequest struct {
	TimeSheetData  []SheetEntry `json:"timeSheetData" binding:"omitempty,dive"`
	LunchSheetData []SheetEntry `json:"lunchSheetData" binding:"omitempty,dive"`
	LeaveSheetData []SheetEntry `json:"leaveSheetData" binding:"omitempty,dive"`
}

func (r SubmitTimesheetRequest) Empty() bool {
	return len(r.TimeSheetData) == 0 && len(r.LunchSheetData) == 0 && len(r.LeaveSheetData) == 0
}

// SubmitResult is what a completed run reports back.
type SubmitResult struct {
	RunID     string                `json:"run_id"`
	Adds      int                   `json:"adds"`
	Edits     int                   `json:"edits"`
	ElapsedMS int64                 `json:"ms"`
	Results   []ledger.ActionResult `json:"results"`
}

// SubmitResponse is the wire envelope for a successful submission. Its shape
// (ok/adds/edits/ms/results at the top level) is fixed for compatibility with
// existing callers.
type SubmitResponse struct {
	Ok      bool                  `json:"ok"`
	RunID   string                `json:"run_id,omitempty"`
	Adds    int                   `json:"adds"`
	Edits   int                   `json:"edits"`
	MS      int64                 `json:"ms"`
	Results []ledger.ActionResult `json:"results"`
}

// SubmitFailure is the wire envelope for a failed submission.
type SubmitFailure struct {
	Ok    bool   `json:"ok"`
	Error string `json:"error"`
}

type ListRunsQuery struct {
	Limit int `form:"limit,default=20" binding:"omitempty,min=1,max=100"`
}

type RunResponse struct {
	ID        string `json:"id"`
	Source    string `json:"source"`
	Status    string `json:"status"`
	Adds      int    `json:"adds"`
	Edits     int    `json:"edits"`
	ElapsedMS int64  `json:"ms"`
	Error     string `json:"error,omitempty"`
	CreatedAt string `json:"created_at"`
}
