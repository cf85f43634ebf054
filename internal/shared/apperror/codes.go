package apperror

const (
	// Client errors (4xx)
	CodeInvalidInput = "INVALID_INPUT"
	CodeNotFound     = "NOT_FOUND"
	CodeConflict     = "CONFLICT"

	// Server errors (5xx)
	CodeInternalError      = "INTERNAL_ERROR"
	CodeLedgerUnavailable  = "LEDGER_UNAVAILABLE"
	CodeServiceUnavailable = "SERVICE_UNAVAILABLE"
)
