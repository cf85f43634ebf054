package errors

import (
	"net/http"

	"go-payroll/internal/shared/apperror"
)

var (
	ErrEmptyPayload = apperror.New(
		apperror.CodeInvalidInput,
		"payload must contain at least one of timeSheetData, lunchSheetData, leaveSheetData",
		http.StatusBadRequest,
	)

	ErrDuplicateSubmission = apperror.New(
		apperror.CodeConflict,
		"this submission was already processed",
		http.StatusConflict,
	)

	ErrLedgerWrite = apperror.New(
		apperror.CodeLedgerUnavailable,
		"writing payroll rows to the ledger failed",
		http.StatusBadGateway,
	)
)
