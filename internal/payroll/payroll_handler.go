package payroll

import (
	"net/http"
	"time"

	"go-payroll/internal/middleware"
	"go-payroll/internal/shared/apperror"
	"go-payroll/internal/shared/response"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

const idempotentResponseTTL = 24 * time.Hour

type Handler struct {
	service Service
	rdb     *redis.Client
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

func NewHandlerWithRedis(service Service, rdb *redis.Client) *Handler {
	return &Handler{service: service, rdb: rdb}
}

// Submit runs the engine over a timesheet payload. The response keeps the
// flat ok/adds/edits/ms/results shape existing sheet integrations expect, so
// it bypasses the shared envelope helpers.
func (h *Handler) Submit(c *gin.Context) {
	var req SubmitTimesheetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpErr := apperror.ToHTTP(apperror.MapValidationError(err))
		h.writeFailure(c, httpErr.Status, httpErr.Message)
		return
	}

	submissionKey := c.GetHeader("Idempotency-Key")

	result, err := h.service.Submit(c.Request.Context(), SourceAPI, submissionKey, req)
	if err != nil {
		httpErr := apperror.ToHTTP(err)
		h.writeFailure(c, httpErr.Status, httpErr.Message)
		return
	}

	resp := SubmitResponse{
		Ok:      true,
		RunID:   result.RunID,
		Adds:    result.Adds,
		Edits:   result.Edits,
		MS:      result.ElapsedMS,
		Results: result.Results,
	}
	if h.rdb != nil {
		middleware.CacheIdempotentResponse(c, h.rdb, resp, idempotentResponseTTL)
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) writeFailure(c *gin.Context, status int, msg string) {
	if h.rdb != nil {
		middleware.ReleaseIdempotencyLock(c, h.rdb)
	}
	c.JSON(status, SubmitFailure{Ok: false, Error: msg})
}

func (h *Handler) ListRuns(c *gin.Context) {
	var query ListRunsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		httpErr := apperror.ToHTTP(apperror.MapValidationError(err))
		response.Error(c, httpErr.Status, httpErr.Code, httpErr.Message, httpErr.Details)
		return
	}

	resp, err := h.service.RecentRuns(c.Request.Context(), query.Limit)
	if err != nil {
		httpErr := apperror.ToHTTP(err)
		response.Error(c, httpErr.Status, httpErr.Code, httpErr.Message, httpErr.Details)
		return
	}

	response.Success(c, http.StatusOK, resp)
}
