package payroll

import (
	"go-payroll/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

func RegisterRoutes(
	r *gin.RouterGroup,
	handler *Handler,
	rdb ...*redis.Client,
) {
	var redisClient *redis.Client
	if len(rdb) > 0 {
		redisClient = rdb[0]
	}

	payroll := r.Group("/payroll")
	{
		if redisClient != nil {
			payroll.POST("/timesheet", middleware.Idempotency(redisClient), handler.Submit)
		} else {
			payroll.POST("/timesheet", handler.Submit)
		}
		payroll.GET("/runs", handler.ListRuns)
	}
}
