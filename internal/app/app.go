package app

import (
	"fmt"
	"net/http"
	"os"
	"strconv"

	"go-payroll/internal/ledger"
	"go-payroll/internal/middleware"
	"go-payroll/internal/payroll"
	"go-payroll/internal/shared/connection"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

func BuildApp(router *gin.Engine) error {
	logger := zap.L().Named("app")

	// 1. Infrastructure
	gormDB, err := connection.ConnectGORMWithRetry(
		os.Getenv("DB_HOST"),
		os.Getenv("DB_USER"),
		os.Getenv("DB_PASSWORD"),
		os.Getenv("DB_NAME"),
		os.Getenv("DB_PORT"),
		os.Getenv("DB_SSLMODE"),
		5,
	)
	if err != nil {
		return err
	}

	var redisClient *redis.Client
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		redisClient, err = connection.ConnectRedisWithRetry(addr, 5)
		if err != nil {
			return err
		}
	} else {
		logger.Warn("REDIS_ADDR not set, idempotency replay disabled")
	}

	ledgerBaseURL := os.Getenv("LEDGER_BASE_URL")
	if ledgerBaseURL == "" {
		return fmt.Errorf("LEDGER_BASE_URL is required")
	}
	store := ledger.NewHTTPStore(ledgerBaseURL, os.Getenv("LEDGER_API_KEY"), logger)

	// 2. Middleware + health
	router.Use(middleware.RequestID())
	router.Use(middleware.RateLimitByIP(rate.Limit(20), 40))
	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	// 3. Modules & routes
	return registerModules(router, gormDB, redisClient, store, payrollConfigFromEnv())
}

// payrollConfigFromEnv reads the engine knobs. Carry-in defaults to on;
// setting CARRY_IN_ENABLED=false starts every week's cap at zero.
func payrollConfigFromEnv() payroll.Config {
	cfg := payroll.Config{CarryInEnabled: true}

	if v := os.Getenv("CARRY_IN_ENABLED"); v != "" {
		if enabled, err := strconv.ParseBool(v); err == nil {
			cfg.CarryInEnabled = enabled
		}
	}
	if v := os.Getenv("LEDGER_CHUNK_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.ChunkSize = n
		}
	}
	return cfg
}
