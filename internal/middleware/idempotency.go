package middleware

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

const (
	idempotencyCacheKeyCtx = "idempotency_cache_key"
	idempotencyLockKeyCtx  = "idempotency_lock_key"
	idempotencyLockTTL     = 30 * time.Second
)

// Idempotency short-circuits repeated POSTs carrying the same Idempotency-Key:
// a cached response is replayed as-is, and an in-flight duplicate gets 409.
// Submitting the same payroll payload twice is harmless for the ledger (the
// second run classifies everything as edits) but wasteful, so duplicates are
// stopped at the door.
func Idempotency(rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		idempKey := c.GetHeader("Idempotency-Key")
		if idempKey == "" || c.Request.Method != http.MethodPost {
			c.Next()
			return
		}

		cacheKey := fmt.Sprintf("idemp:%s:%s", c.FullPath(), idempKey)
		lockKey := cacheKey + ":lock"

		val, err := rdb.Get(c.Request.Context(), cacheKey).Result()
		if err == nil {
			var cached any
			_ = json.Unmarshal([]byte(val), &cached)
			c.AbortWithStatusJSON(http.StatusOK, cached)
			return
		}

		// SetNX lock with a short TTL so a crashed run releases itself.
		isNew, _ := rdb.SetNX(c.Request.Context(), lockKey, "locked", idempotencyLockTTL).Result()
		if !isNew {
			c.AbortWithStatusJSON(http.StatusConflict, gin.H{
				"ok":    false,
				"error": "a submission with this idempotency key is already being processed",
			})
			return
		}

		c.Set(idempotencyCacheKeyCtx, cacheKey)
		c.Set(idempotencyLockKeyCtx, lockKey)

		c.Next()
	}
}

// CacheIdempotentResponse stores the final response body for replay and drops
// the in-flight lock. Handlers call this after a successful run.
func CacheIdempotentResponse(c *gin.Context, rdb *redis.Client, body any, ttl time.Duration) {
	cacheKey := c.GetString(idempotencyCacheKeyCtx)
	lockKey := c.GetString(idempotencyLockKeyCtx)
	if cacheKey == "" {
		return
	}

	if payload, err := json.Marshal(body); err == nil {
		_ = rdb.Set(c.Request.Context(), cacheKey, payload, ttl).Err()
	}
	if lockKey != "" {
		_ = rdb.Del(c.Request.Context(), lockKey).Err()
	}
}

// ReleaseIdempotencyLock drops the lock without caching, used on failures so
// the client can retry with the same key.
func ReleaseIdempotencyLock(c *gin.Context, rdb *redis.Client) {
	lockKey := c.GetString(idempotencyLockKeyCtx)
	if lockKey != "" {
		_ = rdb.Del(c.Request.Context(), lockKey).Err()
	}
}
