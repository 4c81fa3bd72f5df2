package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/wonderpark/storefront/pkg/response"
)

const (
	// IdempotencyKeyHeader carries the client-generated submission key.
	IdempotencyKeyHeader = "X-Idempotency-Key"

	idempotencyKeyPrefix = "idempotency:"
)

// idempotencyRecord is the stored outcome of a guarded request.
type idempotencyRecord struct {
	Status       string    `json:"status"` // processing or completed
	ResponseCode int       `json:"responseCode,omitempty"`
	ResponseBody string    `json:"responseBody,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
}

// IdempotencyRedis is the subset of Redis operations the guard needs.
type IdempotencyRedis interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.BoolCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// IdempotencyConfig configures the double-submit guard.
type IdempotencyConfig struct {
	Redis IdempotencyRedis
	// TTL keeps completed outcomes long enough to absorb client retries.
	TTL time.Duration
	// ProcessingTTL bounds how long a slot may sit in the processing state
	// if its request crashed mid-flight.
	ProcessingTTL time.Duration
}

// DefaultIdempotencyConfig returns the standard guard settings.
func DefaultIdempotencyConfig(client IdempotencyRedis) *IdempotencyConfig {
	return &IdempotencyConfig{
		Redis:         client,
		TTL:           5 * time.Minute,
		ProcessingTTL: 60 * time.Second,
	}
}

// bodyRecorder duplicates the response so a replay can serve it verbatim.
type bodyRecorder struct {
	gin.ResponseWriter
	body bytes.Buffer
}

func (r *bodyRecorder) Write(b []byte) (int, error) {
	r.body.Write(b)
	return r.ResponseWriter.Write(b)
}

// Idempotency deduplicates booking submissions that carry an
// X-Idempotency-Key header, keyed per browser session. A duplicate of a
// completed submission replays the original response instead of booking
// twice; a duplicate racing an in-flight submission gets 409. Requests
// without the header pass through unguarded.
func Idempotency(cfg *IdempotencyConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.GetHeader(IdempotencyKeyHeader)
		if key == "" {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		redisKey := idempotencyKeyPrefix + SIDFrom(c) + ":" + key

		claim, _ := json.Marshal(idempotencyRecord{
			Status:    "processing",
			CreatedAt: time.Now(),
		})
		claimed, err := cfg.Redis.SetNX(ctx, redisKey, claim, cfg.ProcessingTTL).Result()
		if err != nil {
			// The guard is best-effort; a broken Redis must not block bookings.
			c.Next()
			return
		}

		if !claimed {
			data, err := cfg.Redis.Get(ctx, redisKey).Bytes()
			if err != nil && !errors.Is(err, redis.Nil) {
				c.Next()
				return
			}
			var rec idempotencyRecord
			if err == nil && json.Unmarshal(data, &rec) == nil && rec.Status == "completed" {
				c.Data(rec.ResponseCode, "application/json", []byte(rec.ResponseBody))
				c.Abort()
				return
			}
			response.Error(c, http.StatusConflict, "REQUEST_IN_PROGRESS",
				"This booking is already being processed", "")
			c.Abort()
			return
		}

		recorder := &bodyRecorder{ResponseWriter: c.Writer}
		c.Writer = recorder

		c.Next()

		status := c.Writer.Status()
		if status >= 500 {
			// Let the client retry server failures with the same key.
			_ = cfg.Redis.Del(ctx, redisKey).Err()
			return
		}

		done, _ := json.Marshal(idempotencyRecord{
			Status:       "completed",
			ResponseCode: status,
			ResponseBody: recorder.body.String(),
			CreatedAt:    time.Now(),
		})
		_ = cfg.Redis.Set(ctx, redisKey, done, cfg.TTL).Err()
	}
}
