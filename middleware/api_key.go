// middleware/api_key.go

package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/tracebit-io/tracebit/logging"
	"github.com/tracebit-io/tracebit/model"
	"github.com/tracebit-io/tracebit/util"
)

// HeaderAPIKey is the ingestion key header.
const HeaderAPIKey = "X-TRACEBIT-KEY"

// APIKeyAuth is the ingress gate: it validates the presented key and
// enforces a fixed-window per-key request quota. Counters are
// process-local; every counter is reset in bulk when the window rolls
// over. A request racing the reset may land on either side of the
// boundary, which is acceptable for rate limiting.
type APIKeyAuth struct {
	limit      int64
	resetEvery time.Duration

	// one counter per valid key, fixed at construction, so the request
	// path only ever does an atomic increment
	counters map[string]*atomic.Int64

	done      chan struct{}
	closeOnce sync.Once
}

func NewAPIKeyAuth(keys []string, limit int, resetEvery time.Duration) *APIKeyAuth {
	a := &APIKeyAuth{
		limit:      int64(limit),
		resetEvery: resetEvery,
		counters:   make(map[string]*atomic.Int64, len(keys)),
		done:       make(chan struct{}),
	}
	for _, k := range keys {
		a.counters[k] = new(atomic.Int64)
	}

	go a.resetLoop()
	return a
}

func (a *APIKeyAuth) resetLoop() {
	ticker := time.NewTicker(a.resetEvery)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			a.resetCounters()
			logging.Debug("Rate limit counters reset")
		case <-a.done:
			return
		}
	}
}

func (a *APIKeyAuth) resetCounters() {
	for _, c := range a.counters {
		c.Store(0)
	}
}

// Close stops the reset ticker. Call during shutdown.
func (a *APIKeyAuth) Close() {
	a.closeOnce.Do(func() {
		close(a.done)
	})
}

func (a *APIKeyAuth) Middleware() gin.HandlerFunc {
	resetSeconds := strconv.FormatInt(int64(a.resetEvery.Seconds()), 10)
	limitHeader := strconv.FormatInt(a.limit, 10)

	return func(c *gin.Context) {
		key := c.GetHeader(HeaderAPIKey)

		counter, ok := a.counters[key]
		if !ok {
			logging.Warn("Invalid API key attempt",
				zap.String("key", util.MaskKey(key)),
				zap.String("ip", c.ClientIP()))
			c.AbortWithStatusJSON(http.StatusUnauthorized, model.Fail("Missing or invalid Tracebit key"))
			return
		}

		count := counter.Add(1)

		c.Header("X-Rate-Limit-Limit", limitHeader)
		c.Header("X-Rate-Limit-Reset", resetSeconds)

		if count > a.limit {
			c.Header("X-Rate-Limit-Remaining", "0")
			logging.Warn("Rate limit exceeded",
				zap.String("key", util.MaskKey(key)),
				zap.String("ip", c.ClientIP()),
				zap.Int64("limit", a.limit))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, model.Fail("Rate limit exceeded. Try again later."))
			return
		}

		c.Header("X-Rate-Limit-Remaining", strconv.FormatInt(a.limit-count, 10))
		c.Next()
	}
}
