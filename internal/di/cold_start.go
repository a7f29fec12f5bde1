package di

import (
	"net/http"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// ColdStartTracker records when the process started and whether it has
// served a request yet.
type ColdStartTracker struct {
	startedAt time.Time
	served    atomic.Bool
}

// NewColdStartTracker creates a new cold start tracker.
func NewColdStartTracker() *ColdStartTracker {
	return &ColdStartTracker{startedAt: time.Now()}
}

// GetTimeSinceColdStart returns the time since the process started.
func (t *ColdStartTracker) GetTimeSinceColdStart() time.Duration {
	return time.Since(t.startedAt)
}

// FirstRequest reports true exactly once, for the first request served.
func (t *ColdStartTracker) FirstRequest() bool {
	return t.served.CompareAndSwap(false, true)
}

// Middleware logs the first request with the time it waited on startup.
func (t *ColdStartTracker) Middleware(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if t.FirstRequest() {
				logger.Info("Cold start",
					zap.Duration("since_start", t.GetTimeSinceColdStart()),
					zap.String("path", r.URL.Path),
				)
			}
			next.ServeHTTP(w, r)
		})
	}
}

// ProvideColdStartTracker creates a cold start tracker for Wire.
func ProvideColdStartTracker() *ColdStartTracker {
	return NewColdStartTracker()
}
