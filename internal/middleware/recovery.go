package middleware

import (
	"net/http"
	"runtime/debug"

	"go.uber.org/zap"

	"boardroom-backend/pkg/api"
)

// Recovery turns a panic into a 500 {"error":"Internal server error"} and
// logs it with the stack.
func Recovery(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					if err == http.ErrAbortHandler {
						panic(err)
					}
					logger.Error("panic recovered",
						zap.String("requestID", GetRequestIDFromRequest(r)),
						zap.Any("panic", err),
						zap.ByteString("stack", debug.Stack()))

					// Nothing can be sent once the response has started.
					if w.Header().Get("Content-Type") == "" {
						api.Error(w, http.StatusInternalServerError, "Internal server error")
					}
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
