package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

type contextKey string

const (
	RequestIDKey contextKey = "requestID"
	SessionIDKey contextKey = "sessionID"
)

// Header names.
const (
	RequestIDHeader = "X-Request-ID"
	SessionIDHeader = "X-Session-ID"
)

// RequestID middleware generates or extracts request ID and adds it to context and response headers
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.New().String()
		}

		ctx := context.WithValue(r.Context(), RequestIDKey, requestID)
		w.Header().Set(RequestIDHeader, requestID)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// SessionID copies the client's session header into the context. Clients
// without one are not tracked.
func SessionID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if session := r.Header.Get(SessionIDHeader); session != "" {
			r = r.WithContext(context.WithValue(r.Context(), SessionIDKey, session))
		}
		next.ServeHTTP(w, r)
	})
}

// GetRequestID extracts the request ID from context
func GetRequestID(ctx context.Context) string {
	if id, ok := ctx.Value(RequestIDKey).(string); ok {
		return id
	}
	return ""
}

// GetRequestIDFromRequest extracts the request ID from the request context
func GetRequestIDFromRequest(r *http.Request) string {
	return GetRequestID(r.Context())
}

// GetSessionID extracts the session ID from context.
func GetSessionID(ctx context.Context) string {
	if id, ok := ctx.Value(SessionIDKey).(string); ok {
		return id
	}
	return ""
}
