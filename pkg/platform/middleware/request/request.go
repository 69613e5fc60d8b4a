// Package request assigns every inbound request a correlation ID and records
// the request arrival time in the context so services and the audit trail
// share one clock reading per request.
package request

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"

	"licensio/pkg/requestcontext"
)

// headerRequestID is honored when an upstream proxy already assigned an ID.
const headerRequestID = "X-Request-Id"

// RequestID ensures a request ID is present in the context and echoes it back
// in the response headers for client-side correlation.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get(headerRequestID)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		w.Header().Set(headerRequestID, requestID)

		ctx := requestcontext.WithRequestID(r.Context(), requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequestTime pins the request arrival time into the context. Expiry checks
// within one request all observe the same instant.
func RequestTime(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := requestcontext.WithTime(r.Context(), time.Now().UTC())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetRequestID retrieves the request ID from the context.
func GetRequestID(ctx context.Context) string {
	return requestcontext.RequestID(ctx)
}
