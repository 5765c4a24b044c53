package middleware

import (
	"context"
	"net/http"
	"time"

	nuts "github.com/vaudience/go-nuts"
)

// HeaderRequestID carries the request ID back to the client
const HeaderRequestID = "X-Request-ID"

type contextKey string

const requestIDKey contextKey = "request_id"

// RequestID tags every request with an ID, echoes it in the response and logs the call
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(HeaderRequestID)
		if id == "" || len(id) > 64 {
			id = nuts.NID("req", 12)
		}
		w.Header().Set(HeaderRequestID, id)

		start := time.Now()
		ctx := context.WithValue(r.Context(), requestIDKey, id)
		next.ServeHTTP(w, r.WithContext(ctx))

		nuts.L.Infof("[API] %s %s %s (%s)", id, r.Method, r.URL.Path, time.Since(start))
	})
}

// GetRequestID returns the request ID stored by RequestID, or a fresh one
func GetRequestID(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey).(string); ok {
		return id
	}
	return nuts.NID("req", 12)
}
