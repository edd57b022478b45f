package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const requestIDKey contextKey = "requestID"

// RequestID tags the request with the caller's X-Request-ID or a fresh one,
// and binds a logger carrying it to the request context.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := r.Header.Get("X-Request-ID")
		if reqID == "" {
			reqID = uuid.NewString()
		}
		ctx := context.WithValue(r.Context(), requestIDKey, reqID)
		ctx = log.With().Str("request_id", reqID).Logger().WithContext(ctx)

		w.Header().Set("X-Request-ID", reqID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func GetRequestID(ctx context.Context) string {
	val := ctx.Value(requestIDKey)
	if v, ok := val.(string); ok {
		return v
	}
	return ""
}
