package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

// requestIDHeader is read from incoming requests and echoed on responses so
// clients can correlate guard decisions and audit entries with their calls.
const requestIDHeader = "X-Request-ID"

type requestIDCtxKey struct{}

// RequestID tags every request with a correlation ID. A client-supplied
// X-Request-ID is kept; otherwise a fresh UUID is minted. The ID is echoed on
// the response header and made available via RequestIDFromContext.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), requestIDCtxKey{}, id)))
	})
}

// RequestIDFromContext returns the request's correlation ID, or the empty
// string when the RequestID middleware did not run.
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDCtxKey{}).(string)
	return id
}
