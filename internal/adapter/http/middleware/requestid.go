package middleware

import (
	"net/http"

	wrap "github.com/cargolink/tracking-system/pkg/logger/wrapper"
	"github.com/cargolink/tracking-system/pkg/uuid"
)

const requestIDHeader = "X-Request-Id"

// RequestID attaches a request id to the context and echoes it back in the
// response. An incoming X-Request-Id is reused so ids survive proxies.
func (a *Middleware) RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get(requestIDHeader)
		if requestID == "" {
			id, _ := uuid.New()
			requestID = id.String()
		}

		ctx := wrap.WithRequestID(r.Context(), requestID)
		w.Header().Set(requestIDHeader, requestID)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
