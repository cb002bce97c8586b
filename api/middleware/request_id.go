package middleware

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/GaelCM/Hermes-Pos-Lite-sub000/pkg/logger"
)

// The UI shell rarely sends its own id, so most requests get a generated one.
// The header follows the X-Hermes-* convention of the health endpoint.
const requestIDHeader = "X-Hermes-Request-Id"

// RequestID tags every request with an id, echoed back to the UI and carried
// in the request-scoped logger so one tap on a failing action can be matched
// to its log lines.
func RequestID(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			reqID := r.Header.Get(requestIDHeader)
			if reqID == "" {
				reqID = uuid.NewString()
			}

			w.Header().Set(requestIDHeader, reqID)

			ctx := r.Context()
			if logg != nil {
				ctx = logg.WithRequestID(ctx, reqID)
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
