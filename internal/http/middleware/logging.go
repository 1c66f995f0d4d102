package middleware

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/straye-as/crm-reports/internal/auth"
	applog "github.com/straye-as/crm-reports/internal/logger"
	"go.uber.org/zap"
)

// RequestIDHeader carries the correlation id in both directions
const RequestIDHeader = "X-Request-ID"

// Logging middleware logs HTTP requests. An incoming X-Request-ID is kept,
// otherwise a new one is generated, and it is echoed on the response.
func Logging(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			requestID := r.Header.Get(RequestIDHeader)
			if requestID == "" {
				requestID = uuid.New().String()
				r.Header.Set(RequestIDHeader, requestID)
			}
			w.Header().Set(RequestIDHeader, requestID)

			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			duration := time.Since(start)

			fields := append(applog.RequestFields(requestID, r.Method, r.URL.Path, r.RemoteAddr),
				zap.Int("status_code", status),
				zap.Int("response_size", ww.BytesWritten()),
				zap.Duration("duration", duration),
			)
			if rctx := chi.RouteContext(r.Context()); rctx != nil {
				if report := rctx.URLParam("report"); report != "" {
					fields = append(fields, applog.Report(report))
				}
			}

			// Authentication runs further down the chain, so the user is only
			// visible when a handler stored it on this request
			if userCtx, ok := auth.FromContext(r.Context()); ok {
				fields = append(fields,
					zap.String(applog.KeyUserID, userCtx.UserID.String()),
					zap.String("user_name", userCtx.DisplayName),
				)
			}

			msg := fmt.Sprintf("%s %-30s -> %3d (%s)",
				r.Method,
				r.URL.Path,
				status,
				duration.Truncate(time.Microsecond),
			)
			switch {
			case status >= http.StatusInternalServerError:
				logger.Error(msg, fields...)
			case status >= http.StatusBadRequest:
				logger.Warn(msg, fields...)
			default:
				logger.Info(msg, fields...)
			}
		})
	}
}
