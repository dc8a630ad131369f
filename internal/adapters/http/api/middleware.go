package api

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/felixge/httpsnoop"
	"github.com/gorilla/handlers"

	"github.com/okian/bestxi/pkg/logger"
	"github.com/okian/bestxi/pkg/metrics"
)

// MetricsMiddleware wraps HTTP handlers to record Prometheus metrics under
// the given endpoint label. Responses of 400 and above also count as errors.
func MetricsMiddleware(next http.HandlerFunc, endpoint string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		m := httpsnoop.CaptureMetrics(next, w, r)

		durationMs := float64(m.Duration.Microseconds()) / 1000
		code := strconv.Itoa(m.Code)

		metrics.RecordHTTPRequest(endpoint, r.Method, code)
		metrics.RecordHTTPRequestDuration(endpoint, r.Method, code, durationMs)

		if errorType, severity, failed := classifyStatus(m.Code); failed {
			metrics.RecordErrorByEndpoint(endpoint, r.Method, errorType)
			metrics.RecordErrorByType(errorType, severity)
			metrics.RecordErrorLatency("http", errorType, durationMs)
		}
	}
}

// classifyStatus maps an HTTP status to an error type and severity.
// Statuses below 400 are not failures.
func classifyStatus(code int) (errorType, severity string, failed bool) {
	switch {
	case code == http.StatusServiceUnavailable:
		return "unavailable", "high", true
	case code >= http.StatusInternalServerError:
		return "server_error", "high", true
	case code == http.StatusUnprocessableEntity:
		return "illegal_formation", "medium", true
	case code == http.StatusNotFound:
		return "not_found", "low", true
	case code >= http.StatusBadRequest:
		return "client_error", "medium", true
	}
	return "", "", false
}

// Harden wraps h with panic recovery and CORS for browser clients.
func Harden(h http.Handler) http.Handler {
	cors := handlers.CORS(
		handlers.AllowedOrigins([]string{"*"}),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPut, http.MethodPost, http.MethodDelete, http.MethodOptions}),
		handlers.AllowedHeaders([]string{"Content-Type", "Accept"}),
	)
	recovery := handlers.RecoveryHandler(
		handlers.RecoveryLogger(recoveryLogger{}),
		handlers.PrintRecoveryStack(false),
	)
	return recovery(cors(h))
}

// recoveryLogger routes recovered panics to the structured logger.
type recoveryLogger struct{}

func (recoveryLogger) Println(args ...interface{}) {
	metrics.RecordErrorByType("panic", "high")
	logger.Get().Error(context.Background(), "recovered from panic", logger.String("panic", fmt.Sprint(args...)))
}
