package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/kbukum/scribe/logger"
)

var healthPaths = map[string]bool{
	"/health":       true,
	"/health/ready": true,
	"/health/live":  true,
	"/info":         true,
}

// RequestLogger returns middleware that logs every request with method,
// path, status code, response size and duration. Health-check paths are silently skipped.
func RequestLogger(log *logger.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if isHealthEndpoint(r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}

			start := time.Now()
			rec := newResponseRecorder(w)
			next.ServeHTTP(rec, r)
			duration := time.Since(start)

			fields := map[string]interface{}{
				"method":             r.Method,
				"path":               r.URL.Path,
				"status":             rec.status,
				"bytes":              rec.bytes,
				logger.FieldDuration: duration.Milliseconds(),
			}
			if duration > 5*time.Second {
				fields["slow"] = true
			}
			logByStatus(log.WithContext(r.Context()), fields, rec.status)
		})
	}
}

func isHealthEndpoint(path string) bool {
	return healthPaths[strings.TrimSuffix(path, "/")]
}

// logByStatus logs request fields at the level matching the HTTP status code.
func logByStatus(log *logger.Logger, fields map[string]interface{}, status int) {
	switch {
	case status >= 500:
		log.Error("Request completed", fields)
	case status >= 400:
		log.Warn("Request completed", fields)
	default:
		log.Info("Request completed", fields)
	}
}
