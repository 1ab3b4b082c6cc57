package observability

import (
	"database/sql"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// statusRecorder captures the response status for logging.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// RequestLogger returns middleware that records every request in the
// observability database and mirrors it to slog at debug level. Inserts run
// on a goroutine so logging never adds latency to the response path.
func RequestLogger(db *sql.DB) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)
			elapsed := time.Since(start)

			slog.Debug("http request",
				"method", r.Method, "path", r.URL.Path,
				"status", rec.status, "duration", elapsed)

			go func() {
				_, err := db.Exec(`
					INSERT INTO http_request_logs (
						request_id, method, path, status, duration_ms,
						remote_addr, user_agent, created_at
					) VALUES (?,?,?,?,?,?,?,?)`,
					"req_"+uuid.NewString(), r.Method, r.URL.Path, rec.status,
					elapsed.Milliseconds(), r.RemoteAddr, r.UserAgent(),
					start.Unix())
				if err != nil {
					slog.Warn("request log failed", "error", err)
				}
			}()
		})
	}
}
