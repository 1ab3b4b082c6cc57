// Package observability records request logs, business events and worker
// heartbeats in a dedicated SQLite database. Writes never propagate errors
// to the caller: a failing observability store must not take the dashboard
// down with it.
package observability

import (
	"context"
	"database/sql"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"
)

// BusinessEvent is a domain-level event worth keeping: a snapshot reload, an
// ETL ingest, an admin action.
type BusinessEvent struct {
	EventType   string
	ServiceName string
	EntityType  string
	EntityID    string
	Action      string
	Details     string // optional JSON
	Success     bool
}

// EventLogger writes business events and heartbeats.
type EventLogger struct {
	db *sql.DB
}

// NewEventLogger creates a logger backed by the observability database.
func NewEventLogger(db *sql.DB) *EventLogger {
	return &EventLogger{db: db}
}

// LogEvent records a business event. Errors are logged via slog and dropped.
func (l *EventLogger) LogEvent(ctx context.Context, ev BusinessEvent) {
	_, err := l.db.ExecContext(ctx, `
		INSERT INTO business_event_logs (
			event_id, event_type, service_name, entity_type, entity_id,
			action, details, success, created_at
		) VALUES (?,?,?,?,?,?,?,?,?)`,
		"evt_"+uuid.NewString(), ev.EventType, ev.ServiceName, ev.EntityType, ev.EntityID,
		ev.Action, ev.Details, ev.Success, time.Now().Unix())
	if err != nil {
		slog.Error("observability event log failed", "error", err, "event_type", ev.EventType)
	}
}

// Heartbeat records one liveness row for the named worker.
func (l *EventLogger) Heartbeat(ctx context.Context, workerName string) {
	host, _ := os.Hostname()
	_, err := l.db.ExecContext(ctx, `
		INSERT INTO worker_heartbeats (heartbeat_id, worker_name, hostname, worker_pid, timestamp)
		VALUES (?,?,?,?,?)`,
		"hb_"+uuid.NewString(), workerName, host, os.Getpid(), time.Now().Unix())
	if err != nil {
		slog.Warn("heartbeat log failed", "error", err, "worker", workerName)
	}
}

// HeartbeatLoop emits a heartbeat every interval until ctx is cancelled.
func (l *EventLogger) HeartbeatLoop(ctx context.Context, workerName string, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			l.Heartbeat(ctx, workerName)
		}
	}
}
