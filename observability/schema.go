package observability

import "database/sql"

// Schema is the DDL for the observability database. Kept separate from the
// snapshot catalog to avoid write contention on reloads.
const Schema = `
CREATE TABLE IF NOT EXISTS http_request_logs (
    request_id TEXT PRIMARY KEY,
    method TEXT NOT NULL,
    path TEXT NOT NULL,
    status INTEGER NOT NULL,
    duration_ms INTEGER NOT NULL,
    remote_addr TEXT,
    user_agent TEXT,
    created_at INTEGER NOT NULL DEFAULT (strftime('%s', 'now'))
);
CREATE INDEX IF NOT EXISTS idx_http_logs_time
    ON http_request_logs(created_at DESC);
CREATE INDEX IF NOT EXISTS idx_http_logs_path
    ON http_request_logs(path, created_at DESC);

CREATE TABLE IF NOT EXISTS business_event_logs (
    event_id TEXT PRIMARY KEY,
    event_type TEXT NOT NULL,
    service_name TEXT NOT NULL,
    entity_type TEXT,
    entity_id TEXT,
    action TEXT NOT NULL,
    details TEXT,
    success INTEGER NOT NULL,
    created_at INTEGER NOT NULL DEFAULT (strftime('%s', 'now'))
);
CREATE INDEX IF NOT EXISTS idx_event_logs_type
    ON business_event_logs(event_type, created_at DESC);

CREATE TABLE IF NOT EXISTS worker_heartbeats (
    heartbeat_id TEXT PRIMARY KEY,
    worker_name TEXT NOT NULL,
    hostname TEXT NOT NULL,
    worker_pid INTEGER NOT NULL,
    timestamp INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_heartbeats_worker
    ON worker_heartbeats(worker_name, timestamp DESC);
`

// Init applies the schema. Idempotent.
func Init(db *sql.DB) error {
	_, err := db.Exec(Schema)
	return err
}
