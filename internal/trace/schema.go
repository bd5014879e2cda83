package trace

import (
	"context"
	"database/sql"
	"fmt"
)

// SchemaVersion is the current trace store schema version.
const SchemaVersion = 1

const schemaV1 = `
CREATE TABLE IF NOT EXISTS trace_entries (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    job_id TEXT NOT NULL,
    job_type TEXT NOT NULL,
    event TEXT NOT NULL,
    scope TEXT NOT NULL,
    epoch INTEGER NOT NULL,
    batch INTEGER NOT NULL DEFAULT 0,
    metrics TEXT,  -- JSON object of metric name -> value
    created_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_trace_job_epoch ON trace_entries(job_id, epoch);
CREATE INDEX IF NOT EXISTS idx_trace_job_event ON trace_entries(job_id, event);

CREATE TABLE IF NOT EXISTS schema_info (
    version INTEGER NOT NULL
);
`

// initSchema creates the trace tables if they do not exist.
func initSchema(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, schemaV1); err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}

	var count int
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM schema_info").Scan(&count); err != nil {
		return fmt.Errorf("reading schema version: %w", err)
	}
	if count == 0 {
		if _, err := db.ExecContext(ctx,
			"INSERT INTO schema_info (version) VALUES (?)", SchemaVersion); err != nil {
			return fmt.Errorf("writing schema version: %w", err)
		}
	}
	return nil
}
