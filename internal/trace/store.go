package trace

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver
)

// ErrNoEntries is returned when a query matches no trace entries.
var ErrNoEntries = errors.New("no trace entries")

// Store persists trace entries in a SQLite database for querying, alongside
// the append-only JSONL stream.
type Store struct {
	db *sql.DB
}

// OpenStore opens (creating if needed) the trace database at dir/trace.db.
func OpenStore(dir string) (*Store, error) {
	dbPath := filepath.Join(dir, "trace.db")
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("opening trace database: %w", err)
	}

	// SQLite works best with a single writer.
	db.SetMaxOpenConns(1)

	if err := initSchema(context.Background(), db); err != nil {
		db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Append inserts a trace entry.
func (s *Store) Append(ctx context.Context, e Entry) error {
	if e.Time.IsZero() {
		e.Time = time.Now().UTC()
	}
	metrics, err := json.Marshal(e.Metrics)
	if err != nil {
		return fmt.Errorf("encoding metrics: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO trace_entries (job_id, job_type, event, scope, epoch, batch, metrics, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		e.JobID, e.JobType, e.Event, e.Scope, e.Epoch, e.Batch,
		string(metrics), e.Time.Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("inserting trace entry: %w", err)
	}
	return nil
}

// Entries returns all entries for a job ordered by insertion.
func (s *Store) Entries(ctx context.Context, jobID string) ([]Entry, error) {
	return s.query(ctx, `
		SELECT job_id, job_type, event, scope, epoch, batch, metrics, created_at
		FROM trace_entries WHERE job_id = ? ORDER BY id`, jobID)
}

// EpochEntries returns the epoch-scope entries of a job matching event,
// ordered by epoch. Pass event "" for all events.
func (s *Store) EpochEntries(ctx context.Context, jobID, event string) ([]Entry, error) {
	if event == "" {
		return s.query(ctx, `
			SELECT job_id, job_type, event, scope, epoch, batch, metrics, created_at
			FROM trace_entries WHERE job_id = ? AND scope = ? ORDER BY epoch, id`,
			jobID, ScopeEpoch)
	}
	return s.query(ctx, `
		SELECT job_id, job_type, event, scope, epoch, batch, metrics, created_at
		FROM trace_entries WHERE job_id = ? AND scope = ? AND event = ? ORDER BY epoch, id`,
		jobID, ScopeEpoch, event)
}

func (s *Store) query(ctx context.Context, q string, args ...any) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("querying trace entries: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var e Entry
		var metrics, created string
		if err := rows.Scan(&e.JobID, &e.JobType, &e.Event, &e.Scope,
			&e.Epoch, &e.Batch, &metrics, &created); err != nil {
			return nil, fmt.Errorf("scanning trace entry: %w", err)
		}
		if metrics != "" && metrics != "null" {
			if err := json.Unmarshal([]byte(metrics), &e.Metrics); err != nil {
				return nil, fmt.Errorf("decoding metrics: %w", err)
			}
		}
		if ts, err := time.Parse(time.RFC3339Nano, created); err == nil {
			e.Time = ts
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// BestEpoch returns the epoch-scope entry with the highest value for metric.
// Ties resolve to the earliest epoch, matching the trainer's best-checkpoint
// selection. Returns ErrNoEntries if no entry carries the metric.
func (s *Store) BestEpoch(ctx context.Context, jobID, metric string) (Entry, error) {
	entries, err := s.EpochEntries(ctx, jobID, "")
	if err != nil {
		return Entry{}, err
	}

	best := -1
	for i, e := range entries {
		v, ok := e.Metrics[metric]
		if !ok {
			continue
		}
		if best == -1 || v > entries[best].Metrics[metric] {
			best = i
		}
	}
	if best == -1 {
		return Entry{}, fmt.Errorf("%w: job %s has no metric %q", ErrNoEntries, jobID, metric)
	}
	return entries[best], nil
}

// Jobs lists the distinct job IDs present in the store.
func (s *Store) Jobs(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT DISTINCT job_id FROM trace_entries ORDER BY job_id")
	if err != nil {
		return nil, fmt.Errorf("listing jobs: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}
