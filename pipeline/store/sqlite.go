package store

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteStore is a SQLite implementation of Store.
//
// It keeps run output in a single-file database. Designed for:
//   - Development and testing with zero setup
//   - Single-process pipelines that need durable output
//   - Prototyping before migrating to a shared database
//
// SQLiteStore uses WAL mode so readers don't block behind the writer.
//
// Schema:
//   - run_artifacts: one row per saved step output
//   - run_reports: one row per completed run
type SQLiteStore struct {
	db     *sql.DB
	mu     sync.RWMutex
	closed bool
	path   string
}

// NewSQLiteStore creates a new SQLite-backed store.
//
// The path parameter specifies the database file location:
//   - "./runs.db" - file in current directory
//   - ":memory:" - in-memory database (data lost on close)
//
// The store automatically:
//   - Creates the database file if it doesn't exist
//   - Creates required tables
//   - Enables WAL mode for concurrent reads
//   - Sets a 5 second busy timeout
//
// Example:
//
//	store, err := store.NewSQLiteStore("./runs.db")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer store.Close()
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite connection: %w", err)
	}

	// SQLite supports one writer at a time.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	ctx := context.Background()
	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}
	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys=ON"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}
	if _, err := db.ExecContext(ctx, "PRAGMA busy_timeout=5000"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to set busy timeout: %w", err)
	}

	s := &SQLiteStore{
		db:   db,
		path: path,
	}

	if err := s.createTables(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return s, nil
}

// createTables creates the required schema if it doesn't exist.
func (s *SQLiteStore) createTables(ctx context.Context) error {
	artifactsTable := `
		CREATE TABLE IF NOT EXISTS run_artifacts (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id TEXT NOT NULL,
			artifact_key TEXT NOT NULL,
			step_id TEXT NOT NULL,
			title TEXT NOT NULL,
			body TEXT NOT NULL,
			created_at TEXT NOT NULL,
			UNIQUE(run_id, artifact_key)
		)
	`
	if _, err := s.db.ExecContext(ctx, artifactsTable); err != nil {
		return fmt.Errorf("failed to create run_artifacts table: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, "CREATE INDEX IF NOT EXISTS idx_artifacts_run_id ON run_artifacts(run_id)"); err != nil {
		return fmt.Errorf("failed to create idx_artifacts_run_id: %w", err)
	}

	reportsTable := `
		CREATE TABLE IF NOT EXISTS run_reports (
			run_id TEXT NOT NULL PRIMARY KEY,
			pipeline_id TEXT NOT NULL,
			pipeline_name TEXT NOT NULL,
			summary TEXT NOT NULL,
			run_log TEXT NOT NULL,
			started_at TEXT NOT NULL,
			finished_at TEXT NOT NULL
		)
	`
	if _, err := s.db.ExecContext(ctx, reportsTable); err != nil {
		return fmt.Errorf("failed to create run_reports table: %w", err)
	}

	return nil
}

// SaveArtifact persists one step output, replacing any previous
// artifact with the same run ID and key.
func (s *SQLiteStore) SaveArtifact(ctx context.Context, artifact Artifact) error {
	if err := s.ensureOpen(); err != nil {
		return err
	}

	query := `
		INSERT INTO run_artifacts (run_id, artifact_key, step_id, title, body, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(run_id, artifact_key) DO UPDATE SET
			step_id = excluded.step_id,
			title = excluded.title,
			body = excluded.body,
			created_at = excluded.created_at
	`

	_, err := s.db.ExecContext(ctx, query,
		artifact.RunID,
		artifact.Key,
		artifact.StepID,
		artifact.Title,
		string(artifact.Body),
		artifact.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("failed to save artifact: %w", err)
	}
	return nil
}

// Artifact retrieves one artifact by run ID and key.
func (s *SQLiteStore) Artifact(ctx context.Context, runID, key string) (Artifact, error) {
	if err := s.ensureOpen(); err != nil {
		return Artifact{}, err
	}

	query := `
		SELECT run_id, artifact_key, step_id, title, body, created_at
		FROM run_artifacts
		WHERE run_id = ? AND artifact_key = ?
	`

	artifact, err := scanArtifact(s.db.QueryRowContext(ctx, query, runID, key))
	if err == sql.ErrNoRows {
		return Artifact{}, ErrNotFound
	}
	if err != nil {
		return Artifact{}, fmt.Errorf("failed to load artifact: %w", err)
	}
	return artifact, nil
}

// ListArtifacts retrieves all artifacts for a run in save order.
func (s *SQLiteStore) ListArtifacts(ctx context.Context, runID string) ([]Artifact, error) {
	if err := s.ensureOpen(); err != nil {
		return nil, err
	}

	query := `
		SELECT run_id, artifact_key, step_id, title, body, created_at
		FROM run_artifacts
		WHERE run_id = ?
		ORDER BY id
	`

	rows, err := s.db.QueryContext(ctx, query, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to list artifacts: %w", err)
	}
	defer func() { _ = rows.Close() }()

	artifacts := make([]Artifact, 0)
	for rows.Next() {
		artifact, err := scanArtifact(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan artifact: %w", err)
		}
		artifacts = append(artifacts, artifact)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate artifacts: %w", err)
	}
	return artifacts, nil
}

// SaveRunReport persists the closing report of a run.
func (s *SQLiteStore) SaveRunReport(ctx context.Context, report RunReport) error {
	if err := s.ensureOpen(); err != nil {
		return err
	}

	query := `
		INSERT INTO run_reports (run_id, pipeline_id, pipeline_name, summary, run_log, started_at, finished_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(run_id) DO UPDATE SET
			pipeline_id = excluded.pipeline_id,
			pipeline_name = excluded.pipeline_name,
			summary = excluded.summary,
			run_log = excluded.run_log,
			started_at = excluded.started_at,
			finished_at = excluded.finished_at
	`

	_, err := s.db.ExecContext(ctx, query,
		report.RunID,
		report.PipelineID,
		report.PipelineName,
		string(report.Summary),
		string(report.Log),
		report.StartedAt.Format(time.RFC3339Nano),
		report.FinishedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("failed to save run report: %w", err)
	}
	return nil
}

// RunReport retrieves the report for a run.
func (s *SQLiteStore) RunReport(ctx context.Context, runID string) (RunReport, error) {
	if err := s.ensureOpen(); err != nil {
		return RunReport{}, err
	}

	query := `
		SELECT run_id, pipeline_id, pipeline_name, summary, run_log, started_at, finished_at
		FROM run_reports
		WHERE run_id = ?
	`

	report, err := scanRunReport(s.db.QueryRowContext(ctx, query, runID))
	if err == sql.ErrNoRows {
		return RunReport{}, ErrNotFound
	}
	if err != nil {
		return RunReport{}, fmt.Errorf("failed to load run report: %w", err)
	}
	return report, nil
}

// Close closes the database connection. Further calls return an error.
func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	return s.db.Close()
}

// Ping verifies the database connection is alive.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	if err := s.ensureOpen(); err != nil {
		return err
	}
	return s.db.PingContext(ctx)
}

func (s *SQLiteStore) ensureOpen() error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return fmt.Errorf("store is closed")
	}
	return nil
}

// rowScanner abstracts *sql.Row and *sql.Rows for the scan helpers.
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanArtifact(row rowScanner) (Artifact, error) {
	var (
		artifact  Artifact
		body      string
		createdAt string
	)
	if err := row.Scan(&artifact.RunID, &artifact.Key, &artifact.StepID, &artifact.Title, &body, &createdAt); err != nil {
		return Artifact{}, err
	}
	artifact.Body = []byte(body)

	ts, err := time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return Artifact{}, fmt.Errorf("failed to parse created_at: %w", err)
	}
	artifact.CreatedAt = ts
	return artifact, nil
}

func scanRunReport(row rowScanner) (RunReport, error) {
	var (
		report     RunReport
		summary    string
		runLog     string
		startedAt  string
		finishedAt string
	)
	if err := row.Scan(&report.RunID, &report.PipelineID, &report.PipelineName, &summary, &runLog, &startedAt, &finishedAt); err != nil {
		return RunReport{}, err
	}
	report.Summary = []byte(summary)
	report.Log = []byte(runLog)

	started, err := time.Parse(time.RFC3339Nano, startedAt)
	if err != nil {
		return RunReport{}, fmt.Errorf("failed to parse started_at: %w", err)
	}
	finished, err := time.Parse(time.RFC3339Nano, finishedAt)
	if err != nil {
		return RunReport{}, fmt.Errorf("failed to parse finished_at: %w", err)
	}
	report.StartedAt = started
	report.FinishedAt = finished
	return report, nil
}
