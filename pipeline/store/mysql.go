package store

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "github.com/go-sql-driver/mysql"
)

// MySQLStore is a MySQL implementation of Store.
//
// It keeps run output in a shared database. Designed for:
//   - Multi-process deployments where several workers run pipelines
//   - Dashboards querying artifacts across runs
//   - Durable history beyond a single host
//
// Connection pooling is configured for moderate concurrency.
type MySQLStore struct {
	db     *sql.DB
	mu     sync.RWMutex
	closed bool
}

// NewMySQLStore creates a new MySQL-backed store.
//
// The DSN uses go-sql-driver format:
//
//	user:pass@tcp(localhost:3306)/contentpipe
//
// The store automatically:
//   - Configures the connection pool
//   - Verifies connectivity with a ping
//   - Creates required tables
//
// Example:
//
//	store, err := store.NewMySQLStore("user:pass@tcp(localhost:3306)/contentpipe")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer store.Close()
func NewMySQLStore(dsn string) (*MySQLStore, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open MySQL connection: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetConnMaxIdleTime(10 * time.Minute)

	ctx := context.Background()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping MySQL: %w", err)
	}

	m := &MySQLStore{db: db}

	if err := m.createTables(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return m, nil
}

// createTables creates the required schema if it doesn't exist.
func (m *MySQLStore) createTables(ctx context.Context) error {
	artifactsTable := `
		CREATE TABLE IF NOT EXISTS run_artifacts (
			id BIGINT AUTO_INCREMENT PRIMARY KEY,
			run_id VARCHAR(64) NOT NULL,
			artifact_key VARCHAR(191) NOT NULL,
			step_id VARCHAR(191) NOT NULL,
			title VARCHAR(255) NOT NULL,
			body MEDIUMTEXT NOT NULL,
			created_at VARCHAR(40) NOT NULL,
			UNIQUE KEY uq_run_artifact (run_id, artifact_key),
			KEY idx_artifacts_run_id (run_id)
		) ENGINE=InnoDB
	`
	if _, err := m.db.ExecContext(ctx, artifactsTable); err != nil {
		return fmt.Errorf("failed to create run_artifacts table: %w", err)
	}

	reportsTable := `
		CREATE TABLE IF NOT EXISTS run_reports (
			run_id VARCHAR(64) NOT NULL PRIMARY KEY,
			pipeline_id VARCHAR(191) NOT NULL,
			pipeline_name VARCHAR(255) NOT NULL,
			summary MEDIUMTEXT NOT NULL,
			run_log MEDIUMTEXT NOT NULL,
			started_at VARCHAR(40) NOT NULL,
			finished_at VARCHAR(40) NOT NULL
		) ENGINE=InnoDB
	`
	if _, err := m.db.ExecContext(ctx, reportsTable); err != nil {
		return fmt.Errorf("failed to create run_reports table: %w", err)
	}

	return nil
}

// SaveArtifact persists one step output, replacing any previous
// artifact with the same run ID and key.
func (m *MySQLStore) SaveArtifact(ctx context.Context, artifact Artifact) error {
	if err := m.ensureOpen(); err != nil {
		return err
	}

	query := `
		INSERT INTO run_artifacts (run_id, artifact_key, step_id, title, body, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON DUPLICATE KEY UPDATE
			step_id = VALUES(step_id),
			title = VALUES(title),
			body = VALUES(body),
			created_at = VALUES(created_at)
	`

	_, err := m.db.ExecContext(ctx, query,
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
func (m *MySQLStore) Artifact(ctx context.Context, runID, key string) (Artifact, error) {
	if err := m.ensureOpen(); err != nil {
		return Artifact{}, err
	}

	query := `
		SELECT run_id, artifact_key, step_id, title, body, created_at
		FROM run_artifacts
		WHERE run_id = ? AND artifact_key = ?
	`

	artifact, err := scanArtifact(m.db.QueryRowContext(ctx, query, runID, key))
	if err == sql.ErrNoRows {
		return Artifact{}, ErrNotFound
	}
	if err != nil {
		return Artifact{}, fmt.Errorf("failed to load artifact: %w", err)
	}
	return artifact, nil
}

// ListArtifacts retrieves all artifacts for a run in save order.
func (m *MySQLStore) ListArtifacts(ctx context.Context, runID string) ([]Artifact, error) {
	if err := m.ensureOpen(); err != nil {
		return nil, err
	}

	query := `
		SELECT run_id, artifact_key, step_id, title, body, created_at
		FROM run_artifacts
		WHERE run_id = ?
		ORDER BY id
	`

	rows, err := m.db.QueryContext(ctx, query, runID)
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
func (m *MySQLStore) SaveRunReport(ctx context.Context, report RunReport) error {
	if err := m.ensureOpen(); err != nil {
		return err
	}

	query := `
		INSERT INTO run_reports (run_id, pipeline_id, pipeline_name, summary, run_log, started_at, finished_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON DUPLICATE KEY UPDATE
			pipeline_id = VALUES(pipeline_id),
			pipeline_name = VALUES(pipeline_name),
			summary = VALUES(summary),
			run_log = VALUES(run_log),
			started_at = VALUES(started_at),
			finished_at = VALUES(finished_at)
	`

	_, err := m.db.ExecContext(ctx, query,
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
func (m *MySQLStore) RunReport(ctx context.Context, runID string) (RunReport, error) {
	if err := m.ensureOpen(); err != nil {
		return RunReport{}, err
	}

	query := `
		SELECT run_id, pipeline_id, pipeline_name, summary, run_log, started_at, finished_at
		FROM run_reports
		WHERE run_id = ?
	`

	report, err := scanRunReport(m.db.QueryRowContext(ctx, query, runID))
	if err == sql.ErrNoRows {
		return RunReport{}, ErrNotFound
	}
	if err != nil {
		return RunReport{}, fmt.Errorf("failed to load run report: %w", err)
	}
	return report, nil
}

// Close closes the database connection pool.
func (m *MySQLStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return nil
	}
	m.closed = true
	return m.db.Close()
}

// Ping verifies the database connection is alive.
func (m *MySQLStore) Ping(ctx context.Context) error {
	if err := m.ensureOpen(); err != nil {
		return err
	}
	return m.db.PingContext(ctx)
}

func (m *MySQLStore) ensureOpen() error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return fmt.Errorf("store is closed")
	}
	return nil
}
