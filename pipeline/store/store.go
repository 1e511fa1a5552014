// Package store persists the artifacts and run reports produced by
// pipeline executions.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"time"
)

// ErrNotFound is returned when a requested run ID or artifact key does
// not exist.
var ErrNotFound = errors.New("not found")

// Artifact is one exported step output: the JSON body a completed step
// stored under its output key, plus enough metadata to find it again.
type Artifact struct {
	// RunID identifies the pipeline execution that produced this
	// artifact.
	RunID string `json:"run_id"`

	// Key is the context key the producing step wrote its result
	// under (e.g., "faq_page"). Unique within a run.
	Key string `json:"key"`

	// StepID identifies the pipeline step that produced the artifact.
	StepID string `json:"step_id"`

	// Title is the human-readable name of the producing step.
	Title string `json:"title"`

	// Body is the step output serialized as JSON.
	Body json.RawMessage `json:"body"`

	// CreatedAt is when the artifact was saved.
	CreatedAt time.Time `json:"created_at"`
}

// RunReport is the closing record of one pipeline execution: the
// execution summary and the shared context's activity log, serialized
// as JSON.
type RunReport struct {
	RunID        string          `json:"run_id"`
	PipelineID   string          `json:"pipeline_id"`
	PipelineName string          `json:"pipeline_name"`
	Summary      json.RawMessage `json:"summary"`
	Log          json.RawMessage `json:"log"`
	StartedAt    time.Time       `json:"started_at"`
	FinishedAt   time.Time       `json:"finished_at"`
}

// Store provides persistence for pipeline run output.
//
// It enables:
//   - Saving each completed step's output as a queryable artifact
//   - Retrieving artifacts individually or per run
//   - Saving and retrieving the closing report of a run
//
// Implementations in this package:
//   - MemStore: in-memory maps, for tests and short-lived runs
//   - FileStore: JSON files on disk, one directory per run
//   - SQLiteStore: single-file database, zero-setup persistence
//   - MySQLStore: shared database for multi-process deployments
//   - PostgresStore: shared database via pgx connection pooling
type Store interface {
	// SaveArtifact persists one step output. Saving the same
	// (runID, key) pair again replaces the previous artifact.
	SaveArtifact(ctx context.Context, artifact Artifact) error

	// Artifact retrieves one artifact by run ID and key.
	// Returns ErrNotFound if it does not exist.
	Artifact(ctx context.Context, runID, key string) (Artifact, error)

	// ListArtifacts retrieves all artifacts for a run in the order
	// they were first saved. Returns an empty slice for unknown runs.
	ListArtifacts(ctx context.Context, runID string) ([]Artifact, error)

	// SaveRunReport persists the closing report of a run. Saving the
	// same run ID again replaces the previous report.
	SaveRunReport(ctx context.Context, report RunReport) error

	// RunReport retrieves the report for a run.
	// Returns ErrNotFound if the run has no report.
	RunReport(ctx context.Context, runID string) (RunReport, error)

	// Close releases any resources held by the store.
	Close() error
}
