package store

import (
	"context"
	"sync"
)

// MemStore is an in-memory implementation of Store.
//
// It keeps artifacts and reports in maps. Designed for:
//   - Testing and development
//   - Single-process pipelines where persistence isn't required
//
// MemStore is thread-safe and supports concurrent access.
//
// Limitations:
//   - Data is lost when the process terminates
//   - Memory usage grows with run history
//
// For durable output use FileStore or a database-backed store.
type MemStore struct {
	mu        sync.RWMutex
	artifacts map[string][]Artifact // runID -> artifacts in save order
	reports   map[string]RunReport  // runID -> report
}

// NewMemStore creates a new in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{
		artifacts: make(map[string][]Artifact),
		reports:   make(map[string]RunReport),
	}
}

// SaveArtifact stores the artifact, replacing any previous artifact
// with the same run ID and key.
func (m *MemStore) SaveArtifact(_ context.Context, artifact Artifact) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	list := m.artifacts[artifact.RunID]
	for i, existing := range list {
		if existing.Key == artifact.Key {
			list[i] = artifact
			return nil
		}
	}
	m.artifacts[artifact.RunID] = append(list, artifact)
	return nil
}

// Artifact retrieves one artifact by run ID and key.
func (m *MemStore) Artifact(_ context.Context, runID, key string) (Artifact, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, artifact := range m.artifacts[runID] {
		if artifact.Key == key {
			return artifact, nil
		}
	}
	return Artifact{}, ErrNotFound
}

// ListArtifacts retrieves all artifacts for a run in save order.
func (m *MemStore) ListArtifacts(_ context.Context, runID string) ([]Artifact, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	list := m.artifacts[runID]
	out := make([]Artifact, len(list))
	copy(out, list)
	return out, nil
}

// SaveRunReport stores the report, replacing any previous report for
// the same run.
func (m *MemStore) SaveRunReport(_ context.Context, report RunReport) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.reports[report.RunID] = report
	return nil
}

// RunReport retrieves the report for a run.
func (m *MemStore) RunReport(_ context.Context, runID string) (RunReport, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	report, ok := m.reports[runID]
	if !ok {
		return RunReport{}, ErrNotFound
	}
	return report, nil
}

// Close is a no-op for the in-memory store.
func (m *MemStore) Close() error {
	return nil
}
