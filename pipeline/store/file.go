package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

// FileStore is a filesystem implementation of Store.
//
// Layout under the root directory:
//
//	<root>/runs/<runID>/artifacts/<key>.json    one file per artifact
//	<root>/runs/<runID>/execution_summary.json  the run report
//
// Files are indented JSON so run output stays inspectable with any
// text tool. Designed for local runs and CLI export; for concurrent
// multi-process writers use a database-backed store.
type FileStore struct {
	mu   sync.Mutex
	root string
}

// NewFileStore creates a FileStore rooted at dir, creating the
// directory if needed.
func NewFileStore(dir string) (*FileStore, error) {
	if dir == "" {
		return nil, fmt.Errorf("file store: empty root directory")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("file store: create root: %w", err)
	}
	return &FileStore{root: dir}, nil
}

// SaveArtifact writes the artifact to <root>/runs/<runID>/artifacts/<key>.json.
func (f *FileStore) SaveArtifact(_ context.Context, artifact Artifact) error {
	if err := validatePathPart(artifact.RunID); err != nil {
		return fmt.Errorf("file store: run id: %w", err)
	}
	if err := validatePathPart(artifact.Key); err != nil {
		return fmt.Errorf("file store: artifact key: %w", err)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	dir := filepath.Join(f.root, "runs", artifact.RunID, "artifacts")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("file store: create run dir: %w", err)
	}

	data, err := json.MarshalIndent(artifact, "", "  ")
	if err != nil {
		return fmt.Errorf("file store: marshal artifact: %w", err)
	}

	path := filepath.Join(dir, artifact.Key+".json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("file store: write artifact: %w", err)
	}
	return nil
}

// Artifact reads one artifact back from disk.
func (f *FileStore) Artifact(_ context.Context, runID, key string) (Artifact, error) {
	if err := validatePathPart(runID); err != nil {
		return Artifact{}, fmt.Errorf("file store: run id: %w", err)
	}
	if err := validatePathPart(key); err != nil {
		return Artifact{}, fmt.Errorf("file store: artifact key: %w", err)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	path := filepath.Join(f.root, "runs", runID, "artifacts", key+".json")
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return Artifact{}, ErrNotFound
	}
	if err != nil {
		return Artifact{}, fmt.Errorf("file store: read artifact: %w", err)
	}

	var artifact Artifact
	if err := json.Unmarshal(data, &artifact); err != nil {
		return Artifact{}, fmt.Errorf("file store: decode artifact: %w", err)
	}
	return artifact, nil
}

// ListArtifacts reads every artifact stored for the run, ordered by
// creation time (key as tiebreaker, so listings stay deterministic).
func (f *FileStore) ListArtifacts(_ context.Context, runID string) ([]Artifact, error) {
	if err := validatePathPart(runID); err != nil {
		return nil, fmt.Errorf("file store: run id: %w", err)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	dir := filepath.Join(f.root, "runs", runID, "artifacts")
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return []Artifact{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("file store: list artifacts: %w", err)
	}

	artifacts := make([]Artifact, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("file store: read %s: %w", entry.Name(), err)
		}
		var artifact Artifact
		if err := json.Unmarshal(data, &artifact); err != nil {
			return nil, fmt.Errorf("file store: decode %s: %w", entry.Name(), err)
		}
		artifacts = append(artifacts, artifact)
	}

	sort.Slice(artifacts, func(i, j int) bool {
		if !artifacts[i].CreatedAt.Equal(artifacts[j].CreatedAt) {
			return artifacts[i].CreatedAt.Before(artifacts[j].CreatedAt)
		}
		return artifacts[i].Key < artifacts[j].Key
	})
	return artifacts, nil
}

// SaveRunReport writes the report to <root>/runs/<runID>/execution_summary.json.
func (f *FileStore) SaveRunReport(_ context.Context, report RunReport) error {
	if err := validatePathPart(report.RunID); err != nil {
		return fmt.Errorf("file store: run id: %w", err)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	dir := filepath.Join(f.root, "runs", report.RunID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("file store: create run dir: %w", err)
	}

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("file store: marshal report: %w", err)
	}

	path := filepath.Join(dir, "execution_summary.json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("file store: write report: %w", err)
	}
	return nil
}

// RunReport reads the report for a run back from disk.
func (f *FileStore) RunReport(_ context.Context, runID string) (RunReport, error) {
	if err := validatePathPart(runID); err != nil {
		return RunReport{}, fmt.Errorf("file store: run id: %w", err)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	path := filepath.Join(f.root, "runs", runID, "execution_summary.json")
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return RunReport{}, ErrNotFound
	}
	if err != nil {
		return RunReport{}, fmt.Errorf("file store: read report: %w", err)
	}

	var report RunReport
	if err := json.Unmarshal(data, &report); err != nil {
		return RunReport{}, fmt.Errorf("file store: decode report: %w", err)
	}
	return report, nil
}

// Close is a no-op for the file store.
func (f *FileStore) Close() error {
	return nil
}

// validatePathPart rejects ids that would escape the store directory
// when used as a path segment.
func validatePathPart(part string) error {
	if part == "" {
		return fmt.Errorf("empty")
	}
	if strings.ContainsAny(part, `/\`) || part == "." || part == ".." {
		return fmt.Errorf("invalid characters in %q", part)
	}
	return nil
}
