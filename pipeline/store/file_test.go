package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

// TestFileStore_Contract runs the shared store contract against the
// filesystem backend.
func TestFileStore_Contract(t *testing.T) {
	s, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore failed: %v", err)
	}
	defer func() { _ = s.Close() }()

	runStoreSuite(t, s, "run-file-001")
}

// TestFileStore_Layout verifies the on-disk layout stays inspectable.
func TestFileStore_Layout(t *testing.T) {
	root := t.TempDir()
	s, err := NewFileStore(root)
	if err != nil {
		t.Fatalf("NewFileStore failed: %v", err)
	}
	ctx := context.Background()

	if err := s.SaveArtifact(ctx, testArtifact("run-001", "faq_page")); err != nil {
		t.Fatalf("SaveArtifact failed: %v", err)
	}
	if err := s.SaveRunReport(ctx, testReport("run-001")); err != nil {
		t.Fatalf("SaveRunReport failed: %v", err)
	}

	artifactPath := filepath.Join(root, "runs", "run-001", "artifacts", "faq_page.json")
	if _, err := os.Stat(artifactPath); err != nil {
		t.Errorf("expected artifact file at %s: %v", artifactPath, err)
	}

	reportPath := filepath.Join(root, "runs", "run-001", "execution_summary.json")
	if _, err := os.Stat(reportPath); err != nil {
		t.Errorf("expected report file at %s: %v", reportPath, err)
	}
}

// TestFileStore_RejectsUnsafeIDs verifies ids cannot escape the root.
func TestFileStore_RejectsUnsafeIDs(t *testing.T) {
	s, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore failed: %v", err)
	}
	ctx := context.Background()

	cases := []struct {
		name     string
		artifact Artifact
	}{
		{"slash in run id", Artifact{RunID: "a/b", Key: "k", Body: []byte("{}")}},
		{"dotdot run id", Artifact{RunID: "..", Key: "k", Body: []byte("{}")}},
		{"slash in key", Artifact{RunID: "run-001", Key: "../../etc", Body: []byte("{}")}},
		{"empty key", Artifact{RunID: "run-001", Key: "", Body: []byte("{}")}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if err := s.SaveArtifact(ctx, tc.artifact); err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}

// TestNewFileStore_EmptyDir verifies the constructor rejects an empty
// root.
func TestNewFileStore_EmptyDir(t *testing.T) {
	if _, err := NewFileStore(""); err == nil {
		t.Error("expected error for empty root directory")
	}
}
