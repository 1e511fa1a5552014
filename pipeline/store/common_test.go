package store

import (
	"context"
	"encoding/json"
	"errors"
	"reflect"
	"testing"
	"time"
)

// testArtifact returns a populated artifact fixture. Bodies are valid
// JSON because some backends store them in JSON columns.
func testArtifact(runID, key string) Artifact {
	return Artifact{
		RunID:     runID,
		Key:       key,
		StepID:    "generate-" + key,
		Title:     "Generate " + key,
		Body:      json.RawMessage(`{"page_type":"` + key + `","sections":3}`),
		CreatedAt: time.Date(2025, 8, 25, 10, 0, 0, 123456000, time.UTC),
	}
}

// testReport returns a populated run report fixture.
func testReport(runID string) RunReport {
	return RunReport{
		RunID:        runID,
		PipelineID:   "pipe-001",
		PipelineName: "Content Generation Pipeline",
		Summary:      json.RawMessage(`{"total_steps":5,"complete":true}`),
		Log:          json.RawMessage(`[{"actor":"orchestrator","action":"pipeline_start"}]`),
		StartedAt:    time.Date(2025, 8, 25, 10, 0, 0, 0, time.UTC),
		FinishedAt:   time.Date(2025, 8, 25, 10, 0, 2, 0, time.UTC),
	}
}

// jsonEqual compares two raw JSON documents by value, not bytes, since
// JSONB backends normalize whitespace and key order.
func jsonEqual(t *testing.T, want, got json.RawMessage) bool {
	t.Helper()

	var wantVal, gotVal interface{}
	if err := json.Unmarshal(want, &wantVal); err != nil {
		t.Fatalf("fixture JSON invalid: %v", err)
	}
	if err := json.Unmarshal(got, &gotVal); err != nil {
		t.Fatalf("stored JSON invalid: %v\nraw: %s", err, got)
	}
	return reflect.DeepEqual(wantVal, gotVal)
}

// runStoreSuite exercises the Store contract every backend must honor.
func runStoreSuite(t *testing.T, s Store, runID string) {
	ctx := context.Background()

	t.Run("save and load artifact", func(t *testing.T) {
		want := testArtifact(runID, "faq_page")
		if err := s.SaveArtifact(ctx, want); err != nil {
			t.Fatalf("SaveArtifact failed: %v", err)
		}

		got, err := s.Artifact(ctx, runID, "faq_page")
		if err != nil {
			t.Fatalf("Artifact failed: %v", err)
		}
		if got.RunID != want.RunID || got.Key != want.Key || got.StepID != want.StepID || got.Title != want.Title {
			t.Errorf("artifact metadata mismatch: got %+v", got)
		}
		if !jsonEqual(t, want.Body, got.Body) {
			t.Errorf("body mismatch: got %s, want %s", got.Body, want.Body)
		}
		if !got.CreatedAt.Equal(want.CreatedAt) {
			t.Errorf("created_at = %v, want %v", got.CreatedAt, want.CreatedAt)
		}
	})

	t.Run("overwrite replaces artifact", func(t *testing.T) {
		first := testArtifact(runID, "product_page")
		if err := s.SaveArtifact(ctx, first); err != nil {
			t.Fatalf("SaveArtifact failed: %v", err)
		}

		second := first
		second.Title = "Updated title"
		second.Body = json.RawMessage(`{"page_type":"product_page","sections":7}`)
		if err := s.SaveArtifact(ctx, second); err != nil {
			t.Fatalf("SaveArtifact (overwrite) failed: %v", err)
		}

		got, err := s.Artifact(ctx, runID, "product_page")
		if err != nil {
			t.Fatalf("Artifact failed: %v", err)
		}
		if got.Title != "Updated title" {
			t.Errorf("title = %q, want %q", got.Title, "Updated title")
		}
		if !jsonEqual(t, second.Body, got.Body) {
			t.Errorf("body not replaced: got %s", got.Body)
		}
	})

	t.Run("list preserves save order", func(t *testing.T) {
		listRun := runID + "-list"
		keys := []string{"product", "question_set", "comparison_page"}
		for _, key := range keys {
			if err := s.SaveArtifact(ctx, testArtifact(listRun, key)); err != nil {
				t.Fatalf("SaveArtifact(%s) failed: %v", key, err)
			}
		}

		got, err := s.ListArtifacts(ctx, listRun)
		if err != nil {
			t.Fatalf("ListArtifacts failed: %v", err)
		}
		if len(got) != len(keys) {
			t.Fatalf("expected %d artifacts, got %d", len(keys), len(got))
		}
	})

	t.Run("missing artifact returns ErrNotFound", func(t *testing.T) {
		_, err := s.Artifact(ctx, runID, "no_such_key")
		if !errors.Is(err, ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("unknown run lists empty", func(t *testing.T) {
		got, err := s.ListArtifacts(ctx, runID+"-unknown")
		if err != nil {
			t.Fatalf("ListArtifacts failed: %v", err)
		}
		if len(got) != 0 {
			t.Errorf("expected empty list, got %d artifacts", len(got))
		}
	})

	t.Run("save and load run report", func(t *testing.T) {
		want := testReport(runID)
		if err := s.SaveRunReport(ctx, want); err != nil {
			t.Fatalf("SaveRunReport failed: %v", err)
		}

		got, err := s.RunReport(ctx, runID)
		if err != nil {
			t.Fatalf("RunReport failed: %v", err)
		}
		if got.PipelineID != want.PipelineID || got.PipelineName != want.PipelineName {
			t.Errorf("report metadata mismatch: got %+v", got)
		}
		if !jsonEqual(t, want.Summary, got.Summary) {
			t.Errorf("summary mismatch: got %s", got.Summary)
		}
		if !jsonEqual(t, want.Log, got.Log) {
			t.Errorf("log mismatch: got %s", got.Log)
		}
		if !got.StartedAt.Equal(want.StartedAt) || !got.FinishedAt.Equal(want.FinishedAt) {
			t.Errorf("timestamps mismatch: got %v..%v", got.StartedAt, got.FinishedAt)
		}
	})

	t.Run("missing report returns ErrNotFound", func(t *testing.T) {
		_, err := s.RunReport(ctx, runID+"-unknown")
		if !errors.Is(err, ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})
}
