// internal/storage/results/archiver_test.go
package results

import (
	"context"
	"encoding/json"
	"testing"
	"time"
)

func TestRunKey(t *testing.T) {
	got := RunKey("smoke-20240601-120000", "result.json")
	want := "runs/smoke-20240601-120000/result.json"
	if got != want {
		t.Errorf("RunKey = %q, want %q", got, want)
	}
}

func TestNewRunID(t *testing.T) {
	at := time.Date(2024, 6, 1, 12, 30, 45, 0, time.UTC)
	got := NewRunID("smoke", at)
	if got != "smoke-20240601-123045" {
		t.Errorf("NewRunID = %q", got)
	}
}

func TestArchiver_SaveJSON(t *testing.T) {
	fs, _ := NewLocalFS(t.TempDir())
	a := NewArchiver(fs)
	ctx := context.Background()

	payload := map[string]any{"final_value": 120000.0}
	if err := a.SaveJSON(ctx, "run-1", "result.json", payload); err != nil {
		t.Fatalf("SaveJSON: %v", err)
	}

	data, err := fs.Get(ctx, "runs/run-1/result.json")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}

	var decoded map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if decoded["final_value"] != 120000.0 {
		t.Errorf("decoded = %v", decoded)
	}
}

func TestArchiver_ListRuns(t *testing.T) {
	fs, _ := NewLocalFS(t.TempDir())
	a := NewArchiver(fs)
	ctx := context.Background()

	a.SaveRaw(ctx, "run-1", "result.json", []byte("{}"))
	a.SaveRaw(ctx, "run-2", "result.json", []byte("{}"))

	keys, err := a.ListRuns(ctx)
	if err != nil {
		t.Fatalf("ListRuns: %v", err)
	}
	if len(keys) != 2 {
		t.Errorf("expected 2 artifacts, got %d", len(keys))
	}
}
