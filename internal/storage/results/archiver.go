// internal/storage/results/archiver.go
package results

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// Archiver writes backtest run artifacts to a backend under a run key.
type Archiver struct {
	backend Backend
}

// NewArchiver creates an archiver over the given backend.
func NewArchiver(backend Backend) *Archiver {
	return &Archiver{backend: backend}
}

// RunKey builds the storage key for an artifact of a run.
func RunKey(runID, artifact string) string {
	return fmt.Sprintf("runs/%s/%s", runID, artifact)
}

// SaveJSON marshals v and stores it as an artifact of the run.
func (a *Archiver) SaveJSON(ctx context.Context, runID, artifact string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %s: %w", artifact, err)
	}
	return a.backend.Put(ctx, RunKey(runID, artifact), data)
}

// SaveRaw stores raw bytes as an artifact of the run.
func (a *Archiver) SaveRaw(ctx context.Context, runID, artifact string, data []byte) error {
	return a.backend.Put(ctx, RunKey(runID, artifact), data)
}

// ListRuns returns the artifact keys of every archived run.
func (a *Archiver) ListRuns(ctx context.Context) ([]string, error) {
	return a.backend.List(ctx, "runs/")
}

// NewRunID derives a run identifier from a name and timestamp.
func NewRunID(name string, at time.Time) string {
	return fmt.Sprintf("%s-%s", name, at.UTC().Format("20060102-150405"))
}
