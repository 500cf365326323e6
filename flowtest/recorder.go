package flowtest

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Recorder appends one machine-readable record per run to an NDJSON
// log, so calling automation can tail results across invocations.
type Recorder struct {
	path string
}

// NewRecorder returns a recorder writing to path. An empty path
// disables recording.
func NewRecorder(path string) *Recorder {
	return &Recorder{path: path}
}

type runRecord struct {
	Timestamp string `json:"timestamp"`
	Tool      string `json:"tool"`
	*FlowResult
}

// Record serializes the result and appends it as a single NDJSON line.
func (r *Recorder) Record(result *FlowResult) error {
	if r.path == "" {
		return nil
	}

	if dir := filepath.Dir(r.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create result log directory: %w", err)
		}
	}

	f, err := os.OpenFile(r.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open result log: %w", err)
	}
	defer f.Close()

	record := runRecord{
		Timestamp:  time.Now().Format(time.RFC3339),
		Tool:       "flowtest",
		FlowResult: result,
	}

	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to serialize result record: %w", err)
	}

	if _, err := f.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("failed to append result record: %w", err)
	}

	return nil
}
