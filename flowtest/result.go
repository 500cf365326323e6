package flowtest

import "time"

// Verdict is the outcome of one step.
type Verdict string

const (
	VerdictPassed  Verdict = "passed"
	VerdictFailed  Verdict = "failed"
	VerdictSkipped Verdict = "skipped"
)

// FlowStatus tracks the runner state machine:
// pending -> running -> passed | failed | aborted.
type FlowStatus string

const (
	StatusPending FlowStatus = "pending"
	StatusRunning FlowStatus = "running"
	StatusPassed  FlowStatus = "passed"
	StatusFailed  FlowStatus = "failed"
	StatusAborted FlowStatus = "aborted"
)

// StepResult records everything observable about one executed step:
// the request actually sent, the response (or transport failure), the
// verdict with its mismatch detail, and any variables extracted.
type StepResult struct {
	Name       string          `json:"name"`
	Verdict    Verdict         `json:"verdict"`
	Request    ResolvedRequest `json:"request"`
	StatusCode int             `json:"status_code,omitempty"`
	Body       any             `json:"body,omitempty"`
	Failure    *FlowError      `json:"failure,omitempty"`
	Mismatches []string        `json:"mismatches,omitempty"`
	Extracted  map[string]any  `json:"extracted,omitempty"`
	Notes      []string        `json:"notes,omitempty"`
	Duration   time.Duration   `json:"-"`
	DurationMS int64           `json:"duration_ms"`
}

// FlowResult aggregates the per-step results of one run. It is created
// fresh per run and discarded after reporting; the NDJSON record is the
// only thing that outlives it.
type FlowResult struct {
	RunID      string        `json:"run_id"`
	Flow       string        `json:"flow"`
	Status     FlowStatus    `json:"status"`
	Steps      []StepResult  `json:"steps"`
	Duration   time.Duration `json:"-"`
	DurationMS int64         `json:"duration_ms"`
}

func (r *FlowResult) Passed() bool {
	return r.Status == StatusPassed
}

// Extracted merges the variables extracted across all steps, later
// steps overriding earlier ones on name collision.
func (r *FlowResult) Extracted() map[string]any {
	merged := make(map[string]any)
	for _, sr := range r.Steps {
		for k, v := range sr.Extracted {
			merged[k] = v
		}
	}
	return merged
}

// FirstFailure returns the transport failure that aborted the run, if any.
func (r *FlowResult) FirstFailure() *FlowError {
	for _, sr := range r.Steps {
		if sr.Failure != nil {
			return sr.Failure
		}
	}
	return nil
}
