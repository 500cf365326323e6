package flowtest

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Runner drives one flow at a time through the
// resolve -> execute -> match -> extract pipeline, step by step.
//
// Failure policy: an assertion mismatch fails the step but the run
// continues, so one run surfaces as much diagnostic detail as possible.
// A transport error aborts the run, since later steps likely depend on
// state the failed request never produced. Cancellation is checked at
// step boundaries and yields an aborted verdict distinct from failed.
//
// A Runner is safe to reuse across flows; each run gets its own
// ValueStore, so independent flows never share mutable state.
type Runner struct {
	cfg    Config
	client *Client
	eval   *Evaluator
	l      *slog.Logger
}

func NewRunner(cfg Config, l *slog.Logger) *Runner {
	return &Runner{
		cfg:    cfg,
		client: NewClient(cfg, l),
		eval:   NewEvaluator(),
		l:      l,
	}
}

// RunFlow executes the flow's steps strictly in order. The returned
// FlowResult always carries one StepResult per attempted step; a flow
// with zero steps passes vacuously.
func (r *Runner) RunFlow(ctx context.Context, flow *Flow) *FlowResult {
	runID := uuid.New().String()
	l := r.l.With("run_id", runID, "flow", flow.Name)

	store := NewValueStore()
	store.Seed(flow.Variables)

	// Runner-supplied base URL wins over the flow-level one: an explicit
	// invocation target beats the document default.
	baseURL := r.cfg.BaseURL
	if baseURL == "" {
		baseURL = flow.BaseURL
	}
	store.Set("base_url", baseURL)

	result := &FlowResult{
		RunID:  runID,
		Flow:   flow.Name,
		Status: StatusRunning,
	}

	l.Info("starting flow", "steps", len(flow.Steps), "base_url", baseURL)
	start := time.Now()

	failed := false
	aborted := false

	for i, step := range flow.Steps {
		if err := ctx.Err(); err != nil {
			l.Warn("run canceled", "at_step", i, "error", err)
			aborted = true
			break
		}

		sr := r.runStep(ctx, l, store, baseURL, step)
		result.Steps = append(result.Steps, sr)

		if sr.Verdict == VerdictFailed {
			failed = true
			if sr.Failure != nil {
				l.Warn("aborting flow after transport failure", "step", sr.Name)
				aborted = true
				break
			}
		}
	}

	result.Duration = time.Since(start)
	result.DurationMS = result.Duration.Milliseconds()

	switch {
	case aborted:
		result.Status = StatusAborted
	case failed:
		result.Status = StatusFailed
	default:
		result.Status = StatusPassed
	}

	l.Info("flow finished", "status", string(result.Status), "steps", len(result.Steps), "duration", result.Duration)

	return result
}

// RunStep executes a single synthesized step (direct mode) through the
// identical pipeline, returning it wrapped in a one-step FlowResult.
func (r *Runner) RunStep(ctx context.Context, step Step) *FlowResult {
	flow := &Flow{
		Name:  step.Label(),
		Steps: []Step{step},
	}
	return r.RunFlow(ctx, flow)
}

func (r *Runner) runStep(ctx context.Context, l *slog.Logger, store *ValueStore, baseURL string, step Step) StepResult {
	label := step.Label()
	sr := StepResult{Name: label}
	start := time.Now()

	defer func() {
		sr.Duration = time.Since(start)
		sr.DurationMS = sr.Duration.Milliseconds()
	}()

	if step.If != "" {
		met, err := r.eval.Condition(step.If, store.All())
		if err != nil {
			sr.Verdict = VerdictSkipped
			sr.Notes = append(sr.Notes, fmt.Sprintf("condition error: %v", err))
			l.Warn("skipping step, condition error", "step", label, "condition", step.If, "error", err)
			return sr
		}
		if !met {
			sr.Verdict = VerdictSkipped
			sr.Notes = append(sr.Notes, fmt.Sprintf("condition not met: %s", step.If))
			l.Info("skipping step", "step", label, "condition", step.If)
			return sr
		}
	}

	sr.Request = r.resolveRequest(store, baseURL, step)

	timeout := time.Duration(step.Timeout * float64(time.Second))
	resp, fe := r.client.Do(ctx, label, sr.Request, timeout)
	if fe != nil {
		sr.Verdict = VerdictFailed
		sr.Failure = fe
		return sr
	}

	sr.StatusCode = resp.StatusCode
	if resp.Body != nil {
		sr.Body = resp.Body
	} else if resp.RawBody != "" {
		sr.Body = resp.RawBody
	}

	sr.Mismatches = MatchResponse(resolveExpect(step.Expect, store), resp)
	if len(sr.Mismatches) > 0 {
		sr.Verdict = VerdictFailed
		l.Warn("step failed assertions", "step", label, "mismatches", len(sr.Mismatches))
		return sr
	}

	sr.Verdict = VerdictPassed
	extracted, notes := ExtractValues(step.Extract, resp.Body, store)
	sr.Extracted = extracted
	sr.Notes = append(sr.Notes, notes...)
	for _, note := range notes {
		l.Warn("extraction failed", "step", label, "note", note)
	}

	return sr
}

// resolveRequest expands every templated field of a step against the
// current variable store and joins the URL with the effective base.
func (r *Runner) resolveRequest(store *ValueStore, baseURL string, step Step) ResolvedRequest {
	method := step.Method
	if method == "" {
		method = "GET"
	}
	method = strings.ToUpper(ResolveString(method, store))

	base := baseURL
	if step.BaseURL != "" {
		base = ResolveString(step.BaseURL, store)
	}

	req := ResolvedRequest{
		Method: method,
		URL:    JoinURL(base, ResolveString(step.URL, store)),
	}

	if len(step.Headers) > 0 {
		req.Headers = ResolveValue(step.Headers, store).(map[string]string)
	}
	if step.Body != nil {
		req.Body = ResolveValue(step.Body, store)
	}

	return req
}

// resolveExpect resolves placeholders inside the expectation pattern so
// comparisons see concrete values.
func resolveExpect(expect *ExpectationSpec, store *ValueStore) *ExpectationSpec {
	if expect == nil {
		return nil
	}
	resolved := &ExpectationSpec{
		Status:          expect.Status,
		MaxResponseTime: expect.MaxResponseTime,
	}
	if expect.Body != nil {
		resolved.Body = ResolveValue(expect.Body, store)
	}
	if len(expect.Headers) > 0 {
		resolved.Headers = ResolveValue(expect.Headers, store).(map[string]string)
	}
	return resolved
}
