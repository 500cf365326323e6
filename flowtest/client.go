package flowtest

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

// ResolvedRequest is the request a step actually sends, after template
// resolution: concrete method, absolute URL, headers, and body.
type ResolvedRequest struct {
	Method  string            `json:"method"`
	URL     string            `json:"url"`
	Headers map[string]string `json:"headers,omitempty"`
	Body    any               `json:"body,omitempty"`
}

// Response is one step's actual response. Body holds the parsed JSON
// value when the content type indicates JSON, otherwise nil; RawBody
// always carries the response text.
type Response struct {
	StatusCode int
	Headers    http.Header
	Body       any
	RawBody    string
	Elapsed    time.Duration
}

// Client issues one HTTP request per step. It holds no state between
// invocations beyond the configured resty client; connection pooling is
// an optimization resty provides for free.
type Client struct {
	rc *resty.Client
	l  *slog.Logger
}

func NewClient(cfg Config, l *slog.Logger) *Client {
	rc := resty.New().
		SetTimeout(cfg.Timeout).
		SetRetryCount(cfg.Retries).
		SetRetryWaitTime(time.Duration(cfg.RetryWaitMS) * time.Millisecond).
		SetDebug(cfg.Debug)

	return &Client{rc: rc, l: l}
}

// Do executes a resolved request with a bounded timeout. timeout <= 0
// falls back to the client-level timeout. Transport failures (refused
// connections, DNS, TLS, deadline) come back as a typed *FlowError.
func (c *Client) Do(ctx context.Context, stepName string, req ResolvedRequest, timeout time.Duration) (*Response, *FlowError) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	r := c.rc.R().SetContext(ctx)
	if len(req.Headers) > 0 {
		r.SetHeaders(req.Headers)
	}
	if req.Body != nil {
		r.SetBody(req.Body)
	}

	c.l.InfoContext(ctx, "executing step request", "step", stepName, "method", req.Method, "url", req.URL)

	resp, err := r.Execute(req.Method, req.URL)
	if err != nil {
		fe := classifyTransportError(stepName, err)
		c.l.ErrorContext(ctx, "step request failed", "step", stepName, "error", fe.Message, "error_type", string(fe.Type))
		return nil, fe
	}

	raw := string(resp.Body())
	out := &Response{
		StatusCode: resp.StatusCode(),
		Headers:    resp.Header(),
		RawBody:    raw,
		Elapsed:    resp.Time(),
	}

	// Parse the body as structured data when the server says it is JSON;
	// anything else stays opaque text in RawBody.
	contentType := resp.Header().Get("Content-Type")
	if raw != "" && strings.Contains(contentType, "json") {
		var parsed any
		if jsonErr := json.Unmarshal(resp.Body(), &parsed); jsonErr == nil {
			out.Body = parsed
		}
	}

	c.l.InfoContext(ctx, "step response received", "step", stepName, "status", out.StatusCode, "elapsed", out.Elapsed)

	return out, nil
}

// classifyTransportError maps low-level request failures onto the flow
// error taxonomy so the runner can pick the right abort verdict.
func classifyTransportError(stepName string, err error) *FlowError {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return &FlowError{
			Type:    ErrorTypeTimeout,
			Code:    string(ErrorCodeDeadlineExceeded),
			Message: err.Error(),
			Step:    stepName,
			Cause:   err,
		}
	case errors.Is(err, context.Canceled):
		return &FlowError{
			Type:    ErrorTypeCanceled,
			Code:    string(ErrorCodeContextCancelled),
			Message: err.Error(),
			Step:    stepName,
			Cause:   err,
		}
	}

	var ue *url.Error
	if errors.As(err, &ue) && ue.Timeout() {
		return &FlowError{
			Type:    ErrorTypeTimeout,
			Code:    string(ErrorCodeDeadlineExceeded),
			Message: err.Error(),
			Step:    stepName,
			Cause:   err,
		}
	}

	return &FlowError{
		Type:    ErrorTypeTransport,
		Code:    string(ErrorCodeConnectionError),
		Message: err.Error(),
		Step:    stepName,
		Cause:   err,
	}
}

// JoinURL joins a base-relative step URL against a base URL. Absolute
// step URLs pass through untouched.
func JoinURL(base, path string) string {
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	if base == "" {
		return path
	}
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(path, "/")
}
