package flowtest

import "fmt"

// FlowErrorType classifies how an error affects the remainder of a run.
type FlowErrorType string

const (
	// ErrorTypeLoad signals the flow document could not be read or parsed.
	// The run never starts.
	ErrorTypeLoad FlowErrorType = "load"
	// ErrorTypeTransport signals a network-level failure executing a step.
	// The remaining steps are not attempted.
	ErrorTypeTransport FlowErrorType = "transport"
	// ErrorTypeTimeout signals the request was cancelled by a deadline.
	ErrorTypeTimeout FlowErrorType = "timeout"
	// ErrorTypeCanceled signals the run was aborted by the caller.
	ErrorTypeCanceled FlowErrorType = "canceled"
)

// FlowErrorCode identifies known engine error codes.
type FlowErrorCode string

const (
	ErrorCodeFileNotFound     FlowErrorCode = "FILE_NOT_FOUND"
	ErrorCodeParseError       FlowErrorCode = "PARSE_ERROR"
	ErrorCodeSchemaError      FlowErrorCode = "SCHEMA_ERROR"
	ErrorCodeConnectionError  FlowErrorCode = "CONNECTION_ERROR"
	ErrorCodeDeadlineExceeded FlowErrorCode = "DEADLINE_EXCEEDED"
	ErrorCodeContextCancelled FlowErrorCode = "CONTEXT_CANCELLED"
)

// FlowError is the canonical error type propagated through a flow run.
// It is JSON-serializable so it can be embedded in result records.
type FlowError struct {
	Type    FlowErrorType `json:"type"`
	Code    string        `json:"code"`
	Message string        `json:"message"`
	Step    string        `json:"step,omitempty"`
	Cause   error         `json:"-"`
}

func (e *FlowError) Error() string {
	if e.Step != "" {
		return fmt.Sprintf("[%s/%s] %s (step: %s)", e.Type, e.Code, e.Message, e.Step)
	}
	return fmt.Sprintf("[%s/%s] %s", e.Type, e.Code, e.Message)
}

// Unwrap returns the underlying error for errors.Is and errors.As.
func (e *FlowError) Unwrap() error {
	return e.Cause
}

// ToMap converts the error to a map suitable for result records and logging.
func (e *FlowError) ToMap() map[string]any {
	m := map[string]any{
		"type":    string(e.Type),
		"code":    e.Code,
		"message": e.Message,
	}
	if e.Step != "" {
		m["step"] = e.Step
	}
	return m
}
