package flowtest

// Flow is a named, ordered sequence of HTTP test steps sharing one
// variable store. Step order is significant and fixed at load time.
type Flow struct {
	Name        string         `yaml:"name" json:"name" validate:"required"`
	Description string         `yaml:"description,omitempty" json:"description,omitempty"`
	BaseURL     string         `yaml:"base_url,omitempty" json:"base_url,omitempty"`
	Variables   map[string]any `yaml:"variables,omitempty" json:"variables,omitempty"`
	Steps       []Step         `yaml:"steps" json:"steps" validate:"dive"`
}

// Step is one HTTP request plus its expectation and extraction rules.
// Method defaults to GET when empty. URL may be base-relative or absolute
// and may contain {{var}} placeholders, as may headers and the body at any
// nesting depth.
type Step struct {
	Name    string            `yaml:"name,omitempty" json:"name,omitempty"`
	Method  string            `yaml:"method,omitempty" json:"method,omitempty" validate:"omitempty,oneof=GET POST PUT PATCH DELETE HEAD OPTIONS"`
	URL     string            `yaml:"url" json:"url" validate:"required"`
	BaseURL string            `yaml:"base_url,omitempty" json:"base_url,omitempty"`
	If      string            `yaml:"if,omitempty" json:"if,omitempty"`
	Headers map[string]string `yaml:"headers,omitempty" json:"headers,omitempty"`
	Body    any               `yaml:"body,omitempty" json:"body,omitempty"`
	Timeout float64           `yaml:"timeout,omitempty" json:"timeout,omitempty" validate:"gte=0"`
	Expect  *ExpectationSpec  `yaml:"expect,omitempty" json:"expect,omitempty"`
	Extract map[string]string `yaml:"extract,omitempty" json:"extract,omitempty"`
}

// ExpectationSpec describes what a step's response must look like.
// A zero Status means the status code is not checked. Body is a partial
// pattern: fields absent from it are ignored, fields present must match.
// Placeholders in the pattern are resolved against the variable store
// before comparison.
type ExpectationSpec struct {
	Status          int               `yaml:"status,omitempty" json:"status,omitempty" validate:"omitempty,gte=100,lte=599"`
	Body            any               `yaml:"body,omitempty" json:"body,omitempty"`
	Headers         map[string]string `yaml:"headers,omitempty" json:"headers,omitempty"`
	MaxResponseTime float64           `yaml:"max_response_time,omitempty" json:"max_response_time,omitempty" validate:"gte=0"`
}

// Label returns the step's display name, falling back to "METHOD url".
func (s Step) Label() string {
	if s.Name != "" {
		return s.Name
	}
	m := s.Method
	if m == "" {
		m = "GET"
	}
	return m + " " + s.URL
}
