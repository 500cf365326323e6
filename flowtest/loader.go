package flowtest

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// LoadFlow reads a flow document from a YAML or JSON file (chosen by
// extension, matching how collections are authored) and validates its
// schema. All failures come back as load-classified *FlowError values;
// a load error means the run never starts.
func LoadFlow(path string) (*Flow, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		code := ErrorCodeParseError
		if os.IsNotExist(err) {
			code = ErrorCodeFileNotFound
		}
		return nil, &FlowError{
			Type:    ErrorTypeLoad,
			Code:    string(code),
			Message: fmt.Sprintf("cannot read flow document %s: %v", path, err),
			Cause:   err,
		}
	}

	var flow Flow
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &flow)
	default:
		err = json.Unmarshal(data, &flow)
	}
	if err != nil {
		return nil, &FlowError{
			Type:    ErrorTypeLoad,
			Code:    string(ErrorCodeParseError),
			Message: fmt.Sprintf("cannot parse flow document %s: %v", path, err),
			Cause:   err,
		}
	}

	if err := ValidateFlow(&flow); err != nil {
		return nil, &FlowError{
			Type:    ErrorTypeLoad,
			Code:    string(ErrorCodeSchemaError),
			Message: err.Error(),
			Cause:   err,
		}
	}

	return &flow, nil
}

// ValidateFlow checks the flow document against its schema rules
// (required fields, known HTTP methods, value ranges). A flow with zero
// steps is valid: it passes vacuously at run time.
func ValidateFlow(flow *Flow) error {
	if err := validate.Struct(flow); err != nil {
		return formatValidationError("flow", err)
	}
	return nil
}
