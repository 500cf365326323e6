package flowtest

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
)

// Package-level validator instance shared by config and flow validation.
var validate *validator.Validate

func init() {
	validate = validator.New()
	registerCustomValidators()
}

// Config carries the runner-level settings a flow run needs: the
// target base URL and the HTTP client behavior. These are passed in
// explicitly rather than read from ambient state.
type Config struct {
	BaseURL     string        `yaml:"base_url" validate:"omitempty,url_format"`
	Timeout     time.Duration `yaml:"timeout" default:"30s" validate:"gte=1s"`
	Retries     int           `yaml:"retries" default:"0" validate:"gte=0,lte=10"`
	RetryWaitMS int           `yaml:"retry_wait_ms" default:"100" validate:"gte=0,lte=10000"`
	Debug       bool          `yaml:"debug" default:"false"`
}

// PrepareConfig applies struct-tag defaults and validates the result.
func PrepareConfig(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("config cannot be nil")
	}

	if err := defaults.Set(cfg); err != nil {
		return fmt.Errorf("failed to apply default values: %w", err)
	}

	if err := validate.Struct(cfg); err != nil {
		return formatValidationError("config", err)
	}

	return nil
}

func registerCustomValidators() {
	// url_format validates URL structure
	validate.RegisterValidation("url_format", func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		u, err := url.Parse(s)
		return err == nil && u.Scheme != "" && u.Host != ""
	})
}

// formatValidationError flattens validator.ValidationErrors into one
// readable error value.
func formatValidationError(subject string, err error) error {
	if validationErrors, ok := err.(validator.ValidationErrors); ok {
		var errMessages []string
		for _, fieldErr := range validationErrors {
			errMessages = append(errMessages, fmt.Sprintf(
				"field '%s' failed validation (rule: %s)",
				fieldErr.Namespace(),
				fieldErr.Tag(),
			))
		}
		return fmt.Errorf("%s validation failed:\n  - %s", subject, strings.Join(errMessages, "\n  - "))
	}
	return fmt.Errorf("%s validation failed: %w", subject, err)
}
