package flowtest

import (
	"strings"
	"testing"
	"time"
)

func TestPrepareConfig_AppliesDefaults(t *testing.T) {
	cfg := Config{}
	if err := PrepareConfig(&cfg); err != nil {
		t.Fatalf("PrepareConfig returned error: %v", err)
	}

	if cfg.Timeout != 30*time.Second {
		t.Errorf("Timeout = %v, want 30s", cfg.Timeout)
	}
	if cfg.Retries != 0 {
		t.Errorf("Retries = %d, want 0", cfg.Retries)
	}
	if cfg.RetryWaitMS != 100 {
		t.Errorf("RetryWaitMS = %d, want 100", cfg.RetryWaitMS)
	}
}

func TestPrepareConfig_KeepsExplicitValues(t *testing.T) {
	cfg := Config{
		BaseURL: "http://localhost:8000",
		Timeout: 5 * time.Second,
		Retries: 2,
	}
	if err := PrepareConfig(&cfg); err != nil {
		t.Fatalf("PrepareConfig returned error: %v", err)
	}

	if cfg.Timeout != 5*time.Second {
		t.Errorf("Timeout = %v, want explicit 5s", cfg.Timeout)
	}
	if cfg.Retries != 2 {
		t.Errorf("Retries = %d, want explicit 2", cfg.Retries)
	}
}

func TestPrepareConfig_Invalid(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
	}{
		{"malformed base url", Config{BaseURL: "not a url"}},
		{"retries out of range", Config{Retries: 99}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := PrepareConfig(&tt.cfg)
			if err == nil {
				t.Fatal("expected validation error, got nil")
			}
			if !strings.Contains(err.Error(), "validation") {
				t.Errorf("error %q should mention validation", err)
			}
		})
	}
}

func TestPrepareConfig_Nil(t *testing.T) {
	if err := PrepareConfig(nil); err == nil {
		t.Error("expected error for nil config")
	}
}
