package flowtest

import (
	"fmt"
	"time"

	"github.com/mitchellh/mapstructure"
)

// DecodeArgs converts a loosely typed argument map (direct-mode CLI
// flags, parsed JSON fragments) into a typed struct using mapstructure.
// It uses json tags for field mapping and coerces weakly typed input,
// e.g. "201" into an int status.
func DecodeArgs(args map[string]any, target any) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:  target,
		TagName: "json",
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToTimeHookFunc(time.RFC3339),
		),
		WeaklyTypedInput: true,
	})
	if err != nil {
		return fmt.Errorf("failed to create decoder: %w", err)
	}

	if err := decoder.Decode(args); err != nil {
		return fmt.Errorf("failed to decode arguments: %w", err)
	}

	return nil
}
