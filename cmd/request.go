package cmd

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/admingistai/vibe-qa/flowtest"
	"github.com/spf13/cobra"
)

var (
	reqMethod  string
	reqURL     string
	reqStatus  int
	reqBody    string
	reqHeaders string
	reqExtract string
)

var requestCmd = &cobra.Command{
	Use:   "request",
	Short: "Execute a single ad-hoc request through the flow pipeline",
	Long: `Execute one HTTP request synthesized from flags instead of a flow
document. The request runs through the same resolve/execute/match/extract
pipeline as a one-step flow:

  vibe-qa request --method GET --url /api/health --status 200 --base-url http://localhost:8000
  vibe-qa request --method POST --url /api/users --body '{"name":"test"}' --status 201 --base-url http://localhost:8000
  vibe-qa request --method GET --url /api/user/123 --extract '{"user_id":"id"}' --base-url http://localhost:8000`,
	RunE: runRequest,
}

func init() {
	requestCmd.Flags().StringVarP(&reqMethod, "method", "m", "GET", "HTTP method (GET, POST, PUT, PATCH, DELETE, ...)")
	requestCmd.Flags().StringVarP(&reqURL, "url", "u", "", "URL path or full URL")
	requestCmd.Flags().IntVarP(&reqStatus, "status", "s", 200, "expected HTTP status code")
	requestCmd.Flags().StringVar(&reqBody, "body", "", "request body (JSON string or plain text)")
	requestCmd.Flags().StringVar(&reqHeaders, "headers", "", "request headers as JSON string")
	requestCmd.Flags().StringVar(&reqExtract, "extract", "", "variables to extract from the response as JSON string")
	requestCmd.MarkFlagRequired("url")
	rootCmd.AddCommand(requestCmd)
}

func runRequest(cmd *cobra.Command, args []string) error {
	if flagBaseURL == "" && !strings.HasPrefix(reqURL, "http") {
		return fmt.Errorf("base URL required: use --base-url or pass an absolute --url")
	}

	step, err := buildStep()
	if err != nil {
		return err
	}

	cfg := flowtest.Config{
		BaseURL: flagBaseURL,
		Timeout: time.Duration(flagTimeout) * time.Second,
	}
	if err := flowtest.PrepareConfig(&cfg); err != nil {
		return err
	}

	runner := flowtest.NewRunner(cfg, newLogger())
	result := runner.RunStep(cmd.Context(), step)

	return reportResult(result)
}

// buildStep assembles the synthesized step from discrete flag values,
// decoding the loosely typed pieces through the same converter the
// engine uses for argument maps.
func buildStep() (flowtest.Step, error) {
	stepArgs := map[string]any{
		"method": strings.ToUpper(reqMethod),
		"url":    reqURL,
	}

	if reqHeaders != "" {
		var headers map[string]any
		if err := json.Unmarshal([]byte(reqHeaders), &headers); err != nil {
			return flowtest.Step{}, fmt.Errorf("invalid headers JSON: %w", err)
		}
		stepArgs["headers"] = headers
	}

	if reqBody != "" {
		// JSON bodies are sent structured; anything else goes as plain text.
		var body any
		if err := json.Unmarshal([]byte(reqBody), &body); err != nil {
			stepArgs["body"] = reqBody
		} else {
			stepArgs["body"] = body
		}
	}

	if reqExtract != "" {
		var extract map[string]any
		if err := json.Unmarshal([]byte(reqExtract), &extract); err != nil {
			return flowtest.Step{}, fmt.Errorf("invalid extract JSON: %w", err)
		}
		stepArgs["extract"] = extract
	}

	var step flowtest.Step
	if err := flowtest.DecodeArgs(stepArgs, &step); err != nil {
		return flowtest.Step{}, err
	}

	step.Expect = &flowtest.ExpectationSpec{Status: reqStatus}

	return step, nil
}
