package cmd

import (
	"fmt"
	"time"

	"github.com/admingistai/vibe-qa/flowtest"
	"github.com/spf13/cobra"
)

var flagFile string

var runCmd = &cobra.Command{
	Use:   "run [flow-file] [base-url]",
	Short: "Execute a flow document against a target API",
	Long: `Execute an ordered sequence of HTTP steps from a YAML/JSON flow
document. Positional arguments are accepted for compatibility with the
--file/--base-url flags:

  vibe-qa run flow.yaml http://localhost:8000
  vibe-qa run --file flow.yaml --base-url http://localhost:8000`,
	Args: cobra.MaximumNArgs(2),
	RunE: runFlow,
}

func init() {
	runCmd.Flags().StringVarP(&flagFile, "file", "f", "", "path to YAML/JSON flow document")
	rootCmd.AddCommand(runCmd)
}

func runFlow(cmd *cobra.Command, args []string) error {
	file := flagFile
	if file == "" && len(args) > 0 {
		file = args[0]
	}
	if file == "" {
		return fmt.Errorf("flow document required: pass it as the first argument or with --file")
	}

	baseURL := flagBaseURL
	if baseURL == "" && len(args) > 1 {
		baseURL = args[1]
	}

	flow, err := flowtest.LoadFlow(file)
	if err != nil {
		return err
	}

	cfg := flowtest.Config{
		BaseURL: baseURL,
		Timeout: time.Duration(flagTimeout) * time.Second,
	}
	if err := flowtest.PrepareConfig(&cfg); err != nil {
		return err
	}

	runner := flowtest.NewRunner(cfg, newLogger())
	result := runner.RunFlow(cmd.Context(), flow)

	return reportResult(result)
}
