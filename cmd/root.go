package cmd

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/admingistai/vibe-qa/flowtest"
	"github.com/spf13/cobra"
)

var (
	flagBaseURL    string
	flagTimeout    int
	flagRecord     string
	flagJSONOutput bool
	flagVerbose    bool
)

// Sentinel results used to map run outcomes onto the exit taxonomy:
// 0 = all steps passed, 1 = assertion failure, 2 = operational error
// (unreadable flow document or a transport error aborted the run).
var (
	errFlowFailed  = errors.New("flow failed")
	errFlowAborted = errors.New("flow aborted")
)

var rootCmd = &cobra.Command{
	Use:   "vibe-qa",
	Short: "vibe-qa - declarative HTTP integration flow tester",
	Long: `vibe-qa executes multi-step HTTP integration flows defined in YAML/JSON
documents, resolving {{variable}} templates between steps, asserting on
status codes and partial response bodies, and extracting response fields
for later steps.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command and returns the process exit code.
func Execute() int {
	err := rootCmd.Execute()
	switch {
	case err == nil:
		return 0
	case errors.Is(err, errFlowFailed):
		return 1
	case errors.Is(err, errFlowAborted):
		return 2
	default:
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 2
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&flagBaseURL, "base-url", "b", "", "base URL for API requests")
	rootCmd.PersistentFlags().IntVar(&flagTimeout, "timeout", 30, "request timeout in seconds")
	rootCmd.PersistentFlags().StringVar(&flagRecord, "record", "logs/qa_results.ndjson", "path of the NDJSON result log (empty disables)")
	rootCmd.PersistentFlags().BoolVar(&flagJSONOutput, "json-output", false, "output results as JSON")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "verbose output")
}

func newLogger() *slog.Logger {
	level := slog.LevelWarn
	if flagVerbose {
		level = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// reportResult records, renders, and maps the run outcome to the exit
// taxonomy.
func reportResult(result *flowtest.FlowResult) error {
	if err := flowtest.NewRecorder(flagRecord).Record(result); err != nil {
		fmt.Fprintf(os.Stderr, "warning: %v\n", err)
	}

	if flagJSONOutput {
		out, err := flowtest.RenderJSON(result)
		if err != nil {
			return err
		}
		fmt.Println(out)
	} else {
		fmt.Print(flowtest.RenderText(result, flagVerbose))
	}

	switch result.Status {
	case flowtest.StatusPassed:
		return nil
	case flowtest.StatusAborted:
		return errFlowAborted
	default:
		return errFlowFailed
	}
}
