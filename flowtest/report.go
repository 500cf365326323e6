package flowtest

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

const maxBodyPreview = 500

// RenderJSON renders a FlowResult as indented JSON for machine
// consumption.
func RenderJSON(result *FlowResult) (string, error) {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to render result: %w", err)
	}
	return string(data), nil
}

// RenderText renders a FlowResult as human-oriented text: one line per
// step with mismatch detail below it. verbose adds response bodies and
// the extracted variables.
func RenderText(result *FlowResult, verbose bool) string {
	var b strings.Builder

	fmt.Fprintf(&b, "flow %q: %s (%d steps, %dms)\n",
		result.Flow, strings.ToUpper(string(result.Status)), len(result.Steps), result.DurationMS)

	for i, sr := range result.Steps {
		fmt.Fprintf(&b, "  [%d] %s  %s %s", i+1, verdictMark(sr.Verdict), sr.Request.Method, sr.Request.URL)
		if sr.Verdict == VerdictSkipped {
			fmt.Fprintf(&b, "  (skipped)")
		} else if sr.Failure != nil {
			fmt.Fprintf(&b, "  (%dms)", sr.DurationMS)
		} else {
			fmt.Fprintf(&b, "  (%d, %dms)", sr.StatusCode, sr.DurationMS)
		}
		b.WriteString("\n")

		if sr.Failure != nil {
			fmt.Fprintf(&b, "        error: %s\n", sr.Failure.Message)
		}
		for _, m := range sr.Mismatches {
			fmt.Fprintf(&b, "        - %s\n", m)
		}
		for _, n := range sr.Notes {
			fmt.Fprintf(&b, "        note: %s\n", n)
		}
		if verbose && sr.Body != nil {
			fmt.Fprintf(&b, "        body: %s\n", previewBody(sr.Body))
		}
	}

	if result.Status == StatusAborted {
		if fe := result.FirstFailure(); fe != nil {
			fmt.Fprintf(&b, "run aborted: %s\n", fe.Error())
		} else {
			b.WriteString("run aborted: canceled\n")
		}
	}

	if verbose {
		extracted := result.Extracted()
		if len(extracted) > 0 {
			b.WriteString("extracted variables:\n")
			names := make([]string, 0, len(extracted))
			for name := range extracted {
				names = append(names, name)
			}
			sort.Strings(names)
			for _, name := range names {
				fmt.Fprintf(&b, "  %s: %v\n", name, extracted[name])
			}
		}
	}

	return b.String()
}

func verdictMark(v Verdict) string {
	switch v {
	case VerdictPassed:
		return "PASS"
	case VerdictFailed:
		return "FAIL"
	case VerdictSkipped:
		return "SKIP"
	default:
		return string(v)
	}
}

func previewBody(body any) string {
	var s string
	if raw, ok := body.(string); ok {
		s = raw
	} else {
		data, err := json.Marshal(body)
		if err != nil {
			s = fmt.Sprintf("%v", body)
		} else {
			s = string(data)
		}
	}
	if len(s) > maxBodyPreview {
		return s[:maxBodyPreview] + "..."
	}
	return s
}
