package flowtest

import (
	"fmt"
	"sort"
	"strings"
)

// MatchResponse compares an actual response against an expectation and
// returns zero or more mismatch descriptions. The body pattern must
// already be resolved against the variable store. An empty result means
// the step passed its assertions.
//
// Body matching is partial: fields the pattern does not mention are
// never flagged, because real APIs return more fields than a test cares
// about.
func MatchResponse(expect *ExpectationSpec, resp *Response) []string {
	if expect == nil {
		return nil
	}

	var mismatches []string

	if expect.Status != 0 && resp.StatusCode != expect.Status {
		mismatches = append(mismatches, fmt.Sprintf("expected status %d, got %d", expect.Status, resp.StatusCode))
	}

	if expect.Body != nil {
		mismatches = append(mismatches, matchBody("", expect.Body, resp.Body)...)
	}

	if len(expect.Headers) > 0 {
		names := make([]string, 0, len(expect.Headers))
		for name := range expect.Headers {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			want := expect.Headers[name]
			got := resp.Headers.Get(name)
			if got == "" {
				mismatches = append(mismatches, fmt.Sprintf("missing expected header %q", name))
			} else if !strings.Contains(got, want) {
				mismatches = append(mismatches, fmt.Sprintf("expected header %s=%q, got %q", name, want, got))
			}
		}
	}

	if expect.MaxResponseTime > 0 {
		elapsed := resp.Elapsed.Seconds()
		if elapsed > expect.MaxResponseTime {
			mismatches = append(mismatches, fmt.Sprintf("response time %.2fs exceeds limit %.2fs", elapsed, expect.MaxResponseTime))
		}
	}

	return mismatches
}

// matchBody recursively compares pattern fields against the actual body.
// path is the dotted location used in mismatch descriptions, empty at
// the root.
func matchBody(path string, expected, actual any) []string {
	switch want := expected.(type) {
	case map[string]any:
		got, ok := actual.(map[string]any)
		if !ok {
			return []string{fmt.Sprintf("%s: expected object, got %s", displayPath(path), typeName(actual))}
		}
		var mismatches []string
		keys := make([]string, 0, len(want))
		for k := range want {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			child := joinPath(path, k)
			actualVal, present := got[k]
			if !present {
				mismatches = append(mismatches, fmt.Sprintf("missing expected field %q", child))
				continue
			}
			mismatches = append(mismatches, matchBody(child, want[k], actualVal)...)
		}
		return mismatches

	case []any:
		got, ok := actual.([]any)
		if !ok {
			return []string{fmt.Sprintf("%s: expected array, got %s", displayPath(path), typeName(actual))}
		}
		var mismatches []string
		for i, wantItem := range want {
			child := fmt.Sprintf("%s[%d]", displayPath(path), i)
			if i >= len(got) {
				mismatches = append(mismatches, fmt.Sprintf("missing expected element %s (array has %d elements)", child, len(got)))
				continue
			}
			mismatches = append(mismatches, matchBody(child, wantItem, got[i])...)
		}
		return mismatches

	default:
		if !leafEqual(expected, actual) {
			return []string{fmt.Sprintf("expected %s=%v, got %v", displayPath(path), renderLeaf(expected), renderLeaf(actual))}
		}
		return nil
	}
}

// leafEqual compares scalar leaves with numeric awareness: YAML patterns
// carry ints while JSON bodies decode to float64, and both must compare
// as numbers.
func leafEqual(expected, actual any) bool {
	if expected == nil || actual == nil {
		return expected == nil && actual == nil
	}
	if ew, ok := toFloat(expected); ok {
		if aw, aok := toFloat(actual); aok {
			return ew == aw
		}
		return false
	}
	return expected == actual
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case float64:
		return n, true
	case float32:
		return float64(n), true
	}
	return 0, false
}

func typeName(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case map[string]any:
		return "object"
	case []any:
		return "array"
	case string:
		return "string"
	case bool:
		return "boolean"
	default:
		if _, ok := toFloat(v); ok {
			return "number"
		}
		return fmt.Sprintf("%T", v)
	}
}

func renderLeaf(v any) string {
	if s, ok := v.(string); ok {
		return fmt.Sprintf("%q", s)
	}
	return fmt.Sprintf("%v", v)
}

func joinPath(path, key string) string {
	if path == "" {
		return key
	}
	return path + "." + key
}

func displayPath(path string) string {
	if path == "" {
		return "body"
	}
	return path
}
