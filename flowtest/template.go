package flowtest

import (
	"fmt"
	"regexp"
)

// placeholderPattern matches {{name}} tokens inside templated strings.
var placeholderPattern = regexp.MustCompile(`\{\{\s*([A-Za-z_][A-Za-z0-9_]*)\s*\}\}`)

// ResolveString substitutes every {{name}} token in s with the
// stringified value bound to name in the store. Unresolved placeholders
// are left verbatim so the mismatch surfaces later as an assertion
// failure instead of a hard error. Substitution is single-pass: a
// placeholder resolving to another placeholder is not re-resolved.
func ResolveString(s string, store *ValueStore) string {
	return placeholderPattern.ReplaceAllStringFunc(s, func(token string) string {
		name := placeholderPattern.FindStringSubmatch(token)[1]
		v, ok := store.Get(name)
		if !ok {
			return token
		}
		return Stringify(v)
	})
}

// ResolveValue walks a value of arbitrary shape and substitutes
// placeholders in every string leaf. Non-string leaves pass through
// unchanged. A string consisting of exactly one placeholder resolves
// to the bound value itself rather than its string form, so extracted
// numbers and objects keep their type through request bodies and
// expectation patterns.
func ResolveValue(v any, store *ValueStore) any {
	switch val := v.(type) {
	case string:
		if name, ok := wholePlaceholder(val); ok {
			if bound, found := store.Get(name); found {
				return bound
			}
			return val
		}
		return ResolveString(val, store)
	case map[string]any:
		resolved := make(map[string]any, len(val))
		for k, item := range val {
			resolved[k] = ResolveValue(item, store)
		}
		return resolved
	case map[string]string:
		resolved := make(map[string]string, len(val))
		for k, item := range val {
			resolved[k] = ResolveString(item, store)
		}
		return resolved
	case []any:
		resolved := make([]any, len(val))
		for i, item := range val {
			resolved[i] = ResolveValue(item, store)
		}
		return resolved
	default:
		return v
	}
}

// wholePlaceholder reports whether s is a single {{name}} token and
// nothing else, returning the referenced name.
func wholePlaceholder(s string) (string, bool) {
	m := placeholderPattern.FindStringSubmatch(s)
	if m == nil || m[0] != s {
		return "", false
	}
	return m[1], true
}

// Stringify renders a variable value for URL, header, and embedded
// string substitution.
func Stringify(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case int:
		return fmt.Sprintf("%d", val)
	case int64:
		return fmt.Sprintf("%d", val)
	case float64:
		if val == float64(int64(val)) {
			return fmt.Sprintf("%d", int64(val))
		}
		return fmt.Sprintf("%g", val)
	case bool:
		return fmt.Sprintf("%t", val)
	case nil:
		return ""
	default:
		return fmt.Sprintf("%v", val)
	}
}
