package flowtest

import (
	"fmt"
	"sort"
)

// ExtractValues navigates the parsed response body for every declared
// variable and binds successful lookups into the store. Failures are
// returned as notes rather than errors: dependent variables simply stay
// unbound and surface later as unresolved placeholders, which gives a
// clearer causal chain than aborting the flow here.
func ExtractValues(spec map[string]string, body any, store *ValueStore) (map[string]any, []string) {
	if len(spec) == 0 {
		return nil, nil
	}

	extracted := make(map[string]any)
	var notes []string

	// Deterministic order keeps notes stable across runs.
	names := make([]string, 0, len(spec))
	for name := range spec {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		expr := spec[name]
		segs, err := ParsePath(expr)
		if err != nil {
			notes = append(notes, fmt.Sprintf("extract %s: %v", name, err))
			continue
		}
		value, err := Navigate(body, segs)
		if err != nil {
			notes = append(notes, fmt.Sprintf("extract %s: %v", name, err))
			continue
		}
		store.Set(name, value)
		extracted[name] = value
	}

	if len(extracted) == 0 {
		extracted = nil
	}
	return extracted, notes
}
