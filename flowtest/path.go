package flowtest

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Jeffail/gabs/v2"
)

// PathSeg is one navigation step of a compiled path expression:
// either an object field access or an array index.
type PathSeg struct {
	Key   string
	Index int
	IsIdx bool
}

func (s PathSeg) String() string {
	if s.IsIdx {
		return fmt.Sprintf("[%d]", s.Index)
	}
	return s.Key
}

// ParsePath compiles a dot/bracket path expression into navigation
// segments. Both "items.0.id" and "items[0].id" address the first
// element of items; bare numeric segments are treated as indices.
func ParsePath(expr string) ([]PathSeg, error) {
	if strings.TrimSpace(expr) == "" {
		return nil, fmt.Errorf("empty path expression")
	}

	var segs []PathSeg
	for _, part := range strings.Split(expr, ".") {
		if part == "" {
			return nil, fmt.Errorf("invalid path expression %q: empty segment", expr)
		}

		// Split off trailing [n] index suffixes, e.g. "items[0][1]".
		key := part
		var suffixes []string
		for strings.HasSuffix(key, "]") {
			open := strings.LastIndex(key, "[")
			if open < 0 {
				return nil, fmt.Errorf("invalid path expression %q: unmatched ']' in %q", expr, part)
			}
			suffixes = append([]string{key[open+1 : len(key)-1]}, suffixes...)
			key = key[:open]
		}

		if strings.ContainsAny(key, "[]") {
			return nil, fmt.Errorf("invalid path expression %q: malformed index in %q", expr, part)
		}

		if key != "" {
			if idx, err := strconv.Atoi(key); err == nil {
				segs = append(segs, PathSeg{Index: idx, IsIdx: true})
			} else {
				segs = append(segs, PathSeg{Key: key})
			}
		} else if len(suffixes) == 0 {
			return nil, fmt.Errorf("invalid path expression %q: empty segment", expr)
		}

		for _, s := range suffixes {
			idx, err := strconv.Atoi(s)
			if err != nil {
				return nil, fmt.Errorf("invalid path expression %q: index %q is not a number", expr, s)
			}
			segs = append(segs, PathSeg{Index: idx, IsIdx: true})
		}
	}
	return segs, nil
}

// Navigate applies a compiled path against a parsed body and returns
// the addressed value. Failure is a typed "path not found" error, not
// a panic, so extraction can degrade to a recorded note.
func Navigate(body any, segs []PathSeg) (any, error) {
	c := gabs.Wrap(body)
	for i, seg := range segs {
		var next *gabs.Container
		if seg.IsIdx {
			if seg.Index < 0 {
				return nil, &PathNotFoundError{Segs: segs, At: i}
			}
			next = c.Index(seg.Index)
		} else {
			next = c.Search(seg.Key)
		}
		if next == nil {
			return nil, &PathNotFoundError{Segs: segs, At: i}
		}
		c = next
	}
	return c.Data(), nil
}

// PathNotFoundError reports the segment at which navigation failed.
type PathNotFoundError struct {
	Segs []PathSeg
	At   int
}

func (e *PathNotFoundError) Error() string {
	parts := make([]string, len(e.Segs))
	for i, s := range e.Segs {
		parts[i] = s.String()
	}
	return fmt.Sprintf("path not found at %q (full path: %s)", e.Segs[e.At].String(), strings.Join(parts, "."))
}
