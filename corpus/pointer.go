package corpus

import (
	"strconv"
	"strings"
)

// Span is a half-open [Start,End) byte range applied to a resolved
// string value. Start <= End <= len(string).
type Span struct {
	Start int `json:"start" yaml:"start"`
	End   int `json:"end" yaml:"end"`
}

// SnapshotPointer addresses a location inside a specific snapshot version:
// the whole document, a JSON path into it, and optionally a character span
// of the string the path resolves to.
type SnapshotPointer struct {
	StoreID string `json:"store_id" yaml:"store_id"`
	Version string `json:"version" yaml:"version"`
	Path    string `json:"path,omitempty" yaml:"path,omitempty"`
	Span    *Span  `json:"span,omitempty" yaml:"span,omitempty"`
}

// pathSegment is one step of a parsed JSON-path: either a property name or
// an integer array index.
type pathSegment struct {
	prop    string
	index   int
	isIndex bool
}

// ParsePath parses the restricted JSON-path grammar:
//
//	('$' ('.')? | '')? (segment ('.' segment | '[' digits ']')*)?
//
// where segment is a non-empty identifier. An empty path or bare "$"
// resolves to the root value (zero segments).
func ParsePath(path string) ([]pathSegment, error) {
	s := strings.TrimSpace(path)
	if s == "$" || s == "" {
		return nil, nil
	}
	if strings.HasPrefix(s, "$.") {
		s = s[2:]
	} else if strings.HasPrefix(s, "$") {
		s = s[1:]
	}
	if s == "" {
		return nil, nil
	}

	var segments []pathSegment
	for len(s) > 0 {
		switch {
		case s[0] == '.':
			s = s[1:]
			continue
		case s[0] == '[':
			end := strings.IndexByte(s, ']')
			if end < 0 {
				return nil, NewError(KindValidationError, "parse_path", nil, "unterminated '[' in path %q", path)
			}
			digits := s[1:end]
			if digits == "" {
				return nil, NewError(KindValidationError, "parse_path", nil, "empty index in path %q", path)
			}
			idx, err := strconv.Atoi(digits)
			if err != nil || idx < 0 {
				return nil, NewError(KindValidationError, "parse_path", nil, "invalid index %q in path %q", digits, path)
			}
			segments = append(segments, pathSegment{index: idx, isIndex: true})
			s = s[end+1:]
		default:
			i := 0
			for i < len(s) && s[i] != '.' && s[i] != '[' {
				i++
			}
			if i == 0 {
				return nil, NewError(KindValidationError, "parse_path", nil, "empty segment in path %q", path)
			}
			segments = append(segments, pathSegment{prop: s[:i]})
			s = s[i:]
		}
	}
	return segments, nil
}

// absent is returned by ResolvePath when a segment walks through a missing
// property; callers decide whether that constitutes NotFound.
type absent struct{}

// Absent is the sentinel value ResolvePath returns for a missing property.
var Absent any = absent{}

// ResolvePath walks value according to the parsed path segments. A missing
// property yields Absent (not an error); traversing through a non-object or
// null is an error. value is expected to be the generic JSON-shaped form
// (map[string]any, []any, or scalars) produced by decoding with
// encoding/json into an interface{}.
func ResolvePath(value any, segments []pathSegment) (any, error) {
	cur := value
	for _, seg := range segments {
		if cur == nil {
			return nil, NewError(KindNotFound, "resolve_path", nil, "path traverses through null")
		}
		if seg.isIndex {
			arr, ok := cur.([]any)
			if !ok {
				return nil, NewError(KindNotFound, "resolve_path", nil, "index segment on non-array value")
			}
			if seg.index < 0 || seg.index >= len(arr) {
				return Absent, nil
			}
			cur = arr[seg.index]
			continue
		}
		obj, ok := cur.(map[string]any)
		if !ok {
			return nil, NewError(KindNotFound, "resolve_path", nil, "property segment on non-object value")
		}
		v, present := obj[seg.prop]
		if !present {
			return Absent, nil
		}
		cur = v
	}
	return cur, nil
}

// ApplySpan slices s to [span.Start, span.End]. Returns ValidationError if
// start < 0, end > len(s), or start > end. For example, ApplySpan("abc",
// {0,4}) is an error, as is {2,1}; {0,0} yields "".
func ApplySpan(s string, span Span) (string, error) {
	if span.Start < 0 || span.End > len(s) || span.Start > span.End {
		return "", NewError(KindValidationError, "apply_span", nil,
			"invalid span {%d,%d} for string of length %d", span.Start, span.End, len(s))
	}
	return s[span.Start:span.End], nil
}
