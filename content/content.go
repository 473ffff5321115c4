// Package content implements access to decoded CMS content records.
//
// A record is the value produced by decoding a JSON object into any:
// objects are map[string]any, arrays are []any, and leaves are strings,
// float64, bool or nil. Fields inside a record are addressed by a Path,
// an ordered list of segments where array items are addressed by their
// zero-based index written as a decimal string:
//
//	["blocks", "0", "title"]  ->  record["blocks"][0]["title"]
package content

import (
	"strconv"
	"strings"
)

// Path addresses a value inside a record.
type Path []string

// Child returns a new path with seg appended. The receiver is never
// modified, so sibling paths never share a backing array.
func (p Path) Child(seg ...string) Path {
	out := make(Path, 0, len(p)+len(seg))
	out = append(out, p...)
	return append(out, seg...)
}

// String returns the dot-joined path (e.g. "blocks.0.title").
func (p Path) String() string {
	return strings.Join(p, ".")
}

// Equal reports whether p and other have the same segments.
func (p Path) Equal(other Path) bool {
	if len(p) != len(other) {
		return false
	}
	for i := range p {
		if p[i] != other[i] {
			return false
		}
	}
	return true
}

// Field is a translatable string leaf found in a record.
//
// Path addresses the value in the translation payload and OriginalPath
// addresses it in the source record. Both are equal when produced by
// extraction.
type Field struct {
	Path         Path   `json:"path"`
	Value        string `json:"value"`
	OriginalPath Path   `json:"originalPath"`
}

// Get resolves p inside root. The boolean is false when any segment is
// missing along the way. A present JSON null resolves to (nil, true).
func Get(root any, p Path) (any, bool) {
	cur := root
	for _, seg := range p {
		switch node := cur.(type) {
		case map[string]any:
			v, ok := node[seg]
			if !ok {
				return nil, false
			}
			cur = v
		case []any:
			i, ok := index(seg, len(node))
			if !ok {
				return nil, false
			}
			cur = node[i]
		default:
			return nil, false
		}
	}
	return cur, true
}

// Set writes v at p inside root, creating intermediate objects where a
// segment is missing or holds a scalar. Array items are only addressed,
// never appended: an out-of-range index leaves root untouched and Set
// returns false.
func Set(root map[string]any, p Path, v any) bool {
	if len(p) == 0 {
		return false
	}
	var cur any = root
	for i, seg := range p {
		last := i == len(p)-1
		switch node := cur.(type) {
		case map[string]any:
			if last {
				node[seg] = v
				return true
			}
			next := node[seg]
			if !isContainer(next) {
				next = map[string]any{}
				node[seg] = next
			}
			cur = next
		case []any:
			idx, ok := index(seg, len(node))
			if !ok {
				return false
			}
			if last {
				node[idx] = v
				return true
			}
			if !isContainer(node[idx]) {
				node[idx] = map[string]any{}
			}
			cur = node[idx]
		default:
			return false
		}
	}
	return false
}

// Clone returns a deep copy of v. Maps and slices are copied recursively;
// leaves are immutable values and are shared.
func Clone(v any) any {
	switch node := v.(type) {
	case map[string]any:
		return CloneMap(node)
	case []any:
		out := make([]any, len(node))
		for i, item := range node {
			out[i] = Clone(item)
		}
		return out
	default:
		return v
	}
}

// CloneMap is Clone for the common case of a top-level record.
func CloneMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, item := range m {
		out[k] = Clone(item)
	}
	return out
}

func isContainer(v any) bool {
	switch v.(type) {
	case map[string]any, []any:
		return true
	}
	return false
}

func index(seg string, n int) (int, bool) {
	i, err := strconv.Atoi(seg)
	if err != nil || i < 0 || i >= n {
		return 0, false
	}
	return i, true
}
