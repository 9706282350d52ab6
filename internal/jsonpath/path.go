// Package jsonpath implements the explicit path type spec §9's design notes
// call for ("Prototype/dynamic object mutation"): a sequence of typed Key or
// Index segments with a dedicated get/set/delete walker over
// map[string]any / []any trees, used in place of reflection-based dynamic
// mutation. It deliberately does not use encoding/json's reflection path or
// gjson/sjson (those operate on serialized JSON text, not the in-memory tree
// the fix applier and diff engine mutate in place).
package jsonpath

import (
	"fmt"
	"strconv"
	"strings"
)

// Segment is one step of a Path: either a map Key or a slice Index.
type Segment struct {
	Key     string
	Index   int
	IsIndex bool
}

// Path is an ordered sequence of segments, e.g. parsed from
// "conditions.options[0].value" as [Key("conditions"), Key("options"),
// Index(0), Key("value")].
type Path []Segment

// Parse turns a dotted/indexed field-path string into a Path. Supports
// "a.b[3].c" syntax (spec §3 Fix Operation "dotted/indexed field path").
func Parse(s string) (Path, error) {
	var path Path
	for _, part := range strings.Split(s, ".") {
		if part == "" {
			return nil, fmt.Errorf("jsonpath: empty segment in %q", s)
		}
		key := part
		for {
			open := strings.IndexByte(key, '[')
			if open < 0 {
				if key != "" {
					path = append(path, Segment{Key: key})
				}
				break
			}
			if open > 0 {
				path = append(path, Segment{Key: key[:open]})
			}
			close := strings.IndexByte(key[open:], ']')
			if close < 0 {
				return nil, fmt.Errorf("jsonpath: unbalanced bracket in %q", s)
			}
			close += open
			idxStr := key[open+1 : close]
			idx, err := strconv.Atoi(idxStr)
			if err != nil {
				return nil, fmt.Errorf("jsonpath: invalid index %q in %q", idxStr, s)
			}
			path = append(path, Segment{Index: idx, IsIndex: true})
			key = key[close+1:]
			if key == "" {
				break
			}
		}
	}
	if len(path) == 0 {
		return nil, fmt.Errorf("jsonpath: empty path")
	}
	return path, nil
}

func (p Path) String() string {
	var b strings.Builder
	for i, seg := range p {
		if seg.IsIndex {
			fmt.Fprintf(&b, "[%d]", seg.Index)
			continue
		}
		if i > 0 {
			b.WriteByte('.')
		}
		b.WriteString(seg.Key)
	}
	return b.String()
}

// Get walks root along the path and returns the value found there, or
// (nil, false) if any intermediate segment is missing or of the wrong shape.
func Get(root any, path Path) (any, bool) {
	cur := root
	for _, seg := range path {
		switch {
		case seg.IsIndex:
			arr, ok := cur.([]any)
			if !ok || seg.Index < 0 || seg.Index >= len(arr) {
				return nil, false
			}
			cur = arr[seg.Index]
		default:
			m, ok := cur.(map[string]any)
			if !ok {
				return nil, false
			}
			v, present := m[seg.Key]
			if !present {
				return nil, false
			}
			cur = v
		}
	}
	return cur, true
}

// Set walks root along the path, creating intermediate map containers on
// demand (spec §4.3 "creates intermediate containers on demand"), and
// assigns value at the final segment. root must be a non-nil
// map[string]any or the call panics — callers always start from a node's
// Parameters map.
func Set(root map[string]any, path Path, value any) error {
	if len(path) == 0 {
		return fmt.Errorf("jsonpath: empty path")
	}
	cur := any(root)
	for i, seg := range path {
		last := i == len(path)-1
		switch {
		case seg.IsIndex:
			arr, ok := cur.([]any)
			if !ok {
				return fmt.Errorf("jsonpath: segment %d of %v is not an array", i, path)
			}
			for seg.Index >= len(arr) {
				arr = append(arr, nil)
			}
			if last {
				arr[seg.Index] = value
				return writeBack(root, path[:i], arr)
			}
			next := arr[seg.Index]
			if next == nil {
				next = map[string]any{}
				arr[seg.Index] = next
			}
			if err := writeBack(root, path[:i], arr); err != nil {
				return err
			}
			cur = next
		default:
			m, ok := cur.(map[string]any)
			if !ok {
				return fmt.Errorf("jsonpath: segment %d of %v is not an object", i, path)
			}
			if last {
				m[seg.Key] = value
				return nil
			}
			next, present := m[seg.Key]
			if !present || next == nil {
				if path[i+1].IsIndex {
					next = []any{}
				} else {
					next = map[string]any{}
				}
				m[seg.Key] = next
			}
			cur = next
		}
	}
	return nil
}

// writeBack re-assigns a (possibly newly-grown) slice value back into its
// parent container, since Go slices may reallocate on append.
func writeBack(root map[string]any, parentPath Path, arr []any) error {
	if len(parentPath) == 0 {
		return fmt.Errorf("jsonpath: cannot grow the root array in place")
	}
	parent, ok := Get(root, parentPath)
	_ = parent
	if !ok {
		// parent missing entirely: set it directly
	}
	return Set(root, append(Path{}, parentPath...), arr)
}

// Delete removes the value at path, returning true if something was removed.
func Delete(root map[string]any, path Path) bool {
	if len(path) == 0 {
		return false
	}
	parentPath := path[:len(path)-1]
	last := path[len(path)-1]
	var container any = root
	if len(parentPath) > 0 {
		v, ok := Get(root, parentPath)
		if !ok {
			return false
		}
		container = v
	}
	switch {
	case last.IsIndex:
		arr, ok := container.([]any)
		if !ok || last.Index < 0 || last.Index >= len(arr) {
			return false
		}
		arr = append(arr[:last.Index], arr[last.Index+1:]...)
		_ = writeBack(root, parentPath, arr)
		return true
	default:
		m, ok := container.(map[string]any)
		if !ok {
			return false
		}
		if _, present := m[last.Key]; !present {
			return false
		}
		delete(m, last.Key)
		return true
	}
}
