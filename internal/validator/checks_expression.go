package validator

import (
	"reflect"
	"strings"

	"github.com/n8n-cli/wf/internal/workflow"
)

// maxExpressionDepth bounds parameter-tree recursion (spec §4.2 "Expression
// recursion": hard depth cap of 100; exceeding it yields a warning, never a
// crash").
const maxExpressionDepth = 100

// checkExpressions walks every node's parameter tree looking for
// "{{ ... }}" templates that are missing the leading "=" n8n requires to
// evaluate them, unbalanced braces, and empty expressions (spec §4.2
// "Expression"). The rule is universal: it applies to every parameter
// string regardless of node type, with confidence 1.0.
func checkExpressions(wf *workflow.Workflow, a *accumulator) {
	for _, n := range wf.Nodes {
		visited := map[uintptr]struct{}{}
		walkExpressions(n.Parameters, "parameters", n, 0, visited, a)
	}
}

func walkExpressions(v any, path string, n *workflow.Node, depth int, visited map[uintptr]struct{}, a *accumulator) {
	if depth > maxExpressionDepth {
		a.add(Diagnostic{
			Code:     CodeExpressionDepthExceeded,
			Severity: SeverityWarning,
			Message:  "parameter tree exceeds maximum depth",
			Location: &Location{NodeName: n.Name, NodeID: n.ID, Path: path},
		})
		return
	}

	switch t := v.(type) {
	case map[string]any:
		if id, ok := identity(t); ok {
			if _, seen := visited[id]; seen {
				return
			}
			visited[id] = struct{}{}
		}
		for k, vv := range t {
			walkExpressions(vv, path+"."+k, n, depth+1, visited, a)
		}
	case []any:
		if id, ok := identity(t); ok {
			if _, seen := visited[id]; seen {
				return
			}
			visited[id] = struct{}{}
		}
		for i, vv := range t {
			walkExpressions(vv, path+indexSuffix(i), n, depth+1, visited, a)
		}
	case string:
		checkExpressionString(t, path, n, a)
	}
}

func indexSuffix(i int) string {
	return "[" + itoa(i) + "]"
}

func itoa(i int) string {
	if i == 0 {
		return "0"
	}
	neg := i < 0
	if neg {
		i = -i
	}
	var buf [20]byte
	pos := len(buf)
	for i > 0 {
		pos--
		buf[pos] = byte('0' + i%10)
		i /= 10
	}
	if neg {
		pos--
		buf[pos] = '-'
	}
	return string(buf[pos:])
}

func identity(v any) (uintptr, bool) {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Map, reflect.Slice:
		if rv.Len() == 0 && rv.Kind() == reflect.Slice {
			return 0, false
		}
		return rv.Pointer(), true
	default:
		return 0, false
	}
}

func checkExpressionString(s, path string, n *workflow.Node, a *accumulator) {
	open := strings.Count(s, "{{")
	closeCount := strings.Count(s, "}}")
	if open == 0 && closeCount == 0 {
		return
	}
	if open != closeCount {
		a.add(Diagnostic{
			Code:     CodeExpressionUnbalanced,
			Severity: SeverityError,
			Message:  "unbalanced expression braces",
			Location: &Location{NodeName: n.Name, NodeID: n.ID, Path: path, ValueKind: ValueKindString},
		})
		return
	}
	if strings.Contains(s, "{{ }}") || strings.Contains(s, "{{}}") {
		a.add(Diagnostic{
			Code:     CodeExpressionEmpty,
			Severity: SeverityWarning,
			Message:  "empty expression",
			Location: &Location{NodeName: n.Name, NodeID: n.ID, Path: path, ValueKind: ValueKindString},
		})
	}
	if !hasExpressionPrefix(s) {
		a.add(Diagnostic{
			Code:     CodeExpressionMissingPrefix,
			Severity: SeverityError,
			Message:  "expression is missing the \"=\" prefix required to evaluate it",
			Location: &Location{NodeName: n.Name, NodeID: n.ID, Path: path, ValueKind: ValueKindString},
			Context:  map[string]any{"confidence": 1.0},
		})
	}
}
