package validator

import (
	"regexp"
	"strings"

	"github.com/n8n-cli/wf/internal/jsonpath"
	"github.com/n8n-cli/wf/internal/workflow"
)

// deniedPythonImports are modules the Code node's Python runtime cannot
// safely sandbox (spec §4.2 "node-specific semantics": Python import
// denylist for Code nodes).
var deniedPythonImports = map[string]bool{
	"os":       true,
	"sys":      true,
	"subprocess": true,
	"socket":   true,
	"shutil":   true,
	"importlib": true,
	"ctypes":   true,
	"multiprocessing": true,
}

var pythonImportRe = regexp.MustCompile(`(?m)^\s*(?:import\s+([a-zA-Z0-9_.]+)|from\s+([a-zA-Z0-9_.]+)\s+import)`)

// jsDisallowedPatterns flags dynamic-code-execution constructs in the Code
// node's JavaScript runtime (spec §4.2 "node-specific semantics").
var jsDisallowedPatterns = []*regexp.Regexp{
	regexp.MustCompile(`\beval\s*\(`),
	regexp.MustCompile(`\bnew\s+Function\s*\(`),
	regexp.MustCompile(`\brequire\s*\(\s*['"]child_process['"]\s*\)`),
	regexp.MustCompile(`\bprocess\s*\.\s*exit\s*\(`),
}

var sqlInterpolationRe = regexp.MustCompile("(?i)(SELECT|INSERT|UPDATE|DELETE)[^;]*(\\$\\{|\"\\s*\\+|'\\s*\\+|\\+\\s*\")")

const (
	nodeTypeCode       = "n8n-nodes-base.code"
	nodeTypeFunction   = "n8n-nodes-base.function"
	nodeTypePostgres   = "n8n-nodes-base.postgres"
	nodeTypeMySQL      = "n8n-nodes-base.mySql"
)

// checkNodeSpecific runs per-node-type semantic checks: Code-node language
// denylists, mixed-indentation detection, and SQL-parameter injection
// patterns in query builder nodes (spec §4.2).
func checkNodeSpecific(wf *workflow.Workflow, a *accumulator) {
	for _, n := range wf.Nodes {
		switch n.Type {
		case nodeTypeCode:
			checkCodeNode(n, a)
		case nodeTypeFunction:
			if src, ok := stringParam(n, "functionCode"); ok {
				checkJSPatterns(n, "parameters.functionCode", src, a)
				checkMixedIndentation(n, "parameters.functionCode", src, a)
			}
		case nodeTypePostgres, nodeTypeMySQL:
			checkSQLNode(n, a)
		}
	}
}

// paramAt resolves a dotted/indexed field path (e.g. "options.streamResponse")
// against a node's Parameters tree, since real n8n node JSON nests most
// settings under sub-objects rather than storing them as flat keys.
func paramAt(n *workflow.Node, key string) (any, bool) {
	path, err := jsonpath.Parse(key)
	if err != nil {
		return nil, false
	}
	return jsonpath.Get(n.Parameters, path)
}

func stringParam(n *workflow.Node, key string) (string, bool) {
	v, ok := paramAt(n, key)
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

func checkCodeNode(n *workflow.Node, a *accumulator) {
	language, _ := stringParam(n, "language")
	field := "jsCode"
	if language == "python" || language == "pythonNative" {
		field = "pythonCode"
	}
	src, ok := stringParam(n, field)
	if !ok {
		return
	}
	path := "parameters." + field

	if language == "python" || language == "pythonNative" {
		checkPythonImports(n, path, src, a)
	} else {
		checkJSPatterns(n, path, src, a)
	}
	checkMixedIndentation(n, path, src, a)
}

func checkPythonImports(n *workflow.Node, path, src string, a *accumulator) {
	for _, m := range pythonImportRe.FindAllStringSubmatch(src, -1) {
		mod := m[1]
		if mod == "" {
			mod = m[2]
		}
		root := strings.SplitN(mod, ".", 2)[0]
		if deniedPythonImports[root] {
			a.add(Diagnostic{
				Code:     CodeDisallowedPythonImport,
				Severity: SeverityError,
				Message:  "disallowed Python import " + quote(root) + " in node " + quote(n.Name),
				Location: &Location{NodeName: n.Name, NodeID: n.ID, Path: path, ValueKind: ValueKindString},
				Context:  map[string]any{"module": root},
			})
		}
	}
}

func checkJSPatterns(n *workflow.Node, path, src string, a *accumulator) {
	for _, re := range jsDisallowedPatterns {
		if re.MatchString(src) {
			a.add(Diagnostic{
				Code:     CodeDisallowedJSPattern,
				Severity: SeverityError,
				Message:  "disallowed JavaScript pattern in node " + quote(n.Name),
				Location: &Location{NodeName: n.Name, NodeID: n.ID, Path: path, ValueKind: ValueKindString},
				Context:  map[string]any{"pattern": re.String()},
			})
		}
	}
}

func checkMixedIndentation(n *workflow.Node, path, src string, a *accumulator) {
	sawTabs, sawSpaces := false, false
	for _, line := range strings.Split(src, "\n") {
		if len(line) == 0 {
			continue
		}
		if line[0] == '\t' {
			sawTabs = true
		} else if line[0] == ' ' {
			sawSpaces = true
		}
	}
	if sawTabs && sawSpaces {
		a.add(Diagnostic{
			Code:     CodeMixedIndentation,
			Severity: SeverityWarning,
			Message:  "mixed tabs and spaces in node " + quote(n.Name),
			Location: &Location{NodeName: n.Name, NodeID: n.ID, Path: path, ValueKind: ValueKindString},
		})
	}
}

func checkSQLNode(n *workflow.Node, a *accumulator) {
	for _, key := range []string{"query", "updateKey", "additionalParameters"} {
		src, ok := stringParam(n, key)
		if !ok {
			continue
		}
		if sqlInterpolationRe.MatchString(src) && !hasExpressionPrefix(src) {
			a.add(Diagnostic{
				Code:     CodeSQLInjectionRisk,
				Severity: SeverityWarning,
				Message:  "node " + quote(n.Name) + " builds SQL with string concatenation instead of query parameters",
				Location: &Location{NodeName: n.Name, NodeID: n.ID, Path: "parameters." + key, ValueKind: ValueKindString},
			})
		}
	}
}
