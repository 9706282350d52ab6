package validator

import (
	"github.com/n8n-cli/wf/internal/catalog"
	"github.com/n8n-cli/wf/internal/workflow"
)

// AI connection classes used by the LangChain agent/tool/memory nodes (spec
// §4.2 "AI agent topology").
const (
	classMain            = "main"
	classAILanguageModel = "ai_languageModel"
	classAITool          = "ai_tool"
	classAIMemory        = "ai_memory"
	classAIOutputParser  = "ai_outputParser"
)

const nodeTypeAIAgent = "@n8n/n8n-nodes-langchain.agent"

// checkAITopology inspects AI agent subgraphs for missing or malformed
// language-model, memory, tool, and output-parser wiring (spec §4.2 "AI
// agent topology", ModeFull only).
func checkAITopology(wf *workflow.Workflow, store *catalog.Store, a *accumulator) {
	incoming := incomingIndex(wf)

	for _, n := range wf.Nodes {
		if n.Type != nodeTypeAIAgent {
			continue
		}
		checkAgentLanguageModels(n, incoming, a)
		checkAgentMemory(n, incoming, a)
		checkAgentOutputParser(n, incoming, a)
		checkAgentPrompt(n, a)
	}

	for _, n := range wf.Nodes {
		if isAIToolNode(n, store) {
			checkToolDescription(n, a)
		}
	}
}

// incomingConn records one fan-in edge reaching a node on a given class.
type incomingConn struct {
	sourceName string
	branchIdx  int
}

// incomingIndex maps (targetNodeName, class) -> the edges that feed it, so
// topology checks can count fan-in without re-walking the whole connection
// map per node.
func incomingIndex(wf *workflow.Workflow) map[string]map[string][]incomingConn {
	idx := make(map[string]map[string][]incomingConn)
	for src, nc := range wf.Connections {
		for class, occ := range nc {
			for branchIdx, branch := range occ {
				for _, ep := range branch {
					if idx[ep.Node] == nil {
						idx[ep.Node] = make(map[string][]incomingConn)
					}
					idx[ep.Node][class] = append(idx[ep.Node][class], incomingConn{sourceName: src, branchIdx: branchIdx})
				}
			}
		}
	}
	return idx
}

func checkAgentLanguageModels(n *workflow.Node, incoming map[string]map[string][]incomingConn, a *accumulator) {
	models := incoming[n.Name][classAILanguageModel]
	switch {
	case len(models) == 0:
		a.add(Diagnostic{
			Code:     CodeAIMissingLanguageModel,
			Severity: SeverityError,
			Message:  "AI agent " + quote(n.Name) + " has no connected language model",
			Location: &Location{NodeName: n.Name, NodeID: n.ID},
		})
	case len(models) > 2:
		a.add(Diagnostic{
			Code:     CodeAITooManyLanguageModels,
			Severity: SeverityWarning,
			Message:  "AI agent " + quote(n.Name) + " has more language models connected than it can use",
			Location: &Location{NodeName: n.Name, NodeID: n.ID},
			Context:  map[string]any{"count": len(models)},
		})
	}

	hasFallback, _ := boolParam(n, "needsFallback")
	if hasFallback && len(models) < 2 {
		a.add(Diagnostic{
			Code:     CodeAIFallbackNoSecond,
			Severity: SeverityError,
			Message:  "AI agent " + quote(n.Name) + " enables a fallback model but only one language model is connected",
			Location: &Location{NodeName: n.Name, NodeID: n.ID, Path: "parameters.needsFallback"},
		})
	}
}

func checkAgentMemory(n *workflow.Node, incoming map[string]map[string][]incomingConn, a *accumulator) {
	mem := incoming[n.Name][classAIMemory]
	if len(mem) > 1 {
		a.add(Diagnostic{
			Code:     CodeAIMultipleMemory,
			Severity: SeverityWarning,
			Message:  "AI agent " + quote(n.Name) + " has more than one memory connection",
			Location: &Location{NodeName: n.Name, NodeID: n.ID},
			Context:  map[string]any{"count": len(mem)},
		})
	}
}

func checkAgentOutputParser(n *workflow.Node, incoming map[string]map[string][]incomingConn, a *accumulator) {
	hasOutputParser, _ := boolParam(n, "hasOutputParser")
	if !hasOutputParser {
		return
	}
	if len(incoming[n.Name][classAIOutputParser]) == 0 {
		a.add(Diagnostic{
			Code:     CodeAIMissingOutputParser,
			Severity: SeverityError,
			Message:  "AI agent " + quote(n.Name) + " declares hasOutputParser but none is connected",
			Location: &Location{NodeName: n.Name, NodeID: n.ID, Path: "parameters.hasOutputParser"},
		})
	}

	streaming, _ := boolParam(n, "options.streamResponse")
	if streaming {
		a.add(Diagnostic{
			Code:     CodeAIStreamingWithMain,
			Severity: SeverityWarning,
			Message:  "AI agent " + quote(n.Name) + " combines streaming output with a structured output parser",
			Location: &Location{NodeName: n.Name, NodeID: n.ID, Path: "parameters.options.streamResponse"},
		})
	}
}

func checkAgentPrompt(n *workflow.Node, a *accumulator) {
	promptType, _ := stringParam(n, "promptType")
	if promptType != "define" {
		return
	}
	text, ok := stringParam(n, "text")
	if !ok || text == "" {
		a.add(Diagnostic{
			Code:     CodeAIEmptyPrompt,
			Severity: SeverityError,
			Message:  "AI agent " + quote(n.Name) + " uses promptType=define but has no prompt text",
			Location: &Location{NodeName: n.Name, NodeID: n.ID, Path: "parameters.text"},
		})
	}
}

func isAIToolNode(n *workflow.Node, store *catalog.Store) bool {
	rec, ok := store.LookupByType(n.Type)
	if !ok {
		return false
	}
	return rec.IsAITool
}

func checkToolDescription(n *workflow.Node, a *accumulator) {
	desc, ok := stringParam(n, "toolDescription")
	if !ok || desc == "" {
		a.add(Diagnostic{
			Code:     CodeAIToolMissingDesc,
			Severity: SeverityWarning,
			Message:  "AI tool node " + quote(n.Name) + " has no toolDescription",
			Location: &Location{NodeName: n.Name, NodeID: n.ID, Path: "parameters.toolDescription"},
		})
	}
}

func boolParam(n *workflow.Node, key string) (bool, bool) {
	v, ok := paramAt(n, key)
	if !ok {
		return false, false
	}
	b, ok := v.(bool)
	return b, ok
}
