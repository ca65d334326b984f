// Copyright 2025 Kadir Pekel
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package orchestrator

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/oriongate/mcpbridge/internal/argument"
	"github.com/oriongate/mcpbridge/internal/llm"
	"github.com/oriongate/mcpbridge/internal/toolhost"
)

const routeSystemPrompt = `You are the routing stage of a tool-using assistant. ` +
	`Given the user's message, decide whether it requires invoking a local tool ` +
	`(route "local_mcp") or can be answered directly (route "chat_only"). ` +
	`Respond with a single JSON object: {"route": "local_mcp"|"chat_only", "query": string, "explanation": string}.`

const toolSelectorSystemPrompt = `You select one tool from the given catalogue to satisfy the user's request. ` +
	`Respond with a single JSON object: {"tool": string, "tool_arguments": object, "routed_query": string, ` +
	`"explanation": string, "discovery": {"tool": string, "tool_arguments": object, "expected_paths": [string]}}. ` +
	`If no tool fits, set "tool" to an empty string.`

type routeDecision struct {
	Route       string `json:"route"`
	Query       string `json:"query"`
	Explanation string `json:"explanation"`
}

// toolSelection decodes the LLM tool-selector's own JSON shape, which
// uses snake_case keys distinct from the camelCase ExecutionPlan wire
// format it gets converted into.
type toolSelection struct {
	Tool          string             `json:"tool"`
	ToolArguments map[string]any     `json:"tool_arguments"`
	RoutedQuery   string             `json:"routed_query"`
	Explanation   string             `json:"explanation"`
	Discovery     *selectedDiscovery `json:"discovery"`
}

type selectedDiscovery struct {
	Tool          string         `json:"tool"`
	ToolArguments map[string]any `json:"tool_arguments"`
	ExpectedPaths []string       `json:"expected_paths"`
}

func (d *selectedDiscovery) toDiscovery() *Discovery {
	if d == nil {
		return nil
	}
	return &Discovery{Tool: d.Tool, ToolArguments: d.ToolArguments, ExpectedPaths: d.ExpectedPaths}
}

var githubPRIntentRe = regexp.MustCompile(`(?i)pr|pull request|github|sync|깃허브|commit|push|deploy`)

// DecideRoute runs the Plan Agent's first LLM call. Any failure to
// parse a usable JSON object defaults to {local_mcp, <prompt>, ""}
// LLM parse failures are silently defaulted rather than surfaced as errors.
func DecideRoute(c *Context, prompt string) routeDecision {
	out, err := c.Runtime.LLM.Complete(c, []llm.Message{
		{Role: llm.RoleSystem, Content: routeSystemPrompt},
		{Role: llm.RoleUser, Content: prompt},
	}, llm.FormatJSON)

	fallback := routeDecision{Route: RouteLocalMCP, Query: prompt, Explanation: ""}
	if err != nil {
		return fallback
	}

	var decision routeDecision
	if jsonErr := json.Unmarshal([]byte(extractJSON(out)), &decision); jsonErr != nil {
		return fallback
	}
	if decision.Route != RouteLocalMCP && decision.Route != RouteChatOnly {
		return fallback
	}
	if decision.Query == "" {
		decision.Query = prompt
	}
	return decision
}

// PlanExecutionFromManifest implements manifest-aware
// planning: workflow probe, then LLM tool-selector, then heuristic
// fallback. Returns nil when the manifest is unavailable or empty.
func PlanExecutionFromManifest(c *Context, manifest toolhost.Manifest, routedQuery string) *ExecutionPlan {
	if !manifest.OK && !manifest.ManifestAttempt {
		return nil
	}
	if len(manifest.Tools) == 0 {
		return nil
	}

	if plan := probeGitHubPRWorkflow(manifest, routedQuery); plan != nil {
		return plan
	}

	if plan := selectToolViaLLM(c, manifest, routedQuery); plan != nil {
		return plan
	}

	return heuristicBestToolPlan(manifest, routedQuery)
}

// probeGitHubPRWorkflow builds the github_pr workflow when the query
// signals PR/sync intent and the catalogue supports it: pull and
// sync-refresh steps when a pull-like tool exists, then create_pr.
func probeGitHubPRWorkflow(manifest toolhost.Manifest, routedQuery string) *ExecutionPlan {
	if !githubPRIntentRe.MatchString(routedQuery) {
		return nil
	}
	if !manifest.HasTools("sync_status", "create_pr") {
		return nil
	}

	pullTool := findToolByHint(manifest, "pull")

	steps := []Step{}
	if pullTool != "" {
		steps = append(steps, Step{
			ID:   "pull_if_needed",
			Tool: pullTool,
			When: &When{Type: "sync_field_equals", Field: "ready_for_pull", Equals: true},
		})
		steps = append(steps, Step{
			ID:   "sync_refresh_after_pull",
			Tool: "sync_status",
			When: &When{Type: "step_executed", StepID: "pull_if_needed"},
		})
	}
	steps = append(steps, Step{
		ID:   "create_pr_if_ready",
		Tool: "create_pr",
		When: &When{Type: "sync_field_equals", Field: "ready_for_pr", Equals: true},
	})

	return &ExecutionPlan{
		Tool:          "sync_status",
		ToolArguments: map[string]any{},
		RoutedQuery:   routedQuery,
		Explanation:   "github pr workflow probe matched",
		Workflow: &WorkflowSpec{
			Type:  "github_pr",
			Mode:  "sequential",
			Steps: steps,
		},
	}
}

func findToolByHint(manifest toolhost.Manifest, hint string) string {
	for _, t := range manifest.Tools {
		if strings.Contains(strings.ToLower(t.Name), hint) {
			return t.Name
		}
	}
	return ""
}

// selectToolViaLLM runs the LLM tool-selector call and schema-sanitises
// its chosen arguments. Returns nil if the selector names no usable
// tool, letting the caller fall back to the heuristic.
func selectToolViaLLM(c *Context, manifest toolhost.Manifest, routedQuery string) *ExecutionPlan {
	catalogue, err := json.Marshal(manifest.Tools)
	if err != nil {
		return nil
	}

	out, err := c.Runtime.LLM.Complete(c, []llm.Message{
		{Role: llm.RoleSystem, Content: toolSelectorSystemPrompt},
		{Role: llm.RoleUser, Content: "Tools:\n" + string(catalogue) + "\n\nRequest: " + routedQuery},
	}, llm.FormatJSON)
	if err != nil {
		return nil
	}

	var selection toolSelection
	if jsonErr := json.Unmarshal([]byte(extractJSON(out)), &selection); jsonErr != nil {
		return nil
	}
	if selection.Tool == "" {
		return nil
	}

	tool, ok := manifest.FindTool(selection.Tool)
	if !ok {
		return nil
	}

	args := argument.Sanitize(tool, selection.ToolArguments, routedQuery, c.DefaultPaths)

	return &ExecutionPlan{
		Tool:          tool.Name,
		ToolArguments: args,
		RoutedQuery:   routedQuery,
		Explanation:   selection.Explanation,
		Discovery:     selection.Discovery.toDiscovery(),
	}
}

var bestToolHintRe = regexp.MustCompile(`(?i)summary|검색|찾|search`)

// heuristicBestToolPlan picks a tool by keyword match against names,
// else the first tool in the catalogue, as a final fallback.
func heuristicBestToolPlan(manifest toolhost.Manifest, routedQuery string) *ExecutionPlan {
	if len(manifest.Tools) == 0 {
		return nil
	}

	chosen := manifest.Tools[0]
	if bestToolHintRe.MatchString(routedQuery) {
		for _, t := range manifest.Tools {
			if bestToolHintRe.MatchString(t.Name) {
				chosen = t
				break
			}
		}
	}

	args := argument.BuildInitial(chosen, routedQuery)
	return &ExecutionPlan{
		Tool:          chosen.Name,
		ToolArguments: args,
		RoutedQuery:   routedQuery,
		Explanation:   "heuristic best-tool fallback",
	}
}

// extractJSON trims surrounding prose/code fences an LLM sometimes adds
// around a JSON object even when asked for FormatJSON.
func extractJSON(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	s = strings.TrimSpace(s)

	start := strings.IndexAny(s, "{[")
	if start == -1 {
		return s
	}
	end := strings.LastIndexAny(s, "}]")
	if end == -1 || end < start {
		return s
	}
	return s[start : end+1]
}
