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
	"regexp"

	"github.com/oriongate/mcpbridge/internal/argument"
	"github.com/oriongate/mcpbridge/internal/formatter"
	"github.com/oriongate/mcpbridge/internal/toolhost"
)

var (
	searchLikeRe    = regexp.MustCompile(`(?i)search|query|find|lookup`)
	summaryIntentRe = regexp.MustCompile(`요약|정리|summary|summar`)
	summaryToolRe   = regexp.MustCompile(`(?i)rebuild_summary|summary|summarize|rebuild`)
	discoveryHintRe = regexp.MustCompile(`(?i)search|scan|find|discover|list|index`)
)

// RunMCPAgent drives the tool-execution step: bootstrap,
// tool selection, argument sanitisation, path-preflight discovery, the
// call itself, search-retry, summary-chain, and response rendering.
func RunMCPAgent(c *Context, plan *ExecutionPlan) Response {
	c.emitMCPProgress("manifest_fetch", nil)
	boot, err := c.Bootstrap()
	if err != nil {
		return Response{
			Action: "mcp", Route: RouteLocalMCP, MCPStatus: 0,
			Answer:     "도구 호스트에 연결할 수 없습니다: " + err.Error(),
			AgentTrace: c.Trace(),
		}
	}
	if boot.LegacyMode {
		c.Trace().LegacyMode = true
		return runLegacyCall(c)
	}

	c.emitMCPProgress("tools_list", map[string]any{"count": len(boot.Manifest.Tools)})
	c.Trace().ManifestOK = boot.Manifest.OK
	c.Trace().ManifestStatus = boot.Manifest.Status

	tool, resolvedPlan, ok := resolvePlanTool(boot.Manifest, plan)
	if !ok {
		return Response{
			Action: "mcp", Route: RouteLocalMCP, MCPStatus: 200,
			Answer:        "실행할 도구를 찾지 못했습니다.",
			RequiresInput: true, Missing: MissingPlan,
			AgentTrace: c.Trace(),
		}
	}
	plan = resolvedPlan
	c.Trace().SelectedTool = tool.Name
	c.emitProgress("plan", map[string]any{"tool": tool.Name})

	args := argument.Sanitize(tool, plan.ToolArguments, plan.RoutedQuery, c.DefaultPaths)

	if tool.Requires("paths") && pathsEmptyOrDot(args["paths"]) {
		args["paths"] = runPathDiscovery(c, boot.Manifest, plan, tool)
		c.Trace().DiscoveryUsed = true
	}

	c.emitProgress("arguments_ready", map[string]any{"tool": tool.Name, "arguments": args})
	c.emitMCPProgress("tool_call", map[string]any{"tool": tool.Name})

	result, err := c.ToolHost().CallTool(c, tool.Name, args)
	if err != nil {
		return Response{
			Action: "mcp", Route: RouteLocalMCP, MCPStatus: 0,
			Answer: "도구 호출에 실패했습니다: " + err.Error(), Tool: tool.Name, Arguments: args,
			AgentTrace: c.Trace(),
		}
	}
	if result.IsError {
		return Response{
			Action: "mcp", Route: RouteLocalMCP, MCPStatus: result.Status,
			Answer: result.ErrorMessage, Tool: tool.Name, Arguments: args,
			AgentTrace: c.Trace(),
		}
	}

	if searchLikeRe.MatchString(tool.Name) && searchHitsEmpty(result) {
		if retried := runSearchRetry(c, boot.Manifest, tool, args); retried != nil {
			result = *retried
			c.Trace().SearchRetried = true
		}
	}

	if summaryIntentRe.MatchString(plan.RoutedQuery) {
		if chained := runSummaryChain(c, boot.Manifest, tool, result); chained != nil {
			result = *chained
			c.Trace().SummaryChained = true
		}
	}

	return Response{
		Action: "mcp", Route: RouteLocalMCP, RoutedQuery: plan.RoutedQuery, Explanation: plan.Explanation,
		Tool: tool.Name, Arguments: args, Result: result.Parsed,
		Answer: formatter.Render(tool.Name, result.Parsed), MCPStatus: result.Status,
		AgentTrace: c.Trace(),
	}
}

// resolvePlanTool selects the tool named by the plan, falling back to
// the heuristic best tool when the plan's name isn't in the catalogue.
func resolvePlanTool(manifest toolhost.Manifest, plan *ExecutionPlan) (toolhost.ToolDescriptor, *ExecutionPlan, bool) {
	if plan != nil && plan.HasTool() {
		if tool, ok := manifest.FindTool(plan.Tool); ok {
			return tool, plan, true
		}
	}
	query := ""
	if plan != nil {
		query = plan.RoutedQuery
	}
	fallback := heuristicBestToolPlan(manifest, query)
	if fallback == nil {
		return toolhost.ToolDescriptor{}, nil, false
	}
	tool, ok := manifest.FindTool(fallback.Tool)
	if !ok {
		return toolhost.ToolDescriptor{}, nil, false
	}
	return tool, fallback, true
}

func pathsEmptyOrDot(val any) bool {
	paths, ok := val.([]string)
	if !ok {
		return true
	}
	if len(paths) == 0 {
		return true
	}
	return len(paths) == 1 && paths[0] == "."
}

// pickDiscoveryTool finds a hint-matching tool other than the excluded
// one, preferring one that doesn't itself require paths.
func pickDiscoveryTool(manifest toolhost.Manifest, exclude string) (toolhost.ToolDescriptor, bool) {
	var fallback toolhost.ToolDescriptor
	found := false
	for _, t := range manifest.Tools {
		if t.Name == exclude || !discoveryHintRe.MatchString(t.Name) {
			continue
		}
		if !found {
			fallback = t
			found = true
		}
		if !t.Requires("paths") {
			return t, true
		}
	}
	return fallback, found
}

// runPathDiscovery implements the path-required preflight: run the
// plan's discovery tool if known, else a hint-matched fallback, else
// the configured default paths.
func runPathDiscovery(c *Context, manifest toolhost.Manifest, plan *ExecutionPlan, tool toolhost.ToolDescriptor) []string {
	c.emitMCPProgress("discovery", map[string]any{"tool": tool.Name})

	var discoveryTool toolhost.ToolDescriptor
	var discoveryArgs map[string]any
	found := false

	if plan.Discovery != nil && plan.Discovery.Tool != "" {
		if dt, ok := manifest.FindTool(plan.Discovery.Tool); ok {
			discoveryTool = dt
			discoveryArgs = argument.Sanitize(dt, plan.Discovery.ToolArguments, plan.RoutedQuery, c.DefaultPaths)
			found = true
		}
	}
	if !found {
		if dt, ok := pickDiscoveryTool(manifest, tool.Name); ok {
			discoveryTool = dt
			discoveryArgs = argument.Sanitize(dt, map[string]any{}, plan.RoutedQuery, c.DefaultPaths)
			found = true
		}
	}

	var discovered []string
	if found {
		result, err := c.ToolHost().CallTool(c, discoveryTool.Name, discoveryArgs)
		if err == nil && !result.IsError {
			discovered = argument.ExtractDiscovery(result.Parsed)
		}
	}
	if len(discovered) == 0 {
		discovered = c.DefaultPaths
	}
	return discovered
}

func searchHitsEmpty(result toolhost.CallResult) bool {
	m, ok := result.Parsed.(map[string]any)
	if !ok {
		return false
	}
	hits, present := m["hits"]
	if !present {
		return false
	}
	arr, ok := hits.([]any)
	return ok && len(arr) == 0
}

// runSearchRetry re-discovers paths via list_docs, then re-runs the
// original search with those paths.
func runSearchRetry(c *Context, manifest toolhost.Manifest, tool toolhost.ToolDescriptor, args map[string]any) *toolhost.CallResult {
	c.emitMCPProgress("search_retry", map[string]any{"tool": tool.Name})

	listTool, ok := manifest.FindTool("list_docs")
	if !ok {
		listTool, ok = pickDiscoveryTool(manifest, tool.Name)
	}
	if !ok {
		return nil
	}

	listArgs := argument.Sanitize(listTool, map[string]any{"extensions": []string{".md", ".txt"}}, "", c.DefaultPaths)
	listResult, err := c.ToolHost().CallTool(c, listTool.Name, listArgs)
	if err != nil || listResult.IsError {
		return nil
	}

	discovered := argument.ExtractDiscovery(listResult.Parsed)
	if len(discovered) == 0 {
		return nil
	}

	retryArgs := make(map[string]any, len(args)+1)
	for k, v := range args {
		retryArgs[k] = v
	}
	retryArgs["paths"] = discovered

	retryResult, err := c.ToolHost().CallTool(c, tool.Name, retryArgs)
	if err != nil || retryResult.IsError {
		return nil
	}
	return &retryResult
}

func findSummaryTool(manifest toolhost.Manifest, exclude string) (toolhost.ToolDescriptor, bool) {
	for _, t := range manifest.Tools {
		if t.Name == exclude {
			continue
		}
		if summaryToolRe.MatchString(t.Name) {
			return t, true
		}
	}
	return toolhost.ToolDescriptor{}, false
}

// runSummaryChain auto-invokes a summary tool after a result when the
// query implied summarisation.
func runSummaryChain(c *Context, manifest toolhost.Manifest, tool toolhost.ToolDescriptor, result toolhost.CallResult) *toolhost.CallResult {
	summaryTool, ok := findSummaryTool(manifest, tool.Name)
	if !ok {
		return nil
	}

	c.emitMCPProgress("summary_chain", map[string]any{"tool": summaryTool.Name})

	paths := argument.ExtractDiscovery(result.Parsed)
	if len(paths) == 0 && summaryTool.Requires("paths") {
		if dt, ok := pickDiscoveryTool(manifest, summaryTool.Name); ok {
			discoveryArgs := argument.Sanitize(dt, map[string]any{}, "", c.DefaultPaths)
			discoveryResult, err := c.ToolHost().CallTool(c, dt.Name, discoveryArgs)
			if err == nil && !discoveryResult.IsError {
				paths = argument.ExtractDiscovery(discoveryResult.Parsed)
			}
		}
	}
	if len(paths) == 0 {
		return nil
	}

	summaryArgs := map[string]any{"paths": paths, "output_path": "output.md"}
	summaryResult, err := c.ToolHost().CallTool(c, summaryTool.Name, summaryArgs)
	if err != nil || summaryResult.IsError {
		return nil
	}
	return &summaryResult
}

func runLegacyCall(c *Context) Response {
	conversation := make([]map[string]string, 0, len(c.Input.Conversation))
	for _, turn := range c.Input.Conversation {
		conversation = append(conversation, map[string]string{"role": turn.Role, "text": turn.Text})
	}

	answer, err := c.ToolHost().LegacyCall(c, c.Input.Prompt, conversation)
	if err != nil {
		return Response{
			Action: "mcp", Route: RouteLocalMCP, MCPStatus: 0,
			Answer: "도구 호출에 실패했습니다: " + err.Error(), AgentTrace: c.Trace(),
		}
	}
	return Response{
		Action: "mcp", Route: RouteLocalMCP, MCPStatus: 200,
		Answer: answer, AgentTrace: c.Trace(),
	}
}
