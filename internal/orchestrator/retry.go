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
	"github.com/oriongate/mcpbridge/internal/toolhost"
)

var pathIssueRe = regexp.MustCompile(`(?i)(경로|path).*(없|누락|못 찾|does not exist|invalid)|no valid files|invalid paths|use list_docs`)

// NeedsPathRetry reports whether a response indicates a path issue the
// one-shot retry policy should address.
func NeedsPathRetry(resp Response) bool {
	if resp.RequiresInput && resp.Missing == MissingPaths {
		return true
	}
	return pathIssueRe.MatchString(resp.Answer)
}

// RetryPathIssue runs the one-shot retry: rediscover paths via a
// list_docs-like tool, else overwrite toolArguments.paths with the
// configured default paths, else fail with a polished message. Only
// the last executed plan is replayed, not the whole workflow.
func RetryPathIssue(c *Context, plan *ExecutionPlan, manifest toolhost.Manifest) Response {
	c.emitProgress("path_retry", map[string]any{"tool": plan.Tool})
	c.Trace().PathRetried = true

	if listTool, ok := findListDocsTool(manifest); ok {
		seed := map[string]any{"extensions": []string{".md"}, "glob": "**/*.md"}
		listArgs := argument.Sanitize(listTool, seed, plan.RoutedQuery, c.DefaultPaths)
		listResult, err := c.ToolHost().CallTool(c, listTool.Name, listArgs)
		if err == nil && !listResult.IsError {
			if discovered := argument.ExtractDiscovery(listResult.Parsed); len(discovered) > 0 {
				return replayWithPaths(c, plan, discovered)
			}
		}
	}

	if len(c.DefaultPaths) > 0 {
		return replayWithPaths(c, plan, c.DefaultPaths)
	}

	return Response{
		Action: "mcp", Route: RouteLocalMCP, MCPStatus: 200,
		Answer: "요약할 문서를 찾지 못했습니다.", RequiresInput: true, Missing: MissingPaths,
		AgentTrace: c.Trace(),
	}
}

func replayWithPaths(c *Context, plan *ExecutionPlan, paths []string) Response {
	retryPlan := *plan
	retryPlan.ToolArguments = cloneArgs(plan.ToolArguments)
	retryPlan.ToolArguments["paths"] = paths

	resp := RunMCPAgent(c, &retryPlan)
	resp.Retried = true
	return resp
}

func findListDocsTool(manifest toolhost.Manifest) (toolhost.ToolDescriptor, bool) {
	if t, ok := manifest.FindTool("list_docs"); ok {
		return t, true
	}
	return pickDiscoveryTool(manifest, "")
}

func cloneArgs(args map[string]any) map[string]any {
	out := make(map[string]any, len(args)+1)
	for k, v := range args {
		out[k] = v
	}
	return out
}
