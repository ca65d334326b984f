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
	"context"

	"github.com/oriongate/mcpbridge/internal/toolhost"
)

// HandleRequest runs the full per-request pipeline: Plan → Execute →
// Workflow → Retry → Writer/Evaluator → Output. It is the
// single entry point the HTTP layer calls for both the blocking and
// streaming endpoints; emitter controls whether progress is observable.
func HandleRequest(ctx context.Context, rt *Runtime, emitter Emitter, input RequestInput) Response {
	c := NewContext(ctx, rt, emitter, input)

	decision := DecideRoute(c, input.Prompt)
	c.Trace().Route = decision.Route
	c.emitA2A("orchestrator", "plan_agent", "route_decision", decision)
	if emitter != nil {
		emitter.Route(decision.Route)
	}

	if decision.Route == RouteChatOnly {
		c.emitA2A("orchestrator", "chat_agent", "dispatch", map[string]any{"query": decision.Query})
		resp := RunChatAgent(c, decision.Query)
		return finalizeResponse(c, input.Prompt, resp)
	}

	var plan *ExecutionPlan
	boot, bootErr := c.Bootstrap()
	if bootErr == nil && !boot.LegacyMode {
		plan = PlanExecutionFromManifest(c, boot.Manifest, decision.Query)
	}

	c.emitA2A("orchestrator", "mcp_agent", "dispatch", plan)
	resp := RunMCPAgent(c, plan)

	if plan.HasTool() && plan.Tool == "sync_status" {
		if m, ok := resp.Result.(map[string]any); ok {
			c.MergeSync(m)
		}
	}

	if plan != nil && plan.Workflow != nil && bootErr == nil && !boot.LegacyMode {
		c.emitA2A("orchestrator", "workflow_runner", "dispatch", plan.Workflow)
		workflowResult := RunWorkflow(c, plan.Workflow, plan)
		if workflowResult.Last != nil {
			resp = *workflowResult.Last
		}
		resp.Workflow = &WorkflowResponse{
			Type:      plan.Workflow.Type,
			Proceeded: workflowResult.Proceeded,
			Steps:     workflowResult.Outcomes,
		}
	}

	if !resp.Retried && NeedsPathRetry(resp) {
		manifest := toolhost.Manifest{}
		if bootErr == nil && !boot.LegacyMode {
			manifest = boot.Manifest
		}
		c.emitA2A("orchestrator", "retry_policy", "dispatch", map[string]any{"tool": resp.Tool})
		resp = RetryPathIssue(c, retryTargetPlan(plan, resp, decision.Query), manifest)
	}

	c.emitA2A("orchestrator", "writer", "dispatch", map[string]any{"draft": resp.Answer})
	return finalizeResponse(c, input.Prompt, resp)
}

// retryTargetPlan rebuilds the plan that produced resp, so the retry
// policy replays only the last executed step rather than the whole workflow.
func retryTargetPlan(original *ExecutionPlan, resp Response, routedQuery string) *ExecutionPlan {
	if resp.Tool == "" {
		if original != nil {
			return original
		}
		return &ExecutionPlan{RoutedQuery: routedQuery}
	}

	var discovery *Discovery
	if original != nil && original.Tool == resp.Tool {
		discovery = original.Discovery
	}
	return &ExecutionPlan{
		Tool:          resp.Tool,
		ToolArguments: resp.Arguments,
		RoutedQuery:   routedQuery,
		Discovery:     discovery,
	}
}

func finalizeResponse(c *Context, prompt string, resp Response) Response {
	answer, check := Polish(c, prompt, resp.Answer)
	resp.Answer = answer
	resp.QualityCheck = check
	resp.AgentTrace = c.Trace()
	return resp
}
