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

import "strings"

// RunWorkflow executes a WorkflowSpec's steps in declaration order
// in declaration order, gating each step on accumulated sync/step-execution
// state and applying the GitHub-PR termination rule at the end.
func RunWorkflow(c *Context, spec *WorkflowSpec, seedPlan *ExecutionPlan) WorkflowResult {
	executed := map[string]bool{}
	var outcomes []StepOutcome
	var last *Response

	for _, step := range spec.Steps {
		if reason, skip := evaluateWhen(c, step.When, executed); skip {
			outcomes = append(outcomes, StepOutcome{StepID: step.ID, Tool: step.Tool, Executed: false, Skipped: reason})
			continue
		}

		stepPlan := &ExecutionPlan{
			Tool:          step.Tool,
			ToolArguments: step.ToolArguments,
			RoutedQuery:   seedPlan.RoutedQuery,
		}
		response := RunMCPAgent(c, stepPlan)
		executed[step.ID] = true
		outcomes = append(outcomes, StepOutcome{StepID: step.ID, Tool: step.Tool, Executed: true})
		last = &response

		if step.Tool == "sync_status" {
			if m, ok := response.Result.(map[string]any); ok {
				c.MergeSync(m)
			}
		}
	}

	result := WorkflowResult{Proceeded: true, Outcomes: outcomes, Last: last}

	if spec.Type == "github_pr" && !prStepExecuted(outcomes) {
		result.Proceeded = false
		result.Last = blockedWorkflowResponse(last)
	}

	c.Trace().WorkflowSteps = outcomes
	return result
}

func evaluateWhen(c *Context, when *When, executed map[string]bool) (reason string, skip bool) {
	if when == nil {
		return "", false
	}
	switch when.Type {
	case "sync_field_equals":
		val, ok := c.Sync().Field(when.Field)
		if !ok || val != when.Equals {
			return "sync_field_equals(" + when.Field + ") not satisfied", true
		}
	case "step_executed":
		if !executed[when.StepID] {
			return "step_executed(" + when.StepID + ") not satisfied", true
		}
	default:
		return "unknown when type " + when.Type, true
	}
	return "", false
}

// prStepExecuted reports whether a create_pr-ish step actually ran.
func prStepExecuted(outcomes []StepOutcome) bool {
	for _, o := range outcomes {
		if o.Executed && strings.Contains(o.StepID, "create_pr") {
			return true
		}
	}
	return false
}

// blockedWorkflowResponse prefixes the workspace-state reason onto the
// last step's response and marks it as requiring input, per the
// GitHub-PR termination rule.
func blockedWorkflowResponse(last *Response) *Response {
	reason := "워크스페이스 상태를 확인할 수 없어 PR을 생성하지 못했습니다."
	if last == nil {
		return &Response{
			Action: "mcp", Route: RouteLocalMCP, MCPStatus: 200,
			Answer: reason, RequiresInput: true, Missing: MissingWorkPad,
		}
	}
	blocked := *last
	blocked.Answer = reason + "\n\n" + blocked.Answer
	blocked.RequiresInput = true
	blocked.Missing = MissingWorkPad
	return &blocked
}
