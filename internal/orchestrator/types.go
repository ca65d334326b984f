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

// Discovery describes a secondary tool call used to harvest paths a
// primary tool needs before it can run.
type Discovery struct {
	Tool          string         `json:"tool"`
	ToolArguments map[string]any `json:"toolArguments"`
	ExpectedPaths []string       `json:"expected_paths,omitempty"`
}

// When gates a workflow step on accumulated request state.
type When struct {
	Type   string `json:"type"`
	Field  string `json:"field,omitempty"`
	Equals any    `json:"equals,omitempty"`
	StepID string `json:"stepId,omitempty"`
}

// Step is one entry of a WorkflowSpec.
type Step struct {
	ID            string         `json:"id"`
	Tool          string         `json:"tool"`
	ToolArguments map[string]any `json:"toolArguments"`
	When          *When          `json:"when,omitempty"`
}

// WorkflowSpec is a declarative, sequential list of tool calls gated on
// accumulated sync state (schema "workflow.steps.v1").
type WorkflowSpec struct {
	Type  string `json:"type"`
	Mode  string `json:"mode"`
	Steps []Step `json:"steps"`
}

// ExecutionPlan is the Plan Agent's output: which tool to call, with
// what arguments, and any attached discovery/workflow.
type ExecutionPlan struct {
	Tool          string         `json:"tool,omitempty"`
	ToolArguments map[string]any `json:"toolArguments,omitempty"`
	RoutedQuery   string         `json:"routedQuery"`
	Explanation   string         `json:"explanation,omitempty"`
	Discovery     *Discovery     `json:"discovery,omitempty"`
	Workflow      *WorkflowSpec  `json:"workflow,omitempty"`
}

// HasTool reports whether the plan names a tool to execute.
func (p *ExecutionPlan) HasTool() bool {
	return p != nil && p.Tool != ""
}

// PlanTrace captures the planning/execution path taken for a request,
// attached to the final response for observability.
type PlanTrace struct {
	Route          string         `json:"route"`
	ManifestStatus int            `json:"manifestStatus,omitempty"`
	ManifestOK     bool           `json:"manifestOk"`
	SelectedTool   string         `json:"selectedTool,omitempty"`
	DiscoveryUsed  bool           `json:"discoveryUsed,omitempty"`
	SearchRetried  bool           `json:"searchRetried,omitempty"`
	SummaryChained bool           `json:"summaryChained,omitempty"`
	PathRetried    bool           `json:"pathRetried,omitempty"`
	WorkflowSteps  []StepOutcome  `json:"workflowSteps,omitempty"`
	LegacyMode     bool           `json:"legacyMode,omitempty"`
	Extra          map[string]any `json:"extra,omitempty"`
}

// StepOutcome records whether a workflow step executed or was skipped.
type StepOutcome struct {
	StepID   string `json:"stepId"`
	Tool     string `json:"tool"`
	Executed bool   `json:"executed"`
	Skipped  string `json:"skipped,omitempty"`
}

// WorkflowResult carries the outcome of running a WorkflowSpec.
type WorkflowResult struct {
	Proceeded bool
	Outcomes  []StepOutcome
	Last      *Response
}

// QualityCheck is the Evaluator's verdict on a drafted answer.
type QualityCheck struct {
	Pass     bool   `json:"pass"`
	Score    int    `json:"score"`
	Feedback string `json:"feedback"`
}

// Response is the Agent response shared across every pipeline stage.
type Response struct {
	Action        string            `json:"action"`
	Answer        string            `json:"answer"`
	Route         string            `json:"route"`
	RoutedQuery   string            `json:"routedQuery,omitempty"`
	Explanation   string            `json:"explanation,omitempty"`
	Tool          string            `json:"tool,omitempty"`
	Arguments     map[string]any    `json:"arguments,omitempty"`
	Result        any               `json:"result,omitempty"`
	RequiresInput bool              `json:"requiresInput,omitempty"`
	Missing       string            `json:"missing,omitempty"`
	MCPStatus     int               `json:"mcpStatus"`
	QualityCheck  *QualityCheck     `json:"qualityCheck,omitempty"`
	AgentTrace    *PlanTrace        `json:"agentTrace,omitempty"`
	Workflow      *WorkflowResponse `json:"workflow,omitempty"`
	Retried       bool              `json:"-"`
}

// WorkflowResponse is the workflow-specific subset of a Response
// surfaced to the client.
type WorkflowResponse struct {
	Type      string        `json:"type"`
	Proceeded bool          `json:"proceeded"`
	Steps     []StepOutcome `json:"steps"`
}

const (
	RouteLocalMCP  = "local_mcp"
	RouteChatOnly  = "chat_only"
	MissingPaths   = "paths"
	MissingPlan    = "execution_plan"
	MissingWorkPad = "workspace_state"
)

// Conversation is one prior turn supplied by the client.
type Conversation struct {
	Role string `json:"role"`
	Text string `json:"text"`
}

// SyncPayload is the open mapping of scalars/arrays extracted from a
// sync_status tool result, used to evaluate when.sync_field_equals.
type SyncPayload map[string]any

// Field reads a scalar field from the sync payload.
func (s SyncPayload) Field(name string) (any, bool) {
	v, ok := s[name]
	return v, ok
}
