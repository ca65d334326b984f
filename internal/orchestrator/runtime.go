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
	"sync/atomic"

	"github.com/oriongate/mcpbridge/internal/llm"
	"github.com/oriongate/mcpbridge/internal/toolhost"
)

// ToolHost is the subset of toolhost.Client the orchestrator depends
// on, narrowed to an interface so tests can substitute a fake.
type ToolHost interface {
	Bootstrap(ctx context.Context) (*toolhost.BootstrapResult, error)
	CallTool(ctx context.Context, name string, arguments map[string]any) (toolhost.CallResult, error)
	LegacyCall(ctx context.Context, prompt string, conversation []map[string]string) (string, error)
}

// ToolHostFactory builds a ToolHost bound to one endpoint/token pair.
// Each request gets its own client; no connection pooling or reuse.
type ToolHostFactory func(endpoint, token string) ToolHost

// Runtime owns the collaborators every agent needs: the LLM client, the
// tool-host factory, and immutable configuration. One Runtime is built
// at startup and shared read-only across concurrent requests.
type Runtime struct {
	LLM             llm.Client
	ToolHostFactory ToolHostFactory
	DefaultEndpoint string
	DefaultToken    string
	DefaultPaths    []string

	// lastToolHostOK is the only mutable state shared across requests:
	// a health-check hint for GET /health, updated lock-free after every
	// bootstrap attempt.
	lastToolHostOK atomic.Bool
}

// MarkToolHostOK records whether the most recent bootstrap attempt
// reached the tool host, for the /health endpoint's supplemental status.
func (r *Runtime) MarkToolHostOK(ok bool) {
	r.lastToolHostOK.Store(ok)
}

// ToolHostLastOK reports the most recently recorded bootstrap outcome.
// Defaults to false before the first request completes a bootstrap.
func (r *Runtime) ToolHostLastOK() bool {
	return r.lastToolHostOK.Load()
}

// NewRuntime builds a Runtime wired to the real toolhost.Client.
func NewRuntime(llmClient llm.Client, endpoint, token string, defaultPaths []string) *Runtime {
	return &Runtime{
		LLM:             llmClient,
		ToolHostFactory: func(endpoint, token string) ToolHost { return toolhost.New(endpoint, token) },
		DefaultEndpoint: endpoint,
		DefaultToken:    token,
		DefaultPaths:    defaultPaths,
	}
}

// RequestInput is the decoded client request to /api/mcp/chat.
type RequestInput struct {
	Prompt        string
	LocalEndpoint string
	Conversation  []Conversation
}

// Context is request-scoped state threaded through every agent. It owns
// nothing beyond this one request's lifetime.
type Context struct {
	context.Context

	RequestID    string
	Runtime      *Runtime
	Emitter      Emitter
	Input        RequestInput
	Endpoint     string
	Token        string
	DefaultPaths []string

	toolHost ToolHost
	trace    PlanTrace
	sync     SyncPayload

	bootOnce   bool
	bootResult *toolhost.BootstrapResult
	bootErr    error
}

// NewContext builds a request-scoped Context from the Runtime and the
// decoded client input, applying any per-request endpoint override.
func NewContext(ctx context.Context, rt *Runtime, emitter Emitter, input RequestInput) *Context {
	endpoint := rt.DefaultEndpoint
	if input.LocalEndpoint != "" {
		endpoint = input.LocalEndpoint
	}
	return &Context{
		Context:      ctx,
		RequestID:    NewRequestID(),
		Runtime:      rt,
		Emitter:      emitter,
		Input:        input,
		Endpoint:     endpoint,
		Token:        rt.DefaultToken,
		DefaultPaths: rt.DefaultPaths,
		sync:         SyncPayload{},
	}
}

// ToolHost lazily builds the per-request tool-host client.
func (c *Context) ToolHost() ToolHost {
	if c.toolHost == nil {
		c.toolHost = c.Runtime.ToolHostFactory(c.Endpoint, c.Token)
	}
	return c.toolHost
}

// Bootstrap runs the tool-host handshake at most once per request; the
// Plan Agent, every workflow step, and the path-issue retry all share
// the resulting manifest instead of re-fetching it.
func (c *Context) Bootstrap() (*toolhost.BootstrapResult, error) {
	if !c.bootOnce {
		c.bootOnce = true
		c.bootResult, c.bootErr = c.ToolHost().Bootstrap(c)
		c.Runtime.MarkToolHostOK(c.bootErr == nil)
	}
	return c.bootResult, c.bootErr
}

// Trace returns the accumulating plan trace for this request.
func (c *Context) Trace() *PlanTrace {
	return &c.trace
}

// Sync returns the shared sync payload carried across workflow steps.
func (c *Context) Sync() SyncPayload {
	return c.sync
}

// MergeSync folds new fields into the shared sync payload.
func (c *Context) MergeSync(fields map[string]any) {
	for k, v := range fields {
		c.sync[k] = v
	}
}

// emitProgress is a small helper every agent uses to report a phase.
func (c *Context) emitProgress(step string, fields map[string]any) {
	if c.Emitter == nil {
		return
	}
	c.Emitter.Progress(step, fields)
}

// emitMCPProgress reports a phase that corresponds to an actual
// tool-host round trip (handshake, tools/call, discovery), as opposed
// to the orchestrator-level phases emitProgress covers.
func (c *Context) emitMCPProgress(step string, fields map[string]any) {
	if c.Emitter == nil {
		return
	}
	c.Emitter.MCPProgress(step, fields)
}

// emitA2A forwards an envelope from one named agent to another.
func (c *Context) emitA2A(from, to, msgType string, payload any) {
	if c.Emitter == nil {
		return
	}
	c.Emitter.A2A(NewEnvelope(c.RequestID, from, to, msgType, payload))
}
