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

// Emitter is the progress-event sink every agent reports through. It is
// independent of transport: the streaming HTTP handler backs
// it with an SSE writer, the non-streaming handler with DiscardEmitter.
// Events must stay scalar-only so any implementation can re-serialise
// them safely.
type Emitter interface {
	// Progress reports a named phase transition (manifest_fetch,
	// tools_list, plan, arguments_ready, tool_call, ...).
	Progress(step string, fields map[string]any)
	// A2A forwards an inter-agent envelope for observability.
	A2A(env Envelope)
	// Route reports the Plan Agent's route decision.
	Route(route string)
	// MCPProgress reports a tool-host-specific progress update.
	MCPProgress(step string, fields map[string]any)
	// Closed reports whether the underlying transport can still accept
	// writes; agents check this to short-circuit when the client has
	// disconnected.
	Closed() bool
}

// DiscardEmitter drops every event. Used by non-streaming endpoints
// where progress has no observer.
type DiscardEmitter struct{}

func (DiscardEmitter) Progress(string, map[string]any)    {}
func (DiscardEmitter) A2A(Envelope)                       {}
func (DiscardEmitter) Route(string)                       {}
func (DiscardEmitter) MCPProgress(string, map[string]any) {}
func (DiscardEmitter) Closed() bool                       { return false }

var _ Emitter = DiscardEmitter{}
