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

// Package llm defines the bridge's boundary to a chat-completion provider.
// Every agent (plan, mcp-answer, chat, writer, evaluator, summary) talks to
// the provider only through this interface; no component holds a concrete
// provider type.
package llm

import "context"

// Role identifies the speaker of a message in a chat-style transcript.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one turn of the transcript sent to Complete.
type Message struct {
	Role    Role
	Content string
}

// Format constrains how the provider is asked to shape its reply.
type Format int

const (
	// FormatText asks for a plain prose reply.
	FormatText Format = iota
	// FormatJSON asks the provider to return a single JSON object/array
	// and nothing else. Callers still validate the result themselves;
	// FormatJSON is a hint to the provider, not a schema contract.
	FormatJSON
)

// Client is the single LLM call every agent in the pipeline uses. It has
// no notion of sessions, tools, or streaming — those concerns live in the
// orchestrator, not here.
type Client interface {
	Complete(ctx context.Context, messages []Message, format Format) (string, error)
}
