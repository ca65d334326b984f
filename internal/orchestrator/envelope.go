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

// Package orchestrator implements the Plan → Execute →
// (Workflow-Step | Retry | Discovery | Summary-Chain) → Writer →
// Evaluator → Output pipeline. One Runtime is shared by concurrent
// requests; each request runs on its own Context, and apart from the
// Runtime's tool-host health flag nothing here outlives that request.
package orchestrator

import (
	"time"

	"github.com/google/uuid"
)

// Envelope is the uniform message passed between the Orchestrator and
// its agents (the "A2A message"), also surfaced on the SSE channel as
// an `a2a` event for observability.
type Envelope struct {
	ProtocolVersion string    `json:"protocolVersion"`
	RequestID       string    `json:"requestId"`
	From            string    `json:"from"`
	To              string    `json:"to"`
	Type            string    `json:"type"`
	Timestamp       time.Time `json:"timestamp"`
	Payload         any       `json:"payload"`
}

const protocolVersion = "bridge.a2a.v1"

// NewEnvelope builds an Envelope for a message between two named agents,
// stamped with the given request ID.
func NewEnvelope(requestID, from, to, msgType string, payload any) Envelope {
	return Envelope{
		ProtocolVersion: protocolVersion,
		RequestID:       requestID,
		From:            from,
		To:              to,
		Type:            msgType,
		Timestamp:       time.Now(),
		Payload:         payload,
	}
}

// NewRequestID generates a fresh per-request identifier.
func NewRequestID() string {
	return uuid.NewString()
}
