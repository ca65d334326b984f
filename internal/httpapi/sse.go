// SPDX-License-Identifier: AGPL-3.0
// Copyright 2025 Kadir Pekel
//
// Licensed under the GNU Affero General Public License v3.0 (AGPL-3.0) (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://www.gnu.org/licenses/agpl-3.0.en.html
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package httpapi

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/oriongate/mcpbridge/internal/orchestrator"
)

// sseEmitter implements orchestrator.Emitter over an SSE response
// writer. It is never wrapped around http.ResponseWriter itself — doing
// so would hide the http.Flusher it needs for streaming.
type sseEmitter struct {
	w       http.ResponseWriter
	flusher http.Flusher

	mu     sync.Mutex
	closed bool
}

func newSSEEmitter(w http.ResponseWriter) *sseEmitter {
	flusher, _ := w.(http.Flusher)
	return &sseEmitter{w: w, flusher: flusher}
}

var _ orchestrator.Emitter = (*sseEmitter)(nil)

// writeEvent frames one SSE event: "event: <name>", one "data: <line>"
// per newline in the JSON payload, then a blank line.
func (e *sseEmitter) writeEvent(event string, payload any) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return
	}

	data, err := json.Marshal(payload)
	if err != nil {
		data = []byte("{}")
	}

	if _, err := fmt.Fprintf(e.w, "event: %s\n", event); err != nil {
		e.closed = true
		return
	}
	for _, line := range strings.Split(string(data), "\n") {
		if _, err := fmt.Fprintf(e.w, "data: %s\n", line); err != nil {
			e.closed = true
			return
		}
	}
	if _, err := fmt.Fprint(e.w, "\n"); err != nil {
		e.closed = true
		return
	}
	if e.flusher != nil {
		e.flusher.Flush()
	}
}

func (e *sseEmitter) Progress(step string, fields map[string]any) {
	e.writeEvent("progress", withStep(step, fields))
}

func (e *sseEmitter) A2A(env orchestrator.Envelope) {
	e.writeEvent("a2a", env)
}

func (e *sseEmitter) Route(route string) {
	e.writeEvent("route", map[string]any{"route": route})
}

func (e *sseEmitter) MCPProgress(step string, fields map[string]any) {
	e.writeEvent("mcp-progress", withStep(step, fields))
}

func (e *sseEmitter) Closed() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.closed
}

// Delta, Final, Error and Done aren't part of orchestrator.Emitter —
// the orchestrator only ever reports progress, it has no notion of the
// streaming wire format — but the streaming handler uses the same
// framing to emit the remaining event types.
func (e *sseEmitter) Delta(text string) {
	e.writeEvent("delta", map[string]any{"text": text})
}

func (e *sseEmitter) Final(resp orchestrator.Response) {
	e.writeEvent("final", resp)
}

func (e *sseEmitter) Error(message string) {
	e.writeEvent("error", map[string]any{"message": message})
}

func (e *sseEmitter) Done(ok bool) {
	e.writeEvent("done", map[string]any{"ok": ok})
}

func withStep(step string, fields map[string]any) map[string]any {
	payload := make(map[string]any, len(fields)+1)
	payload["step"] = step
	for k, v := range fields {
		payload[k] = v
	}
	return payload
}

// chunkByRune splits s into chunks of at most n code points, for the
// writer's fixed-size delta chunking (≈48 code points).
func chunkByRune(s string, n int) []string {
	runes := []rune(s)
	if len(runes) == 0 {
		return nil
	}
	var chunks []string
	for i := 0; i < len(runes); i += n {
		end := i + n
		if end > len(runes) {
			end = len(runes)
		}
		chunks = append(chunks, string(runes[i:end]))
	}
	return chunks
}
