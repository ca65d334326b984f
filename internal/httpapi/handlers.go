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
	"net/http"
	"net/url"

	"github.com/oriongate/mcpbridge/internal/orchestrator"
	"github.com/oriongate/mcpbridge/internal/toolhost"
)

// deltaChunkSize is the writer's fixed chunk size by code points.
const deltaChunkSize = 48

type conversationTurn struct {
	Role string `json:"role"`
	Text string `json:"text"`
}

type chatRequest struct {
	Prompt        string             `json:"prompt"`
	LocalEndpoint string             `json:"localEndpoint,omitempty"`
	Conversation  []conversationTurn `json:"conversation,omitempty"`
}

func (r chatRequest) toInput() orchestrator.RequestInput {
	conversation := make([]orchestrator.Conversation, 0, len(r.Conversation))
	for _, t := range r.Conversation {
		conversation = append(conversation, orchestrator.Conversation{Role: t.Role, Text: t.Text})
	}
	return orchestrator.RequestInput{
		Prompt:        r.Prompt,
		LocalEndpoint: r.LocalEndpoint,
		Conversation:  conversation,
	}
}

// decodeChatRequest validates the shared /api/mcp/chat(/stream) body
// missing/empty prompt and invalid localEndpoint are 400s.
func decodeChatRequest(r *http.Request) (chatRequest, string) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return chatRequest{}, "invalid request body"
	}
	if req.Prompt == "" {
		return chatRequest{}, "prompt is required"
	}
	if req.LocalEndpoint != "" {
		u, err := url.Parse(req.LocalEndpoint)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return chatRequest{}, "localEndpoint must be a valid URL"
		}
	}
	return req, ""
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	if s.Runtime.LLM == nil {
		writeJSON(w, http.StatusInternalServerError, map[string]any{"error": "OPENAI_API_KEY is not configured"})
		return
	}

	req, validationErr := decodeChatRequest(r)
	if validationErr != "" {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": validationErr})
		return
	}

	resp := orchestrator.HandleRequest(r.Context(), s.Runtime, orchestrator.DiscardEmitter{}, req.toInput())
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleChatStream(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	emitter := newSSEEmitter(w)

	if s.Runtime.LLM == nil {
		emitter.Error("OPENAI_API_KEY is not configured")
		emitter.Done(false)
		return
	}

	req, validationErr := decodeChatRequest(r)
	if validationErr != "" {
		emitter.Error(validationErr)
		emitter.Done(false)
		return
	}

	resp := orchestrator.HandleRequest(r.Context(), s.Runtime, emitter, req.toInput())

	for _, chunk := range chunkByRune(resp.Answer, deltaChunkSize) {
		if emitter.Closed() {
			return
		}
		emitter.Delta(chunk)
	}

	emitter.Final(resp)
	emitter.Done(true)
}

// handleQuery is a debug passthrough straight to the tool-host client,
// bypassing plan/execute/workflow entirely.
func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Endpoint string `json:"endpoint"`
		Token    string `json:"token,omitempty"`
		Method   string `json:"method"`
		Params   any    `json:"params,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Method == "" {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "method is required"})
		return
	}

	endpoint := body.Endpoint
	if endpoint == "" {
		endpoint = s.Runtime.DefaultEndpoint
	}
	token := body.Token
	if token == "" {
		token = s.Runtime.DefaultToken
	}

	client := toolhost.New(endpoint, token)
	result, status, rpcErr, err := client.Call(r.Context(), body.Method, body.Params)
	if err != nil {
		writeJSON(w, http.StatusBadGateway, map[string]any{"error": err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"status": status, "result": result, "error": rpcErr})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"ok":             true,
		"service":        "local-mcp-bridge",
		"toolHostLastOK": s.Runtime.ToolHostLastOK(),
	})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
