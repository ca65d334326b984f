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

// Package httpapi exposes the bridge's HTTP surface: the blocking and
// streaming chat endpoints, the debug passthrough, and the health
// check.
package httpapi

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/oriongate/mcpbridge/internal/orchestrator"
)

// Server holds the collaborators every handler needs.
type Server struct {
	Runtime *orchestrator.Runtime
}

// NewRouter builds the chi router for the bridge's HTTP surface.
func NewRouter(rt *orchestrator.Runtime, frontOrigin string) http.Handler {
	s := &Server{Runtime: rt}

	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   originList(frontOrigin),
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
	}))

	r.Get("/health", s.handleHealth)
	r.Post("/api/mcp/chat", s.handleChat)
	r.Post("/api/mcp/chat/stream", s.handleChatStream)
	r.Post("/api/mcp/query", s.handleQuery)

	return r
}

func originList(origin string) []string {
	if origin == "" {
		return []string{"*"}
	}
	return strings.Split(origin, ",")
}
