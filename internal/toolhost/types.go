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

// Package toolhost drives the downstream JSON-RPC tool host: the
// initialize/manifest/tools-list bootstrap, tool invocation, and response
// normalisation. Every outbound call here is one of the request's
// suspension points; nothing in this package retains state across
// requests.
package toolhost

import (
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"
)

// ToolDescriptor is the typed view of one entry from tools/list or the
// manifest, decoded once at the JSON boundary. Internal agent code only
// ever sees this type, never the raw map.
//
// InputSchema stays a plain map rather than mcp.ToolInputSchema: the
// manifest/tools-list merge (§4.1 step 3) shallow-merges schema maps
// key-by-key, which a typed struct can't express.
type ToolDescriptor struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	InputSchema map[string]any `json:"inputSchema"`
}

// fromMCPTool converts the mcp-go wire type into a ToolDescriptor,
// flattening its typed InputSchema into a plain map the same way the
// schemaToMap helper does.
func fromMCPTool(t mcp.Tool) ToolDescriptor {
	return ToolDescriptor{
		Name:        t.Name,
		Description: t.Description,
		InputSchema: schemaToMap(t.InputSchema),
	}
}

func schemaToMap(schema mcp.ToolInputSchema) map[string]any {
	data, err := json.Marshal(schema)
	if err != nil {
		return nil
	}
	var result map[string]any
	if err := json.Unmarshal(data, &result); err != nil {
		return nil
	}
	return result
}

// Properties returns the JSON-schema "properties" object of the tool's
// input schema, or nil if absent/malformed.
func (t ToolDescriptor) Properties() map[string]any {
	props, _ := t.InputSchema["properties"].(map[string]any)
	return props
}

// HasProperty reports whether the schema declares the named property.
func (t ToolDescriptor) HasProperty(name string) bool {
	_, ok := t.Properties()[name]
	return ok
}

// Required returns the JSON-schema "required" list as strings.
func (t ToolDescriptor) Required() []string {
	raw, _ := t.InputSchema["required"].([]any)
	out := make([]string, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

// RequiresAll reports whether every given key is in the required list.
func (t ToolDescriptor) RequiresAll(keys ...string) bool {
	req := t.Required()
	for _, k := range keys {
		found := false
		for _, r := range req {
			if r == k {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// Requires reports whether key is in the required list.
func (t ToolDescriptor) Requires(key string) bool {
	return t.RequiresAll(key)
}

// Manifest is the decoded manifest-context result
// context"), produced once per request at planning time and immutable
// thereafter.
type Manifest struct {
	OK              bool             `json:"ok"`
	Status          int              `json:"status"`
	TargetURL       string           `json:"targetUrl"`
	Tools           []ToolDescriptor `json:"tools"`
	ManifestAttempt bool             `json:"manifestAttempt"`
	Error           string           `json:"error,omitempty"`
}

// FindTool returns the descriptor with the given name, if present.
func (m Manifest) FindTool(name string) (ToolDescriptor, bool) {
	for _, t := range m.Tools {
		if t.Name == name {
			return t, true
		}
	}
	return ToolDescriptor{}, false
}

// HasTools reports whether both names are present in the manifest.
func (m Manifest) HasTools(names ...string) bool {
	for _, n := range names {
		if _, ok := m.FindTool(n); !ok {
			return false
		}
	}
	return true
}

// CallResult is the normalised outcome of a tools/call invocation
// (response-normalisation order: structuredContent preferred,
// then content[].text, then the whole payload).
type CallResult struct {
	// Status is the HTTP status of the tools/call response.
	Status int
	// Parsed is the normalised value: structuredContent if present, else
	// the content text (a string for one text item, a []string for
	// several), else the raw payload.
	Parsed any
	// Raw is the exact decoded result object the host returned.
	Raw map[string]any
	// IsError marks a JSON-RPC error or an MCP isError result.
	IsError bool
	// ErrorMessage holds the error text when IsError is true.
	ErrorMessage string
}
