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

package toolhost

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
)

// BootstrapResult is the outcome of driving the standard
// initialize/manifest/tools-list sequence once per request.
type BootstrapResult struct {
	// LegacyMode is true when initialize returned 404; in that mode the
	// caller must use LegacyCall instead of CallTool.
	LegacyMode bool
	Manifest   Manifest
}

// Bootstrap runs the tool-host handshake: initialize, manifest fetch,
// tools/list.
func (c *Client) Bootstrap(ctx context.Context) (*BootstrapResult, error) {
	initResp, status, err := c.call(ctx, "initialize", map[string]any{
		"protocolVersion": "2024-11-05",
		"capabilities":    map[string]any{},
	})
	if err != nil {
		return nil, err
	}
	if status == http.StatusNotFound {
		return &BootstrapResult{LegacyMode: true}, nil
	}
	if status < 200 || status >= 300 {
		msg := fmt.Sprintf("status %d", status)
		if initResp != nil && initResp.Error != nil {
			msg = initResp.Error.Message
		}
		return nil, fmt.Errorf("toolhost: initialize failed: %s", msg)
	}
	if initResp != nil && initResp.Error != nil {
		return nil, fmt.Errorf("toolhost: initialize failed: %s", initResp.Error.Message)
	}

	manifestTools, manifestCtx := c.fetchManifest(ctx)

	listTools, err := c.listTools(ctx)
	if err != nil {
		return nil, fmt.Errorf("toolhost: tools/list failed: %w", err)
	}

	manifestCtx.Tools = mergeTools(manifestTools, listTools)
	return &BootstrapResult{Manifest: manifestCtx}, nil
}

// fetchManifest GETs the manifest URL derived from the endpoint path.
// Failures are non-fatal: they're recorded on the returned Manifest and
// yield an empty tool list.
func (c *Client) fetchManifest(ctx context.Context) ([]ToolDescriptor, Manifest) {
	manifestURL, err := deriveManifestURL(c.endpoint)
	if err != nil {
		return nil, Manifest{OK: false, Error: err.Error(), ManifestAttempt: true}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, manifestURL, nil)
	if err != nil {
		return nil, Manifest{OK: false, TargetURL: manifestURL, Error: err.Error(), ManifestAttempt: true}
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, Manifest{OK: false, TargetURL: manifestURL, Error: err.Error(), ManifestAttempt: true}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, Manifest{OK: false, Status: resp.StatusCode, TargetURL: manifestURL, ManifestAttempt: true}
	}

	var decoded struct {
		Tools []mcp.Tool `json:"tools"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, Manifest{OK: false, Status: resp.StatusCode, TargetURL: manifestURL, Error: err.Error(), ManifestAttempt: true}
	}

	tools := make([]ToolDescriptor, 0, len(decoded.Tools))
	for _, t := range decoded.Tools {
		tools = append(tools, fromMCPTool(t))
	}
	return tools, Manifest{OK: true, Status: resp.StatusCode, TargetURL: manifestURL, ManifestAttempt: true}
}

// deriveManifestURL applies the manifest-URL derivation rules to
// the tool-host endpoint path.
func deriveManifestURL(endpoint string) (string, error) {
	u, err := url.Parse(endpoint)
	if err != nil {
		return "", fmt.Errorf("toolhost: invalid endpoint %q: %w", endpoint, err)
	}

	path := strings.TrimSuffix(u.Path, "/")

	switch {
	case path == "" || path == "/api/mcp/chat":
		u.Path = "/mcp/manifest"
	default:
		u.Path = path + "/manifest"
	}
	u.RawQuery = ""
	u.Fragment = ""
	return u.String(), nil
}

// listTools runs the tools/list JSON-RPC call.
func (c *Client) listTools(ctx context.Context) ([]ToolDescriptor, error) {
	resp, status, err := c.call(ctx, "tools/list", nil)
	if err != nil {
		return nil, err
	}
	if status < 200 || status >= 300 {
		return nil, fmt.Errorf("status %d", status)
	}
	if resp.Error != nil {
		return nil, fmt.Errorf("%s", resp.Error.Message)
	}

	data, err := json.Marshal(resp.Result)
	if err != nil {
		return nil, fmt.Errorf("re-marshal tools/list result: %w", err)
	}

	var decoded struct {
		Tools []mcp.Tool `json:"tools"`
	}
	if err := json.Unmarshal(data, &decoded); err != nil {
		return nil, fmt.Errorf("decode tools/list result: %w", err)
	}
	tools := make([]ToolDescriptor, 0, len(decoded.Tools))
	for _, t := range decoded.Tools {
		tools = append(tools, fromMCPTool(t))
	}
	return tools, nil
}

// mergeTools applies the tool-descriptor merge rule: for each manifest
// tool, tools/list fields with the same name override scalar fields and
// are shallow-merged into inputSchema; tools/list entries absent from
// the manifest are appended unchanged.
func mergeTools(manifestTools, listTools []ToolDescriptor) []ToolDescriptor {
	if len(manifestTools) == 0 {
		return listTools
	}

	byName := make(map[string]ToolDescriptor, len(listTools))
	for _, t := range listTools {
		byName[t.Name] = t
	}

	merged := make([]ToolDescriptor, 0, len(manifestTools)+len(listTools))
	seen := make(map[string]bool, len(manifestTools))
	for _, m := range manifestTools {
		seen[m.Name] = true
		listed, ok := byName[m.Name]
		if !ok {
			merged = append(merged, m)
			continue
		}
		merged = append(merged, ToolDescriptor{
			Name:        m.Name,
			Description: overrideString(m.Description, listed.Description),
			InputSchema: shallowMergeSchema(m.InputSchema, listed.InputSchema),
		})
	}
	for _, l := range listTools {
		if !seen[l.Name] {
			merged = append(merged, l)
		}
	}
	return merged
}

func overrideString(base, override string) string {
	if override != "" {
		return override
	}
	return base
}

// shallowMergeSchema merges override's keys into base. inputSchema's
// top-level keys (type, properties, required, ...) are merged one level;
// when both sides have a "properties" map, the per-property entries are
// merged by name, but each property's own definition is replaced
// wholesale, not merged further (e.g. properties.paths.items.type is
// never reached, a known limitation of the merge rule).
func shallowMergeSchema(base, override map[string]any) map[string]any {
	if base == nil && override == nil {
		return nil
	}
	merged := mergeOneLevel(base, override)
	if baseProps, ok := asMap(base["properties"]); ok {
		if overrideProps, ok := asMap(override["properties"]); ok {
			merged["properties"] = mergeOneLevel(baseProps, overrideProps)
		}
	}
	return merged
}

func mergeOneLevel(base, override map[string]any) map[string]any {
	merged := make(map[string]any, len(base)+len(override))
	for k, v := range base {
		merged[k] = v
	}
	for k, v := range override {
		merged[k] = v
	}
	return merged
}

func asMap(v any) (map[string]any, bool) {
	m, ok := v.(map[string]any)
	return m, ok
}
