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
)

// CallTool invokes tools/call and normalises the result:
// prefer structuredContent, then content[].text, else the whole payload.
// A JSON-RPC error object shortcuts to an IsError result carrying the
// host's message.
func (c *Client) CallTool(ctx context.Context, name string, arguments map[string]any) (CallResult, error) {
	resp, status, err := c.call(ctx, "tools/call", map[string]any{
		"name":      name,
		"arguments": arguments,
	})
	if err != nil {
		return CallResult{}, err
	}
	if resp.Error != nil {
		return CallResult{
			Status:       status,
			IsError:      true,
			ErrorMessage: resp.Error.Message,
		}, nil
	}

	raw, ok := resp.Result.(map[string]any)
	if !ok {
		return CallResult{Status: status, Parsed: resp.Result}, nil
	}

	result := CallResult{Status: status, Raw: raw}

	if isError, _ := raw["isError"].(bool); isError {
		result.IsError = true
		result.ErrorMessage = firstContentText(raw)
		if result.ErrorMessage == "" {
			result.ErrorMessage = "unknown error"
		}
		return result, nil
	}

	if structured, ok := raw["structuredContent"]; ok {
		result.Parsed = structured
		return result, nil
	}

	if texts := allContentText(raw); len(texts) > 0 {
		if len(texts) == 1 {
			result.Parsed = texts[0]
		} else {
			result.Parsed = texts
		}
		return result, nil
	}

	result.Parsed = raw
	return result, nil
}

// LegacyCall posts {prompt, conversation} directly for hosts that
// returned 404 on initialize (legacy mode).
func (c *Client) LegacyCall(ctx context.Context, prompt string, conversation []map[string]string) (string, error) {
	return c.legacyCall(ctx, prompt, conversation)
}

func firstContentText(raw map[string]any) string {
	items, _ := raw["content"].([]any)
	for _, item := range items {
		entry, ok := item.(map[string]any)
		if !ok {
			continue
		}
		if text, ok := entry["text"].(string); ok {
			return text
		}
	}
	return ""
}

func allContentText(raw map[string]any) []string {
	items, ok := raw["content"].([]any)
	if !ok {
		return nil
	}
	var texts []string
	for _, item := range items {
		entry, ok := item.(map[string]any)
		if !ok {
			continue
		}
		if entry["type"] != "text" {
			continue
		}
		if text, ok := entry["text"].(string); ok {
			texts = append(texts, text)
		}
	}
	return texts
}
