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

package argument

import "strings"

var discoveryContainerKeys = []string{"paths", "files", "results", "hits", "docs", "documents"}

// ExtractDiscovery walks a tool-call result per the discovery
// rules: known container keys under structuredContent, content[].text,
// and any value under a top-level key containing "path" (of
// structuredContent, or of the result itself when it has none); nested
// objects are not searched for such keys.
func ExtractDiscovery(result any) []string {
	var found []string

	if m, ok := result.(map[string]any); ok {
		if structured, ok := m["structuredContent"].(map[string]any); ok {
			found = append(found, harvestContainers(structured)...)
			found = append(found, harvestPathKeyed(structured)...)
		} else {
			found = append(found, harvestContainers(m)...)
			found = append(found, harvestPathKeyed(m)...)
		}
		found = append(found, harvestContentText(m)...)
	}

	if s, ok := result.(string); ok {
		found = append(found, NormalizePaths(s)...)
	}

	var normalized []string
	for _, f := range found {
		normalized = append(normalized, NormalizePaths(f)...)
	}
	return dedupeNonEmpty(normalized)
}

func harvestContainers(m map[string]any) []string {
	var out []string
	for _, key := range discoveryContainerKeys {
		val, ok := m[key]
		if !ok {
			continue
		}
		out = append(out, stringsFromAny(val)...)
	}
	return out
}

func harvestPathKeyed(m map[string]any) []string {
	var out []string
	for key, val := range m {
		if !strings.Contains(strings.ToLower(key), "path") {
			continue
		}
		out = append(out, stringsFromAny(val)...)
	}
	return out
}

func harvestContentText(m map[string]any) []string {
	items, ok := m["content"].([]any)
	if !ok {
		return nil
	}
	var out []string
	for _, item := range items {
		entry, ok := item.(map[string]any)
		if !ok {
			continue
		}
		if text, ok := entry["text"].(string); ok {
			out = append(out, text)
		}
	}
	return out
}

func stringsFromAny(val any) []string {
	switch v := val.(type) {
	case string:
		return []string{v}
	case []any:
		var out []string
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}
