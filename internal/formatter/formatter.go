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

// Package formatter renders tool-call results into the user-facing
// Markdown shown to the client, by deterministic shape-matching.
package formatter

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Render converts a normalised tool-call payload into Markdown. toolName
// only appears in the JSON fallback heading.
func Render(toolName string, parsed any) string {
	m, ok := parsed.(map[string]any)
	if !ok {
		return renderFallback(toolName, parsed)
	}

	if summary, has := asNonEmptyString(m["summary"]); has {
		return renderSummary(m, summary)
	}
	if isOK, _ := m["ok"].(bool); isOK {
		if outputPath, has := asNonEmptyString(m["output_path"]); has {
			return renderOK(outputPath)
		}
	}
	if results, present := m["results"].([]any); present {
		return renderGrouped("## 실행 결과", results)
	}
	if docs, present := m["docs"].([]any); present {
		return renderGrouped("## 문서 목록", docs)
	}
	if hits, present := m["hits"].([]any); present {
		return renderGrouped("## 검색 결과", hits)
	}
	if content, present := m["content"].([]any); present {
		if text := renderContent(content); text != "" {
			return text
		}
	}
	return renderFallback(toolName, parsed)
}

func renderSummary(m map[string]any, summary string) string {
	var b strings.Builder
	b.WriteString("## 실행 결과\n\n")
	if outputPath, has := asNonEmptyString(m["output_path"]); has {
		b.WriteString("- output_path: " + outputPath + "\n\n")
	}
	b.WriteString(summary)
	return b.String()
}

func renderOK(outputPath string) string {
	return "## 실행 결과\n\n- output_path: " + outputPath
}

// renderGrouped covers both results[] and docs[]/hits[]: items are
// grouped by their "path" field, in first-seen order.
func renderGrouped(heading string, items []any) string {
	groups, order := groupByPath(items)
	var b strings.Builder
	b.WriteString(heading + "\n\n")
	for _, path := range order {
		b.WriteString("### " + path + "\n\n")
		for _, item := range groups[path] {
			b.WriteString("- " + describeItem(item) + "\n")
		}
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func renderContent(content []any) string {
	var lines []string
	for _, item := range content {
		entry, ok := item.(map[string]any)
		if !ok {
			continue
		}
		if text, ok := entry["text"].(string); ok && text != "" {
			lines = append(lines, "- "+text)
		}
	}
	if len(lines) == 0 {
		return ""
	}
	return "## MCP 응답\n\n" + strings.Join(lines, "\n")
}

func renderFallback(toolName string, parsed any) string {
	data, err := json.MarshalIndent(parsed, "", "  ")
	if err != nil {
		data = []byte(fmt.Sprintf("%v", parsed))
	}
	return fmt.Sprintf("## 실행 결과 - 도구: %s\n\n```json\n%s\n```", toolName, string(data))
}

func groupByPath(items []any) (map[string][]any, []string) {
	groups := map[string][]any{}
	var order []string
	for _, item := range items {
		path := "기타"
		if entry, ok := item.(map[string]any); ok {
			if p, ok := entry["path"].(string); ok && p != "" {
				path = p
			}
		}
		if _, seen := groups[path]; !seen {
			order = append(order, path)
		}
		groups[path] = append(groups[path], item)
	}
	return groups, order
}

func describeItem(item any) string {
	entry, ok := item.(map[string]any)
	if !ok {
		return fmt.Sprintf("%v", item)
	}

	title, _ := entry["title"].(string)
	if title == "" {
		title, _ = entry["name"].(string)
	}
	if title == "" {
		title, _ = entry["path"].(string)
	}

	var b strings.Builder
	b.WriteString(title)
	if line, ok := numberValue(entry["line"]); ok {
		fmt.Fprintf(&b, " (line %d)", line)
	}
	if snippet, has := asNonEmptyString(entry["snippet"]); has {
		b.WriteString(" - " + snippet)
	}
	return b.String()
}

func numberValue(v any) (int, bool) {
	switch n := v.(type) {
	case float64:
		return int(n), true
	case int:
		return n, true
	default:
		return 0, false
	}
}

func asNonEmptyString(v any) (string, bool) {
	s, ok := v.(string)
	return s, ok && s != ""
}
