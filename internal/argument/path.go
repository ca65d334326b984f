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

// Package argument builds and sanitises tool-call arguments from a
// user's routed query and a tool's input schema (the Argument
// Engine). Every function here is pure: no I/O, no shared state, so the
// orchestrator can call them freely while building a plan.
package argument

import (
	"regexp"
	"strings"
)

var pathLikeRe = regexp.MustCompile(
	`(?:^|\s)((?:\./|/)?[\w\-./]+\.[A-Za-z0-9]+|[\w\-]+/[\w\-./]+|[\w\-]+\.md|[\w\-./]+/)`,
)

// NormalizePaths extracts path-like substrings from free text per spec
// §4.2's path-normalisation rules, deduplicated and emptied of blanks.
func NormalizePaths(s string) []string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}

	matches := pathLikeRe.FindAllStringSubmatch(s, -1)
	var found []string
	for _, m := range matches {
		found = append(found, strings.TrimSpace(m[1]))
	}

	if len(found) == 0 {
		found = splitOnSeparators(s)
	}

	return dedupeNonEmpty(found)
}

func splitOnSeparators(s string) []string {
	fields := regexp.MustCompile(`[;,\n]`).Split(s, -1)
	var out []string
	for _, f := range fields {
		f = strings.TrimSpace(f)
		if f == "" {
			continue
		}
		if len(fields) == 1 && !looksLikePath(f) {
			continue
		}
		out = append(out, f)
	}
	return out
}

func looksLikePath(s string) bool {
	if strings.Contains(s, " ") {
		return false
	}
	return strings.Contains(s, "/") || strings.Contains(s, ".")
}

// NormalizePathArray coerces an arbitrary array value (as decoded from
// JSON) into a deduplicated list of trimmed, non-empty strings.
func NormalizePathArray(items []any) []string {
	var out []string
	for _, item := range items {
		s, ok := item.(string)
		if !ok {
			continue
		}
		s = strings.TrimSpace(s)
		if s != "" {
			out = append(out, s)
		}
	}
	return dedupeNonEmpty(out)
}

func dedupeNonEmpty(items []string) []string {
	seen := make(map[string]bool, len(items))
	out := make([]string, 0, len(items))
	for _, item := range items {
		if item == "" || seen[item] {
			continue
		}
		seen[item] = true
		out = append(out, item)
	}
	return out
}
