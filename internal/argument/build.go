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

import (
	"strings"

	"github.com/oriongate/mcpbridge/internal/toolhost"
)

const defaultOutputPath = "output.md"

var queryLikeKeys = []string{"query", "input", "text", "prompt", "q", "question", "content"}

// InjectDefaults applies the default-argument inference rule: if the
// tool declares an output_path property, seed it.
func InjectDefaults(tool toolhost.ToolDescriptor, args map[string]any) map[string]any {
	if args == nil {
		args = map[string]any{}
	}
	if tool.HasProperty("output_path") {
		if _, ok := args["output_path"]; !ok {
			args["output_path"] = defaultOutputPath
		}
	}
	return args
}

// BuildInitial constructs the initial argument map for a tool call from
// a seed string, following the ordered rule list.
func BuildInitial(tool toolhost.ToolDescriptor, seed string) map[string]any {
	props := tool.Properties()
	hasPaths := tool.HasProperty("paths")
	requiresPaths := tool.Requires("paths")
	requiresOutputPath := tool.Requires("output_path")

	looksLikeRebuild := strings.Contains(strings.ToLower(tool.Name), "rebuild_summary")

	switch {
	case looksLikeRebuild || tool.RequiresAll("paths", "output_path"):
		return map[string]any{"paths": NormalizePaths(seed), "output_path": defaultOutputPath}

	case requiresPaths && hasPaths:
		args := map[string]any{"paths": NormalizePaths(seed)}
		if requiresOutputPath {
			args["output_path"] = defaultOutputPath
		}
		return args

	case hasPaths:
		args := map[string]any{"paths": NormalizePaths(seed)}
		if requiresOutputPath {
			args["output_path"] = defaultOutputPath
		}
		return args

	case requiresOutputPath && !tool.HasProperty("query"):
		args := map[string]any{"output_path": defaultOutputPath}
		if other := firstRequiredOtherThan(tool, "output_path"); other != "" {
			args[other] = seed
		}
		return args

	case hasQueryLikeKey(props):
		key := firstQueryLikeKey(props)
		return map[string]any{key: seed}

	default:
		if len(tool.Required()) > 0 {
			return map[string]any{tool.Required()[0]: seed}
		}
		if key := firstPropertyKey(props); key != "" {
			return map[string]any{key: seed}
		}
		return map[string]any{"query": seed}
	}
}

func hasQueryLikeKey(props map[string]any) bool {
	return firstQueryLikeKey(props) != ""
}

func firstQueryLikeKey(props map[string]any) string {
	for _, k := range queryLikeKeys {
		if _, ok := props[k]; ok {
			return k
		}
	}
	return ""
}

func firstRequiredOtherThan(tool toolhost.ToolDescriptor, exclude string) string {
	for _, r := range tool.Required() {
		if r != exclude {
			return r
		}
	}
	return ""
}

// firstPropertyKey returns an arbitrary property name: Go map iteration
// order isn't defined and may differ between calls, so callers relying on "the first
// property" get at most "a property" here; this mirrors the final
// catch-all fallback, which only fires when nothing else
// matched a named schema shape.
func firstPropertyKey(props map[string]any) string {
	for k := range props {
		return k
	}
	return ""
}
