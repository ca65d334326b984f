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
	"fmt"

	"github.com/oriongate/mcpbridge/internal/toolhost"
)

// Sanitize applies the sanitisation rules to a planned argument
// map, given the tool schema and the routed query used as a fallback
// seed. defaultPaths is the configured fallback (LOCAL_MCP_DEFAULT_PATHS).
func Sanitize(tool toolhost.ToolDescriptor, planned map[string]any, routedQuery string, defaultPaths []string) map[string]any {
	if planned == nil {
		planned = map[string]any{}
	}
	props := tool.Properties()

	if tool.HasProperty("paths") {
		planned["paths"] = resolvePaths(planned, routedQuery, defaultPaths)
	}

	if (tool.HasProperty("output_path") || tool.Requires("output_path")) && !isNonEmptyString(planned["output_path"]) {
		planned["output_path"] = defaultOutputPath
	}

	for key, schemaVal := range props {
		val, present := planned[key]
		if !present {
			continue
		}
		schema, _ := schemaVal.(map[string]any)
		planned[key] = coerceToSchema(schema, val)
	}

	for _, key := range tool.Required() {
		if _, present := planned[key]; present {
			continue
		}
		switch key {
		case "paths":
			planned["paths"] = resolvePaths(planned, routedQuery, defaultPaths)
		case "output_path":
			planned["output_path"] = defaultOutputPath
		default:
			planned[key] = routedQuery
		}
	}

	if !hasAnyQueryLikeKey(planned) {
		if key := firstQueryLikeKey(props); key != "" {
			planned[key] = routedQuery
		}
	}

	return planned
}

func resolvePaths(planned map[string]any, routedQuery string, defaultPaths []string) []string {
	for _, key := range []string{"paths", "path", "path_list"} {
		if val, ok := planned[key]; ok {
			if paths := coercePathValue(val); len(paths) > 0 {
				return paths
			}
		}
	}
	if paths := NormalizePaths(routedQuery); len(paths) > 0 {
		return paths
	}
	if len(defaultPaths) > 0 {
		return defaultPaths
	}
	return []string{}
}

func coercePathValue(val any) []string {
	switch v := val.(type) {
	case []any:
		return NormalizePathArray(v)
	case []string:
		return dedupeNonEmpty(v)
	case string:
		return NormalizePaths(v)
	default:
		return nil
	}
}

func coerceToSchema(schema map[string]any, val any) any {
	if schema == nil {
		return val
	}
	schemaType, _ := schema["type"].(string)

	switch v := val.(type) {
	case []any:
		return NormalizePathArray(v)
	case []string:
		return dedupeNonEmpty(v)
	case string:
		return v
	default:
		if schemaType == "string" {
			return stringify(v)
		}
		return v
	}
}

func stringify(v any) string {
	if v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", v)
}

func isNonEmptyString(v any) bool {
	s, ok := v.(string)
	return ok && s != ""
}

func hasAnyQueryLikeKey(args map[string]any) bool {
	for _, k := range queryLikeKeys {
		if v, ok := args[k]; ok && isNonEmptyString(v) {
			return true
		}
	}
	return false
}
