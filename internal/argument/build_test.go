package argument

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/oriongate/mcpbridge/internal/toolhost"
)

func schemaTool(name string, required []any, properties map[string]any) toolhost.ToolDescriptor {
	return toolhost.ToolDescriptor{
		Name: name,
		InputSchema: map[string]any{
			"type":       "object",
			"required":   required,
			"properties": properties,
		},
	}
}

func TestBuildInitialPathsAndOutputRequired(t *testing.T) {
	tool := schemaTool("rebuild_summary", []any{"paths", "output_path"}, map[string]any{
		"paths":       map[string]any{"type": "array"},
		"output_path": map[string]any{"type": "string"},
	})
	args := BuildInitial(tool, "notes/a.md")
	assert.Equal(t, []string{"notes/a.md"}, args["paths"])
	assert.Equal(t, "output.md", args["output_path"])
}

func TestBuildInitialPathsOnlyOptionalOutput(t *testing.T) {
	tool := schemaTool("search_docs", []any{"paths"}, map[string]any{
		"paths": map[string]any{"type": "array"},
	})
	args := BuildInitial(tool, "notes/")
	assert.Equal(t, []string{"notes/"}, args["paths"])
	_, hasOutput := args["output_path"]
	assert.False(t, hasOutput)
}

func TestBuildInitialQueryLikeKey(t *testing.T) {
	tool := schemaTool("search", []any{}, map[string]any{
		"query": map[string]any{"type": "string"},
	})
	args := BuildInitial(tool, "find the deploy docs")
	assert.Equal(t, "find the deploy docs", args["query"])
}

func TestBuildInitialFallsBackToFirstRequired(t *testing.T) {
	tool := schemaTool("sync_status", []any{"branch"}, map[string]any{
		"branch": map[string]any{"type": "string"},
	})
	args := BuildInitial(tool, "main")
	assert.Equal(t, "main", args["branch"])
}

func TestBuildInitialDefaultsToQueryKey(t *testing.T) {
	tool := schemaTool("noop", nil, map[string]any{})
	args := BuildInitial(tool, "anything")
	assert.Equal(t, "anything", args["query"])
}

func TestInjectDefaultsAddsOutputPath(t *testing.T) {
	tool := schemaTool("rebuild_summary", nil, map[string]any{
		"output_path": map[string]any{"type": "string"},
	})
	args := InjectDefaults(tool, map[string]any{})
	assert.Equal(t, "output.md", args["output_path"])
}

func TestInjectDefaultsDoesNotOverride(t *testing.T) {
	tool := schemaTool("rebuild_summary", nil, map[string]any{
		"output_path": map[string]any{"type": "string"},
	})
	args := InjectDefaults(tool, map[string]any{"output_path": "custom.md"})
	assert.Equal(t, "custom.md", args["output_path"])
}
