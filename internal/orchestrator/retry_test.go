package orchestrator

import (
	"testing"

	"github.com/oriongate/mcpbridge/internal/toolhost"
)

func TestNeedsPathRetryOnMissingPaths(t *testing.T) {
	resp := Response{RequiresInput: true, Missing: MissingPaths}
	if !NeedsPathRetry(resp) {
		t.Fatalf("expected retry to be needed")
	}
}

func TestNeedsPathRetryOnAnswerText(t *testing.T) {
	resp := Response{Answer: "해당 경로를 찾지 못했습니다, use list_docs"}
	if !NeedsPathRetry(resp) {
		t.Fatalf("expected retry to be needed from answer text")
	}
}

func TestNeedsPathRetryFalseOtherwise(t *testing.T) {
	resp := Response{Answer: "모든 것이 정상입니다"}
	if NeedsPathRetry(resp) {
		t.Fatalf("did not expect retry to be needed")
	}
}

func TestRetryPathIssueRediscoversViaListDocs(t *testing.T) {
	manifest := toolhost.Manifest{Tools: []toolhost.ToolDescriptor{
		descriptor("list_docs"),
		descriptor("summarize", "paths"),
	}}
	host := &fakeToolHost{
		bootResult: &toolhost.BootstrapResult{Manifest: manifest},
		results: map[string][]toolhost.CallResult{
			"list_docs": {{Status: 200, Parsed: map[string]any{"paths": []any{"notes/a.md"}}}},
			"summarize": {{Status: 200, Parsed: map[string]any{"ok": true}}},
		},
	}
	rt := newTestRuntime(nil, host)
	c := newTestContext(rt, RequestInput{Prompt: "summarize"})

	resp := RetryPathIssue(c, &ExecutionPlan{Tool: "summarize", ToolArguments: map[string]any{}, RoutedQuery: "summarize"}, manifest)

	if !resp.Retried {
		t.Fatalf("expected Retried to be set")
	}
	if resp.MCPStatus != 200 {
		t.Fatalf("unexpected response: %+v", resp)
	}
	if !c.Trace().PathRetried {
		t.Fatalf("expected trace.PathRetried to be set")
	}
}

func TestRetryPathIssueFallsBackToDefaultPaths(t *testing.T) {
	manifest := toolhost.Manifest{Tools: []toolhost.ToolDescriptor{
		descriptor("summarize", "paths"),
	}}
	host := &fakeToolHost{
		bootResult: &toolhost.BootstrapResult{Manifest: manifest},
		results: map[string][]toolhost.CallResult{
			"summarize": {{Status: 200, Parsed: map[string]any{"ok": true}}},
		},
	}
	rt := newTestRuntime(nil, host)
	c := newTestContext(rt, RequestInput{Prompt: "summarize"})

	resp := RetryPathIssue(c, &ExecutionPlan{Tool: "summarize", ToolArguments: map[string]any{}, RoutedQuery: "summarize"}, manifest)

	if !resp.Retried || resp.MCPStatus != 200 {
		t.Fatalf("expected fallback retry to succeed: %+v", resp)
	}
}

func TestRetryPathIssueFailsWithoutAnyPaths(t *testing.T) {
	manifest := toolhost.Manifest{Tools: []toolhost.ToolDescriptor{
		descriptor("summarize", "paths"),
	}}
	host := &fakeToolHost{bootResult: &toolhost.BootstrapResult{Manifest: manifest}}
	rt := &Runtime{
		LLM:             nil,
		ToolHostFactory: func(endpoint, token string) ToolHost { return host },
		DefaultEndpoint: "http://local-host.test/rpc",
	}
	c := newTestContext(rt, RequestInput{Prompt: "summarize"})

	resp := RetryPathIssue(c, &ExecutionPlan{Tool: "summarize", ToolArguments: map[string]any{}, RoutedQuery: "summarize"}, manifest)

	if resp.Retried {
		t.Fatalf("did not expect Retried on terminal failure")
	}
	if !resp.RequiresInput || resp.Missing != MissingPaths {
		t.Fatalf("expected missing-paths failure, got %+v", resp)
	}
}
