package orchestrator

import (
	"testing"

	"github.com/oriongate/mcpbridge/internal/toolhost"
)

func TestRunMCPAgentBootstrapFailure(t *testing.T) {
	host := &fakeToolHost{bootErr: errTest}
	rt := newTestRuntime(nil, host)
	c := newTestContext(rt, RequestInput{Prompt: "x"})

	resp := RunMCPAgent(c, &ExecutionPlan{Tool: "search_docs", RoutedQuery: "x"})

	if resp.MCPStatus != 0 || resp.Answer == "" {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestRunMCPAgentLegacyMode(t *testing.T) {
	host := &fakeToolHost{
		bootResult:   &toolhost.BootstrapResult{LegacyMode: true},
		legacyAnswer: "legacy answer",
	}
	rt := newTestRuntime(nil, host)
	c := newTestContext(rt, RequestInput{Prompt: "x"})

	resp := RunMCPAgent(c, &ExecutionPlan{RoutedQuery: "x"})

	if resp.Answer != "legacy answer" || resp.MCPStatus != 200 {
		t.Fatalf("unexpected legacy response: %+v", resp)
	}
	if !c.Trace().LegacyMode {
		t.Fatalf("expected trace.LegacyMode to be set")
	}
}

func TestRunMCPAgentNoToolResolved(t *testing.T) {
	host := &fakeToolHost{
		bootResult: &toolhost.BootstrapResult{Manifest: toolhost.Manifest{OK: true}},
	}
	rt := newTestRuntime(nil, host)
	c := newTestContext(rt, RequestInput{Prompt: "x"})

	resp := RunMCPAgent(c, &ExecutionPlan{RoutedQuery: "x"})

	if !resp.RequiresInput || resp.Missing != MissingPlan {
		t.Fatalf("expected missing execution plan, got %+v", resp)
	}
}

func TestRunMCPAgentCallsToolAndRenders(t *testing.T) {
	manifest := toolhost.Manifest{OK: true, Tools: []toolhost.ToolDescriptor{
		descriptor("search_docs", "query"),
	}}
	host := &fakeToolHost{
		bootResult: &toolhost.BootstrapResult{Manifest: manifest},
		results: map[string][]toolhost.CallResult{
			"search_docs": {{Status: 200, Parsed: map[string]any{"hits": []any{
				map[string]any{"path": "notes/a.md", "title": "A"},
			}}}},
		},
	}
	rt := newTestRuntime(nil, host)
	c := newTestContext(rt, RequestInput{Prompt: "golang"})

	resp := RunMCPAgent(c, &ExecutionPlan{Tool: "search_docs", ToolArguments: map[string]any{"query": "golang"}, RoutedQuery: "golang"})

	if resp.Tool != "search_docs" || resp.MCPStatus != 200 {
		t.Fatalf("unexpected response: %+v", resp)
	}
	if resp.Answer == "" {
		t.Fatalf("expected rendered answer")
	}
}

func TestRunMCPAgentToolCallError(t *testing.T) {
	manifest := toolhost.Manifest{OK: true, Tools: []toolhost.ToolDescriptor{descriptor("search_docs", "query")}}
	host := &fakeToolHost{
		bootResult: &toolhost.BootstrapResult{Manifest: manifest},
		errs:       map[string][]error{"search_docs": {errTest}},
	}
	rt := newTestRuntime(nil, host)
	c := newTestContext(rt, RequestInput{Prompt: "x"})

	resp := RunMCPAgent(c, &ExecutionPlan{Tool: "search_docs", RoutedQuery: "x"})

	if resp.MCPStatus != 0 || resp.Answer == "" {
		t.Fatalf("expected failure response, got %+v", resp)
	}
}

func TestRunMCPAgentToolIsError(t *testing.T) {
	manifest := toolhost.Manifest{OK: true, Tools: []toolhost.ToolDescriptor{descriptor("search_docs", "query")}}
	host := &fakeToolHost{
		bootResult: &toolhost.BootstrapResult{Manifest: manifest},
		results: map[string][]toolhost.CallResult{
			"search_docs": {{Status: 500, IsError: true, ErrorMessage: "boom"}},
		},
	}
	rt := newTestRuntime(nil, host)
	c := newTestContext(rt, RequestInput{Prompt: "x"})

	resp := RunMCPAgent(c, &ExecutionPlan{Tool: "search_docs", RoutedQuery: "x"})

	if resp.Answer != "boom" || resp.MCPStatus != 500 {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestRunMCPAgentPathDiscoveryPreflight(t *testing.T) {
	manifest := toolhost.Manifest{OK: true, Tools: []toolhost.ToolDescriptor{
		descriptor("summarize", "paths"),
		descriptor("list_docs"),
	}}
	host := &fakeToolHost{
		bootResult: &toolhost.BootstrapResult{Manifest: manifest},
		results: map[string][]toolhost.CallResult{
			"list_docs": {{Status: 200, Parsed: map[string]any{"paths": []any{"notes/a.md", "notes/b.md"}}}},
			"summarize": {{Status: 200, Parsed: map[string]any{"ok": true, "output_path": "output.md"}}},
		},
	}
	rt := newTestRuntime(nil, host)
	c := newTestContext(rt, RequestInput{Prompt: "summarize everything"})

	resp := RunMCPAgent(c, &ExecutionPlan{
		Tool:          "summarize",
		ToolArguments: map[string]any{"paths": []string{"."}},
		RoutedQuery:   "summarize everything",
	})

	if !c.Trace().DiscoveryUsed {
		t.Fatalf("expected discovery to run for dot path")
	}
	if resp.MCPStatus != 200 {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestRunMCPAgentSearchRetryOnEmptyHits(t *testing.T) {
	manifest := toolhost.Manifest{OK: true, Tools: []toolhost.ToolDescriptor{
		descriptor("search_docs", "query"),
		descriptor("list_docs"),
	}}
	host := &fakeToolHost{
		bootResult: &toolhost.BootstrapResult{Manifest: manifest},
		results: map[string][]toolhost.CallResult{
			"search_docs": {
				{Status: 200, Parsed: map[string]any{"hits": []any{}}},
				{Status: 200, Parsed: map[string]any{"hits": []any{map[string]any{"path": "notes/a.md"}}}},
			},
			"list_docs": {{Status: 200, Parsed: map[string]any{"paths": []any{"notes/a.md"}}}},
		},
	}
	rt := newTestRuntime(nil, host)
	c := newTestContext(rt, RequestInput{Prompt: "find golang docs"})

	resp := RunMCPAgent(c, &ExecutionPlan{Tool: "search_docs", ToolArguments: map[string]any{"query": "golang"}, RoutedQuery: "find golang docs"})

	if !c.Trace().SearchRetried {
		t.Fatalf("expected search retry to have run")
	}
	if resp.MCPStatus != 200 {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestRunMCPAgentSummaryChainOnSummaryIntent(t *testing.T) {
	manifest := toolhost.Manifest{OK: true, Tools: []toolhost.ToolDescriptor{
		descriptor("search_docs", "query"),
		descriptor("rebuild_summary", "paths"),
	}}
	host := &fakeToolHost{
		bootResult: &toolhost.BootstrapResult{Manifest: manifest},
		results: map[string][]toolhost.CallResult{
			"search_docs":     {{Status: 200, Parsed: map[string]any{"hits": []any{"notes/a.md"}}}},
			"rebuild_summary": {{Status: 200, Parsed: map[string]any{"ok": true}}},
		},
	}
	rt := newTestRuntime(nil, host)
	c := newTestContext(rt, RequestInput{Prompt: "요약해줘"})

	resp := RunMCPAgent(c, &ExecutionPlan{Tool: "search_docs", ToolArguments: map[string]any{"query": "golang"}, RoutedQuery: "요약해줘"})

	if !c.Trace().SummaryChained {
		t.Fatalf("expected summary chain to have run")
	}
	if resp.MCPStatus != 200 {
		t.Fatalf("unexpected response: %+v", resp)
	}
}
