package orchestrator

import (
	"context"
	"testing"

	"github.com/oriongate/mcpbridge/internal/toolhost"
)

func TestHandleRequestChatOnlyRoute(t *testing.T) {
	rt := newTestRuntime(&fakeLLM{replies: []string{
		`{"route":"chat_only","query":"hi there","explanation":""}`,
		"안녕하세요!",
		`{"pass":true,"score":90,"feedback":""}`,
	}}, nil)

	resp := HandleRequest(context.Background(), rt, DiscardEmitter{}, RequestInput{Prompt: "hi there"})

	if resp.Route != RouteChatOnly {
		t.Fatalf("expected chat_only route, got %+v", resp)
	}
	if resp.Answer != "안녕하세요!" {
		t.Fatalf("answer = %q", resp.Answer)
	}
	if resp.AgentTrace == nil || resp.AgentTrace.Route != RouteChatOnly {
		t.Fatalf("expected trace to record route, got %+v", resp.AgentTrace)
	}
}

func TestHandleRequestMCPRouteCallsToolAndPolishes(t *testing.T) {
	manifest := toolhost.Manifest{OK: true, Tools: []toolhost.ToolDescriptor{
		descriptor("search_docs", "query"),
	}}
	host := &fakeToolHost{
		bootResult: &toolhost.BootstrapResult{Manifest: manifest},
		results: map[string][]toolhost.CallResult{
			"search_docs": {{Status: 200, Parsed: map[string]any{"hits": []any{"notes/a.md"}}}},
		},
	}
	rt := newTestRuntime(&fakeLLM{replies: []string{
		`{"route":"local_mcp","query":"golang notes","explanation":""}`,
		`{"tool":"search_docs","tool_arguments":{"query":"golang"},"routed_query":"golang notes"}`,
		"polished answer",
		`{"pass":true,"score":95,"feedback":""}`,
	}}, host)

	resp := HandleRequest(context.Background(), rt, DiscardEmitter{}, RequestInput{Prompt: "golang notes"})

	if resp.Route != RouteLocalMCP || resp.Tool != "search_docs" {
		t.Fatalf("unexpected response: %+v", resp)
	}
	if resp.Answer != "polished answer" {
		t.Fatalf("expected writer-polished answer, got %q", resp.Answer)
	}
	if host.bootCalls != 1 {
		t.Fatalf("expected bootstrap to run exactly once per request, got %d", host.bootCalls)
	}
}

func TestHandleRequestGithubPRWorkflowSeedsSyncFromInitialCall(t *testing.T) {
	manifest := toolhost.Manifest{OK: true, Tools: []toolhost.ToolDescriptor{
		descriptor("sync_status"),
		descriptor("create_pr"),
	}}
	host := &fakeToolHost{
		bootResult: &toolhost.BootstrapResult{Manifest: manifest},
		results: map[string][]toolhost.CallResult{
			"sync_status": {{Status: 200, Parsed: map[string]any{"ready_for_pr": true}}},
			"create_pr":   {{Status: 200, Parsed: map[string]any{"ok": true, "url": "https://example.com/pr/1"}}},
		},
	}
	rt := newTestRuntime(&fakeLLM{replies: []string{
		`{"route":"local_mcp","query":"open a pr for this change","explanation":""}`,
		"PR 생성을 완료했습니다.",
		`{"pass":true,"score":90,"feedback":""}`,
	}}, host)

	resp := HandleRequest(context.Background(), rt, DiscardEmitter{}, RequestInput{Prompt: "open a pr for this change"})

	if resp.Workflow == nil || !resp.Workflow.Proceeded {
		t.Fatalf("expected workflow to proceed once the initial sync_status result seeds ready_for_pr, got %+v", resp.Workflow)
	}
	if len(host.calls) < 2 || host.calls[1].name != "create_pr" {
		t.Fatalf("expected create_pr to be called after the initial sync_status, got calls %+v", host.calls)
	}
}

func TestHandleRequestRetriesOnPathIssue(t *testing.T) {
	manifest := toolhost.Manifest{OK: true, Tools: []toolhost.ToolDescriptor{
		descriptor("summarize", "paths"),
	}}
	host := &fakeToolHost{
		bootResult: &toolhost.BootstrapResult{Manifest: manifest},
		results: map[string][]toolhost.CallResult{
			"summarize": {
				{Status: 200, Parsed: map[string]any{"ok": false}, IsError: true, ErrorMessage: "경로를 찾지 못했습니다, use list_docs"},
				{Status: 200, Parsed: map[string]any{"ok": true}},
			},
		},
	}
	rt := newTestRuntime(&fakeLLM{replies: []string{
		`{"route":"local_mcp","query":"summarize notes","explanation":""}`,
		`{"tool":"summarize","tool_arguments":{"paths":["."]},"routed_query":"summarize notes"}`,
		"final answer",
		`{"pass":true,"score":90,"feedback":""}`,
	}}, host)

	resp := HandleRequest(context.Background(), rt, DiscardEmitter{}, RequestInput{Prompt: "summarize notes"})

	if resp.Answer != "final answer" {
		t.Fatalf("expected writer-polished retried answer, got %q", resp.Answer)
	}
}
