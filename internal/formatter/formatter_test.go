package formatter

import (
	"strings"
	"testing"
)

func TestRenderSummary(t *testing.T) {
	out := Render("rebuild_summary", map[string]any{
		"summary":     "오늘 작업 요약입니다.",
		"output_path": "output.md",
	})
	if !strings.HasPrefix(out, "## 실행 결과") {
		t.Fatalf("missing heading: %q", out)
	}
	if !strings.Contains(out, "output_path: output.md") {
		t.Fatalf("missing output_path: %q", out)
	}
	if !strings.Contains(out, "오늘 작업 요약입니다.") {
		t.Fatalf("missing summary text: %q", out)
	}
}

func TestRenderOK(t *testing.T) {
	out := Render("write_file", map[string]any{"ok": true, "output_path": "notes/a.md"})
	if out != "## 실행 결과\n\n- output_path: notes/a.md" {
		t.Fatalf("unexpected output: %q", out)
	}
}

func TestRenderResultsGroupedByPath(t *testing.T) {
	out := Render("search_docs", map[string]any{
		"results": []any{
			map[string]any{"path": "notes/a.md", "title": "A", "line": float64(3)},
			map[string]any{"path": "notes/a.md", "title": "A2"},
			map[string]any{"path": "notes/b.md", "snippet": "hit text"},
		},
	})
	if !strings.HasPrefix(out, "## 실행 결과\n\n### notes/a.md") {
		t.Fatalf("unexpected grouping order: %q", out)
	}
	if !strings.Contains(out, "A (line 3)") {
		t.Fatalf("missing line annotation: %q", out)
	}
	if !strings.Contains(out, "### notes/b.md") || !strings.Contains(out, "hit text") {
		t.Fatalf("missing second group: %q", out)
	}
}

func TestRenderDocsHeading(t *testing.T) {
	out := Render("list_docs", map[string]any{"docs": []any{map[string]any{"path": "notes/a.md"}}})
	if !strings.HasPrefix(out, "## 문서 목록") {
		t.Fatalf("unexpected heading: %q", out)
	}
}

func TestRenderHitsHeading(t *testing.T) {
	out := Render("search_docs", map[string]any{"hits": []any{map[string]any{"path": "notes/a.md"}}})
	if !strings.HasPrefix(out, "## 검색 결과") {
		t.Fatalf("unexpected heading: %q", out)
	}
}

func TestRenderUngroupedItemsFallUnderMisc(t *testing.T) {
	out := Render("search_docs", map[string]any{"hits": []any{"a bare string hit"}})
	if !strings.Contains(out, "### 기타") {
		t.Fatalf("expected misc grouping, got %q", out)
	}
}

func TestRenderContent(t *testing.T) {
	out := Render("raw_tool", map[string]any{
		"content": []any{
			map[string]any{"text": "first line"},
			map[string]any{"text": "second line"},
		},
	})
	if !strings.HasPrefix(out, "## MCP 응답") {
		t.Fatalf("unexpected heading: %q", out)
	}
	if !strings.Contains(out, "first line") || !strings.Contains(out, "second line") {
		t.Fatalf("missing content lines: %q", out)
	}
}

func TestRenderFallbackOnUnrecognisedShape(t *testing.T) {
	out := Render("mystery_tool", map[string]any{"foo": "bar"})
	if !strings.HasPrefix(out, "## 실행 결과 - 도구: mystery_tool") {
		t.Fatalf("unexpected fallback heading: %q", out)
	}
	if !strings.Contains(out, "```json") {
		t.Fatalf("expected fenced json block: %q", out)
	}
}

func TestRenderFallbackOnNonMapPayload(t *testing.T) {
	out := Render("raw_tool", "plain string result")
	if !strings.Contains(out, "plain string result") {
		t.Fatalf("expected raw payload echoed, got %q", out)
	}
}

func TestRenderEmptyContentFallsBackToJSON(t *testing.T) {
	out := Render("raw_tool", map[string]any{"content": []any{map[string]any{"type": "image"}}})
	if !strings.HasPrefix(out, "## 실행 결과 - 도구: raw_tool") {
		t.Fatalf("expected fallback when content has no text, got %q", out)
	}
}
