package orchestrator

import "testing"

func TestPolishReturnsFirstDraftWhenItPasses(t *testing.T) {
	rt := newTestRuntime(&fakeLLM{replies: []string{
		"polished draft",
		`{"pass":true,"score":90,"feedback":""}`,
	}}, nil)
	c := newTestContext(rt, RequestInput{Prompt: "p"})

	answer, check := Polish(c, "p", "raw draft")

	if answer != "polished draft" {
		t.Fatalf("answer = %q", answer)
	}
	if check == nil || !check.Pass || check.Score != 90 {
		t.Fatalf("check = %+v", check)
	}
}

func TestPolishRedraftsOnFailingEvaluation(t *testing.T) {
	rt := newTestRuntime(&fakeLLM{replies: []string{
		"first draft",
		`{"pass":false,"score":40,"feedback":"too vague"}`,
		"second draft",
		`{"pass":true,"score":85,"feedback":""}`,
	}}, nil)
	c := newTestContext(rt, RequestInput{Prompt: "p"})

	answer, check := Polish(c, "p", "raw")

	if answer != "second draft" {
		t.Fatalf("expected redraft, got %q", answer)
	}
	if check == nil || !check.Pass || check.Score != 85 {
		t.Fatalf("check = %+v", check)
	}
}

func TestPolishReturnsSecondDraftEvenIfStillFailing(t *testing.T) {
	rt := newTestRuntime(&fakeLLM{replies: []string{
		"first draft",
		`{"pass":false,"score":20,"feedback":"bad"}`,
		"second draft",
		`{"pass":false,"score":30,"feedback":"still bad"}`,
	}}, nil)
	c := newTestContext(rt, RequestInput{Prompt: "p"})

	answer, check := Polish(c, "p", "raw")

	if answer != "second draft" {
		t.Fatalf("expected second draft regardless of verdict, got %q", answer)
	}
	if check == nil || check.Pass {
		t.Fatalf("expected failing check, got %+v", check)
	}
}

func TestEvaluateAnswerDefaultsOnParseFailure(t *testing.T) {
	rt := newTestRuntime(&fakeLLM{replies: []string{"draft", "not json at all"}}, nil)
	c := newTestContext(rt, RequestInput{Prompt: "p"})

	_, check := Polish(c, "p", "raw")

	if check == nil || !check.Pass || check.Score != 80 {
		t.Fatalf("expected default passing check, got %+v", check)
	}
}

func TestDraftAnswerFallsBackToDraftOnLLMError(t *testing.T) {
	rt := newTestRuntime(&fakeLLM{errs: []error{errTest, nil}, replies: []string{"", `{"pass":true,"score":70}`}}, nil)
	c := newTestContext(rt, RequestInput{Prompt: "p"})

	answer, check := Polish(c, "p", "original draft")

	if answer != "original draft" {
		t.Fatalf("expected draft to survive LLM failure, got %q", answer)
	}
	if check == nil || !check.Pass {
		t.Fatalf("check = %+v", check)
	}
}
