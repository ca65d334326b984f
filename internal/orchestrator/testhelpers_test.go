package orchestrator

import (
	"context"
	"errors"

	"github.com/oriongate/mcpbridge/internal/llm"
	"github.com/oriongate/mcpbridge/internal/toolhost"
)

var errTest = errors.New("test error")

// fakeLLM returns queued responses in order, one per Complete call.
type fakeLLM struct {
	replies []string
	errs    []error
	calls   []llm.Format
}

func (f *fakeLLM) Complete(ctx context.Context, messages []llm.Message, format llm.Format) (string, error) {
	f.calls = append(f.calls, format)
	idx := len(f.calls) - 1
	var reply string
	var err error
	if idx < len(f.replies) {
		reply = f.replies[idx]
	}
	if idx < len(f.errs) {
		err = f.errs[idx]
	}
	return reply, err
}

// fakeToolHost is an in-memory ToolHost stub for orchestrator tests.
type fakeToolHost struct {
	bootResult *toolhost.BootstrapResult
	bootErr    error
	bootCalls  int

	// results keyed by tool name, returned in call order per key.
	results map[string][]toolhost.CallResult
	errs    map[string][]error
	calls   []toolCall

	legacyAnswer string
	legacyErr    error
}

type toolCall struct {
	name string
	args map[string]any
}

func (f *fakeToolHost) Bootstrap(ctx context.Context) (*toolhost.BootstrapResult, error) {
	f.bootCalls++
	return f.bootResult, f.bootErr
}

func (f *fakeToolHost) CallTool(ctx context.Context, name string, arguments map[string]any) (toolhost.CallResult, error) {
	f.calls = append(f.calls, toolCall{name: name, args: arguments})

	if errs, ok := f.errs[name]; ok {
		idx := countCallsTo(f.calls, name) - 1
		if idx < len(errs) && errs[idx] != nil {
			return toolhost.CallResult{}, errs[idx]
		}
	}

	results, ok := f.results[name]
	if !ok || len(results) == 0 {
		return toolhost.CallResult{}, errors.New("fakeToolHost: no result queued for " + name)
	}
	idx := countCallsTo(f.calls, name) - 1
	if idx >= len(results) {
		idx = len(results) - 1
	}
	return results[idx], nil
}

func (f *fakeToolHost) LegacyCall(ctx context.Context, prompt string, conversation []map[string]string) (string, error) {
	return f.legacyAnswer, f.legacyErr
}

func countCallsTo(calls []toolCall, name string) int {
	n := 0
	for _, c := range calls {
		if c.name == name {
			n++
		}
	}
	return n
}

func newTestRuntime(llmClient llm.Client, host ToolHost) *Runtime {
	return &Runtime{
		LLM:             llmClient,
		ToolHostFactory: func(endpoint, token string) ToolHost { return host },
		DefaultEndpoint: "http://local-host.test/rpc",
		DefaultToken:    "",
		DefaultPaths:    []string{"notes/"},
	}
}

func newTestContext(rt *Runtime, input RequestInput) *Context {
	return NewContext(context.Background(), rt, DiscardEmitter{}, input)
}

func descriptor(name string, required ...string) toolhost.ToolDescriptor {
	props := map[string]any{}
	for _, r := range required {
		props[r] = map[string]any{"type": "string"}
	}
	reqAny := make([]any, len(required))
	for i, r := range required {
		reqAny[i] = r
	}
	return toolhost.ToolDescriptor{
		Name: name,
		InputSchema: map[string]any{
			"properties": props,
			"required":   reqAny,
		},
	}
}
