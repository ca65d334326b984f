package httpapi

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSSEEmitterFramesEventsCorrectly(t *testing.T) {
	w := httptest.NewRecorder()
	e := newSSEEmitter(w)

	e.Progress("plan", map[string]any{"tool": "search_docs"})

	body := w.Body.String()
	require.True(t, strings.HasPrefix(body, "event: progress\n"))
	assert.True(t, strings.Contains(body, `"tool":"search_docs"`))
	assert.True(t, strings.HasSuffix(body, "\n\n"))
}

func TestSSEEmitterMultilinePayload(t *testing.T) {
	w := httptest.NewRecorder()
	e := newSSEEmitter(w)

	e.Delta("line one\nline two")

	lines := strings.Split(w.Body.String(), "\n")
	dataLines := 0
	for _, l := range lines {
		if strings.HasPrefix(l, "data: ") {
			dataLines++
		}
	}
	assert.Equal(t, 1, dataLines, "JSON-encoded newline should not split into multiple data: lines")
}

func TestSSEEmitterClosedAfterWriteError(t *testing.T) {
	e := &sseEmitter{w: failingWriter{}}
	e.Progress("plan", nil)
	assert.True(t, e.Closed())
}

type failingWriter struct{}

func (failingWriter) Header() http.Header        { return http.Header{} }
func (failingWriter) Write([]byte) (int, error)  { return 0, assert.AnError }
func (failingWriter) WriteHeader(statusCode int) {}

var _ http.ResponseWriter = failingWriter{}

func TestChunkByRuneSplitsOnCodePoints(t *testing.T) {
	chunks := chunkByRune("abcdef", 2)
	assert.Equal(t, []string{"ab", "cd", "ef"}, chunks)
}

func TestChunkByRuneHandlesMultiByteRunes(t *testing.T) {
	chunks := chunkByRune("안녕하세요", 2)
	assert.Equal(t, []string{"안녕", "하세", "요"}, chunks)
}

func TestChunkByRuneEmptyString(t *testing.T) {
	assert.Nil(t, chunkByRune("", 48))
}
