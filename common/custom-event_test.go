package common

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCustomEventRender(t *testing.T) {
	w := httptest.NewRecorder()
	event := CustomEvent{Data: "data: {\"id\":\"chatcmpl-1\"}"}

	require.NoError(t, event.Render(w))
	require.Equal(t, "text/event-stream", w.Header().Get("Content-Type"))
	require.Equal(t, "no-cache", w.Header().Get("Cache-Control"))
	require.Equal(t, "data: {\"id\":\"chatcmpl-1\"}\n\n", w.Body.String())
}

func TestCustomEventRenderDone(t *testing.T) {
	w := httptest.NewRecorder()
	require.NoError(t, CustomEvent{Data: "data: [DONE]"}.Render(w))
	require.Equal(t, "data: [DONE]\n\n", w.Body.String())
}

func TestCustomEventRenderEscapesNewlines(t *testing.T) {
	w := httptest.NewRecorder()
	require.NoError(t, CustomEvent{Data: "data: first\nsecond"}.Render(w))
	// Embedded newlines must stay inside the same SSE event.
	require.Equal(t, "data: first\ndata:second\n\n", w.Body.String())
}

func TestCheckWriterWrapsPlainWriter(t *testing.T) {
	// httptest recorders implement io.StringWriter directly; a bare io.Writer
	// must be wrapped rather than rejected.
	var buf sliceWriter
	sw := checkWriter(&buf)
	n, err := sw.WriteString("abc")
	require.NoError(t, err)
	require.Equal(t, 3, n)
	require.Equal(t, "abc", string(buf))
}

type sliceWriter []byte

func (s *sliceWriter) Write(p []byte) (int, error) {
	*s = append(*s, p...)
	return len(p), nil
}
