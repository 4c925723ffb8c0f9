package common

// Modified from the gin-contrib/sse source to emit raw pre-formatted SSE
// payloads without re-encoding them.

import (
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin/render"
)

type stringWriter interface {
	io.Writer
	WriteString(string) (int, error)
}

type stringWrapper struct {
	io.Writer
}

func (w stringWrapper) WriteString(str string) (int, error) {
	return w.Writer.Write([]byte(str))
}

func checkWriter(writer io.Writer) stringWriter {
	if w, ok := writer.(stringWriter); ok {
		return w
	}
	return stringWrapper{writer}
}

// CustomEvent renders a single server-sent event whose Data field is already
// a formatted "data: ..." line.
type CustomEvent struct {
	Event string
	Id    string
	Retry uint
	Data  interface{}
}

var _ render.Render = CustomEvent{}

var contentType = []string{"text/event-stream"}
var noCache = []string{"no-cache"}

var dataReplacer = strings.NewReplacer(
	"\n", "\ndata:",
	"\r", "\\r")

func encode(writer io.Writer, event CustomEvent) error {
	w := checkWriter(writer)
	return writeData(w, event.Data)
}

func writeData(w stringWriter, data interface{}) error {
	dataReplacer.WriteString(w, fmt.Sprint(data))
	if strings.HasPrefix(data.(string), "data") {
		w.WriteString("\n\n")
	}
	return nil
}

func (r CustomEvent) Render(w http.ResponseWriter) error {
	r.WriteContentType(w)
	return encode(w, r)
}

func (r CustomEvent) WriteContentType(w http.ResponseWriter) {
	header := w.Header()
	header["Content-Type"] = contentType

	if _, exist := header["Cache-Control"]; !exist {
		header["Cache-Control"] = noCache
	}
}
