package common

import (
	"bytes"
	"encoding/json"
	"io"

	"github.com/Laisky/errors/v2"
	"github.com/gin-gonic/gin"
)

const KeyRequestBody = "key_request_body"

// GetRequestBody reads the request body once and caches it on the context so
// that middlewares and handlers can both consume it.
func GetRequestBody(c *gin.Context) ([]byte, error) {
	requestBody, ok := c.Get(KeyRequestBody)
	if ok {
		return requestBody.([]byte), nil
	}
	var buf []byte
	var err error
	defer func() {
		if c.Request != nil && c.Request.Body != nil {
			_ = c.Request.Body.Close()
		}
	}()
	if c.Request == nil || c.Request.Body == nil {
		buf = []byte{}
	} else {
		buf, err = io.ReadAll(c.Request.Body)
		if err != nil {
			return nil, errors.Wrap(err, "read request body")
		}
	}
	c.Set(KeyRequestBody, buf)
	return buf, nil
}

// UnmarshalBodyReusable unmarshals the request body into v without consuming
// it, so the body can be read again later in the pipeline.
func UnmarshalBodyReusable(c *gin.Context, v any) error {
	requestBody, err := GetRequestBody(c)
	if err != nil {
		return err
	}
	if err = json.Unmarshal(requestBody, v); err != nil {
		return errors.Wrap(err, "unmarshal request body")
	}
	// Restore the body for any later reader.
	c.Request.Body = io.NopCloser(bytes.NewBuffer(requestBody))
	return nil
}

// SetEventStreamHeaders prepares the response for server-sent events.
func SetEventStreamHeaders(c *gin.Context) {
	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")
	c.Writer.Header().Set("Transfer-Encoding", "chunked")
	c.Writer.Header().Set("X-Accel-Buffering", "no")
}
