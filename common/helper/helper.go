package helper

import (
	"github.com/fuchsia74/bedrock-gateway/common/random"
)

// RequestIdKey is both the gin context key and the response header carrying the
// per-request identifier used to correlate audit records.
const RequestIdKey = "X-Request-Id"

// GenRequestID generates a unique identifier for an inbound request.
func GenRequestID() string {
	return random.GetUUID()[:16]
}
