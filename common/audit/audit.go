// Package audit emits the structured usage records that operators rely on for
// accounting: one "request" record per accepted request, followed by exactly
// one "response" or "error" record. Records are write-only and correlated by
// request id.
package audit

import (
	"time"

	glog "github.com/Laisky/go-utils/v5/log"
	"github.com/Laisky/zap"

	relaymodel "github.com/fuchsia74/bedrock-gateway/relay/model"
)

// LogRequest records an accepted request before the backend is invoked.
func LogRequest(lg glog.Logger, requestID, identity, modelRequested, modelResolved string, messageCount int) {
	lg.Info("request",
		zap.String("event", "request"),
		zap.String("request_id", requestID),
		zap.String("identity", identity),
		zap.String("model_requested", modelRequested),
		zap.String("model_resolved", modelResolved),
		zap.Int("message_count", messageCount),
		zap.String("timestamp", time.Now().UTC().Format(time.RFC3339)),
	)
}

// LogResponse records a completed backend round trip. For streaming requests
// it is emitted once, after the final chunk.
func LogResponse(lg glog.Logger, requestID, identity, model string, usage *relaymodel.Usage, finishReason string) {
	if usage == nil {
		usage = &relaymodel.Usage{}
	}
	lg.Info("response",
		zap.String("event", "response"),
		zap.String("request_id", requestID),
		zap.String("identity", identity),
		zap.String("model", model),
		zap.Int("prompt_tokens", usage.PromptTokens),
		zap.Int("completion_tokens", usage.CompletionTokens),
		zap.Int("total_tokens", usage.TotalTokens),
		zap.String("finish_reason", finishReason),
	)
}

// LogError records a rejected or failed request. identity may be empty when
// the failure happened before authentication completed.
func LogError(lg glog.Logger, requestID, identity, kind, detail string) {
	lg.Warn("request failed",
		zap.String("event", "error"),
		zap.String("request_id", requestID),
		zap.String("identity", identity),
		zap.String("kind", kind),
		zap.String("detail", detail),
	)
}
