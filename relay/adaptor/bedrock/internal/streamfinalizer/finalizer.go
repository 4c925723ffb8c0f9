// Package streamfinalizer guarantees that a Converse stream always terminates
// with exactly one final chunk carrying finish_reason and usage, regardless of
// the order in which Bedrock delivers the message-stop and metadata events.
package streamfinalizer

import (
	"encoding/json"

	"github.com/Laisky/zap"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime/types"

	relaymodel "github.com/fuchsia74/bedrock-gateway/relay/model"
)

// Renderer writes one SSE payload to the caller; it reports whether the
// stream should keep going.
type Renderer func([]byte) bool

type Logger interface {
	Error(msg string, fields ...zap.Field)
}

type Finalizer struct {
	model       string
	createdTime int64
	usage       *relaymodel.Usage
	render      Renderer
	logger      Logger

	id               string
	stopReason       *string
	stopReceived     bool
	metadataReceived bool
	finalSent        bool
}

func NewFinalizer(model string, createdTime int64, usage *relaymodel.Usage, logger Logger, render Renderer) *Finalizer {
	if usage == nil {
		usage = &relaymodel.Usage{}
	}

	return &Finalizer{
		model:       model,
		createdTime: createdTime,
		usage:       usage,
		render:      render,
		logger:      logger,
	}
}

func (f *Finalizer) SetID(id string) {
	f.id = id
}

// RecordStop notes the stop reason from the message-stop event and emits the
// final chunk once metadata has also arrived.
func (f *Finalizer) RecordStop(stopReason *string) bool {
	f.stopReason = stopReason
	f.stopReceived = true
	return f.emitFinal(false)
}

// RecordMetadata folds the usage metadata event into the aggregate and emits
// the final chunk once the stop event has also arrived.
func (f *Finalizer) RecordMetadata(streamUsage *types.TokenUsage) bool {
	if streamUsage != nil {
		if streamUsage.InputTokens != nil {
			f.usage.PromptTokens = int(*streamUsage.InputTokens)
		}
		if streamUsage.OutputTokens != nil {
			f.usage.CompletionTokens = int(*streamUsage.OutputTokens)
		}
		if streamUsage.TotalTokens != nil {
			f.usage.TotalTokens = int(*streamUsage.TotalTokens)
		}
	}
	if f.usage.TotalTokens == 0 {
		f.usage.TotalTokens = f.usage.PromptTokens + f.usage.CompletionTokens
	}
	f.metadataReceived = true
	return f.emitFinal(false)
}

// FinalizeOnClose force-emits the final chunk when the stream closed before
// both terminal events arrived.
func (f *Finalizer) FinalizeOnClose() bool {
	return f.emitFinal(true)
}

func (f *Finalizer) HasEmittedFinalChunk() bool {
	return f.finalSent
}

// StopReason returns the aggregated finish reason, defaulting to "stop" when
// the stream ended without one.
func (f *Finalizer) StopReason() string {
	if f.stopReason == nil {
		return "stop"
	}
	return *f.stopReason
}

// Usage returns the aggregated token usage.
func (f *Finalizer) Usage() *relaymodel.Usage {
	return f.usage
}

func (f *Finalizer) emitFinal(force bool) bool {
	if f.finalSent {
		return true
	}
	if !force && (!f.stopReceived || !f.metadataReceived) {
		return true
	}

	finishReason := f.StopReason()
	response := &relaymodel.ChatCompletionsStreamResponse{
		Id:      f.id,
		Object:  "chat.completion.chunk",
		Created: f.createdTime,
		Model:   f.model,
		Choices: []relaymodel.ChatCompletionsStreamResponseChoice{
			{
				Index:        0,
				Delta:        relaymodel.Message{},
				FinishReason: &finishReason,
			},
		},
		Usage: f.usage,
	}

	payload, err := json.Marshal(response)
	if err != nil {
		f.logger.Error("error marshalling final stream response", zap.Error(err))
		return false
	}
	f.finalSent = true
	return f.render(payload)
}
