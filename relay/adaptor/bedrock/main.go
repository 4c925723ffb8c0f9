// Package bedrock translates OpenAI chat-completion requests onto the AWS
// Bedrock Converse API and converts the responses (full or streamed) back
// into OpenAI shape.
package bedrock

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/Laisky/errors/v2"
	gmw "github.com/Laisky/gin-middlewares/v6"
	"github.com/Laisky/zap"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime/types"
	"github.com/gin-gonic/gin"

	"github.com/fuchsia74/bedrock-gateway/common"
	"github.com/fuchsia74/bedrock-gateway/common/config"
	"github.com/fuchsia74/bedrock-gateway/common/helper"
	"github.com/fuchsia74/bedrock-gateway/common/random"
	"github.com/fuchsia74/bedrock-gateway/relay/adaptor/bedrock/internal/streamfinalizer"
	relaymodel "github.com/fuchsia74/bedrock-gateway/relay/model"
)

// ValidateRequest enforces the minimal OpenAI chat-completion contract before
// anything is sent upstream. It returns a 400-shaped error describing the
// first problem found, or nil.
func ValidateRequest(request *relaymodel.GeneralOpenAIRequest) *relaymodel.ErrorWithStatusCode {
	if request == nil {
		return invalidRequestError("request is nil")
	}
	if request.Model == "" {
		return invalidRequestError("model is required")
	}
	if len(request.Messages) == 0 {
		return invalidRequestError("messages is required")
	}
	for i, msg := range request.Messages {
		switch msg.Role {
		case "system", "user", "assistant":
		case "":
			return invalidRequestError(fmt.Sprintf("messages[%d]: role is required", i))
		default:
			return invalidRequestError(fmt.Sprintf("messages[%d]: unsupported role %q", i, msg.Role))
		}
		if msg.Content == nil {
			return invalidRequestError(fmt.Sprintf("messages[%d]: content is required", i))
		}
	}
	return nil
}

func invalidRequestError(message string) *relaymodel.ErrorWithStatusCode {
	return &relaymodel.ErrorWithStatusCode{
		StatusCode: http.StatusBadRequest,
		Error: relaymodel.Error{
			Message: message,
			Type:    "invalid_request_error",
			Code:    "malformed_request",
		},
	}
}

// ConvertRequest normalizes an OpenAI chat request for the Converse API.
func ConvertRequest(textRequest relaymodel.GeneralOpenAIRequest) *Request {
	bedrockRequest := &Request{
		Messages:    textRequest.Messages,
		Temperature: textRequest.Temperature,
		TopP:        textRequest.TopP,
	}

	// Handle max tokens
	if textRequest.MaxTokens == 0 {
		bedrockRequest.MaxTokens = config.DefaultMaxToken
	} else {
		bedrockRequest.MaxTokens = textRequest.MaxTokens
	}

	// Handle stop sequences
	if textRequest.Stop != nil {
		if stopSlice, ok := textRequest.Stop.([]interface{}); ok {
			stopSequences := make([]string, 0, len(stopSlice))
			for _, stop := range stopSlice {
				if stopStr, ok := stop.(string); ok && stopStr != "" {
					stopSequences = append(stopSequences, stopStr)
				}
			}
			if len(stopSequences) > 0 {
				bedrockRequest.Stop = stopSequences
			}
		} else if stopStr, ok := textRequest.Stop.(string); ok {
			if stopStr != "" {
				bedrockRequest.Stop = []string{stopStr}
			}
		}
	}

	return bedrockRequest
}

// convertToConverseRequest builds the Converse wire request. System turns are
// partitioned out of the conversation, in order, into the dedicated system
// field; user and assistant turns keep their relative order.
func convertToConverseRequest(bedrockReq *Request, modelID string) *bedrockruntime.ConverseInput {
	var converseMessages []types.Message
	var systemMessages []types.SystemContentBlock

	for _, msg := range bedrockReq.Messages {
		switch msg.Role {
		case "system":
			systemMessages = append(systemMessages, &types.SystemContentBlockMemberText{
				Value: msg.StringContent(),
			})
		case "user", "assistant":
			contentBlocks := []types.ContentBlock{
				&types.ContentBlockMemberText{
					Value: msg.StringContent(),
				},
			}
			converseMessages = append(converseMessages, types.Message{
				Role:    types.ConversationRole(msg.Role),
				Content: contentBlocks,
			})
		}
	}

	inferenceConfig := &types.InferenceConfiguration{}
	if bedrockReq.MaxTokens != 0 {
		inferenceConfig.MaxTokens = aws.Int32(int32(bedrockReq.MaxTokens))
	}
	if bedrockReq.Temperature != nil {
		inferenceConfig.Temperature = aws.Float32(float32(*bedrockReq.Temperature))
	}
	if bedrockReq.TopP != nil {
		inferenceConfig.TopP = aws.Float32(float32(*bedrockReq.TopP))
	}
	if len(bedrockReq.Stop) > 0 {
		stopSequences := make([]string, len(bedrockReq.Stop))
		copy(stopSequences, bedrockReq.Stop)
		inferenceConfig.StopSequences = stopSequences
	}

	converseReq := &bedrockruntime.ConverseInput{
		ModelId:         aws.String(modelID),
		Messages:        converseMessages,
		InferenceConfig: inferenceConfig,
	}
	if len(systemMessages) > 0 {
		converseReq.System = systemMessages
	}

	return converseReq
}

func convertToConverseStreamRequest(bedrockReq *Request, modelID string) *bedrockruntime.ConverseStreamInput {
	converseReq := convertToConverseRequest(bedrockReq, modelID)
	return &bedrockruntime.ConverseStreamInput{
		ModelId:         converseReq.ModelId,
		Messages:        converseReq.Messages,
		System:          converseReq.System,
		InferenceConfig: converseReq.InferenceConfig,
	}
}

// convertStopReason maps the Bedrock stop-reason vocabulary onto OpenAI
// finish reasons. Unknown reasons map to "stop".
func convertStopReason(awsReason string) *string {
	if awsReason == "" {
		return nil
	}

	var result string
	switch awsReason {
	case "max_tokens":
		result = "length"
	case "end_turn", "stop_sequence":
		result = "stop"
	case "content_filtered", "guardrail_intervened":
		result = "content_filter"
	default:
		result = "stop"
	}

	return &result
}

// convertConverseResponse converts an AWS Converse response to OpenAI format.
// modelName is the caller's original model string, echoed back verbatim.
func convertConverseResponse(converseResp *bedrockruntime.ConverseOutput, modelName string) *relaymodel.TextResponse {
	var responseText string
	var finishReason string

	if converseResp.Output != nil {
		switch outputValue := converseResp.Output.(type) {
		case *types.ConverseOutputMemberMessage:
			for _, contentBlock := range outputValue.Value.Content {
				switch contentValue := contentBlock.(type) {
				case *types.ContentBlockMemberText:
					responseText += contentValue.Value
				}
			}
		}
	}
	if stopReason := convertStopReason(string(converseResp.StopReason)); stopReason != nil {
		finishReason = *stopReason
	}

	choice := relaymodel.TextResponseChoice{
		Index: 0,
		Message: relaymodel.Message{
			Role:    "assistant",
			Content: responseText,
		},
		FinishReason: finishReason,
	}

	return &relaymodel.TextResponse{
		Id:      fmt.Sprintf("chatcmpl-%s", random.GetUUID()[:29]),
		Object:  "chat.completion",
		Created: helper.GetTimestamp(),
		Model:   modelName,
		Choices: []relaymodel.TextResponseChoice{choice},
	}
}

// convertConverseUsage copies the Converse token counts, reporting zero for
// anything the backend omitted so the response schema stays stable.
func convertConverseUsage(tokenUsage *types.TokenUsage) relaymodel.Usage {
	var usage relaymodel.Usage
	if tokenUsage == nil {
		return usage
	}
	if tokenUsage.InputTokens != nil {
		usage.PromptTokens = int(*tokenUsage.InputTokens)
	}
	if tokenUsage.OutputTokens != nil {
		usage.CompletionTokens = int(*tokenUsage.OutputTokens)
	}
	if tokenUsage.TotalTokens != nil {
		usage.TotalTokens = int(*tokenUsage.TotalTokens)
	} else {
		usage.TotalTokens = usage.PromptTokens + usage.CompletionTokens
	}
	return usage
}

// ClassifyInvokeError converts a Converse failure into the caller-visible
// error taxonomy: access problems are permanent (403), deadline overruns are
// 504, everything else is a generic 502. Full detail stays in RawError for
// internal logging only.
func ClassifyInvokeError(err error) *relaymodel.ErrorWithStatusCode {
	var accessDenied *types.AccessDeniedException
	var notFound *types.ResourceNotFoundException
	var modelTimeout *types.ModelTimeoutException

	switch {
	case errors.As(err, &accessDenied), errors.As(err, &notFound):
		return &relaymodel.ErrorWithStatusCode{
			StatusCode: http.StatusForbidden,
			Error: relaymodel.Error{
				Message:  "The requested model is not enabled for this account",
				Type:     "api_error",
				Code:     "model_not_enabled",
				RawError: err,
			},
		}
	case errors.As(err, &modelTimeout),
		errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, context.Canceled):
		return &relaymodel.ErrorWithStatusCode{
			StatusCode: http.StatusGatewayTimeout,
			Error: relaymodel.Error{
				Message:  "Upstream model timed out",
				Type:     "api_error",
				Code:     "backend_timeout",
				RawError: err,
			},
		}
	default:
		return &relaymodel.ErrorWithStatusCode{
			StatusCode: http.StatusBadGateway,
			Error: relaymodel.Error{
				Message:  "Upstream model provider error",
				Type:     "api_error",
				Code:     "backend_unavailable",
				RawError: err,
			},
		}
	}
}

// Handler handles non-streaming requests using the Converse API. It writes
// the OpenAI-shaped response to the client and returns the usage and finish
// reason for auditing.
func Handler(ctx context.Context, c *gin.Context, api ConverseAPI, bedrockReq *Request, originModel, resolvedModel string) (*relaymodel.ErrorWithStatusCode, *relaymodel.Usage, string) {
	converseReq := convertToConverseRequest(bedrockReq, resolvedModel)

	awsResp, err := api.Converse(ctx, converseReq)
	if err != nil {
		return ClassifyInvokeError(errors.Wrap(err, "Converse")), nil, ""
	}

	openaiResp := convertConverseResponse(awsResp, originModel)
	openaiResp.Usage = convertConverseUsage(awsResp.Usage)

	c.JSON(http.StatusOK, openaiResp)
	return nil, &openaiResp.Usage, openaiResp.Choices[0].FinishReason
}

// StreamHandler handles streaming requests using the Converse API. Chunks are
// forwarded to the caller as they arrive; the aggregated usage and finish
// reason are only known after the final event and are returned for a single
// post-stream audit record.
func StreamHandler(ctx context.Context, c *gin.Context, api ConverseAPI, bedrockReq *Request, originModel, resolvedModel string) (*relaymodel.ErrorWithStatusCode, *relaymodel.Usage, string) {
	lg := gmw.GetLogger(c)
	createdTime := helper.GetTimestamp()

	converseReq := convertToConverseStreamRequest(bedrockReq, resolvedModel)

	stream, err := api.ConverseStream(ctx, converseReq)
	if err != nil {
		return ClassifyInvokeError(errors.Wrap(err, "ConverseStream")), nil, ""
	}
	defer stream.Close()

	common.SetEventStreamHeaders(c)

	id := fmt.Sprintf("chatcmpl-%s", random.GetUUID()[:29])
	var usage relaymodel.Usage
	finalizer := streamfinalizer.NewFinalizer(originModel, createdTime, &usage, lg, func(payload []byte) bool {
		c.Render(-1, common.CustomEvent{Data: "data: " + string(payload)})
		return true
	})
	finalizer.SetID(id)

	c.Stream(func(w io.Writer) bool {
		event, ok := <-stream.Events()
		if !ok {
			finalizer.FinalizeOnClose()
			c.Render(-1, common.CustomEvent{Data: "data: [DONE]"})
			return false
		}

		switch v := event.(type) {
		case *types.ConverseStreamOutputMemberMessageStart:
			return true

		case *types.ConverseStreamOutputMemberContentBlockDelta:
			if v.Value.Delta == nil {
				return true
			}
			switch deltaValue := v.Value.Delta.(type) {
			case *types.ContentBlockDeltaMemberText:
				if deltaValue.Value == "" {
					return true
				}
				response := &relaymodel.ChatCompletionsStreamResponse{
					Id:      id,
					Object:  "chat.completion.chunk",
					Created: createdTime,
					Model:   originModel,
					Choices: []relaymodel.ChatCompletionsStreamResponseChoice{
						{
							Index: 0,
							Delta: relaymodel.Message{
								Role:    "assistant",
								Content: deltaValue.Value,
							},
						},
					},
				}
				payload, err := json.Marshal(response)
				if err != nil {
					lg.Error("error marshalling stream response", zap.Error(err))
					return true
				}
				c.Render(-1, common.CustomEvent{Data: "data: " + string(payload)})
			}
			return true

		case *types.ConverseStreamOutputMemberMessageStop:
			finalizer.RecordStop(convertStopReason(string(v.Value.StopReason)))
			return true

		case *types.ConverseStreamOutputMemberMetadata:
			finalizer.RecordMetadata(v.Value.Usage)
			return true

		default:
			return true
		}
	})

	// Cancellation mid-stream must surface as an error so the caller logs a
	// timeout record instead of a response record.
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ClassifyInvokeError(ctxErr), nil, ""
	}
	if streamErr := stream.Err(); streamErr != nil {
		return ClassifyInvokeError(errors.Wrap(streamErr, "converse stream")), nil, ""
	}

	return nil, finalizer.Usage(), finalizer.StopReason()
}
