package bedrock

import (
	"context"
	"net/http"
	"testing"

	"github.com/Laisky/errors/v2"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime/types"
	"github.com/stretchr/testify/require"

	"github.com/fuchsia74/bedrock-gateway/common/config"
	relaymodel "github.com/fuchsia74/bedrock-gateway/relay/model"
)

func TestValidateRequest(t *testing.T) {
	valid := relaymodel.GeneralOpenAIRequest{
		Model: "gpt-4o",
		Messages: []relaymodel.Message{
			{Role: "user", Content: "Hello!"},
		},
	}
	require.Nil(t, ValidateRequest(&valid))

	missingModel := valid
	missingModel.Model = ""
	relayErr := ValidateRequest(&missingModel)
	require.NotNil(t, relayErr)
	require.Equal(t, http.StatusBadRequest, relayErr.StatusCode)
	require.Equal(t, "invalid_request_error", relayErr.Type)

	emptyMessages := valid
	emptyMessages.Messages = nil
	relayErr = ValidateRequest(&emptyMessages)
	require.NotNil(t, relayErr)
	require.Equal(t, http.StatusBadRequest, relayErr.StatusCode)
	require.Contains(t, relayErr.Message, "messages")

	missingRole := valid
	missingRole.Messages = []relaymodel.Message{{Content: "hi"}}
	relayErr = ValidateRequest(&missingRole)
	require.NotNil(t, relayErr)
	require.Contains(t, relayErr.Message, "role")

	badRole := valid
	badRole.Messages = []relaymodel.Message{{Role: "tool", Content: "hi"}}
	require.NotNil(t, ValidateRequest(&badRole))

	missingContent := valid
	missingContent.Messages = []relaymodel.Message{{Role: "user"}}
	relayErr = ValidateRequest(&missingContent)
	require.NotNil(t, relayErr)
	require.Contains(t, relayErr.Message, "content")
}

func TestConvertRequest(t *testing.T) {
	temperature := 0.3
	req := ConvertRequest(relaymodel.GeneralOpenAIRequest{
		Model:       "gpt-4o",
		Messages:    []relaymodel.Message{{Role: "user", Content: "Hello!"}},
		Temperature: &temperature,
		Stop:        []any{"END", ""},
	})
	require.Equal(t, config.DefaultMaxToken, req.MaxTokens)
	require.Equal(t, &temperature, req.Temperature)
	require.Nil(t, req.TopP)
	require.Equal(t, []string{"END"}, req.Stop)

	req = ConvertRequest(relaymodel.GeneralOpenAIRequest{
		Model:     "gpt-4o",
		Messages:  []relaymodel.Message{{Role: "user", Content: "Hello!"}},
		MaxTokens: 256,
		Stop:      "HALT",
	})
	require.Equal(t, 256, req.MaxTokens)
	require.Nil(t, req.Temperature)
	require.Equal(t, []string{"HALT"}, req.Stop)
}

func TestConvertToConverseRequest(t *testing.T) {
	temperature := 0.5
	bedrockReq := &Request{
		Messages: []relaymodel.Message{
			{Role: "system", Content: "You are a detective."},
			{Role: "user", Content: "What's your name?"},
			{Role: "assistant", Content: "Kat"},
			{Role: "system", Content: "Answer briefly."},
			{Role: "user", Content: "What's your job?"},
		},
		MaxTokens:   512,
		Temperature: &temperature,
	}

	converseReq := convertToConverseRequest(bedrockReq, "anthropic.claude-4-sonnet-20250514-v1:0")
	require.Equal(t, "anthropic.claude-4-sonnet-20250514-v1:0", aws.ToString(converseReq.ModelId))

	// System turns are partitioned out, in order
	require.Len(t, converseReq.System, 2)
	first, ok := converseReq.System[0].(*types.SystemContentBlockMemberText)
	require.True(t, ok)
	require.Equal(t, "You are a detective.", first.Value)
	second, ok := converseReq.System[1].(*types.SystemContentBlockMemberText)
	require.True(t, ok)
	require.Equal(t, "Answer briefly.", second.Value)

	// Conversation turns keep their relative order
	require.Len(t, converseReq.Messages, 3)
	require.Equal(t, types.ConversationRole("user"), converseReq.Messages[0].Role)
	require.Equal(t, types.ConversationRole("assistant"), converseReq.Messages[1].Role)
	require.Equal(t, types.ConversationRole("user"), converseReq.Messages[2].Role)
	text, ok := converseReq.Messages[2].Content[0].(*types.ContentBlockMemberText)
	require.True(t, ok)
	require.Equal(t, "What's your job?", text.Value)

	require.Equal(t, int32(512), aws.ToInt32(converseReq.InferenceConfig.MaxTokens))
	require.InDelta(t, 0.5, float64(aws.ToFloat32(converseReq.InferenceConfig.Temperature)), 1e-6)
	require.Nil(t, converseReq.InferenceConfig.TopP)
}

func TestConvertStopReason(t *testing.T) {
	cases := map[string]string{
		"end_turn":              "stop",
		"stop_sequence":         "stop",
		"max_tokens":            "length",
		"content_filtered":      "content_filter",
		"guardrail_intervened":  "content_filter",
		"some_future_stop_kind": "stop",
	}
	for awsReason, expected := range cases {
		got := convertStopReason(awsReason)
		require.NotNil(t, got)
		require.Equal(t, expected, *got, "reason %q", awsReason)
	}
	require.Nil(t, convertStopReason(""))
}

func TestConvertConverseResponse(t *testing.T) {
	converseResp := &bedrockruntime.ConverseOutput{
		Output: &types.ConverseOutputMemberMessage{
			Value: types.Message{
				Role: types.ConversationRoleAssistant,
				Content: []types.ContentBlock{
					&types.ContentBlockMemberText{Value: "Hello, "},
					&types.ContentBlockMemberText{Value: "world!"},
				},
			},
		},
		StopReason: types.StopReasonMaxTokens,
	}

	openaiResp := convertConverseResponse(converseResp, "gpt-4o")
	// The response echoes the caller's model string, not the Bedrock ID
	require.Equal(t, "gpt-4o", openaiResp.Model)
	require.Equal(t, "chat.completion", openaiResp.Object)
	require.Len(t, openaiResp.Choices, 1)
	require.Equal(t, "assistant", openaiResp.Choices[0].Message.Role)
	require.Equal(t, "Hello, world!", openaiResp.Choices[0].Message.StringContent())
	require.Equal(t, "length", openaiResp.Choices[0].FinishReason)
	require.Regexp(t, "^chatcmpl-", openaiResp.Id)
}

func TestConvertConverseUsage(t *testing.T) {
	// Missing usage reports zeros instead of omitting fields
	usage := convertConverseUsage(nil)
	require.Zero(t, usage.PromptTokens)
	require.Zero(t, usage.CompletionTokens)
	require.Zero(t, usage.TotalTokens)

	// Missing total is computed
	usage = convertConverseUsage(&types.TokenUsage{
		InputTokens:  aws.Int32(9),
		OutputTokens: aws.Int32(12),
	})
	require.Equal(t, 9, usage.PromptTokens)
	require.Equal(t, 12, usage.CompletionTokens)
	require.Equal(t, 21, usage.TotalTokens)
}

func TestClassifyInvokeError(t *testing.T) {
	relayErr := ClassifyInvokeError(&types.AccessDeniedException{Message: aws.String("not enabled")})
	require.Equal(t, http.StatusForbidden, relayErr.StatusCode)
	require.Equal(t, "model_not_enabled", relayErr.Code)

	relayErr = ClassifyInvokeError(&types.ResourceNotFoundException{Message: aws.String("no such model")})
	require.Equal(t, http.StatusForbidden, relayErr.StatusCode)

	relayErr = ClassifyInvokeError(&types.ModelTimeoutException{Message: aws.String("too slow")})
	require.Equal(t, http.StatusGatewayTimeout, relayErr.StatusCode)

	relayErr = ClassifyInvokeError(context.DeadlineExceeded)
	require.Equal(t, http.StatusGatewayTimeout, relayErr.StatusCode)

	relayErr = ClassifyInvokeError(errors.New("connection refused"))
	require.Equal(t, http.StatusBadGateway, relayErr.StatusCode)
	require.Equal(t, "backend_unavailable", relayErr.Code)

	// Upstream detail is kept for internal logs, never sent to the caller
	require.NotContains(t, relayErr.Message, "connection refused")
	require.Error(t, relayErr.RawError)
}
