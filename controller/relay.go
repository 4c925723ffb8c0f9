package controller

import (
	"context"
	"net/http"
	"time"

	gmw "github.com/Laisky/gin-middlewares/v6"
	"github.com/Laisky/zap"
	"github.com/gin-gonic/gin"

	"github.com/fuchsia74/bedrock-gateway/common"
	"github.com/fuchsia74/bedrock-gateway/common/audit"
	"github.com/fuchsia74/bedrock-gateway/common/config"
	"github.com/fuchsia74/bedrock-gateway/common/ctxkey"
	"github.com/fuchsia74/bedrock-gateway/common/helper"
	"github.com/fuchsia74/bedrock-gateway/monitor"
	"github.com/fuchsia74/bedrock-gateway/relay/adaptor/bedrock"
	relaymodel "github.com/fuchsia74/bedrock-gateway/relay/model"
)

// https://platform.openai.com/docs/api-reference/chat

// Relay holds the injected collaborators for the request pipeline. The
// gateway keeps no per-request state anywhere else, so a single Relay serves
// all invocations concurrently.
type Relay struct {
	api          bedrock.ConverseAPI
	defaultModel string
	relayTimeout time.Duration
}

// NewRelay wires the relay pipeline with its backend client. defaultModel and
// relayTimeout usually come from config but are injected for tests.
func NewRelay(api bedrock.ConverseAPI) *Relay {
	return &Relay{
		api:          api,
		defaultModel: config.DefaultBedrockModel,
		relayTimeout: time.Duration(config.RelayTimeout) * time.Second,
	}
}

// ChatCompletions is the single entry point of the translation pipeline:
// parse, validate, resolve, translate, invoke, translate back, audit.
func (r *Relay) ChatCompletions(c *gin.Context) {
	lg := gmw.GetLogger(c)
	startTime := time.Now()
	requestID := c.GetString(helper.RequestIdKey)
	identity := c.GetString(ctxkey.Identity)

	var textRequest relaymodel.GeneralOpenAIRequest
	if err := common.UnmarshalBodyReusable(c, &textRequest); err != nil {
		relayErr := &relaymodel.ErrorWithStatusCode{
			StatusCode: http.StatusBadRequest,
			Error: relaymodel.Error{
				Message: "Invalid JSON body",
				Type:    "invalid_request_error",
				Code:    "malformed_request",
			},
		}
		r.abortWithRelayError(c, relayErr, textRequest.Model)
		return
	}

	// All translation failures are settled locally before any backend call.
	if relayErr := bedrock.ValidateRequest(&textRequest); relayErr != nil {
		r.abortWithRelayError(c, relayErr, textRequest.Model)
		return
	}

	resolvedModel := bedrock.ResolveModelID(textRequest.Model, r.defaultModel)
	c.Set(ctxkey.RequestModel, textRequest.Model)
	c.Set(ctxkey.ResolvedModel, resolvedModel)

	bedrockReq := bedrock.ConvertRequest(textRequest)

	audit.LogRequest(lg, requestID, identity, textRequest.Model, resolvedModel, len(textRequest.Messages))

	ctx, cancel := context.WithTimeout(gmw.Ctx(c), r.relayTimeout)
	defer cancel()

	var relayErr *relaymodel.ErrorWithStatusCode
	var usage *relaymodel.Usage
	var finishReason string
	backendStart := time.Now()
	if textRequest.Stream {
		relayErr, usage, finishReason = bedrock.StreamHandler(ctx, c, r.api, bedrockReq, textRequest.Model, resolvedModel)
	} else {
		relayErr, usage, finishReason = bedrock.Handler(ctx, c, r.api, bedrockReq, textRequest.Model, resolvedModel)
	}
	monitor.ObserveBackendLatency(textRequest.Model, backendStart)
	if relayErr != nil {
		lg.Error("backend invocation failed",
			zap.String("model_resolved", resolvedModel),
			zap.Int("status", relayErr.StatusCode),
			zap.Error(relayErr.RawError))
		r.abortWithRelayError(c, relayErr, textRequest.Model)
		return
	}

	audit.LogResponse(lg, requestID, identity, textRequest.Model, usage, finishReason)
	monitor.RecordRelayRequest(http.StatusOK, textRequest.Model)
	lg.Debug("relay completed",
		zap.String("model_resolved", resolvedModel),
		zap.Int64("elapsed_ms", helper.CalcElapsedTime(startTime)))
}

// auditKind maps a caller-visible error code onto the rejection-kind
// vocabulary used across audit records, matching the authenticator's names.
func auditKind(code any) string {
	c, _ := code.(string)
	switch c {
	case "model_not_enabled":
		return "ModelNotEnabled"
	case "backend_timeout":
		return "BackendTimeout"
	case "backend_unavailable":
		return "BackendUnavailable"
	default:
		return "MalformedRequest"
	}
}

// abortWithRelayError writes the mapped error response (unless a stream has
// already started) and emits the single audit record for the failure.
func (r *Relay) abortWithRelayError(c *gin.Context, relayErr *relaymodel.ErrorWithStatusCode, model string) {
	lg := gmw.GetLogger(c)
	requestID := c.GetString(helper.RequestIdKey)
	identity := c.GetString(ctxkey.Identity)

	audit.LogError(lg, requestID, identity, auditKind(relayErr.Code), relayErr.Message)
	monitor.RecordRelayRequest(relayErr.StatusCode, model)

	if !c.Writer.Written() {
		c.JSON(relayErr.StatusCode, gin.H{"error": relayErr.Error})
	}
	c.Abort()
}
