package controller

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/fuchsia74/bedrock-gateway/common/helper"
	"github.com/fuchsia74/bedrock-gateway/relay/adaptor/bedrock"
)

// OpenAIModel is one entry of the /v1/models listing.
type OpenAIModel struct {
	Id      string `json:"id"`
	Object  string `json:"object"`
	Created int64  `json:"created"`
	OwnedBy string `json:"owned_by"`
	// BedrockModelId exposes the backing Bedrock model for operators; plain
	// OpenAI clients ignore unknown fields.
	BedrockModelId string `json:"bedrock_model_id"`
}

type OpenAIModelList struct {
	Object string        `json:"object"`
	Data   []OpenAIModel `json:"data"`
}

// ListModels returns the static model-mapping table as an OpenAI model list.
func (r *Relay) ListModels(c *gin.Context) {
	created := helper.GetTimestamp()
	names := bedrock.ModelList()
	models := make([]OpenAIModel, 0, len(names))
	for _, name := range names {
		bedrockID := bedrock.ModelIDMap[name]
		vendor, _, _ := strings.Cut(bedrockID, ".")
		models = append(models, OpenAIModel{
			Id:             name,
			Object:         "model",
			Created:        created,
			OwnedBy:        vendor,
			BedrockModelId: bedrockID,
		})
	}
	c.JSON(http.StatusOK, OpenAIModelList{
		Object: "list",
		Data:   models,
	})
}
