package bedrock

import (
	"sort"
	"strings"
)

// ModelIDMap maps client-facing OpenAI-style model names to Bedrock model IDs.
// https://docs.aws.amazon.com/bedrock/latest/userguide/model-ids.html
var ModelIDMap = map[string]string{
	// Claude
	"claude-4-opus":     "anthropic.claude-4-opus-20250514-v1:0",
	"claude-4-sonnet":   "anthropic.claude-4-sonnet-20250514-v1:0",
	"claude-3.5-sonnet": "anthropic.claude-3-5-sonnet-20241022-v2:0",
	"claude-3.5-haiku":  "anthropic.claude-3-5-haiku-20241022-v1:0",

	// Llama
	"llama-3.3-70b":  "meta.llama3-3-70b-instruct-v1:0",
	"llama-3.1-405b": "meta.llama3-1-405b-instruct-v1:0",

	// Mistral
	"mistral-large": "mistral.mistral-large-2407-v1:0",

	// OpenAI aliases routed to comparable Claude models
	"gpt-4":         "anthropic.claude-4-sonnet-20250514-v1:0",
	"gpt-4o":        "anthropic.claude-4-sonnet-20250514-v1:0",
	"gpt-3.5-turbo": "anthropic.claude-3-5-haiku-20241022-v1:0",
}

// ResolveModelID maps a client-supplied model name to a Bedrock model ID.
// Unknown names that already carry a Bedrock vendor separator (for example
// "anthropic.claude-...") pass through unchanged; anything else falls back to
// defaultModelID. Resolution never fails.
func ResolveModelID(requestModel, defaultModelID string) string {
	if modelID, ok := ModelIDMap[requestModel]; ok {
		return modelID
	}
	if strings.Contains(requestModel, ".") {
		return requestModel
	}
	return defaultModelID
}

// ModelList returns the client-facing model names in stable order.
func ModelList() []string {
	models := make([]string, 0, len(ModelIDMap))
	for model := range ModelIDMap {
		models = append(models, model)
	}
	sort.Strings(models)
	return models
}
