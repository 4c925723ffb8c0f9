package bedrock

import (
	relaymodel "github.com/fuchsia74/bedrock-gateway/relay/model"
)

// Request is the normalized backend request handed to the Converse API.
type Request struct {
	// Messages contains the conversation history using the relay model format.
	// System turns are still interleaved here; they are partitioned into the
	// Converse system field when the wire request is built.
	Messages []relaymodel.Message `json:"messages"`

	// MaxTokens limits the response length. Always set: the gateway applies
	// config.DefaultMaxToken when the caller omits it, because some Bedrock
	// model families reject requests without an explicit limit.
	MaxTokens int `json:"max_tokens,omitempty"`

	// Temperature controls the randomness of the model's responses.
	// Optional, the backend default applies when nil.
	Temperature *float64 `json:"temperature,omitempty"`

	// TopP controls nucleus sampling.
	// Optional, the backend default applies when nil.
	TopP *float64 `json:"top_p,omitempty"`

	// Stop contains custom strings that stop generation when encountered.
	Stop []string `json:"stop,omitempty"`
}
