package model

// GeneralOpenAIRequest is the inbound chat-completion request body. Fields the
// gateway does not understand are silently dropped by the JSON decoder rather
// than rejected, so clients built against newer OpenAI schema revisions keep
// working.
type GeneralOpenAIRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
	Temperature *float64  `json:"temperature,omitempty"`
	TopP        *float64  `json:"top_p,omitempty"`
	Stream      bool      `json:"stream,omitempty"`
	Stop        any       `json:"stop,omitempty"`
	User        string    `json:"user,omitempty"`
}
