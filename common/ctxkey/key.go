package ctxkey

const (
	// Identity is the principal resolved from the bearer token.
	// Set in: middleware/auth.TokenAuth.
	// Read in: controllers for audit records; never the token itself.
	Identity = "identity"

	// RequestModel is the model name from the raw user request, echoed back
	// verbatim in every response.
	// Set in: controller/relay after parsing the body.
	RequestModel = "request_model"

	// ResolvedModel is the Bedrock model ID after static-table resolution.
	// Set in: controller/relay.
	ResolvedModel = "resolved_model"

	// TokenExpiresAt carries the authenticated token's expiry for diagnostics.
	// Set in: middleware/auth.TokenAuth.
	TokenExpiresAt = "token_expires_at"
)
