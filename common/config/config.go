package config

import (
	"strings"
	"time"

	"github.com/fuchsia74/bedrock-gateway/common/env"
)

var (
	// DebugEnabled toggles verbose structured logging when DEBUG=true.
	DebugEnabled = env.Bool("DEBUG", false)

	// ServerPort overrides the --port flag when running inside container or PaaS environments.
	ServerPort = strings.TrimSpace(env.String("PORT", ""))
	// GinMode allows forcing Gin into release mode (or other modes) without recompiling.
	GinMode = strings.TrimSpace(env.String("GIN_MODE", ""))

	// AWSRegion selects the region used for both Bedrock and Secrets Manager clients.
	AWSRegion = env.String("AWS_REGION", "us-east-1")
	// AWSAccessKeyID and AWSSecretAccessKey switch the SDK to static credentials when
	// both are set; otherwise the default provider chain applies.
	AWSAccessKeyID     = strings.TrimSpace(env.String("AWS_ACCESS_KEY_ID", ""))
	AWSSecretAccessKey = strings.TrimSpace(env.String("AWS_SECRET_ACCESS_KEY", ""))

	// TokenSecretPrefix is the Secrets Manager namespace under which bearer-token
	// records are stored. The secret name is the prefix followed by the first 12
	// characters of the token.
	TokenSecretPrefix = env.String("TOKEN_SECRET_PREFIX", "sbc/tokens/")
	// TokenCacheTTL bounds how long a resolved token record may be served from the
	// in-process cache. Expiry is still re-checked on every request, so the cache
	// never extends a token's lifetime. Zero disables caching.
	TokenCacheTTL = time.Duration(env.Int("TOKEN_CACHE_TTL_SECONDS", 60)) * time.Second

	// DefaultBedrockModel is returned by the resolver when the requested model is
	// neither in the mapping table nor shaped like a Bedrock model ID.
	DefaultBedrockModel = env.String("DEFAULT_BEDROCK_MODEL", "anthropic.claude-4-sonnet-20250514-v1:0")
	// DefaultMaxToken applies when the caller omits max_tokens; Bedrock rejects
	// requests without an explicit limit for some model families.
	DefaultMaxToken = env.Int("DEFAULT_MAX_TOKEN", 1024)

	// RelayTimeout bounds backend Converse calls (seconds) before aborting them.
	RelayTimeout = env.Int("RELAY_TIMEOUT", 300)
	// ShutdownTimeoutSec specifies the graceful shutdown timeout (seconds) for the HTTP server.
	ShutdownTimeoutSec = env.Int("SHUTDOWN_TIMEOUT", 30)
)
