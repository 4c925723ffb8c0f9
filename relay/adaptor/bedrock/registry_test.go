package bedrock

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestResolveModelID(t *testing.T) {
	const fallback = "anthropic.claude-4-sonnet-20250514-v1:0"

	// Static table hits
	require.Equal(t, "anthropic.claude-4-sonnet-20250514-v1:0", ResolveModelID("claude-4-sonnet", fallback))
	require.Equal(t, "anthropic.claude-4-sonnet-20250514-v1:0", ResolveModelID("gpt-4o", fallback))
	require.Equal(t, "anthropic.claude-3-5-haiku-20241022-v1:0", ResolveModelID("gpt-3.5-turbo", fallback))
	require.Equal(t, "meta.llama3-3-70b-instruct-v1:0", ResolveModelID("llama-3.3-70b", fallback))

	// Already Bedrock-qualified names pass through unchanged
	require.Equal(t, "cohere.command-r-plus-v1:0", ResolveModelID("cohere.command-r-plus-v1:0", fallback))

	// Everything else falls back to the configured default, never fails
	require.Equal(t, fallback, ResolveModelID("some-unknown-model", fallback))
	require.Equal(t, fallback, ResolveModelID("", fallback))
}

func TestModelList(t *testing.T) {
	models := ModelList()
	require.Len(t, models, len(ModelIDMap))
	require.True(t, sort.StringsAreSorted(models))
	for _, name := range models {
		require.NotEmpty(t, ModelIDMap[name])
	}
}
