package model

import (
	"context"
	"encoding/json"
	"time"

	"github.com/Laisky/errors/v2"
	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	smtypes "github.com/aws/aws-sdk-go-v2/service/secretsmanager/types"
	gocache "github.com/patrickmn/go-cache"

	"github.com/fuchsia74/bedrock-gateway/common/config"
)

// NewSecretsClient builds the production Secrets Manager client with the same
// credential rules as the Bedrock client.
func NewSecretsClient(ctx context.Context) (*secretsmanager.Client, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(config.AWSRegion),
	}
	if config.AWSAccessKeyID != "" && config.AWSSecretAccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(config.AWSAccessKeyID, config.AWSSecretAccessKey, "")))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, errors.Wrap(err, "load aws config")
	}
	return secretsmanager.NewFromConfig(awsCfg), nil
}

// secretNameLen is how many leading token characters form the secret name
// suffix. The full token is verified against the stored payload, so the
// prefix only has to be unique enough to address the secret.
const secretNameLen = 12

// SecretsAPI is the slice of the Secrets Manager client the store uses.
type SecretsAPI interface {
	GetSecretValue(ctx context.Context, params *secretsmanager.GetSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error)
}

// SecretsManagerStore resolves bearer tokens against AWS Secrets Manager.
// Successful lookups may be served from a short-TTL in-process cache; expiry
// is always re-checked by the authenticator, so caching can never extend a
// token's lifetime.
type SecretsManagerStore struct {
	api    SecretsAPI
	prefix string
	cache  *gocache.Cache
}

var _ TokenStore = (*SecretsManagerStore)(nil)

// NewSecretsManagerStore builds a token store over the given Secrets Manager
// client. cacheTTL <= 0 disables caching.
func NewSecretsManagerStore(api SecretsAPI, prefix string, cacheTTL time.Duration) *SecretsManagerStore {
	store := &SecretsManagerStore{
		api:    api,
		prefix: prefix,
	}
	if cacheTTL > 0 {
		store.cache = gocache.New(cacheTTL, 2*cacheTTL)
	}
	return store
}

func (s *SecretsManagerStore) secretName(token string) string {
	if len(token) > secretNameLen {
		token = token[:secretNameLen]
	}
	return s.prefix + token
}

// GetToken fetches and verifies the record for token. The secret name only
// encodes a token prefix, so the stored payload must match the full token
// exactly; a mismatch is reported as not found.
func (s *SecretsManagerStore) GetToken(ctx context.Context, token string) (*Token, error) {
	if token == "" {
		return nil, ErrTokenNotFound
	}

	if s.cache != nil {
		if cached, ok := s.cache.Get(token); ok {
			return cached.(*Token), nil
		}
	}

	output, err := s.api.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{
		SecretId: aws.String(s.secretName(token)),
	})
	if err != nil {
		var notFound *smtypes.ResourceNotFoundException
		if errors.As(err, &notFound) {
			return nil, ErrTokenNotFound
		}
		return nil, errors.Wrap(err, "get secret value")
	}
	if output.SecretString == nil {
		return nil, ErrTokenNotFound
	}

	var record Token
	if err := json.Unmarshal([]byte(*output.SecretString), &record); err != nil {
		return nil, errors.Wrap(err, "unmarshal token record")
	}
	if record.Token != token {
		return nil, ErrTokenNotFound
	}

	if s.cache != nil {
		s.cache.SetDefault(token, &record)
	}
	return &record, nil
}
