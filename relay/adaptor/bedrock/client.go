package bedrock

import (
	"context"

	"github.com/Laisky/errors/v2"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime/types"

	"github.com/fuchsia74/bedrock-gateway/common/config"
)

// StreamReader is the subset of the SDK's Converse event stream the handlers
// consume. *bedrockruntime.ConverseStreamEventStream satisfies it.
type StreamReader interface {
	Events() <-chan types.ConverseStreamOutput
	Err() error
	Close() error
}

// ConverseAPI abstracts the Bedrock runtime so handlers can be exercised
// against mocks; no retries happen at this layer because not every failure is
// retry-safe (access-denied is permanent).
type ConverseAPI interface {
	Converse(ctx context.Context, input *bedrockruntime.ConverseInput) (*bedrockruntime.ConverseOutput, error)
	ConverseStream(ctx context.Context, input *bedrockruntime.ConverseStreamInput) (StreamReader, error)
}

// Client wraps the real bedrockruntime client behind ConverseAPI.
type Client struct {
	brc *bedrockruntime.Client
}

var _ ConverseAPI = (*Client)(nil)

// NewClient builds the production Bedrock runtime client. Static credentials
// are used when both key halves are configured; otherwise the SDK default
// provider chain applies.
func NewClient(ctx context.Context) (*Client, error) {
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
	return &Client{brc: bedrockruntime.NewFromConfig(awsCfg)}, nil
}

func (c *Client) Converse(ctx context.Context, input *bedrockruntime.ConverseInput) (*bedrockruntime.ConverseOutput, error) {
	return c.brc.Converse(ctx, input)
}

func (c *Client) ConverseStream(ctx context.Context, input *bedrockruntime.ConverseStreamInput) (StreamReader, error) {
	output, err := c.brc.ConverseStream(ctx, input)
	if err != nil {
		return nil, err
	}
	return output.GetStream(), nil
}
