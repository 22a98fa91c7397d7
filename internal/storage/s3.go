package storage

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/dropforge/internal/config"
)

// Client uploads rendered label images to an S3-compatible bucket.
type Client struct {
	s3        *s3.Client
	bucket    string
	publicURL string
	keyPrefix string
	enabled   bool
}

// New builds the storage client. A disabled config yields a client whose
// uploads fail fast, so callers can decide to skip label rendering instead.
func New(cfg *config.StorageConfig) (*Client, error) {
	if cfg == nil || !cfg.Enabled {
		return &Client{enabled: false}, nil
	}

	loadOpts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")),
		awsconfig.WithRegion(cfg.Region),
	}
	if strings.TrimSpace(cfg.Endpoint) != "" {
		endpoint := cfg.Endpoint
		resolver := aws.EndpointResolverWithOptionsFunc(func(service, region string, options ...interface{}) (aws.Endpoint, error) {
			return aws.Endpoint{URL: endpoint}, nil
		})
		loadOpts = append(loadOpts, awsconfig.WithEndpointResolverWithOptions(resolver))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(), loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load storage config failed: %w", err)
	}

	return &Client{
		s3:        s3.NewFromConfig(awsCfg),
		bucket:    cfg.Bucket,
		publicURL: strings.TrimRight(cfg.PublicURL, "/"),
		keyPrefix: strings.Trim(cfg.KeyPrefix, "/"),
		enabled:   true,
	}, nil
}

// Enabled reports whether uploads can succeed.
func (c *Client) Enabled() bool {
	return c != nil && c.enabled
}

// Upload stores an object and returns its public URL.
func (c *Client) Upload(ctx context.Context, key string, body []byte, contentType string) (string, error) {
	if !c.Enabled() {
		return "", fmt.Errorf("storage disabled")
	}
	fullKey := key
	if c.keyPrefix != "" {
		fullKey = c.keyPrefix + "/" + strings.TrimPrefix(key, "/")
	}
	_, err := c.s3.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      &c.bucket,
		Key:         &fullKey,
		Body:        bytes.NewReader(body),
		ContentType: &contentType,
	})
	if err != nil {
		return "", err
	}
	if c.publicURL != "" {
		return c.publicURL + "/" + fullKey, nil
	}
	return fmt.Sprintf("s3://%s/%s", c.bucket, fullKey), nil
}
