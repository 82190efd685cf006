package output

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"

	"github.com/df07/go-cpu-raytracer/pkg/core"
)

// UploadTimeout bounds a single object upload
const UploadTimeout = 30 * time.Second

// S3Config describes an S3-compatible bucket for publishing renders
type S3Config struct {
	AccessKey string
	SecretKey string
	Endpoint  string // Empty uses the AWS endpoint for Region
	Region    string
	Bucket    string
	CDNURL    string // Public base URL for uploaded objects, optional
	ACL       string // Canned ACL, optional (e.g. "public-read")
}

// Enabled reports whether enough is configured to publish
func (c S3Config) Enabled() bool {
	return c.Bucket != ""
}

// Validate checks that a bucket and region are set
func (c S3Config) Validate() error {
	if c.Bucket == "" {
		return errors.New("S3 bucket is required")
	}
	if c.Region == "" {
		return errors.New("S3 region is required")
	}
	return nil
}

// S3Publisher uploads encoded renders to a bucket
type S3Publisher struct {
	config S3Config
	client s3iface.S3API
	logger core.Logger
}

// NewS3Publisher creates a session for the configured endpoint and a publisher using it
func NewS3Publisher(config S3Config, logger core.Logger) (*S3Publisher, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	awsConfig := &aws.Config{
		Region:           aws.String(config.Region),
		S3ForcePathStyle: aws.Bool(true),
	}
	if config.AccessKey != "" {
		awsConfig.Credentials = credentials.NewStaticCredentials(config.AccessKey, config.SecretKey, "")
	}
	if config.Endpoint != "" {
		awsConfig.Endpoint = aws.String(config.Endpoint)
	}

	sess, err := session.NewSession(awsConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create S3 session: %w", err)
	}

	return NewS3PublisherWithClient(config, s3.New(sess), logger), nil
}

// NewS3PublisherWithClient creates a publisher around an existing S3 client
func NewS3PublisherWithClient(config S3Config, client s3iface.S3API, logger core.Logger) *S3Publisher {
	if logger == nil {
		logger = core.NopLogger{}
	}
	return &S3Publisher{config: config, client: client, logger: logger}
}

// Publish uploads PNG data under key and returns its public URL
func (p *S3Publisher) Publish(ctx context.Context, key string, data []byte) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, UploadTimeout)
	defer cancel()

	size := int64(len(data))
	input := &s3.PutObjectInput{
		Bucket:        aws.String(p.config.Bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(size),
		ContentType:   aws.String("image/png"),
	}
	if p.config.ACL != "" {
		input.ACL = aws.String(p.config.ACL)
	}

	if _, err := p.client.PutObjectWithContext(ctx, input); err != nil {
		return "", fmt.Errorf("failed to upload %s: %w", key, err)
	}

	p.logger.Printf("Uploaded %s to S3 (%d bytes)\n", key, size)
	return p.URL(key), nil
}

// URL returns the public URL of key, or an s3:// URL when no CDN is configured
func (p *S3Publisher) URL(key string) string {
	if p.config.CDNURL == "" {
		return fmt.Sprintf("s3://%s/%s", p.config.Bucket, key)
	}
	return strings.TrimRight(p.config.CDNURL, "/") + "/" + key
}
