// Package s3 stores archived reports in an S3-compatible bucket.
package s3

import (
	"bytes"
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog"

	"github.com/sinuca-magalhaes/caixa/internal/config"
	"github.com/sinuca-magalhaes/caixa/internal/storage"
)

// PutObjectAPI is the subset of *s3.Client used by Archive.
type PutObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Archive implements storage.Archive on top of S3.
type Archive struct {
	client PutObjectAPI
	bucket string
	logger zerolog.Logger
}

// NewClient builds an S3 client from the archive configuration. Static
// credentials are used when both keys are set; otherwise the default AWS
// credential chain applies.
func NewClient(ctx context.Context, cfg config.ArchiveConfig) (*s3.Client, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = cfg.UsePathStyle
	}), nil
}

// NewArchive creates an Archive writing to bucket.
func NewArchive(client PutObjectAPI, bucket string, logger zerolog.Logger) *Archive {
	return &Archive{
		client: client,
		bucket: bucket,
		logger: logger.With().Str("component", "archive").Str("bucket", bucket).Logger(),
	}
}

// Put uploads body as application/pdf.
func (a *Archive) Put(ctx context.Context, key string, body []byte) error {
	_, err := a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(a.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(body),
		ContentLength: aws.Int64(int64(len(body))),
		ContentType:   aws.String("application/pdf"),
	})
	if err != nil {
		return fmt.Errorf("failed to upload %s: %w", key, err)
	}

	a.logger.Debug().Str("key", key).Int("bytes", len(body)).Msg("report archived")
	return nil
}

// Enabled implements storage.Archive.
func (a *Archive) Enabled() bool {
	return true
}

// Ensure Archive implements storage.Archive.
var _ storage.Archive = (*Archive)(nil)
