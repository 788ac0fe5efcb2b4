// Package archive copies rendered documents to S3-compatible object storage
// (AWS S3, Cloudflare R2, MinIO).
package archive

import (
	"bytes"
	"context"
	"fmt"
	"path"

	"stock-backend/internal/config"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// putObjectAPI is the slice of the S3 client the archive uses
type putObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Object describes an uploaded document
type Object struct {
	Bucket string `json:"bucket"`
	Key    string `json:"key"`
	Size   int    `json:"size"`
}

type S3Archive struct {
	client putObjectAPI
	bucket string
	prefix string
}

// NewS3Archive builds a client from cfg. Static keys are used when set,
// otherwise the default AWS credential chain applies.
func NewS3Archive(ctx context.Context, cfg config.ArchiveConfig) (*S3Archive, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}
	if cfg.AccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKey,
			cfg.SecretKey,
			"",
		)))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("configure archive client: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	return &S3Archive{client: client, bucket: cfg.Bucket, prefix: cfg.Prefix}, nil
}

// Key is where a document of the given kind is stored, e.g. invoices/incoming/inv001.pdf
func (a *S3Archive) Key(kind, filename string) string {
	return path.Join(a.prefix, kind, filename)
}

// Put uploads data under Key(kind, filename), overwriting any earlier copy
func (a *S3Archive) Put(ctx context.Context, kind, filename, contentType string, data []byte) (*Object, error) {
	key := a.Key(kind, filename)
	_, err := a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(a.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return nil, fmt.Errorf("upload %s: %w", key, err)
	}
	return &Object{Bucket: a.bucket, Key: key, Size: len(data)}, nil
}
