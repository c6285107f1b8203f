package storage

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

type ObjectStore interface {
	Put(ctx context.Context, key string, contentType string, body []byte) error
	URL(key string) string
}

type S3Config struct {
	Bucket          string
	Region          string
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
}

type S3Store struct {
	client   *s3.Client
	bucket   string
	region   string
	endpoint string
}

// NewS3Store builds a client from static credentials. A custom endpoint
// (MinIO, LocalStack) switches to path-style addressing.
func NewS3Store(cfg S3Config) *S3Store {
	opts := s3.Options{
		Region: cfg.Region,
	}
	if cfg.AccessKeyID != "" {
		opts.Credentials = credentials.NewStaticCredentialsProvider(
			cfg.AccessKeyID,
			cfg.SecretAccessKey,
			"",
		)
	}
	if cfg.Endpoint != "" {
		opts.BaseEndpoint = aws.String(cfg.Endpoint)
		opts.UsePathStyle = true
	}

	return &S3Store{
		client:   s3.New(opts),
		bucket:   cfg.Bucket,
		region:   cfg.Region,
		endpoint: strings.TrimRight(cfg.Endpoint, "/"),
	}
}

func (s *S3Store) Put(ctx context.Context, key string, contentType string, body []byte) error {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return fmt.Errorf("put object %s: %w", key, err)
	}
	return nil
}

func (s *S3Store) URL(key string) string {
	if key == "" {
		return ""
	}
	if s.endpoint != "" {
		return fmt.Sprintf("%s/%s/%s", s.endpoint, s.bucket, key)
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.bucket, s.region, key)
}
