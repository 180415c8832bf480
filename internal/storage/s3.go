package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3Config holds settings for an S3-compatible backend (AWS S3, MinIO).
type S3Config struct {
	User         string
	Password     string
	Bucket       string
	Region       string
	BaseEndpoint string
	// PublicBaseURL is the URL prefix objects are served from. Empty means
	// path-style addressing under BaseEndpoint.
	PublicBaseURL string
}

// S3Store implements ObjectStore over an S3-compatible backend.
type S3Store struct {
	client *s3.Client
	cfg    S3Config
}

// NewS3Store builds an S3 client with static credentials and a custom base
// endpoint (MinIO-compatible).
func NewS3Store(ctx context.Context, c S3Config) (*S3Store, error) {
	awsCfg, err := config.LoadDefaultConfig(ctx,
		config.WithRegion(c.Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			c.User, c.Password, "",
		)))
	if err != nil {
		return nil, fmt.Errorf("loading aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if c.BaseEndpoint != "" {
			o.BaseEndpoint = aws.String(c.BaseEndpoint)
			o.UsePathStyle = true
		}
	})

	return &S3Store{client: client, cfg: c}, nil
}

func (s *S3Store) Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.cfg.Bucket),
		Key:           aws.String(key),
		Body:          r,
		ContentLength: aws.Int64(size),
		ContentType:   aws.String(contentType),
	})
	if err != nil {
		return fmt.Errorf("putting %s: %w", key, err)
	}
	return nil
}

func (s *S3Store) PublicURL(_ context.Context, key string) (string, error) {
	base := s.cfg.PublicBaseURL
	if base == "" {
		base = strings.TrimSuffix(s.cfg.BaseEndpoint, "/") + "/" + s.cfg.Bucket
	}
	if base == "" || base == "/"+s.cfg.Bucket {
		return "", fmt.Errorf("no public base url configured for key %s", key)
	}
	return strings.TrimSuffix(base, "/") + "/" + key, nil
}

func (s *S3Store) Delete(ctx context.Context, keys ...string) error {
	var errs []error
	for _, key := range keys {
		_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
			Bucket: aws.String(s.cfg.Bucket),
			Key:    aws.String(key),
		})
		if err != nil {
			errs = append(errs, fmt.Errorf("deleting %s: %w", key, err))
		}
	}
	return errors.Join(errs...)
}
