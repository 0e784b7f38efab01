package storage

import (
	"bytes"
	"context"
	"io"
	"net/url"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/deckforge/deckforge/pkg/errors"
)

// S3Store keeps archives as S3 objects.
type S3Store struct {
	client *s3.Client
	bucket string
}

// NewS3Store wraps an existing client.
func NewS3Store(client *s3.Client, bucket string) *S3Store {
	return &S3Store{client: client, bucket: bucket}
}

// resolveS3 interprets s3://bucket/key... URIs. Region, endpoint, and
// addressing style come from [Config].
func resolveS3(ctx context.Context, u *url.URL, cfg Config) (Store, string, error) {
	bucket := u.Host
	key := strings.TrimPrefix(u.Path, "/")
	if bucket == "" || key == "" {
		return nil, "", errors.New(errors.ErrCodeInvalidInput, "s3 uri needs bucket and key: %s", u.String())
	}

	var loadOpts []func(*awsconfig.LoadOptions) error
	if cfg.S3Region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(cfg.S3Region))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, "", errors.Wrap(errors.ErrCodeStorage, err, "load aws config")
	}

	var s3Opts []func(*s3.Options)
	if cfg.S3Endpoint != "" {
		s3Opts = append(s3Opts, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(cfg.S3Endpoint)
		})
	}
	if cfg.S3ForcePathStyle {
		s3Opts = append(s3Opts, func(o *s3.Options) {
			o.UsePathStyle = true
		})
	}

	return NewS3Store(s3.NewFromConfig(awsCfg, s3Opts...), bucket), key, nil
}

func (s *S3Store) ReadBytes(ctx context.Context, key string) ([]byte, error) {
	resp, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		if isS3NotFound(err) {
			return nil, errors.New(errors.ErrCodeNotFound, "no such object: s3://%s/%s", s.bucket, key)
		}
		return nil, errors.Wrap(errors.ErrCodeStorage, err, "s3 get %s", key)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStorage, err, "read s3 object %s", key)
	}
	return data, nil
}

func (s *S3Store) WriteBytes(ctx context.Context, key string, data []byte) error {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
		Body:   bytes.NewReader(data),
	})
	if err != nil {
		return errors.Wrap(errors.ErrCodeStorage, err, "s3 put %s", key)
	}
	return nil
}

func (s *S3Store) Close() error { return nil }

func isS3NotFound(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "NoSuchKey") ||
		strings.Contains(msg, "NotFound") ||
		strings.Contains(msg, "404")
}
