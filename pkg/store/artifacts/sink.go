package artifacts

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog"
)

// Sink stores exported report documents.
type Sink interface {
	// Put writes data under name and returns the location it was stored at.
	Put(ctx context.Context, name string, contentType string, data []byte) (string, error)
}

type localSink struct {
	dir string
}

func NewLocalSink(dir string) (Sink, error) {
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create export directory: %w", err)
	}
	return &localSink{dir: dir}, nil
}

func (s *localSink) Put(ctx context.Context, name string, _ string, data []byte) (string, error) {
	if err := validName(name); err != nil {
		return "", err
	}
	target := filepath.Join(s.dir, name)
	if err := os.WriteFile(target, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", target, err)
	}
	zerolog.Ctx(ctx).Debug().Str("path", target).Int("bytes", len(data)).Msg("report written")
	return target, nil
}

// S3API is the subset of the S3 client the sink uses.
type S3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

type S3Settings struct {
	Bucket  string
	Prefix  string
	Profile string
	Region  string
}

type s3Sink struct {
	client S3API
	bucket string
	prefix string
}

func NewS3Sink(client S3API, settings S3Settings) (Sink, error) {
	if client == nil {
		return nil, fmt.Errorf("s3 client is required")
	}
	if settings.Bucket == "" {
		return nil, fmt.Errorf("bucket is required")
	}
	return &s3Sink{client: client, bucket: settings.Bucket, prefix: settings.Prefix}, nil
}

// NewS3SinkFromConfig builds the client from the shared AWS configuration.
func NewS3SinkFromConfig(ctx context.Context, settings S3Settings) (Sink, error) {
	opts := []func(*config.LoadOptions) error{config.WithDefaultRegion(settings.Region)}
	if settings.Profile != "" {
		opts = append(opts, config.WithSharedConfigProfile(settings.Profile))
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("unable to load AWS SDK config: %w", err)
	}
	return NewS3Sink(s3.NewFromConfig(awsCfg), settings)
}

func (s *s3Sink) Put(ctx context.Context, name string, contentType string, data []byte) (string, error) {
	if err := validName(name); err != nil {
		return "", err
	}
	key := path.Join(s.prefix, name)
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        awssdk.String(s.bucket),
		Key:           awssdk.String(key),
		Body:          bytes.NewReader(data),
		ContentType:   awssdk.String(contentType),
		ContentLength: awssdk.Int64(int64(len(data))),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload s3://%s/%s: %w", s.bucket, key, err)
	}
	location := fmt.Sprintf("s3://%s/%s", s.bucket, key)
	zerolog.Ctx(ctx).Debug().Str("location", location).Int("bytes", len(data)).Msg("report uploaded")
	return location, nil
}

func validName(name string) error {
	if name == "" || strings.ContainsAny(name, `/\`) || name == "." || name == ".." {
		return fmt.Errorf("invalid artifact name: %q", name)
	}
	return nil
}
