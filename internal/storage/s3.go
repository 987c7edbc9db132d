package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"path"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/rs/zerolog/log"
)

// S3API is the subset of the S3 client used by S3Store.
type S3API interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Store keeps objects in an S3 bucket under an optional key prefix.
// Used by the Lambda entry point, whose local disk does not survive between runs.
type S3Store struct {
	client S3API
	bucket string
	prefix string
}

// NewS3Store creates a store writing to bucket. prefix may be empty.
func NewS3Store(client S3API, bucket, prefix string) *S3Store {
	return &S3Store{client: client, bucket: bucket, prefix: prefix}
}

// ObjectKey returns the S3 object key backing key.
func (s *S3Store) ObjectKey(key string) string {
	if s.prefix == "" {
		return key
	}
	return path.Join(s.prefix, key)
}

// Read implements Store.
func (s *S3Store) Read(ctx context.Context, key string) ([]byte, error) {
	objectKey := s.ObjectKey(key)
	log.Debug().Str("bucket", s.bucket).Str("key", objectKey).Msg("Downloading from S3")

	result, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(objectKey),
	})
	if err != nil {
		var noSuchKey *types.NoSuchKey
		var notFound *types.NotFound
		if errors.As(err, &noSuchKey) || errors.As(err, &notFound) {
			return nil, fmt.Errorf("S3 GetObject %s: %w", objectKey, ErrNotExist)
		}
		return nil, fmt.Errorf("S3 GetObject %s: %w", objectKey, err)
	}
	defer result.Body.Close()

	data, err := io.ReadAll(result.Body)
	if err != nil {
		return nil, fmt.Errorf("download %s: %w", objectKey, err)
	}
	return data, nil
}

// Write implements Store. S3 has no directories, so nothing is created besides
// the object itself.
func (s *S3Store) Write(ctx context.Context, key string, data []byte) error {
	objectKey := s.ObjectKey(key)
	contentType := mime.TypeByExtension(path.Ext(key))
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(objectKey),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return fmt.Errorf("failed to upload %s to S3: %w", objectKey, err)
	}

	log.Info().
		Str("bucket", s.bucket).
		Str("key", objectKey).
		Int("bytes", len(data)).
		Msg("Object uploaded to S3")
	return nil
}
