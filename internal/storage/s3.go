// Package storage uploads product images to S3-compatible object storage.
package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/url"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"pinvent/internal/config"
)

// ErrDisabled is returned by Upload when no bucket is configured.
var ErrDisabled = errors.New("image storage is not configured")

// ImageStore hosts uploaded images and returns their public URL.
type ImageStore interface {
	Upload(ctx context.Context, fileName, contentType string, data []byte) (string, error)
}

type objectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3ImageStore stores images in a single bucket under a fixed folder.
type S3ImageStore struct {
	client  objectPutter
	bucket  string
	folder  string
	baseURL string
}

// NewS3ImageStore builds an S3 client from cfg. A custom endpoint switches to
// path-style addressing so MinIO and similar servers work.
func NewS3ImageStore(ctx context.Context, cfg config.S3Config) (*S3ImageStore, error) {
	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.Region)}
	if cfg.AccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})
	return newS3ImageStore(client, cfg), nil
}

func newS3ImageStore(client objectPutter, cfg config.S3Config) *S3ImageStore {
	baseURL := cfg.PublicBaseURL
	if baseURL == "" {
		if cfg.Endpoint != "" {
			baseURL = strings.TrimRight(cfg.Endpoint, "/") + "/" + cfg.Bucket
		} else {
			baseURL = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", cfg.Bucket, cfg.Region)
		}
	}
	return &S3ImageStore{
		client:  client,
		bucket:  cfg.Bucket,
		folder:  cfg.Folder,
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

// Upload stores data and returns the public URL of the new object.
func (s *S3ImageStore) Upload(ctx context.Context, fileName, contentType string, data []byte) (string, error) {
	if s == nil || s.bucket == "" {
		return "", ErrDisabled
	}

	key := ObjectKey(s.folder, fileName)
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(int64(len(data))),
	})
	if err != nil {
		return "", fmt.Errorf("put object %s: %w", key, err)
	}
	return s.baseURL + "/" + escapeKey(key), nil
}

// ObjectKey places fileName under folder with a unique prefix.
func ObjectKey(folder, fileName string) string {
	name := path.Base(strings.ReplaceAll(fileName, "\\", "/"))
	if name == "." || name == "/" {
		name = "image"
	}
	return path.Join(folder, uuid.NewString()+"-"+name)
}

func escapeKey(key string) string {
	parts := strings.Split(key, "/")
	for i, p := range parts {
		parts[i] = url.PathEscape(p)
	}
	return strings.Join(parts, "/")
}
