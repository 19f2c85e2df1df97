// Package storage puts uploaded files in S3-compatible object storage.
package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/google/uuid"

	"github.com/lumen-ngo/lumen/internal/platform/httpx"
)

// ErrUnknownPrefix rejects uploads to a folder outside the allow list.
var ErrUnknownPrefix = fmt.Errorf("storage: unknown prefix: %w", httpx.ErrValidation)

// AllowedPrefixes are the folders uploads may target.
var AllowedPrefixes = []string{"news", "events", "galleries", "stories", "allies", "resources", "avatars"}

// Object is a file to store.
type Object struct {
	Body        []byte
	Filename    string
	ContentType string
	Prefix      string
	Public      bool
}

// Stored describes a stored object.
type Stored struct {
	Key  string `json:"key"`
	URL  string `json:"url"`
	Size int64  `json:"size"`
}

// PutObjectAPI is the slice of the S3 client used here.
type PutObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Config selects the bucket and how objects are addressed.
type Config struct {
	Bucket        string
	Region        string
	Endpoint      string
	PublicBaseURL string
	PathStyle     bool
	AccessKey     string
	SecretKey     string
}

// S3Uploader stores objects in one bucket.
type S3Uploader struct {
	client  PutObjectAPI
	bucket  string
	baseURL string
	newID   func() string
}

// NewS3Client builds an S3 client from the default AWS chain, overridden by
// static keys and a custom endpoint when configured.
func NewS3Client(ctx context.Context, cfg Config) (*s3.Client, error) {
	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.Region)}
	if cfg.AccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("storage: load aws config: %w", err)
	}
	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = cfg.PathStyle
	}), nil
}

// NewS3Uploader constructs an uploader. Object URLs are built from
// PublicBaseURL, or from the virtual-hosted bucket address otherwise.
func NewS3Uploader(client PutObjectAPI, cfg Config) *S3Uploader {
	base := strings.TrimRight(cfg.PublicBaseURL, "/")
	if base == "" {
		base = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", cfg.Bucket, cfg.Region)
	}
	return &S3Uploader{client: client, bucket: cfg.Bucket, baseURL: base, newID: uuid.NewString}
}

// Upload stores obj under prefix/<uuid><ext>.
func (u *S3Uploader) Upload(ctx context.Context, obj Object) (Stored, error) {
	if !allowedPrefix(obj.Prefix) {
		return Stored{}, ErrUnknownPrefix
	}
	if len(obj.Body) == 0 {
		return Stored{}, fmt.Errorf("storage: empty file: %w", httpx.ErrValidation)
	}
	key := path.Join(obj.Prefix, u.newID()+strings.ToLower(path.Ext(obj.Filename)))
	acl := types.ObjectCannedACLPrivate
	if obj.Public {
		acl = types.ObjectCannedACLPublicRead
	}
	_, err := u.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(u.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(obj.Body),
		ContentType:   aws.String(obj.ContentType),
		ContentLength: aws.Int64(int64(len(obj.Body))),
		ACL:           acl,
		Metadata:      map[string]string{"original-name": path.Base(obj.Filename)},
	})
	if err != nil {
		return Stored{}, errors.Join(httpx.ErrPersistence, fmt.Errorf("storage: put %s: %w", key, err))
	}
	return Stored{Key: key, URL: u.baseURL + "/" + key, Size: int64(len(obj.Body))}, nil
}

func allowedPrefix(prefix string) bool {
	for _, p := range AllowedPrefixes {
		if p == prefix {
			return true
		}
	}
	return false
}
