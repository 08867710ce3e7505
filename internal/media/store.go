package media

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/dom/vidtube/internal/config"
	"github.com/google/uuid"
	"lukechampine.com/blake3"
)

var (
	ErrEmptyObject = errors.New("media object is empty")
	ErrTooLarge    = errors.New("media object exceeds the upload limit")
	ErrEmptyKey    = errors.New("media key cannot be empty")
)

// Object is a file handed to the store for upload.
type Object struct {
	OwnerID     uuid.UUID
	Folder      string
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

// Store keeps uploaded media and serves it from public URLs.
type Store interface {
	// Upload stores the object and returns its public URL.
	Upload(ctx context.Context, obj Object) (string, error)
	Delete(ctx context.Context, key string) error
	// KeyFromURL maps a URL produced by Upload back to its object key.
	KeyFromURL(url string) (string, bool)
}

// ObjectKey derives a collision-free key for an upload, keeping the
// original extension so browsers pick the right player.
func ObjectKey(obj Object) string {
	seed := obj.OwnerID.String() + obj.Filename + time.Now().Format(time.RFC3339Nano) + uuid.New().String()
	key := fmt.Sprintf("%x%s", blake3.Sum256([]byte(seed)), strings.ToLower(path.Ext(obj.Filename)))
	if obj.Folder != "" {
		key = obj.Folder + "/" + key
	}
	return key
}

// objectAPI is the subset of the S3 client the store uses.
type objectAPI interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// S3Store stores media in an S3-compatible bucket (AWS, R2, MinIO).
type S3Store struct {
	client    objectAPI
	bucket    string
	publicURL string
	maxBytes  int64
}

func NewS3Store(ctx context.Context, cfg config.MediaConfig) (*S3Store, error) {
	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.Region)}
	if cfg.AccessKey != "" && cfg.SecretKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load aws config: %w", err)
	}

	endpoint := strings.TrimRight(cfg.Endpoint, "/")
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
			o.UsePathStyle = true
		}
	})

	publicURL := strings.TrimRight(cfg.PublicURL, "/")
	if publicURL == "" {
		if endpoint != "" {
			publicURL = endpoint + "/" + cfg.Bucket
		} else {
			publicURL = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", cfg.Bucket, cfg.Region)
		}
	}

	return newS3Store(client, cfg.Bucket, publicURL, cfg.MaxUploadBytes), nil
}

func newS3Store(client objectAPI, bucket, publicURL string, maxBytes int64) *S3Store {
	return &S3Store{client: client, bucket: bucket, publicURL: publicURL, maxBytes: maxBytes}
}

func (s *S3Store) Upload(ctx context.Context, obj Object) (string, error) {
	if obj.Body == nil || obj.Size <= 0 {
		return "", ErrEmptyObject
	}
	if s.maxBytes > 0 && obj.Size > s.maxBytes {
		return "", ErrTooLarge
	}

	key := ObjectKey(obj)
	contentType := obj.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          obj.Body,
		ContentLength: aws.Int64(obj.Size),
		ContentType:   aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload %s: %w", key, err)
	}
	return s.publicURL + "/" + key, nil
}

func (s *S3Store) Delete(ctx context.Context, key string) error {
	if key == "" {
		return ErrEmptyKey
	}
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete %s from bucket %s: %w", key, s.bucket, err)
	}
	return nil
}

func (s *S3Store) KeyFromURL(url string) (string, bool) {
	key, ok := strings.CutPrefix(url, s.publicURL+"/")
	if !ok || key == "" {
		return "", false
	}
	return key, true
}
