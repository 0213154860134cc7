package service

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"github.com/pageza/foodgram/backend/config"
	"github.com/pageza/foodgram/backend/internal/logging"
)

// ImageStore persists uploaded images and returns their public URL.
type ImageStore interface {
	Put(ctx context.Context, key string, data []byte, contentType string) (string, error)
}

// S3PutAPI is the part of the S3 client used for uploads.
type S3PutAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3ImageStore uploads images to a bucket.
type S3ImageStore struct {
	client  S3PutAPI
	bucket  string
	baseURL string
}

// NewS3ImageStore serves uploaded objects from the bucket's virtual-hosted
// AWS URL.
func NewS3ImageStore(client S3PutAPI, bucket string) *S3ImageStore {
	return &S3ImageStore{client: client, bucket: bucket, baseURL: fmt.Sprintf("https://%s.s3.amazonaws.com", bucket)}
}

// NewS3ImageStoreFromConfig wraps the client built by config.NewS3Config.
func NewS3ImageStoreFromConfig(cfg *config.S3Config) *S3ImageStore {
	store := NewS3ImageStore(cfg.Client, cfg.BucketName)
	if cfg.PublicBaseURL != "" {
		store.baseURL = cfg.PublicBaseURL
	}
	return store
}

// Put uploads data and returns the public URL.
func (s *S3ImageStore) Put(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload to S3: %w", err)
	}

	publicURL := s.baseURL + "/" + key
	logging.Ctx(ctx).Debug().Str("url", publicURL).Msg("uploaded image to S3")
	return publicURL, nil
}

var imageExtensions = map[string]string{
	"image/png":  "png",
	"image/jpeg": "jpg",
	"image/gif":  "gif",
	"image/webp": "webp",
}

// DecodeDataURI parses "data:image/<type>;base64,<payload>".
func DecodeDataURI(uri string) (data []byte, contentType string, err error) {
	rest, ok := strings.CutPrefix(uri, "data:")
	if !ok {
		return nil, "", invalid("image", "expected a data URI")
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return nil, "", invalid("image", "malformed data URI")
	}
	contentType, enc, _ := strings.Cut(meta, ";")
	if enc != "base64" {
		return nil, "", invalid("image", "data URI must be base64 encoded")
	}
	if _, known := imageExtensions[contentType]; !known {
		return nil, "", invalid("image", "unsupported image type %q", contentType)
	}
	data, err = base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, "", invalid("image", "invalid base64 payload")
	}
	if len(data) == 0 {
		return nil, "", invalid("image", "empty image")
	}
	return data, contentType, nil
}

// storeImage uploads data URIs under prefix and passes URLs through. A data
// URI without a configured store is rejected.
func storeImage(ctx context.Context, store ImageStore, prefix, image string) (string, error) {
	if !strings.HasPrefix(image, "data:") {
		if !strings.HasPrefix(image, "http://") && !strings.HasPrefix(image, "https://") {
			return "", invalid("image", "must be a URL or a data URI")
		}
		return image, nil
	}
	data, contentType, err := DecodeDataURI(image)
	if err != nil {
		return "", err
	}
	if store == nil {
		return "", invalid("image", "image uploads are not configured")
	}
	key := fmt.Sprintf("%s/%s.%s", prefix, uuid.NewString(), imageExtensions[contentType])
	return store.Put(ctx, key, data, contentType)
}
