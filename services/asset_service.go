// File: /services/asset_service.go
package services

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"net/url"
	"path"
	"strings"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"wavelink-api/config"
)

// AssetStore is the collaborator contract for binary assets. Store
// returns a stable URL; Delete is keyed by that URL and is best-effort.
type AssetStore interface {
	Store(ctx context.Context, dataURL string) (string, error)
	Delete(ctx context.Context, assetURL string) error
}

const maxImageSize = 5 * 1024 * 1024 // 5MB

var imageExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// AssetService stores images in an S3-compatible object store. Clients
// submit images as base64 data URLs; the stored object's URL is what
// gets embedded in user and message records.
type AssetService struct {
	client *minio.Client
	bucket string
}

func NewAssetService(cfg *config.Config) (*AssetService, error) {
	client, err := minio.New(cfg.MinioEndpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.MinioAccessKey, cfg.MinioSecretKey, ""),
		Secure: cfg.MinioUseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to object storage: %w", err)
	}

	service := &AssetService{client: client, bucket: cfg.MinioBucket}
	if err := service.ensureBucket(context.Background()); err != nil {
		return nil, err
	}
	return service, nil
}

func (s *AssetService) ensureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket: %w", err)
	}
	if exists {
		return nil
	}
	if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{}); err != nil {
		return fmt.Errorf("failed to create bucket: %w", err)
	}
	return nil
}

// Store decodes a base64 data URL, validates it, and uploads the image.
func (s *AssetService) Store(ctx context.Context, dataURL string) (string, error) {
	contentType, raw, err := decodeDataURL(dataURL)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrValidation, err)
	}

	ext, ok := imageExtensions[contentType]
	if !ok {
		return "", fmt.Errorf("%w: unsupported image type %s", ErrValidation, contentType)
	}
	if len(raw) > maxImageSize {
		return "", fmt.Errorf("%w: image exceeds %d bytes", ErrValidation, maxImageSize)
	}

	objectName := uuid.New().String() + ext
	_, err = s.client.PutObject(ctx, s.bucket, objectName, bytes.NewReader(raw), int64(len(raw)),
		minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return "", fmt.Errorf("%w: failed to store image: %v", ErrDependency, err)
	}

	return fmt.Sprintf("%s/%s/%s", s.client.EndpointURL(), s.bucket, objectName), nil
}

// Delete removes the object behind assetURL. The object key is derived
// from the URL path, so any URL previously returned by Store works.
func (s *AssetService) Delete(ctx context.Context, assetURL string) error {
	objectName, err := ObjectNameFromURL(assetURL)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}

	if err := s.client.RemoveObject(ctx, s.bucket, objectName, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("%w: failed to delete image: %v", ErrDependency, err)
	}
	return nil
}

// ObjectNameFromURL extracts the stored object's key from its URL.
func ObjectNameFromURL(assetURL string) (string, error) {
	parsed, err := url.Parse(assetURL)
	if err != nil {
		return "", err
	}
	name := path.Base(parsed.Path)
	if name == "." || name == "/" || name == "" {
		return "", fmt.Errorf("no object name in url %q", assetURL)
	}
	return name, nil
}

// decodeDataURL splits "data:image/png;base64,...." into content type
// and raw bytes.
func decodeDataURL(dataURL string) (string, []byte, error) {
	if !strings.HasPrefix(dataURL, "data:") {
		return "", nil, fmt.Errorf("not a data url")
	}

	meta, encoded, found := strings.Cut(dataURL[len("data:"):], ",")
	if !found {
		return "", nil, fmt.Errorf("malformed data url")
	}

	contentType := meta
	if idx := strings.Index(meta, ";"); idx >= 0 {
		contentType = meta[:idx]
		if !strings.Contains(meta[idx:], "base64") {
			return "", nil, fmt.Errorf("unsupported data url encoding")
		}
	}

	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", nil, fmt.Errorf("invalid base64 payload: %v", err)
	}
	return contentType, raw, nil
}
