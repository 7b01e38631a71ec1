package service

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/ramsis0710-a11y/MBA-QP-GENERATOR/config"
	"github.com/ramsis0710-a11y/MBA-QP-GENERATOR/render"
)

// Archive stores rendered documents outside the local output directory
type Archive interface {
	Store(ctx context.Context, objectName string, artifact *render.Artifact) (string, error)
	Remove(ctx context.Context, objectName string) error
}

// MinioArchive keeps rendered quality plans in a MinIO bucket
type MinioArchive struct {
	client *minio.Client
	bucket string
	config *config.MinioConfig
}

func NewMinioArchive(cfg *config.MinioConfig) (*MinioArchive, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}

	return &MinioArchive{
		client: client,
		bucket: cfg.Bucket,
		config: cfg,
	}, nil
}

// EnsureBucket creates the bucket if it doesn't exist
func (s *MinioArchive) EnsureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket: %w", err)
	}

	if !exists {
		err = s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{})
		if err != nil {
			return fmt.Errorf("failed to create bucket: %w", err)
		}
	}

	return nil
}

// Store uploads the artifact file and returns a presigned download URL
func (s *MinioArchive) Store(ctx context.Context, objectName string, artifact *render.Artifact) (string, error) {
	f, err := os.Open(artifact.Path)
	if err != nil {
		return "", fmt.Errorf("failed to open artifact: %w", err)
	}
	defer f.Close()

	_, err = s.client.PutObject(ctx, s.bucket, objectName, f, artifact.Size, minio.PutObjectOptions{
		ContentType:        artifact.ContentType,
		ContentDisposition: fmt.Sprintf("attachment; filename=%q", artifact.Name),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload artifact: %w", err)
	}

	return s.PresignedURL(ctx, objectName)
}

// PresignedURL generates a presigned URL for the object with expiration
func (s *MinioArchive) PresignedURL(ctx context.Context, objectName string) (string, error) {
	url, err := s.client.PresignedGetObject(ctx, s.bucket, objectName, s.expiry(), nil)
	if err != nil {
		return "", fmt.Errorf("failed to generate presigned URL: %w", err)
	}

	return url.String(), nil
}

// Remove deletes an archived document
func (s *MinioArchive) Remove(ctx context.Context, objectName string) error {
	err := s.client.RemoveObject(ctx, s.bucket, objectName, minio.RemoveObjectOptions{})
	if err != nil {
		return fmt.Errorf("failed to delete artifact: %w", err)
	}

	return nil
}

func (s *MinioArchive) expiry() time.Duration {
	return time.Duration(s.config.ExpireDays) * 24 * time.Hour
}

// ObjectName is the bucket key of a plan's document
func ObjectName(owner, planID, artifactName string) string {
	return fmt.Sprintf("%s/%s/%s", owner, planID, artifactName)
}
