// Package objectstore publishes files to Cloudflare R2 through its S3
// compatible API.
package objectstore

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/gabriel-vasile/mimetype"
)

// Uploader stores an object and hands out a temporary download link.
type Uploader interface {
	Put(ctx context.Context, key string, data []byte) (string, error)
	PresignGet(ctx context.Context, key, filename string) (string, error)
}

// R2Bucket stores objects in a single R2 bucket.
type R2Bucket struct {
	client     *s3.Client
	presigner  *s3.PresignClient
	bucketName string
	presignTTL time.Duration
}

func NewR2Bucket(accountID, bucketName, accessKeyID, secretAccessKey string, presignTTL time.Duration) *R2Bucket {
	endpoint := fmt.Sprintf("https://%s.r2.cloudflarestorage.com", accountID)

	client := s3.New(s3.Options{
		Region:       "auto",
		BaseEndpoint: &endpoint,
		Credentials:  credentials.NewStaticCredentialsProvider(accessKeyID, secretAccessKey, ""),
		UsePathStyle: true,
	})

	if presignTTL <= 0 {
		presignTTL = 15 * time.Minute
	}

	return &R2Bucket{
		client:     client,
		presigner:  s3.NewPresignClient(client),
		bucketName: bucketName,
		presignTTL: presignTTL,
	}
}

func validateKey(key string) error {
	if key == "" {
		return fmt.Errorf("empty storage key")
	}
	for _, segment := range strings.Split(key, "/") {
		if segment == ".." {
			return fmt.Errorf("path traversal detected in storage key")
		}
	}
	return nil
}

// Put uploads data under key and returns the detected content type.
func (b *R2Bucket) Put(ctx context.Context, key string, data []byte) (string, error) {
	if err := validateKey(key); err != nil {
		return "", err
	}
	contentType := mimetype.Detect(data).String()

	_, err := b.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      &b.bucketName,
		Key:         &key,
		Body:        bytes.NewReader(data),
		ContentType: &contentType,
	})
	if err != nil {
		return "", fmt.Errorf("r2 put object failed: %w", err)
	}
	return contentType, nil
}

// PresignGet returns a download URL that saves the object as filename.
func (b *R2Bucket) PresignGet(ctx context.Context, key, filename string) (string, error) {
	if err := validateKey(key); err != nil {
		return "", err
	}
	disposition := fmt.Sprintf("attachment; filename=%q", filename)
	result, err := b.presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket:                     &b.bucketName,
		Key:                        &key,
		ResponseContentDisposition: &disposition,
	}, s3.WithPresignExpires(b.presignTTL))
	if err != nil {
		return "", fmt.Errorf("r2 presign failed: %w", err)
	}
	return result.URL, nil
}
