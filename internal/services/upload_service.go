package services

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"log"
	"mime"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"github.com/aetherbuildapp/aetherbuild/config"
)

// UploadService stores user files (logos, section images) in S3. When S3 is
// not configured or a put fails, it degrades to an inline data URL so the
// image is never lost, only un-shareable.
type UploadService struct {
	S3Client *s3.Client
	Config   *config.Config
}

func NewUploadService(s3Client *s3.Client, cfg *config.Config) *UploadService {
	return &UploadService{
		S3Client: s3Client,
		Config:   cfg,
	}
}

// Store uploads the file and returns a public URL for it. Implements the
// engine's Uploader interface.
func (s *UploadService) Store(ctx context.Context, filename string, data []byte) (string, error) {
	contentType := contentTypeFor(filename)

	if s.S3Client == nil {
		return dataURL(contentType, data), nil
	}

	ext := filepath.Ext(filename)
	key := fmt.Sprintf("uploads/%s%s", uuid.New().String(), ext)

	_, err := s.S3Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.Config.S3Bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		log.Printf("[Upload] S3 put failed for %s, falling back to data URL: %v", filename, err)
		return dataURL(contentType, data), nil
	}

	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.Config.S3Bucket, s.Config.AWSRegion, key), nil
}

func dataURL(contentType string, data []byte) string {
	return "data:" + contentType + ";base64," + base64.StdEncoding.EncodeToString(data)
}

func contentTypeFor(filename string) string {
	if ct := mime.TypeByExtension(strings.ToLower(filepath.Ext(filename))); ct != "" {
		return ct
	}
	return "application/octet-stream"
}
