package storage

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	aws_config "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"github.com/suddernpy/resq/internal/config"
)

// IImageStorage defines the interface for image asset operations.
type IImageStorage interface {
	GeneratePresignedPutURL(ctx context.Context, filename, contentType string) (string, string, error)
	ResolveImageURL(ref string) string
}

// s3Storage implements IImageStorage.
type s3Storage struct {
	cfg           *config.Config
	s3Client      *s3.Client
	presignClient *s3.PresignClient
}

// NewS3Storage creates a new S3 image storage service.
func NewS3Storage(cfg *config.Config) (IImageStorage, error) {
	awsCfg, err := aws_config.LoadDefaultConfig(context.TODO(),
		aws_config.WithRegion(cfg.AwsRegion),
		// Use static credentials from config for simplicity
		// For production, prefer IAM roles or other secure credential methods
		aws_config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AwsAccessKeyID,
			cfg.AwsSecretAccessKey,
			"", // session token
		)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	s3Client := s3.NewFromConfig(awsCfg)
	presignClient := s3.NewPresignClient(s3Client)

	return &s3Storage{
		cfg:           cfg,
		s3Client:      s3Client,
		presignClient: presignClient,
	}, nil
}

// GeneratePresignedPutURL creates a pre-signed URL for uploading a food
// photo. It returns the URL and the generated S3 object key; the key is
// what gets stored on the listing as its image ref.
func (s *s3Storage) GeneratePresignedPutURL(ctx context.Context, filename, contentType string) (string, string, error) {
	objectKey := fmt.Sprintf("rescues/%s_%s", uuid.NewString(), filename)

	expiration := 15 * time.Minute

	presignParams := &s3.PutObjectInput{
		Bucket:      aws.String(s.cfg.AwsS3Bucket),
		Key:         aws.String(objectKey),
		ContentType: aws.String(contentType),
	}

	presignedReq, err := s.presignClient.PresignPutObject(ctx, presignParams, s3.WithPresignExpires(expiration))
	if err != nil {
		return "", "", fmt.Errorf("failed to generate presigned PUT URL for key %s: %w", objectKey, err)
	}

	return presignedReq.URL, objectKey, nil
}

// ResolveImageURL maps a stored image ref to a public URL. An empty ref
// falls back to the placeholder asset.
func (s *s3Storage) ResolveImageURL(ref string) string {
	if ref == "" {
		return s.cfg.ImagePlaceholder
	}
	if strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://") {
		return ref // Telegram bridge stores full URLs
	}
	return strings.TrimSuffix(s.cfg.ImageBaseS3URL, "/") + "/" + ref
}
