package utils

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// Proof screenshots live in an S3-compatible bucket (Cloudflare R2). The
// stored object URL is what ends up on the task_works.proof_url column.

func getR2Config() (aws.Config, error) {
	accountID := os.Getenv("R2_ACCOUNT_ID")
	accessKey := os.Getenv("R2_ACCESS_KEY_ID")
	secretKey := os.Getenv("R2_SECRET_ACCESS_KEY")

	if accountID == "" || accessKey == "" || secretKey == "" {
		return aws.Config{}, fmt.Errorf("R2_ACCOUNT_ID, R2_ACCESS_KEY_ID or R2_SECRET_ACCESS_KEY is not set")
	}

	cfg, err := config.LoadDefaultConfig(context.TODO(),
		config.WithRegion("auto"), // Required by SDK, R2 ignores this
		config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(accessKey, secretKey, ""),
		),
	)
	if err != nil {
		return aws.Config{}, fmt.Errorf("failed to load R2 config: %w", err)
	}

	return cfg, nil
}

func getR2Client() (*s3.Client, error) {
	accountID := os.Getenv("R2_ACCOUNT_ID")
	if accountID == "" {
		return nil, fmt.Errorf("R2_ACCOUNT_ID is not set")
	}

	cfg, err := getR2Config()
	if err != nil {
		return nil, err
	}

	endpoint := fmt.Sprintf("https://%s.r2.cloudflarestorage.com", accountID)
	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(endpoint)
	})

	return client, nil
}

// UploadProofImage stores a task-work proof screenshot and returns its
// public URL. ext must include the dot (".png").
func UploadProofImage(ctx context.Context, body io.Reader, size int64, contentType, ext string, workerID uint) (string, error) {
	bucket := os.Getenv("R2_BUCKET")
	publicBase := os.Getenv("R2_PUBLIC_BASE_URL")
	if bucket == "" || publicBase == "" {
		return "", fmt.Errorf("R2_BUCKET or R2_PUBLIC_BASE_URL is not set")
	}

	client, err := getR2Client()
	if err != nil {
		return "", err
	}

	key := path.Join("proofs", fmt.Sprintf("%d-%d%s", workerID, time.Now().UnixNano(), ext))

	_, err = client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(bucket),
		Key:           aws.String(key),
		Body:          body,
		ContentLength: aws.Int64(size),
		ContentType:   aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload proof: %w", err)
	}

	return fmt.Sprintf("%s/%s", publicBase, key), nil
}

// DeleteProofImage removes a stored proof object by its key.
func DeleteProofImage(ctx context.Context, key string) error {
	bucket := os.Getenv("R2_BUCKET")
	if bucket == "" {
		return fmt.Errorf("R2_BUCKET is not set")
	}
	client, err := getR2Client()
	if err != nil {
		return err
	}
	_, err = client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	return err
}
