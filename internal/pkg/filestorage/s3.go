package filestorage

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3Config configures an S3 or S3 compatible bucket.
type S3Config struct {
	Bucket    string
	Region    string
	Endpoint  string
	AccessKey string
	SecretKey string
	// PublicURL overrides the URL prefix objects are served under.
	PublicURL string
}

// s3API is the part of the S3 client used here.
type s3API interface {
	PutObject(ctx context.Context, params *awss3.PutObjectInput, optFns ...func(*awss3.Options)) (*awss3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, params *awss3.DeleteObjectInput, optFns ...func(*awss3.Options)) (*awss3.DeleteObjectOutput, error)
}

// S3Storage stores files in an S3 bucket.
type S3Storage struct {
	client  s3API
	bucket  string
	baseURL string
}

// NewS3Storage builds an S3 client from cfg. A custom endpoint switches to
// path style addressing.
func NewS3Storage(ctx context.Context, cfg S3Config) (*S3Storage, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}
	if cfg.AccessKey != "" && cfg.SecretKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load aws config: %w", err)
	}

	var s3Opts []func(*awss3.Options)
	if cfg.Endpoint != "" {
		s3Opts = append(s3Opts, func(o *awss3.Options) {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		})
	}

	return newS3Storage(awss3.NewFromConfig(awsCfg, s3Opts...), cfg), nil
}

func newS3Storage(client s3API, cfg S3Config) *S3Storage {
	baseURL := cfg.PublicURL
	switch {
	case baseURL != "":
	case cfg.Endpoint != "":
		baseURL = strings.TrimRight(cfg.Endpoint, "/") + "/" + cfg.Bucket
	default:
		baseURL = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", cfg.Bucket, cfg.Region)
	}
	return &S3Storage{
		client:  client,
		bucket:  cfg.Bucket,
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

// Save uploads obj and returns its public URL.
func (s *S3Storage) Save(ctx context.Context, obj Object) (string, error) {
	key := objectKey(obj)
	input := &awss3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        obj.Body,
		ContentType: aws.String(obj.ContentType),
	}
	if obj.Size > 0 {
		input.ContentLength = aws.Int64(obj.Size)
	}

	if _, err := s.client.PutObject(ctx, input); err != nil {
		return "", fmt.Errorf("failed to upload object: %w", err)
	}
	return s.baseURL + "/" + key, nil
}

// Delete removes the object behind fileURL. URLs from elsewhere are ignored.
func (s *S3Storage) Delete(ctx context.Context, fileURL string) error {
	key, ok := strings.CutPrefix(fileURL, s.baseURL+"/")
	if !ok || key == "" {
		return nil
	}
	_, err := s.client.DeleteObject(ctx, &awss3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete object: %w", err)
	}
	return nil
}
