package files

import (
	"context"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/plalog/plalog/server/hub/internal/config"
	"github.com/plalog/plalog/server/hub/internal/errors"
	nuts "github.com/vaudience/go-nuts"
)

// S3Store uploads export documents to a bucket
type S3Store struct {
	uploader *manager.Uploader
	bucket   string
}

func NewS3Store(client manager.UploadAPIClient, bucket string) (*S3Store, error) {
	if client == nil {
		return nil, fmt.Errorf("invalid s3 upload client")
	}
	if bucket == "" {
		return nil, fmt.Errorf("invalid bucket")
	}
	return &S3Store{uploader: manager.NewUploader(client), bucket: bucket}, nil
}

// NewS3StoreFromConfig loads AWS credentials from the environment. A custom
// endpoint (MinIO, localstack) overrides the default resolver.
func NewS3StoreFromConfig(ctx context.Context, cfg config.S3Config) (*S3Store, error) {
	customResolver := aws.EndpointResolverWithOptionsFunc(func(service, region string, options ...interface{}) (aws.Endpoint, error) {
		if cfg.Endpoint != "" {
			return aws.Endpoint{
				PartitionID:       "aws",
				URL:               cfg.Endpoint,
				SigningRegion:     region,
				HostnameImmutable: true,
			}, nil
		}
		return aws.Endpoint{}, &aws.EndpointNotFoundError{}
	})

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithEndpointResolverWithOptions(customResolver),
		awsconfig.WithRegion(cfg.Region),
	)
	if err != nil {
		return nil, fmt.Errorf("error loading aws config: %w", err)
	}
	if cfg.Endpoint != "" {
		nuts.L.Infof("[S3Store] Using custom s3 endpoint: %s", cfg.Endpoint)
	}
	return NewS3Store(s3.NewFromConfig(awsCfg), cfg.Bucket)
}

// Put uploads body under key and returns an s3:// location
func (s *S3Store) Put(ctx context.Context, key string, body io.Reader) (string, error) {
	_, err := s.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return "", errors.NewUnavailableError("failed to upload export", err)
	}
	return fmt.Sprintf("s3://%s/%s", s.bucket, key), nil
}
