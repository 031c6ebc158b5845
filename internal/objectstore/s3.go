package objectstore

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/elangabilan/AI-Powered-Railway-Complaint-System/internal/models"
	"github.com/elangabilan/AI-Powered-Railway-Complaint-System/internal/resilience"
	"go.uber.org/zap"
)

type s3Uploader interface {
	Upload(ctx context.Context, input *s3.PutObjectInput, opts ...func(*manager.Uploader)) (*manager.UploadOutput, error)
}

type s3Deleter interface {
	DeleteObject(ctx context.Context, input *s3.DeleteObjectInput, opts ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// S3Config identifies the bucket and credentials.
type S3Config struct {
	Region        string
	AccessKey     string
	SecretKey     string
	Bucket        string
	PublicBaseURL string
	Timeout       time.Duration
}

// S3Store writes objects with the multipart upload manager.
type S3Store struct {
	uploader s3Uploader
	deleter  s3Deleter
	bucket   string
	baseURL  string
	timeout  time.Duration
	executor *resilience.Executor
	logger   *zap.SugaredLogger
	now      func() time.Time
}

// NewS3Store loads AWS configuration and builds an S3 client. Static
// credentials are used when both keys are set, otherwise the default chain.
func NewS3Store(ctx context.Context, cfg S3Config, executor *resilience.Executor, logger *zap.SugaredLogger) (*S3Store, error) {
	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.Region)}
	if cfg.AccessKey != "" && cfg.SecretKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg)
	return newS3Store(manager.NewUploader(client), client, cfg, executor, logger), nil
}

func newS3Store(up s3Uploader, del s3Deleter, cfg S3Config, executor *resilience.Executor, logger *zap.SugaredLogger) *S3Store {
	baseURL := strings.TrimRight(cfg.PublicBaseURL, "/")
	if baseURL == "" {
		baseURL = fmt.Sprintf("https://%s.s3.amazonaws.com", cfg.Bucket)
	}
	return &S3Store{
		uploader: up,
		deleter:  del,
		bucket:   cfg.Bucket,
		baseURL:  baseURL,
		timeout:  cfg.Timeout,
		executor: executor,
		logger:   logger,
		now:      time.Now,
	}
}

// Put uploads file under a fresh key.
func (s *S3Store) Put(ctx context.Context, file models.Upload) (*models.StoredObject, error) {
	key := NewKey(file.Filename, s.now())

	err := run(ctx, s.executor, s.timeout, "s3 put", func(ctx context.Context) error {
		input := &s3.PutObjectInput{
			Bucket: aws.String(s.bucket),
			Key:    aws.String(key),
			Body:   bytes.NewReader(file.Data),
		}
		if file.ContentType != "" {
			input.ContentType = aws.String(file.ContentType)
		}
		_, err := s.uploader.Upload(ctx, input)
		return err
	})
	if err != nil {
		s.logger.Errorw("S3 upload failed", "bucket", s.bucket, "key", key, "error", err)
		return nil, models.WrapError(models.ErrStorage, "put object", err)
	}

	s.logger.Infow("Evidence uploaded", "bucket", s.bucket, "key", key, "size", len(file.Data))
	return &models.StoredObject{Key: key, URL: s.baseURL + "/" + key}, nil
}

// Delete removes key from the bucket.
func (s *S3Store) Delete(ctx context.Context, key string) error {
	err := run(ctx, s.executor, s.timeout, "s3 delete", func(ctx context.Context) error {
		_, err := s.deleter.DeleteObject(ctx, &s3.DeleteObjectInput{
			Bucket: aws.String(s.bucket),
			Key:    aws.String(key),
		})
		return err
	})
	if err != nil {
		return models.WrapError(models.ErrStorage, "delete object", err)
	}
	return nil
}

// run applies the per-call timeout and, when configured, the breaker.
func run(ctx context.Context, exec *resilience.Executor, timeout time.Duration, op string, fn func(context.Context) error) error {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	if exec == nil {
		return fn(ctx)
	}
	return exec.Execute(ctx, op, fn, nil)
}
