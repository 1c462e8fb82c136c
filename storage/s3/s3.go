package s3

import (
	"context"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/kbukum/dataflow/logger"
	"github.com/kbukum/dataflow/storage"
)

func init() {
	storage.RegisterFactory(storage.ProviderS3, func(raw any, log *logger.Logger) (storage.Storage, error) {
		cfg, err := storage.Resolve[Config](storage.ProviderS3, raw, false)
		if err != nil {
			return nil, err
		}
		log.Debug("s3 storage configured", logger.Fields("location", cfg.Location(), "region", cfg.Region))
		return NewStorage(context.Background(), cfg)
	})
}

// API is the subset of the S3 client used by Storage.
type API interface {
	PutObject(ctx context.Context, in *awss3.PutObjectInput, opts ...func(*awss3.Options)) (*awss3.PutObjectOutput, error)
	GetObject(ctx context.Context, in *awss3.GetObjectInput, opts ...func(*awss3.Options)) (*awss3.GetObjectOutput, error)
	DeleteObject(ctx context.Context, in *awss3.DeleteObjectInput, opts ...func(*awss3.Options)) (*awss3.DeleteObjectOutput, error)
	HeadObject(ctx context.Context, in *awss3.HeadObjectInput, opts ...func(*awss3.Options)) (*awss3.HeadObjectOutput, error)
	ListObjectsV2(ctx context.Context, in *awss3.ListObjectsV2Input, opts ...func(*awss3.Options)) (*awss3.ListObjectsV2Output, error)
}

// Storage keeps objects in one bucket under an optional key prefix.
type Storage struct {
	client API
	bucket string
	prefix string
}

// NewStorage builds a client from the default AWS credential chain, or from
// static keys when both are set. A custom Endpoint (MinIO, LocalStack)
// switches to path-style addressing.
func NewStorage(ctx context.Context, cfg *Config) (*Storage, error) {
	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.Region)}
	if cfg.AccessKey != "" && cfg.SecretKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("s3 storage: load aws config: %w", err)
	}

	client := awss3.NewFromConfig(awsCfg, func(o *awss3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = cfg.Endpoint != "" || cfg.ForcePathStyle
	})
	return NewWithClient(client, cfg.Bucket, cfg.Prefix), nil
}

// NewWithClient creates a Storage over an existing client. Keys are
// prefixed with prefix.
func NewWithClient(client API, bucket, prefix string) *Storage {
	return &Storage{client: client, bucket: bucket, prefix: strings.Trim(prefix, "/")}
}

func (s *Storage) key(path string) *string {
	path = strings.TrimPrefix(path, "/")
	if s.prefix != "" {
		path = s.prefix + "/" + path
	}
	return aws.String(path)
}

func (s *Storage) relative(key string) string {
	if s.prefix == "" {
		return key
	}
	return strings.TrimPrefix(key, s.prefix+"/")
}

func (s *Storage) Upload(ctx context.Context, path string, reader io.Reader) error {
	in := &awss3.PutObjectInput{Bucket: &s.bucket, Key: s.key(path), Body: reader}
	if _, err := s.client.PutObject(ctx, in); err != nil {
		return fmt.Errorf("s3 storage: put %s: %w", path, err)
	}
	return nil
}

func (s *Storage) Download(ctx context.Context, path string) (io.ReadCloser, error) {
	out, err := s.client.GetObject(ctx, &awss3.GetObjectInput{Bucket: &s.bucket, Key: s.key(path)})
	if err != nil {
		var noKey *types.NoSuchKey
		if errors.As(err, &noKey) {
			return nil, fmt.Errorf("%w: %s", storage.ErrNotFound, path)
		}
		return nil, fmt.Errorf("s3 storage: get %s: %w", path, err)
	}
	return out.Body, nil
}

// Delete succeeds for missing keys, as S3 does.
func (s *Storage) Delete(ctx context.Context, path string) error {
	if _, err := s.client.DeleteObject(ctx, &awss3.DeleteObjectInput{Bucket: &s.bucket, Key: s.key(path)}); err != nil {
		return fmt.Errorf("s3 storage: delete %s: %w", path, err)
	}
	return nil
}

// Exists maps a NotFound head response to false.
func (s *Storage) Exists(ctx context.Context, path string) (bool, error) {
	_, err := s.client.HeadObject(ctx, &awss3.HeadObjectInput{Bucket: &s.bucket, Key: s.key(path)})
	var notFound *types.NotFound
	switch {
	case err == nil:
		return true, nil
	case errors.As(err, &notFound):
		return false, nil
	}
	return false, fmt.Errorf("s3 storage: head %s: %w", path, err)
}

// List pages through the keys under prefix. Paths are relative to the
// configured key prefix.
func (s *Storage) List(ctx context.Context, prefix string) ([]storage.FileInfo, error) {
	pages := awss3.NewListObjectsV2Paginator(s.client, &awss3.ListObjectsV2Input{
		Bucket: &s.bucket,
		Prefix: s.key(prefix),
	})

	files := []storage.FileInfo{}
	for pages.HasMorePages() {
		page, err := pages.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("s3 storage: list %q: %w", prefix, err)
		}
		for _, obj := range page.Contents {
			files = append(files, storage.FileInfo{
				Path:         s.relative(aws.ToString(obj.Key)),
				Size:         aws.ToInt64(obj.Size),
				LastModified: aws.ToTime(obj.LastModified),
			})
		}
	}
	slices.SortFunc(files, func(a, b storage.FileInfo) int { return strings.Compare(a.Path, b.Path) })
	return files, nil
}

var _ storage.Storage = (*Storage)(nil)
