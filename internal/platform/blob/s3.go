package blob

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"

	"github.com/phrazzld/notekeeper-api/internal/config"
)

// S3Store implements the Store interface against S3 or an S3-compatible
// store (MinIO, LocalStack). Each container maps to a bucket. The underlying
// client is documented as safe for concurrent use, which the archive
// pipeline relies on.
type S3Store struct {
	client   *s3.Client
	uploader *manager.Uploader
}

// NewS3Store creates an S3-backed object store from the storage configuration.
func NewS3Store(ctx context.Context, cfg config.StorageConfig) (*S3Store, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}

	if cfg.AccessKeyID != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = cfg.ForcePathStyle
	})

	return &S3Store{
		client:   client,
		uploader: manager.NewUploader(client),
	}, nil
}

var _ Store = (*S3Store)(nil)

// EnsureContainer creates the bucket if it does not exist. Concurrent
// creation races resolve to "already exists", which is treated as success.
func (s *S3Store) EnsureContainer(ctx context.Context, name string) error {
	_, err := s.client.CreateBucket(ctx, &s3.CreateBucketInput{
		Bucket: aws.String(name),
	})
	if err != nil {
		var owned *types.BucketAlreadyOwnedByYou
		var exists *types.BucketAlreadyExists
		if errors.As(err, &owned) || errors.As(err, &exists) {
			return nil
		}
		return fmt.Errorf("failed to create container %s: %w", name, err)
	}
	return nil
}

// ContainerExists reports whether the bucket exists.
func (s *S3Store) ContainerExists(ctx context.Context, name string) (bool, error) {
	_, err := s.client.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(name),
	})
	if err != nil {
		if isNotFound(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to check container %s: %w", name, err)
	}
	return true, nil
}

// List walks the bucket with the ListObjectsV2 paginator, resolving each
// object's content type with a HeadObject call. Any page or head failure
// aborts the whole listing. S3 does not surface soft-deleted objects in
// listings, so Deleted is always false here.
func (s *S3Store) List(ctx context.Context, container string, includeDeleted bool) ([]ObjectInfo, error) {
	paginator := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(container),
	})

	var infos []ObjectInfo
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			if isNoSuchBucket(err) {
				return nil, fmt.Errorf("%w: %s", ErrContainerNotFound, container)
			}
			return nil, fmt.Errorf("failed to list container %s: %w", container, err)
		}

		for _, obj := range page.Contents {
			head, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
				Bucket: aws.String(container),
				Key:    obj.Key,
			})
			if err != nil {
				return nil, fmt.Errorf("failed to describe object %s/%s: %w",
					container, aws.ToString(obj.Key), err)
			}

			info := ObjectInfo{
				Key:         aws.ToString(obj.Key),
				Size:        aws.ToInt64(obj.Size),
				ContentType: aws.ToString(head.ContentType),
			}
			if obj.LastModified != nil {
				info.CreatedAt = *obj.LastModified
				info.LastModified = *obj.LastModified
			}
			infos = append(infos, info)
		}
	}

	return infos, nil
}

// Get opens a read stream for an object and reports its content type.
func (s *S3Store) Get(ctx context.Context, container, key string) (io.ReadCloser, string, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(container),
		Key:    aws.String(key),
	})
	if err != nil {
		var noKey *types.NoSuchKey
		if errors.As(err, &noKey) || isNoSuchBucket(err) || isNotFound(err) {
			return nil, "", fmt.Errorf("%w: %s/%s", ErrObjectNotFound, container, key)
		}
		return nil, "", fmt.Errorf("failed to get object %s/%s: %w", container, key, err)
	}

	return out.Body, aws.ToString(out.ContentType), nil
}

// Put uploads an object via the transfer manager, replacing any existing
// object at that key. Large bodies are uploaded in parts.
func (s *S3Store) Put(ctx context.Context, container, key string, r io.Reader, size int64, contentType string) error {
	_, err := s.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(container),
		Key:         aws.String(key),
		Body:        r,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return fmt.Errorf("failed to put object %s/%s: %w", container, key, err)
	}
	return nil
}

// DeleteObject removes an object if it exists. S3 deletes are idempotent;
// a missing bucket is also treated as success.
func (s *S3Store) DeleteObject(ctx context.Context, container, key string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(container),
		Key:    aws.String(key),
	})
	if err != nil {
		if isNoSuchBucket(err) {
			return nil
		}
		return fmt.Errorf("failed to delete object %s/%s: %w", container, key, err)
	}
	return nil
}

// DeleteContainer empties the bucket and removes it. A missing bucket is
// treated as success.
func (s *S3Store) DeleteContainer(ctx context.Context, name string) error {
	paginator := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(name),
	})

	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			if isNoSuchBucket(err) {
				return nil
			}
			return fmt.Errorf("failed to list container %s for deletion: %w", name, err)
		}

		if len(page.Contents) == 0 {
			continue
		}

		objects := make([]types.ObjectIdentifier, 0, len(page.Contents))
		for _, obj := range page.Contents {
			objects = append(objects, types.ObjectIdentifier{Key: obj.Key})
		}

		_, err = s.client.DeleteObjects(ctx, &s3.DeleteObjectsInput{
			Bucket: aws.String(name),
			Delete: &types.Delete{Objects: objects, Quiet: aws.Bool(true)},
		})
		if err != nil {
			return fmt.Errorf("failed to empty container %s: %w", name, err)
		}
	}

	_, err := s.client.DeleteBucket(ctx, &s3.DeleteBucketInput{
		Bucket: aws.String(name),
	})
	if err != nil {
		if isNoSuchBucket(err) {
			return nil
		}
		return fmt.Errorf("failed to delete container %s: %w", name, err)
	}
	return nil
}

// isNotFound reports whether the error is a generic S3 404.
func isNotFound(err error) bool {
	var notFound *types.NotFound
	if errors.As(err, &notFound) {
		return true
	}
	var apiErr smithy.APIError
	return errors.As(err, &apiErr) && apiErr.ErrorCode() == "NotFound"
}

// isNoSuchBucket reports whether the error indicates a missing bucket.
func isNoSuchBucket(err error) bool {
	var noBucket *types.NoSuchBucket
	if errors.As(err, &noBucket) {
		return true
	}
	var apiErr smithy.APIError
	return errors.As(err, &apiErr) && apiErr.ErrorCode() == "NoSuchBucket"
}
