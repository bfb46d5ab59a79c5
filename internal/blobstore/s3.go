package blobstore

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	smithyhttp "github.com/aws/smithy-go/transport/http"
)

// S3BlobStore stores blob content as objects in an S3 bucket, keyed by
// <prefix>/<shard>/<hash>. The teacher repo only stubbed this backend
// ("s3 vault not yet implemented"); this is a full implementation using
// the same aws-sdk-go-v2 surface the teacher's go.mod already pulled in.
type S3BlobStore struct {
	client   *s3.Client
	uploader *manager.Uploader
	bucket   string
	prefix   string
}

// S3Options configures an S3BlobStore.
type S3Options struct {
	Bucket          string
	Prefix          string
	Region          string
	AccessKeyID     string // optional; empty uses the default credential chain
	SecretAccessKey string
	Endpoint        string // optional; for S3-compatible services
}

// NewS3BlobStore creates a blob store backed by an S3 bucket.
func NewS3BlobStore(ctx context.Context, opts S3Options) (*S3BlobStore, error) {
	if opts.Bucket == "" {
		return nil, fmt.Errorf("s3 blob store requires a bucket")
	}

	loadOpts := []func(*awsconfig.LoadOptions) error{}
	if opts.Region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(opts.Region))
	}
	if opts.AccessKeyID != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(opts.AccessKeyID, opts.SecretAccessKey, ""),
		))
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("loading aws config: %w", err)
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
			o.UsePathStyle = true
		}
	})

	return &S3BlobStore{
		client:   client,
		uploader: manager.NewUploader(client),
		bucket:   opts.Bucket,
		prefix:   opts.Prefix,
	}, nil
}

func (s *S3BlobStore) key(hash string) string {
	dir, name := shardPath(hash)
	if s.prefix == "" {
		return dir + "/" + name
	}
	return s.prefix + "/" + dir + "/" + name
}

// Put uploads content under the given hash. Idempotent: if the object
// already exists, r is drained and discarded without re-uploading.
func (s *S3BlobStore) Put(hash string, r io.Reader, size int64) error {
	ctx := context.Background()
	key := s.key(hash)

	exists, err := s.Has(hash)
	if err != nil {
		return err
	}
	if exists {
		if _, err := io.Copy(io.Discard, r); err != nil {
			return fmt.Errorf("reading content for %s: %w", hash, err)
		}
		return nil
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("reading content for %s: %w", hash, err)
	}
	if int64(len(data)) != size {
		return fmt.Errorf("size mismatch for %s: expected %d bytes, got %d", hash, size, len(data))
	}

	_, err = s.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
		Body:   bytes.NewReader(data),
	})
	if err != nil {
		return fmt.Errorf("uploading blob %s: %w", hash, err)
	}
	return nil
}

// Get downloads content by hash and writes it to w.
func (s *S3BlobStore) Get(hash string, w io.Writer) error {
	ctx := context.Background()
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(hash)),
	})
	if err != nil {
		var nsk *smithyhttp.ResponseError
		if errors.As(err, &nsk) && nsk.HTTPStatusCode() == 404 {
			return fmt.Errorf("blob not found: %s", hash)
		}
		return fmt.Errorf("downloading blob %s: %w", hash, err)
	}
	defer out.Body.Close()

	if _, err := io.Copy(w, out.Body); err != nil {
		return fmt.Errorf("reading blob %s: %w", hash, err)
	}
	return nil
}

// Has reports whether an object with the given hash exists.
func (s *S3BlobStore) Has(hash string) (bool, error) {
	ctx := context.Background()
	_, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(hash)),
	})
	if err == nil {
		return true, nil
	}
	var respErr *smithyhttp.ResponseError
	if errors.As(err, &respErr) && respErr.HTTPStatusCode() == 404 {
		return false, nil
	}
	return false, fmt.Errorf("checking blob %s: %w", hash, err)
}

// ValidateSetup verifies the bucket is reachable.
func (s *S3BlobStore) ValidateSetup() error {
	ctx := context.Background()
	_, err := s.client.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(s.bucket),
	})
	if err != nil {
		return fmt.Errorf("s3 bucket %q not accessible: %w", s.bucket, err)
	}
	return nil
}

var _ BlobStore = (*S3BlobStore)(nil)
