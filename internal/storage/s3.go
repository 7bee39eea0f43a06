package storage

import (
	"context"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// s3API is the subset of the S3 client the storage uses; narrowed for tests.
type s3API interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	HeadObject(ctx context.Context, in *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
	DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
	ListObjectsV2(ctx context.Context, in *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
}

// S3 is a FileStorage backed by an S3-compatible object store (MinIO works).
// Relative paths map directly to object keys.
type S3 struct {
	client s3API
	bucket string
}

// S3Options configures the object store connection.
type S3Options struct {
	// Endpoint is the base endpoint of the store, e.g. a MinIO address.
	Endpoint string
	// Region is the store region.
	Region string
	// Bucket holds the attachment objects.
	Bucket string
	// AccessKey and SecretKey are static credentials.
	AccessKey string
	SecretKey string
}

// NewS3 builds an S3 storage from static credentials and a base endpoint.
func NewS3(ctx context.Context, opts S3Options) (*S3, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(opts.Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			opts.AccessKey,
			opts.SecretKey,
			"",
		)))
	if err != nil {
		return nil, err
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
		}
		o.UsePathStyle = true
	})

	return &S3{client: client, bucket: opts.Bucket}, nil
}

// SaveFile uploads r under the key path. An existing object makes it return
// false; upload failures are swallowed into a false result.
func (s *S3) SaveFile(ctx context.Context, path string, r io.Reader) (bool, error) {
	if path == "" {
		return false, ErrEmptyPath
	}
	if r == nil {
		return false, ErrNilReader
	}

	if exists, _ := s.Exists(ctx, path); exists {
		return false, nil
	}

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(path),
		Body:   r,
	})
	if err != nil {
		return false, nil
	}
	return true, nil
}

// DeleteFile removes the object at path. Object stores have no real folders,
// so the containing-folder hint is a no-op here. Deleting an absent object
// still succeeds.
func (s *S3) DeleteFile(ctx context.Context, path, _ string) (bool, error) {
	if path == "" {
		return false, ErrEmptyPath
	}

	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(path),
	})
	if err != nil {
		return false, nil
	}
	return true, nil
}

// Exists probes for an object at path.
func (s *S3) Exists(ctx context.Context, path string) (bool, error) {
	if path == "" {
		return false, ErrEmptyPath
	}

	_, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(path),
	})
	if err != nil {
		return false, nil
	}
	return true, nil
}

// GetFileInfo reads the object's size from its head. Any failure yields nil.
func (s *S3) GetFileInfo(ctx context.Context, path string) (*Info, error) {
	if path == "" {
		return nil, ErrEmptyPath
	}

	head, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(path),
	})
	if err != nil {
		return nil, nil
	}
	return &Info{Path: path, Size: aws.ToInt64(head.ContentLength)}, nil
}

// GetFileStream opens the object's body for reading. I/O failure yields nil.
func (s *S3) GetFileStream(ctx context.Context, path string) (io.ReadCloser, error) {
	if path == "" {
		return nil, ErrEmptyPath
	}

	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(path),
	})
	if err != nil {
		return nil, nil
	}
	return out.Body, nil
}

// CleanDirectory deletes every object directly under the targetPath prefix.
// The delimiter keeps nested prefixes untouched, matching the non-recursive
// filesystem behavior. No objects under the prefix counts as a missing
// directory.
func (s *S3) CleanDirectory(ctx context.Context, targetPath string) (bool, error) {
	if targetPath == "" {
		return false, ErrEmptyPath
	}

	prefix := strings.TrimSuffix(targetPath, "/") + "/"
	out, err := s.client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
		Bucket:    aws.String(s.bucket),
		Prefix:    aws.String(prefix),
		Delimiter: aws.String("/"),
	})
	if err != nil {
		return false, nil
	}
	if len(out.Contents) == 0 {
		return false, nil
	}

	for _, obj := range out.Contents {
		if _, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
			Bucket: aws.String(s.bucket),
			Key:    obj.Key,
		}); err != nil {
			return false, nil
		}
	}
	return true, nil
}
