// Package s3 provides an S3-backed blobstore.Store for snapshot
// storage on AWS S3 or any S3-compatible object store.
package s3

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/hellblazer/art/blobstore"
)

// Compile-time check to ensure Store satisfies the blobstore interface.
var _ blobstore.Store = (*Store)(nil)

// Store implements blobstore.Store backed by an S3 bucket. Blob names
// become object keys under the configured prefix.
type Store struct {
	client *awss3.Client
	bucket string
	prefix string
}

// Options contains configuration options for the S3 store.
type Options struct {
	// Prefix is prepended to every object key.
	Prefix string
}

// New creates a Store using an existing S3 client.
func New(client *awss3.Client, bucket string, optFns ...func(o *Options)) (*Store, error) {
	if client == nil {
		return nil, fmt.Errorf("s3: nil client")
	}
	if bucket == "" {
		return nil, fmt.Errorf("s3: bucket required")
	}
	opts := Options{}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Store{
		client: client,
		bucket: bucket,
		prefix: opts.Prefix,
	}, nil
}

// NewFromConfig creates a Store using the default AWS configuration
// chain (environment, shared config, instance metadata).
func NewFromConfig(ctx context.Context, bucket string, optFns ...func(o *Options)) (*Store, error) {
	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("s3: failed to load AWS config: %w", err)
	}
	return New(awss3.NewFromConfig(cfg), bucket, optFns...)
}

func (s *Store) key(name string) string {
	return s.prefix + name
}

// Put stores the contents of r under name.
func (s *Store) Put(ctx context.Context, name string, r io.Reader) error {
	_, err := s.client.PutObject(ctx, &awss3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(name)),
		Body:   r,
	})
	if err != nil {
		return fmt.Errorf("s3: put %q: %w", name, err)
	}
	return nil
}

// Get opens the blob with the given name for reading.
func (s *Store) Get(ctx context.Context, name string) (io.ReadCloser, error) {
	out, err := s.client.GetObject(ctx, &awss3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(name)),
	})
	if err != nil {
		var noSuchKey *types.NoSuchKey
		if errors.As(err, &noSuchKey) {
			return nil, fmt.Errorf("%w: %s", blobstore.ErrNotFound, name)
		}
		return nil, fmt.Errorf("s3: get %q: %w", name, err)
	}
	return out.Body, nil
}
