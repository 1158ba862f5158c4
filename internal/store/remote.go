package store

import (
	"bytes"
	"context"
	"errors"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// s3API is the subset of *s3.Client this package depends on, narrowed so
// tests can substitute a fake without standing up a real bucket.
type s3API interface {
	GetObject(ctx context.Context, in *s3.GetObjectInput, opts ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	PutObject(ctx context.Context, in *s3.PutObjectInput, opts ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, opts ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// RemoteStore is the remote object-store tier: every operation maps onto
// GET/PUT/DELETE of an object named by the physical key in one
// configured bucket. It is a thin adapter -- the client's credentials
// and region are supplied externally at construction.
type RemoteStore struct {
	client s3API
	bucket string
}

// NewRemoteStore wraps an already-configured S3 client, targeting bucket
// for every object this tier reads or writes.
func NewRemoteStore(client *s3.Client, bucket string) *RemoteStore {
	return &RemoteStore{client: client, bucket: bucket}
}

func (r *RemoteStore) Get(key string) ([]byte, error) {
	out, err := r.client.GetObject(context.Background(), &s3.GetObjectInput{
		Bucket: aws.String(r.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var nsk *types.NoSuchKey
		if errors.As(err, &nsk) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	defer out.Body.Close()
	return io.ReadAll(out.Body)
}

func (r *RemoteStore) Put(key string, value []byte) error {
	_, err := r.client.PutObject(context.Background(), &s3.PutObjectInput{
		Bucket: aws.String(r.bucket),
		Key:    aws.String(key),
		Body:   bytes.NewReader(value),
	})
	return err
}

func (r *RemoteStore) Delete(key string) error {
	_, err := r.client.DeleteObject(context.Background(), &s3.DeleteObjectInput{
		Bucket: aws.String(r.bucket),
		Key:    aws.String(key),
	})
	return err
}
