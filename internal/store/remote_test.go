package store

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// fakeS3 is an in-memory stand-in for s3API, letting the remote tier's
// logic (absent-mapping, body streaming) be tested without a real bucket.
type fakeS3 struct {
	objects map[string][]byte
}

func newFakeS3() *fakeS3 {
	return &fakeS3{objects: make(map[string][]byte)}
}

func (f *fakeS3) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	val, ok := f.objects[*in.Key]
	if !ok {
		return nil, &types.NoSuchKey{}
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(val))}, nil
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	body, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.objects[*in.Key] = body
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) DeleteObject(_ context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	delete(f.objects, *in.Key)
	return &s3.DeleteObjectOutput{}, nil
}

func newTestRemoteStore() (*RemoteStore, *fakeS3) {
	fake := newFakeS3()
	return &RemoteStore{client: fake, bucket: "test-bucket"}, fake
}

func TestRemoteStorePutGet(t *testing.T) {
	r, _ := newTestRemoteStore()
	if err := r.Put("k", []byte("v")); err != nil {
		t.Fatal(err)
	}
	got, err := r.Get("k")
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "v" {
		t.Fatalf("got %q, want %q", got, "v")
	}
}

func TestRemoteStoreGetMissingMapsToErrNotFound(t *testing.T) {
	r, _ := newTestRemoteStore()
	_, err := r.Get("missing")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestRemoteStoreDelete(t *testing.T) {
	r, fake := newTestRemoteStore()
	_ = r.Put("k", []byte("v"))
	if err := r.Delete("k"); err != nil {
		t.Fatal(err)
	}
	if _, ok := fake.objects["k"]; ok {
		t.Fatalf("expected object removed from backing store")
	}
	if _, err := r.Get("k"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}
