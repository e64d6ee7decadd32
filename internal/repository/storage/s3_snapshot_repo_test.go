package storage

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/dafibh/fortuna/fortuna-insights/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeS3 keeps objects in memory
type fakeS3 struct {
	objects       map[string][]byte
	contentTypes  map[string]string
	bucketExists  bool
	headErr       error
	createdBucket string
	putErr        error
}

func newFakeS3() *fakeS3 {
	return &fakeS3{objects: map[string][]byte{}, contentTypes: map[string]string{}, bucketExists: true}
}

func (f *fakeS3) PutObject(ctx context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.putErr != nil {
		return nil, f.putErr
	}
	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.objects[aws.ToString(in.Key)] = data
	f.contentTypes[aws.ToString(in.Key)] = aws.ToString(in.ContentType)
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) GetObject(ctx context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	data, ok := f.objects[aws.ToString(in.Key)]
	if !ok {
		return nil, &types.NoSuchKey{}
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(data))}, nil
}

func (f *fakeS3) HeadBucket(ctx context.Context, in *s3.HeadBucketInput, _ ...func(*s3.Options)) (*s3.HeadBucketOutput, error) {
	if f.headErr != nil {
		return nil, f.headErr
	}
	if !f.bucketExists {
		return nil, &types.NotFound{}
	}
	return &s3.HeadBucketOutput{}, nil
}

func (f *fakeS3) CreateBucket(ctx context.Context, in *s3.CreateBucketInput, _ ...func(*s3.Options)) (*s3.CreateBucketOutput, error) {
	f.createdBucket = aws.ToString(in.Bucket)
	f.bucketExists = true
	return &s3.CreateBucketOutput{}, nil
}

func TestSnapshotRepository_PutGet(t *testing.T) {
	client := newFakeS3()
	repo := NewSnapshotRepositoryWithClient(client, "snapshots")
	ctx := context.Background()

	key := "workspaces/1/snapshots/20250415T120000Z-abc.json"
	require.NoError(t, repo.Put(ctx, key, []byte(`{"workspaceId":1}`)))
	assert.Equal(t, "application/json", client.contentTypes[key])

	data, err := repo.Get(ctx, key)
	require.NoError(t, err)
	assert.JSONEq(t, `{"workspaceId":1}`, string(data))
}

func TestSnapshotRepository_GetMissing(t *testing.T) {
	repo := NewSnapshotRepositoryWithClient(newFakeS3(), "snapshots")

	_, err := repo.Get(context.Background(), "workspaces/1/snapshots/missing.json")
	assert.ErrorIs(t, err, domain.ErrSnapshotNotFound)
}

func TestSnapshotRepository_PutError(t *testing.T) {
	client := newFakeS3()
	client.putErr = errors.New("access denied")
	repo := NewSnapshotRepositoryWithClient(client, "snapshots")

	err := repo.Put(context.Background(), "k", []byte("{}"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "access denied")
}

func TestEnsureBucket(t *testing.T) {
	ctx := context.Background()

	existing := newFakeS3()
	require.NoError(t, ensureBucket(ctx, existing, "snapshots"))
	assert.Empty(t, existing.createdBucket)

	missing := newFakeS3()
	missing.bucketExists = false
	require.NoError(t, ensureBucket(ctx, missing, "snapshots"))
	assert.Equal(t, "snapshots", missing.createdBucket)

	denied := newFakeS3()
	denied.headErr = errors.New("forbidden")
	err := ensureBucket(ctx, denied, "snapshots")
	require.Error(t, err)
	assert.Empty(t, denied.createdBucket)
}
