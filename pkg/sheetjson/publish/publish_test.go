package publish

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type storedObject struct {
	body        []byte
	contentType string
	metadata    map[string]string
}

type fakeS3 struct {
	mu      sync.Mutex
	objects map[string]storedObject
	headErr error
	puts    int
}

func newFakeS3() *fakeS3 {
	return &fakeS3{objects: make(map[string]storedObject)}
}

func (f *fakeS3) HeadObject(_ context.Context, in *s3.HeadObjectInput, _ ...func(*s3.Options)) (*s3.HeadObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.headErr != nil {
		return nil, f.headErr
	}
	obj, ok := f.objects[aws.ToString(in.Bucket)+"/"+aws.ToString(in.Key)]
	if !ok {
		return nil, &types.NotFound{}
	}
	return &s3.HeadObjectOutput{Metadata: obj.metadata, ContentType: aws.String(obj.contentType)}, nil
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	body, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.puts++
	f.objects[aws.ToString(in.Bucket)+"/"+aws.ToString(in.Key)] = storedObject{
		body:        body,
		contentType: aws.ToString(in.ContentType),
		metadata:    in.Metadata,
	}
	return &s3.PutObjectOutput{}, nil
}

func object(ts int64, body string) Object {
	return Object{Key: "exports/doc.json", Body: []byte(body), ContentType: "application/json", Timestamp: ts}
}

func TestS3PublishStaleness(t *testing.T) {
	ctx := context.Background()
	fake := newFakeS3()
	p := NewS3PublisherWithClient(fake, S3Options{Bucket: "out"})

	wrote, err := p.Publish(ctx, object(100, "v1"))
	require.NoError(t, err)
	assert.True(t, wrote)

	stored := fake.objects["out/exports/doc.json"]
	assert.Equal(t, "v1", string(stored.body))
	assert.Equal(t, "application/json", stored.contentType)
	assert.Equal(t, "100", stored.metadata[MetadataKey])

	wrote, err = p.Publish(ctx, object(100, "same"))
	require.NoError(t, err)
	assert.False(t, wrote)

	wrote, err = p.Publish(ctx, object(50, "older"))
	require.NoError(t, err)
	assert.False(t, wrote)

	wrote, err = p.Publish(ctx, object(200, "v2"))
	require.NoError(t, err)
	assert.True(t, wrote)
	assert.Equal(t, "v2", string(fake.objects["out/exports/doc.json"].body))
	assert.Equal(t, 2, fake.puts)
}

func TestS3PublishPrefix(t *testing.T) {
	fake := newFakeS3()
	p := NewS3PublisherWithClient(fake, S3Options{Bucket: "out", Prefix: "site"})

	_, err := p.Publish(context.Background(), object(1, "x"))
	require.NoError(t, err)
	assert.Contains(t, fake.objects, "out/site/exports/doc.json")
}

func TestS3PublishUnparsableMetadata(t *testing.T) {
	fake := newFakeS3()
	fake.objects["out/exports/doc.json"] = storedObject{metadata: map[string]string{MetadataKey: "yesterday"}}
	p := NewS3PublisherWithClient(fake, S3Options{Bucket: "out"})

	wrote, err := p.Publish(context.Background(), object(1, "x"))
	require.NoError(t, err)
	assert.True(t, wrote)
}

func TestS3PublishPropagatesLookupErrors(t *testing.T) {
	fake := newFakeS3()
	fake.headErr = &smithy.GenericAPIError{Code: "AccessDenied", Message: "denied"}
	p := NewS3PublisherWithClient(fake, S3Options{Bucket: "out"})

	wrote, err := p.Publish(context.Background(), object(1, "x"))
	require.Error(t, err)
	assert.False(t, wrote)
	assert.Equal(t, 0, fake.puts)
}

func TestIsNotFound(t *testing.T) {
	assert.True(t, isNotFound(&types.NotFound{}))
	assert.True(t, isNotFound(&types.NoSuchKey{}))
	assert.True(t, isNotFound(&smithy.GenericAPIError{Code: "NotFound"}))
	assert.False(t, isNotFound(&smithy.GenericAPIError{Code: "SlowDown"}))
	assert.False(t, isNotFound(errors.New("boom")))
}

func TestFilePublisher(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	p, err := NewFilePublisher(dir, nil)
	require.NoError(t, err)

	wrote, err := p.Publish(ctx, object(100, "v1"))
	require.NoError(t, err)
	assert.True(t, wrote)

	target := filepath.Join(dir, "exports", "doc.json")
	data, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, "v1", string(data))

	meta, err := os.ReadFile(target + ".meta.json")
	require.NoError(t, err)
	assert.JSONEq(t, `{"content_type":"application/json","metadata":{"updatedtimestamp":"100"}}`, string(meta))

	wrote, err = p.Publish(ctx, object(99, "older"))
	require.NoError(t, err)
	assert.False(t, wrote)

	wrote, err = p.Publish(ctx, object(101, "v2"))
	require.NoError(t, err)
	assert.True(t, wrote)
	data, err = os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, "v2", string(data))
}

func TestFilePublisherCorruptMetadata(t *testing.T) {
	dir := t.TempDir()
	p, err := NewFilePublisher(dir, nil)
	require.NoError(t, err)

	target := filepath.Join(dir, "exports", "doc.json")
	require.NoError(t, os.MkdirAll(filepath.Dir(target), 0755))
	require.NoError(t, os.WriteFile(target+".meta.json", []byte("{"), 0644))

	wrote, err := p.Publish(context.Background(), object(1, "x"))
	require.NoError(t, err)
	assert.True(t, wrote)
}

func TestFilePublisherRejectsEscapingKeys(t *testing.T) {
	p, err := NewFilePublisher(t.TempDir(), nil)
	require.NoError(t, err)

	for _, key := range []string{"../outside.json", "a/../../b.json", ""} {
		_, err := p.Publish(context.Background(), Object{Key: key, Timestamp: 1})
		assert.Error(t, err, key)
	}
}

func TestShouldWrite(t *testing.T) {
	assert.True(t, shouldWrite(0, false, 0))
	assert.True(t, shouldWrite(1, true, 2))
	assert.False(t, shouldWrite(2, true, 2))
	assert.False(t, shouldWrite(3, true, 2))
}
