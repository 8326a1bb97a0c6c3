package storage

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleanName(t *testing.T) {
	for _, bad := range []string{"", " ", ".", "..", "../x.pdf", "a/b.pdf", `a\b.pdf`} {
		_, err := CleanName(bad)
		assert.ErrorIs(t, err, ErrInvalidName, bad)
	}
	name, err := CleanName(" Ada_Lovelace_1.pdf ")
	require.NoError(t, err)
	assert.Equal(t, "Ada_Lovelace_1.pdf", name)
}

func TestLocalStore(t *testing.T) {
	ctx := context.Background()
	s, err := NewLocalStore(t.TempDir())
	require.NoError(t, err)

	path, err := s.Save(ctx, "cv.pdf", []byte("%PDF-1.4"))
	require.NoError(t, err)
	assert.Equal(t, "cv.pdf", path)

	rc, err := s.Open(ctx, path)
	require.NoError(t, err)
	data, err := io.ReadAll(rc)
	rc.Close()
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.4", string(data))

	_, err = s.Open(ctx, "../cv.pdf")
	assert.ErrorIs(t, err, ErrInvalidName)

	require.NoError(t, s.Delete(ctx, path))
	_, err = s.Open(ctx, path)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, s.Delete(ctx, path), ErrNotFound)
}

type fakeS3 struct {
	objects map[string][]byte
}

func (f *fakeS3) PutObject(ctx context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.objects[*in.Bucket+"/"+*in.Key] = data
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) GetObject(ctx context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	data, ok := f.objects[*in.Bucket+"/"+*in.Key]
	if !ok {
		return nil, &types.NoSuchKey{}
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(data))}, nil
}

func (f *fakeS3) DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	delete(f.objects, *in.Bucket+"/"+*in.Key)
	return &s3.DeleteObjectOutput{}, nil
}

func TestS3Store(t *testing.T) {
	ctx := context.Background()
	fake := &fakeS3{objects: map[string][]byte{}}
	s := NewS3Store(fake, "hiring", "resumes/")

	path, err := s.Save(ctx, "cv.pdf", []byte("%PDF"))
	require.NoError(t, err)
	assert.Equal(t, "cv.pdf", path)
	assert.Contains(t, fake.objects, "hiring/resumes/cv.pdf")

	rc, err := s.Open(ctx, path)
	require.NoError(t, err)
	rc.Close()

	require.NoError(t, s.Delete(ctx, path))
	_, err = s.Open(ctx, path)
	assert.True(t, errors.Is(err, ErrNotFound))

	_, err = s.Save(ctx, "../escape.pdf", nil)
	assert.ErrorIs(t, err, ErrInvalidName)
}
