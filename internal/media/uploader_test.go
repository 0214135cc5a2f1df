// Copyright (c) 2026 Vidora. All rights reserved.
// Author: dev@vidora.app

package media

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeObjectStore struct {
	bucketExists bool
	madeBucket   string
	putKey       string
	putType      string
	putErr       error
	removedKey   string
}

func (f *fakeObjectStore) BucketExists(_ context.Context, _ string) (bool, error) {
	return f.bucketExists, nil
}

func (f *fakeObjectStore) MakeBucket(_ context.Context, bucketName string, _ minio.MakeBucketOptions) error {
	f.madeBucket = bucketName
	return nil
}

func (f *fakeObjectStore) PutObject(_ context.Context, _, objectName string, _ io.Reader, _ int64, opts minio.PutObjectOptions) (minio.UploadInfo, error) {
	if f.putErr != nil {
		return minio.UploadInfo{}, f.putErr
	}
	f.putKey = objectName
	f.putType = opts.ContentType
	return minio.UploadInfo{Key: objectName}, nil
}

func (f *fakeObjectStore) RemoveObject(_ context.Context, _, objectName string, _ minio.RemoveObjectOptions) error {
	f.removedKey = objectName
	return nil
}

func TestNewClient_CreatesMissingBucket(t *testing.T) {
	t.Parallel()

	store := &fakeObjectStore{bucketExists: false}
	_, err := NewClientWithAPI(context.Background(), store, "vidora-media", "https://media.vidora.app")
	require.NoError(t, err)

	assert.Equal(t, "vidora-media", store.madeBucket)
}

func TestNewClient_KeepsExistingBucket(t *testing.T) {
	t.Parallel()

	store := &fakeObjectStore{bucketExists: true}
	_, err := NewClientWithAPI(context.Background(), store, "vidora-media", "https://media.vidora.app")
	require.NoError(t, err)

	assert.Empty(t, store.madeBucket)
}

func TestUpload_ReturnsPublicURL(t *testing.T) {
	t.Parallel()

	store := &fakeObjectStore{bucketExists: true}
	client, err := NewClientWithAPI(context.Background(), store, "vidora-media", "https://media.vidora.app/")
	require.NoError(t, err)

	url, err := client.Upload(context.Background(), "avatars/u1", strings.NewReader("bytes"), 5, "image/png")
	require.NoError(t, err)

	// The trailing slash on the base URL must not double up.
	assert.Equal(t, "https://media.vidora.app/avatars/u1", url)
	assert.Equal(t, "avatars/u1", store.putKey)
	assert.Equal(t, "image/png", store.putType)
}

func TestUpload_Failure(t *testing.T) {
	t.Parallel()

	store := &fakeObjectStore{bucketExists: true, putErr: errors.New("store down")}
	client, err := NewClientWithAPI(context.Background(), store, "vidora-media", "https://media.vidora.app")
	require.NoError(t, err)

	_, err = client.Upload(context.Background(), "avatars/u1", strings.NewReader("bytes"), 5, "image/png")
	assert.Error(t, err)
}

func TestRemove(t *testing.T) {
	t.Parallel()

	store := &fakeObjectStore{bucketExists: true}
	client, err := NewClientWithAPI(context.Background(), store, "vidora-media", "https://media.vidora.app")
	require.NoError(t, err)

	require.NoError(t, client.Remove(context.Background(), "covers/u1"))
	assert.Equal(t, "covers/u1", store.removedKey)
}
