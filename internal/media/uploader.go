// Copyright (c) 2026 Vidora. All rights reserved.
// Author: dev@vidora.app

/*
Package media integrates the remote media-hosting collaborator.

Avatars and cover images are not stored by this service: they are streamed to
an S3-compatible object store at upload time, and only the resulting public
URI is persisted on the user record.

Architecture:

  - Uploader: The contract the user domain depends on.
  - Client: MinIO-backed implementation behind a small mockable API surface.
*/
package media

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/minio/minio-go/v7"

	"github.com/vidora/vidora/internal/platform/apperr"
)

// Uploader is the contract for pushing a media object to the hosting
// collaborator. Upload returns the public URI of the stored object; Remove
// deletes an object whose key is known, e.g. to roll back an upload whose
// surrounding operation failed.
type Uploader interface {
	Upload(ctx context.Context, key string, reader io.Reader, size int64, contentType string) (string, error)
	Remove(ctx context.Context, key string) error
}

// objectStoreAPI is the slice of the MinIO client the Client actually uses.
// Defining it here enables mocking without a real object store.
type objectStoreAPI interface {
	BucketExists(ctx context.Context, bucketName string) (bool, error)
	MakeBucket(ctx context.Context, bucketName string, opts minio.MakeBucketOptions) error
	PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
	RemoveObject(ctx context.Context, bucketName, objectName string, opts minio.RemoveObjectOptions) error
}

// Client implements [Uploader] on top of an S3-compatible object store.
type Client struct {
	api       objectStoreAPI
	bucket    string
	publicURL string
}

var _ Uploader = (*Client)(nil)

// NewClient wraps a *minio.Client and ensures the target bucket exists.
//
// # Parameters
//   - ctx: Context for the bucket check.
//   - client: Configured MinIO client.
//   - bucket: Bucket receiving all media objects.
//   - publicURL: Base URL under which stored objects are publicly served.
func NewClient(ctx context.Context, client *minio.Client, bucket, publicURL string) (*Client, error) {
	return NewClientWithAPI(ctx, client, bucket, publicURL)
}

// NewClientWithAPI allows injecting a mockable API (used in tests).
func NewClientWithAPI(ctx context.Context, api objectStoreAPI, bucket, publicURL string) (*Client, error) {
	c := &Client{
		api:       api,
		bucket:    bucket,
		publicURL: strings.TrimRight(publicURL, "/"),
	}

	if err := c.ensureBucketExists(ctx); err != nil {
		return nil, fmt.Errorf("media: failed to ensure bucket exists: %w", err)
	}

	return c, nil
}

// ensureBucketExists creates the bucket if it doesn't exist.
func (c *Client) ensureBucketExists(ctx context.Context) error {
	exists, err := c.api.BucketExists(ctx, c.bucket)
	if err != nil {
		return fmt.Errorf("media: failed to check bucket existence: %w", err)
	}

	if !exists {
		if err := c.api.MakeBucket(ctx, c.bucket, minio.MakeBucketOptions{}); err != nil {
			return fmt.Errorf("media: failed to create bucket: %w", err)
		}
	}

	return nil
}

// Upload streams a media object to the collaborator and returns its public URI.
//
// Upload failures surface as internal errors: the caller's operation cannot
// proceed without the stored object, and there is nothing to roll back because
// the user record has not been touched yet.
func (c *Client) Upload(ctx context.Context, key string, reader io.Reader, size int64, contentType string) (string, error) {
	_, err := c.api.PutObject(ctx, c.bucket, key, reader, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", apperr.Internal(fmt.Errorf("media: failed to upload object %s: %w", key, err))
	}

	return c.publicURL + "/" + key, nil
}

// Remove deletes a previously uploaded object. Registration uploads media
// before it persists the user record, so a failed persist calls this to
// avoid orphaning the objects.
func (c *Client) Remove(ctx context.Context, key string) error {
	if err := c.api.RemoveObject(ctx, c.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("media: failed to remove object %s: %w", key, err)
	}
	return nil
}
