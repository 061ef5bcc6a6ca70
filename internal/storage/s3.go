// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package storage keeps generated project archives in S3-compatible
// object storage and hands out presigned download links. It uses
// path-style addressing so MinIO, CEPH and similar services work.
package storage

import (
	"context"
	"fmt"
	"io"
	"mime"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// DefaultLinkExpiry is how long a presigned download link stays valid.
const DefaultLinkExpiry = 15 * time.Minute

// Client stores archives in one bucket.
type Client struct {
	s3        *s3.Client
	presigner *s3.PresignClient
	bucket    string
}

// New creates a client. It returns (nil, nil) when the endpoint or
// credentials are empty so the server runs without object storage.
func New(endpoint, region, accessKey, secretKey, bucket string) (*Client, error) {
	if endpoint == "" || accessKey == "" || secretKey == "" {
		return nil, nil
	}
	if bucket == "" {
		return nil, fmt.Errorf("storage: bucket is required")
	}

	client := s3.New(s3.Options{
		Region:       region,
		BaseEndpoint: aws.String(strings.TrimRight(endpoint, "/")),
		Credentials:  credentials.NewStaticCredentialsProvider(accessKey, secretKey, ""),
		UsePathStyle: true,
	})
	return &Client{
		s3:        client,
		presigner: s3.NewPresignClient(client),
		bucket:    bucket,
	}, nil
}

// Bucket returns the archive bucket name.
func (c *Client) Bucket() string { return c.bucket }

// ArchiveKey is the object key of a website's project archive.
func ArchiveKey(userID, websiteID string) string {
	return "archives/" + userID + "/" + websiteID + ".zip"
}

// UploadArchive stores a zip archive under key. size may be -1 when
// unknown, in which case body must be seekable.
func (c *Client) UploadArchive(ctx context.Context, key string, body io.Reader, size int64) error {
	input := &s3.PutObjectInput{
		Bucket:      aws.String(c.bucket),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String("application/zip"),
	}
	if size >= 0 {
		input.ContentLength = aws.Int64(size)
	}
	if _, err := c.s3.PutObject(ctx, input); err != nil {
		return fmt.Errorf("s3 upload %s/%s: %w", c.bucket, key, err)
	}
	return nil
}

// DownloadURL returns a presigned GET link that saves the object as
// filename.
func (c *Client) DownloadURL(ctx context.Context, key, filename string, expires time.Duration) (string, error) {
	if expires <= 0 {
		expires = DefaultLinkExpiry
	}
	req, err := c.presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket:                     aws.String(c.bucket),
		Key:                        aws.String(key),
		ResponseContentDisposition: aws.String(mime.FormatMediaType("attachment", map[string]string{"filename": filename})),
	}, s3.WithPresignExpires(expires))
	if err != nil {
		return "", fmt.Errorf("s3 presign %s/%s: %w", c.bucket, key, err)
	}
	return req.URL, nil
}

// Delete removes an object. Deleting a missing key is not an error.
func (c *Client) Delete(ctx context.Context, key string) error {
	_, err := c.s3.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("s3 delete %s/%s: %w", c.bucket, key, err)
	}
	return nil
}
