// Package r2 talks to a Cloudflare R2 bucket through the S3-compatible API.
//
// It provides the connected client, thin object operations, and the
// concurrent multipart upload driver.
package r2

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	awscreds "github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/tauri-drive/engine/internal/constants"
	"github.com/tauri-drive/engine/internal/httpx"
)

// S3API is the subset of the object-store SDK used by this package.
// *s3.Client satisfies it; tests substitute in-memory fakes.
type S3API interface {
	ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
	CopyObject(ctx context.Context, params *s3.CopyObjectInput, optFns ...func(*s3.Options)) (*s3.CopyObjectOutput, error)
	CreateMultipartUpload(ctx context.Context, params *s3.CreateMultipartUploadInput, optFns ...func(*s3.Options)) (*s3.CreateMultipartUploadOutput, error)
	UploadPart(ctx context.Context, params *s3.UploadPartInput, optFns ...func(*s3.Options)) (*s3.UploadPartOutput, error)
	CompleteMultipartUpload(ctx context.Context, params *s3.CompleteMultipartUploadInput, optFns ...func(*s3.Options)) (*s3.CompleteMultipartUploadOutput, error)
	AbortMultipartUpload(ctx context.Context, params *s3.AbortMultipartUploadInput, optFns ...func(*s3.Options)) (*s3.AbortMultipartUploadOutput, error)
}

// Client is a connected R2 bucket handle.
// Safe for concurrent use; the underlying SDK client pools connections.
type Client struct {
	api    S3API
	bucket string
}

// NewClient builds a client for one R2 bucket from static credentials.
//
// R2 is addressed per account: https://{account_id}.r2.cloudflarestorage.com
// with the literal region "auto". SDK retries are capped at a single attempt;
// retry policy belongs to the caller, not the transport.
func NewClient(ctx context.Context, accountID, accessKeyID, secretAccessKey, bucket string) (*Client, error) {
	if accountID == "" {
		return nil, errors.New("account id is required")
	}
	if bucket == "" {
		return nil, errors.New("bucket is required")
	}

	cfg, err := config.LoadDefaultConfig(ctx,
		config.WithRegion("auto"),
		config.WithHTTPClient(httpx.NewTransferClient()),
		config.WithCredentialsProvider(awscreds.NewStaticCredentialsProvider(
			accessKeyID,
			secretAccessKey,
			"",
		)),
		config.WithRetryMaxAttempts(1),
	)
	if err != nil {
		return nil, fmt.Errorf("load client config: %w", err)
	}

	endpoint := endpointURL(accountID)
	api := s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(endpoint)
	})

	return &Client{api: api, bucket: bucket}, nil
}

// NewClientFromAPI wraps an existing SDK-compatible implementation.
// Used by tests to run against in-memory fakes.
func NewClientFromAPI(api S3API, bucket string) *Client {
	return &Client{api: api, bucket: bucket}
}

// Bucket returns the bucket this client is bound to.
func (c *Client) Bucket() string {
	return c.bucket
}

// VerifyConnection lists the bucket with an empty prefix. A successful
// round-trip proves the endpoint, credentials, and bucket all line up.
func (c *Client) VerifyConnection(ctx context.Context) error {
	_, err := c.ListObjects(ctx, "")
	if err != nil {
		return fmt.Errorf("connection check failed: %w", err)
	}
	return nil
}

func endpointURL(accountID string) string {
	return fmt.Sprintf("https://%s.r2.cloudflarestorage.com", accountID)
}

// opContext bounds one object-store operation.
func opContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, constants.OperationTimeout)
}
