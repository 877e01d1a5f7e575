package storage

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"firstscoop-backend/internal/components/assert"
	"firstscoop-backend/internal/components/telemetry"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

const (
	report_s3_upload = "s3.upload"
)

type S3Options struct {
	// Endpoint may include a scheme, https is used unless it says http.
	Endpoint  string
	Region    string
	Bucket    string
	AccessKey string
	SecretKey string
	// CreateBucket makes the bucket on first upload if it is missing.
	CreateBucket bool
}

type S3Uploader struct {
	client  *minio.Client
	options S3Options
	tel     telemetry.API
}

func NewS3Uploader(options S3Options, tel telemetry.API) (S3Uploader, error) {
	assert.NotNil(tel)
	if options.Bucket == "" {
		return S3Uploader{}, fmt.Errorf("bucket is required")
	}
	if options.Endpoint == "" {
		options.Endpoint = "https://s3.amazonaws.com"
	}

	client, err := minio.New(hostOf(options.Endpoint), &minio.Options{
		Creds:  credentials.NewStaticV4(options.AccessKey, options.SecretKey, ""),
		Secure: !strings.HasPrefix(strings.ToLower(options.Endpoint), "http://"),
		Region: options.Region,
	})
	if err != nil {
		return S3Uploader{}, fmt.Errorf("init s3 client: %w", err)
	}

	return S3Uploader{
		client:  client,
		options: options,
		tel:     telemetry.NewScopedAPI("storage", tel),
	}, nil
}

func (u S3Uploader) ensureBucket(ctx context.Context) error {
	exists, err := u.client.BucketExists(ctx, u.options.Bucket)
	if err == nil && exists {
		return nil
	}
	err = u.client.MakeBucket(ctx, u.options.Bucket, minio.MakeBucketOptions{Region: u.options.Region})
	if err != nil && minio.ToErrorResponse(err).Code != "BucketAlreadyOwnedByYou" {
		return err
	}
	return nil
}

func (u S3Uploader) Upload(ctx context.Context, key string, body []byte, contentType string) error {
	if u.options.CreateBucket {
		if err := u.ensureBucket(ctx); err != nil {
			u.tel.ReportBroken(report_s3_upload, err, u.options.Bucket)
			return fmt.Errorf("ensure bucket %s: %w", u.options.Bucket, err)
		}
	}

	_, err := u.client.PutObject(ctx, u.options.Bucket, key, bytes.NewReader(body), int64(len(body)), minio.PutObjectOptions{
		ContentType:      contentType,
		DisableMultipart: true,
	})
	if err != nil {
		u.tel.ReportBroken(report_s3_upload, err, key)
		return fmt.Errorf("upload %s: %w", key, err)
	}
	u.tel.ReportDebug("uploaded object", key, len(body))
	return nil
}

// hostOf strips the scheme and path, minio wants a bare host[:port].
func hostOf(endpoint string) string {
	endpoint = strings.TrimSpace(endpoint)
	endpoint = strings.TrimPrefix(strings.TrimPrefix(endpoint, "https://"), "http://")
	host, _, _ := strings.Cut(endpoint, "/")
	return host
}
