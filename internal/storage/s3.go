package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"
)

type S3Options struct {
	Bucket          string
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	// Endpoint overrides the AWS endpoint, e.g. https://<account>.r2.cloudflarestorage.com
	Endpoint string
	// PublicURL is the base URL files are served from (bucket website, CDN, R2 public domain)
	PublicURL string
}

// S3 stores files in an S3 compatible bucket
type S3 struct {
	C         *s3.Client
	Bucket    *string
	publicURL string
	uploader  *manager.Uploader
}

func NewS3(ctx context.Context, o S3Options) (*S3, error) {
	cfg, err := config.LoadDefaultConfig(ctx,
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			o.AccessKeyID,
			o.SecretAccessKey,
			"",
		)),
	)
	if err != nil {
		return nil, err
	}

	bucket := aws.String(o.Bucket)

	client := s3.NewFromConfig(cfg, func(so *s3.Options) {
		so.Region = o.Region
		if o.Endpoint != "" {
			so.BaseEndpoint = aws.String(o.Endpoint)
		}
	})

	_, err = client.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: bucket,
	})
	if err != nil {
		var apiErr smithy.APIError

		if errors.As(err, &apiErr) {
			if apiErr.ErrorCode() == "NotFound" {
				return nil, fmt.Errorf("bucket '%s' does not exist", o.Bucket)
			}
		}

		return nil, fmt.Errorf("failed to check if bucket exists, %w", err)
	}

	return &S3{
		C:         client,
		Bucket:    bucket,
		publicURL: strings.TrimSuffix(o.PublicURL, "/"),
		uploader: manager.NewUploader(client, func(u *manager.Uploader) {
			u.Concurrency = 5
			u.PartSize = 5 << 20
		}),
	}, nil
}

func (s *S3) Save(ctx context.Context, name string, r io.Reader, size int64, contentType string) error {
	if name == "" || strings.ContainsAny(name, `/\`) {
		return ErrInvalidName
	}

	// Uploaded names are unique and never rewritten
	_, err := s.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:        s.Bucket,
		Key:           aws.String(name),
		Body:          r,
		ContentLength: aws.Int64(size),
		ContentType:   aws.String(contentType),
		CacheControl:  aws.String("public, max-age=31536000, immutable"),
	})
	if err != nil {
		return fmt.Errorf("failed to upload file to S3, %w", err)
	}

	return nil
}

func (s *S3) Delete(ctx context.Context, name string) error {
	_, err := s.C.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: s.Bucket,
		Key:    aws.String(name),
	})
	if err != nil {
		return fmt.Errorf("failed to delete file from S3, %w", err)
	}

	return nil
}

func (s *S3) URL(name string) string {
	return s.publicURL + "/" + url.PathEscape(name)
}
