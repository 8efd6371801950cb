// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package storage uploads exported files to S3 or an S3-compatible store.
// Credentials, region and profile come from the AWS SDK default chain
// (environment, shared config files, instance metadata).
package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"

	"github.com/pdiddy/pubmed-extract/pkg/types"
)

// authErrorCodes are S3 error codes that mean the credentials were
// resolved but rejected.
var authErrorCodes = map[string]bool{
	"AccessDenied":          true,
	"InvalidAccessKeyId":    true,
	"SignatureDoesNotMatch": true,
	"ExpiredToken":          true,
	"InvalidToken":          true,
}

// defaultRegion is used when neither the flags nor the AWS default chain
// name a region. S3 serves it from the global endpoint.
const defaultRegion = "us-east-1"

// S3Uploader uploads local files with a single upload call per file. The
// AWS configuration is loaded on the first upload, so a broken profile
// surfaces only at upload time.
type S3Uploader struct {
	cfg types.StorageConfig

	mu          sync.Mutex
	region      string
	credentials aws.CredentialsProvider
	uploader    *manager.Uploader
}

// NewS3Uploader returns an uploader for cfg. Region and endpoint overrides
// in cfg take precedence over the AWS default chain.
func NewS3Uploader(cfg types.StorageConfig) *S3Uploader {
	return &S3Uploader{cfg: cfg}
}

func newS3Uploader(awsCfg aws.Config, cfg types.StorageConfig) *S3Uploader {
	u := &S3Uploader{cfg: cfg}
	u.configure(awsCfg)
	return u
}

func (u *S3Uploader) configure(awsCfg aws.Config) {
	if u.cfg.Region != "" {
		awsCfg.Region = u.cfg.Region
	}
	if awsCfg.Region == "" {
		awsCfg.Region = defaultRegion
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.Retryer = aws.NopRetryer{}
		if u.cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(u.cfg.Endpoint)
		}
		o.UsePathStyle = u.cfg.UsePathStyle
	})
	u.region = awsCfg.Region
	u.credentials = awsCfg.Credentials
	u.uploader = manager.NewUploader(client)
}

// load reads the AWS default configuration once.
func (u *S3Uploader) load(ctx context.Context) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.uploader != nil {
		return nil
	}
	var opts []func(*config.LoadOptions) error
	if u.cfg.Region != "" {
		opts = append(opts, config.WithRegion(u.cfg.Region))
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return fmt.Errorf("%w: loading AWS configuration: %w", types.ErrInvalidConfig, err)
	}
	u.configure(awsCfg)
	return nil
}

// Upload copies localPath to bucket/key. Credentials are resolved before
// the file is opened; when none are available the error wraps
// types.ErrServiceAuth and no request is sent.
func (u *S3Uploader) Upload(ctx context.Context, localPath, bucket, key string) error {
	if err := u.load(ctx); err != nil {
		return err
	}
	if err := u.checkCredentials(ctx); err != nil {
		return err
	}

	f, err := os.Open(localPath)
	if err != nil {
		return fmt.Errorf("%w: opening %s: %w", types.ErrIO, localPath, err)
	}
	defer f.Close()

	_, err = u.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(bucket),
		Key:         aws.String(key),
		Body:        f,
		ContentType: aws.String("text/csv"),
	})
	if err != nil {
		return classify(err, u.region)
	}
	return nil
}

func (u *S3Uploader) checkCredentials(ctx context.Context) error {
	if u.credentials == nil {
		return fmt.Errorf("%w: credentials not available", types.ErrServiceAuth)
	}
	creds, err := u.credentials.Retrieve(ctx)
	if err != nil {
		return fmt.Errorf("%w: credentials not available: %w", types.ErrServiceAuth, err)
	}
	if !creds.HasKeys() {
		return fmt.Errorf("%w: credentials not available", types.ErrServiceAuth)
	}
	return nil
}

func classify(err error, region string) error {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) && authErrorCodes[apiErr.ErrorCode()] {
		return fmt.Errorf("%w: S3 upload (%s): %w", types.ErrServiceAuth, region, err)
	}
	return fmt.Errorf("%w: S3 upload (%s): %w", types.ErrNetwork, region, err)
}
