// Package storage provides the object store behind uploaded documents.
// The core only consumes DocumentStore; bytes never pass through it —
// clients upload and download against presigned URLs.
package storage

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// DocumentStore is the collaborator interface the document service uses.
type DocumentStore interface {
	// PresignUpload returns a URL the client PUTs the file bytes to.
	PresignUpload(ctx context.Context, key, contentType string, meta map[string]string) (string, time.Duration, error)
	// PresignDownload returns a short-lived URL for fetching the bytes.
	PresignDownload(ctx context.Context, key string) (string, error)
	// Delete removes the object.
	Delete(ctx context.Context, key string) error
}

// S3Store implements DocumentStore against an S3 bucket.
type S3Store struct {
	client    *s3.Client
	presigner *s3.PresignClient
	bucket    string
	uploadTTL time.Duration
}

// NewS3Store creates the store from ambient AWS configuration.
func NewS3Store(ctx context.Context, region, bucket string, uploadTTL time.Duration) (*S3Store, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, err
	}

	client := s3.NewFromConfig(cfg)
	return &S3Store{
		client:    client,
		presigner: s3.NewPresignClient(client),
		bucket:    bucket,
		uploadTTL: uploadTTL,
	}, nil
}

// PresignUpload generates a presigned PUT URL pinned to the declared
// content type, so a client cannot upload a different kind of file than
// the one that passed validation.
func (s *S3Store) PresignUpload(ctx context.Context, key, contentType string, meta map[string]string) (string, time.Duration, error) {
	input := &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		ContentType: aws.String(contentType),
		Metadata:    meta,
	}

	req, err := s.presigner.PresignPutObject(ctx, input, func(o *s3.PresignOptions) { o.Expires = s.uploadTTL })
	if err != nil {
		return "", 0, err
	}
	return req.URL, s.uploadTTL, nil
}

// PresignDownload generates a presigned GET URL valid for 15 minutes.
func (s *S3Store) PresignDownload(ctx context.Context, key string) (string, error) {
	req, err := s.presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}, func(o *s3.PresignOptions) { o.Expires = 15 * time.Minute })
	if err != nil {
		return "", err
	}
	return req.URL, nil
}

// Delete removes the object from the bucket.
func (s *S3Store) Delete(ctx context.Context, key string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	return err
}
