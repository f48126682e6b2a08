// Package archive copies accepted edit metadata to object storage.
package archive

import (
	"bytes"
	"context"
	"fmt"
	"path"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

type Archiver interface {
	Archive(ctx context.Context, userID, projectID string, meta []byte) error
}

// Nop discards everything.
type Nop struct{}

func (Nop) Archive(context.Context, string, string, []byte) error { return nil }

type S3Config struct {
	User     string
	Password string
	Bucket   string
	Region   string
	Endpoint string
}

type objectPutter interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Archiver writes one object per project, overwritten on every accepted
// change.
type S3Archiver struct {
	client objectPutter
	bucket string
}

var loadDefaultAWSConfig = config.LoadDefaultConfig

func NewS3Archiver(ctx context.Context, c S3Config) (*S3Archiver, error) {
	cfg, err := loadDefaultAWSConfig(ctx,
		config.WithRegion(c.Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(c.User, c.Password, "")))
	if err != nil {
		return nil, fmt.Errorf("aws config: %w", err)
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if c.Endpoint != "" {
			o.BaseEndpoint = aws.String(c.Endpoint)
			o.UsePathStyle = true
		}
	})
	return &S3Archiver{client: client, bucket: c.Bucket}, nil
}

// Key is the object key of a project's metadata.
func Key(userID, projectID string) string {
	return path.Join("projects", userID, projectID, "edit-metadata.json")
}

func (a *S3Archiver) Archive(ctx context.Context, userID, projectID string, meta []byte) error {
	_, err := a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(a.bucket),
		Key:           aws.String(Key(userID, projectID)),
		Body:          bytes.NewReader(meta),
		ContentLength: aws.Int64(int64(len(meta))),
		ContentType:   aws.String("application/json"),
	})
	if err != nil {
		return fmt.Errorf("put %s: %w", Key(userID, projectID), err)
	}
	return nil
}
