package source

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/jamesainslie/logsift/pkg/logsift/logging"
	"github.com/jamesainslie/logsift/pkg/logsift/types"
)

// S3Options configures the object storage client. Empty fields fall back to
// the default AWS credential chain and region resolution.
type S3Options struct {
	Region string
	// Endpoint targets an S3-compatible service such as MinIO or R2.
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	PathStyle       bool
}

type objectGetter interface {
	GetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// S3 loads archives from a bucket.
type S3 struct {
	api objectGetter
}

// NewS3 builds a client from opts.
func NewS3(ctx context.Context, opts S3Options) (*S3, error) {
	var loaders []func(*config.LoadOptions) error
	if opts.Region != "" {
		loaders = append(loaders, config.WithRegion(opts.Region))
	}
	if opts.AccessKeyID != "" {
		loaders = append(loaders, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(opts.AccessKeyID, opts.SecretAccessKey, "")))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, loaders...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
		}
		o.UsePathStyle = opts.PathStyle
	})
	return &S3{api: client}, nil
}

// Load fetches bucket/key, rejecting it before download when the reported
// length already exceeds maxSize.
func (c *S3) Load(ctx context.Context, bucket, key string, maxSize int64) (*Archive, error) {
	out, err := c.api.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("get s3://%s/%s: %w", bucket, key, err)
	}
	defer out.Body.Close()

	if out.ContentLength != nil {
		if err := checkSize(*out.ContentLength, maxSize); err != nil {
			return nil, err
		}
	}
	data, err := readLimited(out.Body, maxSize)
	if err != nil {
		return nil, err
	}

	ref := fmt.Sprintf("s3://%s/%s", bucket, key)
	logging.Get("source").Debug("loaded archive", "ref", ref, "size", types.FormatSize(int64(len(data))))
	return &Archive{Name: baseName(key), Ref: ref, Data: data}, nil
}
