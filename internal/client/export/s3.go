package export

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/dmitrijs2005/scanpilot/internal/client/models"
)

var (
	loadDefaultAWSConfig = config.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}

	putObject = func(c *s3.Client, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
		return c.PutObject(ctx, in, optFns...)
	}
)

type S3Config struct {
	Bucket    string
	Prefix    string
	Region    string
	Endpoint  string // empty means AWS; set for MinIO and friends
	AccessKey string // empty means the default credential chain
	SecretKey string
}

type S3Exporter struct {
	cfg S3Config

	mu     sync.Mutex
	client *s3.Client
}

func NewS3Exporter(cfg S3Config) *S3Exporter {
	return &S3Exporter{cfg: cfg}
}

func (e *S3Exporter) getClient(ctx context.Context) (*s3.Client, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.client != nil {
		return e.client, nil
	}

	var opts []func(*config.LoadOptions) error
	if e.cfg.Region != "" {
		opts = append(opts, config.WithRegion(e.cfg.Region))
	}
	if e.cfg.AccessKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(e.cfg.AccessKey, e.cfg.SecretKey, ""),
		))
	}

	cfg, err := loadDefaultAWSConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	e.client = newS3ClientFromConfig(cfg, func(o *s3.Options) {
		if e.cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(e.cfg.Endpoint)
			o.UsePathStyle = true
		}
	})
	return e.client, nil
}

// Export uploads the result as JSON and returns its s3:// location.
func (e *S3Exporter) Export(ctx context.Context, res *models.AnalysisResult) (string, error) {
	data, err := encode(res)
	if err != nil {
		return "", err
	}

	c, err := e.getClient(ctx)
	if err != nil {
		return "", err
	}

	key := path.Join(e.cfg.Prefix, ObjectName(res.ID))
	_, err = putObject(c, ctx, &s3.PutObjectInput{
		Bucket:      aws.String(e.cfg.Bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return "", fmt.Errorf("put s3://%s/%s: %w", e.cfg.Bucket, key, err)
	}
	return fmt.Sprintf("s3://%s/%s", e.cfg.Bucket, key), nil
}
