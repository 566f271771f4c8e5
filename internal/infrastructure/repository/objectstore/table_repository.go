package objectstore

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/riskibarqy/fpl-dataset/internal/domain/rawtable"
	"github.com/riskibarqy/fpl-dataset/internal/platform/frame"
)

const csvContentType = "text/csv; charset=utf-8"

type Config struct {
	Bucket          string
	Prefix          string
	Region          string
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
}

// objectAPI is the part of *s3.Client the repository uses.
type objectAPI interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// TableRepository stores tables as CSV objects under
// <prefix>/<stage>/<name>.csv in one bucket.
type TableRepository struct {
	client objectAPI
	bucket string
	prefix string
}

// New builds an S3 client from cfg. A custom endpoint (R2, MinIO) switches the
// client to path-style addressing; static keys override the default
// credential chain.
func New(ctx context.Context, cfg Config) (*TableRepository, error) {
	if strings.TrimSpace(cfg.Bucket) == "" {
		return nil, errors.New("invalid object store configuration: bucket is required")
	}

	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}

	sdkCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws sdk config: %w", err)
	}

	client := s3.NewFromConfig(sdkCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})
	return newTableRepository(client, cfg.Bucket, cfg.Prefix), nil
}

func newTableRepository(client objectAPI, bucket, prefix string) *TableRepository {
	return &TableRepository{
		client: client,
		bucket: bucket,
		prefix: strings.Trim(prefix, "/"),
	}
}

func (r *TableRepository) Key(ref rawtable.Ref) string {
	return path.Join(r.prefix, string(ref.Stage), ref.Name+".csv")
}

func (r *TableRepository) Load(ctx context.Context, ref rawtable.Ref) (*frame.Frame, error) {
	if !ref.Valid() {
		return nil, fmt.Errorf("invalid table ref %q", ref)
	}

	key := r.Key(ref)
	out, err := r.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(r.bucket),
		Key:    aws.String(key),
	})
	if isNotFound(err) {
		return nil, fmt.Errorf("%w: %s", rawtable.ErrTableNotFound, ref)
	}
	if err != nil {
		return nil, fmt.Errorf("get object %s: %w", key, err)
	}
	defer out.Body.Close()

	table, err := frame.ReadCSV(out.Body)
	if err != nil {
		return nil, fmt.Errorf("read table %s: %w", ref, err)
	}
	return table, nil
}

func (r *TableRepository) Save(ctx context.Context, ref rawtable.Ref, table *frame.Frame) error {
	if !ref.Valid() {
		return fmt.Errorf("invalid table ref %q", ref)
	}

	raw, err := frame.EncodeCSV(table)
	if err != nil {
		return fmt.Errorf("encode table %s: %w", ref, err)
	}

	key := r.Key(ref)
	if _, err := r.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(r.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(raw),
		ContentLength: aws.Int64(int64(len(raw))),
		ContentType:   aws.String(csvContentType),
	}); err != nil {
		return fmt.Errorf("put object %s: %w", key, err)
	}
	return nil
}

func isNotFound(err error) bool {
	if err == nil {
		return false
	}
	var noSuchKey *types.NoSuchKey
	if errors.As(err, &noSuchKey) {
		return true
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NoSuchKey", "NotFound":
			return true
		}
	}
	return false
}
