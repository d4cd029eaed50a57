package storage

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsConfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// ImageStoreOptions configures an S3 compatible bucket (AWS S3, Cloudflare R2, MinIO).
type ImageStoreOptions struct {
	Bucket          string
	Region          string
	Endpoint        string // empty for AWS S3
	AccessKeyID     string // empty to use the default credential chain
	SecretAccessKey string
	PublicURL       string // base URL the bucket is served from, optional
	HTTPClient      *http.Client
}

// ImageStore uploads jewelry photos to an S3 compatible bucket.
type ImageStore struct {
	logger    *slog.Logger
	uploader  *manager.Uploader
	bucket    string
	publicURL string
}

func NewImageStore(ctx context.Context, logger *slog.Logger, opts ImageStoreOptions) (*ImageStore, error) {
	if opts.Bucket == "" {
		return nil, fmt.Errorf("image bucket is not configured")
	}

	loadOptions := []func(*awsConfig.LoadOptions) error{awsConfig.WithRegion(opts.Region)}
	if opts.AccessKeyID != "" {
		loadOptions = append(loadOptions, awsConfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(opts.AccessKeyID, opts.SecretAccessKey, ""),
		))
	}
	if opts.HTTPClient != nil {
		loadOptions = append(loadOptions, awsConfig.WithHTTPClient(opts.HTTPClient))
	}

	cfg, err := awsConfig.LoadDefaultConfig(ctx, loadOptions...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
			o.UsePathStyle = true
		}
	})

	return &ImageStore{
		logger:    logger.With("component", "images"),
		uploader:  manager.NewUploader(client),
		bucket:    opts.Bucket,
		publicURL: resolvePublicURL(opts),
	}, nil
}

// Save uploads the image under key and returns its public URL.
func (that *ImageStore) Save(ctx context.Context, key string, body io.Reader, contentType string) (string, error) {
	log := that.logger.With("method", "Save", "key", key)

	_, err := that.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(that.bucket),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("upload image: %w", err)
	}

	log.Info("image uploaded")
	return that.publicURL + "/" + escapeKey(key), nil
}

func resolvePublicURL(opts ImageStoreOptions) string {
	switch {
	case opts.PublicURL != "":
		return strings.TrimRight(opts.PublicURL, "/")
	case opts.Endpoint != "":
		return strings.TrimRight(opts.Endpoint, "/") + "/" + opts.Bucket
	default:
		return fmt.Sprintf("https://%s.s3.%s.amazonaws.com", opts.Bucket, opts.Region)
	}
}

func escapeKey(key string) string {
	parts := strings.Split(key, "/")
	for i, part := range parts {
		parts[i] = url.PathEscape(part)
	}
	return strings.Join(parts, "/")
}
