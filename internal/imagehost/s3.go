package imagehost

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"bucketlist/internal/config"
	"bucketlist/internal/domain"
	svc "bucketlist/internal/domain/services/bucketlist"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

var (
	loadDefaultAWSConfig = awsconfig.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) objectPutter {
		return s3.NewFromConfig(cfg, optFns...)
	}

	now = time.Now
)

// objectPutter is the slice of the S3 client the host needs
type objectPutter interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Host implements ImageHost on an S3-compatible bucket.
// Objects are never deleted; detaching a photo only drops the reference.
type S3Host struct {
	client        objectPutter
	bucket        string
	publicBaseURL string
	policy        *Policy
	logger        *slog.Logger
}

// NewS3Host creates an image host from configuration
func NewS3Host(ctx context.Context, cfg *config.Config, policy *Policy, logger *slog.Logger) (*S3Host, error) {
	if cfg.S3Bucket == "" {
		return nil, fmt.Errorf("S3 bucket is required")
	}

	awsCfg, err := loadDefaultAWSConfig(ctx,
		awsconfig.WithRegion(cfg.S3Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.S3AccessKey,
			cfg.S3SecretKey,
			"",
		)))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := newS3ClientFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.S3BaseEndpoint != "" {
			o.BaseEndpoint = aws.String(cfg.S3BaseEndpoint)
			o.UsePathStyle = true
		}
	})

	base := cfg.S3PublicBaseURL
	if base == "" {
		base = defaultPublicBase(cfg)
	}

	logger.Info("image host initialized", "bucket", cfg.S3Bucket, "public_base_url", base)

	return &S3Host{
		client:        client,
		bucket:        cfg.S3Bucket,
		publicBaseURL: strings.TrimSuffix(base, "/"),
		policy:        policy,
		logger:        logger,
	}, nil
}

var _ svc.ImageHost = (*S3Host)(nil)

// Upload checks the policy, then stores the image under a fresh key.
// Policy violations are reported before anything is sent to the bucket.
func (h *S3Host) Upload(ctx context.Context, req *svc.UploadRequest) (*svc.UploadResult, error) {
	if err := h.policy.Check(req); err != nil {
		return nil, err
	}

	// The declared size may be missing or wrong; count the bytes ourselves.
	data, err := io.ReadAll(io.LimitReader(req.Body, h.policy.MaxBytes+1))
	if err != nil {
		return nil, &domain.UploadError{Message: fmt.Sprintf("failed to read upload: %v", err)}
	}
	if int64(len(data)) > h.policy.MaxBytes {
		return nil, &domain.UploadError{Message: fmt.Sprintf("file is larger than %d MB", h.policy.MaxBytes>>20)}
	}
	if len(data) == 0 {
		return nil, &domain.UploadError{Message: "file is empty"}
	}

	sniffed := http.DetectContentType(data)
	if !h.policy.allowsContentType(sniffed) {
		return nil, &domain.UploadError{Message: fmt.Sprintf("file content is %s, not an image", sniffed)}
	}

	ext := Extension(req.Filename)
	key := StorageKey(now(), ext)

	_, err = h.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(h.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentType:   aws.String(sniffed),
		ContentLength: aws.Int64(int64(len(data))),
	})
	if err != nil {
		h.logger.Error("image upload failed", "key", key, "error", err)
		return nil, fmt.Errorf("store image: %w: %w", domain.ErrUpload, err)
	}

	h.logger.Info("image uploaded", "key", key, "bytes", len(data))

	return &svc.UploadResult{
		URL:         h.publicBaseURL + "/" + key,
		FileID:      key,
		DisplayName: req.Filename,
		Format:      ext,
	}, nil
}

// StorageKey returns a unique, date-partitioned object key
func StorageKey(t time.Time, ext string) string {
	t = t.UTC()
	return fmt.Sprintf("photos/%04d/%02d/%02d/%s.%s", t.Year(), int(t.Month()), t.Day(), uuid.New(), ext)
}

func defaultPublicBase(cfg *config.Config) string {
	if cfg.S3BaseEndpoint != "" {
		return strings.TrimSuffix(cfg.S3BaseEndpoint, "/") + "/" + cfg.S3Bucket
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com", cfg.S3Bucket, cfg.S3Region)
}
