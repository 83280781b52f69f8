// internal/workers/application/attachment-store/s3.go
package attachmentstore

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"maritime-intake/internal/common/logger"
	"maritime-intake/internal/models"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// S3API is satisfied by internal/common/aws.S3Client.
type S3API interface {
	PutObject(ctx context.Context, input *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	PresignGetObject(ctx context.Context, input *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error)
}

type S3Store struct {
	api    S3API
	config *Config
	now    func() time.Time
	logger logger.Logger
}

func NewS3Store(config *Config, api S3API, log logger.Logger) *S3Store {
	return &S3Store{
		api:    api,
		config: config,
		now:    time.Now,
		logger: logger.ForComponent(log, "attachment-store").WithFields(map[string]interface{}{"provider": "s3"}),
	}
}

func (s *S3Store) Upload(ctx context.Context, file *models.Attachment, category Category, trackingCode string) (string, error) {
	if file == nil || file.Size() == 0 {
		return "", uploadError(category, ErrEmptyAttachment)
	}

	key := ObjectPath(trackingCode, category, s.now(), file.Filename)
	contentType := file.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	input := &s3.PutObjectInput{
		Bucket:      aws.String(s.config.Bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(file.Content),
		ContentType: aws.String(contentType),
		Metadata: map[string]string{
			"tracking-code": trackingCode,
			"category":      string(category),
		},
		ServerSideEncryption: types.ServerSideEncryptionAes256,
	}
	if _, err := s.api.PutObject(ctx, input); err != nil {
		return "", uploadError(category, err)
	}

	if !s.config.signed() {
		return s.publicURL(key), nil
	}

	req, err := s.api.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.config.Bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(s.config.SignedURLTTL))
	if err != nil {
		return "", uploadError(category, fmt.Errorf("presign %s: %w", key, err))
	}

	s.logger.Debug("attachment uploaded", map[string]interface{}{
		"trackingCode": trackingCode,
		"category":     string(category),
		"key":          key,
		"bytes":        file.Size(),
	})
	return req.URL, nil
}

func (s *S3Store) publicURL(key string) string {
	segments := strings.Split(key, "/")
	for i, seg := range segments {
		segments[i] = url.PathEscape(seg)
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.config.Bucket, s.config.Region, strings.Join(segments, "/"))
}
