// internal/workers/application/attachment-store/supabase.go
package attachmentstore

import (
	"context"
	"fmt"
	"time"

	commonerrors "maritime-intake/internal/common/errors"
	"maritime-intake/internal/common/logger"
	"maritime-intake/internal/models"
)

// SupabaseAPI is the subset of the Supabase storage client used here.
type SupabaseAPI interface {
	Upload(ctx context.Context, bucket, objectPath, contentType string, content []byte) error
	SignedURL(ctx context.Context, bucket, objectPath string, expiresIn time.Duration) (string, error)
	PublicURL(bucket, objectPath string) string
}

type SupabaseStore struct {
	api    SupabaseAPI
	config *Config
	now    func() time.Time
	logger logger.Logger
}

func NewSupabaseStore(config *Config, api SupabaseAPI, log logger.Logger) *SupabaseStore {
	return &SupabaseStore{
		api:    api,
		config: config,
		now:    time.Now,
		logger: logger.ForComponent(log, "attachment-store").WithFields(map[string]interface{}{"provider": "supabase"}),
	}
}

func (s *SupabaseStore) Upload(ctx context.Context, file *models.Attachment, category Category, trackingCode string) (string, error) {
	if file == nil || file.Size() == 0 {
		return "", uploadError(category, ErrEmptyAttachment)
	}

	objectPath := ObjectPath(trackingCode, category, s.now(), file.Filename)
	if err := s.api.Upload(ctx, s.config.Bucket, objectPath, file.ContentType, file.Content); err != nil {
		return "", uploadError(category, err)
	}

	if !s.config.signed() {
		return s.api.PublicURL(s.config.Bucket, objectPath), nil
	}

	locator, err := s.api.SignedURL(ctx, s.config.Bucket, objectPath, s.config.SignedURLTTL)
	if err != nil {
		return "", uploadError(category, fmt.Errorf("sign %s: %w", objectPath, err))
	}

	s.logger.Debug("attachment uploaded", map[string]interface{}{
		"trackingCode": trackingCode,
		"category":     string(category),
		"path":         objectPath,
		"bytes":        file.Size(),
	})
	return locator, nil
}

func uploadError(category Category, err error) error {
	return commonerrors.NewStorageUploadFailedError(string(category), fmt.Errorf("%w: %v", ErrStorageUploadFailed, err))
}
