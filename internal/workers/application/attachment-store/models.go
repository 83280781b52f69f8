// internal/workers/application/attachment-store/models.go
package attachmentstore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"maritime-intake/internal/models"
)

// Category namespaces objects under a tracking code.
type Category string

const (
	CategoryPassport   Category = "passport"
	CategoryProfile    Category = "profile"
	CategoryAdditional Category = "additional"
)

var (
	ErrStorageUploadFailed = errors.New("STORAGE_UPLOAD_FAILED")
	ErrEmptyAttachment     = errors.New("EMPTY_ATTACHMENT")
)

// Store uploads one attachment and returns a locator that resolves to it.
type Store interface {
	Upload(ctx context.Context, file *models.Attachment, category Category, trackingCode string) (string, error)
}

// ObjectPath builds {trackingCode}/{category}/{epochMillis}_{filename}.
func ObjectPath(trackingCode string, category Category, at time.Time, filename string) string {
	return fmt.Sprintf("%s/%s/%d_%s", trackingCode, category, at.UnixMilli(), sanitizeFilename(filename))
}

func sanitizeFilename(name string) string {
	name = strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\':
			return '_'
		}
		if r < 0x20 || r == 0x7f {
			return -1
		}
		return r
	}, strings.TrimSpace(name))
	name = strings.TrimLeft(name, ".")
	if name == "" {
		return "file"
	}
	return name
}
