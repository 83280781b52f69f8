// internal/workers/application/attachment-store/config.go
package attachmentstore

import (
	"time"

	"maritime-intake/internal/common/config"
)

type Config struct {
	Bucket       string
	URLMode      string
	SignedURLTTL time.Duration
	Region       string
}

func LoadConfig(cfg *config.Config) *Config {
	return &Config{
		Bucket:       cfg.Storage.Bucket,
		URLMode:      cfg.Storage.URLMode,
		SignedURLTTL: config.GetDuration(cfg.Storage.SignedURLTTL),
		Region:       cfg.Storage.S3.Region,
	}
}

func (c *Config) signed() bool {
	return c.URLMode != config.URLModePublic
}
