// internal/api/config.go
package api

import (
	"time"

	"maritime-intake/internal/common/config"

	"golang.org/x/time/rate"
)

type Config struct {
	Address          string
	RateLimit        rate.Limit
	RateBurst        int
	NotificationWait time.Duration
	MaxUploadBytes   int64
	AllowedOrigins   []string
	ShutdownTimeout  time.Duration
}

func LoadConfig(cfg *config.Config) *Config {
	return &Config{
		Address:          cfg.HTTP.Address,
		RateLimit:        rate.Limit(cfg.HTTP.RateLimit),
		RateBurst:        cfg.HTTP.RateBurst,
		NotificationWait: config.GetDuration(cfg.HTTP.NotificationWait),
		MaxUploadBytes:   cfg.HTTP.MaxUploadBytes,
		AllowedOrigins:   cfg.HTTP.AllowedOrigins,
		ShutdownTimeout:  config.GetDuration(cfg.HTTP.ShutdownTimeout),
	}
}
