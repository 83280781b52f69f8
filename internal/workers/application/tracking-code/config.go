// internal/workers/application/tracking-code/config.go
package trackingcode

import (
	"time"

	"maritime-intake/internal/common/config"
)

type Config struct {
	Prefix             string
	MaxAttempts        int
	ReservationTTL     time.Duration
	ReservationTimeout time.Duration
	KeyPrefix          string
}

func LoadConfig(cfg *config.Config) *Config {
	return &Config{
		Prefix:             cfg.Tracking.Prefix,
		MaxAttempts:        cfg.Tracking.MaxAttempts,
		ReservationTTL:     config.GetDuration(cfg.Tracking.ReservationTTL),
		ReservationTimeout: config.GetDuration(cfg.Timeouts.Reservation),
		KeyPrefix:          cfg.Tracking.KeyPrefix,
	}
}
