// internal/workers/application/submit-application/config.go
package submitapplication

import (
	"time"

	"maritime-intake/internal/common/config"
)

type Config struct {
	SimulatedDelay time.Duration
	UploadTimeout  time.Duration
	PersistTimeout time.Duration
	NotifyTimeout  time.Duration
	UploadParallel int
	JobTimeout     time.Duration
	MaxJobsActive  int
}

func LoadConfig(cfg *config.Config) *Config {
	worker := config.GetWorkerConfig(cfg, TaskType)
	return &Config{
		SimulatedDelay: config.GetDuration(cfg.Backend.SimulatedDelay),
		UploadTimeout:  config.GetDuration(cfg.Timeouts.Upload),
		PersistTimeout: config.GetDuration(cfg.Timeouts.Persist),
		NotifyTimeout:  config.GetDuration(cfg.Timeouts.Notify),
		UploadParallel: 4,
		JobTimeout:     config.GetDuration(worker.Timeout),
		MaxJobsActive:  worker.MaxJobsActive,
	}
}
