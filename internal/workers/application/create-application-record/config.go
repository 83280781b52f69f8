// internal/workers/application/create-application-record/config.go
package createapplicationrecord

import "maritime-intake/internal/common/config"

type Config struct {
	Table string
}

func LoadConfig(cfg *config.Config) *Config {
	table := cfg.Repository.Table
	if table == "" {
		table = "applications"
	}
	return &Config{Table: table}
}
