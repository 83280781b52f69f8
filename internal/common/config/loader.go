// internal/common/config/loader.go
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Load reads configs/config.yaml, merges configs/config.<APP_ENVIRONMENT>.yaml
// on top and applies environment overrides.
func Load() (*Config, error) {
	loadEnvFile()

	v := newViper()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./configs")
	v.AddConfigPath("../../configs")
	v.AddConfigPath(".")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading base config: %w", err)
		}
	}

	env := os.Getenv("APP_ENVIRONMENT")
	if env == "" {
		env = "development"
	}
	v.SetConfigName(fmt.Sprintf("config.%s", env))
	_ = v.MergeInConfig()

	return finish(v)
}

// LoadFromFile loads configuration from a specific file path.
func LoadFromFile(path string) (*Config, error) {
	loadEnvFile()

	v := newViper()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	return finish(v)
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	return v
}

func finish(v *viper.Viper) (*Config, error) {
	expandEnvVars(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	overrideEmptyConfig(&cfg)
	applyDefaults(&cfg)

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

func loadEnvFile() {
	paths := []string{".env", "../.env", "../../.env"}
	if root := findProjectRoot(); root != "" {
		paths = append(paths, filepath.Join(root, ".env"))
	}

	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Load(path); err == nil {
				return
			}
		}
	}
}

func findProjectRoot() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

// expandEnvVars resolves ${VAR} placeholders in string values.
func expandEnvVars(v *viper.Viper) {
	for _, key := range v.AllKeys() {
		strVal, ok := v.Get(key).(string)
		if !ok || !strings.Contains(strVal, "$") {
			continue
		}
		if expanded := os.ExpandEnv(strVal); expanded != strVal {
			v.Set(key, expanded)
		}
	}
}

// overrideEmptyConfig fills credentials from the conventional environment
// names when the YAML leaves them empty.
func overrideEmptyConfig(cfg *Config) {
	setIfEmpty(&cfg.Supabase.URL, "SUPABASE_URL", "NEXT_PUBLIC_SUPABASE_URL")
	setIfEmpty(&cfg.Supabase.ServiceKey, "SUPABASE_SERVICE_ROLE_KEY", "NEXT_PUBLIC_SUPABASE_ANON_KEY")
	setIfEmpty(&cfg.Notifications.AdminEmail, "ADMIN_EMAIL")
	setIfEmpty(&cfg.Notifications.FromEmail, "FROM_EMAIL")
	setIfEmpty(&cfg.Database.Postgres.User, "DB_USER")
	setIfEmpty(&cfg.Database.Postgres.Password, "DB_PASSWORD")
	setIfEmpty(&cfg.Database.Redis.Address, "REDIS_ADDRESS")
	setIfEmpty(&cfg.Notifications.AWS.Region, "AWS_REGION")
}

func setIfEmpty(target *string, envNames ...string) {
	if *target != "" {
		return
	}
	for _, name := range envNames {
		if val := os.Getenv(name); val != "" {
			*target = val
			return
		}
	}
}

// applyDefaults sets default values for optional configuration fields
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "maritime-intake"
	}

	if cfg.Backend.Mode == "" {
		cfg.Backend.Mode = BackendModeAuto
	}
	if cfg.Backend.SimulatedDelay == 0 {
		cfg.Backend.SimulatedDelay = 1200
	}

	if cfg.Tracking.Prefix == "" {
		cfg.Tracking.Prefix = "AAMOI"
	}
	if cfg.Tracking.MaxAttempts == 0 {
		cfg.Tracking.MaxAttempts = 3
	}
	if cfg.Tracking.ReservationTTL == 0 {
		cfg.Tracking.ReservationTTL = int((48 * time.Hour).Milliseconds())
	}
	if cfg.Tracking.KeyPrefix == "" {
		cfg.Tracking.KeyPrefix = "intake:tracking:"
	}

	if cfg.Storage.Provider == "" {
		cfg.Storage.Provider = StorageProviderSupabase
	}
	if cfg.Storage.Bucket == "" {
		cfg.Storage.Bucket = "applications"
	}
	if cfg.Storage.URLMode == "" {
		cfg.Storage.URLMode = URLModeSigned
	}
	if cfg.Storage.SignedURLTTL == 0 {
		cfg.Storage.SignedURLTTL = int((7 * 24 * time.Hour).Milliseconds())
	}

	if cfg.Repository.Provider == "" {
		cfg.Repository.Provider = RepositoryProviderPostgres
	}
	if cfg.Repository.Table == "" {
		cfg.Repository.Table = "applications"
	}

	if cfg.Database.Postgres.Port == 0 {
		cfg.Database.Postgres.Port = 5432
	}
	if cfg.Database.Postgres.MaxConnections == 0 {
		cfg.Database.Postgres.MaxConnections = 25
	}
	if cfg.Database.Postgres.MaxIdle == 0 {
		cfg.Database.Postgres.MaxIdle = 5
	}
	if cfg.Database.Postgres.SSLMode == "" {
		cfg.Database.Postgres.SSLMode = "disable"
	}

	if cfg.Notifications.AWS.Region == "" {
		cfg.Notifications.AWS.Region = "us-east-1"
	}
	if cfg.Storage.S3.Region == "" {
		cfg.Storage.S3.Region = cfg.Notifications.AWS.Region
	}

	if cfg.Timeouts.Upload == 0 {
		cfg.Timeouts.Upload = 30000
	}
	if cfg.Timeouts.Persist == 0 {
		cfg.Timeouts.Persist = 10000
	}
	if cfg.Timeouts.Notify == 0 {
		cfg.Timeouts.Notify = 15000
	}
	if cfg.Timeouts.Reservation == 0 {
		cfg.Timeouts.Reservation = 2000
	}

	if cfg.HTTP.Address == "" {
		cfg.HTTP.Address = ":8080"
	}
	if cfg.HTTP.RateLimit == 0 {
		cfg.HTTP.RateLimit = 0.2
	}
	if cfg.HTTP.RateBurst == 0 {
		cfg.HTTP.RateBurst = 3
	}
	if cfg.HTTP.NotificationWait == 0 {
		cfg.HTTP.NotificationWait = 3000
	}
	if cfg.HTTP.MaxUploadBytes == 0 {
		cfg.HTTP.MaxUploadBytes = 25 << 20
	}
	if cfg.HTTP.ShutdownTimeout == 0 {
		cfg.HTTP.ShutdownTimeout = 30000
	}

	if cfg.Camunda.MaxJobsActive == 0 {
		cfg.Camunda.MaxJobsActive = 10
	}
	if cfg.Camunda.Timeout == 0 {
		cfg.Camunda.Timeout = 60000
	}
	if cfg.Camunda.RequestTimeout == 0 {
		cfg.Camunda.RequestTimeout = 30000
	}

	for key, worker := range cfg.Workers {
		if worker.MaxJobsActive == 0 {
			worker.MaxJobsActive = 5
		}
		if worker.Timeout == 0 {
			worker.Timeout = 60000
		}
		cfg.Workers[key] = worker
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
}

// validateConfig rejects combinations the service cannot start with.
func validateConfig(cfg *Config) error {
	switch cfg.Backend.Mode {
	case BackendModeAuto, BackendModeLive, BackendModeSimulated:
	default:
		return fmt.Errorf("backend.mode must be one of auto, live, simulated (got %q)", cfg.Backend.Mode)
	}

	switch cfg.Storage.Provider {
	case StorageProviderSupabase, StorageProviderS3:
	default:
		return fmt.Errorf("storage.provider must be supabase or s3 (got %q)", cfg.Storage.Provider)
	}

	switch cfg.Storage.URLMode {
	case URLModeSigned, URLModePublic:
	default:
		return fmt.Errorf("storage.url_mode must be signed or public (got %q)", cfg.Storage.URLMode)
	}

	switch cfg.Repository.Provider {
	case RepositoryProviderPostgres, RepositoryProviderSupabase:
	default:
		return fmt.Errorf("repository.provider must be postgres or supabase (got %q)", cfg.Repository.Provider)
	}

	if cfg.Tracking.MaxAttempts < 1 {
		return fmt.Errorf("tracking.max_attempts must be at least 1")
	}

	if cfg.Backend.Mode == BackendModeLive {
		if !cfg.StorageConfigured() {
			return fmt.Errorf("backend.mode=live requires credentials for storage provider %q", cfg.Storage.Provider)
		}
		if !cfg.RepositoryConfigured() {
			return fmt.Errorf("backend.mode=live requires credentials for repository provider %q", cfg.Repository.Provider)
		}
	}

	if cfg.Camunda.Enabled && cfg.Camunda.BrokerAddress == "" {
		return fmt.Errorf("camunda.broker_address is required when camunda is enabled")
	}

	return nil
}

// GetDuration converts milliseconds from config to time.Duration
func GetDuration(milliseconds int) time.Duration {
	return time.Duration(milliseconds) * time.Millisecond
}

// GetWorkerConfig retrieves worker-specific configuration with fallback to defaults
func GetWorkerConfig(cfg *Config, workerName string) WorkerConfig {
	if worker, exists := cfg.Workers[workerName]; exists {
		return worker
	}
	return WorkerConfig{
		Enabled:       true,
		MaxJobsActive: 5,
		Timeout:       60000,
	}
}

// IsWorkerEnabled checks if a specific worker is enabled
func IsWorkerEnabled(cfg *Config, workerName string) bool {
	if worker, exists := cfg.Workers[workerName]; exists {
		return worker.Enabled
	}
	return true
}
