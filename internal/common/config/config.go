// internal/common/config/config.go
package config

import (
	"fmt"
	"net/url"
)

// Config is the main application configuration struct.
type Config struct {
	App           AppConfig               `mapstructure:"app"`
	Backend       BackendConfig           `mapstructure:"backend"`
	Tracking      TrackingConfig          `mapstructure:"tracking"`
	Storage       StorageConfig           `mapstructure:"storage"`
	Supabase      SupabaseConfig          `mapstructure:"supabase"`
	Repository    RepositoryConfig        `mapstructure:"repository"`
	Database      DatabaseConfig          `mapstructure:"database"`
	Notifications NotificationConfig      `mapstructure:"notifications"`
	Timeouts      TimeoutConfig           `mapstructure:"timeouts"`
	HTTP          HTTPConfig              `mapstructure:"http"`
	Camunda       CamundaConfig           `mapstructure:"camunda"`
	Workers       map[string]WorkerConfig `mapstructure:"workers"`
	Catalog       CatalogConfig           `mapstructure:"catalog"`
	Logging       LoggingConfig           `mapstructure:"logging"`
}

type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

const (
	BackendModeAuto      = "auto"
	BackendModeLive      = "live"
	BackendModeSimulated = "simulated"
)

// BackendConfig selects between the live and simulated submission backends.
// In auto mode the live backend is used only when storage and repository
// credentials are present.
type BackendConfig struct {
	Mode           string `mapstructure:"mode"`
	SimulatedDelay int    `mapstructure:"simulated_delay"` // milliseconds
}

type TrackingConfig struct {
	Prefix         string `mapstructure:"prefix"`
	MaxAttempts    int    `mapstructure:"max_attempts"`
	ReservationTTL int    `mapstructure:"reservation_ttl"` // milliseconds
	KeyPrefix      string `mapstructure:"key_prefix"`
}

const (
	StorageProviderSupabase = "supabase"
	StorageProviderS3       = "s3"

	URLModeSigned = "signed"
	URLModePublic = "public"
)

type StorageConfig struct {
	Provider     string   `mapstructure:"provider"`
	Bucket       string   `mapstructure:"bucket"`
	URLMode      string   `mapstructure:"url_mode"`
	SignedURLTTL int      `mapstructure:"signed_url_ttl"` // milliseconds
	S3           S3Config `mapstructure:"s3"`
}

type S3Config struct {
	Region       string `mapstructure:"region"`
	Endpoint     string `mapstructure:"endpoint"`
	UsePathStyle bool   `mapstructure:"use_path_style"`
}

type SupabaseConfig struct {
	URL        string `mapstructure:"url"`
	ServiceKey string `mapstructure:"service_key"`
}

// Configured reports whether both the project URL and a key are set.
func (s SupabaseConfig) Configured() bool {
	if s.URL == "" || s.ServiceKey == "" {
		return false
	}
	u, err := url.Parse(s.URL)
	return err == nil && u.Scheme != "" && u.Host != ""
}

const (
	RepositoryProviderPostgres = "postgres"
	RepositoryProviderSupabase = "supabase"
)

type RepositoryConfig struct {
	Provider string `mapstructure:"provider"`
	Table    string `mapstructure:"table"`
}

type DatabaseConfig struct {
	Postgres PostgresConfig `mapstructure:"postgres"`
	Redis    RedisConfig    `mapstructure:"redis"`
}

type PostgresConfig struct {
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port"`
	Database       string `mapstructure:"database"`
	User           string `mapstructure:"user"`
	Password       string `mapstructure:"password"`
	MaxConnections int    `mapstructure:"max_connections"`
	MaxIdle        int    `mapstructure:"max_idle"`
	SSLMode        string `mapstructure:"sslmode"`
}

// GetDSN returns the PostgreSQL connection string
func (p PostgresConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

// GetURL returns the connection string in URL form, as golang-migrate expects.
func (p PostgresConfig) GetURL() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(p.User, p.Password),
		Host:     fmt.Sprintf("%s:%d", p.Host, p.Port),
		Path:     "/" + p.Database,
		RawQuery: "sslmode=" + p.SSLMode,
	}
	return u.String()
}

func (p PostgresConfig) Configured() bool {
	return p.Host != "" && p.Database != "" && p.User != ""
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// NotificationConfig holds settings for the send-notification component.
type NotificationConfig struct {
	FromEmail  string `mapstructure:"from_email"`
	AdminEmail string `mapstructure:"admin_email"`
	ReplyTo    string `mapstructure:"reply_to"`
	AWS        struct {
		Region string `mapstructure:"region"`
	} `mapstructure:"aws"`
	SES struct {
		Enabled bool `mapstructure:"enabled"`
	} `mapstructure:"ses"`
	SMS struct {
		Enabled  bool   `mapstructure:"enabled"`
		SenderID string `mapstructure:"sender_id"`
	} `mapstructure:"sms"`
}

// EmailConfigured reports whether the dispatcher has what it needs to send mail.
func (n NotificationConfig) EmailConfigured() bool {
	return n.SES.Enabled && n.FromEmail != "" && n.AdminEmail != ""
}

// TimeoutConfig bounds every external call, in milliseconds.
type TimeoutConfig struct {
	Upload      int `mapstructure:"upload"`
	Persist     int `mapstructure:"persist"`
	Notify      int `mapstructure:"notify"`
	Reservation int `mapstructure:"reservation"`
}

type HTTPConfig struct {
	Address          string   `mapstructure:"address"`
	RateLimit        float64  `mapstructure:"rate_limit"` // requests per second per client
	RateBurst        int      `mapstructure:"rate_burst"`
	NotificationWait int      `mapstructure:"notification_wait"` // milliseconds
	MaxUploadBytes   int64    `mapstructure:"max_upload_bytes"`
	AllowedOrigins   []string `mapstructure:"allowed_origins"`
	ShutdownTimeout  int      `mapstructure:"shutdown_timeout"` // milliseconds
}

type CamundaConfig struct {
	Enabled        bool   `mapstructure:"enabled"`
	BrokerAddress  string `mapstructure:"broker_address"`
	MaxJobsActive  int    `mapstructure:"max_jobs_active"`
	Timeout        int    `mapstructure:"timeout"`         // milliseconds
	RequestTimeout int    `mapstructure:"request_timeout"` // milliseconds
}

// WorkerConfig holds the core settings applicable to every worker.
type WorkerConfig struct {
	Enabled       bool `mapstructure:"enabled"`
	MaxJobsActive int  `mapstructure:"max_jobs_active"`
	Timeout       int  `mapstructure:"timeout"` // milliseconds
	MaxRetries    int  `mapstructure:"max_retries"`
}

type CatalogConfig struct {
	Path string `mapstructure:"path"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// StorageConfigured reports whether the selected storage provider has credentials.
func (c *Config) StorageConfigured() bool {
	switch c.Storage.Provider {
	case StorageProviderS3:
		return c.Storage.Bucket != "" && c.Storage.S3.Region != ""
	default:
		return c.Supabase.Configured()
	}
}

// RepositoryConfigured reports whether the selected record repository has credentials.
func (c *Config) RepositoryConfigured() bool {
	switch c.Repository.Provider {
	case RepositoryProviderSupabase:
		return c.Supabase.Configured()
	default:
		return c.Database.Postgres.Configured()
	}
}

// UseLiveBackend resolves the backend mode once at startup.
func (c *Config) UseLiveBackend() bool {
	switch c.Backend.Mode {
	case BackendModeLive:
		return true
	case BackendModeSimulated:
		return false
	default:
		return c.StorageConfigured() && c.RepositoryConfigured()
	}
}
