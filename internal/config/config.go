package config

import (
	"errors"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
// The values are read by Viper from a config file or environment variables.
type Config struct {
	App       AppConfig       `mapstructure:"app"`
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Session   SessionConfig   `mapstructure:"session"`
	S3        S3Config        `mapstructure:"s3"`
	Email     EmailConfig     `mapstructure:"email"`
	Jobs      JobsConfig      `mapstructure:"jobs"`
	Bootstrap BootstrapConfig `mapstructure:"bootstrap"`
	Log       LogConfig       `mapstructure:"log"`
}

type AppConfig struct {
	Name     string `mapstructure:"name"`
	Env      string `mapstructure:"env"`
	Timezone string `mapstructure:"timezone"`
}

type ServerConfig struct {
	Address        string        `mapstructure:"address"`
	BaseURL        string        `mapstructure:"base_url"`
	CSRFKey        string        `mapstructure:"csrf_key"`
	TrustedOrigins []string      `mapstructure:"trusted_origins"`
	ReadTimeout    time.Duration `mapstructure:"read_timeout"`
	WriteTimeout   time.Duration `mapstructure:"write_timeout"`
}

// DatabaseConfig selects the storage backend. Driver "memory" keeps all data
// in process and is meant for local runs only.
type DatabaseConfig struct {
	Driver string `mapstructure:"driver"`
	URI    string `mapstructure:"uri"`
	Name   string `mapstructure:"name"`
}

// RedisConfig is optional; an empty address falls back to in-memory sessions.
type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type SessionConfig struct {
	Secret     string        `mapstructure:"secret"`
	TTL        time.Duration `mapstructure:"ttl"`
	CookieName string        `mapstructure:"cookie_name"`
	Secure     bool          `mapstructure:"secure"`
}

type S3Config struct {
	Endpoint        string `mapstructure:"endpoint"`
	Region          string `mapstructure:"region"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
	BucketName      string `mapstructure:"bucket_name"`
	PublicBaseURL   string `mapstructure:"public_base_url"`
}

// Enabled reports whether enough S3 settings are present to build a client.
func (c S3Config) Enabled() bool {
	return c.BucketName != "" && c.Region != ""
}

// EmailConfig configures outgoing mail. Without an API key messages are only logged.
type EmailConfig struct {
	ResendAPIKey string `mapstructure:"resend_api_key"`
	From         string `mapstructure:"from"`
}

type JobsConfig struct {
	ExpirationSweepInterval time.Duration `mapstructure:"expiration_sweep_interval"`
	ReminderInterval        time.Duration `mapstructure:"reminder_interval"`
	ReminderWindowDays      int           `mapstructure:"reminder_window_days"`
}

// BootstrapConfig seeds the first administrator and the default plans at startup.
type BootstrapConfig struct {
	AdminUsername string `mapstructure:"admin_username"`
	AdminPassword string `mapstructure:"admin_password"`
	AdminName     string `mapstructure:"admin_name"`
	AdminEmail    string `mapstructure:"admin_email"`
	SeedPlans     bool   `mapstructure:"seed_plans"`
}

// LogConfig selects the zerolog level and output. Format "console" prints
// human readable lines, anything else emits JSON.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Location resolves the configured timezone, defaulting to UTC.
func (c AppConfig) Location() *time.Location {
	if c.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "gym-manager")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.timezone", "America/Lima")

	v.SetDefault("server.address", ":8080")
	v.SetDefault("server.base_url", "http://localhost:8080")
	v.SetDefault("server.trusted_origins", []string{"localhost:8080", "127.0.0.1:8080"})
	v.SetDefault("server.read_timeout", "10s")
	v.SetDefault("server.write_timeout", "10s")

	v.SetDefault("database.driver", "mongo")
	v.SetDefault("database.uri", "mongodb://localhost:27017")
	v.SetDefault("database.name", "gym_manager")

	v.SetDefault("redis.db", 0)

	v.SetDefault("session.ttl", "24h")
	v.SetDefault("session.cookie_name", "gym_session")
	v.SetDefault("session.secure", false)

	v.SetDefault("email.from", "Gimnasio <no-reply@example.com>")

	v.SetDefault("jobs.expiration_sweep_interval", "1h")
	v.SetDefault("jobs.reminder_interval", "24h")
	v.SetDefault("jobs.reminder_window_days", 7)

	v.SetDefault("bootstrap.admin_username", "admin")
	v.SetDefault("bootstrap.admin_name", "Administrador")
	v.SetDefault("bootstrap.admin_email", "admin@example.com")
	v.SetDefault("bootstrap.seed_plans", true)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
}

// LoadConfig reads configuration from file or environment variables.
// Nested keys map to env vars with dots replaced by underscores,
// e.g. session.secret -> SESSION_SECRET.
func LoadConfig(path string) (Config, error) {
	var cfg Config

	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(`.`, `_`))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return cfg, err
		}
		// No file: defaults and env vars only.
	}

	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, err
	}

	if cfg.Session.Secret == "" {
		return cfg, errors.New("session.secret must be set")
	}
	return cfg, nil
}
