package config

import (
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Notification dispatch modes
const (
	NotifyInline   = "inline"
	NotifyDetached = "detached"
	NotifyQueue    = "queue"
)

type Config struct {
	Env        string `mapstructure:"ENV"`
	ServerPort string `mapstructure:"SERVER_PORT"`

	DBHost     string `mapstructure:"DB_HOST"`
	DBPort     string `mapstructure:"DB_PORT"`
	DBUser     string `mapstructure:"DB_USER"`
	DBPassword string `mapstructure:"DB_PASSWORD"`
	DBName     string `mapstructure:"DB_NAME"`
	DBSSLMode  string `mapstructure:"DB_SSLMODE"`

	JWTSecret         string `mapstructure:"JWT_SECRET"`
	AccessTokenMaxAge int    `mapstructure:"ACCESS_TOKEN_MAX_AGE"`
	BcryptCost        int    `mapstructure:"BCRYPT_COST"`

	RedisURL    string `mapstructure:"REDIS_URL"`
	NotifyMode  string `mapstructure:"NOTIFY_MODE"`
	WorkerCount int    `mapstructure:"WORKER_COUNT"`

	DispatchConcurrency int `mapstructure:"DISPATCH_CONCURRENCY"`
	PushSendTimeoutSec  int `mapstructure:"PUSH_SEND_TIMEOUT_SECONDS"`

	FirebaseProjectID       string `mapstructure:"FIREBASE_PROJECT_ID"`
	FirebaseClientEmail     string `mapstructure:"FIREBASE_CLIENT_EMAIL"`
	FirebasePrivateKey      string `mapstructure:"FIREBASE_PRIVATE_KEY"`
	FirebaseCredentialsFile string `mapstructure:"FIREBASE_CREDENTIALS_FILE"`
	ExpoPushEnabled         bool   `mapstructure:"EXPO_PUSH_ENABLED"`

	R2AccountID       string `mapstructure:"R2_ACCOUNT_ID"`
	R2AccessKeyID     string `mapstructure:"R2_ACCESS_KEY_ID"`
	R2SecretAccessKey string `mapstructure:"R2_SECRET_ACCESS_KEY"`
	R2BucketName      string `mapstructure:"R2_BUCKET_NAME"`
	R2PublicURL       string `mapstructure:"R2_PUBLIC_URL"`
}

var keys = []string{
	"ENV", "SERVER_PORT",
	"DB_HOST", "DB_PORT", "DB_USER", "DB_PASSWORD", "DB_NAME", "DB_SSLMODE",
	"JWT_SECRET", "ACCESS_TOKEN_MAX_AGE", "BCRYPT_COST",
	"REDIS_URL", "NOTIFY_MODE", "WORKER_COUNT",
	"DISPATCH_CONCURRENCY", "PUSH_SEND_TIMEOUT_SECONDS",
	"FIREBASE_PROJECT_ID", "FIREBASE_CLIENT_EMAIL", "FIREBASE_PRIVATE_KEY", "FIREBASE_CREDENTIALS_FILE",
	"EXPO_PUSH_ENABLED",
	"R2_ACCOUNT_ID", "R2_ACCESS_KEY_ID", "R2_SECRET_ACCESS_KEY", "R2_BUCKET_NAME", "R2_PUBLIC_URL",
}

// Load reads .env (if present) into the process environment, then binds and defaults every key.
func Load() (*Config, error) {
	// A missing .env is normal in containers.
	_ = godotenv.Load()

	v := viper.New()
	v.SetDefault("ENV", "production")
	v.SetDefault("SERVER_PORT", "8080")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_SSLMODE", "require")
	v.SetDefault("ACCESS_TOKEN_MAX_AGE", 86400)
	v.SetDefault("BCRYPT_COST", 10)
	v.SetDefault("NOTIFY_MODE", NotifyInline)
	v.SetDefault("WORKER_COUNT", 2)
	v.SetDefault("DISPATCH_CONCURRENCY", 8)
	v.SetDefault("PUSH_SEND_TIMEOUT_SECONDS", 10)
	v.SetDefault("EXPO_PUSH_ENABLED", true)

	for _, k := range keys {
		_ = v.BindEnv(k)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.NotifyMode = strings.ToLower(strings.TrimSpace(cfg.NotifyMode))

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	switch c.NotifyMode {
	case NotifyInline, NotifyDetached:
	case NotifyQueue:
		if c.RedisURL == "" {
			return fmt.Errorf("REDIS_URL is required when NOTIFY_MODE is %q", NotifyQueue)
		}
	default:
		return fmt.Errorf("NOTIFY_MODE must be %q, %q or %q, got %q", NotifyInline, NotifyDetached, NotifyQueue, c.NotifyMode)
	}
	if c.AccessTokenMaxAge <= 0 {
		return fmt.Errorf("ACCESS_TOKEN_MAX_AGE must be positive")
	}
	return nil
}

// DSN builds the lib/pq connection string.
func (c *Config) DSN() string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
		c.DBHost, c.DBUser, c.DBPassword, c.DBName, c.DBPort, c.DBSSLMode)
}

func (c *Config) IsDev() bool {
	return c.Env == "development"
}

func (c *Config) QueueEnabled() bool {
	return c.NotifyMode == NotifyQueue
}

// StorageConfigured reports whether all R2 settings are present.
func (c *Config) StorageConfigured() bool {
	return c.R2AccountID != "" && c.R2AccessKeyID != "" && c.R2SecretAccessKey != "" &&
		c.R2BucketName != "" && c.R2PublicURL != ""
}
