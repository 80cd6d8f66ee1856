package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// RateLimitRule is a request ceiling for one route group.
type RateLimitRule struct {
	Requests int    `yaml:"requests"`
	Window   string `yaml:"window"`
}

// Config structure represents the application configuration
type Config struct {
	Server struct {
		Port            string `yaml:"port" env:"PORT"`
		Mode            string `yaml:"mode" env:"SERVER_MODE"`
		ShutdownTimeout string `yaml:"shutdown_timeout" env:"SERVER_SHUTDOWN_TIMEOUT"`
	} `yaml:"server"`

	Database struct {
		URI             string `yaml:"uri" env:"DATABASE_URI"`
		Name            string `yaml:"name" env:"DATABASE_NAME"`
		MaxIdleConns    int    `yaml:"max_idle_conns" env:"DB_MAX_IDLE_CONNS"`
		MaxOpenConns    int    `yaml:"max_open_conns" env:"DB_MAX_OPEN_CONNS"`
		ConnMaxLifetime string `yaml:"conn_max_lifetime" env:"DB_CONN_MAX_LIFETIME"`
		QueryTimeout    string `yaml:"query_timeout" env:"DB_QUERY_TIMEOUT"`
	} `yaml:"database"`

	JWT struct {
		Secret                string `yaml:"secret" env:"JWT_SECRET"`
		AccessTokenExpiration string `yaml:"access_token_expiration" env:"JWT_ACCESS_TOKEN_EXPIRATION"`
		Issuer                string `yaml:"issuer" env:"JWT_ISSUER"`
	} `yaml:"jwt"`

	Password struct {
		BcryptCost int `yaml:"bcrypt_cost" env:"BCRYPT_COST"`
	} `yaml:"password"`

	Institution struct {
		EmailDomain string `yaml:"email_domain" env:"INSTITUTION_EMAIL_DOMAIN"`
	} `yaml:"institution"`

	RateLimit struct {
		General  RateLimitRule `yaml:"general"`
		Auth     RateLimitRule `yaml:"auth"`
		Content  RateLimitRule `yaml:"content"`
		Comments RateLimitRule `yaml:"comments"`
	} `yaml:"rate_limit"`

	Redis struct {
		Addr       string `yaml:"addr" env:"REDIS_ADDR"`
		Password   string `yaml:"password" env:"REDIS_PASSWORD"`
		DB         int    `yaml:"db" env:"REDIS_DB"`
		ProfileTTL string `yaml:"profile_ttl" env:"REDIS_PROFILE_TTL"`
	} `yaml:"redis"`

	Storage struct {
		Driver       string `yaml:"driver" env:"STORAGE_DRIVER"`
		LocalPath    string `yaml:"local_path" env:"STORAGE_LOCAL_PATH"`
		PublicURL    string `yaml:"public_url" env:"STORAGE_PUBLIC_URL"`
		Bucket       string `yaml:"bucket" env:"S3_BUCKET"`
		Region       string `yaml:"region" env:"S3_REGION"`
		Endpoint     string `yaml:"endpoint" env:"S3_ENDPOINT"`
		AccessKey    string `yaml:"access_key" env:"S3_ACCESS_KEY"`
		SecretKey    string `yaml:"secret_key" env:"S3_SECRET_KEY"`
		MaxImageSize int64  `yaml:"max_image_size" env:"STORAGE_MAX_IMAGE_SIZE"`
		Timeout      string `yaml:"timeout" env:"STORAGE_TIMEOUT"`
	} `yaml:"storage"`

	Kafka struct {
		Brokers string `yaml:"brokers" env:"KAFKA_BROKERS"`
		Topic   string `yaml:"topic" env:"KAFKA_TOPIC"`
	} `yaml:"kafka"`

	SMTP struct {
		Host      string `yaml:"host" env:"SMTP_HOST"`
		Port      int    `yaml:"port" env:"SMTP_PORT"`
		Username  string `yaml:"username" env:"SMTP_USERNAME"`
		Password  string `yaml:"password" env:"SMTP_PASSWORD"`
		FromName  string `yaml:"from_name" env:"SMTP_FROM_NAME"`
		FromEmail string `yaml:"from_email" env:"SMTP_FROM_EMAIL"`
		UseTLS    bool   `yaml:"use_tls" env:"SMTP_USE_TLS"`
	} `yaml:"smtp"`

	Seed struct {
		Demo bool `yaml:"demo" env:"SEED_DEMO"`
	} `yaml:"seed"`

	Logging struct {
		Level  string `yaml:"level" env:"LOG_LEVEL"`
		Format string `yaml:"format" env:"LOG_FORMAT"`
	} `yaml:"logging"`
}

// LoadConfig loads configuration from a file and environment variables
func LoadConfig(configPath string) (*Config, error) {
	config := &Config{}
	setDefaults(config)

	// The file is optional; env alone is enough to boot.
	if _, err := os.Stat(configPath); err == nil {
		file, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}

		if err := yaml.Unmarshal(file, config); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	if err := loadFromEnv(config); err != nil {
		return nil, fmt.Errorf("failed to load from environment: %w", err)
	}

	if err := validateConfig(config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// setDefaults sets default values for the configuration
func setDefaults(config *Config) {
	config.Server.Port = "3000"
	config.Server.Mode = "development"
	config.Server.ShutdownTimeout = "10s"

	config.Database.Name = "college_blog"
	config.Database.MaxIdleConns = 2
	config.Database.MaxOpenConns = 10
	config.Database.ConnMaxLifetime = "1h"
	config.Database.QueryTimeout = "5s"

	config.JWT.AccessTokenExpiration = "24h"
	config.JWT.Issuer = "college-blog"

	config.Password.BcryptCost = 10

	config.Institution.EmailDomain = "@gecidukki.ac.in"

	config.RateLimit.General = RateLimitRule{Requests: 200, Window: "15m"}
	config.RateLimit.Auth = RateLimitRule{Requests: 50, Window: "15m"}
	config.RateLimit.Content = RateLimitRule{Requests: 20, Window: "1h"}
	config.RateLimit.Comments = RateLimitRule{Requests: 30, Window: "15m"}

	config.Redis.ProfileTTL = "5m"

	config.Storage.Driver = "local"
	config.Storage.LocalPath = "public/uploads"
	config.Storage.PublicURL = "/uploads"
	config.Storage.Region = "us-east-1"
	config.Storage.MaxImageSize = 5 * 1024 * 1024
	config.Storage.Timeout = "15s"

	config.Kafka.Topic = "college-blog.events"

	config.SMTP.Port = 587
	config.SMTP.FromName = "College Blog"

	config.Logging.Level = "info"
	config.Logging.Format = "json"
}

// loadFromEnv overrides configuration with environment variables
func loadFromEnv(config *Config) error {
	return processStructFields(config)
}

// validateConfig ensures that the configuration is valid
func validateConfig(config *Config) error {
	if config.Database.URI == "" {
		return fmt.Errorf("database URI is required (DATABASE_URI)")
	}

	if config.JWT.Secret == "" {
		return fmt.Errorf("JWT secret is required (JWT_SECRET)")
	}

	if config.Server.Port == "" {
		return fmt.Errorf("server port is required")
	}

	durations := map[string]string{
		"jwt access token expiration": config.JWT.AccessTokenExpiration,
		"database query timeout":      config.Database.QueryTimeout,
		"database conn max lifetime":  config.Database.ConnMaxLifetime,
		"server shutdown timeout":     config.Server.ShutdownTimeout,
		"storage timeout":             config.Storage.Timeout,
		"redis profile ttl":           config.Redis.ProfileTTL,
		"general rate limit window":   config.RateLimit.General.Window,
		"auth rate limit window":      config.RateLimit.Auth.Window,
		"content rate limit window":   config.RateLimit.Content.Window,
		"comments rate limit window":  config.RateLimit.Comments.Window,
	}
	for name, value := range durations {
		if _, err := time.ParseDuration(value); err != nil {
			return fmt.Errorf("invalid %s format: %w", name, err)
		}
	}

	switch strings.ToLower(config.Storage.Driver) {
	case "local":
	case "s3":
		if config.Storage.Bucket == "" {
			return fmt.Errorf("storage bucket is required for the s3 driver")
		}
	default:
		return fmt.Errorf("unsupported storage driver %q", config.Storage.Driver)
	}

	if !strings.HasPrefix(config.Institution.EmailDomain, "@") {
		return fmt.Errorf("institution email domain must start with '@'")
	}

	return nil
}

// IsMongoURI reports whether the configured database URI points at MongoDB.
func (c *Config) IsMongoURI() bool {
	uri := strings.ToLower(c.Database.URI)
	return strings.HasPrefix(uri, "mongodb://") || strings.HasPrefix(uri, "mongodb+srv://")
}

// KafkaBrokers returns the configured broker list, empty when events are disabled.
func (c *Config) KafkaBrokers() []string {
	var brokers []string
	for _, b := range strings.Split(c.Kafka.Brokers, ",") {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}
	return brokers
}

// GetEnv gets an environment variable or returns a default value
func GetEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}
