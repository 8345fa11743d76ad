package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config structure represents the application configuration
type Config struct {
	Server struct {
		Port           string        `yaml:"port" env:"PORT"`
		Mode           string        `yaml:"mode" env:"SERVER_MODE"`
		FrontendURL    string        `yaml:"frontend_url" env:"FRONTEND_URL"`
		AllowedOrigins []string      `yaml:"allowed_origins" env:"ALLOWED_ORIGINS"`
		StoragePath    string        `yaml:"storage_path" env:"STORAGE_PATH"`
		PublicBaseURL  string        `yaml:"public_base_url" env:"PUBLIC_BASE_URL"`
		ReadTimeout    time.Duration `yaml:"read_timeout" env:"SERVER_READ_TIMEOUT"`
		WriteTimeout   time.Duration `yaml:"write_timeout" env:"SERVER_WRITE_TIMEOUT"`
	} `yaml:"server"`

	Database struct {
		URI             string        `yaml:"uri" env:"MONGODB_URI"`
		Name            string        `yaml:"name" env:"MONGODB_DB"`
		ConnectTimeout  time.Duration `yaml:"connect_timeout" env:"MONGODB_CONNECT_TIMEOUT"`
		MaxPoolSize     uint64        `yaml:"max_pool_size" env:"MONGODB_MAX_POOL_SIZE"`
		UseTransactions bool          `yaml:"use_transactions" env:"MONGODB_USE_TRANSACTIONS"`
	} `yaml:"database"`

	JWT struct {
		Secret     string `yaml:"secret" env:"JWT_SECRET"`
		Expiration string `yaml:"expiration" env:"JWT_EXPIRATION"`
		Issuer     string `yaml:"issuer" env:"JWT_ISSUER"`
	} `yaml:"jwt"`

	Cookie struct {
		Name   string `yaml:"name" env:"COOKIE_NAME"`
		Domain string `yaml:"domain" env:"COOKIE_DOMAIN"`
	} `yaml:"cookie"`

	Paystack struct {
		BaseURL            string        `yaml:"base_url" env:"PAYSTACK_BASE_URL"`
		SecretKeyTest      string        `yaml:"secret_key_test" env:"PAYSTACK_SECRET_KEY_TEST"`
		SecretKeyLive      string        `yaml:"secret_key_live" env:"PAYSTACK_SECRET_KEY_LIVE"`
		Currency           string        `yaml:"currency" env:"PAYSTACK_CURRENCY"`
		Timeout            time.Duration `yaml:"timeout" env:"PAYSTACK_TIMEOUT"`
		PendingReuseWindow time.Duration `yaml:"pending_reuse_window" env:"PAYSTACK_PENDING_REUSE_WINDOW"`
	} `yaml:"paystack"`

	SMTP struct {
		Host      string `yaml:"host" env:"SMTP_HOST"`
		Port      int    `yaml:"port" env:"SMTP_PORT"`
		Username  string `yaml:"username" env:"SMTP_USER"`
		Password  string `yaml:"password" env:"SMTP_PASS"`
		FromName  string `yaml:"from_name" env:"SMTP_FROM_NAME"`
		FromEmail string `yaml:"from_email" env:"SMTP_FROM_EMAIL"`
	} `yaml:"smtp"`

	Mail struct {
		Workers        int           `yaml:"workers" env:"MAIL_WORKERS"`
		QueueSize      int           `yaml:"queue_size" env:"MAIL_QUEUE_SIZE"`
		MaxAttempts    int           `yaml:"max_attempts" env:"MAIL_MAX_ATTEMPTS"`
		RetryBaseDelay time.Duration `yaml:"retry_base_delay" env:"MAIL_RETRY_BASE_DELAY"`
		SendTimeout    time.Duration `yaml:"send_timeout" env:"MAIL_SEND_TIMEOUT"`
	} `yaml:"mail"`

	Cloudinary struct {
		CloudName string `yaml:"cloud_name" env:"CLOUDINARY_CLOUD_NAME"`
		APIKey    string `yaml:"api_key" env:"CLOUDINARY_API_KEY"`
		APISecret string `yaml:"api_secret" env:"CLOUDINARY_API_SECRET"`
		Folder    string `yaml:"folder" env:"CLOUDINARY_FOLDER"`
	} `yaml:"cloudinary"`

	Seed struct {
		AdminEmail    string `yaml:"admin_email" env:"SEED_ADMIN_EMAIL"`
		AdminPassword string `yaml:"admin_password" env:"SEED_ADMIN_PASSWORD"`
	} `yaml:"seed"`

	Logging struct {
		Level  string `yaml:"level" env:"LOG_LEVEL"`
		Format string `yaml:"format" env:"LOG_FORMAT"`
	} `yaml:"logging"`
}

// LoadConfig loads configuration from an optional .env file, a YAML file and
// environment variables, in increasing order of precedence.
func LoadConfig(configPath string) (*Config, error) {
	// A missing .env is normal outside local development
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	config := &Config{}
	setDefaults(config)

	if _, err := os.Stat(configPath); err == nil {
		file, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}

		if err := yaml.Unmarshal(file, config); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	if err := processStructFields(config); err != nil {
		return nil, fmt.Errorf("failed to load from environment: %w", err)
	}

	if err := validateConfig(config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// setDefaults sets default values for the configuration
func setDefaults(config *Config) {
	config.Server.Port = "5000"
	config.Server.Mode = "development"
	config.Server.FrontendURL = "http://localhost:3000"
	config.Server.AllowedOrigins = []string{"http://localhost:3000"}
	config.Server.StoragePath = "uploads"
	config.Server.ReadTimeout = 15 * time.Second
	config.Server.WriteTimeout = 45 * time.Second

	config.Database.URI = "mongodb://localhost:27017"
	config.Database.Name = "skillspad"
	config.Database.ConnectTimeout = 10 * time.Second
	config.Database.MaxPoolSize = 50
	config.Database.UseTransactions = false

	config.JWT.Expiration = "168h"
	config.JWT.Issuer = "skillspad"

	config.Cookie.Name = "token"

	config.Paystack.BaseURL = "https://api.paystack.co"
	config.Paystack.Currency = "GHS"
	config.Paystack.Timeout = 30 * time.Second
	config.Paystack.PendingReuseWindow = 30 * time.Minute

	config.SMTP.Port = 587
	config.SMTP.FromName = "Skillspad"

	config.Mail.Workers = 2
	config.Mail.QueueSize = 256
	config.Mail.MaxAttempts = 4
	config.Mail.RetryBaseDelay = 2 * time.Second
	config.Mail.SendTimeout = 30 * time.Second

	config.Cloudinary.Folder = "assignments"

	config.Logging.Level = "info"
	config.Logging.Format = "json"
}

// validateConfig ensures that the configuration is valid
func validateConfig(config *Config) error {
	if config.Database.URI == "" {
		return fmt.Errorf("database uri is required")
	}

	if config.Database.Name == "" {
		return fmt.Errorf("database name is required")
	}

	if config.JWT.Secret == "" {
		return fmt.Errorf("JWT secret is required")
	}

	if _, err := time.ParseDuration(config.JWT.Expiration); err != nil {
		return fmt.Errorf("invalid JWT expiration format: %w", err)
	}

	if config.Paystack.Timeout <= 0 {
		return fmt.Errorf("paystack timeout must be positive")
	}

	if config.Mail.Workers < 1 || config.Mail.QueueSize < 1 || config.Mail.MaxAttempts < 1 {
		return fmt.Errorf("mail workers, queue size and max attempts must be at least 1")
	}

	return nil
}

// IsProduction reports whether the server runs in production mode
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Server.Mode, "production")
}

// PaystackSecretKey selects the live key in production and the test key otherwise
func (c *Config) PaystackSecretKey() string {
	if c.IsProduction() {
		return c.Paystack.SecretKeyLive
	}
	return c.Paystack.SecretKeyTest
}

// CloudinaryEnabled reports whether every Cloudinary credential is present
func (c *Config) CloudinaryEnabled() bool {
	return c.Cloudinary.CloudName != "" && c.Cloudinary.APIKey != "" && c.Cloudinary.APISecret != ""
}
