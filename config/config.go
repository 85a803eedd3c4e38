package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Env  string `yaml:"env"`
	Port int    `yaml:"port"`

	DBDriver   string `yaml:"db_driver"`
	DBDSN      string `yaml:"db_dsn"`
	DBLogLevel string `yaml:"db_log_level"`
	SeedDemo   bool   `yaml:"seed_demo_data"`

	JWTSecret string        `yaml:"jwt_secret_key"`
	JWTTTL    time.Duration `yaml:"jwt_ttl"`

	// JobOwnershipCheck restricts job mutation to the job's client.
	JobOwnershipCheck bool `yaml:"job_ownership_check"`

	CORSAllowedOrigins []string `yaml:"cors_allowed_origins"`

	RabbitMQURL   string `yaml:"rabbitmq_url"`
	RabbitMQQueue string `yaml:"rabbitmq_queue"`

	GeminiAPIKey       string `yaml:"gemini_api_key"`
	UnidocLicenseKey   string `yaml:"unidoc_license_api_key"`
	MaxResumeSizeBytes int64  `yaml:"max_resume_size_bytes"`

	LogLevel     string `yaml:"log_level"`
	LogFormat    string `yaml:"log_format"`
	OTLPEndpoint string `yaml:"otlp_endpoint"`
}

const devJWTSecret = "devconnect-development-secret"

func defaults() *Config {
	return &Config{
		Env:                "development",
		Port:               8080,
		DBDriver:           "sqlite",
		DBDSN:              "devconnect.db",
		DBLogLevel:         "warn",
		JWTTTL:             24 * time.Hour,
		JobOwnershipCheck:  true,
		CORSAllowedOrigins: []string{"*"},
		RabbitMQQueue:      "application_events",
		MaxResumeSizeBytes: 5 << 20,
		LogLevel:           "info",
		LogFormat:          "text",
	}
}

// Load reads .env, then an optional YAML file (CONFIG_FILE, or ./config.yaml when it
// exists), then applies environment overrides and validates the result.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := defaults()

	path := strings.TrimSpace(os.Getenv("CONFIG_FILE"))
	explicit := path != ""
	if !explicit {
		path = "config.yaml"
	}
	if err := cfg.mergeYAML(path); err != nil {
		if explicit || !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) mergeYAML(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() {
	c.Env = envOr("APP_ENV", c.Env)
	c.Port = envIntOr("PORT", c.Port)

	c.DBDriver = strings.ToLower(envOr("DB_DRIVER", c.DBDriver))
	c.DBDSN = envOr("DB_DSN", envOr("DATABASE_URL", c.DBDSN))
	c.DBLogLevel = envOr("DB_LOG_LEVEL", c.DBLogLevel)
	c.SeedDemo = envBoolOr("SEED_DEMO_DATA", c.SeedDemo)

	c.JWTSecret = envOr("JWT_SECRET_KEY", c.JWTSecret)
	c.JWTTTL = envDurationOr("JWT_TTL", c.JWTTTL)
	c.JobOwnershipCheck = envBoolOr("JOB_OWNERSHIP_CHECK", c.JobOwnershipCheck)

	if v := strings.TrimSpace(os.Getenv("CORS_ALLOWED_ORIGINS")); v != "" {
		c.CORSAllowedOrigins = splitCSV(v)
	}

	c.RabbitMQURL = envOr("RABBITMQ_URL", c.RabbitMQURL)
	c.RabbitMQQueue = envOr("RABBITMQ_QUEUE", c.RabbitMQQueue)

	c.GeminiAPIKey = envOr("GEMINI_API_KEY", c.GeminiAPIKey)
	c.UnidocLicenseKey = envOr("UNIDOC_LICENSE_API_KEY", c.UnidocLicenseKey)
	c.MaxResumeSizeBytes = int64(envIntOr("MAX_RESUME_SIZE_BYTES", int(c.MaxResumeSizeBytes)))

	c.LogLevel = envOr("LOG_LEVEL", c.LogLevel)
	c.LogFormat = envOr("LOG_FORMAT", c.LogFormat)
	c.OTLPEndpoint = envOr("OTEL_EXPORTER_OTLP_ENDPOINT", c.OTLPEndpoint)

	if c.JWTSecret == "" && c.IsDevelopment() {
		c.JWTSecret = devJWTSecret
	}
}

func (c *Config) IsDevelopment() bool {
	return c.Env == "development" || c.Env == "test"
}

func (c *Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("invalid PORT: %d", c.Port)
	}
	switch c.DBDriver {
	case "sqlite", "mysql", "postgres":
	default:
		return fmt.Errorf("unsupported DB_DRIVER=%q", c.DBDriver)
	}
	if strings.TrimSpace(c.DBDSN) == "" {
		return fmt.Errorf("DB_DSN is not set")
	}
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET_KEY is required when APP_ENV=%s", c.Env)
	}
	if c.JWTTTL <= 0 {
		return fmt.Errorf("invalid JWT_TTL: %s", c.JWTTTL)
	}
	if c.MaxResumeSizeBytes <= 0 {
		return fmt.Errorf("invalid MAX_RESUME_SIZE_BYTES: %d", c.MaxResumeSizeBytes)
	}
	return nil
}

func (c *Config) Addr() string { return fmt.Sprintf(":%d", c.Port) }

func envOr(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func envBoolOr(key string, fallback bool) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}

func envIntOr(key string, fallback int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

// envDurationOr supports "90m" and plain seconds.
func envDurationOr(key string, fallback time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	if n, err := strconv.Atoi(v); err == nil {
		return time.Duration(n) * time.Second
	}
	return fallback
}

func splitCSV(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
