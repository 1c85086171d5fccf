package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Session   SessionConfig   `yaml:"session"`
	Generator GeneratorConfig `yaml:"generator"`
	Jobs      JobsConfig      `yaml:"jobs"`
	Analytics AnalyticsConfig `yaml:"analytics"`
}

type ServerConfig struct {
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"`
	Env             string        `yaml:"env"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	AllowedOrigins  []string      `yaml:"allowed_origins"`
}

type DatabaseConfig struct {
	Type     string `yaml:"type"` // "sqlite" or "postgres"
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
	SSLMode  string `yaml:"ssl_mode"`
	Path     string `yaml:"path"` // For SQLite: file path
}

type SessionConfig struct {
	TTL       time.Duration `yaml:"ttl"`
	JWTSecret string        `yaml:"jwt_secret"`
}

type GeneratorConfig struct {
	BaseURL       string        `yaml:"base_url"`
	APIKey        string        `yaml:"api_key"`
	Model         string        `yaml:"model"`
	Timeout       time.Duration `yaml:"timeout"`
	RatePerMinute int           `yaml:"rate_per_minute"` // per user; 0 disables
	RateBurst     int           `yaml:"rate_burst"`
}

type JobsConfig struct {
	RedisURL    string `yaml:"redis_url"`
	Concurrency int    `yaml:"concurrency"`
}

type AnalyticsConfig struct {
	ChartDays int `yaml:"chart_days"`
}

// Load reads .env, then the optional YAML file, then environment overrides.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := defaultConfig()

	configPath := getConfigPath()
	if _, err := os.Stat(configPath); err == nil {
		data, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8080,
			Env:             "development",
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			AllowedOrigins:  []string{"*"},
		},
		Database: DatabaseConfig{
			Type:    "sqlite",
			Host:    "localhost",
			Port:    5432,
			User:    "postgres",
			Name:    "inquizzitive",
			SSLMode: "disable",
			Path:    "./data/inquizzitive.db",
		},
		Session: SessionConfig{
			TTL: 7 * 24 * time.Hour,
		},
		Generator: GeneratorConfig{
			BaseURL: "https://generativelanguage.googleapis.com",
			Model:         "gemini-1.5-flash",
			Timeout:       30 * time.Second,
			RatePerMinute: 10,
			RateBurst:     3,
		},
		Jobs: JobsConfig{
			Concurrency: 4,
		},
		Analytics: AnalyticsConfig{
			ChartDays: 30,
		},
	}
}

func getConfigPath() string {
	if path := os.Getenv("INQUIZZITIVE_CONFIG"); path != "" {
		return path
	}
	return "config.yaml"
}

func (c *Config) applyEnv() {
	c.Server.Host = getEnv("SERVER_HOST", c.Server.Host)
	c.Server.Port = getEnvInt("SERVER_PORT", c.Server.Port)
	c.Server.Env = getEnv("ENV", c.Server.Env)
	c.Server.ReadTimeout = getEnvDuration("SERVER_READ_TIMEOUT", c.Server.ReadTimeout)
	c.Server.WriteTimeout = getEnvDuration("SERVER_WRITE_TIMEOUT", c.Server.WriteTimeout)
	c.Server.ShutdownTimeout = getEnvDuration("SHUTDOWN_TIMEOUT", c.Server.ShutdownTimeout)
	if origins := os.Getenv("ALLOWED_ORIGINS"); origins != "" {
		c.Server.AllowedOrigins = splitList(origins)
	}

	c.Database.Type = getEnv("DB_TYPE", c.Database.Type)
	c.Database.Host = getEnv("DB_HOST", c.Database.Host)
	c.Database.Port = getEnvInt("DB_PORT", c.Database.Port)
	c.Database.User = getEnv("DB_USER", c.Database.User)
	c.Database.Password = getEnv("DB_PASSWORD", c.Database.Password)
	c.Database.Name = getEnv("DB_NAME", c.Database.Name)
	c.Database.SSLMode = getEnv("DB_SSLMODE", c.Database.SSLMode)
	c.Database.Path = getEnv("SQLITE_PATH", c.Database.Path)

	c.Session.TTL = getEnvDuration("SESSION_TTL", c.Session.TTL)
	c.Session.JWTSecret = getEnv("AUTH_JWT_SECRET", c.Session.JWTSecret)

	c.Generator.BaseURL = getEnv("GENERATOR_BASE_URL", c.Generator.BaseURL)
	c.Generator.APIKey = getEnv("GENERATOR_API_KEY", c.Generator.APIKey)
	c.Generator.Model = getEnv("GENERATOR_MODEL", c.Generator.Model)
	c.Generator.Timeout = getEnvDuration("GENERATOR_TIMEOUT", c.Generator.Timeout)
	c.Generator.RatePerMinute = getEnvInt("GENERATOR_RATE_PER_MINUTE", c.Generator.RatePerMinute)
	c.Generator.RateBurst = getEnvInt("GENERATOR_RATE_BURST", c.Generator.RateBurst)

	c.Jobs.RedisURL = getEnv("REDIS_URL", c.Jobs.RedisURL)
	c.Jobs.Concurrency = getEnvInt("JOBS_CONCURRENCY", c.Jobs.Concurrency)

	c.Analytics.ChartDays = getEnvInt("ANALYTICS_CHART_DAYS", c.Analytics.ChartDays)
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.Server.ReadTimeout <= 0 {
		return fmt.Errorf("read timeout must be positive")
	}
	if c.Server.WriteTimeout <= 0 {
		return fmt.Errorf("write timeout must be positive")
	}
	if c.Server.ShutdownTimeout <= 0 {
		return fmt.Errorf("shutdown timeout must be positive")
	}

	switch strings.ToLower(c.Database.Type) {
	case "sqlite":
		if c.Database.Path == "" {
			return fmt.Errorf("sqlite path is required")
		}
	case "postgres":
		if c.Database.Host == "" {
			return fmt.Errorf("database host is required")
		}
		if c.Database.Port <= 0 || c.Database.Port > 65535 {
			return fmt.Errorf("invalid database port: %d", c.Database.Port)
		}
		if c.Database.Name == "" {
			return fmt.Errorf("database name is required")
		}
	default:
		return fmt.Errorf("unsupported database type: %s", c.Database.Type)
	}

	if c.Session.TTL <= 0 {
		return fmt.Errorf("session ttl must be positive")
	}
	if c.Generator.Timeout <= 0 {
		return fmt.Errorf("generator timeout must be positive")
	}
	if c.Generator.RatePerMinute < 0 || c.Generator.RateBurst < 0 {
		return fmt.Errorf("generator rate limits cannot be negative")
	}
	if c.Jobs.Concurrency < 1 {
		return fmt.Errorf("jobs concurrency must be at least 1")
	}
	if c.Analytics.ChartDays < 1 {
		return fmt.Errorf("analytics chart days must be at least 1")
	}

	return nil
}

// DSN returns the connection string for the configured database type
func (c *Config) DSN() string {
	if strings.ToLower(c.Database.Type) == "postgres" {
		return fmt.Sprintf(
			"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
			c.Database.Host, c.Database.Port, c.Database.User,
			c.Database.Password, c.Database.Name, c.Database.SSLMode,
		)
	}
	return c.Database.Path + "?mode=rwc&cache=shared&timeout=5000"
}

// Addr returns host:port for the HTTP listener
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

func (c *Config) IsProduction() bool {
	return c.Server.Env == "production"
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
