package config

import (
	"errors"
	"slices"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	App       AppConfig       `mapstructure:"app"`
	JWT       JWTConfig       `mapstructure:"jwt"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Redis     RedisConfig     `mapstructure:"redis"`
	NATS      NATSConfig      `mapstructure:"nats"`
	CORS      CORSConfig      `mapstructure:"cors"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
}

type AppConfig struct {
	Name     string `mapstructure:"name"`
	Port     int    `mapstructure:"port"`
	Mode     string `mapstructure:"mode"`
	LogLevel string `mapstructure:"log_level"`
}

type JWTConfig struct {
	SecretKey    string        `mapstructure:"secret_key"`
	AccessExpire time.Duration `mapstructure:"access_expire"`
	Issuer       string        `mapstructure:"issuer"`
}

type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	Name            string        `mapstructure:"name"`
	SSLMode         string        `mapstructure:"ssl_mode"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	PoolSize int    `mapstructure:"pool_size"`
}

// NATSConfig an empty URL disables event publishing
type NATSConfig struct {
	URL           string        `mapstructure:"url"`
	MaxReconnects int           `mapstructure:"max_reconnects"`
	ReconnectWait time.Duration `mapstructure:"reconnect_wait"`
}

type CORSConfig struct {
	AllowedOrigins   []string `mapstructure:"allowed_origins"`
	AllowedMethods   []string `mapstructure:"allowed_methods"`
	AllowCredentials bool     `mapstructure:"allow_credentials"`
}

type RateLimitConfig struct {
	Enabled     bool          `mapstructure:"enabled"`
	MaxRequests int           `mapstructure:"max_requests"`
	Window      time.Duration `mapstructure:"window"`
}

var (
	ErrMissingJWTSecret = errors.New("config: jwt.secret_key is required")
	ErrInvalidPort      = errors.New("config: app.port must be positive")
	ErrCORSWildcard     = errors.New("config: cors.allowed_origins \"*\" cannot be combined with allow_credentials")
)

// Load reads the yaml file at path, then applies environment overrides
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	// environment wins over the file
	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "vibecircles-web")
	v.SetDefault("app.port", 3000)
	v.SetDefault("app.mode", "debug")
	v.SetDefault("app.log_level", "info")

	v.SetDefault("jwt.access_expire", 7*24*time.Hour)
	v.SetDefault("jwt.issuer", "vibecircles")

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.ssl_mode", "disable")
	v.SetDefault("database.max_open_conns", 20)
	v.SetDefault("database.max_idle_conns", 2)
	v.SetDefault("database.conn_max_lifetime", time.Hour)

	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.pool_size", 10)

	v.SetDefault("nats.max_reconnects", 10)
	v.SetDefault("nats.reconnect_wait", 2*time.Second)

	v.SetDefault("cors.allowed_origins", []string{"http://localhost:3000"})
	v.SetDefault("cors.allowed_methods", []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"})
	v.SetDefault("cors.allow_credentials", true)

	v.SetDefault("rate_limit.enabled", true)
	v.SetDefault("rate_limit.max_requests", 100)
	v.SetDefault("rate_limit.window", 15*time.Minute)
}

// applyEnv overrides settings from the environment
func (c *Config) applyEnv() {
	// App
	c.App.Port = GetEnvInt("WEB_PORT", c.App.Port)
	c.App.Mode = GetEnv("APP_MODE", c.App.Mode)
	c.App.LogLevel = GetEnv("LOG_LEVEL", c.App.LogLevel)

	// JWT
	c.JWT.SecretKey = GetEnv("JWT_SECRET", c.JWT.SecretKey)
	c.JWT.AccessExpire = GetEnvDuration("JWT_EXPIRES_IN", c.JWT.AccessExpire)

	// Database
	c.Database.Host = GetEnv("POSTGRES_HOST", c.Database.Host)
	c.Database.Port = GetEnvInt("POSTGRES_PORT", c.Database.Port)
	c.Database.User = GetEnv("POSTGRES_USER", c.Database.User)
	c.Database.Password = GetEnv("POSTGRES_PASSWORD", c.Database.Password)
	c.Database.Name = GetEnv("POSTGRES_DB", c.Database.Name)
	c.Database.SSLMode = GetEnv("POSTGRES_SSLMODE", c.Database.SSLMode)
	c.Database.MaxOpenConns = GetEnvInt("POSTGRES_MAX_OPEN_CONNS", c.Database.MaxOpenConns)
	c.Database.MaxIdleConns = GetEnvInt("POSTGRES_MAX_IDLE_CONNS", c.Database.MaxIdleConns)

	// Redis
	c.Redis.Host = GetEnv("REDIS_HOST", c.Redis.Host)
	c.Redis.Port = GetEnvInt("REDIS_PORT", c.Redis.Port)
	c.Redis.Password = GetEnv("REDIS_PASSWORD", c.Redis.Password)
	c.Redis.DB = GetEnvInt("REDIS_DB", c.Redis.DB)
	c.Redis.PoolSize = GetEnvInt("REDIS_POOL_SIZE", c.Redis.PoolSize)

	// NATS; NATS_URL="" turns events off
	c.NATS.URL = LookupEnv("NATS_URL", c.NATS.URL)

	// CORS
	if origins := GetEnv("CORS_ORIGIN", ""); origins != "" {
		c.CORS.AllowedOrigins = splitList(origins)
	}

	// Rate limit
	c.RateLimit.Enabled = GetEnvBool("RATE_LIMIT_ENABLED", c.RateLimit.Enabled)
	c.RateLimit.MaxRequests = GetEnvInt("RATE_LIMIT_MAX_REQUESTS", c.RateLimit.MaxRequests)
	c.RateLimit.Window = GetEnvDuration("RATE_LIMIT_WINDOW", c.RateLimit.Window)
}

// Environment name reported by /health: production in release mode
func (a *AppConfig) Environment() string {
	if a.Mode == "release" {
		return "production"
	}
	return "development"
}

// Validate checks settings the server cannot start without
func (c *Config) Validate() error {
	if c.JWT.SecretKey == "" {
		return ErrMissingJWTSecret
	}
	if c.App.Port <= 0 {
		return ErrInvalidPort
	}
	if c.CORS.AllowCredentials && slices.Contains(c.CORS.AllowedOrigins, "*") {
		return ErrCORSWildcard
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
