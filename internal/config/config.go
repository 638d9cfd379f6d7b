package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Guard    GuardConfig
	Auth     AuthConfig
	Alert    AlertConfig
}

type ServerConfig struct {
	Port     string
	Env      string
	LogLevel string
}

type DatabaseConfig struct {
	Host              string
	Port              int
	User              string
	Password          string
	Name              string
	SSLMode           string
	MaxConns          int32
	MinConns          int32
	MaxConnLifetime   time.Duration
	MaxConnIdleTime   time.Duration
	HealthCheckPeriod time.Duration
}

type GuardConfig struct {
	Store             string // "memory" or "postgres"
	Window            time.Duration
	MaxAttempts       int
	Lockout           time.Duration
	SweepInterval     time.Duration
	RequestsPerMinute int // transport-level per-IP cap on the guard endpoint
}

type AuthConfig struct {
	// Secret enables HS256 bearer-token auth on the guard endpoint when set.
	// Empty means the endpoint is open (trusted-network deployments).
	Secret string
}

type AlertConfig struct {
	AWSRegion   string
	FromAddress string
	ToAddress   string
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Port:     getEnv("PORT", "8080"),
			Env:      getEnv("ENV", "development"),
			LogLevel: getEnv("LOG_LEVEL", "info"),
		},
		Database: DatabaseConfig{
			Host:              getEnv("DB_HOST", "localhost"),
			Port:              getEnvAsInt("DB_PORT", 5432),
			User:              getEnv("DB_USER", "postgres"),
			Password:          getEnv("DB_PASSWORD", ""),
			Name:              getEnv("DB_NAME", "loginguard"),
			SSLMode:           getEnv("DB_SSLMODE", "disable"),
			MaxConns:          int32(getEnvAsInt("DB_MAX_CONNS", 25)),
			MinConns:          int32(getEnvAsInt("DB_MIN_CONNS", 5)),
			MaxConnLifetime:   getEnvAsDuration("DB_MAX_CONN_LIFETIME", 5*time.Minute),
			MaxConnIdleTime:   getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", 1*time.Minute),
			HealthCheckPeriod: getEnvAsDuration("DB_HEALTH_CHECK_PERIOD", 1*time.Minute),
		},
		Guard: GuardConfig{
			Store:             getEnv("GUARD_STORE", "memory"),
			Window:            getEnvAsDuration("GUARD_WINDOW", 15*time.Minute),
			MaxAttempts:       getEnvAsInt("GUARD_MAX_ATTEMPTS", 5),
			Lockout:           getEnvAsDuration("GUARD_LOCKOUT", 30*time.Minute),
			SweepInterval:     getEnvAsDuration("GUARD_SWEEP_INTERVAL", 1*time.Minute),
			RequestsPerMinute: getEnvAsInt("GUARD_REQUESTS_PER_MINUTE", 60),
		},
		Auth: AuthConfig{
			Secret: getEnv("GUARD_AUTH_SECRET", ""),
		},
		Alert: AlertConfig{
			AWSRegion:   getEnv("ALERT_AWS_REGION", "us-east-1"),
			FromAddress: getEnv("ALERT_FROM_ADDRESS", ""),
			ToAddress:   getEnv("ALERT_TO_ADDRESS", ""),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.Guard.Store != "memory" && c.Guard.Store != "postgres" {
		return fmt.Errorf("GUARD_STORE must be \"memory\" or \"postgres\" (got %q)", c.Guard.Store)
	}
	if c.Guard.Store == "postgres" && c.Database.Password == "" {
		return fmt.Errorf("DB_PASSWORD is required when GUARD_STORE=postgres")
	}
	if c.Guard.MaxAttempts < 1 {
		return fmt.Errorf("GUARD_MAX_ATTEMPTS must be at least 1 (got %d)", c.Guard.MaxAttempts)
	}
	if c.Guard.Window <= 0 || c.Guard.Lockout <= 0 {
		return fmt.Errorf("GUARD_WINDOW and GUARD_LOCKOUT must be positive")
	}
	if c.Auth.Secret != "" && len(c.Auth.Secret) < 16 {
		return fmt.Errorf("GUARD_AUTH_SECRET must be at least 16 characters (got %d)", len(c.Auth.Secret))
	}
	// Alerting is all-or-nothing: a from address without a destination (or the
	// reverse) is a misconfiguration, not a partial feature.
	if (c.Alert.FromAddress == "") != (c.Alert.ToAddress == "") {
		return fmt.Errorf("ALERT_FROM_ADDRESS and ALERT_TO_ADDRESS must be set together")
	}
	return nil
}

// AlertsEnabled reports whether lockout alerting is configured
func (c *Config) AlertsEnabled() bool {
	return c.Alert.FromAddress != "" && c.Alert.ToAddress != ""
}

func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode,
	)
}

func getEnv(key, defaultVal string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultVal
}

func getEnvAsInt(key string, defaultVal int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultVal
}

func getEnvAsDuration(key string, defaultVal time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultVal
}
