package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"

	"golbucks/internal/service"
)

type Config struct {
	DBUser  string
	DBPass  string
	DBHost  string
	DBPort  string
	DBName  string
	SSLMode string

	RedisHost string
	RedisPort string

	NatsHost string
	NatsPort string

	ApiPort    string
	ApiEnabled string

	WorkerEnabled string

	DailyAmount   int
	BonusDays     int
	BonusAmount   int
	LockTimeoutMS int
}

// New loads and validates configuration from environment variables.
// The HTTP server and the notification worker are optional: if
// GOLBUCKS_API_ENABLED != "true", ApiAddr() returns an error and the
// server simply won't start; the worker is on unless explicitly
// disabled with GOLBUCKS_WORKER_ENABLED=false.
func New() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		DBUser:        os.Getenv("GOLBUCKS_POSTGRES_USER"),
		DBPass:        os.Getenv("GOLBUCKS_POSTGRES_PASSWORD"),
		DBHost:        os.Getenv("GOLBUCKS_POSTGRES_HOST"),
		DBPort:        os.Getenv("GOLBUCKS_POSTGRES_PORT"),
		DBName:        os.Getenv("GOLBUCKS_POSTGRES_DB"),
		SSLMode:       os.Getenv("GOLBUCKS_POSTGRES_SSLMODE"),
		RedisHost:     os.Getenv("GOLBUCKS_REDIS_HOST"),
		RedisPort:     os.Getenv("GOLBUCKS_REDIS_PORT"),
		NatsHost:      os.Getenv("GOLBUCKS_NATS_HOST"),
		NatsPort:      os.Getenv("GOLBUCKS_NATS_PORT"),
		ApiPort:       os.Getenv("GOLBUCKS_API_PORT"),
		ApiEnabled:    os.Getenv("GOLBUCKS_API_ENABLED"),
		WorkerEnabled: os.Getenv("GOLBUCKS_WORKER_ENABLED"),
		DailyAmount:   getEnvInt("GOLBUCKS_DAILY_AMOUNT", 10),
		BonusDays:     getEnvInt("GOLBUCKS_BONUS_DAYS", 7),
		BonusAmount:   getEnvInt("GOLBUCKS_BONUS_AMOUNT", 20),
		LockTimeoutMS: getEnvInt("GOLBUCKS_LOCK_TIMEOUT_MS", 3000),
	}

	// Required: database
	if cfg.DBUser == "" || cfg.DBHost == "" || cfg.DBName == "" || cfg.SSLMode == "" {
		return nil, fmt.Errorf("missing required env for database: GOLBUCKS_POSTGRES_USER/HOST/DB/SSLMODE")
	}

	// Required: redis
	if cfg.RedisHost == "" || cfg.RedisPort == "" {
		return nil, fmt.Errorf("missing required env for redis: GOLBUCKS_REDIS_HOST/PORT")
	}

	// Required: nats (post-commit event publishing)
	if cfg.NatsHost == "" || cfg.NatsPort == "" {
		return nil, fmt.Errorf("missing required env for nats: GOLBUCKS_NATS_HOST/PORT")
	}

	if cfg.DailyAmount <= 0 || cfg.BonusDays <= 0 || cfg.BonusAmount < 0 {
		return nil, fmt.Errorf("invalid reward configuration: daily=%d bonus_days=%d bonus=%d",
			cfg.DailyAmount, cfg.BonusDays, cfg.BonusAmount)
	}

	return cfg, nil
}

func (c *Config) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.DBUser, c.DBPass, c.DBHost, c.DBPort, c.DBName, c.SSLMode)
}

func (c *Config) RedisAddr() string {
	return fmt.Sprintf("%s:%s", c.RedisHost, c.RedisPort)
}

func (c *Config) NatsAddr() string {
	return fmt.Sprintf("nats://%s:%s", c.NatsHost, c.NatsPort)
}

// ApiAddr returns the HTTP listen address if the API is enabled.
// Returns an error if GOLBUCKS_API_ENABLED != "true" — callers should
// skip starting the HTTP server.
func (c *Config) ApiAddr() (string, error) {
	if c.ApiEnabled == "true" {
		if c.ApiPort == "" {
			return "", fmt.Errorf("GOLBUCKS_API_PORT is required when GOLBUCKS_API_ENABLED=true")
		}
		return ":" + c.ApiPort, nil
	}
	return "", fmt.Errorf("HTTP API is disabled (GOLBUCKS_API_ENABLED != true)")
}

func (c *Config) WorkerOn() bool {
	return c.WorkerEnabled != "false"
}

func (c *Config) LockTimeout() time.Duration {
	return time.Duration(c.LockTimeoutMS) * time.Millisecond
}

func (c *Config) Reward() service.RewardConfig {
	return service.RewardConfig{
		DailyAmount: int64(c.DailyAmount),
		BonusDays:   c.BonusDays,
		BonusAmount: int64(c.BonusAmount),
	}
}

func getEnvInt(key string, defaultVal int) int {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	var intVal int
	if _, err := fmt.Sscanf(val, "%d", &intVal); err != nil {
		return defaultVal
	}
	return intVal
}
