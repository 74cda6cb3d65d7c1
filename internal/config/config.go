package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Auth     AuthConfig
	Redis    RedisConfig
	RabbitMQ RabbitMQConfig
	Log      LogConfig
	Ledger   LedgerConfig
}

type ServerConfig struct {
	Port         string
	Environment  string
	AllowOrigins string
}

type DatabaseConfig struct {
	URL      string
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
}

type AuthConfig struct {
	JWTSecret string
	Issuer    string
}

// RedisConfig is optional; an empty Addr disables intake locking.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	LockTTL  time.Duration
}

// RabbitMQConfig is optional; an empty URL disables event publishing.
type RabbitMQConfig struct {
	URL      string
	Exchange string
}

type LogConfig struct {
	Level  string
	Format string
	File   string
}

// LedgerConfig holds the money rules. It can be overridden from the YAML file
// named by CONFIG_FILE.
type LedgerConfig struct {
	EBTPerUSD       decimal.Decimal
	MinDeposit      decimal.Decimal // exclusive lower bound, USD
	MinWithdrawal   decimal.Decimal
	MaxWithdrawal   decimal.Decimal
	HoldWithdrawals bool
	SnowflakeNode   int64
}

type fileConfig struct {
	Ledger *struct {
		EBTPerUSD       *string `yaml:"ebt_per_usd"`
		MinDeposit      *string `yaml:"min_deposit"`
		MinWithdrawal   *string `yaml:"min_withdrawal"`
		MaxWithdrawal   *string `yaml:"max_withdrawal"`
		HoldWithdrawals *bool   `yaml:"hold_withdrawals"`
		SnowflakeNode   *int64  `yaml:"snowflake_node"`
	} `yaml:"ledger"`
}

func (d DatabaseConfig) DSN() string {
	if d.URL != "" {
		return d.URL
	}
	return "postgres://" + d.User + ":" + d.Password + "@" + d.Host + ":" + d.Port + "/" + d.Name + "?sslmode=" + d.SSLMode
}

func (c *Config) IsProduction() bool {
	return c.Server.Environment == "production"
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, _ := strconv.Atoi(getEnv("REDIS_DB", "0"))
	lockTTL, err := time.ParseDuration(getEnv("REDIS_LOCK_TTL", "10s"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_LOCK_TTL: %w", err)
	}
	hold, err := strconv.ParseBool(getEnv("LEDGER_HOLD_WITHDRAWALS", "true"))
	if err != nil {
		return nil, fmt.Errorf("invalid LEDGER_HOLD_WITHDRAWALS: %w", err)
	}
	node, _ := strconv.ParseInt(getEnv("SNOWFLAKE_NODE", "1"), 10, 64)

	cfg := &Config{
		Server: ServerConfig{
			Port:         getEnv("SERVER_PORT", "8080"),
			Environment:  getEnv("ENVIRONMENT", "development"),
			AllowOrigins: getEnv("ALLOW_ORIGINS", "*"),
		},
		Database: DatabaseConfig{
			URL:      os.Getenv("DATABASE_URL"),
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "ebetcoin"),
			Password: getEnv("DB_PASSWORD", "ebetcoin"),
			Name:     getEnv("DB_NAME", "ebetcoin"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Auth: AuthConfig{
			JWTSecret: getEnv("JWT_SECRET", "your-secret-key-change-in-production"),
			Issuer:    getEnv("JWT_ISSUER", ""),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       redisDB,
			LockTTL:  lockTTL,
		},
		RabbitMQ: RabbitMQConfig{
			URL:      getEnv("RABBITMQ_URL", ""),
			Exchange: getEnv("RABBITMQ_EXCHANGE", "ledger.events"),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
			File:   getEnv("LOG_FILE", ""),
		},
		Ledger: DefaultLedger(),
	}
	cfg.Ledger.HoldWithdrawals = hold
	cfg.Ledger.SnowflakeNode = node

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := cfg.applyYAML(data); err != nil {
			return nil, err
		}
	}

	return cfg, nil
}

// DefaultLedger returns the production money rules: 1 USD = 100 EBT, deposits
// above 0.01, withdrawals between 10 and 50000, funds held on withdrawal.
func DefaultLedger() LedgerConfig {
	return LedgerConfig{
		EBTPerUSD:       decimal.NewFromInt(100),
		MinDeposit:      decimal.RequireFromString("0.01"),
		MinWithdrawal:   decimal.NewFromInt(10),
		MaxWithdrawal:   decimal.NewFromInt(50000),
		HoldWithdrawals: true,
		SnowflakeNode:   1,
	}
}

func (c *Config) applyYAML(data []byte) error {
	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}
	if fc.Ledger == nil {
		return nil
	}

	l := fc.Ledger
	for _, f := range []struct {
		raw *string
		dst *decimal.Decimal
		key string
	}{
		{l.EBTPerUSD, &c.Ledger.EBTPerUSD, "ebt_per_usd"},
		{l.MinDeposit, &c.Ledger.MinDeposit, "min_deposit"},
		{l.MinWithdrawal, &c.Ledger.MinWithdrawal, "min_withdrawal"},
		{l.MaxWithdrawal, &c.Ledger.MaxWithdrawal, "max_withdrawal"},
	} {
		if f.raw == nil {
			continue
		}
		v, err := decimal.NewFromString(*f.raw)
		if err != nil {
			return fmt.Errorf("invalid ledger.%s: %w", f.key, err)
		}
		*f.dst = v
	}
	if l.HoldWithdrawals != nil {
		c.Ledger.HoldWithdrawals = *l.HoldWithdrawals
	}
	if l.SnowflakeNode != nil {
		c.Ledger.SnowflakeNode = *l.SnowflakeNode
	}

	if !c.Ledger.EBTPerUSD.IsPositive() {
		return fmt.Errorf("ledger.ebt_per_usd must be positive")
	}
	if c.Ledger.MinWithdrawal.GreaterThan(c.Ledger.MaxWithdrawal) {
		return fmt.Errorf("ledger.min_withdrawal exceeds ledger.max_withdrawal")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
