package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Supported values of DB_DRIVER.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
	DriverMemory   = "memory"
)

// Config holds the service configuration loaded from the environment and an optional
// config.yaml in the working directory.
type Config struct {
	AppPort          string
	DBDriver         string
	DatabaseDSN      string
	JWTSecret        string
	TokenTTL         time.Duration
	BcryptCost       int
	ShippingFee      float64
	TrustClientTotal bool
	AdminIdentifiers []string
	RabbitMQURL      string
	RedisAddr        string
	RedisTTL         time.Duration
	CORSOrigin       string
	LogLevel         string
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_PORT", ":8080")
	v.SetDefault("DB_DRIVER", DriverSQLite)
	v.SetDefault("DATABASE_DSN", "storefront.db")
	v.SetDefault("JWT_SECRET", "your_jwt_secret")
	v.SetDefault("TOKEN_TTL", time.Hour)
	v.SetDefault("BCRYPT_COST", 10)
	v.SetDefault("SHIPPING_FEE", 50)
	v.SetDefault("TRUST_CLIENT_TOTAL", false)
	v.SetDefault("ADMIN_IDENTIFIERS", "")
	v.SetDefault("RABBITMQ_URL", "")
	v.SetDefault("REDIS_ADDR", "")
	v.SetDefault("REDIS_TTL", 5*time.Minute)
	v.SetDefault("CORS_ORIGIN", "http://localhost:3000")
	v.SetDefault("LOG_LEVEL", "info")
}

// Load reads the configuration and validates it.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}
	return load(v)
}

func load(v *viper.Viper) (*Config, error) {
	setDefaults(v)
	v.AutomaticEnv()

	cfg := &Config{
		AppPort:          v.GetString("APP_PORT"),
		DBDriver:         strings.ToLower(v.GetString("DB_DRIVER")),
		DatabaseDSN:      v.GetString("DATABASE_DSN"),
		JWTSecret:        v.GetString("JWT_SECRET"),
		TokenTTL:         v.GetDuration("TOKEN_TTL"),
		BcryptCost:       v.GetInt("BCRYPT_COST"),
		ShippingFee:      v.GetFloat64("SHIPPING_FEE"),
		TrustClientTotal: v.GetBool("TRUST_CLIENT_TOTAL"),
		AdminIdentifiers: splitList(v.GetString("ADMIN_IDENTIFIERS")),
		RabbitMQURL:      v.GetString("RABBITMQ_URL"),
		RedisAddr:        v.GetString("REDIS_ADDR"),
		RedisTTL:         v.GetDuration("REDIS_TTL"),
		CORSOrigin:       v.GetString("CORS_ORIGIN"),
		LogLevel:         v.GetString("LOG_LEVEL"),
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports the first setting that cannot be used.
func (c *Config) Validate() error {
	switch c.DBDriver {
	case DriverPostgres, DriverSQLite, DriverMemory:
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DBDriver)
	}
	if c.DBDriver != DriverMemory && c.DatabaseDSN == "" {
		return errors.New("DATABASE_DSN must be provided")
	}
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET must be provided")
	}
	if c.TokenTTL <= 0 {
		return errors.New("TOKEN_TTL must be positive")
	}
	if c.ShippingFee < 0 {
		return errors.New("SHIPPING_FEE cannot be negative")
	}
	return nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
