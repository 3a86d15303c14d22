package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Storage drivers
const (
	DriverPostgres = "postgres"
	DriverRedis    = "redis"
	DriverMemory   = "memory"
)

// Policies applied when a cart line references a product deleted before checkout
const (
	MissingProductSkip  = "skip"
	MissingProductAbort = "abort"
)

// Config holds all configuration for the application
type Config struct {
	Env      string
	LogLevel string
	Server   ServerConfig
	Storage  StorageConfig
	Database DatabaseConfig
	Redis    RedisConfig
	NATS     NATSConfig
	POS      POSConfig
	Worker   WorkerConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	RequestTimeout  time.Duration
	AllowedOrigins  []string
}

// StorageConfig selects the persistence binding
type StorageConfig struct {
	Driver      string
	OpTimeout   time.Duration
	ProductsKey string
	SalesKey    string
}

// DatabaseConfig holds PostgreSQL configuration
type DatabaseConfig struct {
	Host            string
	Port            string
	User            string
	Password        string
	Name            string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	AutoMigrate     bool
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	AlertKey string
}

// NATSConfig holds NATS configuration
type NATSConfig struct {
	URL     string
	Enabled bool
}

// POSConfig holds point-of-sale business rules
type POSConfig struct {
	PaymentMethods       []string
	AllowOversell        bool
	MissingProductPolicy string
	LowStockThreshold    int
	SeedSamples          bool
}

// WorkerConfig holds stock alert worker settings
type WorkerConfig struct {
	DebounceWindow time.Duration
}

// Load reads configuration from environment variables and returns a Config struct
func Load() (*Config, error) {
	viper.AutomaticEnv()

	viper.SetDefault("ENV", "development")
	viper.SetDefault("LOG_LEVEL", "")
	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("SERVER_READ_TIMEOUT", "10s")
	viper.SetDefault("SERVER_WRITE_TIMEOUT", "10s")
	viper.SetDefault("SERVER_SHUTDOWN_TIMEOUT", "30s")
	viper.SetDefault("SERVER_REQUEST_TIMEOUT", "30s")
	viper.SetDefault("CORS_ALLOWED_ORIGINS", "http://localhost:5173,http://localhost:3000")

	viper.SetDefault("STORAGE_DRIVER", DriverPostgres)
	viper.SetDefault("STORAGE_OP_TIMEOUT", "5s")
	viper.SetDefault("KV_PRODUCTS_KEY", "pdv_products")
	viper.SetDefault("KV_SALES_KEY", "pdv_sales")

	viper.SetDefault("DB_HOST", "localhost")
	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("DB_USER", "postgres")
	viper.SetDefault("DB_PASSWORD", "postgres")
	viper.SetDefault("DB_NAME", "pdv")
	viper.SetDefault("DB_SSLMODE", "disable")
	viper.SetDefault("DB_MAX_OPEN_CONNS", 25)
	viper.SetDefault("DB_MAX_IDLE_CONNS", 5)
	viper.SetDefault("DB_CONN_MAX_LIFETIME", "5m")
	viper.SetDefault("DB_AUTO_MIGRATE", true)

	viper.SetDefault("REDIS_HOST", "localhost")
	viper.SetDefault("REDIS_PORT", "6379")
	viper.SetDefault("REDIS_PASSWORD", "")
	viper.SetDefault("REDIS_DB", 0)
	viper.SetDefault("REDIS_ALERT_KEY", "pdv:low_stock")

	viper.SetDefault("NATS_URL", "nats://localhost:4222")
	viper.SetDefault("NATS_ENABLED", true)

	viper.SetDefault("POS_PAYMENT_METHODS", "Dinheiro,Cartão,Pix")
	viper.SetDefault("POS_ALLOW_OVERSELL", false)
	viper.SetDefault("POS_MISSING_PRODUCT_POLICY", MissingProductSkip)
	viper.SetDefault("POS_LOW_STOCK_THRESHOLD", 10)
	viper.SetDefault("POS_SEED_SAMPLES", true)

	viper.SetDefault("WORKER_DEBOUNCE_WINDOW", "1s")

	durations := map[string]*time.Duration{}
	var readTimeout, writeTimeout, shutdownTimeout, requestTimeout time.Duration
	var opTimeout, connMaxLifetime, debounceWindow time.Duration
	durations["SERVER_READ_TIMEOUT"] = &readTimeout
	durations["SERVER_WRITE_TIMEOUT"] = &writeTimeout
	durations["SERVER_SHUTDOWN_TIMEOUT"] = &shutdownTimeout
	durations["SERVER_REQUEST_TIMEOUT"] = &requestTimeout
	durations["STORAGE_OP_TIMEOUT"] = &opTimeout
	durations["DB_CONN_MAX_LIFETIME"] = &connMaxLifetime
	durations["WORKER_DEBOUNCE_WINDOW"] = &debounceWindow

	for key, dst := range durations {
		d, err := time.ParseDuration(viper.GetString(key))
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %w", key, err)
		}
		*dst = d
	}

	config := &Config{
		Env:      viper.GetString("ENV"),
		LogLevel: viper.GetString("LOG_LEVEL"),
		Server: ServerConfig{
			Port:            viper.GetString("SERVER_PORT"),
			ReadTimeout:     readTimeout,
			WriteTimeout:    writeTimeout,
			ShutdownTimeout: shutdownTimeout,
			RequestTimeout:  requestTimeout,
			AllowedOrigins:  splitList(viper.GetString("CORS_ALLOWED_ORIGINS")),
		},
		Storage: StorageConfig{
			Driver:      strings.ToLower(viper.GetString("STORAGE_DRIVER")),
			OpTimeout:   opTimeout,
			ProductsKey: viper.GetString("KV_PRODUCTS_KEY"),
			SalesKey:    viper.GetString("KV_SALES_KEY"),
		},
		Database: DatabaseConfig{
			Host:            viper.GetString("DB_HOST"),
			Port:            viper.GetString("DB_PORT"),
			User:            viper.GetString("DB_USER"),
			Password:        viper.GetString("DB_PASSWORD"),
			Name:            viper.GetString("DB_NAME"),
			SSLMode:         viper.GetString("DB_SSLMODE"),
			MaxOpenConns:    viper.GetInt("DB_MAX_OPEN_CONNS"),
			MaxIdleConns:    viper.GetInt("DB_MAX_IDLE_CONNS"),
			ConnMaxLifetime: connMaxLifetime,
			AutoMigrate:     viper.GetBool("DB_AUTO_MIGRATE"),
		},
		Redis: RedisConfig{
			Host:     viper.GetString("REDIS_HOST"),
			Port:     viper.GetString("REDIS_PORT"),
			Password: viper.GetString("REDIS_PASSWORD"),
			DB:       viper.GetInt("REDIS_DB"),
			AlertKey: viper.GetString("REDIS_ALERT_KEY"),
		},
		NATS: NATSConfig{
			URL:     viper.GetString("NATS_URL"),
			Enabled: viper.GetBool("NATS_ENABLED"),
		},
		POS: POSConfig{
			PaymentMethods:       splitList(viper.GetString("POS_PAYMENT_METHODS")),
			AllowOversell:        viper.GetBool("POS_ALLOW_OVERSELL"),
			MissingProductPolicy: strings.ToLower(viper.GetString("POS_MISSING_PRODUCT_POLICY")),
			LowStockThreshold:    viper.GetInt("POS_LOW_STOCK_THRESHOLD"),
			SeedSamples:          viper.GetBool("POS_SEED_SAMPLES"),
		},
		Worker: WorkerConfig{
			DebounceWindow: debounceWindow,
		},
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate checks values that cannot be expressed as viper defaults
func (c *Config) Validate() error {
	switch c.Storage.Driver {
	case DriverPostgres, DriverRedis, DriverMemory:
	default:
		return fmt.Errorf("invalid STORAGE_DRIVER %q: expected %s, %s or %s",
			c.Storage.Driver, DriverPostgres, DriverRedis, DriverMemory)
	}

	switch c.POS.MissingProductPolicy {
	case MissingProductSkip, MissingProductAbort:
	default:
		return fmt.Errorf("invalid POS_MISSING_PRODUCT_POLICY %q: expected %s or %s",
			c.POS.MissingProductPolicy, MissingProductSkip, MissingProductAbort)
	}

	if c.Storage.OpTimeout <= 0 {
		return fmt.Errorf("STORAGE_OP_TIMEOUT must be positive")
	}

	if c.POS.LowStockThreshold < 0 {
		return fmt.Errorf("POS_LOW_STOCK_THRESHOLD must not be negative")
	}

	return nil
}

// GetDSN returns the PostgreSQL connection string
func (c *Config) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

// GetRedisAddr returns the Redis address
func (c *Config) GetRedisAddr() string {
	return fmt.Sprintf("%s:%s", c.Redis.Host, c.Redis.Port)
}

func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
