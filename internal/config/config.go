// internal/config/config.go
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

// Notifier backends
const (
	NotifierBackendLocal = "local"
	NotifierBackendRedis = "redis"
	NotifierBackendKafka = "kafka"
)

// Config holds all configuration for our application
type Config struct {
	App       AppConfig
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	JWT       JWTConfig
	Security  SecurityConfig
	Logging   LoggingConfig
	Checkout  CheckoutConfig
	Ranking   RankingConfig
	Orders    OrdersConfig
	Notifier  NotifierConfig
	Reconcile ReconcileConfig
	Store     StoreConfig
}

// AppConfig contains application-level configuration
type AppConfig struct {
	Name        string
	Version     string
	Environment string
	Debug       bool
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Port           string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	IdleTimeout    time.Duration
	RequestTimeout time.Duration
	MaxBodyBytes   int64
}

// DatabaseConfig contains database connection configuration
type DatabaseConfig struct {
	Host         string
	Port         string
	Name         string
	User         string
	Password     string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
	MaxLifetime  time.Duration
}

// RedisConfig contains Redis configuration
type RedisConfig struct {
	Host         string
	Port         string
	Password     string
	DB           int
	PoolSize     int
	MinIdleConns int
}

// JWTConfig contains JWT token configuration
type JWTConfig struct {
	Secret             string
	AccessTokenExpiry  time.Duration
	RefreshTokenExpiry time.Duration
}

// SecurityConfig contains security-related configuration
type SecurityConfig struct {
	BcryptCost         int
	RateLimitPerMinute int
	CORSAllowedOrigins []string
	CORSAllowedMethods []string
	CORSAllowedHeaders []string
	TrustedProxies     []string
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level  string
	Format string
}

// CheckoutConfig drives pricing and the per-user checkout lock
type CheckoutConfig struct {
	FreeDeliveryThreshold decimal.Decimal
	DeliveryFee           decimal.Decimal
	LockTTL               time.Duration
}

// RankingConfig contains the sales leaderboard settings
type RankingConfig struct {
	Key         string
	DefaultTopK int
}

// OrdersConfig contains order lifecycle settings
type OrdersConfig struct {
	StrictTransitions bool
}

// NotifierConfig selects how live events reach websocket subscribers
type NotifierConfig struct {
	Backend          string
	RedisChannel     string
	KafkaBrokers     []string
	KafkaTopic       string
	KafkaGroupPrefix string
}

// ReconcileConfig controls the post-checkout recovery sweep
type ReconcileConfig struct {
	Enabled     bool
	Interval    time.Duration
	GracePeriod time.Duration
	BatchSize   int
}

// StoreConfig contains receipt branding
type StoreConfig struct {
	Name    string
	Address string
	Phone   string
	Email   string
}

// Load loads configuration from environment variables and .env file
func Load() (*Config, error) {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		fmt.Println("No .env file found, using environment variables")
	}

	config := &Config{
		App: AppConfig{
			Name:        getEnv("APP_NAME", "FreshBasket Storefront"),
			Version:     getEnv("APP_VERSION", "1.0.0"),
			Environment: getEnv("APP_ENV", "development"),
			Debug:       getEnvAsBool("APP_DEBUG", true),
		},
		Server: ServerConfig{
			Port:           getEnv("APP_PORT", "8080"),
			ReadTimeout:    getEnvAsDuration("SERVER_READ_TIMEOUT", 30*time.Second),
			WriteTimeout:   getEnvAsDuration("SERVER_WRITE_TIMEOUT", 30*time.Second),
			IdleTimeout:    getEnvAsDuration("SERVER_IDLE_TIMEOUT", 60*time.Second),
			RequestTimeout: getEnvAsDuration("SERVER_REQUEST_TIMEOUT", 30*time.Second),
			MaxBodyBytes:   getEnvAsInt64("SERVER_MAX_BODY_BYTES", 1<<20),
		},
		Database: DatabaseConfig{
			Host:         getEnv("DB_HOST", "localhost"),
			Port:         getEnv("DB_PORT", "5432"),
			Name:         getEnv("DB_NAME", "freshbasket"),
			User:         getEnv("DB_USER", "freshbasket"),
			Password:     getEnv("DB_PASSWORD", "freshbasket"),
			SSLMode:      getEnv("DB_SSL_MODE", "disable"),
			MaxOpenConns: getEnvAsInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns: getEnvAsInt("DB_MAX_IDLE_CONNS", 5),
			MaxLifetime:  getEnvAsDuration("DB_MAX_LIFETIME", 300*time.Second),
		},
		Redis: RedisConfig{
			Host:         getEnv("REDIS_HOST", "localhost"),
			Port:         getEnv("REDIS_PORT", "6379"),
			Password:     getEnv("REDIS_PASSWORD", ""),
			DB:           getEnvAsInt("REDIS_DB", 0),
			PoolSize:     getEnvAsInt("REDIS_POOL_SIZE", 10),
			MinIdleConns: getEnvAsInt("REDIS_MIN_IDLE_CONNS", 5),
		},
		JWT: JWTConfig{
			Secret:             getEnv("JWT_SECRET", "freshbasket-development-secret-change-me"),
			AccessTokenExpiry:  getEnvAsDuration("JWT_ACCESS_EXPIRE", 24*time.Hour),
			RefreshTokenExpiry: getEnvAsDuration("JWT_REFRESH_EXPIRE", 7*24*time.Hour),
		},
		Security: SecurityConfig{
			BcryptCost:         getEnvAsInt("BCRYPT_COST", 12),
			RateLimitPerMinute: getEnvAsInt("RATE_LIMIT_PER_MINUTE", 100),
			CORSAllowedOrigins: getEnvAsSlice("CORS_ALLOWED_ORIGINS", []string{"http://localhost:3000"}),
			CORSAllowedMethods: getEnvAsSlice("CORS_ALLOWED_METHODS", []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}),
			CORSAllowedHeaders: getEnvAsSlice("CORS_ALLOWED_HEADERS", []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID"}),
			TrustedProxies:     getEnvAsSlice("TRUSTED_PROXIES", []string{}),
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "debug"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
		Checkout: CheckoutConfig{
			FreeDeliveryThreshold: getEnvAsDecimal("CHECKOUT_FREE_DELIVERY_THRESHOLD", decimal.NewFromInt(199)),
			DeliveryFee:           getEnvAsDecimal("CHECKOUT_DELIVERY_FEE", decimal.NewFromInt(50)),
			LockTTL:               getEnvAsDuration("CHECKOUT_LOCK_TTL", 30*time.Second),
		},
		Ranking: RankingConfig{
			Key:         getEnv("RANKING_KEY", "top_products"),
			DefaultTopK: getEnvAsInt("RANKING_DEFAULT_TOP_K", 5),
		},
		Orders: OrdersConfig{
			StrictTransitions: getEnvAsBool("ORDER_STRICT_TRANSITIONS", false),
		},
		Notifier: NotifierConfig{
			Backend:          strings.ToLower(getEnv("NOTIFIER_BACKEND", NotifierBackendLocal)),
			RedisChannel:     getEnv("NOTIFIER_REDIS_CHANNEL", "storefront:events"),
			KafkaBrokers:     getEnvAsSlice("NOTIFIER_KAFKA_BROKERS", []string{"localhost:9092"}),
			KafkaTopic:       getEnv("NOTIFIER_KAFKA_TOPIC", "storefront.events"),
			KafkaGroupPrefix: getEnv("NOTIFIER_KAFKA_GROUP_PREFIX", "storefront-live"),
		},
		Reconcile: ReconcileConfig{
			Enabled:     getEnvAsBool("RECONCILE_ENABLED", true),
			Interval:    getEnvAsDuration("RECONCILE_INTERVAL", time.Minute),
			GracePeriod: getEnvAsDuration("RECONCILE_GRACE_PERIOD", 2*time.Minute),
			BatchSize:   getEnvAsInt("RECONCILE_BATCH_SIZE", 50),
		},
		Store: StoreConfig{
			Name:    getEnv("STORE_NAME", "FreshBasket"),
			Address: getEnv("STORE_ADDRESS", ""),
			Phone:   getEnv("STORE_PHONE", ""),
			Email:   getEnv("STORE_EMAIL", "support@freshbasket.local"),
		},
	}

	// Validate configuration
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if len(c.JWT.Secret) < 32 {
		return fmt.Errorf("JWT_SECRET must be at least 32 characters long")
	}

	if c.Database.Host == "" {
		return fmt.Errorf("DB_HOST is required")
	}
	if c.Database.Name == "" {
		return fmt.Errorf("DB_NAME is required")
	}
	if c.Database.User == "" {
		return fmt.Errorf("DB_USER is required")
	}

	if c.Redis.Host == "" {
		return fmt.Errorf("REDIS_HOST is required")
	}

	if c.Server.Port == "" {
		return fmt.Errorf("APP_PORT is required")
	}

	if c.Checkout.FreeDeliveryThreshold.IsNegative() {
		return fmt.Errorf("CHECKOUT_FREE_DELIVERY_THRESHOLD must not be negative")
	}
	if c.Checkout.DeliveryFee.IsNegative() {
		return fmt.Errorf("CHECKOUT_DELIVERY_FEE must not be negative")
	}
	if c.Checkout.LockTTL <= 0 {
		return fmt.Errorf("CHECKOUT_LOCK_TTL must be positive")
	}

	if c.Ranking.Key == "" {
		return fmt.Errorf("RANKING_KEY is required")
	}
	if c.Ranking.DefaultTopK <= 0 {
		return fmt.Errorf("RANKING_DEFAULT_TOP_K must be positive")
	}

	switch c.Notifier.Backend {
	case NotifierBackendLocal:
	case NotifierBackendRedis:
		if c.Notifier.RedisChannel == "" {
			return fmt.Errorf("NOTIFIER_REDIS_CHANNEL is required for the redis notifier")
		}
	case NotifierBackendKafka:
		if len(c.Notifier.KafkaBrokers) == 0 || c.Notifier.KafkaTopic == "" {
			return fmt.Errorf("NOTIFIER_KAFKA_BROKERS and NOTIFIER_KAFKA_TOPIC are required for the kafka notifier")
		}
	default:
		return fmt.Errorf("unknown NOTIFIER_BACKEND %q", c.Notifier.Backend)
	}

	if c.Reconcile.Enabled {
		if c.Reconcile.Interval <= 0 {
			return fmt.Errorf("RECONCILE_INTERVAL must be positive")
		}
		if c.Reconcile.BatchSize <= 0 {
			return fmt.Errorf("RECONCILE_BATCH_SIZE must be positive")
		}
	}

	return nil
}

// IsDevelopment returns true if the application is running in development mode
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development"
}

// IsProduction returns true if the application is running in production mode
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// GetDatabaseDSN returns the database connection string
func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
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

// Helper functions for environment variable parsing

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getEnvAsDecimal(key string, defaultValue decimal.Decimal) decimal.Decimal {
	if value := os.Getenv(key); value != "" {
		if d, err := decimal.NewFromString(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getEnvAsSlice(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		parts := strings.Split(value, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		return parts
	}
	return defaultValue
}
