package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"

	"github.com/shopcore/backend/internal/domain/shipping"
)

// Config holds all application configuration
type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Log      LogConfig
	HTTP     HTTPConfig
	Storage  StorageConfig
	Shipping ShippingConfig
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, console
	Output string // stdout, stderr, or file path
}

// AppConfig holds application-specific settings
type AppConfig struct {
	Name string
	Env  string
	Port string
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	DBName          string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime int // in minutes
	ConnMaxIdleTime int // in minutes
}

// RedisConfig holds Redis connection settings
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// HTTPConfig holds HTTP server configuration
type HTTPConfig struct {
	ReadTimeout      time.Duration
	WriteTimeout     time.Duration
	IdleTimeout      time.Duration
	MaxHeaderBytes   int
	MaxBodySize      int64
	CORSAllowOrigins []string
	CORSAllowMethods []string
	CORSAllowHeaders []string
	TrustedProxies   []string

	RateLimitEnabled  bool
	RateLimitRequests int
	RateLimitWindow   time.Duration
}

// StorageConfig holds S3-compatible object storage settings for the label
// archive. Leaving the bucket empty disables label archiving.
type StorageConfig struct {
	Endpoint          string
	AccessKey         string
	SecretKey         string
	Bucket            string
	Region            string
	UseSSL            bool
	UsePathStyle      bool
	PresignExpiration time.Duration
}

// Enabled reports whether label archiving is configured.
func (s *StorageConfig) Enabled() bool {
	return s.Bucket != ""
}

// ShippingConfig holds the selection settings and per-provider carrier
// configuration.
type ShippingConfig struct {
	Strategy              string
	DefaultProvider       string
	FreeShippingThreshold float64
	FallbackMethodName    string
	FallbackCost          float64
	DefaultPickupPincode  string
	WebhookIdempotencyTTL time.Duration
	Providers             []ShippingProviderConfig
}

// ShippingProviderConfig is one carrier account as configured. Credentials
// are a flat key/value map because each vendor wants different fields
// (Shiprocket: email/password, Delhivery: api_key/client_name, and so on).
type ShippingProviderConfig struct {
	Code        string
	Name        string
	Enabled     bool
	Priority    int
	Credentials map[string]string
	WebhookURL  string
}

// Settings converts the shipping section to the domain selection settings.
func (s *ShippingConfig) Settings() shipping.Settings {
	return shipping.Settings{
		Strategy:              shipping.SelectionStrategy(s.Strategy),
		DefaultProvider:       shipping.ProviderCode(s.DefaultProvider),
		FreeShippingThreshold: decimal.NewFromFloat(s.FreeShippingThreshold),
		FallbackMethodName:    s.FallbackMethodName,
		FallbackCost:          decimal.NewFromFloat(s.FallbackCost),
		DefaultPickupPincode:  s.DefaultPickupPincode,
	}
}

// ProviderConfigs converts the per-provider sections to domain configs.
func (s *ShippingConfig) ProviderConfigs() []shipping.ProviderConfig {
	configs := make([]shipping.ProviderConfig, 0, len(s.Providers))
	for _, p := range s.Providers {
		configs = append(configs, shipping.ProviderConfig{
			Code:        shipping.ProviderCode(p.Code),
			Name:        p.Name,
			Enabled:     p.Enabled,
			Priority:    p.Priority,
			Credentials: p.Credentials,
			WebhookURL:  p.WebhookURL,
		})
	}
	return configs
}

// Load loads configuration from TOML file and environment variables
// Priority (highest to lowest):
// 1. Environment variables with SHOP_ prefix (e.g., SHOP_DATABASE_PASSWORD)
// 2. config.toml
// 3. Built-in defaults
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	v.AddConfigPath("./backend")
	v.AddConfigPath("/app")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found is OK, we'll use defaults and env vars
	}

	v.SetEnvPrefix("SHOP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{
		App: AppConfig{
			Name: v.GetString("app.name"),
			Env:  v.GetString("app.env"),
			Port: v.GetString("app.port"),
		},
		Database: DatabaseConfig{
			Host:            v.GetString("database.host"),
			Port:            v.GetInt("database.port"),
			User:            v.GetString("database.user"),
			Password:        v.GetString("database.password"),
			DBName:          v.GetString("database.dbname"),
			SSLMode:         v.GetString("database.sslmode"),
			MaxOpenConns:    v.GetInt("database.max_open_conns"),
			MaxIdleConns:    v.GetInt("database.max_idle_conns"),
			ConnMaxLifetime: v.GetInt("database.conn_max_lifetime"),
			ConnMaxIdleTime: v.GetInt("database.conn_max_idle_time"),
		},
		Redis: RedisConfig{
			Host:     v.GetString("redis.host"),
			Port:     v.GetInt("redis.port"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
			Output: v.GetString("log.output"),
		},
		HTTP: HTTPConfig{
			ReadTimeout:      v.GetDuration("http.read_timeout"),
			WriteTimeout:     v.GetDuration("http.write_timeout"),
			IdleTimeout:      v.GetDuration("http.idle_timeout"),
			MaxHeaderBytes:   v.GetInt("http.max_header_bytes"),
			MaxBodySize:      v.GetInt64("http.max_body_size"),
			CORSAllowOrigins: v.GetStringSlice("http.cors_allow_origins"),
			CORSAllowMethods: v.GetStringSlice("http.cors_allow_methods"),
			CORSAllowHeaders: v.GetStringSlice("http.cors_allow_headers"),
			TrustedProxies:   v.GetStringSlice("http.trusted_proxies"),

			RateLimitEnabled:  v.GetBool("http.rate_limit_enabled"),
			RateLimitRequests: v.GetInt("http.rate_limit_requests"),
			RateLimitWindow:   v.GetDuration("http.rate_limit_window"),
		},
		Storage: StorageConfig{
			Endpoint:          v.GetString("storage.endpoint"),
			AccessKey:         v.GetString("storage.access_key"),
			SecretKey:         v.GetString("storage.secret_key"),
			Bucket:            v.GetString("storage.bucket"),
			Region:            v.GetString("storage.region"),
			UseSSL:            v.GetBool("storage.use_ssl"),
			UsePathStyle:      v.GetBool("storage.use_path_style"),
			PresignExpiration: v.GetDuration("storage.presign_expiration"),
		},
		Shipping: ShippingConfig{
			Strategy:              v.GetString("shipping.strategy"),
			DefaultProvider:       v.GetString("shipping.default_provider"),
			FreeShippingThreshold: v.GetFloat64("shipping.free_shipping_threshold"),
			FallbackMethodName:    v.GetString("shipping.fallback_method_name"),
			FallbackCost:          v.GetFloat64("shipping.fallback_cost"),
			DefaultPickupPincode:  v.GetString("shipping.default_pickup_pincode"),
			WebhookIdempotencyTTL: v.GetDuration("shipping.webhook_idempotency_ttl"),
			Providers:             loadProviders(v),
		},
	}

	applyDefaults(cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// loadProviders reads the [shipping.providers.<code>] tables. Credentials
// stay a flat string map; what each key means is the adapter's business.
func loadProviders(v *viper.Viper) []ShippingProviderConfig {
	var providers []ShippingProviderConfig
	for _, code := range []string{"shiprocket", "delhivery", "xpressbees"} {
		prefix := "shipping.providers." + code
		if !v.IsSet(prefix) {
			continue
		}

		credentials := map[string]string{}
		for key, value := range v.GetStringMapString(prefix + ".credentials") {
			credentials[key] = value
		}

		providers = append(providers, ShippingProviderConfig{
			Code:        code,
			Name:        v.GetString(prefix + ".name"),
			Enabled:     v.GetBool(prefix + ".enabled"),
			Priority:    v.GetInt(prefix + ".priority"),
			Credentials: credentials,
			WebhookURL:  v.GetString(prefix + ".webhook_url"),
		})
	}
	return providers
}

// applyDefaults sets default values for any empty config fields
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "shopcore-backend"
	}
	if cfg.App.Env == "" {
		cfg.App.Env = "development"
	}
	if cfg.App.Port == "" {
		cfg.App.Port = "8080"
	}
	if cfg.Database.Host == "" {
		cfg.Database.Host = "localhost"
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = 5432
	}
	if cfg.Database.User == "" {
		cfg.Database.User = "postgres"
	}
	if cfg.Database.DBName == "" {
		cfg.Database.DBName = "shopcore"
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
	}
	if cfg.Database.MaxOpenConns == 0 {
		cfg.Database.MaxOpenConns = 25
	}
	if cfg.Database.MaxIdleConns == 0 {
		cfg.Database.MaxIdleConns = 5
	}
	if cfg.Database.ConnMaxLifetime == 0 {
		cfg.Database.ConnMaxLifetime = 60
	}
	if cfg.Database.ConnMaxIdleTime == 0 {
		cfg.Database.ConnMaxIdleTime = 30
	}
	if cfg.Redis.Host == "" {
		cfg.Redis.Host = "localhost"
	}
	if cfg.Redis.Port == 0 {
		cfg.Redis.Port = 6379
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "console"
	}
	if cfg.Log.Output == "" {
		cfg.Log.Output = "stdout"
	}
	if cfg.HTTP.ReadTimeout == 0 {
		cfg.HTTP.ReadTimeout = 15 * time.Second
	}
	if cfg.HTTP.WriteTimeout == 0 {
		cfg.HTTP.WriteTimeout = 15 * time.Second
	}
	if cfg.HTTP.IdleTimeout == 0 {
		cfg.HTTP.IdleTimeout = 60 * time.Second
	}
	if cfg.HTTP.MaxHeaderBytes == 0 {
		cfg.HTTP.MaxHeaderBytes = 1 << 20 // 1MB
	}
	if cfg.HTTP.MaxBodySize == 0 {
		cfg.HTTP.MaxBodySize = 10 << 20 // 10MB
	}
	// NOTE: CORS origins are intentionally not given a default fallback to "*".
	// An empty list means no cross-origin requests are allowed until explicitly configured.
	if len(cfg.HTTP.CORSAllowMethods) == 0 {
		cfg.HTTP.CORSAllowMethods = []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"}
	}
	if len(cfg.HTTP.CORSAllowHeaders) == 0 {
		cfg.HTTP.CORSAllowHeaders = []string{"Content-Type", "Authorization", "X-Request-ID"}
	}
	if cfg.HTTP.RateLimitRequests == 0 {
		cfg.HTTP.RateLimitRequests = 100
	}
	if cfg.HTTP.RateLimitWindow == 0 {
		cfg.HTTP.RateLimitWindow = time.Minute
	}
	if cfg.Storage.Region == "" {
		cfg.Storage.Region = "us-east-1"
	}
	if cfg.Storage.PresignExpiration == 0 {
		cfg.Storage.PresignExpiration = 15 * time.Minute
	}
	if cfg.Shipping.Strategy == "" {
		cfg.Shipping.Strategy = "priority"
	}
	if cfg.Shipping.FallbackMethodName == "" {
		cfg.Shipping.FallbackMethodName = "Standard Shipping"
	}
	if cfg.Shipping.WebhookIdempotencyTTL == 0 {
		cfg.Shipping.WebhookIdempotencyTTL = 24 * time.Hour
	}
}

// validate performs validation on the configuration
func (c *Config) validate() error {
	if c.Database.MaxOpenConns <= 0 {
		return fmt.Errorf("database.max_open_conns must be positive")
	}
	if c.Database.MaxIdleConns < 0 {
		return fmt.Errorf("database.max_idle_conns cannot be negative")
	}
	if c.Database.MaxIdleConns > c.Database.MaxOpenConns {
		return fmt.Errorf("database.max_idle_conns (%d) cannot exceed database.max_open_conns (%d)",
			c.Database.MaxIdleConns, c.Database.MaxOpenConns)
	}

	if !shipping.SelectionStrategy(c.Shipping.Strategy).IsValid() {
		return fmt.Errorf("shipping.strategy must be priority, cheapest or fastest, got %q", c.Shipping.Strategy)
	}
	if c.Shipping.FreeShippingThreshold < 0 {
		return fmt.Errorf("shipping.free_shipping_threshold cannot be negative")
	}
	if c.Shipping.FallbackCost < 0 {
		return fmt.Errorf("shipping.fallback_cost cannot be negative")
	}
	if c.Shipping.DefaultProvider != "" && !shipping.ProviderCode(c.Shipping.DefaultProvider).IsValid() {
		return fmt.Errorf("shipping.default_provider %q is not a known provider", c.Shipping.DefaultProvider)
	}

	// Production-specific validations
	if c.App.Env == "production" {
		if c.Database.Password == "" {
			return fmt.Errorf("database.password is required in production")
		}
		if c.Database.SSLMode == "disable" {
			return fmt.Errorf("database.sslmode cannot be 'disable' in production")
		}
		for _, origin := range c.HTTP.CORSAllowOrigins {
			if origin == "*" {
				return fmt.Errorf("cors_allow_origins cannot be '*' in production (use specific origins)")
			}
		}
	}

	return nil
}

// DSN returns the database connection string with properly escaped values
func (d *DatabaseConfig) DSN() string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(d.User, d.Password),
		Host:   fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:   d.DBName,
	}
	q := u.Query()
	q.Set("sslmode", d.SSLMode)
	u.RawQuery = q.Encode()
	return u.String()
}
