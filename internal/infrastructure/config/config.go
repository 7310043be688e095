package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all terminal configuration
type Config struct {
	App       AppConfig
	Log       LogConfig
	HTTP      HTTPConfig
	Backend   BackendConfig
	Recovery  RecoveryConfig
	Redis     RedisConfig
	Input     InputConfig
	Checkout  CheckoutConfig
	Receipt   ReceiptConfig
	Telemetry TelemetryConfig
}

// AppConfig holds application-specific settings
type AppConfig struct {
	Name       string
	Env        string
	TerminalID string
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level      string // debug, info, warn, error
	Format     string // json, console
	Output     string // stdout, stderr, or file path
	MaxSizeMB  int    // rotate file output after this size
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

// HTTPConfig holds the local host API server configuration
type HTTPConfig struct {
	Addr            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
	MaxHeaderBytes  int
	MaxBodyBytes    int64
	AllowOrigins    []string // origins of the UI shell, empty for same-origin only
}

// BackendConfig holds the connection settings for the ERP backend API
type BackendConfig struct {
	BaseURL        string
	APIToken       string
	RequestTimeout time.Duration // lookups, session and draft calls
	// Circuit breaker around lookups
	BreakerMaxRequests      uint32
	BreakerInterval         time.Duration
	BreakerTimeout          time.Duration
	BreakerFailureThreshold uint32
}

// RecoveryConfig holds crash-recovery snapshot settings
type RecoveryConfig struct {
	Interval  time.Duration
	Key       string
	Driver    string // memory, redis, sqlite, bolt
	Path      string // database file for sqlite and bolt
	Namespace string
}

// RedisConfig holds Redis connection settings
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// InputConfig holds keyboard and scanner settings
type InputConfig struct {
	ScanGap          time.Duration
	ScanIdleTimeout  time.Duration
	MinBarcodeLength int
	SearchDebounce   time.Duration
	Keymap           map[string]string // key combo -> intent name
}

// CheckoutConfig holds checkout flow settings
type CheckoutConfig struct {
	SubmitTimeout       time.Duration
	SessionPollInterval time.Duration
}

// ReceiptConfig holds receipt printing settings
type ReceiptConfig struct {
	StoreName      string
	StoreAddress   string
	StorePhone     string
	Footer         string
	Paper          string // 58mm or 80mm
	CurrencySymbol string
	TimeZone       string // IANA name, empty for the host zone
}

// TelemetryConfig holds OpenTelemetry configuration
type TelemetryConfig struct {
	Enabled           bool
	CollectorEndpoint string
	ServiceName       string
	Insecure          bool
	ExportInterval    time.Duration
}

// Load loads configuration from TOML file and environment variables
// Priority (highest to lowest):
// 1. Environment variables with POS_ prefix (e.g., POS_BACKEND_BASE_URL)
// 2. config.toml
// 3. Built-in defaults
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	v.AddConfigPath("/etc/pos-terminal")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found is OK, we'll use defaults and env vars
	}

	v.SetEnvPrefix("POS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return build(v)
}

func build(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		App: AppConfig{
			Name:       v.GetString("app.name"),
			Env:        v.GetString("app.env"),
			TerminalID: v.GetString("app.terminal_id"),
		},
		Log: LogConfig{
			Level:      v.GetString("log.level"),
			Format:     v.GetString("log.format"),
			Output:     v.GetString("log.output"),
			MaxSizeMB:  v.GetInt("log.max_size_mb"),
			MaxBackups: v.GetInt("log.max_backups"),
			MaxAgeDays: v.GetInt("log.max_age_days"),
			Compress:   v.GetBool("log.compress"),
		},
		HTTP: HTTPConfig{
			Addr:            v.GetString("http.addr"),
			ReadTimeout:     v.GetDuration("http.read_timeout"),
			WriteTimeout:    v.GetDuration("http.write_timeout"),
			IdleTimeout:     v.GetDuration("http.idle_timeout"),
			ShutdownTimeout: v.GetDuration("http.shutdown_timeout"),
			MaxHeaderBytes:  v.GetInt("http.max_header_bytes"),
			MaxBodyBytes:    v.GetInt64("http.max_body_bytes"),
			AllowOrigins:    v.GetStringSlice("http.allow_origins"),
		},
		Backend: BackendConfig{
			BaseURL:                 v.GetString("backend.base_url"),
			APIToken:                v.GetString("backend.api_token"),
			RequestTimeout:          v.GetDuration("backend.request_timeout"),
			BreakerMaxRequests:      v.GetUint32("backend.breaker_max_requests"),
			BreakerInterval:         v.GetDuration("backend.breaker_interval"),
			BreakerTimeout:          v.GetDuration("backend.breaker_timeout"),
			BreakerFailureThreshold: v.GetUint32("backend.breaker_failure_threshold"),
		},
		Recovery: RecoveryConfig{
			Interval:  v.GetDuration("recovery.interval"),
			Key:       v.GetString("recovery.key"),
			Driver:    v.GetString("recovery.driver"),
			Path:      v.GetString("recovery.path"),
			Namespace: v.GetString("recovery.namespace"),
		},
		Redis: RedisConfig{
			Host:     v.GetString("redis.host"),
			Port:     v.GetInt("redis.port"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
		},
		Input: InputConfig{
			ScanGap:          v.GetDuration("input.scan_gap"),
			ScanIdleTimeout:  v.GetDuration("input.scan_idle_timeout"),
			MinBarcodeLength: v.GetInt("input.min_barcode_length"),
			SearchDebounce:   v.GetDuration("input.search_debounce"),
			Keymap:           v.GetStringMapString("input.keymap"),
		},
		Checkout: CheckoutConfig{
			SubmitTimeout:       v.GetDuration("checkout.submit_timeout"),
			SessionPollInterval: v.GetDuration("checkout.session_poll_interval"),
		},
		Receipt: ReceiptConfig{
			StoreName:      v.GetString("receipt.store_name"),
			StoreAddress:   v.GetString("receipt.store_address"),
			StorePhone:     v.GetString("receipt.store_phone"),
			Footer:         v.GetString("receipt.footer"),
			Paper:          v.GetString("receipt.paper"),
			CurrencySymbol: v.GetString("receipt.currency_symbol"),
			TimeZone:       v.GetString("receipt.time_zone"),
		},
		Telemetry: TelemetryConfig{
			Enabled:           v.GetBool("telemetry.enabled"),
			CollectorEndpoint: v.GetString("telemetry.collector_endpoint"),
			ServiceName:       v.GetString("telemetry.service_name"),
			Insecure:          v.GetBool("telemetry.insecure"),
			ExportInterval:    v.GetDuration("telemetry.export_interval"),
		},
	}

	applyDefaults(cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// applyDefaults sets default values for any empty config fields
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "pos-terminal"
	}
	if cfg.App.Env == "" {
		cfg.App.Env = "development"
	}
	if cfg.App.TerminalID == "" {
		cfg.App.TerminalID = "terminal-1"
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
	if cfg.Log.MaxSizeMB == 0 {
		cfg.Log.MaxSizeMB = 50
	}
	if cfg.Log.MaxBackups == 0 {
		cfg.Log.MaxBackups = 5
	}
	if cfg.Log.MaxAgeDays == 0 {
		cfg.Log.MaxAgeDays = 14
	}
	if cfg.HTTP.Addr == "" {
		cfg.HTTP.Addr = "127.0.0.1:8765"
	}
	if cfg.HTTP.ReadTimeout == 0 {
		cfg.HTTP.ReadTimeout = 15 * time.Second
	}
	// submissions may take up to the checkout timeout
	if cfg.HTTP.WriteTimeout == 0 {
		cfg.HTTP.WriteTimeout = 45 * time.Second
	}
	if cfg.HTTP.IdleTimeout == 0 {
		cfg.HTTP.IdleTimeout = 60 * time.Second
	}
	if cfg.HTTP.ShutdownTimeout == 0 {
		cfg.HTTP.ShutdownTimeout = 10 * time.Second
	}
	if cfg.HTTP.MaxHeaderBytes == 0 {
		cfg.HTTP.MaxHeaderBytes = 1 << 20 // 1MB
	}
	if cfg.HTTP.MaxBodyBytes == 0 {
		cfg.HTTP.MaxBodyBytes = 256 << 10
	}
	if cfg.Backend.BaseURL == "" {
		cfg.Backend.BaseURL = "http://localhost:8080/api/v1"
	}
	if cfg.Backend.RequestTimeout == 0 {
		cfg.Backend.RequestTimeout = 10 * time.Second
	}
	if cfg.Backend.BreakerMaxRequests == 0 {
		cfg.Backend.BreakerMaxRequests = 1
	}
	if cfg.Backend.BreakerInterval == 0 {
		cfg.Backend.BreakerInterval = 60 * time.Second
	}
	if cfg.Backend.BreakerTimeout == 0 {
		cfg.Backend.BreakerTimeout = 15 * time.Second
	}
	if cfg.Backend.BreakerFailureThreshold == 0 {
		cfg.Backend.BreakerFailureThreshold = 5
	}
	if cfg.Recovery.Interval == 0 {
		cfg.Recovery.Interval = 2 * time.Second
	}
	if cfg.Recovery.Key == "" {
		cfg.Recovery.Key = "pos:checkout:recovery"
	}
	if cfg.Recovery.Driver == "" {
		cfg.Recovery.Driver = "bolt"
	}
	if cfg.Recovery.Path == "" {
		cfg.Recovery.Path = "pos-terminal.db"
	}
	if cfg.Recovery.Namespace == "" {
		cfg.Recovery.Namespace = cfg.App.TerminalID
	}
	if cfg.Redis.Host == "" {
		cfg.Redis.Host = "localhost"
	}
	if cfg.Redis.Port == 0 {
		cfg.Redis.Port = 6379
	}
	if cfg.Input.ScanGap == 0 {
		cfg.Input.ScanGap = 100 * time.Millisecond
	}
	if cfg.Input.ScanIdleTimeout == 0 {
		cfg.Input.ScanIdleTimeout = 100 * time.Millisecond
	}
	if cfg.Input.MinBarcodeLength == 0 {
		cfg.Input.MinBarcodeLength = 4
	}
	if cfg.Input.SearchDebounce == 0 {
		cfg.Input.SearchDebounce = 300 * time.Millisecond
	}
	if cfg.Checkout.SubmitTimeout == 0 {
		cfg.Checkout.SubmitTimeout = 35 * time.Second
	}
	if cfg.Checkout.SessionPollInterval == 0 {
		cfg.Checkout.SessionPollInterval = 30 * time.Second
	}
	if cfg.Receipt.StoreName == "" {
		cfg.Receipt.StoreName = cfg.App.Name
	}
	if cfg.Receipt.Paper == "" {
		cfg.Receipt.Paper = "80mm"
	}
	if cfg.Telemetry.CollectorEndpoint == "" {
		cfg.Telemetry.CollectorEndpoint = "localhost:4317"
	}
	if cfg.Telemetry.ServiceName == "" {
		cfg.Telemetry.ServiceName = "pos-terminal"
	}
	if cfg.Telemetry.ExportInterval == 0 {
		cfg.Telemetry.ExportInterval = 30 * time.Second
	}
}

// validate performs validation on the configuration
func (c *Config) validate() error {
	u, err := url.Parse(c.Backend.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("backend.base_url must be an absolute URL, got %q", c.Backend.BaseURL)
	}

	switch c.Recovery.Driver {
	case "memory", "redis", "sqlite", "bolt":
	default:
		return fmt.Errorf("recovery.driver must be one of memory, redis, sqlite, bolt, got %q", c.Recovery.Driver)
	}

	if c.Recovery.Interval < 100*time.Millisecond {
		return fmt.Errorf("recovery.interval must be at least 100ms, got %s", c.Recovery.Interval)
	}
	if c.Input.MinBarcodeLength < 0 {
		return fmt.Errorf("input.min_barcode_length cannot be negative")
	}
	if c.Input.ScanGap < 0 || c.Input.ScanIdleTimeout < 0 || c.Input.SearchDebounce < 0 {
		return fmt.Errorf("input timings cannot be negative")
	}
	if c.Checkout.SubmitTimeout < 0 {
		return fmt.Errorf("checkout.submit_timeout cannot be negative")
	}
	if c.Checkout.SessionPollInterval < time.Second {
		return fmt.Errorf("checkout.session_poll_interval must be at least 1s, got %s", c.Checkout.SessionPollInterval)
	}
	switch strings.ToLower(c.Receipt.Paper) {
	case "58mm", "80mm":
	default:
		return fmt.Errorf("receipt.paper must be 58mm or 80mm, got %q", c.Receipt.Paper)
	}
	if _, err := c.Receipt.Location(); err != nil {
		return fmt.Errorf("receipt.time_zone: %w", err)
	}

	if c.App.Env == "production" {
		if c.Backend.APIToken == "" {
			return fmt.Errorf("backend.api_token is required in production")
		}
		if c.Recovery.Driver == "memory" {
			return fmt.Errorf("recovery.driver cannot be 'memory' in production (snapshots would not survive a crash)")
		}
	}

	return nil
}

// Location returns the time zone receipts are printed in
func (r *ReceiptConfig) Location() (*time.Location, error) {
	if r.TimeZone == "" {
		return time.Local, nil
	}
	return time.LoadLocation(r.TimeZone)
}

// RedisAddr returns host:port for the Redis connection
func (r *RedisConfig) RedisAddr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}
