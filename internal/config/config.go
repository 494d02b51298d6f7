package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Redis     RedisConfig     `yaml:"redis"`
	SendGrid  SendGridConfig  `yaml:"sendgrid"`
	JWT       JWTConfig       `yaml:"jwt"`
	Platform  PlatformConfig  `yaml:"platform"`
	Gateways  GatewaysConfig  `yaml:"gateways"`
	Log       LogConfig       `yaml:"log"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// DatabaseConfig contains PostgreSQL connection settings
type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
	SSLMode  string `yaml:"ssl_mode"`
}

// RedisConfig contains Redis connection settings for the reprice queue
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// SendGridConfig contains email service settings
type SendGridConfig struct {
	APIKey    string `yaml:"api_key"`
	FromEmail string `yaml:"from_email"`
	FromName  string `yaml:"from_name"`
}

// JWTConfig contains JWT token settings
type JWTConfig struct {
	Secret string `yaml:"secret"`
}

// PlatformConfig contains marketplace pricing settings. FeePercent and the
// weekend day-set are read once per request as an immutable snapshot, so a
// concurrent settings change never affects an in-flight calculation.
type PlatformConfig struct {
	FeePercent           float64  `yaml:"fee_percent"`
	Currency             string   `yaml:"currency"`
	WeekendDays          []string `yaml:"weekend_days"` // e.g. ["Friday", "Saturday"]
	SeedWindowMonths     int      `yaml:"seed_window_months"`
	CancelPenaltyPercent float64  `yaml:"cancel_penalty_percent"`
	CancelFreeDaysBefore int      `yaml:"cancel_free_days_before"`
	SnapshotSecret       string   `yaml:"snapshot_secret"`
}

// GatewayConfig holds one payment gateway's webhook verification secret
type GatewayConfig struct {
	WebhookSecret string `yaml:"webhook_secret"`
}

// GatewaysConfig contains per-gateway settings keyed by gateway name
type GatewaysConfig struct {
	Paylane  GatewayConfig `yaml:"paylane"`
	Quickpay GatewayConfig `yaml:"quickpay"`
}

// LogConfig contains logging settings
type LogConfig struct {
	Level  string `yaml:"level"`  // "debug", "info", "warn", "error"
	Format string `yaml:"format"` // "json" or "text"
}

// SchedulerConfig contains cron schedule settings
type SchedulerConfig struct {
	CompleteDueBookings   string `yaml:"complete_due_bookings"`
	ExtendCalendarWindows string `yaml:"extend_calendar_windows"`
	ReconcileCalendar     string `yaml:"reconcile_calendar"`
	ReconcileLedger       string `yaml:"reconcile_ledger"`
}

// Load reads configuration from a YAML file
func Load(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.overrideWithEnv()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// overrideWithEnv overrides config values with environment variables
func (c *Config) overrideWithEnv() {
	// Database
	if val := os.Getenv("DB_HOST"); val != "" {
		c.Database.Host = val
	}
	if val := os.Getenv("DB_PORT"); val != "" {
		fmt.Sscanf(val, "%d", &c.Database.Port)
	}
	if val := os.Getenv("DB_USER"); val != "" {
		c.Database.User = val
	}
	if val := os.Getenv("DB_PASSWORD"); val != "" {
		c.Database.Password = val
	}
	if val := os.Getenv("DB_NAME"); val != "" {
		c.Database.Database = val
	}
	if val := os.Getenv("DB_SSL_MODE"); val != "" {
		c.Database.SSLMode = val
	}

	// Redis
	if val := os.Getenv("REDIS_ADDR"); val != "" {
		c.Redis.Addr = val
	}
	if val := os.Getenv("REDIS_PASSWORD"); val != "" {
		c.Redis.Password = val
	}

	// SendGrid
	if val := os.Getenv("SENDGRID_API_KEY"); val != "" {
		c.SendGrid.APIKey = val
	}
	if val := os.Getenv("SENDGRID_FROM_EMAIL"); val != "" {
		c.SendGrid.FromEmail = val
	}

	// JWT
	if val := os.Getenv("JWT_SECRET"); val != "" {
		c.JWT.Secret = val
	}

	// Server
	if val := os.Getenv("SERVER_HOST"); val != "" {
		c.Server.Host = val
	}
	if val := os.Getenv("SERVER_PORT"); val != "" {
		fmt.Sscanf(val, "%d", &c.Server.Port)
	}

	// Gateways
	if val := os.Getenv("PAYLANE_WEBHOOK_SECRET"); val != "" {
		c.Gateways.Paylane.WebhookSecret = val
	}
	if val := os.Getenv("QUICKPAY_WEBHOOK_SECRET"); val != "" {
		c.Gateways.Quickpay.WebhookSecret = val
	}

	// Platform
	if val := os.Getenv("PLATFORM_FEE_PERCENT"); val != "" {
		fmt.Sscanf(val, "%f", &c.Platform.FeePercent)
	}
	if val := os.Getenv("PLATFORM_SNAPSHOT_SECRET"); val != "" {
		c.Platform.SnapshotSecret = val
	}

	// Log
	if val := os.Getenv("LOG_LEVEL"); val != "" {
		c.Log.Level = val
	}
	if val := os.Getenv("LOG_FORMAT"); val != "" {
		c.Log.Format = val
	}

	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	// Server validation
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	// Database validation
	if c.Database.Host == "" {
		return fmt.Errorf("database host is required")
	}
	if c.Database.User == "" {
		return fmt.Errorf("database user is required")
	}
	if c.Database.Database == "" {
		return fmt.Errorf("database name is required")
	}

	// Redis defaults
	if c.Redis.Addr == "" {
		c.Redis.Addr = "localhost:6379"
	}

	// JWT validation
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT secret is required")
	}
	if len(c.JWT.Secret) < 32 {
		return fmt.Errorf("JWT secret must be at least 32 characters")
	}

	// Platform defaults and bounds
	if c.Platform.FeePercent < 0 || c.Platform.FeePercent > 100 {
		return fmt.Errorf("platform fee percent must be between 0 and 100")
	}
	if c.Platform.Currency == "" {
		c.Platform.Currency = "USD"
	}
	if len(c.Platform.WeekendDays) == 0 {
		c.Platform.WeekendDays = []string{"Friday", "Saturday"}
	}
	for _, d := range c.Platform.WeekendDays {
		if _, err := parseWeekday(d); err != nil {
			return err
		}
	}
	if c.Platform.SeedWindowMonths <= 0 {
		c.Platform.SeedWindowMonths = 12
	}
	if c.Platform.CancelPenaltyPercent < 0 || c.Platform.CancelPenaltyPercent > 100 {
		return fmt.Errorf("cancel penalty percent must be between 0 and 100")
	}
	if c.Platform.SnapshotSecret == "" {
		return fmt.Errorf("platform snapshot secret is required")
	}

	// Gateway validation: a gateway without a secret cannot verify webhooks
	if c.Gateways.Paylane.WebhookSecret == "" {
		return fmt.Errorf("paylane webhook secret is required")
	}
	if c.Gateways.Quickpay.WebhookSecret == "" {
		return fmt.Errorf("quickpay webhook secret is required")
	}

	// Scheduler defaults
	if c.Scheduler.CompleteDueBookings == "" {
		c.Scheduler.CompleteDueBookings = "0 0 2 * * *" // 2 AM UTC
	}
	if c.Scheduler.ExtendCalendarWindows == "" {
		c.Scheduler.ExtendCalendarWindows = "0 30 2 * * *" // 2:30 AM UTC
	}
	if c.Scheduler.ReconcileCalendar == "" {
		c.Scheduler.ReconcileCalendar = "0 15 * * * *" // hourly at :15
	}
	if c.Scheduler.ReconcileLedger == "" {
		c.Scheduler.ReconcileLedger = "0 45 * * * *" // hourly at :45
	}

	return nil
}

// WeekendDaySet returns the configured weekend day-set as time.Weekday values.
func (c *Config) WeekendDaySet() map[time.Weekday]bool {
	set := make(map[time.Weekday]bool, len(c.Platform.WeekendDays))
	for _, d := range c.Platform.WeekendDays {
		if wd, err := parseWeekday(d); err == nil {
			set[wd] = true
		}
	}
	return set
}

func parseWeekday(name string) (time.Weekday, error) {
	switch strings.ToLower(name) {
	case "sunday":
		return time.Sunday, nil
	case "monday":
		return time.Monday, nil
	case "tuesday":
		return time.Tuesday, nil
	case "wednesday":
		return time.Wednesday, nil
	case "thursday":
		return time.Thursday, nil
	case "friday":
		return time.Friday, nil
	case "saturday":
		return time.Saturday, nil
	}
	return time.Sunday, fmt.Errorf("invalid weekend day: %s", name)
}

// GetDatabaseConnectionString returns a PostgreSQL connection string
func (c *Config) GetDatabaseConnectionString() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Database,
		c.Database.SSLMode,
	)
}

// GetServerAddress returns the HTTP server address
func (c *Config) GetServerAddress() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// GatewaySecret returns the webhook secret for a gateway name. The boolean
// reports whether the gateway is known.
func (c *Config) GatewaySecret(gateway string) (string, bool) {
	switch gateway {
	case "paylane":
		return c.Gateways.Paylane.WebhookSecret, true
	case "quickpay":
		return c.Gateways.Quickpay.WebhookSecret, true
	}
	return "", false
}
