package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Port        string   `mapstructure:"PORT"`
	Env         string   `mapstructure:"ENV"`
	CORSOrigins []string `mapstructure:"CORS_ORIGINS"`

	Storage       string `mapstructure:"STORAGE"`
	DatabaseURL   string `mapstructure:"DATABASE_URL"`
	DBMaxConns    int32  `mapstructure:"DB_MAX_CONNS"`
	DBMinConns    int32  `mapstructure:"DB_MIN_CONNS"`
	DBSchema      string `mapstructure:"DB_SCHEMA"`
	MigrationsDir string `mapstructure:"MIGRATIONS_DIR"`

	RedisURL  string        `mapstructure:"REDIS_URL"`
	NoticeTTL time.Duration `mapstructure:"NOTICE_TTL"`

	AuthSigningKey string `mapstructure:"AUTH_SIGNING_KEY"`
	AuthIssuer     string `mapstructure:"AUTH_ISSUER"`

	RequestTimeout        time.Duration `mapstructure:"REQUEST_TIMEOUT"`
	RateLimitRPS          float64       `mapstructure:"RATE_LIMIT_RPS"`
	RateLimitBurst        int           `mapstructure:"RATE_LIMIT_BURST"`
	ConflictWindowMinutes int           `mapstructure:"CONFLICT_WINDOW_MINUTES"`
	LowStockThreshold     int           `mapstructure:"LOW_STOCK_THRESHOLD"`
	ClinicTimezone        string        `mapstructure:"CLINIC_TIMEZONE"`

	ReminderSchedule string        `mapstructure:"REMINDER_SCHEDULE"`
	ReminderLead     time.Duration `mapstructure:"REMINDER_LEAD"`
	SMTPHost         string        `mapstructure:"SMTP_HOST"`
	SMTPPort         int           `mapstructure:"SMTP_PORT"`
	SMTPUser         string        `mapstructure:"SMTP_USER"`
	SMTPPassword     string        `mapstructure:"SMTP_PASSWORD"`
	SMTPFrom         string        `mapstructure:"SMTP_FROM"`

	ImageStore    string `mapstructure:"IMAGE_STORE"`
	ImageDir      string `mapstructure:"IMAGE_DIR"`
	CloudinaryURL string `mapstructure:"CLOUDINARY_URL"`
}

var keys = []string{
	"PORT", "ENV", "CORS_ORIGINS",
	"STORAGE", "DATABASE_URL", "DB_MAX_CONNS", "DB_MIN_CONNS", "DB_SCHEMA", "MIGRATIONS_DIR",
	"REDIS_URL", "NOTICE_TTL",
	"AUTH_SIGNING_KEY", "AUTH_ISSUER",
	"REQUEST_TIMEOUT", "RATE_LIMIT_RPS", "RATE_LIMIT_BURST", "CONFLICT_WINDOW_MINUTES", "LOW_STOCK_THRESHOLD", "CLINIC_TIMEZONE",
	"REMINDER_SCHEDULE", "REMINDER_LEAD",
	"SMTP_HOST", "SMTP_PORT", "SMTP_USER", "SMTP_PASSWORD", "SMTP_FROM",
	"IMAGE_STORE", "IMAGE_DIR", "CLOUDINARY_URL",
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()

	v.SetDefault("PORT", "8000")
	v.SetDefault("ENV", "development")
	v.SetDefault("CORS_ORIGINS", "http://localhost:3000")
	v.SetDefault("STORAGE", "memory")
	v.SetDefault("DB_MAX_CONNS", 20)
	v.SetDefault("DB_MIN_CONNS", 5)
	v.SetDefault("DB_SCHEMA", "public")
	v.SetDefault("MIGRATIONS_DIR", "./migrations")
	v.SetDefault("NOTICE_TTL", "5s")
	v.SetDefault("AUTH_ISSUER", "clinic")
	v.SetDefault("REQUEST_TIMEOUT", "30s")
	v.SetDefault("RATE_LIMIT_RPS", 20)
	v.SetDefault("RATE_LIMIT_BURST", 40)
	v.SetDefault("CONFLICT_WINDOW_MINUTES", 30)
	v.SetDefault("LOW_STOCK_THRESHOLD", 10)
	v.SetDefault("CLINIC_TIMEZONE", "Local")
	v.SetDefault("REMINDER_SCHEDULE", "*/5 * * * *")
	v.SetDefault("REMINDER_LEAD", "24h")
	v.SetDefault("SMTP_PORT", 587)
	v.SetDefault("IMAGE_STORE", "local")
	v.SetDefault("IMAGE_DIR", "./data/xrays")

	for _, k := range keys {
		_ = v.BindEnv(k)
	}

	// .env is optional
	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if len(cfg.CORSOrigins) == 1 && strings.Contains(cfg.CORSOrigins[0], ",") {
		cfg.CORSOrigins = strings.Split(cfg.CORSOrigins[0], ",")
	}
	for i := range cfg.CORSOrigins {
		cfg.CORSOrigins[i] = strings.TrimSpace(cfg.CORSOrigins[i])
	}

	return cfg, nil
}

func (c *Config) IsDev() bool {
	return c.Env == "development"
}

func (c *Config) UsesPostgres() bool {
	return c.Storage == "postgres"
}

// Location resolves CLINIC_TIMEZONE, which decides what "today" means for
// appointment tabs, reminders and the dashboard.
func (c *Config) Location() (*time.Location, error) {
	if c.ClinicTimezone == "" || c.ClinicTimezone == "Local" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.ClinicTimezone)
	if err != nil {
		return nil, fmt.Errorf("CLINIC_TIMEZONE: %w", err)
	}
	return loc, nil
}

// Validate checks the configuration before the server starts.
func (c *Config) Validate() error {
	switch c.Storage {
	case "memory":
	case "postgres":
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required when STORAGE is \"postgres\"")
		}
		if c.DBMinConns > c.DBMaxConns {
			return fmt.Errorf("DB_MIN_CONNS (%d) must not exceed DB_MAX_CONNS (%d)", c.DBMinConns, c.DBMaxConns)
		}
	default:
		return fmt.Errorf("STORAGE must be \"memory\" or \"postgres\", got %q", c.Storage)
	}

	if !c.IsDev() && c.AuthSigningKey == "" {
		return fmt.Errorf("AUTH_SIGNING_KEY is required outside development (current ENV=%q)", c.Env)
	}
	if c.AuthSigningKey != "" && len(c.AuthSigningKey) < 32 {
		return fmt.Errorf("AUTH_SIGNING_KEY must be at least 32 characters")
	}

	// RATE_LIMIT_RPS=0 turns limiting off
	if c.RateLimitRPS < 0 {
		return fmt.Errorf("RATE_LIMIT_RPS must not be negative, got %v", c.RateLimitRPS)
	}
	if c.RateLimitRPS > 0 && c.RateLimitBurst < 1 {
		return fmt.Errorf("RATE_LIMIT_BURST must be at least 1 when rate limiting is on, got %d", c.RateLimitBurst)
	}

	if c.ConflictWindowMinutes <= 0 {
		return fmt.Errorf("CONFLICT_WINDOW_MINUTES must be positive, got %d", c.ConflictWindowMinutes)
	}
	if c.LowStockThreshold < 0 {
		return fmt.Errorf("LOW_STOCK_THRESHOLD must not be negative, got %d", c.LowStockThreshold)
	}
	if c.NoticeTTL <= 0 {
		return fmt.Errorf("NOTICE_TTL must be positive")
	}
	if c.ReminderLead <= 0 {
		return fmt.Errorf("REMINDER_LEAD must be positive")
	}

	switch c.ImageStore {
	case "local":
		if c.ImageDir == "" {
			return fmt.Errorf("IMAGE_DIR is required when IMAGE_STORE is \"local\"")
		}
	case "cloudinary":
		if c.CloudinaryURL == "" {
			return fmt.Errorf("CLOUDINARY_URL is required when IMAGE_STORE is \"cloudinary\"")
		}
	default:
		return fmt.Errorf("IMAGE_STORE must be \"local\" or \"cloudinary\", got %q", c.ImageStore)
	}

	if c.SMTPHost != "" && c.SMTPFrom == "" {
		return fmt.Errorf("SMTP_FROM is required when SMTP_HOST is set")
	}

	if _, err := c.Location(); err != nil {
		return err
	}
	return nil
}
