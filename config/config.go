package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the overall application configuration.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Database   DatabaseConfig   `yaml:"database"`
	Resolver   ResolverConfig   `yaml:"resolver"`
	SMS        SMSConfig        `yaml:"sms"`
	Sessions   SessionConfig    `yaml:"sessions"`
	Attendance AttendanceConfig `yaml:"attendance"`
	Push       PushConfig       `yaml:"push"`
	WorkerPool WorkerPoolConfig `yaml:"worker_pool"`
}

// ServerConfig holds the server-related configuration.
type ServerConfig struct {
	Port                  int     `yaml:"port"`
	PublicURL             string  `yaml:"public_url"`
	AdminSecret           string  `yaml:"admin_secret"`
	RateLimitPerSec       float64 `yaml:"rate_limit_per_sec"`
	RateLimitBurst        int     `yaml:"rate_limit_burst"`
	DashboardCacheSeconds int     `yaml:"dashboard_cache_seconds"`
}

// DatabaseConfig holds the database connection configuration.
type DatabaseConfig struct {
	Driver                 string `yaml:"driver"` // "postgres" | "sqlite"
	DSN                    string `yaml:"dsn"`
	MaxOpenConns           int    `yaml:"max_open_conns"`
	MaxIdleConns           int    `yaml:"max_idle_conns"`
	ConnMaxLifetimeMinutes int    `yaml:"conn_max_lifetime_minutes"`
	LogLevel               string `yaml:"log_level"` // "silent" | "error" | "warn" | "info"
}

// ResolverConfig configures the cell tower triangulation client.
type ResolverConfig struct {
	URL            string        `yaml:"url"`
	APIKey         string        `yaml:"api_key"`
	Radio          string        `yaml:"radio"`
	DefaultMCC     int           `yaml:"default_mcc"`
	DefaultMNC     int           `yaml:"default_mnc"`
	TimeoutSeconds int           `yaml:"timeout_seconds"`
	RatePerSec     float64       `yaml:"rate_per_sec"`
	Timeout        time.Duration `yaml:"-"`
}

// SMSConfig configures the outbound SMS gateway.
type SMSConfig struct {
	GatewayURL         string        `yaml:"gateway_url"`
	APIKey             string        `yaml:"api_key"`
	DeviceID           string        `yaml:"device_id"`
	DefaultCountryCode string        `yaml:"default_country_code"`
	TimeoutSeconds     int           `yaml:"timeout_seconds"`
	RatePerSec         float64       `yaml:"rate_per_sec"`
	Timeout            time.Duration `yaml:"-"`
}

// SessionConfig controls SMS location-request sessions.
type SessionConfig struct {
	TTLMinutes           int           `yaml:"ttl_minutes"`
	RetentionHours       int           `yaml:"retention_hours"`
	SweepIntervalMinutes int           `yaml:"sweep_interval_minutes"`
	TTL                  time.Duration `yaml:"-"`
}

// AttendanceConfig holds attendance policy values.
type AttendanceConfig struct {
	Timezone string         `yaml:"timezone"`
	Location *time.Location `yaml:"-"`
}

// PushConfig holds the VAPID keys for manager web push alerts.
type PushConfig struct {
	PublicKey  string `yaml:"vapid_public_key"`
	PrivateKey string `yaml:"vapid_private_key"`
	Subject    string `yaml:"subject"`
	TTL        int    `yaml:"ttl"`
}

// WorkerPoolConfig holds the configuration for the notification worker pool.
type WorkerPoolConfig struct {
	Size      int `yaml:"size"`
	QueueSize int `yaml:"queue_size"`
}

// Load reads the configuration from the given path, then applies
// environment overrides for secrets.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var cfg Config
	decoder := yaml.NewDecoder(f)
	if err := decoder.Decode(&cfg); err != nil {
		return nil, err
	}

	cfg.applyEnv()
	if err := cfg.applyDefaults(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default returns a configuration with every default filled in. Used by tests
// and as the base when no file is present.
func Default() *Config {
	var cfg Config
	_ = cfg.applyDefaults()
	return &cfg
}

func (cfg *Config) applyEnv() {
	overrideString(&cfg.Database.DSN, "GEOGUARD_DATABASE_DSN")
	overrideString(&cfg.Server.AdminSecret, "GEOGUARD_ADMIN_SECRET")
	overrideString(&cfg.Server.PublicURL, "GEOGUARD_PUBLIC_URL")
	overrideString(&cfg.Resolver.APIKey, "GEOGUARD_UNWIRED_API_KEY")
	overrideString(&cfg.SMS.APIKey, "GEOGUARD_SMS_API_KEY")
	overrideString(&cfg.SMS.DeviceID, "GEOGUARD_SMS_DEVICE_ID")
	overrideString(&cfg.Push.PublicKey, "GEOGUARD_VAPID_PUBLIC_KEY")
	overrideString(&cfg.Push.PrivateKey, "GEOGUARD_VAPID_PRIVATE_KEY")
	if v := strings.TrimSpace(os.Getenv("GEOGUARD_PORT")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Server.Port = n
		}
	}
}

func (cfg *Config) applyDefaults() error {
	if cfg.Server.Port <= 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.PublicURL == "" {
		cfg.Server.PublicURL = "http://localhost:8080"
	}
	cfg.Server.PublicURL = strings.TrimRight(cfg.Server.PublicURL, "/")
	if cfg.Server.RateLimitPerSec <= 0 {
		cfg.Server.RateLimitPerSec = 10
	}
	if cfg.Server.RateLimitBurst <= 0 {
		cfg.Server.RateLimitBurst = 5
	}
	if cfg.Server.DashboardCacheSeconds <= 0 {
		cfg.Server.DashboardCacheSeconds = 15
	}

	if cfg.Database.Driver == "" {
		cfg.Database.Driver = "postgres"
	}
	if cfg.Database.LogLevel == "" {
		cfg.Database.LogLevel = "warn"
	}

	if cfg.Resolver.URL == "" {
		cfg.Resolver.URL = "https://us1.unwiredlabs.com/v2/process.php"
	}
	if cfg.Resolver.Radio == "" {
		cfg.Resolver.Radio = "gsm"
	}
	if cfg.Resolver.DefaultMCC <= 0 {
		cfg.Resolver.DefaultMCC = 404
	}
	if cfg.Resolver.DefaultMNC <= 0 {
		cfg.Resolver.DefaultMNC = 45
	}
	if cfg.Resolver.TimeoutSeconds <= 0 {
		cfg.Resolver.TimeoutSeconds = 10
	}
	if cfg.Resolver.RatePerSec <= 0 {
		cfg.Resolver.RatePerSec = 2
	}
	cfg.Resolver.Timeout = time.Duration(cfg.Resolver.TimeoutSeconds) * time.Second

	if cfg.SMS.DefaultCountryCode == "" {
		cfg.SMS.DefaultCountryCode = "91"
	}
	if cfg.SMS.TimeoutSeconds <= 0 {
		cfg.SMS.TimeoutSeconds = 10
	}
	if cfg.SMS.RatePerSec <= 0 {
		cfg.SMS.RatePerSec = 5
	}
	cfg.SMS.Timeout = time.Duration(cfg.SMS.TimeoutSeconds) * time.Second

	if cfg.Sessions.TTLMinutes <= 0 {
		cfg.Sessions.TTLMinutes = 10
	}
	if cfg.Sessions.RetentionHours <= 0 {
		cfg.Sessions.RetentionHours = 24
	}
	if cfg.Sessions.SweepIntervalMinutes <= 0 {
		cfg.Sessions.SweepIntervalMinutes = 30
	}
	cfg.Sessions.TTL = time.Duration(cfg.Sessions.TTLMinutes) * time.Minute

	if cfg.Attendance.Timezone == "" {
		cfg.Attendance.Timezone = "Asia/Kolkata"
	}
	loc, err := time.LoadLocation(cfg.Attendance.Timezone)
	if err != nil {
		log.Printf("attendance.timezone %q could not be loaded (%v); falling back to UTC", cfg.Attendance.Timezone, err)
		loc = time.UTC
	}
	cfg.Attendance.Location = loc

	if cfg.Push.TTL <= 0 {
		cfg.Push.TTL = 3600
	}

	if cfg.WorkerPool.Size <= 0 {
		log.Printf("worker_pool.size is not set or invalid; defaulting to 1")
		cfg.WorkerPool.Size = 1
	}
	if cfg.WorkerPool.QueueSize <= 0 {
		cfg.WorkerPool.QueueSize = 64
	}
	return nil
}

func overrideString(dst *string, key string) {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		*dst = v
	}
}
