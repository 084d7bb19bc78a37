package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/spf13/viper"
)

// Backends and cloud remotes accepted by Validate.
var (
	DataBackends = []string{"sqlite", "memory", "redis"}
	CloudRemotes = []string{"none", "memory", "redis", "drive"}
)

type Config struct {
	// HTTP Server
	Port string `mapstructure:"PORT"`

	// Persistence
	DataBackend   string `mapstructure:"DATA_BACKEND"`
	SQLiteDBPath  string `mapstructure:"SQLITE_DB_PATH"`
	RedisAddr     string `mapstructure:"REDIS_ADDR"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`
	RedisDB       int    `mapstructure:"REDIS_DB"`

	// AMQP; an empty URL disables the change-event bus
	AMQPURL      string `mapstructure:"AMQP_URL"`
	AMQPExchange string `mapstructure:"AMQP_EXCHANGE"`
	AMQPQueue    string `mapstructure:"AMQP_QUEUE"`

	// Cloud mirror
	CloudRemote              string `mapstructure:"CLOUD_REMOTE"`
	CloudUserID              string `mapstructure:"CLOUD_USER_ID"`
	GoogleServiceAccountJSON string `mapstructure:"GOOGLE_SERVICE_ACCOUNT_JSON"`
	GoogleServiceAccountFile string `mapstructure:"GOOGLE_SERVICE_ACCOUNT_FILE"`

	// Worker
	WatchInterval  time.Duration `mapstructure:"WATCH_INTERVAL"`
	BackupSchedule string        `mapstructure:"BACKUP_SCHEDULE"`
	NudgeSchedule  string        `mapstructure:"NUDGE_SCHEDULE"`
	SyncSchedule   string        `mapstructure:"SYNC_SCHEDULE"`

	// Notifications
	TelegramToken  string `mapstructure:"TELEGRAM_TOKEN"`
	TelegramChatID int64  `mapstructure:"TELEGRAM_CHAT_ID"`

	RateLimitPerMinute int `mapstructure:"RATE_LIMIT_PER_MINUTE"`

	LogLevel  string `mapstructure:"LOG_LEVEL"`
	LogFormat string `mapstructure:"LOG_FORMAT"`
}

var defaults = map[string]any{
	"PORT":                        "8081",
	"DATA_BACKEND":                "sqlite",
	"SQLITE_DB_PATH":              "./data/lifeadmin.db",
	"REDIS_ADDR":                  "localhost:6379",
	"REDIS_PASSWORD":              "",
	"REDIS_DB":                    0,
	"AMQP_URL":                    "",
	"AMQP_EXCHANGE":               "lifeadmin",
	"AMQP_QUEUE":                  "store_changes",
	"CLOUD_REMOTE":                "none",
	"CLOUD_USER_ID":               "",
	"GOOGLE_SERVICE_ACCOUNT_JSON": "",
	"GOOGLE_SERVICE_ACCOUNT_FILE": "",
	"WATCH_INTERVAL":              "1500ms",
	"BACKUP_SCHEDULE":             "@every 1h",
	"NUDGE_SCHEDULE":              "@every 30m",
	"SYNC_SCHEDULE":               "",
	"TELEGRAM_TOKEN":              "",
	"TELEGRAM_CHAT_ID":            0,
	"RATE_LIMIT_PER_MINUTE":       120,
	"LOG_LEVEL":                   "info",
	"LOG_FORMAT":                  "text",
}

// Load reads lifeadmin.env from path when present, then lets the environment
// override it. A missing file is not an error.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName("lifeadmin")
	v.SetConfigType("env")

	v.AutomaticEnv()
	for key, def := range defaults {
		v.SetDefault(key, def)
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("bind %s: %w", key, err)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	cfg.DataBackend = strings.ToLower(strings.TrimSpace(cfg.DataBackend))
	cfg.CloudRemote = strings.ToLower(strings.TrimSpace(cfg.CloudRemote))
	return cfg, nil
}

// CloudEnabled reports whether a cloud remote is configured.
func (c *Config) CloudEnabled() bool {
	return c.CloudRemote != "" && c.CloudRemote != "none"
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errs []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		errs = append(errs, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errs = append(errs, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	if !slices.Contains(DataBackends, c.DataBackend) {
		errs = append(errs, fmt.Sprintf("invalid data backend '%s': must be one of %v", c.DataBackend, DataBackends))
	}

	if c.DataBackend == "sqlite" {
		if c.SQLiteDBPath == "" {
			errs = append(errs, "SQLite database path cannot be empty when using sqlite backend")
		} else if dir := filepath.Dir(c.SQLiteDBPath); dir != "." && dir != "" {
			if _, err := os.Stat(dir); os.IsNotExist(err) {
				if err := os.MkdirAll(dir, 0755); err != nil {
					errs = append(errs, fmt.Sprintf("cannot create SQLite database directory '%s': %v", dir, err))
				}
			}
		}
	}

	if (c.DataBackend == "redis" || c.CloudRemote == "redis") && c.RedisAddr == "" {
		errs = append(errs, "REDIS_ADDR is required when redis is used")
	}
	if c.RedisDB < 0 {
		errs = append(errs, fmt.Sprintf("invalid redis db %d: must not be negative", c.RedisDB))
	}

	if c.AMQPURL != "" {
		if parsedURL, err := url.Parse(c.AMQPURL); err != nil {
			errs = append(errs, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsedURL.Scheme != "amqp" && parsedURL.Scheme != "amqps" {
			errs = append(errs, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsedURL.Scheme))
		}
		if c.AMQPExchange == "" {
			errs = append(errs, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPQueue == "" {
			errs = append(errs, "AMQP queue name cannot be empty when AMQP URL is provided")
		}
	}

	if !slices.Contains(CloudRemotes, c.CloudRemote) {
		errs = append(errs, fmt.Sprintf("invalid cloud remote '%s': must be one of %v", c.CloudRemote, CloudRemotes))
	}
	if c.CloudEnabled() && c.CloudUserID == "" {
		errs = append(errs, "CLOUD_USER_ID is required when a cloud remote is configured")
	}
	if c.CloudRemote == "drive" {
		hasFile := c.GoogleServiceAccountFile != ""
		if !hasFile && c.GoogleServiceAccountJSON == "" && os.Getenv("GOOGLE_APPLICATION_CREDENTIALS") == "" {
			errs = append(errs, "either GOOGLE_SERVICE_ACCOUNT_FILE or GOOGLE_SERVICE_ACCOUNT_JSON must be provided for the drive remote")
		}
		if hasFile {
			if _, err := os.Stat(c.GoogleServiceAccountFile); os.IsNotExist(err) {
				errs = append(errs, fmt.Sprintf("Google service account file does not exist: %s", c.GoogleServiceAccountFile))
			}
		}
	}

	if c.WatchInterval < 100*time.Millisecond {
		errs = append(errs, fmt.Sprintf("invalid watch interval %v: must be at least 100ms", c.WatchInterval))
	}

	for name, spec := range map[string]string{
		"BACKUP_SCHEDULE": c.BackupSchedule,
		"NUDGE_SCHEDULE":  c.NudgeSchedule,
		"SYNC_SCHEDULE":   c.SyncSchedule,
	} {
		if spec == "" {
			continue
		}
		if _, err := cron.ParseStandard(spec); err != nil {
			errs = append(errs, fmt.Sprintf("invalid %s '%s': %v", name, spec, err))
		}
	}

	if c.TelegramToken != "" && c.TelegramChatID == 0 {
		errs = append(errs, "TELEGRAM_CHAT_ID is required when TELEGRAM_TOKEN is set")
	}

	if c.RateLimitPerMinute < 1 {
		errs = append(errs, fmt.Sprintf("invalid rate limit %d: must be at least 1 per minute", c.RateLimitPerMinute))
	}

	if f := strings.ToLower(c.LogFormat); f != "text" && f != "json" {
		errs = append(errs, fmt.Sprintf("invalid log format '%s': must be text or json", c.LogFormat))
	}

	if len(errs) > 0 {
		slices.Sort(errs)
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errs, "\n- "))
	}
	return nil
}
