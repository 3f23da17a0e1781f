// Package config provides configuration loading and validation for the
// tender dashboard service and CLI.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// EnvPrefix is the prefix of environment overrides, e.g. TENDER_SERVER_PORT.
const EnvPrefix = "TENDER"

// Config is the full service configuration.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Sources   []string        `mapstructure:"sources" validate:"dive,required"`
	Cache     CacheConfig     `mapstructure:"cache"`
	Fetch     FetchConfig     `mapstructure:"fetch"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	Schedule  ScheduleConfig  `mapstructure:"schedule"`
	Dashboard DashboardConfig `mapstructure:"dashboard"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	Notify    NotifyConfig    `mapstructure:"notify"`
}

type ServerConfig struct {
	Port            int           `mapstructure:"port" validate:"min=1,max=65535"`
	StaticDir       string        `mapstructure:"static_dir"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout" validate:"gte=0"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout" validate:"gte=0"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"gte=0"`
}

type CacheConfig struct {
	Backend string        `mapstructure:"backend" validate:"oneof=memory redis"`
	Key     string        `mapstructure:"key" validate:"required"`
	TTL     time.Duration `mapstructure:"ttl" validate:"gt=0"`
	Redis   RedisConfig   `mapstructure:"redis"`
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db" validate:"gte=0"`
}

type FetchConfig struct {
	Timeout   time.Duration `mapstructure:"timeout" validate:"gt=0"`
	UserAgent string        `mapstructure:"user_agent"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level" validate:"oneof=debug info warn error"`
	Format string `mapstructure:"format" validate:"oneof=json console"`
}

type ScheduleConfig struct {
	RunHour  int    `mapstructure:"run_hour" validate:"min=0,max=23"`
	NextRun  string `mapstructure:"next_run"`
	Timezone string `mapstructure:"timezone"`
}

type DashboardConfig struct {
	HideOutOfScope bool `mapstructure:"hide_out_of_scope"`
	ScoreMissing   bool `mapstructure:"score_missing"`
	Concurrency    int  `mapstructure:"concurrency" validate:"min=1,max=256"`
}

// NotifyConfig controls delivery of the weekly digest through Amazon SES.
// Credentials come from the default AWS chain.
type NotifyConfig struct {
	Enabled bool     `mapstructure:"enabled"`
	Region  string   `mapstructure:"region"`
	From    string   `mapstructure:"from" validate:"omitempty,email"`
	To      []string `mapstructure:"to" validate:"dive,email"`
	Subject string   `mapstructure:"subject"`
}

// RateLimitConfig bounds how often clients may hit the API. Refresh forces a
// fetch from every upstream source so it has its own, stricter, budget.
type RateLimitConfig struct {
	Enabled       bool          `mapstructure:"enabled"`
	DefaultLimit  int           `mapstructure:"default_limit" validate:"gte=0"`
	DefaultWindow time.Duration `mapstructure:"default_window" validate:"gt=0"`
	RefreshLimit  int           `mapstructure:"refresh_limit" validate:"gte=0"`
	RefreshWindow time.Duration `mapstructure:"refresh_window" validate:"gt=0"`
	RefreshBurst  int           `mapstructure:"refresh_burst" validate:"gte=0"`
	Whitelist     []string      `mapstructure:"whitelist"`
}

// sastZone is used when the configured timezone is not in the local tz database.
var sastZone = time.FixedZone("SAST", 2*60*60)

// Location resolves the schedule timezone.
func (s ScheduleConfig) Location() *time.Location {
	if s.Timezone == "" {
		return sastZone
	}
	loc, err := time.LoadLocation(s.Timezone)
	if err != nil {
		return sastZone
	}
	return loc
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.static_dir", "")
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 30*time.Second)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)

	v.SetDefault("sources", []string{})

	v.SetDefault("cache.backend", "memory")
	v.SetDefault("cache.key", "ti_dashboard_payload_v1")
	v.SetDefault("cache.ttl", time.Hour)
	v.SetDefault("cache.redis.address", "localhost:6379")
	v.SetDefault("cache.redis.password", "")
	v.SetDefault("cache.redis.db", 0)

	v.SetDefault("fetch.timeout", 15*time.Second)
	v.SetDefault("fetch.user_agent", "Mozilla/5.0 (compatible; TenderIntel/1.0)")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")

	v.SetDefault("schedule.run_hour", 8)
	v.SetDefault("schedule.next_run", "Daily 08:00")
	v.SetDefault("schedule.timezone", "Africa/Johannesburg")

	v.SetDefault("dashboard.hide_out_of_scope", false)
	v.SetDefault("dashboard.score_missing", false)
	v.SetDefault("dashboard.concurrency", 8)

	v.SetDefault("rate_limit.enabled", true)
	v.SetDefault("rate_limit.default_limit", 600)
	v.SetDefault("rate_limit.default_window", time.Minute)
	v.SetDefault("rate_limit.refresh_limit", 6)
	v.SetDefault("rate_limit.refresh_window", time.Minute)
	v.SetDefault("rate_limit.refresh_burst", 2)
	v.SetDefault("rate_limit.whitelist", []string{})

	v.SetDefault("notify.enabled", false)
	v.SetDefault("notify.region", "af-south-1")
	v.SetDefault("notify.from", "")
	v.SetDefault("notify.to", []string{})
	v.SetDefault("notify.subject", "Weekly Tender Report")
}

// Default returns the configuration with every default applied and no
// file or environment input.
func Default() *Config {
	v := viper.New()
	setDefaults(v)
	var cfg Config
	_ = v.Unmarshal(&cfg)
	return &cfg
}

// Load reads configuration from path (YAML or JSON, optional when empty),
// applies TENDER_* environment overrides and defaults, and validates the result.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Env values arrive as one string; list overrides are comma separated.
	if raw := os.Getenv(EnvPrefix + "_SOURCES"); raw != "" {
		cfg.Sources = splitList(raw)
	}
	if raw := os.Getenv(EnvPrefix + "_NOTIFY_TO"); raw != "" {
		cfg.Notify.To = splitList(raw)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
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

var validate = validator.New()

// Validate checks struct tags and cross-field rules.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("config error: '%s' failed '%s' check (value %v)", fieldPath(fe.Namespace()), fe.Tag(), fe.Value())
		}
		return fmt.Errorf("config error: %w", err)
	}

	if c.Cache.Backend == "redis" && c.Cache.Redis.Address == "" {
		return fmt.Errorf("config error: 'cache.redis.address' is required for the redis backend")
	}

	if c.Notify.Enabled && (c.Notify.From == "" || len(c.Notify.To) == 0 || c.Notify.Region == "") {
		return fmt.Errorf("config error: 'notify.from', 'notify.to' and 'notify.region' are required when notify is enabled")
	}

	if c.Server.StaticDir != "" {
		info, err := os.Stat(c.Server.StaticDir)
		if err != nil || !info.IsDir() {
			return fmt.Errorf("config error: static directory not found: %s", c.Server.StaticDir)
		}
	}

	return nil
}

// fieldPath turns "Config.Cache.TTL" into "Cache.TTL".
func fieldPath(ns string) string {
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return ns
}
