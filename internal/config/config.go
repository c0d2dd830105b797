// Package config loads and validates watcher configuration via Viper.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config captures all service configuration knobs loaded via Viper.
type Config struct {
	Watch   WatchConfig   `mapstructure:"watch"`
	HTTP    HTTPConfig    `mapstructure:"http"`
	Notify  NotifyConfig  `mapstructure:"notify"`
	State   StateConfig   `mapstructure:"state"`
	Server  ServerConfig  `mapstructure:"server"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// WatchConfig governs frontier discovery and the steady-state poll loop.
type WatchConfig struct {
	StartID         uint64  `mapstructure:"start_id"`
	StopAt          uint64  `mapstructure:"stop_at"`
	SeedID          uint64  `mapstructure:"seed_id"`
	IntervalSeconds int     `mapstructure:"interval_seconds"`
	ThrottleSeconds float64 `mapstructure:"throttle_seconds"`
	MaxRetries      int     `mapstructure:"max_retries"`
	AdvanceWindow   uint64  `mapstructure:"advance_window"`
	GapBudget       int     `mapstructure:"gap_budget"`
	ForceReseed     bool    `mapstructure:"force_reseed"`
	PollLog         bool    `mapstructure:"poll_log"`
	ProbeLog        bool    `mapstructure:"probe_log"`
}

// HTTPConfig configures the item fetch client.
type HTTPConfig struct {
	BaseURL        string `mapstructure:"base_url"`
	UserAgent      string `mapstructure:"user_agent"`
	AcceptLanguage string `mapstructure:"accept_language"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
}

// NotifyConfig controls which confirmed IDs produce notification lines.
type NotifyConfig struct {
	Every         uint64 `mapstructure:"every"`
	SwitchAtLeft  uint64 `mapstructure:"switch_at_left"`
	AlwaysPerItem bool   `mapstructure:"always_per_item"`
}

// StateConfig selects and configures the checkpoint backend.
type StateConfig struct {
	Backend string `mapstructure:"backend"`
	Dir     string `mapstructure:"dir"`
	DSN     string `mapstructure:"dsn"`
	Watcher string `mapstructure:"watcher"`
}

// ServerConfig controls the optional status/metrics HTTP server.
type ServerConfig struct {
	Enabled bool `mapstructure:"enabled"`
	Port    int  `mapstructure:"port"`
}

// LoggingConfig toggles zap development features.
type LoggingConfig struct {
	Development bool `mapstructure:"development"`
}

// Load builds a Config from disk/environment. Bare legacy environment names
// (START_ID, STOP_AT, ...) are honored alongside the ITEMWATCH_ prefixed form.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("ITEMWATCH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)
	bindLegacyEnv(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	// The discovery seed falls back to the target, then to the start ID.
	if cfg.Watch.SeedID == 0 {
		if cfg.Watch.StopAt > 0 {
			cfg.Watch.SeedID = cfg.Watch.StopAt
		} else {
			cfg.Watch.SeedID = cfg.Watch.StartID
		}
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("watch.start_id", 999000)
	v.SetDefault("watch.interval_seconds", 30)
	v.SetDefault("watch.throttle_seconds", 0.2)
	v.SetDefault("watch.max_retries", 3)
	v.SetDefault("watch.advance_window", 200)
	v.SetDefault("watch.gap_budget", 4)
	v.SetDefault("http.user_agent", "itemwatch/0.1")
	v.SetDefault("http.accept_language", "en-US,en;q=0.9")
	v.SetDefault("http.timeout_seconds", 12)
	v.SetDefault("notify.every", 2)
	v.SetDefault("notify.switch_at_left", 15)
	v.SetDefault("state.backend", "file")
	v.SetDefault("state.dir", "state")
	v.SetDefault("state.dsn", "")
	v.SetDefault("state.watcher", "itemwatch")
	v.SetDefault("server.enabled", false)
	v.SetDefault("server.port", 8080)
	v.SetDefault("logging.development", true)
}

// bindLegacyEnv maps the historical bare environment names onto their keys.
// The ITEMWATCH_ prefixed name always wins when both are set.
func bindLegacyEnv(v *viper.Viper) {
	for key, legacy := range map[string]string{
		"watch.start_id":         "START_ID",
		"watch.stop_at":          "STOP_AT",
		"watch.seed_id":          "SEED_ID",
		"watch.interval_seconds": "INTERVAL",
		"watch.throttle_seconds": "THROTTLE",
		"watch.max_retries":      "RETRIES",
		"watch.advance_window":   "ADV_WINDOW",
		"watch.gap_budget":       "GAP_BUDGET",
		"watch.force_reseed":     "FORCE_RESEED",
		"watch.poll_log":         "POLL_LOG",
		"watch.probe_log":        "PROBE_LOG",
		"http.base_url":          "BASE_URL",
		"http.user_agent":        "UA",
		"http.timeout_seconds":   "CURL_TIMEOUT",
		"notify.every":           "NOTIFY_EVERY",
		"notify.switch_at_left":  "SWITCH_AT_LEFT",
		"notify.always_per_item": "ALWAYS_PER_POST",
	} {
		prefixed := "ITEMWATCH_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		_ = v.BindEnv(key, prefixed, legacy)
	}
}

// Validate enforces required values and reasonable limits.
func (c Config) Validate() error {
	if c.HTTP.BaseURL == "" {
		return fmt.Errorf("http.base_url must be set")
	}
	if c.HTTP.TimeoutSeconds <= 0 {
		return fmt.Errorf("http.timeout_seconds must be > 0")
	}
	if c.Watch.IntervalSeconds <= 0 {
		return fmt.Errorf("watch.interval_seconds must be > 0")
	}
	if c.Watch.ThrottleSeconds < 0 {
		return fmt.Errorf("watch.throttle_seconds must be >= 0")
	}
	if c.Watch.MaxRetries <= 0 {
		return fmt.Errorf("watch.max_retries must be > 0")
	}
	if c.Watch.GapBudget < 0 {
		return fmt.Errorf("watch.gap_budget must be >= 0")
	}
	switch c.State.Backend {
	case "file":
		if c.State.Dir == "" {
			return fmt.Errorf("state.dir must be set for the file backend")
		}
	case "postgres":
		if c.State.DSN == "" {
			return fmt.Errorf("state.dsn must be set for the postgres backend")
		}
	default:
		return fmt.Errorf("state.backend must be file or postgres, got %q", c.State.Backend)
	}
	if c.Server.Enabled && c.Server.Port <= 0 {
		return fmt.Errorf("server.port must be > 0 when the server is enabled")
	}
	return nil
}

// Interval is the idle delay between polls.
func (c Config) Interval() time.Duration {
	return time.Duration(c.Watch.IntervalSeconds) * time.Second
}

// Throttle is the minimum spacing between probes.
func (c Config) Throttle() time.Duration {
	return time.Duration(c.Watch.ThrottleSeconds * float64(time.Second))
}

// Timeout is the per-request HTTP budget.
func (c Config) Timeout() time.Duration {
	return time.Duration(c.HTTP.TimeoutSeconds) * time.Second
}
