// Package config loads tabdedupe settings from defaults, an optional YAML
// file, a .env file and TABDEDUPE_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment override, e.g. TABDEDUPE_PORT
// or TABDEDUPE_API_ADDR for api.addr.
const EnvPrefix = "TABDEDUPE"

// Config is the complete tabdedupe configuration.
type Config struct {
	// Port is the local WebSocket port the browser extension connects to.
	Port int `mapstructure:"port"`
	// HostTimeout bounds each request to the extension.
	HostTimeout time.Duration `mapstructure:"host_timeout"`
	// ConnectTimeout is how long one-shot commands wait for the extension.
	ConnectTimeout time.Duration `mapstructure:"connect_timeout"`
	DBPath         string        `mapstructure:"db_path"`
	LogDir         string        `mapstructure:"log_dir"`
	// Profile selects a Firefox profile for the read-only session source.
	Profile          string       `mapstructure:"profile"`
	InternalPrefixes []string     `mapstructure:"internal_prefixes"`
	API              APIConfig    `mapstructure:"api"`
	Review           ReviewConfig `mapstructure:"review"`
}

// APIConfig controls the HTTP API served by "tabdedupe serve".
type APIConfig struct {
	Addr string `mapstructure:"addr"`
}

// ReviewConfig controls the review prompt.
type ReviewConfig struct {
	Threshold    int    `mapstructure:"threshold"`
	IntervalDays int    `mapstructure:"interval_days"`
	URL          string `mapstructure:"url"`
}

// Interval returns the minimum time between prompts.
func (r ReviewConfig) Interval() time.Duration {
	return time.Duration(r.IntervalDays) * 24 * time.Hour
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Port:             19191,
		HostTimeout:      10 * time.Second,
		ConnectTimeout:   15 * time.Second,
		DBPath:           filepath.Join(DataDir(), "tabdedupe.db"),
		LogDir:           filepath.Join(DataDir(), "logs"),
		InternalPrefixes: []string{"chrome://", "edge://"},
		API:              APIConfig{Addr: "127.0.0.1:19192"},
		Review: ReviewConfig{
			Threshold:    5,
			IntervalDays: 7,
			URL:          "https://addons.mozilla.org/firefox/addon/tabdedupe/reviews/",
		},
	}
}

// SetDefaults registers every default with v.
func SetDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("port", d.Port)
	v.SetDefault("host_timeout", d.HostTimeout)
	v.SetDefault("connect_timeout", d.ConnectTimeout)
	v.SetDefault("db_path", d.DBPath)
	v.SetDefault("log_dir", d.LogDir)
	v.SetDefault("profile", d.Profile)
	v.SetDefault("internal_prefixes", d.InternalPrefixes)
	v.SetDefault("api.addr", d.API.Addr)
	v.SetDefault("review.threshold", d.Review.Threshold)
	v.SetDefault("review.interval_days", d.Review.IntervalDays)
	v.SetDefault("review.url", d.Review.URL)
}

// Init prepares v: defaults, the .env file in the working directory, env
// overrides and the config file. cfgFile overrides the search path. A
// missing config file is not an error.
func Init(v *viper.Viper, cfgFile string) error {
	_ = godotenv.Load()

	SetDefaults(v)
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(ConfigDir())
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix(EnvPrefix)
	// TABDEDUPE_REVIEW_THRESHOLD for review.threshold
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) && cfgFile == "" {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}
	return nil
}

// Load unmarshals v into a validated Config.
func Load(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	var errs []error
	if c.Port < 1 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("port %d out of range", c.Port))
	}
	if c.HostTimeout <= 0 {
		errs = append(errs, fmt.Errorf("host_timeout must be positive"))
	}
	if c.DBPath == "" {
		errs = append(errs, fmt.Errorf("db_path is empty"))
	}
	if c.Review.Threshold < 1 {
		errs = append(errs, fmt.Errorf("review.threshold must be at least 1"))
	}
	if c.Review.IntervalDays < 0 {
		errs = append(errs, fmt.Errorf("review.interval_days must not be negative"))
	}
	return errors.Join(errs...)
}

// ConfigDir returns the path to the user's config directory.
func ConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "tabdedupe")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".tabdedupe"
	}
	return filepath.Join(home, ".config", "tabdedupe")
}

// DataDir returns ~/.local/share/tabdedupe.
func DataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".tabdedupe"
	}
	return filepath.Join(home, ".local", "share", "tabdedupe")
}
