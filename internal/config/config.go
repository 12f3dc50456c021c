// Package config resolves tripreel settings.
//
// Precedence, lowest first: built-in defaults, the YAML file, variables from a
// .env file and the process environment (TRIPREEL_*), then command-line flags.
// The layers are merged with viper; godotenv only feeds the environment.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// DefaultFile is looked up in the working directory when no path is given.
const DefaultFile = "tripreel.yaml"

// EnvPrefix namespaces environment variables, e.g. TRIPREEL_BACKEND_URL.
const EnvPrefix = "TRIPREEL"

// FlagKeys maps command-line flag names onto configuration keys.
var FlagKeys = map[string]string{
	"backend":    "backend_url",
	"timeout":    "request_timeout",
	"log-level":  "log_level",
	"log-format": "log_format",
	"listen":     "listen",
	"fixtures":   "fixtures_dir",
}

// Config holds every tunable of the CLI, web server and fixture backend.
type Config struct {
	BackendURL     string        `mapstructure:"backend_url"`
	Listen         string        `mapstructure:"listen"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	LogLevel       string        `mapstructure:"log_level"`
	LogFormat      string        `mapstructure:"log_format"`

	// SubmitRate is the sustained number of submissions per second allowed
	// per client on the web server; SubmitBurst is the bucket size.
	SubmitRate  float64 `mapstructure:"submit_rate"`
	SubmitBurst int     `mapstructure:"submit_burst"`

	// SessionTTL evicts idle web sessions.
	SessionTTL time.Duration `mapstructure:"session_ttl"`

	FixturesDir string `mapstructure:"fixtures_dir"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		BackendURL:     "http://localhost:8000",
		Listen:         ":8080",
		RequestTimeout: 120 * time.Second,
		LogLevel:       "info",
		LogFormat:      "text",
		SubmitRate:     0.2,
		SubmitBurst:    3,
		SessionTTL:     30 * time.Minute,
		FixturesDir:    "fixtures",
	}
}

func setDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("backend_url", d.BackendURL)
	v.SetDefault("listen", d.Listen)
	v.SetDefault("request_timeout", d.RequestTimeout)
	v.SetDefault("log_level", d.LogLevel)
	v.SetDefault("log_format", d.LogFormat)
	v.SetDefault("submit_rate", d.SubmitRate)
	v.SetDefault("submit_burst", d.SubmitBurst)
	v.SetDefault("session_ttl", d.SessionTTL)
	v.SetDefault("fixtures_dir", d.FixturesDir)
}

// Load builds the configuration from path (or DefaultFile when empty and
// present), the .env file at envFile (skipped when missing), the environment
// and the flags of FlagKeys that were set in flags. flags may be nil.
func Load(path, envFile string, flags *pflag.FlagSet) (Config, error) {
	v := viper.New()
	setDefaults(v)

	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return Default(), fmt.Errorf("failed to load %s: %w", envFile, err)
		}
	}
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if path == "" {
		if _, err := os.Stat(DefaultFile); err == nil {
			path = DefaultFile
		}
	}
	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return Default(), fmt.Errorf("failed to read config %s: %w", path, err)
		}
	}

	if flags != nil {
		for name, key := range FlagKeys {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return Default(), fmt.Errorf("bind --%s: %w", name, err)
				}
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Default(), fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, cfg.Validate()
}

// Validate rejects settings that cannot work.
func (c Config) Validate() error {
	if c.RequestTimeout < 0 {
		return fmt.Errorf("request_timeout must not be negative")
	}
	if c.SubmitRate < 0 || c.SubmitBurst < 0 {
		return fmt.Errorf("submit_rate and submit_burst must not be negative")
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		return err
	}
	switch strings.ToLower(c.LogFormat) {
	case "", "text", "json":
	default:
		return fmt.Errorf("invalid log_format %q (text or json)", c.LogFormat)
	}
	return nil
}

// Level returns the configured log level, defaulting to info.
func (c Config) Level() slog.Level {
	lvl, err := ParseLevel(c.LogLevel)
	if err != nil {
		return slog.LevelInfo
	}
	return lvl
}

// ParseLevel maps a level name to a slog.Level.
func ParseLevel(name string) (slog.Level, error) {
	var lvl slog.Level
	if strings.TrimSpace(name) == "" {
		return slog.LevelInfo, nil
	}
	if err := lvl.UnmarshalText([]byte(strings.TrimSpace(name))); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid log_level %q", name)
	}
	return lvl, nil
}
