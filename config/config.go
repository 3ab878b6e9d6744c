package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"time"

	"callward/event"

	"github.com/BurntSushi/toml"
)

type Config struct {
	Log     LogConfig     `toml:"log"`
	DB      DBConfig      `toml:"database"`
	Device  DeviceConfig  `toml:"device"`
	Filter  FilterConfig  `toml:"filter"`
	Relay   RelayConfig   `toml:"relay"`
	Remote  RemoteConfig  `toml:"remote"`
	Bridge  BridgeConfig  `toml:"bridge"`
	Metrics MetricsConfig `toml:"metrics"`
}

type LogLevel string

const (
	DebugLevel LogLevel = "debug"
	InfoLevel  LogLevel = "info"
	WarnLevel  LogLevel = "warn"
	ErrorLevel LogLevel = "error"
)

func (l *LogLevel) UnmarshalText(text []byte) error {
	v := string(text)
	switch LogLevel(v) {
	case DebugLevel, InfoLevel, WarnLevel, ErrorLevel:
		*l = LogLevel(v)
		return nil
	default:
		return fmt.Errorf("invalid log.level: %q (must be debug, info, warn, error)", v)
	}
}

func (l LogLevel) String() string { return string(l) }

func (l LogLevel) ToSlogLevel() slog.Level {
	switch l {
	case DebugLevel:
		return slog.LevelDebug
	case WarnLevel:
		return slog.LevelWarn
	case ErrorLevel:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

type LogConfig struct {
	Level LogLevel `toml:"level"`
}

type DBConfig struct {
	Path string `toml:"path"`
}

type DeviceConfig struct {
	Name string `toml:"name"`
}

type FilterConfig struct {
	Triggers []event.Trigger `toml:"triggers"`
}

type RelayConfig struct {
	Recipient     string  `toml:"recipient"`
	RatePerMinute float64 `toml:"rate_per_minute"`
	Burst         int     `toml:"burst"`
}

type RemoteConfig struct {
	Enabled        bool          `toml:"enabled"`
	PollInterval   time.Duration `toml:"poll_interval"`
	AllowedSenders []string      `toml:"allowed_senders"`
	NotifyUser     bool          `toml:"notify_user"`
	AllowSMSSend   bool          `toml:"allow_sms_send"`
}

type BridgeConfig struct {
	MailPath   string `toml:"mail_path"`
	SMSPath    string `toml:"sms_path"`
	NotifyPath string `toml:"notify_path"`
}

type MetricsConfig struct {
	Listen string `toml:"listen"`
}

func defaultConfig() *Config {
	return &Config{
		DB: DBConfig{
			Path: "./callward-db",
		},
		Device: DeviceConfig{
			Name: "Phone",
		},
		Relay: RelayConfig{
			RatePerMinute: 30,
			Burst:         10,
		},
		Remote: RemoteConfig{
			PollInterval: 5 * time.Minute,
			NotifyUser:   true,
		},
		Bridge: BridgeConfig{
			MailPath:   "/usr/local/bin/callward-mail",
			SMSPath:    "/usr/local/bin/callward-sms",
			NotifyPath: "/usr/local/bin/callward-notify",
		},
	}
}

func (c *Config) validate() error {
	// --- [device] ---
	if c.Device.Name == "" {
		return errors.New("device.name must be set")
	}

	// --- [relay] ---
	// An empty recipient is allowed: it disables relaying, so the
	// internal defaults can run without a config file.
	if c.Relay.RatePerMinute < 0 {
		return errors.New("relay.rate_per_minute must not be negative")
	}
	if c.Relay.RatePerMinute > 0 && c.Relay.Burst <= 0 {
		return errors.New("relay.burst must be > 0 when rate limiting is on")
	}

	// --- [remote] ---
	if c.Remote.Enabled {
		if c.Remote.PollInterval <= 0 {
			return errors.New("remote.poll_interval must be a positive duration (e.g., '5m')")
		}
		if len(c.Remote.AllowedSenders) == 0 {
			return errors.New("remote.allowed_senders must not be empty when remote control is enabled")
		}
	}

	// --- [bridge] ---
	if c.Bridge.MailPath == "" {
		return errors.New("bridge.mail_path must be set")
	}
	if c.Remote.Enabled && c.Remote.AllowSMSSend && c.Bridge.SMSPath == "" {
		return errors.New("bridge.sms_path must be set when remote.allow_sms_send is on")
	}

	return nil
}

func Load(path string, useDefaults bool) (*Config, bool, error) {
	cfg := defaultConfig()
	defaultsUsed := false

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			if useDefaults {
				defaultsUsed = true
				if err := cfg.validate(); err != nil {
					return nil, true, err
				}
				return cfg, defaultsUsed, nil
			}
			return nil, false, fmt.Errorf("config file not found at %s", path)
		}
		return nil, false, fmt.Errorf("failed to load config file %s: %w", path, err)
	}

	if err := cfg.validate(); err != nil {
		return nil, false, err
	}
	return cfg, defaultsUsed, nil
}
