package model

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

const defaultPollIntervalSec = 120

// SourceConfig holds the configuration of one wiki notifications are
// fetched from.
type SourceConfig struct {
	// Name is the unique key of the source (e.g., "enwiki").
	Name string `mapstructure:"name" yaml:"name"`

	// Title is the label shown above the source's notifications.
	Title string `mapstructure:"title" yaml:"title"`

	// URL is the page URL template with a "$1" placeholder
	// (e.g., https://en.wikipedia.org/wiki/$1).
	URL string `mapstructure:"url" yaml:"url"`

	// APIURL is the notification endpoint of a foreign wiki.
	APIURL string `mapstructure:"api_url" yaml:"api_url"`

	// Foreign marks remote wikis. The local wiki is served from the
	// local store.
	Foreign bool `mapstructure:"foreign" yaml:"foreign"`

	// Enabled controls whether this source is actively polled.
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`

	// PollIntervalSec is how often (in seconds) to fetch updates.
	PollIntervalSec int `mapstructure:"poll_interval_sec" yaml:"poll_interval_sec"`
}

// BadgeConfig holds the behavior of one header badge.
type BadgeConfig struct {
	// MarkReadWhenSeen marks every notification of the badge read once
	// its popup has finished loading.
	MarkReadWhenSeen bool `mapstructure:"mark_read_when_seen" yaml:"mark_read_when_seen"`
}

// BadgesConfig holds the alert and message badge settings.
type BadgesConfig struct {
	Alert   BadgeConfig `mapstructure:"alert" yaml:"alert"`
	Message BadgeConfig `mapstructure:"message" yaml:"message"`
}

// For returns the settings of the badge of type t.
func (b BadgesConfig) For(t BadgeType) BadgeConfig {
	if t == BadgeMessage {
		return b.Message
	}
	return b.Alert
}

// DisplayConfig holds UI/rendering preferences.
type DisplayConfig struct {
	Theme           string `mapstructure:"theme" yaml:"theme"`
	PollIntervalSec int    `mapstructure:"poll_interval_sec" yaml:"poll_interval_sec"`
}

// StoreConfig locates the local notification database.
type StoreConfig struct {
	Path string `mapstructure:"path" yaml:"path"`
}

// AppConfig is the top-level application configuration.
type AppConfig struct {
	Sources []SourceConfig `mapstructure:"sources" yaml:"sources"`
	Badges  BadgesConfig   `mapstructure:"badges" yaml:"badges"`
	Display DisplayConfig  `mapstructure:"display" yaml:"display"`
	Store   StoreConfig    `mapstructure:"store" yaml:"store"`
}

// DefaultConfigPath returns the default path for the configuration file,
// located at ~/.config/notifcenter/config.yaml.
func DefaultConfigPath() string {
	return filepath.Join(configDir(), "config.yaml")
}

// DefaultStorePath returns the default path of the notification database.
func DefaultStorePath() string {
	return filepath.Join(configDir(), "notifications.db")
}

func configDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".config", "notifcenter")
}

// defaultAppConfig returns a sensible default configuration.
func defaultAppConfig() *AppConfig {
	return &AppConfig{
		Sources: []SourceConfig{},
		Badges: BadgesConfig{
			Alert:   BadgeConfig{MarkReadWhenSeen: true},
			Message: BadgeConfig{MarkReadWhenSeen: false},
		},
		Display: DisplayConfig{
			Theme:           "default",
			PollIntervalSec: defaultPollIntervalSec,
		},
		Store: StoreConfig{
			Path: DefaultStorePath(),
		},
	}
}

// LoadConfig reads configuration from the given YAML file path using Viper.
// If the file does not exist, it returns a default configuration.
func LoadConfig(path string) (*AppConfig, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	// Set defaults so missing keys resolve to sensible values.
	v.SetDefault("badges.alert.mark_read_when_seen", true)
	v.SetDefault("badges.message.mark_read_when_seen", false)
	v.SetDefault("display.theme", "default")
	v.SetDefault("display.poll_interval_sec", defaultPollIntervalSec)
	v.SetDefault("store.path", DefaultStorePath())

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(*os.PathError); ok {
			return defaultAppConfig(), nil
		}
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return defaultAppConfig(), nil
		}
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	cfg := defaultAppConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	for i := range cfg.Sources {
		if cfg.Sources[i].PollIntervalSec == 0 {
			cfg.Sources[i].PollIntervalSec = cfg.Display.PollIntervalSec
		}
		if !cfg.Sources[i].Enabled {
			// Viper unmarshals missing bools as false; treat unset as true.
			key := fmt.Sprintf("sources.%d.enabled", i)
			if !v.IsSet(key) {
				cfg.Sources[i].Enabled = true
			}
		}
	}

	return cfg, nil
}

// SaveConfig writes the given configuration to a YAML file at path,
// creating parent directories if needed.
func SaveConfig(path string, cfg *AppConfig) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory %s: %w", dir, err)
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.Set("sources", cfg.Sources)
	v.Set("badges", cfg.Badges)
	v.Set("display", cfg.Display)
	v.Set("store", cfg.Store)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}

	return nil
}
