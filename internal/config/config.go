// Package config loads the daemon's TOML settings file. A missing file is
// not an error; every field has a usable default so the daemon runs with no
// configuration at all (pointing at a broker on localhost).
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

// DefaultFileName is the settings file looked for in the working directory
// when neither the flag nor CHAMBERS_CONFIG names one.
const DefaultFileName = "chambers.toml"

// EnvConfigPath overrides the settings file location.
const EnvConfigPath = "CHAMBERS_CONFIG"

// Settings is the daemon configuration.
type Settings struct {
	// CacheDir holds the per-chamber cache files. Empty means the working
	// directory.
	CacheDir string `toml:"cache_dir"`
	// LogLevel is debug, info, warn or error.
	LogLevel string `toml:"log_level"`
	// HTTPTimeout bounds each feed fetch, as a Go duration string.
	HTTPTimeout string `toml:"http_timeout"`
	// TickInterval is how often the run loop polls the schedulers.
	TickInterval string `toml:"tick_interval"`
	// SenateLookbackDays caps the Senate prior-day walk.
	SenateLookbackDays int `toml:"senate_lookback_days"`

	MQTT MQTT `toml:"mqtt"`
}

// MQTT is the broker configuration for the publishing shell.
type MQTT struct {
	Host     string `toml:"host"`
	Port     int    `toml:"port"`
	Username string `toml:"username"`
	Password string `toml:"password"`
	ClientID string `toml:"client_id"`
	QoS      int    `toml:"qos"`
	// Base is the root of the daemon's own topics.
	Base string `toml:"base"`
	// HABase is the Home Assistant discovery prefix.
	HABase string `toml:"ha_base"`
}

// Default returns the settings used when no file is present.
func Default() *Settings {
	return &Settings{
		LogLevel:     "info",
		HTTPTimeout:  "15s",
		TickInterval: "15s",
		MQTT: MQTT{
			Host:     "localhost",
			Port:     1883,
			ClientID: "chambers",
			Base:     "chambers",
			HABase:   "homeassistant",
		},
	}
}

// Path resolves the settings file location: explicit argument first, then
// the CHAMBERS_CONFIG environment variable, then DefaultFileName in the
// working directory.
func Path(flagPath string) string {
	if flagPath != "" {
		return flagPath
	}
	if env := os.Getenv(EnvConfigPath); env != "" {
		return env
	}
	return DefaultFileName
}

// Load reads settings from path, filling unset fields from Default. A
// missing file returns the defaults without error.
func Load(path string) (*Settings, error) {
	s := Default()
	meta, err := toml.DecodeFile(path, s)
	if errors.Is(err, os.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading settings %s: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("settings %s has unknown keys: %v", path, undecoded)
	}
	applyDefaults(s)
	return s, nil
}

func applyDefaults(s *Settings) {
	def := Default()
	if s.LogLevel == "" {
		s.LogLevel = def.LogLevel
	}
	if s.HTTPTimeout == "" {
		s.HTTPTimeout = def.HTTPTimeout
	}
	if s.TickInterval == "" {
		s.TickInterval = def.TickInterval
	}
	if s.MQTT.Host == "" {
		s.MQTT.Host = def.MQTT.Host
	}
	if s.MQTT.Port == 0 {
		s.MQTT.Port = def.MQTT.Port
	}
	if s.MQTT.ClientID == "" {
		s.MQTT.ClientID = def.MQTT.ClientID
	}
	if s.MQTT.Base == "" {
		s.MQTT.Base = def.MQTT.Base
	}
	if s.MQTT.HABase == "" {
		s.MQTT.HABase = def.MQTT.HABase
	}
}

// CachePath returns the cache file for a chamber under the configured
// cache directory.
func (s *Settings) CachePath(chamber string) string {
	return filepath.Join(s.CacheDir, chamber+".cache")
}

// ParseDurationOrDefault parses a duration string, returning fallback for
// empty or invalid input.
func ParseDurationOrDefault(s string, fallback time.Duration) time.Duration {
	if s == "" {
		return fallback
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return fallback
	}
	return d
}
