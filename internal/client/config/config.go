package config

import "time"

// Config holds runtime settings for the stillmind CLI.
//
// Units: OnlineCheckInterval and SyncDelay are time.Durations
// (e.g., 3*time.Second).
type Config struct {
	ServerEndpointAddr  string
	DatabasePath        string
	OnlineCheckInterval time.Duration
	SyncDelay           time.Duration
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerEndpointAddr = "http://127.0.0.1:8080"
	c.DatabasePath = "stillmind.db"
	c.OnlineCheckInterval = 3 * time.Second
	c.SyncDelay = 5 * time.Second
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present) and command-line flags (if present). Later sources take
// precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
