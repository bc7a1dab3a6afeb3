// Package config loads runtime configuration for the field agent.
//
// Sources and precedence: built-in defaults, then an optional JSON file
// selected with -c/-config, then command-line flags.
package config

import "time"

// Config holds runtime settings for the field agent CLI.
type Config struct {
	ServerEndpointAddr  string
	DatabasePath        string
	OnlineCheckInterval time.Duration
	PendingPollInterval time.Duration
	SubmitTimeout       time.Duration
	PageSize            int
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerEndpointAddr = "http://127.0.0.1:3000"
	c.DatabasePath = "fieldreport.db"
	c.OnlineCheckInterval = 3 * time.Second
	c.PendingPollInterval = 3 * time.Second
	c.SubmitTimeout = 10 * time.Second
	c.PageSize = 20
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
