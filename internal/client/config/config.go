package config

import (
	"time"

	"github.com/dmitrijs2005/siteaccounts/internal/notify"
)

// Config holds runtime settings for the account CLI.
//
// Fields:
//   - ServerEndpointAddr: host:port of the backend gRPC endpoint.
//   - NotificationDuration: how long a notification stays on screen.
//   - ProfileCachePath: sqlite file caching the last seen profile.
//   - LogLevel: debug, info, warn or error.
type Config struct {
	ServerEndpointAddr   string
	NotificationDuration time.Duration
	ProfileCachePath     string
	LogLevel             string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerEndpointAddr = "127.0.0.1:50051"
	c.NotificationDuration = notify.DefaultDuration
	c.ProfileCachePath = "siteaccounts.db"
	c.LogLevel = "warn"
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
