package config

import (
	"os"

	"github.com/dmitrijs2005/siteaccounts/internal/flagx"
	"github.com/dmitrijs2005/siteaccounts/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. Pointer
// fields tell an absent key from an empty one.
type JsonConfig struct {
	ServerEndpointAddr   *string         `json:"server_endpoint_addr"`
	NotificationDuration *timex.Duration `json:"notification_duration"`
	ProfileCachePath     *string         `json:"profile_cache_path"`
	LogLevel             *string         `json:"log_level"`
}

// parseJson overlays Config with values from the JSON file named by -c or
// -config. Panics on read or unmarshal errors.
func parseJson(cfg *Config) {
	var jc JsonConfig

	ok, err := flagx.LoadJSON(os.Args[1:], &jc)
	if err != nil {
		panic(err)
	}
	if !ok {
		return
	}

	if jc.ServerEndpointAddr != nil {
		cfg.ServerEndpointAddr = *jc.ServerEndpointAddr
	}
	if jc.NotificationDuration != nil {
		cfg.NotificationDuration = jc.NotificationDuration.Duration
	}
	if jc.ProfileCachePath != nil {
		cfg.ProfileCachePath = *jc.ProfileCachePath
	}
	if jc.LogLevel != nil {
		cfg.LogLevel = *jc.LogLevel
	}
}
