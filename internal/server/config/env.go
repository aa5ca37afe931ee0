package config

import "github.com/kelseyhightower/envconfig"

// EnvPrefix is prepended to the envconfig keys, e.g. SITEACCOUNTS_GRPC_ADDR.
const EnvPrefix = "siteaccounts"

// parseEnv overlays Config with the environment. Unset variables leave the
// current value alone. Panics on malformed values.
func parseEnv(cfg *Config) {
	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		panic(err)
	}
}
