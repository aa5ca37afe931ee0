package config

import (
	"os"

	"github.com/dmitrijs2005/siteaccounts/internal/flagx"
	"github.com/dmitrijs2005/siteaccounts/internal/timex"
)

// JsonConfig is a DTO used only for reading the JSON configuration file.
// Durations accept both "1m" strings and integer nanoseconds (timex.Duration).
type JsonConfig struct {
	EndpointAddrGRPC            *string         `json:"endpoint_addr_grpc"`
	EndpointAddrHTTP            *string         `json:"endpoint_addr_http"`
	DatabaseDSN                 *string         `json:"database_dsn"`
	SecretKey                   *string         `json:"secret_key"`
	AccessTokenValidityDuration *timex.Duration `json:"access_token_validity_duration"`
	RecentLoginWindow           *timex.Duration `json:"recent_login_window"`
	VerificationCodeTTL         *timex.Duration `json:"verification_code_ttl"`
	PublicURL                   *string         `json:"public_url"`
	LogLevel                    *string         `json:"log_level"`
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

// parseJson overlays Config with the JSON file named by -c or -config.
// Keys missing from the file keep their current value. Panics on read or
// unmarshal errors.
func parseJson(cfg *Config) {
	var jc JsonConfig

	ok, err := flagx.LoadJSON(os.Args[1:], &jc)
	if err != nil {
		panic(err)
	}
	if !ok {
		return
	}

	setString(&cfg.EndpointAddrGRPC, jc.EndpointAddrGRPC)
	setString(&cfg.EndpointAddrHTTP, jc.EndpointAddrHTTP)
	setString(&cfg.DatabaseDSN, jc.DatabaseDSN)
	setString(&cfg.SecretKey, jc.SecretKey)
	setString(&cfg.PublicURL, jc.PublicURL)
	setString(&cfg.LogLevel, jc.LogLevel)

	if jc.AccessTokenValidityDuration != nil {
		cfg.AccessTokenValidityDuration = jc.AccessTokenValidityDuration.Duration
	}
	if jc.RecentLoginWindow != nil {
		cfg.RecentLoginWindow = jc.RecentLoginWindow.Duration
	}
	if jc.VerificationCodeTTL != nil {
		cfg.VerificationCodeTTL = jc.VerificationCodeTTL.Duration
	}
}
