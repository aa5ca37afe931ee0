package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/siteaccounts/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Only -a, -n, -p and -l are looked at (see flagx.FilterArgs), so flags of
// other components do not interfere.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-n", "-p", "-l"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.ServerEndpointAddr, "a", cfg.ServerEndpointAddr, "address and port to access server")
	seconds := fs.Int("n", int(cfg.NotificationDuration.Seconds()), "notification display time (in seconds)")
	fs.StringVar(&cfg.ProfileCachePath, "p", cfg.ProfileCachePath, "profile cache file")
	fs.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "log level")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	cfg.NotificationDuration = time.Duration(*seconds) * time.Second
}
