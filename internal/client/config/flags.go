package config

import (
	"flag"
	"time"

	"github.com/dmitrijs2005/scanpilot/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   base URL of the ScanPilot API
//	-p int      status poll interval in seconds
//	-t int      status poll timeout in seconds
//	-d string   path of the local SQLite database
//
// The args are filtered with flagx.FilterArgs first so flags owned by other
// loaders (-c, -e) do not interfere.
func parseFlags(cfg *Config, args []string) {
	args = flagx.FilterArgs(args, []string{"-a", "-p", "-t", "-d"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.APIBaseURL, "a", cfg.APIBaseURL, "base URL of the ScanPilot API")
	fs.StringVar(&cfg.DBPath, "d", cfg.DBPath, "path of the local database file")
	pollInterval := fs.Int("p", int(cfg.PollInterval.Seconds()), "status poll interval (in seconds)")
	pollTimeout := fs.Int("t", int(cfg.PollTimeout.Seconds()), "status poll timeout (in seconds)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "p":
			cfg.PollInterval = time.Duration(*pollInterval) * time.Second
		case "t":
			cfg.PollTimeout = time.Duration(*pollTimeout) * time.Second
		}
	})
}
