package config

import (
	"flag"
	"io"
	"time"

	"github.com/dmitrijs2005/evadocs/internal/flagx"
)

var knownFlags = []string{"-a", "-i", "-s", "-t", "-d", "-o", "-sim"}

// parseFlags populates selected Config fields from command-line flags.
// Only flags listed in knownFlags are considered, so -c/-config and anything
// else on the command line does not trip the parser.
func parseFlags(cfg *Config, args []string) error {
	args = flagx.FilterArgs(args, knownFlags)

	fs := flag.NewFlagSet("evadocs", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&cfg.APIBaseURL, "a", cfg.APIBaseURL, "base URL of the EVA backend")
	onlineCheck := fs.Int("i", int(cfg.OnlineCheckInterval.Seconds()), "online check interval (in seconds)")
	sessionCheck := fs.Int("s", int(cfg.SessionCheckInterval.Seconds()), "session check interval (in seconds)")
	convertTimeout := fs.Int("t", int(cfg.ConvertTimeout.Seconds()), "conversion timeout (in seconds)")
	fs.StringVar(&cfg.DataDir, "d", cfg.DataDir, "data directory")
	fs.StringVar(&cfg.OutputDir, "o", cfg.OutputDir, "output directory")
	fs.BoolVar(&cfg.Simulation, "sim", cfg.Simulation, "sign and validate locally")

	if err := fs.Parse(args); err != nil {
		return err
	}

	// Second-granularity flags only replace durations they were given for.
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "i":
			cfg.OnlineCheckInterval = time.Duration(*onlineCheck) * time.Second
		case "s":
			cfg.SessionCheckInterval = time.Duration(*sessionCheck) * time.Second
		case "t":
			cfg.ConvertTimeout = time.Duration(*convertTimeout) * time.Second
		}
	})
	return nil
}
