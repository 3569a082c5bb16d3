package config

import (
	"flag"
	"io"
	"time"

	"github.com/dmitrijs2005/recipekeeper/internal/flagx"
)

// flagNames lists the short flags handled by parseFlags.
var flagNames = []string{"-a", "-s", "-d", "-p", "-m", "-r", "-k", "-t", "-u", "-l"}

// parseFlags overlays settings from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   HTTP bind address (e.g., ":8080")
//	-s string   storage backend: sqlite, ledger, postgres, memory
//	-d string   data directory
//	-p string   PostgreSQL DSN
//	-m string   content backend: disk, s3
//	-r string   content root directory
//	-k string   session token secret
//	-t int      session validity, minutes
//	-u int      max upload size, MiB
//	-l string   log level
func parseFlags(cfg *Config, args []string) error {
	args = flagx.FilterArgs(args, flagNames)

	fs := flag.NewFlagSet("recipekeeper", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&cfg.HTTPAddr, "a", cfg.HTTPAddr, "address and port to run server")
	fs.StringVar(&cfg.StorageBackend, "s", cfg.StorageBackend, "storage backend")
	fs.StringVar(&cfg.DataDir, "d", cfg.DataDir, "data directory")
	fs.StringVar(&cfg.DatabaseDSN, "p", cfg.DatabaseDSN, "postgres DSN")
	fs.StringVar(&cfg.ContentBackend, "m", cfg.ContentBackend, "content backend")
	fs.StringVar(&cfg.ContentRoot, "r", cfg.ContentRoot, "content root directory")
	fs.StringVar(&cfg.SecretKey, "k", cfg.SecretKey, "session secret key")
	fs.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "log level")

	sessionMinutes := fs.Int("t", int(cfg.SessionValidityDuration.Minutes()), "session validity (in minutes)")
	maxUploadMiB := fs.Int64("u", cfg.MaxUploadBytes>>20, "max upload size (in MiB)")

	if err := fs.Parse(args); err != nil {
		return err
	}

	// -t and -u apply only when given
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "t":
			cfg.SessionValidityDuration = time.Duration(*sessionMinutes) * time.Minute
		case "u":
			cfg.MaxUploadBytes = *maxUploadMiB << 20
		}
	})

	return nil
}
