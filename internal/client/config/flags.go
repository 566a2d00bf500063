package config

import (
	"flag"
	"os"
	"time"

	"github.com/stillmind/stillmind/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   base URL of the backend server (default from Config)
//	-i int      online check interval in seconds (default from Config)
//	-s int      sync debounce delay in seconds (default from Config)
//	-d string   local database path (default from Config)
//
// Note: The function filters os.Args to only include the flags it knows about,
// using flagx.FilterArgs, to avoid interference with other components.
func parseFlags(cfg *Config) {
	// Filter args to include only those handled here.
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-i", "-s", "-d"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.ServerEndpointAddr, "a", cfg.ServerEndpointAddr, "base URL of the backend server")
	fs.StringVar(&cfg.DatabasePath, "d", cfg.DatabasePath, "path of the local mirror database")
	onlineCheckInterval := fs.Int("i", int(cfg.OnlineCheckInterval.Seconds()), "online check interval (in seconds)")
	syncDelay := fs.Int("s", int(cfg.SyncDelay.Seconds()), "sync debounce delay (in seconds)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	cfg.OnlineCheckInterval = time.Duration(*onlineCheckInterval) * time.Second
	cfg.SyncDelay = time.Duration(*syncDelay) * time.Second
}
