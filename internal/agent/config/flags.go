package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/fieldreport/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   base URL of the backend server
//	-d string   path to the local database file
//	-i int      online check interval in seconds
//	-p int      pending poll interval in seconds
//	-t int      submission timeout in seconds
//	-s int      server listing page size
//
// The function filters os.Args to only include the flags it knows about,
// using flagx.FilterArgs, to avoid interference with other components.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-d", "-i", "-p", "-t", "-s"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.ServerEndpointAddr, "a", cfg.ServerEndpointAddr, "base URL of the backend server")
	fs.StringVar(&cfg.DatabasePath, "d", cfg.DatabasePath, "path to the local database file")
	onlineCheckInterval := fs.Int("i", int(cfg.OnlineCheckInterval.Seconds()), "online check interval (in seconds)")
	pendingPollInterval := fs.Int("p", int(cfg.PendingPollInterval.Seconds()), "pending poll interval (in seconds)")
	submitTimeout := fs.Int("t", int(cfg.SubmitTimeout.Seconds()), "submission timeout (in seconds)")
	fs.IntVar(&cfg.PageSize, "s", cfg.PageSize, "server listing page size")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	cfg.OnlineCheckInterval = time.Duration(*onlineCheckInterval) * time.Second
	cfg.PendingPollInterval = time.Duration(*pendingPollInterval) * time.Second
	cfg.SubmitTimeout = time.Duration(*submitTimeout) * time.Second
}
