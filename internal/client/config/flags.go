package config

import (
	"flag"
	"io"
	"time"

	"github.com/dmitrijs2005/reelsync/internal/flagx"
)

// ValueFlags lists the flags that consume the following argument, so the CLI
// can skip them when looking for its command.
var ValueFlags = []string{"-a", "-t", "-g", "-r", "-i", "-d", "-n", "-f", "-l", "-v", "-c", "-config"}

// parseFlags overlays cfg with command-line flags:
//
//	-a string   sync server base URL
//	-t string   transport, http or grpc
//	-g string   gRPC server address
//	-r int      request timeout (seconds)
//	-i int      sync interval (seconds)
//	-d int      first retry delay (seconds)
//	-n int      retry attempts per cycle
//	-f string   local database path
//	-l string   log file; empty logs to stderr
//	-v string   log level
func parseFlags(cfg *Config, args []string) error {
	args = flagx.FilterArgs(args, []string{"-a", "-t", "-g", "-r", "-i", "-d", "-n", "-f", "-l", "-v"})

	fs := flag.NewFlagSet("reelsync", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&cfg.ServerURL, "a", cfg.ServerURL, "sync server base URL")
	fs.StringVar(&cfg.Transport, "t", cfg.Transport, "transport: http or grpc")
	fs.StringVar(&cfg.GRPCAddr, "g", cfg.GRPCAddr, "gRPC server address")
	timeout := fs.Int("r", int(cfg.RequestTimeout.Seconds()), "request timeout (in seconds)")
	interval := fs.Int("i", int(cfg.SyncInterval.Seconds()), "sync interval (in seconds)")
	delay := fs.Int("d", int(cfg.RetryDelay.Seconds()), "first retry delay (in seconds)")
	fs.IntVar(&cfg.RetryAttempts, "n", cfg.RetryAttempts, "retry attempts per cycle")
	fs.StringVar(&cfg.DBPath, "f", cfg.DBPath, "local database path")
	fs.StringVar(&cfg.LogFile, "l", cfg.LogFile, "log file")
	fs.StringVar(&cfg.LogLevel, "v", cfg.LogLevel, "log level")

	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg.RequestTimeout = time.Duration(*timeout) * time.Second
	cfg.SyncInterval = time.Duration(*interval) * time.Second
	cfg.RetryDelay = time.Duration(*delay) * time.Second
	return nil
}
