package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/reelsync/internal/client/cli"
	"github.com/dmitrijs2005/reelsync/internal/client/config"
	"github.com/dmitrijs2005/reelsync/internal/flagx"
	"github.com/dmitrijs2005/reelsync/internal/logging"
)

func main() {
	os.Exit(run())
}

func run() int {
	args := os.Args[1:]
	cmd := flagx.Positional(args, config.ValueFlags)

	cfg, err := config.LoadConfig(args)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		return cli.ExitError
	}

	log := logging.New(logging.Options{Level: cfg.LogLevel, File: cfg.LogFile})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, cleanup, err := cli.Setup(ctx, cfg, log)
	if err != nil {
		log.Error(ctx, "startup failed", "error", err)
		fmt.Fprintf(os.Stderr, "%v\n", err)
		return cli.ExitError
	}
	defer cleanup()

	return app.Execute(ctx, cmd)
}
