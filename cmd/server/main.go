package main

import (
	"context"
	"fmt"
	"os"

	"github.com/dmitrijs2005/reelsync/internal/buildinfo"
	"github.com/dmitrijs2005/reelsync/internal/logging"
	"github.com/dmitrijs2005/reelsync/internal/server"
	"github.com/dmitrijs2005/reelsync/internal/server/config"
)

func main() {
	os.Exit(run())
}

func run() int {
	buildinfo.PrintBuildData(os.Stdout)

	cfg, err := config.LoadConfig(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		return 1
	}

	logger := logging.New(logging.Options{Level: cfg.LogLevel, JSON: true, Output: os.Stdout})
	ctx := context.Background()

	app, err := server.NewApp(ctx, cfg, logger)
	if err != nil {
		logger.Error(ctx, "startup failed", "error", err)
		return 1
	}

	if err := app.Run(ctx); err != nil {
		logger.Error(ctx, "server stopped with error", "error", err)
		return 1
	}
	return 0
}
