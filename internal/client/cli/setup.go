package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/reelsync/internal/client/auth"
	"github.com/dmitrijs2005/reelsync/internal/client/client"
	"github.com/dmitrijs2005/reelsync/internal/client/config"
	"github.com/dmitrijs2005/reelsync/internal/client/gate"
	"github.com/dmitrijs2005/reelsync/internal/client/scheduler"
	"github.com/dmitrijs2005/reelsync/internal/client/services"
	"github.com/dmitrijs2005/reelsync/internal/client/store"
	"github.com/dmitrijs2005/reelsync/internal/client/syncer"
	"github.com/dmitrijs2005/reelsync/internal/logging"
)

// Setup opens the local store and builds the transport, gate, orchestrator
// and scheduler described by c. The returned func releases them.
func Setup(ctx context.Context, c *config.Config, log logging.Logger) (*App, func(), error) {
	st, err := store.Open(ctx, c.DBPath)
	if err != nil {
		return nil, nil, fmt.Errorf("open store: %w", err)
	}

	tokens := auth.NewStoreSupplier(st)

	httpClient := client.NewHTTPClient(client.HTTPConfig{
		BaseURL:    c.ServerURL,
		APIVersion: c.APIVersion,
		Timeout:    c.RequestTimeout,
	}, tokens)

	var (
		transport client.Client = httpClient
		probe     gate.Gate
	)
	switch c.Transport {
	case config.TransportGRPC:
		gc, err := client.NewGRPCClient(c.GRPCAddr, c.RequestTimeout, tokens)
		if err != nil {
			_ = st.Close()
			return nil, nil, fmt.Errorf("grpc client: %w", err)
		}
		transport = gc
		probe = gate.Dial{Addr: c.GRPCAddr, Timeout: probeTimeout(c)}
	default:
		d, err := gate.DialURL(c.ServerURL, probeTimeout(c))
		if err != nil {
			_ = st.Close()
			return nil, nil, fmt.Errorf("server url: %w", err)
		}
		probe = d
	}

	orch := syncer.New(st, probe, transport, log)
	sched := scheduler.New(orch, st, log, scheduler.Config{
		Interval:      c.SyncInterval,
		RetryDelay:    c.RetryDelay,
		RetryAttempts: c.RetryAttempts,
		JitterPercent: 10,
	})

	app := NewApp(c,
		services.NewAccountService(st, httpClient),
		services.NewProjectService(st),
		st,
		sched,
	)

	cleanup := func() {
		errs := []error{httpClient.Close(), st.Close()}
		if transport != client.Client(httpClient) {
			errs = append(errs, transport.Close())
		}
		if err := errors.Join(errs...); err != nil {
			log.Warn(ctx, "shutdown", "error", err)
		}
	}
	return app, cleanup, nil
}

// probeTimeout keeps the reachability check well below a full request.
func probeTimeout(c *config.Config) time.Duration {
	d := c.RequestTimeout / 10
	if d < time.Second {
		d = time.Second
	}
	return d
}
